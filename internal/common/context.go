package common

import (
	"context"
	"time"
)

// Context keys for storing values in context
type contextKey string

const (
	ContextKeyRunID   contextKey = "run_id"
	ContextKeyChunkID contextKey = "chunk_index"
)

// WithRunID adds a pipeline run ID to the context
func WithRunID(ctx context.Context, runID string) context.Context {
	return context.WithValue(ctx, ContextKeyRunID, runID)
}

// RunIDFromContext extracts the run ID from context
func RunIDFromContext(ctx context.Context) string {
	if runID, ok := ctx.Value(ContextKeyRunID).(string); ok {
		return runID
	}
	return ""
}

// WithChunkIndex tags the context with the chunk being processed
func WithChunkIndex(ctx context.Context, idx int) context.Context {
	return context.WithValue(ctx, ContextKeyChunkID, idx)
}

// ChunkIndexFromContext returns the chunk index, or -1 when unset
func ChunkIndexFromContext(ctx context.Context) int {
	if idx, ok := ctx.Value(ContextKeyChunkID).(int); ok {
		return idx
	}
	return -1
}

// WithTimeout creates a context with the specified timeout. A non-positive
// timeout returns a cancelable child without a deadline.
func WithTimeout(parent context.Context, timeout time.Duration) (context.Context, context.CancelFunc) {
	if timeout <= 0 {
		return context.WithCancel(parent)
	}
	return context.WithTimeout(parent, timeout)
}
