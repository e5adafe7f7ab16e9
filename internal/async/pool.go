// Package async runs independent jobs on a bounded set of workers while
// keeping results in submission order.
package async

import (
	"context"
	"log/slog"
	"time"

	"github.com/joseph-ayodele/exam-extractor/internal/common"
	"golang.org/x/sync/errgroup"
)

// Worker processes job index i. Implementations must always return a value;
// a job never fails its siblings.
type Worker[T any] func(ctx context.Context, i int) T

// Pool holds the fan-out settings. The zero value is not usable; use NewPool.
type Pool struct {
	logger  *slog.Logger
	workers int
	timeout time.Duration
}

type Option func(*Pool)

func WithWorkers(n int) Option {
	return func(p *Pool) {
		if n > 0 {
			p.workers = n
		}
	}
}

// WithJobTimeout bounds each job. Zero disables the per-job deadline.
func WithJobTimeout(d time.Duration) Option {
	return func(p *Pool) {
		if d > 0 {
			p.timeout = d
		}
	}
}

func NewPool(logger *slog.Logger, opts ...Option) *Pool {
	if logger == nil {
		logger = slog.Default()
	}
	p := &Pool{
		logger:  logger,
		workers: 1,
	}
	for _, o := range opts {
		o(p)
	}
	return p
}

// Workers returns the configured worker count.
func (p *Pool) Workers() int { return p.workers }

// Run dispatches jobs 0..n-1. Each worker is built once through newWorker,
// so per-worker state (an LLM client, say) is never shared. Results land in a
// slice indexed by job, and done reports which indexes ran. Once ctx is
// cancelled no further jobs are dispatched; jobs already running finish.
func Run[T any](ctx context.Context, p *Pool, n int, newWorker func(workerID int) Worker[T]) ([]T, []bool) {
	results := make([]T, n)
	done := make([]bool, n)
	if n == 0 {
		return results, done
	}

	workers := min(p.workers, n)
	jobs := make(chan int)
	var g errgroup.Group

	g.Go(func() error {
		defer close(jobs)
		for i := 0; i < n; i++ {
			if ctx.Err() != nil {
				p.logger.Warn("pool.dispatch.stopped", "dispatched", i, "total", n, "error", ctx.Err())
				return nil
			}
			select {
			case <-ctx.Done():
				p.logger.Warn("pool.dispatch.stopped", "dispatched", i, "total", n, "error", ctx.Err())
				return nil
			case jobs <- i:
			}
		}
		return nil
	})

	for w := 1; w <= workers; w++ {
		workerID := w
		g.Go(func() error {
			work := newWorker(workerID)
			p.logger.Debug("pool.worker.start", "worker_id", workerID)
			for i := range jobs {
				if ctx.Err() != nil {
					// handed over in the same instant ctx was cancelled
					continue
				}
				jctx, cancel := common.WithTimeout(ctx, p.timeout)
				results[i] = work(jctx, i)
				cancel()
				// each index is written by exactly one worker
				done[i] = true
			}
			p.logger.Debug("pool.worker.stop", "worker_id", workerID)
			return nil
		})
	}

	_ = g.Wait()
	return results, done
}

