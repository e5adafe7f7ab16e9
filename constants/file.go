package constants

import "strings"

// SourceFormat is the kind of input document handed to the pipeline.
type SourceFormat string

const (
	PDF     SourceFormat = "PDF"
	TEXT    SourceFormat = "TEXT"
	UNKNOWN SourceFormat = "UNKNOWN"
)

// AllowedExtensions holds the input extensions the CLI accepts.
var AllowedExtensions = map[string]struct{}{
	"pdf": {},
	"txt": {},
	"md":  {},
}

// NormalizeExt lowercases and trims the dot from a file extension.
func NormalizeExt(ext string) string {
	return strings.ToLower(strings.TrimPrefix(ext, "."))
}

// MapExtToFormat maps a file extension to the source format we route it through.
func MapExtToFormat(ext string) SourceFormat {
	switch NormalizeExt(ext) {
	case "pdf":
		return PDF
	case "txt", "md":
		return TEXT
	default:
		return UNKNOWN
	}
}
