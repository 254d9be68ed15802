package secondary

import "context"

// ExportSink receives a serialized export. It stands in for the platform
// share/save mechanism.
type ExportSink interface {
	// Save writes data under fileName, or to target when target is set,
	// and returns the final location.
	Save(ctx context.Context, fileName, target string, data []byte) (string, error)
}

// ImportSource supplies the raw bytes of an import.
type ImportSource interface {
	// Read returns the content found at source ("-" reads standard input).
	Read(ctx context.Context, source string) ([]byte, error)
}
