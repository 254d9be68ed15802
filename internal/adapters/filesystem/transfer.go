// Package filesystem contains filesystem-based adapter implementations.
package filesystem

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/example/robodb/internal/ports/secondary"
)

// StdinSource is the import source name that reads standard input.
const StdinSource = "-"

// TransferAdapter implements secondary.ExportSink and secondary.ImportSource
// on the local file system.
type TransferAdapter struct {
	exportDir string
	stdin     io.Reader
}

// NewTransferAdapter creates a new filesystem transfer adapter.
// If exportDir is empty, defaults to ~/.robodb/exports.
func NewTransferAdapter(exportDir string, stdin io.Reader) (*TransferAdapter, error) {
	if exportDir == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return nil, fmt.Errorf("failed to get home directory: %w", err)
		}
		exportDir = filepath.Join(home, ".robodb", "exports")
	}
	if stdin == nil {
		stdin = os.Stdin
	}

	return &TransferAdapter{
		exportDir: exportDir,
		stdin:     stdin,
	}, nil
}

// Save writes data to target, or to fileName inside the export directory
// when target is empty. Returns the absolute path written.
func (a *TransferAdapter) Save(ctx context.Context, fileName, target string, data []byte) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}

	path := target
	if path == "" {
		path = filepath.Join(a.exportDir, fileName)
	}

	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return "", fmt.Errorf("failed to create export directory: %w", err)
	}

	if err := os.WriteFile(path, data, 0644); err != nil {
		return "", fmt.Errorf("failed to write export file: %w", err)
	}

	if abs, err := filepath.Abs(path); err == nil {
		path = abs
	}
	return path, nil
}

// Read returns the content of the file at source, or standard input for "-".
func (a *TransferAdapter) Read(ctx context.Context, source string) ([]byte, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	if source == StdinSource {
		data, err := io.ReadAll(a.stdin)
		if err != nil {
			return nil, fmt.Errorf("failed to read standard input: %w", err)
		}
		return data, nil
	}

	data, err := os.ReadFile(source)
	if err != nil {
		return nil, fmt.Errorf("failed to read import file: %w", err)
	}
	return data, nil
}

// ExportDir returns the directory used for exports without an explicit target.
func (a *TransferAdapter) ExportDir() string {
	return a.exportDir
}

// Ensure TransferAdapter implements the interfaces.
var (
	_ secondary.ExportSink   = (*TransferAdapter)(nil)
	_ secondary.ImportSource = (*TransferAdapter)(nil)
)
