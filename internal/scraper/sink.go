package scraper

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"go.uber.org/zap"
)

// FileSystemSink persists Markdown documents to an output directory,
// one file per scraped path. Existing files are overwritten.
type FileSystemSink struct {
	root   string
	logger *zap.Logger
}

// NewFileSystemSink creates root (and parents) if absent and returns a
// sink rooted there.
func NewFileSystemSink(root string, logger *zap.Logger) (*FileSystemSink, error) {
	if err := os.MkdirAll(root, 0o750); err != nil {
		return nil, fmt.Errorf("create output dir %s: %w", root, err)
	}
	return &FileSystemSink{
		root:   root,
		logger: logger,
	}, nil
}

// WriteAll writes one Markdown file per entry in results, keyed by the
// originally requested path.
func (s *FileSystemSink) WriteAll(ctx context.Context, results map[string]string) error {
	for path, markdown := range results {
		if err := ctx.Err(); err != nil {
			return fmt.Errorf("context canceled: %w", err)
		}
		target := filepath.Join(s.root, MarkdownFilename(path))
		if err := os.WriteFile(target, []byte(markdown), 0o600); err != nil {
			return fmt.Errorf("write markdown %s: %w", target, err)
		}
		s.logger.Info("saved", zap.String("file", target))
	}
	return nil
}

// MarkdownFilename derives the output filename for a requested path:
// leading and trailing slashes are stripped, internal slashes become
// underscores, and the empty root path maps to "index".
func MarkdownFilename(path string) string {
	name := strings.ReplaceAll(strings.Trim(path, "/"), "/", "_")
	if name == "" {
		name = "index"
	}
	return name + ".md"
}
