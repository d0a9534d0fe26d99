// Package docfile implements document storage directly over the
// filesystem. The document id is its path; the name identity is the
// cleaned path.
package docfile

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/hay-kot/redline/internal/core/document"
)

type Storage struct{}

func New() *Storage {
	return &Storage{}
}

func (s *Storage) Read(ctx context.Context, id string) (document.Document, error) {
	bits, err := os.ReadFile(id)
	if errors.Is(err, os.ErrNotExist) {
		return document.Document{}, fmt.Errorf("%w: %s", document.ErrNotFound, id)
	}
	if err != nil {
		return document.Document{}, fmt.Errorf("read document: %w", err)
	}

	return document.Document{
		ID:      id,
		Name:    filepath.Clean(id),
		Content: string(bits),
	}, nil
}

func (s *Storage) Write(ctx context.Context, id string, content string) error {
	if dir := filepath.Dir(id); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("create document dir: %w", err)
		}
	}

	// Write-then-rename keeps readers from observing partial content.
	tmp := id + ".tmp"
	if err := os.WriteFile(tmp, []byte(content), 0o644); err != nil {
		return fmt.Errorf("write document: %w", err)
	}
	if err := os.Rename(tmp, id); err != nil {
		return fmt.Errorf("replace document: %w", err)
	}

	return nil
}

func (s *Storage) Delete(ctx context.Context, id string) error {
	if err := os.Remove(id); err != nil && !errors.Is(err, os.ErrNotExist) {
		return fmt.Errorf("delete document: %w", err)
	}
	return nil
}
