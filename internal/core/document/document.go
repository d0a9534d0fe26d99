// Package document defines the document value reviewed by the engine
// and the storage seam the review service writes results through.
package document

import (
	"context"
	"errors"
)

// ErrNotFound is returned by Storage.Read for documents that do not
// exist yet. The review service treats such documents as empty when a
// create proposal is pending.
var ErrNotFound = errors.New("document not found")

// Document is the unit under review. ID is the stable storage key; Name
// is the human identity (a path or equivalent) used to detect renames
// between a persisted session and the live document.
type Document struct {
	ID      string `json:"id"`
	Name    string `json:"name"`
	Content string `json:"content"`
}

// Storage reads and writes document content. Implementations treat ids
// as opaque keys.
type Storage interface {
	// Read returns the document stored under id.
	// A missing document returns ErrNotFound.
	Read(ctx context.Context, id string) (Document, error)

	// Write stores content under id, creating the document if needed.
	Write(ctx context.Context, id string, content string) error

	// Delete removes the document. Deleting a missing document is not
	// an error.
	Delete(ctx context.Context, id string) error
}
