package proposal

import "context"

// Store persists pending proposals per document until a review resolves
// or drops them.
type Store interface {
	// ForDocument returns the pending changes for the document, oldest
	// first. A document with no pending changes returns an empty slice.
	ForDocument(ctx context.Context, documentID string) ([]ProposedChange, error)

	// Put appends a pending change for its document.
	Put(ctx context.Context, change ProposedChange) error

	// DropDocument removes every pending change for the document and
	// reports how many were dropped.
	DropDocument(ctx context.Context, documentID string) (int, error)

	// List returns all pending changes grouped by document id.
	List(ctx context.Context) (map[string][]ProposedChange, error)
}
