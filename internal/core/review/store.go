package review

import (
	"context"
	"errors"
)

// Sentinel errors for review operations.
var (
	ErrSessionNotFound = errors.New("review session not found")
)

// Store defines persistence for review sessions. One session is kept per
// document storage id. In-memory state stays authoritative; persistence
// is last-write-wins and best-effort from the caller's point of view.
type Store interface {
	// Get returns the persisted session for the given document id.
	// Returns ErrSessionNotFound if not found.
	Get(ctx context.Context, documentID string) (Session, error)

	// Save upserts the session keyed by its document id.
	Save(ctx context.Context, s Session) error

	// Delete removes the session for the given document id.
	// Deleting a missing session is not an error.
	Delete(ctx context.Context, documentID string) error

	// List returns all persisted sessions.
	List(ctx context.Context) ([]Session, error)
}
