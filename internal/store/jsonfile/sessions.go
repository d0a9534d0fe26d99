package jsonfile

import (
	"context"
	"sort"
	"sync"

	"github.com/hay-kot/redline/internal/core/review"
)

// sessionsFile is the root JSON structure stored on disk.
type sessionsFile struct {
	Sessions map[string]review.Session `json:"sessions"`
}

// SessionStore implements review.Store using a JSON file for persistence.
// One session is kept per document id.
type SessionStore struct {
	path string
	mu   sync.RWMutex
}

var _ review.Store = (*SessionStore)(nil)

// NewSessionStore creates a new JSON file session store at the given path.
func NewSessionStore(path string) *SessionStore {
	return &SessionStore{path: path}
}

// Get returns the persisted session for the given document id.
// Returns review.ErrSessionNotFound if not found.
func (s *SessionStore) Get(ctx context.Context, documentID string) (review.Session, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	file, err := load[sessionsFile](s.path)
	if err != nil {
		return review.Session{}, err
	}

	session, ok := file.Sessions[documentID]
	if !ok {
		return review.Session{}, review.ErrSessionNotFound
	}

	return session, nil
}

// Save upserts the session keyed by its document id.
func (s *SessionStore) Save(ctx context.Context, session review.Session) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	file, err := load[sessionsFile](s.path)
	if err != nil {
		return err
	}

	if file.Sessions == nil {
		file.Sessions = make(map[string]review.Session)
	}
	file.Sessions[session.DocumentID] = session

	return save(s.path, file)
}

// Delete removes the session for the given document id. Deleting a
// missing session is not an error.
func (s *SessionStore) Delete(ctx context.Context, documentID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	file, err := load[sessionsFile](s.path)
	if err != nil {
		return err
	}

	if _, ok := file.Sessions[documentID]; !ok {
		return nil
	}
	delete(file.Sessions, documentID)

	return save(s.path, file)
}

// List returns all persisted sessions, oldest first. Ties are broken by
// document id so the order is stable.
func (s *SessionStore) List(ctx context.Context) ([]review.Session, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	file, err := load[sessionsFile](s.path)
	if err != nil {
		return nil, err
	}

	sessions := make([]review.Session, 0, len(file.Sessions))
	for _, session := range file.Sessions {
		sessions = append(sessions, session)
	}

	sort.Slice(sessions, func(i, j int) bool {
		if sessions[i].CreatedAt.Equal(sessions[j].CreatedAt) {
			return sessions[i].DocumentID < sessions[j].DocumentID
		}
		return sessions[i].CreatedAt.Before(sessions[j].CreatedAt)
	})

	return sessions, nil
}
