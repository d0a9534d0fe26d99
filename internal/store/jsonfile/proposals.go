package jsonfile

import (
	"context"
	"sync"

	"github.com/hay-kot/redline/internal/core/proposal"
)

// proposalsFile is the root JSON structure stored on disk.
type proposalsFile struct {
	Proposals map[string][]proposal.ProposedChange `json:"proposals"`
}

// ProposalStore implements proposal.Store using a JSON file for
// persistence. Changes are bucketed per document, oldest first.
type ProposalStore struct {
	path string
	mu   sync.RWMutex
}

var _ proposal.Store = (*ProposalStore)(nil)

// NewProposalStore creates a new JSON file proposal store at the given path.
func NewProposalStore(path string) *ProposalStore {
	return &ProposalStore{path: path}
}

// ForDocument returns the pending changes for the document, oldest first.
func (s *ProposalStore) ForDocument(ctx context.Context, documentID string) ([]proposal.ProposedChange, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	file, err := load[proposalsFile](s.path)
	if err != nil {
		return nil, err
	}

	changes := file.Proposals[documentID]
	if changes == nil {
		return []proposal.ProposedChange{}, nil
	}

	return changes, nil
}

// Put appends a pending change for its document.
func (s *ProposalStore) Put(ctx context.Context, change proposal.ProposedChange) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	file, err := load[proposalsFile](s.path)
	if err != nil {
		return err
	}

	if file.Proposals == nil {
		file.Proposals = make(map[string][]proposal.ProposedChange)
	}
	file.Proposals[change.DocumentID] = append(file.Proposals[change.DocumentID], change)

	return save(s.path, file)
}

// DropDocument removes every pending change for the document and
// reports how many were dropped.
func (s *ProposalStore) DropDocument(ctx context.Context, documentID string) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	file, err := load[proposalsFile](s.path)
	if err != nil {
		return 0, err
	}

	dropped := len(file.Proposals[documentID])
	if dropped == 0 {
		return 0, nil
	}
	delete(file.Proposals, documentID)

	if err := save(s.path, file); err != nil {
		return 0, err
	}

	return dropped, nil
}

// List returns all pending changes grouped by document id.
func (s *ProposalStore) List(ctx context.Context) (map[string][]proposal.ProposedChange, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	file, err := load[proposalsFile](s.path)
	if err != nil {
		return nil, err
	}

	if file.Proposals == nil {
		return map[string][]proposal.ProposedChange{}, nil
	}

	return file.Proposals, nil
}
