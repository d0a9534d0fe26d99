// Package proposal models edits proposed by an automated producer and
// merges stacked proposals into a single review target.
package proposal

import (
	"time"

	"github.com/google/uuid"
)

// Kind is the operation a producer proposed for a document.
type Kind string

const (
	KindCreate    Kind = "create"
	KindOverwrite Kind = "overwrite"
	KindPatch     Kind = "patch"
	KindDelete    Kind = "delete"
	KindRename    Kind = "rename"
)

// Valid reports whether k is one of the known operation kinds.
func (k Kind) Valid() bool {
	switch k {
	case KindCreate, KindOverwrite, KindPatch, KindDelete, KindRename:
		return true
	default:
		return false
	}
}

// LineEdit is one structured edit: replace the 1-based inclusive range
// [StartLine, EndLine] with Content. A StartLine of zero inserts at the
// very start.
type LineEdit struct {
	StartLine int    `json:"start_line"`
	EndLine   int    `json:"end_line"`
	Content   string `json:"content"`
}

// ProposedChange is a single proposed edit to one document. Content
// fields the producer leaves out decode as empty strings; the engine
// never distinguishes missing from empty.
type ProposedChange struct {
	ID              string     `json:"id"`
	Kind            Kind       `json:"kind"`
	DocumentID      string     `json:"document_id"`
	Path            string     `json:"path"`
	NewPath         string     `json:"new_path,omitempty"`
	OriginalContent string     `json:"original_content"`
	TargetContent   string     `json:"target_content"`
	Edits           []LineEdit `json:"edits,omitempty"`
	CreatedAt       time.Time  `json:"created_at"`
}

// New returns a ProposedChange of the given kind with a fresh id and
// timestamp. Content fields are filled in by the caller.
func New(kind Kind, documentID, path string) ProposedChange {
	return ProposedChange{
		ID:         uuid.NewString(),
		Kind:       kind,
		DocumentID: documentID,
		Path:       path,
		CreatedAt:  time.Now().UTC(),
	}
}
