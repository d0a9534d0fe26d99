// Package review owns the state of a hunk-by-hunk review: the immutable
// baseline snapshot, the ordered queue of accept and reject decisions,
// and the pure replay that derives current content from them.
package review

import (
	"time"

	"github.com/google/uuid"

	"github.com/hay-kot/redline/internal/core/textdiff"
	"github.com/hay-kot/redline/pkg/randid"
)

// PatchKind classifies a recorded decision.
type PatchKind string

const (
	PatchAccept PatchKind = "accept"
	PatchReject PatchKind = "reject"
)

// Patch records one hunk decision. An accept patch splices
// [StartLine, EndLine] of the replay state at its position in the queue;
// a reject patch changes nothing but marks its hunk processed. An empty
// range (EndLine below StartLine) deletes nothing and inserts before
// StartLine, which is how a pure-insertion hunk lands at its anchor.
type Patch struct {
	ID         string    `json:"id"`
	Kind       PatchKind `json:"kind"`
	HunkID     string    `json:"hunk_id"`
	StartLine  int       `json:"start_line"` // 1-based inclusive
	EndLine    int       `json:"end_line"`
	NewContent string    `json:"new_content,omitempty"`
	CreatedAt  time.Time `json:"created_at"`
}

// Session is the unit of review for a single document. Baseline is
// snapshotted once when the session starts and never mutates afterward;
// every content question is answered by replaying Queue against it.
type Session struct {
	ID             string    `json:"id"`
	DocumentID     string    `json:"document_id"`
	SourceIdentity string    `json:"source_identity"`
	Baseline       string    `json:"baseline"`
	Queue          []Patch   `json:"queue"`
	CreatedAt      time.Time `json:"created_at"`
	UpdatedAt      time.Time `json:"updated_at"`
	Recovered      bool      `json:"recovered,omitempty"` // rebuilt from a proposal, not from document storage
}

// NewSession starts a fresh session over the given baseline content.
func NewSession(documentID, sourceIdentity, baseline string) *Session {
	now := time.Now().UTC()
	return &Session{
		ID:             randid.Generate(8),
		DocumentID:     documentID,
		SourceIdentity: sourceIdentity,
		Baseline:       baseline,
		CreatedAt:      now,
		UpdatedAt:      now,
	}
}

// AcceptHunk appends an accept decision for the hunk. The recorded range
// is the hunk's old range, which refers to the replay state the hunk was
// diffed against.
func (s *Session) AcceptHunk(h textdiff.Hunk) Patch {
	start, end := patchRange(h)
	p := Patch{
		ID:         uuid.NewString(),
		Kind:       PatchAccept,
		HunkID:     h.ID,
		StartLine:  start,
		EndLine:    end,
		NewContent: h.NewContent(),
		CreatedAt:  time.Now().UTC(),
	}
	s.push(p)
	return p
}

// RejectHunk appends a reject decision: a content no-op that marks the
// hunk processed.
func (s *Session) RejectHunk(h textdiff.Hunk) Patch {
	start, end := patchRange(h)
	p := Patch{
		ID:        uuid.NewString(),
		Kind:      PatchReject,
		HunkID:    h.ID,
		StartLine: start,
		EndLine:   end,
		CreatedAt: time.Now().UTC(),
	}
	s.push(p)
	return p
}

// patchRange converts a hunk's old-side range into the splice range its
// patch records. A hunk with no old-side lines becomes the empty range
// anchored after InsertAfter, so a mid-document insertion splices at its
// anchor instead of the start of the document.
func patchRange(h textdiff.Hunk) (start, end int) {
	if h.OldStart == 0 {
		return h.InsertAfter + 1, h.InsertAfter
	}
	return h.OldStart, h.OldEnd
}

func (s *Session) push(p Patch) {
	s.Queue = append(s.Queue, p)
	s.UpdatedAt = p.CreatedAt
}

// UndoLast removes the newest decision from the queue and returns it.
// The queue is strictly last-in first-out; undoing an empty queue is a
// no-op.
func (s *Session) UndoLast() (Patch, bool) {
	if len(s.Queue) == 0 {
		return Patch{}, false
	}

	last := s.Queue[len(s.Queue)-1]
	s.Queue = s.Queue[:len(s.Queue)-1]
	s.UpdatedAt = time.Now().UTC()
	return last, true
}
