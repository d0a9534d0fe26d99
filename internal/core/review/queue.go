package review

import (
	"sort"

	"github.com/hay-kot/redline/internal/core/textdiff"
)

// Apply derives the session's current content by replaying every accept
// patch, oldest first, against the baseline. Replay is pure: the session
// is never mutated and the same queue always produces the same content.
// Ties on CreatedAt keep their append order.
func (s *Session) Apply() string {
	if len(s.Queue) == 0 {
		return s.Baseline
	}

	ordered := make([]Patch, len(s.Queue))
	copy(ordered, s.Queue)
	sort.SliceStable(ordered, func(a, b int) bool {
		return ordered[a].CreatedAt.Before(ordered[b].CreatedAt)
	})

	content := s.Baseline
	for _, p := range ordered {
		if p.Kind != PatchAccept {
			continue
		}
		content = textdiff.Splice(content, p.StartLine, p.EndLine, p.NewContent)
	}

	return content
}

// Processed reports whether any recorded decision references the hunk id.
func (s *Session) Processed(hunkID string) bool {
	for _, p := range s.Queue {
		if p.HunkID == hunkID {
			return true
		}
	}
	return false
}

// ProcessedIDs returns the set of hunk ids with a recorded decision.
func (s *Session) ProcessedIDs() map[string]struct{} {
	out := make(map[string]struct{}, len(s.Queue))
	for _, p := range s.Queue {
		out[p.HunkID] = struct{}{}
	}
	return out
}
