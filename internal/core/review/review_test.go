package review_test

import (
	"testing"

	"github.com/hay-kot/redline/internal/core/review"
	"github.com/hay-kot/redline/internal/core/textdiff"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// changeHunks returns the change hunks of the current diff between the
// session's replay state and the target content.
func changeHunks(t *testing.T, s *review.Session, target string, context int) []textdiff.Hunk {
	t.Helper()

	var out []textdiff.Hunk
	for _, h := range textdiff.Group(textdiff.Diff(s.Apply(), target), context) {
		if h.Kind == textdiff.HunkChange {
			out = append(out, h)
		}
	}
	return out
}

func TestNewSession(t *testing.T) {
	s := review.NewSession("doc-1", "notes/doc.md", "line one\nline two")

	assert.Len(t, s.ID, 8)
	assert.Equal(t, "doc-1", s.DocumentID)
	assert.Equal(t, "notes/doc.md", s.SourceIdentity)
	assert.Equal(t, "line one\nline two", s.Baseline)
	assert.Empty(t, s.Queue)
	assert.Equal(t, s.CreatedAt, s.UpdatedAt)
	assert.False(t, s.Recovered)
}

func TestSession_AcceptRoundTrip(t *testing.T) {
	original := "a\nb\nc"
	modified := "a\nX\nc"

	s := review.NewSession("doc-1", "doc.md", original)

	hunks := changeHunks(t, s, modified, 3)
	require.Len(t, hunks, 1)

	s.AcceptHunk(hunks[0])
	assert.Equal(t, modified, s.Apply())
	assert.Equal(t, original, s.Baseline, "baseline must never mutate")
}

func TestSession_AcceptEverythingConvergesToTarget(t *testing.T) {
	// The first hunk grows the document by two lines, so the second
	// hunk's range is only valid against the recomputed diff. Accepting
	// the first pending change hunk until none remain must converge.
	original := "l1\nl2\nl3\nl4\nl5\nl6\nl7\nl8\nl9"
	modified := "l1\nX1\nX2\nX3\nl3\nl4\nl5\nl6\nl7\nY\nl9"

	s := review.NewSession("doc-1", "doc.md", original)

	for range 10 {
		hunks := changeHunks(t, s, modified, 1)
		if len(hunks) == 0 {
			break
		}
		s.AcceptHunk(hunks[0])
	}

	assert.Equal(t, modified, s.Apply())
	assert.Len(t, s.Queue, 2, "one accept per change hunk")
}

func TestSession_AcceptMidDocumentInsertionWithoutContext(t *testing.T) {
	// Grouped without context the inserted line has no old range; the
	// patch must splice at the insertion's anchor, not at the start.
	original := "a\nb"
	modified := "a\nX\nb"

	s := review.NewSession("doc-1", "doc.md", original)

	hunks := changeHunks(t, s, modified, 0)
	require.Len(t, hunks, 1)
	require.Zero(t, hunks[0].OldStart)

	s.AcceptHunk(hunks[0])
	assert.Equal(t, modified, s.Apply())
}

func TestSession_AcceptEverythingConvergesWithoutContext(t *testing.T) {
	original := "a\nb\nc\nd"
	modified := "top\na\nb\nmid1\nmid2\nc\nd\nend"

	s := review.NewSession("doc-1", "doc.md", original)

	for range 10 {
		hunks := changeHunks(t, s, modified, 0)
		if len(hunks) == 0 {
			break
		}
		s.AcceptHunk(hunks[0])
	}

	assert.Equal(t, modified, s.Apply())
}

func TestSession_RejectEverythingKeepsBaseline(t *testing.T) {
	original := "a\nb\nc\nd\ne"
	modified := "a\nX\nc\nY\ne"

	s := review.NewSession("doc-1", "doc.md", original)

	hunks := changeHunks(t, s, modified, 0)
	require.Len(t, hunks, 2)

	for _, h := range hunks {
		s.RejectHunk(h)
		assert.True(t, s.Processed(h.ID))
	}

	assert.Equal(t, original, s.Apply())
	assert.Len(t, s.Queue, 2)
}

func TestSession_UndoIsInverseOfLastDecision(t *testing.T) {
	original := "a\nb\nc\nd\ne"
	modified := "a\nX\nc\nY\ne"

	s := review.NewSession("doc-1", "doc.md", original)

	first := changeHunks(t, s, modified, 0)
	require.NotEmpty(t, first)
	s.AcceptHunk(first[0])
	afterFirst := s.Apply()

	second := changeHunks(t, s, modified, 0)
	require.NotEmpty(t, second)
	s.AcceptHunk(second[0])
	require.Equal(t, modified, s.Apply())

	undone, ok := s.UndoLast()
	require.True(t, ok)
	assert.Equal(t, review.PatchAccept, undone.Kind)
	assert.Equal(t, afterFirst, s.Apply())

	_, ok = s.UndoLast()
	require.True(t, ok)
	assert.Equal(t, original, s.Apply())

	_, ok = s.UndoLast()
	assert.False(t, ok, "undo on an empty queue is a no-op")
	assert.Equal(t, original, s.Apply())
}

func TestSession_UndoRemovesRejectMarker(t *testing.T) {
	original := "a\nb\nc"
	modified := "a\nX\nc"

	s := review.NewSession("doc-1", "doc.md", original)

	hunks := changeHunks(t, s, modified, 3)
	require.Len(t, hunks, 1)

	s.RejectHunk(hunks[0])
	require.True(t, s.Processed(hunks[0].ID))

	_, ok := s.UndoLast()
	require.True(t, ok)
	assert.False(t, s.Processed(hunks[0].ID))
	assert.Equal(t, original, s.Apply())
}

func TestSession_ProcessedIDs(t *testing.T) {
	original := "a\nb\nc\nd\ne"
	modified := "a\nX\nc\nY\ne"

	s := review.NewSession("doc-1", "doc.md", original)

	hunks := changeHunks(t, s, modified, 0)
	require.Len(t, hunks, 2)

	s.AcceptHunk(hunks[0])

	ids := s.ProcessedIDs()
	assert.Contains(t, ids, hunks[0].ID)
	assert.NotContains(t, ids, hunks[1].ID)
	assert.False(t, s.Processed("no-such-hunk"))
}
