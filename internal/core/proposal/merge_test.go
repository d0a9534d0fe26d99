package proposal_test

import (
	"testing"
	"time"

	"github.com/hay-kot/redline/internal/core/proposal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func change(kind proposal.Kind, target string, at time.Time) proposal.ProposedChange {
	c := proposal.New(kind, "doc-1", "doc.md")
	c.TargetContent = target
	c.CreatedAt = at
	return c
}

func TestMerge_LastOverwriteWins(t *testing.T) {
	base := time.Date(2026, 8, 1, 12, 0, 0, 0, time.UTC)

	// Given newest-first; the fold must still order by timestamp.
	res := proposal.Merge("v0", true, []proposal.ProposedChange{
		change(proposal.KindOverwrite, "v2", base.Add(2*time.Second)),
		change(proposal.KindOverwrite, "v1", base.Add(1*time.Second)),
	})

	assert.Equal(t, "v2", res.Content)
	assert.Empty(t, res.Skipped)
}

func TestMerge_EqualTimestampsKeepGivenOrder(t *testing.T) {
	at := time.Date(2026, 8, 1, 12, 0, 0, 0, time.UTC)

	res := proposal.Merge("v0", true, []proposal.ProposedChange{
		change(proposal.KindOverwrite, "first", at),
		change(proposal.KindOverwrite, "second", at),
	})

	assert.Equal(t, "second", res.Content)
}

func TestMerge_PatchEditsApplyBottomUp(t *testing.T) {
	at := time.Date(2026, 8, 1, 12, 0, 0, 0, time.UTC)

	// The first edit grows the document; applying edits top-down would
	// shift the second edit onto the wrong line.
	c := proposal.New(proposal.KindPatch, "doc-1", "doc.md")
	c.CreatedAt = at
	c.Edits = []proposal.LineEdit{
		{StartLine: 1, EndLine: 1, Content: "A1\nA2"},
		{StartLine: 3, EndLine: 3, Content: "C"},
	}

	res := proposal.Merge("a\nb\nc", true, []proposal.ProposedChange{c})

	assert.Equal(t, "A1\nA2\nb\nC", res.Content)
	assert.Empty(t, res.Skipped)
}

func TestMerge_CreateAgainstExistingIsSkipped(t *testing.T) {
	at := time.Date(2026, 8, 1, 12, 0, 0, 0, time.UTC)

	create := change(proposal.KindCreate, "fresh content", at)
	res := proposal.Merge("existing", true, []proposal.ProposedChange{create})

	assert.Equal(t, "existing", res.Content)
	require.Len(t, res.Skipped, 1)
	assert.Equal(t, create.ID, res.Skipped[0].ID)
}

func TestMerge_CreateAsFirstChangeActsAsOverwrite(t *testing.T) {
	base := time.Date(2026, 8, 1, 12, 0, 0, 0, time.UTC)

	patch := proposal.New(proposal.KindPatch, "doc-1", "doc.md")
	patch.CreatedAt = base.Add(time.Second)
	patch.Edits = []proposal.LineEdit{{StartLine: 1, EndLine: 1, Content: "hello"}}

	res := proposal.Merge("", false, []proposal.ProposedChange{
		change(proposal.KindCreate, "line\nanother", base),
		patch,
	})

	assert.Equal(t, "hello\nanother", res.Content)
	assert.Empty(t, res.Skipped)
}

func TestMerge_CreateAfterAnyFoldIsSkipped(t *testing.T) {
	base := time.Date(2026, 8, 1, 12, 0, 0, 0, time.UTC)

	res := proposal.Merge("", false, []proposal.ProposedChange{
		change(proposal.KindOverwrite, "written", base),
		change(proposal.KindCreate, "late create", base.Add(time.Second)),
	})

	assert.Equal(t, "written", res.Content)
	assert.Len(t, res.Skipped, 1)
}

func TestMerge_DeleteEmptiesContent(t *testing.T) {
	at := time.Date(2026, 8, 1, 12, 0, 0, 0, time.UTC)

	res := proposal.Merge("doomed", true, []proposal.ProposedChange{
		change(proposal.KindDelete, "", at),
	})

	assert.Equal(t, "", res.Content)
	assert.Empty(t, res.Skipped)
}

func TestMerge_RenameLeavesContentAlone(t *testing.T) {
	at := time.Date(2026, 8, 1, 12, 0, 0, 0, time.UTC)

	rename := proposal.New(proposal.KindRename, "doc-1", "old.md")
	rename.NewPath = "new.md"
	rename.CreatedAt = at

	res := proposal.Merge("stays", true, []proposal.ProposedChange{rename})

	assert.Equal(t, "stays", res.Content)
	assert.Empty(t, res.Skipped)
}

func TestMerge_NoChangesReturnsBase(t *testing.T) {
	res := proposal.Merge("base", true, nil)
	assert.Equal(t, "base", res.Content)
	assert.Empty(t, res.Skipped)
}

func TestMerge_MissingTargetContentIsEmptyString(t *testing.T) {
	at := time.Date(2026, 8, 1, 12, 0, 0, 0, time.UTC)

	res := proposal.Merge("base", true, []proposal.ProposedChange{
		change(proposal.KindOverwrite, "", at),
	})

	assert.Equal(t, "", res.Content)
}

func TestMerge_UnknownKindIsSkipped(t *testing.T) {
	at := time.Date(2026, 8, 1, 12, 0, 0, 0, time.UTC)

	res := proposal.Merge("base", true, []proposal.ProposedChange{
		change(proposal.Kind("mystery"), "whatever", at),
	})

	assert.Equal(t, "base", res.Content)
	assert.Len(t, res.Skipped, 1)
}

func TestKind_Valid(t *testing.T) {
	for _, k := range []proposal.Kind{
		proposal.KindCreate,
		proposal.KindOverwrite,
		proposal.KindPatch,
		proposal.KindDelete,
		proposal.KindRename,
	} {
		assert.True(t, k.Valid(), "kind %q", k)
	}
	assert.False(t, proposal.Kind("mystery").Valid())
	assert.False(t, proposal.Kind("").Valid())
}
