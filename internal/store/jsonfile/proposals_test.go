package jsonfile_test

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/hay-kot/redline/internal/core/proposal"
	"github.com/hay-kot/redline/internal/store/jsonfile"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newProposalStore(t *testing.T) *jsonfile.ProposalStore {
	t.Helper()
	return jsonfile.NewProposalStore(filepath.Join(t.TempDir(), "proposals.json"))
}

func sampleChange(id, documentID string) proposal.ProposedChange {
	change := proposal.New(proposal.KindOverwrite, documentID, documentID)
	change.ID = id
	change.TargetContent = "proposed content for " + id
	change.CreatedAt = time.Now().UTC()
	return change
}

func TestProposalStore_PutAndForDocument(t *testing.T) {
	t.Parallel()

	store := newProposalStore(t)
	ctx := context.Background()

	require.NoError(t, store.Put(ctx, sampleChange("c1", "docs/guide.md")))
	require.NoError(t, store.Put(ctx, sampleChange("c2", "docs/guide.md")))
	require.NoError(t, store.Put(ctx, sampleChange("c3", "docs/other.md")))

	changes, err := store.ForDocument(ctx, "docs/guide.md")
	require.NoError(t, err)
	require.Len(t, changes, 2)

	// Oldest first, in insertion order
	assert.Equal(t, "c1", changes[0].ID)
	assert.Equal(t, "c2", changes[1].ID)
}

func TestProposalStore_ForDocumentEmpty(t *testing.T) {
	t.Parallel()

	store := newProposalStore(t)

	changes, err := store.ForDocument(context.Background(), "docs/none.md")
	require.NoError(t, err)
	assert.NotNil(t, changes)
	assert.Empty(t, changes)
}

func TestProposalStore_DropDocument(t *testing.T) {
	t.Parallel()

	store := newProposalStore(t)
	ctx := context.Background()

	require.NoError(t, store.Put(ctx, sampleChange("c1", "docs/guide.md")))
	require.NoError(t, store.Put(ctx, sampleChange("c2", "docs/guide.md")))
	require.NoError(t, store.Put(ctx, sampleChange("c3", "docs/other.md")))

	dropped, err := store.DropDocument(ctx, "docs/guide.md")
	require.NoError(t, err)
	assert.Equal(t, 2, dropped)

	changes, err := store.ForDocument(ctx, "docs/guide.md")
	require.NoError(t, err)
	assert.Empty(t, changes)

	// Other documents are untouched
	others, err := store.ForDocument(ctx, "docs/other.md")
	require.NoError(t, err)
	assert.Len(t, others, 1)
}

func TestProposalStore_DropMissingDocument(t *testing.T) {
	t.Parallel()

	store := newProposalStore(t)

	dropped, err := store.DropDocument(context.Background(), "docs/never.md")
	require.NoError(t, err)
	assert.Zero(t, dropped)
}

func TestProposalStore_List(t *testing.T) {
	t.Parallel()

	store := newProposalStore(t)
	ctx := context.Background()

	require.NoError(t, store.Put(ctx, sampleChange("c1", "docs/a.md")))
	require.NoError(t, store.Put(ctx, sampleChange("c2", "docs/b.md")))

	all, err := store.List(ctx)
	require.NoError(t, err)
	require.Len(t, all, 2)
	assert.Len(t, all["docs/a.md"], 1)
	assert.Len(t, all["docs/b.md"], 1)
}

func TestProposalStore_PreservesEdits(t *testing.T) {
	t.Parallel()

	store := newProposalStore(t)
	ctx := context.Background()

	change := proposal.New(proposal.KindPatch, "docs/guide.md", "docs/guide.md")
	change.Edits = []proposal.LineEdit{
		{StartLine: 3, EndLine: 5, Content: "replacement"},
		{StartLine: 1, EndLine: 1, Content: "new heading"},
	}
	require.NoError(t, store.Put(ctx, change))

	changes, err := store.ForDocument(ctx, "docs/guide.md")
	require.NoError(t, err)
	require.Len(t, changes, 1)
	require.Len(t, changes[0].Edits, 2)
	assert.Equal(t, 3, changes[0].Edits[0].StartLine)
	assert.Equal(t, "new heading", changes[0].Edits[1].Content)
}
