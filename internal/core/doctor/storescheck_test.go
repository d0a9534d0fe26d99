package doctor_test

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hay-kot/redline/internal/core/doctor"
	"github.com/hay-kot/redline/internal/core/proposal"
	"github.com/hay-kot/redline/internal/core/review"
	"github.com/hay-kot/redline/internal/store/jsonfile"
)

func TestStoresCheck_CountsContents(t *testing.T) {
	dir := t.TempDir()
	sessions := jsonfile.NewSessionStore(filepath.Join(dir, "sessions.json"))
	proposals := jsonfile.NewProposalStore(filepath.Join(dir, "proposals.json"))
	notifications := jsonfile.NewNotificationStore(filepath.Join(dir, "notifications.json"))

	ctx := context.Background()
	require.NoError(t, sessions.Save(ctx, *review.NewSession("doc-1", "doc-1", "baseline")))
	require.NoError(t, proposals.Put(ctx, proposal.New(proposal.KindOverwrite, "doc-1", "doc-1")))
	require.NoError(t, proposals.Put(ctx, proposal.New(proposal.KindPatch, "doc-2", "doc-2")))

	check := doctor.NewStoresCheck(sessions, proposals, notifications)
	result := check.Run(ctx)

	require.Len(t, result.Items, 3)

	assert.Equal(t, "sessions", result.Items[0].Label)
	assert.Equal(t, doctor.StatusPass, result.Items[0].Status)
	assert.Equal(t, "1 open", result.Items[0].Detail)

	assert.Equal(t, "proposals", result.Items[1].Label)
	assert.Equal(t, "2 pending across 2 document(s)", result.Items[1].Detail)

	assert.Equal(t, "notifications", result.Items[2].Label)
	assert.Equal(t, "0 unread", result.Items[2].Detail)
}
