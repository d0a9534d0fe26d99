package jsonfile_test

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/hay-kot/redline/internal/core/notify"
	"github.com/hay-kot/redline/internal/store/jsonfile"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newNotificationStore(t *testing.T) (*jsonfile.NotificationStore, string) {
	t.Helper()
	path := filepath.Join(t.TempDir(), "notifications.json")
	return jsonfile.NewNotificationStore(path), path
}

func TestNotificationStore_SaveAssignsSequentialIDs(t *testing.T) {
	t.Parallel()

	store, _ := newNotificationStore(t)
	ctx := context.Background()

	for i, msg := range []string{"first", "second", "third"} {
		id, err := store.Save(ctx, notify.Notification{
			Level:     notify.LevelInfo,
			Message:   msg,
			CreatedAt: time.Now().UTC(),
		})
		require.NoError(t, err)
		assert.Equal(t, int64(i+1), id)
	}

	notifications, err := store.List(ctx)
	require.NoError(t, err)
	require.Len(t, notifications, 3)

	// Oldest first
	assert.Equal(t, "first", notifications[0].Message)
	assert.Equal(t, "third", notifications[2].Message)
}

func TestNotificationStore_IDsSurviveClear(t *testing.T) {
	t.Parallel()

	store, _ := newNotificationStore(t)
	ctx := context.Background()

	_, err := store.Save(ctx, notify.Notification{Level: notify.LevelInfo, Message: "before"})
	require.NoError(t, err)
	require.NoError(t, store.Clear(ctx))

	id, err := store.Save(ctx, notify.Notification{Level: notify.LevelWarning, Message: "after"})
	require.NoError(t, err)
	assert.Equal(t, int64(2), id, "id counter continues past cleared entries")
}

func TestNotificationStore_Clear(t *testing.T) {
	t.Parallel()

	store, _ := newNotificationStore(t)
	ctx := context.Background()

	_, err := store.Save(ctx, notify.Notification{Level: notify.LevelError, Message: "boom"})
	require.NoError(t, err)

	require.NoError(t, store.Clear(ctx))

	notifications, err := store.List(ctx)
	require.NoError(t, err)
	assert.Empty(t, notifications)

	count, err := store.Count(ctx)
	require.NoError(t, err)
	assert.Zero(t, count)
}

func TestNotificationStore_Count(t *testing.T) {
	t.Parallel()

	store, _ := newNotificationStore(t)
	ctx := context.Background()

	count, err := store.Count(ctx)
	require.NoError(t, err)
	assert.Zero(t, count)

	_, err = store.Save(ctx, notify.Notification{Level: notify.LevelInfo, Message: "one"})
	require.NoError(t, err)
	_, err = store.Save(ctx, notify.Notification{Level: notify.LevelInfo, Message: "two"})
	require.NoError(t, err)

	count, err = store.Count(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(2), count)
}

func TestNotificationStore_PersistsAcrossReopen(t *testing.T) {
	t.Parallel()

	store, path := newNotificationStore(t)
	ctx := context.Background()

	_, err := store.Save(ctx, notify.Notification{Level: notify.LevelWarning, Message: "kept"})
	require.NoError(t, err)

	reopened := jsonfile.NewNotificationStore(path)
	notifications, err := reopened.List(ctx)
	require.NoError(t, err)
	require.Len(t, notifications, 1)
	assert.Equal(t, "kept", notifications[0].Message)
	assert.Equal(t, notify.LevelWarning, notifications[0].Level)

	id, err := reopened.Save(ctx, notify.Notification{Level: notify.LevelInfo, Message: "next"})
	require.NoError(t, err)
	assert.Equal(t, int64(2), id)
}
