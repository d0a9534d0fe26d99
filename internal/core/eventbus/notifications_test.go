package eventbus_test

import (
	"testing"
	"time"

	"github.com/hay-kot/redline/internal/core/eventbus"
	"github.com/hay-kot/redline/internal/core/eventbus/testbus"
	"github.com/hay-kot/redline/internal/core/notify"
	"github.com/hay-kot/redline/internal/core/review"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func latestNotificationPayload(tb *testbus.Bus, t *testing.T) eventbus.NotificationPublishedPayload {
	t.Helper()
	tb.AssertPublished(t, eventbus.EventNotificationPublished)

	var payload eventbus.NotificationPublishedPayload
	for _, e := range tb.Events() {
		if e.Event != eventbus.EventNotificationPublished {
			continue
		}
		p, ok := e.Payload.(eventbus.NotificationPublishedPayload)
		require.True(t, ok)
		payload = p
	}

	return payload
}

func TestNotificationRouter_ReviewResolved(t *testing.T) {
	tb := testbus.New(t)
	eventbus.NewNotificationRouter(tb.EventBus).Register()

	tb.PublishReviewResolved(eventbus.ReviewResolvedPayload{
		DocumentID: "notes/doc.md",
		SessionID:  "sess-1",
		Outcome:    eventbus.OutcomeCompleted,
		Decisions:  3,
	})
	p := latestNotificationPayload(tb, t)

	assert.Equal(t, notify.LevelInfo, p.Level)
	assert.Contains(t, p.Message, "notes/doc.md")
	assert.Contains(t, p.Message, eventbus.OutcomeCompleted)
}

func TestNotificationRouter_RecoveredSessionWarns(t *testing.T) {
	tb := testbus.New(t)
	eventbus.NewNotificationRouter(tb.EventBus).Register()

	tb.PublishReviewStarted(eventbus.ReviewStartedPayload{
		Session: &review.Session{ID: "sess-1", DocumentID: "doc-1", Recovered: true},
	})
	p := latestNotificationPayload(tb, t)

	assert.Equal(t, notify.LevelWarning, p.Level)
	assert.Contains(t, p.Message, "doc-1")
}

func TestNotificationRouter_NormalStartIsQuiet(t *testing.T) {
	tb := testbus.New(t)
	eventbus.NewNotificationRouter(tb.EventBus).Register()

	tb.PublishReviewStarted(eventbus.ReviewStartedPayload{
		Session: &review.Session{ID: "sess-1", DocumentID: "doc-1"},
	})

	tb.AssertNotPublished(t, eventbus.EventNotificationPublished, 50*time.Millisecond)
}

func TestNotificationRouter_ProposalsDropped(t *testing.T) {
	tb := testbus.New(t)
	eventbus.NewNotificationRouter(tb.EventBus).Register()

	tb.PublishProposalsDropped(eventbus.ProposalsDroppedPayload{
		DocumentID: "doc-1",
		Count:      2,
		Reason:     "document switch",
	})
	p := latestNotificationPayload(tb, t)

	assert.Equal(t, notify.LevelWarning, p.Level)
	assert.Contains(t, p.Message, "doc-1")
	assert.Contains(t, p.Message, "document switch")
}

func TestNotificationRouter_ZeroDropsAreQuiet(t *testing.T) {
	tb := testbus.New(t)
	eventbus.NewNotificationRouter(tb.EventBus).Register()

	tb.PublishProposalsDropped(eventbus.ProposalsDroppedPayload{DocumentID: "doc-1", Count: 0})

	tb.AssertNotPublished(t, eventbus.EventNotificationPublished, 50*time.Millisecond)
}
