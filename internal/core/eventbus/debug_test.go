package eventbus_test

import (
	"testing"

	"github.com/hay-kot/redline/internal/core/eventbus"
	"github.com/hay-kot/redline/internal/core/eventbus/testbus"
	"github.com/hay-kot/redline/internal/core/review"
	"github.com/rs/zerolog"
)

func TestRegisterDebugLogger(t *testing.T) {
	tb := testbus.New(t)

	// Register with a nop logger — verifies no panic.
	eventbus.RegisterDebugLogger(tb.EventBus, zerolog.Nop())

	// Publish a few events to exercise all subscriber paths.
	tb.PublishReviewStarted(eventbus.ReviewStartedPayload{
		Session: &review.Session{ID: "test", DocumentID: "doc-1"},
	})
	tb.PublishProposalsDropped(eventbus.ProposalsDroppedPayload{DocumentID: "doc-1", Count: 1, Reason: "switch"})
	tb.PublishReviewClosed(eventbus.ReviewClosedPayload{DocumentID: "doc-1", Reason: "dismissed"})

	// Wait for last event to confirm all dispatched without panic.
	tb.AssertPublished(t, eventbus.EventReviewClosed)
}
