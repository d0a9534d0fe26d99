package eventbus

import (
	"github.com/hay-kot/redline/internal/core/notify"
	"github.com/hay-kot/redline/internal/core/proposal"
	"github.com/hay-kot/redline/internal/core/review"
)

// Event names, sorted A-Z.
const (
	EventDecisionUndone        Event = "decision.undone"
	EventHunkDecided           Event = "hunk.decided"
	EventNotificationPublished Event = "notification.published"
	EventProposalReceived      Event = "proposal.received"
	EventProposalsDropped      Event = "proposal.dropped"
	EventReviewClosed          Event = "review.closed"
	EventReviewResolved        Event = "review.resolved"
	EventReviewStarted         Event = "review.started"
	EventStoreChanged          Event = "store.changed"
)

// Terminal review outcomes carried by ReviewResolvedPayload.
const (
	OutcomeAccepted  = "accepted"
	OutcomeCompleted = "completed"
	OutcomeReverted  = "reverted"
)

// ReviewStartedPayload is emitted when a review session becomes active.
type ReviewStartedPayload struct {
	Session *review.Session
}

// ReviewClosedPayload is emitted when a session leaves the active state.
type ReviewClosedPayload struct {
	DocumentID string
	SessionID  string
	Reason     string
}

// ReviewResolvedPayload is emitted when a review reaches a terminal
// outcome: completed hunk by hunk, accepted wholesale, or reverted.
type ReviewResolvedPayload struct {
	DocumentID string
	SessionID  string
	Outcome    string
	Decisions  int
}

// HunkDecidedPayload is emitted for each accepted or rejected hunk.
type HunkDecidedPayload struct {
	DocumentID string
	SessionID  string
	HunkID     string
	Kind       review.PatchKind
}

// DecisionUndonePayload is emitted when the newest decision is undone.
type DecisionUndonePayload struct {
	DocumentID string
	SessionID  string
	PatchID    string
	HunkID     string
}

// ProposalReceivedPayload is emitted when a producer registers a change.
type ProposalReceivedPayload struct {
	Change *proposal.ProposedChange
}

// ProposalsDroppedPayload is emitted when pending changes are discarded
// without being reviewed.
type ProposalsDroppedPayload struct {
	DocumentID string
	Count      int
	Reason     string
}

// StoreChangedPayload is emitted when a persisted store file changes on
// disk.
type StoreChangedPayload struct {
	File string
	Op   string
}

// NotificationPublishedPayload carries a user-facing notification.
type NotificationPublishedPayload struct {
	Level   notify.Level
	Message string
}

// PublishReviewStarted publishes a review.started event.
func (bus *EventBus) PublishReviewStarted(p ReviewStartedPayload) {
	bus.send(EventReviewStarted, p)
}

// SubscribeReviewStarted registers a handler for review.started events.
func (bus *EventBus) SubscribeReviewStarted(fn func(ReviewStartedPayload)) {
	bus.subscribe(EventReviewStarted, func(payload any) {
		if p, ok := payload.(ReviewStartedPayload); ok {
			fn(p)
		}
	})
}

// PublishReviewClosed publishes a review.closed event.
func (bus *EventBus) PublishReviewClosed(p ReviewClosedPayload) {
	bus.send(EventReviewClosed, p)
}

// SubscribeReviewClosed registers a handler for review.closed events.
func (bus *EventBus) SubscribeReviewClosed(fn func(ReviewClosedPayload)) {
	bus.subscribe(EventReviewClosed, func(payload any) {
		if p, ok := payload.(ReviewClosedPayload); ok {
			fn(p)
		}
	})
}

// PublishReviewResolved publishes a review.resolved event.
func (bus *EventBus) PublishReviewResolved(p ReviewResolvedPayload) {
	bus.send(EventReviewResolved, p)
}

// SubscribeReviewResolved registers a handler for review.resolved events.
func (bus *EventBus) SubscribeReviewResolved(fn func(ReviewResolvedPayload)) {
	bus.subscribe(EventReviewResolved, func(payload any) {
		if p, ok := payload.(ReviewResolvedPayload); ok {
			fn(p)
		}
	})
}

// PublishHunkDecided publishes a hunk.decided event.
func (bus *EventBus) PublishHunkDecided(p HunkDecidedPayload) {
	bus.send(EventHunkDecided, p)
}

// SubscribeHunkDecided registers a handler for hunk.decided events.
func (bus *EventBus) SubscribeHunkDecided(fn func(HunkDecidedPayload)) {
	bus.subscribe(EventHunkDecided, func(payload any) {
		if p, ok := payload.(HunkDecidedPayload); ok {
			fn(p)
		}
	})
}

// PublishDecisionUndone publishes a decision.undone event.
func (bus *EventBus) PublishDecisionUndone(p DecisionUndonePayload) {
	bus.send(EventDecisionUndone, p)
}

// SubscribeDecisionUndone registers a handler for decision.undone events.
func (bus *EventBus) SubscribeDecisionUndone(fn func(DecisionUndonePayload)) {
	bus.subscribe(EventDecisionUndone, func(payload any) {
		if p, ok := payload.(DecisionUndonePayload); ok {
			fn(p)
		}
	})
}

// PublishProposalReceived publishes a proposal.received event.
func (bus *EventBus) PublishProposalReceived(p ProposalReceivedPayload) {
	bus.send(EventProposalReceived, p)
}

// SubscribeProposalReceived registers a handler for proposal.received events.
func (bus *EventBus) SubscribeProposalReceived(fn func(ProposalReceivedPayload)) {
	bus.subscribe(EventProposalReceived, func(payload any) {
		if p, ok := payload.(ProposalReceivedPayload); ok {
			fn(p)
		}
	})
}

// PublishProposalsDropped publishes a proposal.dropped event.
func (bus *EventBus) PublishProposalsDropped(p ProposalsDroppedPayload) {
	bus.send(EventProposalsDropped, p)
}

// SubscribeProposalsDropped registers a handler for proposal.dropped events.
func (bus *EventBus) SubscribeProposalsDropped(fn func(ProposalsDroppedPayload)) {
	bus.subscribe(EventProposalsDropped, func(payload any) {
		if p, ok := payload.(ProposalsDroppedPayload); ok {
			fn(p)
		}
	})
}

// PublishStoreChanged publishes a store.changed event.
func (bus *EventBus) PublishStoreChanged(p StoreChangedPayload) {
	bus.send(EventStoreChanged, p)
}

// SubscribeStoreChanged registers a handler for store.changed events.
func (bus *EventBus) SubscribeStoreChanged(fn func(StoreChangedPayload)) {
	bus.subscribe(EventStoreChanged, func(payload any) {
		if p, ok := payload.(StoreChangedPayload); ok {
			fn(p)
		}
	})
}

// PublishNotificationPublished publishes a notification.published event.
func (bus *EventBus) PublishNotificationPublished(p NotificationPublishedPayload) {
	bus.send(EventNotificationPublished, p)
}

// SubscribeNotificationPublished registers a handler for notification.published events.
func (bus *EventBus) SubscribeNotificationPublished(fn func(NotificationPublishedPayload)) {
	bus.subscribe(EventNotificationPublished, func(payload any) {
		if p, ok := payload.(NotificationPublishedPayload); ok {
			fn(p)
		}
	})
}
