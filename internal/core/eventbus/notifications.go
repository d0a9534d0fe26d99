package eventbus

import (
	"fmt"

	"github.com/hay-kot/redline/internal/core/notify"
)

// NotificationRouter maps domain events to user-facing notifications.
type NotificationRouter struct {
	bus *EventBus
}

// NewNotificationRouter constructs a router for event-to-notification mappings.
func NewNotificationRouter(bus *EventBus) *NotificationRouter {
	return &NotificationRouter{bus: bus}
}

// Register subscribes all supported event mappings.
func (r *NotificationRouter) Register() {
	if r == nil || r.bus == nil {
		return
	}

	r.bus.SubscribeReviewStarted(func(p ReviewStartedPayload) {
		if p.Session == nil || !p.Session.Recovered {
			return
		}
		r.notifyf(notify.LevelWarning, "review for %s rebuilt from proposal content", p.Session.DocumentID)
	})

	r.bus.SubscribeReviewResolved(func(p ReviewResolvedPayload) {
		r.notifyf(notify.LevelInfo, "review of %s %s (%d decisions)", p.DocumentID, p.Outcome, p.Decisions)
	})

	r.bus.SubscribeProposalsDropped(func(p ProposalsDroppedPayload) {
		if p.Count == 0 {
			return
		}
		r.notifyf(notify.LevelWarning, "dropped %d pending change(s) for %s: %s", p.Count, p.DocumentID, p.Reason)
	})
}

func (r *NotificationRouter) notifyf(level notify.Level, format string, args ...any) {
	r.bus.PublishNotificationPublished(NotificationPublishedPayload{
		Level:   level,
		Message: fmt.Sprintf(format, args...),
	})
}
