package doctor

import (
	"context"
	"fmt"

	"github.com/hay-kot/redline/internal/core/notify"
	"github.com/hay-kot/redline/internal/core/proposal"
	"github.com/hay-kot/redline/internal/core/review"
)

// StoresCheck reads through the persisted stores and reports what they
// hold. A read failure here usually means a corrupt store file.
type StoresCheck struct {
	sessions      review.Store
	proposals     proposal.Store
	notifications notify.Store
}

// NewStoresCheck creates a new stores check.
func NewStoresCheck(sessions review.Store, proposals proposal.Store, notifications notify.Store) *StoresCheck {
	return &StoresCheck{
		sessions:      sessions,
		proposals:     proposals,
		notifications: notifications,
	}
}

func (c *StoresCheck) Name() string {
	return "Stores"
}

func (c *StoresCheck) Run(ctx context.Context) Result {
	result := Result{Name: c.Name()}

	if sessions, err := c.sessions.List(ctx); err != nil {
		result.Items = append(result.Items, CheckItem{
			Label:  "sessions",
			Status: StatusFail,
			Detail: fmt.Sprintf("unreadable: %v", err),
		})
	} else {
		result.Items = append(result.Items, CheckItem{
			Label:  "sessions",
			Status: StatusPass,
			Detail: fmt.Sprintf("%d open", len(sessions)),
		})
	}

	if byDoc, err := c.proposals.List(ctx); err != nil {
		result.Items = append(result.Items, CheckItem{
			Label:  "proposals",
			Status: StatusFail,
			Detail: fmt.Sprintf("unreadable: %v", err),
		})
	} else {
		total := 0
		for _, changes := range byDoc {
			total += len(changes)
		}
		result.Items = append(result.Items, CheckItem{
			Label:  "proposals",
			Status: StatusPass,
			Detail: fmt.Sprintf("%d pending across %d document(s)", total, len(byDoc)),
		})
	}

	if count, err := c.notifications.Count(ctx); err != nil {
		result.Items = append(result.Items, CheckItem{
			Label:  "notifications",
			Status: StatusFail,
			Detail: fmt.Sprintf("unreadable: %v", err),
		})
	} else {
		result.Items = append(result.Items, CheckItem{
			Label:  "notifications",
			Status: StatusPass,
			Detail: fmt.Sprintf("%d unread", count),
		})
	}

	return result
}
