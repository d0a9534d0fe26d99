// Package notify defines user-facing notifications produced by the
// event-to-notification router and surfaced by the CLI.
package notify

import (
	"context"
	"time"
)

// Level represents the severity of a notification.
type Level string

const (
	LevelInfo    Level = "info"
	LevelWarning Level = "warning"
	LevelError   Level = "error"
)

// Notification represents a single notification event.
type Notification struct {
	ID        int64     `json:"id"`
	Level     Level     `json:"level"`
	Message   string    `json:"message"`
	CreatedAt time.Time `json:"created_at"`
}

// Store persists notifications to durable storage.
type Store interface {
	// Save stores the notification and returns its assigned id.
	Save(ctx context.Context, n Notification) (int64, error)
	// List returns all notifications, oldest first.
	List(ctx context.Context) ([]Notification, error)
	// Clear removes every stored notification.
	Clear(ctx context.Context) error
	// Count returns the number of stored notifications.
	Count(ctx context.Context) (int64, error)
}
