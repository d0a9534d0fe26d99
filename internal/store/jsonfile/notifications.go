package jsonfile

import (
	"context"
	"sync"

	"github.com/hay-kot/redline/internal/core/notify"
)

// notificationsFile is the root JSON structure stored on disk.
type notificationsFile struct {
	NextID        int64                 `json:"next_id"`
	Notifications []notify.Notification `json:"notifications"`
}

// NotificationStore implements notify.Store using a JSON file for
// persistence. IDs are assigned from a counter stored alongside the
// notifications so they stay unique across clears.
type NotificationStore struct {
	path string
	mu   sync.RWMutex
}

var _ notify.Store = (*NotificationStore)(nil)

// NewNotificationStore creates a new JSON file notification store at the
// given path.
func NewNotificationStore(path string) *NotificationStore {
	return &NotificationStore{path: path}
}

// Save stores the notification and returns its assigned id.
func (s *NotificationStore) Save(ctx context.Context, n notify.Notification) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	file, err := load[notificationsFile](s.path)
	if err != nil {
		return 0, err
	}

	if file.NextID == 0 {
		file.NextID = 1
	}
	n.ID = file.NextID
	file.NextID++
	file.Notifications = append(file.Notifications, n)

	if err := save(s.path, file); err != nil {
		return 0, err
	}

	return n.ID, nil
}

// List returns all notifications, oldest first.
func (s *NotificationStore) List(ctx context.Context) ([]notify.Notification, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	file, err := load[notificationsFile](s.path)
	if err != nil {
		return nil, err
	}

	if file.Notifications == nil {
		return []notify.Notification{}, nil
	}

	return file.Notifications, nil
}

// Clear removes every stored notification. The id counter is preserved.
func (s *NotificationStore) Clear(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	file, err := load[notificationsFile](s.path)
	if err != nil {
		return err
	}

	file.Notifications = []notify.Notification{}

	return save(s.path, file)
}

// Count returns the number of stored notifications.
func (s *NotificationStore) Count(ctx context.Context) (int64, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	file, err := load[notificationsFile](s.path)
	if err != nil {
		return 0, err
	}

	return int64(len(file.Notifications)), nil
}
