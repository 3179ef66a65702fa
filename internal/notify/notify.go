// Package notify carries activity side effects out of the request path:
// per-recipient notifications (Sink) and live activity broadcasts (Publisher).
package notify

import (
	"context"
	"sync"

	"github.com/hireloop/hireloop/internal/models"
)

// Sink accepts notifications for delivery. Implementations do not retry.
type Sink interface {
	Send(ctx context.Context, n models.Notification) error
}

// Publisher announces a freshly written activity entry to live subscribers.
type Publisher interface {
	Publish(ctx context.Context, e *models.ActivityEntry) error
}

// MemorySink keeps notifications in process. Used in tests and single-node dev.
type MemorySink struct {
	mu    sync.Mutex
	items []models.Notification
}

func NewMemorySink() *MemorySink {
	return &MemorySink{}
}

func (s *MemorySink) Send(_ context.Context, n models.Notification) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.items = append(s.items, n)
	return nil
}

func (s *MemorySink) Notifications() []models.Notification {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]models.Notification, len(s.items))
	copy(out, s.items)
	return out
}

func (s *MemorySink) For(recipientID string) []models.Notification {
	var out []models.Notification
	for _, n := range s.Notifications() {
		if n.RecipientID == recipientID {
			out = append(out, n)
		}
	}
	return out
}
