package workers

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hireloop/hireloop/internal/logger"
	"github.com/hireloop/hireloop/internal/models"
	"github.com/hireloop/hireloop/internal/utils"
)

type memOutbox struct {
	mu     sync.Mutex
	events map[string]*models.OutboxEvent
}

func newMemOutbox(evs ...models.OutboxEvent) *memOutbox {
	m := &memOutbox{events: map[string]*models.OutboxEvent{}}
	for i := range evs {
		ev := evs[i]
		m.events[ev.ID] = &ev
	}
	return m
}

func (m *memOutbox) Insert(_ context.Context, ev *models.OutboxEvent) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	cp := *ev
	m.events[ev.ID] = &cp
	return nil
}

func (m *memOutbox) GetByKey(_ context.Context, key string) (*models.OutboxEvent, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, ev := range m.events {
		if ev.Key == key {
			cp := *ev
			return &cp, nil
		}
	}
	return nil, utils.ErrNotFound
}

func (m *memOutbox) ListPending(_ context.Context, before time.Time, _ int64) ([]models.OutboxEvent, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []models.OutboxEvent
	for _, ev := range m.events {
		if ev.Status == models.OutboxPending && ev.CreatedAt.Before(before) {
			out = append(out, *ev)
		}
	}
	return out, nil
}

func (m *memOutbox) MarkDone(_ context.Context, id string, at time.Time) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.events[id].Status = models.OutboxDone
	m.events[id].ProcessedAt = &at
	return nil
}

func (m *memOutbox) MarkFailed(_ context.Context, id, reason string, giveUp bool) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	ev := m.events[id]
	ev.Attempts++
	ev.LastError = reason
	if giveUp {
		ev.Status = models.OutboxFailed
	}
	return nil
}

func (m *memOutbox) get(id string) models.OutboxEvent {
	m.mu.Lock()
	defer m.mu.Unlock()
	return *m.events[id]
}

func TestOutboxWorkerRunOnce(t *testing.T) {
	now := time.Date(2030, 5, 1, 12, 0, 0, 0, time.UTC)
	old := now.Add(-time.Hour)

	box := newMemOutbox(
		models.OutboxEvent{ID: "ok", Kind: models.OutboxOfferSent, Status: models.OutboxPending, CreatedAt: old},
		models.OutboxEvent{ID: "flaky", Kind: models.OutboxOfferAccepted, Status: models.OutboxPending, CreatedAt: old, Attempts: 8},
		models.OutboxEvent{ID: "fresh", Kind: models.OutboxOfferSent, Status: models.OutboxPending, CreatedAt: now},
		models.OutboxEvent{ID: "odd", Kind: "mystery", Status: models.OutboxPending, CreatedAt: old},
	)

	var handled []string
	w := &OutboxWorker{
		Outbox: box,
		Handlers: map[string]OutboxHandler{
			models.OutboxOfferSent: func(_ context.Context, ev models.OutboxEvent) error {
				handled = append(handled, ev.ID)
				return nil
			},
			models.OutboxOfferAccepted: func(context.Context, models.OutboxEvent) error {
				return errors.New("candidate store unavailable")
			},
		},
		Logger:      logger.Quiet(),
		MaxAttempts: 10,
		now:         func() time.Time { return now },
	}

	done, err := w.RunOnce(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 1, done)
	assert.Equal(t, []string{"ok"}, handled)

	assert.Equal(t, models.OutboxDone, box.get("ok").Status)
	assert.Equal(t, models.OutboxPending, box.get("fresh").Status)
	assert.Equal(t, models.OutboxFailed, box.get("odd").Status)

	flaky := box.get("flaky")
	assert.Equal(t, 9, flaky.Attempts)
	assert.Equal(t, models.OutboxPending, flaky.Status)
	assert.Equal(t, "candidate store unavailable", flaky.LastError)

	_, err = w.RunOnce(context.Background())
	require.NoError(t, err)
	assert.Equal(t, models.OutboxFailed, box.get("flaky").Status)
}
