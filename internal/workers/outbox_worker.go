package workers

import (
	"context"
	"errors"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/hireloop/hireloop/internal/models"
	mongorepo "github.com/hireloop/hireloop/internal/repositories/mongo"
)

type OutboxHandler func(ctx context.Context, ev models.OutboxEvent) error

// OutboxWorker replays pending outbox events left behind by an interrupted
// request. Handlers must tolerate events that already partly ran.
type OutboxWorker struct {
	Outbox   mongorepo.OutboxRepository
	Handlers map[string]OutboxHandler
	Logger   *logrus.Logger

	Interval time.Duration
	// Grace keeps the worker away from events whose request is still in flight.
	Grace       time.Duration
	MaxAttempts int
	BatchSize   int64

	now func() time.Time
}

func (w *OutboxWorker) defaults() {
	if w.Interval <= 0 {
		w.Interval = 10 * time.Second
	}
	if w.Grace <= 0 {
		w.Grace = 30 * time.Second
	}
	if w.MaxAttempts <= 0 {
		w.MaxAttempts = 10
	}
	if w.BatchSize <= 0 {
		w.BatchSize = 50
	}
	if w.Logger == nil {
		w.Logger = logrus.New()
	}
	if w.now == nil {
		w.now = func() time.Time { return time.Now().UTC() }
	}
}

func (w *OutboxWorker) Start(ctx context.Context) error {
	if w.Outbox == nil || len(w.Handlers) == 0 {
		return errors.New("OutboxWorker missing dependency: Outbox/Handlers must be set")
	}
	w.defaults()

	go func() {
		t := time.NewTicker(w.Interval)
		defer t.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case <-t.C:
				if _, err := w.RunOnce(ctx); err != nil {
					w.Logger.WithError(err).Warn("outbox sweep failed")
				}
			}
		}
	}()
	return nil
}

// RunOnce processes one batch and returns how many events completed.
func (w *OutboxWorker) RunOnce(ctx context.Context) (int, error) {
	w.defaults()

	events, err := w.Outbox.ListPending(ctx, w.now().Add(-w.Grace), w.BatchSize)
	if err != nil {
		return 0, err
	}

	done := 0
	for _, ev := range events {
		log := w.Logger.WithFields(logrus.Fields{
			"outbox_key": ev.Key,
			"attempts":   ev.Attempts,
		})

		h, ok := w.Handlers[ev.Kind]
		if !ok {
			log.Error("no handler for outbox event kind")
			_ = w.Outbox.MarkFailed(ctx, ev.ID, "no handler for "+ev.Kind, true)
			continue
		}
		if err := h(ctx, ev); err != nil {
			giveUp := ev.Attempts+1 >= w.MaxAttempts
			log.WithError(err).WithField("give_up", giveUp).Warn("outbox event failed")
			_ = w.Outbox.MarkFailed(ctx, ev.ID, err.Error(), giveUp)
			continue
		}
		if err := w.Outbox.MarkDone(ctx, ev.ID, w.now()); err != nil {
			log.WithError(err).Warn("outbox event not marked done")
			continue
		}
		done++
	}
	return done, nil
}
