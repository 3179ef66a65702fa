package workers

import (
	"context"
	"encoding/json"
	"errors"
	"strconv"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"

	"github.com/hireloop/hireloop/internal/models"
	"github.com/hireloop/hireloop/internal/notify"
)

type Dispatcher interface {
	Dispatch(ctx context.Context, n models.Notification) error
}

// NotificationWorkerPool drains the notification stream with a consumer group.
// A message is acked once the notification is stored; failed messages stay
// pending and are reclaimed after ClaimIdle.
type NotificationWorkerPool struct {
	Redis      *redis.Client
	Dispatcher Dispatcher
	NumWorkers int

	Logger *logrus.Logger

	Stream         string
	Group          string
	ConsumerPrefix string
	ClaimIdle      time.Duration
}

func (p *NotificationWorkerPool) Start(ctx context.Context) error {
	if p.Redis == nil || p.Dispatcher == nil {
		return errors.New("NotificationWorkerPool missing dependency: Redis/Dispatcher must be set")
	}
	if p.Stream == "" {
		p.Stream = notify.DefaultStream
	}
	if p.Group == "" {
		p.Group = "notification-workers"
	}
	if p.ConsumerPrefix == "" {
		p.ConsumerPrefix = "c"
	}
	if p.NumWorkers <= 0 {
		p.NumWorkers = 3
	}
	if p.ClaimIdle <= 0 {
		p.ClaimIdle = time.Minute
	}
	if p.Logger == nil {
		p.Logger = logrus.New()
	}

	_ = p.Redis.XGroupCreateMkStream(ctx, p.Stream, p.Group, "0").Err() // ignore BUSYGROUP

	for i := 0; i < p.NumWorkers; i++ {
		consumer := p.ConsumerPrefix + "-" + strconv.Itoa(i+1)
		go p.runConsumer(ctx, consumer, i == 0)
	}
	return nil
}

func (p *NotificationWorkerPool) runConsumer(ctx context.Context, consumer string, reclaims bool) {
	lastClaim := time.Time{}
	for {
		select {
		case <-ctx.Done():
			return
		default:
		}

		if reclaims && time.Since(lastClaim) >= p.ClaimIdle {
			p.reclaim(ctx, consumer)
			lastClaim = time.Now()
		}

		res, err := p.Redis.XReadGroup(ctx, &redis.XReadGroupArgs{
			Group:    p.Group,
			Consumer: consumer,
			Streams:  []string{p.Stream, ">"},
			Count:    10,
			Block:    5 * time.Second,
		}).Result()

		if err != nil {
			if err == redis.Nil {
				continue
			}
			time.Sleep(500 * time.Millisecond)
			continue
		}

		for _, stream := range res {
			for _, msg := range stream.Messages {
				p.process(ctx, msg)
			}
		}
	}
}

func (p *NotificationWorkerPool) reclaim(ctx context.Context, consumer string) {
	msgs, _, err := p.Redis.XAutoClaim(ctx, &redis.XAutoClaimArgs{
		Stream:   p.Stream,
		Group:    p.Group,
		Consumer: consumer,
		MinIdle:  p.ClaimIdle,
		Start:    "0-0",
		Count:    50,
	}).Result()
	if err != nil {
		if err != redis.Nil {
			p.Logger.WithError(err).Warn("notification reclaim failed")
		}
		return
	}
	for _, msg := range msgs {
		p.process(ctx, msg)
	}
}

func (p *NotificationWorkerPool) process(ctx context.Context, msg redis.XMessage) {
	if p.handleMsg(ctx, msg) {
		_ = p.Redis.XAck(ctx, p.Stream, p.Group, msg.ID).Err()
	}
}

// handleMsg reports whether the message is finished with, either stored or
// unreadable. A false result leaves it pending for a retry.
func (p *NotificationWorkerPool) handleMsg(ctx context.Context, msg redis.XMessage) bool {
	payload, _ := msg.Values["payload"].(string)
	log := p.Logger.WithField("redis_id", msg.ID)

	var n models.Notification
	if err := json.Unmarshal([]byte(payload), &n); err != nil || n.ID == "" || n.RecipientID == "" {
		log.WithError(err).Warn("dropping malformed notification message")
		return true
	}

	log = log.WithFields(logrus.Fields{
		"notification_id": n.ID,
		"recipient_id":    n.RecipientID,
	})
	if err := p.Dispatcher.Dispatch(ctx, n); err != nil {
		log.WithError(err).Error("notification dispatch failed")
		return false
	}
	log.Debug("notification dispatched")
	return true
}
