package notify

import (
	"context"
	"encoding/json"

	"github.com/hireloop/hireloop/internal/models"
	"github.com/redis/go-redis/v9"
)

const (
	DefaultStream = "notifications:stream"
	FeedChannel   = "activity:feed"
)

// JobFeedChannel is the pub/sub channel carrying activity for a single job.
func JobFeedChannel(jobID string) string {
	return "activity:job:" + jobID
}

// RedisStreamSink appends notifications to a Redis stream consumed by the
// notification worker pool.
type RedisStreamSink struct {
	rdb    *redis.Client
	stream string
}

func NewRedisStreamSink(rdb *redis.Client, stream string) *RedisStreamSink {
	if stream == "" {
		stream = DefaultStream
	}
	return &RedisStreamSink{rdb: rdb, stream: stream}
}

func (s *RedisStreamSink) Send(ctx context.Context, n models.Notification) error {
	b, err := json.Marshal(n)
	if err != nil {
		return err
	}
	return s.rdb.XAdd(ctx, &redis.XAddArgs{
		Stream: s.stream,
		Values: map[string]any{
			"notification_id": n.ID,
			"recipient_id":    n.RecipientID,
			"payload":         string(b),
		},
	}).Err()
}

// RedisBroadcaster publishes activity entries on the global feed channel and,
// when the entry belongs to a job, on that job's channel.
type RedisBroadcaster struct {
	rdb *redis.Client
}

func NewRedisBroadcaster(rdb *redis.Client) *RedisBroadcaster {
	return &RedisBroadcaster{rdb: rdb}
}

func (b *RedisBroadcaster) Publish(ctx context.Context, e *models.ActivityEntry) error {
	payload, err := json.Marshal(map[string]any{
		"type":     "activity",
		"activity": e,
	})
	if err != nil {
		return err
	}
	if err := b.rdb.Publish(ctx, FeedChannel, payload).Err(); err != nil {
		return err
	}
	if e.JobID != nil && *e.JobID != "" {
		return b.rdb.Publish(ctx, JobFeedChannel(*e.JobID), payload).Err()
	}
	return nil
}
