package mongo

import (
	"context"
	"time"

	"github.com/hireloop/hireloop/internal/models"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

type OutboxRepository interface {
	// Insert returns utils.ErrDuplicate when an event with the same key exists.
	Insert(ctx context.Context, ev *models.OutboxEvent) error
	GetByKey(ctx context.Context, key string) (*models.OutboxEvent, error)
	ListPending(ctx context.Context, createdBefore time.Time, limit int64) ([]models.OutboxEvent, error)
	MarkDone(ctx context.Context, id string, at time.Time) error
	MarkFailed(ctx context.Context, id string, reason string, giveUp bool) error
}

type outboxRepo struct {
	col *mongo.Collection
}

func NewOutboxRepo(db *mongo.Database) OutboxRepository {
	return &outboxRepo{col: db.Collection("outbox")}
}

func (r *outboxRepo) Insert(ctx context.Context, ev *models.OutboxEvent) error {
	if ev.CreatedAt.IsZero() {
		ev.CreatedAt = time.Now().UTC()
	}
	if ev.Status == "" {
		ev.Status = models.OutboxPending
	}
	_, err := r.col.InsertOne(ctx, ev)
	return translate(err)
}

func (r *outboxRepo) GetByKey(ctx context.Context, key string) (*models.OutboxEvent, error) {
	var ev models.OutboxEvent
	if err := r.col.FindOne(ctx, bson.M{"key": key}).Decode(&ev); err != nil {
		return nil, translate(err)
	}
	return &ev, nil
}

func (r *outboxRepo) ListPending(ctx context.Context, createdBefore time.Time, limit int64) ([]models.OutboxEvent, error) {
	if limit <= 0 {
		limit = 100
	}
	cur, err := r.col.Find(ctx,
		bson.M{
			"status":     models.OutboxPending,
			"created_at": bson.M{"$lt": createdBefore.UTC()},
		},
		options.Find().
			SetSort(bson.D{{Key: "created_at", Value: 1}}).
			SetLimit(limit),
	)
	if err != nil {
		return nil, err
	}
	defer cur.Close(ctx)

	out := []models.OutboxEvent{}
	if err := cur.All(ctx, &out); err != nil {
		return nil, err
	}
	return out, nil
}

func (r *outboxRepo) MarkDone(ctx context.Context, id string, at time.Time) error {
	res, err := r.col.UpdateOne(ctx,
		bson.M{"_id": id},
		bson.M{"$set": bson.M{"status": models.OutboxDone, "processed_at": at.UTC()}},
	)
	return matchedOne(res, err)
}

func (r *outboxRepo) MarkFailed(ctx context.Context, id string, reason string, giveUp bool) error {
	set := bson.M{"last_error": reason}
	if giveUp {
		set["status"] = models.OutboxFailed
	}
	res, err := r.col.UpdateOne(ctx,
		bson.M{"_id": id},
		bson.M{"$set": set, "$inc": bson.M{"attempts": 1}},
	)
	return matchedOne(res, err)
}
