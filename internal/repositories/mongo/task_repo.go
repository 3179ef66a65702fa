package mongo

import (
	"context"
	"time"

	"github.com/hireloop/hireloop/internal/models"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

type TaskRepository interface {
	Create(ctx context.Context, t *models.Task) error
	GetByID(ctx context.Context, id string) (*models.Task, error)
	ListByAssignee(ctx context.Context, assigneeID string, includeClosed bool) ([]models.Task, error)
	ListByRelated(ctx context.Context, typ models.TargetType, id string) ([]models.Task, error)
	SetStatus(ctx context.Context, id string, status models.TaskStatus, completedAt *time.Time, at time.Time) error
	Reassign(ctx context.Context, id, assigneeID string, at time.Time) error
}

type taskRepo struct {
	col *mongo.Collection
}

func NewTaskRepo(db *mongo.Database) TaskRepository {
	return &taskRepo{col: db.Collection("tasks")}
}

func (r *taskRepo) Create(ctx context.Context, t *models.Task) error {
	if t.CreatedAt.IsZero() {
		t.CreatedAt = time.Now().UTC()
	}
	if t.UpdatedAt.IsZero() {
		t.UpdatedAt = t.CreatedAt
	}
	_, err := r.col.InsertOne(ctx, t)
	return translate(err)
}

func (r *taskRepo) GetByID(ctx context.Context, id string) (*models.Task, error) {
	var t models.Task
	if err := r.col.FindOne(ctx, bson.M{"_id": id}).Decode(&t); err != nil {
		return nil, translate(err)
	}
	return &t, nil
}

func (r *taskRepo) find(ctx context.Context, q bson.M) ([]models.Task, error) {
	cur, err := r.col.Find(ctx, q, options.Find().SetSort(bson.D{
		{Key: "due_date", Value: 1},
		{Key: "created_at", Value: 1},
	}))
	if err != nil {
		return nil, err
	}
	defer cur.Close(ctx)

	out := []models.Task{}
	if err := cur.All(ctx, &out); err != nil {
		return nil, err
	}
	return out, nil
}

func (r *taskRepo) ListByAssignee(ctx context.Context, assigneeID string, includeClosed bool) ([]models.Task, error) {
	q := bson.M{"assignee_id": assigneeID}
	if !includeClosed {
		q["status"] = bson.M{"$nin": []models.TaskStatus{models.TaskDone, models.TaskCancelled}}
	}
	return r.find(ctx, q)
}

func (r *taskRepo) ListByRelated(ctx context.Context, typ models.TargetType, id string) ([]models.Task, error) {
	return r.find(ctx, bson.M{"related_to.type": typ, "related_to.id": id})
}

func (r *taskRepo) SetStatus(ctx context.Context, id string, status models.TaskStatus, completedAt *time.Time, at time.Time) error {
	update := bson.M{"$set": bson.M{"status": status, "updated_at": at.UTC()}}
	if completedAt != nil {
		update["$set"].(bson.M)["completed_at"] = completedAt.UTC()
	} else {
		update["$unset"] = bson.M{"completed_at": ""}
	}
	res, err := r.col.UpdateOne(ctx, bson.M{"_id": id}, update)
	return matchedOne(res, err)
}

func (r *taskRepo) Reassign(ctx context.Context, id, assigneeID string, at time.Time) error {
	res, err := r.col.UpdateOne(ctx,
		bson.M{"_id": id},
		bson.M{"$set": bson.M{"assignee_id": assigneeID, "updated_at": at.UTC()}},
	)
	return matchedOne(res, err)
}
