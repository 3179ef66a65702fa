package mongo

import (
	"context"
	"time"

	"github.com/hireloop/hireloop/internal/models"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

type InterviewRepository interface {
	Create(ctx context.Context, iv *models.Interview) error
	GetByID(ctx context.Context, id string) (*models.Interview, error)
	ListByCandidate(ctx context.Context, candidateID string) ([]models.Interview, error)
	// ListScheduledOverlapping returns scheduled interviews intersecting [start, end).
	ListScheduledOverlapping(ctx context.Context, start, end time.Time) ([]models.Interview, error)
	ListUpcoming(ctx context.Context, from time.Time, limit int64) ([]models.Interview, error)
	ListAll(ctx context.Context) ([]models.Interview, error)
	Reschedule(ctx context.Context, id string, start, end time.Time, durationMinutes int, at time.Time) error
	SetStatus(ctx context.Context, id string, status models.InterviewStatus, at time.Time) error
	SetFeedback(ctx context.Context, id string, feedback string, rating int, at time.Time) error
}

type interviewRepo struct {
	col *mongo.Collection
}

func NewInterviewRepo(db *mongo.Database) InterviewRepository {
	return &interviewRepo{col: db.Collection("interviews")}
}

func (r *interviewRepo) Create(ctx context.Context, iv *models.Interview) error {
	if iv.CreatedAt.IsZero() {
		iv.CreatedAt = time.Now().UTC()
	}
	if iv.UpdatedAt.IsZero() {
		iv.UpdatedAt = iv.CreatedAt
	}
	_, err := r.col.InsertOne(ctx, iv)
	return translate(err)
}

func (r *interviewRepo) GetByID(ctx context.Context, id string) (*models.Interview, error) {
	var iv models.Interview
	if err := r.col.FindOne(ctx, bson.M{"_id": id}).Decode(&iv); err != nil {
		return nil, translate(err)
	}
	return &iv, nil
}

func (r *interviewRepo) find(ctx context.Context, q bson.M, opts *options.FindOptions) ([]models.Interview, error) {
	cur, err := r.col.Find(ctx, q, opts)
	if err != nil {
		return nil, err
	}
	defer cur.Close(ctx)

	out := []models.Interview{}
	if err := cur.All(ctx, &out); err != nil {
		return nil, err
	}
	return out, nil
}

func (r *interviewRepo) ListByCandidate(ctx context.Context, candidateID string) ([]models.Interview, error) {
	return r.find(ctx,
		bson.M{"candidate_id": candidateID},
		options.Find().SetSort(bson.D{{Key: "scheduled_at", Value: 1}}),
	)
}

func (r *interviewRepo) ListScheduledOverlapping(ctx context.Context, start, end time.Time) ([]models.Interview, error) {
	return r.find(ctx,
		bson.M{
			"status":       models.InterviewScheduled,
			"scheduled_at": bson.M{"$lt": end.UTC()},
			"ends_at":      bson.M{"$gt": start.UTC()},
		},
		options.Find().SetSort(bson.D{{Key: "scheduled_at", Value: 1}}),
	)
}

func (r *interviewRepo) ListUpcoming(ctx context.Context, from time.Time, limit int64) ([]models.Interview, error) {
	if limit <= 0 {
		limit = 50
	}
	return r.find(ctx,
		bson.M{
			"status":       models.InterviewScheduled,
			"scheduled_at": bson.M{"$gte": from.UTC()},
		},
		options.Find().
			SetSort(bson.D{{Key: "scheduled_at", Value: 1}}).
			SetLimit(limit),
	)
}

func (r *interviewRepo) ListAll(ctx context.Context) ([]models.Interview, error) {
	return r.find(ctx, bson.M{}, options.Find())
}

func (r *interviewRepo) Reschedule(ctx context.Context, id string, start, end time.Time, durationMinutes int, at time.Time) error {
	res, err := r.col.UpdateOne(ctx,
		bson.M{"_id": id},
		bson.M{"$set": bson.M{
			"scheduled_at":     start.UTC(),
			"ends_at":          end.UTC(),
			"duration_minutes": durationMinutes,
			"updated_at":       at.UTC(),
		}},
	)
	return matchedOne(res, err)
}

func (r *interviewRepo) SetStatus(ctx context.Context, id string, status models.InterviewStatus, at time.Time) error {
	res, err := r.col.UpdateOne(ctx,
		bson.M{"_id": id},
		bson.M{"$set": bson.M{"status": status, "updated_at": at.UTC()}},
	)
	return matchedOne(res, err)
}

func (r *interviewRepo) SetFeedback(ctx context.Context, id string, feedback string, rating int, at time.Time) error {
	res, err := r.col.UpdateOne(ctx,
		bson.M{"_id": id},
		bson.M{"$set": bson.M{
			"status":     models.InterviewCompleted,
			"feedback":   feedback,
			"rating":     rating,
			"updated_at": at.UTC(),
		}},
	)
	return matchedOne(res, err)
}
