package mongo

import (
	"context"
	"time"

	"github.com/hireloop/hireloop/internal/models"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

type JobFilter struct {
	Status     models.JobStatus
	Department string
}

type JobRepository interface {
	Create(ctx context.Context, j *models.Job) error
	GetByID(ctx context.Context, id string) (*models.Job, error)
	List(ctx context.Context, f JobFilter) ([]models.Job, error)
	Replace(ctx context.Context, j *models.Job) error
	SetStatus(ctx context.Context, id string, status models.JobStatus, at time.Time) error
	IncrementApplicants(ctx context.Context, id string, delta int64) error
	AddTeamMember(ctx context.Context, id string, a models.HiringAssignment) error
	RemoveTeamMember(ctx context.Context, id, memberID string) error
}

type jobRepo struct {
	col *mongo.Collection
}

func NewJobRepo(db *mongo.Database) JobRepository {
	return &jobRepo{col: db.Collection("jobs")}
}

func (r *jobRepo) Create(ctx context.Context, j *models.Job) error {
	if j.CreatedAt.IsZero() {
		j.CreatedAt = time.Now().UTC()
	}
	if j.UpdatedAt.IsZero() {
		j.UpdatedAt = j.CreatedAt
	}
	_, err := r.col.InsertOne(ctx, j)
	return translate(err)
}

func (r *jobRepo) GetByID(ctx context.Context, id string) (*models.Job, error) {
	var j models.Job
	if err := r.col.FindOne(ctx, bson.M{"_id": id}).Decode(&j); err != nil {
		return nil, translate(err)
	}
	return &j, nil
}

func (r *jobRepo) List(ctx context.Context, f JobFilter) ([]models.Job, error) {
	q := bson.M{}
	if f.Status != "" {
		q["status"] = f.Status
	}
	if f.Department != "" {
		q["department"] = f.Department
	}

	cur, err := r.col.Find(ctx, q, options.Find().SetSort(bson.D{{Key: "created_at", Value: -1}}))
	if err != nil {
		return nil, err
	}
	defer cur.Close(ctx)

	out := []models.Job{}
	if err := cur.All(ctx, &out); err != nil {
		return nil, err
	}
	return out, nil
}

func (r *jobRepo) Replace(ctx context.Context, j *models.Job) error {
	res, err := r.col.ReplaceOne(ctx, bson.M{"_id": j.ID}, j)
	if err != nil {
		return translate(err)
	}
	if res.MatchedCount == 0 {
		return translate(mongo.ErrNoDocuments)
	}
	return nil
}

func (r *jobRepo) SetStatus(ctx context.Context, id string, status models.JobStatus, at time.Time) error {
	res, err := r.col.UpdateOne(ctx,
		bson.M{"_id": id},
		bson.M{"$set": bson.M{"status": status, "updated_at": at.UTC()}},
	)
	return matchedOne(res, err)
}

func (r *jobRepo) IncrementApplicants(ctx context.Context, id string, delta int64) error {
	res, err := r.col.UpdateOne(ctx,
		bson.M{"_id": id},
		bson.M{"$inc": bson.M{"applicant_count": delta}},
	)
	return matchedOne(res, err)
}

func (r *jobRepo) AddTeamMember(ctx context.Context, id string, a models.HiringAssignment) error {
	// drop any previous assignment for the member, then append the new one
	if _, err := r.col.UpdateOne(ctx,
		bson.M{"_id": id},
		bson.M{"$pull": bson.M{"hiring_team": bson.M{"member_id": a.MemberID}}},
	); err != nil {
		return translate(err)
	}
	res, err := r.col.UpdateOne(ctx,
		bson.M{"_id": id},
		bson.M{
			"$push": bson.M{"hiring_team": a},
			"$set":  bson.M{"updated_at": a.AssignedAt.UTC()},
		},
	)
	return matchedOne(res, err)
}

func (r *jobRepo) RemoveTeamMember(ctx context.Context, id, memberID string) error {
	res, err := r.col.UpdateOne(ctx,
		bson.M{"_id": id},
		bson.M{"$pull": bson.M{"hiring_team": bson.M{"member_id": memberID}}},
	)
	return matchedOne(res, err)
}
