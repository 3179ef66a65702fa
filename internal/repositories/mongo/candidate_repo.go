package mongo

import (
	"context"
	"time"

	"github.com/hireloop/hireloop/internal/models"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

type CandidateFilter struct {
	JobID  string
	Status models.CandidateStatus
	Limit  int64
}

type CandidateRepository interface {
	Create(ctx context.Context, c *models.Candidate) error
	GetByID(ctx context.Context, id string) (*models.Candidate, error)
	List(ctx context.Context, f CandidateFilter) ([]models.Candidate, error)
	// UpdateStatus moves the candidate from -> to and appends entry in one write.
	// It returns utils.ErrNotFound when the candidate is no longer in status from.
	UpdateStatus(ctx context.Context, id string, from, to models.CandidateStatus, entry models.TimelineEntry, hiredAt *time.Time) error
	UpdateEvaluation(ctx context.Context, id string, ev models.Evaluation, at time.Time) error
	UpdateDetails(ctx context.Context, id, name, email, phone string, at time.Time) error
	SetFile(ctx context.Context, id string, kind models.FileKind, storageID string, at time.Time) error
}

type candidateRepo struct {
	col *mongo.Collection
}

func NewCandidateRepo(db *mongo.Database) CandidateRepository {
	return &candidateRepo{col: db.Collection("candidates")}
}

func (r *candidateRepo) Create(ctx context.Context, c *models.Candidate) error {
	if c.CreatedAt.IsZero() {
		c.CreatedAt = time.Now().UTC()
	}
	if c.UpdatedAt.IsZero() {
		c.UpdatedAt = c.CreatedAt
	}
	_, err := r.col.InsertOne(ctx, c)
	return translate(err)
}

func (r *candidateRepo) GetByID(ctx context.Context, id string) (*models.Candidate, error) {
	var c models.Candidate
	if err := r.col.FindOne(ctx, bson.M{"_id": id}).Decode(&c); err != nil {
		return nil, translate(err)
	}
	return &c, nil
}

func (r *candidateRepo) List(ctx context.Context, f CandidateFilter) ([]models.Candidate, error) {
	q := bson.M{}
	if f.JobID != "" {
		q["job_id"] = f.JobID
	}
	if f.Status != "" {
		q["status"] = f.Status
	}

	opts := options.Find().SetSort(bson.D{{Key: "created_at", Value: -1}})
	if f.Limit > 0 {
		opts.SetLimit(f.Limit)
	}

	cur, err := r.col.Find(ctx, q, opts)
	if err != nil {
		return nil, err
	}
	defer cur.Close(ctx)

	out := []models.Candidate{}
	if err := cur.All(ctx, &out); err != nil {
		return nil, err
	}
	return out, nil
}

func (r *candidateRepo) UpdateStatus(ctx context.Context, id string, from, to models.CandidateStatus, entry models.TimelineEntry, hiredAt *time.Time) error {
	set := bson.M{
		"status":     to,
		"updated_at": entry.Date,
	}
	if hiredAt != nil {
		set["hired_at"] = hiredAt.UTC()
	}
	res, err := r.col.UpdateOne(ctx,
		bson.M{"_id": id, "status": from},
		bson.M{
			"$set":  set,
			"$push": bson.M{"timeline": entry},
		},
	)
	return matchedOne(res, err)
}

func (r *candidateRepo) UpdateEvaluation(ctx context.Context, id string, ev models.Evaluation, at time.Time) error {
	res, err := r.col.UpdateOne(ctx,
		bson.M{"_id": id},
		bson.M{"$set": bson.M{"evaluation": ev, "updated_at": at.UTC()}},
	)
	return matchedOne(res, err)
}

func (r *candidateRepo) UpdateDetails(ctx context.Context, id, name, email, phone string, at time.Time) error {
	res, err := r.col.UpdateOne(ctx,
		bson.M{"_id": id},
		bson.M{"$set": bson.M{
			"name":       name,
			"email":      email,
			"phone":      phone,
			"updated_at": at.UTC(),
		}},
	)
	return matchedOne(res, err)
}

func (r *candidateRepo) SetFile(ctx context.Context, id string, kind models.FileKind, storageID string, at time.Time) error {
	field := "resume_file_id"
	if kind == models.FileCoverLetter {
		field = "cover_letter_file_id"
	}
	res, err := r.col.UpdateOne(ctx,
		bson.M{"_id": id},
		bson.M{"$set": bson.M{field: storageID, "updated_at": at.UTC()}},
	)
	return matchedOne(res, err)
}
