package mongo

import (
	"context"
	"time"

	"github.com/hireloop/hireloop/internal/models"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

type OfferRepository interface {
	GetByID(ctx context.Context, id string) (*models.Offer, error)
	GetByCandidateJob(ctx context.Context, candidateID, jobID string) (*models.Offer, error)
	ListByCandidate(ctx context.Context, candidateID string) ([]models.Offer, error)
	ListAll(ctx context.Context) ([]models.Offer, error)
	// Save creates or replaces the offer keyed by (candidate_id, job_id).
	Save(ctx context.Context, o *models.Offer) error
	SetStatus(ctx context.Context, id string, u models.OfferStatusUpdate) error
}

type offerRepo struct {
	col *mongo.Collection
}

func NewOfferRepo(db *mongo.Database) OfferRepository {
	return &offerRepo{col: db.Collection("offers")}
}

func (r *offerRepo) GetByID(ctx context.Context, id string) (*models.Offer, error) {
	var o models.Offer
	if err := r.col.FindOne(ctx, bson.M{"_id": id}).Decode(&o); err != nil {
		return nil, translate(err)
	}
	return &o, nil
}

func (r *offerRepo) GetByCandidateJob(ctx context.Context, candidateID, jobID string) (*models.Offer, error) {
	var o models.Offer
	err := r.col.FindOne(ctx, bson.M{"candidate_id": candidateID, "job_id": jobID}).Decode(&o)
	if err != nil {
		return nil, translate(err)
	}
	return &o, nil
}

func (r *offerRepo) list(ctx context.Context, q bson.M) ([]models.Offer, error) {
	cur, err := r.col.Find(ctx, q, options.Find().SetSort(bson.D{{Key: "created_at", Value: -1}}))
	if err != nil {
		return nil, err
	}
	defer cur.Close(ctx)

	out := []models.Offer{}
	if err := cur.All(ctx, &out); err != nil {
		return nil, err
	}
	return out, nil
}

func (r *offerRepo) ListByCandidate(ctx context.Context, candidateID string) ([]models.Offer, error) {
	return r.list(ctx, bson.M{"candidate_id": candidateID})
}

func (r *offerRepo) ListAll(ctx context.Context) ([]models.Offer, error) {
	return r.list(ctx, bson.M{})
}

func (r *offerRepo) Save(ctx context.Context, o *models.Offer) error {
	if o.UpdatedAt.IsZero() {
		o.UpdatedAt = time.Now().UTC()
	}
	_, err := r.col.ReplaceOne(ctx,
		bson.M{"candidate_id": o.CandidateID, "job_id": o.JobID},
		o,
		options.Replace().SetUpsert(true),
	)
	return translate(err)
}

func (r *offerRepo) SetStatus(ctx context.Context, id string, u models.OfferStatusUpdate) error {
	set := bson.M{"status": u.Status, "updated_at": u.UpdatedAt.UTC()}
	if u.SentAt != nil {
		set["sent_at"] = u.SentAt.UTC()
	}
	if u.RespondedAt != nil {
		set["responded_at"] = u.RespondedAt.UTC()
	}
	res, err := r.col.UpdateOne(ctx, bson.M{"_id": id}, bson.M{"$set": set})
	return matchedOne(res, err)
}
