package mongo

import (
	"context"

	"github.com/hireloop/hireloop/internal/models"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

type ApprovalRepository interface {
	// Upsert records the approver's vote, replacing any earlier vote by the same approver.
	Upsert(ctx context.Context, a *models.Approval) error
	ListByOffer(ctx context.Context, offerID string) ([]models.Approval, error)
	DeleteByOffer(ctx context.Context, offerID string) error
}

type approvalRepo struct {
	col *mongo.Collection
}

func NewApprovalRepo(db *mongo.Database) ApprovalRepository {
	return &approvalRepo{col: db.Collection("offer_approvals")}
}

func (r *approvalRepo) Upsert(ctx context.Context, a *models.Approval) error {
	_, err := r.col.UpdateOne(ctx,
		bson.M{"offer_id": a.OfferID, "approver_id": a.ApproverID},
		bson.M{"$set": bson.M{
			"approver_name": a.ApproverName,
			"decision":      a.Decision,
			"comment":       a.Comment,
			"decided_at":    a.DecidedAt.UTC(),
		}},
		options.Update().SetUpsert(true),
	)
	return translate(err)
}

func (r *approvalRepo) ListByOffer(ctx context.Context, offerID string) ([]models.Approval, error) {
	cur, err := r.col.Find(ctx,
		bson.M{"offer_id": offerID},
		options.Find().SetSort(bson.D{{Key: "decided_at", Value: 1}}),
	)
	if err != nil {
		return nil, err
	}
	defer cur.Close(ctx)

	out := []models.Approval{}
	if err := cur.All(ctx, &out); err != nil {
		return nil, err
	}
	return out, nil
}

func (r *approvalRepo) DeleteByOffer(ctx context.Context, offerID string) error {
	_, err := r.col.DeleteMany(ctx, bson.M{"offer_id": offerID})
	return err
}
