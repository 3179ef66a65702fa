package mongo

import (
	"context"

	"github.com/hireloop/hireloop/internal/models"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// ReactionRepository relies on the unique (comment_id, user_id, emoji) index, so
// concurrent reactions never overwrite each other.
type ReactionRepository interface {
	Add(ctx context.Context, rc *models.Reaction) error
	Remove(ctx context.Context, commentID, userID, emoji string) (bool, error)
	ListByComments(ctx context.Context, commentIDs []string) ([]models.Reaction, error)
}

type reactionRepo struct {
	col *mongo.Collection
}

func NewReactionRepo(db *mongo.Database) ReactionRepository {
	return &reactionRepo{col: db.Collection("comment_reactions")}
}

func (r *reactionRepo) Add(ctx context.Context, rc *models.Reaction) error {
	_, err := r.col.InsertOne(ctx, rc)
	return translate(err)
}

func (r *reactionRepo) Remove(ctx context.Context, commentID, userID, emoji string) (bool, error) {
	res, err := r.col.DeleteOne(ctx, bson.M{
		"comment_id": commentID,
		"user_id":    userID,
		"emoji":      emoji,
	})
	if err != nil {
		return false, err
	}
	return res.DeletedCount > 0, nil
}

func (r *reactionRepo) ListByComments(ctx context.Context, commentIDs []string) ([]models.Reaction, error) {
	if len(commentIDs) == 0 {
		return []models.Reaction{}, nil
	}
	cur, err := r.col.Find(ctx,
		bson.M{"comment_id": bson.M{"$in": commentIDs}},
		options.Find().SetSort(bson.D{{Key: "created_at", Value: 1}}),
	)
	if err != nil {
		return nil, err
	}
	defer cur.Close(ctx)

	out := []models.Reaction{}
	if err := cur.All(ctx, &out); err != nil {
		return nil, err
	}
	return out, nil
}
