package mongo

import (
	"context"
	"time"

	"github.com/hireloop/hireloop/internal/models"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

type CommentRepository interface {
	Create(ctx context.Context, c *models.Comment) error
	GetByID(ctx context.Context, id string) (*models.Comment, error)
	// ListByEntity returns comments in insertion order.
	ListByEntity(ctx context.Context, entityType models.EntityType, entityID string, includeDeleted bool) ([]models.Comment, error)
	UpdateContent(ctx context.Context, id, content string, editedAt time.Time) error
	SoftDelete(ctx context.Context, id string) error
}

type commentRepo struct {
	col *mongo.Collection
}

func NewCommentRepo(db *mongo.Database) CommentRepository {
	return &commentRepo{col: db.Collection("comments")}
}

func (r *commentRepo) Create(ctx context.Context, c *models.Comment) error {
	if c.CreatedAt.IsZero() {
		c.CreatedAt = time.Now().UTC()
	}
	_, err := r.col.InsertOne(ctx, c)
	return translate(err)
}

func (r *commentRepo) GetByID(ctx context.Context, id string) (*models.Comment, error) {
	var c models.Comment
	if err := r.col.FindOne(ctx, bson.M{"_id": id}).Decode(&c); err != nil {
		return nil, translate(err)
	}
	return &c, nil
}

func (r *commentRepo) ListByEntity(ctx context.Context, entityType models.EntityType, entityID string, includeDeleted bool) ([]models.Comment, error) {
	q := bson.M{"entity_type": entityType, "entity_id": entityID}
	if !includeDeleted {
		q["is_deleted"] = false
	}

	cur, err := r.col.Find(ctx, q, options.Find().SetSort(bson.D{{Key: "created_at", Value: 1}}))
	if err != nil {
		return nil, err
	}
	defer cur.Close(ctx)

	out := []models.Comment{}
	if err := cur.All(ctx, &out); err != nil {
		return nil, err
	}
	return out, nil
}

func (r *commentRepo) UpdateContent(ctx context.Context, id, content string, editedAt time.Time) error {
	res, err := r.col.UpdateOne(ctx,
		bson.M{"_id": id, "is_deleted": false},
		bson.M{"$set": bson.M{"content": content, "edited_at": editedAt.UTC()}},
	)
	return matchedOne(res, err)
}

func (r *commentRepo) SoftDelete(ctx context.Context, id string) error {
	res, err := r.col.UpdateOne(ctx,
		bson.M{"_id": id},
		bson.M{"$set": bson.M{"is_deleted": true}},
	)
	return matchedOne(res, err)
}
