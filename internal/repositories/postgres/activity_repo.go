package postgres

import (
	"context"

	"github.com/hireloop/hireloop/internal/models"
	"gorm.io/gorm"
)

type ActivityFilter struct {
	JobID      string
	TargetType models.TargetType
	TargetID   string
	ActorID    string
	Limit      int
}

type ActivityRepository interface {
	Insert(ctx context.Context, e *models.ActivityEntry) error
	GetByIdempotencyKey(ctx context.Context, key string) (*models.ActivityEntry, error)
	// List returns newest first.
	List(ctx context.Context, f ActivityFilter) ([]models.ActivityEntry, error)
}

type activityRepo struct {
	db *gorm.DB
}

func NewActivityRepo(db *gorm.DB) ActivityRepository {
	return &activityRepo{db: db}
}

func (r *activityRepo) Insert(ctx context.Context, e *models.ActivityEntry) error {
	return translate(r.db.WithContext(ctx).Create(e).Error)
}

func (r *activityRepo) GetByIdempotencyKey(ctx context.Context, key string) (*models.ActivityEntry, error) {
	var e models.ActivityEntry
	err := r.db.WithContext(ctx).Where("idempotency_key = ?", key).Take(&e).Error
	if err != nil {
		return nil, translate(err)
	}
	return &e, nil
}

func (r *activityRepo) List(ctx context.Context, f ActivityFilter) ([]models.ActivityEntry, error) {
	limit := f.Limit
	if limit <= 0 {
		limit = 50
	}

	q := r.db.WithContext(ctx).Order("created_at DESC").Limit(limit)
	if f.JobID != "" {
		q = q.Where("job_id = ?", f.JobID)
	}
	if f.TargetType != "" {
		q = q.Where("target_type = ?", f.TargetType)
	}
	if f.TargetID != "" {
		q = q.Where("target_id = ?", f.TargetID)
	}
	if f.ActorID != "" {
		q = q.Where("actor_id = ?", f.ActorID)
	}

	rows := []models.ActivityEntry{}
	err := q.Find(&rows).Error
	return rows, err
}
