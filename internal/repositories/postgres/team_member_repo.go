package postgres

import (
	"context"
	"time"

	"github.com/hireloop/hireloop/internal/models"
	"github.com/lib/pq"
	"gorm.io/gorm"
)

type TeamMemberRepository interface {
	Create(ctx context.Context, m *models.TeamMember) error
	GetByID(ctx context.Context, id string) (*models.TeamMember, error)
	GetByUserID(ctx context.Context, userID string) (*models.TeamMember, error)
	FindByIDs(ctx context.Context, ids []string) ([]models.TeamMember, error)
	List(ctx context.Context, activeOnly bool) ([]models.TeamMember, error)
	UpdateRole(ctx context.Context, id string, role models.MemberRole, perms pq.StringArray, at time.Time) error
	SetActive(ctx context.Context, id string, active bool, at time.Time) error
}

type teamMemberRepo struct {
	db *gorm.DB
}

func NewTeamMemberRepo(db *gorm.DB) TeamMemberRepository {
	return &teamMemberRepo{db: db}
}

func (r *teamMemberRepo) Create(ctx context.Context, m *models.TeamMember) error {
	return translate(r.db.WithContext(ctx).Create(m).Error)
}

func (r *teamMemberRepo) GetByID(ctx context.Context, id string) (*models.TeamMember, error) {
	var m models.TeamMember
	err := r.db.WithContext(ctx).Where("id = ?", id).Take(&m).Error
	if err != nil {
		return nil, translate(err)
	}
	return &m, nil
}

func (r *teamMemberRepo) GetByUserID(ctx context.Context, userID string) (*models.TeamMember, error) {
	var m models.TeamMember
	err := r.db.WithContext(ctx).Where("user_id = ?", userID).Take(&m).Error
	if err != nil {
		return nil, translate(err)
	}
	return &m, nil
}

func (r *teamMemberRepo) FindByIDs(ctx context.Context, ids []string) ([]models.TeamMember, error) {
	rows := []models.TeamMember{}
	if len(ids) == 0 {
		return rows, nil
	}
	err := r.db.WithContext(ctx).Where("id IN ?", ids).Find(&rows).Error
	return rows, err
}

func (r *teamMemberRepo) List(ctx context.Context, activeOnly bool) ([]models.TeamMember, error) {
	q := r.db.WithContext(ctx).Order("name ASC")
	if activeOnly {
		q = q.Where("active = ?", true)
	}
	rows := []models.TeamMember{}
	err := q.Find(&rows).Error
	return rows, err
}

func (r *teamMemberRepo) UpdateRole(ctx context.Context, id string, role models.MemberRole, perms pq.StringArray, at time.Time) error {
	return affectedOne(r.db.WithContext(ctx).
		Model(&models.TeamMember{}).
		Where("id = ?", id).
		Updates(map[string]any{
			"role":        role,
			"permissions": perms,
			"updated_at":  at.UTC(),
		}))
}

func (r *teamMemberRepo) SetActive(ctx context.Context, id string, active bool, at time.Time) error {
	return affectedOne(r.db.WithContext(ctx).
		Model(&models.TeamMember{}).
		Where("id = ?", id).
		Updates(map[string]any{
			"active":     active,
			"updated_at": at.UTC(),
		}))
}
