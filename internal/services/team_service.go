package services

import (
	"context"
	"errors"
	"net/mail"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"github.com/hireloop/hireloop/internal/models"
	pgrepo "github.com/hireloop/hireloop/internal/repositories/postgres"
	"github.com/hireloop/hireloop/internal/utils"
)

type CreateMemberInput struct {
	UserID string
	Name   string
	Email  string
	Role   models.MemberRole
}

type TeamService interface {
	Create(ctx context.Context, actor models.ActorRef, in CreateMemberInput) (*models.TeamMember, error)
	Get(ctx context.Context, id string) (*models.TeamMember, error)
	GetByUserID(ctx context.Context, userID string) (*models.TeamMember, error)
	List(ctx context.Context, activeOnly bool) ([]models.TeamMember, error)
	ChangeRole(ctx context.Context, actor models.ActorRef, id string, role models.MemberRole) (*models.TeamMember, error)
	Deactivate(ctx context.Context, actor models.ActorRef, id string) (*models.TeamMember, error)
	// ResolveActor maps an authenticated user to the team member acting on their behalf.
	// An unknown user holding the admin app role resolves to a bootstrap administrator.
	ResolveActor(ctx context.Context, userID, appRole string) (models.ActorRef, error)
}

type teamService struct {
	members  pgrepo.TeamMemberRepository
	activity ActivityService
	log      *logrus.Logger
	now      func() time.Time
}

func NewTeamService(members pgrepo.TeamMemberRepository, activity ActivityService, log *logrus.Logger) TeamService {
	if log == nil {
		log = logrus.New()
	}
	return &teamService{
		members:  members,
		activity: activity,
		log:      log,
		now:      func() time.Time { return time.Now().UTC() },
	}
}

func (s *teamService) Create(ctx context.Context, actor models.ActorRef, in CreateMemberInput) (*models.TeamMember, error) {
	const op = "TeamService.Create"

	in.UserID = strings.TrimSpace(in.UserID)
	in.Name = strings.TrimSpace(in.Name)
	if in.UserID == "" || in.Name == "" {
		return nil, utils.E(utils.CodeInvalidArgument, op, "user_id and name are required", nil)
	}
	if _, err := mail.ParseAddress(in.Email); err != nil {
		return nil, utils.E(utils.CodeInvalidArgument, op, "email is invalid", err)
	}
	if !in.Role.Valid() {
		return nil, utils.E(utils.CodeInvalidArgument, op, "unknown role", nil)
	}

	now := s.now()
	m := &models.TeamMember{
		ID:          uuid.NewString(),
		UserID:      in.UserID,
		Name:        in.Name,
		Email:       strings.TrimSpace(in.Email),
		Role:        in.Role,
		Permissions: models.PermissionStrings(models.PermissionsForRole(in.Role)),
		Active:      true,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	if err := s.members.Create(ctx, m); err != nil {
		if errors.Is(err, utils.ErrDuplicate) {
			return nil, utils.E(utils.CodeConflict, op, "user is already a team member", err)
		}
		return nil, utils.E(utils.CodeInternal, op, "failed to create team member", err)
	}

	recordActivity(ctx, s.activity, s.log, LogInput{
		Action:     models.ActionMemberAdded,
		Actor:      actor,
		TargetType: models.TargetMember,
		TargetID:   m.ID,
		Metadata:   map[string]any{"role": m.Role},
	})
	return m, nil
}

func (s *teamService) Get(ctx context.Context, id string) (*models.TeamMember, error) {
	const op = "TeamService.Get"

	m, err := s.members.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, utils.ErrNotFound) {
			return nil, utils.E(utils.CodeNotFound, op, "team member not found", err)
		}
		return nil, utils.E(utils.CodeInternal, op, "failed to get team member", err)
	}
	return m, nil
}

func (s *teamService) GetByUserID(ctx context.Context, userID string) (*models.TeamMember, error) {
	const op = "TeamService.GetByUserID"

	m, err := s.members.GetByUserID(ctx, userID)
	if err != nil {
		if errors.Is(err, utils.ErrNotFound) {
			return nil, utils.E(utils.CodeNotFound, op, "team member not found", err)
		}
		return nil, utils.E(utils.CodeInternal, op, "failed to get team member", err)
	}
	return m, nil
}

func (s *teamService) List(ctx context.Context, activeOnly bool) ([]models.TeamMember, error) {
	const op = "TeamService.List"

	out, err := s.members.List(ctx, activeOnly)
	if err != nil {
		return nil, utils.E(utils.CodeInternal, op, "failed to list team members", err)
	}
	return out, nil
}

func (s *teamService) ChangeRole(ctx context.Context, actor models.ActorRef, id string, role models.MemberRole) (*models.TeamMember, error) {
	const op = "TeamService.ChangeRole"

	if !role.Valid() {
		return nil, utils.E(utils.CodeInvalidArgument, op, "unknown role", nil)
	}
	m, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}

	perms := models.PermissionStrings(models.PermissionsForRole(role))
	now := s.now()
	if err := s.members.UpdateRole(ctx, id, role, perms, now); err != nil {
		return nil, utils.E(utils.CodeInternal, op, "failed to update role", err)
	}
	from := m.Role
	m.Role, m.Permissions, m.UpdatedAt = role, perms, now

	recordActivity(ctx, s.activity, s.log, LogInput{
		Action:     models.ActionMemberUpdated,
		Actor:      actor,
		TargetType: models.TargetMember,
		TargetID:   m.ID,
		Metadata:   map[string]any{"from": from, "to": role},
	})
	return m, nil
}

func (s *teamService) Deactivate(ctx context.Context, actor models.ActorRef, id string) (*models.TeamMember, error) {
	const op = "TeamService.Deactivate"

	if id == actor.MemberID {
		return nil, utils.E(utils.CodeFailedPrecondition, op, "cannot deactivate yourself", nil)
	}
	m, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if !m.Active {
		return m, nil
	}

	now := s.now()
	if err := s.members.SetActive(ctx, id, false, now); err != nil {
		return nil, utils.E(utils.CodeInternal, op, "failed to deactivate team member", err)
	}
	m.Active, m.UpdatedAt = false, now

	recordActivity(ctx, s.activity, s.log, LogInput{
		Action:     models.ActionMemberUpdated,
		Actor:      actor,
		TargetType: models.TargetMember,
		TargetID:   m.ID,
		Metadata:   map[string]any{"active": false},
	})
	return m, nil
}

func (s *teamService) ResolveActor(ctx context.Context, userID, appRole string) (models.ActorRef, error) {
	const op = "TeamService.ResolveActor"

	if userID == "" {
		return models.ActorRef{}, utils.E(utils.CodeUnauthorized, op, "missing subject", nil)
	}
	m, err := s.members.GetByUserID(ctx, userID)
	switch {
	case err == nil:
		if !m.Active {
			return models.ActorRef{}, utils.E(utils.CodeForbidden, op, "team member is deactivated", nil)
		}
		return models.ActorFromMember(m), nil
	case errors.Is(err, utils.ErrNotFound):
		if appRole == string(models.RoleAdmin) {
			return models.ActorRef{
				UserID:      userID,
				Role:        models.RoleAdmin,
				Permissions: models.PermissionsForRole(models.RoleAdmin),
			}, nil
		}
		return models.ActorRef{}, utils.E(utils.CodeForbidden, op, "user is not a team member", err)
	default:
		return models.ActorRef{}, utils.E(utils.CodeInternal, op, "failed to resolve actor", err)
	}
}

// HasPermission reports whether actor holds p.
func HasPermission(actor models.ActorRef, p models.Permission) bool {
	return actor.Can(p)
}
