package services

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"github.com/hireloop/hireloop/internal/models"
	mongorepo "github.com/hireloop/hireloop/internal/repositories/mongo"
	pgrepo "github.com/hireloop/hireloop/internal/repositories/postgres"
	"github.com/hireloop/hireloop/internal/utils"
)

type JobInput struct {
	Title        string
	Department   string
	Location     string
	Type         models.JobType
	Urgency      models.Urgency
	SalaryMin    int64
	SalaryMax    int64
	Currency     string
	Description  string
	Requirements []string
}

type JobService interface {
	Create(ctx context.Context, actor models.ActorRef, in JobInput) (*models.Job, error)
	Update(ctx context.Context, actor models.ActorRef, id string, in JobInput) (*models.Job, error)
	SetStatus(ctx context.Context, actor models.ActorRef, id string, status models.JobStatus) (*models.Job, error)
	Get(ctx context.Context, id string) (*models.Job, error)
	List(ctx context.Context, f mongorepo.JobFilter) ([]models.Job, error)
	AssignMember(ctx context.Context, actor models.ActorRef, jobID, memberID, role string) (*models.Job, error)
	UnassignMember(ctx context.Context, actor models.ActorRef, jobID, memberID string) (*models.Job, error)
}

type jobService struct {
	jobs     mongorepo.JobRepository
	members  pgrepo.TeamMemberRepository
	activity ActivityService
	log      *logrus.Logger
	now      func() time.Time
}

func NewJobService(jobs mongorepo.JobRepository, members pgrepo.TeamMemberRepository, activity ActivityService, log *logrus.Logger) JobService {
	if log == nil {
		log = logrus.New()
	}
	return &jobService{
		jobs:     jobs,
		members:  members,
		activity: activity,
		log:      log,
		now:      func() time.Time { return time.Now().UTC() },
	}
}

func validateJob(op string, in *JobInput) error {
	in.Title = strings.TrimSpace(in.Title)
	in.Department = strings.TrimSpace(in.Department)
	if in.Title == "" || in.Department == "" {
		return utils.E(utils.CodeInvalidArgument, op, "title and department are required", nil)
	}
	if in.Type == "" {
		in.Type = models.JobFullTime
	}
	if !in.Type.Valid() {
		return utils.E(utils.CodeInvalidArgument, op, "unknown job type", nil)
	}
	if in.Urgency == "" {
		in.Urgency = models.UrgencyMedium
	}
	if !in.Urgency.Valid() {
		return utils.E(utils.CodeInvalidArgument, op, "unknown urgency", nil)
	}
	if in.SalaryMin < 0 || in.SalaryMax < 0 {
		return utils.E(utils.CodeInvalidArgument, op, "salary must be >= 0", nil)
	}
	if in.SalaryMax > 0 && in.SalaryMin > in.SalaryMax {
		return utils.E(utils.CodeInvalidArgument, op, "salary_min must be <= salary_max", nil)
	}
	if in.Requirements == nil {
		in.Requirements = []string{}
	}
	in.Currency = strings.ToUpper(strings.TrimSpace(in.Currency))
	return nil
}

func (s *jobService) Create(ctx context.Context, actor models.ActorRef, in JobInput) (*models.Job, error) {
	const op = "JobService.Create"

	if err := validateJob(op, &in); err != nil {
		return nil, err
	}

	now := s.now()
	j := &models.Job{
		ID:           uuid.NewString(),
		Title:        in.Title,
		Department:   in.Department,
		Location:     strings.TrimSpace(in.Location),
		Type:         in.Type,
		Status:       models.JobActive,
		Urgency:      in.Urgency,
		SalaryMin:    in.SalaryMin,
		SalaryMax:    in.SalaryMax,
		Currency:     in.Currency,
		Description:  in.Description,
		Requirements: in.Requirements,
		HiringTeam:   []models.HiringAssignment{},
		CreatedBy:    actor.MemberID,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	if err := s.jobs.Create(ctx, j); err != nil {
		return nil, utils.E(utils.CodeInternal, op, "failed to create job", err)
	}

	recordActivity(ctx, s.activity, s.log, LogInput{
		Action:     models.ActionJobCreated,
		Actor:      actor,
		TargetType: models.TargetJob,
		TargetID:   j.ID,
		JobID:      j.ID,
		Metadata:   map[string]any{"department": j.Department},
	})
	return j, nil
}

func (s *jobService) Update(ctx context.Context, actor models.ActorRef, id string, in JobInput) (*models.Job, error) {
	const op = "JobService.Update"

	if err := validateJob(op, &in); err != nil {
		return nil, err
	}
	j, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}

	j.Title = in.Title
	j.Department = in.Department
	j.Location = strings.TrimSpace(in.Location)
	j.Type = in.Type
	j.Urgency = in.Urgency
	j.SalaryMin, j.SalaryMax = in.SalaryMin, in.SalaryMax
	j.Currency = in.Currency
	j.Description = in.Description
	j.Requirements = in.Requirements
	j.UpdatedAt = s.now()

	if err := s.jobs.Replace(ctx, j); err != nil {
		return nil, utils.E(utils.CodeInternal, op, "failed to update job", err)
	}

	recordActivity(ctx, s.activity, s.log, LogInput{
		Action:     models.ActionJobUpdated,
		Actor:      actor,
		TargetType: models.TargetJob,
		TargetID:   j.ID,
		JobID:      j.ID,
	})
	return j, nil
}

func (s *jobService) SetStatus(ctx context.Context, actor models.ActorRef, id string, status models.JobStatus) (*models.Job, error) {
	const op = "JobService.SetStatus"

	if !status.Valid() {
		return nil, utils.E(utils.CodeInvalidArgument, op, "unknown job status", nil)
	}
	j, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if j.Status == status {
		return j, nil
	}

	from := j.Status
	now := s.now()
	if err := s.jobs.SetStatus(ctx, id, status, now); err != nil {
		return nil, utils.E(utils.CodeInternal, op, "failed to update job status", err)
	}
	j.Status = status
	j.UpdatedAt = now

	recordActivity(ctx, s.activity, s.log, LogInput{
		Action:     models.ActionJobStatusChanged,
		Actor:      actor,
		TargetType: models.TargetJob,
		TargetID:   j.ID,
		JobID:      j.ID,
		Metadata:   map[string]any{"from": from, "to": status},
		Notify:     hiringTeamRecipients(j, models.NotifyStatus),
	})
	return j, nil
}

func (s *jobService) Get(ctx context.Context, id string) (*models.Job, error) {
	const op = "JobService.Get"

	j, err := s.jobs.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, utils.ErrNotFound) {
			return nil, utils.E(utils.CodeNotFound, op, "job not found", err)
		}
		return nil, utils.E(utils.CodeInternal, op, "failed to get job", err)
	}
	return j, nil
}

func (s *jobService) List(ctx context.Context, f mongorepo.JobFilter) ([]models.Job, error) {
	const op = "JobService.List"

	if f.Status != "" && !f.Status.Valid() {
		return nil, utils.E(utils.CodeInvalidArgument, op, "unknown job status", nil)
	}
	out, err := s.jobs.List(ctx, f)
	if err != nil {
		return nil, utils.E(utils.CodeInternal, op, "failed to list jobs", err)
	}
	return out, nil
}

func (s *jobService) AssignMember(ctx context.Context, actor models.ActorRef, jobID, memberID, role string) (*models.Job, error) {
	const op = "JobService.AssignMember"

	role = strings.TrimSpace(role)
	if memberID == "" || role == "" {
		return nil, utils.E(utils.CodeInvalidArgument, op, "member_id and role are required", nil)
	}
	j, err := s.Get(ctx, jobID)
	if err != nil {
		return nil, err
	}
	m, err := s.members.GetByID(ctx, memberID)
	if err != nil {
		if errors.Is(err, utils.ErrNotFound) {
			return nil, utils.E(utils.CodeInvalidArgument, op, "unknown team member", err)
		}
		return nil, utils.E(utils.CodeInternal, op, "failed to load team member", err)
	}
	if !m.Active {
		return nil, utils.E(utils.CodeFailedPrecondition, op, "team member is deactivated", nil)
	}

	a := models.HiringAssignment{MemberID: m.ID, Role: role, AssignedAt: s.now()}
	if err := s.jobs.AddTeamMember(ctx, jobID, a); err != nil {
		return nil, utils.E(utils.CodeInternal, op, "failed to assign team member", err)
	}
	team := make([]models.HiringAssignment, 0, len(j.HiringTeam)+1)
	for _, existing := range j.HiringTeam {
		if existing.MemberID != m.ID {
			team = append(team, existing)
		}
	}
	j.HiringTeam = append(team, a)

	recordActivity(ctx, s.activity, s.log, LogInput{
		Action:     models.ActionTeamAssigned,
		Actor:      actor,
		TargetType: models.TargetJob,
		TargetID:   j.ID,
		JobID:      j.ID,
		Metadata:   map[string]any{"member_id": m.ID, "role": role},
		Notify:     []Recipient{{MemberID: m.ID, Kind: models.NotifyAssignment}},
	})
	return j, nil
}

func (s *jobService) UnassignMember(ctx context.Context, actor models.ActorRef, jobID, memberID string) (*models.Job, error) {
	const op = "JobService.UnassignMember"

	j, err := s.Get(ctx, jobID)
	if err != nil {
		return nil, err
	}
	if err := s.jobs.RemoveTeamMember(ctx, jobID, memberID); err != nil {
		return nil, utils.E(utils.CodeInternal, op, "failed to unassign team member", err)
	}
	team := j.HiringTeam[:0]
	for _, a := range j.HiringTeam {
		if a.MemberID != memberID {
			team = append(team, a)
		}
	}
	j.HiringTeam = team
	return j, nil
}
