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

type CreateTaskInput struct {
	Title       string
	Description string
	AssigneeID  string
	RelatedTo   *models.RelatedRef
	Priority    models.TaskPriority
	DueDate     *time.Time
}

type TaskService interface {
	Create(ctx context.Context, actor models.ActorRef, in CreateTaskInput) (*models.Task, error)
	UpdateStatus(ctx context.Context, actor models.ActorRef, id string, status models.TaskStatus) (*models.Task, error)
	Reassign(ctx context.Context, actor models.ActorRef, id, assigneeID string) (*models.Task, error)
	ListMine(ctx context.Context, actor models.ActorRef, includeClosed bool) ([]models.Task, error)
	ListRelated(ctx context.Context, typ models.TargetType, id string) ([]models.Task, error)
}

type taskService struct {
	tasks    mongorepo.TaskRepository
	members  pgrepo.TeamMemberRepository
	activity ActivityService
	log      *logrus.Logger
	now      func() time.Time
}

func NewTaskService(tasks mongorepo.TaskRepository, members pgrepo.TeamMemberRepository, activity ActivityService, log *logrus.Logger) TaskService {
	if log == nil {
		log = logrus.New()
	}
	return &taskService{
		tasks:    tasks,
		members:  members,
		activity: activity,
		log:      log,
		now:      func() time.Time { return time.Now().UTC() },
	}
}

func (s *taskService) activeMember(ctx context.Context, op, id string) error {
	m, err := s.members.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, utils.ErrNotFound) {
			return utils.E(utils.CodeInvalidArgument, op, "unknown assignee", err)
		}
		return utils.E(utils.CodeInternal, op, "failed to load assignee", err)
	}
	if !m.Active {
		return utils.E(utils.CodeFailedPrecondition, op, "assignee is deactivated", nil)
	}
	return nil
}

func (s *taskService) Create(ctx context.Context, actor models.ActorRef, in CreateTaskInput) (*models.Task, error) {
	const op = "TaskService.Create"

	in.Title = strings.TrimSpace(in.Title)
	if in.Title == "" || in.AssigneeID == "" {
		return nil, utils.E(utils.CodeInvalidArgument, op, "title and assignee_id are required", nil)
	}
	if in.Priority == "" {
		in.Priority = models.PriorityMedium
	}
	if !in.Priority.Valid() {
		return nil, utils.E(utils.CodeInvalidArgument, op, "unknown priority", nil)
	}
	if in.RelatedTo != nil && (in.RelatedTo.Type == "" || in.RelatedTo.ID == "") {
		return nil, utils.E(utils.CodeInvalidArgument, op, "related_to needs type and id", nil)
	}
	if err := s.activeMember(ctx, op, in.AssigneeID); err != nil {
		return nil, err
	}

	now := s.now()
	t := &models.Task{
		ID:          uuid.NewString(),
		Title:       in.Title,
		Description: strings.TrimSpace(in.Description),
		AssigneeID:  in.AssigneeID,
		CreatorID:   actor.MemberID,
		RelatedTo:   in.RelatedTo,
		Priority:    in.Priority,
		DueDate:     in.DueDate,
		Status:      models.TaskTodo,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	if err := s.tasks.Create(ctx, t); err != nil {
		return nil, utils.E(utils.CodeInternal, op, "failed to create task", err)
	}

	recordActivity(ctx, s.activity, s.log, LogInput{
		Action:     models.ActionTaskCreated,
		Actor:      actor,
		TargetType: models.TargetTask,
		TargetID:   t.ID,
		Metadata:   map[string]any{"priority": t.Priority, "assignee_id": t.AssigneeID},
		Message:    t.Description,
		Notify:     []Recipient{{MemberID: t.AssigneeID, Kind: models.NotifyTask}},
	})
	return t, nil
}

func (s *taskService) get(ctx context.Context, op, id string) (*models.Task, error) {
	t, err := s.tasks.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, utils.ErrNotFound) {
			return nil, utils.E(utils.CodeNotFound, op, "task not found", err)
		}
		return nil, utils.E(utils.CodeInternal, op, "failed to get task", err)
	}
	return t, nil
}

func (s *taskService) UpdateStatus(ctx context.Context, actor models.ActorRef, id string, status models.TaskStatus) (*models.Task, error) {
	const op = "TaskService.UpdateStatus"

	if !status.Valid() {
		return nil, utils.E(utils.CodeInvalidArgument, op, "unknown task status", nil)
	}
	t, err := s.get(ctx, op, id)
	if err != nil {
		return nil, err
	}
	if !canTouchTask(actor, t) {
		return nil, utils.E(utils.CodeForbidden, op, "only the assignee or creator may update this task", nil)
	}
	if t.Status == status {
		return t, nil
	}
	if t.Status.Closed() {
		return nil, utils.E(utils.CodeFailedPrecondition, op, "task is already "+string(t.Status), nil)
	}

	now := s.now()
	var completedAt *time.Time
	if status == models.TaskDone {
		completedAt = &now
	}
	if err := s.tasks.SetStatus(ctx, id, status, completedAt, now); err != nil {
		return nil, utils.E(utils.CodeInternal, op, "failed to update task", err)
	}
	t.Status, t.CompletedAt, t.UpdatedAt = status, completedAt, now

	in := LogInput{
		Action:     models.ActionTaskUpdated,
		Actor:      actor,
		TargetType: models.TargetTask,
		TargetID:   t.ID,
		Metadata:   map[string]any{"status": status},
	}
	if status == models.TaskDone {
		in.Action = models.ActionTaskCompleted
		if t.CreatorID != "" {
			in.Notify = []Recipient{{MemberID: t.CreatorID, Kind: models.NotifyTask}}
		}
	}
	recordActivity(ctx, s.activity, s.log, in)
	return t, nil
}

// canTouchTask: assignee, creator, or anyone holding manage_tasks.
func canTouchTask(actor models.ActorRef, t *models.Task) bool {
	if actor.Can(models.PermManageTasks) {
		return true
	}
	return actor.MemberID != "" && (actor.MemberID == t.AssigneeID || actor.MemberID == t.CreatorID)
}

func (s *taskService) Reassign(ctx context.Context, actor models.ActorRef, id, assigneeID string) (*models.Task, error) {
	const op = "TaskService.Reassign"

	if assigneeID == "" {
		return nil, utils.E(utils.CodeInvalidArgument, op, "assignee_id is required", nil)
	}
	t, err := s.get(ctx, op, id)
	if err != nil {
		return nil, err
	}
	if t.Status.Closed() {
		return nil, utils.E(utils.CodeFailedPrecondition, op, "task is already "+string(t.Status), nil)
	}
	if t.AssigneeID == assigneeID {
		return t, nil
	}
	if err := s.activeMember(ctx, op, assigneeID); err != nil {
		return nil, err
	}

	now := s.now()
	if err := s.tasks.Reassign(ctx, id, assigneeID, now); err != nil {
		return nil, utils.E(utils.CodeInternal, op, "failed to reassign task", err)
	}
	from := t.AssigneeID
	t.AssigneeID, t.UpdatedAt = assigneeID, now

	recordActivity(ctx, s.activity, s.log, LogInput{
		Action:     models.ActionTaskUpdated,
		Actor:      actor,
		TargetType: models.TargetTask,
		TargetID:   t.ID,
		Metadata:   map[string]any{"from": from, "to": assigneeID},
		Notify:     []Recipient{{MemberID: assigneeID, Kind: models.NotifyTask}},
	})
	return t, nil
}

func (s *taskService) ListMine(ctx context.Context, actor models.ActorRef, includeClosed bool) ([]models.Task, error) {
	const op = "TaskService.ListMine"

	if actor.MemberID == "" {
		return []models.Task{}, nil
	}
	out, err := s.tasks.ListByAssignee(ctx, actor.MemberID, includeClosed)
	if err != nil {
		return nil, utils.E(utils.CodeInternal, op, "failed to list tasks", err)
	}
	return out, nil
}

func (s *taskService) ListRelated(ctx context.Context, typ models.TargetType, id string) ([]models.Task, error) {
	const op = "TaskService.ListRelated"

	if typ == "" || id == "" {
		return nil, utils.E(utils.CodeInvalidArgument, op, "type and id are required", nil)
	}
	out, err := s.tasks.ListByRelated(ctx, typ, id)
	if err != nil {
		return nil, utils.E(utils.CodeInternal, op, "failed to list tasks", err)
	}
	return out, nil
}
