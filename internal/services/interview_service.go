package services

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"github.com/hireloop/hireloop/internal/models"
	mongorepo "github.com/hireloop/hireloop/internal/repositories/mongo"
	"github.com/hireloop/hireloop/internal/utils"
)

const (
	minInterviewMinutes = 15
	maxInterviewMinutes = 480
)

type ScheduleInput struct {
	CandidateID     string
	ScheduledAt     time.Time
	DurationMinutes int
	Type            models.InterviewType
	Location        string
	Interviewers    []string
	// NotifyMemberIDs are team members told about the interview. Interviewer names
	// are display strings and are not resolved to members.
	NotifyMemberIDs []string
}

type Conflict struct {
	InterviewID string    `json:"interview_id"`
	Reason      string    `json:"reason"`
	StartsAt    time.Time `json:"starts_at"`
	EndsAt      time.Time `json:"ends_at"`
}

type InterviewService interface {
	Schedule(ctx context.Context, actor models.ActorRef, in ScheduleInput) (*models.Interview, error)
	Reschedule(ctx context.Context, actor models.ActorRef, id string, start time.Time, durationMinutes int) (*models.Interview, error)
	Cancel(ctx context.Context, actor models.ActorRef, id string) (*models.Interview, error)
	MarkNoShow(ctx context.Context, actor models.ActorRef, id string) (*models.Interview, error)
	SubmitFeedback(ctx context.Context, actor models.ActorRef, id, feedback string, rating int) (*models.Interview, error)
	ListByCandidate(ctx context.Context, candidateID string) ([]models.Interview, error)
	ListUpcoming(ctx context.Context, limit int64) ([]models.Interview, error)
}

type interviewService struct {
	interviews mongorepo.InterviewRepository
	candidates mongorepo.CandidateRepository
	activity   ActivityService
	log        *logrus.Logger
	now        func() time.Time
}

func NewInterviewService(interviews mongorepo.InterviewRepository, candidates mongorepo.CandidateRepository, activity ActivityService, log *logrus.Logger) InterviewService {
	if log == nil {
		log = logrus.New()
	}
	return &interviewService{
		interviews: interviews,
		candidates: candidates,
		activity:   activity,
		log:        log,
		now:        func() time.Time { return time.Now().UTC() },
	}
}

// FindConflicts returns the scheduled interviews in existing that overlap
// [start, end) and share the candidate or an interviewer. skipID is ignored.
func FindConflicts(existing []models.Interview, skipID, candidateID string, interviewers []string, start, end time.Time) []Conflict {
	names := make(map[string]struct{}, len(interviewers))
	for _, n := range interviewers {
		names[strings.ToLower(strings.TrimSpace(n))] = struct{}{}
	}

	var out []Conflict
	for i := range existing {
		iv := &existing[i]
		if iv.ID == skipID || iv.Status != models.InterviewScheduled || !iv.Overlaps(start, end) {
			continue
		}
		reason := ""
		if iv.CandidateID == candidateID {
			reason = "candidate already has an interview"
		} else {
			for _, n := range iv.Interviewers {
				if _, ok := names[strings.ToLower(strings.TrimSpace(n))]; ok {
					reason = fmt.Sprintf("interviewer %s is busy", n)
					break
				}
			}
		}
		if reason != "" {
			out = append(out, Conflict{InterviewID: iv.ID, Reason: reason, StartsAt: iv.ScheduledAt, EndsAt: iv.EndsAt})
		}
	}
	return out
}

func conflictError(op string, conflicts []Conflict) error {
	parts := make([]string, 0, len(conflicts))
	for _, c := range conflicts {
		parts = append(parts, fmt.Sprintf("%s (%s)", c.Reason, c.InterviewID))
	}
	return utils.E(utils.CodeConflict, op, "scheduling conflict: "+strings.Join(parts, "; "), nil)
}

func (s *interviewService) checkConflicts(ctx context.Context, op, skipID, candidateID string, interviewers []string, start, end time.Time) error {
	existing, err := s.interviews.ListScheduledOverlapping(ctx, start, end)
	if err != nil {
		return utils.E(utils.CodeInternal, op, "failed to check conflicts", err)
	}
	if conflicts := FindConflicts(existing, skipID, candidateID, interviewers, start, end); len(conflicts) > 0 {
		return conflictError(op, conflicts)
	}
	return nil
}

func (s *interviewService) validateWindow(op string, start time.Time, minutes int) error {
	if start.IsZero() {
		return utils.E(utils.CodeInvalidArgument, op, "scheduled_at is required", nil)
	}
	if !start.After(s.now()) {
		return utils.E(utils.CodeInvalidArgument, op, "interviews must be scheduled in the future", nil)
	}
	if minutes < minInterviewMinutes || minutes > maxInterviewMinutes {
		return utils.E(utils.CodeInvalidArgument, op, fmt.Sprintf("duration must be within %d..%d minutes", minInterviewMinutes, maxInterviewMinutes), nil)
	}
	return nil
}

func (s *interviewService) Schedule(ctx context.Context, actor models.ActorRef, in ScheduleInput) (*models.Interview, error) {
	const op = "InterviewService.Schedule"

	if in.CandidateID == "" {
		return nil, utils.E(utils.CodeInvalidArgument, op, "candidate_id is required", nil)
	}
	if !in.Type.Valid() {
		return nil, utils.E(utils.CodeInvalidArgument, op, "unknown interview type", nil)
	}
	interviewers := make([]string, 0, len(in.Interviewers))
	for _, n := range in.Interviewers {
		if n = strings.TrimSpace(n); n != "" {
			interviewers = append(interviewers, n)
		}
	}
	if len(interviewers) == 0 {
		return nil, utils.E(utils.CodeInvalidArgument, op, "at least one interviewer is required", nil)
	}
	if err := s.validateWindow(op, in.ScheduledAt, in.DurationMinutes); err != nil {
		return nil, err
	}

	c, err := s.candidates.GetByID(ctx, in.CandidateID)
	if err != nil {
		if errors.Is(err, utils.ErrNotFound) {
			return nil, utils.E(utils.CodeNotFound, op, "candidate not found", err)
		}
		return nil, utils.E(utils.CodeInternal, op, "failed to load candidate", err)
	}
	switch c.Status {
	case models.StatusHired, models.StatusRejected, models.StatusWithdrawn:
		return nil, utils.E(utils.CodeFailedPrecondition, op, "candidate is no longer in process", nil)
	}

	start := in.ScheduledAt.UTC()
	end := start.Add(time.Duration(in.DurationMinutes) * time.Minute)
	if err := s.checkConflicts(ctx, op, "", c.ID, interviewers, start, end); err != nil {
		return nil, err
	}

	now := s.now()
	iv := &models.Interview{
		ID:              uuid.NewString(),
		CandidateID:     c.ID,
		JobID:           c.JobID,
		ScheduledAt:     start,
		EndsAt:          end,
		DurationMinutes: in.DurationMinutes,
		Type:            in.Type,
		Location:        strings.TrimSpace(in.Location),
		Interviewers:    interviewers,
		Status:          models.InterviewScheduled,
		CreatedBy:       actor.MemberID,
		CreatedAt:       now,
		UpdatedAt:       now,
	}
	if err := s.interviews.Create(ctx, iv); err != nil {
		return nil, utils.E(utils.CodeInternal, op, "failed to create interview", err)
	}

	recipients := make([]Recipient, 0, len(in.NotifyMemberIDs))
	for _, id := range in.NotifyMemberIDs {
		recipients = append(recipients, Recipient{MemberID: id, Kind: models.NotifyInterview})
	}
	recordActivity(ctx, s.activity, s.log, LogInput{
		Action:     models.ActionInterviewScheduled,
		Actor:      actor,
		TargetType: models.TargetInterview,
		TargetID:   iv.ID,
		JobID:      iv.JobID,
		Metadata:   map[string]any{"scheduled_at": start, "type": iv.Type, "interviewers": interviewers},
		Message:    start.Format(time.RFC1123),
		Notify:     recipients,
	})
	return iv, nil
}

func (s *interviewService) get(ctx context.Context, op, id string) (*models.Interview, error) {
	iv, err := s.interviews.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, utils.ErrNotFound) {
			return nil, utils.E(utils.CodeNotFound, op, "interview not found", err)
		}
		return nil, utils.E(utils.CodeInternal, op, "failed to get interview", err)
	}
	return iv, nil
}

func (s *interviewService) Reschedule(ctx context.Context, actor models.ActorRef, id string, start time.Time, durationMinutes int) (*models.Interview, error) {
	const op = "InterviewService.Reschedule"

	iv, err := s.get(ctx, op, id)
	if err != nil {
		return nil, err
	}
	if iv.Status != models.InterviewScheduled {
		return nil, utils.E(utils.CodeFailedPrecondition, op, "only scheduled interviews can be rescheduled", nil)
	}
	if durationMinutes == 0 {
		durationMinutes = iv.DurationMinutes
	}
	if err := s.validateWindow(op, start, durationMinutes); err != nil {
		return nil, err
	}

	start = start.UTC()
	end := start.Add(time.Duration(durationMinutes) * time.Minute)
	if err := s.checkConflicts(ctx, op, iv.ID, iv.CandidateID, iv.Interviewers, start, end); err != nil {
		return nil, err
	}

	now := s.now()
	if err := s.interviews.Reschedule(ctx, id, start, end, durationMinutes, now); err != nil {
		return nil, utils.E(utils.CodeInternal, op, "failed to reschedule interview", err)
	}
	prev := iv.ScheduledAt
	iv.ScheduledAt, iv.EndsAt, iv.DurationMinutes, iv.UpdatedAt = start, end, durationMinutes, now

	recordActivity(ctx, s.activity, s.log, LogInput{
		Action:     models.ActionInterviewUpdated,
		Actor:      actor,
		TargetType: models.TargetInterview,
		TargetID:   iv.ID,
		JobID:      iv.JobID,
		Metadata:   map[string]any{"from": prev, "to": start},
	})
	return iv, nil
}

func (s *interviewService) setStatus(ctx context.Context, op string, actor models.ActorRef, id string, status models.InterviewStatus) (*models.Interview, error) {
	iv, err := s.get(ctx, op, id)
	if err != nil {
		return nil, err
	}
	if iv.Status == status {
		return iv, nil
	}
	if iv.Status != models.InterviewScheduled {
		return nil, utils.E(utils.CodeFailedPrecondition, op, "interview is already "+string(iv.Status), nil)
	}

	now := s.now()
	if err := s.interviews.SetStatus(ctx, id, status, now); err != nil {
		return nil, utils.E(utils.CodeInternal, op, "failed to update interview", err)
	}
	iv.Status, iv.UpdatedAt = status, now

	recordActivity(ctx, s.activity, s.log, LogInput{
		Action:     models.ActionInterviewUpdated,
		Actor:      actor,
		TargetType: models.TargetInterview,
		TargetID:   iv.ID,
		JobID:      iv.JobID,
		Metadata:   map[string]any{"status": status},
	})
	return iv, nil
}

func (s *interviewService) Cancel(ctx context.Context, actor models.ActorRef, id string) (*models.Interview, error) {
	return s.setStatus(ctx, "InterviewService.Cancel", actor, id, models.InterviewCancelled)
}

func (s *interviewService) MarkNoShow(ctx context.Context, actor models.ActorRef, id string) (*models.Interview, error) {
	return s.setStatus(ctx, "InterviewService.MarkNoShow", actor, id, models.InterviewNoShow)
}

func (s *interviewService) SubmitFeedback(ctx context.Context, actor models.ActorRef, id, feedback string, rating int) (*models.Interview, error) {
	const op = "InterviewService.SubmitFeedback"

	if rating < 1 || rating > 5 {
		return nil, utils.E(utils.CodeInvalidArgument, op, "rating must be within 1..5", nil)
	}
	feedback = strings.TrimSpace(feedback)
	iv, err := s.get(ctx, op, id)
	if err != nil {
		return nil, err
	}
	if iv.Status == models.InterviewCancelled || iv.Status == models.InterviewNoShow {
		return nil, utils.E(utils.CodeFailedPrecondition, op, "interview did not take place", nil)
	}

	now := s.now()
	if err := s.interviews.SetFeedback(ctx, id, feedback, rating, now); err != nil {
		return nil, utils.E(utils.CodeInternal, op, "failed to save feedback", err)
	}
	iv.Feedback, iv.Rating, iv.Status, iv.UpdatedAt = feedback, &rating, models.InterviewCompleted, now

	var recipients []Recipient
	if iv.CreatedBy != "" {
		recipients = []Recipient{{MemberID: iv.CreatedBy, Kind: models.NotifyInterview}}
	}
	recordActivity(ctx, s.activity, s.log, LogInput{
		Action:     models.ActionFeedbackSubmitted,
		Actor:      actor,
		TargetType: models.TargetInterview,
		TargetID:   iv.ID,
		JobID:      iv.JobID,
		Metadata:   map[string]any{"rating": rating},
		Notify:     recipients,
	})
	return iv, nil
}

func (s *interviewService) ListByCandidate(ctx context.Context, candidateID string) ([]models.Interview, error) {
	const op = "InterviewService.ListByCandidate"

	out, err := s.interviews.ListByCandidate(ctx, candidateID)
	if err != nil {
		return nil, utils.E(utils.CodeInternal, op, "failed to list interviews", err)
	}
	return out, nil
}

func (s *interviewService) ListUpcoming(ctx context.Context, limit int64) ([]models.Interview, error) {
	const op = "InterviewService.ListUpcoming"

	if limit <= 0 || limit > 200 {
		limit = 50
	}
	out, err := s.interviews.ListUpcoming(ctx, s.now(), limit)
	if err != nil {
		return nil, utils.E(utils.CodeInternal, op, "failed to list upcoming interviews", err)
	}
	return out, nil
}
