package services

import (
	"context"
	"errors"
	"net/mail"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	"golang.org/x/sync/errgroup"

	"github.com/hireloop/hireloop/internal/models"
	"github.com/hireloop/hireloop/internal/pipeline"
	mongorepo "github.com/hireloop/hireloop/internal/repositories/mongo"
	"github.com/hireloop/hireloop/internal/utils"
)

type CreateCandidateInput struct {
	Name         string
	Email        string
	Phone        string
	JobID        string
	Location     string
	Experience   int
	Skills       []string
	Source       models.CandidateSource
	Demographics *models.Demographics
}

type CandidateDetails struct {
	Candidate  *models.Candidate  `json:"candidate"`
	Job        *models.Job        `json:"job,omitempty"`
	Interviews []models.Interview `json:"interviews"`
	Offers     []models.Offer     `json:"offers"`
	Comments   []models.Comment   `json:"comments"`
}

type CandidateService interface {
	Create(ctx context.Context, actor models.ActorRef, in CreateCandidateInput) (*models.Candidate, error)
	Get(ctx context.Context, id string) (*models.Candidate, error)
	GetWithRelations(ctx context.Context, id string) (*CandidateDetails, error)
	List(ctx context.Context, f mongorepo.CandidateFilter) ([]models.Candidate, error)

	Advance(ctx context.Context, actor models.ActorRef, id, note string) (*models.Candidate, error)
	Reject(ctx context.Context, actor models.ActorRef, id, reason string) (*models.Candidate, error)
	// Transition moves the candidate one legal step to `to`. It is a no-op when the
	// candidate is already at `to`, which makes replayed side effects safe.
	Transition(ctx context.Context, id string, to models.CandidateStatus, description string) (*models.Candidate, error)

	UpdateEvaluation(ctx context.Context, actor models.ActorRef, id string, ev models.Evaluation) (*models.Candidate, error)
	UpdateDetails(ctx context.Context, actor models.ActorRef, id, name, email, phone string) (*models.Candidate, error)
	AttachFile(ctx context.Context, actor models.ActorRef, id string, kind models.FileKind, storageID string) (*models.Candidate, error)
}

type candidateService struct {
	candidates mongorepo.CandidateRepository
	jobs       mongorepo.JobRepository
	interviews mongorepo.InterviewRepository
	offers     mongorepo.OfferRepository
	comments   mongorepo.CommentRepository
	activity   ActivityService
	log        *logrus.Logger
	now        func() time.Time
}

func NewCandidateService(
	candidates mongorepo.CandidateRepository,
	jobs mongorepo.JobRepository,
	interviews mongorepo.InterviewRepository,
	offers mongorepo.OfferRepository,
	comments mongorepo.CommentRepository,
	activity ActivityService,
	log *logrus.Logger,
) CandidateService {
	if log == nil {
		log = logrus.New()
	}
	return &candidateService{
		candidates: candidates,
		jobs:       jobs,
		interviews: interviews,
		offers:     offers,
		comments:   comments,
		activity:   activity,
		log:        log,
		now:        func() time.Time { return time.Now().UTC() },
	}
}

func (s *candidateService) Create(ctx context.Context, actor models.ActorRef, in CreateCandidateInput) (*models.Candidate, error) {
	const op = "CandidateService.Create"

	in.Name = strings.TrimSpace(in.Name)
	in.Email = strings.TrimSpace(in.Email)
	if in.Name == "" {
		return nil, utils.E(utils.CodeInvalidArgument, op, "name is required", nil)
	}
	if _, err := mail.ParseAddress(in.Email); err != nil {
		return nil, utils.E(utils.CodeInvalidArgument, op, "email is invalid", err)
	}
	if in.JobID == "" {
		return nil, utils.E(utils.CodeInvalidArgument, op, "job_id is required", nil)
	}
	if in.Experience < 0 {
		return nil, utils.E(utils.CodeInvalidArgument, op, "experience must be >= 0", nil)
	}
	if in.Source == "" {
		in.Source = models.SourceOther
	}
	if !in.Source.Valid() {
		return nil, utils.E(utils.CodeInvalidArgument, op, "unknown source", nil)
	}

	job, err := s.jobs.GetByID(ctx, in.JobID)
	if err != nil {
		if errors.Is(err, utils.ErrNotFound) {
			return nil, utils.E(utils.CodeNotFound, op, "job not found", err)
		}
		return nil, utils.E(utils.CodeInternal, op, "failed to load job", err)
	}
	if job.Status != models.JobActive {
		return nil, utils.E(utils.CodeFailedPrecondition, op, "job is not accepting applications", nil)
	}

	now := s.now()
	c := &models.Candidate{
		ID:           uuid.NewString(),
		Name:         in.Name,
		Email:        in.Email,
		Phone:        strings.TrimSpace(in.Phone),
		JobID:        job.ID,
		Position:     job.Title,
		Location:     strings.TrimSpace(in.Location),
		Experience:   in.Experience,
		Skills:       normalizeSkills(in.Skills),
		Source:       in.Source,
		Status:       models.StatusApplied,
		Demographics: in.Demographics,
		Timeline:     []models.TimelineEntry{pipeline.Entry(models.StatusApplied, now, "")},
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	if err := s.candidates.Create(ctx, c); err != nil {
		return nil, utils.E(utils.CodeInternal, op, "failed to create candidate", err)
	}

	if err := s.jobs.IncrementApplicants(ctx, job.ID, 1); err != nil {
		s.log.WithError(err).WithField("job_id", job.ID).Warn("applicant count not incremented")
	}

	recordActivity(ctx, s.activity, s.log, LogInput{
		Action:     models.ActionCandidateCreated,
		Actor:      actor,
		TargetType: models.TargetCandidate,
		TargetID:   c.ID,
		JobID:      job.ID,
		Metadata:   map[string]any{"source": c.Source, "position": c.Position},
		Notify:     hiringTeamRecipients(job, models.NotifyStatus),
	})
	return c, nil
}

func (s *candidateService) Get(ctx context.Context, id string) (*models.Candidate, error) {
	const op = "CandidateService.Get"

	c, err := s.candidates.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, utils.ErrNotFound) {
			return nil, utils.E(utils.CodeNotFound, op, "candidate not found", err)
		}
		return nil, utils.E(utils.CodeInternal, op, "failed to get candidate", err)
	}
	return c, nil
}

func (s *candidateService) GetWithRelations(ctx context.Context, id string) (*CandidateDetails, error) {
	const op = "CandidateService.GetWithRelations"

	c, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}

	out := &CandidateDetails{Candidate: c}
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		j, err := s.jobs.GetByID(gctx, c.JobID)
		if errors.Is(err, utils.ErrNotFound) {
			return nil
		}
		out.Job = j
		return err
	})
	g.Go(func() error {
		ivs, err := s.interviews.ListByCandidate(gctx, c.ID)
		out.Interviews = ivs
		return err
	})
	g.Go(func() error {
		offers, err := s.offers.ListByCandidate(gctx, c.ID)
		out.Offers = offers
		return err
	})
	g.Go(func() error {
		comments, err := s.comments.ListByEntity(gctx, models.EntityCandidate, c.ID, false)
		out.Comments = comments
		return err
	})
	if err := g.Wait(); err != nil {
		return nil, utils.E(utils.CodeInternal, op, "failed to load candidate relations", err)
	}
	return out, nil
}

func (s *candidateService) List(ctx context.Context, f mongorepo.CandidateFilter) ([]models.Candidate, error) {
	const op = "CandidateService.List"

	if f.Status != "" && !pipeline.Valid(f.Status) {
		return nil, utils.E(utils.CodeInvalidArgument, op, "unknown status", nil)
	}
	out, err := s.candidates.List(ctx, f)
	if err != nil {
		return nil, utils.E(utils.CodeInternal, op, "failed to list candidates", err)
	}
	return out, nil
}

func (s *candidateService) Advance(ctx context.Context, actor models.ActorRef, id, note string) (*models.Candidate, error) {
	const op = "CandidateService.Advance"

	c, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	from := c.Status
	next, err := pipeline.Advance(from)
	if err != nil {
		return nil, utils.E(utils.CodeInvalidTransition, op, "candidate cannot advance from "+string(from), err)
	}
	if err := s.apply(ctx, op, c, next, note); err != nil {
		return nil, err
	}

	s.logStatusChange(ctx, actor, c, models.ActionStatusChanged, from, note)
	return c, nil
}

func (s *candidateService) Reject(ctx context.Context, actor models.ActorRef, id, reason string) (*models.Candidate, error) {
	const op = "CandidateService.Reject"

	c, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	from := c.Status
	next, err := pipeline.Reject(from)
	if err != nil {
		return nil, utils.E(utils.CodeInvalidTransition, op, "candidate cannot be rejected from "+string(from), err)
	}
	if err := s.apply(ctx, op, c, next, reason); err != nil {
		return nil, err
	}

	s.logStatusChange(ctx, actor, c, models.ActionCandidateRejected, from, reason)
	return c, nil
}

func (s *candidateService) Transition(ctx context.Context, id string, to models.CandidateStatus, description string) (*models.Candidate, error) {
	const op = "CandidateService.Transition"

	c, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if c.Status == to {
		return c, nil
	}
	if !pipeline.Allowed(c.Status, to) {
		return nil, utils.E(utils.CodeInvalidTransition, op, string(c.Status)+" -> "+string(to)+" is not allowed", pipeline.ErrInvalidTransition)
	}
	if err := s.apply(ctx, op, c, to, description); err != nil {
		return nil, err
	}
	return c, nil
}

// apply persists from -> to with one timeline entry and mirrors the write onto c.
func (s *candidateService) apply(ctx context.Context, op string, c *models.Candidate, to models.CandidateStatus, description string) error {
	now := s.now()
	entry := pipeline.Entry(to, now, description)
	var hiredAt *time.Time
	if to == models.StatusHired {
		hiredAt = &now
	}

	if err := s.candidates.UpdateStatus(ctx, c.ID, c.Status, to, entry, hiredAt); err != nil {
		if errors.Is(err, utils.ErrNotFound) {
			return utils.E(utils.CodeConflict, op, "candidate status changed concurrently", err)
		}
		return utils.E(utils.CodeInternal, op, "failed to update candidate status", err)
	}

	c.Status = to
	c.Timeline = append(c.Timeline, entry)
	c.UpdatedAt = now
	if hiredAt != nil {
		c.HiredAt = hiredAt
	}
	return nil
}

func (s *candidateService) logStatusChange(ctx context.Context, actor models.ActorRef, c *models.Candidate, action models.ActivityAction, from models.CandidateStatus, note string) {
	var recipients []Recipient
	if job, err := s.jobs.GetByID(ctx, c.JobID); err == nil {
		recipients = hiringTeamRecipients(job, models.NotifyStatus)
	}
	recordActivity(ctx, s.activity, s.log, LogInput{
		Action:     action,
		Actor:      actor,
		TargetType: models.TargetCandidate,
		TargetID:   c.ID,
		JobID:      c.JobID,
		Metadata:   map[string]any{"from": from, "to": c.Status},
		Message:    note,
		Notify:     recipients,
	})
}

func (s *candidateService) UpdateEvaluation(ctx context.Context, actor models.ActorRef, id string, ev models.Evaluation) (*models.Candidate, error) {
	const op = "CandidateService.UpdateEvaluation"

	for _, v := range []float64{ev.Overall, ev.Technical, ev.Cultural, ev.Communication} {
		if v < 0 || v > 100 {
			return nil, utils.E(utils.CodeInvalidArgument, op, "scores must be within 0..100", nil)
		}
	}
	c, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}

	now := s.now()
	if err := s.candidates.UpdateEvaluation(ctx, id, ev, now); err != nil {
		return nil, utils.E(utils.CodeInternal, op, "failed to update evaluation", err)
	}
	c.Evaluation = ev
	c.UpdatedAt = now

	recordActivity(ctx, s.activity, s.log, LogInput{
		Action:     models.ActionEvaluationUpdated,
		Actor:      actor,
		TargetType: models.TargetCandidate,
		TargetID:   c.ID,
		JobID:      c.JobID,
		Metadata:   map[string]any{"overall": ev.Overall},
	})
	return c, nil
}

func (s *candidateService) UpdateDetails(ctx context.Context, actor models.ActorRef, id, name, email, phone string) (*models.Candidate, error) {
	const op = "CandidateService.UpdateDetails"

	name = strings.TrimSpace(name)
	email = strings.TrimSpace(email)
	if name == "" {
		return nil, utils.E(utils.CodeInvalidArgument, op, "name is required", nil)
	}
	if _, err := mail.ParseAddress(email); err != nil {
		return nil, utils.E(utils.CodeInvalidArgument, op, "email is invalid", err)
	}
	c, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}

	now := s.now()
	phone = strings.TrimSpace(phone)
	if err := s.candidates.UpdateDetails(ctx, id, name, email, phone, now); err != nil {
		return nil, utils.E(utils.CodeInternal, op, "failed to update candidate", err)
	}
	c.Name, c.Email, c.Phone, c.UpdatedAt = name, email, phone, now
	return c, nil
}

func (s *candidateService) AttachFile(ctx context.Context, actor models.ActorRef, id string, kind models.FileKind, storageID string) (*models.Candidate, error) {
	const op = "CandidateService.AttachFile"

	if !kind.Valid() {
		return nil, utils.E(utils.CodeInvalidArgument, op, "unknown file kind", nil)
	}
	if strings.TrimSpace(storageID) == "" {
		return nil, utils.E(utils.CodeInvalidArgument, op, "storage_id is required", nil)
	}
	c, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}

	now := s.now()
	if err := s.candidates.SetFile(ctx, id, kind, storageID, now); err != nil {
		return nil, utils.E(utils.CodeInternal, op, "failed to attach file", err)
	}
	switch kind {
	case models.FileResume:
		c.ResumeFileID = storageID
	case models.FileCoverLetter:
		c.CoverLetterFileID = storageID
	}
	c.UpdatedAt = now

	recordActivity(ctx, s.activity, s.log, LogInput{
		Action:     models.ActionFileAttached,
		Actor:      actor,
		TargetType: models.TargetCandidate,
		TargetID:   c.ID,
		JobID:      c.JobID,
		Metadata:   map[string]any{"kind": kind, "storage_id": storageID},
	})
	return c, nil
}

func normalizeSkills(in []string) []string {
	out := make([]string, 0, len(in))
	seen := make(map[string]struct{}, len(in))
	for _, s := range in {
		s = strings.TrimSpace(s)
		if s == "" {
			continue
		}
		k := strings.ToLower(s)
		if _, ok := seen[k]; ok {
			continue
		}
		seen[k] = struct{}{}
		out = append(out, s)
	}
	return out
}
