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
	"github.com/hireloop/hireloop/internal/utils"
)

type OfferService interface {
	// Upsert creates or replaces the offer for (candidateID, jobID). A replaced
	// offer goes back to draft and loses its approvals.
	Upsert(ctx context.Context, actor models.ActorRef, candidateID, jobID string, comp models.Compensation) (*models.Offer, error)
	Get(ctx context.Context, id string) (*models.Offer, error)
	ListByCandidate(ctx context.Context, candidateID string) ([]models.Offer, error)
	Review(ctx context.Context, actor models.ActorRef, id string, decision models.ApprovalDecision, comment string) (*models.Offer, error)
	Send(ctx context.Context, actor models.ActorRef, id string) (*models.Offer, error)
	Respond(ctx context.Context, actor models.ActorRef, id string, accepted bool) (*models.Offer, error)
	Withdraw(ctx context.Context, actor models.ActorRef, id string) (*models.Offer, error)
	// ApplyEvent performs the cross-collection writes of an outbox event. It is
	// safe to call repeatedly for the same event.
	ApplyEvent(ctx context.Context, ev models.OutboxEvent) error
}

type OfferDeps struct {
	Offers            mongorepo.OfferRepository
	Approvals         mongorepo.ApprovalRepository
	Outbox            mongorepo.OutboxRepository
	Candidates        CandidateService
	Jobs              mongorepo.JobRepository
	Activity          ActivityService
	RequiredApprovals int
	Logger            *logrus.Logger
}

type offerService struct {
	OfferDeps
	now func() time.Time
}

func NewOfferService(d OfferDeps) OfferService {
	if d.RequiredApprovals < 1 {
		d.RequiredApprovals = 1
	}
	if d.Logger == nil {
		d.Logger = logrus.New()
	}
	return &offerService{OfferDeps: d, now: func() time.Time { return time.Now().UTC() }}
}

// aggregateStatus derives an offer status from its votes: any rejection
// keeps it in draft, otherwise it is approved once enough approvers agree.
func aggregateStatus(approvals []models.Approval, required int) models.OfferStatus {
	approved := 0
	for _, a := range approvals {
		if a.Decision == models.DecisionRejected {
			return models.OfferDraft
		}
		if a.Decision == models.DecisionApproved {
			approved++
		}
	}
	if approved > 0 && approved >= required {
		return models.OfferApproved
	}
	return models.OfferDraft
}

// actorKey identifies a participant in keyed child rows. A bootstrap admin has
// no member id and falls back to the user id.
func actorKey(actor models.ActorRef) string {
	if actor.MemberID != "" {
		return actor.MemberID
	}
	return "user:" + actor.UserID
}

func (s *offerService) load(ctx context.Context, op, id string) (*models.Offer, error) {
	o, err := s.Offers.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, utils.ErrNotFound) {
			return nil, utils.E(utils.CodeNotFound, op, "offer not found", err)
		}
		return nil, utils.E(utils.CodeInternal, op, "failed to get offer", err)
	}
	return o, nil
}

func (s *offerService) Upsert(ctx context.Context, actor models.ActorRef, candidateID, jobID string, comp models.Compensation) (*models.Offer, error) {
	const op = "OfferService.Upsert"

	if candidateID == "" || jobID == "" {
		return nil, utils.E(utils.CodeInvalidArgument, op, "candidate_id and job_id are required", nil)
	}
	if comp.BaseSalary <= 0 {
		return nil, utils.E(utils.CodeInvalidArgument, op, "base_salary must be > 0", nil)
	}
	if comp.Bonus < 0 {
		return nil, utils.E(utils.CodeInvalidArgument, op, "bonus must be >= 0", nil)
	}

	c, err := s.Candidates.Get(ctx, candidateID)
	if err != nil {
		return nil, err
	}
	if c.JobID != jobID {
		return nil, utils.E(utils.CodeInvalidArgument, op, "candidate did not apply to this job", nil)
	}
	switch c.Status {
	case models.StatusRejected, models.StatusWithdrawn, models.StatusHired:
		return nil, utils.E(utils.CodeFailedPrecondition, op, "candidate is no longer in process", nil)
	}
	job, err := s.Jobs.GetByID(ctx, jobID)
	if err != nil {
		if errors.Is(err, utils.ErrNotFound) {
			return nil, utils.E(utils.CodeNotFound, op, "job not found", err)
		}
		return nil, utils.E(utils.CodeInternal, op, "failed to load job", err)
	}
	comp.Currency = strings.ToUpper(strings.TrimSpace(comp.Currency))
	if comp.Currency == "" {
		comp.Currency = job.Currency
	}

	now := s.now()
	o := &models.Offer{
		ID:          uuid.NewString(),
		CandidateID: candidateID,
		JobID:       jobID,
		CreatedBy:   actor.MemberID,
		CreatedAt:   now,
	}
	reset := false
	existing, err := s.Offers.GetByCandidateJob(ctx, candidateID, jobID)
	switch {
	case err == nil:
		if existing.Status != models.OfferDraft && existing.Status != models.OfferApproved {
			return nil, utils.E(utils.CodeFailedPrecondition, op, "offer is already "+string(existing.Status), nil)
		}
		o.ID, o.CreatedBy, o.CreatedAt = existing.ID, existing.CreatedBy, existing.CreatedAt
		reset = true
	case errors.Is(err, utils.ErrNotFound):
	default:
		return nil, utils.E(utils.CodeInternal, op, "failed to load offer", err)
	}

	o.Compensation = comp
	o.Status = models.OfferDraft
	o.RequiredApprovals = s.RequiredApprovals
	o.UpdatedAt = now
	o.Approvals = []models.Approval{}
	if err := s.Offers.Save(ctx, o); err != nil {
		return nil, utils.E(utils.CodeInternal, op, "failed to save offer", err)
	}
	// approvals are cleared only once the new draft is stored
	if reset {
		if err := s.Approvals.DeleteByOffer(ctx, o.ID); err != nil {
			return nil, utils.E(utils.CodeInternal, op, "failed to reset approvals", err)
		}
	}

	recordActivity(ctx, s.Activity, s.Logger, LogInput{
		Action:     models.ActionOfferDrafted,
		Actor:      actor,
		TargetType: models.TargetOffer,
		TargetID:   o.ID,
		JobID:      jobID,
		Metadata:   map[string]any{"base_salary": comp.BaseSalary, "currency": comp.Currency},
		Notify:     hiringTeamRecipients(job, models.NotifyOffer),
	})
	return o, nil
}

func (s *offerService) Get(ctx context.Context, id string) (*models.Offer, error) {
	const op = "OfferService.Get"

	o, err := s.load(ctx, op, id)
	if err != nil {
		return nil, err
	}
	approvals, err := s.Approvals.ListByOffer(ctx, id)
	if err != nil {
		return nil, utils.E(utils.CodeInternal, op, "failed to load approvals", err)
	}
	o.Approvals = approvals
	return o, nil
}

func (s *offerService) ListByCandidate(ctx context.Context, candidateID string) ([]models.Offer, error) {
	const op = "OfferService.ListByCandidate"

	out, err := s.Offers.ListByCandidate(ctx, candidateID)
	if err != nil {
		return nil, utils.E(utils.CodeInternal, op, "failed to list offers", err)
	}
	return out, nil
}

func (s *offerService) Review(ctx context.Context, actor models.ActorRef, id string, decision models.ApprovalDecision, comment string) (*models.Offer, error) {
	const op = "OfferService.Review"

	if decision != models.DecisionApproved && decision != models.DecisionRejected {
		return nil, utils.E(utils.CodeInvalidArgument, op, "decision must be approved or rejected", nil)
	}
	o, err := s.load(ctx, op, id)
	if err != nil {
		return nil, err
	}
	if o.Status != models.OfferDraft && o.Status != models.OfferApproved {
		return nil, utils.E(utils.CodeFailedPrecondition, op, "offer is already "+string(o.Status), nil)
	}

	now := s.now()
	if err := s.Approvals.Upsert(ctx, &models.Approval{
		OfferID:      o.ID,
		ApproverID:   actorKey(actor),
		ApproverName: actor.DisplayName(),
		Decision:     decision,
		Comment:      strings.TrimSpace(comment),
		DecidedAt:    now,
	}); err != nil {
		return nil, utils.E(utils.CodeInternal, op, "failed to record approval", err)
	}

	approvals, err := s.Approvals.ListByOffer(ctx, o.ID)
	if err != nil {
		return nil, utils.E(utils.CodeInternal, op, "failed to load approvals", err)
	}
	required := o.RequiredApprovals
	if required < 1 {
		required = s.RequiredApprovals
	}
	if next := aggregateStatus(approvals, required); next != o.Status {
		if err := s.Offers.SetStatus(ctx, o.ID, models.OfferStatusUpdate{Status: next, UpdatedAt: now}); err != nil {
			return nil, utils.E(utils.CodeInternal, op, "failed to update offer status", err)
		}
		o.Status = next
	}
	o.Approvals = approvals
	o.UpdatedAt = now

	var recipients []Recipient
	if o.CreatedBy != "" {
		recipients = []Recipient{{MemberID: o.CreatedBy, Kind: models.NotifyOffer}}
	}
	recordActivity(ctx, s.Activity, s.Logger, LogInput{
		Action:     models.ActionOfferReviewed,
		Actor:      actor,
		TargetType: models.TargetOffer,
		TargetID:   o.ID,
		JobID:      o.JobID,
		Metadata:   map[string]any{"decision": decision, "status": o.Status},
		Message:    comment,
		Notify:     recipients,
	})
	return o, nil
}

func (s *offerService) Send(ctx context.Context, actor models.ActorRef, id string) (*models.Offer, error) {
	const op = "OfferService.Send"

	o, err := s.load(ctx, op, id)
	if err != nil {
		return nil, err
	}
	if o.Status != models.OfferApproved {
		return nil, utils.E(utils.CodeFailedPrecondition, op, "offer must be approved before sending", nil)
	}
	c, err := s.Candidates.Get(ctx, o.CandidateID)
	if err != nil {
		return nil, err
	}
	if c.Status != models.StatusInterview && c.Status != models.StatusOffer {
		return nil, utils.E(utils.CodeFailedPrecondition, op, "candidate must be at interview or offer stage", nil)
	}

	ev, err := s.enqueue(ctx, op, models.OutboxOfferSent, o, actor)
	if err != nil {
		return nil, err
	}
	if err := s.run(ctx, op, *ev); err != nil {
		return nil, err
	}

	o.Status = models.OfferSent
	o.SentAt = &ev.CreatedAt
	o.UpdatedAt = s.now()
	return o, nil
}

func (s *offerService) Respond(ctx context.Context, actor models.ActorRef, id string, accepted bool) (*models.Offer, error) {
	const op = "OfferService.Respond"

	o, err := s.load(ctx, op, id)
	if err != nil {
		return nil, err
	}
	if o.Status != models.OfferSent {
		return nil, utils.E(utils.CodeFailedPrecondition, op, "only sent offers can be answered", nil)
	}

	now := s.now()
	if accepted {
		ev, err := s.enqueue(ctx, op, models.OutboxOfferAccepted, o, actor)
		if err != nil {
			return nil, err
		}
		if err := s.run(ctx, op, *ev); err != nil {
			return nil, err
		}
		o.Status = models.OfferAccepted
		o.RespondedAt = &ev.CreatedAt
		o.UpdatedAt = now
		return o, nil
	}

	if err := s.Offers.SetStatus(ctx, o.ID, models.OfferStatusUpdate{Status: models.OfferDeclined, RespondedAt: &now, UpdatedAt: now}); err != nil {
		return nil, utils.E(utils.CodeInternal, op, "failed to update offer", err)
	}
	o.Status = models.OfferDeclined
	o.RespondedAt = &now
	o.UpdatedAt = now
	s.recordResponse(ctx, models.ActionOfferDeclined, actor, o, "")
	return o, nil
}

func (s *offerService) Withdraw(ctx context.Context, actor models.ActorRef, id string) (*models.Offer, error) {
	const op = "OfferService.Withdraw"

	o, err := s.load(ctx, op, id)
	if err != nil {
		return nil, err
	}
	if o.Status != models.OfferSent {
		return nil, utils.E(utils.CodeFailedPrecondition, op, "only sent offers can be withdrawn", nil)
	}

	now := s.now()
	if err := s.Offers.SetStatus(ctx, o.ID, models.OfferStatusUpdate{Status: models.OfferWithdrawn, UpdatedAt: now}); err != nil {
		return nil, utils.E(utils.CodeInternal, op, "failed to withdraw offer", err)
	}
	o.Status, o.UpdatedAt = models.OfferWithdrawn, now

	recordActivity(ctx, s.Activity, s.Logger, LogInput{
		Action:     models.ActionOfferWithdrawn,
		Actor:      actor,
		TargetType: models.TargetOffer,
		TargetID:   o.ID,
		JobID:      o.JobID,
	})
	return o, nil
}

// enqueue records the event, or returns the one left behind by an earlier attempt.
func (s *offerService) enqueue(ctx context.Context, op, kind string, o *models.Offer, actor models.ActorRef) (*models.OutboxEvent, error) {
	ev := &models.OutboxEvent{
		ID:   uuid.NewString(),
		Key:  kind + ":" + o.ID,
		Kind: kind,
		Payload: map[string]string{
			"offer_id":     o.ID,
			"candidate_id": o.CandidateID,
			"actor_id":     actor.MemberID,
			"actor_name":   actor.DisplayName(),
			"actor_role":   string(actor.Role),
		},
		Status:    models.OutboxPending,
		CreatedAt: s.now(),
	}
	err := s.Outbox.Insert(ctx, ev)
	if err == nil {
		return ev, nil
	}
	if !errors.Is(err, utils.ErrDuplicate) {
		return nil, utils.E(utils.CodeInternal, op, "failed to record outbox event", err)
	}
	prev, gerr := s.Outbox.GetByKey(ctx, ev.Key)
	if gerr != nil {
		return nil, utils.E(utils.CodeInternal, op, "failed to load outbox event", gerr)
	}
	return prev, nil
}

func (s *offerService) run(ctx context.Context, op string, ev models.OutboxEvent) error {
	if err := s.ApplyEvent(ctx, ev); err != nil {
		s.Logger.WithError(err).WithField("outbox_key", ev.Key).Warn("outbox event left pending")
		return err
	}
	if ev.Status != models.OutboxDone {
		if err := s.Outbox.MarkDone(ctx, ev.ID, s.now()); err != nil {
			s.Logger.WithError(err).WithField("outbox_key", ev.Key).Warn("outbox event not marked done")
		}
	}
	return nil
}

func (s *offerService) ApplyEvent(ctx context.Context, ev models.OutboxEvent) error {
	const op = "OfferService.ApplyEvent"

	o, err := s.load(ctx, op, ev.Payload["offer_id"])
	if err != nil {
		return err
	}
	at := ev.CreatedAt

	switch ev.Kind {
	case models.OutboxOfferSent:
		if o.Status == models.OfferApproved {
			if err := s.Offers.SetStatus(ctx, o.ID, models.OfferStatusUpdate{Status: models.OfferSent, SentAt: &at, UpdatedAt: s.now()}); err != nil {
				return utils.E(utils.CodeInternal, op, "failed to mark offer sent", err)
			}
		}
		c, err := s.Candidates.Get(ctx, o.CandidateID)
		if err != nil {
			return err
		}
		if c.Status == models.StatusInterview {
			if _, err := s.Candidates.Transition(ctx, c.ID, models.StatusOffer, "Offer sent"); err != nil {
				return err
			}
		}
		s.recordResponse(ctx, models.ActionOfferSent, eventActor(ev), o, ev.Key)
		return nil

	case models.OutboxOfferAccepted:
		if o.Status == models.OfferSent {
			if err := s.Offers.SetStatus(ctx, o.ID, models.OfferStatusUpdate{Status: models.OfferAccepted, RespondedAt: &at, UpdatedAt: s.now()}); err != nil {
				return utils.E(utils.CodeInternal, op, "failed to mark offer accepted", err)
			}
		}
		c, err := s.Candidates.Get(ctx, o.CandidateID)
		if err != nil {
			return err
		}
		if c.Status == models.StatusOffer {
			if _, err := s.Candidates.Transition(ctx, c.ID, models.StatusHired, "Offer accepted"); err != nil {
				return err
			}
		}
		s.recordResponse(ctx, models.ActionOfferAccepted, eventActor(ev), o, ev.Key)
		return nil
	}
	return utils.E(utils.CodeInvalidArgument, op, "unknown outbox event kind "+ev.Kind, nil)
}

// recordResponse logs a send/accept/decline and notifies the offer's author.
// Outbox-driven entries carry the event key, so whichever path applies the
// event first writes the entry and replays are no-ops.
func (s *offerService) recordResponse(ctx context.Context, action models.ActivityAction, actor models.ActorRef, o *models.Offer, key string) {
	var recipients []Recipient
	if o.CreatedBy != "" {
		recipients = []Recipient{{MemberID: o.CreatedBy, Kind: models.NotifyOffer}}
	}
	recordActivity(ctx, s.Activity, s.Logger, LogInput{
		Action:         action,
		Actor:          actor,
		TargetType:     models.TargetOffer,
		TargetID:       o.ID,
		JobID:          o.JobID,
		Notify:         recipients,
		IdempotencyKey: key,
	})
}

// eventActor rebuilds the acting member frozen into an outbox payload.
func eventActor(ev models.OutboxEvent) models.ActorRef {
	return models.ActorRef{
		MemberID: ev.Payload["actor_id"],
		Name:     ev.Payload["actor_name"],
		Role:     models.MemberRole(ev.Payload["actor_role"]),
	}
}
