package services

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	"gorm.io/datatypes"

	"github.com/hireloop/hireloop/internal/models"
	"github.com/hireloop/hireloop/internal/notify"
	mongorepo "github.com/hireloop/hireloop/internal/repositories/mongo"
	pgrepo "github.com/hireloop/hireloop/internal/repositories/postgres"
	"github.com/hireloop/hireloop/internal/telemetry"
	"github.com/hireloop/hireloop/internal/utils"
)

var tracer = telemetry.Tracer("hireloop/services")

type Recipient struct {
	MemberID string
	Kind     models.NotificationKind
}

type LogInput struct {
	Action     models.ActivityAction
	Actor      models.ActorRef
	TargetType models.TargetType
	TargetID   string
	JobID      string
	Metadata   map[string]any
	// Message becomes the notification body.
	Message string
	Notify  []Recipient
	// IdempotencyKey is optional; a repeated key returns the first entry without writing.
	IdempotencyKey string
}

type ActivityService interface {
	Log(ctx context.Context, in LogInput) (*models.ActivityEntry, error)
	List(ctx context.Context, f pgrepo.ActivityFilter) ([]models.ActivityEntry, error)
}

type ActivityDeps struct {
	Activity   pgrepo.ActivityRepository
	Candidates mongorepo.CandidateRepository
	Jobs       mongorepo.JobRepository
	Interviews mongorepo.InterviewRepository
	Offers     mongorepo.OfferRepository
	Tasks      mongorepo.TaskRepository
	Members    pgrepo.TeamMemberRepository
	Sink       notify.Sink
	Publishers []notify.Publisher
	Logger     *logrus.Logger
}

type activityService struct {
	ActivityDeps
	now func() time.Time
}

func NewActivityService(d ActivityDeps) ActivityService {
	if d.Logger == nil {
		d.Logger = logrus.New()
	}
	return &activityService{ActivityDeps: d, now: func() time.Time { return time.Now().UTC() }}
}

var actionVerbs = map[models.ActivityAction]string{
	models.ActionCandidateCreated:   "added candidate",
	models.ActionStatusChanged:      "moved",
	models.ActionCandidateRejected:  "rejected",
	models.ActionEvaluationUpdated:  "updated the evaluation of",
	models.ActionFileAttached:       "attached a file to",
	models.ActionJobCreated:         "created job",
	models.ActionJobUpdated:         "updated job",
	models.ActionJobStatusChanged:   "changed the status of",
	models.ActionTeamAssigned:       "added you to the hiring team for",
	models.ActionInterviewScheduled: "scheduled an interview with",
	models.ActionInterviewUpdated:   "updated the interview with",
	models.ActionFeedbackSubmitted:  "submitted interview feedback for",
	models.ActionCommentAdded:       "commented on",
	models.ActionOfferDrafted:       "drafted an offer for",
	models.ActionOfferReviewed:      "reviewed the offer for",
	models.ActionOfferSent:          "sent the offer to",
	models.ActionOfferAccepted:      "recorded an accepted offer from",
	models.ActionOfferDeclined:      "recorded a declined offer from",
	models.ActionOfferWithdrawn:     "withdrew the offer for",
	models.ActionTaskCreated:        "assigned you",
	models.ActionTaskCompleted:      "completed",
	models.ActionTaskUpdated:        "updated",
	models.ActionMemberAdded:        "added team member",
	models.ActionMemberUpdated:      "updated team member",
}

func (s *activityService) Log(ctx context.Context, in LogInput) (*models.ActivityEntry, error) {
	const op = "ActivityService.Log"

	ctx, span := tracer.Start(ctx, op)
	defer span.End()

	if _, ok := actionVerbs[in.Action]; !ok {
		return nil, utils.E(utils.CodeInvalidArgument, op, "unknown action", nil)
	}
	if in.TargetType == "" || in.TargetID == "" {
		return nil, utils.E(utils.CodeInvalidArgument, op, "target_type and target_id are required", nil)
	}
	span.SetAttributes(
		telemetry.String("activity.action", string(in.Action)),
		telemetry.String("activity.target_type", string(in.TargetType)),
	)

	if in.IdempotencyKey != "" {
		existing, err := s.Activity.GetByIdempotencyKey(ctx, in.IdempotencyKey)
		if err == nil {
			return existing, nil
		}
		if !errors.Is(err, utils.ErrNotFound) {
			return nil, utils.E(utils.CodeInternal, op, "failed to check idempotency key", err)
		}
	}

	entry := &models.ActivityEntry{
		ID:         uuid.NewString(),
		Action:     in.Action,
		ActorID:    in.Actor.MemberID,
		ActorName:  in.Actor.DisplayName(),
		TargetType: in.TargetType,
		TargetID:   in.TargetID,
		TargetName: s.resolveTargetName(ctx, in.TargetType, in.TargetID),
		CreatedAt:  s.now(),
	}
	if in.JobID != "" {
		jobID := in.JobID
		entry.JobID = &jobID
	}
	if in.IdempotencyKey != "" {
		key := in.IdempotencyKey
		entry.IdempotencyKey = &key
	}
	if len(in.Metadata) > 0 {
		b, err := json.Marshal(in.Metadata)
		if err != nil {
			return nil, utils.E(utils.CodeInvalidArgument, op, "metadata is not serializable", err)
		}
		entry.Metadata = datatypes.JSON(b)
	}

	if err := s.Activity.Insert(ctx, entry); err != nil {
		if errors.Is(err, utils.ErrDuplicate) && in.IdempotencyKey != "" {
			// lost a race with the same key
			if existing, gerr := s.Activity.GetByIdempotencyKey(ctx, in.IdempotencyKey); gerr == nil {
				return existing, nil
			}
		}
		span.RecordError(err)
		return nil, utils.E(utils.CodeInternal, op, "failed to insert activity", err)
	}

	s.fanOut(ctx, entry, in)
	return entry, nil
}

func (s *activityService) fanOut(ctx context.Context, entry *models.ActivityEntry, in LogInput) {
	log := s.Logger.WithFields(logrus.Fields{
		"activity_id": entry.ID,
		"action":      entry.Action,
	})

	if s.Sink != nil {
		title := fmt.Sprintf("%s %s %s", entry.ActorName, actionVerbs[entry.Action], entry.TargetName)
		seen := map[string]struct{}{}
		for _, r := range in.Notify {
			if r.MemberID == "" || r.MemberID == in.Actor.MemberID {
				continue
			}
			if _, dup := seen[r.MemberID]; dup {
				continue
			}
			seen[r.MemberID] = struct{}{}

			activityID := entry.ID
			n := models.Notification{
				ID:          uuid.NewString(),
				RecipientID: r.MemberID,
				Kind:        r.Kind,
				Title:       title,
				Body:        in.Message,
				ActivityID:  &activityID,
				CreatedAt:   entry.CreatedAt,
			}
			if err := s.Sink.Send(ctx, n); err != nil {
				log.WithError(err).WithField("recipient_id", r.MemberID).Warn("notification send failed")
			}
		}
	}

	for _, p := range s.Publishers {
		if err := p.Publish(ctx, entry); err != nil {
			log.WithError(err).Warn("activity publish failed")
		}
	}
}

func (s *activityService) resolveTargetName(ctx context.Context, typ models.TargetType, id string) string {
	candidateName := func(candidateID string) string {
		if s.Candidates == nil {
			return models.UnknownTargetName
		}
		c, err := s.Candidates.GetByID(ctx, candidateID)
		if err != nil {
			return models.UnknownTargetName
		}
		return c.Name
	}

	switch typ {
	case models.TargetCandidate:
		return candidateName(id)
	case models.TargetJob:
		if s.Jobs != nil {
			if j, err := s.Jobs.GetByID(ctx, id); err == nil {
				return j.Title
			}
		}
	case models.TargetOffer:
		if s.Offers != nil {
			if o, err := s.Offers.GetByID(ctx, id); err == nil {
				return candidateName(o.CandidateID)
			}
		}
	case models.TargetInterview:
		if s.Interviews != nil {
			if iv, err := s.Interviews.GetByID(ctx, id); err == nil {
				return candidateName(iv.CandidateID)
			}
		}
	case models.TargetTask:
		if s.Tasks != nil {
			if t, err := s.Tasks.GetByID(ctx, id); err == nil {
				return t.Title
			}
		}
	case models.TargetMember:
		if s.Members != nil {
			if m, err := s.Members.GetByID(ctx, id); err == nil {
				return m.Name
			}
		}
	}
	return models.UnknownTargetName
}

func (s *activityService) List(ctx context.Context, f pgrepo.ActivityFilter) ([]models.ActivityEntry, error) {
	const op = "ActivityService.List"

	if f.Limit > 200 {
		f.Limit = 200
	}
	rows, err := s.Activity.List(ctx, f)
	if err != nil {
		return nil, utils.E(utils.CodeInternal, op, "failed to list activity", err)
	}
	return rows, nil
}

// recordActivity logs an activity entry for a mutation that already succeeded.
// Fan-out failures are logged and never undo or fail the mutation.
func recordActivity(ctx context.Context, a ActivityService, l *logrus.Logger, in LogInput) {
	if a == nil {
		return
	}
	if _, err := a.Log(ctx, in); err != nil && l != nil {
		l.WithError(err).WithFields(logrus.Fields{
			"action":    in.Action,
			"target_id": in.TargetID,
		}).Warn("activity log failed")
	}
}

func hiringTeamRecipients(job *models.Job, kind models.NotificationKind) []Recipient {
	if job == nil {
		return nil
	}
	out := make([]Recipient, 0, len(job.HiringTeam))
	for _, a := range job.HiringTeam {
		out = append(out, Recipient{MemberID: a.MemberID, Kind: kind})
	}
	return out
}
