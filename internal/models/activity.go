package models

import (
	"time"

	"gorm.io/datatypes"
)

type ActivityAction string

const (
	ActionCandidateCreated   ActivityAction = "candidate_created"
	ActionStatusChanged      ActivityAction = "status_changed"
	ActionCandidateRejected  ActivityAction = "candidate_rejected"
	ActionEvaluationUpdated  ActivityAction = "evaluation_updated"
	ActionFileAttached       ActivityAction = "file_attached"
	ActionJobCreated         ActivityAction = "job_created"
	ActionJobUpdated         ActivityAction = "job_updated"
	ActionJobStatusChanged   ActivityAction = "job_status_changed"
	ActionTeamAssigned       ActivityAction = "team_assigned"
	ActionInterviewScheduled ActivityAction = "interview_scheduled"
	ActionInterviewUpdated   ActivityAction = "interview_updated"
	ActionFeedbackSubmitted  ActivityAction = "feedback_submitted"
	ActionCommentAdded       ActivityAction = "comment_added"
	ActionOfferDrafted       ActivityAction = "offer_drafted"
	ActionOfferReviewed      ActivityAction = "offer_reviewed"
	ActionOfferSent          ActivityAction = "offer_sent"
	ActionOfferAccepted      ActivityAction = "offer_accepted"
	ActionOfferDeclined      ActivityAction = "offer_declined"
	ActionOfferWithdrawn     ActivityAction = "offer_withdrawn"
	ActionTaskCreated        ActivityAction = "task_created"
	ActionTaskCompleted      ActivityAction = "task_completed"
	ActionTaskUpdated        ActivityAction = "task_updated"
	ActionMemberAdded        ActivityAction = "member_added"
	ActionMemberUpdated      ActivityAction = "member_updated"
)

type TargetType string

const (
	TargetCandidate TargetType = "candidate"
	TargetJob       TargetType = "job"
	TargetInterview TargetType = "interview"
	TargetOffer     TargetType = "offer"
	TargetTask      TargetType = "task"
	TargetMember    TargetType = "member"
)

// UnknownTargetName is stored when a target cannot be resolved at write time.
const UnknownTargetName = "Unknown"

// ActivityEntry is a snapshot: ActorName and TargetName are frozen at write time
// and never follow later renames or deletions of the referenced entities.
type ActivityEntry struct {
	ID             string         `gorm:"column:id;type:uuid;primaryKey" json:"id"`
	Action         ActivityAction `gorm:"column:action;type:text;index" json:"action"`
	ActorID        string         `gorm:"column:actor_id;type:text;index" json:"actor_id"`
	ActorName      string         `gorm:"column:actor_name;type:text" json:"actor_name"`
	TargetType     TargetType     `gorm:"column:target_type;type:text;index:idx_activity_target" json:"target_type"`
	TargetID       string         `gorm:"column:target_id;type:text;index:idx_activity_target" json:"target_id"`
	TargetName     string         `gorm:"column:target_name;type:text" json:"target_name"`
	JobID          *string        `gorm:"column:job_id;type:text;index" json:"job_id,omitempty"`
	Metadata       datatypes.JSON `gorm:"column:metadata;type:jsonb" json:"metadata,omitempty"`
	IdempotencyKey *string        `gorm:"column:idempotency_key;type:text;uniqueIndex" json:"-"`
	CreatedAt      time.Time      `gorm:"column:created_at;type:timestamptz;index" json:"created_at"`
}

func (ActivityEntry) TableName() string { return "activity_feed" }
