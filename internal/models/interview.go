package models

import "time"

type InterviewStatus string

const (
	InterviewScheduled InterviewStatus = "scheduled"
	InterviewCompleted InterviewStatus = "completed"
	InterviewCancelled InterviewStatus = "cancelled"
	InterviewNoShow    InterviewStatus = "no_show"
)

type InterviewType string

const (
	InterviewPhone     InterviewType = "phone"
	InterviewVideo     InterviewType = "video"
	InterviewOnsite    InterviewType = "onsite"
	InterviewTechnical InterviewType = "technical"
	InterviewPanel     InterviewType = "panel"
)

func (t InterviewType) Valid() bool {
	switch t {
	case InterviewPhone, InterviewVideo, InterviewOnsite, InterviewTechnical, InterviewPanel:
		return true
	}
	return false
}

type Interview struct {
	ID          string `bson:"_id" json:"id"`
	CandidateID string `bson:"candidate_id" json:"candidate_id"`
	JobID       string `bson:"job_id" json:"job_id"`

	ScheduledAt     time.Time     `bson:"scheduled_at" json:"scheduled_at"`
	EndsAt          time.Time     `bson:"ends_at" json:"ends_at"`
	DurationMinutes int           `bson:"duration_minutes" json:"duration_minutes"`
	Type            InterviewType `bson:"type" json:"type"`
	Location        string        `bson:"location,omitempty" json:"location,omitempty"`

	// Interviewers are display names, not team member references.
	Interviewers []string        `bson:"interviewers" json:"interviewers"`
	Status       InterviewStatus `bson:"status" json:"status"`

	Feedback string `bson:"feedback,omitempty" json:"feedback,omitempty"`
	Rating   *int   `bson:"rating,omitempty" json:"rating,omitempty"` // 1..5

	CreatedBy string    `bson:"created_by" json:"created_by"`
	CreatedAt time.Time `bson:"created_at" json:"created_at"`
	UpdatedAt time.Time `bson:"updated_at" json:"updated_at"`
}

// Overlaps reports whether [ScheduledAt, EndsAt) intersects [start, end).
func (iv *Interview) Overlaps(start, end time.Time) bool {
	return iv.ScheduledAt.Before(end) && start.Before(iv.EndsAt)
}
