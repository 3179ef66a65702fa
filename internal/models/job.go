package models

import "time"

type JobStatus string

const (
	JobActive JobStatus = "active"
	JobPaused JobStatus = "paused"
	JobClosed JobStatus = "closed"
)

func (s JobStatus) Valid() bool {
	return s == JobActive || s == JobPaused || s == JobClosed
}

type JobType string

const (
	JobFullTime   JobType = "full_time"
	JobPartTime   JobType = "part_time"
	JobContract   JobType = "contract"
	JobInternship JobType = "internship"
)

func (t JobType) Valid() bool {
	switch t {
	case JobFullTime, JobPartTime, JobContract, JobInternship:
		return true
	}
	return false
}

type Urgency string

const (
	UrgencyLow    Urgency = "low"
	UrgencyMedium Urgency = "medium"
	UrgencyHigh   Urgency = "high"
)

func (u Urgency) Valid() bool {
	return u == UrgencyLow || u == UrgencyMedium || u == UrgencyHigh
}

type HiringAssignment struct {
	MemberID   string    `bson:"member_id" json:"member_id"`
	Role       string    `bson:"role" json:"role"` // e.g. "hiring_manager", "interviewer"
	AssignedAt time.Time `bson:"assigned_at" json:"assigned_at"`
}

type Job struct {
	ID         string    `bson:"_id" json:"id"`
	Title      string    `bson:"title" json:"title"`
	Department string    `bson:"department" json:"department"`
	Location   string    `bson:"location" json:"location"`
	Type       JobType   `bson:"type" json:"type"`
	Status     JobStatus `bson:"status" json:"status"`
	Urgency    Urgency   `bson:"urgency" json:"urgency"`

	SalaryMin int64  `bson:"salary_min" json:"salary_min"`
	SalaryMax int64  `bson:"salary_max" json:"salary_max"`
	Currency  string `bson:"currency" json:"currency"`

	Description  string   `bson:"description,omitempty" json:"description,omitempty"`
	Requirements []string `bson:"requirements" json:"requirements"`

	ApplicantCount int64              `bson:"applicant_count" json:"applicant_count"`
	HiringTeam     []HiringAssignment `bson:"hiring_team" json:"hiring_team"`

	CreatedBy string    `bson:"created_by" json:"created_by"`
	CreatedAt time.Time `bson:"created_at" json:"created_at"`
	UpdatedAt time.Time `bson:"updated_at" json:"updated_at"`
}
