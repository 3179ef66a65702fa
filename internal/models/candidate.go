package models

import "time"

type CandidateStatus string

const (
	StatusApplied   CandidateStatus = "applied"
	StatusScreening CandidateStatus = "screening"
	StatusInterview CandidateStatus = "interview"
	StatusOffer     CandidateStatus = "offer"
	StatusHired     CandidateStatus = "hired"
	StatusRejected  CandidateStatus = "rejected"
	StatusWithdrawn CandidateStatus = "withdrawn"
)

type CandidateSource string

const (
	SourceReferral CandidateSource = "referral"
	SourceLinkedIn CandidateSource = "linkedin"
	SourceJobBoard CandidateSource = "job_board"
	SourceWebsite  CandidateSource = "website"
	SourceAgency   CandidateSource = "agency"
	SourceOther    CandidateSource = "other"
)

func (s CandidateSource) Valid() bool {
	switch s {
	case SourceReferral, SourceLinkedIn, SourceJobBoard, SourceWebsite, SourceAgency, SourceOther:
		return true
	}
	return false
}

// Evaluation scores are 0..100.
type Evaluation struct {
	Overall       float64 `bson:"overall" json:"overall"`
	Technical     float64 `bson:"technical" json:"technical"`
	Cultural      float64 `bson:"cultural" json:"cultural"`
	Communication float64 `bson:"communication" json:"communication"`
}

// TimelineEntry is append-only; Type carries the status the candidate moved to.
type TimelineEntry struct {
	Date        time.Time `bson:"date" json:"date"`
	Type        string    `bson:"type" json:"type"`
	Title       string    `bson:"title" json:"title"`
	Description string    `bson:"description,omitempty" json:"description,omitempty"`
}

// Demographics is voluntary EEOC self-identification, used for compliance reporting only.
type Demographics struct {
	Gender     string `bson:"gender,omitempty" json:"gender,omitempty"`
	Ethnicity  string `bson:"ethnicity,omitempty" json:"ethnicity,omitempty"`
	Veteran    *bool  `bson:"veteran,omitempty" json:"veteran,omitempty"`
	Disability *bool  `bson:"disability,omitempty" json:"disability,omitempty"`
}

type Candidate struct {
	ID    string `bson:"_id" json:"id"`
	Name  string `bson:"name" json:"name"`
	Email string `bson:"email" json:"email"`
	Phone string `bson:"phone,omitempty" json:"phone,omitempty"`

	JobID      string          `bson:"job_id" json:"job_id"`
	Position   string          `bson:"position" json:"position"`
	Location   string          `bson:"location,omitempty" json:"location,omitempty"`
	Experience int             `bson:"experience" json:"experience"` // years
	Skills     []string        `bson:"skills" json:"skills"`
	Source     CandidateSource `bson:"source" json:"source"`

	Status     CandidateStatus `bson:"status" json:"status"`
	Evaluation Evaluation      `bson:"evaluation" json:"evaluation"`

	ResumeFileID      string `bson:"resume_file_id,omitempty" json:"resume_file_id,omitempty"`
	CoverLetterFileID string `bson:"cover_letter_file_id,omitempty" json:"cover_letter_file_id,omitempty"`

	Demographics *Demographics  `bson:"demographics,omitempty" json:"demographics,omitempty"`
	Timeline     []TimelineEntry `bson:"timeline" json:"timeline"`

	CreatedAt time.Time  `bson:"created_at" json:"created_at"`
	UpdatedAt time.Time  `bson:"updated_at" json:"updated_at"`
	HiredAt   *time.Time `bson:"hired_at,omitempty" json:"hired_at,omitempty"`
}

// ReachedStage reports whether the timeline records a move into status.
func (c *Candidate) ReachedStage(status CandidateStatus) bool {
	if c.Status == status {
		return true
	}
	for _, e := range c.Timeline {
		if e.Type == string(status) {
			return true
		}
	}
	return false
}
