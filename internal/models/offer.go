package models

import "time"

type OfferStatus string

const (
	OfferDraft     OfferStatus = "draft"
	OfferApproved  OfferStatus = "approved"
	OfferSent      OfferStatus = "sent"
	OfferAccepted  OfferStatus = "accepted"
	OfferDeclined  OfferStatus = "declined"
	OfferExpired   OfferStatus = "expired"
	OfferWithdrawn OfferStatus = "withdrawn"
)

type Compensation struct {
	BaseSalary int64      `bson:"base_salary" json:"base_salary"`
	Currency   string     `bson:"currency" json:"currency"`
	Bonus      int64      `bson:"bonus,omitempty" json:"bonus,omitempty"`
	Equity     string     `bson:"equity,omitempty" json:"equity,omitempty"`
	StartDate  *time.Time `bson:"start_date,omitempty" json:"start_date,omitempty"`
	Notes      string     `bson:"notes,omitempty" json:"notes,omitempty"`
}

type Offer struct {
	ID           string       `bson:"_id" json:"id"`
	CandidateID  string       `bson:"candidate_id" json:"candidate_id"`
	JobID        string       `bson:"job_id" json:"job_id"`
	Compensation Compensation `bson:"compensation" json:"compensation"`
	Status       OfferStatus  `bson:"status" json:"status"`

	RequiredApprovals int    `bson:"required_approvals" json:"required_approvals"`
	CreatedBy         string `bson:"created_by" json:"created_by"`

	SentAt      *time.Time `bson:"sent_at,omitempty" json:"sent_at,omitempty"`
	RespondedAt *time.Time `bson:"responded_at,omitempty" json:"responded_at,omitempty"`
	CreatedAt   time.Time  `bson:"created_at" json:"created_at"`
	UpdatedAt   time.Time  `bson:"updated_at" json:"updated_at"`

	Approvals []Approval `bson:"-" json:"approvals"`
}

type ApprovalDecision string

const (
	DecisionApproved ApprovalDecision = "approved"
	DecisionRejected ApprovalDecision = "rejected"
)

// Approval rows are unique per (offer_id, approver_id); a resubmission replaces the vote.
type Approval struct {
	OfferID      string           `bson:"offer_id" json:"offer_id"`
	ApproverID   string           `bson:"approver_id" json:"approver_id"`
	ApproverName string           `bson:"approver_name" json:"approver_name"`
	Decision     ApprovalDecision `bson:"decision" json:"decision"`
	Comment      string           `bson:"comment,omitempty" json:"comment,omitempty"`
	DecidedAt    time.Time        `bson:"decided_at" json:"decided_at"`
}

type OfferStatusUpdate struct {
	Status      OfferStatus
	SentAt      *time.Time
	RespondedAt *time.Time
	UpdatedAt   time.Time
}
