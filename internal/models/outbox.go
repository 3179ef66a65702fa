package models

import "time"

type OutboxStatus string

const (
	OutboxPending OutboxStatus = "pending"
	OutboxDone    OutboxStatus = "done"
	OutboxFailed  OutboxStatus = "failed"
)

const (
	OutboxOfferSent     = "offer_sent"
	OutboxOfferAccepted = "offer_accepted"
)

// OutboxEvent records a multi-document side effect. Key is unique, so a replayed
// step never creates a second event; handlers must be idempotent.
type OutboxEvent struct {
	ID          string            `bson:"_id" json:"id"`
	Key         string            `bson:"key" json:"key"`
	Kind        string            `bson:"kind" json:"kind"`
	Payload     map[string]string `bson:"payload" json:"payload"`
	Status      OutboxStatus      `bson:"status" json:"status"`
	Attempts    int               `bson:"attempts" json:"attempts"`
	LastError   string            `bson:"last_error,omitempty" json:"last_error,omitempty"`
	CreatedAt   time.Time         `bson:"created_at" json:"created_at"`
	ProcessedAt *time.Time        `bson:"processed_at,omitempty" json:"processed_at,omitempty"`
}
