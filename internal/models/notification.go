package models

import "time"

type NotificationKind string

const (
	NotifyMention    NotificationKind = "mention"
	NotifyAssignment NotificationKind = "assignment"
	NotifyOffer      NotificationKind = "offer"
	NotifyTask       NotificationKind = "task"
	NotifyStatus     NotificationKind = "status"
	NotifyInterview  NotificationKind = "interview"
)

type Notification struct {
	ID          string           `gorm:"column:id;type:uuid;primaryKey" json:"id"`
	RecipientID string           `gorm:"column:recipient_id;type:text;index" json:"recipient_id"`
	Kind        NotificationKind `gorm:"column:kind;type:text" json:"kind"`
	Title       string           `gorm:"column:title;type:text" json:"title"`
	Body        string           `gorm:"column:body;type:text" json:"body"`
	ActivityID  *string          `gorm:"column:activity_id;type:uuid" json:"activity_id,omitempty"`
	ReadAt      *time.Time       `gorm:"column:read_at;type:timestamptz" json:"read_at,omitempty"`
	CreatedAt   time.Time        `gorm:"column:created_at;type:timestamptz;index" json:"created_at"`
}

func (Notification) TableName() string { return "notifications" }
