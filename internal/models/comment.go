package models

import "time"

type EntityType string

const (
	EntityCandidate EntityType = "candidate"
	EntityJob       EntityType = "job"
	EntityInterview EntityType = "interview"
)

func (t EntityType) Valid() bool {
	return t == EntityCandidate || t == EntityJob || t == EntityInterview
}

type Comment struct {
	ID         string     `bson:"_id" json:"id"`
	EntityType EntityType `bson:"entity_type" json:"entity_type"`
	EntityID   string     `bson:"entity_id" json:"entity_id"`
	AuthorID   string     `bson:"author_id" json:"author_id"`
	AuthorName string     `bson:"author_name" json:"author_name"`
	Content    string     `bson:"content" json:"content"`
	ParentID   string     `bson:"parent_id,omitempty" json:"parent_id,omitempty"`
	Mentions   []string   `bson:"mentions" json:"mentions"`
	IsDeleted  bool       `bson:"is_deleted" json:"is_deleted"`
	EditedAt   *time.Time `bson:"edited_at,omitempty" json:"edited_at,omitempty"`
	CreatedAt  time.Time  `bson:"created_at" json:"created_at"`

	Reactions []Reaction `bson:"-" json:"reactions"`
}

// Reaction rows are unique per (comment_id, user_id, emoji).
type Reaction struct {
	ID        string    `bson:"_id" json:"id"`
	CommentID string    `bson:"comment_id" json:"comment_id"`
	UserID    string    `bson:"user_id" json:"user_id"`
	Emoji     string    `bson:"emoji" json:"emoji"`
	CreatedAt time.Time `bson:"created_at" json:"created_at"`
}

type CommentThread struct {
	Comment
	Replies []*CommentThread `json:"replies"`
}
