package models

import "time"

type TaskStatus string

const (
	TaskTodo       TaskStatus = "todo"
	TaskInProgress TaskStatus = "in_progress"
	TaskDone       TaskStatus = "done"
	TaskCancelled  TaskStatus = "cancelled"
)

func (s TaskStatus) Valid() bool {
	switch s {
	case TaskTodo, TaskInProgress, TaskDone, TaskCancelled:
		return true
	}
	return false
}

func (s TaskStatus) Closed() bool { return s == TaskDone || s == TaskCancelled }

type TaskPriority string

const (
	PriorityLow    TaskPriority = "low"
	PriorityMedium TaskPriority = "medium"
	PriorityHigh   TaskPriority = "high"
	PriorityUrgent TaskPriority = "urgent"
)

func (p TaskPriority) Valid() bool {
	switch p {
	case PriorityLow, PriorityMedium, PriorityHigh, PriorityUrgent:
		return true
	}
	return false
}

type RelatedRef struct {
	Type TargetType `bson:"type" json:"type"`
	ID   string     `bson:"id" json:"id"`
}

type Task struct {
	ID          string       `bson:"_id" json:"id"`
	Title       string       `bson:"title" json:"title"`
	Description string       `bson:"description,omitempty" json:"description,omitempty"`
	AssigneeID  string       `bson:"assignee_id" json:"assignee_id"`
	CreatorID   string       `bson:"creator_id" json:"creator_id"`
	RelatedTo   *RelatedRef  `bson:"related_to,omitempty" json:"related_to,omitempty"`
	Priority    TaskPriority `bson:"priority" json:"priority"`
	DueDate     *time.Time   `bson:"due_date,omitempty" json:"due_date,omitempty"`
	Status      TaskStatus   `bson:"status" json:"status"`
	CompletedAt *time.Time   `bson:"completed_at,omitempty" json:"completed_at,omitempty"`
	CreatedAt   time.Time    `bson:"created_at" json:"created_at"`
	UpdatedAt   time.Time    `bson:"updated_at" json:"updated_at"`
}
