package models

import (
	"time"
)

const (
	StatusTodo        = "todo"
	StatusInProgress  = "in-progress"
	StatusUnderReview = "under-review"
	StatusCompleted   = "completed"
)

const (
	PriorityLow    = "low"
	PriorityMedium = "medium"
	PriorityUrgent = "urgent"
)

// Task is a single board card. Optional attributes use the zero value with
// omitempty so an unset field is absent from both JSON and the stored
// document.
type Task struct {
	ID          string     `json:"id" bson:"_id,omitempty"`
	UserID      string     `json:"user_id" bson:"user_id"`
	Title       string     `json:"title" bson:"title"`
	Description string     `json:"description,omitempty" bson:"description,omitempty"`
	Status      string     `json:"status" bson:"status"`
	Priority    string     `json:"priority,omitempty" bson:"priority,omitempty"`
	Deadline    *time.Time `json:"deadline,omitempty" bson:"deadline,omitempty"`
	CreatedAt   time.Time  `json:"created_at" bson:"created_at"`
	UpdatedAt   time.Time  `json:"updated_at" bson:"updated_at"`
}

func ValidStatus(status string) bool {
	switch status {
	case StatusTodo, StatusInProgress, StatusUnderReview, StatusCompleted:
		return true
	}
	return false
}

func ValidPriority(priority string) bool {
	switch priority {
	case PriorityLow, PriorityMedium, PriorityUrgent:
		return true
	}
	return false
}

// TaskUpdate carries a partial update. Nil fields are left unchanged;
// any status transition is legal.
type TaskUpdate struct {
	Title       *string    `json:"title,omitempty"`
	Description *string    `json:"description,omitempty"`
	Status      *string    `json:"status,omitempty"`
	Priority    *string    `json:"priority,omitempty"`
	Deadline    *time.Time `json:"deadline,omitempty"`
}
