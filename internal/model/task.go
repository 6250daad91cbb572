package model

import (
	"time"

	"github.com/google/uuid"
)

type TaskStatus string

const (
	StatusTodo       TaskStatus = "TODO"
	StatusInProgress TaskStatus = "IN_PROGRESS"
	StatusDone       TaskStatus = "DONE"
)

func (s TaskStatus) Valid() bool {
	switch s {
	case StatusTodo, StatusInProgress, StatusDone:
		return true
	}
	return false
}

type TaskPriority string

const (
	PriorityLow    TaskPriority = "LOW"
	PriorityMedium TaskPriority = "MEDIUM"
	PriorityHigh   TaskPriority = "HIGH"
)

func (p TaskPriority) Valid() bool {
	switch p {
	case PriorityLow, PriorityMedium, PriorityHigh:
		return true
	}
	return false
}

type Task struct {
	ID          uuid.UUID    `gorm:"type:uuid;default:uuid_generate_v4();primaryKey"`
	ProjectID   uuid.UUID    `gorm:"type:uuid;not null;index"`
	Title       string       `gorm:"not null"`
	Description string
	Status      TaskStatus   `gorm:"type:varchar(20);not null;default:'TODO'"`
	Priority    TaskPriority `gorm:"type:varchar(10);not null;default:'MEDIUM'"`
	DueDate     *time.Time
	CreatedAt   time.Time
	UpdatedAt   time.Time

	Project Project `gorm:"foreignKey:ProjectID"`
}

// Overdue reports whether the task has slipped past its due date.
// Tasks without a due date or already DONE are never overdue.
func (t *Task) Overdue(now time.Time) bool {
	return t.DueDate != nil && t.DueDate.Before(now) && t.Status != StatusDone
}
