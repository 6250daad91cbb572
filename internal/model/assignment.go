package model

import (
	"time"

	"github.com/google/uuid"
)

// Assignment links a task to one of its assignees. A task may carry any
// number of them; the pair is unique.
type Assignment struct {
	ID         uuid.UUID `gorm:"type:uuid;default:uuid_generate_v4();primaryKey"`
	TaskID     uuid.UUID `gorm:"type:uuid;not null;uniqueIndex:idx_assignments_task_user"`
	UserID     uuid.UUID `gorm:"type:uuid;not null;uniqueIndex:idx_assignments_task_user"`
	AssignedAt time.Time `gorm:"autoCreateTime"`

	Task Task `gorm:"foreignKey:TaskID"`
	User User `gorm:"foreignKey:UserID"`
}
