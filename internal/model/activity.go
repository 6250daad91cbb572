package model

import (
	"time"

	"github.com/google/uuid"
)

// Activity action kinds.
const (
	ActionProjectCreated       = "PROJECT_CREATED"
	ActionProjectShared        = "PROJECT_SHARED"
	ActionProjectMemberRemoved = "PROJECT_MEMBER_REMOVED"
	ActionProjectRoleUpdated   = "PROJECT_ROLE_UPDATED"
	ActionTaskCreated          = "TASK_CREATED"
	ActionTaskUpdated          = "TASK_UPDATED"
	ActionTaskDeleted          = "TASK_DELETED"
	ActionTaskAssigned         = "TASK_ASSIGNED"
	ActionTaskUnassigned       = "TASK_UNASSIGNED"
	ActionCommentAdded         = "COMMENT_ADDED"
	ActionCommentDeleted       = "COMMENT_DELETED"
	ActionAttachmentAdded      = "ATTACHMENT_ADDED"
	ActionAttachmentDeleted    = "ATTACHMENT_DELETED"
)

// Entity types referenced by activity entries and notifications.
const (
	EntityProject = "PROJECT"
	EntityTask    = "TASK"
	EntityComment = "COMMENT"
)

// ActivityLog is an append-only audit record of one accepted mutation.
// Rows are never updated or deleted except by project cascade.
type ActivityLog struct {
	ID          uuid.UUID  `gorm:"type:uuid;default:uuid_generate_v4();primaryKey"`
	ProjectID   uuid.UUID  `gorm:"type:uuid;not null;index"`
	ActorID     uuid.UUID  `gorm:"type:uuid;not null"`
	Action      string     `gorm:"not null"`
	EntityType  string     `gorm:"not null"`
	EntityID    *uuid.UUID `gorm:"type:uuid"`
	Description string     `gorm:"type:text;not null"`
	CreatedAt   time.Time  `gorm:"autoCreateTime;index"`

	Project Project `gorm:"foreignKey:ProjectID"`
	Actor   User    `gorm:"foreignKey:ActorID"`
}
