package model

import (
	"time"

	"github.com/google/uuid"
)

// Notification is a per-user event derived from an activity entry.
// Read state is monotonic: unread to read, never back.
type Notification struct {
	ID         uuid.UUID  `gorm:"type:uuid;default:uuid_generate_v4();primaryKey"`
	UserID     uuid.UUID  `gorm:"type:uuid;not null;index"`
	Type       string     `gorm:"not null"`
	Title      string     `gorm:"not null"`
	Message    string     `gorm:"type:text"`
	EntityType string
	EntityID   *uuid.UUID `gorm:"type:uuid"`
	IsRead     bool       `gorm:"not null;default:false"`
	CreatedAt  time.Time  `gorm:"autoCreateTime;index"`

	User User `gorm:"foreignKey:UserID"`
}
