package model

import (
	"time"

	"github.com/google/uuid"
)

// Membership binds a user to a project with exactly one role. The OWNER
// membership is created together with the project and is the only one per
// project; it can never be removed or re-roled.
type Membership struct {
	ID        uuid.UUID `gorm:"type:uuid;default:uuid_generate_v4();primaryKey"`
	ProjectID uuid.UUID `gorm:"type:uuid;not null;uniqueIndex:idx_memberships_project_user"`
	UserID    uuid.UUID `gorm:"type:uuid;not null;uniqueIndex:idx_memberships_project_user"`
	Role      string    `gorm:"not null;check:role IN ('OWNER', 'ADMIN', 'MANAGER', 'MEMBER', 'VIEWER')"`
	JoinedAt  time.Time `gorm:"autoCreateTime"`

	Project Project `gorm:"foreignKey:ProjectID"`
	User    User    `gorm:"foreignKey:UserID"`
}
