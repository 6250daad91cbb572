package model

import (
	"time"

	"github.com/google/uuid"
)

// MaxAttachmentSize is the declared-size ceiling for uploads. Anything
// larger is rejected before the storage collaborator is touched.
const MaxAttachmentSize = 10 << 20 // 10 MiB

// Attachment holds upload metadata only; the bytes live behind
// storage.FileStore under StoragePath.
type Attachment struct {
	ID          uuid.UUID `gorm:"type:uuid;default:uuid_generate_v4();primaryKey"`
	TaskID      uuid.UUID `gorm:"type:uuid;not null;index"`
	FileName    string    `gorm:"not null"`
	ContentType string
	Size        int64     `gorm:"not null"`
	StoragePath string    `gorm:"not null"`
	UploadedBy  uuid.UUID `gorm:"type:uuid;not null"`
	CreatedAt   time.Time

	Task     Task `gorm:"foreignKey:TaskID"`
	Uploader User `gorm:"foreignKey:UploadedBy"`
}
