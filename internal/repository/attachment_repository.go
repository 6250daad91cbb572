package repository

import (
	"context"
	"errors"

	"taskflow/internal/model"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type AttachmentRepository struct {
	db *gorm.DB
}

type AttachmentRepositoryInterface interface {
	Create(ctx context.Context, attachment *model.Attachment) error
	GetByTaskAndID(ctx context.Context, taskID, id uuid.UUID) (*model.Attachment, error)
	ListByTask(ctx context.Context, taskID uuid.UUID) ([]model.Attachment, error)
	Delete(ctx context.Context, id uuid.UUID) error
}

var _ AttachmentRepositoryInterface = (*AttachmentRepository)(nil)

func NewAttachmentRepository(db *gorm.DB) *AttachmentRepository {
	return &AttachmentRepository{db: db}
}

func (r *AttachmentRepository) Create(ctx context.Context, attachment *model.Attachment) error {
	return r.db.WithContext(ctx).Create(attachment).Error
}

func (r *AttachmentRepository) GetByTaskAndID(ctx context.Context, taskID, id uuid.UUID) (*model.Attachment, error) {
	var attachment model.Attachment
	err := r.db.WithContext(ctx).
		Preload("Uploader").
		Where("id = ? AND task_id = ?", id, taskID).
		First(&attachment).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrAttachmentNotFound
	}
	if err != nil {
		return nil, err
	}
	return &attachment, nil
}

func (r *AttachmentRepository) ListByTask(ctx context.Context, taskID uuid.UUID) ([]model.Attachment, error) {
	var attachments []model.Attachment
	err := r.db.WithContext(ctx).
		Preload("Uploader").
		Where("task_id = ?", taskID).
		Order("created_at").
		Find(&attachments).Error
	return attachments, err
}

func (r *AttachmentRepository) Delete(ctx context.Context, id uuid.UUID) error {
	result := r.db.WithContext(ctx).Delete(&model.Attachment{}, "id = ?", id)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return ErrAttachmentNotFound
	}
	return nil
}
