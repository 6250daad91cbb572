package repository

import (
	"context"

	"taskflow/internal/model"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type ActivityRepository struct {
	db *gorm.DB
}

type ActivityRepositoryInterface interface {
	Create(ctx context.Context, entry *model.ActivityLog) error
	ListByProject(ctx context.Context, projectID uuid.UUID, limit int) ([]model.ActivityLog, error)
}

var _ ActivityRepositoryInterface = (*ActivityRepository)(nil)

func NewActivityRepository(db *gorm.DB) *ActivityRepository {
	return &ActivityRepository{db: db}
}

// Create appends an entry. Entries are never updated or deleted outside
// the project delete cascade.
func (r *ActivityRepository) Create(ctx context.Context, entry *model.ActivityLog) error {
	return r.db.WithContext(ctx).Create(entry).Error
}

// ListByProject returns entries most recent first, capped to limit when
// limit is positive.
func (r *ActivityRepository) ListByProject(ctx context.Context, projectID uuid.UUID, limit int) ([]model.ActivityLog, error) {
	query := r.db.WithContext(ctx).
		Preload("Actor").
		Where("project_id = ?", projectID).
		Order("created_at DESC")
	if limit > 0 {
		query = query.Limit(limit)
	}

	var entries []model.ActivityLog
	err := query.Find(&entries).Error
	return entries, err
}
