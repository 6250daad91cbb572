package repository

import (
	"context"
	"errors"

	"taskflow/internal/model"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type ProjectRepository struct {
	db *gorm.DB
}

type ProjectRepositoryInterface interface {
	CreateWithOwner(ctx context.Context, project *model.Project) error
	GetByID(ctx context.Context, id uuid.UUID) (*model.Project, error)
	GetOwned(ctx context.Context, ownerID uuid.UUID) ([]model.Project, error)
	DeleteCascade(ctx context.Context, id uuid.UUID) error
}

var _ ProjectRepositoryInterface = (*ProjectRepository)(nil)

func NewProjectRepository(db *gorm.DB) *ProjectRepository {
	return &ProjectRepository{db: db}
}

// CreateWithOwner creates the project together with its OWNER membership so
// the exactly-one-owner invariant holds from the first committed state.
func (r *ProjectRepository) CreateWithOwner(ctx context.Context, project *model.Project) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(project).Error; err != nil {
			return err
		}
		membership := model.Membership{
			ProjectID: project.ID,
			UserID:    project.OwnerID,
			Role:      model.RoleOwner.String(),
		}
		return tx.Create(&membership).Error
	})
}

func (r *ProjectRepository) GetByID(ctx context.Context, id uuid.UUID) (*model.Project, error) {
	var project model.Project
	err := r.db.WithContext(ctx).Preload("Owner").Where("id = ?", id).First(&project).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &project, nil
}

func (r *ProjectRepository) GetOwned(ctx context.Context, ownerID uuid.UUID) ([]model.Project, error) {
	var projects []model.Project
	err := r.db.WithContext(ctx).Preload("Owner").Where("owner_id = ?", ownerID).Find(&projects).Error
	return projects, err
}

// DeleteCascade removes the project and everything that belongs to it:
// assignments, comments and attachments of its tasks, then tasks, activity,
// memberships, and the project row. Notifications are per-user and outlive
// the project they point at.
func (r *ProjectRepository) DeleteCascade(ctx context.Context, id uuid.UUID) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		taskIDs := tx.Model(&model.Task{}).Select("id").Where("project_id = ?", id)

		if err := tx.Where("task_id IN (?)", taskIDs).Delete(&model.Assignment{}).Error; err != nil {
			return err
		}
		if err := tx.Where("task_id IN (?)", taskIDs).Delete(&model.Comment{}).Error; err != nil {
			return err
		}
		if err := tx.Where("task_id IN (?)", taskIDs).Delete(&model.Attachment{}).Error; err != nil {
			return err
		}
		if err := tx.Where("project_id = ?", id).Delete(&model.Task{}).Error; err != nil {
			return err
		}
		if err := tx.Where("project_id = ?", id).Delete(&model.ActivityLog{}).Error; err != nil {
			return err
		}
		if err := tx.Where("project_id = ?", id).Delete(&model.Membership{}).Error; err != nil {
			return err
		}
		return tx.Where("id = ?", id).Delete(&model.Project{}).Error
	})
}
