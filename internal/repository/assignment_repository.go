package repository

import (
	"context"
	"errors"

	"taskflow/internal/model"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type AssignmentRepository struct {
	db *gorm.DB
}

type AssignmentRepositoryInterface interface {
	Assign(ctx context.Context, taskID, userID uuid.UUID) error
	Unassign(ctx context.Context, taskID, userID uuid.UUID) error
	ListByTask(ctx context.Context, taskID uuid.UUID) ([]model.Assignment, error)
}

var _ AssignmentRepositoryInterface = (*AssignmentRepository)(nil)

func NewAssignmentRepository(db *gorm.DB) *AssignmentRepository {
	return &AssignmentRepository{db: db}
}

// Assign links a user to a task. Assigning twice returns ErrAlreadyAssigned.
func (r *AssignmentRepository) Assign(ctx context.Context, taskID, userID uuid.UUID) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var existing model.Assignment
		err := tx.Where("task_id = ? AND user_id = ?", taskID, userID).First(&existing).Error
		if err == nil {
			return ErrAlreadyAssigned
		}
		if !errors.Is(err, gorm.ErrRecordNotFound) {
			return err
		}

		assignment := model.Assignment{TaskID: taskID, UserID: userID}
		return tx.Create(&assignment).Error
	})
}

// Unassign removes the link. Removing a non-existent assignment is a no-op
// success so concurrent UI actions stay safe.
func (r *AssignmentRepository) Unassign(ctx context.Context, taskID, userID uuid.UUID) error {
	return r.db.WithContext(ctx).
		Where("task_id = ? AND user_id = ?", taskID, userID).
		Delete(&model.Assignment{}).Error
}

func (r *AssignmentRepository) ListByTask(ctx context.Context, taskID uuid.UUID) ([]model.Assignment, error) {
	var assignments []model.Assignment
	err := r.db.WithContext(ctx).
		Preload("User").
		Where("task_id = ?", taskID).
		Order("assigned_at").
		Find(&assignments).Error
	return assignments, err
}
