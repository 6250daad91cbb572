package repository

import (
	"context"
	"errors"

	"taskflow/internal/model"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// TaskFilter narrows a project task listing. Zero-value fields impose no
// constraint; set fields compose with AND semantics.
type TaskFilter struct {
	Search   string
	Status   model.TaskStatus
	Priority model.TaskPriority
}

type TaskRepository struct {
	db *gorm.DB
}

type TaskRepositoryInterface interface {
	Create(ctx context.Context, task *model.Task) error
	GetByID(ctx context.Context, id uuid.UUID) (*model.Task, error)
	List(ctx context.Context, projectID uuid.UUID, filter TaskFilter) ([]model.Task, error)
	ListByProjects(ctx context.Context, projectIDs []uuid.UUID) ([]model.Task, error)
	Update(ctx context.Context, task *model.Task) error
	Delete(ctx context.Context, id uuid.UUID) error
}

var _ TaskRepositoryInterface = (*TaskRepository)(nil)

func NewTaskRepository(db *gorm.DB) *TaskRepository {
	return &TaskRepository{db: db}
}

// Create adds a new task to the database
func (r *TaskRepository) Create(ctx context.Context, task *model.Task) error {
	return r.db.WithContext(ctx).Create(task).Error
}

// GetByID retrieves a task by its ID
func (r *TaskRepository) GetByID(ctx context.Context, id uuid.UUID) (*model.Task, error) {
	var task model.Task
	result := r.db.WithContext(ctx).First(&task, "id = ?", id)
	if result.Error != nil {
		if errors.Is(result.Error, gorm.ErrRecordNotFound) {
			return nil, ErrTaskNotFound
		}
		return nil, result.Error
	}
	return &task, nil
}

// List retrieves project tasks matching the filter, newest first.
func (r *TaskRepository) List(ctx context.Context, projectID uuid.UUID, filter TaskFilter) ([]model.Task, error) {
	query := r.db.WithContext(ctx).Where("project_id = ?", projectID)

	if filter.Search != "" {
		pattern := "%" + filter.Search + "%"
		query = query.Where("title ILIKE ? OR description ILIKE ?", pattern, pattern)
	}
	if filter.Status != "" {
		query = query.Where("status = ?", filter.Status)
	}
	if filter.Priority != "" {
		query = query.Where("priority = ?", filter.Priority)
	}

	var tasks []model.Task
	result := query.Order("created_at DESC").Find(&tasks)
	if result.Error != nil {
		return nil, result.Error
	}
	return tasks, nil
}

// ListByProjects retrieves all tasks across the given projects.
func (r *TaskRepository) ListByProjects(ctx context.Context, projectIDs []uuid.UUID) ([]model.Task, error) {
	if len(projectIDs) == 0 {
		return nil, nil
	}
	var tasks []model.Task
	result := r.db.WithContext(ctx).Where("project_id IN ?", projectIDs).Find(&tasks)
	if result.Error != nil {
		return nil, result.Error
	}
	return tasks, nil
}

// Update replaces the task's mutable fields. The row is locked for the
// duration of the transaction so concurrent updates of the same task
// serialize instead of interleaving; last writer wins.
func (r *TaskRepository) Update(ctx context.Context, task *model.Task) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var current model.Task
		err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).
			First(&current, "id = ?", task.ID).Error
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrTaskNotFound
			}
			return err
		}

		current.Title = task.Title
		current.Description = task.Description
		current.Status = task.Status
		current.Priority = task.Priority
		current.DueDate = task.DueDate

		if err := tx.Save(&current).Error; err != nil {
			return err
		}
		*task = current
		return nil
	})
}

// Delete removes a task and everything owned by it in one transaction.
func (r *TaskRepository) Delete(ctx context.Context, id uuid.UUID) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("task_id = ?", id).Delete(&model.Assignment{}).Error; err != nil {
			return err
		}
		if err := tx.Where("task_id = ?", id).Delete(&model.Comment{}).Error; err != nil {
			return err
		}
		if err := tx.Where("task_id = ?", id).Delete(&model.Attachment{}).Error; err != nil {
			return err
		}

		result := tx.Delete(&model.Task{}, "id = ?", id)
		if result.Error != nil {
			return result.Error
		}
		if result.RowsAffected == 0 {
			return ErrTaskNotFound
		}
		return nil
	})
}
