package repository

import (
	"context"
	"errors"

	"taskflow/internal/model"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type MembershipRepository struct {
	db *gorm.DB
}

type MembershipRepositoryInterface interface {
	Create(ctx context.Context, membership *model.Membership) error
	GetByID(ctx context.Context, id uuid.UUID) (*model.Membership, error)
	GetByProjectAndUser(ctx context.Context, projectID, userID uuid.UUID) (*model.Membership, error)
	ListByProject(ctx context.Context, projectID uuid.UUID) ([]model.Membership, error)
	ListByUser(ctx context.Context, userID uuid.UUID) ([]model.Membership, error)
	UpdateRole(ctx context.Context, id uuid.UUID, role string) error
	Delete(ctx context.Context, id uuid.UUID) error
}

var _ MembershipRepositoryInterface = (*MembershipRepository)(nil)

func NewMembershipRepository(db *gorm.DB) *MembershipRepository {
	return &MembershipRepository{db: db}
}

func (r *MembershipRepository) Create(ctx context.Context, membership *model.Membership) error {
	return r.db.WithContext(ctx).Create(membership).Error
}

func (r *MembershipRepository) GetByID(ctx context.Context, id uuid.UUID) (*model.Membership, error) {
	var membership model.Membership
	err := r.db.WithContext(ctx).Preload("User").Where("id = ?", id).First(&membership).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrMemberNotFound
	}
	if err != nil {
		return nil, err
	}
	return &membership, nil
}

func (r *MembershipRepository) GetByProjectAndUser(ctx context.Context, projectID, userID uuid.UUID) (*model.Membership, error) {
	var membership model.Membership
	err := r.db.WithContext(ctx).
		Where("project_id = ? AND user_id = ?", projectID, userID).
		First(&membership).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &membership, nil
}

func (r *MembershipRepository) ListByProject(ctx context.Context, projectID uuid.UUID) ([]model.Membership, error) {
	var memberships []model.Membership
	err := r.db.WithContext(ctx).
		Preload("User").
		Where("project_id = ?", projectID).
		Order("joined_at").
		Find(&memberships).Error
	return memberships, err
}

func (r *MembershipRepository) ListByUser(ctx context.Context, userID uuid.UUID) ([]model.Membership, error) {
	var memberships []model.Membership
	err := r.db.WithContext(ctx).
		Preload("Project").
		Preload("Project.Owner").
		Where("user_id = ?", userID).
		Find(&memberships).Error
	return memberships, err
}

func (r *MembershipRepository) UpdateRole(ctx context.Context, id uuid.UUID, role string) error {
	result := r.db.WithContext(ctx).
		Model(&model.Membership{}).
		Where("id = ?", id).
		Update("role", role)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return ErrMemberNotFound
	}
	return nil
}

func (r *MembershipRepository) Delete(ctx context.Context, id uuid.UUID) error {
	result := r.db.WithContext(ctx).Where("id = ?", id).Delete(&model.Membership{})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return ErrMemberNotFound
	}
	return nil
}
