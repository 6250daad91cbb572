// Package access is the role authority: it resolves an actor's effective
// role within a project and is the single source of membership truth for
// every gated operation. Roles are re-derived per request; there is no
// cache to go stale.
package access

import (
	"context"

	"taskflow/internal/apperr"
	"taskflow/internal/model"
	"taskflow/internal/repository"

	"github.com/google/uuid"
)

type Service struct {
	projects    repository.ProjectRepositoryInterface
	memberships repository.MembershipRepositoryInterface
}

func NewService(
	projects repository.ProjectRepositoryInterface,
	memberships repository.MembershipRepositoryInterface,
) *Service {
	return &Service{projects: projects, memberships: memberships}
}

// Resolve returns the project and the actor's effective role in it.
// The project owner is always OWNER regardless of membership rows; other
// users get the role of their membership. Non-members are denied, missing
// projects are not found.
func (s *Service) Resolve(ctx context.Context, projectID, userID uuid.UUID) (*model.Project, model.Role, error) {
	project, err := s.projects.GetByID(ctx, projectID)
	if err != nil {
		return nil, model.RoleViewer, err
	}
	if project == nil {
		return nil, model.RoleViewer, apperr.NotFound("Project not found")
	}

	if project.OwnerID == userID {
		return project, model.RoleOwner, nil
	}

	membership, err := s.memberships.GetByProjectAndUser(ctx, projectID, userID)
	if err != nil {
		return nil, model.RoleViewer, err
	}
	if membership == nil {
		return nil, model.RoleViewer, apperr.PermissionDenied("You are not a member of this project")
	}

	return project, model.ParseRole(membership.Role), nil
}
