package handler

import (
	"net/http"
	"time"

	"taskflow/internal/access"
	"taskflow/internal/model"
	"taskflow/internal/repository"
	"taskflow/internal/service"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

type ProjectHandler struct {
	projects    repository.ProjectRepositoryInterface
	memberships repository.MembershipRepositoryInterface
	users       repository.UserRepositoryInterface
	access      *access.Service
	recorder    *service.ActivityRecorder
}

func NewProjectHandler(
	projects repository.ProjectRepositoryInterface,
	memberships repository.MembershipRepositoryInterface,
	users repository.UserRepositoryInterface,
	accessSvc *access.Service,
	recorder *service.ActivityRecorder,
) *ProjectHandler {
	return &ProjectHandler{
		projects:    projects,
		memberships: memberships,
		users:       users,
		access:      accessSvc,
		recorder:    recorder,
	}
}

type ProjectRequest struct {
	Name string `json:"name" binding:"required,min=1"`
}

type ProjectResponse struct {
	ID         string `json:"id"`
	Name       string `json:"name"`
	OwnerEmail string `json:"owner_email"`
	Role       string `json:"role"`
	CreatedAt  string `json:"created_at"`
}

func projectResponse(p *model.Project, role model.Role) ProjectResponse {
	return ProjectResponse{
		ID:         p.ID.String(),
		Name:       p.Name,
		OwnerEmail: p.Owner.Email,
		Role:       role.String(),
		CreatedAt:  p.CreatedAt.Format(time.RFC3339),
	}
}

// Create godoc
// @Summary  Create a project owned by the caller
// @Tags     Projects
// @Accept   json
// @Produce  json
// @Security BearerAuth
// @Param    request body ProjectRequest true "Project data"
// @Success  201 {object} ProjectResponse
// @Router   /projects [post]
func (h *ProjectHandler) Create(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}

	var req ProjectRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request"})
		return
	}

	owner, err := h.users.GetByID(c.Request.Context(), userID)
	if err != nil || owner == nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to retrieve user"})
		return
	}

	project := &model.Project{
		Name:    req.Name,
		OwnerID: userID,
	}
	if err := h.projects.CreateWithOwner(c.Request.Context(), project); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to create project"})
		return
	}
	project.Owner = *owner

	h.recorder.Record(c.Request.Context(), project.ID, userID,
		model.ActionProjectCreated, model.EntityProject, &project.ID,
		"Created project \""+project.Name+"\"")

	c.JSON(http.StatusCreated, projectResponse(project, model.RoleOwner))
}

// List godoc
// @Summary  List projects the caller owns or belongs to
// @Tags     Projects
// @Produce  json
// @Security BearerAuth
// @Success  200 {array} ProjectResponse
// @Router   /projects [get]
func (h *ProjectHandler) List(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}

	owned, err := h.projects.GetOwned(c.Request.Context(), userID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to retrieve projects"})
		return
	}

	memberships, err := h.memberships.ListByUser(c.Request.Context(), userID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to retrieve memberships"})
		return
	}

	seen := make(map[uuid.UUID]struct{}, len(owned))
	response := make([]ProjectResponse, 0, len(owned)+len(memberships))
	for i := range owned {
		seen[owned[i].ID] = struct{}{}
		response = append(response, projectResponse(&owned[i], model.RoleOwner))
	}
	for i := range memberships {
		m := &memberships[i]
		if _, ok := seen[m.ProjectID]; ok {
			continue
		}
		seen[m.ProjectID] = struct{}{}
		response = append(response, projectResponse(&m.Project, model.ParseRole(m.Role)))
	}

	c.JSON(http.StatusOK, response)
}

// Get godoc
// @Summary  Get one project with the caller's role
// @Tags     Projects
// @Produce  json
// @Security BearerAuth
// @Param    id path string true "Project ID"
// @Success  200 {object} ProjectResponse
// @Router   /projects/{id} [get]
func (h *ProjectHandler) Get(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}

	projectID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid project ID format"})
		return
	}

	project, role, err := h.access.Resolve(c.Request.Context(), projectID, userID)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, projectResponse(project, role))
}

// Delete godoc
// @Summary  Delete a project and everything in it
// @Tags     Projects
// @Security BearerAuth
// @Param    id path string true "Project ID"
// @Success  204
// @Router   /projects/{id} [delete]
func (h *ProjectHandler) Delete(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}

	projectID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid project ID format"})
		return
	}

	_, role, err := h.access.Resolve(c.Request.Context(), projectID, userID)
	if err != nil {
		respondError(c, err)
		return
	}
	if !role.CanDeleteProject() {
		c.JSON(http.StatusForbidden, gin.H{"error": "Insufficient role to delete project"})
		return
	}

	if err := h.projects.DeleteCascade(c.Request.Context(), projectID); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to delete project"})
		return
	}

	c.Status(http.StatusNoContent)
}
