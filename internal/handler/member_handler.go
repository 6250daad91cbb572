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

type MemberHandler struct {
	memberships repository.MembershipRepositoryInterface
	users       repository.UserRepositoryInterface
	access      *access.Service
	recorder    *service.ActivityRecorder
	notifier    *service.Notifier
}

func NewMemberHandler(
	memberships repository.MembershipRepositoryInterface,
	users repository.UserRepositoryInterface,
	accessSvc *access.Service,
	recorder *service.ActivityRecorder,
	notifier *service.Notifier,
) *MemberHandler {
	return &MemberHandler{
		memberships: memberships,
		users:       users,
		access:      accessSvc,
		recorder:    recorder,
		notifier:    notifier,
	}
}

type ShareProjectRequest struct {
	Email string `json:"email" binding:"required,email"`
	Role  string `json:"role" binding:"omitempty,oneof=ADMIN MANAGER MEMBER VIEWER"`
}

type UpdateRoleRequest struct {
	Role string `json:"role" binding:"required,oneof=ADMIN MANAGER MEMBER VIEWER"`
}

type MemberResponse struct {
	MemberID string `json:"member_id"`
	UserID   string `json:"user_id"`
	Email    string `json:"email"`
	Name     string `json:"name"`
	Role     string `json:"role"`
	JoinedAt string `json:"joined_at"`
}

func memberResponse(m *model.Membership) MemberResponse {
	return MemberResponse{
		MemberID: m.ID.String(),
		UserID:   m.UserID.String(),
		Email:    m.User.Email,
		Name:     m.User.Name,
		Role:     m.Role,
		JoinedAt: m.JoinedAt.Format(time.RFC3339),
	}
}

// resolveManager resolves access and requires the member-management
// capability of the acting user.
func (h *MemberHandler) resolveManager(c *gin.Context) (*model.Project, uuid.UUID, bool) {
	userID, ok := currentUserID(c)
	if !ok {
		return nil, uuid.Nil, false
	}

	projectID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid project ID format"})
		return nil, uuid.Nil, false
	}

	project, role, err := h.access.Resolve(c.Request.Context(), projectID, userID)
	if err != nil {
		respondError(c, err)
		return nil, uuid.Nil, false
	}
	if !role.CanManageMembers() {
		c.JSON(http.StatusForbidden, gin.H{"error": "Insufficient role to manage members"})
		return nil, uuid.Nil, false
	}
	return project, userID, true
}

// List godoc
// @Summary  List project members with their roles
// @Tags     Members
// @Produce  json
// @Security BearerAuth
// @Param    id path string true "Project ID"
// @Success  200 {array} MemberResponse
// @Router   /projects/{id}/members [get]
func (h *MemberHandler) List(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}

	projectID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid project ID format"})
		return
	}

	if _, _, err := h.access.Resolve(c.Request.Context(), projectID, userID); err != nil {
		respondError(c, err)
		return
	}

	members, err := h.memberships.ListByProject(c.Request.Context(), projectID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to retrieve members"})
		return
	}

	response := make([]MemberResponse, len(members))
	for i := range members {
		response[i] = memberResponse(&members[i])
	}
	c.JSON(http.StatusOK, response)
}

// Share godoc
// @Summary  Share the project with a user by email
// @Tags     Members
// @Accept   json
// @Produce  json
// @Security BearerAuth
// @Param    id path string true "Project ID"
// @Param    request body ShareProjectRequest true "Member email and role"
// @Success  201 {object} MemberResponse
// @Router   /projects/{id}/members [post]
func (h *MemberHandler) Share(c *gin.Context) {
	project, actorID, ok := h.resolveManager(c)
	if !ok {
		return
	}

	var req ShareProjectRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request"})
		return
	}

	role := model.RoleMember
	if req.Role != "" {
		role = model.ParseRole(req.Role)
	}
	if role == model.RoleOwner {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Cannot assign OWNER role"})
		return
	}

	target, err := h.users.FindByEmail(c.Request.Context(), req.Email)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to find user"})
		return
	}
	if target == nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "User not found"})
		return
	}

	// Re-sharing with an existing member is a conflict; role changes go
	// through the explicit role endpoint.
	existing, err := h.memberships.GetByProjectAndUser(c.Request.Context(), project.ID, target.ID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to check membership"})
		return
	}
	if existing != nil {
		c.JSON(http.StatusConflict, gin.H{"error": "User already has access to this project"})
		return
	}

	membership := &model.Membership{
		ProjectID: project.ID,
		UserID:    target.ID,
		Role:      role.String(),
	}
	if err := h.memberships.Create(c.Request.Context(), membership); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to share project"})
		return
	}
	membership.User = *target

	h.recorder.Record(c.Request.Context(), project.ID, actorID,
		model.ActionProjectShared, model.EntityProject, &project.ID,
		"Shared project with "+target.Email+" as "+role.String())

	h.notifier.Notify(c.Request.Context(), []uuid.UUID{target.ID},
		model.ActionProjectShared,
		"Project shared with you",
		project.Owner.Email+" shared \""+project.Name+"\" with you",
		model.EntityProject, &project.ID)

	c.JSON(http.StatusCreated, memberResponse(membership))
}

// UpdateRole godoc
// @Summary  Change a member's role
// @Tags     Members
// @Accept   json
// @Security BearerAuth
// @Param    id path string true "Project ID"
// @Param    memberId path string true "Membership ID"
// @Param    request body UpdateRoleRequest true "New role"
// @Success  200
// @Router   /projects/{id}/members/{memberId}/role [put]
func (h *MemberHandler) UpdateRole(c *gin.Context) {
	project, actorID, ok := h.resolveManager(c)
	if !ok {
		return
	}

	memberID, err := uuid.Parse(c.Param("memberId"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid member ID format"})
		return
	}

	var req UpdateRoleRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request"})
		return
	}

	member, err := h.memberships.GetByID(c.Request.Context(), memberID)
	if err != nil {
		if err == repository.ErrMemberNotFound {
			c.JSON(http.StatusNotFound, gin.H{"error": "Member not found"})
		} else {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to retrieve member"})
		}
		return
	}
	if member.ProjectID != project.ID {
		c.JSON(http.StatusNotFound, gin.H{"error": "Member not found"})
		return
	}

	// The OWNER membership can never be re-roled, by anyone.
	if model.ParseRole(member.Role) == model.RoleOwner || member.UserID == project.OwnerID {
		c.JSON(http.StatusConflict, gin.H{"error": "Cannot change owner role"})
		return
	}

	role := model.ParseRole(req.Role)
	if err := h.memberships.UpdateRole(c.Request.Context(), memberID, role.String()); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to update role"})
		return
	}

	h.recorder.Record(c.Request.Context(), project.ID, actorID,
		model.ActionProjectRoleUpdated, model.EntityProject, &project.ID,
		"Updated role of "+member.User.Email+" to "+role.String())

	c.JSON(http.StatusOK, gin.H{"message": "Role updated"})
}

// Remove godoc
// @Summary  Remove a member from the project
// @Tags     Members
// @Security BearerAuth
// @Param    id path string true "Project ID"
// @Param    memberId path string true "Membership ID"
// @Success  204
// @Router   /projects/{id}/members/{memberId} [delete]
func (h *MemberHandler) Remove(c *gin.Context) {
	project, actorID, ok := h.resolveManager(c)
	if !ok {
		return
	}

	memberID, err := uuid.Parse(c.Param("memberId"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid member ID format"})
		return
	}

	member, err := h.memberships.GetByID(c.Request.Context(), memberID)
	if err != nil {
		if err == repository.ErrMemberNotFound {
			c.JSON(http.StatusNotFound, gin.H{"error": "Member not found"})
		} else {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to retrieve member"})
		}
		return
	}
	if member.ProjectID != project.ID {
		c.JSON(http.StatusNotFound, gin.H{"error": "Member not found"})
		return
	}

	if model.ParseRole(member.Role) == model.RoleOwner || member.UserID == project.OwnerID {
		c.JSON(http.StatusConflict, gin.H{"error": "Cannot remove project owner"})
		return
	}

	if err := h.memberships.Delete(c.Request.Context(), memberID); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to remove member"})
		return
	}

	h.recorder.Record(c.Request.Context(), project.ID, actorID,
		model.ActionProjectMemberRemoved, model.EntityProject, &project.ID,
		"Removed "+member.User.Email+" from project")

	c.Status(http.StatusNoContent)
}
