package handler

import (
	"net/http"
	"strconv"
	"time"

	"taskflow/internal/access"
	"taskflow/internal/model"
	"taskflow/internal/repository"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

// defaultActivityLimit caps a feed page when the client does not ask for
// a specific size.
const defaultActivityLimit = 50

type ActivityHandler struct {
	activities repository.ActivityRepositoryInterface
	access     *access.Service
}

func NewActivityHandler(activities repository.ActivityRepositoryInterface, accessSvc *access.Service) *ActivityHandler {
	return &ActivityHandler{activities: activities, access: accessSvc}
}

type ActivityResponse struct {
	ID          string  `json:"id"`
	ActorEmail  string  `json:"actor_email"`
	ActorName   string  `json:"actor_name"`
	Action      string  `json:"action"`
	EntityType  string  `json:"entity_type"`
	EntityID    *string `json:"entity_id,omitempty"`
	Description string  `json:"description"`
	CreatedAt   string  `json:"created_at"`
}

func activityResponse(e *model.ActivityLog) ActivityResponse {
	resp := ActivityResponse{
		ID:          e.ID.String(),
		ActorEmail:  e.Actor.Email,
		ActorName:   e.Actor.Name,
		Action:      e.Action,
		EntityType:  e.EntityType,
		Description: e.Description,
		CreatedAt:   e.CreatedAt.Format(time.RFC3339),
	}
	if e.EntityID != nil {
		id := e.EntityID.String()
		resp.EntityID = &id
	}
	return resp
}

// List godoc
// @Summary  List a project's activity feed, most recent first
// @Tags     Activity
// @Produce  json
// @Security BearerAuth
// @Param    id path string true "Project ID"
// @Param    limit query int false "Maximum entries to return"
// @Success  200 {array} ActivityResponse
// @Router   /projects/{id}/activity [get]
func (h *ActivityHandler) List(c *gin.Context) {
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

	limit := defaultActivityLimit
	if raw := c.Query("limit"); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil || parsed <= 0 {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid limit"})
			return
		}
		if parsed < limit {
			limit = parsed
		}
	}

	entries, err := h.activities.ListByProject(c.Request.Context(), projectID, limit)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to retrieve activity"})
		return
	}

	response := make([]ActivityResponse, len(entries))
	for i := range entries {
		response[i] = activityResponse(&entries[i])
	}
	c.JSON(http.StatusOK, response)
}
