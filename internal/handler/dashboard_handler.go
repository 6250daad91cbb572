package handler

import (
	"net/http"
	"time"

	"taskflow/internal/model"
	"taskflow/internal/repository"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

type DashboardHandler struct {
	projects    repository.ProjectRepositoryInterface
	memberships repository.MembershipRepositoryInterface
	tasks       repository.TaskRepositoryInterface
	log         *zap.Logger
}

func NewDashboardHandler(
	projects repository.ProjectRepositoryInterface,
	memberships repository.MembershipRepositoryInterface,
	tasks repository.TaskRepositoryInterface,
	log *zap.Logger,
) *DashboardHandler {
	return &DashboardHandler{
		projects:    projects,
		memberships: memberships,
		tasks:       tasks,
		log:         log,
	}
}

type DashboardStats struct {
	TotalProjects int `json:"total_projects"`
	TotalTasks    int `json:"total_tasks"`
	DoneTasks     int `json:"done_tasks"`
	OverdueTasks  int `json:"overdue_tasks"`
}

// Stats godoc
// @Summary  Aggregate counts across every project the caller can see
// @Tags     Dashboard
// @Produce  json
// @Security BearerAuth
// @Success  200 {object} DashboardStats
// @Router   /dashboard/stats [get]
func (h *DashboardHandler) Stats(c *gin.Context) {
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

	seen := make(map[uuid.UUID]struct{}, len(owned)+len(memberships))
	projectIDs := make([]uuid.UUID, 0, len(owned)+len(memberships))
	for i := range owned {
		seen[owned[i].ID] = struct{}{}
		projectIDs = append(projectIDs, owned[i].ID)
	}
	for i := range memberships {
		id := memberships[i].ProjectID
		if _, ok := seen[id]; ok {
			continue
		}
		seen[id] = struct{}{}
		projectIDs = append(projectIDs, id)
	}

	stats := DashboardStats{TotalProjects: len(projectIDs)}

	// Task counts degrade to zero rather than failing the whole view.
	tasks, err := h.tasks.ListByProjects(c.Request.Context(), projectIDs)
	if err != nil {
		h.log.Warn("failed to load tasks for dashboard stats",
			zap.String("user_id", userID.String()), zap.Error(err))
		c.JSON(http.StatusOK, stats)
		return
	}

	now := time.Now()
	for i := range tasks {
		stats.TotalTasks++
		if tasks[i].Status == model.StatusDone {
			stats.DoneTasks++
		}
		if tasks[i].Overdue(now) {
			stats.OverdueTasks++
		}
	}

	c.JSON(http.StatusOK, stats)
}
