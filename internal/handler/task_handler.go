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

type TaskHandler struct {
	tasks       repository.TaskRepositoryInterface
	assignments repository.AssignmentRepositoryInterface
	memberships repository.MembershipRepositoryInterface
	users       repository.UserRepositoryInterface
	access      *access.Service
	recorder    *service.ActivityRecorder
	notifier    *service.Notifier
}

func NewTaskHandler(
	tasks repository.TaskRepositoryInterface,
	assignments repository.AssignmentRepositoryInterface,
	memberships repository.MembershipRepositoryInterface,
	users repository.UserRepositoryInterface,
	accessSvc *access.Service,
	recorder *service.ActivityRecorder,
	notifier *service.Notifier,
) *TaskHandler {
	return &TaskHandler{
		tasks:       tasks,
		assignments: assignments,
		memberships: memberships,
		users:       users,
		access:      accessSvc,
		recorder:    recorder,
		notifier:    notifier,
	}
}

// TaskRequest carries every mutable task field; updates replace them all.
type TaskRequest struct {
	Title       string     `json:"title" binding:"required"`
	Description string     `json:"description"`
	Status      string     `json:"status"`
	Priority    string     `json:"priority"`
	DueDate     *time.Time `json:"due_date"`
}

type TaskAssignRequest struct {
	AssigneeEmail string `json:"assigneeEmail" binding:"required,email"`
}

type TaskResponse struct {
	ID          string  `json:"id"`
	ProjectID   string  `json:"project_id"`
	Title       string  `json:"title"`
	Description string  `json:"description"`
	Status      string  `json:"status"`
	Priority    string  `json:"priority"`
	DueDate     *string `json:"due_date,omitempty"`
	CreatedAt   string  `json:"created_at"`
}

type TaskAssigneeResponse struct {
	UserID string `json:"user_id"`
	Email  string `json:"email"`
	Name   string `json:"name"`
}

func taskResponse(t *model.Task) TaskResponse {
	resp := TaskResponse{
		ID:          t.ID.String(),
		ProjectID:   t.ProjectID.String(),
		Title:       t.Title,
		Description: t.Description,
		Status:      string(t.Status),
		Priority:    string(t.Priority),
		CreatedAt:   t.CreatedAt.Format(time.RFC3339),
	}
	if t.DueDate != nil {
		due := t.DueDate.Format(time.RFC3339)
		resp.DueDate = &due
	}
	return resp
}

// resolveProject parses the project id and resolves the caller's role.
func (h *TaskHandler) resolveProject(c *gin.Context) (*model.Project, model.Role, uuid.UUID, bool) {
	userID, ok := currentUserID(c)
	if !ok {
		return nil, model.RoleViewer, uuid.Nil, false
	}

	projectID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid project ID format"})
		return nil, model.RoleViewer, uuid.Nil, false
	}

	project, role, err := h.access.Resolve(c.Request.Context(), projectID, userID)
	if err != nil {
		respondError(c, err)
		return nil, model.RoleViewer, uuid.Nil, false
	}
	return project, role, userID, true
}

// getProjectTask fetches a task and verifies it belongs to the project.
func (h *TaskHandler) getProjectTask(c *gin.Context, projectID uuid.UUID) (*model.Task, bool) {
	taskID, err := uuid.Parse(c.Param("taskId"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid task ID format"})
		return nil, false
	}

	task, err := h.tasks.GetByID(c.Request.Context(), taskID)
	if err != nil {
		if err == repository.ErrTaskNotFound {
			c.JSON(http.StatusNotFound, gin.H{"error": "Task not found"})
		} else {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to retrieve task"})
		}
		return nil, false
	}
	if task.ProjectID != projectID {
		c.JSON(http.StatusNotFound, gin.H{"error": "Task not found"})
		return nil, false
	}
	return task, true
}

// notifyProject fans a task mutation out to project members minus the actor.
func (h *TaskHandler) notifyProject(c *gin.Context, project *model.Project, actorID uuid.UUID, notifType, title, message string, entityID *uuid.UUID) {
	recipients, err := projectRecipients(c.Request.Context(), h.memberships, project, actorID)
	if err != nil {
		return
	}
	h.notifier.Notify(c.Request.Context(), recipients, notifType, title, message, model.EntityTask, entityID)
}

// List godoc
// @Summary  List project tasks with optional search/status/priority filters
// @Tags     Tasks
// @Produce  json
// @Security BearerAuth
// @Param    id path string true "Project ID"
// @Param    search query string false "Free-text search on title and description"
// @Param    status query string false "Status filter" Enums(TODO, IN_PROGRESS, DONE)
// @Param    priority query string false "Priority filter" Enums(LOW, MEDIUM, HIGH)
// @Success  200 {array} TaskResponse
// @Router   /projects/{id}/tasks [get]
func (h *TaskHandler) List(c *gin.Context) {
	project, _, _, ok := h.resolveProject(c)
	if !ok {
		return
	}

	filter := repository.TaskFilter{Search: c.Query("search")}
	if status := c.Query("status"); status != "" {
		s := model.TaskStatus(status)
		if !s.Valid() {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid status filter"})
			return
		}
		filter.Status = s
	}
	if priority := c.Query("priority"); priority != "" {
		p := model.TaskPriority(priority)
		if !p.Valid() {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid priority filter"})
			return
		}
		filter.Priority = p
	}

	tasks, err := h.tasks.List(c.Request.Context(), project.ID, filter)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to retrieve tasks"})
		return
	}

	response := make([]TaskResponse, len(tasks))
	for i := range tasks {
		response[i] = taskResponse(&tasks[i])
	}
	c.JSON(http.StatusOK, response)
}

// Create godoc
// @Summary  Create a task in the project
// @Tags     Tasks
// @Accept   json
// @Produce  json
// @Security BearerAuth
// @Param    id path string true "Project ID"
// @Param    request body TaskRequest true "Task data"
// @Success  201 {object} TaskResponse
// @Router   /projects/{id}/tasks [post]
func (h *TaskHandler) Create(c *gin.Context) {
	project, role, userID, ok := h.resolveProject(c)
	if !ok {
		return
	}
	if !role.CanEditTasks() {
		c.JSON(http.StatusForbidden, gin.H{"error": "Insufficient role to create tasks"})
		return
	}

	var req TaskRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request"})
		return
	}

	status := model.StatusTodo
	if req.Status != "" {
		status = model.TaskStatus(req.Status)
		if !status.Valid() {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid status"})
			return
		}
	}
	priority := model.PriorityMedium
	if req.Priority != "" {
		priority = model.TaskPriority(req.Priority)
		if !priority.Valid() {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid priority"})
			return
		}
	}

	task := &model.Task{
		ProjectID:   project.ID,
		Title:       req.Title,
		Description: req.Description,
		Status:      status,
		Priority:    priority,
		DueDate:     req.DueDate,
	}
	if err := h.tasks.Create(c.Request.Context(), task); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to create task"})
		return
	}

	h.recorder.Record(c.Request.Context(), project.ID, userID,
		model.ActionTaskCreated, model.EntityTask, &task.ID,
		"Created task \""+task.Title+"\"")

	h.notifyProject(c, project, userID, model.ActionTaskCreated,
		"New task in "+project.Name,
		"Task \""+task.Title+"\" was created", &task.ID)

	c.JSON(http.StatusCreated, taskResponse(task))
}

// Update godoc
// @Summary  Replace a task's mutable fields
// @Tags     Tasks
// @Accept   json
// @Produce  json
// @Security BearerAuth
// @Param    id path string true "Project ID"
// @Param    taskId path string true "Task ID"
// @Param    request body TaskRequest true "Task data"
// @Success  200 {object} TaskResponse
// @Router   /projects/{id}/tasks/{taskId} [put]
func (h *TaskHandler) Update(c *gin.Context) {
	project, role, userID, ok := h.resolveProject(c)
	if !ok {
		return
	}
	if !role.CanEditTasks() {
		c.JSON(http.StatusForbidden, gin.H{"error": "Insufficient role to update tasks"})
		return
	}

	task, ok := h.getProjectTask(c, project.ID)
	if !ok {
		return
	}

	var req TaskRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request"})
		return
	}

	status := model.TaskStatus(req.Status)
	if !status.Valid() {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid status"})
		return
	}
	priority := model.TaskPriority(req.Priority)
	if !priority.Valid() {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid priority"})
		return
	}

	task.Title = req.Title
	task.Description = req.Description
	task.Status = status
	task.Priority = priority
	task.DueDate = req.DueDate

	if err := h.tasks.Update(c.Request.Context(), task); err != nil {
		if err == repository.ErrTaskNotFound {
			c.JSON(http.StatusNotFound, gin.H{"error": "Task not found"})
		} else {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to update task"})
		}
		return
	}

	h.recorder.Record(c.Request.Context(), project.ID, userID,
		model.ActionTaskUpdated, model.EntityTask, &task.ID,
		"Updated task \""+task.Title+"\"")

	h.notifyProject(c, project, userID, model.ActionTaskUpdated,
		"Task updated in "+project.Name,
		"Task \""+task.Title+"\" was updated", &task.ID)

	c.JSON(http.StatusOK, taskResponse(task))
}

// Delete godoc
// @Summary  Delete a task with its assignments, comments and attachments
// @Tags     Tasks
// @Security BearerAuth
// @Param    id path string true "Project ID"
// @Param    taskId path string true "Task ID"
// @Success  204
// @Router   /projects/{id}/tasks/{taskId} [delete]
func (h *TaskHandler) Delete(c *gin.Context) {
	project, role, userID, ok := h.resolveProject(c)
	if !ok {
		return
	}
	if !role.CanEditTasks() {
		c.JSON(http.StatusForbidden, gin.H{"error": "Insufficient role to delete tasks"})
		return
	}

	task, ok := h.getProjectTask(c, project.ID)
	if !ok {
		return
	}

	if err := h.tasks.Delete(c.Request.Context(), task.ID); err != nil {
		if err == repository.ErrTaskNotFound {
			c.JSON(http.StatusNotFound, gin.H{"error": "Task not found"})
		} else {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to delete task"})
		}
		return
	}

	h.recorder.Record(c.Request.Context(), project.ID, userID,
		model.ActionTaskDeleted, model.EntityTask, &task.ID,
		"Deleted task \""+task.Title+"\"")

	h.notifyProject(c, project, userID, model.ActionTaskDeleted,
		"Task deleted in "+project.Name,
		"Task \""+task.Title+"\" was deleted", &task.ID)

	c.Status(http.StatusNoContent)
}

// Assignees godoc
// @Summary  List a task's assignees
// @Tags     Tasks
// @Produce  json
// @Security BearerAuth
// @Param    id path string true "Project ID"
// @Param    taskId path string true "Task ID"
// @Success  200 {array} TaskAssigneeResponse
// @Router   /projects/{id}/tasks/{taskId}/assignees [get]
func (h *TaskHandler) Assignees(c *gin.Context) {
	project, _, _, ok := h.resolveProject(c)
	if !ok {
		return
	}

	task, ok := h.getProjectTask(c, project.ID)
	if !ok {
		return
	}

	assignments, err := h.assignments.ListByTask(c.Request.Context(), task.ID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to retrieve assignees"})
		return
	}

	response := make([]TaskAssigneeResponse, len(assignments))
	for i, a := range assignments {
		response[i] = TaskAssigneeResponse{
			UserID: a.UserID.String(),
			Email:  a.User.Email,
			Name:   a.User.Name,
		}
	}
	c.JSON(http.StatusOK, response)
}

// Assign godoc
// @Summary  Assign a project member to a task by email
// @Tags     Tasks
// @Accept   json
// @Security BearerAuth
// @Param    id path string true "Project ID"
// @Param    taskId path string true "Task ID"
// @Param    request body TaskAssignRequest true "Assignee email"
// @Success  201
// @Router   /projects/{id}/tasks/{taskId}/assign [post]
func (h *TaskHandler) Assign(c *gin.Context) {
	project, role, userID, ok := h.resolveProject(c)
	if !ok {
		return
	}
	if !role.CanAssignTasks() {
		c.JSON(http.StatusForbidden, gin.H{"error": "Insufficient role to assign tasks"})
		return
	}

	task, ok := h.getProjectTask(c, project.ID)
	if !ok {
		return
	}

	var req TaskAssignRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request"})
		return
	}

	assignee, err := h.users.FindByEmail(c.Request.Context(), req.AssigneeEmail)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to find user"})
		return
	}
	if assignee == nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "User not found"})
		return
	}

	// Assignees must already hold project membership.
	if assignee.ID != project.OwnerID {
		membership, err := h.memberships.GetByProjectAndUser(c.Request.Context(), project.ID, assignee.ID)
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to check membership"})
			return
		}
		if membership == nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "User is not a member of this project"})
			return
		}
	}

	if err := h.assignments.Assign(c.Request.Context(), task.ID, assignee.ID); err != nil {
		if err == repository.ErrAlreadyAssigned {
			c.JSON(http.StatusConflict, gin.H{"error": "User already assigned to this task"})
		} else {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to assign task"})
		}
		return
	}

	h.recorder.Record(c.Request.Context(), project.ID, userID,
		model.ActionTaskAssigned, model.EntityTask, &task.ID,
		"Assigned task \""+task.Title+"\" to "+assignee.Email)

	h.notifier.Notify(c.Request.Context(), []uuid.UUID{assignee.ID},
		model.ActionTaskAssigned,
		"Task assigned to you",
		"You have been assigned to \""+task.Title+"\"",
		model.EntityTask, &task.ID)

	c.JSON(http.StatusCreated, gin.H{"message": "Task assigned successfully"})
}

// Unassign godoc
// @Summary  Remove an assignee from a task (idempotent)
// @Tags     Tasks
// @Security BearerAuth
// @Param    id path string true "Project ID"
// @Param    taskId path string true "Task ID"
// @Param    userId path string true "Assignee user ID"
// @Success  204
// @Router   /projects/{id}/tasks/{taskId}/assign/{userId} [delete]
func (h *TaskHandler) Unassign(c *gin.Context) {
	project, role, userID, ok := h.resolveProject(c)
	if !ok {
		return
	}
	if !role.CanAssignTasks() {
		c.JSON(http.StatusForbidden, gin.H{"error": "Insufficient role to unassign tasks"})
		return
	}

	task, ok := h.getProjectTask(c, project.ID)
	if !ok {
		return
	}

	targetID, err := uuid.Parse(c.Param("userId"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid user ID format"})
		return
	}

	// Removing a non-existent assignment is a no-op success.
	if err := h.assignments.Unassign(c.Request.Context(), task.ID, targetID); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to unassign task"})
		return
	}

	h.recorder.Record(c.Request.Context(), project.ID, userID,
		model.ActionTaskUnassigned, model.EntityTask, &task.ID,
		"Removed assignee from task \""+task.Title+"\"")

	c.Status(http.StatusNoContent)
}
