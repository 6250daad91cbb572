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

type CommentHandler struct {
	comments    repository.CommentRepositoryInterface
	tasks       repository.TaskRepositoryInterface
	assignments repository.AssignmentRepositoryInterface
	access      *access.Service
	recorder    *service.ActivityRecorder
	notifier    *service.Notifier
}

func NewCommentHandler(
	comments repository.CommentRepositoryInterface,
	tasks repository.TaskRepositoryInterface,
	assignments repository.AssignmentRepositoryInterface,
	accessSvc *access.Service,
	recorder *service.ActivityRecorder,
	notifier *service.Notifier,
) *CommentHandler {
	return &CommentHandler{
		comments:    comments,
		tasks:       tasks,
		assignments: assignments,
		access:      accessSvc,
		recorder:    recorder,
		notifier:    notifier,
	}
}

type CommentRequest struct {
	Content string `json:"content" binding:"required,min=1"`
}

type CommentResponse struct {
	ID          string `json:"id"`
	TaskID      string `json:"task_id"`
	AuthorEmail string `json:"author_email"`
	AuthorName  string `json:"author_name"`
	Content     string `json:"content"`
	CreatedAt   string `json:"created_at"`
	UpdatedAt   string `json:"updated_at"`
}

func commentResponse(cm *model.Comment) CommentResponse {
	return CommentResponse{
		ID:          cm.ID.String(),
		TaskID:      cm.TaskID.String(),
		AuthorEmail: cm.Author.Email,
		AuthorName:  cm.Author.Name,
		Content:     cm.Content,
		CreatedAt:   cm.CreatedAt.Format(time.RFC3339),
		UpdatedAt:   cm.UpdatedAt.Format(time.RFC3339),
	}
}

// resolveTask resolves project access and fetches the task under it.
func (h *CommentHandler) resolveTask(c *gin.Context) (*model.Project, model.Role, uuid.UUID, *model.Task, bool) {
	userID, ok := currentUserID(c)
	if !ok {
		return nil, model.RoleViewer, uuid.Nil, nil, false
	}

	projectID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid project ID format"})
		return nil, model.RoleViewer, uuid.Nil, nil, false
	}

	project, role, err := h.access.Resolve(c.Request.Context(), projectID, userID)
	if err != nil {
		respondError(c, err)
		return nil, model.RoleViewer, uuid.Nil, nil, false
	}

	taskID, err := uuid.Parse(c.Param("taskId"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid task ID format"})
		return nil, model.RoleViewer, uuid.Nil, nil, false
	}

	task, err := h.tasks.GetByID(c.Request.Context(), taskID)
	if err != nil {
		if err == repository.ErrTaskNotFound {
			c.JSON(http.StatusNotFound, gin.H{"error": "Task not found"})
		} else {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to retrieve task"})
		}
		return nil, model.RoleViewer, uuid.Nil, nil, false
	}
	if task.ProjectID != project.ID {
		c.JSON(http.StatusNotFound, gin.H{"error": "Task not found"})
		return nil, model.RoleViewer, uuid.Nil, nil, false
	}

	return project, role, userID, task, true
}

// getTaskComment fetches a comment and verifies it belongs to the task.
func (h *CommentHandler) getTaskComment(c *gin.Context, taskID uuid.UUID) (*model.Comment, bool) {
	commentID, err := uuid.Parse(c.Param("commentId"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid comment ID format"})
		return nil, false
	}

	comment, err := h.comments.GetByID(c.Request.Context(), commentID)
	if err != nil {
		if err == repository.ErrCommentNotFound {
			c.JSON(http.StatusNotFound, gin.H{"error": "Comment not found"})
		} else {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to retrieve comment"})
		}
		return nil, false
	}
	if comment.TaskID != taskID {
		c.JSON(http.StatusNotFound, gin.H{"error": "Comment not found"})
		return nil, false
	}
	return comment, true
}

// List godoc
// @Summary  List a task's comments in chronological order
// @Tags     Comments
// @Produce  json
// @Security BearerAuth
// @Param    id path string true "Project ID"
// @Param    taskId path string true "Task ID"
// @Success  200 {array} CommentResponse
// @Router   /projects/{id}/tasks/{taskId}/comments [get]
func (h *CommentHandler) List(c *gin.Context) {
	_, _, _, task, ok := h.resolveTask(c)
	if !ok {
		return
	}

	comments, err := h.comments.ListByTask(c.Request.Context(), task.ID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to retrieve comments"})
		return
	}

	response := make([]CommentResponse, len(comments))
	for i := range comments {
		response[i] = commentResponse(&comments[i])
	}
	c.JSON(http.StatusOK, response)
}

// Create godoc
// @Summary  Add a comment to a task
// @Tags     Comments
// @Accept   json
// @Produce  json
// @Security BearerAuth
// @Param    id path string true "Project ID"
// @Param    taskId path string true "Task ID"
// @Param    request body CommentRequest true "Comment content"
// @Success  201 {object} CommentResponse
// @Router   /projects/{id}/tasks/{taskId}/comments [post]
func (h *CommentHandler) Create(c *gin.Context) {
	project, role, userID, task, ok := h.resolveTask(c)
	if !ok {
		return
	}
	if !role.CanComment() {
		c.JSON(http.StatusForbidden, gin.H{"error": "Insufficient role to comment"})
		return
	}

	var req CommentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request"})
		return
	}

	comment := &model.Comment{
		TaskID:   task.ID,
		AuthorID: userID,
		Content:  req.Content,
	}
	if err := h.comments.Create(c.Request.Context(), comment); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to create comment"})
		return
	}

	created, err := h.comments.GetByID(c.Request.Context(), comment.ID)
	if err == nil {
		comment = created
	}

	h.recorder.Record(c.Request.Context(), project.ID, userID,
		model.ActionCommentAdded, model.EntityComment, &comment.ID,
		"Commented on task \""+task.Title+"\"")

	h.notifyAssignees(c, task, userID, comment.ID)

	c.JSON(http.StatusCreated, commentResponse(comment))
}

// notifyAssignees targets the task's assignees minus the comment author.
func (h *CommentHandler) notifyAssignees(c *gin.Context, task *model.Task, authorID, commentID uuid.UUID) {
	assignments, err := h.assignments.ListByTask(c.Request.Context(), task.ID)
	if err != nil {
		return
	}

	recipients := make([]uuid.UUID, 0, len(assignments))
	for _, a := range assignments {
		if a.UserID == authorID {
			continue
		}
		recipients = append(recipients, a.UserID)
	}

	h.notifier.Notify(c.Request.Context(), recipients,
		model.ActionCommentAdded,
		"New comment on "+task.Title,
		"A task you are assigned to received a new comment",
		model.EntityComment, &commentID)
}

// Update godoc
// @Summary  Edit a comment (author only)
// @Tags     Comments
// @Accept   json
// @Produce  json
// @Security BearerAuth
// @Param    id path string true "Project ID"
// @Param    taskId path string true "Task ID"
// @Param    commentId path string true "Comment ID"
// @Param    request body CommentRequest true "New content"
// @Success  200 {object} CommentResponse
// @Router   /projects/{id}/tasks/{taskId}/comments/{commentId} [put]
func (h *CommentHandler) Update(c *gin.Context) {
	_, _, userID, task, ok := h.resolveTask(c)
	if !ok {
		return
	}

	comment, ok := h.getTaskComment(c, task.ID)
	if !ok {
		return
	}

	// Editing is reserved for the author; moderators may only delete.
	if comment.AuthorID != userID {
		c.JSON(http.StatusForbidden, gin.H{"error": "Only the author can edit a comment"})
		return
	}

	var req CommentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request"})
		return
	}

	comment.Content = req.Content
	if err := h.comments.Update(c.Request.Context(), comment); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to update comment"})
		return
	}

	c.JSON(http.StatusOK, commentResponse(comment))
}

// Delete godoc
// @Summary  Delete a comment (author or moderator)
// @Tags     Comments
// @Security BearerAuth
// @Param    id path string true "Project ID"
// @Param    taskId path string true "Task ID"
// @Param    commentId path string true "Comment ID"
// @Success  204
// @Router   /projects/{id}/tasks/{taskId}/comments/{commentId} [delete]
func (h *CommentHandler) Delete(c *gin.Context) {
	project, role, userID, task, ok := h.resolveTask(c)
	if !ok {
		return
	}

	comment, ok := h.getTaskComment(c, task.ID)
	if !ok {
		return
	}

	if comment.AuthorID != userID && !role.CanModerateComments() {
		c.JSON(http.StatusForbidden, gin.H{"error": "Insufficient role to delete this comment"})
		return
	}

	if err := h.comments.Delete(c.Request.Context(), comment.ID); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to delete comment"})
		return
	}

	h.recorder.Record(c.Request.Context(), project.ID, userID,
		model.ActionCommentDeleted, model.EntityComment, &comment.ID,
		"Deleted a comment on task \""+task.Title+"\"")

	c.Status(http.StatusNoContent)
}
