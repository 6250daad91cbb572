package handler

import (
	"net/http"
	"time"

	"taskflow/internal/access"
	"taskflow/internal/model"
	"taskflow/internal/repository"
	"taskflow/internal/service"
	"taskflow/internal/storage"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

type AttachmentHandler struct {
	attachments repository.AttachmentRepositoryInterface
	tasks       repository.TaskRepositoryInterface
	store       storage.FileStore
	access      *access.Service
	recorder    *service.ActivityRecorder
	log         *zap.Logger
}

func NewAttachmentHandler(
	attachments repository.AttachmentRepositoryInterface,
	tasks repository.TaskRepositoryInterface,
	store storage.FileStore,
	accessSvc *access.Service,
	recorder *service.ActivityRecorder,
	log *zap.Logger,
) *AttachmentHandler {
	return &AttachmentHandler{
		attachments: attachments,
		tasks:       tasks,
		store:       store,
		access:      accessSvc,
		recorder:    recorder,
		log:         log,
	}
}

type AttachmentResponse struct {
	ID            string `json:"id"`
	TaskID        string `json:"task_id"`
	FileName      string `json:"file_name"`
	ContentType   string `json:"content_type,omitempty"`
	Size          int64  `json:"size"`
	UploaderEmail string `json:"uploader_email"`
	CreatedAt     string `json:"created_at"`
}

func attachmentResponse(a *model.Attachment) AttachmentResponse {
	return AttachmentResponse{
		ID:            a.ID.String(),
		TaskID:        a.TaskID.String(),
		FileName:      a.FileName,
		ContentType:   a.ContentType,
		Size:          a.Size,
		UploaderEmail: a.Uploader.Email,
		CreatedAt:     a.CreatedAt.Format(time.RFC3339),
	}
}

func (h *AttachmentHandler) resolveTask(c *gin.Context) (*model.Project, model.Role, uuid.UUID, *model.Task, bool) {
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

// List godoc
// @Summary  List a task's attachment metadata
// @Tags     Attachments
// @Produce  json
// @Security BearerAuth
// @Param    id path string true "Project ID"
// @Param    taskId path string true "Task ID"
// @Success  200 {array} AttachmentResponse
// @Router   /projects/{id}/tasks/{taskId}/attachments [get]
func (h *AttachmentHandler) List(c *gin.Context) {
	_, _, _, task, ok := h.resolveTask(c)
	if !ok {
		return
	}

	attachments, err := h.attachments.ListByTask(c.Request.Context(), task.ID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to retrieve attachments"})
		return
	}

	response := make([]AttachmentResponse, len(attachments))
	for i := range attachments {
		response[i] = attachmentResponse(&attachments[i])
	}
	c.JSON(http.StatusOK, response)
}

// Upload godoc
// @Summary  Attach a file to a task
// @Tags     Attachments
// @Accept   multipart/form-data
// @Produce  json
// @Security BearerAuth
// @Param    id path string true "Project ID"
// @Param    taskId path string true "Task ID"
// @Param    file formData file true "File to attach"
// @Success  201 {object} AttachmentResponse
// @Router   /projects/{id}/tasks/{taskId}/attachments [post]
func (h *AttachmentHandler) Upload(c *gin.Context) {
	project, role, userID, task, ok := h.resolveTask(c)
	if !ok {
		return
	}
	if !role.CanManageAttachments() {
		c.JSON(http.StatusForbidden, gin.H{"error": "Insufficient role to add attachments"})
		return
	}

	header, err := c.FormFile("file")
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "File is required"})
		return
	}

	// Size gate runs before the store is touched so an oversized upload
	// never consumes storage.
	if header.Size > model.MaxAttachmentSize {
		c.JSON(http.StatusBadRequest, gin.H{"error": "File exceeds the maximum attachment size"})
		return
	}

	file, err := header.Open()
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to read file"})
		return
	}
	defer file.Close()

	path, err := h.store.Save(header.Filename, file)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to store file"})
		return
	}

	attachment := &model.Attachment{
		TaskID:      task.ID,
		FileName:    header.Filename,
		ContentType: header.Header.Get("Content-Type"),
		Size:        header.Size,
		StoragePath: path,
		UploadedBy:  userID,
	}
	if err := h.attachments.Create(c.Request.Context(), attachment); err != nil {
		if delErr := h.store.Delete(path); delErr != nil {
			h.log.Warn("failed to clean up orphaned upload",
				zap.String("path", path), zap.Error(delErr))
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to save attachment"})
		return
	}

	h.recorder.Record(c.Request.Context(), project.ID, userID,
		model.ActionAttachmentAdded, model.EntityTask, &task.ID,
		"Attached \""+header.Filename+"\" to task \""+task.Title+"\"")

	c.JSON(http.StatusCreated, attachmentResponse(attachment))
}

// Download godoc
// @Summary  Download an attachment's content
// @Tags     Attachments
// @Security BearerAuth
// @Param    id path string true "Project ID"
// @Param    taskId path string true "Task ID"
// @Param    attachmentId path string true "Attachment ID"
// @Success  200 {file} binary
// @Router   /projects/{id}/tasks/{taskId}/attachments/{attachmentId} [get]
func (h *AttachmentHandler) Download(c *gin.Context) {
	_, _, _, task, ok := h.resolveTask(c)
	if !ok {
		return
	}

	attachment, ok := h.getTaskAttachment(c, task.ID)
	if !ok {
		return
	}

	reader, err := h.store.Open(attachment.StoragePath)
	if err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Attachment content not found"})
		return
	}
	defer reader.Close()

	contentType := attachment.ContentType
	if contentType == "" {
		contentType = "application/octet-stream"
	}
	c.Header("Content-Disposition", `attachment; filename="`+attachment.FileName+`"`)
	c.DataFromReader(http.StatusOK, attachment.Size, contentType, reader, nil)
}

// Delete godoc
// @Summary  Delete an attachment and its stored content
// @Tags     Attachments
// @Security BearerAuth
// @Param    id path string true "Project ID"
// @Param    taskId path string true "Task ID"
// @Param    attachmentId path string true "Attachment ID"
// @Success  204
// @Router   /projects/{id}/tasks/{taskId}/attachments/{attachmentId} [delete]
func (h *AttachmentHandler) Delete(c *gin.Context) {
	project, role, userID, task, ok := h.resolveTask(c)
	if !ok {
		return
	}
	if !role.CanManageAttachments() {
		c.JSON(http.StatusForbidden, gin.H{"error": "Insufficient role to delete attachments"})
		return
	}

	attachment, ok := h.getTaskAttachment(c, task.ID)
	if !ok {
		return
	}

	if err := h.attachments.Delete(c.Request.Context(), attachment.ID); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to delete attachment"})
		return
	}

	// Metadata is authoritative; a leftover file on disk is only noise.
	if err := h.store.Delete(attachment.StoragePath); err != nil {
		h.log.Warn("failed to delete stored attachment content",
			zap.String("path", attachment.StoragePath), zap.Error(err))
	}

	h.recorder.Record(c.Request.Context(), project.ID, userID,
		model.ActionAttachmentDeleted, model.EntityTask, &task.ID,
		"Removed \""+attachment.FileName+"\" from task \""+task.Title+"\"")

	c.Status(http.StatusNoContent)
}

func (h *AttachmentHandler) getTaskAttachment(c *gin.Context, taskID uuid.UUID) (*model.Attachment, bool) {
	attachmentID, err := uuid.Parse(c.Param("attachmentId"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid attachment ID format"})
		return nil, false
	}

	attachment, err := h.attachments.GetByTaskAndID(c.Request.Context(), taskID, attachmentID)
	if err != nil {
		if err == repository.ErrAttachmentNotFound {
			c.JSON(http.StatusNotFound, gin.H{"error": "Attachment not found"})
		} else {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to retrieve attachment"})
		}
		return nil, false
	}
	return attachment, true
}
