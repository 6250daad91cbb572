package repository

import "errors"

// Common repository errors
var (
	// ErrTaskNotFound is returned when a task is not found
	ErrTaskNotFound = errors.New("task not found")

	// ErrCommentNotFound is returned when a comment is not found
	ErrCommentNotFound = errors.New("comment not found")

	// ErrAttachmentNotFound is returned when an attachment is not found
	ErrAttachmentNotFound = errors.New("attachment not found")

	// ErrNotificationNotFound is returned when a notification is not found
	ErrNotificationNotFound = errors.New("notification not found")

	// ErrMemberNotFound is returned when a project membership is not found
	ErrMemberNotFound = errors.New("member not found")

	// ErrAlreadyAssigned is returned when a user is already assigned to a task
	ErrAlreadyAssigned = errors.New("user already assigned to this task")
)
