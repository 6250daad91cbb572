package handler_test

import (
	"context"
	"io"

	"taskflow/internal/middleware"
	"taskflow/internal/model"
	"taskflow/internal/repository"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/stretchr/testify/mock"
)

// injectUser stands in for the auth middleware in handler tests.
func injectUser(userID uuid.UUID) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Set(middleware.UserIDKey, userID)
		c.Next()
	}
}

type MockUserRepository struct {
	mock.Mock
}

var _ repository.UserRepositoryInterface = (*MockUserRepository)(nil)

func (m *MockUserRepository) Create(ctx context.Context, user *model.User) error {
	args := m.Called(ctx, user)
	return args.Error(0)
}

func (m *MockUserRepository) FindByEmail(ctx context.Context, email string) (*model.User, error) {
	args := m.Called(ctx, email)
	user := args.Get(0)
	if user == nil {
		return nil, args.Error(1)
	}
	return user.(*model.User), args.Error(1)
}

func (m *MockUserRepository) GetByID(ctx context.Context, id uuid.UUID) (*model.User, error) {
	args := m.Called(ctx, id)
	user := args.Get(0)
	if user == nil {
		return nil, args.Error(1)
	}
	return user.(*model.User), args.Error(1)
}

type MockProjectRepository struct {
	mock.Mock
}

var _ repository.ProjectRepositoryInterface = (*MockProjectRepository)(nil)

func (m *MockProjectRepository) CreateWithOwner(ctx context.Context, project *model.Project) error {
	args := m.Called(ctx, project)
	return args.Error(0)
}

func (m *MockProjectRepository) GetByID(ctx context.Context, id uuid.UUID) (*model.Project, error) {
	args := m.Called(ctx, id)
	project := args.Get(0)
	if project == nil {
		return nil, args.Error(1)
	}
	return project.(*model.Project), args.Error(1)
}

func (m *MockProjectRepository) GetOwned(ctx context.Context, ownerID uuid.UUID) ([]model.Project, error) {
	args := m.Called(ctx, ownerID)
	projects := args.Get(0)
	if projects == nil {
		return nil, args.Error(1)
	}
	return projects.([]model.Project), args.Error(1)
}

func (m *MockProjectRepository) DeleteCascade(ctx context.Context, id uuid.UUID) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

type MockMembershipRepository struct {
	mock.Mock
}

var _ repository.MembershipRepositoryInterface = (*MockMembershipRepository)(nil)

func (m *MockMembershipRepository) Create(ctx context.Context, membership *model.Membership) error {
	args := m.Called(ctx, membership)
	return args.Error(0)
}

func (m *MockMembershipRepository) GetByID(ctx context.Context, id uuid.UUID) (*model.Membership, error) {
	args := m.Called(ctx, id)
	membership := args.Get(0)
	if membership == nil {
		return nil, args.Error(1)
	}
	return membership.(*model.Membership), args.Error(1)
}

func (m *MockMembershipRepository) GetByProjectAndUser(ctx context.Context, projectID, userID uuid.UUID) (*model.Membership, error) {
	args := m.Called(ctx, projectID, userID)
	membership := args.Get(0)
	if membership == nil {
		return nil, args.Error(1)
	}
	return membership.(*model.Membership), args.Error(1)
}

func (m *MockMembershipRepository) ListByProject(ctx context.Context, projectID uuid.UUID) ([]model.Membership, error) {
	args := m.Called(ctx, projectID)
	memberships := args.Get(0)
	if memberships == nil {
		return nil, args.Error(1)
	}
	return memberships.([]model.Membership), args.Error(1)
}

func (m *MockMembershipRepository) ListByUser(ctx context.Context, userID uuid.UUID) ([]model.Membership, error) {
	args := m.Called(ctx, userID)
	memberships := args.Get(0)
	if memberships == nil {
		return nil, args.Error(1)
	}
	return memberships.([]model.Membership), args.Error(1)
}

func (m *MockMembershipRepository) UpdateRole(ctx context.Context, id uuid.UUID, role string) error {
	args := m.Called(ctx, id, role)
	return args.Error(0)
}

func (m *MockMembershipRepository) Delete(ctx context.Context, id uuid.UUID) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

type MockTaskRepository struct {
	mock.Mock
}

var _ repository.TaskRepositoryInterface = (*MockTaskRepository)(nil)

func (m *MockTaskRepository) Create(ctx context.Context, task *model.Task) error {
	args := m.Called(ctx, task)
	return args.Error(0)
}

func (m *MockTaskRepository) GetByID(ctx context.Context, id uuid.UUID) (*model.Task, error) {
	args := m.Called(ctx, id)
	task := args.Get(0)
	if task == nil {
		return nil, args.Error(1)
	}
	return task.(*model.Task), args.Error(1)
}

func (m *MockTaskRepository) List(ctx context.Context, projectID uuid.UUID, filter repository.TaskFilter) ([]model.Task, error) {
	args := m.Called(ctx, projectID, filter)
	tasks := args.Get(0)
	if tasks == nil {
		return nil, args.Error(1)
	}
	return tasks.([]model.Task), args.Error(1)
}

func (m *MockTaskRepository) ListByProjects(ctx context.Context, projectIDs []uuid.UUID) ([]model.Task, error) {
	args := m.Called(ctx, projectIDs)
	tasks := args.Get(0)
	if tasks == nil {
		return nil, args.Error(1)
	}
	return tasks.([]model.Task), args.Error(1)
}

func (m *MockTaskRepository) Update(ctx context.Context, task *model.Task) error {
	args := m.Called(ctx, task)
	return args.Error(0)
}

func (m *MockTaskRepository) Delete(ctx context.Context, id uuid.UUID) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

type MockAssignmentRepository struct {
	mock.Mock
}

var _ repository.AssignmentRepositoryInterface = (*MockAssignmentRepository)(nil)

func (m *MockAssignmentRepository) Assign(ctx context.Context, taskID, userID uuid.UUID) error {
	args := m.Called(ctx, taskID, userID)
	return args.Error(0)
}

func (m *MockAssignmentRepository) Unassign(ctx context.Context, taskID, userID uuid.UUID) error {
	args := m.Called(ctx, taskID, userID)
	return args.Error(0)
}

func (m *MockAssignmentRepository) ListByTask(ctx context.Context, taskID uuid.UUID) ([]model.Assignment, error) {
	args := m.Called(ctx, taskID)
	assignments := args.Get(0)
	if assignments == nil {
		return nil, args.Error(1)
	}
	return assignments.([]model.Assignment), args.Error(1)
}

type MockCommentRepository struct {
	mock.Mock
}

var _ repository.CommentRepositoryInterface = (*MockCommentRepository)(nil)

func (m *MockCommentRepository) Create(ctx context.Context, comment *model.Comment) error {
	args := m.Called(ctx, comment)
	return args.Error(0)
}

func (m *MockCommentRepository) GetByID(ctx context.Context, id uuid.UUID) (*model.Comment, error) {
	args := m.Called(ctx, id)
	comment := args.Get(0)
	if comment == nil {
		return nil, args.Error(1)
	}
	return comment.(*model.Comment), args.Error(1)
}

func (m *MockCommentRepository) ListByTask(ctx context.Context, taskID uuid.UUID) ([]model.Comment, error) {
	args := m.Called(ctx, taskID)
	comments := args.Get(0)
	if comments == nil {
		return nil, args.Error(1)
	}
	return comments.([]model.Comment), args.Error(1)
}

func (m *MockCommentRepository) Update(ctx context.Context, comment *model.Comment) error {
	args := m.Called(ctx, comment)
	return args.Error(0)
}

func (m *MockCommentRepository) Delete(ctx context.Context, id uuid.UUID) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

type MockAttachmentRepository struct {
	mock.Mock
}

var _ repository.AttachmentRepositoryInterface = (*MockAttachmentRepository)(nil)

func (m *MockAttachmentRepository) Create(ctx context.Context, attachment *model.Attachment) error {
	args := m.Called(ctx, attachment)
	return args.Error(0)
}

func (m *MockAttachmentRepository) GetByTaskAndID(ctx context.Context, taskID, id uuid.UUID) (*model.Attachment, error) {
	args := m.Called(ctx, taskID, id)
	attachment := args.Get(0)
	if attachment == nil {
		return nil, args.Error(1)
	}
	return attachment.(*model.Attachment), args.Error(1)
}

func (m *MockAttachmentRepository) ListByTask(ctx context.Context, taskID uuid.UUID) ([]model.Attachment, error) {
	args := m.Called(ctx, taskID)
	attachments := args.Get(0)
	if attachments == nil {
		return nil, args.Error(1)
	}
	return attachments.([]model.Attachment), args.Error(1)
}

func (m *MockAttachmentRepository) Delete(ctx context.Context, id uuid.UUID) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

type MockActivityRepository struct {
	mock.Mock
}

var _ repository.ActivityRepositoryInterface = (*MockActivityRepository)(nil)

func (m *MockActivityRepository) Create(ctx context.Context, entry *model.ActivityLog) error {
	args := m.Called(ctx, entry)
	return args.Error(0)
}

func (m *MockActivityRepository) ListByProject(ctx context.Context, projectID uuid.UUID, limit int) ([]model.ActivityLog, error) {
	args := m.Called(ctx, projectID, limit)
	entries := args.Get(0)
	if entries == nil {
		return nil, args.Error(1)
	}
	return entries.([]model.ActivityLog), args.Error(1)
}

type MockNotificationRepository struct {
	mock.Mock
}

var _ repository.NotificationRepositoryInterface = (*MockNotificationRepository)(nil)

func (m *MockNotificationRepository) Create(ctx context.Context, notification *model.Notification) error {
	args := m.Called(ctx, notification)
	return args.Error(0)
}

func (m *MockNotificationRepository) GetByID(ctx context.Context, id uuid.UUID) (*model.Notification, error) {
	args := m.Called(ctx, id)
	notification := args.Get(0)
	if notification == nil {
		return nil, args.Error(1)
	}
	return notification.(*model.Notification), args.Error(1)
}

func (m *MockNotificationRepository) ListByUser(ctx context.Context, userID uuid.UUID) ([]model.Notification, error) {
	args := m.Called(ctx, userID)
	notifications := args.Get(0)
	if notifications == nil {
		return nil, args.Error(1)
	}
	return notifications.([]model.Notification), args.Error(1)
}

func (m *MockNotificationRepository) CountUnread(ctx context.Context, userID uuid.UUID) (int64, error) {
	args := m.Called(ctx, userID)
	return args.Get(0).(int64), args.Error(1)
}

func (m *MockNotificationRepository) MarkRead(ctx context.Context, id uuid.UUID) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

func (m *MockNotificationRepository) MarkAllRead(ctx context.Context, userID uuid.UUID) error {
	args := m.Called(ctx, userID)
	return args.Error(0)
}

type MockFileStore struct {
	mock.Mock
}

func (m *MockFileStore) Save(fileName string, content io.Reader) (string, error) {
	args := m.Called(fileName, content)
	return args.String(0), args.Error(1)
}

func (m *MockFileStore) Delete(path string) error {
	args := m.Called(path)
	return args.Error(0)
}

func (m *MockFileStore) Open(path string) (io.ReadCloser, error) {
	args := m.Called(path)
	reader := args.Get(0)
	if reader == nil {
		return nil, args.Error(1)
	}
	return reader.(io.ReadCloser), args.Error(1)
}
