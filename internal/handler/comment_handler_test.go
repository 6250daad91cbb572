package handler_test

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"taskflow/internal/access"
	"taskflow/internal/handler"
	"taskflow/internal/model"
	"taskflow/internal/service"
	"taskflow/internal/stream"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"go.uber.org/zap"
)

type commentFixture struct {
	router        *gin.Engine
	projects      *MockProjectRepository
	memberships   *MockMembershipRepository
	tasks         *MockTaskRepository
	assignments   *MockAssignmentRepository
	comments      *MockCommentRepository
	activities    *MockActivityRepository
	notifications *MockNotificationRepository
}

func setupCommentTest(userID uuid.UUID) *commentFixture {
	gin.SetMode(gin.TestMode)

	f := &commentFixture{
		projects:      new(MockProjectRepository),
		memberships:   new(MockMembershipRepository),
		tasks:         new(MockTaskRepository),
		assignments:   new(MockAssignmentRepository),
		comments:      new(MockCommentRepository),
		activities:    new(MockActivityRepository),
		notifications: new(MockNotificationRepository),
	}

	accessSvc := access.NewService(f.projects, f.memberships)
	recorder := service.NewActivityRecorder(f.activities, zap.NewNop())
	notifier := service.NewNotifier(f.notifications, stream.NewHub(zap.NewNop()), zap.NewNop())
	commentHandler := handler.NewCommentHandler(f.comments, f.tasks, f.assignments, accessSvc, recorder, notifier)

	r := gin.New()
	r.Use(injectUser(userID))
	r.GET("/projects/:id/tasks/:taskId/comments", commentHandler.List)
	r.POST("/projects/:id/tasks/:taskId/comments", commentHandler.Create)
	r.PUT("/projects/:id/tasks/:taskId/comments/:commentId", commentHandler.Update)
	r.DELETE("/projects/:id/tasks/:taskId/comments/:commentId", commentHandler.Delete)
	f.router = r

	f.activities.On("Create", mock.Anything, mock.Anything).Return(nil).Maybe()
	f.notifications.On("Create", mock.Anything, mock.Anything).Return(nil).Maybe()
	f.notifications.On("CountUnread", mock.Anything, mock.Anything).Return(int64(0), nil).Maybe()

	return f
}

func (f *commentFixture) projectWithTask(userID uuid.UUID, role model.Role) (*model.Project, *model.Task) {
	project := &model.Project{ID: uuid.New(), Name: "Launch", OwnerID: uuid.New()}
	if role == model.RoleOwner {
		project.OwnerID = userID
	} else {
		f.memberships.On("GetByProjectAndUser", mock.Anything, project.ID, userID).
			Return(&model.Membership{ProjectID: project.ID, UserID: userID, Role: role.String()}, nil)
	}
	task := &model.Task{ID: uuid.New(), ProjectID: project.ID, Title: "Ship it"}
	f.projects.On("GetByID", mock.Anything, project.ID).Return(project, nil)
	f.tasks.On("GetByID", mock.Anything, task.ID).Return(task, nil)
	return project, task
}

func TestCommentCreate_NotifiesAssigneesButNotAuthor(t *testing.T) {
	userID := uuid.New()
	f := setupCommentTest(userID)
	project, task := f.projectWithTask(userID, model.RoleMember)

	other := uuid.New()
	f.assignments.On("ListByTask", mock.Anything, task.ID).Return([]model.Assignment{
		{TaskID: task.ID, UserID: userID},
		{TaskID: task.ID, UserID: other},
	}, nil)

	f.comments.On("Create", mock.Anything, mock.MatchedBy(func(cm *model.Comment) bool {
		return cm.TaskID == task.ID && cm.AuthorID == userID
	})).Return(nil)
	f.comments.On("GetByID", mock.Anything, mock.Anything).
		Return(&model.Comment{TaskID: task.ID, AuthorID: userID, Content: "Looks good",
			Author: model.User{ID: userID, Email: "me@example.com"}}, nil)

	url := "/projects/" + project.ID.String() + "/tasks/" + task.ID.String() + "/comments"
	req := jsonRequest("POST", url, handler.CommentRequest{Content: "Looks good"})
	resp := httptest.NewRecorder()
	f.router.ServeHTTP(resp, req)

	assert.Equal(t, http.StatusCreated, resp.Code)

	f.notifications.AssertCalled(t, "Create", mock.Anything, mock.MatchedBy(func(n *model.Notification) bool {
		return n.UserID == other
	}))
	// The author commenting on their own assigned task gets nothing.
	f.notifications.AssertNotCalled(t, "Create", mock.Anything, mock.MatchedBy(func(n *model.Notification) bool {
		return n.UserID == userID
	}))
}

func TestCommentCreate_ViewerDenied(t *testing.T) {
	userID := uuid.New()
	f := setupCommentTest(userID)
	project, task := f.projectWithTask(userID, model.RoleViewer)

	url := "/projects/" + project.ID.String() + "/tasks/" + task.ID.String() + "/comments"
	req := jsonRequest("POST", url, handler.CommentRequest{Content: "Sneaky"})
	resp := httptest.NewRecorder()
	f.router.ServeHTTP(resp, req)

	assert.Equal(t, http.StatusForbidden, resp.Code)
	f.comments.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
}

func TestCommentUpdate_OnlyAuthorMayEdit(t *testing.T) {
	userID := uuid.New()
	f := setupCommentTest(userID)
	project, task := f.projectWithTask(userID, model.RoleManager)

	comment := &model.Comment{ID: uuid.New(), TaskID: task.ID, AuthorID: uuid.New(), Content: "Original"}
	f.comments.On("GetByID", mock.Anything, comment.ID).Return(comment, nil)

	url := "/projects/" + project.ID.String() + "/tasks/" + task.ID.String() +
		"/comments/" + comment.ID.String()
	req := jsonRequest("PUT", url, handler.CommentRequest{Content: "Rewritten"})
	resp := httptest.NewRecorder()
	f.router.ServeHTTP(resp, req)

	// Even a manager cannot edit someone else's words.
	assert.Equal(t, http.StatusForbidden, resp.Code)
	f.comments.AssertNotCalled(t, "Update", mock.Anything, mock.Anything)
}

func TestCommentDelete_ModeratorMayDeleteOthersComment(t *testing.T) {
	userID := uuid.New()
	f := setupCommentTest(userID)
	project, task := f.projectWithTask(userID, model.RoleManager)

	comment := &model.Comment{ID: uuid.New(), TaskID: task.ID, AuthorID: uuid.New(), Content: "Spam"}
	f.comments.On("GetByID", mock.Anything, comment.ID).Return(comment, nil)
	f.comments.On("Delete", mock.Anything, comment.ID).Return(nil)

	url := "/projects/" + project.ID.String() + "/tasks/" + task.ID.String() +
		"/comments/" + comment.ID.String()
	req, _ := http.NewRequest("DELETE", url, nil)
	resp := httptest.NewRecorder()
	f.router.ServeHTTP(resp, req)

	assert.Equal(t, http.StatusNoContent, resp.Code)
	f.comments.AssertExpectations(t)
}

func TestCommentDelete_MemberCannotDeleteOthersComment(t *testing.T) {
	userID := uuid.New()
	f := setupCommentTest(userID)
	project, task := f.projectWithTask(userID, model.RoleMember)

	comment := &model.Comment{ID: uuid.New(), TaskID: task.ID, AuthorID: uuid.New(), Content: "Keep"}
	f.comments.On("GetByID", mock.Anything, comment.ID).Return(comment, nil)

	url := "/projects/" + project.ID.String() + "/tasks/" + task.ID.String() +
		"/comments/" + comment.ID.String()
	req, _ := http.NewRequest("DELETE", url, nil)
	resp := httptest.NewRecorder()
	f.router.ServeHTTP(resp, req)

	assert.Equal(t, http.StatusForbidden, resp.Code)
	f.comments.AssertNotCalled(t, "Delete", mock.Anything, mock.Anything)
}
