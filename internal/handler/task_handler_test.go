package handler_test

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"taskflow/internal/access"
	"taskflow/internal/handler"
	"taskflow/internal/model"
	"taskflow/internal/repository"
	"taskflow/internal/service"
	"taskflow/internal/stream"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"go.uber.org/zap"
)

type taskFixture struct {
	router        *gin.Engine
	projects      *MockProjectRepository
	memberships   *MockMembershipRepository
	tasks         *MockTaskRepository
	assignments   *MockAssignmentRepository
	users         *MockUserRepository
	activities    *MockActivityRepository
	notifications *MockNotificationRepository
}

func setupTaskTest(userID uuid.UUID) *taskFixture {
	gin.SetMode(gin.TestMode)

	f := &taskFixture{
		projects:      new(MockProjectRepository),
		memberships:   new(MockMembershipRepository),
		tasks:         new(MockTaskRepository),
		assignments:   new(MockAssignmentRepository),
		users:         new(MockUserRepository),
		activities:    new(MockActivityRepository),
		notifications: new(MockNotificationRepository),
	}

	accessSvc := access.NewService(f.projects, f.memberships)
	recorder := service.NewActivityRecorder(f.activities, zap.NewNop())
	notifier := service.NewNotifier(f.notifications, stream.NewHub(zap.NewNop()), zap.NewNop())
	taskHandler := handler.NewTaskHandler(f.tasks, f.assignments, f.memberships, f.users, accessSvc, recorder, notifier)

	r := gin.New()
	r.Use(injectUser(userID))
	r.GET("/projects/:id/tasks", taskHandler.List)
	r.POST("/projects/:id/tasks", taskHandler.Create)
	r.PUT("/projects/:id/tasks/:taskId", taskHandler.Update)
	r.DELETE("/projects/:id/tasks/:taskId", taskHandler.Delete)
	r.GET("/projects/:id/tasks/:taskId/assignees", taskHandler.Assignees)
	r.POST("/projects/:id/tasks/:taskId/assign", taskHandler.Assign)
	r.DELETE("/projects/:id/tasks/:taskId/assign/:userId", taskHandler.Unassign)
	f.router = r

	// Side effects of accepted mutations are best-effort and not the
	// subject of most tests here.
	f.activities.On("Create", mock.Anything, mock.Anything).Return(nil).Maybe()
	f.notifications.On("Create", mock.Anything, mock.Anything).Return(nil).Maybe()
	f.notifications.On("CountUnread", mock.Anything, mock.Anything).Return(int64(0), nil).Maybe()

	return f
}

// grantRole wires access resolution so userID holds the given role in the
// project.
func (f *taskFixture) grantRole(project *model.Project, userID uuid.UUID, role model.Role) {
	f.projects.On("GetByID", mock.Anything, project.ID).Return(project, nil)
	if role == model.RoleOwner {
		project.OwnerID = userID
		return
	}
	membership := &model.Membership{ProjectID: project.ID, UserID: userID, Role: role.String()}
	f.memberships.On("GetByProjectAndUser", mock.Anything, project.ID, userID).Return(membership, nil)
}

func jsonRequest(method, url string, body interface{}) *http.Request {
	var buf bytes.Buffer
	if body != nil {
		json.NewEncoder(&buf).Encode(body)
	}
	req, _ := http.NewRequest(method, url, &buf)
	req.Header.Set("Content-Type", "application/json")
	return req
}

func TestTaskCreate_DefaultsApplied(t *testing.T) {
	userID := uuid.New()
	f := setupTaskTest(userID)

	project := &model.Project{ID: uuid.New(), Name: "Launch", OwnerID: uuid.New()}
	f.grantRole(project, userID, model.RoleMember)
	f.memberships.On("ListByProject", mock.Anything, project.ID).Return([]model.Membership{}, nil).Maybe()

	f.tasks.On("Create", mock.Anything, mock.MatchedBy(func(task *model.Task) bool {
		return task.Status == model.StatusTodo && task.Priority == model.PriorityMedium
	})).Return(nil)

	req := jsonRequest("POST", "/projects/"+project.ID.String()+"/tasks",
		handler.TaskRequest{Title: "Write release notes"})
	resp := httptest.NewRecorder()
	f.router.ServeHTTP(resp, req)

	assert.Equal(t, http.StatusCreated, resp.Code)

	var response handler.TaskResponse
	assert.NoError(t, json.Unmarshal(resp.Body.Bytes(), &response))
	assert.Equal(t, "TODO", response.Status)
	assert.Equal(t, "MEDIUM", response.Priority)

	f.tasks.AssertExpectations(t)
}

func TestTaskCreate_ViewerDenied(t *testing.T) {
	userID := uuid.New()
	f := setupTaskTest(userID)

	project := &model.Project{ID: uuid.New(), Name: "Launch", OwnerID: uuid.New()}
	f.grantRole(project, userID, model.RoleViewer)

	req := jsonRequest("POST", "/projects/"+project.ID.String()+"/tasks",
		handler.TaskRequest{Title: "Not allowed"})
	resp := httptest.NewRecorder()
	f.router.ServeHTTP(resp, req)

	assert.Equal(t, http.StatusForbidden, resp.Code)
	f.tasks.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
}

func TestTaskList_ViewerAllowed(t *testing.T) {
	userID := uuid.New()
	f := setupTaskTest(userID)

	project := &model.Project{ID: uuid.New(), Name: "Launch", OwnerID: uuid.New()}
	f.grantRole(project, userID, model.RoleViewer)

	f.tasks.On("List", mock.Anything, project.ID, repository.TaskFilter{}).
		Return([]model.Task{{ID: uuid.New(), ProjectID: project.ID, Title: "Visible"}}, nil)

	req, _ := http.NewRequest("GET", "/projects/"+project.ID.String()+"/tasks", nil)
	resp := httptest.NewRecorder()
	f.router.ServeHTTP(resp, req)

	assert.Equal(t, http.StatusOK, resp.Code)
	assert.Contains(t, resp.Body.String(), "Visible")
}

func TestTaskList_FiltersCompose(t *testing.T) {
	userID := uuid.New()
	f := setupTaskTest(userID)

	project := &model.Project{ID: uuid.New(), Name: "Launch", OwnerID: uuid.New()}
	f.grantRole(project, userID, model.RoleMember)

	expected := repository.TaskFilter{
		Search:   "deploy",
		Status:   model.StatusInProgress,
		Priority: model.PriorityHigh,
	}
	f.tasks.On("List", mock.Anything, project.ID, expected).Return([]model.Task{}, nil)

	url := "/projects/" + project.ID.String() + "/tasks?search=deploy&status=IN_PROGRESS&priority=HIGH"
	req, _ := http.NewRequest("GET", url, nil)
	resp := httptest.NewRecorder()
	f.router.ServeHTTP(resp, req)

	assert.Equal(t, http.StatusOK, resp.Code)
	f.tasks.AssertExpectations(t)
}

func TestTaskList_InvalidStatusFilter(t *testing.T) {
	userID := uuid.New()
	f := setupTaskTest(userID)

	project := &model.Project{ID: uuid.New(), Name: "Launch", OwnerID: uuid.New()}
	f.grantRole(project, userID, model.RoleMember)

	url := "/projects/" + project.ID.String() + "/tasks?status=ARCHIVED"
	req, _ := http.NewRequest("GET", url, nil)
	resp := httptest.NewRecorder()
	f.router.ServeHTTP(resp, req)

	assert.Equal(t, http.StatusBadRequest, resp.Code)
	f.tasks.AssertNotCalled(t, "List", mock.Anything, mock.Anything, mock.Anything)
}

func TestTaskUpdate_AllStatusTransitionsAccepted(t *testing.T) {
	statuses := []model.TaskStatus{model.StatusTodo, model.StatusInProgress, model.StatusDone}

	for _, from := range statuses {
		for _, to := range statuses {
			t.Run(string(from)+"_to_"+string(to), func(t *testing.T) {
				userID := uuid.New()
				f := setupTaskTest(userID)

				project := &model.Project{ID: uuid.New(), Name: "Launch", OwnerID: uuid.New()}
				f.grantRole(project, userID, model.RoleMember)
				f.memberships.On("ListByProject", mock.Anything, project.ID).Return([]model.Membership{}, nil).Maybe()

				task := &model.Task{
					ID:        uuid.New(),
					ProjectID: project.ID,
					Title:     "Ship it",
					Status:    from,
					Priority:  model.PriorityMedium,
				}
				f.tasks.On("GetByID", mock.Anything, task.ID).Return(task, nil)
				f.tasks.On("Update", mock.Anything, mock.MatchedBy(func(updated *model.Task) bool {
					return updated.Status == to
				})).Return(nil)

				req := jsonRequest("PUT",
					"/projects/"+project.ID.String()+"/tasks/"+task.ID.String(),
					handler.TaskRequest{Title: "Ship it", Status: string(to), Priority: "MEDIUM"})
				resp := httptest.NewRecorder()
				f.router.ServeHTTP(resp, req)

				assert.Equal(t, http.StatusOK, resp.Code)
				f.tasks.AssertExpectations(t)
			})
		}
	}
}

func TestTaskUpdate_NotifiesMembersButNotActor(t *testing.T) {
	userID := uuid.New()
	f := setupTaskTest(userID)

	project := &model.Project{ID: uuid.New(), Name: "Launch", OwnerID: uuid.New()}
	f.grantRole(project, userID, model.RoleOwner)

	// The owner also holds a membership row; the fan-out must not double
	// up on it, and the acting owner gets nothing.
	bob := uuid.New()
	f.memberships.On("ListByProject", mock.Anything, project.ID).Return([]model.Membership{
		{ProjectID: project.ID, UserID: userID, Role: "OWNER"},
		{ProjectID: project.ID, UserID: bob, Role: "MEMBER"},
	}, nil)

	task := &model.Task{
		ID:        uuid.New(),
		ProjectID: project.ID,
		Title:     "Ship it",
		Status:    model.StatusTodo,
		Priority:  model.PriorityMedium,
	}
	f.tasks.On("GetByID", mock.Anything, task.ID).Return(task, nil)
	f.tasks.On("Update", mock.Anything, mock.Anything).Return(nil)

	req := jsonRequest("PUT",
		"/projects/"+project.ID.String()+"/tasks/"+task.ID.String(),
		handler.TaskRequest{Title: "Ship it", Status: "DONE", Priority: "MEDIUM"})
	resp := httptest.NewRecorder()
	f.router.ServeHTTP(resp, req)

	assert.Equal(t, http.StatusOK, resp.Code)

	f.notifications.AssertCalled(t, "Create", mock.Anything, mock.MatchedBy(func(n *model.Notification) bool {
		return n.UserID == bob
	}))
	f.notifications.AssertNotCalled(t, "Create", mock.Anything, mock.MatchedBy(func(n *model.Notification) bool {
		return n.UserID == userID
	}))
	f.notifications.AssertNumberOfCalls(t, "Create", 1)
}

func TestTaskUpdate_TaskFromAnotherProjectIsHidden(t *testing.T) {
	userID := uuid.New()
	f := setupTaskTest(userID)

	project := &model.Project{ID: uuid.New(), Name: "Launch", OwnerID: uuid.New()}
	f.grantRole(project, userID, model.RoleMember)

	foreignTask := &model.Task{
		ID:        uuid.New(),
		ProjectID: uuid.New(),
		Title:     "Elsewhere",
		Status:    model.StatusTodo,
		Priority:  model.PriorityLow,
	}
	f.tasks.On("GetByID", mock.Anything, foreignTask.ID).Return(foreignTask, nil)

	req := jsonRequest("PUT",
		"/projects/"+project.ID.String()+"/tasks/"+foreignTask.ID.String(),
		handler.TaskRequest{Title: "Hijack", Status: "TODO", Priority: "LOW"})
	resp := httptest.NewRecorder()
	f.router.ServeHTTP(resp, req)

	assert.Equal(t, http.StatusNotFound, resp.Code)
	f.tasks.AssertNotCalled(t, "Update", mock.Anything, mock.Anything)
}

func TestTaskAssign_RequiresProjectMembership(t *testing.T) {
	userID := uuid.New()
	f := setupTaskTest(userID)

	project := &model.Project{ID: uuid.New(), Name: "Launch", OwnerID: uuid.New()}
	f.grantRole(project, userID, model.RoleManager)

	task := &model.Task{ID: uuid.New(), ProjectID: project.ID, Title: "Ship it"}
	f.tasks.On("GetByID", mock.Anything, task.ID).Return(task, nil)

	outsider := &model.User{ID: uuid.New(), Email: "outsider@example.com", Name: "Outsider"}
	f.users.On("FindByEmail", mock.Anything, outsider.Email).Return(outsider, nil)
	f.memberships.On("GetByProjectAndUser", mock.Anything, project.ID, outsider.ID).Return(nil, nil)

	req := jsonRequest("POST",
		"/projects/"+project.ID.String()+"/tasks/"+task.ID.String()+"/assign",
		handler.TaskAssignRequest{AssigneeEmail: outsider.Email})
	resp := httptest.NewRecorder()
	f.router.ServeHTTP(resp, req)

	assert.Equal(t, http.StatusBadRequest, resp.Code)
	assert.Contains(t, resp.Body.String(), "User is not a member of this project")
	f.assignments.AssertNotCalled(t, "Assign", mock.Anything, mock.Anything, mock.Anything)
}

func TestTaskAssign_DuplicateConflict(t *testing.T) {
	userID := uuid.New()
	f := setupTaskTest(userID)

	project := &model.Project{ID: uuid.New(), Name: "Launch", OwnerID: uuid.New()}
	f.grantRole(project, userID, model.RoleMember)

	task := &model.Task{ID: uuid.New(), ProjectID: project.ID, Title: "Ship it"}
	f.tasks.On("GetByID", mock.Anything, task.ID).Return(task, nil)

	assignee := &model.User{ID: uuid.New(), Email: "dev@example.com", Name: "Dev"}
	f.users.On("FindByEmail", mock.Anything, assignee.Email).Return(assignee, nil)
	f.memberships.On("GetByProjectAndUser", mock.Anything, project.ID, assignee.ID).
		Return(&model.Membership{ProjectID: project.ID, UserID: assignee.ID, Role: "MEMBER"}, nil)
	f.assignments.On("Assign", mock.Anything, task.ID, assignee.ID).Return(repository.ErrAlreadyAssigned)

	req := jsonRequest("POST",
		"/projects/"+project.ID.String()+"/tasks/"+task.ID.String()+"/assign",
		handler.TaskAssignRequest{AssigneeEmail: assignee.Email})
	resp := httptest.NewRecorder()
	f.router.ServeHTTP(resp, req)

	assert.Equal(t, http.StatusConflict, resp.Code)
}

func TestTaskAssign_NotifiesAssignee(t *testing.T) {
	userID := uuid.New()
	f := setupTaskTest(userID)

	project := &model.Project{ID: uuid.New(), Name: "Launch", OwnerID: uuid.New()}
	f.grantRole(project, userID, model.RoleMember)

	task := &model.Task{ID: uuid.New(), ProjectID: project.ID, Title: "Ship it"}
	f.tasks.On("GetByID", mock.Anything, task.ID).Return(task, nil)

	assignee := &model.User{ID: uuid.New(), Email: "dev@example.com", Name: "Dev"}
	f.users.On("FindByEmail", mock.Anything, assignee.Email).Return(assignee, nil)
	f.memberships.On("GetByProjectAndUser", mock.Anything, project.ID, assignee.ID).
		Return(&model.Membership{ProjectID: project.ID, UserID: assignee.ID, Role: "MEMBER"}, nil)
	f.assignments.On("Assign", mock.Anything, task.ID, assignee.ID).Return(nil)

	req := jsonRequest("POST",
		"/projects/"+project.ID.String()+"/tasks/"+task.ID.String()+"/assign",
		handler.TaskAssignRequest{AssigneeEmail: assignee.Email})
	resp := httptest.NewRecorder()
	f.router.ServeHTTP(resp, req)

	assert.Equal(t, http.StatusCreated, resp.Code)
	f.notifications.AssertCalled(t, "Create", mock.Anything, mock.MatchedBy(func(n *model.Notification) bool {
		return n.UserID == assignee.ID && n.Type == model.ActionTaskAssigned
	}))
}

func TestTaskUnassign_IsIdempotent(t *testing.T) {
	userID := uuid.New()
	f := setupTaskTest(userID)

	project := &model.Project{ID: uuid.New(), Name: "Launch", OwnerID: uuid.New()}
	f.grantRole(project, userID, model.RoleMember)

	task := &model.Task{ID: uuid.New(), ProjectID: project.ID, Title: "Ship it"}
	f.tasks.On("GetByID", mock.Anything, task.ID).Return(task, nil)

	// The repository treats a missing assignment as success; the handler
	// reports 204 either way.
	targetID := uuid.New()
	f.assignments.On("Unassign", mock.Anything, task.ID, targetID).Return(nil)

	url := "/projects/" + project.ID.String() + "/tasks/" + task.ID.String() + "/assign/" + targetID.String()
	req, _ := http.NewRequest("DELETE", url, nil)
	resp := httptest.NewRecorder()
	f.router.ServeHTTP(resp, req)

	assert.Equal(t, http.StatusNoContent, resp.Code)
}

func TestTaskDelete_NonMemberDenied(t *testing.T) {
	userID := uuid.New()
	f := setupTaskTest(userID)

	project := &model.Project{ID: uuid.New(), Name: "Launch", OwnerID: uuid.New()}
	f.projects.On("GetByID", mock.Anything, project.ID).Return(project, nil)
	f.memberships.On("GetByProjectAndUser", mock.Anything, project.ID, userID).Return(nil, nil)

	url := "/projects/" + project.ID.String() + "/tasks/" + uuid.New().String()
	req, _ := http.NewRequest("DELETE", url, nil)
	resp := httptest.NewRecorder()
	f.router.ServeHTTP(resp, req)

	assert.Equal(t, http.StatusForbidden, resp.Code)
	f.tasks.AssertNotCalled(t, "Delete", mock.Anything, mock.Anything)
}
