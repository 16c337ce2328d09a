package api_test

import (
	"bytes"
	"context"
	"database/sql"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/bytedance/sonic"
	"github.com/golang/mock/gomock"
	"github.com/google/uuid"
	_ "github.com/lib/pq"
	"github.com/limbo/studytrack/internal/api"
	errorvalues "github.com/limbo/studytrack/internal/error_values"
	"github.com/limbo/studytrack/internal/planner"
	"github.com/limbo/studytrack/internal/repository"
	"github.com/limbo/studytrack/internal/service"
	"github.com/limbo/studytrack/internal/service/mocks"
	"github.com/limbo/studytrack/pkg/entity"
	jwtservice "github.com/limbo/studytrack/pkg/jwt_service"
	"github.com/pressly/goose"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/modules/postgres"
	"github.com/testcontainers/testcontainers-go/wait"
	"golang.org/x/crypto/bcrypt"
)

func TestMain(m *testing.M) {
	service.InitValidator()
	m.Run()
}

var (
	username        = "test_name"
	password        = "test_password"
	passwordHash, _ = bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	uid             = uuid.New()
	secret          = "secret"
)

type UserServiceMock struct {
	success bool
}

func (usmock *UserServiceMock) ChangeState(success bool) {
	usmock.success = success
}

func (usmock *UserServiceMock) user() *entity.User {
	return &entity.User{
		ID:           uid,
		Name:         username,
		PasswordHash: string(passwordHash),
	}
}

func (usmock *UserServiceMock) Register(ctx context.Context, req *service.RegisterRequest) (*entity.User, error) {
	if usmock.success {
		return usmock.user(), nil
	}
	return nil, errors.New("mocked error")
}

func (usmock *UserServiceMock) Login(ctx context.Context, name, password string) (*entity.User, error) {
	if usmock.success {
		return usmock.user(), nil
	}
	return nil, errors.New("mocked error")
}

// GetByID reports a missing user on failure so auth can tell it apart.
func (usmock *UserServiceMock) GetByID(ctx context.Context, id uuid.UUID) (*entity.User, error) {
	if usmock.success {
		return usmock.user(), nil
	}
	return nil, errorvalues.ErrUserNotFound
}

func (usmock *UserServiceMock) GetByName(ctx context.Context, name string) (*entity.User, error) {
	if usmock.success {
		return usmock.user(), nil
	}
	return nil, errors.New("mocked error")
}

func (usmock *UserServiceMock) UpdateProfile(ctx context.Context, id uuid.UUID, req *service.UpdateProfileRequest) (*entity.User, error) {
	if usmock.success {
		u := usmock.user()
		u.ExamDate = req.ExamDate
		return u, nil
	}
	return nil, errors.New("mocked error")
}

func (usmock *UserServiceMock) DeleteAccount(ctx context.Context, id uuid.UUID, password string) error {
	if usmock.success {
		return nil
	}
	return errorvalues.ErrWrongCredentials
}

func (usmock *UserServiceMock) Overview(ctx context.Context, id uuid.UUID) (*entity.UserStats, error) {
	if usmock.success {
		return &entity.UserStats{TotalCheckIns: 3, CurrentStreak: 3, LongestStreak: 3}, nil
	}
	return nil, errors.New("mocked error")
}

func (usmock *UserServiceMock) Countdown(ctx context.Context, id uuid.UUID) (*entity.ExamCountdown, error) {
	if usmock.success {
		return &entity.ExamCountdown{Days: 10}, nil
	}
	return nil, errors.New("mocked error")
}

// routed builds a server behind the full router plus a valid token for uid.
type routed struct {
	serv  *api.Server
	token string
}

func newRouted(t *testing.T, list api.ServicesList) *routed {
	t.Helper()
	jwt := jwtservice.New(secret, time.Hour)
	if list.UserService == nil {
		list.UserService = &UserServiceMock{success: true}
	}
	list.JwtService = jwt
	token, err := jwt.GenerateToken(&entity.User{ID: uid, Name: username})
	require.NoError(t, err)
	return &routed{serv: api.New(&list), token: token}
}

func (rt *routed) do(method, target string, body io.Reader) *httptest.ResponseRecorder {
	rr := httptest.NewRecorder()
	req := httptest.NewRequest(method, target, body)
	req.Header.Set("Authorization", "Bearer "+rt.token)
	rt.serv.ServeHTTP(rr, req)
	return rr
}

func jsonBody(t *testing.T, v any) io.Reader {
	t.Helper()
	data, err := sonic.ConfigDefault.Marshal(v)
	require.NoError(t, err)
	return bytes.NewReader(data)
}

func TestRegister(t *testing.T) {
	body, err := sonic.ConfigDefault.Marshal(api.RegisterRequest{
		Name:     username,
		Password: password,
	})
	if err != nil {
		t.Fatal(err)
	}
	var req *http.Request
	mock := UserServiceMock{}
	serv := api.New(&api.ServicesList{
		UserService: &mock,
	})
	t.Run("registered", func(t *testing.T) {
		rr := httptest.NewRecorder()
		req = httptest.NewRequest(http.MethodPost, "/api/v1/auth/register", bytes.NewReader(body))
		mock.ChangeState(true)
		serv.Register(rr, req)
		assert.Equal(t, http.StatusCreated, rr.Result().StatusCode)
	})
	t.Run("service error", func(t *testing.T) {
		rr := httptest.NewRecorder()
		req = httptest.NewRequest(http.MethodPost, "/api/v1/auth/register", bytes.NewReader(body))
		mock.ChangeState(false)
		serv.Register(rr, req)
		assert.Equal(t, http.StatusInternalServerError, rr.Result().StatusCode)
	})
	t.Run("invalid body", func(t *testing.T) {
		rr := httptest.NewRecorder()
		req = httptest.NewRequest(http.MethodPost, "/api/v1/auth/register", nil)
		mock.ChangeState(true)
		serv.Register(rr, req)
		assert.Equal(t, http.StatusBadRequest, rr.Result().StatusCode)
	})
}

func TestLogin(t *testing.T) {
	body, err := sonic.ConfigDefault.Marshal(api.LoginRequest{
		Name:     username,
		Password: password,
	})
	if err != nil {
		t.Fatal(err)
	}
	mock := UserServiceMock{}
	serv := api.New(&api.ServicesList{
		UserService: &mock,
		JwtService:  jwtservice.New(secret, time.Hour),
	})
	t.Run("logged in", func(t *testing.T) {
		rr := httptest.NewRecorder()
		req := httptest.NewRequest(http.MethodPost, "/api/v1/auth/login", bytes.NewReader(body))
		mock.ChangeState(true)
		serv.Login(rr, req)
		assert.Equal(t, http.StatusOK, rr.Result().StatusCode)
		result := make(map[string]any)
		require.NoError(t, sonic.ConfigDefault.NewDecoder(rr.Body).Decode(&result))
		assert.NotEmpty(t, result["token"])
		assert.Equal(t, uid.String(), result["uid"])
	})
	t.Run("invalid body", func(t *testing.T) {
		rr := httptest.NewRecorder()
		req := httptest.NewRequest(http.MethodPost, "/api/v1/auth/login", nil)
		mock.ChangeState(true)
		serv.Login(rr, req)
		assert.Equal(t, http.StatusBadRequest, rr.Result().StatusCode)
	})
	t.Run("service error", func(t *testing.T) {
		rr := httptest.NewRecorder()
		req := httptest.NewRequest(http.MethodPost, "/api/v1/auth/login", bytes.NewReader(body))
		mock.ChangeState(false)
		serv.Login(rr, req)
		assert.Equal(t, http.StatusInternalServerError, rr.Result().StatusCode)
	})
}

func TestAuthMiddleware(t *testing.T) {
	ctrl := gomock.NewController(t)
	cService := mocks.NewMockCheckInServiceI(ctrl)
	userMock := &UserServiceMock{success: true}
	rt := newRouted(t, api.ServicesList{UserService: userMock, CheckInService: cService})

	t.Run("successful auth", func(t *testing.T) {
		cService.EXPECT().Status(gomock.Any(), uid).Return(&entity.DailyStatus{State: entity.DayStateNone}, nil)
		rr := rt.do(http.MethodGet, "/api/v1/checkins/status", nil)
		assert.Equal(t, http.StatusOK, rr.Code)
		assert.NotEmpty(t, rr.Header().Get("X-Request-ID"))
	})
	t.Run("no token", func(t *testing.T) {
		rr := httptest.NewRecorder()
		rt.serv.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/api/v1/checkins/status", nil))
		assert.Equal(t, http.StatusUnauthorized, rr.Code)
	})
	t.Run("foreign signature", func(t *testing.T) {
		token, err := jwtservice.New("other", time.Hour).GenerateToken(&entity.User{ID: uid})
		require.NoError(t, err)
		rr := httptest.NewRecorder()
		req := httptest.NewRequest(http.MethodGet, "/api/v1/checkins/status", nil)
		req.Header.Set("Authorization", "Bearer "+token)
		rt.serv.ServeHTTP(rr, req)
		assert.Equal(t, http.StatusUnauthorized, rr.Code)
	})
	t.Run("deleted user", func(t *testing.T) {
		userMock.ChangeState(false)
		defer userMock.ChangeState(true)
		rr := rt.do(http.MethodGet, "/api/v1/checkins/status", nil)
		assert.Equal(t, http.StatusUnauthorized, rr.Code)
	})
	t.Run("request id is echoed", func(t *testing.T) {
		reqID := uuid.NewString()
		rr := httptest.NewRecorder()
		req := httptest.NewRequest(http.MethodPost, "/api/v1/auth/login", nil)
		req.Header.Set("X-Request-ID", reqID)
		rt.serv.ServeHTTP(rr, req)
		assert.Equal(t, reqID, rr.Header().Get("X-Request-ID"))
	})
}

func TestUserHandlers(t *testing.T) {
	userMock := &UserServiceMock{success: true}
	rt := newRouted(t, api.ServicesList{UserService: userMock})

	rr := rt.do(http.MethodGet, "/api/v1/users/me", nil)
	assert.Equal(t, http.StatusOK, rr.Code)

	examDate := time.Date(2026, 12, 19, 8, 30, 0, 0, time.UTC)
	rr = rt.do(http.MethodPatch, "/api/v1/users/me", jsonBody(t, api.UpdateProfileRequest{ExamDate: &examDate}))
	assert.Equal(t, http.StatusOK, rr.Code)

	rr = rt.do(http.MethodGet, "/api/v1/users/me/stats", nil)
	assert.Equal(t, http.StatusOK, rr.Code)
	var stats entity.UserStats
	require.NoError(t, sonic.ConfigDefault.NewDecoder(rr.Body).Decode(&stats))
	assert.Equal(t, 3, stats.CurrentStreak)

	rr = rt.do(http.MethodGet, "/api/v1/exam/countdown", nil)
	assert.Equal(t, http.StatusOK, rr.Code)

	rr = rt.do(http.MethodDelete, "/api/v1/users/me", jsonBody(t, api.DeleteAccountRequest{Password: password}))
	assert.Equal(t, http.StatusNoContent, rr.Code)
}

func TestCreateCheckIn(t *testing.T) {
	ctrl := gomock.NewController(t)
	cService := mocks.NewMockCheckInServiceI(ctrl)
	rt := newRouted(t, api.ServicesList{CheckInService: cService})
	hours := 2.5
	req := api.CreateCheckInRequest{Type: "end", Content: "done for today", StudyHours: &hours}
	expected := &service.CheckInRequest{Type: "end", Content: "done for today", StudyHours: &hours}

	testCases := []struct {
		Desc         string
		ExpectedCode int
		MockPrepFunc func()
		Body         func() io.Reader
	}{
		{
			Desc:         "created",
			ExpectedCode: http.StatusCreated,
			MockPrepFunc: func() {
				cService.EXPECT().CheckIn(gomock.Any(), uid, expected).Return(&entity.CheckIn{
					ID:      uuid.New(),
					UserID:  uid,
					Type:    entity.CheckInEnd,
					Content: req.Content,
				}, nil)
			},
			Body: func() io.Reader { return jsonBody(t, req) },
		},
		{
			Desc:         "sequence violated",
			ExpectedCode: http.StatusBadRequest,
			MockPrepFunc: func() {
				cService.EXPECT().CheckIn(gomock.Any(), uid, expected).Return(nil, errorvalues.ErrStartRequired)
			},
			Body: func() io.Reader { return jsonBody(t, req) },
		},
		{
			Desc:         "service error",
			ExpectedCode: http.StatusInternalServerError,
			MockPrepFunc: func() {
				cService.EXPECT().CheckIn(gomock.Any(), uid, expected).Return(nil, errors.New("service error"))
			},
			Body: func() io.Reader { return jsonBody(t, req) },
		},
		{
			Desc:         "corrupted body",
			ExpectedCode: http.StatusBadRequest,
			MockPrepFunc: func() {},
			Body:         func() io.Reader { return bytes.NewReader([]byte("corrupted")) },
		},
	}
	for _, tc := range testCases {
		t.Run(tc.Desc, func(t *testing.T) {
			tc.MockPrepFunc()
			rr := rt.do(http.MethodPost, "/api/v1/checkins", tc.Body())
			assert.Equal(t, tc.ExpectedCode, rr.Code)
		})
	}
}

func TestGetCheckIns(t *testing.T) {
	ctrl := gomock.NewController(t)
	cService := mocks.NewMockCheckInServiceI(ctrl)
	loc := time.FixedZone("UTC+8", 8*60*60)
	rt := newRouted(t, api.ServicesList{CheckInService: cService, Location: loc})

	t.Run("query is passed through", func(t *testing.T) {
		cService.EXPECT().List(gomock.Any(), uid, gomock.Any()).DoAndReturn(
			func(_ context.Context, _ uuid.UUID, q service.CheckInQuery) (*service.CheckInPage, error) {
				assert.Equal(t, 2, q.Page)
				assert.Equal(t, 5, q.Limit)
				assert.Equal(t, "end", q.Type)
				require.NotNil(t, q.From)
				assert.True(t, q.From.Equal(time.Date(2026, 3, 1, 0, 0, 0, 0, loc)))
				assert.Nil(t, q.To)
				return &service.CheckInPage{Page: 2, Limit: 5}, nil
			})
		rr := rt.do(http.MethodGet, "/api/v1/checkins?page=2&limit=5&type=end&from=2026-03-01", nil)
		assert.Equal(t, http.StatusOK, rr.Code)
	})
	t.Run("invalid date", func(t *testing.T) {
		rr := rt.do(http.MethodGet, "/api/v1/checkins?from=yesterday", nil)
		assert.Equal(t, http.StatusBadRequest, rr.Code)
	})
	t.Run("today", func(t *testing.T) {
		cService.EXPECT().Today(gomock.Any(), uid).Return([]entity.CheckIn{{Type: entity.CheckInStart}}, nil)
		rr := rt.do(http.MethodGet, "/api/v1/checkins/today", nil)
		assert.Equal(t, http.StatusOK, rr.Code)
		var resp api.TodayCheckInsResponse
		require.NoError(t, sonic.ConfigDefault.NewDecoder(rr.Body).Decode(&resp))
		assert.Len(t, resp.CheckIns, 1)
	})
	t.Run("stats", func(t *testing.T) {
		cService.EXPECT().Stats(gomock.Any(), uid, 14).Return(&entity.CheckInStats{CurrentStreak: 2}, nil)
		rr := rt.do(http.MethodGet, "/api/v1/checkins/stats?days=14", nil)
		assert.Equal(t, http.StatusOK, rr.Code)
	})
}

func testTask() *entity.Task {
	return &entity.Task{
		ID:       uuid.New(),
		UserID:   uid,
		Title:    "Calculus practice",
		Priority: 4,
		Weight:   5,
		Status:   entity.TaskPending,
		Tracking: &entity.DurationTracker{TargetDuration: 120, CurrentDuration: 60},
	}
}

func TestCreateTask(t *testing.T) {
	ctrl := gomock.NewController(t)
	tService := mocks.NewMockTaskServiceI(ctrl)
	rt := newRouted(t, api.ServicesList{TaskService: tService})
	target := 120
	req := api.CreateTaskRequest{
		Title:    "Calculus practice",
		TaskType: "duration",
		TrackerFieldsRequest: api.TrackerFieldsRequest{
			TargetDuration: &target,
		},
	}

	t.Run("created", func(t *testing.T) {
		tService.EXPECT().Create(gomock.Any(), uid, gomock.Any()).DoAndReturn(
			func(_ context.Context, _ uuid.UUID, r *service.CreateTaskRequest) (*entity.Task, error) {
				assert.Equal(t, "duration", r.TaskType)
				require.NotNil(t, r.TargetDuration)
				assert.Equal(t, 120, *r.TargetDuration)
				return testTask(), nil
			})
		rr := rt.do(http.MethodPost, "/api/v1/tasks", jsonBody(t, req))
		assert.Equal(t, http.StatusCreated, rr.Code)
		result := make(map[string]any)
		require.NoError(t, sonic.ConfigDefault.NewDecoder(rr.Body).Decode(&result))
		assert.Equal(t, "duration", result["task_type"])
		assert.EqualValues(t, 50, result["completion_rate"])
	})
	t.Run("validation error", func(t *testing.T) {
		tService.EXPECT().Create(gomock.Any(), uid, gomock.Any()).
			Return(nil, errorvalues.NewValidationError("target_count is not allowed for duration tasks"))
		rr := rt.do(http.MethodPost, "/api/v1/tasks", jsonBody(t, req))
		assert.Equal(t, http.StatusBadRequest, rr.Code)
	})
	t.Run("corrupted body", func(t *testing.T) {
		rr := rt.do(http.MethodPost, "/api/v1/tasks", bytes.NewReader([]byte("{")))
		assert.Equal(t, http.StatusBadRequest, rr.Code)
	})
}

func TestGetTasks(t *testing.T) {
	ctrl := gomock.NewController(t)
	tService := mocks.NewMockTaskServiceI(ctrl)
	rt := newRouted(t, api.ServicesList{TaskService: tService, Location: time.UTC})
	tasks := []*entity.Task{testTask(), testTask()}

	tService.EXPECT().List(gomock.Any(), uid, gomock.Any()).DoAndReturn(
		func(_ context.Context, _ uuid.UUID, q service.TaskQuery) ([]*entity.Task, error) {
			assert.Equal(t, "pending", q.Status)
			require.NotNil(t, q.Date)
			assert.True(t, q.Date.Equal(time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC)))
			return tasks, nil
		})
	rr := rt.do(http.MethodGet, "/api/v1/tasks?status=pending&date=2026-03-01", nil)
	assert.Equal(t, http.StatusOK, rr.Code)
	result := make(map[string][]map[string]any)
	require.NoError(t, sonic.ConfigDefault.NewDecoder(rr.Body).Decode(&result))
	assert.Len(t, result["tasks"], 2)
}

func TestTaskByID(t *testing.T) {
	ctrl := gomock.NewController(t)
	tService := mocks.NewMockTaskServiceI(ctrl)
	rt := newRouted(t, api.ServicesList{TaskService: tService})
	taskID := uuid.New()
	status := api.UpdateTaskStatusRequest{Status: "completed"}
	title := "Renamed"

	testCases := []struct {
		Desc         string
		Method       string
		Path         string
		Body         any
		ExpectedCode int
		MockPrepFunc func()
	}{
		{
			Desc:         "get",
			Method:       http.MethodGet,
			Path:         "/api/v1/tasks/" + taskID.String(),
			ExpectedCode: http.StatusOK,
			MockPrepFunc: func() {
				tService.EXPECT().Get(gomock.Any(), uid, taskID).Return(testTask(), nil)
			},
		},
		{
			Desc:         "get foreign task",
			Method:       http.MethodGet,
			Path:         "/api/v1/tasks/" + taskID.String(),
			ExpectedCode: http.StatusNotFound,
			MockPrepFunc: func() {
				tService.EXPECT().Get(gomock.Any(), uid, taskID).Return(nil, errorvalues.ErrWrongOwner)
			},
		},
		{
			Desc:         "malformed id",
			Method:       http.MethodGet,
			Path:         "/api/v1/tasks/not-a-uuid",
			ExpectedCode: http.StatusBadRequest,
			MockPrepFunc: func() {},
		},
		{
			Desc:         "update",
			Method:       http.MethodPut,
			Path:         "/api/v1/tasks/" + taskID.String(),
			Body:         api.UpdateTaskRequest{Title: &title},
			ExpectedCode: http.StatusOK,
			MockPrepFunc: func() {
				tService.EXPECT().Update(gomock.Any(), uid, taskID, gomock.Any()).Return(testTask(), nil)
			},
		},
		{
			Desc:         "update changes type",
			Method:       http.MethodPut,
			Path:         "/api/v1/tasks/" + taskID.String(),
			Body:         api.UpdateTaskRequest{Title: &title},
			ExpectedCode: http.StatusBadRequest,
			MockPrepFunc: func() {
				tService.EXPECT().Update(gomock.Any(), uid, taskID, gomock.Any()).Return(nil, errorvalues.ErrTaskTypeChanged)
			},
		},
		{
			Desc:         "status",
			Method:       http.MethodPatch,
			Path:         "/api/v1/tasks/" + taskID.String() + "/status",
			Body:         status,
			ExpectedCode: http.StatusNoContent,
			MockPrepFunc: func() {
				tService.EXPECT().UpdateStatus(gomock.Any(), uid, taskID, "completed").Return(nil)
			},
		},
		{
			Desc:         "delete",
			Method:       http.MethodDelete,
			Path:         "/api/v1/tasks/" + taskID.String(),
			ExpectedCode: http.StatusNoContent,
			MockPrepFunc: func() {
				tService.EXPECT().Delete(gomock.Any(), uid, taskID).Return(nil)
			},
		},
		{
			Desc:         "delete unexisted",
			Method:       http.MethodDelete,
			Path:         "/api/v1/tasks/" + taskID.String(),
			ExpectedCode: http.StatusNotFound,
			MockPrepFunc: func() {
				tService.EXPECT().Delete(gomock.Any(), uid, taskID).Return(errorvalues.ErrTaskNotFound)
			},
		},
		{
			Desc:         "delete service error",
			Method:       http.MethodDelete,
			Path:         "/api/v1/tasks/" + taskID.String(),
			ExpectedCode: http.StatusInternalServerError,
			MockPrepFunc: func() {
				tService.EXPECT().Delete(gomock.Any(), uid, taskID).Return(errors.New("service error"))
			},
		},
	}
	for _, tc := range testCases {
		t.Run(tc.Desc, func(t *testing.T) {
			tc.MockPrepFunc()
			var body io.Reader
			if tc.Body != nil {
				body = jsonBody(t, tc.Body)
			}
			rr := rt.do(tc.Method, tc.Path, body)
			assert.Equal(t, tc.ExpectedCode, rr.Code)
		})
	}
}

func TestTaskStats(t *testing.T) {
	ctrl := gomock.NewController(t)
	tService := mocks.NewMockTaskServiceI(ctrl)
	rt := newRouted(t, api.ServicesList{TaskService: tService})
	tService.EXPECT().Completion(gomock.Any(), uid).Return(&entity.TaskCompletion{TotalTasks: 3, CompletedTasks: 2, AverageRate: 70}, nil)

	rr := rt.do(http.MethodGet, "/api/v1/tasks/stats", nil)
	assert.Equal(t, http.StatusOK, rr.Code)
	var completion entity.TaskCompletion
	require.NoError(t, sonic.ConfigDefault.NewDecoder(rr.Body).Decode(&completion))
	assert.Equal(t, 70.0, completion.AverageRate)
}

func TestGenerateTasks(t *testing.T) {
	ctrl := gomock.NewController(t)
	gService := mocks.NewMockGenerationServiceI(ctrl)
	rt := newRouted(t, api.ServicesList{GenerationService: gService})

	testCases := []struct {
		Desc         string
		ExpectedCode int
		MockPrepFunc func()
	}{
		{
			Desc:         "generated",
			ExpectedCode: http.StatusCreated,
			MockPrepFunc: func() {
				gService.EXPECT().GenerateForUser(gomock.Any(), uid).Return([]*entity.Task{testTask(), testTask(), testTask()}, nil)
			},
		},
		{
			Desc:         "already generated today",
			ExpectedCode: http.StatusConflict,
			MockPrepFunc: func() {
				gService.EXPECT().GenerateForUser(gomock.Any(), uid).Return(nil, errorvalues.ErrAlreadyGenerated)
			},
		},
		{
			Desc:         "generation in progress",
			ExpectedCode: http.StatusConflict,
			MockPrepFunc: func() {
				gService.EXPECT().GenerateForUser(gomock.Any(), uid).Return(nil, errorvalues.ErrLockNotAcquired)
			},
		},
	}
	for _, tc := range testCases {
		t.Run(tc.Desc, func(t *testing.T) {
			tc.MockPrepFunc()
			rr := rt.do(http.MethodPost, "/api/v1/tasks/generate", nil)
			assert.Equal(t, tc.ExpectedCode, rr.Code)
			if tc.ExpectedCode == http.StatusCreated {
				var resp struct {
					Generated int `json:"generated"`
				}
				require.NoError(t, sonic.ConfigDefault.NewDecoder(rr.Body).Decode(&resp))
				assert.Equal(t, 3, resp.Generated)
			}
		})
	}
}

func TestStudyDayIntegrational(t *testing.T) {
	cfg := setupTestDB(t)
	pool := repository.NewPool(cfg)
	usersRepo := repository.NewUsersRepoWithConn(pool)
	checkInsRepo := repository.NewCheckInsRepoWithConn(pool)
	tasksRepo := repository.NewTasksRepoWithConn(pool)
	clock := service.LocalClock{Loc: time.UTC}
	examDate := time.Now().AddDate(0, 0, 30)
	gs := service.NewGenerationService(usersRepo, checkInsRepo, tasksRepo, planner.NewEngine(nil), service.GenerationSettings{
		DefaultExamDate: examDate,
	}, service.WithClock(clock))
	jwt := jwtservice.New(secret, time.Hour)
	server := api.New(&api.ServicesList{
		UserService:       service.NewUserService(usersRepo, checkInsRepo, tasksRepo, clock, examDate),
		CheckInService:    service.NewCheckInService(checkInsRepo, gs, clock),
		TaskService:       service.NewTaskService(tasksRepo, clock),
		GenerationService: gs,
		JwtService:        jwt,
		Location:          time.UTC,
	})
	call := func(method, target, token string, body any) *httptest.ResponseRecorder {
		var reader io.Reader
		if body != nil {
			reader = jsonBody(t, body)
		}
		rr := httptest.NewRecorder()
		req := httptest.NewRequest(method, target, reader)
		if token != "" {
			req.Header.Set("Authorization", "Bearer "+token)
		}
		server.ServeHTTP(rr, req)
		return rr
	}

	rr := call(http.MethodPost, "/api/v1/auth/register", "", api.RegisterRequest{Name: username, Password: password})
	require.Equal(t, http.StatusCreated, rr.Code)
	rr = call(http.MethodPost, "/api/v1/auth/register", "", api.RegisterRequest{Name: username, Password: password})
	assert.Equal(t, http.StatusConflict, rr.Code)

	rr = call(http.MethodPost, "/api/v1/auth/login", "", api.LoginRequest{Name: username, Password: password + "1"})
	assert.Equal(t, http.StatusForbidden, rr.Code)
	rr = call(http.MethodPost, "/api/v1/auth/login", "", api.LoginRequest{Name: username, Password: password})
	require.Equal(t, http.StatusOK, rr.Code)
	result := make(map[string]any)
	require.NoError(t, sonic.ConfigDefault.NewDecoder(rr.Body).Decode(&result))
	token, _ := result["token"].(string)
	require.NotEmpty(t, token)

	rr = call(http.MethodPost, "/api/v1/checkins", token, api.CreateCheckInRequest{Type: "end", Content: "skipped start"})
	assert.Equal(t, http.StatusBadRequest, rr.Code)
	rr = call(http.MethodPost, "/api/v1/checkins", token, api.CreateCheckInRequest{Type: "start", Content: "morning"})
	assert.Equal(t, http.StatusCreated, rr.Code)
	hours := 3.0
	rr = call(http.MethodPost, "/api/v1/checkins", token, api.CreateCheckInRequest{
		Type:       "end",
		Content:    `{"subject":"math","duration":90,"mood":8}`,
		StudyHours: &hours,
	})
	assert.Equal(t, http.StatusCreated, rr.Code)

	rr = call(http.MethodGet, "/api/v1/checkins/status", token, nil)
	require.Equal(t, http.StatusOK, rr.Code)
	var status entity.DailyStatus
	require.NoError(t, sonic.ConfigDefault.NewDecoder(rr.Body).Decode(&status))
	assert.Equal(t, entity.DayStateComplete, status.State)

	rr = call(http.MethodGet, "/api/v1/tasks", token, nil)
	require.Equal(t, http.StatusOK, rr.Code)
	tasks := make(map[string][]map[string]any)
	require.NoError(t, sonic.ConfigDefault.NewDecoder(rr.Body).Decode(&tasks))
	assert.GreaterOrEqual(t, len(tasks["tasks"]), 3)

	rr = call(http.MethodPost, "/api/v1/tasks/generate", token, nil)
	assert.Equal(t, http.StatusConflict, rr.Code)
}

type testPGConfig struct {
	connStr string
}

func (cfg *testPGConfig) ConnString() string {
	return cfg.connStr
}

func setupTestDB(t *testing.T) *testPGConfig {
	if testing.Short() {
		t.Skip("skipping postgres container test in short mode")
	}
	container, err := postgres.Run(context.Background(), "postgres:17",
		postgres.WithUsername("test_user"),
		postgres.WithDatabase("studytrack"),
		postgres.WithPassword("test_password"),
		testcontainers.WithWaitStrategy(
			wait.ForLog("database system is ready to accept connections").
				WithOccurrence(2).
				WithStartupTimeout(30*time.Second),
		),
	)
	if err != nil {
		t.Fatal("error running test container: " + err.Error())
	}
	connStr, err := container.ConnectionString(context.Background())
	if err != nil {
		t.Fatal(err)
	}
	connStr += "sslmode=disable"
	conn, err := sql.Open("postgres", connStr)
	if err != nil {
		t.Fatal(err)
	}
	err = goose.Up(conn, "../../migrations")
	if err != nil {
		t.Fatal(err)
	}

	conn.Close()
	t.Cleanup(func() {
		container.Terminate(context.Background())
	})
	return &testPGConfig{
		connStr: connStr,
	}
}
