package api

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/limbo/studytrack/internal/service"
	"github.com/limbo/studytrack/pkg/entity"
	"github.com/limbo/studytrack/pkg/httputil"
)

type TrackerFieldsRequest struct {
	TargetCount     *int    `json:"target_count"`
	CurrentCount    *int    `json:"current_count"`
	DailyTarget     *int    `json:"daily_target"`
	Unit            *string `json:"unit"`
	TargetDuration  *int    `json:"target_duration"`
	CurrentDuration *int    `json:"current_duration"`
	DailyDuration   *int    `json:"daily_duration"`
	Progress        *int    `json:"progress"`
	TotalDays       *int    `json:"total_days"`
}

type CreateTaskRequest struct {
	Title             string     `json:"title"`
	Description       string     `json:"description"`
	Category          string     `json:"category"`
	Difficulty        string     `json:"difficulty"`
	EstimatedDuration *int       `json:"estimated_duration"`
	Priority          *int       `json:"priority"`
	Weight            *int       `json:"weight"`
	TaskType          string     `json:"task_type"`
	DueDate           *time.Time `json:"due_date"`
	TrackerFieldsRequest
}

type UpdateTaskRequest struct {
	Title             *string    `json:"title"`
	Description       *string    `json:"description"`
	Category          *string    `json:"category"`
	Difficulty        *string    `json:"difficulty"`
	EstimatedDuration *int       `json:"estimated_duration"`
	Priority          *int       `json:"priority"`
	Weight            *int       `json:"weight"`
	TaskType          *string    `json:"task_type"`
	DueDate           *time.Time `json:"due_date"`
	TrackerFieldsRequest
}

type UpdateTaskStatusRequest struct {
	Status string `json:"status"`
}

type GetTasksResponse struct {
	Tasks []entity.TaskView `json:"tasks"`
}

type GenerateTasksResponse struct {
	Generated int               `json:"generated"`
	Tasks     []entity.TaskView `json:"tasks"`
}

func (f TrackerFieldsRequest) toService() service.TrackerFields {
	return service.TrackerFields{
		TargetCount:     f.TargetCount,
		CurrentCount:    f.CurrentCount,
		DailyTarget:     f.DailyTarget,
		Unit:            f.Unit,
		TargetDuration:  f.TargetDuration,
		CurrentDuration: f.CurrentDuration,
		DailyDuration:   f.DailyDuration,
		Progress:        f.Progress,
		TotalDays:       f.TotalDays,
	}
}

func taskViews(tasks []*entity.Task) []entity.TaskView {
	views := make([]entity.TaskView, 0, len(tasks))
	for _, t := range tasks {
		views = append(views, entity.NewTaskView(t))
	}
	return views
}

func (s *Server) CreateTask(w http.ResponseWriter, r *http.Request) {
	logger := GetLoggerFromCtx(r.Context())
	uid, ok := s.requireUID(w, r, "create task")
	if !ok {
		return
	}
	var req CreateTaskRequest
	if err := decodeBody(r, &req); err != nil {
		logger.Error("create task error: invalid request body")
		httputil.WriteErrorResponse(w, http.StatusBadRequest, "invalid request body", nil)
		return
	}
	ctx, cancel := s.requestContext(r)
	defer cancel()
	task, err := s.taskService.Create(ctx, uid, &service.CreateTaskRequest{
		Title:             req.Title,
		Description:       req.Description,
		Category:          req.Category,
		Difficulty:        req.Difficulty,
		EstimatedDuration: req.EstimatedDuration,
		Priority:          req.Priority,
		Weight:            req.Weight,
		TaskType:          req.TaskType,
		DueDate:           req.DueDate,
		TrackerFields:     req.TrackerFieldsRequest.toService(),
	})
	if err != nil {
		writeServiceError(w, logger, "create task", err)
		return
	}
	httputil.WriteJSONResponse(w, http.StatusCreated, entity.NewTaskView(task))
	logger.Info("task created")
}

func (s *Server) GetTasks(w http.ResponseWriter, r *http.Request) {
	logger := GetLoggerFromCtx(r.Context())
	uid, ok := s.requireUID(w, r, "get tasks")
	if !ok {
		return
	}
	date, err := parseTimeParam(r.URL.Query().Get("date"), s.location)
	if err != nil {
		httputil.WriteErrorResponse(w, http.StatusBadRequest, "invalid date param", err)
		return
	}
	ctx, cancel := s.requestContext(r)
	defer cancel()
	tasks, err := s.taskService.List(ctx, uid, service.TaskQuery{
		Status: r.URL.Query().Get("status"),
		Date:   date,
	})
	if err != nil {
		writeServiceError(w, logger, "get tasks", err)
		return
	}
	httputil.WriteJSONResponse(w, http.StatusOK, GetTasksResponse{Tasks: taskViews(tasks)})
}

func (s *Server) GetTask(w http.ResponseWriter, r *http.Request) {
	logger := GetLoggerFromCtx(r.Context())
	uid, ok := s.requireUID(w, r, "get task")
	if !ok {
		return
	}
	id, ok := taskIDParam(w, r)
	if !ok {
		return
	}
	ctx, cancel := s.requestContext(r)
	defer cancel()
	task, err := s.taskService.Get(ctx, uid, id)
	if err != nil {
		writeServiceError(w, logger, "get task", err)
		return
	}
	httputil.WriteJSONResponse(w, http.StatusOK, entity.NewTaskView(task))
}

func (s *Server) UpdateTask(w http.ResponseWriter, r *http.Request) {
	logger := GetLoggerFromCtx(r.Context())
	uid, ok := s.requireUID(w, r, "update task")
	if !ok {
		return
	}
	id, ok := taskIDParam(w, r)
	if !ok {
		return
	}
	var req UpdateTaskRequest
	if err := decodeBody(r, &req); err != nil {
		logger.Error("update task error: invalid request body")
		httputil.WriteErrorResponse(w, http.StatusBadRequest, "invalid request body", nil)
		return
	}
	ctx, cancel := s.requestContext(r)
	defer cancel()
	task, err := s.taskService.Update(ctx, uid, id, &service.UpdateTaskRequest{
		Title:             req.Title,
		Description:       req.Description,
		Category:          req.Category,
		Difficulty:        req.Difficulty,
		EstimatedDuration: req.EstimatedDuration,
		Priority:          req.Priority,
		Weight:            req.Weight,
		TaskType:          req.TaskType,
		DueDate:           req.DueDate,
		TrackerFields:     req.TrackerFieldsRequest.toService(),
	})
	if err != nil {
		writeServiceError(w, logger, "update task", err)
		return
	}
	httputil.WriteJSONResponse(w, http.StatusOK, entity.NewTaskView(task))
	logger.Info("task updated")
}

func (s *Server) UpdateTaskStatus(w http.ResponseWriter, r *http.Request) {
	logger := GetLoggerFromCtx(r.Context())
	uid, ok := s.requireUID(w, r, "update task status")
	if !ok {
		return
	}
	id, ok := taskIDParam(w, r)
	if !ok {
		return
	}
	var req UpdateTaskStatusRequest
	if err := decodeBody(r, &req); err != nil {
		logger.Error("update task status error: invalid request body")
		httputil.WriteErrorResponse(w, http.StatusBadRequest, "invalid request body", nil)
		return
	}
	ctx, cancel := s.requestContext(r)
	defer cancel()
	if err := s.taskService.UpdateStatus(ctx, uid, id, req.Status); err != nil {
		writeServiceError(w, logger, "update task status", err)
		return
	}
	httputil.WriteNoContent(w)
	logger.Info("task status updated")
}

func (s *Server) DeleteTask(w http.ResponseWriter, r *http.Request) {
	logger := GetLoggerFromCtx(r.Context())
	uid, ok := s.requireUID(w, r, "task deletion")
	if !ok {
		return
	}
	id, ok := taskIDParam(w, r)
	if !ok {
		return
	}
	ctx, cancel := s.requestContext(r)
	defer cancel()
	if err := s.taskService.Delete(ctx, uid, id); err != nil {
		writeServiceError(w, logger, "task deletion", err)
		return
	}
	httputil.WriteNoContent(w)
	logger.Info("task deleted")
}

func (s *Server) GetTaskStats(w http.ResponseWriter, r *http.Request) {
	logger := GetLoggerFromCtx(r.Context())
	uid, ok := s.requireUID(w, r, "task stats")
	if !ok {
		return
	}
	ctx, cancel := s.requestContext(r)
	defer cancel()
	completion, err := s.taskService.Completion(ctx, uid)
	if err != nil {
		writeServiceError(w, logger, "task stats", err)
		return
	}
	httputil.WriteJSONResponse(w, http.StatusOK, completion)
}

func (s *Server) GenerateTasks(w http.ResponseWriter, r *http.Request) {
	logger := GetLoggerFromCtx(r.Context())
	uid, ok := s.requireUID(w, r, "generate tasks")
	if !ok {
		return
	}
	ctx, cancel := s.requestContext(r)
	defer cancel()
	tasks, err := s.generationService.GenerateForUser(ctx, uid)
	if err != nil {
		writeServiceError(w, logger, "generate tasks", err)
		return
	}
	httputil.WriteJSONResponse(w, http.StatusCreated, GenerateTasksResponse{
		Generated: len(tasks),
		Tasks:     taskViews(tasks),
	})
	logger.Info("tasks generated")
}

func taskIDParam(w http.ResponseWriter, r *http.Request) (uuid.UUID, bool) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		GetLoggerFromCtx(r.Context()).Error("invalid task id in path value")
		httputil.WriteErrorResponse(w, http.StatusBadRequest, "invalid task id in path value", nil)
		return uuid.UUID{}, false
	}
	return id, true
}
