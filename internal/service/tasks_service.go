package service

import (
	"context"
	"errors"
	"log"
	"strings"

	"github.com/google/uuid"
	errorvalues "github.com/limbo/studytrack/internal/error_values"
	"github.com/limbo/studytrack/internal/repository"
	"github.com/limbo/studytrack/pkg/calendar"
	"github.com/limbo/studytrack/pkg/entity"
)

const defaultTaskPriority = 3

// Variant defaults for newly created tasks.
const (
	defaultTargetCount    = 2000
	defaultDailyTarget    = 50
	defaultUnit           = "items"
	defaultTargetDuration = 1800
	defaultDailyDuration  = 60
	defaultTotalDays      = 15
)

type TaskService struct {
	repo  repository.TasksRepositoryI
	clock Clock
}

func NewTaskService(repo repository.TasksRepositoryI, clock Clock) *TaskService {
	if repo == nil {
		log.Fatal("on task service provided nil repo")
	}
	if clock == nil {
		clock = LocalClock{}
	}
	return &TaskService{
		repo:  repo,
		clock: clock,
	}
}

func (serv *TaskService) Create(ctx context.Context, uid uuid.UUID, req *CreateTaskRequest) (*entity.Task, error) {
	if err := validateStruct(req); err != nil {
		return nil, err
	}
	taskType := entity.TaskType(req.TaskType)
	if req.TrackerFields.foreignTo(taskType) {
		return nil, errorvalues.NewValidationError("fields of another task type given for " + req.TaskType + " task")
	}
	task := &entity.Task{
		UserID:            uid,
		Title:             strings.TrimSpace(req.Title),
		Description:       req.Description,
		Category:          req.Category,
		Difficulty:        req.Difficulty,
		EstimatedDuration: req.EstimatedDuration,
		Priority:          defaultTaskPriority,
		Weight:            entity.DefaultTaskWeight,
		Status:            entity.TaskPending,
		Tracking:          req.TrackerFields.newTracker(taskType),
		DueDate:           req.DueDate,
	}
	if task.Difficulty == "" {
		task.Difficulty = entity.DifficultyMedium
	}
	if req.Priority != nil {
		task.Priority = *req.Priority
	}
	if req.Weight != nil {
		task.Weight = *req.Weight
	}
	task.SyncCompletion(serv.clock.Now())
	if err := serv.repo.Create(ctx, task); err != nil {
		if errors.Is(err, errorvalues.ErrUserNotFound) {
			return nil, err
		}
		return nil, errors.New("repository error: " + err.Error())
	}
	return task, nil
}

func (serv *TaskService) Get(ctx context.Context, uid, id uuid.UUID) (*entity.Task, error) {
	return serv.owned(ctx, uid, id)
}

func (serv *TaskService) List(ctx context.Context, uid uuid.UUID, q TaskQuery) ([]*entity.Task, error) {
	if err := validateStruct(&q); err != nil {
		return nil, err
	}
	var filter repository.TaskFilter
	if q.Status != "" {
		status := entity.TaskStatus(q.Status)
		filter.Status = &status
	}
	if q.Date != nil {
		from, to := calendar.DayRange(q.Date.In(serv.clock.Now().Location()))
		filter.DueFrom, filter.DueTo = &from, &to
	}
	tasks, err := serv.repo.ListByUser(ctx, uid, filter)
	if err != nil {
		return nil, errors.New("repository error: " + err.Error())
	}
	return tasks, nil
}

func (serv *TaskService) Update(ctx context.Context, uid, id uuid.UUID, req *UpdateTaskRequest) (*entity.Task, error) {
	if err := validateStruct(req); err != nil {
		return nil, err
	}
	task, err := serv.owned(ctx, uid, id)
	if err != nil {
		return nil, err
	}
	if req.TaskType != nil && entity.TaskType(*req.TaskType) != task.Type() {
		return nil, errorvalues.ErrTaskTypeChanged
	}
	if req.TrackerFields.foreignTo(task.Type()) {
		return nil, errorvalues.NewValidationError("fields of another task type given for " + string(task.Type()) + " task")
	}
	if req.Title != nil {
		task.Title = strings.TrimSpace(*req.Title)
	}
	if req.Description != nil {
		task.Description = *req.Description
	}
	if req.Category != nil {
		task.Category = *req.Category
	}
	if req.Difficulty != nil {
		task.Difficulty = *req.Difficulty
	}
	if req.EstimatedDuration != nil {
		task.EstimatedDuration = req.EstimatedDuration
	}
	if req.Priority != nil {
		task.Priority = *req.Priority
	}
	if req.Weight != nil {
		task.Weight = *req.Weight
	}
	if req.DueDate != nil {
		task.DueDate = req.DueDate
	}
	req.TrackerFields.apply(task.Tracking)
	task.SyncCompletion(serv.clock.Now())
	if err = serv.repo.Update(ctx, task); err != nil {
		if errors.Is(err, errorvalues.ErrTaskNotFound) {
			return nil, err
		}
		return nil, errors.New("repository error: " + err.Error())
	}
	return task, nil
}

func (serv *TaskService) UpdateStatus(ctx context.Context, uid, id uuid.UUID, status string) error {
	s := entity.TaskStatus(status)
	if !s.Valid() {
		return errorvalues.NewValidationError("unknown task status " + status)
	}
	if _, err := serv.owned(ctx, uid, id); err != nil {
		return err
	}
	if err := serv.repo.UpdateStatus(ctx, id, s); err != nil {
		if errors.Is(err, errorvalues.ErrTaskNotFound) {
			return err
		}
		return errors.New("repository error: " + err.Error())
	}
	return nil
}

func (serv *TaskService) Delete(ctx context.Context, uid, id uuid.UUID) error {
	if _, err := serv.owned(ctx, uid, id); err != nil {
		return err
	}
	if err := serv.repo.Delete(ctx, id); err != nil {
		if errors.Is(err, errorvalues.ErrTaskNotFound) {
			return err
		}
		return errors.New("repository error: " + err.Error())
	}
	return nil
}

func (serv *TaskService) Completion(ctx context.Context, uid uuid.UUID) (*entity.TaskCompletion, error) {
	tasks, err := serv.repo.ListByUser(ctx, uid, repository.TaskFilter{})
	if err != nil {
		return nil, errors.New("repository error: " + err.Error())
	}
	res := entity.WeightedCompletion(tasks)
	return &res, nil
}

func (serv *TaskService) owned(ctx context.Context, uid, id uuid.UUID) (*entity.Task, error) {
	task, err := serv.repo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, errorvalues.ErrTaskNotFound) {
			return nil, err
		}
		return nil, errors.New("repository error: " + err.Error())
	}
	if task.UserID != uid {
		return nil, errorvalues.ErrWrongOwner
	}
	return task, nil
}

func (f TrackerFields) hasCount() bool {
	return f.TargetCount != nil || f.CurrentCount != nil || f.DailyTarget != nil || f.Unit != nil
}

func (f TrackerFields) hasDuration() bool {
	return f.TargetDuration != nil || f.CurrentDuration != nil || f.DailyDuration != nil
}

func (f TrackerFields) hasProgress() bool {
	return f.Progress != nil || f.TotalDays != nil
}

// foreignTo reports whether fields of a variant other than t are set.
func (f TrackerFields) foreignTo(t entity.TaskType) bool {
	switch t {
	case entity.TaskTypeCount:
		return f.hasDuration() || f.hasProgress()
	case entity.TaskTypeDuration:
		return f.hasCount() || f.hasProgress()
	case entity.TaskTypeProgress:
		return f.hasCount() || f.hasDuration()
	}
	return true
}

func (f TrackerFields) newTracker(t entity.TaskType) entity.Tracker {
	var tr entity.Tracker
	switch t {
	case entity.TaskTypeCount:
		tr = &entity.CountTracker{TargetCount: defaultTargetCount, DailyTarget: defaultDailyTarget, Unit: defaultUnit}
	case entity.TaskTypeDuration:
		tr = &entity.DurationTracker{TargetDuration: defaultTargetDuration, DailyDuration: defaultDailyDuration}
	case entity.TaskTypeProgress:
		tr = &entity.ProgressTracker{TotalDays: defaultTotalDays}
	default:
		return nil
	}
	f.apply(tr)
	return tr
}

func (f TrackerFields) apply(tr entity.Tracker) {
	switch t := tr.(type) {
	case *entity.CountTracker:
		setIfPresent(&t.TargetCount, f.TargetCount)
		setIfPresent(&t.CurrentCount, f.CurrentCount)
		setIfPresent(&t.DailyTarget, f.DailyTarget)
		setIfPresent(&t.Unit, f.Unit)
	case *entity.DurationTracker:
		setIfPresent(&t.TargetDuration, f.TargetDuration)
		setIfPresent(&t.CurrentDuration, f.CurrentDuration)
		setIfPresent(&t.DailyDuration, f.DailyDuration)
	case *entity.ProgressTracker:
		if f.Progress != nil {
			t.Progress = entity.ClampProgress(*f.Progress)
		}
		setIfPresent(&t.TotalDays, f.TotalDays)
	}
}

func setIfPresent[T any](dst *T, v *T) {
	if v != nil {
		*dst = *v
	}
}
