package service

import (
	"context"
	"errors"
	"log"
	"log/slog"
	"time"

	"github.com/google/uuid"
	errorvalues "github.com/limbo/studytrack/internal/error_values"
	"github.com/limbo/studytrack/internal/planner"
	"github.com/limbo/studytrack/internal/repository"
	"github.com/limbo/studytrack/pkg/calendar"
	"github.com/limbo/studytrack/pkg/entity"
	"github.com/limbo/studytrack/pkg/logctx"
)

type GenerationSettings struct {
	DefaultExamDate time.Time
	PatternWindow   int // days
	ActiveWindow    int // days
	LockTTL         time.Duration
	SweepLockTTL    time.Duration
}

func (s *GenerationSettings) setDefaults() {
	if s.PatternWindow <= 0 {
		s.PatternWindow = 7
	}
	if s.ActiveWindow <= 0 {
		s.ActiveWindow = 7
	}
	if s.LockTTL <= 0 {
		s.LockTTL = time.Minute
	}
	if s.SweepLockTTL <= 0 {
		s.SweepLockTTL = time.Hour
	}
}

type GenerationService struct {
	usersRepo    repository.UsersRepositoryI
	checkInsRepo repository.CheckInsRepositoryI
	tasksRepo    repository.TasksRepositoryI
	engine       *planner.Engine
	clock        Clock
	locker       Locker
	settings     GenerationSettings
}

type GenerationOption func(*GenerationService)

// WithLocker makes generation hold a lock per user and day, and the sweep a lock per day.
func WithLocker(l Locker) GenerationOption {
	return func(gs *GenerationService) {
		gs.locker = l
	}
}

func WithClock(c Clock) GenerationOption {
	return func(gs *GenerationService) {
		gs.clock = c
	}
}

func NewGenerationService(
	usersRepo repository.UsersRepositoryI,
	checkInsRepo repository.CheckInsRepositoryI,
	tasksRepo repository.TasksRepositoryI,
	engine *planner.Engine,
	settings GenerationSettings,
	opts ...GenerationOption,
) *GenerationService {
	if usersRepo == nil || checkInsRepo == nil || tasksRepo == nil {
		log.Fatal("on generation service provided nil repos")
	}
	if engine == nil {
		engine = planner.NewEngine(nil)
	}
	settings.setDefaults()
	gs := &GenerationService{
		usersRepo:    usersRepo,
		checkInsRepo: checkInsRepo,
		tasksRepo:    tasksRepo,
		engine:       engine,
		clock:        LocalClock{},
		settings:     settings,
	}
	for _, opt := range opts {
		opt(gs)
	}
	return gs
}

func (gs *GenerationService) GenerateForUser(ctx context.Context, uid uuid.UUID) ([]*entity.Task, error) {
	now := gs.clock.Now()
	if gs.locker != nil {
		key := "generation:" + uid.String() + ":" + calendar.DayKey(now)
		ok, err := gs.locker.Acquire(ctx, key, gs.settings.LockTTL)
		if err != nil {
			return nil, errors.New("lock error: " + err.Error())
		}
		if !ok {
			return nil, errorvalues.ErrLockNotAcquired
		}
		defer func() {
			if err := gs.locker.Release(context.WithoutCancel(ctx), key); err != nil {
				logctx.From(ctx).Warn("releasing generation lock failed", slog.String("error", err.Error()))
			}
		}()
	}

	count, err := gs.tasksRepo.CountGeneratedSince(ctx, uid, calendar.StartOfDay(now))
	if err != nil {
		return nil, errors.New("repository error: " + err.Error())
	}
	if count > 0 {
		return nil, errorvalues.ErrAlreadyGenerated
	}
	user, err := gs.usersRepo.FindByID(ctx, uid)
	if err != nil {
		if errors.Is(err, errorvalues.ErrUserNotFound) {
			return nil, err
		}
		return nil, errors.New("repository error: " + err.Error())
	}
	since := now.Add(-time.Duration(gs.settings.PatternWindow) * 24 * time.Hour)
	checkIns, err := gs.checkInsRepo.GetByUserAndRange(ctx, uid, since, calendar.Tomorrow(now))
	if err != nil {
		return nil, errors.New("repository error: " + err.Error())
	}

	patterns := planner.AnalyzePatterns(checkIns, since)
	suggestions := gs.engine.Suggest(patterns, examDateFor(user, gs.settings.DefaultExamDate), now)
	tasks := make([]*entity.Task, 0, len(suggestions))
	for _, s := range suggestions {
		tasks = append(tasks, taskFromSuggestion(uid, s))
	}
	if len(tasks) == 0 {
		return tasks, nil
	}
	if err = gs.tasksRepo.CreateBatch(ctx, tasks); err != nil {
		return nil, errors.New("repository error: " + err.Error())
	}
	return tasks, nil
}

// Sweep generates tasks for every recently active user. Failures for one
// user are logged and do not stop the sweep.
func (gs *GenerationService) Sweep(ctx context.Context) (SweepResult, error) {
	var res SweepResult
	logger := logctx.From(ctx)
	now := gs.clock.Now()
	if gs.locker != nil {
		key := "generation:sweep:" + calendar.DayKey(now)
		ok, err := gs.locker.Acquire(ctx, key, gs.settings.SweepLockTTL)
		if err != nil {
			return res, errors.New("lock error: " + err.Error())
		}
		if !ok {
			return res, errorvalues.ErrLockNotAcquired
		}
		defer func() {
			if err := gs.locker.Release(context.WithoutCancel(ctx), key); err != nil {
				logger.Warn("releasing sweep lock failed", slog.String("error", err.Error()))
			}
		}()
	}

	since := now.Add(-time.Duration(gs.settings.ActiveWindow) * 24 * time.Hour)
	uids, err := gs.usersRepo.ListActiveSince(ctx, since)
	if err != nil {
		return res, errors.New("repository error: " + err.Error())
	}
	for _, uid := range uids {
		if err := ctx.Err(); err != nil {
			return res, err
		}
		res.Scanned++
		tasks, err := gs.GenerateForUser(ctx, uid)
		switch {
		case errors.Is(err, errorvalues.ErrAlreadyGenerated), errors.Is(err, errorvalues.ErrLockNotAcquired):
			res.Skipped++
		case err != nil:
			res.Failed++
			logger.Error("generating tasks in sweep failed", slog.String("uid", uid.String()), slog.String("error", err.Error()))
		default:
			res.Generated++
			logger.Debug("generated tasks in sweep", slog.String("uid", uid.String()), slog.Int("count", len(tasks)))
		}
	}
	return res, nil
}

func taskFromSuggestion(uid uuid.UUID, s entity.TaskSuggestion) *entity.Task {
	estimated := s.EstimatedDuration
	due := s.DueDate
	return &entity.Task{
		UserID:            uid,
		Title:             s.Title,
		Description:       s.Description,
		Category:          s.Category,
		Difficulty:        s.Difficulty,
		EstimatedDuration: &estimated,
		Priority:          s.Priority,
		Weight:            entity.DefaultTaskWeight,
		Status:            entity.TaskPending,
		Tracking: &entity.DurationTracker{
			TargetDuration: s.EstimatedDuration,
			DailyDuration:  s.EstimatedDuration,
		},
		IsGenerated: true,
		DueDate:     &due,
	}
}
