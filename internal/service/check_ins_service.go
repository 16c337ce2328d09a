package service

import (
	"context"
	"errors"
	"log"
	"log/slog"
	"strings"

	"github.com/google/uuid"
	errorvalues "github.com/limbo/studytrack/internal/error_values"
	"github.com/limbo/studytrack/internal/repository"
	"github.com/limbo/studytrack/internal/stats"
	"github.com/limbo/studytrack/pkg/calendar"
	"github.com/limbo/studytrack/pkg/entity"
	"github.com/limbo/studytrack/pkg/logctx"
)

const (
	defaultPageLimit = 20
	maxPageLimit     = 100
	defaultStatsDays = 30
	maxStatsDays     = 365
)

// TaskGenerator is the part of generation the check-in flow depends on.
type TaskGenerator interface {
	GenerateForUser(ctx context.Context, uid uuid.UUID) ([]*entity.Task, error)
}

type CheckInService struct {
	repo      repository.CheckInsRepositoryI
	generator TaskGenerator
	clock     Clock
}

func NewCheckInService(repo repository.CheckInsRepositoryI, generator TaskGenerator, clock Clock) *CheckInService {
	if repo == nil || generator == nil {
		log.Fatal("on check-in service provided nil dependencies")
	}
	if clock == nil {
		clock = LocalClock{}
	}
	return &CheckInService{
		repo:      repo,
		generator: generator,
		clock:     clock,
	}
}

func (serv *CheckInService) CheckIn(ctx context.Context, uid uuid.UUID, req *CheckInRequest) (*entity.CheckIn, error) {
	checkInType := entity.CheckInType(req.Type)
	if !checkInType.Valid() {
		return nil, errorvalues.ErrInvalidCheckIn
	}
	if strings.TrimSpace(req.Content) == "" {
		return nil, errorvalues.ErrEmptyContent
	}
	if err := validateStruct(req); err != nil {
		return nil, err
	}
	now := serv.clock.Now()
	from, to := calendar.DayRange(now)
	today, err := serv.repo.GetByUserAndRange(ctx, uid, from, to)
	if err != nil {
		return nil, errors.New("repository error: " + err.Error())
	}
	if err = ValidateSequence(today, checkInType); err != nil {
		return nil, err
	}
	checkIn := &entity.CheckIn{
		UserID:   uid,
		Type:     checkInType,
		Content:  req.Content,
		Mood:     req.Mood,
		Location: req.Location,
	}
	// Study hours only make sense for a finished session
	if checkInType == entity.CheckInEnd {
		checkIn.StudyHours = req.StudyHours
	}
	if err = serv.repo.Create(ctx, checkIn); err != nil {
		if errors.Is(err, errorvalues.ErrUserNotFound) {
			return nil, err
		}
		return nil, errors.New("repository error: " + err.Error())
	}
	if checkInType == entity.CheckInEnd {
		serv.generateAfterEnd(ctx, uid)
	}
	return checkIn, nil
}

func (serv *CheckInService) generateAfterEnd(ctx context.Context, uid uuid.UUID) {
	logger := logctx.From(ctx)
	tasks, err := serv.generator.GenerateForUser(ctx, uid)
	switch {
	case errors.Is(err, errorvalues.ErrAlreadyGenerated), errors.Is(err, errorvalues.ErrLockNotAcquired):
		logger.Debug("tasks generation skipped", slog.String("reason", err.Error()))
	case err != nil:
		logger.Warn("tasks generation after end check-in failed", slog.String("error", err.Error()))
	default:
		logger.Info("generated tasks after end check-in", slog.Int("count", len(tasks)))
	}
}

func (serv *CheckInService) List(ctx context.Context, uid uuid.UUID, q CheckInQuery) (*CheckInPage, error) {
	if q.Page <= 0 {
		q.Page = 1
	}
	if q.Limit <= 0 {
		q.Limit = defaultPageLimit
	}
	q.Limit = min(q.Limit, maxPageLimit)
	filter := repository.CheckInFilter{
		From:   q.From,
		To:     q.To,
		Limit:  q.Limit,
		Offset: (q.Page - 1) * q.Limit,
	}
	if q.Type != "" {
		t := entity.CheckInType(q.Type)
		if !t.Valid() {
			return nil, errorvalues.ErrInvalidCheckIn
		}
		filter.Type = &t
	}
	checkIns, err := serv.repo.List(ctx, uid, filter)
	if err != nil {
		return nil, errors.New("repository error: " + err.Error())
	}
	total, err := serv.repo.Count(ctx, uid, filter)
	if err != nil {
		return nil, errors.New("repository error: " + err.Error())
	}
	return &CheckInPage{
		CheckIns: checkIns,
		Total:    total,
		Page:     q.Page,
		Limit:    q.Limit,
		Pages:    (total + q.Limit - 1) / q.Limit,
	}, nil
}

func (serv *CheckInService) Today(ctx context.Context, uid uuid.UUID) ([]entity.CheckIn, error) {
	from, to := calendar.DayRange(serv.clock.Now())
	checkIns, err := serv.repo.GetByUserAndRange(ctx, uid, from, to)
	if err != nil {
		return nil, errors.New("repository error: " + err.Error())
	}
	return checkIns, nil
}

func (serv *CheckInService) Status(ctx context.Context, uid uuid.UUID) (*entity.DailyStatus, error) {
	now := serv.clock.Now()
	from, to := calendar.DayRange(now)
	checkIns, err := serv.repo.GetByUserAndRange(ctx, uid, from, to)
	if err != nil {
		return nil, errors.New("repository error: " + err.Error())
	}
	status := stats.Status(checkIns, now)
	return &status, nil
}

// Stats covers the last days calendar days, today included.
func (serv *CheckInService) Stats(ctx context.Context, uid uuid.UUID, days int) (*entity.CheckInStats, error) {
	if days <= 0 {
		days = defaultStatsDays
	}
	days = min(days, maxStatsDays)
	now := serv.clock.Now()
	to := calendar.Tomorrow(now)
	from := to.AddDate(0, 0, -days)
	checkIns, err := serv.repo.GetByUserAndRange(ctx, uid, from, to)
	if err != nil {
		return nil, errors.New("repository error: " + err.Error())
	}
	res := stats.Compute(checkIns, now)
	return &res, nil
}
