package service_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/golang/mock/gomock"
	"github.com/google/uuid"
	errorvalues "github.com/limbo/studytrack/internal/error_values"
	"github.com/limbo/studytrack/internal/repository"
	"github.com/limbo/studytrack/internal/repository/mocks"
	"github.com/limbo/studytrack/internal/service"
	"github.com/limbo/studytrack/pkg/entity"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCheckIn(t *testing.T) {
	ctrl := gomock.NewController(t)
	repo := mocks.NewMockCheckInsRepositoryI(ctrl)
	generator := &generatorMock{}
	now := time.Date(2026, 10, 18, 21, 0, 0, 0, loc)
	serv := service.NewCheckInService(repo, generator, fixedClock{now: now})

	uid := uuid.New()
	dayStart := time.Date(2026, 10, 18, 0, 0, 0, 0, loc)
	dayEnd := dayStart.AddDate(0, 0, 1)
	start := checkInAt(entity.CheckInStart, dayStart.Add(8*time.Hour))
	testCases := []struct {
		Desc           string
		Error          error
		Request        service.CheckInRequest
		GeneratorError error
		GenerateCalls  int
		MockPrepFunc   func()
		Check          func(t *testing.T, c *entity.CheckIn)
	}{
		{
			Desc:    "start",
			Request: service.CheckInRequest{Type: "start", Content: "morning", StudyHours: ptr(2.0)},
			MockPrepFunc: func() {
				repo.EXPECT().GetByUserAndRange(gomock.Any(), uid, dayStart, dayEnd).Return([]entity.CheckIn{}, nil)
				repo.EXPECT().Create(gomock.Any(), gomock.Any()).Return(nil)
			},
			Check: func(t *testing.T, c *entity.CheckIn) {
				assert.Equal(t, entity.CheckInStart, c.Type)
				assert.Nil(t, c.StudyHours)
			},
		},
		{
			Desc:    "double start",
			Error:   errorvalues.ErrAlreadyStarted,
			Request: service.CheckInRequest{Type: "start", Content: "again"},
			MockPrepFunc: func() {
				repo.EXPECT().GetByUserAndRange(gomock.Any(), uid, dayStart, dayEnd).Return([]entity.CheckIn{start}, nil)
			},
		},
		{
			Desc:    "end triggers generation",
			Request: service.CheckInRequest{Type: "end", Content: `{"subject":"math","duration":90,"mood":8}`, StudyHours: ptr(4.5)},
			MockPrepFunc: func() {
				repo.EXPECT().GetByUserAndRange(gomock.Any(), uid, dayStart, dayEnd).Return([]entity.CheckIn{start}, nil)
				repo.EXPECT().Create(gomock.Any(), gomock.Any()).Return(nil)
			},
			GenerateCalls: 1,
			Check: func(t *testing.T, c *entity.CheckIn) {
				require.NotNil(t, c.StudyHours)
				assert.Equal(t, 4.5, *c.StudyHours)
			},
		},
		{
			Desc:           "end succeeds when generation fails",
			Request:        service.CheckInRequest{Type: "end", Content: "done"},
			GeneratorError: errors.New("db is down"),
			MockPrepFunc: func() {
				repo.EXPECT().GetByUserAndRange(gomock.Any(), uid, dayStart, dayEnd).Return([]entity.CheckIn{start}, nil)
				repo.EXPECT().Create(gomock.Any(), gomock.Any()).Return(nil)
			},
			GenerateCalls: 1,
		},
		{
			Desc:           "end when already generated",
			Request:        service.CheckInRequest{Type: "end", Content: "done"},
			GeneratorError: errorvalues.ErrAlreadyGenerated,
			MockPrepFunc: func() {
				repo.EXPECT().GetByUserAndRange(gomock.Any(), uid, dayStart, dayEnd).Return([]entity.CheckIn{start}, nil)
				repo.EXPECT().Create(gomock.Any(), gomock.Any()).Return(nil)
			},
			GenerateCalls: 1,
		},
		{
			Desc:         "invalid type",
			Error:        errorvalues.ErrInvalidCheckIn,
			Request:      service.CheckInRequest{Type: "pause", Content: "x"},
			MockPrepFunc: func() {},
		},
		{
			Desc:         "empty content",
			Error:        errorvalues.ErrEmptyContent,
			Request:      service.CheckInRequest{Type: "start", Content: "   "},
			MockPrepFunc: func() {},
		},
		{
			Desc:         "non positive study hours",
			Request:      service.CheckInRequest{Type: "end", Content: "done", StudyHours: ptr(-1.0)},
			MockPrepFunc: func() {},
		},
		{
			Desc:    "repository error",
			Request: service.CheckInRequest{Type: "progress", Content: "midday"},
			MockPrepFunc: func() {
				repo.EXPECT().GetByUserAndRange(gomock.Any(), uid, dayStart, dayEnd).Return(nil, errors.New("db error"))
			},
		},
	}
	ctx := context.Background()
	for _, tc := range testCases {
		t.Run(tc.Desc, func(t *testing.T) {
			generator.calls, generator.err = 0, tc.GeneratorError
			tc.MockPrepFunc()
			res, err := serv.CheckIn(ctx, uid, &tc.Request)
			assert.Equal(t, tc.GenerateCalls, generator.calls)
			switch {
			case tc.Error != nil:
				assert.ErrorIs(t, err, tc.Error)
			case tc.Check == nil && tc.GenerateCalls == 0:
				assert.Error(t, err)
			default:
				require.NoError(t, err)
				assert.Equal(t, uid, res.UserID)
				if tc.Check != nil {
					tc.Check(t, res)
				}
			}
		})
	}
}

func TestListCheckIns(t *testing.T) {
	ctrl := gomock.NewController(t)
	repo := mocks.NewMockCheckInsRepositoryI(ctrl)
	serv := service.NewCheckInService(repo, &generatorMock{}, fixedClock{now: time.Now()})
	uid := uuid.New()
	ctx := context.Background()

	t.Run("defaults and pages", func(t *testing.T) {
		filter := repository.CheckInFilter{Limit: 20, Offset: 0}
		repo.EXPECT().List(gomock.Any(), uid, filter).Return([]entity.CheckIn{}, nil)
		repo.EXPECT().Count(gomock.Any(), uid, filter).Return(41, nil)
		page, err := serv.List(ctx, uid, service.CheckInQuery{})
		require.NoError(t, err)
		assert.Equal(t, 1, page.Page)
		assert.Equal(t, 3, page.Pages)
		assert.Equal(t, 41, page.Total)
	})
	t.Run("type filter and limit cap", func(t *testing.T) {
		end := entity.CheckInEnd
		filter := repository.CheckInFilter{Type: &end, Limit: 100, Offset: 200}
		repo.EXPECT().List(gomock.Any(), uid, filter).Return([]entity.CheckIn{}, nil)
		repo.EXPECT().Count(gomock.Any(), uid, filter).Return(0, nil)
		page, err := serv.List(ctx, uid, service.CheckInQuery{Page: 3, Limit: 500, Type: "end"})
		require.NoError(t, err)
		assert.Equal(t, 100, page.Limit)
		assert.Equal(t, 0, page.Pages)
	})
	t.Run("unknown type", func(t *testing.T) {
		_, err := serv.List(ctx, uid, service.CheckInQuery{Type: "pause"})
		assert.ErrorIs(t, err, errorvalues.ErrInvalidCheckIn)
	})
}

func TestCheckInStatsAndStatus(t *testing.T) {
	ctrl := gomock.NewController(t)
	repo := mocks.NewMockCheckInsRepositoryI(ctrl)
	now := time.Date(2026, 10, 18, 21, 0, 0, 0, loc)
	serv := service.NewCheckInService(repo, &generatorMock{}, fixedClock{now: now})
	uid := uuid.New()
	ctx := context.Background()
	today := time.Date(2026, 10, 18, 0, 0, 0, 0, loc)

	history := make([]entity.CheckIn, 0)
	for d := -2; d <= 0; d++ {
		day := today.AddDate(0, 0, d)
		history = append(history,
			checkInAt(entity.CheckInStart, day.Add(8*time.Hour)),
			checkInAt(entity.CheckInEnd, day.Add(20*time.Hour)),
		)
	}

	t.Run("stats over default window", func(t *testing.T) {
		repo.EXPECT().GetByUserAndRange(gomock.Any(), uid, today.AddDate(0, 0, -29), today.AddDate(0, 0, 1)).Return(history, nil)
		res, err := serv.Stats(ctx, uid, 0)
		require.NoError(t, err)
		assert.Equal(t, 3, res.CurrentStreak)
		assert.GreaterOrEqual(t, res.LongestStreak, 3)
		assert.Equal(t, 3, res.TotalCheckIns)
	})
	t.Run("status of today", func(t *testing.T) {
		repo.EXPECT().GetByUserAndRange(gomock.Any(), uid, today, today.AddDate(0, 0, 1)).Return(history[4:], nil)
		st, err := serv.Status(ctx, uid)
		require.NoError(t, err)
		assert.Equal(t, entity.DayStateComplete, st.State)
		assert.Equal(t, "2026-10-18", st.Date)
	})
	t.Run("today error", func(t *testing.T) {
		repo.EXPECT().GetByUserAndRange(gomock.Any(), uid, today, today.AddDate(0, 0, 1)).Return(nil, errors.New("db error"))
		_, err := serv.Today(ctx, uid)
		assert.Error(t, err)
	})
}
