package service

import (
	"context"
	"errors"
	"log"
	"math"
	"time"

	"github.com/google/uuid"
	errorvalues "github.com/limbo/studytrack/internal/error_values"
	"github.com/limbo/studytrack/internal/repository"
	"github.com/limbo/studytrack/internal/stats"
	"github.com/limbo/studytrack/pkg/entity"
	"golang.org/x/crypto/bcrypt"
)

type UserService struct {
	repo            repository.UsersRepositoryI
	checkInsRepo    repository.CheckInsRepositoryI
	tasksRepo       repository.TasksRepositoryI
	clock           Clock
	defaultExamDate time.Time
}

func NewUserService(
	usersRepo repository.UsersRepositoryI,
	checkInsRepo repository.CheckInsRepositoryI,
	tasksRepo repository.TasksRepositoryI,
	clock Clock,
	defaultExamDate time.Time,
) *UserService {
	if usersRepo == nil || checkInsRepo == nil || tasksRepo == nil {
		log.Fatal("on user service provided nil repos")
	}
	if clock == nil {
		clock = LocalClock{}
	}
	return &UserService{
		repo:            usersRepo,
		checkInsRepo:    checkInsRepo,
		tasksRepo:       tasksRepo,
		clock:           clock,
		defaultExamDate: defaultExamDate,
	}
}

func (us *UserService) Register(ctx context.Context, req *RegisterRequest) (*entity.User, error) {
	if err := validateStruct(req); err != nil {
		return nil, err
	}
	passwordHash, err := Hash(req.Password)
	if err != nil {
		return nil, errors.New("hashing password error: " + err.Error())
	}
	err = us.repo.Create(ctx, &entity.User{
		Name:         req.Name,
		PasswordHash: passwordHash,
	})
	if err != nil {
		if errors.Is(err, errorvalues.ErrUserExists) {
			return nil, err
		}
		return nil, errors.New("repository creating error: " + err.Error())
	}
	user, err := us.repo.FindByName(ctx, req.Name)
	if err != nil {
		return nil, errors.New("repository searching error: " + err.Error())
	}
	return user, nil
}

func (us *UserService) Login(ctx context.Context, name, password string) (*entity.User, error) {
	user, err := us.repo.FindByName(ctx, name)
	if err != nil {
		if errors.Is(err, errorvalues.ErrUserNotFound) {
			return nil, err
		}
		return nil, errors.New("repository searching error: " + err.Error())
	}
	if err = bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)); err != nil {
		return nil, errorvalues.ErrWrongCredentials
	}
	return user, nil
}

func (us *UserService) GetByID(ctx context.Context, id uuid.UUID) (*entity.User, error) {
	user, err := us.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, errorvalues.ErrUserNotFound) {
			return nil, err
		}
		return nil, errors.New("repository searching error: " + err.Error())
	}
	return user, nil
}

func (us *UserService) GetByName(ctx context.Context, name string) (*entity.User, error) {
	user, err := us.repo.FindByName(ctx, name)
	if err != nil {
		if errors.Is(err, errorvalues.ErrUserNotFound) {
			return nil, err
		}
		return nil, errors.New("repository searching error: " + err.Error())
	}
	return user, nil
}

func (us *UserService) UpdateProfile(ctx context.Context, id uuid.UUID, req *UpdateProfileRequest) (*entity.User, error) {
	user, err := us.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	switch {
	case req.ResetExamDate:
		user.ExamDate = nil
	case req.ExamDate != nil:
		examDate := req.ExamDate.In(us.clock.Now().Location())
		user.ExamDate = &examDate
	default:
		return user, nil
	}
	if err = us.repo.Update(ctx, user); err != nil {
		if errors.Is(err, errorvalues.ErrUserNotFound) {
			return nil, err
		}
		return nil, errors.New("repository updating error: " + err.Error())
	}
	return user, nil
}

func (us *UserService) DeleteAccount(ctx context.Context, id uuid.UUID, password string) error {
	user, err := us.GetByID(ctx, id)
	if err != nil {
		return err
	}
	err = bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password))
	if err != nil {
		return errorvalues.ErrWrongCredentials
	}
	err = us.repo.Delete(ctx, user.ID)
	if err != nil {
		if errors.Is(err, errorvalues.ErrUserNotFound) {
			return err
		}
		return errors.New("repository deletion error: " + err.Error())
	}
	return nil
}

func (us *UserService) Overview(ctx context.Context, id uuid.UUID) (*entity.UserStats, error) {
	checkIns, err := us.checkInsRepo.GetByUser(ctx, id)
	if err != nil {
		return nil, errors.New("repository error: " + err.Error())
	}
	tasks, err := us.tasksRepo.ListByUser(ctx, id, repository.TaskFilter{})
	if err != nil {
		return nil, errors.New("repository error: " + err.Error())
	}
	checkInStats := stats.Compute(checkIns, us.clock.Now())
	completion := entity.WeightedCompletion(tasks)
	return &entity.UserStats{
		TotalCheckIns:      checkInStats.TotalCheckIns,
		TotalStudyHours:    checkInStats.TotalStudyHours,
		CurrentStreak:      checkInStats.CurrentStreak,
		LongestStreak:      checkInStats.LongestStreak,
		CompletedTasks:     completion.CompletedTasks,
		TotalTasks:         completion.TotalTasks,
		TaskCompletionRate: int(math.Round(completion.AverageRate)),
	}, nil
}

func (us *UserService) Countdown(ctx context.Context, id uuid.UUID) (*entity.ExamCountdown, error) {
	user, err := us.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	return countdown(examDateFor(user, us.defaultExamDate), us.clock.Now()), nil
}

func countdown(examDate, now time.Time) *entity.ExamCountdown {
	res := &entity.ExamCountdown{ExamDate: examDate}
	left := examDate.Sub(now)
	if left <= 0 {
		res.IsExamPassed = true
		return res
	}
	res.Days = int(left / (24 * time.Hour))
	res.Hours = int(left % (24 * time.Hour) / time.Hour)
	res.Minutes = int(left % time.Hour / time.Minute)
	res.Seconds = int(left % time.Minute / time.Second)
	return res
}

// Hash returns bcrypt hash of the password.
func Hash(password string) (string, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return "", err
	}
	return string(hash), nil
}
