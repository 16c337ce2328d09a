package service

//go:generate mockgen -source=interfaces.go -destination=mocks/mocks.go -package=mocks

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/limbo/studytrack/pkg/entity"
)

type RegisterRequest struct {
	Name     string `validate:"required,alphanum_underscore,min=3,max=100"`
	Password string `validate:"required,min=8,max=72"`
}

type UpdateProfileRequest struct {
	ExamDate *time.Time
	// Clears the personal exam date, falling back to the platform default.
	ResetExamDate bool
}

type CheckInRequest struct {
	Type       string   `validate:"required"`
	Content    string   `validate:"required,max=5000"`
	Mood       *string  `validate:"omitempty,max=50"`
	StudyHours *float64 `validate:"omitempty,gt=0,lte=24"`
	Location   *string  `validate:"omitempty,max=200"`
}

type CheckInQuery struct {
	Page  int
	Limit int
	Type  string
	From  *time.Time
	To    *time.Time
}

type CheckInPage struct {
	CheckIns []entity.CheckIn `json:"check_ins"`
	Total    int              `json:"total"`
	Page     int              `json:"page"`
	Limit    int              `json:"limit"`
	Pages    int              `json:"pages"`
}

// TrackerFields are the variant-specific task fields. Only the fields of the
// task's own type may be set.
type TrackerFields struct {
	TargetCount     *int    `validate:"omitempty,gt=0"`
	CurrentCount    *int    `validate:"omitempty,gte=0"`
	DailyTarget     *int    `validate:"omitempty,gte=0"`
	Unit            *string `validate:"omitempty,max=32"`
	TargetDuration  *int    `validate:"omitempty,gt=0"`
	CurrentDuration *int    `validate:"omitempty,gte=0"`
	DailyDuration   *int    `validate:"omitempty,gte=0"`
	Progress        *int
	TotalDays       *int `validate:"omitempty,gte=0"`
}

type CreateTaskRequest struct {
	Title             string `validate:"required,max=200"`
	Description       string `validate:"max=2000"`
	Category          string `validate:"max=100"`
	Difficulty        string `validate:"omitempty,oneof=easy medium hard"`
	EstimatedDuration *int   `validate:"omitempty,gt=0"`
	Priority          *int   `validate:"omitempty,min=1,max=5"`
	Weight            *int   `validate:"omitempty,min=1,max=10"`
	TaskType          string `validate:"required,task_type"`
	DueDate           *time.Time
	TrackerFields
}

type UpdateTaskRequest struct {
	Title             *string `validate:"omitempty,min=1,max=200"`
	Description       *string `validate:"omitempty,max=2000"`
	Category          *string `validate:"omitempty,max=100"`
	Difficulty        *string `validate:"omitempty,oneof=easy medium hard"`
	EstimatedDuration *int    `validate:"omitempty,gt=0"`
	Priority          *int    `validate:"omitempty,min=1,max=5"`
	Weight            *int    `validate:"omitempty,min=1,max=10"`
	TaskType          *string `validate:"omitempty,task_type"`
	DueDate           *time.Time
	TrackerFields
}

type TaskQuery struct {
	Status string `validate:"omitempty,task_status"`
	// Due date falls on this calendar day.
	Date *time.Time
}

type SweepResult struct {
	Scanned   int `json:"scanned"`
	Generated int `json:"generated"`
	Skipped   int `json:"skipped"`
	Failed    int `json:"failed"`
}

type UserServiceI interface {
	// Validates user's credentials, creates new row in database. Returns user's data with ID
	Register(ctx context.Context, req *RegisterRequest) (*entity.User, error)
	// Compares given credentials. If ok, give back user's data with ID.
	Login(ctx context.Context, name, password string) (*entity.User, error)
	GetByID(ctx context.Context, id uuid.UUID) (*entity.User, error)
	GetByName(ctx context.Context, name string) (*entity.User, error)
	UpdateProfile(ctx context.Context, id uuid.UUID, req *UpdateProfileRequest) (*entity.User, error)
	DeleteAccount(ctx context.Context, id uuid.UUID, password string) error
	// Check-in statistics over the whole history joined with task completion.
	Overview(ctx context.Context, id uuid.UUID) (*entity.UserStats, error)
	Countdown(ctx context.Context, id uuid.UUID) (*entity.ExamCountdown, error)
}

type CheckInServiceI interface {
	// Validates the daily sequence and stores the check-in. An end check-in
	// also triggers task generation, whose failure is only logged.
	CheckIn(ctx context.Context, uid uuid.UUID, req *CheckInRequest) (*entity.CheckIn, error)
	List(ctx context.Context, uid uuid.UUID, q CheckInQuery) (*CheckInPage, error)
	Today(ctx context.Context, uid uuid.UUID) ([]entity.CheckIn, error)
	Status(ctx context.Context, uid uuid.UUID) (*entity.DailyStatus, error)
	Stats(ctx context.Context, uid uuid.UUID, days int) (*entity.CheckInStats, error)
}

type TaskServiceI interface {
	Create(ctx context.Context, uid uuid.UUID, req *CreateTaskRequest) (*entity.Task, error)
	Get(ctx context.Context, uid, id uuid.UUID) (*entity.Task, error)
	List(ctx context.Context, uid uuid.UUID, q TaskQuery) ([]*entity.Task, error)
	Update(ctx context.Context, uid, id uuid.UUID, req *UpdateTaskRequest) (*entity.Task, error)
	UpdateStatus(ctx context.Context, uid, id uuid.UUID, status string) error
	Delete(ctx context.Context, uid, id uuid.UUID) error
	Completion(ctx context.Context, uid uuid.UUID) (*entity.TaskCompletion, error)
}

type GenerationServiceI interface {
	// Returns errorvalues.ErrAlreadyGenerated if tasks were generated today.
	GenerateForUser(ctx context.Context, uid uuid.UUID) ([]*entity.Task, error)
	Sweep(ctx context.Context) (SweepResult, error)
}

// Locker serializes work across instances.
type Locker interface {
	Acquire(ctx context.Context, key string, ttl time.Duration) (bool, error)
	Release(ctx context.Context, key string) error
}

type Clock interface {
	Now() time.Time
}
