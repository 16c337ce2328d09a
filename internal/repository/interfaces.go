package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"

	"github.com/limbo/studytrack/pkg/entity"
)

//go:generate mockgen -source=interfaces.go -destination=mocks/mocks.go -package=mocks

type UsersRepositoryI interface {
	// Creates new user in database
	Create(ctx context.Context, user *entity.User) error
	// Looks up user by name. Can be used for login
	FindByName(ctx context.Context, name string) (*entity.User, error)
	// Looks up user by uid. Can be used for authorization middleware
	FindByID(ctx context.Context, uid uuid.UUID) (*entity.User, error)
	// Updates user's info
	Update(ctx context.Context, user *entity.User) error
	// Deletes user
	Delete(ctx context.Context, uid uuid.UUID) error
	// Lists ids of users who checked in or changed their profile since given moment
	ListActiveSince(ctx context.Context, since time.Time) ([]uuid.UUID, error)
}

type CheckInsRepositoryI interface {
	// Creates check-in. ID and CreatedAt are filled from database
	Create(ctx context.Context, checkIn *entity.CheckIn) error
	GetByID(ctx context.Context, id uuid.UUID) (*entity.CheckIn, error)
	// Provides user's check-ins created in [from, to), oldest first
	GetByUserAndRange(ctx context.Context, uid uuid.UUID, from, to time.Time) ([]entity.CheckIn, error)
	// Provides whole check-in history of user, oldest first
	GetByUser(ctx context.Context, uid uuid.UUID) ([]entity.CheckIn, error)
	// Lists check-ins newest first. Requires pagination params in filter
	List(ctx context.Context, uid uuid.UUID, filter CheckInFilter) ([]entity.CheckIn, error)
	Count(ctx context.Context, uid uuid.UUID, filter CheckInFilter) (int, error)
	Delete(ctx context.Context, id uuid.UUID) error
}

type TasksRepositoryI interface {
	// Creates task. ID, CreatedAt and UpdatedAt are filled from database
	Create(ctx context.Context, task *entity.Task) error
	// Creates all tasks in one transaction
	CreateBatch(ctx context.Context, tasks []*entity.Task) error
	GetByID(ctx context.Context, id uuid.UUID) (*entity.Task, error)
	// Lists user's tasks by priority desc, due date asc
	ListByUser(ctx context.Context, uid uuid.UUID, filter TaskFilter) ([]*entity.Task, error)
	// Updates every mutable field of task by ID
	Update(ctx context.Context, task *entity.Task) error
	UpdateStatus(ctx context.Context, id uuid.UUID, status entity.TaskStatus) error
	Delete(ctx context.Context, id uuid.UUID) error
	// Counts generated tasks of user created since given moment
	CountGeneratedSince(ctx context.Context, uid uuid.UUID, since time.Time) (int, error)
}

type CheckInFilter struct {
	Type   *entity.CheckInType
	From   *time.Time
	To     *time.Time
	Limit  int
	Offset int
}

type TaskFilter struct {
	Status  *entity.TaskStatus
	DueFrom *time.Time
	DueTo   *time.Time
}

type DBConfig interface {
	ConnString() string
}

type PgConnection interface {
	Ping(ctx context.Context) error
	Exec(ctx context.Context, sql string, arguments ...any) (pgconn.CommandTag, error)
	Begin(ctx context.Context) (pgx.Tx, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

type PGCfg struct {
	Address  string
	Username string
	Password string
	DB       string
}

func (pgcfg *PGCfg) ConnString() string {
	return fmt.Sprintf("postgresql://%s:%s@%s/%s", pgcfg.Username, pgcfg.Password, pgcfg.Address, pgcfg.DB)
}
