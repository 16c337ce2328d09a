package repository

import (
	"context"
	"errors"
	"fmt"
	"log"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	errorvalues "github.com/limbo/studytrack/internal/error_values"
	"github.com/limbo/studytrack/pkg/entity"
)

const taskColumns = `id, user_id, title, description, category, difficulty, estimated_duration, priority, weight, status, task_type, ` +
	`target_count, current_count, daily_target, unit, target_duration, current_duration, daily_duration, progress, total_days, ` +
	`is_completed, is_generated, completed_at, due_date, created_at, updated_at`

const insertTaskQuery = `INSERT INTO tasks (user_id, title, description, category, difficulty, estimated_duration, priority, weight, status, task_type, ` +
	`target_count, current_count, daily_target, unit, target_duration, current_duration, daily_duration, progress, total_days, ` +
	`is_completed, is_generated, completed_at, due_date) ` +
	`VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16, $17, $18, $19, $20, $21, $22, $23) ` +
	`RETURNING id, created_at, updated_at;`

type TasksRepository struct {
	conn PgConnection
}

func NewTasksRepo(cfg DBConfig) *TasksRepository {
	return &TasksRepository{
		conn: NewPool(cfg),
	}
}

func NewTasksRepoWithConn(conn PgConnection) *TasksRepository {
	err := conn.Ping(context.Background())
	if err != nil {
		log.Fatal("error while pinging connection for tasksRepo: " + err.Error())
	}
	return &TasksRepository{
		conn: conn,
	}
}

// trackerColumns is the nullable column image of a task's tracker.
type trackerColumns struct {
	TargetCount     *int
	CurrentCount    *int
	DailyTarget     *int
	Unit            *string
	TargetDuration  *int
	CurrentDuration *int
	DailyDuration   *int
	Progress        *int
	TotalDays       *int
}

func columnsFromTracker(t entity.Tracker) (trackerColumns, error) {
	var cols trackerColumns
	switch tr := t.(type) {
	case *entity.CountTracker:
		cols.TargetCount, cols.CurrentCount, cols.DailyTarget, cols.Unit = &tr.TargetCount, &tr.CurrentCount, &tr.DailyTarget, &tr.Unit
	case *entity.DurationTracker:
		cols.TargetDuration, cols.CurrentDuration, cols.DailyDuration = &tr.TargetDuration, &tr.CurrentDuration, &tr.DailyDuration
	case *entity.ProgressTracker:
		cols.Progress, cols.TotalDays = &tr.Progress, &tr.TotalDays
	default:
		return cols, fmt.Errorf("unsupported tracker %T", t)
	}
	return cols, nil
}

func (cols trackerColumns) tracker(taskType entity.TaskType) (entity.Tracker, error) {
	switch taskType {
	case entity.TaskTypeCount:
		if cols.TargetCount == nil {
			return nil, errors.New("count task without target_count")
		}
		return &entity.CountTracker{
			TargetCount:  *cols.TargetCount,
			CurrentCount: deref(cols.CurrentCount),
			DailyTarget:  deref(cols.DailyTarget),
			Unit:         deref(cols.Unit),
		}, nil
	case entity.TaskTypeDuration:
		if cols.TargetDuration == nil {
			return nil, errors.New("duration task without target_duration")
		}
		return &entity.DurationTracker{
			TargetDuration:  *cols.TargetDuration,
			CurrentDuration: deref(cols.CurrentDuration),
			DailyDuration:   deref(cols.DailyDuration),
		}, nil
	case entity.TaskTypeProgress:
		if cols.Progress == nil {
			return nil, errors.New("progress task without progress")
		}
		return &entity.ProgressTracker{
			Progress:  *cols.Progress,
			TotalDays: deref(cols.TotalDays),
		}, nil
	}
	return nil, fmt.Errorf("unknown task type %q", taskType)
}

func deref[T any](p *T) T {
	var zero T
	if p == nil {
		return zero
	}
	return *p
}

func taskInsertArgs(task *entity.Task) ([]any, error) {
	cols, err := columnsFromTracker(task.Tracking)
	if err != nil {
		return nil, err
	}
	return []any{
		task.UserID, task.Title, task.Description, task.Category, task.Difficulty, task.EstimatedDuration,
		task.Priority, task.Weight, string(task.Status), string(task.Type()),
		cols.TargetCount, cols.CurrentCount, cols.DailyTarget, cols.Unit,
		cols.TargetDuration, cols.CurrentDuration, cols.DailyDuration,
		cols.Progress, cols.TotalDays,
		task.IsCompleted, task.IsGenerated, task.CompletedAt, task.DueDate,
	}, nil
}

func (tr *TasksRepository) Create(ctx context.Context, task *entity.Task) error {
	args, err := taskInsertArgs(task)
	if err != nil {
		return errors.New("creating task error: " + err.Error())
	}
	row := tr.conn.QueryRow(ctx, insertTaskQuery, args...)
	if err = row.Scan(&task.ID, &task.CreatedAt, &task.UpdatedAt); err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) {
			switch pgErr.Code {
			// FK violation
			case "23503":
				return errorvalues.ErrUserNotFound
			}
		}
		return errors.New("creating task error: " + err.Error())
	}
	return nil
}

func (tr *TasksRepository) CreateBatch(ctx context.Context, tasks []*entity.Task) error {
	tx, err := tr.conn.Begin(ctx)
	if err != nil {
		return errors.New("starting transaction error: " + err.Error())
	}
	defer tx.Rollback(ctx)
	for _, task := range tasks {
		args, err := taskInsertArgs(task)
		if err != nil {
			return errors.New("creating task error: " + err.Error())
		}
		row := tx.QueryRow(ctx, insertTaskQuery, args...)
		if err = row.Scan(&task.ID, &task.CreatedAt, &task.UpdatedAt); err != nil {
			return errors.New("creating task error: " + err.Error())
		}
	}
	if err = tx.Commit(ctx); err != nil {
		return errors.New("committing tasks error: " + err.Error())
	}
	return nil
}

func (tr *TasksRepository) GetByID(ctx context.Context, id uuid.UUID) (*entity.Task, error) {
	row := tr.conn.QueryRow(ctx, `SELECT `+taskColumns+` FROM tasks WHERE id = $1;`, id)
	task, err := scanTask(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, errorvalues.ErrTaskNotFound
		}
		return nil, errors.New("getting task by id error: " + err.Error())
	}
	return task, nil
}

func (tr *TasksRepository) ListByUser(ctx context.Context, uid uuid.UUID, filter TaskFilter) ([]*entity.Task, error) {
	conds := []string{"user_id = $1"}
	args := []any{uid}
	if filter.Status != nil {
		args = append(args, string(*filter.Status))
		conds = append(conds, "status = $"+strconv.Itoa(len(args)))
	}
	if filter.DueFrom != nil {
		args = append(args, *filter.DueFrom)
		conds = append(conds, "due_date >= $"+strconv.Itoa(len(args)))
	}
	if filter.DueTo != nil {
		args = append(args, *filter.DueTo)
		conds = append(conds, "due_date < $"+strconv.Itoa(len(args)))
	}
	rows, err := tr.conn.Query(
		ctx,
		`SELECT `+taskColumns+` FROM tasks WHERE `+strings.Join(conds, " AND ")+` ORDER BY priority DESC, due_date ASC;`,
		args...,
	)
	if err != nil {
		return nil, errors.New("listing tasks error: " + err.Error())
	}
	defer rows.Close()
	tasks := make([]*entity.Task, 0)
	for rows.Next() {
		task, err := scanTask(rows)
		if err != nil {
			return nil, errors.New("task row parsing error: " + err.Error())
		}
		tasks = append(tasks, task)
	}
	if err = rows.Err(); err != nil {
		return nil, errors.New("unexpected task rows error: " + err.Error())
	}
	return tasks, nil
}

func (tr *TasksRepository) Update(ctx context.Context, task *entity.Task) error {
	cols, err := columnsFromTracker(task.Tracking)
	if err != nil {
		return errors.New("updating task error: " + err.Error())
	}
	ct, err := tr.conn.Exec(
		ctx,
		`UPDATE tasks SET title = $1, description = $2, category = $3, difficulty = $4, estimated_duration = $5, priority = $6, weight = $7, `+
			`target_count = $8, current_count = $9, daily_target = $10, unit = $11, target_duration = $12, current_duration = $13, daily_duration = $14, `+
			`progress = $15, total_days = $16, is_completed = $17, completed_at = $18, due_date = $19, updated_at = NOW() WHERE id = $20;`,
		task.Title, task.Description, task.Category, task.Difficulty, task.EstimatedDuration, task.Priority, task.Weight,
		cols.TargetCount, cols.CurrentCount, cols.DailyTarget, cols.Unit, cols.TargetDuration, cols.CurrentDuration, cols.DailyDuration,
		cols.Progress, cols.TotalDays, task.IsCompleted, task.CompletedAt, task.DueDate, task.ID,
	)
	if err != nil {
		return errors.New("error updating task: " + err.Error())
	}
	if ct.RowsAffected() == 0 {
		return errorvalues.ErrTaskNotFound
	}
	return nil
}

func (tr *TasksRepository) UpdateStatus(ctx context.Context, id uuid.UUID, status entity.TaskStatus) error {
	ct, err := tr.conn.Exec(ctx, `UPDATE tasks SET status = $1, updated_at = NOW() WHERE id = $2;`, string(status), id)
	if err != nil {
		return errors.New("error updating task status: " + err.Error())
	}
	if ct.RowsAffected() == 0 {
		return errorvalues.ErrTaskNotFound
	}
	return nil
}

func (tr *TasksRepository) Delete(ctx context.Context, id uuid.UUID) error {
	ct, err := tr.conn.Exec(ctx, `DELETE FROM tasks WHERE id = $1;`, id)
	if err != nil {
		return errors.New("error deleting task: " + err.Error())
	}
	if ct.RowsAffected() == 0 {
		return errorvalues.ErrTaskNotFound
	}
	return nil
}

func (tr *TasksRepository) CountGeneratedSince(ctx context.Context, uid uuid.UUID, since time.Time) (int, error) {
	row := tr.conn.QueryRow(
		ctx,
		`SELECT COUNT(*) FROM tasks WHERE user_id = $1 AND is_generated = TRUE AND created_at >= $2;`,
		uid,
		since,
	)
	var count int
	if err := row.Scan(&count); err != nil {
		return 0, errors.New("error counting generated tasks: " + err.Error())
	}
	return count, nil
}

func scanTask(row scanner) (*entity.Task, error) {
	var (
		t        entity.Task
		status   string
		taskType string
		cols     trackerColumns
	)
	err := row.Scan(
		&t.ID, &t.UserID, &t.Title, &t.Description, &t.Category, &t.Difficulty, &t.EstimatedDuration,
		&t.Priority, &t.Weight, &status, &taskType,
		&cols.TargetCount, &cols.CurrentCount, &cols.DailyTarget, &cols.Unit,
		&cols.TargetDuration, &cols.CurrentDuration, &cols.DailyDuration,
		&cols.Progress, &cols.TotalDays,
		&t.IsCompleted, &t.IsGenerated, &t.CompletedAt, &t.DueDate, &t.CreatedAt, &t.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	t.Status = entity.TaskStatus(status)
	t.Tracking, err = cols.tracker(entity.TaskType(taskType))
	if err != nil {
		return nil, err
	}
	return &t, nil
}
