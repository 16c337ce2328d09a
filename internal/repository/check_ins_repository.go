package repository

import (
	"context"
	"errors"
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

const checkInColumns = `id, user_id, type, content, mood, study_hours, location, created_at`

type CheckInsRepository struct {
	conn PgConnection
}

func NewCheckInsRepo(cfg DBConfig) *CheckInsRepository {
	return &CheckInsRepository{
		conn: NewPool(cfg),
	}
}

func NewCheckInsRepoWithConn(conn PgConnection) *CheckInsRepository {
	err := conn.Ping(context.Background())
	if err != nil {
		log.Fatal("error while pinging connection for checkInsRepo: " + err.Error())
	}
	return &CheckInsRepository{
		conn: conn,
	}
}

func (cr *CheckInsRepository) Create(ctx context.Context, checkIn *entity.CheckIn) error {
	row := cr.conn.QueryRow(
		ctx,
		`INSERT INTO check_ins (user_id, type, content, mood, study_hours, location) VALUES ($1, $2, $3, $4, $5, $6) RETURNING id, created_at;`,
		checkIn.UserID,
		string(checkIn.Type),
		checkIn.Content,
		checkIn.Mood,
		checkIn.StudyHours,
		checkIn.Location,
	)
	if err := row.Scan(&checkIn.ID, &checkIn.CreatedAt); err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) {
			switch pgErr.Code {
			// FK violation
			case "23503":
				return errorvalues.ErrUserNotFound
			}
		}
		return errors.New("creating check-in error: " + err.Error())
	}
	return nil
}

func (cr *CheckInsRepository) GetByID(ctx context.Context, id uuid.UUID) (*entity.CheckIn, error) {
	row := cr.conn.QueryRow(ctx, `SELECT `+checkInColumns+` FROM check_ins WHERE id = $1;`, id)
	checkIn, err := scanCheckIn(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, errorvalues.ErrCheckInNotFound
		}
		return nil, errors.New("getting check-in by id error: " + err.Error())
	}
	return checkIn, nil
}

func (cr *CheckInsRepository) GetByUserAndRange(ctx context.Context, uid uuid.UUID, from, to time.Time) ([]entity.CheckIn, error) {
	rows, err := cr.conn.Query(
		ctx,
		`SELECT `+checkInColumns+` FROM check_ins WHERE user_id = $1 AND created_at >= $2 AND created_at < $3 ORDER BY created_at ASC;`,
		uid,
		from,
		to,
	)
	if err != nil {
		return nil, errors.New("getting check-ins for period error: " + err.Error())
	}
	return collectCheckIns(rows)
}

func (cr *CheckInsRepository) GetByUser(ctx context.Context, uid uuid.UUID) ([]entity.CheckIn, error) {
	rows, err := cr.conn.Query(
		ctx,
		`SELECT `+checkInColumns+` FROM check_ins WHERE user_id = $1 ORDER BY created_at ASC;`,
		uid,
	)
	if err != nil {
		return nil, errors.New("getting check-in history error: " + err.Error())
	}
	return collectCheckIns(rows)
}

func (cr *CheckInsRepository) List(ctx context.Context, uid uuid.UUID, filter CheckInFilter) ([]entity.CheckIn, error) {
	where, args := checkInFilterClause(uid, filter)
	args = append(args, filter.Limit, filter.Offset)
	query := `SELECT ` + checkInColumns + ` FROM check_ins WHERE ` + where +
		` ORDER BY created_at DESC LIMIT $` + strconv.Itoa(len(args)-1) + ` OFFSET $` + strconv.Itoa(len(args)) + `;`
	rows, err := cr.conn.Query(ctx, query, args...)
	if err != nil {
		return nil, errors.New("listing check-ins error: " + err.Error())
	}
	return collectCheckIns(rows)
}

func (cr *CheckInsRepository) Count(ctx context.Context, uid uuid.UUID, filter CheckInFilter) (int, error) {
	where, args := checkInFilterClause(uid, filter)
	row := cr.conn.QueryRow(ctx, `SELECT COUNT(*) FROM check_ins WHERE `+where+`;`, args...)
	var count int
	if err := row.Scan(&count); err != nil {
		return 0, errors.New("error counting check-ins: " + err.Error())
	}
	return count, nil
}

func (cr *CheckInsRepository) Delete(ctx context.Context, id uuid.UUID) error {
	ct, err := cr.conn.Exec(ctx, `DELETE FROM check_ins WHERE id = $1;`, id)
	if err != nil {
		return errors.New("deleting check-in error: " + err.Error())
	}
	if ct.RowsAffected() == 0 {
		return errorvalues.ErrCheckInNotFound
	}
	return nil
}

func checkInFilterClause(uid uuid.UUID, filter CheckInFilter) (string, []any) {
	conds := []string{"user_id = $1"}
	args := []any{uid}
	if filter.Type != nil {
		args = append(args, string(*filter.Type))
		conds = append(conds, "type = $"+strconv.Itoa(len(args)))
	}
	if filter.From != nil {
		args = append(args, *filter.From)
		conds = append(conds, "created_at >= $"+strconv.Itoa(len(args)))
	}
	if filter.To != nil {
		args = append(args, *filter.To)
		conds = append(conds, "created_at <= $"+strconv.Itoa(len(args)))
	}
	return strings.Join(conds, " AND "), args
}

func scanCheckIn(row scanner) (*entity.CheckIn, error) {
	var (
		c       entity.CheckIn
		outType string
	)
	err := row.Scan(&c.ID, &c.UserID, &outType, &c.Content, &c.Mood, &c.StudyHours, &c.Location, &c.CreatedAt)
	if err != nil {
		return nil, err
	}
	c.Type = entity.CheckInType(outType)
	return &c, nil
}

func collectCheckIns(rows pgx.Rows) ([]entity.CheckIn, error) {
	defer rows.Close()
	result := make([]entity.CheckIn, 0)
	for rows.Next() {
		c, err := scanCheckIn(rows)
		if err != nil {
			return nil, errors.New("check-in row parsing error: " + err.Error())
		}
		result = append(result, *c)
	}
	if err := rows.Err(); err != nil {
		return nil, errors.New("unexpected check-in rows error: " + err.Error())
	}
	return result, nil
}
