package timesheets

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/dmitrijs2005/timekeeper/internal/common"
	"github.com/dmitrijs2005/timekeeper/internal/dbx"
	"github.com/dmitrijs2005/timekeeper/internal/server/models"
)

const columns = `id, user_id, date::text, total_hours, is_submitted, submitted_at, created_at`

type PostgresRepository struct {
	db dbx.DBTX
}

func NewPostgresRepository(db dbx.DBTX) *PostgresRepository {
	return &PostgresRepository{db: db}
}

type scanner interface {
	Scan(dest ...any) error
}

func scanTimesheet(s scanner) (*models.Timesheet, error) {
	ts := &models.Timesheet{}
	if err := s.Scan(&ts.ID, &ts.UserID, &ts.Date, &ts.TotalHours, &ts.IsSubmitted, &ts.SubmittedAt, &ts.CreatedAt); err != nil {
		return nil, err
	}
	return ts, nil
}

func (r *PostgresRepository) Upsert(ctx context.Context, userID, date string, totalMinutes int) (*models.Timesheet, error) {
	query :=
		`INSERT INTO timesheets (user_id, date, total_hours)
		 VALUES ($1, $2, $3)
		 ON CONFLICT (user_id, date) DO UPDATE
		   SET total_hours = EXCLUDED.total_hours
		   WHERE NOT timesheets.is_submitted
		 RETURNING ` + columns

	ts, err := scanTimesheet(r.db.QueryRowContext(ctx, query, userID, date, totalMinutes))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, common.ErrTimesheetSubmitted
		}
		return nil, fmt.Errorf("db error: %w", err)
	}
	return ts, nil
}

func (r *PostgresRepository) GetByUserAndDate(ctx context.Context, userID, date string) (*models.Timesheet, error) {
	query :=
		`SELECT ` + columns + ` FROM timesheets
		 WHERE user_id = $1 AND date = $2`

	ts, err := scanTimesheet(r.db.QueryRowContext(ctx, query, userID, date))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, common.ErrorNotFound
		}
		return nil, fmt.Errorf("db error: %w", err)
	}
	return ts, nil
}

func (r *PostgresRepository) ListByUser(ctx context.Context, userID string, limit int) ([]*models.Timesheet, error) {
	query :=
		`SELECT ` + columns + ` FROM timesheets
		 WHERE user_id = $1
		 ORDER BY date DESC
		 LIMIT $2`

	return r.list(ctx, query, userID, limit)
}

func (r *PostgresRepository) ListByUserInRange(ctx context.Context, userID, from, to string) ([]*models.Timesheet, error) {
	query :=
		`SELECT ` + columns + ` FROM timesheets
		 WHERE user_id = $1 AND date BETWEEN $2 AND $3
		 ORDER BY date`

	return r.list(ctx, query, userID, from, to)
}

func (r *PostgresRepository) list(ctx context.Context, query string, args ...any) ([]*models.Timesheet, error) {
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}
	defer rows.Close()

	result := make([]*models.Timesheet, 0)
	for rows.Next() {
		ts, err := scanTimesheet(rows)
		if err != nil {
			return nil, fmt.Errorf("db error: %w", err)
		}
		result = append(result, ts)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}
	return result, nil
}

func (r *PostgresRepository) Submit(ctx context.Context, userID, date string) (*models.Timesheet, error) {
	query :=
		`UPDATE timesheets
		 SET is_submitted = true, submitted_at = now()
		 WHERE user_id = $1 AND date = $2 AND NOT is_submitted
		 RETURNING ` + columns

	ts, err := scanTimesheet(r.db.QueryRowContext(ctx, query, userID, date))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, common.ErrTimesheetSubmitted
		}
		return nil, fmt.Errorf("db error: %w", err)
	}
	return ts, nil
}
