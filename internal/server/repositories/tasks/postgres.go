package tasks

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/dmitrijs2005/timekeeper/internal/common"
	"github.com/dmitrijs2005/timekeeper/internal/dbx"
	"github.com/dmitrijs2005/timekeeper/internal/server/models"
)

const columns = `id, user_id, name, description, start_time, end_time, status, date::text, created_at, updated_at`

type PostgresRepository struct {
	db dbx.DBTX
}

func NewPostgresRepository(db dbx.DBTX) *PostgresRepository {
	return &PostgresRepository{db: db}
}

type scanner interface {
	Scan(dest ...any) error
}

func scanTask(s scanner) (*models.Task, error) {
	t := &models.Task{}
	err := s.Scan(&t.ID, &t.UserID, &t.Name, &t.Description, &t.StartTime, &t.EndTime,
		&t.Status, &t.Date, &t.CreatedAt, &t.UpdatedAt)
	if err != nil {
		return nil, err
	}
	return t, nil
}

func (r *PostgresRepository) Create(ctx context.Context, task *models.Task) (*models.Task, error) {
	query :=
		`INSERT INTO tasks (user_id, name, description, start_time, end_time, status, date)
		 VALUES ($1, $2, $3, $4, $5, $6, $7)
		 RETURNING id, created_at, updated_at`

	err := r.db.QueryRowContext(ctx, query,
		task.UserID, task.Name, task.Description, task.StartTime, task.EndTime, task.Status, task.Date).
		Scan(&task.ID, &task.CreatedAt, &task.UpdatedAt)
	if err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}

	return task, nil
}

func (r *PostgresRepository) ListByUserAndDate(ctx context.Context, userID, date string) ([]*models.Task, error) {
	query :=
		`SELECT ` + columns + ` FROM tasks
		 WHERE user_id = $1 AND date = $2
		 ORDER BY start_time, created_at, id`

	return r.list(ctx, query, userID, date)
}

func (r *PostgresRepository) ListByUserInRange(ctx context.Context, userID, from, to string) ([]*models.Task, error) {
	query :=
		`SELECT ` + columns + ` FROM tasks
		 WHERE user_id = $1 AND date BETWEEN $2 AND $3
		 ORDER BY date, start_time, created_at, id`

	return r.list(ctx, query, userID, from, to)
}

func (r *PostgresRepository) list(ctx context.Context, query string, args ...any) ([]*models.Task, error) {
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}
	defer rows.Close()

	result := make([]*models.Task, 0)
	for rows.Next() {
		t, err := scanTask(rows)
		if err != nil {
			return nil, fmt.Errorf("db error: %w", err)
		}
		result = append(result, t)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}

	return result, nil
}

func (r *PostgresRepository) GetByID(ctx context.Context, id string) (*models.Task, error) {
	return r.getOne(ctx, `SELECT `+columns+` FROM tasks WHERE id = $1`, id)
}

func (r *PostgresRepository) GetByIDForUpdate(ctx context.Context, id string) (*models.Task, error) {
	return r.getOne(ctx, `SELECT `+columns+` FROM tasks WHERE id = $1 FOR UPDATE`, id)
}

func (r *PostgresRepository) getOne(ctx context.Context, query string, id string) (*models.Task, error) {
	t, err := scanTask(r.db.QueryRowContext(ctx, query, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, common.ErrorNotFound
		}
		return nil, fmt.Errorf("db error: %w", err)
	}
	return t, nil
}

func (r *PostgresRepository) Update(ctx context.Context, id string, patch models.TaskPatch) (*models.Task, error) {
	query :=
		`UPDATE tasks SET
		   name = COALESCE($2, name),
		   description = CASE WHEN $8 THEN NULL ELSE COALESCE($3, description) END,
		   start_time = COALESCE($4, start_time),
		   end_time = COALESCE($5, end_time),
		   status = COALESCE($6::task_status, status),
		   date = COALESCE($7::date, date),
		   updated_at = now()
		 WHERE id = $1
		 RETURNING ` + columns

	t, err := scanTask(r.db.QueryRowContext(ctx, query, id,
		patch.Name, patch.Description, patch.StartTime, patch.EndTime, patch.Status, patch.Date,
		patch.ClearDescription))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, common.ErrorNotFound
		}
		return nil, fmt.Errorf("db error: %w", err)
	}
	return t, nil
}

func (r *PostgresRepository) Delete(ctx context.Context, id string) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM tasks WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("db error: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("db error: %w", err)
	}
	if n == 0 {
		return common.ErrorNotFound
	}
	return nil
}
