package services

import (
	"context"
	"database/sql"
	"strings"
	"time"

	"github.com/dmitrijs2005/timekeeper/internal/common"
	"github.com/dmitrijs2005/timekeeper/internal/dbx"
	"github.com/dmitrijs2005/timekeeper/internal/logging"
	"github.com/dmitrijs2005/timekeeper/internal/server/models"
	"github.com/dmitrijs2005/timekeeper/internal/server/repositories/repomanager"
	"github.com/dmitrijs2005/timekeeper/internal/timex"
	"github.com/google/uuid"
)

// TaskInput is the payload for creating a task. An empty Status means completed.
type TaskInput struct {
	Name        string    `json:"name"`
	Description *string   `json:"description"`
	StartTime   time.Time `json:"startTime"`
	EndTime     time.Time `json:"endTime"`
	Status      string    `json:"status"`
	Date        string    `json:"date"`
}

// TaskService runs every task mutation as one transaction: lock the day,
// check the submission guard, write, recompute the day's timesheet.
type TaskService struct {
	db          *sql.DB
	repomanager repomanager.RepositoryManager
	logger      logging.Logger
}

func NewTaskService(db *sql.DB, m repomanager.RepositoryManager, l logging.Logger) *TaskService {
	return &TaskService{db: db, repomanager: m, logger: l.With("module", "task_service")}
}

// Create validates in, stores it for userID and recomputes the day.
func (s *TaskService) Create(ctx context.Context, userID string, in TaskInput) (*models.Task, error) {
	status, err := models.ParseTaskStatus(in.Status)
	if err != nil {
		return nil, common.NewFieldError("status", err.Error())
	}
	task := &models.Task{
		UserID:      userID,
		Name:        strings.TrimSpace(in.Name),
		Description: in.Description,
		StartTime:   in.StartTime,
		EndTime:     in.EndTime,
		Status:      status,
		Date:        in.Date,
	}
	if err := validateTask(task); err != nil {
		return nil, err
	}

	var created *models.Task
	err = dbx.WithTx(ctx, s.db, nil, func(ctx context.Context, tx dbx.DBTX) error {
		if err := dbx.LockKeys(ctx, tx, dayKey(userID, task.Date)); err != nil {
			return err
		}
		sheets := s.repomanager.Timesheets(tx)
		if err := assertMutable(ctx, sheets, userID, task.Date); err != nil {
			return err
		}

		taskRepo := s.repomanager.Tasks(tx)
		var err error
		if created, err = taskRepo.Create(ctx, task); err != nil {
			return err
		}
		_, err = recompute(ctx, taskRepo, sheets, userID, task.Date)
		return err
	})
	if err != nil {
		return nil, err
	}

	s.logger.Debug(ctx, "task created", "task_id", created.ID, "user_id", userID, "date", created.Date)
	return created, nil
}

// ListByDate returns the user's tasks on date ordered by start time.
func (s *TaskService) ListByDate(ctx context.Context, userID, date string) ([]*models.Task, error) {
	if !timex.IsDate(date) {
		return nil, common.NewFieldError("date", "must be YYYY-MM-DD")
	}
	return s.repomanager.Tasks(s.db).ListByUserAndDate(ctx, userID, date)
}

// Update applies patch to the caller's task. When the patch moves the task to
// another date both days are locked, guarded and recomputed.
func (s *TaskService) Update(ctx context.Context, userID, taskID string, patch models.TaskPatch) (*models.Task, error) {
	patch, err := normalizePatch(patch)
	if err != nil {
		return nil, err
	}

	var updated *models.Task
	err = s.withOwnedTask(ctx, userID, taskID, func(ctx context.Context, tx dbx.DBTX, cur *models.Task) error {
		next := patch.Apply(*cur)
		if err := dbx.LockKeys(ctx, tx, dayKey(userID, cur.Date), dayKey(userID, next.Date)); err != nil {
			return err
		}

		sheets := s.repomanager.Timesheets(tx)
		dates := affectedDates(cur.Date, next.Date)
		for _, d := range dates {
			if err := assertMutable(ctx, sheets, userID, d); err != nil {
				return err
			}
		}
		if err := validateTask(&next); err != nil {
			return err
		}
		if patch.Empty() {
			updated = cur
			return nil
		}

		taskRepo := s.repomanager.Tasks(tx)
		var err error
		if updated, err = taskRepo.Update(ctx, taskID, patch); err != nil {
			return err
		}
		for _, d := range dates {
			if _, err := recompute(ctx, taskRepo, sheets, userID, d); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return updated, nil
}

// Delete removes the caller's task and recomputes its day.
func (s *TaskService) Delete(ctx context.Context, userID, taskID string) error {
	return s.withOwnedTask(ctx, userID, taskID, func(ctx context.Context, tx dbx.DBTX, cur *models.Task) error {
		if err := dbx.LockKeys(ctx, tx, dayKey(userID, cur.Date)); err != nil {
			return err
		}
		sheets := s.repomanager.Timesheets(tx)
		if err := assertMutable(ctx, sheets, userID, cur.Date); err != nil {
			return err
		}

		taskRepo := s.repomanager.Tasks(tx)
		if err := taskRepo.Delete(ctx, taskID); err != nil {
			return err
		}
		_, err := recompute(ctx, taskRepo, sheets, userID, cur.Date)
		return err
	})
}

// withOwnedTask opens a transaction, row-locks the task and hands it to fn.
// Malformed ids, missing tasks and tasks of other users all yield
// common.ErrorNotFound.
func (s *TaskService) withOwnedTask(ctx context.Context, userID, taskID string, fn func(ctx context.Context, tx dbx.DBTX, cur *models.Task) error) error {
	if _, err := uuid.Parse(taskID); err != nil {
		return common.ErrorNotFound
	}
	return dbx.WithTx(ctx, s.db, nil, func(ctx context.Context, tx dbx.DBTX) error {
		cur, err := s.repomanager.Tasks(tx).GetByIDForUpdate(ctx, taskID)
		if err != nil {
			return err
		}
		if cur.UserID != userID {
			return common.ErrorNotFound
		}
		return fn(ctx, tx, cur)
	})
}

func affectedDates(from, to string) []string {
	if from == to {
		return []string{from}
	}
	return []string{from, to}
}

func validateTask(t *models.Task) error {
	if t.Name == "" {
		return common.NewFieldError("name", "Task name is required")
	}
	if !timex.IsDate(t.Date) {
		return common.NewFieldError("date", "must be YYYY-MM-DD")
	}
	if t.StartTime.IsZero() {
		return common.NewFieldError("startTime", "is required")
	}
	if t.EndTime.IsZero() {
		return common.NewFieldError("endTime", "is required")
	}
	if !t.EndTime.After(t.StartTime) {
		return common.NewFieldError("endTime", "must be after startTime")
	}
	return nil
}

// normalizePatch trims the name and rejects a malformed date or a status
// outside the enumeration before any lock is taken. Whole-task checks run
// after the patch is applied to the stored task.
func normalizePatch(p models.TaskPatch) (models.TaskPatch, error) {
	if p.Name != nil {
		trimmed := strings.TrimSpace(*p.Name)
		p.Name = &trimmed
	}
	if p.Date != nil && !timex.IsDate(*p.Date) {
		return p, common.NewFieldError("date", "must be YYYY-MM-DD")
	}
	if p.Status != nil {
		if *p.Status == "" {
			return p, common.NewFieldError("status", "must not be empty")
		}
		if _, err := models.ParseTaskStatus(string(*p.Status)); err != nil {
			return p, common.NewFieldError("status", err.Error())
		}
	}
	return p, nil
}
