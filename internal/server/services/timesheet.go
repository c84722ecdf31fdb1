package services

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"io"
	"time"

	"github.com/dmitrijs2005/timekeeper/internal/common"
	"github.com/dmitrijs2005/timekeeper/internal/dbx"
	"github.com/dmitrijs2005/timekeeper/internal/logging"
	"github.com/dmitrijs2005/timekeeper/internal/server/archive"
	"github.com/dmitrijs2005/timekeeper/internal/server/models"
	"github.com/dmitrijs2005/timekeeper/internal/server/reports"
	"github.com/dmitrijs2005/timekeeper/internal/server/repositories/repomanager"
	"github.com/dmitrijs2005/timekeeper/internal/timex"
	"github.com/google/uuid"
)

const (
	timesheetListLimit = 30
	exportDefaultDays  = 30
)

// Archiver keeps copies of submitted days outside the database.
type Archiver interface {
	Store(ctx context.Context, key string, body []byte) error
	PresignGet(ctx context.Context, key string) (string, error)
}

// TimesheetService reads timesheets, submits them and produces exports.
type TimesheetService struct {
	db          *sql.DB
	repomanager repomanager.RepositoryManager
	archiver    Archiver
	logger      logging.Logger
	loc         *time.Location
	now         func() time.Time
}

func NewTimesheetService(db *sql.DB, m repomanager.RepositoryManager, a Archiver, l logging.Logger, loc *time.Location) *TimesheetService {
	if loc == nil {
		loc = time.UTC
	}
	return &TimesheetService{
		db:          db,
		repomanager: m,
		archiver:    a,
		logger:      l.With("module", "timesheet_service"),
		loc:         loc,
		now:         time.Now,
	}
}

// List returns the user's latest timesheets, newest first, each with its tasks.
func (s *TimesheetService) List(ctx context.Context, userID string) ([]*models.TimesheetWithTasks, error) {
	sheets, err := s.repomanager.Timesheets(s.db).ListByUser(ctx, userID, timesheetListLimit)
	if err != nil {
		return nil, err
	}
	return s.withTasks(ctx, userID, sheets)
}

// ListForUser is List on behalf of an administrator. Unknown users yield
// common.ErrorNotFound.
func (s *TimesheetService) ListForUser(ctx context.Context, userID string) ([]*models.TimesheetWithTasks, error) {
	if err := s.requireUser(ctx, userID); err != nil {
		return nil, err
	}
	return s.List(ctx, userID)
}

// GetByDate returns the day's timesheet, nil when none exists yet, and tasks.
func (s *TimesheetService) GetByDate(ctx context.Context, userID, date string) (*models.DayView, error) {
	if !timex.IsDate(date) {
		return nil, common.NewFieldError("date", "must be YYYY-MM-DD")
	}

	view := &models.DayView{}
	ts, err := s.repomanager.Timesheets(s.db).GetByUserAndDate(ctx, userID, date)
	switch {
	case err == nil:
		view.Timesheet = ts
	case !errors.Is(err, common.ErrorNotFound):
		return nil, err
	}

	if view.Tasks, err = s.repomanager.Tasks(s.db).ListByUserAndDate(ctx, userID, date); err != nil {
		return nil, err
	}
	return view, nil
}

// Submit locks the day for good. It fails with common.ErrorNotFound when the
// day has no timesheet and common.ErrTimesheetSubmitted on a second call.
// Once committed, a snapshot of the day is handed to the archiver; archive
// failures are logged only.
func (s *TimesheetService) Submit(ctx context.Context, userID, date string) (*models.Timesheet, error) {
	if !timex.IsDate(date) {
		return nil, common.NewFieldError("date", "must be YYYY-MM-DD")
	}

	var snapshot models.TimesheetWithTasks
	err := dbx.WithTx(ctx, s.db, nil, func(ctx context.Context, tx dbx.DBTX) error {
		if err := dbx.LockKeys(ctx, tx, dayKey(userID, date)); err != nil {
			return err
		}
		sheets := s.repomanager.Timesheets(tx)
		ts, err := sheets.GetByUserAndDate(ctx, userID, date)
		if err != nil {
			return err
		}
		if ts.IsSubmitted {
			return common.ErrTimesheetSubmitted
		}
		if ts, err = sheets.Submit(ctx, userID, date); err != nil {
			return err
		}
		snapshot.Timesheet = *ts
		snapshot.Tasks, err = s.repomanager.Tasks(tx).ListByUserAndDate(ctx, userID, date)
		return err
	})
	if err != nil {
		return nil, err
	}

	s.logger.Info(ctx, "timesheet submitted", "user_id", userID, "date", date, "total_minutes", snapshot.TotalHours)
	s.archive(ctx, &snapshot)

	submitted := snapshot.Timesheet
	return &submitted, nil
}

func (s *TimesheetService) archive(ctx context.Context, snapshot *models.TimesheetWithTasks) {
	body, err := json.Marshal(snapshot)
	if err != nil {
		s.logger.Error(ctx, "archive encode failed", "error", err)
		return
	}
	key := archive.Key(snapshot.UserID, snapshot.Date)
	if err := s.archiver.Store(ctx, key, body); err != nil {
		s.logger.Error(ctx, "archive upload failed", "key", key, "error", err)
	}
}

// ArchiveURL returns a short-lived download link for a submitted day's
// snapshot. Drafts, missing days and a disabled archive yield
// common.ErrorNotFound.
func (s *TimesheetService) ArchiveURL(ctx context.Context, userID, date string) (string, error) {
	if !timex.IsDate(date) {
		return "", common.NewFieldError("date", "must be YYYY-MM-DD")
	}
	if err := s.requireUser(ctx, userID); err != nil {
		return "", err
	}
	ts, err := s.repomanager.Timesheets(s.db).GetByUserAndDate(ctx, userID, date)
	if err != nil {
		return "", err
	}
	if !ts.IsSubmitted {
		return "", common.ErrorNotFound
	}
	return s.archiver.PresignGet(ctx, archive.Key(userID, date))
}

// Export writes the user's timesheets with from <= date <= to as an xlsx
// workbook. Empty bounds default to the last 30 days ending today.
func (s *TimesheetService) Export(ctx context.Context, userID, from, to string, w io.Writer) error {
	if to == "" {
		to = timex.Today(s.now(), s.loc)
	}
	if from == "" {
		var err error
		if from, err = timex.AddDays(to, -(exportDefaultDays - 1)); err != nil {
			return common.NewFieldError("to", "must be YYYY-MM-DD")
		}
	}
	if !timex.IsDate(from) {
		return common.NewFieldError("from", "must be YYYY-MM-DD")
	}
	if !timex.IsDate(to) {
		return common.NewFieldError("to", "must be YYYY-MM-DD")
	}
	if from > to {
		return common.NewFieldError("from", "must not be after to")
	}

	sheets, err := s.repomanager.Timesheets(s.db).ListByUserInRange(ctx, userID, from, to)
	if err != nil {
		return err
	}
	list, err := s.repomanager.Tasks(s.db).ListByUserInRange(ctx, userID, from, to)
	if err != nil {
		return err
	}

	byDate := make(map[string][]*models.Task)
	for _, t := range list {
		byDate[t.Date] = append(byDate[t.Date], t)
	}
	days := make([]*models.TimesheetWithTasks, 0, len(sheets))
	for _, ts := range sheets {
		days = append(days, &models.TimesheetWithTasks{Timesheet: *ts, Tasks: byDate[ts.Date]})
	}

	return reports.WriteTimesheets(w, days, s.loc)
}

// ExportForUser is Export on behalf of an administrator.
func (s *TimesheetService) ExportForUser(ctx context.Context, userID, from, to string, w io.Writer) error {
	if err := s.requireUser(ctx, userID); err != nil {
		return err
	}
	return s.Export(ctx, userID, from, to, w)
}

// requireUser fails with common.ErrorNotFound unless userID names an
// existing user.
func (s *TimesheetService) requireUser(ctx context.Context, userID string) error {
	if _, err := uuid.Parse(userID); err != nil {
		return common.ErrorNotFound
	}
	_, err := s.repomanager.Users(s.db).GetByID(ctx, userID)
	return err
}

func (s *TimesheetService) withTasks(ctx context.Context, userID string, sheets []*models.Timesheet) ([]*models.TimesheetWithTasks, error) {
	taskRepo := s.repomanager.Tasks(s.db)
	result := make([]*models.TimesheetWithTasks, 0, len(sheets))
	for _, ts := range sheets {
		list, err := taskRepo.ListByUserAndDate(ctx, userID, ts.Date)
		if err != nil {
			return nil, err
		}
		result = append(result, &models.TimesheetWithTasks{Timesheet: *ts, Tasks: list})
	}
	return result, nil
}
