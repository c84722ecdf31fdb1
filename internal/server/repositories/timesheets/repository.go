// Package timesheets declares the repository contract for daily timesheets,
// one row per (user, date).
package timesheets

import (
	"context"

	"github.com/dmitrijs2005/timekeeper/internal/server/models"
)

type Repository interface {
	// Upsert inserts a draft with totalMinutes or updates the total of the
	// existing row. A submitted row is never touched: the call fails with
	// common.ErrTimesheetSubmitted instead.
	Upsert(ctx context.Context, userID, date string, totalMinutes int) (*models.Timesheet, error)

	// GetByUserAndDate returns common.ErrorNotFound when the day has no timesheet.
	GetByUserAndDate(ctx context.Context, userID, date string) (*models.Timesheet, error)

	// ListByUser returns up to limit timesheets, newest date first.
	ListByUser(ctx context.Context, userID string, limit int) ([]*models.Timesheet, error)

	// ListByUserInRange returns timesheets with from <= date <= to, oldest first.
	ListByUserInRange(ctx context.Context, userID, from, to string) ([]*models.Timesheet, error)

	// Submit flips a draft to submitted and stamps submitted_at. It fails with
	// common.ErrTimesheetSubmitted when the row is missing or already submitted;
	// callers that need to tell the two apart look the row up first.
	Submit(ctx context.Context, userID, date string) (*models.Timesheet, error)
}
