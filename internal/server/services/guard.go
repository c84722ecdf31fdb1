package services

import (
	"context"
	"errors"

	"github.com/dmitrijs2005/timekeeper/internal/common"
	"github.com/dmitrijs2005/timekeeper/internal/server/repositories/timesheets"
)

// assertMutable fails with common.ErrTimesheetSubmitted when the (user, date)
// timesheet exists and has been submitted. A missing or draft timesheet is
// mutable. Callers hold the day lock.
func assertMutable(ctx context.Context, sheets timesheets.Repository, userID, date string) error {
	ts, err := sheets.GetByUserAndDate(ctx, userID, date)
	if err != nil {
		if errors.Is(err, common.ErrorNotFound) {
			return nil
		}
		return err
	}
	if ts.IsSubmitted {
		return common.ErrTimesheetSubmitted
	}
	return nil
}
