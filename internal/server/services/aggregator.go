package services

import (
	"context"

	"github.com/dmitrijs2005/timekeeper/internal/server/models"
	"github.com/dmitrijs2005/timekeeper/internal/server/repositories/tasks"
	"github.com/dmitrijs2005/timekeeper/internal/server/repositories/timesheets"
	"github.com/dmitrijs2005/timekeeper/internal/timex"
)

// dayKey names the advisory lock that serializes mutations of one user's day.
func dayKey(userID, date string) string {
	return userID + "|" + date
}

// totalMinutes sums the task durations in fractional minutes and rounds once.
func totalMinutes(list []*models.Task) int {
	var sum float64
	for _, t := range list {
		sum += timex.Minutes(t.StartTime, t.EndTime)
	}
	return timex.RoundMinutes(sum)
}

// recompute re-reads every task of (userID, date) and writes the resulting
// total into the day's timesheet, creating a draft if there is none.
func recompute(ctx context.Context, taskRepo tasks.Repository, sheets timesheets.Repository, userID, date string) (*models.Timesheet, error) {
	list, err := taskRepo.ListByUserAndDate(ctx, userID, date)
	if err != nil {
		return nil, err
	}
	return sheets.Upsert(ctx, userID, date, totalMinutes(list))
}
