package services

import (
	"context"
	"database/sql"
	"time"

	"github.com/dmitrijs2005/timekeeper/internal/server/models"
	"github.com/dmitrijs2005/timekeeper/internal/server/repositories/repomanager"
	"github.com/dmitrijs2005/timekeeper/internal/timex"
)

// weekDays is the length of the rolling week, today included.
const weekDays = 7

// StatsService derives read-only activity summaries. "Today" is the calendar
// date in loc.
type StatsService struct {
	db          *sql.DB
	repomanager repomanager.RepositoryManager
	loc         *time.Location
	now         func() time.Time
}

func NewStatsService(db *sql.DB, m repomanager.RepositoryManager, loc *time.Location) *StatsService {
	if loc == nil {
		loc = time.UTC
	}
	return &StatsService{db: db, repomanager: m, loc: loc, now: time.Now}
}

type daySnapshot struct {
	minutes   float64
	tasks     int
	completed int
}

func snapshot(list []*models.Task) daySnapshot {
	var d daySnapshot
	for _, t := range list {
		d.minutes += timex.Minutes(t.StartTime, t.EndTime)
		d.tasks++
		if t.Status == models.TaskCompleted {
			d.completed++
		}
	}
	return d
}

func (s *StatsService) today() string {
	return timex.Today(s.now(), s.loc)
}

// UserStats returns the caller's today and rolling week figures.
func (s *StatsService) UserStats(ctx context.Context, userID string) (*models.UserStats, error) {
	today := s.today()

	list, err := s.repomanager.Tasks(s.db).ListByUserAndDate(ctx, userID, today)
	if err != nil {
		return nil, err
	}
	day := snapshot(list)

	weekStart, err := timex.AddDays(today, -(weekDays - 1))
	if err != nil {
		return nil, err
	}
	sheets, err := s.repomanager.Timesheets(s.db).ListByUserInRange(ctx, userID, weekStart, today)
	if err != nil {
		return nil, err
	}
	weekMinutes := 0
	for _, ts := range sheets {
		weekMinutes += ts.TotalHours
	}

	status := models.StatusInactive
	if day.tasks > 0 {
		status = models.StatusActive
	}

	return &models.UserStats{
		TodayHours:     timex.Hours(day.minutes),
		WeekHours:      timex.Hours(weekMinutes),
		TasksToday:     day.tasks,
		CompletedTasks: day.completed,
		Status:         status,
	}, nil
}

// Employees returns every employee with today's figures, ordered by username.
func (s *StatsService) Employees(ctx context.Context) ([]*models.EmployeeStats, error) {
	today := s.today()

	users, err := s.repomanager.Users(s.db).ListByRole(ctx, models.RoleEmployee)
	if err != nil {
		return nil, err
	}

	taskRepo := s.repomanager.Tasks(s.db)
	result := make([]*models.EmployeeStats, 0, len(users))
	for _, u := range users {
		list, err := taskRepo.ListByUserAndDate(ctx, u.ID, today)
		if err != nil {
			return nil, err
		}
		day := snapshot(list)
		result = append(result, &models.EmployeeStats{
			User:           *u,
			TodayHours:     timex.Hours(day.minutes),
			TasksToday:     day.tasks,
			CompletedTasks: day.completed,
			IsActive:       day.tasks > 0,
		})
	}
	return result, nil
}
