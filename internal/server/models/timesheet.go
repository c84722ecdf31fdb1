package models

import "time"

// Timesheet is the daily aggregate for one user. TotalHours holds minutes and
// is always derived from the day's tasks.
type Timesheet struct {
	ID          string     `json:"id"`
	UserID      string     `json:"userId"`
	Date        string     `json:"date"`
	TotalHours  int        `json:"totalHours"`
	IsSubmitted bool       `json:"isSubmitted"`
	SubmittedAt *time.Time `json:"submittedAt"`
	CreatedAt   time.Time  `json:"createdAt"`
}

// TimesheetWithTasks is a timesheet together with the tasks of its day.
type TimesheetWithTasks struct {
	Timesheet
	Tasks []*Task `json:"tasks"`
}

// DayView is a day's timesheet, which may not exist yet, and its tasks.
type DayView struct {
	Timesheet *Timesheet `json:"timesheet"`
	Tasks     []*Task    `json:"tasks"`
}
