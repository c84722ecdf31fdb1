package models

// Activity labels used by the stats endpoint.
const (
	StatusActive   = "Active"
	StatusInactive = "Inactive"
)

// UserStats is a caller's today and rolling week snapshot. Hours are rounded
// to one decimal place.
type UserStats struct {
	TodayHours     float64 `json:"todayHours"`
	WeekHours      float64 `json:"weekHours"`
	TasksToday     int     `json:"tasksToday"`
	CompletedTasks int     `json:"completedTasks"`
	Status         string  `json:"status"`
}

// EmployeeStats is one row of the admin overview.
type EmployeeStats struct {
	User
	TodayHours     float64 `json:"todayHours"`
	TasksToday     int     `json:"tasksToday"`
	CompletedTasks int     `json:"completedTasks"`
	IsActive       bool    `json:"isActive"`
}
