package models

import (
	"bytes"
	"encoding/json"
	"fmt"
	"time"
)

// TaskStatus is the closed set of task states.
type TaskStatus string

const (
	TaskCompleted  TaskStatus = "completed"
	TaskInProgress TaskStatus = "in-progress"
	TaskOnHold     TaskStatus = "on-hold"
)

// ParseTaskStatus converts s into a TaskStatus. An empty string yields the
// default, TaskCompleted.
func ParseTaskStatus(s string) (TaskStatus, error) {
	switch st := TaskStatus(s); st {
	case "":
		return TaskCompleted, nil
	case TaskCompleted, TaskInProgress, TaskOnHold:
		return st, nil
	default:
		return "", fmt.Errorf("unknown status %q", s)
	}
}

// Task is one logged work interval. Date is the logical day (YYYY-MM-DD) the
// task is accounted to; it is supplied by the caller and not derived from
// StartTime.
type Task struct {
	ID          string     `json:"id"`
	UserID      string     `json:"userId"`
	Name        string     `json:"name"`
	Description *string    `json:"description"`
	StartTime   time.Time  `json:"startTime"`
	EndTime     time.Time  `json:"endTime"`
	Status      TaskStatus `json:"status"`
	Date        string     `json:"date"`
	CreatedAt   time.Time  `json:"createdAt"`
	UpdatedAt   time.Time  `json:"updatedAt"`
}

// TaskPatch carries a partial update; nil fields are left unchanged.
//
// Description is the only nullable column, so it has a third state:
// ClearDescription is set when a JSON body carries "description": null and
// removes the stored description.
type TaskPatch struct {
	Name             *string     `json:"name,omitempty"`
	Description      *string     `json:"description,omitempty"`
	ClearDescription bool        `json:"-"`
	StartTime        *time.Time  `json:"startTime,omitempty"`
	EndTime          *time.Time  `json:"endTime,omitempty"`
	Status           *TaskStatus `json:"status,omitempty"`
	Date             *string     `json:"date,omitempty"`
}

// UnmarshalJSON tells an absent "description" from an explicit null.
func (p *TaskPatch) UnmarshalJSON(data []byte) error {
	type plain TaskPatch
	var aux struct {
		plain
		Description json.RawMessage `json:"description"`
	}
	if err := json.Unmarshal(data, &aux); err != nil {
		return err
	}

	*p = TaskPatch(aux.plain)
	p.Description, p.ClearDescription = nil, false
	switch {
	case aux.Description == nil:
	case bytes.Equal(aux.Description, []byte("null")):
		p.ClearDescription = true
	default:
		var d string
		if err := json.Unmarshal(aux.Description, &d); err != nil {
			return fmt.Errorf("description: %w", err)
		}
		p.Description = &d
	}
	return nil
}

// Empty reports whether the patch changes nothing.
func (p TaskPatch) Empty() bool {
	return p.Name == nil && p.Description == nil && !p.ClearDescription &&
		p.StartTime == nil && p.EndTime == nil && p.Status == nil && p.Date == nil
}

// Apply returns a copy of t with the patch applied. The receiver is not modified.
func (p TaskPatch) Apply(t Task) Task {
	if p.Name != nil {
		t.Name = *p.Name
	}
	switch {
	case p.ClearDescription:
		t.Description = nil
	case p.Description != nil:
		t.Description = p.Description
	}
	if p.StartTime != nil {
		t.StartTime = *p.StartTime
	}
	if p.EndTime != nil {
		t.EndTime = *p.EndTime
	}
	if p.Status != nil {
		t.Status = *p.Status
	}
	if p.Date != nil {
		t.Date = *p.Date
	}
	return t
}
