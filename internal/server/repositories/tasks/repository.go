// Package tasks declares the task store: CRUD over task records scoped to a
// user and a calendar date.
package tasks

import (
	"context"

	"github.com/dmitrijs2005/timekeeper/internal/server/models"
)

// Repository is bound to a dbx.DBTX so every call runs inside the caller's
// transaction when one is supplied. Field validation is the caller's job.
type Repository interface {
	// Create inserts task and fills in ID, CreatedAt and UpdatedAt.
	Create(ctx context.Context, task *models.Task) (*models.Task, error)

	// ListByUserAndDate returns the user's tasks on date ordered by start
	// time ascending, ties broken by creation time and id.
	ListByUserAndDate(ctx context.Context, userID, date string) ([]*models.Task, error)

	// ListByUserInRange returns tasks with from <= date <= to ordered by date,
	// then start time.
	ListByUserInRange(ctx context.Context, userID, from, to string) ([]*models.Task, error)

	// GetByID returns common.ErrorNotFound when there is no such task.
	GetByID(ctx context.Context, id string) (*models.Task, error)

	// GetByIDForUpdate is GetByID that also row-locks the task until the
	// surrounding transaction ends.
	GetByIDForUpdate(ctx context.Context, id string) (*models.Task, error)

	// Update changes only the non-nil patch fields and refreshes UpdatedAt.
	Update(ctx context.Context, id string, patch models.TaskPatch) (*models.Task, error)

	// Delete returns common.ErrorNotFound when nothing was deleted.
	Delete(ctx context.Context, id string) error
}
