// Package httpapi is the JSON-over-HTTP surface of the timekeeper server.
package httpapi

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"net/http"

	"github.com/dmitrijs2005/timekeeper/internal/logging"
	"github.com/dmitrijs2005/timekeeper/internal/server/auth"
	"github.com/dmitrijs2005/timekeeper/internal/server/models"
	"github.com/dmitrijs2005/timekeeper/internal/server/reports"
	"github.com/dmitrijs2005/timekeeper/internal/server/services"
)

type UserService interface {
	Register(ctx context.Context, username, password string) (*models.User, error)
	Login(ctx context.Context, username, password string) (*services.TokenPair, error)
	RefreshToken(ctx context.Context, refreshToken string) (*services.TokenPair, error)
	Logout(ctx context.Context, refreshToken string) error
	GetByID(ctx context.Context, id string) (*models.User, error)
}

type TaskService interface {
	Create(ctx context.Context, userID string, in services.TaskInput) (*models.Task, error)
	ListByDate(ctx context.Context, userID, date string) ([]*models.Task, error)
	Update(ctx context.Context, userID, taskID string, patch models.TaskPatch) (*models.Task, error)
	Delete(ctx context.Context, userID, taskID string) error
}

type TimesheetService interface {
	List(ctx context.Context, userID string) ([]*models.TimesheetWithTasks, error)
	ListForUser(ctx context.Context, userID string) ([]*models.TimesheetWithTasks, error)
	GetByDate(ctx context.Context, userID, date string) (*models.DayView, error)
	Submit(ctx context.Context, userID, date string) (*models.Timesheet, error)
	ArchiveURL(ctx context.Context, userID, date string) (string, error)
	Export(ctx context.Context, userID, from, to string, w io.Writer) error
	ExportForUser(ctx context.Context, userID, from, to string, w io.Writer) error
}

type StatsService interface {
	UserStats(ctx context.Context, userID string) (*models.UserStats, error)
	Employees(ctx context.Context) ([]*models.EmployeeStats, error)
}

// Handler holds the services behind the routes.
type Handler struct {
	users      UserService
	tasks      TaskService
	timesheets TimesheetService
	stats      StatsService
	logger     logging.Logger
}

func NewHandler(us UserService, ts TaskService, ss TimesheetService, st StatsService, l logging.Logger) *Handler {
	return &Handler{users: us, tasks: ts, timesheets: ss, stats: st, logger: l}
}

// fail writes err as a JSON error, logging anything that is not a client error.
func (h *Handler) fail(w http.ResponseWriter, r *http.Request, err error) {
	status, body := classify(err)
	if status >= http.StatusInternalServerError {
		h.logger.Error(r.Context(), "request failed", "path", r.URL.Path, "error", err)
	}
	writeJSON(w, status, body)
}

// caller returns the authenticated user id. Routes using it sit behind
// authenticate, so the identity is always present.
func caller(r *http.Request) string {
	id, _ := auth.FromContext(r.Context())
	return id.UserID
}

// sendWorkbook renders the export into memory first so failures still
// produce a JSON error instead of a truncated download.
func (h *Handler) sendWorkbook(w http.ResponseWriter, r *http.Request, filename string, render func(io.Writer) error) {
	var buf bytes.Buffer
	if err := render(&buf); err != nil {
		h.fail(w, r, err)
		return
	}
	w.Header().Set("Content-Type", reports.ContentType)
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", filename))
	w.WriteHeader(http.StatusOK)
	_, _ = buf.WriteTo(w)
}
