package httpapi

import (
	"context"
	"io"

	"github.com/dmitrijs2005/timekeeper/internal/common"
	"github.com/dmitrijs2005/timekeeper/internal/logging"
	"github.com/dmitrijs2005/timekeeper/internal/server/models"
	"github.com/dmitrijs2005/timekeeper/internal/server/services"
)

type nopLogger struct{}

func (n nopLogger) Debug(context.Context, string, ...any) {}
func (n nopLogger) Info(context.Context, string, ...any)  {}
func (n nopLogger) Warn(context.Context, string, ...any)  {}
func (n nopLogger) Error(context.Context, string, ...any) {}
func (n nopLogger) With(...any) logging.Logger            { return n }

type fakeUsers struct {
	registerFn func(ctx context.Context, username, password string) (*models.User, error)
	loginFn    func(ctx context.Context, username, password string) (*services.TokenPair, error)
	refreshFn  func(ctx context.Context, token string) (*services.TokenPair, error)
	loggedOut  []string
	byID       map[string]*models.User
}

func (f *fakeUsers) Register(ctx context.Context, username, password string) (*models.User, error) {
	return f.registerFn(ctx, username, password)
}

func (f *fakeUsers) Login(ctx context.Context, username, password string) (*services.TokenPair, error) {
	return f.loginFn(ctx, username, password)
}

func (f *fakeUsers) RefreshToken(ctx context.Context, token string) (*services.TokenPair, error) {
	return f.refreshFn(ctx, token)
}

func (f *fakeUsers) Logout(_ context.Context, token string) error {
	f.loggedOut = append(f.loggedOut, token)
	return nil
}

func (f *fakeUsers) GetByID(_ context.Context, id string) (*models.User, error) {
	if u, ok := f.byID[id]; ok {
		return u, nil
	}
	return nil, common.ErrorNotFound
}

type fakeTasks struct {
	created  []services.TaskInput
	createFn func(userID string, in services.TaskInput) (*models.Task, error)
	listFn   func(userID, date string) ([]*models.Task, error)
	updateFn func(userID, taskID string, p models.TaskPatch) (*models.Task, error)
	deleteFn func(userID, taskID string) error
}

func (f *fakeTasks) Create(_ context.Context, userID string, in services.TaskInput) (*models.Task, error) {
	f.created = append(f.created, in)
	return f.createFn(userID, in)
}

func (f *fakeTasks) ListByDate(_ context.Context, userID, date string) ([]*models.Task, error) {
	return f.listFn(userID, date)
}

func (f *fakeTasks) Update(_ context.Context, userID, taskID string, p models.TaskPatch) (*models.Task, error) {
	return f.updateFn(userID, taskID, p)
}

func (f *fakeTasks) Delete(_ context.Context, userID, taskID string) error {
	return f.deleteFn(userID, taskID)
}

type fakeTimesheets struct {
	listFn    func(userID string) ([]*models.TimesheetWithTasks, error)
	getFn     func(userID, date string) (*models.DayView, error)
	submitFn  func(userID, date string) (*models.Timesheet, error)
	archiveFn func(userID, date string) (string, error)
	exportFn  func(userID, from, to string, w io.Writer) error
	forUser   []string
}

func (f *fakeTimesheets) List(_ context.Context, userID string) ([]*models.TimesheetWithTasks, error) {
	return f.listFn(userID)
}

func (f *fakeTimesheets) ListForUser(_ context.Context, userID string) ([]*models.TimesheetWithTasks, error) {
	f.forUser = append(f.forUser, userID)
	return f.listFn(userID)
}

func (f *fakeTimesheets) GetByDate(_ context.Context, userID, date string) (*models.DayView, error) {
	return f.getFn(userID, date)
}

func (f *fakeTimesheets) Submit(_ context.Context, userID, date string) (*models.Timesheet, error) {
	return f.submitFn(userID, date)
}

func (f *fakeTimesheets) ArchiveURL(_ context.Context, userID, date string) (string, error) {
	return f.archiveFn(userID, date)
}

func (f *fakeTimesheets) Export(_ context.Context, userID, from, to string, w io.Writer) error {
	return f.exportFn(userID, from, to, w)
}

func (f *fakeTimesheets) ExportForUser(_ context.Context, userID, from, to string, w io.Writer) error {
	f.forUser = append(f.forUser, userID)
	return f.exportFn(userID, from, to, w)
}

type fakeStats struct {
	user      *models.UserStats
	employees []*models.EmployeeStats
}

func (f *fakeStats) UserStats(context.Context, string) (*models.UserStats, error) {
	return f.user, nil
}

func (f *fakeStats) Employees(context.Context) ([]*models.EmployeeStats, error) {
	return f.employees, nil
}
