package services

import (
	"context"
	"database/sql"
	"slices"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/dmitrijs2005/timekeeper/internal/common"
	"github.com/dmitrijs2005/timekeeper/internal/dbx"
	"github.com/dmitrijs2005/timekeeper/internal/logging"
	"github.com/dmitrijs2005/timekeeper/internal/server/models"
	"github.com/dmitrijs2005/timekeeper/internal/server/repositories/refreshtokens"
	"github.com/dmitrijs2005/timekeeper/internal/server/repositories/tasks"
	"github.com/dmitrijs2005/timekeeper/internal/server/repositories/timesheets"
	"github.com/dmitrijs2005/timekeeper/internal/server/repositories/users"
	"github.com/google/uuid"
)

type nopLogger struct{}

func (n nopLogger) Debug(context.Context, string, ...any) {}
func (n nopLogger) Info(context.Context, string, ...any)  {}
func (n nopLogger) Warn(context.Context, string, ...any)  {}
func (n nopLogger) Error(context.Context, string, ...any) {}
func (n nopLogger) With(...any) logging.Logger            { return n }

type errBoom struct{}

func (errBoom) Error() string { return "boom" }

// memStore is an in-memory stand-in for the database behind every repository.
// It ignores the DBTX it is handed, so rollbacks are not simulated; tests only
// assert state for paths that fail before any write.
type memStore struct {
	mu     sync.Mutex
	users  map[string]*models.User
	tasks  map[string]*models.Task
	sheets map[string]*models.Timesheet
	tokens map[string]*models.RefreshToken
	clock  time.Time

	// failOn makes the named operation (e.g. "tasks.Create") return the error.
	failOn map[string]error
}

func newMemStore() *memStore {
	return &memStore{
		users:  map[string]*models.User{},
		tasks:  map[string]*models.Task{},
		sheets: map[string]*models.Timesheet{},
		tokens: map[string]*models.RefreshToken{},
		clock:  time.Date(2024, 3, 1, 8, 0, 0, 0, time.UTC),
		failOn: map[string]error{},
	}
}

func (s *memStore) tick() time.Time {
	s.clock = s.clock.Add(time.Second)
	return s.clock
}

func (s *memStore) fail(op string) error {
	return s.failOn[op]
}

func (s *memStore) addUser(name string, role models.Role) *models.User {
	s.mu.Lock()
	defer s.mu.Unlock()
	u := &models.User{ID: uuid.NewString(), UserName: name, Role: role, CreatedAt: s.tick()}
	s.users[u.ID] = u
	return u
}

func (s *memStore) sheet(userID, date string) *models.Timesheet {
	s.mu.Lock()
	defer s.mu.Unlock()
	ts, ok := s.sheets[dayKey(userID, date)]
	if !ok {
		return nil
	}
	cp := *ts
	return &cp
}

type fakeRepoManager struct{ s *memStore }

func (m *fakeRepoManager) RunMigrations(context.Context, *sql.DB) error { return nil }
func (m *fakeRepoManager) Users(dbx.DBTX) users.Repository             { return &memUsers{m.s} }
func (m *fakeRepoManager) RefreshTokens(dbx.DBTX) refreshtokens.Repository {
	return &memTokens{m.s}
}
func (m *fakeRepoManager) Tasks(dbx.DBTX) tasks.Repository           { return &memTasks{m.s} }
func (m *fakeRepoManager) Timesheets(dbx.DBTX) timesheets.Repository { return &memSheets{m.s} }

// --- users ---

type memUsers struct{ s *memStore }

func (r *memUsers) Create(_ context.Context, u *models.User) (*models.User, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if err := r.s.fail("users.Create"); err != nil {
		return nil, err
	}
	for _, existing := range r.s.users {
		if existing.UserName == u.UserName {
			return nil, common.ErrConflict
		}
	}
	u.ID = uuid.NewString()
	u.CreatedAt = r.s.tick()
	cp := *u
	r.s.users[u.ID] = &cp
	return u, nil
}

func (r *memUsers) GetByID(_ context.Context, id string) (*models.User, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if err := r.s.fail("users.Get"); err != nil {
		return nil, err
	}
	u, ok := r.s.users[id]
	if !ok {
		return nil, common.ErrorNotFound
	}
	cp := *u
	return &cp, nil
}

func (r *memUsers) GetByUsername(_ context.Context, name string) (*models.User, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if err := r.s.fail("users.Get"); err != nil {
		return nil, err
	}
	for _, u := range r.s.users {
		if u.UserName == name {
			cp := *u
			return &cp, nil
		}
	}
	return nil, common.ErrorNotFound
}

func (r *memUsers) ListByRole(_ context.Context, role models.Role) ([]*models.User, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if err := r.s.fail("users.List"); err != nil {
		return nil, err
	}
	var out []*models.User
	for _, u := range r.s.users {
		if u.Role == role {
			cp := *u
			out = append(out, &cp)
		}
	}
	slices.SortFunc(out, func(a, b *models.User) int { return strings.Compare(a.UserName, b.UserName) })
	return out, nil
}

// --- refresh tokens ---

type memTokens struct{ s *memStore }

func (r *memTokens) Create(_ context.Context, userID, token string, validity time.Duration) (*models.RefreshToken, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if err := r.s.fail("tokens.Create"); err != nil {
		return nil, err
	}
	rt := &models.RefreshToken{ID: uuid.NewString(), UserID: userID, Token: token, Expires: time.Now().Add(validity)}
	r.s.tokens[token] = rt
	return rt, nil
}

func (r *memTokens) Find(_ context.Context, token string) (*models.RefreshToken, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if err := r.s.fail("tokens.Find"); err != nil {
		return nil, err
	}
	rt, ok := r.s.tokens[token]
	if !ok {
		return nil, common.ErrorNotFound
	}
	cp := *rt
	return &cp, nil
}

func (r *memTokens) Delete(_ context.Context, token string) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if err := r.s.fail("tokens.Delete"); err != nil {
		return err
	}
	delete(r.s.tokens, token)
	return nil
}

func (r *memTokens) DeleteExpired(_ context.Context, now time.Time) (int64, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	var n int64
	for k, rt := range r.s.tokens {
		if rt.Expires.Before(now) {
			delete(r.s.tokens, k)
			n++
		}
	}
	return n, nil
}

// --- tasks ---

type memTasks struct{ s *memStore }

func (r *memTasks) Create(_ context.Context, t *models.Task) (*models.Task, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if err := r.s.fail("tasks.Create"); err != nil {
		return nil, err
	}
	t.ID = uuid.NewString()
	t.CreatedAt = r.s.tick()
	t.UpdatedAt = t.CreatedAt
	cp := *t
	r.s.tasks[t.ID] = &cp
	return t, nil
}

func (r *memTasks) list(match func(*models.Task) bool) []*models.Task {
	out := make([]*models.Task, 0)
	for _, t := range r.s.tasks {
		if match(t) {
			cp := *t
			out = append(out, &cp)
		}
	}
	slices.SortFunc(out, func(a, b *models.Task) int {
		if c := strings.Compare(a.Date, b.Date); c != 0 {
			return c
		}
		if c := a.StartTime.Compare(b.StartTime); c != 0 {
			return c
		}
		if c := a.CreatedAt.Compare(b.CreatedAt); c != 0 {
			return c
		}
		return strings.Compare(a.ID, b.ID)
	})
	return out
}

func (r *memTasks) ListByUserAndDate(_ context.Context, userID, date string) ([]*models.Task, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if err := r.s.fail("tasks.List"); err != nil {
		return nil, err
	}
	return r.list(func(t *models.Task) bool { return t.UserID == userID && t.Date == date }), nil
}

func (r *memTasks) ListByUserInRange(_ context.Context, userID, from, to string) ([]*models.Task, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if err := r.s.fail("tasks.List"); err != nil {
		return nil, err
	}
	return r.list(func(t *models.Task) bool { return t.UserID == userID && t.Date >= from && t.Date <= to }), nil
}

func (r *memTasks) GetByID(_ context.Context, id string) (*models.Task, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	t, ok := r.s.tasks[id]
	if !ok {
		return nil, common.ErrorNotFound
	}
	cp := *t
	return &cp, nil
}

func (r *memTasks) GetByIDForUpdate(ctx context.Context, id string) (*models.Task, error) {
	return r.GetByID(ctx, id)
}

func (r *memTasks) Update(_ context.Context, id string, p models.TaskPatch) (*models.Task, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if err := r.s.fail("tasks.Update"); err != nil {
		return nil, err
	}
	t, ok := r.s.tasks[id]
	if !ok {
		return nil, common.ErrorNotFound
	}
	next := p.Apply(*t)
	next.UpdatedAt = r.s.tick()
	r.s.tasks[id] = &next
	cp := next
	return &cp, nil
}

func (r *memTasks) Delete(_ context.Context, id string) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if err := r.s.fail("tasks.Delete"); err != nil {
		return err
	}
	if _, ok := r.s.tasks[id]; !ok {
		return common.ErrorNotFound
	}
	delete(r.s.tasks, id)
	return nil
}

// --- timesheets ---

type memSheets struct{ s *memStore }

func (r *memSheets) Upsert(_ context.Context, userID, date string, total int) (*models.Timesheet, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if err := r.s.fail("sheets.Upsert"); err != nil {
		return nil, err
	}
	k := dayKey(userID, date)
	ts, ok := r.s.sheets[k]
	if !ok {
		ts = &models.Timesheet{ID: uuid.NewString(), UserID: userID, Date: date, CreatedAt: r.s.tick()}
		r.s.sheets[k] = ts
	} else if ts.IsSubmitted {
		return nil, common.ErrTimesheetSubmitted
	}
	ts.TotalHours = total
	cp := *ts
	return &cp, nil
}

func (r *memSheets) GetByUserAndDate(_ context.Context, userID, date string) (*models.Timesheet, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if err := r.s.fail("sheets.Get"); err != nil {
		return nil, err
	}
	ts, ok := r.s.sheets[dayKey(userID, date)]
	if !ok {
		return nil, common.ErrorNotFound
	}
	cp := *ts
	return &cp, nil
}

func (r *memSheets) filter(match func(*models.Timesheet) bool, desc bool) []*models.Timesheet {
	out := make([]*models.Timesheet, 0)
	for _, ts := range r.s.sheets {
		if match(ts) {
			cp := *ts
			out = append(out, &cp)
		}
	}
	slices.SortFunc(out, func(a, b *models.Timesheet) int {
		if desc {
			return strings.Compare(b.Date, a.Date)
		}
		return strings.Compare(a.Date, b.Date)
	})
	return out
}

func (r *memSheets) ListByUser(_ context.Context, userID string, limit int) ([]*models.Timesheet, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if err := r.s.fail("sheets.List"); err != nil {
		return nil, err
	}
	out := r.filter(func(ts *models.Timesheet) bool { return ts.UserID == userID }, true)
	if len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

func (r *memSheets) ListByUserInRange(_ context.Context, userID, from, to string) ([]*models.Timesheet, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if err := r.s.fail("sheets.List"); err != nil {
		return nil, err
	}
	return r.filter(func(ts *models.Timesheet) bool {
		return ts.UserID == userID && ts.Date >= from && ts.Date <= to
	}, false), nil
}

func (r *memSheets) Submit(_ context.Context, userID, date string) (*models.Timesheet, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	ts, ok := r.s.sheets[dayKey(userID, date)]
	if !ok || ts.IsSubmitted {
		return nil, common.ErrTimesheetSubmitted
	}
	now := r.s.tick()
	ts.IsSubmitted = true
	ts.SubmittedAt = &now
	cp := *ts
	return &cp, nil
}

// --- sql expectations ---

func newSQLMockDB(t *testing.T) (*sql.DB, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock.New error: %v", err)
	}
	t.Cleanup(func() { db.Close() })
	return db, mock
}

const lockQuery = `SELECT pg_advisory_xact_lock\(hashtext\(\$1\)\)`

// expectLockedTx expects a transaction that takes the given day locks in order.
// The caller adds ExpectCommit or ExpectRollback.
func expectLockedTx(mock sqlmock.Sqlmock, keys ...string) {
	mock.ExpectBegin()
	for _, k := range keys {
		mock.ExpectExec(lockQuery).WithArgs(k).WillReturnResult(sqlmock.NewResult(0, 0))
	}
}
