package timesheets

import (
	"context"
	"database/sql"
	"errors"
	"regexp"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/dmitrijs2005/timekeeper/internal/common"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newRepoWithMock(t *testing.T) (*PostgresRepository, sqlmock.Sqlmock, *sql.DB) {
	t.Helper()
	db, mock, err := sqlmock.New(sqlmock.QueryMatcherOption(sqlmock.QueryMatcherRegexp))
	if err != nil {
		t.Fatalf("sqlmock.New error: %v", err)
	}
	return NewPostgresRepository(db), mock, db
}

var tsColumns = []string{"id", "user_id", "date", "total_hours", "is_submitted", "submitted_at", "created_at"}

func TestUpsert_InsertsOrUpdatesDraft(t *testing.T) {
	repo, mock, db := newRepoWithMock(t)
	defer db.Close()

	q := `(?s)^INSERT\s+INTO\s+timesheets\s*\(user_id,\s*date,\s*total_hours\)\s*VALUES\s*\(\$1,\s*\$2,\s*\$3\)\s*` +
		`ON\s+CONFLICT\s*\(user_id,\s*date\)\s*DO\s+UPDATE\s+SET\s+total_hours\s*=\s*EXCLUDED\.total_hours\s+` +
		`WHERE\s+NOT\s+timesheets\.is_submitted\s+RETURNING`
	mock.ExpectQuery(q).
		WithArgs("u1", "2024-01-15", 120).
		WillReturnRows(sqlmock.NewRows(tsColumns).AddRow("ts1", "u1", "2024-01-15", 120, false, nil, time.Now()))

	ts, err := repo.Upsert(context.Background(), "u1", "2024-01-15", 120)
	require.NoError(t, err)
	assert.Equal(t, "ts1", ts.ID)
	assert.Equal(t, 120, ts.TotalHours)
	assert.False(t, ts.IsSubmitted)
	assert.Nil(t, ts.SubmittedAt)
}

func TestUpsert_SubmittedRowIsRefused(t *testing.T) {
	repo, mock, db := newRepoWithMock(t)
	defer db.Close()

	mock.ExpectQuery(`INSERT\s+INTO\s+timesheets`).
		WithArgs("u1", "2024-03-01", 0).
		WillReturnRows(sqlmock.NewRows(tsColumns))

	_, err := repo.Upsert(context.Background(), "u1", "2024-03-01", 0)
	assert.ErrorIs(t, err, common.ErrTimesheetSubmitted)
	assert.ErrorIs(t, err, common.ErrConflict)
}

func TestUpsert_DBError(t *testing.T) {
	repo, mock, db := newRepoWithMock(t)
	defer db.Close()

	mock.ExpectQuery(`INSERT\s+INTO\s+timesheets`).WillReturnError(errors.New("db down"))

	_, err := repo.Upsert(context.Background(), "u1", "2024-01-15", 10)
	if err == nil || !regexp.MustCompile(`db error: .*db down`).MatchString(err.Error()) {
		t.Fatalf("expected wrapped db error, got %v", err)
	}
}

func TestGetByUserAndDate(t *testing.T) {
	repo, mock, db := newRepoWithMock(t)
	defer db.Close()

	q := `(?s)FROM\s+timesheets\s+WHERE\s+user_id\s*=\s*\$1\s+AND\s+date\s*=\s*\$2$`
	submitted := time.Date(2024, 3, 1, 18, 0, 0, 0, time.UTC)
	mock.ExpectQuery(q).
		WithArgs("u1", "2024-03-01").
		WillReturnRows(sqlmock.NewRows(tsColumns).AddRow("ts1", "u1", "2024-03-01", 270, true, submitted, time.Now()))
	mock.ExpectQuery(q).
		WithArgs("u1", "2024-03-02").
		WillReturnError(sql.ErrNoRows)

	ts, err := repo.GetByUserAndDate(context.Background(), "u1", "2024-03-01")
	require.NoError(t, err)
	assert.True(t, ts.IsSubmitted)
	require.NotNil(t, ts.SubmittedAt)
	assert.Equal(t, submitted, *ts.SubmittedAt)

	_, err = repo.GetByUserAndDate(context.Background(), "u1", "2024-03-02")
	assert.ErrorIs(t, err, common.ErrorNotFound)
}

func TestListByUser_NewestFirstWithLimit(t *testing.T) {
	repo, mock, db := newRepoWithMock(t)
	defer db.Close()

	q := `(?s)WHERE\s+user_id\s*=\s*\$1\s+ORDER\s+BY\s+date\s+DESC\s+LIMIT\s+\$2$`
	mock.ExpectQuery(q).
		WithArgs("u1", 30).
		WillReturnRows(sqlmock.NewRows(tsColumns).
			AddRow("ts2", "u1", "2024-01-16", 60, false, nil, time.Now()).
			AddRow("ts1", "u1", "2024-01-15", 120, false, nil, time.Now()))

	got, err := repo.ListByUser(context.Background(), "u1", 30)
	require.NoError(t, err)
	require.Len(t, got, 2)
	assert.Equal(t, "2024-01-16", got[0].Date)
}

func TestListByUserInRange(t *testing.T) {
	repo, mock, db := newRepoWithMock(t)
	defer db.Close()

	q := `(?s)WHERE\s+user_id\s*=\s*\$1\s+AND\s+date\s+BETWEEN\s+\$2\s+AND\s+\$3\s+ORDER\s+BY\s+date$`
	mock.ExpectQuery(q).
		WithArgs("u1", "2024-01-09", "2024-01-15").
		WillReturnError(errors.New("boom"))

	_, err := repo.ListByUserInRange(context.Background(), "u1", "2024-01-09", "2024-01-15")
	if err == nil || !regexp.MustCompile(`db error: .*boom`).MatchString(err.Error()) {
		t.Fatalf("expected wrapped db error, got %v", err)
	}
}

func TestSubmit(t *testing.T) {
	repo, mock, db := newRepoWithMock(t)
	defer db.Close()

	q := `(?s)^UPDATE\s+timesheets\s+SET\s+is_submitted\s*=\s*true,\s*submitted_at\s*=\s*now\(\)\s+` +
		`WHERE\s+user_id\s*=\s*\$1\s+AND\s+date\s*=\s*\$2\s+AND\s+NOT\s+is_submitted\s+RETURNING`
	now := time.Now()
	mock.ExpectQuery(q).
		WithArgs("u1", "2024-03-01").
		WillReturnRows(sqlmock.NewRows(tsColumns).AddRow("ts1", "u1", "2024-03-01", 270, true, now, now))
	mock.ExpectQuery(q).
		WithArgs("u1", "2024-03-01").
		WillReturnRows(sqlmock.NewRows(tsColumns))

	ts, err := repo.Submit(context.Background(), "u1", "2024-03-01")
	require.NoError(t, err)
	assert.True(t, ts.IsSubmitted)
	assert.Equal(t, 270, ts.TotalHours)

	_, err = repo.Submit(context.Background(), "u1", "2024-03-01")
	assert.ErrorIs(t, err, common.ErrTimesheetSubmitted)
	require.NoError(t, mock.ExpectationsWereMet())
}
