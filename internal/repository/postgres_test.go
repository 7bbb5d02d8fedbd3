package repository

import (
	"context"
	"errors"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"
)

func newMockStore(t *testing.T) (*PostgresStore, sqlmock.Sqlmock) {
	t.Helper()
	sqlDB, mock, err := sqlmock.New(sqlmock.QueryMatcherOption(sqlmock.QueryMatcherRegexp))
	require.NoError(t, err)
	t.Cleanup(func() { sqlDB.Close() })

	db, err := gorm.Open(postgres.New(postgres.Config{Conn: sqlDB}), &gorm.Config{
		Logger:         gormlogger.Discard,
		TranslateError: true,
	})
	require.NoError(t, err)
	return NewPostgresStore(db), mock
}

func TestPostgresGetUserNotFound(t *testing.T) {
	store, mock := newMockStore(t)

	mock.ExpectQuery(`SELECT \* FROM "users" WHERE id = \$1`).
		WillReturnRows(sqlmock.NewRows([]string{"id", "name"}))

	_, err := store.GetUser(context.Background(), "missing")
	assert.True(t, errors.Is(err, ErrNotFound))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgresListUsersByTeam(t *testing.T) {
	store, mock := newMockStore(t)

	rows := sqlmock.NewRows([]string{"id", "name", "email", "team", "total_points"}).
		AddRow("u1", "Batman", "bruce.wayne@dc.com", "Team DC", 900).
		AddRow("u2", "Flash", "barry.allen@dc.com", "Team DC", 300)
	mock.ExpectQuery(`SELECT \* FROM "users" WHERE "team" = \$1 ORDER BY total_points DESC`).
		WithArgs("Team DC").
		WillReturnRows(rows)

	users, err := store.ListUsers(context.Background(), Where("team", "Team DC"))
	require.NoError(t, err)
	require.Len(t, users, 2)
	assert.Equal(t, "Batman", users[0].Name)
	assert.Equal(t, 300, users[1].TotalPoints)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgresRejectsUnknownField(t *testing.T) {
	store, mock := newMockStore(t)

	_, err := store.ListActivities(context.Background(), Where("notes", "great"))
	assert.True(t, errors.Is(err, ErrUnknownField))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgresDeleteMissingWorkout(t *testing.T) {
	store, mock := newMockStore(t)

	mock.ExpectBegin()
	mock.ExpectExec(`DELETE FROM "workouts" WHERE id = \$1`).
		WithArgs("missing").
		WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectCommit()

	err := store.DeleteWorkout(context.Background(), "missing")
	assert.True(t, errors.Is(err, ErrNotFound))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgresReplaceLeaderboardWithNoEntries(t *testing.T) {
	store, mock := newMockStore(t)

	mock.ExpectBegin()
	mock.ExpectExec(`DELETE FROM "leaderboard"`).WillReturnResult(sqlmock.NewResult(0, 16))
	mock.ExpectCommit()

	require.NoError(t, store.ReplaceLeaderboard(context.Background(), nil))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgresReplaceLeaderboardRollsBack(t *testing.T) {
	store, mock := newMockStore(t)

	mock.ExpectBegin()
	mock.ExpectExec(`DELETE FROM "leaderboard"`).WillReturnError(errors.New("connection reset"))
	mock.ExpectRollback()

	err := store.ReplaceLeaderboard(context.Background(), nil)
	assert.Error(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}
