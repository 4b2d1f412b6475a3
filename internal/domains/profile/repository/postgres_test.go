package repository

import (
	"context"
	"regexp"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/pashagolub/pgxmock/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"bookshelf-backend/internal/domains/profile"
)

func newMock(t *testing.T) pgxmock.PgxPoolIface {
	t.Helper()
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	t.Cleanup(mock.Close)
	return mock
}

func TestCreate_DuplicateUser(t *testing.T) {
	mock := newMock(t)
	repo := NewPostgresRepository(mock)
	p := &profile.Profile{ID: uuid.New(), UserID: uuid.New()}

	args := make([]interface{}, 15)
	for i := range args {
		args[i] = pgxmock.AnyArg()
	}
	mock.ExpectExec(regexp.QuoteMeta("INSERT INTO user_profiles")).
		WithArgs(args...).
		WillReturnError(&pgconn.PgError{Code: "23505", ConstraintName: "user_profiles_user_id_key"})

	assert.ErrorIs(t, repo.Create(context.Background(), p), profile.ErrProfileExists)
}

func TestFindByUserID(t *testing.T) {
	mock := newMock(t)
	repo := NewPostgresRepository(mock)
	userID := uuid.New()
	now := time.Now()
	dob := time.Date(1990, 4, 2, 0, 0, 0, 0, time.UTC)
	city := "Hanoi"

	cols := []string{"id", "user_id", "first_name", "last_name", "dob", "address", "city", "state",
		"zip_code", "country", "phone", "bio", "preferences", "created_at", "updated_at"}
	mock.ExpectQuery(regexp.QuoteMeta("FROM user_profiles WHERE user_id = $1")).
		WithArgs(userID).
		WillReturnRows(pgxmock.NewRows(cols).AddRow(
			uuid.New(), userID, nil, nil, &dob, nil, &city, nil,
			nil, nil, nil, nil, []byte(`{"theme":"dark"}`), now, now,
		))

	p, err := repo.FindByUserID(context.Background(), userID)
	require.NoError(t, err)
	assert.Equal(t, "Hanoi", *p.City)
	assert.Nil(t, p.FirstName)
	assert.JSONEq(t, `{"theme":"dark"}`, string(p.Preferences))
	assert.Equal(t, "1990-04-02", *p.ToResponse().DOB)
}

func TestFindUpdateDelete_Missing(t *testing.T) {
	mock := newMock(t)
	repo := NewPostgresRepository(mock)
	userID := uuid.New()

	mock.ExpectQuery(regexp.QuoteMeta("FROM user_profiles WHERE user_id = $1")).
		WithArgs(userID).
		WillReturnError(pgx.ErrNoRows)
	_, err := repo.FindByUserID(context.Background(), userID)
	assert.ErrorIs(t, err, profile.ErrProfileNotFound)

	mock.ExpectExec(regexp.QuoteMeta("DELETE FROM user_profiles")).
		WithArgs(userID).
		WillReturnResult(pgxmock.NewResult("DELETE", 0))
	assert.ErrorIs(t, repo.DeleteByUserID(context.Background(), userID), profile.ErrProfileNotFound)
	assert.NoError(t, mock.ExpectationsWereMet())
}
