package repository

import (
	"context"
	"database/sql"
	"errors"
	"regexp"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var userCols = []string{
	"id", "email", "password", "role", "provider", "first_name", "last_name", "phone_number",
	"email_verified", "email_verification_token", "email_verification_token_expires_at",
	"password_reset_token", "password_reset_token_expires_at", "authentication_uid",
	"disabled", "import_hash", "created_by_id", "updated_by_id", "created_at", "updated_at", "deleted_at",
}

func userRow(id, email string) *sqlmock.Rows {
	now := time.Now()
	return sqlmock.NewRows(userCols).AddRow(
		id, email, "hashed", "user", "local", "First", "Last", nil,
		true, nil, nil,
		nil, nil, id,
		false, nil, nil, nil, now, now, nil,
	)
}

func newMock(t *testing.T) (*UserRepo, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	return NewUserRepo(db), mock
}

func TestFindByEmailNormalizes(t *testing.T) {
	repo, mock := newMock(t)

	mock.ExpectQuery(regexp.QuoteMeta("FROM users WHERE email=? AND deleted_at IS NULL")).
		WithArgs("user@example.com").
		WillReturnRows(userRow("u-1", "user@example.com"))

	u, err := repo.FindByEmail(context.Background(), "  User@Example.COM ")
	require.NoError(t, err)
	assert.Equal(t, "u-1", u.ID)
	assert.Equal(t, "hashed", u.PasswordHash)
	assert.Equal(t, "u-1", u.AuthenticationUID)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestFindByEmailMissing(t *testing.T) {
	repo, mock := newMock(t)

	mock.ExpectQuery(regexp.QuoteMeta("FROM users WHERE email=?")).
		WithArgs("nobody@example.com").
		WillReturnRows(sqlmock.NewRows(userCols))

	_, err := repo.FindByEmail(context.Background(), "nobody@example.com")
	assert.ErrorIs(t, err, sql.ErrNoRows)
}

func TestCreateFromAuthDuplicate(t *testing.T) {
	repo, mock := newMock(t)

	mock.ExpectExec(regexp.QuoteMeta("INSERT INTO users")).
		WillReturnError(errors.New("Error 1062: Duplicate entry 'user@example.com' for key 'uq_users_email'"))

	_, err := repo.CreateFromAuth(context.Background(), "user@example.com", "user", "hash")
	assert.ErrorIs(t, err, ErrEmailExists)
}

func TestUpdatePasswordLinksAuthenticationUID(t *testing.T) {
	repo, mock := newMock(t)

	// authentication_uid is set to the user's own id alongside the new hash
	mock.ExpectExec(regexp.QuoteMeta("UPDATE users SET password=?, authentication_uid=?, updated_by_id=? WHERE id=? AND deleted_at IS NULL")).
		WithArgs("newhash", "u-1", "actor", "u-1").
		WillReturnResult(sqlmock.NewResult(0, 1))

	err := repo.UpdatePassword(context.Background(), "u-1", "newhash", "actor")
	require.NoError(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestMarkEmailVerifiedMissingRow(t *testing.T) {
	repo, mock := newMock(t)

	mock.ExpectExec(regexp.QuoteMeta("UPDATE users SET email_verified=1")).
		WillReturnResult(sqlmock.NewResult(0, 0))

	err := repo.MarkEmailVerified(context.Background(), "gone", "gone")
	assert.ErrorIs(t, err, sql.ErrNoRows)
}

func TestFindAllCountsAndPages(t *testing.T) {
	repo, mock := newMock(t)

	mock.ExpectQuery(regexp.QuoteMeta("SELECT COUNT(*) FROM users WHERE deleted_at IS NULL AND LOWER(email) LIKE ?")).
		WithArgs("%doe%").
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(7))
	mock.ExpectQuery(regexp.QuoteMeta("ORDER BY created_at DESC LIMIT 2 OFFSET 0")).
		WithArgs("%doe%").
		WillReturnRows(userRow("u-1", "john@doe.com").AddRow(
			"u-2", "jane@doe.com", nil, "user", "local", nil, nil, nil,
			false, nil, nil,
			nil, nil, nil,
			false, nil, nil, nil, time.Now(), time.Now(), nil,
		))

	users, count, err := repo.FindAll(context.Background(), ListFilter{Email: "Doe", Limit: 2})
	require.NoError(t, err)
	assert.Equal(t, 7, count)
	require.Len(t, users, 2)
	assert.Equal(t, "jane@doe.com", users[1].Email)
	assert.Empty(t, users[1].PasswordHash)
}

func TestAutocompleteLabels(t *testing.T) {
	repo, mock := newMock(t)

	mock.ExpectQuery(regexp.QuoteMeta("SELECT id, email, first_name, last_name FROM users")).
		WithArgs("%doe%", 10).
		WillReturnRows(sqlmock.NewRows([]string{"id", "email", "first_name", "last_name"}).
			AddRow("u-1", "john@doe.com", "John", "Doe").
			AddRow("u-2", "jane@doe.com", nil, nil))

	entries, err := repo.Autocomplete(context.Background(), "Doe", 0)
	require.NoError(t, err)
	require.Len(t, entries, 2)
	assert.Equal(t, "John Doe <john@doe.com>", entries[0].Label)
	assert.Equal(t, "jane@doe.com", entries[1].Label)
}

func TestSoftDeleteMissingRow(t *testing.T) {
	repo, mock := newMock(t)

	mock.ExpectBegin()
	mock.ExpectExec(regexp.QuoteMeta("UPDATE users SET deleted_at=NOW(3)")).
		WillReturnResult(sqlmock.NewResult(0, 0))

	tx, err := repo.DB.Begin()
	require.NoError(t, err)
	err = repo.SoftDeleteTx(context.Background(), tx, "gone", "actor")
	assert.ErrorIs(t, err, sql.ErrNoRows)
}
