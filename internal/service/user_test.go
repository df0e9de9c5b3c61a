package service

import (
	"context"
	"regexp"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"github.com/flatlogic/usermgmt-backend/internal/config"
	"github.com/flatlogic/usermgmt-backend/internal/mail"
	"github.com/flatlogic/usermgmt-backend/internal/model"
	"github.com/flatlogic/usermgmt-backend/internal/notification"
	"github.com/flatlogic/usermgmt-backend/internal/queue"
	"github.com/flatlogic/usermgmt-backend/internal/repository"
)

func newUserService(t *testing.T) (*UserService, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })

	cfg := config.Config{JWTSecret: "test-secret", BcryptCost: bcrypt.MinCost}
	users := repository.NewUserRepo(db)
	files := repository.NewFileRepo(db)
	auth := NewAuthService(cfg, users, queue.NewDispatcher("", mail.NewSender(cfg.Mail)))
	return NewUserService(cfg, users, files, auth), mock
}

var admin = &model.User{ID: "admin-1", Email: "admin@example.com", Role: model.RoleAdmin}

func TestUserCreateDuplicateEmail(t *testing.T) {
	s, mock := newUserService(t)

	mock.ExpectBegin()
	mock.ExpectQuery(regexp.QuoteMeta("FROM users WHERE email=?")).
		WithArgs("taken@example.com").
		WillReturnRows(rowsFor(mockUser{id: "u-1", email: "taken@example.com"}))
	mock.ExpectRollback()

	err := s.Create(context.Background(), UserInput{Email: "Taken@Example.com"}, admin, false, "")
	assertValidationCode(t, err, "iam.errors.userAlreadyExists")
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestUserCreateInsertsInsideTransaction(t *testing.T) {
	s, mock := newUserService(t)

	mock.ExpectBegin()
	mock.ExpectQuery(regexp.QuoteMeta("FROM users WHERE email=?")).
		WillReturnRows(sqlmock.NewRows(userCols))
	mock.ExpectExec(regexp.QuoteMeta("INSERT INTO users")).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectQuery(regexp.QuoteMeta("FROM users WHERE email=?")).
		WillReturnRows(rowsFor(mockUser{id: "u-2", email: "new@example.com", verified: true}))
	mock.ExpectExec(regexp.QuoteMeta("UPDATE files SET deleted_at=NOW(3)")).
		WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectCommit()

	err := s.Create(context.Background(), UserInput{
		Email:     "new@example.com",
		FirstName: "New",
		Role:      model.RoleUser,
	}, admin, false, "")
	require.NoError(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestUserCreateStoresNewAvatars(t *testing.T) {
	s, mock := newUserService(t)

	mock.ExpectBegin()
	mock.ExpectQuery(regexp.QuoteMeta("FROM users WHERE email=?")).
		WillReturnRows(sqlmock.NewRows(userCols))
	mock.ExpectExec(regexp.QuoteMeta("INSERT INTO users")).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectQuery(regexp.QuoteMeta("FROM users WHERE email=?")).
		WillReturnRows(rowsFor(mockUser{id: "u-2", email: "new@example.com", verified: true}))
	mock.ExpectExec(regexp.QuoteMeta("UPDATE files SET deleted_at=NOW(3)")).
		WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectExec(regexp.QuoteMeta("INSERT INTO files")).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()

	err := s.Create(context.Background(), UserInput{
		Email: "new@example.com",
		Avatars: []AvatarInput{
			{New: true, Name: "me.png", SizeInBytes: 1024, PrivateURL: "users/avatar/me.png"},
		},
	}, admin, false, "")
	require.NoError(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestUserUpdateUnknownUser(t *testing.T) {
	s, mock := newUserService(t)

	mock.ExpectBegin()
	mock.ExpectQuery(regexp.QuoteMeta("FROM users WHERE id=?")).
		WillReturnRows(sqlmock.NewRows(userCols))
	mock.ExpectRollback()

	err := s.Update(context.Background(), "gone", UserInput{}, admin)
	assertValidationCode(t, err, "iam.errors.userNotFound")
}

func TestUserUpdateRollsBackOnAvatarFailure(t *testing.T) {
	s, mock := newUserService(t)

	mock.ExpectBegin()
	mock.ExpectQuery(regexp.QuoteMeta("FROM users WHERE id=?")).
		WillReturnRows(rowsFor(mockUser{id: "u-1", email: "user@example.com"}))
	mock.ExpectExec(regexp.QuoteMeta("UPDATE users SET first_name=?")).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec(regexp.QuoteMeta("UPDATE files SET deleted_at=NOW(3)")).
		WillReturnError(assert.AnError)
	mock.ExpectRollback()

	err := s.Update(context.Background(), "u-1", UserInput{FirstName: "X"}, admin)
	assert.Error(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestUserRemoveSelf(t *testing.T) {
	s, _ := newUserService(t)

	err := s.Remove(context.Background(), admin.ID, admin)
	assertValidationCode(t, err, "iam.errors.deletingHimself")
}

func TestUserRemoveRequiresAdmin(t *testing.T) {
	s, _ := newUserService(t)

	var fe *notification.ForbiddenError
	plain := &model.User{ID: "u-2", Role: model.RoleUser}
	err := s.Remove(context.Background(), "u-3", plain)
	assert.ErrorAs(t, err, &fe)
}

func TestUserRemoveSoftDeletes(t *testing.T) {
	s, mock := newUserService(t)

	mock.ExpectBegin()
	mock.ExpectExec(regexp.QuoteMeta("UPDATE users SET deleted_at=NOW(3)")).
		WithArgs("admin-1", "u-2").
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()

	err := s.Remove(context.Background(), "u-2", admin)
	require.NoError(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}
