package repository

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/flatlogic/usermgmt-backend/internal/model"
)

// dbtx is satisfied by both *sql.DB and *sql.Tx so every query can run either
// standalone or inside a caller-owned transaction.
type dbtx interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

// UserRepo persists rows of the 'users' table.  All lookups exclude
// soft-deleted rows (deleted_at IS NULL).
type UserRepo struct{ DB *sql.DB }

func NewUserRepo(db *sql.DB) *UserRepo { return &UserRepo{DB: db} }

const userColumns = `id, email, password, role, provider, first_name, last_name, phone_number,
	email_verified, email_verification_token, email_verification_token_expires_at,
	password_reset_token, password_reset_token_expires_at, authentication_uid,
	disabled, import_hash, created_by_id, updated_by_id, created_at, updated_at, deleted_at`

func scanUser(row *sql.Row) (model.User, error) {
	var (
		u           model.User
		password    sql.NullString
		firstName   sql.NullString
		lastName    sql.NullString
		phone       sql.NullString
		verifToken  sql.NullString
		verifExpiry sql.NullTime
		resetToken  sql.NullString
		resetExpiry sql.NullTime
		authUID     sql.NullString
		importHash  sql.NullString
		createdBy   sql.NullString
		updatedBy   sql.NullString
		deletedAt   sql.NullTime
	)
	err := row.Scan(&u.ID, &u.Email, &password, &u.Role, &u.Provider, &firstName, &lastName, &phone,
		&u.EmailVerified, &verifToken, &verifExpiry,
		&resetToken, &resetExpiry, &authUID,
		&u.Disabled, &importHash, &createdBy, &updatedBy, &u.CreatedAt, &u.UpdatedAt, &deletedAt)
	if err != nil {
		return model.User{}, err
	}
	u.PasswordHash = password.String
	u.FirstName = firstName.String
	u.LastName = lastName.String
	u.PhoneNumber = phone.String
	u.EmailVerificationToken = verifToken.String
	if verifExpiry.Valid {
		t := verifExpiry.Time
		u.EmailVerificationExpiry = &t
	}
	u.PasswordResetToken = resetToken.String
	if resetExpiry.Valid {
		t := resetExpiry.Time
		u.PasswordResetExpiry = &t
	}
	u.AuthenticationUID = authUID.String
	u.ImportHash = importHash.String
	u.CreatedByID = createdBy.String
	u.UpdatedByID = updatedBy.String
	if deletedAt.Valid {
		t := deletedAt.Time
		u.DeletedAt = &t
	}
	return u, nil
}

// nullable turns an empty string into NULL so optional columns stay NULL in
// the database instead of accumulating empty strings.
func nullable(s string) any {
	if s == "" {
		return nil
	}
	return s
}

func isDuplicate(err error) bool {
	// MySQL duplicate-key errors carry code 1062
	return err != nil && strings.Contains(strings.ToLower(err.Error()), "1062")
}

// FindByEmail fetches a user by normalized email.  Returns sql.ErrNoRows when
// absent.
func (r *UserRepo) FindByEmail(ctx context.Context, email string) (model.User, error) {
	return r.findByEmail(ctx, r.DB, email)
}

// FindByEmailTx is FindByEmail inside a caller-owned transaction.
func (r *UserRepo) FindByEmailTx(ctx context.Context, tx *sql.Tx, email string) (model.User, error) {
	return r.findByEmail(ctx, tx, email)
}

func (r *UserRepo) findByEmail(ctx context.Context, q dbtx, email string) (model.User, error) {
	email = strings.ToLower(strings.TrimSpace(email))
	row := q.QueryRowContext(ctx,
		"SELECT "+userColumns+" FROM users WHERE email=? AND deleted_at IS NULL LIMIT 1", email)
	return scanUser(row)
}

// FindByID fetches a user by id.
func (r *UserRepo) FindByID(ctx context.Context, id string) (model.User, error) {
	return r.findByID(ctx, r.DB, id)
}

// FindByIDTx is FindByID inside a caller-owned transaction.
func (r *UserRepo) FindByIDTx(ctx context.Context, tx *sql.Tx, id string) (model.User, error) {
	return r.findByID(ctx, tx, id)
}

func (r *UserRepo) findByID(ctx context.Context, q dbtx, id string) (model.User, error) {
	row := q.QueryRowContext(ctx,
		"SELECT "+userColumns+" FROM users WHERE id=? AND deleted_at IS NULL LIMIT 1", id)
	return scanUser(row)
}

// FindByEmailAndProvider fetches the user record a social sign-in maps to.
// Social accounts are scoped by the (email, provider) pair.
func (r *UserRepo) FindByEmailAndProvider(ctx context.Context, email, provider string) (model.User, error) {
	email = strings.ToLower(strings.TrimSpace(email))
	row := r.DB.QueryRowContext(ctx,
		"SELECT "+userColumns+" FROM users WHERE email=? AND provider=? AND deleted_at IS NULL LIMIT 1",
		email, provider)
	return scanUser(row)
}

// CreateFromAuth inserts a local user created through signup.  The
// authentication uid defaults to the user's own id, which is what marks the
// record as having a usable local credential.
func (r *UserRepo) CreateFromAuth(ctx context.Context, email, firstName, passwordHash string) (model.User, error) {
	id := uuid.NewString()
	email = strings.ToLower(strings.TrimSpace(email))
	_, err := r.DB.ExecContext(ctx,
		`INSERT INTO users (id, email, password, first_name, role, provider, authentication_uid)
		 VALUES (?,?,?,?,?,?,?)`,
		id, email, passwordHash, nullable(firstName), model.RoleUser, model.ProviderLocal, id)
	if err != nil {
		if isDuplicate(err) {
			return model.User{}, ErrEmailExists
		}
		return model.User{}, err
	}
	return r.FindByID(ctx, id)
}

// CreateFromSocial inserts a user for a first-time social sign-in.  The
// password hash passed in is random and unusable for local signin; the email
// is considered verified because the provider already owns it.
func (r *UserRepo) CreateFromSocial(ctx context.Context, email, firstName, provider, passwordHash string) (model.User, error) {
	id := uuid.NewString()
	email = strings.ToLower(strings.TrimSpace(email))
	_, err := r.DB.ExecContext(ctx,
		`INSERT INTO users (id, email, password, first_name, role, provider, email_verified, authentication_uid)
		 VALUES (?,?,?,?,?,?,1,?)`,
		id, email, passwordHash, nullable(firstName), model.RoleUser, provider, id)
	if err != nil {
		if isDuplicate(err) {
			return model.User{}, ErrEmailExists
		}
		return model.User{}, err
	}
	return r.FindByID(ctx, id)
}

// CreateTx inserts a fully-populated admin-created user inside a transaction.
// The caller normalizes the record first.
func (r *UserRepo) CreateTx(ctx context.Context, tx *sql.Tx, u model.User) error {
	if u.ID == "" {
		u.ID = uuid.NewString()
	}
	_, err := tx.ExecContext(ctx,
		`INSERT INTO users (id, email, password, role, provider, first_name, last_name, phone_number,
		 email_verified, authentication_uid, import_hash, created_by_id, updated_by_id)
		 VALUES (?,?,?,?,?,?,?,?,?,?,?,?,?)`,
		u.ID, u.Email, nullable(u.PasswordHash), u.Role, u.Provider,
		nullable(u.FirstName), nullable(u.LastName), nullable(u.PhoneNumber),
		u.EmailVerified, nullable(u.AuthenticationUID), nullable(u.ImportHash),
		nullable(u.CreatedByID), nullable(u.UpdatedByID))
	if err != nil && isDuplicate(err) {
		return ErrEmailExists
	}
	return err
}

// UpdatePassword stores a new password hash and links the authentication uid
// to the user's own id, making the record a usable local credential.
func (r *UserRepo) UpdatePassword(ctx context.Context, id, passwordHash, actorID string) error {
	return r.updatePassword(ctx, r.DB, id, passwordHash, actorID)
}

// UpdatePasswordTx is UpdatePassword inside a caller-owned transaction.
func (r *UserRepo) UpdatePasswordTx(ctx context.Context, tx *sql.Tx, id, passwordHash, actorID string) error {
	return r.updatePassword(ctx, tx, id, passwordHash, actorID)
}

func (r *UserRepo) updatePassword(ctx context.Context, q dbtx, id, passwordHash, actorID string) error {
	_, err := q.ExecContext(ctx,
		"UPDATE users SET password=?, authentication_uid=?, updated_by_id=? WHERE id=? AND deleted_at IS NULL",
		passwordHash, id, nullable(actorID), id)
	return err
}

// SetEmailVerificationToken overwrites the pending verification token pair.
// Overwriting is the only invalidation mechanism for these tokens.
func (r *UserRepo) SetEmailVerificationToken(ctx context.Context, id, token string, expiry time.Time, actorID string) error {
	res, err := r.DB.ExecContext(ctx,
		`UPDATE users SET email_verification_token=?, email_verification_token_expires_at=?, updated_by_id=?
		 WHERE id=? AND deleted_at IS NULL`,
		token, expiry, nullable(actorID), id)
	return oneRowAffected(res, err)
}

// SetPasswordResetToken overwrites the pending password reset token pair.
func (r *UserRepo) SetPasswordResetToken(ctx context.Context, id, token string, expiry time.Time, actorID string) error {
	res, err := r.DB.ExecContext(ctx,
		`UPDATE users SET password_reset_token=?, password_reset_token_expires_at=?, updated_by_id=?
		 WHERE id=? AND deleted_at IS NULL`,
		token, expiry, nullable(actorID), id)
	return oneRowAffected(res, err)
}

// FindByEmailVerificationToken resolves a user by a verification token that
// has not yet expired.  Returns sql.ErrNoRows for unknown or stale tokens.
func (r *UserRepo) FindByEmailVerificationToken(ctx context.Context, token string) (model.User, error) {
	row := r.DB.QueryRowContext(ctx,
		`SELECT `+userColumns+` FROM users
		 WHERE email_verification_token=? AND email_verification_token_expires_at > NOW(3)
		 AND deleted_at IS NULL LIMIT 1`, token)
	return scanUser(row)
}

// FindByPasswordResetToken resolves a user by a reset token that has not yet
// expired.  Returns sql.ErrNoRows for unknown or stale tokens.
func (r *UserRepo) FindByPasswordResetToken(ctx context.Context, token string) (model.User, error) {
	row := r.DB.QueryRowContext(ctx,
		`SELECT `+userColumns+` FROM users
		 WHERE password_reset_token=? AND password_reset_token_expires_at > NOW(3)
		 AND deleted_at IS NULL LIMIT 1`, token)
	return scanUser(row)
}

// ClearPasswordResetTokenTx removes a consumed reset token so it cannot be
// replayed for a second reset.
func (r *UserRepo) ClearPasswordResetTokenTx(ctx context.Context, tx *sql.Tx, id string) error {
	_, err := tx.ExecContext(ctx,
		"UPDATE users SET password_reset_token=NULL, password_reset_token_expires_at=NULL WHERE id=?", id)
	return err
}

// MarkEmailVerified flips the verified flag after a successful token check.
func (r *UserRepo) MarkEmailVerified(ctx context.Context, id, actorID string) error {
	res, err := r.DB.ExecContext(ctx,
		"UPDATE users SET email_verified=1, updated_by_id=? WHERE id=? AND deleted_at IS NULL",
		nullable(actorID), id)
	return oneRowAffected(res, err)
}

// ProfileUpdate carries the mutable profile fields an admin or the user
// themselves may change.
type ProfileUpdate struct {
	FirstName   string
	LastName    string
	PhoneNumber string
	Role        string
	Disabled    bool
}

// UpdateProfileTx rewrites the mutable profile fields inside a transaction.
func (r *UserRepo) UpdateProfileTx(ctx context.Context, tx *sql.Tx, id string, p ProfileUpdate, actorID string) error {
	if p.Role == "" {
		p.Role = model.RoleUser
	}
	res, err := tx.ExecContext(ctx,
		`UPDATE users SET first_name=?, last_name=?, phone_number=?, role=?, disabled=?, updated_by_id=?
		 WHERE id=? AND deleted_at IS NULL`,
		nullable(p.FirstName), nullable(p.LastName), nullable(p.PhoneNumber),
		p.Role, p.Disabled, nullable(actorID), id)
	return oneRowAffected(res, err)
}

// SoftDeleteTx tombstones a user.  The row is never physically removed.
func (r *UserRepo) SoftDeleteTx(ctx context.Context, tx *sql.Tx, id, actorID string) error {
	res, err := tx.ExecContext(ctx,
		"UPDATE users SET deleted_at=NOW(3), updated_by_id=? WHERE id=? AND deleted_at IS NULL",
		nullable(actorID), id)
	return oneRowAffected(res, err)
}

// ListFilter narrows FindAll results.
type ListFilter struct {
	Email         string // substring match, case-insensitive
	CreatedAfter  *time.Time
	CreatedBefore *time.Time
	Limit         int
	Offset        int
}

// FindAll returns a page of users plus the unpaged total count.
func (r *UserRepo) FindAll(ctx context.Context, f ListFilter) ([]model.User, int, error) {
	where := "deleted_at IS NULL"
	args := []any{}
	if f.Email != "" {
		where += " AND LOWER(email) LIKE ?"
		args = append(args, "%"+strings.ToLower(f.Email)+"%")
	}
	if f.CreatedAfter != nil {
		where += " AND created_at >= ?"
		args = append(args, *f.CreatedAfter)
	}
	if f.CreatedBefore != nil {
		where += " AND created_at <= ?"
		args = append(args, *f.CreatedBefore)
	}

	var count int
	if err := r.DB.QueryRowContext(ctx,
		"SELECT COUNT(*) FROM users WHERE "+where, args...).Scan(&count); err != nil {
		return nil, 0, err
	}

	query := "SELECT " + userColumns + " FROM users WHERE " + where + " ORDER BY created_at DESC"
	if f.Limit > 0 {
		query += fmt.Sprintf(" LIMIT %d OFFSET %d", f.Limit, f.Offset)
	}
	rows, err := r.DB.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	out := []model.User{}
	for rows.Next() {
		u, err := scanUserRows(rows)
		if err != nil {
			return nil, 0, err
		}
		out = append(out, u)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, err
	}
	return out, count, nil
}

// AutocompleteEntry is the trimmed row returned for typeahead lookups.
type AutocompleteEntry struct {
	ID    string `json:"id"`
	Label string `json:"label"`
}

// Autocomplete returns id/label pairs for users whose email matches the query.
func (r *UserRepo) Autocomplete(ctx context.Context, query string, limit int) ([]AutocompleteEntry, error) {
	if limit <= 0 {
		limit = 10
	}
	rows, err := r.DB.QueryContext(ctx,
		`SELECT id, email, first_name, last_name FROM users
		 WHERE deleted_at IS NULL AND LOWER(email) LIKE ? ORDER BY email ASC LIMIT ?`,
		"%"+strings.ToLower(query)+"%", limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := []AutocompleteEntry{}
	for rows.Next() {
		var id, email string
		var first, last sql.NullString
		if err := rows.Scan(&id, &email, &first, &last); err != nil {
			return nil, err
		}
		label := email
		if name := strings.TrimSpace(first.String + " " + last.String); name != "" {
			label = name + " <" + email + ">"
		}
		out = append(out, AutocompleteEntry{ID: id, Label: label})
	}
	return out, rows.Err()
}

// scanUserRows mirrors scanUser for multi-row queries.
func scanUserRows(rows *sql.Rows) (model.User, error) {
	var (
		u           model.User
		password    sql.NullString
		firstName   sql.NullString
		lastName    sql.NullString
		phone       sql.NullString
		verifToken  sql.NullString
		verifExpiry sql.NullTime
		resetToken  sql.NullString
		resetExpiry sql.NullTime
		authUID     sql.NullString
		importHash  sql.NullString
		createdBy   sql.NullString
		updatedBy   sql.NullString
		deletedAt   sql.NullTime
	)
	err := rows.Scan(&u.ID, &u.Email, &password, &u.Role, &u.Provider, &firstName, &lastName, &phone,
		&u.EmailVerified, &verifToken, &verifExpiry,
		&resetToken, &resetExpiry, &authUID,
		&u.Disabled, &importHash, &createdBy, &updatedBy, &u.CreatedAt, &u.UpdatedAt, &deletedAt)
	if err != nil {
		return model.User{}, err
	}
	u.PasswordHash = password.String
	u.FirstName = firstName.String
	u.LastName = lastName.String
	u.PhoneNumber = phone.String
	u.EmailVerificationToken = verifToken.String
	if verifExpiry.Valid {
		t := verifExpiry.Time
		u.EmailVerificationExpiry = &t
	}
	u.PasswordResetToken = resetToken.String
	if resetExpiry.Valid {
		t := resetExpiry.Time
		u.PasswordResetExpiry = &t
	}
	u.AuthenticationUID = authUID.String
	u.ImportHash = importHash.String
	u.CreatedByID = createdBy.String
	u.UpdatedByID = updatedBy.String
	if deletedAt.Valid {
		t := deletedAt.Time
		u.DeletedAt = &t
	}
	return u, nil
}

// oneRowAffected converts a zero-row UPDATE into sql.ErrNoRows so callers can
// treat a vanished target uniformly with lookups.
func oneRowAffected(res sql.Result, err error) error {
	if err != nil {
		return err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return sql.ErrNoRows
	}
	return nil
}
