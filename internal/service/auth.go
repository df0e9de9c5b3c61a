// Package service holds the business logic between the HTTP handlers and the
// repositories.  Services fail with typed notification errors; handlers map
// those onto HTTP statuses.
package service

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log"
	"strings"
	"time"

	"github.com/flatlogic/usermgmt-backend/internal/config"
	"github.com/flatlogic/usermgmt-backend/internal/model"
	"github.com/flatlogic/usermgmt-backend/internal/notification"
	"github.com/flatlogic/usermgmt-backend/internal/queue"
	"github.com/flatlogic/usermgmt-backend/internal/repository"
	"github.com/flatlogic/usermgmt-backend/internal/utils"
)

// tokenTTL bounds email verification and password reset tokens.  360000 ms
// (six minutes) is carried over verbatim from the original template.  It is
// surprisingly short for an email round-trip; do not "fix" it quietly, the
// value is load-bearing for anyone comparing behavior against the template.
const tokenTTL = 360000 * time.Millisecond

// tokenBytes is the entropy of verification/reset tokens before hex encoding.
const tokenBytes = 20

// Password reset purposes accepted by SendPasswordResetEmail.
const (
	ResetPurposeRegister   = "register"
	ResetPurposeInvitation = "invitation"
)

// AuthService orchestrates signup, signin, password lifecycle, email
// verification and social account linking.
type AuthService struct {
	cfg      config.Config
	users    *repository.UserRepo
	dispatch *queue.Dispatcher
}

func NewAuthService(cfg config.Config, users *repository.UserRepo, dispatch *queue.Dispatcher) *AuthService {
	return &AuthService{cfg: cfg, users: users, dispatch: dispatch}
}

func (s *AuthService) issueToken(u model.User, name string) (string, error) {
	return utils.NewAuthToken(s.cfg.JWTSecret, utils.TokenPayload{
		UserID: u.ID,
		Email:  u.Email,
		Name:   name,
	})
}

// Signup registers a local credential for an email address and returns a
// bearer token.  Three paths exist:
//   - the email is unknown: a new local user is created;
//   - the email belongs to a record without an external-identity link (an
//     admin-created invitee): the password is set on the existing record;
//   - the email already has a linked credential: fails with EmailAlreadyInUse.
// The verification email is best-effort; its failure never fails the signup.
func (s *AuthService) Signup(ctx context.Context, email, password, host string) (string, error) {
	email = strings.ToLower(strings.TrimSpace(email))

	// Hash before any store access; bcrypt is CPU-bound and must not overlap
	// a transaction or row lock.
	hash, err := utils.HashPassword(password, s.cfg.BcryptCost)
	if err != nil {
		return "", err
	}

	user, err := s.users.FindByEmail(ctx, email)
	switch {
	case err == nil:
		if user.AuthenticationUID != "" {
			return "", notification.NewValidationError("auth.emailAlreadyInUse")
		}
		if user.Disabled {
			return "", notification.NewValidationError("auth.userDisabled")
		}
		if err := s.users.UpdatePassword(ctx, user.ID, hash, user.ID); err != nil {
			return "", err
		}
	case errors.Is(err, sql.ErrNoRows):
		firstName, _, _ := strings.Cut(email, "@")
		user, err = s.users.CreateFromAuth(ctx, email, firstName, hash)
		if errors.Is(err, repository.ErrEmailExists) {
			// Lost a race with a concurrent signup for the same address.
			return "", notification.NewValidationError("auth.emailAlreadyInUse")
		}
		if err != nil {
			return "", err
		}
	default:
		return "", err
	}

	if s.cfg.MailConfigured() {
		if err := s.SendEmailAddressVerificationEmail(ctx, user.Email, host); err != nil {
			log.Printf("signup: verification email for %s failed: %v", user.Email, err)
		}
	}

	return s.issueToken(user, "")
}

// Signin authenticates a local credential and returns a bearer token.
// The email-verification requirement is waived entirely when the mail
// subsystem is unconfigured: nobody could ever have received a link.
func (s *AuthService) Signin(ctx context.Context, email, password string) (string, error) {
	email = strings.ToLower(strings.TrimSpace(email))

	user, err := s.users.FindByEmail(ctx, email)
	if errors.Is(err, sql.ErrNoRows) {
		return "", notification.NewValidationError("auth.userNotFound")
	}
	if err != nil {
		return "", err
	}
	if user.Disabled {
		return "", notification.NewValidationError("auth.userDisabled")
	}
	if user.PasswordHash == "" {
		// Pure social account; local signin is impossible by construction.
		return "", notification.NewValidationError("auth.wrongPassword")
	}
	if !s.cfg.MailConfigured() {
		user.EmailVerified = true
	}
	if !user.EmailVerified {
		return "", notification.NewValidationError("auth.userNotVerified")
	}
	if !utils.VerifyPassword(user.PasswordHash, password) {
		return "", notification.NewValidationError("auth.wrongPassword")
	}

	return s.issueToken(user, "")
}

// SendEmailAddressVerificationEmail issues a fresh verification token
// (overwriting any prior one) and dispatches the verification email.  A
// missing user is an unexpected error: callers only reach this for addresses
// they have already resolved.
func (s *AuthService) SendEmailAddressVerificationEmail(ctx context.Context, email, host string) error {
	if !s.cfg.MailConfigured() {
		return fmt.Errorf("mail transport is not configured; set SMTP_HOST to enable email")
	}

	user, err := s.users.FindByEmail(ctx, email)
	if err != nil {
		return fmt.Errorf("generate email verification token: %w", err)
	}

	token, err := s.storeToken(ctx, user, verificationToken)
	if err != nil {
		log.Printf("auth: email verification token for %s: %v", email, err)
		return notification.NewValidationError("auth.emailAddressVerificationEmail.error")
	}

	link := s.linkHost(host) + "#/verify-email?token=" + token
	s.dispatch.Dispatch(queue.KindAddressVerification, user.Email, link)
	return nil
}

// SendPasswordResetEmail issues a fresh reset token and dispatches either the
// password-reset template (purpose "register") or the invitation template
// (purpose "invitation").
func (s *AuthService) SendPasswordResetEmail(ctx context.Context, email, purpose, host string) error {
	if !s.cfg.MailConfigured() {
		return fmt.Errorf("mail transport is not configured; set SMTP_HOST to enable email")
	}

	user, err := s.users.FindByEmail(ctx, email)
	if err != nil {
		return fmt.Errorf("generate password reset token: %w", err)
	}

	token, err := s.storeToken(ctx, user, resetToken)
	if err != nil {
		log.Printf("auth: password reset token for %s: %v", email, err)
		return notification.NewValidationError("auth.passwordReset.error")
	}

	link := s.linkHost(host) + "#/password-reset?token=" + token
	kind := queue.KindPasswordReset
	if purpose == ResetPurposeInvitation {
		kind = queue.KindInvitation
	}
	s.dispatch.Dispatch(kind, user.Email, link)
	return nil
}

// VerifyEmail consumes a verification token, marking the address verified.
func (s *AuthService) VerifyEmail(ctx context.Context, token string) error {
	user, err := s.users.FindByEmailVerificationToken(ctx, token)
	if errors.Is(err, sql.ErrNoRows) {
		return notification.NewValidationError("auth.emailAddressVerificationEmail.invalidToken")
	}
	if err != nil {
		return err
	}
	return s.users.MarkEmailVerified(ctx, user.ID, user.ID)
}

// PasswordUpdate changes the acting user's password after re-verifying the
// current one.  The new password must differ from the stored one.
func (s *AuthService) PasswordUpdate(ctx context.Context, currentPassword, newPassword string, actor *model.User) error {
	if actor == nil {
		return notification.NewForbiddenError("")
	}
	if !utils.VerifyPassword(actor.PasswordHash, currentPassword) {
		return notification.NewValidationError("auth.wrongPassword")
	}
	if utils.VerifyPassword(actor.PasswordHash, newPassword) {
		return notification.NewValidationError("auth.passwordUpdate.samePassword")
	}
	hash, err := utils.HashPassword(newPassword, s.cfg.BcryptCost)
	if err != nil {
		return err
	}
	return s.users.UpdatePassword(ctx, actor.ID, hash, actor.ID)
}

// PasswordReset consumes a reset token and stores the new password.  The
// token is cleared in the same transaction so it cannot be replayed.
func (s *AuthService) PasswordReset(ctx context.Context, token, newPassword string) error {
	user, err := s.users.FindByPasswordResetToken(ctx, token)
	if errors.Is(err, sql.ErrNoRows) {
		return notification.NewValidationError("auth.passwordReset.invalidToken")
	}
	if err != nil {
		return err
	}

	hash, err := utils.HashPassword(newPassword, s.cfg.BcryptCost)
	if err != nil {
		return err
	}

	tx, err := s.users.DB.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	committed := false
	defer func() {
		if !committed {
			_ = tx.Rollback()
		}
	}()
	if err := s.users.UpdatePasswordTx(ctx, tx, user.ID, hash, user.ID); err != nil {
		return err
	}
	if err := s.users.ClearPasswordResetTokenTx(ctx, tx, user.ID); err != nil {
		return err
	}
	if err := tx.Commit(); err != nil {
		return err
	}
	committed = true
	return nil
}

// SocialSignin finds or creates the user record a social identity maps to,
// scoped by (email, provider), and returns a bearer token embedding the
// display name.  First-time social users get a random unusable password so
// local signin stays impossible, and their email counts as verified because
// the provider owns it.
func (s *AuthService) SocialSignin(ctx context.Context, provider, email, displayName string) (string, error) {
	if !model.KnownProvider(provider) || provider == model.ProviderLocal {
		return "", fmt.Errorf("unsupported social provider %q", provider)
	}
	email = strings.ToLower(strings.TrimSpace(email))

	user, err := s.users.FindByEmailAndProvider(ctx, email, provider)
	if errors.Is(err, sql.ErrNoRows) {
		unusable, err := utils.RandomHex(tokenBytes)
		if err != nil {
			return "", err
		}
		hash, err := utils.HashPassword(unusable, s.cfg.BcryptCost)
		if err != nil {
			return "", err
		}
		user, err = s.users.CreateFromSocial(ctx, email, displayName, provider, hash)
		if errors.Is(err, repository.ErrEmailExists) {
			// The address already belongs to an account under another provider.
			return "", notification.NewValidationError("auth.emailAlreadyInUse")
		}
		if err != nil {
			return "", err
		}
	} else if err != nil {
		return "", err
	}
	if user.Disabled {
		return "", notification.NewValidationError("auth.userDisabled")
	}

	return s.issueToken(user, displayName)
}

// Token purposes; each purpose has its own column pair and overwriting a
// pending token of the same purpose is the only invalidation mechanism.
type tokenPurpose int

const (
	verificationToken tokenPurpose = iota
	resetToken
)

func (s *AuthService) storeToken(ctx context.Context, user model.User, purpose tokenPurpose) (string, error) {
	token, err := utils.RandomHex(tokenBytes)
	if err != nil {
		return "", err
	}
	expiry := time.Now().UTC().Add(tokenTTL)
	switch purpose {
	case verificationToken:
		err = s.users.SetEmailVerificationToken(ctx, user.ID, token, expiry, user.ID)
	case resetToken:
		err = s.users.SetPasswordResetToken(ctx, user.ID, token, expiry, user.ID)
	}
	if err != nil {
		return "", err
	}
	return token, nil
}

// linkHost picks the base URL embedded in email links: the caller's referer
// when present (so links lead back to the UI the user came from), otherwise
// the configured UI URL.
func (s *AuthService) linkHost(host string) string {
	if host != "" {
		return host
	}
	return s.cfg.UIURL + "/"
}
