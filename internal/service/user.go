package service

import (
	"context"
	"database/sql"
	"errors"
	"log"

	"github.com/flatlogic/usermgmt-backend/internal/config"
	"github.com/flatlogic/usermgmt-backend/internal/model"
	"github.com/flatlogic/usermgmt-backend/internal/notification"
	"github.com/flatlogic/usermgmt-backend/internal/repository"
)

// UserService implements the admin-facing user CRUD.  Every mutating
// operation takes the acting user explicitly and runs its writes inside a
// single transaction; a failure after partial writes rolls everything back.
type UserService struct {
	cfg   config.Config
	users *repository.UserRepo
	files *repository.FileRepo
	auth  *AuthService
}

func NewUserService(cfg config.Config, users *repository.UserRepo, files *repository.FileRepo, auth *AuthService) *UserService {
	return &UserService{cfg: cfg, users: users, files: files, auth: auth}
}

// UserInput carries the admin-editable fields of a user record.
type UserInput struct {
	Email       string       `json:"email"`
	FirstName   string       `json:"firstName"`
	LastName    string       `json:"lastName"`
	PhoneNumber string       `json:"phoneNumber"`
	Role        string       `json:"role"`
	Disabled    bool         `json:"disabled"`
	Avatars     []AvatarInput `json:"avatars"`
}

// AvatarInput references either an already-stored file (ID set) or a freshly
// uploaded one (New set with its metadata).
type AvatarInput struct {
	ID          string `json:"id"`
	New         bool   `json:"new"`
	Name        string `json:"name"`
	SizeInBytes int64  `json:"sizeInBytes"`
	PrivateURL  string `json:"privateUrl"`
	PublicURL   string `json:"publicUrl"`
}

func avatarFiles(in []AvatarInput) []model.File {
	out := make([]model.File, 0, len(in))
	for _, a := range in {
		f := model.File{
			Name:        a.Name,
			SizeInBytes: a.SizeInBytes,
			PrivateURL:  a.PrivateURL,
			PublicURL:   a.PublicURL,
		}
		if !a.New {
			f.ID = a.ID
		}
		out = append(out, f)
	}
	return out
}

// Create registers a user on behalf of an admin.  The record is created
// verified (the invitee proves address ownership through the invitation
// link); the invitation email itself is sent after commit, best-effort.
func (s *UserService) Create(ctx context.Context, in UserInput, actor *model.User, sendInvitation bool, host string) error {
	if actor == nil {
		return notification.NewForbiddenError("")
	}

	u := model.User{
		Email:         in.Email,
		FirstName:     in.FirstName,
		LastName:      in.LastName,
		PhoneNumber:   in.PhoneNumber,
		Role:          in.Role,
		EmailVerified: true,
		CreatedByID:   actor.ID,
		UpdatedByID:   actor.ID,
	}
	u.Normalize()

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

	_, err = s.users.FindByEmailTx(ctx, tx, u.Email)
	if err == nil {
		return notification.NewValidationError("iam.errors.userAlreadyExists")
	}
	if !errors.Is(err, sql.ErrNoRows) {
		return err
	}

	if err := s.users.CreateTx(ctx, tx, u); err != nil {
		if errors.Is(err, repository.ErrEmailExists) {
			return notification.NewValidationError("iam.errors.userAlreadyExists")
		}
		return err
	}
	created, err := s.users.FindByEmailTx(ctx, tx, u.Email)
	if err != nil {
		return err
	}
	if err := s.files.ReplaceForOwnerTx(ctx, tx,
		model.FileBelongsToUsers, model.FileColumnAvatars, created.ID,
		avatarFiles(in.Avatars), actor.ID); err != nil {
		return err
	}

	if err := tx.Commit(); err != nil {
		return err
	}
	committed = true

	if sendInvitation && s.cfg.MailConfigured() {
		if err := s.auth.SendPasswordResetEmail(ctx, created.Email, ResetPurposeInvitation, host); err != nil {
			log.Printf("users: invitation email for %s failed: %v", created.Email, err)
		}
	}
	return nil
}

// Update rewrites a user's profile fields and avatar set.
func (s *UserService) Update(ctx context.Context, id string, in UserInput, actor *model.User) error {
	if actor == nil {
		return notification.NewForbiddenError("")
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

	if _, err := s.users.FindByIDTx(ctx, tx, id); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return notification.NewValidationError("iam.errors.userNotFound")
		}
		return err
	}

	if err := s.users.UpdateProfileTx(ctx, tx, id, repository.ProfileUpdate{
		FirstName:   in.FirstName,
		LastName:    in.LastName,
		PhoneNumber: in.PhoneNumber,
		Role:        in.Role,
		Disabled:    in.Disabled,
	}, actor.ID); err != nil {
		return err
	}
	if err := s.files.ReplaceForOwnerTx(ctx, tx,
		model.FileBelongsToUsers, model.FileColumnAvatars, id,
		avatarFiles(in.Avatars), actor.ID); err != nil {
		return err
	}

	if err := tx.Commit(); err != nil {
		return err
	}
	committed = true
	return nil
}

// Remove soft-deletes a user.  Admins only, and never themselves.
func (s *UserService) Remove(ctx context.Context, id string, actor *model.User) error {
	if actor == nil {
		return notification.NewForbiddenError("")
	}
	if actor.ID == id {
		return notification.NewValidationError("iam.errors.deletingHimself")
	}
	if actor.Role != model.RoleAdmin {
		return notification.NewForbiddenError("errors.forbidden.message")
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

	if err := s.users.SoftDeleteTx(ctx, tx, id, actor.ID); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return notification.NewValidationError("iam.errors.userNotFound")
		}
		return err
	}

	if err := tx.Commit(); err != nil {
		return err
	}
	committed = true
	return nil
}
