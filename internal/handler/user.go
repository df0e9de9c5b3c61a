package handler

import (
	"context"
	"net/http"
	"strconv"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/flatlogic/usermgmt-backend/internal/middleware"
	"github.com/flatlogic/usermgmt-backend/internal/model"
	"github.com/flatlogic/usermgmt-backend/internal/repository"
	"github.com/flatlogic/usermgmt-backend/internal/service"
)

// UserHandler exposes the admin user CRUD.
type UserHandler struct {
	Users   *repository.UserRepo
	Files   *repository.FileRepo
	Service *service.UserService
}

func NewUserHandler(users *repository.UserRepo, files *repository.FileRepo, svc *service.UserService) *UserHandler {
	return &UserHandler{Users: users, Files: files, Service: svc}
}

// userDTO is the wire shape of a user.  Password hashes and pending token
// material never leave the server.
type userDTO struct {
	ID            string       `json:"id"`
	Email         string       `json:"email"`
	FirstName     string       `json:"firstName,omitempty"`
	LastName      string       `json:"lastName,omitempty"`
	PhoneNumber   string       `json:"phoneNumber,omitempty"`
	Role          string       `json:"role"`
	Provider      string       `json:"provider"`
	EmailVerified bool         `json:"emailVerified"`
	Disabled      bool         `json:"disabled"`
	CreatedAt     time.Time    `json:"createdAt"`
	UpdatedAt     time.Time    `json:"updatedAt"`
	Avatars       []model.File `json:"avatars"`
}

func buildUserDTO(ctx context.Context, files *repository.FileRepo, u model.User) (userDTO, error) {
	avatars, err := files.ListForOwner(ctx, model.FileBelongsToUsers, model.FileColumnAvatars, u.ID)
	if err != nil {
		return userDTO{}, err
	}
	return userDTO{
		ID:            u.ID,
		Email:         u.Email,
		FirstName:     u.FirstName,
		LastName:      u.LastName,
		PhoneNumber:   u.PhoneNumber,
		Role:          u.Role,
		Provider:      u.Provider,
		EmailVerified: u.EmailVerified,
		Disabled:      u.Disabled,
		CreatedAt:     u.CreatedAt,
		UpdatedAt:     u.UpdatedAt,
		Avatars:       avatars,
	}, nil
}

type userDataReq struct {
	Data service.UserInput `json:"data"`
}

// Create: register a user on behalf of the current admin and send an
// invitation email.
func (h *UserHandler) Create(c echo.Context) error {
	var req userDataReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid body"})
	}
	if req.Data.Email == "" {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "email required"})
	}
	if !validEmail(req.Data.Email) {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid email address"})
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), 15*time.Second)
	defer cancel()

	if err := h.Service.Create(ctx, req.Data, middleware.CurrentUser(c), true, linkHost(c)); err != nil {
		return respondError(c, err)
	}
	return c.JSON(http.StatusOK, true)
}

// Update: rewrite the selected user's profile.
func (h *UserHandler) Update(c echo.Context) error {
	var req userDataReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid body"})
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), 15*time.Second)
	defer cancel()

	if err := h.Service.Update(ctx, c.Param("id"), req.Data, middleware.CurrentUser(c)); err != nil {
		return respondError(c, err)
	}
	return c.JSON(http.StatusOK, true)
}

// Delete: soft-delete the selected user.
func (h *UserHandler) Delete(c echo.Context) error {
	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	if err := h.Service.Remove(ctx, c.Param("id"), middleware.CurrentUser(c)); err != nil {
		return respondError(c, err)
	}
	return c.JSON(http.StatusOK, true)
}

// List: page through users with optional email/date filters.
func (h *UserHandler) List(c echo.Context) error {
	filter := repository.ListFilter{
		Email:  c.QueryParam("email"),
		Limit:  atoiDefault(c.QueryParam("limit"), 0),
		Offset: atoiDefault(c.QueryParam("offset"), 0),
	}
	if v := c.QueryParam("createdAtFrom"); v != "" {
		if t, err := time.Parse(time.RFC3339, v); err == nil {
			filter.CreatedAfter = &t
		}
	}
	if v := c.QueryParam("createdAtTo"); v != "" {
		if t, err := time.Parse(time.RFC3339, v); err == nil {
			filter.CreatedBefore = &t
		}
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	users, count, err := h.Users.FindAll(ctx, filter)
	if err != nil {
		return respondError(c, err)
	}
	rows := make([]userDTO, 0, len(users))
	for _, u := range users {
		dto, err := buildUserDTO(ctx, h.Files, u)
		if err != nil {
			return respondError(c, err)
		}
		rows = append(rows, dto)
	}
	return c.JSON(http.StatusOK, echo.Map{"rows": rows, "count": count})
}

// Autocomplete: id/label pairs for typeahead pickers.
func (h *UserHandler) Autocomplete(c echo.Context) error {
	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	entries, err := h.Users.Autocomplete(ctx, c.QueryParam("query"), atoiDefault(c.QueryParam("limit"), 10))
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(http.StatusOK, entries)
}

// Get: fetch one user with avatars.
func (h *UserHandler) Get(c echo.Context) error {
	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	u, err := h.Users.FindByID(ctx, c.Param("id"))
	if err != nil {
		return respondError(c, err)
	}
	dto, err := buildUserDTO(ctx, h.Files, u)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(http.StatusOK, dto)
}

func atoiDefault(s string, def int) int {
	if s == "" {
		return def
	}
	n, err := strconv.Atoi(s)
	if err != nil {
		return def
	}
	return n
}
