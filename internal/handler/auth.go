package handler

import (
	"context"
	"net/http"
	"net/mail"
	"strings"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/flatlogic/usermgmt-backend/internal/config"
	"github.com/flatlogic/usermgmt-backend/internal/middleware"
	"github.com/flatlogic/usermgmt-backend/internal/oauth"
	"github.com/flatlogic/usermgmt-backend/internal/repository"
	"github.com/flatlogic/usermgmt-backend/internal/service"
	"github.com/flatlogic/usermgmt-backend/internal/utils"
)

// AuthHandler bundles dependencies for auth endpoints.
type AuthHandler struct {
	Cfg       config.Config
	Auth      *service.AuthService
	Files     *repository.FileRepo
	Providers *oauth.Registry
}

func NewAuthHandler(cfg config.Config, auth *service.AuthService, files *repository.FileRepo, providers *oauth.Registry) *AuthHandler {
	return &AuthHandler{Cfg: cfg, Auth: auth, Files: files, Providers: providers}
}

// ----- DTOs -----

type credentialsReq struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}
type tokenReq struct {
	Token string `json:"token"`
}
type passwordResetReq struct {
	Token    string `json:"token"`
	Password string `json:"password"`
}
type emailReq struct {
	Email string `json:"email"`
}
type passwordUpdateReq struct {
	CurrentPassword string `json:"currentPassword"`
	NewPassword     string `json:"newPassword"`
}

func validEmail(s string) bool {
	_, err := mail.ParseAddress(s)
	return err == nil
}

// linkHost picks the base URL for links embedded in emails: the UI the user
// came from when known.
func linkHost(c echo.Context) string {
	return c.Request().Referer()
}

// Signup: register a local credential and return a bearer token.
func (h *AuthHandler) Signup(c echo.Context) error {
	var req credentialsReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid body"})
	}
	req.Email = strings.ToLower(strings.TrimSpace(req.Email))
	if req.Email == "" || req.Password == "" {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "email/password required"})
	}
	if !validEmail(req.Email) {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid email address"})
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), 15*time.Second)
	defer cancel()

	token, err := h.Auth.Signup(ctx, req.Email, req.Password, linkHost(c))
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(http.StatusOK, token)
}

// SigninLocal: verify a local credential and return a bearer token.
func (h *AuthHandler) SigninLocal(c echo.Context) error {
	var req credentialsReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid body"})
	}
	req.Email = strings.ToLower(strings.TrimSpace(req.Email))
	if req.Email == "" || req.Password == "" {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "email/password required"})
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), 15*time.Second)
	defer cancel()

	token, err := h.Auth.Signin(ctx, req.Email, req.Password)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(http.StatusOK, token)
}

// VerifyEmail: consume an email verification token.
func (h *AuthHandler) VerifyEmail(c echo.Context) error {
	var req tokenReq
	if err := c.Bind(&req); err != nil || strings.TrimSpace(req.Token) == "" {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "token required"})
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	if err := h.Auth.VerifyEmail(ctx, strings.TrimSpace(req.Token)); err != nil {
		return respondError(c, err)
	}
	return c.JSON(http.StatusOK, true)
}

// PasswordReset: consume a reset token and store a new password.
func (h *AuthHandler) PasswordReset(c echo.Context) error {
	var req passwordResetReq
	if err := c.Bind(&req); err != nil || req.Token == "" || req.Password == "" {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "token/password required"})
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), 15*time.Second)
	defer cancel()

	if err := h.Auth.PasswordReset(ctx, req.Token, req.Password); err != nil {
		return respondError(c, err)
	}
	return c.JSON(http.StatusOK, true)
}

// SendPasswordResetEmail: issue a reset token and email its link.
func (h *AuthHandler) SendPasswordResetEmail(c echo.Context) error {
	var req emailReq
	if err := c.Bind(&req); err != nil || strings.TrimSpace(req.Email) == "" {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "email required"})
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	if err := h.Auth.SendPasswordResetEmail(ctx, strings.TrimSpace(req.Email), service.ResetPurposeRegister, linkHost(c)); err != nil {
		return respondError(c, err)
	}
	return c.JSON(http.StatusOK, true)
}

// SendEmailAddressVerificationEmail: issue a verification token and email its link.
func (h *AuthHandler) SendEmailAddressVerificationEmail(c echo.Context) error {
	var req emailReq
	if err := c.Bind(&req); err != nil || strings.TrimSpace(req.Email) == "" {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "email required"})
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	if err := h.Auth.SendEmailAddressVerificationEmail(ctx, strings.TrimSpace(req.Email), linkHost(c)); err != nil {
		return respondError(c, err)
	}
	return c.JSON(http.StatusOK, true)
}

// PasswordUpdate: change the current user's password (protected).
func (h *AuthHandler) PasswordUpdate(c echo.Context) error {
	var req passwordUpdateReq
	if err := c.Bind(&req); err != nil || req.CurrentPassword == "" || req.NewPassword == "" {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "currentPassword/newPassword required"})
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), 15*time.Second)
	defer cancel()

	if err := h.Auth.PasswordUpdate(ctx, req.CurrentPassword, req.NewPassword, middleware.CurrentUser(c)); err != nil {
		return respondError(c, err)
	}
	return c.JSON(http.StatusOK, true)
}

// Me: return the authenticated user's profile with avatars (protected).
func (h *AuthHandler) Me(c echo.Context) error {
	u := middleware.CurrentUser(c)
	if u == nil {
		return c.JSON(http.StatusForbidden, echo.Map{"error": "forbidden"})
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	dto, err := buildUserDTO(ctx, h.Files, *u)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(http.StatusOK, dto)
}

// SocialRedirect: send the browser to the provider consent screen.  The state
// parameter round-trips through a short-lived cookie.
func (h *AuthHandler) SocialRedirect(c echo.Context) error {
	provider := c.Param("provider")
	state, err := utils.RandomHex(16)
	if err != nil {
		return respondError(c, err)
	}
	url, err := h.Providers.AuthCodeURL(provider, state)
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": err.Error()})
	}
	c.SetCookie(&http.Cookie{
		Name:     "oauth_state",
		Value:    state,
		Path:     "/",
		MaxAge:   600,
		HttpOnly: true,
	})
	return c.Redirect(http.StatusTemporaryRedirect, url)
}

// SocialCallback: exchange the authorization code, link or create the local
// account and hand the bearer token to the UI via redirect.
func (h *AuthHandler) SocialCallback(c echo.Context) error {
	provider := c.Param("provider")
	code := c.QueryParam("code")
	if code == "" {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "missing authorization code"})
	}
	cookie, err := c.Cookie("oauth_state")
	if err != nil || cookie.Value == "" || cookie.Value != c.QueryParam("state") {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "state mismatch"})
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), 30*time.Second)
	defer cancel()

	identity, err := h.Providers.ResolveExternalIdentity(ctx, provider, code)
	if err != nil {
		return respondError(c, err)
	}
	token, err := h.Auth.SocialSignin(ctx, provider, identity.Email, identity.DisplayName)
	if err != nil {
		return respondError(c, err)
	}
	return c.Redirect(http.StatusTemporaryRedirect, h.Cfg.UIURL+"/#/login?token="+token)
}
