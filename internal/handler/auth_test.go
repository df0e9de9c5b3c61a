package handler

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func postJSON(t *testing.T, h echo.HandlerFunc, body string) *httptest.ResponseRecorder {
	t.Helper()
	e := echo.New()
	req := httptest.NewRequest(http.MethodPost, "/", strings.NewReader(body))
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	rec := httptest.NewRecorder()
	require.NoError(t, h(e.NewContext(req, rec)))
	return rec
}

func TestSignupRejectsMissingCredentials(t *testing.T) {
	h := &AuthHandler{}
	rec := postJSON(t, h.Signup, `{"email":"", "password":""}`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestSignupRejectsMalformedEmail(t *testing.T) {
	h := &AuthHandler{}
	rec := postJSON(t, h.Signup, `{"email":"not-an-email", "password":"secret"}`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Contains(t, rec.Body.String(), "invalid email")
}

func TestSigninRejectsMissingPassword(t *testing.T) {
	h := &AuthHandler{}
	rec := postJSON(t, h.SigninLocal, `{"email":"user@example.com"}`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestVerifyEmailRequiresToken(t *testing.T) {
	h := &AuthHandler{}
	rec := postJSON(t, h.VerifyEmail, `{"token":"  "}`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestValidEmail(t *testing.T) {
	assert.True(t, validEmail("user@example.com"))
	assert.True(t, validEmail("first.last+tag@sub.example.com"))
	assert.False(t, validEmail("user"))
	assert.False(t, validEmail("@example.com"))
}
