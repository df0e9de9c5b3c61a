package notification

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestGetSubstitutesPositionalArgs(t *testing.T) {
	got := Get("emails.emailAddressVerification.subject", "User Management")
	assert.Equal(t, "Verify your email for User Management", got)
}

func TestGetRepeatedPlaceholder(t *testing.T) {
	got := Get("emails.passwordReset.body", "User Management", "admin@flatlogic.com", "https://ui/#/password-reset?token=abc")
	assert.Contains(t, got, `href="https://ui/#/password-reset?token=abc"`)
	// {0} appears twice in the template
	assert.Contains(t, got, "your User Management password")
	assert.Contains(t, got, "your User Management team")
}

func TestGetUnknownCodePassedThrough(t *testing.T) {
	assert.Equal(t, "plain text", Get("plain text"))
}

func TestIs(t *testing.T) {
	assert.True(t, Is("auth.wrongPassword"))
	assert.False(t, Is("auth.noSuchCode"))
}

func TestNewValidationError(t *testing.T) {
	err := NewValidationError("auth.emailAlreadyInUse")
	assert.Equal(t, "auth.emailAlreadyInUse", err.Code)
	assert.Equal(t, "Email is already in use", err.Error())
}

func TestNewValidationErrorUnknownCode(t *testing.T) {
	err := NewValidationError("auth.someNewCode")
	assert.Equal(t, "An error occurred", err.Error())
	assert.Equal(t, "auth.someNewCode", err.Code)
}

func TestNewForbiddenErrorEmptyCode(t *testing.T) {
	err := NewForbiddenError("")
	assert.Equal(t, "Forbidden", err.Error())
}

func TestNewNotFoundError(t *testing.T) {
	err := NewNotFoundError("iam.errors.userNotFound")
	assert.Equal(t, "User not found", err.Error())
}
