package mail

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestAddressVerification(t *testing.T) {
	m := AddressVerification("user@example.com", "https://ui/#/verify-email?token=abc")
	assert.Equal(t, "user@example.com", m.To)
	assert.Equal(t, "Verify your email for User Management", m.Subject)
	assert.Contains(t, m.HTML, `href="https://ui/#/verify-email?token=abc"`)
}

func TestPasswordReset(t *testing.T) {
	m := PasswordReset("user@example.com", "https://ui/#/password-reset?token=abc")
	assert.Equal(t, "Reset your password for User Management", m.Subject)
	assert.Contains(t, m.HTML, "user@example.com account")
	assert.Contains(t, m.HTML, `href="https://ui/#/password-reset?token=abc"`)
}

func TestInvitation(t *testing.T) {
	m := Invitation("invitee@example.com", "https://ui/#/password-reset?token=abc")
	assert.Equal(t, "You were invited to User Management", m.Subject)
	assert.Contains(t, m.HTML, "An account was created for invitee@example.com")
}
