package mail

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/flatlogic/usermgmt-backend/internal/config"
)

func TestSendUnconfigured(t *testing.T) {
	s := NewSender(config.MailConfig{})
	assert.False(t, s.IsConfigured())
	assert.ErrorIs(t, s.Send(Message{To: "a@b.c", Subject: "x", HTML: "y"}), ErrNotConfigured)
}

func TestSendRejectsEmptyFields(t *testing.T) {
	s := NewSender(config.MailConfig{Host: "smtp.example.com", Port: 587})
	assert.Error(t, s.Send(Message{To: "a@b.c"}))
}

func TestEncodeHeaderOrder(t *testing.T) {
	s := NewSender(config.MailConfig{From: "support@flatlogic.com", Host: "smtp.example.com", Port: 587})
	m := Message{To: "a@b.c", Subject: "Verify your email", HTML: "<p>hi</p>"}

	want := "From: support@flatlogic.com\r\n" +
		"To: a@b.c\r\n" +
		"Subject: Verify your email\r\n" +
		"MIME-version: 1.0\r\n" +
		"Content-Type: text/html; charset=UTF-8\r\n" +
		"\r\n" +
		"<p>hi</p>\r\n"
	assert.Equal(t, want, string(s.encode(m)))
	assert.Equal(t, s.encode(m), s.encode(m))
}
