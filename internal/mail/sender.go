// Package mail sends templated transactional emails over SMTP.  The transport
// is optional: when no SMTP host is configured every send is skipped and the
// rest of the application treats accounts as auto-verified.
package mail

import (
	"errors"
	"fmt"
	"net/smtp"
	"strings"

	"github.com/flatlogic/usermgmt-backend/internal/config"
)

// Message is a single transactional email.
type Message struct {
	To      string
	Subject string
	HTML    string
}

// ErrNotConfigured is returned when a send is attempted without an SMTP host.
var ErrNotConfigured = errors.New("mail transport is not configured")

// Sender delivers messages through the configured SMTP server.
type Sender struct {
	cfg config.MailConfig
}

func NewSender(cfg config.MailConfig) *Sender { return &Sender{cfg: cfg} }

// IsConfigured reports whether the transport can deliver mail.
func (s *Sender) IsConfigured() bool { return s.cfg.Host != "" }

// Send delivers one message.  Callers that treat delivery as best-effort must
// log the returned error themselves; Send never swallows failures.
func (s *Sender) Send(m Message) error {
	if !s.IsConfigured() {
		return ErrNotConfigured
	}
	if m.To == "" || m.Subject == "" || m.HTML == "" {
		return errors.New("mail: to, subject and body are required")
	}

	addr := fmt.Sprintf("%s:%d", s.cfg.Host, s.cfg.Port)
	var auth smtp.Auth
	if s.cfg.User != "" {
		auth = smtp.PlainAuth("", s.cfg.User, s.cfg.Pass, s.cfg.Host)
	}
	return smtp.SendMail(addr, auth, s.cfg.From, []string{m.To}, s.encode(m))
}

// encode renders the wire form of a message with headers in a fixed order.
func (s *Sender) encode(m Message) []byte {
	headers := [][2]string{
		{"From", s.cfg.From},
		{"To", m.To},
		{"Subject", m.Subject},
		{"MIME-version", "1.0"},
		{"Content-Type", "text/html; charset=UTF-8"},
	}
	var b strings.Builder
	for _, h := range headers {
		b.WriteString(h[0])
		b.WriteString(": ")
		b.WriteString(h[1])
		b.WriteString("\r\n")
	}
	b.WriteString("\r\n")
	b.WriteString(m.HTML)
	b.WriteString("\r\n")
	return []byte(b.String())
}
