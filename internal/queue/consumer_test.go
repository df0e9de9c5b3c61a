package queue

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBuildMessage(t *testing.T) {
	tests := []struct {
		kind        string
		wantSubject string
	}{
		{KindAddressVerification, "Verify your email for User Management"},
		{KindPasswordReset, "Reset your password for User Management"},
		{KindInvitation, "You were invited to User Management"},
	}
	for _, tt := range tests {
		t.Run(tt.kind, func(t *testing.T) {
			msg, err := BuildMessage(EmailEvent{Kind: tt.kind, To: "a@b.c", Link: "https://ui/#/x?token=t"})
			require.NoError(t, err)
			assert.Equal(t, "a@b.c", msg.To)
			assert.Equal(t, tt.wantSubject, msg.Subject)
			assert.Contains(t, msg.HTML, "https://ui/#/x?token=t")
		})
	}
}

func TestBuildMessageUnknownKind(t *testing.T) {
	_, err := BuildMessage(EmailEvent{Kind: "newsletter"})
	assert.Error(t, err)
}

func TestEmailEventJSONShape(t *testing.T) {
	ev := EmailEvent{Kind: KindInvitation, To: "a@b.c", Link: "l", QueuedAt: "2024-01-01T00:00:00Z"}
	raw, err := json.Marshal(ev)
	require.NoError(t, err)
	assert.JSONEq(t, `{"kind":"invitation","to":"a@b.c","link":"l","queued_at":"2024-01-01T00:00:00Z"}`, string(raw))
}
