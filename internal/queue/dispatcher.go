package queue

import (
    "context"
    "log"
    "time"

    "github.com/flatlogic/usermgmt-backend/internal/mail"
)

// Dispatcher hands transactional email off the request path.  When a broker
// is configured events go through the durable queue; otherwise the message is
// sent directly on a goroutine.  Either way delivery is fire-and-forget:
// failures are logged and never surface to the request that triggered them.
type Dispatcher struct {
    URL    string // AMQP endpoint; empty means no broker
    Sender *mail.Sender
}

func NewDispatcher(url string, sender *mail.Sender) *Dispatcher {
    return &Dispatcher{URL: url, Sender: sender}
}

// Dispatch queues (or directly sends) one email.  Returns immediately.
func (d *Dispatcher) Dispatch(kind, to, link string) {
    ev := EmailEvent{
        Kind:     kind,
        To:       to,
        Link:     link,
        QueuedAt: time.Now().UTC().Format(time.RFC3339),
    }
    go func() {
        if d.URL != "" {
            ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
            defer cancel()
            if err := PublishEmail(ctx, d.URL, ev); err == nil {
                return
            }
            // broker unreachable; fall through to a direct send
        }
        msg, err := BuildMessage(ev)
        if err != nil {
            log.Printf("email-dispatch: %v", err)
            return
        }
        if err := d.Sender.Send(msg); err != nil {
            log.Printf("email-dispatch: send %s to %s failed: %v", kind, to, err)
        }
    }()
}
