package queue

import (
    "encoding/json"
    "errors"
    "fmt"
    "log"
    "time"

    amqp "github.com/rabbitmq/amqp091-go"

    "github.com/flatlogic/usermgmt-backend/internal/mail"
)

// StartEmailConsumer connects to RabbitMQ, declares the durable user.email
// queue and delivers queued messages through the SMTP sender.  It runs a
// reconnect loop with exponential backoff and keeps running for the life of
// the process; processing errors are logged and the offending message is
// rejected without requeue so a bad payload cannot wedge the queue.
func StartEmailConsumer(url string, sender *mail.Sender) {
    backoff := time.Second
    for {
        conn, err := amqp.Dial(url)
        if err != nil {
            log.Printf("mail-consumer: failed to dial broker: %v; retrying in %s", err, backoff)
            time.Sleep(backoff)
            if backoff < 30*time.Second {
                backoff *= 2
            }
            continue
        }
        backoff = time.Second // reset after successful connect

        if err := consumeLoop(conn, sender); err != nil {
            log.Printf("mail-consumer: consume loop ended: %v; reconnecting", err)
            time.Sleep(2 * time.Second)
        }
    }
}

func consumeLoop(conn *amqp.Connection, sender *mail.Sender) error {
    ch, err := conn.Channel()
    if err != nil {
        return fmt.Errorf("channel open: %w", err)
    }
    defer func() { _ = ch.Close() }()

    if err := ch.Qos(10, 0, false); err != nil {
        log.Printf("mail-consumer: set QoS failed: %v", err)
    }

    if _, err := ch.QueueDeclare(emailQueueName, true, false, false, false, nil); err != nil {
        return fmt.Errorf("queue declare: %w", err)
    }

    msgs, err := ch.Consume(emailQueueName, "", false, false, false, false, nil)
    if err != nil {
        return fmt.Errorf("queue consume: %w", err)
    }

    for d := range msgs {
        if err := handleMessage(d.Body, sender); err != nil {
            log.Printf("mail-consumer: handle message failed: %v", err)
            _ = d.Nack(false, false) // reject, do not requeue to avoid tight loops
            continue
        }
        _ = d.Ack(false)
    }
    return errors.New("deliveries channel closed")
}

// BuildMessage maps a queued event onto a concrete mail message.
func BuildMessage(ev EmailEvent) (mail.Message, error) {
    switch ev.Kind {
    case KindAddressVerification:
        return mail.AddressVerification(ev.To, ev.Link), nil
    case KindPasswordReset:
        return mail.PasswordReset(ev.To, ev.Link), nil
    case KindInvitation:
        return mail.Invitation(ev.To, ev.Link), nil
    }
    return mail.Message{}, fmt.Errorf("unknown email kind %q", ev.Kind)
}

func handleMessage(body []byte, sender *mail.Sender) error {
    var ev EmailEvent
    if err := json.Unmarshal(body, &ev); err != nil {
        return fmt.Errorf("unmarshal: %w", err)
    }
    msg, err := BuildMessage(ev)
    if err != nil {
        return err
    }
    if err := sender.Send(msg); err != nil {
        return fmt.Errorf("send %s to %s: %w", ev.Kind, ev.To, err)
    }
    return nil
}
