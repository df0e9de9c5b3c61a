// Package queue defines message payloads exchanged over the message broker
// and the background consumer that delivers transactional email out-of-band.
package queue

// Email kinds understood by the consumer.
const (
    KindAddressVerification = "address-verification"
    KindPasswordReset       = "password-reset"
    KindInvitation          = "invitation"
)

// EmailEvent is published to the user.email queue whenever the application
// wants a transactional email delivered.  It carries only what the consumer
// needs to rebuild the message; no database access is required downstream.
type EmailEvent struct {
    Kind     string `json:"kind"`
    To       string `json:"to"`
    Link     string `json:"link"`
    QueuedAt string `json:"queued_at"`
}
