package mail

import "github.com/flatlogic/usermgmt-backend/internal/notification"

// Builders for the three transactional emails the system sends.  Subjects and
// bodies come from the notification message table so wording lives in one
// place.

// AddressVerification builds the email-address verification message.
func AddressVerification(to, link string) Message {
	title := notification.Get("app.title")
	return Message{
		To:      to,
		Subject: notification.Get("emails.emailAddressVerification.subject", title),
		HTML:    notification.Get("emails.emailAddressVerification.body", link, title),
	}
}

// PasswordReset builds the password reset message.
func PasswordReset(to, link string) Message {
	title := notification.Get("app.title")
	return Message{
		To:      to,
		Subject: notification.Get("emails.passwordReset.subject", title),
		HTML:    notification.Get("emails.passwordReset.body", title, to, link),
	}
}

// Invitation builds the invitation message sent when an admin creates an
// account for someone else.
func Invitation(to, link string) Message {
	title := notification.Get("app.title")
	return Message{
		To:      to,
		Subject: notification.Get("emails.invitation.subject", title),
		HTML:    notification.Get("emails.invitation.body", title, to, link),
	}
}
