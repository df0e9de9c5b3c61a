// Package notification holds the typed error taxonomy and the message-code
// table that error responses and transactional emails resolve human-readable
// text from.
package notification

import (
    "fmt"
    "strings"
)

// messages maps dotted message codes to templates.  Placeholders of the form
// {0}, {1}, ... are substituted positionally by Get.
var messages = map[string]string{
    "app.title": "User Management",

    "auth.emailAlreadyInUse": "Email is already in use",
    "auth.userDisabled":      "User is disabled",
    "auth.userNotFound":      "User not found",
    "auth.wrongPassword":     "Wrong password",
    "auth.userNotVerified":   "Please verify your email to sign in",

    "auth.emailAddressVerificationEmail.error":        "Error sending the email address verification email",
    "auth.emailAddressVerificationEmail.invalidToken": "Email verification link is invalid or has expired",
    "auth.passwordReset.error":                        "Error sending the password reset email",
    "auth.passwordReset.invalidToken":                 "Password reset link is invalid or has expired",
    "auth.passwordUpdate.samePassword":                "The new password must be different from the old password",

    "iam.errors.userAlreadyExists": "User with this email already exists",
    "iam.errors.userNotFound":      "User not found",
    "iam.errors.deletingHimself":   "You cannot delete yourself",

    "errors.validation.message": "An error occurred",
    "errors.forbidden.message":  "Forbidden",
    "errors.notFound.message":   "Not found",

    "emails.emailAddressVerification.subject": "Verify your email for {0}",
    "emails.emailAddressVerification.body":    "Follow this link to verify your email address: <a href=\"{0}\">{0}</a>. If you did not ask to verify this address, you can ignore this email. Thanks, your {1} team.",
    "emails.passwordReset.subject":            "Reset your password for {0}",
    "emails.passwordReset.body":               "Hello, follow this link to reset your {0} password for your {1} account: <a href=\"{2}\">{2}</a>. If you did not ask to reset your password, you can ignore this email. Thanks, your {0} team.",
    "emails.invitation.subject":               "You were invited to {0}",
    "emails.invitation.body":                  "Hello, you were invited to join {0}. An account was created for {1}. Follow this link to set your password and sign in: <a href=\"{2}\">{2}</a>. Thanks, your {0} team.",
}

// Is reports whether a message code exists in the table.
func Is(code string) bool {
    _, ok := messages[code]
    return ok
}

// Get resolves a message code template and substitutes positional arguments.
// Unknown codes are returned verbatim so callers can pass literal text.
func Get(code string, args ...string) string {
    tmpl, ok := messages[code]
    if !ok {
        return code
    }
    for i, a := range args {
        tmpl = strings.ReplaceAll(tmpl, fmt.Sprintf("{%d}", i), a)
    }
    return tmpl
}
