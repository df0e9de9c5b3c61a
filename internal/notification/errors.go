package notification

// The service layer fails with one of the typed errors below; the HTTP
// boundary maps the type to a status code (400/403/404) and anything else to
// 500.  Each error carries the message code it was built from so tests can
// assert on the exact failure mode instead of matching message text.

// ValidationError reports bad input or a business-rule violation (HTTP 400):
// duplicate email, disabled or unverified account, wrong password, invalid or
// expired token, same-password-on-update.
type ValidationError struct {
    Code    string
    Message string
}

// NewValidationError builds a ValidationError from a message code.  Codes
// missing from the table fall back to the generic validation message.
func NewValidationError(code string) *ValidationError {
    msg := Get("errors.validation.message")
    if Is(code) {
        msg = Get(code)
    }
    return &ValidationError{Code: code, Message: msg}
}

func (e *ValidationError) Error() string { return e.Message }

// ForbiddenError reports an unauthenticated or unauthorized actor (HTTP 403).
type ForbiddenError struct {
    Code    string
    Message string
}

// NewForbiddenError builds a ForbiddenError from a message code; an empty
// code yields the generic forbidden message.
func NewForbiddenError(code string) *ForbiddenError {
    msg := Get("errors.forbidden.message")
    if code != "" && Is(code) {
        msg = Get(code)
    }
    return &ForbiddenError{Code: code, Message: msg}
}

func (e *ForbiddenError) Error() string { return e.Message }

// NotFoundError reports an absent referenced entity (HTTP 404).
type NotFoundError struct {
    Code    string
    Message string
}

// NewNotFoundError builds a NotFoundError from a message code; an empty code
// yields the generic not-found message.
func NewNotFoundError(code string) *NotFoundError {
    msg := Get("errors.notFound.message")
    if code != "" && Is(code) {
        msg = Get(code)
    }
    return &NotFoundError{Code: code, Message: msg}
}

func (e *NotFoundError) Error() string { return e.Message }
