package service

// Domain error taxonomy. Every error the services return to handlers is one
// of these four types; each carries a message that is safe to show to the
// client. Handlers map them to 400/401/404/500 with errors.As and never
// leak the wrapped cause.

import "fmt"

// ValidationError rejects bad input or a policy violation. HTTP 400.
type ValidationError struct {
	Message string
}

func (e *ValidationError) Error() string { return e.Message }

// AuthError rejects bad credentials or a missing/invalid token without
// revealing which part failed. HTTP 401.
type AuthError struct {
	Message string
}

func (e *AuthError) Error() string { return e.Message }

// NotFoundError covers missing resources, including deliberate masking of
// cross-user access. HTTP 404.
type NotFoundError struct {
	Message string
}

func (e *NotFoundError) Error() string { return e.Message }

// InternalError wraps an unexpected failure behind a generic message.
// HTTP 500; the cause is for logs only.
type InternalError struct {
	Message string
	Err     error
}

func (e *InternalError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return e.Message
}

func (e *InternalError) Unwrap() error { return e.Err }

func validationErrf(format string, args ...any) *ValidationError {
	return &ValidationError{Message: fmt.Sprintf(format, args...)}
}

func notFoundErrf(format string, args ...any) *NotFoundError {
	return &NotFoundError{Message: fmt.Sprintf(format, args...)}
}

func internalErr(msg string, err error) *InternalError {
	return &InternalError{Message: msg, Err: err}
}
