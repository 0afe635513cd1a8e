package domain

import "errors"

var (
	// ErrNotFound indicates the requested entity does not exist.
	ErrNotFound = errors.New("not found")
	// ErrUnauthenticated indicates no user identity is attached to the
	// current session.
	ErrUnauthenticated = errors.New("unauthenticated")
)

// UserError is a rejection validated by the commerce backend (for example
// an unavailable variant). Its message is surfaced to the consumer
// verbatim, unlike transport failures.
type UserError struct {
	Message string
}

func (e *UserError) Error() string {
	return e.Message
}

// IsUserError reports whether err carries a backend-validated rejection
// and returns its message when it does.
func IsUserError(err error) (string, bool) {
	var ue *UserError
	if errors.As(err, &ue) {
		return ue.Message, true
	}
	return "", false
}
