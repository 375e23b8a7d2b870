package dashboard

import (
	"errors"
	"fmt"
)

// ErrNoSession is returned when the backend reports no signed-in user.
var ErrNoSession = errors.New("no session")

// ErrSignInRequired is returned by Init when the caller must sign in first.
var ErrSignInRequired = errors.New("sign in required")

// APIError is a non-2xx answer of the backend.
type APIError struct {
	Status  int
	Message string
}

func (e *APIError) Error() string {
	if e.Message == "" {
		return fmt.Sprintf("api error: status %d", e.Status)
	}
	return fmt.Sprintf("api error: status %d: %s", e.Status, e.Message)
}

// IsStatus reports whether err is an APIError with the given status.
func IsStatus(err error, status int) bool {
	var ae *APIError
	return errors.As(err, &ae) && ae.Status == status
}

// OperationError names the panel operation that failed. The panel keeps
// showing its previous list.
type OperationError struct {
	Op  string
	Err error
}

func (e *OperationError) Error() string { return e.Op + ": " + e.Err.Error() }
func (e *OperationError) Unwrap() error { return e.Err }

// DeniedError carries the reason shown on the access denied screen.
type DeniedError struct {
	Reason string
}

func (e *DeniedError) Error() string { return "access denied: " + e.Reason }
