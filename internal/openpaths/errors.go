package openpaths

import (
	"errors"
	"fmt"
	"net/http"
)

var (
	// ErrNetwork covers transport failures and non-success responses that
	// outlived the retry budget.
	ErrNetwork = errors.New("openpaths network error")
	// ErrAuth covers signing failures and responses rejecting the credentials.
	ErrAuth = errors.New("openpaths auth error")
	// ErrDecode covers responses that are not the expected JSON shape.
	ErrDecode = errors.New("openpaths decode error")
)

// StatusError is a non-success response from the API.
type StatusError struct {
	StatusCode int
	Body       string
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("unexpected status %d: %s", e.StatusCode, e.Body)
}

// Unwrap classifies the status: 401 and 403 are auth failures, anything else
// is reported as a network failure.
func (e *StatusError) Unwrap() error {
	if e.StatusCode == http.StatusUnauthorized || e.StatusCode == http.StatusForbidden {
		return ErrAuth
	}
	return ErrNetwork
}
