package sales

import (
	"errors"
	"fmt"
)

// Kind classifies a sales API failure. The checkout coordinator forwards
// these untouched; only the UI layer decides what to show for each kind.
type Kind string

const (
	KindInvalidRequest  Kind = "invalid_request"
	KindUnauthenticated Kind = "unauthenticated"
	KindNotFound        Kind = "not_found"
	KindServer          Kind = "server_error"
	KindNetwork         Kind = "network_error"
)

// APIError is a sales API failure with the verbatim response body retained.
type APIError struct {
	Kind   Kind
	Status int
	Body   string
	cause  error
}

func (e *APIError) Error() string {
	if e.cause != nil {
		return fmt.Sprintf("sales api %s: %v", e.Kind, e.cause)
	}
	return fmt.Sprintf("sales api %s: status %d", e.Kind, e.Status)
}

func (e *APIError) Unwrap() error { return e.cause }

// IsKind reports whether err is an APIError of the given kind.
func IsKind(err error, kind Kind) bool {
	var apiErr *APIError
	return errors.As(err, &apiErr) && apiErr.Kind == kind
}
