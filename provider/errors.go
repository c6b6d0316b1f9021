package provider

import (
	"errors"
	"fmt"
	"net/http"

	"concierge/model"
)

// ErrorKind buckets provider failures into the categories the orchestrator
// acts on. Transient errors are retried with backoff; spending and auth
// errors become distinct user-facing notices; everything else is fatal for
// the current exchange.
type ErrorKind string

const (
	KindTransient     ErrorKind = "transient"
	KindFatal         ErrorKind = "fatal"
	KindSpendingLimit ErrorKind = "spending_limit"
	KindAuthRequired  ErrorKind = "auth_required"
)

// Error is the normalized failure shape every provider returns. Status is
// the HTTP status when one was observed (0 for transport-level failures).
// Spending carries the budget snapshot on spending-limit errors from the
// intervised proxy.
type Error struct {
	Provider string
	Status   int
	Kind     ErrorKind
	Message  string
	Spending *model.SpendingInfo
	Err      error
}

func (e *Error) Error() string {
	if e.Status != 0 {
		return fmt.Sprintf("%s: %s (HTTP %d)", e.Provider, e.Message, e.Status)
	}
	return fmt.Sprintf("%s: %s", e.Provider, e.Message)
}

func (e *Error) Unwrap() error { return e.Err }

// Transient reports whether a retry with backoff is worthwhile.
func (e *Error) Transient() bool { return e.Kind == KindTransient }

// classifyStatus maps an HTTP status onto the retry taxonomy. 429 and 503
// are the only statuses worth retrying; 402 is the intervised proxy's
// spending ceiling; 401/403 mean the caller needs (re)authorization.
func classifyStatus(status int) ErrorKind {
	switch status {
	case http.StatusTooManyRequests, http.StatusServiceUnavailable:
		return KindTransient
	case http.StatusPaymentRequired:
		return KindSpendingLimit
	case http.StatusUnauthorized, http.StatusForbidden:
		return KindAuthRequired
	default:
		return KindFatal
	}
}

// AsError unwraps err to a *Error if one is in the chain.
func AsError(err error) (*Error, bool) {
	var pe *Error
	if errors.As(err, &pe) {
		return pe, true
	}
	return nil, false
}

// IsTransient reports whether err should be retried with backoff.
func IsTransient(err error) bool {
	pe, ok := AsError(err)
	return ok && pe.Transient()
}

// IsSpendingLimit reports whether err is the proxy's spending ceiling.
func IsSpendingLimit(err error) bool {
	pe, ok := AsError(err)
	return ok && pe.Kind == KindSpendingLimit
}

// IsAuthRequired reports whether err means the user must (re)authenticate.
func IsAuthRequired(err error) bool {
	pe, ok := AsError(err)
	return ok && pe.Kind == KindAuthRequired
}

// statusError builds the normalized error for a plain HTTP failure.
func statusError(providerName string, status int, message string) *Error {
	return &Error{
		Provider: providerName,
		Status:   status,
		Kind:     classifyStatus(status),
		Message:  message,
	}
}
