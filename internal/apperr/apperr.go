package apperr

import (
	"errors"
	"net/http"
)

// Kind is the closed set of failure categories surfaced by the HTTP layer.
type Kind int

const (
	KindUnknown Kind = iota
	KindUpstreamAuth
	KindUpstreamRequest
	KindPersistence
	KindValidation
)

func (k Kind) String() string {
	switch k {
	case KindUpstreamAuth:
		return "upstream_auth"
	case KindUpstreamRequest:
		return "upstream_request"
	case KindPersistence:
		return "persistence"
	case KindValidation:
		return "validation"
	default:
		return "unknown"
	}
}

// Status maps a kind to the HTTP status returned to callers.
func (k Kind) Status() int {
	switch k {
	case KindUpstreamAuth, KindUpstreamRequest:
		return http.StatusBadGateway
	case KindValidation:
		return http.StatusBadRequest
	default:
		return http.StatusInternalServerError
	}
}

// Error carries a Kind plus the operation that failed.
// Message is safe to show to clients; Err is the raw cause.
type Error struct {
	Kind    Kind
	Op      string
	Message string
	Err     error
}

func (e *Error) Error() string {
	msg := e.Message
	if msg == "" && e.Err != nil {
		msg = e.Err.Error()
	}
	if e.Op == "" {
		return msg
	}
	if e.Err != nil && e.Message != "" {
		return e.Op + ": " + e.Message + ": " + e.Err.Error()
	}
	return e.Op + ": " + msg
}

func (e *Error) Unwrap() error { return e.Err }

func newErr(k Kind, op string, err error) error {
	if err == nil {
		return nil
	}
	return &Error{Kind: k, Op: op, Err: err}
}

func UpstreamAuth(op string, err error) error    { return newErr(KindUpstreamAuth, op, err) }
func UpstreamRequest(op string, err error) error { return newErr(KindUpstreamRequest, op, err) }
func Persistence(op string, err error) error     { return newErr(KindPersistence, op, err) }

// Validation builds a client-facing validation failure.
func Validation(op, message string) error {
	return &Error{Kind: KindValidation, Op: op, Message: message}
}

// KindOf returns the kind of the first *Error in the chain.
func KindOf(err error) Kind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return KindUnknown
}

// Status returns the HTTP status for err; unknown errors are 500.
func Status(err error) int {
	return KindOf(err).Status()
}

// PublicMessage returns the client-facing message for validation errors
// and the raw error text for everything else.
func PublicMessage(err error) string {
	var e *Error
	if errors.As(err, &e) && e.Kind == KindValidation && e.Message != "" {
		return e.Message
	}
	if errors.As(err, &e) && e.Err != nil {
		return e.Err.Error()
	}
	return err.Error()
}
