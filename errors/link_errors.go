package errors

import (
	"errors"
	"fmt"
	"net/http"
)

// Kind is the machine readable classification of a linking pipeline failure.
type Kind string

const (
	KindUnauthenticated     Kind = "unauthenticated"
	KindInvalidArgument     Kind = "invalid_argument"
	KindNotFound            Kind = "not_found"
	KindInvalidToken        Kind = "invalid_token"
	KindUpstreamRejected    Kind = "upstream_rejected"
	KindUpstreamUnavailable Kind = "upstream_unavailable"
	KindStorageFailure      Kind = "storage_failure"
	KindInternal            Kind = "internal"
)

// Error is the structured error returned by the linking services and
// serialized as the JSON body of every non-2xx API response.
type Error struct {
	Kind    Kind   `json:"error"`
	Message string `json:"message,omitempty"`
	// UpstreamCode carries the aggregator's own error code (for example
	// INVALID_PUBLIC_TOKEN) when the failure originates upstream. Never
	// carries aggregator secrets.
	UpstreamCode string `json:"upstream_code,omitempty"`

	cause error
}

func (e *Error) Error() string {
	if e.UpstreamCode != "" {
		return fmt.Sprintf("%s: %s (%s)", e.Kind, e.Message, e.UpstreamCode)
	}
	return fmt.Sprintf("%s: %s", e.Kind, e.Message)
}

func (e *Error) Unwrap() error { return e.cause }

// WithCause attaches the underlying error for errors.Is/As chains.
func (e *Error) WithCause(err error) *Error {
	e.cause = err
	return e
}

// HTTPStatus maps the error kind to the status code the API surfaces.
func (e *Error) HTTPStatus() int {
	switch e.Kind {
	case KindUnauthenticated:
		return http.StatusUnauthorized
	case KindInvalidArgument, KindInvalidToken:
		return http.StatusBadRequest
	case KindNotFound:
		return http.StatusNotFound
	case KindUpstreamRejected:
		return http.StatusBadGateway
	case KindUpstreamUnavailable:
		return http.StatusServiceUnavailable
	case KindStorageFailure, KindInternal:
		return http.StatusInternalServerError
	default:
		return http.StatusInternalServerError
	}
}

// KindOf classifies an arbitrary error. Unrecognized errors are internal.
func KindOf(err error) Kind {
	var le *Error
	if errors.As(err, &le) {
		return le.Kind
	}
	return KindInternal
}

func NewUnauthenticated(message string) *Error {
	return &Error{Kind: KindUnauthenticated, Message: message}
}

func NewInvalidArgument(message string) *Error {
	return &Error{Kind: KindInvalidArgument, Message: message}
}

func NewNotFound(message string) *Error {
	return &Error{Kind: KindNotFound, Message: message}
}

// NewInvalidToken covers one-time tokens that are expired, revoked or
// already consumed. Always fatal to the current linking attempt.
func NewInvalidToken(message, upstreamCode string) *Error {
	return &Error{Kind: KindInvalidToken, Message: message, UpstreamCode: upstreamCode}
}

func NewUpstreamRejected(message, upstreamCode string) *Error {
	return &Error{Kind: KindUpstreamRejected, Message: message, UpstreamCode: upstreamCode}
}

func NewUpstreamUnavailable(message string) *Error {
	return &Error{Kind: KindUpstreamUnavailable, Message: message}
}

// NewStorageFailure marks a persistence write that failed after the
// aggregator exchange already succeeded. The external system now believes
// the item is linked while we hold no record of it, so callers must log
// this loudly for reconciliation instead of swallowing it.
func NewStorageFailure(message string) *Error {
	return &Error{Kind: KindStorageFailure, Message: message}
}

func NewInternal(message string) *Error {
	return &Error{Kind: KindInternal, Message: message}
}
