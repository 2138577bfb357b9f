package restrouter

import (
	"errors"
	"fmt"
	"net/http"
)

// Sentinel errors.
var (
	ErrInvalidAcceptHeader = errors.New("invalid accept header")
	ErrCannotSerialize     = errors.New("cannot serialize")
	ErrSerializerMissing   = errors.New("serializer missing")
	ErrNoRoute             = errors.New("no route")
	ErrUnknownDefault      = errors.New("default media type not registered")
	ErrHandlerExited       = errors.New("handler exited without returning")
)

// NegotiationKind classifies a failed negotiation.
type NegotiationKind int

// Negotiation failure kinds.
const (
	InvalidAcceptHeader NegotiationKind = iota + 1
	CannotSerialize
)

func (k NegotiationKind) String() string {
	switch k {
	case InvalidAcceptHeader:
		return "invalid_accept_header"
	case CannotSerialize:
		return "cannot_serialize"
	default:
		return "unknown"
	}
}

// NegotiationError is returned by Negotiate when no media type can be chosen.
type NegotiationError struct {
	Kind   NegotiationKind
	Accept string
}

// Error returns a description including the offending Accept value, if any.
func (e *NegotiationError) Error() string {
	base := e.sentinel().Error()
	if e.Accept == "" {
		return base
	}
	return fmt.Sprintf("%s: %q", base, e.Accept)
}

// Is reports whether target is the sentinel matching the error kind.
func (e *NegotiationError) Is(target error) bool {
	return target == e.sentinel()
}

// StatusCode returns 400 for a malformed Accept header and 406 otherwise.
func (e *NegotiationError) StatusCode() int {
	if e.Kind == InvalidAcceptHeader {
		return http.StatusBadRequest
	}
	return http.StatusNotAcceptable
}

func (e *NegotiationError) sentinel() error {
	if e.Kind == InvalidAcceptHeader {
		return ErrInvalidAcceptHeader
	}
	return ErrCannotSerialize
}

// PanicError is the fault reported for a handler that panicked.
type PanicError struct {
	Value any
	Stack []byte
}

func (e *PanicError) Error() string { return fmt.Sprintf("handler panic: %v", e.Value) }

// StatusCoder is implemented by errors that carry an HTTP status code.
type StatusCoder interface {
	StatusCode() int
}

// ProblemDetail is an RFC 9457 problem details body.
//
//nolint:errname // RFC 9457 standard name
type ProblemDetail struct {
	Type     string `json:"type,omitempty" xml:"type,omitempty" yaml:"type,omitempty" cbor:"type,omitempty"`
	Title    string `json:"title,omitempty" xml:"title,omitempty" yaml:"title,omitempty" cbor:"title,omitempty"`
	Status   int    `json:"status" xml:"status" yaml:"status" cbor:"status"`
	Detail   string `json:"detail,omitempty" xml:"detail,omitempty" yaml:"detail,omitempty" cbor:"detail,omitempty"`
	Instance string `json:"instance,omitempty" xml:"instance,omitempty" yaml:"instance,omitempty" cbor:"instance,omitempty"`
}

// Error returns the detail message (or title if detail is empty).
func (p *ProblemDetail) Error() string {
	if p.Detail != "" {
		return p.Detail
	}
	return p.Title
}

// StatusCode returns the HTTP status code.
func (p *ProblemDetail) StatusCode() int { return p.Status }

// HTTPError is an error with an HTTP status code.
type HTTPError struct {
	Status  int
	Message string
}

func (e *HTTPError) Error() string { return e.Message }

// StatusCode returns the HTTP status code.
func (e *HTTPError) StatusCode() int { return e.Status }

// Error returns an error with the given HTTP status code and message.
func Error(status int, message string) error {
	return &HTTPError{Status: status, Message: message}
}

// Errorf returns a formatted error with the given HTTP status code.
func Errorf(status int, format string, args ...any) error {
	return &HTTPError{Status: status, Message: fmt.Sprintf(format, args...)}
}

// ErrorStatus extracts the HTTP status code from an error. Returns
// http.StatusInternalServerError if the error does not implement StatusCoder.
func ErrorStatus(err error) int {
	var sc StatusCoder
	if errors.As(err, &sc) {
		return sc.StatusCode()
	}
	return http.StatusInternalServerError
}
