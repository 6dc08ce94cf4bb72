package apiclient

import (
	"errors"
	"net/http"
)

var (
	ErrUnauthorized = errors.New("unauthorized")
	ErrValidation   = errors.New("request rejected")
	ErrServer       = errors.New("server error")
	ErrTransport    = errors.New("transport failure")
	ErrUnexpected   = errors.New("unexpected response status")

	// ErrTokenUnavailable is returned when the token source fails.
	ErrTokenUnavailable = errors.New("failed to read access token")
	// ErrEncodeRequest is returned when the request body cannot be marshaled.
	ErrEncodeRequest = errors.New("failed to encode request body")
	// ErrDecodeResponse is returned when a 2xx body does not match the target.
	ErrDecodeResponse = errors.New("failed to decode response body")
)

// StatusTransport is the Status of an Error caused by a transport failure.
const StatusTransport = 0

const (
	defaultMessage   = "An error occurred"
	transportMessage = "Network error: unable to reach the server"
)

// Kind classifies an Error.
type Kind int

const (
	KindUnexpected Kind = iota
	KindTransport
	KindAuthExpired
	KindValidation
	KindServer
)

func (k Kind) String() string {
	switch k {
	case KindTransport:
		return "transport"
	case KindAuthExpired:
		return "auth_expired"
	case KindValidation:
		return "validation"
	case KindServer:
		return "server"
	default:
		return "unexpected"
	}
}

// Error is returned for non-2xx responses and transport failures.
type Error struct {
	Message string
	// Status is the HTTP status code, or StatusTransport.
	Status int
	// Payload is the decoded JSON body, the raw body text, or nil.
	Payload any

	cause error
}

func (e *Error) Error() string {
	return e.Message
}

// Kind classifies the error by status.
func (e *Error) Kind() Kind {
	switch {
	case e.Status == StatusTransport:
		return KindTransport
	case e.Status == http.StatusUnauthorized:
		return KindAuthExpired
	case e.Status >= 400 && e.Status < 500:
		return KindValidation
	case e.Status >= 500:
		return KindServer
	default:
		return KindUnexpected
	}
}

// Unwrap exposes the kind sentinel and, for transport failures, the cause.
func (e *Error) Unwrap() []error {
	var kind error
	switch e.Kind() {
	case KindTransport:
		kind = ErrTransport
	case KindAuthExpired:
		kind = ErrUnauthorized
	case KindValidation:
		kind = ErrValidation
	case KindServer:
		kind = ErrServer
	default:
		kind = ErrUnexpected
	}
	if e.cause != nil {
		return []error{kind, e.cause}
	}
	return []error{kind}
}

// AsError extracts an *Error from err's chain.
func AsError(err error) (*Error, bool) {
	var apiErr *Error
	ok := errors.As(err, &apiErr)
	return apiErr, ok
}

// StatusOf returns the HTTP status of an *Error in err's chain, or -1.
func StatusOf(err error) int {
	if apiErr, ok := AsError(err); ok {
		return apiErr.Status
	}
	return -1
}

func IsUnauthorized(err error) bool { return errors.Is(err, ErrUnauthorized) }
func IsValidation(err error) bool   { return errors.Is(err, ErrValidation) }
func IsServer(err error) bool       { return errors.Is(err, ErrServer) }
func IsTransport(err error) bool    { return errors.Is(err, ErrTransport) }
