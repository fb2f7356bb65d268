// Package apperr classifies failures from upstream services and local I/O so that
// callers can pick a retry policy or a user message without inspecting error strings.
package apperr

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"syscall"
)

// Kind is the coarse category of a failure.
type Kind int

const (
	KindUnknown Kind = iota
	KindTimeout
	KindConnectivity
	KindUpstreamHTTP
	KindMalformed
	KindLocalIO
	KindInvalidInput
)

func (k Kind) String() string {
	switch k {
	case KindTimeout:
		return "timeout"
	case KindConnectivity:
		return "connectivity"
	case KindUpstreamHTTP:
		return "upstream_http"
	case KindMalformed:
		return "malformed_response"
	case KindLocalIO:
		return "local_io"
	case KindInvalidInput:
		return "invalid_input"
	default:
		return "unknown"
	}
}

var (
	// ErrMalformed marks a response body that could not be decoded.
	ErrMalformed = errors.New("malformed upstream response")
	// ErrLocalIO marks a failure to read or write a local file.
	ErrLocalIO = errors.New("local i/o failure")
	// ErrInvalidInput marks rejected user input.
	ErrInvalidInput = errors.New("invalid input")
)

// StatusError is returned when an upstream service answers with a non-200 status.
type StatusError struct {
	Service    string
	StatusCode int
	Body       string
}

func (e *StatusError) Error() string {
	if e.Body == "" {
		return fmt.Sprintf("%s API returned status %d", e.Service, e.StatusCode)
	}

	return fmt.Sprintf("%s API returned status %d: %s", e.Service, e.StatusCode, e.Body)
}

// Busy reports whether the upstream signalled it is overloaded (gateway timeout).
func (e *StatusError) Busy() bool {
	return e.StatusCode == http.StatusGatewayTimeout
}

// IsBusy reports whether err carries a busy StatusError.
func IsBusy(err error) bool {
	var se *StatusError
	return errors.As(err, &se) && se.Busy()
}

// Classify maps err to a Kind. Timeouts win over connectivity failures because
// net.OpError can carry either.
func Classify(err error) Kind {
	if err == nil {
		return KindUnknown
	}

	if errors.Is(err, context.DeadlineExceeded) {
		return KindTimeout
	}
	var netErr net.Error
	if errors.As(err, &netErr) && netErr.Timeout() {
		return KindTimeout
	}

	var se *StatusError
	switch {
	case errors.As(err, &se):
		return KindUpstreamHTTP
	case errors.Is(err, ErrMalformed):
		return KindMalformed
	case errors.Is(err, ErrLocalIO):
		return KindLocalIO
	case errors.Is(err, ErrInvalidInput):
		return KindInvalidInput
	}

	var dnsErr *net.DNSError
	var opErr *net.OpError
	if errors.As(err, &dnsErr) || errors.As(err, &opErr) ||
		errors.Is(err, syscall.ECONNREFUSED) || errors.Is(err, syscall.ECONNRESET) ||
		errors.Is(err, syscall.ENETUNREACH) {
		return KindConnectivity
	}

	return KindUnknown
}
