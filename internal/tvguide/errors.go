// SPDX-License-Identifier: MIT

package tvguide

import (
	"errors"
	"fmt"
)

var (
	// Sentinel errors for errors.Is checks at the boundary.
	ErrTimeout = errors.New("tvguide: request timed out")
	ErrServer  = errors.New("tvguide: upstream server error (5xx)")
	ErrClient  = errors.New("tvguide: client error or malformed response")
	ErrNetwork = errors.New("tvguide: host unreachable or transport failure")
)

// Kind tags a fetch failure. The retry loop's policy is a pure function of
// this tag: only ClientError is terminal.
type Kind int

const (
	KindTimeout Kind = iota + 1
	KindServerError
	KindClientError
	KindNetworkError
)

func (k Kind) String() string {
	switch k {
	case KindTimeout:
		return "timeout"
	case KindServerError:
		return "server_error"
	case KindClientError:
		return "client_error"
	case KindNetworkError:
		return "network_error"
	default:
		return "unknown"
	}
}

// Retryable reports whether a failure of this kind is transient.
func (k Kind) Retryable() bool {
	return k != KindClientError
}

func (k Kind) sentinel() error {
	switch k {
	case KindTimeout:
		return ErrTimeout
	case KindServerError:
		return ErrServer
	case KindClientError:
		return ErrClient
	default:
		return ErrNetwork
	}
}

// FetchError is a rich error type that wraps the sentinel errors with the
// failing unit, attempt count and HTTP status where applicable.
type FetchError struct {
	Kind     Kind
	Unit     Unit
	Attempts int
	Status   int   // HTTP status, 0 if the request never got a response
	Err      error // nested lower-level error (e.g. net.Error)
}

func (e *FetchError) Error() string {
	msg := fmt.Sprintf("tvguide: %s: %v", e.Unit, e.Kind.sentinel())
	if e.Status > 0 {
		msg = fmt.Sprintf("%s (HTTP %d)", msg, e.Status)
	}
	if e.Attempts > 0 {
		msg = fmt.Sprintf("%s after %d attempt(s)", msg, e.Attempts)
	}
	if e.Err != nil {
		msg = fmt.Sprintf("%s: %v", msg, e.Err)
	}
	return msg
}

func (e *FetchError) Unwrap() error {
	return e.Kind.sentinel()
}
