package api

import (
	"errors"
	"fmt"
)

type Kind int

const (
	// KindNetwork covers connection failures before any response arrived.
	KindNetwork Kind = iota + 1
	// KindAuth covers invalid credentials and rejected tokens.
	KindAuth
	// KindValidation covers requests the backend refused as malformed.
	KindValidation
	// KindNotFound covers empty lookups (no profiles, no data).
	KindNotFound
	// KindServer covers everything the backend got wrong on its own.
	KindServer
)

func (k Kind) String() string {
	switch k {
	case KindNetwork:
		return "network"
	case KindAuth:
		return "auth"
	case KindValidation:
		return "validation"
	case KindNotFound:
		return "not_found"
	case KindServer:
		return "server"
	}
	return "unknown"
}

// Error is the tagged failure every endpoint returns, so callers branch on
// Kind instead of sniffing message strings.
type Error struct {
	Kind    Kind
	Status  int
	Message string
	cause   error
}

func (e *Error) Error() string {
	if e.Message != "" {
		return fmt.Sprintf("api: %s: %s", e.Kind, e.Message)
	}
	if e.cause != nil {
		return fmt.Sprintf("api: %s: %v", e.Kind, e.cause)
	}
	return fmt.Sprintf("api: %s", e.Kind)
}

func (e *Error) Unwrap() error { return e.cause }

// IsKind reports whether err is, or wraps, an *Error of the given kind.
func IsKind(err error, kind Kind) bool {
	var apiErr *Error
	if !errors.As(err, &apiErr) {
		return false
	}
	return apiErr.Kind == kind
}

func networkError(cause error) *Error {
	return &Error{
		Kind:    KindNetwork,
		Message: "Network error. Please check your connection.",
		cause:   cause,
	}
}

func statusError(status int, message string) *Error {
	kind := KindServer
	switch {
	case status == 400 || status == 422:
		kind = KindValidation
	case status == 401 || status == 403:
		kind = KindAuth
	case status == 404:
		kind = KindNotFound
	}
	if message == "" {
		message = "Request failed"
	}
	return &Error{Kind: kind, Status: status, Message: message}
}
