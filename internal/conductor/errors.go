package conductor

import "errors"

// Kind classifies conductor failures for the transport layers.
type Kind string

const (
	KindNotFound     Kind = "not_found"
	KindInvalidState Kind = "invalid_state"
	KindUpstream     Kind = "upstream_failure"
	KindUnauthorized Kind = "unauthorized"
)

// Error is a conductor failure with a stable taxonomy kind. Upstream
// failures are retryable: the attempted turn was not committed.
type Error struct {
	Kind    Kind
	Message string
	Err     error
}

func (e *Error) Error() string {
	if e.Err != nil {
		return e.Message + ": " + e.Err.Error()
	}
	return e.Message
}

func (e *Error) Unwrap() error {
	return e.Err
}

func notFound(message string) *Error {
	return &Error{Kind: KindNotFound, Message: message}
}

func invalidState(message string) *Error {
	return &Error{Kind: KindInvalidState, Message: message}
}

func upstream(message string, err error) *Error {
	return &Error{Kind: KindUpstream, Message: message, Err: err}
}

// KindOf extracts the taxonomy kind, or KindUpstream for untyped errors.
func KindOf(err error) Kind {
	var cerr *Error
	if errors.As(err, &cerr) {
		return cerr.Kind
	}
	return KindUpstream
}
