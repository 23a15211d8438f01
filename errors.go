package filetext

import "fmt"

// FailureKind is the closed error taxonomy. Every failed extraction maps to
// exactly one kind; nothing escapes the engine untyped.
type FailureKind string

const (
	FailNotFound          FailureKind = "not_found"
	FailNotAFile          FailureKind = "not_a_file"
	FailTooLarge          FailureKind = "too_large"
	FailUnsupported       FailureKind = "unsupported"
	FailMissingCapability FailureKind = "missing_capability"
	FailDecode            FailureKind = "decode"
	FailMalformed         FailureKind = "malformed"
	FailConversion        FailureKind = "conversion"
	FailInternal          FailureKind = "internal"
)

// Error is a typed extraction failure.
type Error struct {
	Kind    FailureKind
	Message string
	Err     error
}

func (e *Error) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s: %v", e.Kind, e.Message, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Kind, e.Message)
}

func (e *Error) Unwrap() error { return e.Err }

func failf(kind FailureKind, format string, args ...any) *Error {
	return &Error{Kind: kind, Message: fmt.Sprintf(format, args...)}
}

func wrapf(kind FailureKind, err error, format string, args ...any) *Error {
	return &Error{Kind: kind, Message: fmt.Sprintf(format, args...), Err: err}
}
