package types

import (
	"errors"
	"fmt"
	"strings"
)

// Kind is a stable category for programmatic error handling.
//
// Callers should branch on Kind rather than matching error strings.
// Error() strings are intended for humans and may evolve; use errors.As
// to extract *Error for structured handling.
type Kind string

const (
	// KindValidation covers semantically invalid location or media input:
	// out-of-range ordinates, unclosed polygon rings, media bytes that do
	// not match their declared MIME type.
	KindValidation Kind = "validation"

	// KindUnsupportedFormat covers lookups for a format identifier or MIME
	// type that no registered extension handles.
	KindUnsupportedFormat Kind = "unsupported_format"

	// KindDetection covers input whose format could not be auto-detected.
	KindDetection Kind = "detection"

	// KindSigning covers EIP-712 signing failures.
	KindSigning Kind = "signing"

	// KindRegistration covers onchain registrar failures.
	KindRegistration Kind = "registration"

	// KindIndexer covers indexer API failures.
	KindIndexer Kind = "indexer"

	// KindConfig covers configuration parsing and validation failures.
	KindConfig Kind = "config"

	// KindInternal covers invariant violations inside the SDK itself.
	KindInternal Kind = "internal"
)

// Error is the SDK's structured error type.
//
// Format names the offending format identifier or MIME type when one is
// known. Supported carries the identifiers that were registered at the time
// of an unsupported-format failure so callers can report alternatives.
type Error struct {
	Kind      Kind
	Op        string
	Format    string
	Supported []string
	Message   string
	Cause     error
}

func (e *Error) Error() string {
	if e == nil {
		return "<nil>"
	}
	var b strings.Builder
	if e.Op != "" {
		b.WriteString(e.Op)
		b.WriteString(": ")
	}
	b.WriteString(e.Message)
	if e.Format != "" {
		fmt.Fprintf(&b, " (format %q)", e.Format)
	}
	if e.Cause != nil {
		b.WriteString(": ")
		b.WriteString(e.Cause.Error())
	}
	return b.String()
}

func (e *Error) Unwrap() error {
	if e == nil {
		return nil
	}
	return e.Cause
}

// NewError builds a structured error without a cause.
func NewError(kind Kind, op, message string) *Error {
	return &Error{Kind: kind, Op: op, Message: message}
}

// WrapError builds a structured error around a cause. A nil cause is allowed.
func WrapError(kind Kind, op, message string, cause error) *Error {
	return &Error{Kind: kind, Op: op, Message: message, Cause: cause}
}

// NewFormatError builds a structured error scoped to one format extension.
func NewFormatError(kind Kind, format, message string) *Error {
	return &Error{Kind: kind, Format: format, Message: message}
}

// WrapFormatError builds a format-scoped error around a cause.
func WrapFormatError(kind Kind, format, message string, cause error) *Error {
	return &Error{Kind: kind, Format: format, Message: message, Cause: cause}
}

// NewUnsupportedFormat reports that no registered extension handles format.
// The supported list is captured as-is; callers pass the registry's current
// listing so the message stays truthful under concurrent registration.
func NewUnsupportedFormat(op, format string, supported []string) *Error {
	return &Error{
		Kind:      KindUnsupportedFormat,
		Op:        op,
		Format:    format,
		Supported: supported,
		Message:   fmt.Sprintf("unsupported location format %q, supported formats: %s", format, strings.Join(supported, ", ")),
	}
}

// NewUnsupportedMediaType reports that no registered extension claims mime.
func NewUnsupportedMediaType(op, mime string, supported []string) *Error {
	return &Error{
		Kind:      KindUnsupportedFormat,
		Op:        op,
		Format:    mime,
		Supported: supported,
		Message:   fmt.Sprintf("unsupported media type %q, supported types: %s", mime, strings.Join(supported, ", ")),
	}
}

// IsKind reports whether err is (or wraps) a *Error with the given Kind.
func IsKind(err error, kind Kind) bool {
	var e *Error
	if !errors.As(err, &e) {
		return false
	}
	return e.Kind == kind
}

// ErrorKind returns the Kind of a structured error, or "" when err does not
// wrap one.
func ErrorKind(err error) Kind {
	var e *Error
	if !errors.As(err, &e) {
		return ""
	}
	return e.Kind
}
