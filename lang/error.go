package lang

import (
	"errors"
	"log/slog"
	"strings"
)

// Predefined errors (sentinel values).
//
// Every error returned by this module matches exactly one of these with
// [errors.Is], no matter how many attributes or causes were attached to it.
var (
	ErrDocument          = NewError("invalid document")
	ErrSchema            = NewError("invalid document schema")
	ErrLookup            = NewError("lookup failed")
	ErrSelfReference     = NewError("formula references itself")
	ErrCircularReference = NewError("circular reference")
	ErrIllegalExpression = NewError("illegal expression")
	ErrSyntax            = NewError("malformed expression")
	ErrMissingInput      = NewError("missing input")
	ErrNonConvergence    = NewError("solve did not converge")
	ErrType              = NewError("type mismatch")
	ErrEvaluate          = NewError("evaluation failed")
	ErrShape             = NewError("shape mismatch")
)

// Error represents an error with optional structured logging attributes.
// It implements both error and slog.LogValuer interfaces.
type Error struct {
	kind  *Error      // Sentinel this error derives from (for errors.Is)
	msg   string      //
	err   error       // Wrapped error (for errors.Unwrap)
	attrs []slog.Attr // Attributes for structured logging
}

// NewError creates a new sentinel Error with a message.
func NewError(msg string) *Error {
	e := &Error{msg: msg}
	e.kind = e

	return e
}

// WrapError wraps a standard error into an Error.
// If err already is (or wraps) an *Error, that value is returned.
func WrapError(err error) *Error {
	var ee *Error
	if errors.As(err, &ee) {
		return ee
	}

	e := &Error{err: err}
	e.kind = e

	return e
}

// Error implements the error interface.
func (e *Error) Error() string {
	// Build error message using the first available format,
	// depending on which fields are set:
	//
	//   1. "<msg>: <err>" // base and wrapped error both set
	//   2. "<msg>"        // wrapped error is nil
	//   3. "<err>"        // base error message is empty
	//   4. ""             // no fields are set
	//
	// Attributes, when present, follow in brackets.
	part := make([]string, 0, 2)

	if e.msg != "" {
		part = append(part, e.msg)
	}

	if e.err != nil {
		part = append(part, e.err.Error())
	}

	s := strings.Join(part, ": ")

	if len(e.attrs) > 0 {
		attr := make([]string, len(e.attrs))
		for i, a := range e.attrs {
			attr[i] = a.String()
		}

		s += " [" + strings.Join(attr, " ") + "]"
	}

	return s
}

// Unwrap implements error unwrapping for errors.Is/As.
func (e *Error) Unwrap() error { return e.err }

// Is reports whether target is the sentinel e was derived from.
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)

	return ok && t.kind != nil && t.kind == e.kind
}

// LogValue implements slog.LogValuer for rich structured logging.
func (e *Error) LogValue() slog.Value {
	attrs := make([]slog.Attr, 0, len(e.attrs)+2)

	if e.msg != "" {
		attrs = append(attrs, slog.String("error", e.msg))
	}

	if e.err != nil {
		attrs = append(attrs, slog.String("cause", e.err.Error()))
	}

	return slog.GroupValue(append(attrs, e.attrs...)...)
}

// Wrap creates a new Error wrapping another error.
func (e *Error) Wrap(err error) *Error {
	return &Error{
		kind:  e.kind,
		msg:   e.msg,
		err:   err,
		attrs: e.attrs, // Share attrs
	}
}

// With adds attributes to the error for structured logging.
// This creates a new Error instance to maintain immutability.
func (e *Error) With(attrs ...slog.Attr) *Error {
	newAttrs := make([]slog.Attr, len(e.attrs)+len(attrs))
	copy(newAttrs, e.attrs)
	copy(newAttrs[len(e.attrs):], attrs)

	return &Error{
		kind:  e.kind,
		msg:   e.msg,
		err:   e.err,
		attrs: newAttrs,
	}
}

// Attr returns the value of the first attribute with the given key.
func (e *Error) Attr(key string) (slog.Value, bool) {
	for _, a := range e.attrs {
		if a.Key == key {
			return a.Value, true
		}
	}

	return slog.Value{}, false
}

