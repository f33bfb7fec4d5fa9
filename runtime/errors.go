package cbor

import (
	"errors"
	"fmt"
	"strconv"
)

const resumableDefault = false

var (
	// ErrShortBytes is returned by the internal head reader when the slice
	// being decoded is too short to contain the item it claims to encode.
	// DecodeCBOR does not return it: the caller receives an item with
	// status INVALID instead.
	ErrShortBytes error = errShort{}

	// ErrRecursion describes reaching the maximum recursion depth. The
	// decoders report that case as an item with status INVALID and do not
	// return this value.
	ErrRecursion error = errRecursion{}

	// ErrInvalidUTF8 describes a text string whose bytes are not valid UTF-8.
	// The decoders report that case through the item's decode status and do
	// not return this value.
	ErrInvalidUTF8 = errors.New("cbor: invalid UTF-8 in text string")

	// ErrIllegalStatusTransition is returned by DataItem.SetDecodeStatus when
	// the caller attempts to move a failed item back to a non-failure status,
	// per the monotonicity invariant of spec §3.1(a).
	ErrIllegalStatusTransition = errors.New("cbor: decode status has already been assigned to a failure condition")
)

// Error is the interface satisfied by every error this package originates
// from a wire-level decode. Resumable distinguishes conditions where the
// caller can still inspect a partial DataItem carrying a failure decode
// status (true) from a broken stream where no item was produced (false).
type Error interface {
	error
	Resumable() bool
}

// contextError allows an Error to be enhanced with a dotted schema path.
// withContext must not mutate the receiver; it returns a new error value.
type contextError interface {
	Error
	withContext(ctx string) error
}

// WrapError attaches a dotted schema path to an error for use in
// InvalidSchemaError reporting and warning-sink diagnostics.
func WrapError(err error, path string) error {
	switch e := err.(type) {
	case errShort:
		return e
	case contextError:
		return e.withContext(path)
	default:
		return errWrapped{cause: err, ctx: path}
	}
}

// Cause unwraps an error wrapped by WrapError back to its origin.
func Cause(e error) error {
	if w, ok := e.(errWrapped); ok && w.cause != nil {
		return w.cause
	}
	return e
}

// Resumable reports whether e is a recoverable condition (see Error); it is
// false for a broken stream and for errors that do not implement Error.
func Resumable(e error) bool {
	if e, ok := e.(Error); ok {
		return e.Resumable()
	}
	return resumableDefault
}

func addCtx(ctx, add string) string {
	if ctx == "" {
		return add
	}
	return add + "." + ctx
}

type errWrapped struct {
	cause error
	ctx   string
}

func (e errWrapped) Error() string {
	if e.ctx != "" {
		return e.cause.Error() + " at " + e.ctx
	}
	return e.cause.Error()
}

func (e errWrapped) Resumable() bool {
	if e, ok := e.cause.(Error); ok {
		return e.Resumable()
	}
	return resumableDefault
}

func (e errWrapped) Unwrap() error { return e.cause }

type errShort struct{}

func (e errShort) Error() string   { return "cbor: too few bytes remain to decode item" }
func (e errShort) Resumable() bool { return false }

type errRecursion struct{}

func (e errRecursion) Error() string   { return "cbor: recursion limit reached" }
func (e errRecursion) Resumable() bool { return false }

// InvalidAdditionalInfoError is returned when an initial byte's
// additional-info field is one of the three reserved values 28..30.
type InvalidAdditionalInfoError struct {
	Major uint8
	Info  uint8
}

func (i InvalidAdditionalInfoError) Error() string {
	return "cbor: reserved additional-info value " + strconv.Itoa(int(i.Info)) +
		" for major type " + strconv.Itoa(int(i.Major))
}

func (i InvalidAdditionalInfoError) Resumable() bool { return false }

// ErrUnsupportedType reports a value outside a limit this implementation
// enforces. Factory.CreateSimple returns it for a simple value outside the
// unassigned range. The decoders do not return it: they report their own
// limits (spec §4.1.2's "length limits", and the negative-integer domain
// restriction documented in SPEC_FULL.md §9) as an UNSUPPORTED decode
// status on the returned item.
type ErrUnsupportedType struct {
	Reason string
	ctx    string
}

func (e *ErrUnsupportedType) Error() string {
	out := "cbor: unsupported: " + e.Reason
	if e.ctx != "" {
		out += " at " + e.ctx
	}
	return out
}

func (e *ErrUnsupportedType) Resumable() bool { return true }

func (e *ErrUnsupportedType) withContext(ctx string) error {
	o := *e
	o.ctx = addCtx(o.ctx, ctx)
	return &o
}

// InvalidSchemaError is raised by the schema builder when a schema document
// fails to parse. It carries the dotted path to the offending node, per
// spec §4.3.6 and §7's "programmer-visible configuration, not runtime data".
type InvalidSchemaError struct {
	Path    string
	Message string
}

func (e *InvalidSchemaError) Error() string {
	return e.Path + " : " + e.Message
}

func invalidSchemaf(path, format string, args ...any) error {
	return &InvalidSchemaError{Path: path, Message: fmt.Sprintf(format, args...)}
}
