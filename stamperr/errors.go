// Package stamperr holds the error kinds shared by the stamp packages.
// Callers match them with errors.Is.
package stamperr

// Compilation time check for interface implementation.
var _ error = Error("") //nolint: errcheck

const (
	// ErrInvalidField shows that a calendar or time-of-day field is outside
	// of its domain, e.g. month 13 or February 30.
	ErrInvalidField Error = "invalid field"

	// ErrArithmeticOverflow shows that a checked 64-bit integer operation
	// would overflow.
	ErrArithmeticOverflow Error = "arithmetic overflow"

	// Text codec related errors.

	// ErrMalformedSyntax shows that the text is structurally not a timestamp.
	ErrMalformedSyntax Error = "malformed syntax"

	// ErrFieldOutOfRange shows that the text is well-formed but one of
	// its fields is out of range.
	ErrFieldOutOfRange Error = "field out of range"

	// ErrTrailingCharacters shows that a valid timestamp is followed by
	// unexpected text.
	ErrTrailingCharacters Error = "trailing characters"

	// ErrClockUnavailable indicates that a wall-clock or monotonic clock
	// source could not be read.
	ErrClockUnavailable Error = "clock unavailable"

	// ErrInvalidTransition shows that a stopwatch operation is not allowed
	// in the current state.
	ErrInvalidTransition Error = "invalid state transition"

	// Service level errors.

	// ErrInvalidInput shows that input data is invalid.
	ErrInvalidInput Error = "invalid input"

	// ErrNotFound shows that requested resource has not been found.
	ErrNotFound Error = "not found"
)

// Error represents stamp errors and implements go builtin error interface.
type Error string

func (e Error) Error() string { return string(e) }
