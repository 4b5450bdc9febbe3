// Package errs defines the sentinel errors shared by every package in
// this module. Call sites wrap a sentinel with context via
// fmt.Errorf("...: %w", errs.ErrX) so callers can both errors.Is the
// kind and read a specific message.
package errs

import "errors"

var (
	// ErrUnexpectedEOF is returned when a fixed-width read runs past the
	// end of the byte source.
	ErrUnexpectedEOF = errors.New("unexpected end of file")

	// ErrUnknownFileType is returned when a basic header's magic bytes
	// match no recognized file family.
	ErrUnknownFileType = errors.New("unknown file type")

	// ErrUnknownHeaderKind is returned when an extended-header tag is not
	// in the enumerated set of known tags.
	ErrUnknownHeaderKind = errors.New("unknown header kind")

	// ErrInvariantViolation is returned when a parsed header or packet
	// fails a structural invariant (e.g. BytesInDataPackets too small,
	// MinDigital >= MaxDigital, a negative sample count).
	ErrInvariantViolation = errors.New("invariant violation")

	// ErrOutOfMemory is returned when a preallocation would exceed
	// available memory.
	ErrOutOfMemory = errors.New("preallocation exceeds available memory")

	// ErrInvalidArgument is returned for a caller-visible argument that
	// cannot be coerced to a valid value (coercible mistakes are
	// normalized with a warning instead; see the nsx package).
	ErrInvalidArgument = errors.New("invalid argument")

	// ErrOverwriteRefused is returned when the subset writer would
	// overwrite an existing output file without confirmation.
	ErrOverwriteRefused = errors.New("overwrite refused")
)
