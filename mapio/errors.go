package mapio

import "errors"

// Sentinel errors shared by provider implementations. They can be checked
// with errors.Is() by callers that need to distinguish failure modes of the
// constructors and streams; the Provider operations themselves stay
// value-based per the contract.
var (
	// ErrUnsupported is returned when an operation is not supported by the
	// provider or its backing source.
	ErrUnsupported = errors.New("operation not supported")

	// ErrClosed is returned when an operation is performed on a closed
	// stream or archive.
	ErrClosed = errors.New("already closed")

	// ErrSizeUnknown is returned when a source cannot report its size but
	// the backend requires one.
	ErrSizeUnknown = errors.New("source size unknown")

	// ErrSeekCancelled is returned when a source's position could not be
	// determined during a seek.
	ErrSeekCancelled = errors.New("seek position unavailable")

	// ErrSeekOverflow is returned when a seek computes an offset outside
	// the addressable range of the source.
	ErrSeekOverflow = errors.New("seek offset overflow")
)
