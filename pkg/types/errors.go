package types

import (
	"errors"
	"fmt"
)

// Error kinds shared by every package. Call sites wrap one of these with
// fmt.Errorf("%w: ...") so callers can classify failures with errors.Is.
var (
	// ErrFormat indicates unrecognized magic bytes, a non-PCM WAV file or a
	// RIFF tag that could not be found before end of file
	ErrFormat = errors.New("format error")

	// ErrUnsupportedEncoding indicates a bitmap depth other than 24 bits or a
	// WAV depth below 16 bits
	ErrUnsupportedEncoding = errors.New("unsupported encoding")

	// ErrCapacity indicates the carrier cannot hold the payload
	ErrCapacity = errors.New("insufficient capacity")

	// ErrAllocation indicates an in-memory store could not be sized
	ErrAllocation = errors.New("allocation error")

	// ErrIO indicates a failure of the underlying reader or writer
	ErrIO = errors.New("i/o error")
)

// Exit statuses reported by the command line tool, one per error kind.
const (
	ExitGeneric             = 1
	ExitFormat              = 2
	ExitUnsupportedEncoding = 3
	ExitCapacity            = 4
	ExitAllocation          = 5
	ExitIO                  = 6
)

// IOError wraps err as an ErrIO with a short description of the operation.
// It returns nil when err is nil.
func IOError(op string, err error) error {
	if err == nil {
		return nil
	}
	return fmt.Errorf("%w: %s: %w", ErrIO, op, err)
}

// ExitCode maps an error returned by the library to a process exit status.
func ExitCode(err error) int {
	switch {
	case err == nil:
		return 0
	case errors.Is(err, ErrFormat):
		return ExitFormat
	case errors.Is(err, ErrUnsupportedEncoding):
		return ExitUnsupportedEncoding
	case errors.Is(err, ErrCapacity):
		return ExitCapacity
	case errors.Is(err, ErrAllocation):
		return ExitAllocation
	case errors.Is(err, ErrIO):
		return ExitIO
	default:
		return ExitGeneric
	}
}
