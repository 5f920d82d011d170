package vectorset

import (
	"errors"
	"fmt"
)

// ErrIO marks failures to open or read a vector file.
var ErrIO = errors.New("vectorset: io error")

// FormatError describes a malformed or truncated vector file.
type FormatError struct {
	Path     string
	Reason   string
	Expected int64 // expected size in bytes (or elements, see Reason); -1 if not applicable
	Actual   int64
}

func (e *FormatError) Error() string {
	if e.Expected < 0 {
		return fmt.Sprintf("vectorset: %s: %s (got %d)", e.Path, e.Reason, e.Actual)
	}
	return fmt.Sprintf("vectorset: %s: %s: expected %d, got %d", e.Path, e.Reason, e.Expected, e.Actual)
}

func ioError(path, op string, err error) error {
	return fmt.Errorf("%w: %s %s: %w", ErrIO, op, path, err)
}
