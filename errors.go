package vecgt

import (
	"context"
	"errors"
	"fmt"

	"github.com/hupe1980/vecgt/vectorset"
)

var (
	// ErrInvalidK is returned when k is not positive.
	ErrInvalidK = errors.New("k must be positive")

	// ErrEmptyBase is returned when no base vector is eligible as a neighbor,
	// either because the base set is empty or because the filter excludes
	// every base index.
	ErrEmptyBase = errors.New("base set is empty")

	// ErrIO is returned when a vector file cannot be read.
	ErrIO = vectorset.ErrIO
)

// FormatError describes a malformed vector file.
type FormatError = vectorset.FormatError

// ErrDimensionMismatch indicates that the base and query sets disagree on the
// vector dimension.
//
// The original underlying error (if any) can be accessed via errors.Unwrap.
type ErrDimensionMismatch struct {
	Expected int
	Actual   int
	cause    error
}

func (e *ErrDimensionMismatch) Error() string {
	return fmt.Sprintf("dimension mismatch: expected %d, got %d", e.Expected, e.Actual)
}

func (e *ErrDimensionMismatch) Unwrap() error { return e.cause }

// ErrInvalidBlockSize indicates a negative block size or worker count.
type ErrInvalidBlockSize struct {
	Name  string
	Value int
}

func (e *ErrInvalidBlockSize) Error() string {
	return fmt.Sprintf("invalid %s: %d", e.Name, e.Value)
}

// translateError normalizes errors surfaced by a run. A cancelled parent
// context wins over whatever the first failing task reported.
func translateError(ctx context.Context, err error) error {
	if err == nil {
		return nil
	}
	if cerr := ctx.Err(); cerr != nil {
		return cerr
	}
	var fe *vectorset.FormatError
	if errors.As(err, &fe) || errors.Is(err, ErrIO) {
		return err
	}
	return fmt.Errorf("vecgt: %w", err)
}
