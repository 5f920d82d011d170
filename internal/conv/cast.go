package conv

import (
	"fmt"
	"math"
)

// IntToInt32 converts int to int32 safely.
// Header fields of the vector and ground-truth formats are int32.
func IntToInt32(v int) (int32, error) {
	if v < math.MinInt32 || v > math.MaxInt32 {
		return 0, fmt.Errorf("integer overflow: %d cannot be converted to int32", v)
	}
	return int32(v), nil
}

// Int32ToCount converts a signed on-disk header field to a non-negative int.
func Int32ToCount(v int32) (int, error) {
	if v < 0 {
		return 0, fmt.Errorf("integer underflow: %d is not a valid count", v)
	}
	return int(v), nil
}

// MulNonNeg multiplies two non-negative ints, reporting overflow.
func MulNonNeg(a, b int) (int, error) {
	if a < 0 || b < 0 {
		return 0, fmt.Errorf("integer underflow: %d * %d has a negative operand", a, b)
	}
	if a != 0 && b > math.MaxInt/a {
		return 0, fmt.Errorf("integer overflow: %d * %d exceeds int", a, b)
	}
	return a * b, nil
}
