package gtfile

import (
	"errors"
	"fmt"
	"strings"
)

var (
	// ErrIO marks failures to write or read a result file.
	ErrIO = errors.New("gtfile: io error")

	// ErrFormat marks a result file whose size or preamble is inconsistent.
	ErrFormat = errors.New("gtfile: malformed result file")
)

// PreambleSize is the size of the LayoutBin preamble in bytes.
const PreambleSize = 8

// Layout selects the framing of a result file.
type Layout int

const (
	// LayoutRaw is the two regions without a header.
	LayoutRaw Layout = iota
	// LayoutBin prefixes the regions with [int32 nq][int32 k].
	LayoutBin
)

func (l Layout) String() string {
	switch l {
	case LayoutRaw:
		return "raw"
	case LayoutBin:
		return "bin"
	default:
		return fmt.Sprintf("Unknown(%d)", l)
	}
}

// ParseLayout parses "raw" or "bin".
func ParseLayout(s string) (Layout, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "raw":
		return LayoutRaw, nil
	case "bin", "ibin", "big-ann":
		return LayoutBin, nil
	default:
		return 0, fmt.Errorf("unsupported layout: %q", s)
	}
}

// Option configures encoding and decoding.
type Option func(*options)

type options struct {
	layout       Layout
	distanceBits int
}

// WithLayout selects the file layout. The default is LayoutRaw.
func WithLayout(l Layout) Option {
	return func(o *options) {
		o.layout = l
	}
}

// WithDistanceBits selects float32 (32) or float64 (64) distances.
func WithDistanceBits(bits int) Option {
	return func(o *options) {
		o.distanceBits = bits
	}
}

func applyOptions(optFns []Option) (options, error) {
	o := options{layout: LayoutRaw, distanceBits: 32}
	for _, fn := range optFns {
		if fn != nil {
			fn(&o)
		}
	}
	if o.distanceBits != 32 && o.distanceBits != 64 {
		return o, fmt.Errorf("distance bits must be 32 or 64, got %d", o.distanceBits)
	}
	if o.layout != LayoutRaw && o.layout != LayoutBin {
		return o, fmt.Errorf("unsupported layout: %d", o.layout)
	}
	return o, nil
}

func (o options) distanceSize() int { return o.distanceBits / 8 }

func (o options) headerSize() int64 {
	if o.layout == LayoutBin {
		return PreambleSize
	}
	return 0
}

// Size returns the encoded size of a result with nq rows of k slots.
func Size(nq, k int, optFns ...Option) (int64, error) {
	o, err := applyOptions(optFns)
	if err != nil {
		return 0, err
	}
	return o.headerSize() + int64(nq)*int64(k)*int64(4+o.distanceSize()), nil
}
