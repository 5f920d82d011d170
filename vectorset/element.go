package vectorset

import (
	"fmt"
	"path"
	"strings"
)

// ElementType is the on-disk component type.
type ElementType int

const (
	// ElementAuto picks the type from the file name.
	ElementAuto ElementType = iota
	ElementFloat32
	ElementUint8
	ElementInt8
)

func (t ElementType) String() string {
	switch t {
	case ElementAuto:
		return "auto"
	case ElementFloat32:
		return "float32"
	case ElementUint8:
		return "uint8"
	case ElementInt8:
		return "int8"
	default:
		return fmt.Sprintf("Unknown(%d)", t)
	}
}

// Size returns the element width in bytes.
func (t ElementType) Size() int {
	switch t {
	case ElementUint8, ElementInt8:
		return 1
	default:
		return 4
	}
}

// ParseElementType accepts the data type names used on the command line.
func ParseElementType(s string) (ElementType, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "auto":
		return ElementAuto, nil
	case "float", "float32", "fbin":
		return ElementFloat32, nil
	case "uint8", "u8", "u8bin":
		return ElementUint8, nil
	case "int8", "i8", "i8bin":
		return ElementInt8, nil
	default:
		return 0, fmt.Errorf("unsupported element type: %q", s)
	}
}

// Compression is the container wrapped around a vector file.
type Compression int

const (
	CompressionNone Compression = iota
	CompressionZstd
	CompressionGzip
	CompressionLZ4
)

// detect splits a file name into its compression and element type.
func detect(name string) (Compression, ElementType) {
	base := strings.ToLower(path.Base(name))
	comp := CompressionNone
	switch {
	case strings.HasSuffix(base, ".zst"):
		comp, base = CompressionZstd, strings.TrimSuffix(base, ".zst")
	case strings.HasSuffix(base, ".gz"):
		comp, base = CompressionGzip, strings.TrimSuffix(base, ".gz")
	case strings.HasSuffix(base, ".lz4"):
		comp, base = CompressionLZ4, strings.TrimSuffix(base, ".lz4")
	}
	switch {
	case strings.HasSuffix(base, ".u8bin"):
		return comp, ElementUint8
	case strings.HasSuffix(base, ".i8bin"):
		return comp, ElementInt8
	default:
		return comp, ElementFloat32
	}
}
