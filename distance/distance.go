package distance

import (
	"fmt"
	"strings"
)

// SquaredL2 calculates the squared L2 (Euclidean) distance between two vectors.
// Assumes vectors are the same length (caller's responsibility).
func SquaredL2(a, b []float32) float64 {
	return squaredL2(a, b)
}

// Dot calculates the dot product of two vectors in float64.
// Assumes vectors are the same length (caller's responsibility).
func Dot(a, b []float32) float64 {
	return dot(a, b)
}

// NegativeDot is the inner-product distance: closer vectors have larger dot
// products and therefore smaller (more negative) distances.
func NegativeDot(a, b []float32) float64 {
	return -dot(a, b)
}

// Metric represents the distance metric used for vector comparison.
type Metric int

const (
	MetricL2 Metric = iota
	MetricInnerProduct
)

func (m Metric) String() string {
	switch m {
	case MetricL2:
		return "L2"
	case MetricInnerProduct:
		return "InnerProduct"
	default:
		return fmt.Sprintf("Unknown(%d)", m)
	}
}

// ParseMetric accepts the metric names used on the command line.
// "euclidian" and "mips" are accepted for compatibility with existing
// ground-truth tooling.
func ParseMetric(s string) (Metric, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "l2", "euclidean", "euclidian", "squared_l2":
		return MetricL2, nil
	case "ip", "mips", "inner_product", "innerproduct", "dot":
		return MetricInnerProduct, nil
	default:
		return 0, fmt.Errorf("unsupported metric: %q", s)
	}
}

// Func is a function type for pairwise distance calculation.
type Func func(a, b []float32) float64

// BlockFunc computes a |Q| x |B| distance tile. queries and bases are
// row-major with dimension dim; out must hold (len(queries)/dim)*(len(bases)/dim)
// values and is written row-major by query.
type BlockFunc func(queries, bases []float32, dim int, out []float64)

// Provider returns the pairwise distance function for the given metric.
func Provider(m Metric) (Func, error) {
	switch m {
	case MetricL2:
		return SquaredL2, nil
	case MetricInnerProduct:
		return NegativeDot, nil
	default:
		return nil, fmt.Errorf("unsupported metric: %v", m)
	}
}

// BlockProvider returns the blocked distance kernel for the given metric.
func BlockProvider(m Metric) (BlockFunc, error) {
	switch m {
	case MetricL2:
		return SquaredL2Block, nil
	case MetricInnerProduct:
		return NegativeDotBlock, nil
	default:
		return nil, fmt.Errorf("unsupported metric: %v", m)
	}
}
