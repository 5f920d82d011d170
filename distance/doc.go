// Package distance provides the exact distance kernels used for ground truth.
//
// All kernels read float32 components and accumulate in float64 so that sums
// over a few thousand dimensions carry no systematic float32 rounding error.
//
// # Supported Metrics
//
//   - MetricL2: squared Euclidean distance (default)
//   - MetricInnerProduct: negated dot product, so smaller is closer
//
// # Usage
//
//	d := distance.SquaredL2(a, b)
//
//	// queries and bases are row-major blocks of dimension dim;
//	// out is len(queries)/dim rows by len(bases)/dim columns.
//	distance.SquaredL2Block(queries, bases, dim, out)
//
// The block kernels evaluate every cell with the same per-pair routine as the
// pairwise functions, so tiling never changes a distance.
package distance
