// Package vecgt computes exact k-nearest-neighbor ground truth by brute force.
//
// Given a base set and a query set of D-dimensional float32 vectors, vecgt
// finds for every query the k base vectors with the smallest distance and
// reports their indices and distances. The output is the reference that
// approximate indexes are measured against, so it must be exact and
// reproducible.
//
// # Quick Start
//
//	ctx := context.Background()
//	base, _ := vectorset.Open(ctx, "base.fbin")
//	defer base.Close()
//	queries, _ := vectorset.Open(ctx, "queries.fbin")
//	defer queries.Close()
//
//	res, _ := vecgt.Compute(ctx, base, queries, 100,
//	    vecgt.WithQueryBlock(1000),
//	    vecgt.WithBaseBlock(5000),
//	)
//	_ = gtfile.WriteFile(ctx, fs.Default, "gt.bin", res)
//
// # Blocking
//
// Queries are split into query blocks and the base set into base blocks.
// Each query block is one task; tasks run concurrently up to the worker
// limit and each scans every base block in ascending order. Block sizes and
// the worker count only affect throughput: distances are accumulated in
// float64 by the same routine for every tiling, and ties are broken by the
// smaller base index, so every configuration yields the same ResultMatrix.
//
// # Metrics
//
// Squared Euclidean distance is the default. distance.MetricInnerProduct
// ranks by negated dot product (maximum inner product search).
//
// # Filtering
//
// WithFilter restricts the candidate neighbors to a roaring bitmap of base
// indices. k is clamped to the number of candidates.
package vecgt
