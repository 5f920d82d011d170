// Package gtfile reads and writes ground-truth result files.
//
// A result file for nq queries and k neighbors holds two regions, both
// query-major and little-endian:
//
//	[nq*k int32 indices][nq*k distances]
//
// Distances are float32 unless written with WithDistanceBits(64).
// LayoutBin prefixes the regions with an [int32 nq][int32 k] preamble, the
// ground-truth layout used by big-ann-benchmarks. Slots a query could not
// fill hold index -1 and distance +Inf.
//
// Files are published atomically: data goes to a temporary file that is
// synced and renamed over the target, so readers never observe a partial
// result.
package gtfile
