// Package testutil provides testing utilities for vecgt.
//
// This package is intended for use in tests and benchmarks only.
// It provides helpers for generating random vector data and a reference
// brute-force ranking.
//
// # Random Vector Generation
//
//	rng := testutil.NewRNG(seed)
//	base := rng.Uniform(10000, 128)      // row-major, values in [-1, 1)
//	ties := testutil.Quantize(base, 0.5) // exact distance ties
//
// # Reference Ranking
//
//	want := testutil.BruteForce(base, queries, 128, k, distance.SquaredL2)
package testutil
