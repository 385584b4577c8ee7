// Package testutil provides testing utilities for bigfield.
//
// This package is intended for use in tests and benchmarks only.
// It provides a seeded, thread-safe RNG and generators for sparse position
// workloads over the uint64 domain.
//
//	rng := testutil.NewRNG(seed)
//	sparse := rng.SparsePositions(1000)             // uniform over the domain
//	dense := rng.ClusteredPositions(1000, 4, 8, 32) // runs grouped in clusters
package testutil
