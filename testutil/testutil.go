package testutil

import (
	"math"
	"math/rand"
	"slices"
	"sync"
)

// RNG struct encapsulates the random number generator and seed.
// It is thread-safe.
type RNG struct {
	rand *rand.Rand
	seed int64
	mu   sync.Mutex
}

// NewRNG creates a new RNG instance with the specified seed.
func NewRNG(seed int64) *RNG {
	return &RNG{
		rand: rand.New(rand.NewSource(seed)),
		seed: seed,
	}
}

// Reset resets the RNG to its initial seed.
func (r *RNG) Reset() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.rand.Seed(r.seed)
}

// Seed returns the initial seed.
func (r *RNG) Seed() int64 {
	return r.seed
}

// Intn returns a non-negative pseudo-random number in [0,n).
func (r *RNG) Intn(n int) int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.rand.Intn(n)
}

// Uint64 returns a pseudo-random uint64.
func (r *RNG) Uint64() uint64 {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.rand.Uint64()
}

// Position returns a pseudo-random position in [0, math.MaxUint64).
// math.MaxUint64 itself lies outside every half-open range and is never
// returned.
func (r *RNG) Position() uint64 {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.positionLocked()
}

func (r *RNG) positionLocked() uint64 {
	for {
		if p := r.rand.Uint64(); p != math.MaxUint64 {
			return p
		}
	}
}

// SparsePositions returns n distinct positions spread uniformly over the
// whole uint64 domain, sorted ascending.
func (r *RNG) SparsePositions(n int) []uint64 {
	r.mu.Lock()
	defer r.mu.Unlock()

	seen := make(map[uint64]struct{}, n)
	out := make([]uint64, 0, n)
	for len(out) < n {
		p := r.positionLocked()
		if _, ok := seen[p]; ok {
			continue
		}
		seen[p] = struct{}{}
		out = append(out, p)
	}
	slices.Sort(out)
	return out
}

// ClusteredPositions returns n positions grouped into clusters of runs.
// Each cluster starts at a random base and holds runs of 1..maxRun bits
// separated by gaps of 1..maxGap bits. This mimics allocation bitmaps, where
// dense neighbourhoods sit far apart in the domain.
func (r *RNG) ClusteredPositions(n, clusters, maxRun, maxGap int) []uint64 {
	r.mu.Lock()
	defer r.mu.Unlock()

	if clusters <= 0 {
		clusters = 1
	}
	perCluster := (n + clusters - 1) / clusters
	span := uint64(perCluster) * uint64(maxRun+maxGap)

	out := make([]uint64, 0, n)
	for c := 0; c < clusters && len(out) < n; c++ {
		base := r.rand.Uint64() % (math.MaxUint64 - span)
		pos := base
		for k := 0; k < perCluster && len(out) < n; {
			run := 1 + r.rand.Intn(maxRun)
			for i := 0; i < run && k < perCluster && len(out) < n; i++ {
				out = append(out, pos)
				pos++
				k++
			}
			pos += uint64(1 + r.rand.Intn(maxGap))
		}
	}
	slices.Sort(out)
	return slices.Compact(out)
}

// Shuffle returns a shuffled copy of positions.
func (r *RNG) Shuffle(positions []uint64) []uint64 {
	r.mu.Lock()
	defer r.mu.Unlock()

	out := slices.Clone(positions)
	r.rand.Shuffle(len(out), func(i, j int) { out[i], out[j] = out[j], out[i] })
	return out
}
