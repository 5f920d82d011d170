package testutil

import (
	"math"
	"math/rand"
	"slices"
	"sync"

	"github.com/hupe1980/vecgt/distance"
	"github.com/hupe1980/vecgt/internal/topk"
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

// FillUniformRange fills dst with random values in range [minVal, maxVal).
func (r *RNG) FillUniformRange(dst []float32, minVal, maxVal float32) {
	r.mu.Lock()
	defer r.mu.Unlock()
	span := maxVal - minVal
	for i := range dst {
		dst[i] = minVal + r.rand.Float32()*span
	}
}

// Uniform returns num*dim row-major values in [-1, 1).
func (r *RNG) Uniform(num, dim int) []float32 {
	data := make([]float32, num*dim)
	r.FillUniformRange(data, -1, 1)
	return data
}

// Gaussian returns num*dim row-major values from a standard normal distribution.
func (r *RNG) Gaussian(num, dim int) []float32 {
	r.mu.Lock()
	defer r.mu.Unlock()

	data := make([]float32, num*dim)
	for i := range data {
		data[i] = float32(r.rand.NormFloat64())
	}
	return data
}

// Clustered returns num vectors scattered around the given number of
// centers with the given spread. Clustered data produces many near ties.
func (r *RNG) Clustered(num, dim, clusters int, spread float32) []float32 {
	r.mu.Lock()
	defer r.mu.Unlock()

	centers := make([]float32, clusters*dim)
	for i := range centers {
		centers[i] = r.rand.Float32()*2 - 1
	}
	data := make([]float32, num*dim)
	for i := range num {
		c := r.rand.Intn(clusters)
		for j := range dim {
			data[i*dim+j] = centers[c*dim+j] + float32(r.rand.NormFloat64())*spread
		}
	}
	return data
}

// Bytes returns n random bytes, used for uint8 and int8 vector files.
func (r *RNG) Bytes(n int) []byte {
	r.mu.Lock()
	defer r.mu.Unlock()

	b := make([]byte, n)
	for i := range b {
		b[i] = byte(r.rand.Intn(256))
	}
	return b
}

// Quantize rounds data to a grid of the given step. Quantized data has exact
// distance ties, which exercises tie-breaking.
func Quantize(data []float32, step float32) []float32 {
	out := make([]float32, len(data))
	for i, v := range data {
		out[i] = float32(math.Round(float64(v/step))) * step
	}
	return out
}

// BruteForce ranks all base rows for every query row with a full sort and
// returns the first k of each ranking. It is the reference the engine is
// checked against.
func BruteForce(base, queries []float32, dim, k int, fn distance.Func) [][]topk.Neighbor {
	nb, nq := len(base)/dim, len(queries)/dim
	out := make([][]topk.Neighbor, nq)
	for q := range nq {
		qv := queries[q*dim : (q+1)*dim]
		all := make([]topk.Neighbor, nb)
		for i := range nb {
			all[i] = topk.Neighbor{Index: uint32(i), Distance: fn(qv, base[i*dim:(i+1)*dim])}
		}
		slices.SortFunc(all, func(a, b topk.Neighbor) int {
			switch {
			case topk.Better(a, b):
				return -1
			case topk.Better(b, a):
				return 1
			default:
				return 0
			}
		})
		out[q] = all[:min(k, nb)]
	}
	return out
}
