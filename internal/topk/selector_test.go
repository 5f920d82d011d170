package topk

import (
	"math"
	"math/rand"
	"slices"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSelector_KeepsSmallest(t *testing.T) {
	s := New(3)
	for i, d := range []float64{5, 1, 4, 2, 3, 0.5} {
		s.Offer(d, uint32(i))
	}
	assert.Equal(t, 3, s.Len())

	worst, ok := s.Worst()
	require.True(t, ok)
	assert.Equal(t, Neighbor{Index: 3, Distance: 2}, worst)

	got := s.Finalize()
	assert.Equal(t, []Neighbor{
		{Index: 5, Distance: 0.5},
		{Index: 1, Distance: 1},
		{Index: 3, Distance: 2},
	}, got)
	assert.Equal(t, 0, s.Len())
}

func TestSelector_FewerThanK(t *testing.T) {
	s := New(10)
	s.Offer(3, 7)
	s.Offer(1, 9)
	assert.Equal(t, []Neighbor{{Index: 9, Distance: 1}, {Index: 7, Distance: 3}}, s.Finalize())
}

func TestSelector_TieBreak(t *testing.T) {
	t.Run("smaller index displaces larger at boundary", func(t *testing.T) {
		s := New(2)
		s.Offer(0, 0)
		s.Offer(1, 2)
		assert.True(t, s.Offer(1, 1))
		assert.Equal(t, []Neighbor{{Index: 0, Distance: 0}, {Index: 1, Distance: 1}}, s.Finalize())
	})

	t.Run("larger index does not displace", func(t *testing.T) {
		s := New(2)
		s.Offer(0, 0)
		s.Offer(1, 1)
		assert.False(t, s.Offer(1, 2))
		assert.Equal(t, []Neighbor{{Index: 0, Distance: 0}, {Index: 1, Distance: 1}}, s.Finalize())
	})

	t.Run("finalize orders equal distances by index", func(t *testing.T) {
		s := New(4)
		for _, idx := range []uint32{9, 3, 7, 1} {
			s.Offer(2.5, idx)
		}
		got := s.Finalize()
		assert.Equal(t, []uint32{1, 3, 7, 9}, []uint32{got[0].Index, got[1].Index, got[2].Index, got[3].Index})
	})
}

func TestSelector_ZeroK(t *testing.T) {
	s := New(0)
	assert.False(t, s.Offer(1, 1))
	assert.Empty(t, s.Finalize())
	_, ok := s.Worst()
	assert.False(t, ok)

	s.Reset(-5)
	assert.Equal(t, 0, s.K())
}

func TestSelector_MatchesSort(t *testing.T) {
	r := rand.New(rand.NewSource(42))
	s := New(0)
	for round := range 50 {
		n := 1 + r.Intn(500)
		k := 1 + r.Intn(40)
		s.Reset(k)

		all := make([]Neighbor, n)
		for i := range all {
			// Coarse distances force plenty of ties.
			all[i] = Neighbor{Index: uint32(i), Distance: float64(r.Intn(20))}
		}
		// Offer order must not matter.
		order := r.Perm(n)
		for _, i := range order {
			s.Offer(all[i].Distance, all[i].Index)
		}

		want := slices.Clone(all)
		slices.SortFunc(want, func(a, b Neighbor) int {
			if Better(a, b) {
				return -1
			}
			if Better(b, a) {
				return 1
			}
			return 0
		})
		want = want[:min(k, n)]
		require.Equal(t, want, s.Finalize(), "round %d", round)
	}
}

func BenchmarkSelector_Offer(b *testing.B) {
	r := rand.New(rand.NewSource(1))
	dists := make([]float64, 4096)
	for i := range dists {
		dists[i] = r.Float64()
	}
	s := New(100)
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		s.Offer(dists[i%len(dists)], uint32(i))
	}
}

func TestSelector_NaNRanksLast(t *testing.T) {
	nan := math.NaN()
	assert.True(t, Better(Neighbor{Index: 9, Distance: 1e300}, Neighbor{Index: 0, Distance: nan}))
	assert.False(t, Better(Neighbor{Index: 0, Distance: nan}, Neighbor{Index: 9, Distance: math.Inf(1)}))
	assert.True(t, Better(Neighbor{Index: 1, Distance: nan}, Neighbor{Index: 2, Distance: nan}))

	s := New(2)
	for i, d := range []float64{nan, 3, 1, 2, 0} {
		s.Offer(d, uint32(i))
	}
	assert.Equal(t, []Neighbor{{Index: 4, Distance: 0}, {Index: 2, Distance: 1}}, s.Finalize())

	s.Reset(3)
	s.Offer(nan, 0)
	s.Offer(5, 1)
	got := s.Finalize()
	require.Len(t, got, 2)
	assert.Equal(t, Neighbor{Index: 1, Distance: 5}, got[0])
	assert.True(t, math.IsNaN(got[1].Distance))
}
