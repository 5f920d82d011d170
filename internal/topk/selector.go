package topk

import (
	"math"
	"slices"
)

// heapArity is the fan-out of the heap. A 4-ary heap halves the depth of a
// binary heap and keeps siblings on one cache line.
const heapArity = 4

// Neighbor is one retained candidate.
type Neighbor struct {
	Index    uint32
	Distance float64
}

// Better reports whether a ranks before b: smaller distance first, and on
// equal distance the smaller index. NaN ranks after every number, so a NaN
// distance is the first to be evicted.
func Better(a, b Neighbor) bool {
	aNaN, bNaN := math.IsNaN(a.Distance), math.IsNaN(b.Distance)
	if aNaN != bNaN {
		return bNaN
	}
	if !aNaN && a.Distance != b.Distance {
		return a.Distance < b.Distance
	}
	return a.Index < b.Index
}

// Selector is a bounded worst-first heap. The root is always the candidate
// that the next better offer evicts.
type Selector struct {
	k     int
	items []Neighbor
}

// New creates a selector that retains at most k neighbors.
func New(k int) *Selector {
	s := &Selector{}
	s.Reset(k)
	return s
}

// Reset empties the selector for reuse with a new bound.
func (s *Selector) Reset(k int) {
	if k < 0 {
		k = 0
	}
	s.k = k
	if cap(s.items) < k {
		s.items = make([]Neighbor, 0, k)
	}
	s.items = s.items[:0]
}

// K returns the bound.
func (s *Selector) K() int { return s.k }

// Len returns the number of retained neighbors.
func (s *Selector) Len() int { return len(s.items) }

// Worst returns the eviction candidate. ok is false when nothing is retained.
func (s *Selector) Worst() (n Neighbor, ok bool) {
	if len(s.items) == 0 {
		return Neighbor{}, false
	}
	return s.items[0], true
}

// Offer considers one candidate and reports whether it was retained.
// While fewer than k neighbors are held every offer is kept; after that an
// offer must beat the current worst in (distance, index) order.
func (s *Selector) Offer(distance float64, index uint32) bool {
	if s.k == 0 {
		return false
	}
	n := Neighbor{Index: index, Distance: distance}
	if len(s.items) < s.k {
		s.items = append(s.items, n)
		s.up(len(s.items) - 1)
		return true
	}
	if !Better(n, s.items[0]) {
		return false
	}
	s.items[0] = n
	s.down(0)
	return true
}

// Finalize returns the retained neighbors in ascending (distance, index)
// order. The returned slice is freshly allocated; the selector is emptied.
func (s *Selector) Finalize() []Neighbor {
	out := slices.Clone(s.items)
	slices.SortFunc(out, func(a, b Neighbor) int {
		switch {
		case Better(a, b):
			return -1
		case Better(b, a):
			return 1
		default:
			return 0
		}
	})
	s.items = s.items[:0]
	return out
}

// up moves the element at j toward the root while it is worse than its parent.
func (s *Selector) up(j int) {
	item := s.items[j]
	for j > 0 {
		i := (j - 1) / heapArity
		if !Better(s.items[i], item) {
			break
		}
		s.items[j] = s.items[i]
		j = i
	}
	s.items[j] = item
}

// down moves the element at i0 away from the root while a child is worse.
func (s *Selector) down(i0 int) {
	n := len(s.items)
	i := i0
	item := s.items[i]
	for {
		firstChild := heapArity*i + 1
		if firstChild >= n {
			break
		}

		worst := firstChild
		lastChild := min(firstChild+heapArity, n)
		for c := firstChild + 1; c < lastChild; c++ {
			if Better(s.items[worst], s.items[c]) {
				worst = c
			}
		}

		if !Better(item, s.items[worst]) {
			break
		}
		s.items[i] = s.items[worst]
		i = worst
	}
	s.items[i] = item
}
