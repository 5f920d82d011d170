package vecgt

import (
	"fmt"
	"math"

	"github.com/hupe1980/vecgt/internal/topk"
)

// Neighbor is a base index with its distance to a query.
type Neighbor = topk.Neighbor

// PaddingIndex marks an empty slot in a flattened row.
const PaddingIndex int32 = -1

// ResultMatrix holds the k nearest base vectors of every query, each row in
// ascending (distance, index) order.
type ResultMatrix struct {
	k    int
	rows [][]Neighbor
}

// NewResultMatrix builds a matrix from finished rows. Rows longer than k are
// rejected; shorter rows are padded when flattened.
func NewResultMatrix(k int, rows [][]Neighbor) (*ResultMatrix, error) {
	if k <= 0 {
		return nil, ErrInvalidK
	}
	for i, r := range rows {
		if len(r) > k {
			return nil, fmt.Errorf("row %d holds %d neighbors, k is %d", i, len(r), k)
		}
	}
	return &ResultMatrix{k: k, rows: rows}, nil
}

func newResultMatrix(k, numQueries int) *ResultMatrix {
	return &ResultMatrix{k: k, rows: make([][]Neighbor, numQueries)}
}

// K returns the effective neighbor count per row.
func (m *ResultMatrix) K() int { return m.k }

// Len returns the number of queries.
func (m *ResultMatrix) Len() int { return len(m.rows) }

// Row returns the neighbors of query i. The slice must not be modified.
func (m *ResultMatrix) Row(i int) []Neighbor { return m.rows[i] }

// Indices returns all rows flattened query-major into Len()*K() entries.
// Missing neighbors are PaddingIndex.
func (m *ResultMatrix) Indices() []int32 {
	out := make([]int32, len(m.rows)*m.k)
	for i, row := range m.rows {
		dst := out[i*m.k : (i+1)*m.k]
		for j := range dst {
			if j < len(row) {
				dst[j] = int32(row[j].Index)
			} else {
				dst[j] = PaddingIndex
			}
		}
	}
	return out
}

// Distances returns all distances flattened like Indices. Missing neighbors
// are +Inf.
func (m *ResultMatrix) Distances() []float64 {
	out := make([]float64, len(m.rows)*m.k)
	for i, row := range m.rows {
		dst := out[i*m.k : (i+1)*m.k]
		for j := range dst {
			if j < len(row) {
				dst[j] = row[j].Distance
			} else {
				dst[j] = math.Inf(1)
			}
		}
	}
	return out
}

// Equal reports whether both matrices hold the same rows.
func (m *ResultMatrix) Equal(other *ResultMatrix) bool {
	if m.k != other.k || len(m.rows) != len(other.rows) {
		return false
	}
	for i := range m.rows {
		a, b := m.rows[i], other.rows[i]
		if len(a) != len(b) {
			return false
		}
		for j := range a {
			if a[j].Index != b[j].Index || !sameDistance(a[j].Distance, b[j].Distance) {
				return false
			}
		}
	}
	return true
}

func sameDistance(a, b float64) bool {
	return a == b || (math.IsNaN(a) && math.IsNaN(b))
}
