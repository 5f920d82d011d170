// Package recall measures how many true nearest neighbors a result contains.
package recall

import (
	"errors"
	"fmt"
	"slices"

	"github.com/RoaringBitmap/roaring/v2"
	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/stat"

	"github.com/hupe1980/vecgt/gtfile"
)

// ErrShape is returned when result and ground truth cannot be compared.
var ErrShape = errors.New("recall: result and ground truth shapes differ")

// Report summarizes recall@At over all queries.
type Report struct {
	Queries int
	At      int
	// Recall is correct hits over all queries divided by the total number of
	// true neighbors considered.
	Recall   float64
	Mean     float64
	StdDev   float64
	Min      float64
	Max      float64
	P05      float64
	P50      float64
	P95      float64
	PerQuery []float64
}

// Compute compares the first at entries of every result row against the
// first at entries of the matching truth row. at <= 0 uses the full width of
// the narrower table. Padding (-1) in the truth is not counted as a true
// neighbor; a row with no true neighbors scores 1.
func Compute(result, truth *gtfile.Table, at int) (Report, error) {
	if result.Len() != truth.Len() {
		return Report{}, fmt.Errorf("%w: %d result rows, %d truth rows", ErrShape, result.Len(), truth.Len())
	}
	width := min(result.K(), truth.K())
	if at <= 0 {
		at = width
	}
	if at > width {
		return Report{}, fmt.Errorf("%w: recall@%d needs %d columns, have %d", ErrShape, at, at, width)
	}

	result, truth = result.Truncate(at), truth.Truncate(at)

	rep := Report{Queries: result.Len(), At: at, PerQuery: make([]float64, result.Len())}
	if rep.Queries == 0 {
		return rep, nil
	}

	var hits, total int
	truthSet := roaring.New()
	for q := range result.Len() {
		truthSet.Clear()
		for _, id := range truth.Indices[q] {
			if id >= 0 {
				truthSet.Add(uint32(id))
			}
		}
		want := int(truthSet.GetCardinality())

		got := 0
		for _, id := range result.Indices[q] {
			if id >= 0 && truthSet.CheckedRemove(uint32(id)) {
				got++
			}
		}

		hits += got
		total += want
		if want == 0 {
			rep.PerQuery[q] = 1
		} else {
			rep.PerQuery[q] = float64(got) / float64(want)
		}
	}

	if total > 0 {
		rep.Recall = float64(hits) / float64(total)
	} else {
		rep.Recall = 1
	}

	sorted := slices.Clone(rep.PerQuery)
	slices.Sort(sorted)
	rep.Mean, rep.StdDev = stat.MeanStdDev(sorted, nil)
	if len(sorted) == 1 {
		// The sample deviation of a single value is undefined.
		rep.StdDev = 0
	}
	rep.Min = floats.Min(sorted)
	rep.Max = floats.Max(sorted)
	rep.P05 = stat.Quantile(0.05, stat.Empirical, sorted, nil)
	rep.P50 = stat.Quantile(0.50, stat.Empirical, sorted, nil)
	rep.P95 = stat.Quantile(0.95, stat.Empirical, sorted, nil)
	return rep, nil
}

// String formats the report on one line.
func (r Report) String() string {
	return fmt.Sprintf("recall@%d=%.4f queries=%d mean=%.4f min=%.4f p05=%.4f p50=%.4f p95=%.4f max=%.4f",
		r.At, r.Recall, r.Queries, r.Mean, r.Min, r.P05, r.P50, r.P95, r.Max)
}
