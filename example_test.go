package vecgt_test

import (
	"context"
	"fmt"
	"log"

	"github.com/RoaringBitmap/roaring/v2"

	"github.com/hupe1980/vecgt"
	"github.com/hupe1980/vecgt/distance"
	"github.com/hupe1980/vecgt/vectorset"
)

// Example_compute finds the two nearest base vectors of a query.
func Example_compute() {
	base, err := vectorset.FromSlice([]float32{
		0, 0,
		1, 0,
		0, 1,
		3, 4,
	}, 2)
	if err != nil {
		log.Fatal(err)
	}
	queries, err := vectorset.FromSlice([]float32{0, 0}, 2)
	if err != nil {
		log.Fatal(err)
	}

	res, err := vecgt.Compute(context.Background(), base, queries, 2)
	if err != nil {
		log.Fatal(err)
	}
	for _, n := range res.Row(0) {
		fmt.Printf("index=%d distance=%.0f\n", n.Index, n.Distance)
	}
	// Output:
	// index=0 distance=0
	// index=1 distance=1
}

// Example_innerProduct ranks by largest dot product.
func Example_innerProduct() {
	base, _ := vectorset.FromSlice([]float32{1, 0, 2, 0, 0, 3}, 2)
	queries, _ := vectorset.FromSlice([]float32{1, 1}, 2)

	res, err := vecgt.Compute(context.Background(), base, queries, 3,
		vecgt.WithMetric(distance.MetricInnerProduct))
	if err != nil {
		log.Fatal(err)
	}
	fmt.Println(res.Indices())
	// Output: [2 1 0]
}

// Example_filter restricts candidates to a subset of the base set.
func Example_filter() {
	base, _ := vectorset.FromSlice([]float32{0, 1, 2, 3, 4, 5}, 1)
	queries, _ := vectorset.FromSlice([]float32{0}, 1)

	res, err := vecgt.Compute(context.Background(), base, queries, 10,
		vecgt.WithFilter(roaring.BitmapOf(3, 5)))
	if err != nil {
		log.Fatal(err)
	}
	fmt.Println(res.K(), res.Indices())
	// Output: 2 [3 5]
}

// Example_metrics collects throughput counters for a run.
func Example_metrics() {
	base, _ := vectorset.FromSlice(make([]float32, 100*4), 4)
	queries, _ := vectorset.FromSlice(make([]float32, 10*4), 4)

	metrics := &vecgt.BasicMetricsCollector{}
	eng := vecgt.New(
		vecgt.WithQueryBlock(5),
		vecgt.WithBaseBlock(50),
		vecgt.WithMetricsCollector(metrics),
	)
	if _, err := eng.Run(context.Background(), base, queries, 1); err != nil {
		log.Fatal(err)
	}
	stats := metrics.GetStats()
	fmt.Println(stats.BlockCount, stats.DistancePairs)
	// Output: 4 1000
}
