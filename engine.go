package vecgt

import (
	"context"
	"errors"
	"fmt"
	"math"
	"sync/atomic"
	"time"

	"github.com/RoaringBitmap/roaring/v2"
	"golang.org/x/sync/errgroup"
	"golang.org/x/time/rate"

	"github.com/hupe1980/vecgt/blobstore"
	"github.com/hupe1980/vecgt/distance"
	"github.com/hupe1980/vecgt/internal/topk"
	"github.com/hupe1980/vecgt/vectorset"
)

// kernelRows bounds the number of queries handed to the block kernel at once,
// which bounds the distance scratch buffer to kernelRows*baseBlock values.
const kernelRows = 256

// Vectors is a read-only row-major vector collection.
// *vectorset.VectorSet implements it.
type Vectors interface {
	Count() int
	Dimension() int
	// Rows returns vectors [start, start+n) as one contiguous slice.
	Rows(start, n int) []float32
}

// Engine computes exact k-nearest-neighbor ground truth by brute force.
// An Engine holds only configuration and may be reused concurrently.
type Engine struct {
	opts   options
	kernel distance.BlockFunc
	err    error
}

// New creates an Engine.
func New(optFns ...Option) *Engine {
	o := applyOptions(optFns)
	kernel, err := distance.BlockProvider(o.metric)
	e := &Engine{opts: o, kernel: kernel, err: err}
	switch {
	case o.queryBlock < 0:
		e.err = &ErrInvalidBlockSize{Name: "query block", Value: o.queryBlock}
	case o.baseBlock < 0:
		e.err = &ErrInvalidBlockSize{Name: "base block", Value: o.baseBlock}
	case o.workers < 0:
		e.err = &ErrInvalidBlockSize{Name: "workers", Value: o.workers}
	}
	return e
}

// Compute runs a single ground-truth computation with a fresh Engine.
func Compute(ctx context.Context, base, queries Vectors, k int, optFns ...Option) (*ResultMatrix, error) {
	return New(optFns...).Run(ctx, base, queries, k)
}

// Load reads a vector file from store, recording load metrics.
func (e *Engine) Load(ctx context.Context, store blobstore.BlobStore, name string, optFns ...vectorset.Option) (*vectorset.VectorSet, error) {
	start := time.Now()
	vs, err := vectorset.Load(ctx, store, name, optFns...)
	elapsed := time.Since(start)
	if err != nil {
		e.opts.metricsCollector.RecordLoad(0, elapsed, err)
		e.opts.logger.LogLoad(ctx, name, 0, 0, 0, false, elapsed, err)
		return nil, err
	}
	e.opts.metricsCollector.RecordLoad(vs.SizeBytes(), elapsed, nil)
	e.opts.logger.LogLoad(ctx, name, vs.Count(), vs.Dimension(), vs.SizeBytes(), vs.Mapped(), elapsed, nil)
	return vs, nil
}

// Run computes the k nearest base vectors of every query.
//
// The result does not depend on block sizes or the worker count. k larger
// than the number of candidates is clamped. A cancelled run returns the
// context error and no result.
func (e *Engine) Run(ctx context.Context, base, queries Vectors, k int) (*ResultMatrix, error) {
	start := time.Now()
	m, err := e.run(ctx, base, queries, k)
	err = translateError(ctx, err)

	nq := 0
	if queries != nil {
		nq = queries.Count()
	}
	e.opts.metricsCollector.RecordRun(nq, k, time.Since(start), err)
	e.opts.logger.LogRun(ctx, nq, k, time.Since(start), err)
	if err != nil {
		return nil, err
	}
	return m, nil
}

func (e *Engine) run(ctx context.Context, base, queries Vectors, k int) (*ResultMatrix, error) {
	if e.err != nil {
		return nil, e.err
	}
	if k <= 0 {
		return nil, ErrInvalidK
	}
	if base == nil || queries == nil {
		return nil, errors.New("base and query sets are required")
	}
	if base.Dimension() != queries.Dimension() {
		return nil, &ErrDimensionMismatch{Expected: base.Dimension(), Actual: queries.Dimension()}
	}
	nb := base.Count()
	if nb > math.MaxInt32 {
		return nil, fmt.Errorf("base set holds %d vectors, more than int32 indices can address", nb)
	}

	filter := e.candidates(nb)
	universe := nb
	if filter != nil {
		universe = int(filter.GetCardinality())
	}
	if universe == 0 {
		return nil, ErrEmptyBase
	}
	if k > universe {
		e.opts.logger.LogClamp(ctx, k, universe)
		k = universe
	}

	nq := queries.Count()
	result := newResultMatrix(k, nq)
	if nq == 0 {
		return result, nil
	}

	qBlocks := Blocks(nq, e.opts.queryBlock)
	bBlocks := Blocks(nb, e.opts.baseBlock)
	e.opts.logger.LogRunStart(ctx, nb, nq, k, qBlocks[0].Len, bBlocks[0].Len, e.opts.workers)

	s := &scan{
		engine:  e,
		base:    base,
		queries: queries,
		dim:     base.Dimension(),
		k:       k,
		filter:  filter,
		bBlocks: bBlocks,
		result:  result,
		total:   int64(len(qBlocks)) * int64(len(bBlocks)),
		started: time.Now(),
	}
	if e.opts.progressInterval > 0 {
		s.progress = &rate.Sometimes{Interval: e.opts.progressInterval}
	}

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(e.opts.workers)
	for _, qb := range qBlocks {
		g.Go(func() error {
			return s.queryBlock(gctx, qb)
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return result, nil
}

// candidates returns the filter restricted to [0, nb), or nil when every
// base vector is a candidate.
func (e *Engine) candidates(nb int) *roaring.Bitmap {
	if e.opts.filter == nil {
		return nil
	}
	bm := e.opts.filter.Clone()
	bm.RemoveRange(uint64(nb), math.MaxUint32+1)
	return bm
}

// scan is the shared read-only state of one run. Each query block task
// writes only its own rows of result.
type scan struct {
	engine   *Engine
	base     Vectors
	queries  Vectors
	dim      int
	k        int
	filter   *roaring.Bitmap
	bBlocks  []Block
	result   *ResultMatrix
	total    int64
	done     atomic.Int64
	started  time.Time
	progress *rate.Sometimes
}

func (s *scan) queryBlock(ctx context.Context, qb Block) error {
	selectors := make([]*topk.Selector, qb.Len)
	for i := range selectors {
		selectors[i] = topk.New(s.k)
	}

	maxBase := 0
	for _, bb := range s.bBlocks {
		maxBase = max(maxBase, bb.Len)
	}
	tile := make([]float64, min(qb.Len, kernelRows)*maxBase)

	for _, bb := range s.bBlocks {
		if err := ctx.Err(); err != nil {
			return err
		}
		if s.filter != nil && !s.anyCandidate(bb) {
			s.tick(ctx)
			continue
		}

		start := time.Now()
		bases := s.base.Rows(bb.Start, bb.Len)
		for _, sub := range Blocks(qb.Len, kernelRows) {
			out := tile[:sub.Len*bb.Len]
			s.engine.kernel(s.queries.Rows(qb.Start+sub.Start, sub.Len), bases, s.dim, out)
			for qi := range sub.Len {
				s.offer(selectors[sub.Start+qi], bb, out[qi*bb.Len:(qi+1)*bb.Len])
			}
		}
		s.engine.opts.metricsCollector.RecordBlock(qb.Len, bb.Len, time.Since(start))
		s.tick(ctx)
	}

	for i, sel := range selectors {
		s.result.rows[qb.Start+i] = sel.Finalize()
	}
	return nil
}

// offer feeds one query's distances to a base block into its selector in
// ascending base index order.
func (s *scan) offer(sel *topk.Selector, bb Block, row []float64) {
	if s.filter == nil {
		for j, d := range row {
			sel.Offer(d, uint32(bb.Start+j))
		}
		return
	}
	for j, d := range row {
		idx := uint32(bb.Start + j)
		if s.filter.Contains(idx) {
			sel.Offer(d, idx)
		}
	}
}

func (s *scan) anyCandidate(bb Block) bool {
	hi := s.filter.Rank(uint32(bb.End() - 1))
	if bb.Start == 0 {
		return hi > 0
	}
	return hi > s.filter.Rank(uint32(bb.Start-1))
}

func (s *scan) tick(ctx context.Context) {
	done := s.done.Add(1)
	if s.progress == nil {
		return
	}
	s.progress.Do(func() {
		s.engine.opts.logger.LogProgress(ctx, done, s.total, time.Since(s.started))
	})
}
