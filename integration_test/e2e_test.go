package integration_test

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/klauspost/compress/zstd"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hupe1980/vecgt"
	"github.com/hupe1980/vecgt/blobstore"
	"github.com/hupe1980/vecgt/distance"
	"github.com/hupe1980/vecgt/gtfile"
	"github.com/hupe1980/vecgt/internal/fs"
	"github.com/hupe1980/vecgt/recall"
	"github.com/hupe1980/vecgt/testutil"
	"github.com/hupe1980/vecgt/vectorset"
)

func writeSet(t *testing.T, path string, data []float32, dim int) {
	t.Helper()
	var buf bytes.Buffer
	_, err := vectorset.Encode(&buf, data, dim)
	require.NoError(t, err)
	require.NoError(t, os.WriteFile(path, buf.Bytes(), 0o600))
}

// TestE2E_FileToFile loads mapped files, computes ground truth, writes it
// atomically, reads it back and scores it against a reference ranking.
func TestE2E_FileToFile(t *testing.T) {
	const (
		dim = 32
		nb  = 2000
		nq  = 50
		k   = 20
	)
	dir := t.TempDir()
	rng := testutil.NewRNG(2024)
	baseData, queryData := rng.Gaussian(nb, dim), rng.Gaussian(nq, dim)
	writeSet(t, filepath.Join(dir, "base.fbin"), baseData, dim)
	writeSet(t, filepath.Join(dir, "query.fbin"), queryData, dim)

	ctx := context.Background()
	base, err := vectorset.Open(ctx, filepath.Join(dir, "base.fbin"))
	require.NoError(t, err)
	defer base.Close()
	queries, err := vectorset.Open(ctx, filepath.Join(dir, "query.fbin"))
	require.NoError(t, err)
	defer queries.Close()

	res, err := vecgt.Compute(ctx, base, queries, k, vecgt.WithQueryBlock(7), vecgt.WithBaseBlock(333))
	require.NoError(t, err)

	out := filepath.Join(dir, "gt.bin")
	require.NoError(t, gtfile.WriteFile(ctx, fs.Default, out, res))

	got, err := gtfile.ReadFile(ctx, out, nq, k)
	require.NoError(t, err)

	want := testutil.BruteForce(baseData, queryData, dim, k, distance.SquaredL2)
	for q := range nq {
		for j := range k {
			assert.Equal(t, int32(want[q][j].Index), got.Indices[q][j])
			assert.InEpsilon(t, want[q][j].Distance, got.Distances[q][j], 1e-6)
		}
	}

	rep, err := recall.Compute(got, got, 10)
	require.NoError(t, err)
	assert.Equal(t, 1.0, rep.Recall)
}

// TestE2E_CompressedMemoryStore runs against a non-mappable store with a
// zstd-compressed base set and the inner product metric.
func TestE2E_CompressedMemoryStore(t *testing.T) {
	const dim = 8
	ctx := context.Background()
	rng := testutil.NewRNG(99)
	baseData, queryData := rng.Uniform(500, dim), rng.Uniform(10, dim)

	var plain bytes.Buffer
	_, err := vectorset.Encode(&plain, baseData, dim)
	require.NoError(t, err)
	var compressed bytes.Buffer
	enc, err := zstd.NewWriter(&compressed)
	require.NoError(t, err)
	_, err = enc.Write(plain.Bytes())
	require.NoError(t, err)
	require.NoError(t, enc.Close())

	store := blobstore.NewMemoryStore()
	require.NoError(t, store.Put(ctx, "base.fbin.zst", compressed.Bytes()))
	plain.Reset()
	_, err = vectorset.Encode(&plain, queryData, dim)
	require.NoError(t, err)
	require.NoError(t, store.Put(ctx, "query.fbin", plain.Bytes()))

	metrics := &vecgt.BasicMetricsCollector{}
	eng := vecgt.New(
		vecgt.WithMetric(distance.MetricInnerProduct),
		vecgt.WithMetricsCollector(metrics),
		vecgt.WithBaseBlock(64),
	)
	base, err := eng.Load(ctx, store, "base.fbin.zst")
	require.NoError(t, err)
	queries, err := eng.Load(ctx, store, "query.fbin")
	require.NoError(t, err)

	res, err := eng.Run(ctx, base, queries, 5)
	require.NoError(t, err)

	want := testutil.BruteForce(baseData, queryData, dim, 5, distance.NegativeDot)
	for q := range want {
		assert.Equal(t, want[q], res.Row(q))
	}

	require.NoError(t, gtfile.WriteBlob(ctx, store, "gt.ibin", res, gtfile.WithLayout(gtfile.LayoutBin)))
	tbl, err := gtfile.ReadBlob(ctx, store, "gt.ibin", 0, 0, gtfile.WithLayout(gtfile.LayoutBin))
	require.NoError(t, err)
	assert.Equal(t, 10, tbl.Len())

	stats := metrics.GetStats()
	assert.Equal(t, int64(2), stats.LoadCount)
	assert.Equal(t, int64(1), stats.RunCount)
}
