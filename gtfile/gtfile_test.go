package gtfile

import (
	"bytes"
	"context"
	"encoding/binary"
	"math"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hupe1980/vecgt"
	"github.com/hupe1980/vecgt/blobstore"
	"github.com/hupe1980/vecgt/internal/fs"
)

func sampleMatrix(t *testing.T) *vecgt.ResultMatrix {
	t.Helper()
	m, err := vecgt.NewResultMatrix(2, [][]vecgt.Neighbor{
		{{Index: 0, Distance: 0}, {Index: 1, Distance: 1}},
		{{Index: 3, Distance: 0.25}, {Index: 2, Distance: 1.5}},
		{{Index: 4, Distance: 2}},
	})
	require.NoError(t, err)
	return m
}

func TestWriteRawLayout(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, Write(context.Background(), &buf, sampleMatrix(t)))

	data := buf.Bytes()
	require.Len(t, data, 3*2*8)

	idx := make([]int32, 6)
	require.NoError(t, binary.Read(bytes.NewReader(data[:24]), binary.LittleEndian, idx))
	assert.Equal(t, []int32{0, 1, 3, 2, 4, -1}, idx)

	dist := make([]float32, 6)
	require.NoError(t, binary.Read(bytes.NewReader(data[24:]), binary.LittleEndian, dist))
	assert.Equal(t, []float32{0, 1, 0.25, 1.5, 2}, dist[:5])
	assert.True(t, math.IsInf(float64(dist[5]), 1))

	size, err := Size(3, 2)
	require.NoError(t, err)
	assert.Equal(t, int64(len(data)), size)
}

func TestRoundTrip(t *testing.T) {
	m := sampleMatrix(t)
	want := FromMatrix(m)

	for _, layout := range []Layout{LayoutRaw, LayoutBin} {
		for _, bits := range []int{32, 64} {
			t.Run(layout.String(), func(t *testing.T) {
				opts := []Option{WithLayout(layout), WithDistanceBits(bits)}
				var buf bytes.Buffer
				require.NoError(t, Write(context.Background(), &buf, m, opts...))

				size, err := Size(m.Len(), m.K(), opts...)
				require.NoError(t, err)
				assert.Equal(t, size, int64(buf.Len()))

				nq, k := m.Len(), m.K()
				if layout == LayoutBin {
					nq, k = 0, 0
				}
				got, err := Read(&buf, nq, k, opts...)
				require.NoError(t, err)
				assert.Equal(t, want, got)
				assert.Equal(t, 3, got.Len())
				assert.Equal(t, 2, got.K())
			})
		}
	}
}

func TestRawInfersQueryCount(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, Write(context.Background(), &buf, sampleMatrix(t)))

	got, err := Decode(buf.Bytes(), 0, 2)
	require.NoError(t, err)
	assert.Equal(t, 3, got.Len())

	_, err = Decode(buf.Bytes(), 0, 5)
	assert.ErrorIs(t, err, ErrFormat)
	_, err = Decode(buf.Bytes(), 0, 0)
	assert.ErrorIs(t, err, ErrFormat)
}

func TestBinPreamble(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, Write(context.Background(), &buf, sampleMatrix(t), WithLayout(LayoutBin)))
	data := buf.Bytes()
	assert.Equal(t, uint32(3), binary.LittleEndian.Uint32(data[0:4]))
	assert.Equal(t, uint32(2), binary.LittleEndian.Uint32(data[4:8]))

	_, err := Decode(data, 4, 2, WithLayout(LayoutBin))
	assert.ErrorIs(t, err, ErrFormat)
	_, err = Decode(data[:5], 0, 0, WithLayout(LayoutBin))
	assert.ErrorIs(t, err, ErrFormat)
	_, err = Decode(data[:len(data)-1], 0, 0, WithLayout(LayoutBin))
	assert.ErrorIs(t, err, ErrFormat)
}

func TestInvalidOptions(t *testing.T) {
	var buf bytes.Buffer
	err := Write(context.Background(), &buf, sampleMatrix(t), WithDistanceBits(16))
	assert.Error(t, err)
	assert.Zero(t, buf.Len())

	_, err = ParseLayout("csv")
	assert.Error(t, err)
	l, err := ParseLayout("ibin")
	require.NoError(t, err)
	assert.Equal(t, LayoutBin, l)
}

func TestWriteFile(t *testing.T) {
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "out", "gt.bin")

	require.NoError(t, WriteFile(ctx, fs.Default, path, sampleMatrix(t), WithLayout(LayoutBin)))

	got, err := ReadFile(ctx, path, 0, 0, WithLayout(LayoutBin))
	require.NoError(t, err)
	assert.Equal(t, FromMatrix(sampleMatrix(t)), got)

	entries, err := os.ReadDir(filepath.Dir(path))
	require.NoError(t, err)
	assert.Len(t, entries, 1, "no temporary file may remain")
}

func TestWriteFileFailureIsAtomic(t *testing.T) {
	ctx := context.Background()

	faults := map[string]fs.Fault{
		"Write":  {FailAfterBytes: 0},
		"Sync":   {FailAfterBytes: -1, FailOnSync: true},
		"Rename": {FailAfterBytes: -1, FailOnRename: true},
	}
	for name, fault := range faults {
		t.Run(name, func(t *testing.T) {
			dir := t.TempDir()
			path := filepath.Join(dir, "gt.bin")

			faulty := fs.NewFaultyFS(nil)
			faulty.AddRule("gt.bin", fault)

			err := WriteFile(ctx, faulty, path, sampleMatrix(t))
			require.Error(t, err)
			assert.ErrorIs(t, err, ErrIO)
			assert.ErrorIs(t, err, fs.ErrInjected)

			entries, err := os.ReadDir(dir)
			require.NoError(t, err)
			assert.Empty(t, entries)
		})
	}
}

func TestWriteFileFailureKeepsPrevious(t *testing.T) {
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "gt.bin")
	require.NoError(t, os.WriteFile(path, []byte("previous"), 0o600))

	faulty := fs.NewFaultyFS(nil)
	faulty.AddRule("gt.bin", fs.Fault{FailAfterBytes: -1, FailOnSync: true})
	require.Error(t, WriteFile(ctx, faulty, path, sampleMatrix(t)))

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, "previous", string(data))
}

func TestWriteBlob(t *testing.T) {
	ctx := context.Background()
	store := blobstore.NewMemoryStore()

	require.NoError(t, WriteBlob(ctx, store, "gt.bin", sampleMatrix(t), WithDistanceBits(64)))
	got, err := ReadBlob(ctx, store, "gt.bin", 3, 2, WithDistanceBits(64))
	require.NoError(t, err)
	assert.Equal(t, FromMatrix(sampleMatrix(t)), got)

	_, err = ReadBlob(ctx, store, "missing.bin", 3, 2)
	assert.ErrorIs(t, err, ErrIO)
}

func TestWriteBlobCancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	store := blobstore.NewMemoryStore()
	err := WriteBlob(ctx, store, "gt.bin", sampleMatrix(t))
	assert.ErrorIs(t, err, context.Canceled)
	assert.False(t, store.Has("gt.bin"))
}

func TestTruncate(t *testing.T) {
	tbl := FromMatrix(sampleMatrix(t))
	one := tbl.Truncate(1)
	assert.Equal(t, 1, one.K())
	assert.Equal(t, []int32{3}, one.Indices[1])
	assert.Same(t, tbl, tbl.Truncate(5))
}
