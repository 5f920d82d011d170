package gtfile

import (
	"bytes"
	"context"
	"encoding/binary"
	"errors"
	"fmt"
	"io"
	"math"
	"path/filepath"

	"github.com/hupe1980/vecgt/blobstore"
	"github.com/hupe1980/vecgt/internal/conv"
)

// Table is a decoded result file.
type Table struct {
	Indices   [][]int32
	Distances [][]float64
}

// Len returns the number of queries.
func (t *Table) Len() int { return len(t.Indices) }

// K returns the number of slots per query.
func (t *Table) K() int {
	if len(t.Indices) == 0 {
		return 0
	}
	return len(t.Indices[0])
}

// Truncate returns a view keeping the first k slots of every row.
func (t *Table) Truncate(k int) *Table {
	if k >= t.K() {
		return t
	}
	out := &Table{Indices: make([][]int32, t.Len()), Distances: make([][]float64, t.Len())}
	for i := range t.Indices {
		out.Indices[i] = t.Indices[i][:k]
		out.Distances[i] = t.Distances[i][:k]
	}
	return out
}

// Read decodes a result file from r.
//
// For LayoutBin, numQueries and k come from the preamble; non-zero arguments
// must agree with it. For LayoutRaw, k is required and numQueries may be
// zero to infer it from the data size.
func Read(r io.Reader, numQueries, k int, optFns ...Option) (*Table, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrIO, err)
	}
	return Decode(data, numQueries, k, optFns...)
}

// ReadFile reads a local result file.
func ReadFile(ctx context.Context, path string, numQueries, k int, optFns ...Option) (*Table, error) {
	store := blobstore.NewLocalStore(filepath.Dir(path))
	t, err := ReadBlob(ctx, store, filepath.Base(path), numQueries, k, optFns...)
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", path, err)
	}
	return t, nil
}

// ReadBlob reads a result file from store.
func ReadBlob(ctx context.Context, store blobstore.BlobStore, name string, numQueries, k int, optFns ...Option) (*Table, error) {
	blob, err := store.Open(ctx, name)
	if err != nil {
		return nil, fmt.Errorf("%w: open %s: %w", ErrIO, name, err)
	}
	defer blob.Close()

	data, err := blobstore.ReadAll(ctx, blob)
	if err != nil {
		return nil, fmt.Errorf("%w: read %s: %w", ErrIO, name, err)
	}
	return Decode(data, numQueries, k, optFns...)
}

// Decode parses an in-memory result file.
func Decode(data []byte, numQueries, k int, optFns ...Option) (*Table, error) {
	o, err := applyOptions(optFns)
	if err != nil {
		return nil, err
	}
	if numQueries < 0 || k < 0 {
		return nil, fmt.Errorf("%w: negative shape %dx%d", ErrFormat, numQueries, k)
	}

	body := data
	if o.layout == LayoutBin {
		if len(data) < PreambleSize {
			return nil, fmt.Errorf("%w: %d bytes is shorter than the preamble", ErrFormat, len(data))
		}
		nq, nqErr := conv.Int32ToCount(int32(binary.LittleEndian.Uint32(data[0:4])))
		kk, kErr := conv.Int32ToCount(int32(binary.LittleEndian.Uint32(data[4:8])))
		if err := errors.Join(nqErr, kErr); err != nil {
			return nil, fmt.Errorf("%w: preamble: %w", ErrFormat, err)
		}
		if (numQueries != 0 && numQueries != nq) || (k != 0 && k != kk) {
			return nil, fmt.Errorf("%w: preamble is %dx%d, expected %dx%d", ErrFormat, nq, kk, numQueries, k)
		}
		numQueries, k = nq, kk
		body = data[PreambleSize:]
	}

	slot := int64(4 + o.distanceSize())
	if o.layout == LayoutRaw {
		if k == 0 {
			return nil, fmt.Errorf("%w: k is required for the raw layout", ErrFormat)
		}
		if numQueries == 0 {
			if int64(len(body))%(int64(k)*slot) != 0 {
				return nil, fmt.Errorf("%w: %d bytes is not a whole number of %d-slot rows", ErrFormat, len(body), k)
			}
			numQueries = int(int64(len(body)) / (int64(k) * slot))
		}
	}

	n := int64(numQueries) * int64(k)
	if want := n * slot; int64(len(body)) != want {
		return nil, fmt.Errorf("%w: expected %d bytes of rows, got %d", ErrFormat, want, len(body))
	}

	t := &Table{
		Indices:   make([][]int32, numQueries),
		Distances: make([][]float64, numQueries),
	}
	idx := make([]int32, n)
	if err := binary.Read(bytes.NewReader(body[:n*4]), binary.LittleEndian, idx); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrFormat, err)
	}
	dist := make([]float64, n)
	region := body[n*4:]
	for i := range dist {
		if o.distanceBits == 64 {
			dist[i] = math.Float64frombits(binary.LittleEndian.Uint64(region[i*8:]))
		} else {
			dist[i] = float64(math.Float32frombits(binary.LittleEndian.Uint32(region[i*4:])))
		}
	}
	for q := range numQueries {
		t.Indices[q] = idx[q*k : (q+1)*k : (q+1)*k]
		t.Distances[q] = dist[q*k : (q+1)*k : (q+1)*k]
	}
	return t, nil
}
