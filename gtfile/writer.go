package gtfile

import (
	"context"
	"encoding/binary"
	"fmt"
	"io"
	"math"
	"path/filepath"

	"github.com/hupe1980/vecgt"
	"github.com/hupe1980/vecgt/blobstore"
	"github.com/hupe1980/vecgt/internal/conv"
	"github.com/hupe1980/vecgt/internal/fs"
)

// chunkSize is the encode buffer size.
const chunkSize = 256 * 1024

// Write encodes m to w. Context cancellation is checked between chunks.
func Write(ctx context.Context, w io.Writer, m *vecgt.ResultMatrix, optFns ...Option) error {
	o, err := applyOptions(optFns)
	if err != nil {
		return err
	}
	enc := &encoder{ctx: ctx, w: w, buf: make([]byte, 0, chunkSize)}

	if o.layout == LayoutBin {
		nq, err := conv.IntToInt32(m.Len())
		if err != nil {
			return err
		}
		k, err := conv.IntToInt32(m.K())
		if err != nil {
			return err
		}
		enc.buf = binary.LittleEndian.AppendUint32(enc.buf, uint32(nq))
		enc.buf = binary.LittleEndian.AppendUint32(enc.buf, uint32(k))
	}

	k := m.K()
	for i := range m.Len() {
		row := m.Row(i)
		for j := range k {
			idx := vecgt.PaddingIndex
			if j < len(row) {
				idx = int32(row[j].Index)
			}
			if err := enc.put32(uint32(idx)); err != nil {
				return err
			}
		}
	}
	for i := range m.Len() {
		row := m.Row(i)
		for j := range k {
			d := math.Inf(1)
			if j < len(row) {
				d = row[j].Distance
			}
			if o.distanceBits == 64 {
				err = enc.put64(math.Float64bits(d))
			} else {
				err = enc.put32(math.Float32bits(float32(d)))
			}
			if err != nil {
				return err
			}
		}
	}
	return enc.flush()
}

type encoder struct {
	ctx context.Context
	w   io.Writer
	buf []byte
}

func (e *encoder) put32(v uint32) error {
	if len(e.buf)+4 > cap(e.buf) {
		if err := e.flush(); err != nil {
			return err
		}
	}
	e.buf = binary.LittleEndian.AppendUint32(e.buf, v)
	return nil
}

func (e *encoder) put64(v uint64) error {
	if len(e.buf)+8 > cap(e.buf) {
		if err := e.flush(); err != nil {
			return err
		}
	}
	e.buf = binary.LittleEndian.AppendUint64(e.buf, v)
	return nil
}

func (e *encoder) flush() error {
	if err := e.ctx.Err(); err != nil {
		return err
	}
	if len(e.buf) == 0 {
		return nil
	}
	_, err := e.w.Write(e.buf)
	e.buf = e.buf[:0]
	return err
}

// WriteFile atomically writes m to path on fsys. On failure the target is
// left untouched and no temporary file remains.
func WriteFile(ctx context.Context, fsys fs.FileSystem, path string, m *vecgt.ResultMatrix, optFns ...Option) error {
	store := blobstore.NewLocalStore(filepath.Dir(path), blobstore.WithFileSystem(fsys))
	if err := WriteBlob(ctx, store, filepath.Base(path), m, optFns...); err != nil {
		return fmt.Errorf("write %s: %w", path, err)
	}
	return nil
}

// WriteBlob streams m into a new blob of store. The blob is aborted on
// failure, so it is published either completely or not at all.
func WriteBlob(ctx context.Context, store blobstore.BlobStore, name string, m *vecgt.ResultMatrix, optFns ...Option) error {
	if _, err := applyOptions(optFns); err != nil {
		return err
	}
	wb, err := store.Create(ctx, name)
	if err != nil {
		return fmt.Errorf("%w: create %s: %w", ErrIO, name, err)
	}
	if err := Write(ctx, wb, m, optFns...); err != nil {
		_ = wb.Abort()
		if ctx.Err() != nil {
			return err
		}
		return fmt.Errorf("%w: %w", ErrIO, err)
	}
	if err := wb.Close(); err != nil {
		_ = wb.Abort()
		return fmt.Errorf("%w: publish %s: %w", ErrIO, name, err)
	}
	return nil
}

// FromMatrix converts a result matrix into a padded Table.
func FromMatrix(m *vecgt.ResultMatrix) *Table {
	k := m.K()
	idx, dist := m.Indices(), m.Distances()
	t := &Table{
		Indices:   make([][]int32, m.Len()),
		Distances: make([][]float64, m.Len()),
	}
	for q := range m.Len() {
		t.Indices[q] = idx[q*k : (q+1)*k : (q+1)*k]
		t.Distances[q] = dist[q*k : (q+1)*k : (q+1)*k]
	}
	return t
}
