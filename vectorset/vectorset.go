package vectorset

import (
	"context"
	"encoding/binary"
	"errors"
	"fmt"
	"io"
	"math"
	"path/filepath"
	"sync"
	"unsafe"

	"github.com/hupe1980/vecgt/blobstore"
	"github.com/hupe1980/vecgt/internal/conv"
)

// HeaderSize is the size of the count/dimension preamble in bytes.
const HeaderSize = 8

var littleEndian = func() bool {
	x := uint16(1)
	return *(*byte)(unsafe.Pointer(&x)) == 1
}()

// VectorSet is an immutable collection of Count() vectors of Dimension()
// float32 components, stored row-major. It is safe for concurrent reads.
type VectorSet struct {
	name  string
	count int
	dim   int
	elem  ElementType
	data  []float32

	mapped    bool
	closeOnce sync.Once
	closer    io.Closer
	closeErr  error
}

// Option configures loading.
type Option func(*options)

type options struct {
	elem      ElementType
	forceCopy bool
}

// WithElementType overrides element type detection from the file name.
func WithElementType(t ElementType) Option {
	return func(o *options) {
		o.elem = t
	}
}

// WithCopy loads the payload into owned memory even when it could be mapped.
func WithCopy() Option {
	return func(o *options) {
		o.forceCopy = true
	}
}

func applyOptions(optFns []Option) options {
	var o options
	for _, fn := range optFns {
		fn(&o)
	}
	return o
}

// Open loads a vector file from the local file system.
func Open(ctx context.Context, path string, optFns ...Option) (*VectorSet, error) {
	store := blobstore.NewLocalStore(filepath.Dir(path))
	vs, err := Load(ctx, store, filepath.Base(path), optFns...)
	if err != nil {
		var fe *FormatError
		if errors.As(err, &fe) {
			fe.Path = path
		}
		return nil, err
	}
	vs.name = path
	return vs, nil
}

// Load reads the named vector file from store.
func Load(ctx context.Context, store blobstore.BlobStore, name string, optFns ...Option) (*VectorSet, error) {
	o := applyOptions(optFns)
	comp, detected := detect(name)
	elem := o.elem
	if elem == ElementAuto {
		elem = detected
	}

	blob, err := store.Open(ctx, name)
	if err != nil {
		return nil, ioError(name, "open", err)
	}

	if comp != CompressionNone {
		defer blob.Close()
		raw, err := readCompressed(ctx, blob, comp)
		if err != nil {
			return nil, ioError(name, "decompress", err)
		}
		return Parse(name, raw, elem)
	}

	if m, ok := blob.(blobstore.Mappable); ok && !o.forceCopy {
		hdr, body, err := mapRegions(m, blob.Size())
		if err != nil {
			_ = blob.Close()
			return nil, ioError(name, "map", err)
		}
		vs, err := parse(name, hdr, body, elem, true)
		if err != nil {
			_ = blob.Close()
			return nil, err
		}
		if vs.mapped {
			vs.closer = blob
		} else {
			_ = blob.Close()
		}
		return vs, nil
	}

	defer blob.Close()
	raw, err := blobstore.ReadAll(ctx, blob)
	if err != nil {
		return nil, ioError(name, "read", err)
	}
	return Parse(name, raw, elem)
}

func readCompressed(ctx context.Context, blob blobstore.Blob, comp Compression) ([]byte, error) {
	if blob.Size() == 0 {
		return nil, io.ErrUnexpectedEOF
	}
	rc, err := blob.ReadRange(ctx, 0, blob.Size())
	if err != nil {
		return nil, err
	}
	defer rc.Close()

	r, release, err := decompressor(comp, rc)
	if err != nil {
		return nil, err
	}
	defer release()
	return io.ReadAll(r)
}

// Parse decodes an in-memory vector file. The returned set never aliases raw.
func Parse(name string, raw []byte, elem ElementType) (*VectorSet, error) {
	if elem == ElementAuto {
		_, elem = detect(name)
	}
	if len(raw) < HeaderSize {
		return parse(name, raw, nil, elem, false)
	}
	return parse(name, raw[:HeaderSize], raw[HeaderSize:], elem, false)
}

// mapRegions returns the header and payload windows of a mapped blob. The
// payload window is hinted for a sequential scan.
func mapRegions(m blobstore.Mappable, size int64) (hdr, body []byte, err error) {
	hdr, err = m.Region(0, min(size, HeaderSize))
	if err != nil || size <= HeaderSize {
		return hdr, nil, err
	}
	body, err = m.Region(HeaderSize, size-HeaderSize)
	return hdr, body, err
}

// parse validates the header and payload size. With alias set, a float32
// payload on a little-endian host is viewed in place.
func parse(name string, hdr, body []byte, elem ElementType, alias bool) (*VectorSet, error) {
	total := int64(len(hdr)) + int64(len(body))
	if len(hdr) < HeaderSize {
		return nil, &FormatError{Path: name, Reason: "truncated header", Expected: HeaderSize, Actual: total}
	}
	count := int32(binary.LittleEndian.Uint32(hdr[0:4]))
	dim := int32(binary.LittleEndian.Uint32(hdr[4:8]))
	if count < 0 {
		return nil, &FormatError{Path: name, Reason: "negative count", Expected: -1, Actual: int64(count)}
	}
	if dim < 0 {
		return nil, &FormatError{Path: name, Reason: "negative dimension", Expected: -1, Actual: int64(dim)}
	}
	if dim == 0 && count != 0 {
		return nil, &FormatError{Path: name, Reason: "zero dimension with non-zero count", Expected: -1, Actual: int64(count)}
	}

	esize := int64(elem.Size())
	payload := total - HeaderSize
	if payload%esize != 0 {
		return nil, &FormatError{Path: name, Reason: "payload is not a whole number of elements", Expected: payload - payload%esize, Actual: payload}
	}
	if dim > 0 && (payload/esize)%int64(dim) != 0 {
		return nil, &FormatError{Path: name, Reason: "payload is not a multiple of the dimension", Expected: payload - (payload/esize)%int64(dim)*esize, Actual: payload}
	}

	elements, err := conv.MulNonNeg(int(count), int(dim))
	if err != nil {
		return nil, &FormatError{Path: name, Reason: "header overflows", Expected: -1, Actual: int64(count)}
	}
	want := HeaderSize + int64(elements)*esize
	if total < want {
		return nil, &FormatError{Path: name, Reason: "truncated payload", Expected: want, Actual: total}
	}
	if total > want {
		return nil, &FormatError{Path: name, Reason: "trailing data after payload", Expected: want, Actual: total}
	}

	vs := &VectorSet{name: name, count: int(count), dim: int(dim), elem: elem}
	switch elem {
	case ElementUint8:
		vs.data = make([]float32, elements)
		for i, b := range body {
			vs.data[i] = float32(b)
		}
	case ElementInt8:
		vs.data = make([]float32, elements)
		for i, b := range body {
			vs.data[i] = float32(int8(b))
		}
	default:
		if alias && canAlias(body) {
			vs.data = unsafe.Slice((*float32)(unsafe.Pointer(unsafe.SliceData(body))), elements)
			vs.mapped = true
			break
		}
		vs.data = make([]float32, elements)
		for i := range vs.data {
			vs.data[i] = math.Float32frombits(binary.LittleEndian.Uint32(body[i*4:]))
		}
	}
	return vs, nil
}

func canAlias(body []byte) bool {
	if !littleEndian || len(body) == 0 {
		return false
	}
	return uintptr(unsafe.Pointer(unsafe.SliceData(body)))%unsafe.Alignof(float32(0)) == 0
}

// FromSlice wraps data as a set of len(data)/dim vectors. data is not copied.
func FromSlice(data []float32, dim int) (*VectorSet, error) {
	if dim <= 0 {
		return nil, fmt.Errorf("vectorset: dimension must be positive, got %d", dim)
	}
	if len(data)%dim != 0 {
		return nil, fmt.Errorf("vectorset: %d values are not a multiple of dimension %d", len(data), dim)
	}
	if len(data)/dim > math.MaxInt32 {
		return nil, fmt.Errorf("vectorset: %d vectors exceed the int32 count field", len(data)/dim)
	}
	return &VectorSet{name: "memory", count: len(data) / dim, dim: dim, elem: ElementFloat32, data: data}, nil
}

// Name returns the path or blob name the set was loaded from.
func (v *VectorSet) Name() string { return v.name }

// Count returns the number of vectors.
func (v *VectorSet) Count() int { return v.count }

// Dimension returns the number of components per vector.
func (v *VectorSet) Dimension() int { return v.dim }

// ElementType returns the on-disk element type.
func (v *VectorSet) ElementType() ElementType { return v.elem }

// Mapped reports whether the set aliases a memory mapping.
func (v *VectorSet) Mapped() bool { return v.mapped }

// Vector returns vector i. The slice must not be modified.
func (v *VectorSet) Vector(i int) []float32 {
	return v.data[i*v.dim : (i+1)*v.dim : (i+1)*v.dim]
}

// Rows returns vectors [start, start+n) as one contiguous row-major slice.
func (v *VectorSet) Rows(start, n int) []float32 {
	lo, hi := start*v.dim, (start+n)*v.dim
	return v.data[lo:hi:hi]
}

// Data returns the whole row-major payload.
func (v *VectorSet) Data() []float32 { return v.data }

// SizeBytes returns the in-memory payload size.
func (v *VectorSet) SizeBytes() int64 { return int64(len(v.data)) * 4 }

// Close releases a backing mapping. Vectors must not be used afterwards.
// It is idempotent.
func (v *VectorSet) Close() error {
	v.closeOnce.Do(func() {
		if v.closer != nil {
			v.closeErr = v.closer.Close()
		}
	})
	return v.closeErr
}

// WriteTo encodes the set as a float32 vector file.
func (v *VectorSet) WriteTo(w io.Writer) (int64, error) {
	return Encode(w, v.data, v.dim)
}

// Encode writes data as a float32 vector file with the given dimension.
func Encode(w io.Writer, data []float32, dim int) (int64, error) {
	if dim <= 0 || len(data)%dim != 0 {
		return 0, fmt.Errorf("vectorset: cannot encode %d values with dimension %d", len(data), dim)
	}
	count, err := conv.IntToInt32(len(data) / dim)
	if err != nil {
		return 0, err
	}
	d, err := conv.IntToInt32(dim)
	if err != nil {
		return 0, err
	}
	var hdr [HeaderSize]byte
	binary.LittleEndian.PutUint32(hdr[0:4], uint32(count))
	binary.LittleEndian.PutUint32(hdr[4:8], uint32(d))
	n, err := w.Write(hdr[:])
	written := int64(n)
	if err != nil {
		return written, err
	}

	buf := make([]byte, 0, 64*1024)
	for _, f := range data {
		buf = binary.LittleEndian.AppendUint32(buf, math.Float32bits(f))
		if len(buf) == cap(buf) {
			n, err := w.Write(buf)
			written += int64(n)
			if err != nil {
				return written, err
			}
			buf = buf[:0]
		}
	}
	if len(buf) > 0 {
		n, err := w.Write(buf)
		written += int64(n)
		if err != nil {
			return written, err
		}
	}
	return written, nil
}
