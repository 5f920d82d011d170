package vectorset

import (
	"bytes"
	"context"
	"encoding/binary"
	"io"
	"os"
	"path/filepath"
	"testing"

	"github.com/klauspost/compress/gzip"
	"github.com/klauspost/compress/zstd"
	"github.com/pierrec/lz4/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hupe1980/vecgt/blobstore"
)

func encode(t *testing.T, data []float32, dim int) []byte {
	t.Helper()
	var buf bytes.Buffer
	_, err := Encode(&buf, data, dim)
	require.NoError(t, err)
	return buf.Bytes()
}

func rawFile(count, dim int32, payload []byte) []byte {
	b := make([]byte, HeaderSize, HeaderSize+len(payload))
	binary.LittleEndian.PutUint32(b[0:4], uint32(count))
	binary.LittleEndian.PutUint32(b[4:8], uint32(dim))
	return append(b, payload...)
}

func TestOpenLocalFile(t *testing.T) {
	data := []float32{0, 0, 1, 0, 0, 1, 3, 4}
	path := filepath.Join(t.TempDir(), "base.fbin")
	require.NoError(t, os.WriteFile(path, encode(t, data, 2), 0o600))

	vs, err := Open(context.Background(), path)
	require.NoError(t, err)
	defer vs.Close()

	assert.Equal(t, path, vs.Name())
	assert.Equal(t, 4, vs.Count())
	assert.Equal(t, 2, vs.Dimension())
	assert.Equal(t, ElementFloat32, vs.ElementType())
	assert.Equal(t, littleEndian, vs.Mapped())
	assert.Equal(t, []float32{1, 0}, vs.Vector(1))
	assert.Equal(t, []float32{0, 1, 3, 4}, vs.Rows(2, 2))
	assert.Equal(t, data, vs.Data())
	assert.Equal(t, int64(32), vs.SizeBytes())

	require.NoError(t, vs.Close())
	require.NoError(t, vs.Close())
}

func TestOpenWithCopy(t *testing.T) {
	data := []float32{1, 2, 3, 4, 5, 6}
	path := filepath.Join(t.TempDir(), "q.fbin")
	require.NoError(t, os.WriteFile(path, encode(t, data, 3), 0o600))

	vs, err := Open(context.Background(), path, WithCopy())
	require.NoError(t, err)
	defer vs.Close()

	assert.False(t, vs.Mapped())
	assert.Equal(t, data, vs.Data())
}

func TestLoadMemoryStoreCopies(t *testing.T) {
	ctx := context.Background()
	store := blobstore.NewMemoryStore()
	data := []float32{0.5, -1, 2, 7}
	require.NoError(t, store.Put(ctx, "v.fbin", encode(t, data, 2)))

	vs, err := Load(ctx, store, "v.fbin")
	require.NoError(t, err)
	defer vs.Close()

	assert.False(t, vs.Mapped())
	assert.Equal(t, 2, vs.Count())
	assert.Equal(t, data, vs.Data())
}

func TestLoadEmptySet(t *testing.T) {
	ctx := context.Background()
	store := blobstore.NewMemoryStore()
	require.NoError(t, store.Put(ctx, "empty.fbin", rawFile(0, 16, nil)))

	vs, err := Load(ctx, store, "empty.fbin")
	require.NoError(t, err)
	assert.Equal(t, 0, vs.Count())
	assert.Equal(t, 16, vs.Dimension())
}

func TestLoadFormatErrors(t *testing.T) {
	ctx := context.Background()
	four := make([]byte, 4*4)

	tests := []struct {
		name   string
		raw    []byte
		reason string
	}{
		{"short header", []byte{1, 0, 0}, "truncated header"},
		{"empty file", nil, "truncated header"},
		{"truncated payload", rawFile(3, 2, four), "truncated payload"},
		{"trailing data", rawFile(1, 2, four), "trailing data after payload"},
		{"not a multiple of dimension", rawFile(1, 3, four), "payload is not a multiple of the dimension"},
		{"partial element", rawFile(1, 1, []byte{1, 2, 3}), "payload is not a whole number of elements"},
		{"negative count", rawFile(-1, 2, nil), "negative count"},
		{"negative dimension", rawFile(1, -2, nil), "negative dimension"},
		{"zero dimension", rawFile(2, 0, nil), "zero dimension with non-zero count"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			store := blobstore.NewMemoryStore()
			require.NoError(t, store.Put(ctx, "bad.fbin", tt.raw))

			_, err := Load(ctx, store, "bad.fbin")
			var fe *FormatError
			require.ErrorAs(t, err, &fe)
			assert.Equal(t, tt.reason, fe.Reason)
			assert.Equal(t, "bad.fbin", fe.Path)
			assert.NotErrorIs(t, err, ErrIO)
		})
	}
}

func TestLoadFormatErrors_Mapped(t *testing.T) {
	ctx := context.Background()
	dir := t.TempDir()
	store := blobstore.NewLocalStore(dir)

	tests := []struct {
		name   string
		raw    []byte
		reason string
	}{
		{"empty.fbin", nil, "truncated header"},
		{"short.fbin", []byte{1, 0, 0}, "truncated header"},
		{"header-only.fbin", rawFile(1, 2, nil), "truncated payload"},
		{"trailing.fbin", rawFile(1, 1, make([]byte, 8)), "trailing data after payload"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			require.NoError(t, os.WriteFile(filepath.Join(dir, tt.name), tt.raw, 0o600))

			_, err := Load(ctx, store, tt.name)
			var fe *FormatError
			require.ErrorAs(t, err, &fe)
			assert.Equal(t, tt.reason, fe.Reason)
			assert.Equal(t, int64(len(tt.raw)), fe.Actual)
		})
	}
}

func TestTruncatedPayloadSizes(t *testing.T) {
	_, err := Parse("x.fbin", rawFile(3, 2, make([]byte, 16)), ElementAuto)
	var fe *FormatError
	require.ErrorAs(t, err, &fe)
	assert.Equal(t, int64(HeaderSize+3*2*4), fe.Expected)
	assert.Equal(t, int64(HeaderSize+16), fe.Actual)
	assert.Contains(t, fe.Error(), "x.fbin")
}

func TestOpenFormatErrorCarriesPath(t *testing.T) {
	path := filepath.Join(t.TempDir(), "broken.fbin")
	require.NoError(t, os.WriteFile(path, rawFile(5, 4, nil), 0o600))

	_, err := Open(context.Background(), path)
	var fe *FormatError
	require.ErrorAs(t, err, &fe)
	assert.Equal(t, path, fe.Path)
}

func TestOpenMissingFile(t *testing.T) {
	_, err := Open(context.Background(), filepath.Join(t.TempDir(), "missing.fbin"))
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrIO)
	assert.ErrorIs(t, err, os.ErrNotExist)
}

func TestByteElementTypes(t *testing.T) {
	ctx := context.Background()
	store := blobstore.NewMemoryStore()
	require.NoError(t, store.Put(ctx, "b.u8bin", rawFile(2, 2, []byte{0, 255, 7, 128})))
	require.NoError(t, store.Put(ctx, "b.i8bin", rawFile(2, 2, []byte{0, 255, 7, 128})))

	u8, err := Load(ctx, store, "b.u8bin")
	require.NoError(t, err)
	assert.Equal(t, ElementUint8, u8.ElementType())
	assert.Equal(t, []float32{0, 255, 7, 128}, u8.Data())

	i8, err := Load(ctx, store, "b.i8bin")
	require.NoError(t, err)
	assert.Equal(t, ElementInt8, i8.ElementType())
	assert.Equal(t, []float32{0, -1, 7, -128}, i8.Data())

	// An explicit type wins over the name.
	forced, err := Load(ctx, store, "b.i8bin", WithElementType(ElementUint8))
	require.NoError(t, err)
	assert.Equal(t, []float32{0, 255, 7, 128}, forced.Data())
}

func TestCompressedInputs(t *testing.T) {
	ctx := context.Background()
	data := []float32{1, 2, 3, 4, 5, 6, 7, 8, 9}
	plain := encode(t, data, 3)

	compress := map[string]func(w io.Writer) io.WriteCloser{
		"v.fbin.zst": func(w io.Writer) io.WriteCloser {
			enc, err := zstd.NewWriter(w)
			require.NoError(t, err)
			return enc
		},
		"v.fbin.gz": func(w io.Writer) io.WriteCloser {
			return gzip.NewWriter(w)
		},
		"v.fbin.lz4": func(w io.Writer) io.WriteCloser {
			return lz4.NewWriter(w)
		},
	}

	for name, mk := range compress {
		t.Run(name, func(t *testing.T) {
			var buf bytes.Buffer
			w := mk(&buf)
			_, err := w.Write(plain)
			require.NoError(t, err)
			require.NoError(t, w.Close())

			store := blobstore.NewMemoryStore()
			require.NoError(t, store.Put(ctx, name, buf.Bytes()))

			vs, err := Load(ctx, store, name)
			require.NoError(t, err)
			assert.Equal(t, 3, vs.Count())
			assert.Equal(t, data, vs.Data())

			h, err := ReadHeader(ctx, store, name)
			require.NoError(t, err)
			assert.Equal(t, 3, h.Count)
			assert.Equal(t, 3, h.Dimension)
			assert.NotEqual(t, CompressionNone, h.Compression)
		})
	}
}

func TestCorruptCompressedInput(t *testing.T) {
	ctx := context.Background()
	store := blobstore.NewMemoryStore()
	require.NoError(t, store.Put(ctx, "v.fbin.gz", []byte("not gzip at all")))

	_, err := Load(ctx, store, "v.fbin.gz")
	assert.ErrorIs(t, err, ErrIO)
}

func TestReadHeader(t *testing.T) {
	ctx := context.Background()
	store := blobstore.NewMemoryStore()
	require.NoError(t, store.Put(ctx, "q.u8bin", rawFile(3, 4, make([]byte, 12))))

	h, err := ReadHeader(ctx, store, "q.u8bin")
	require.NoError(t, err)
	assert.Equal(t, Header{Count: 3, Dimension: 4, Element: ElementUint8, Size: 20}, h)
	assert.Equal(t, int64(20), h.PayloadSize())

	require.NoError(t, store.Put(ctx, "short.fbin", []byte{1}))
	_, err = ReadHeader(ctx, store, "short.fbin")
	var fe *FormatError
	assert.ErrorAs(t, err, &fe)
}

func TestFromSlice(t *testing.T) {
	vs, err := FromSlice([]float32{1, 2, 3, 4}, 2)
	require.NoError(t, err)
	assert.Equal(t, 2, vs.Count())
	assert.Equal(t, []float32{3, 4}, vs.Vector(1))
	assert.NoError(t, vs.Close())

	_, err = FromSlice([]float32{1, 2, 3}, 2)
	assert.Error(t, err)
	_, err = FromSlice([]float32{1}, 0)
	assert.Error(t, err)
}

func TestWriteToRoundTrip(t *testing.T) {
	vs, err := FromSlice([]float32{1.5, -2.25, 3, 0}, 2)
	require.NoError(t, err)

	var buf bytes.Buffer
	n, err := vs.WriteTo(&buf)
	require.NoError(t, err)
	assert.Equal(t, int64(HeaderSize+16), n)

	back, err := Parse("rt.fbin", buf.Bytes(), ElementAuto)
	require.NoError(t, err)
	assert.Equal(t, vs.Data(), back.Data())
}

func TestParseElementType(t *testing.T) {
	for in, want := range map[string]ElementType{
		"":      ElementAuto,
		"float": ElementFloat32,
		"u8bin": ElementUint8,
		"INT8":  ElementInt8,
	} {
		got, err := ParseElementType(in)
		require.NoError(t, err)
		assert.Equal(t, want, got, in)
	}
	_, err := ParseElementType("float16")
	assert.Error(t, err)
}
