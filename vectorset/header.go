package vectorset

import (
	"context"
	"encoding/binary"
	"io"

	"github.com/hupe1980/vecgt/blobstore"
)

// Header describes a vector file without loading its payload.
type Header struct {
	Count       int
	Dimension   int
	Element     ElementType
	Compression Compression
	// Size is the stored size in bytes (compressed size for compressed files).
	Size int64
}

// ReadHeader reads the count/dimension preamble of the named file.
func ReadHeader(ctx context.Context, store blobstore.BlobStore, name string) (Header, error) {
	comp, elem := detect(name)
	blob, err := store.Open(ctx, name)
	if err != nil {
		return Header{}, ioError(name, "open", err)
	}
	defer blob.Close()

	h := Header{Element: elem, Compression: comp, Size: blob.Size()}
	var hdr [HeaderSize]byte
	if comp == CompressionNone {
		if blob.Size() < HeaderSize {
			return h, &FormatError{Path: name, Reason: "truncated header", Expected: HeaderSize, Actual: blob.Size()}
		}
		if _, err := blob.ReadAt(ctx, hdr[:], 0); err != nil && err != io.EOF {
			return h, ioError(name, "read", err)
		}
	} else {
		if blob.Size() == 0 {
			return h, &FormatError{Path: name, Reason: "truncated header", Expected: HeaderSize, Actual: 0}
		}
		rc, err := blob.ReadRange(ctx, 0, blob.Size())
		if err != nil {
			return h, ioError(name, "read", err)
		}
		defer rc.Close()
		r, release, err := decompressor(comp, rc)
		if err != nil {
			return h, ioError(name, "decompress", err)
		}
		defer release()
		if n, err := io.ReadFull(r, hdr[:]); err != nil {
			if err == io.ErrUnexpectedEOF || err == io.EOF {
				return h, &FormatError{Path: name, Reason: "truncated header", Expected: HeaderSize, Actual: int64(n)}
			}
			return h, ioError(name, "decompress", err)
		}
	}

	count := int32(binary.LittleEndian.Uint32(hdr[0:4]))
	dim := int32(binary.LittleEndian.Uint32(hdr[4:8]))
	if count < 0 || dim < 0 {
		return h, &FormatError{Path: name, Reason: "negative header field", Expected: -1, Actual: int64(min(count, dim))}
	}
	h.Count, h.Dimension = int(count), int(dim)
	return h, nil
}

// PayloadSize returns the decoded file size implied by the header.
func (h Header) PayloadSize() int64 {
	return HeaderSize + int64(h.Count)*int64(h.Dimension)*int64(h.Element.Size())
}
