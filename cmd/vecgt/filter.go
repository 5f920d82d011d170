package main

import (
	"context"
	"encoding/binary"
	"fmt"
	"strings"

	"github.com/RoaringBitmap/roaring/v2"

	"github.com/hupe1980/vecgt/blobstore"
)

// loadFilter reads the base indices allowed as neighbors. Files ending in
// .roaring hold a serialized bitmap; anything else is a flat array of
// little-endian uint32 ids.
func loadFilter(ctx context.Context, raw string) (*roaring.Bitmap, error) {
	store, name, err := openLocation(ctx, raw)
	if err != nil {
		return nil, err
	}
	blob, err := store.Open(ctx, name)
	if err != nil {
		return nil, fmt.Errorf("open filter: %w", err)
	}
	defer blob.Close()

	data, err := blobstore.ReadAll(ctx, blob)
	if err != nil {
		return nil, fmt.Errorf("read filter: %w", err)
	}
	return parseFilter(name, data)
}

func parseFilter(name string, data []byte) (*roaring.Bitmap, error) {
	bm := roaring.New()
	if strings.HasSuffix(strings.ToLower(name), ".roaring") {
		if err := bm.UnmarshalBinary(data); err != nil {
			return nil, fmt.Errorf("decode filter %s: %w", name, err)
		}
		return bm, nil
	}

	if len(data)%4 != 0 {
		return nil, fmt.Errorf("filter %s: %d bytes is not a whole number of uint32 ids", name, len(data))
	}
	ids := make([]uint32, len(data)/4)
	for i := range ids {
		ids[i] = binary.LittleEndian.Uint32(data[i*4:])
	}
	bm.AddMany(ids)
	return bm, nil
}
