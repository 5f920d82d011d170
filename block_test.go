package vecgt

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestBlocks(t *testing.T) {
	tests := []struct {
		name        string
		count, size int
		want        []Block
	}{
		{"Exact", 6, 2, []Block{{0, 2}, {2, 2}, {4, 2}}},
		{"Remainder", 7, 3, []Block{{0, 3}, {3, 3}, {6, 1}}},
		{"SizeOne", 3, 1, []Block{{0, 1}, {1, 1}, {2, 1}}},
		{"ZeroSizeIsWhole", 5, 0, []Block{{0, 5}}},
		{"OversizedIsWhole", 5, 50, []Block{{0, 5}}},
		{"Empty", 0, 4, nil},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Blocks(tt.count, tt.size)
			assert.Equal(t, tt.want, got)

			next := 0
			for _, b := range got {
				assert.Equal(t, next, b.Start)
				assert.Positive(t, b.Len)
				next = b.End()
			}
			assert.Equal(t, max(tt.count, 0), next)
		})
	}
}
