package vecgt

// Block is a contiguous index range [Start, Start+Len).
type Block struct {
	Start int
	Len   int
}

// End returns the exclusive upper bound of the block.
func (b Block) End() int { return b.Start + b.Len }

// Blocks partitions [0, count) into ascending blocks of at most size
// elements. The last block holds the remainder. size <= 0 yields a single
// block covering everything. count <= 0 yields no blocks.
func Blocks(count, size int) []Block {
	if count <= 0 {
		return nil
	}
	if size <= 0 || size >= count {
		return []Block{{Start: 0, Len: count}}
	}
	out := make([]Block, 0, (count+size-1)/size)
	for start := 0; start < count; start += size {
		out = append(out, Block{Start: start, Len: min(size, count-start)})
	}
	return out
}
