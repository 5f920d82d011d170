package mmap

import "os"

// Region is a window of a Mapping, typically the payload behind a file
// header. It is valid until the parent Mapping is closed.
type Region struct {
	parent *Mapping
	offset int
	size   int
}

// Region returns the window [offset, offset+size) of the mapping.
func (m *Mapping) Region(offset, size int) (*Region, error) {
	if m.closed.Load() {
		return nil, ErrClosed
	}
	if offset < 0 || size < 0 || offset > m.size-size {
		return nil, ErrOutOfBounds
	}
	return &Region{parent: m, offset: offset, size: size}, nil
}

// Len returns the window size in bytes.
func (r *Region) Len() int { return r.size }

// Bytes returns the window, or nil once the parent is closed.
func (r *Region) Bytes() []byte {
	if r.parent.closed.Load() {
		return nil
	}
	return r.parent.data[r.offset : r.offset+r.size]
}

// Advise applies pattern to the pages backing the window. The start is
// rounded down to a page boundary since madvise rejects unaligned addresses.
func (r *Region) Advise(pattern AccessPattern) error {
	if r.parent.closed.Load() {
		return ErrClosed
	}
	if r.size == 0 {
		return nil
	}
	start := r.offset &^ (os.Getpagesize() - 1)
	return osAdvise(r.parent.data[start:r.offset+r.size], pattern)
}
