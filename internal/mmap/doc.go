// Package mmap provides read-only memory-mapped file access.
//
// Base vector sets in the million-vector range are mapped rather than read so
// that workers share one page-cache-backed copy of the payload.
//
//	m, err := mmap.Open("base.fbin")
//	if err != nil { ... }
//	defer m.Close()
//
//	payload, _ := m.Region(8, m.Size()-8)
//	_ = payload.Advise(mmap.AccessSequential)
//
// Unix uses mmap(2) and madvise(2); Windows uses CreateFileMapping and
// MapViewOfFile, where Advise is a no-op.
//
// Mapping and Region are safe for concurrent reads. Close is idempotent, but
// callers must not touch slices returned by Bytes after Close.
package mmap
