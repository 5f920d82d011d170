package blobstore

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sync/atomic"

	"github.com/hupe1980/vecgt/internal/fs"
	"github.com/hupe1980/vecgt/internal/mmap"
)

// LocalStore implements BlobStore using the local file system.
type LocalStore struct {
	root string
	fs   fs.FileSystem
}

// LocalOption configures a LocalStore.
type LocalOption func(*LocalStore)

// WithFileSystem replaces the filesystem used for writes.
// Tests pass an fs.FaultyFS here.
func WithFileSystem(fsys fs.FileSystem) LocalOption {
	return func(s *LocalStore) {
		if fsys != nil {
			s.fs = fsys
		}
	}
}

// NewLocalStore creates a new LocalStore rooted at the given directory.
func NewLocalStore(root string, optFns ...LocalOption) *LocalStore {
	s := &LocalStore{root: root, fs: fs.Default}
	for _, fn := range optFns {
		fn(s)
	}
	return s
}

func (s *LocalStore) path(name string) string {
	return filepath.Join(s.root, name)
}

// Open memory-maps the named file.
func (s *LocalStore) Open(_ context.Context, name string) (Blob, error) {
	m, err := mmap.Open(s.path(name))
	if err != nil {
		return nil, err
	}
	return &localBlob{m: m}, nil
}

// Create writes into a temporary file next to the target. Close syncs it and
// renames it over the target.
func (s *LocalStore) Create(_ context.Context, name string) (WritableBlob, error) {
	target := s.path(name)
	dir := filepath.Dir(target)
	if err := s.fs.MkdirAll(dir, 0o755); err != nil {
		return nil, err
	}
	f, err := s.fs.CreateTemp(dir, "."+filepath.Base(target)+".tmp-*")
	if err != nil {
		return nil, err
	}
	return &localWritableBlob{
		fs:     s.fs,
		f:      f,
		w:      bufio.NewWriterSize(f, 1<<20),
		target: target,
	}, nil
}

// Put writes a blob atomically.
func (s *LocalStore) Put(ctx context.Context, name string, data []byte) error {
	w, err := s.Create(ctx, name)
	if err != nil {
		return err
	}
	if _, err := w.Write(data); err != nil {
		_ = w.Abort()
		return err
	}
	if err := w.Close(); err != nil {
		_ = w.Abort()
		return err
	}
	return nil
}

// Delete removes a blob.
func (s *LocalStore) Delete(_ context.Context, name string) error {
	err := s.fs.Remove(s.path(name))
	if errors.Is(err, os.ErrNotExist) {
		return nil
	}
	return err
}

type localBlob struct {
	m *mmap.Mapping
}

func (b *localBlob) ReadAt(ctx context.Context, p []byte, off int64) (int, error) {
	if err := ctx.Err(); err != nil {
		return 0, err
	}
	if len(p) == 0 {
		return 0, nil
	}
	return b.m.ReadAt(p, off)
}

func (b *localBlob) ReadRange(_ context.Context, off, length int64) (io.ReadCloser, error) {
	data := b.m.Bytes()
	if off < 0 || off >= int64(len(data)) {
		return nil, io.EOF
	}
	end := min(off+length, int64(len(data)))
	return io.NopCloser(newByteReader(data[off:end])), nil
}

func (b *localBlob) Close() error {
	return b.m.Close()
}

func (b *localBlob) Size() int64 {
	return int64(b.m.Size())
}

func (b *localBlob) Bytes() ([]byte, error) {
	data := b.m.Bytes()
	if data == nil && b.m.Size() > 0 {
		return nil, mmap.ErrClosed
	}
	return data, nil
}

func (b *localBlob) Region(off, length int64) ([]byte, error) {
	if off < 0 || length < 0 || off > int64(b.m.Size())-length {
		return nil, fmt.Errorf("region [%d, %d) of %d bytes: %w", off, off+length, b.m.Size(), mmap.ErrOutOfBounds)
	}
	r, err := b.m.Region(int(off), int(length))
	if err != nil {
		return nil, err
	}
	_ = r.Advise(mmap.AccessSequential)
	data := r.Bytes()
	if data == nil && length > 0 {
		return nil, mmap.ErrClosed
	}
	return data, nil
}

type localWritableBlob struct {
	fs     fs.FileSystem
	f      fs.File
	w      *bufio.Writer
	target string
	done   atomic.Bool
}

func (b *localWritableBlob) Write(p []byte) (int, error) {
	if b.done.Load() {
		return 0, os.ErrClosed
	}
	return b.w.Write(p)
}

func (b *localWritableBlob) Close() error {
	if b.done.Load() {
		return os.ErrClosed
	}
	if err := b.w.Flush(); err != nil {
		return fmt.Errorf("flush %s: %w", b.f.Name(), err)
	}
	if err := b.f.Sync(); err != nil {
		return fmt.Errorf("sync %s: %w", b.f.Name(), err)
	}
	if err := b.f.Close(); err != nil {
		return fmt.Errorf("close %s: %w", b.f.Name(), err)
	}
	if err := b.fs.Rename(b.f.Name(), b.target); err != nil {
		return fmt.Errorf("rename %s: %w", b.f.Name(), err)
	}
	b.done.Store(true)
	return nil
}

func (b *localWritableBlob) Abort() error {
	if b.done.Swap(true) {
		return nil
	}
	_ = b.f.Close()
	err := b.fs.Remove(b.f.Name())
	if errors.Is(err, os.ErrNotExist) {
		return nil
	}
	return err
}
