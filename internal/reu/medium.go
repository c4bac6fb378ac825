package reu

import (
	"errors"
	"fmt"
	"io"
	"os"
	"sync"
)

// ErrMediumClosed is returned by operations on a closed medium.
var ErrMediumClosed = errors.New("medium is closed")

// Medium is the storage behind an expansion unit.
type Medium interface {
	io.ReaderAt
	io.WriterAt

	// Size returns the medium size in bytes.
	Size() int64
}

// MemoryMedium keeps the store in a byte slice.
type MemoryMedium struct {
	data []byte
}

// NewMemoryMedium allocates a zeroed in-memory medium of size bytes.
func NewMemoryMedium(size int64) *MemoryMedium {
	if size < 0 {
		size = 0
	}
	return &MemoryMedium{data: make([]byte, size)}
}

// Size implements Medium.
func (m *MemoryMedium) Size() int64 {
	return int64(len(m.data))
}

// ReadAt implements io.ReaderAt.
func (m *MemoryMedium) ReadAt(p []byte, off int64) (int, error) {
	if off < 0 || off >= int64(len(m.data)) {
		return 0, io.EOF
	}
	n := copy(p, m.data[off:])
	if n < len(p) {
		return n, io.EOF
	}
	return n, nil
}

// WriteAt implements io.WriterAt.
func (m *MemoryMedium) WriteAt(p []byte, off int64) (int, error) {
	if off < 0 || off >= int64(len(m.data)) {
		return 0, io.ErrShortWrite
	}
	n := copy(m.data[off:], p)
	if n < len(p) {
		return n, io.ErrShortWrite
	}
	return n, nil
}

// FileMedium keeps the store in a swap file.
type FileMedium struct {
	mu     sync.Mutex
	file   *os.File
	size   int64
	remove bool
	closed bool
}

// OpenFileMedium creates (or truncates) the swap file at path and sizes it
// to size bytes. When removeOnClose is set the file is deleted by Close.
func OpenFileMedium(path string, size int64, removeOnClose bool) (*FileMedium, error) {
	f, err := os.OpenFile(path, os.O_RDWR|os.O_CREATE|os.O_TRUNC, 0o600)
	if err != nil {
		return nil, fmt.Errorf("opening swap file %s: %w", path, err)
	}
	if err := f.Truncate(size); err != nil {
		_ = f.Close()
		return nil, fmt.Errorf("sizing swap file %s: %w", path, err)
	}
	return &FileMedium{file: f, size: size, remove: removeOnClose}, nil
}

// Size implements Medium.
func (m *FileMedium) Size() int64 {
	return m.size
}

// Path returns the swap file path.
func (m *FileMedium) Path() string {
	return m.file.Name()
}

// ReadAt implements io.ReaderAt.
func (m *FileMedium) ReadAt(p []byte, off int64) (int, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.closed {
		return 0, ErrMediumClosed
	}
	if off >= m.size {
		return 0, io.EOF
	}
	if rem := m.size - off; int64(len(p)) > rem {
		n, err := m.file.ReadAt(p[:rem], off)
		if err == nil {
			err = io.EOF
		}
		return n, err
	}
	return m.file.ReadAt(p, off)
}

// WriteAt implements io.WriterAt.
func (m *FileMedium) WriteAt(p []byte, off int64) (int, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.closed {
		return 0, ErrMediumClosed
	}
	if off >= m.size {
		return 0, io.ErrShortWrite
	}
	if rem := m.size - off; int64(len(p)) > rem {
		n, err := m.file.WriteAt(p[:rem], off)
		if err == nil {
			err = io.ErrShortWrite
		}
		return n, err
	}
	return m.file.WriteAt(p, off)
}

// Close closes the swap file, deleting it if requested at open.
func (m *FileMedium) Close() error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.closed {
		return nil
	}
	m.closed = true

	err := m.file.Close()
	if m.remove {
		if rmErr := os.Remove(m.file.Name()); rmErr != nil && err == nil {
			err = rmErr
		}
	}
	return err
}
