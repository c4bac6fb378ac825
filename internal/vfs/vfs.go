// Package vfs provides the file system abstraction used for documents and
// spill files.
//
// OSFS is backed by the operating system; MemFS keeps everything in memory
// and is used by tests and by scripted sessions that never touch disk.
package vfs

import (
	"io"
	"io/fs"
	"time"
)

// VFS is the subset of file system operations the editor needs.
type VFS interface {
	// Open opens a file for reading.
	Open(path string) (io.ReadCloser, error)

	// ReadFile reads the entire file content.
	ReadFile(path string) ([]byte, error)

	// Stat returns file information.
	Stat(path string) (FileInfo, error)

	// WriteFile writes data to a file, creating it if necessary.
	WriteFile(path string, data []byte, perm fs.FileMode) error

	// Create creates or truncates a file for writing.
	Create(path string) (io.WriteCloser, error)

	// MkdirAll creates a directory and all parent directories.
	MkdirAll(path string, perm fs.FileMode) error

	// Remove removes a file.
	Remove(path string) error

	// Rename replaces newPath with oldPath.
	Rename(oldPath, newPath string) error

	// Glob returns paths matching the pattern.
	Glob(pattern string) ([]string, error)

	// Join joins path elements.
	Join(elem ...string) string

	// Exists reports whether the path exists.
	Exists(path string) bool
}

// FileInfo describes a file.
type FileInfo struct {
	path    string
	size    int64
	mode    fs.FileMode
	modTime time.Time
}

// NewFileInfo creates a FileInfo.
func NewFileInfo(path string, size int64, mode fs.FileMode, modTime time.Time) FileInfo {
	return FileInfo{path: path, size: size, mode: mode, modTime: modTime}
}

// Path returns the full path.
func (fi FileInfo) Path() string { return fi.path }

// Size returns the file size in bytes.
func (fi FileInfo) Size() int64 { return fi.size }

// Mode returns the file mode.
func (fi FileInfo) Mode() fs.FileMode { return fi.mode }

// ModTime returns the modification time.
func (fi FileInfo) ModTime() time.Time { return fi.modTime }

// IsDir reports whether the path is a directory.
func (fi FileInfo) IsDir() bool { return fi.mode.IsDir() }
