package journal

import (
	"errors"
	"io"
	"io/fs"
)

// ErrSameFile is returned (wrapped) by CopyFile when src and dst are the same file.
var ErrSameFile = errors.New("source and destination are the same file")

// FilesystemManager provides an interface for filesystem operations.
// It abstracts file access to enable testing without touching the real filesystem.
type FilesystemManager interface {
	// Stat returns file info for a path.
	Stat(path string) (fs.FileInfo, error)

	// Open opens a file for reading.
	Open(path string) (io.ReadCloser, error)

	// MkdirAll creates a directory and any missing parents.
	MkdirAll(path string) error

	// CopyFile copies src to dst, replacing dst if it exists. It fails with
	// ErrSameFile, leaving the file untouched, when dst is src.
	// Permission bits and access/modification times are carried over where
	// the platform allows.
	CopyFile(src, dst string) error

	// WriteFileAtomic writes the contents of r to path so that readers see
	// either the previous file or the complete new one.
	WriteFileAtomic(path string, r io.Reader) error

	// ListFiles returns the regular files directly inside dir, sorted by name.
	ListFiles(dir string) ([]string, error)
}
