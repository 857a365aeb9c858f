package journal

import (
	"errors"
	"io"
)

// ErrObjectNotFound is returned (wrapped) by vaults when a key does not exist.
var ErrObjectNotFound = errors.New("object not found")

// Vault provides an interface for archive storage backends.
// All operations use io.Reader/io.Writer for streaming so that large media
// files are never loaded entirely into memory.
type Vault interface {
	// PutObject stores size bytes read from r under key, replacing any
	// existing object with the same key.
	PutObject(key string, r io.Reader, size int64) error

	// GetObject retrieves the object stored under key and writes it to w.
	GetObject(key string, w io.Writer) error

	// ValidateSetup verifies that the vault is accessible and properly configured.
	ValidateSetup() error
}
