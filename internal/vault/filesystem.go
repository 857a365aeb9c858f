package vault

import (
	"fmt"
	"io"
	"os"
	"path/filepath"

	"dayone-export/internal/journal"
)

// FileSystemVault is a filesystem-based implementation of the Vault interface.
// Object keys map to files under the objects directory:
//
//	<root>/
//	  objects/
//	    latest
//	    <exportID>/manifest.json
//	    <exportID>/journal.json
//	    <exportID>/media/<file>
type FileSystemVault struct {
	name       string
	root       string
	objectsDir string
}

// NewFileSystemVault creates a new filesystem vault rooted at the given path.
func NewFileSystemVault(name, root string) (*FileSystemVault, error) {
	objectsDir := filepath.Join(root, "objects")

	// Create directory structure
	if err := os.MkdirAll(objectsDir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create objects directory: %w", err)
	}

	return &FileSystemVault{
		name:       name,
		root:       root,
		objectsDir: objectsDir,
	}, nil
}

// PutObject stores an object, replacing any previous object with the same key.
func (v *FileSystemVault) PutObject(key string, r io.Reader, size int64) error {
	destPath, err := v.objectPath(key)
	if err != nil {
		return err
	}
	if err := os.MkdirAll(filepath.Dir(destPath), 0755); err != nil {
		return fmt.Errorf("failed to create object directory: %w", err)
	}
	return v.writeFile(destPath, r, size)
}

// GetObject retrieves an object by key and writes it to w.
func (v *FileSystemVault) GetObject(key string, w io.Writer) error {
	srcPath, err := v.objectPath(key)
	if err != nil {
		return err
	}
	return v.readFile(srcPath, w, key)
}

// ValidateSetup verifies that the vault directories are accessible.
func (v *FileSystemVault) ValidateSetup() error {
	// Check that root directory exists and is a directory
	info, err := os.Stat(v.root)
	if err != nil {
		return fmt.Errorf("vault root not accessible: %w", err)
	}
	if !info.IsDir() {
		return fmt.Errorf("vault root is not a directory: %s", v.root)
	}

	info, err = os.Stat(v.objectsDir)
	if err != nil {
		return fmt.Errorf("vault directory not accessible: %w", err)
	}
	if !info.IsDir() {
		return fmt.Errorf("vault path is not a directory: %s", v.objectsDir)
	}

	return nil
}

func (v *FileSystemVault) objectPath(key string) (string, error) {
	key, err := validateObjectKey(key)
	if err != nil {
		return "", err
	}
	return filepath.Join(v.objectsDir, filepath.FromSlash(key)), nil
}

// writeFile writes data from r to the specified path using atomic write (temp file + rename).
func (v *FileSystemVault) writeFile(destPath string, r io.Reader, expectedSize int64) error {
	// Create temp file in the same directory to ensure atomic rename works
	dir := filepath.Dir(destPath)
	tmpFile, err := os.CreateTemp(dir, ".tmp-*")
	if err != nil {
		return fmt.Errorf("failed to create temp file: %w", err)
	}
	tmpPath := tmpFile.Name()

	// Clean up temp file on failure
	success := false
	defer func() {
		if !success {
			os.Remove(tmpPath)
		}
	}()

	written, err := io.Copy(tmpFile, r)
	if err != nil {
		tmpFile.Close()
		return fmt.Errorf("failed to write data: %w", err)
	}

	if err := tmpFile.Close(); err != nil {
		return fmt.Errorf("failed to close temp file: %w", err)
	}

	if written != expectedSize {
		return fmt.Errorf("size mismatch: expected %d bytes, got %d", expectedSize, written)
	}

	if err := os.Rename(tmpPath, destPath); err != nil {
		return fmt.Errorf("failed to rename temp file: %w", err)
	}

	success = true
	return nil
}

// readFile copies the file at srcPath to w.
func (v *FileSystemVault) readFile(srcPath string, w io.Writer, key string) error {
	f, err := os.Open(srcPath)
	if err != nil {
		if os.IsNotExist(err) {
			return fmt.Errorf("%w: %s", journal.ErrObjectNotFound, key)
		}
		return fmt.Errorf("failed to open file: %w", err)
	}
	defer f.Close()

	if _, err := io.Copy(w, f); err != nil {
		return fmt.Errorf("failed to read file: %w", err)
	}

	return nil
}

// Compile-time check that FileSystemVault implements journal.Vault interface
var _ journal.Vault = (*FileSystemVault)(nil)
