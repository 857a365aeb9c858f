package testutil

import (
	"bytes"
	"fmt"
	"io"
	"io/fs"
	"path/filepath"
	"sort"
	"strings"
	"sync"
	"time"

	"dayone-export/internal/journal"
)

// MockFile represents a file in the mock filesystem.
type MockFile struct {
	Content     []byte
	Permissions fs.FileMode
	ModTime     time.Time
	IsDirectory bool
}

// MockFilesystemManager is an in-memory filesystem for testing.
// Paths are cleaned but not made absolute; tests should use absolute paths.
type MockFilesystemManager struct {
	mu         sync.Mutex
	files      map[string]*MockFile
	copyErrors map[string]error
	writeErr   error
}

// NewMockFilesystemManager creates a new mock filesystem.
func NewMockFilesystemManager() *MockFilesystemManager {
	return &MockFilesystemManager{
		files:      make(map[string]*MockFile),
		copyErrors: make(map[string]error),
	}
}

// AddFile adds a file to the mock filesystem. Parent directories are created.
func (m *MockFilesystemManager) AddFile(path string, content []byte) {
	m.mu.Lock()
	defer m.mu.Unlock()
	path = filepath.Clean(path)
	m.mkdirAll(filepath.Dir(path))
	m.files[path] = &MockFile{
		Content:     content,
		Permissions: 0644,
		ModTime:     time.Now(),
	}
}

// AddDirectory adds a directory (and its parents) to the mock filesystem.
func (m *MockFilesystemManager) AddDirectory(path string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.mkdirAll(filepath.Clean(path))
}

// FailCopy makes CopyFile return err whenever src is copied.
func (m *MockFilesystemManager) FailCopy(src string, err error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.copyErrors[filepath.Clean(src)] = err
}

// FailWrites makes every WriteFileAtomic call return err.
func (m *MockFilesystemManager) FailWrites(err error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.writeErr = err
}

// ReadFile returns the content of a file, reporting false if it does not exist.
func (m *MockFilesystemManager) ReadFile(path string) ([]byte, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	file, ok := m.files[filepath.Clean(path)]
	if !ok || file.IsDirectory {
		return nil, false
	}
	return file.Content, true
}

// Exists reports whether path is present as a file or directory.
func (m *MockFilesystemManager) Exists(path string) bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	_, ok := m.files[filepath.Clean(path)]
	return ok
}

func (m *MockFilesystemManager) mkdirAll(path string) {
	for {
		if _, ok := m.files[path]; !ok {
			m.files[path] = &MockFile{Permissions: 0755, ModTime: time.Now(), IsDirectory: true}
		}
		parent := filepath.Dir(path)
		if parent == path {
			return
		}
		path = parent
	}
}

func (m *MockFilesystemManager) lookup(path string) (*MockFile, error) {
	file, ok := m.files[filepath.Clean(path)]
	if !ok {
		return nil, fmt.Errorf("file not found: %s: %w", path, fs.ErrNotExist)
	}
	return file, nil
}

func (m *MockFilesystemManager) Stat(path string) (fs.FileInfo, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	file, err := m.lookup(path)
	if err != nil {
		return nil, err
	}
	return &mockFileInfo{
		name:    filepath.Base(path),
		size:    int64(len(file.Content)),
		mode:    file.Permissions,
		modTime: file.ModTime,
		isDir:   file.IsDirectory,
	}, nil
}

func (m *MockFilesystemManager) Open(path string) (io.ReadCloser, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	file, err := m.lookup(path)
	if err != nil {
		return nil, err
	}
	if file.IsDirectory {
		return nil, fmt.Errorf("cannot open directory: %s", path)
	}
	return io.NopCloser(bytes.NewReader(file.Content)), nil
}

func (m *MockFilesystemManager) MkdirAll(path string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	path = filepath.Clean(path)
	if file, ok := m.files[path]; ok && !file.IsDirectory {
		return fmt.Errorf("not a directory: %s", path)
	}
	m.mkdirAll(path)
	return nil
}

func (m *MockFilesystemManager) CopyFile(src, dst string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if err := m.copyErrors[filepath.Clean(src)]; err != nil {
		return err
	}
	file, err := m.lookup(src)
	if err != nil {
		return err
	}
	if file.IsDirectory {
		return fmt.Errorf("not a regular file: %s", src)
	}
	if filepath.Clean(src) == filepath.Clean(dst) {
		return fmt.Errorf("copying %s: %w", src, journal.ErrSameFile)
	}
	if _, err := m.lookup(filepath.Dir(dst)); err != nil {
		return err
	}
	m.files[filepath.Clean(dst)] = &MockFile{
		Content:     bytes.Clone(file.Content),
		Permissions: file.Permissions,
		ModTime:     file.ModTime,
	}
	return nil
}

func (m *MockFilesystemManager) WriteFileAtomic(path string, r io.Reader) error {
	data, err := io.ReadAll(r)
	if err != nil {
		return err
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	if m.writeErr != nil {
		return m.writeErr
	}
	if _, err := m.lookup(filepath.Dir(path)); err != nil {
		return err
	}
	m.files[filepath.Clean(path)] = &MockFile{
		Content:     data,
		Permissions: 0644,
		ModTime:     time.Now(),
	}
	return nil
}

func (m *MockFilesystemManager) ListFiles(dir string) ([]string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	dir = filepath.Clean(dir)
	if _, err := m.lookup(dir); err != nil {
		return nil, err
	}

	var names []string
	for path, file := range m.files {
		if file.IsDirectory || filepath.Dir(path) != dir {
			continue
		}
		name := filepath.Base(path)
		if strings.HasPrefix(name, ".") {
			continue
		}
		names = append(names, name)
	}
	sort.Strings(names)
	return names, nil
}

// mockFileInfo implements fs.FileInfo
type mockFileInfo struct {
	name    string
	size    int64
	mode    fs.FileMode
	modTime time.Time
	isDir   bool
}

func (m *mockFileInfo) Name() string       { return m.name }
func (m *mockFileInfo) Size() int64        { return m.size }
func (m *mockFileInfo) Mode() fs.FileMode  { return m.mode }
func (m *mockFileInfo) ModTime() time.Time { return m.modTime }
func (m *mockFileInfo) IsDir() bool        { return m.isDir }
func (m *mockFileInfo) Sys() any           { return nil }

// Compile-time check
var _ journal.FilesystemManager = (*MockFilesystemManager)(nil)
