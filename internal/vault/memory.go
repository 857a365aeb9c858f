package vault

import (
	"bytes"
	"fmt"
	"io"
	"sort"
	"sync"

	"dayone-export/internal/journal"
)

// MemoryVault is an in-memory implementation of the Vault interface.
// It stores all objects in memory, making it useful for testing.
// This implementation is safe for concurrent use.
type MemoryVault struct {
	name    string
	objects map[string][]byte // key -> content
	mu      sync.RWMutex
}

// NewMemoryVault creates a new in-memory vault with the given name.
func NewMemoryVault(name string) *MemoryVault {
	return &MemoryVault{
		name:    name,
		objects: make(map[string][]byte),
	}
}

// PutObject stores an object, replacing any previous object with the same key.
func (m *MemoryVault) PutObject(key string, r io.Reader, size int64) error {
	data, err := io.ReadAll(r)
	if err != nil {
		return fmt.Errorf("failed to read object: %w", err)
	}

	if int64(len(data)) != size {
		return fmt.Errorf("size mismatch: expected %d bytes, got %d", size, len(data))
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	m.objects[normalizeObjectKey(key)] = data
	return nil
}

// GetObject retrieves an object by key.
func (m *MemoryVault) GetObject(key string, w io.Writer) error {
	m.mu.RLock()
	defer m.mu.RUnlock()

	data, ok := m.objects[normalizeObjectKey(key)]
	if !ok {
		return fmt.Errorf("%w: %s", journal.ErrObjectNotFound, key)
	}

	if _, err := io.Copy(w, bytes.NewReader(data)); err != nil {
		return fmt.Errorf("failed to write object: %w", err)
	}

	return nil
}

// Keys returns the stored keys in sorted order.
func (m *MemoryVault) Keys() []string {
	m.mu.RLock()
	defer m.mu.RUnlock()

	keys := make([]string, 0, len(m.objects))
	for k := range m.objects {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// ValidateSetup always succeeds for in-memory vault.
func (m *MemoryVault) ValidateSetup() error {
	return nil
}

// Compile-time check that MemoryVault implements journal.Vault interface
var _ journal.Vault = (*MemoryVault)(nil)
