package observation

import (
	"context"
	"fmt"
	"os"
	"strings"
	"sync"

	"github.com/google/uuid"
)

// MemoryAssets holds photo bytes received over the wire so the submitter
// can read them back by URI. Entries are registered for the duration of
// one submission and released afterwards.
type MemoryAssets struct {
	mu      sync.RWMutex
	entries map[string][]byte
}

// NewMemoryAssets creates an empty in-memory asset registry.
func NewMemoryAssets() *MemoryAssets {
	return &MemoryAssets{entries: make(map[string][]byte)}
}

// Register stores the data under a fresh mem:// URI and returns the URI.
func (m *MemoryAssets) Register(data []byte) string {
	uri := "mem://" + uuid.NewString()
	m.mu.Lock()
	m.entries[uri] = data
	m.mu.Unlock()
	return uri
}

// Release removes the given URIs from the registry.
func (m *MemoryAssets) Release(uris ...string) {
	m.mu.Lock()
	for _, uri := range uris {
		delete(m.entries, uri)
	}
	m.mu.Unlock()
}

// ReadAsset returns the bytes registered under the URI.
func (m *MemoryAssets) ReadAsset(_ context.Context, uri string) ([]byte, error) {
	m.mu.RLock()
	data, ok := m.entries[uri]
	m.mu.RUnlock()
	if !ok {
		return nil, fmt.Errorf("no asset registered for %s", uri)
	}
	return data, nil
}

// FileAssets reads photo bytes from the local filesystem. Used by the
// field CLI, where draft photo URIs are plain paths or file:// URLs.
type FileAssets struct{}

// ReadAsset loads the file behind the URI.
func (FileAssets) ReadAsset(_ context.Context, uri string) ([]byte, error) {
	path := strings.TrimPrefix(uri, "file://")
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read photo %s: %w", path, err)
	}
	return data, nil
}
