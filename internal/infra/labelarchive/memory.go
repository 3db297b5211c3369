// Package labelarchive stores exported training datasets.
package labelarchive

import (
	"context"
	"sync"

	"github.com/comfortlab/roomsense/internal/domain/label"
)

// MemoryArchive keeps exported datasets in memory. It is the fallback
// when no object storage endpoint is configured.
type MemoryArchive struct {
	mu      sync.RWMutex
	objects map[string][]byte
}

// NewMemoryArchive constructs the archive.
func NewMemoryArchive() *MemoryArchive {
	return &MemoryArchive{objects: make(map[string][]byte)}
}

func (a *MemoryArchive) Store(_ context.Context, name string, data []byte) (string, error) {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.objects[name] = append([]byte(nil), data...)
	return "mem://" + name, nil
}

// Object returns a stored dataset, for tests and local inspection.
func (a *MemoryArchive) Object(name string) ([]byte, bool) {
	a.mu.RLock()
	defer a.mu.RUnlock()
	data, ok := a.objects[name]
	return data, ok
}

var _ label.Archive = (*MemoryArchive)(nil)
