// Package labelrepo persists training-label records.
package labelrepo

import (
	"context"
	"sort"
	"sync"

	"github.com/comfortlab/roomsense/internal/domain/label"
)

// MemoryRepository is a simple in-memory store for label records.
type MemoryRepository struct {
	mu      sync.RWMutex
	records []label.Record
}

// NewMemoryRepository constructs the repository.
func NewMemoryRepository() *MemoryRepository {
	return &MemoryRepository{}
}

func (r *MemoryRepository) Save(_ context.Context, rec label.Record) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.records = append(r.records, rec)
	return nil
}

func (r *MemoryRepository) List(_ context.Context) ([]label.Record, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := append([]label.Record(nil), r.records...)
	sort.Slice(out, func(i, j int) bool {
		return out[i].RecordedAt.Before(out[j].RecordedAt)
	})
	return out, nil
}

var _ label.Repository = (*MemoryRepository)(nil)
