// Package labelqueue decouples label submission from persistence.
package labelqueue

import (
	"context"

	"github.com/comfortlab/roomsense/internal/domain/label"
)

// ImmediateQueue saves records inline. It is the fallback when no
// Valkey instance is configured.
type ImmediateQueue struct {
	repo label.Repository
}

// NewImmediateQueue constructs the queue.
func NewImmediateQueue(repo label.Repository) *ImmediateQueue {
	return &ImmediateQueue{repo: repo}
}

// Enqueue persists the record synchronously.
func (q *ImmediateQueue) Enqueue(ctx context.Context, rec label.Record) error {
	return q.repo.Save(ctx, rec)
}

var _ label.Queue = (*ImmediateQueue)(nil)
