package labelqueue

import (
	"context"
	"encoding/json"
	"log/slog"
	"time"

	"github.com/valkey-io/valkey-go"

	"github.com/comfortlab/roomsense/internal/domain/label"
)

const defaultQueueKey = "roomsense:labels"

// ValkeyQueue buffers records in Valkey and delivers them to the
// repository from a background consumer.
type ValkeyQueue struct {
	client      valkey.Client
	repo        label.Repository
	queueKey    string
	log         *slog.Logger
	stop        chan struct{}
	pollTimeout time.Duration
}

// NewValkeyQueue constructs a Valkey-backed queue.
func NewValkeyQueue(client valkey.Client, repo label.Repository, queueKey string, log *slog.Logger) *ValkeyQueue {
	if queueKey == "" {
		queueKey = defaultQueueKey
	}
	return &ValkeyQueue{
		client:      client,
		repo:        repo,
		queueKey:    queueKey,
		log:         log.With("component", "labelqueue"),
		stop:        make(chan struct{}),
		pollTimeout: 5 * time.Second,
	}
}

// Start launches the consumer loop.
func (q *ValkeyQueue) Start() {
	go q.consume()
}

// Stop terminates the consumer loop after the current poll.
func (q *ValkeyQueue) Stop() {
	close(q.stop)
}

// Enqueue pushes a record onto the queue.
func (q *ValkeyQueue) Enqueue(ctx context.Context, rec label.Record) error {
	encoded, err := json.Marshal(rec)
	if err != nil {
		return err
	}
	cmd := q.client.B().Lpush().Key(q.queueKey).Element(string(encoded)).Build()
	return q.client.Do(ctx, cmd).Error()
}

func (q *ValkeyQueue) consume() {
	ctx := context.Background()
	for {
		select {
		case <-q.stop:
			return
		default:
		}
		resp := q.client.Do(ctx, q.client.B().Brpop().Key(q.queueKey).Timeout(q.pollTimeout.Seconds()).Build())
		values, err := resp.ToArray()
		if err != nil {
			if !valkey.IsValkeyNil(err) {
				q.log.Warn("label queue pop failed", "error", err)
			}
			continue
		}
		if len(values) < 2 {
			continue
		}
		raw, err := values[1].ToString()
		if err != nil {
			q.log.Warn("label queue payload decode failed", "error", err)
			continue
		}
		var rec label.Record
		if err := json.Unmarshal([]byte(raw), &rec); err != nil {
			q.log.Warn("label queue unmarshal failed", "error", err)
			continue
		}
		if err := q.repo.Save(ctx, rec); err != nil {
			q.log.Error("label persistence failed", "id", rec.ID, "error", err)
		}
	}
}

var _ label.Queue = (*ValkeyQueue)(nil)
