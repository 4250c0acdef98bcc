package outbox

import (
	"context"
	"sort"
	"sync"
	"time"
)

// InMemoryRepository is a Repository for tests and local experiments.
type InMemoryRepository struct {
	mu     sync.Mutex
	nextID int64
	msgs   map[int64]*Message
}

func NewInMemoryRepository() *InMemoryRepository {
	return &InMemoryRepository{msgs: make(map[int64]*Message)}
}

func (r *InMemoryRepository) Save(ctx context.Context, msg *Message) error {
	return r.SaveBatch(ctx, []*Message{msg})
}

func (r *InMemoryRepository) SaveBatch(ctx context.Context, msgs []*Message) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, msg := range msgs {
		r.nextID++
		msg.ID = r.nextID
		copied := *msg
		r.msgs[msg.ID] = &copied
	}
	return nil
}

func (r *InMemoryRepository) GetUnpublished(ctx context.Context, limit int) ([]*Message, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	now := time.Now()
	var out []*Message
	for _, msg := range r.msgs {
		if msg.PublishedAt != nil {
			continue
		}
		if msg.NextRetryAt != nil && msg.NextRetryAt.After(now) {
			continue
		}
		copied := *msg
		out = append(out, &copied)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.Before(out[j].CreatedAt) })
	if len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

func (r *InMemoryRepository) MarkPublished(ctx context.Context, id int64) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if msg, ok := r.msgs[id]; ok {
		now := time.Now()
		msg.PublishedAt = &now
	}
	return nil
}

func (r *InMemoryRepository) MarkFailed(ctx context.Context, id int64, errMsg string, nextRetryAt time.Time) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if msg, ok := r.msgs[id]; ok {
		msg.RetryCount++
		msg.LastError = &errMsg
		at := nextRetryAt
		msg.NextRetryAt = &at
	}
	return nil
}

func (r *InMemoryRepository) DeleteOld(ctx context.Context, olderThan time.Duration) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	cutoff := time.Now().Add(-olderThan)
	var deleted int64
	for id, msg := range r.msgs {
		if msg.PublishedAt != nil && msg.PublishedAt.Before(cutoff) {
			delete(r.msgs, id)
			deleted++
		}
	}
	return deleted, nil
}
