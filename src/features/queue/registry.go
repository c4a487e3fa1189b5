package queue

import (
	"log/slog"
	"slices"
	"sync"
)

// Registry owns one Queue per conversation. Queues are created on first use
// and live for the lifetime of the process.
type Registry struct {
	mu      sync.RWMutex
	queues  map[int64]*Queue
	maxSize func() int
}

// NewRegistry creates a registry. maxSize is consulted whenever a new queue is created,
// so a reloaded configuration applies to conversations that start afterwards.
func NewRegistry(maxSize func() int) *Registry {
	if maxSize == nil {
		maxSize = func() int { return DefaultMaxSize }
	}
	return &Registry{
		queues:  make(map[int64]*Queue),
		maxSize: maxSize,
	}
}

// GetOrCreate returns the queue of a conversation, creating it if needed.
func (r *Registry) GetOrCreate(chatID int64) *Queue {
	r.mu.RLock()
	q, ok := r.queues[chatID]
	r.mu.RUnlock()
	if ok {
		return q
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	if q, ok := r.queues[chatID]; ok {
		return q
	}
	q = New(r.maxSize())
	r.queues[chatID] = q
	slog.Debug("Created queue", "chat_id", chatID, "max_size", q.MaxSize())
	return q
}

// Lookup returns the queue of a conversation without creating it.
func (r *Registry) Lookup(chatID int64) (*Queue, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	q, ok := r.queues[chatID]
	return q, ok
}

// MaxSize returns the capacity a queue created now would get.
func (r *Registry) MaxSize() int {
	if size := r.maxSize(); size > 0 {
		return size
	}
	return DefaultMaxSize
}

// Len returns the number of known conversations.
func (r *Registry) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.queues)
}

// ChatIDs returns the known conversation ids in ascending order.
func (r *Registry) ChatIDs() []int64 {
	r.mu.RLock()
	ids := make([]int64, 0, len(r.queues))
	for id := range r.queues {
		ids = append(ids, id)
	}
	r.mu.RUnlock()
	slices.Sort(ids)
	return ids
}
