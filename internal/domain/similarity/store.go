package similarity

import (
	"context"
	"sync"
	"time"
)

// StoredEmbedding is a persisted candidate vector with the fingerprint of
// the text it was computed from.
type StoredEmbedding struct {
	CandidateID string
	Vector      Vector
	Hash        string
	Model       string
	UpdatedAt   time.Time
}

// Store persists candidate embeddings. Get returns ErrNotFound when nothing
// is stored for the candidate.
type Store interface {
	Get(ctx context.Context, candidateID string) (StoredEmbedding, error)
	Put(ctx context.Context, e StoredEmbedding) error
}

// MemoryStore is an in-process Store.
type MemoryStore struct {
	mu    sync.RWMutex
	items map[string]StoredEmbedding
}

// NewMemoryStore creates an empty in-memory store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{items: make(map[string]StoredEmbedding)}
}

// Get returns the stored embedding for a candidate.
func (m *MemoryStore) Get(_ context.Context, candidateID string) (StoredEmbedding, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	e, ok := m.items[candidateID]
	if !ok {
		return StoredEmbedding{}, ErrNotFound
	}
	e.Vector = append(Vector(nil), e.Vector...)
	return e, nil
}

// Put stores or overwrites a candidate's embedding.
func (m *MemoryStore) Put(_ context.Context, e StoredEmbedding) error {
	e.Vector = append(Vector(nil), e.Vector...)
	m.mu.Lock()
	m.items[e.CandidateID] = e
	m.mu.Unlock()
	return nil
}

// Len returns the number of stored embeddings.
func (m *MemoryStore) Len() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.items)
}
