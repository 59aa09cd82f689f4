package history

import (
	"context"
	"sync"

	"github.com/solar-analytics/parquet-gate/internal/contracts"
)

// DefaultMemoryCapacity is how many runs a MemoryStore keeps
const DefaultMemoryCapacity = 100

// MemoryStore keeps the most recent runs in process. Used when
// DATABASE_URL is not configured.
type MemoryStore struct {
	mu       sync.RWMutex
	runs     []contracts.ValidationRun // oldest first
	capacity int
}

// NewMemoryStore creates a store holding up to capacity runs
func NewMemoryStore(capacity int) *MemoryStore {
	if capacity <= 0 {
		capacity = DefaultMemoryCapacity
	}
	return &MemoryStore{capacity: capacity}
}

// Record appends a run, evicting the oldest beyond capacity
func (m *MemoryStore) Record(_ context.Context, run *contracts.ValidationRun) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.runs = append(m.runs, *run)
	if over := len(m.runs) - m.capacity; over > 0 {
		m.runs = append([]contracts.ValidationRun(nil), m.runs[over:]...)
	}
	return nil
}

// Latest returns the most recently recorded run
func (m *MemoryStore) Latest(_ context.Context) (*contracts.ValidationRun, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	if len(m.runs) == 0 {
		return nil, ErrNotFound
	}
	run := m.runs[len(m.runs)-1]
	return &run, nil
}

// Get returns a run by ID
func (m *MemoryStore) Get(_ context.Context, id string) (*contracts.ValidationRun, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	for i := len(m.runs) - 1; i >= 0; i-- {
		if m.runs[i].ID == id {
			run := m.runs[i]
			return &run, nil
		}
	}
	return nil, ErrNotFound
}

// List returns up to limit runs, newest first
func (m *MemoryStore) List(_ context.Context, limit int) ([]contracts.ValidationRun, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	if limit <= 0 || limit > len(m.runs) {
		limit = len(m.runs)
	}
	out := make([]contracts.ValidationRun, 0, limit)
	for i := len(m.runs) - 1; i >= 0 && len(out) < limit; i-- {
		out = append(out, m.runs[i])
	}
	return out, nil
}
