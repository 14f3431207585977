package jobrunner

import (
	"context"
	"sync"

	"github.com/google/uuid"
)

// MemoryStore is an in-process Store, for a one-shot CLI invocation (or a
// test) that has no durable database to persist job records against.
type MemoryStore struct {
	mu      sync.Mutex
	records map[uuid.UUID]JobRecord
}

// NewMemoryStore constructs an empty MemoryStore.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{records: make(map[uuid.UUID]JobRecord)}
}

func (s *MemoryStore) Save(ctx context.Context, job CompilationJob, record JobRecord) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.records[job.ID] = record
	return nil
}

func (s *MemoryStore) Load(ctx context.Context, id uuid.UUID) (*JobRecord, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	rec, ok := s.records[id]
	if !ok {
		return nil, errJobNotFound
	}
	return &rec, nil
}
