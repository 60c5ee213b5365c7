package session

import (
	"context"
	"encoding/json"
	"sync"
	"time"
)

// MemoryStore keeps sessions in a mutex-guarded map. It backs unit tests
// and single-instance deployments; the sweeper evicts records the Redis
// store would have dropped via TTL.
type MemoryStore struct {
	mu      sync.RWMutex
	records map[string][]byte
}

// NewMemoryStore returns an empty in-memory session store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{records: make(map[string][]byte)}
}

// Get returns a copy of the stored record.
func (s *MemoryStore) Get(_ context.Context, id string) (*Record, error) {
	s.mu.RLock()
	raw, ok := s.records[id]
	s.mu.RUnlock()
	if !ok {
		return nil, ErrNotFound
	}
	var rec Record
	if err := json.Unmarshal(raw, &rec); err != nil {
		return nil, err
	}
	return &rec, nil
}

// Put replaces the stored record wholesale. Records are serialized so a
// caller mutating its copy after Put cannot corrupt the stored state.
func (s *MemoryStore) Put(_ context.Context, rec *Record) error {
	raw, err := json.Marshal(rec)
	if err != nil {
		return err
	}
	s.mu.Lock()
	s.records[rec.ID] = raw
	s.mu.Unlock()
	return nil
}

// Delete removes the record; deleting a missing record is not an error.
func (s *MemoryStore) Delete(_ context.Context, id string) error {
	s.mu.Lock()
	delete(s.records, id)
	s.mu.Unlock()
	return nil
}

// Sweep drops every record whose inactivity exceeds the timeout's expiry
// window and returns the evicted records so the caller can clean up any
// stored evidence they still reference.
func (s *MemoryStore) Sweep(t Timeout, now time.Time) []*Record {
	s.mu.Lock()
	defer s.mu.Unlock()

	var evicted []*Record
	for id, raw := range s.records {
		var rec Record
		if err := json.Unmarshal(raw, &rec); err != nil {
			delete(s.records, id)
			continue
		}
		if t.StateOf(&rec, now) == Expired {
			delete(s.records, id)
			evicted = append(evicted, &rec)
		}
	}
	return evicted
}

// Len reports the number of live records, for metrics.
func (s *MemoryStore) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.records)
}
