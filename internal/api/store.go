package api

import (
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/samcharles93/npyload/internal/summary"
)

// ArrayRecord is a decoded upload kept for later retrieval.
type ArrayRecord struct {
	ID        string          `json:"id"`
	Object    string          `json:"object"`
	Name      string          `json:"name,omitempty"`
	CreatedAt int64           `json:"created_at"`
	Summary   summary.Summary `json:"summary"`
}

// Store holds the most recent records in memory. When full, the oldest
// record is evicted.
type Store struct {
	mu      sync.Mutex
	limit   int
	order   []string
	records map[string]ArrayRecord
}

func NewStore(limit int) *Store {
	if limit <= 0 {
		limit = 1
	}
	return &Store{
		limit:   limit,
		records: make(map[string]ArrayRecord),
	}
}

func (s *Store) Create(name string, sum summary.Summary, now time.Time) ArrayRecord {
	rec := ArrayRecord{
		ID:        "arr_" + uuid.NewString(),
		Object:    "array",
		Name:      name,
		CreatedAt: now.Unix(),
		Summary:   sum,
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	for len(s.order) >= s.limit {
		delete(s.records, s.order[0])
		s.order = s.order[1:]
	}
	s.records[rec.ID] = rec
	s.order = append(s.order, rec.ID)
	return rec
}

func (s *Store) Get(id string) (ArrayRecord, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	rec, ok := s.records[id]
	return rec, ok
}

func (s *Store) Delete(id string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.records[id]; !ok {
		return false
	}
	delete(s.records, id)
	for i, v := range s.order {
		if v == id {
			s.order = append(s.order[:i], s.order[i+1:]...)
			break
		}
	}
	return true
}
