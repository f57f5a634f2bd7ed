package feedback

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"
)

// MemoryStore keeps feedback for the lifetime of the process.
type MemoryStore struct {
	mu      sync.RWMutex
	entries []Feedback
	now     func() time.Time
}

// NewMemoryStore creates an empty in-memory feedback log.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{now: time.Now}
}

// Record appends fb after validation.
func (s *MemoryStore) Record(ctx context.Context, fb Feedback) error {
	if err := fb.Validate(); err != nil {
		return err
	}
	if fb.ID == "" {
		fb.ID = uuid.NewString()
	}
	if fb.CreatedAt.IsZero() {
		fb.CreatedAt = s.now().UTC()
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.entries = append(s.entries, fb)
	return nil
}

// All returns a snapshot of the log in append order.
func (s *MemoryStore) All(ctx context.Context) ([]Feedback, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]Feedback, len(s.entries))
	copy(out, s.entries)
	return out, nil
}
