package vectorstore

import (
	"context"
	"fmt"
	"math"
	"sort"
	"sync"
)

// MemoryStore is an in-process VectorStore using brute-force cosine similarity.
// Records keep their first insertion position so equal scores rank in insertion order.
type MemoryStore struct {
	mu          sync.RWMutex
	collections map[string]*memoryCollection
}

type memoryCollection struct {
	order   []string
	records map[string]Point
}

// NewMemoryStore creates an empty in-memory store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{collections: make(map[string]*memoryCollection)}
}

// Upsert inserts or replaces points. Vector dimensions must agree within a collection.
func (s *MemoryStore) Upsert(ctx context.Context, collection string, points []Point) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	c, ok := s.collections[collection]
	if !ok {
		c = &memoryCollection{records: make(map[string]Point)}
		s.collections[collection] = c
	}

	dim := c.dimension()
	for _, p := range points {
		if p.ID == "" {
			return fmt.Errorf("point id is required")
		}
		if dim == 0 {
			dim = len(p.Vec)
		}
		if len(p.Vec) != dim {
			return fmt.Errorf("vector dimension mismatch for %s: expected %d, got %d", p.ID, dim, len(p.Vec))
		}
	}

	for _, p := range points {
		if _, exists := c.records[p.ID]; !exists {
			c.order = append(c.order, p.ID)
		}
		c.records[p.ID] = clonePoint(p)
	}
	return nil
}

// Search returns the k most similar records matching filter.
func (s *MemoryStore) Search(ctx context.Context, collection string, query []float32, k int, filter Filter) ([]SearchResult, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if k <= 0 {
		return nil, fmt.Errorf("k must be greater than 0")
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	c, ok := s.collections[collection]
	if !ok {
		return []SearchResult{}, nil
	}

	results := make([]SearchResult, 0, len(c.order))
	for _, id := range c.order {
		p := c.records[id]
		if !filter.Matches(p.Meta) {
			continue
		}
		results = append(results, toResult(p, Cosine(query, p.Vec)))
	}

	sort.SliceStable(results, func(i, j int) bool {
		return results[i].Score > results[j].Score
	})
	if len(results) > k {
		results = results[:k]
	}
	return results, nil
}

// Get returns every record matching filter, in insertion order.
func (s *MemoryStore) Get(ctx context.Context, collection string, filter Filter) ([]SearchResult, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	c, ok := s.collections[collection]
	if !ok {
		return []SearchResult{}, nil
	}

	results := make([]SearchResult, 0)
	for _, id := range c.order {
		p := c.records[id]
		if filter.Matches(p.Meta) {
			results = append(results, toResult(p, 0))
		}
	}
	return results, nil
}

// Len returns the number of records in a collection.
func (s *MemoryStore) Len(collection string) int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if c, ok := s.collections[collection]; ok {
		return len(c.records)
	}
	return 0
}

func (c *memoryCollection) dimension() int {
	for _, id := range c.order {
		return len(c.records[id].Vec)
	}
	return 0
}

// Cosine returns the cosine similarity of a and b, or 0 when either is a zero vector
// or the lengths differ.
func Cosine(a, b []float32) float32 {
	if len(a) != len(b) || len(a) == 0 {
		return 0
	}
	var dot, na, nb float64
	for i := range a {
		dot += float64(a[i]) * float64(b[i])
		na += float64(a[i]) * float64(a[i])
		nb += float64(b[i]) * float64(b[i])
	}
	if na == 0 || nb == 0 {
		return 0
	}
	return float32(dot / (math.Sqrt(na) * math.Sqrt(nb)))
}

func toResult(p Point, score float32) SearchResult {
	meta := make(map[string]any, len(p.Meta))
	for k, v := range p.Meta {
		meta[k] = v
	}
	return SearchResult{PointID: p.ID, Score: score, Text: p.Text, Meta: meta}
}

func clonePoint(p Point) Point {
	vec := make([]float32, len(p.Vec))
	copy(vec, p.Vec)
	meta := make(map[string]any, len(p.Meta))
	for k, v := range p.Meta {
		meta[k] = v
	}
	return Point{ID: p.ID, Vec: vec, Text: p.Text, Meta: meta}
}
