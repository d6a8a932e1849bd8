package store

import (
	"context"
	"fmt"
	"math"
	"sort"
	"sync"

	"expenseai/types"
)

// MemoryStore is an in-memory vector index using brute-force cosine
// similarity. It backs development runs and tests; the Postgres store is
// the production backend.
type MemoryStore struct {
	mu          sync.RWMutex
	collections map[string]*memCollection
}

type memCollection struct {
	userID string
	chunks []types.Chunk
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		collections: make(map[string]*memCollection),
	}
}

func (s *MemoryStore) ReplaceCollection(ctx context.Context, name, userID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.collections[name] = &memCollection{userID: userID}
	return nil
}

func (s *MemoryStore) AddChunks(ctx context.Context, name string, chunks []types.Chunk) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	col, ok := s.collections[name]
	if !ok {
		return fmt.Errorf("collection %s does not exist", name)
	}
	col.chunks = append(col.chunks, chunks...)
	return nil
}

func (s *MemoryStore) HasCollection(ctx context.Context, name string) (bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	_, ok := s.collections[name]
	return ok, nil
}

func (s *MemoryStore) Search(ctx context.Context, name string, vector []float32, limit int) ([]types.ScoredChunk, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	col, ok := s.collections[name]
	if !ok {
		return nil, nil
	}

	hits := make([]types.ScoredChunk, 0, len(col.chunks))
	for _, c := range col.chunks {
		hits = append(hits, types.ScoredChunk{
			Chunk:    c,
			Distance: cosineSimilarity(vector, c.Embedding),
		})
	}

	sort.SliceStable(hits, func(i, j int) bool {
		return hits[i].Distance > hits[j].Distance
	})

	if len(hits) > limit {
		hits = hits[:limit]
	}
	return hits, nil
}

// DeleteCollection removes the collection if present; absence is a no-op.
func (s *MemoryStore) DeleteCollection(ctx context.Context, name string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.collections, name)
	return nil
}

func cosineSimilarity(a, b []float32) float64 {
	if len(a) != len(b) || len(a) == 0 {
		return 0
	}
	var dot, normA, normB float64
	for i := range a {
		dot += float64(a[i]) * float64(b[i])
		normA += float64(a[i]) * float64(a[i])
		normB += float64(b[i]) * float64(b[i])
	}
	if normA == 0 || normB == 0 {
		return 0
	}
	return dot / (math.Sqrt(normA) * math.Sqrt(normB))
}
