package rag

//go:generate go run go.uber.org/mock/mockgen@latest -destination=mocks/mock_embedder.go -package=mocks bookbrain/internal/rag Embedder

import (
	"context"
	"fmt"
	"sort"

	"golang.org/x/sync/errgroup"

	"bookbrain/internal/vectorstore"
)

// Embedder turns texts into vectors from the index's pinned embedding model.
type Embedder interface {
	EmbedTexts(ctx context.Context, texts []string) ([][]float32, error)
}

// Ranker scores candidate passages against a query by cosine similarity.
type Ranker struct {
	embedder Embedder
}

// NewRanker creates a Ranker.
func NewRanker(embedder Embedder) *Ranker {
	return &Ranker{embedder: embedder}
}

// Rank returns the k candidates most similar to query, best first.
// The query and the candidates are embedded concurrently.
func (r *Ranker) Rank(ctx context.Context, query string, candidates []Candidate, k int) ([]Candidate, error) {
	if len(candidates) == 0 {
		return []Candidate{}, nil
	}

	texts := make([]string, len(candidates))
	for i, c := range candidates {
		texts[i] = c.Text
	}

	var queryVec []float32
	var vectors [][]float32

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		vecs, err := r.embedder.EmbedTexts(gctx, []string{query})
		if err != nil {
			return fmt.Errorf("failed to embed query: %w", err)
		}
		if len(vecs) != 1 {
			return fmt.Errorf("expected 1 query embedding, got %d", len(vecs))
		}
		queryVec = vecs[0]
		return nil
	})
	g.Go(func() error {
		vecs, err := r.embedder.EmbedTexts(gctx, texts)
		if err != nil {
			return fmt.Errorf("failed to embed candidates: %w", err)
		}
		vectors = vecs
		return nil
	})
	if err := g.Wait(); err != nil {
		return nil, err
	}

	if len(vectors) != len(candidates) {
		return nil, fmt.Errorf("expected %d candidate embeddings, got %d", len(candidates), len(vectors))
	}
	return RankVectors(queryVec, candidates, vectors, k), nil
}

// RankVectors scores precomputed vectors and returns the top k candidates.
// Equal scores keep insertion order. k <= 0 returns every candidate.
func RankVectors(queryVec []float32, candidates []Candidate, vectors [][]float32, k int) []Candidate {
	ranked := make([]Candidate, len(candidates))
	for i, c := range candidates {
		score := vectorstore.Cosine(queryVec, vectors[i])
		c.Similarity = score
		c.AdjustedScore = score
		ranked[i] = c
	}

	sort.SliceStable(ranked, func(i, j int) bool {
		return ranked[i].Similarity > ranked[j].Similarity
	})

	if k > 0 && len(ranked) > k {
		ranked = ranked[:k]
	}
	return ranked
}
