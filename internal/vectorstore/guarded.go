package vectorstore

import (
	"context"
	"fmt"
	"time"

	"bookbrain/internal/contextutil"
	"bookbrain/internal/resilience"
)

// FailureObserver is told about every read that degraded to an empty result.
type FailureObserver interface {
	ObserveIndexFailure(operation string)
}

// Guarded wraps a VectorStore so reads never fail: Search and Get return an empty
// result and a nil error when the backend errors, times out, or its breaker is open.
// Upsert errors are still returned.
type Guarded struct {
	store    VectorStore
	exec     *resilience.Executor
	timeout  time.Duration
	observer FailureObserver
}

// NewGuarded wraps store. Every call is bounded by timeout and runs through exec.
func NewGuarded(store VectorStore, exec *resilience.Executor, timeout time.Duration) *Guarded {
	return &Guarded{store: store, exec: exec, timeout: timeout}
}

// WithObserver sets the observer notified about degraded reads.
func (g *Guarded) WithObserver(o FailureObserver) *Guarded {
	g.observer = o
	return g
}

// Upsert writes points through the retry and breaker policy.
func (g *Guarded) Upsert(ctx context.Context, collection string, points []Point) error {
	err := g.run(ctx, "vectorstore.upsert", func(ctx context.Context) error {
		return g.store.Upsert(ctx, collection, points)
	})
	if err != nil {
		return fmt.Errorf("failed to upsert %d points: %w", len(points), err)
	}
	return nil
}

// Search never returns an error; backend failures yield an empty result.
func (g *Guarded) Search(ctx context.Context, collection string, query []float32, k int, filter Filter) ([]SearchResult, error) {
	var results []SearchResult
	err := g.run(ctx, "vectorstore.search", func(ctx context.Context) error {
		var err error
		results, err = g.store.Search(ctx, collection, query, k, filter)
		return err
	})
	if err != nil {
		g.degrade(ctx, "search", collection, err)
		return []SearchResult{}, nil
	}
	return results, nil
}

// Get never returns an error; backend failures yield an empty result.
func (g *Guarded) Get(ctx context.Context, collection string, filter Filter) ([]SearchResult, error) {
	var results []SearchResult
	err := g.run(ctx, "vectorstore.get", func(ctx context.Context) error {
		var err error
		results, err = g.store.Get(ctx, collection, filter)
		return err
	})
	if err != nil {
		g.degrade(ctx, "get", collection, err)
		return []SearchResult{}, nil
	}
	return results, nil
}

func (g *Guarded) run(ctx context.Context, operation string, fn func(context.Context) error) error {
	return g.exec.Execute(ctx, operation, func(ctx context.Context) error {
		callCtx, cancel := context.WithTimeout(ctx, g.timeout)
		defer cancel()
		return fn(callCtx)
	}, resilience.DefaultClassifier)
}

func (g *Guarded) degrade(ctx context.Context, operation, collection string, err error) {
	contextutil.LoggerFromContext(ctx).WarnContext(ctx, "vector index unavailable, returning empty result",
		"operation", operation,
		"collection", collection,
		"circuit_open", resilience.IsCircuitOpen(err),
		"error", err,
	)
	if g.observer != nil {
		g.observer.ObserveIndexFailure(operation)
	}
}
