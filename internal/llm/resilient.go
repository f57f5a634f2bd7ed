package llm

import (
	"context"
	"errors"

	"bookbrain/internal/resilience"
)

// TextEmbedder is anything that embeds a batch of texts.
type TextEmbedder interface {
	EmbedTexts(ctx context.Context, texts []string) ([][]float32, error)
}

// ResilientEmbedder runs embedding calls through a resilience.Executor.
type ResilientEmbedder struct {
	inner TextEmbedder
	exec  *resilience.Executor
}

// NewResilientEmbedder wraps inner with the executor's retry and breaker policy.
func NewResilientEmbedder(inner TextEmbedder, exec *resilience.Executor) *ResilientEmbedder {
	return &ResilientEmbedder{inner: inner, exec: exec}
}

// EmbedTexts embeds texts, retrying transient server failures.
func (r *ResilientEmbedder) EmbedTexts(ctx context.Context, texts []string) ([][]float32, error) {
	var vectors [][]float32
	err := r.exec.Execute(ctx, "embeddings.embed", func(ctx context.Context) error {
		var err error
		vectors, err = r.inner.EmbedTexts(ctx, texts)
		return err
	}, Classify)
	if err != nil {
		return nil, err
	}
	return vectors, nil
}

// Classify treats 4xx responses other than 429 as permanent: they are neither
// retried nor counted against the breaker.
func Classify(err error) resilience.ErrorClassification {
	var statusErr *HTTPStatusError
	if errors.As(err, &statusErr) && !statusErr.Retryable() {
		return resilience.ErrorClassification{Retryable: false, RecordFailure: false}
	}
	return resilience.DefaultClassifier(err)
}
