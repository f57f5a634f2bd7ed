package rag

//go:generate go run go.uber.org/mock/mockgen@latest -destination=mocks/mock_engine.go -package=mocks bookbrain/internal/rag Engine

import (
	"context"
	"fmt"
	"strings"
	"time"

	"bookbrain/internal/config"
	"bookbrain/internal/contextutil"
	"bookbrain/internal/feedback"
	"bookbrain/internal/indexer"
	"bookbrain/internal/vectorstore"
)

// defaultSearchK is the number of hits Search returns when the request leaves K unset.
const defaultSearchK = 3

// Engine answers questions about a document and searches a book's passages.
type Engine interface {
	// Ask answers a question. Backend failures are reported through the response status.
	Ask(ctx context.Context, req AskRequest) (AskResponse, error)
	// Search returns the feedback-weighted best passages of a book. An unavailable index yields no hits.
	Search(ctx context.Context, req SearchRequest) ([]Candidate, error)
}

// FeedbackLog is the read side of the feedback store.
type FeedbackLog interface {
	All(ctx context.Context) ([]feedback.Feedback, error)
}

// Observer is told about the outcome of every Ask call.
type Observer interface {
	ObserveAnswer(status Status, mode string, duration time.Duration)
}

// EngineConfig configures retrieval.
type EngineConfig struct {
	Collection     string
	EmbeddingModel string
	// RetrievalMode is config.RetrievalModeIndex or config.RetrievalModeDocument.
	RetrievalMode string
	ChunkSize     int
	// CandidatePool is how many passages are retrieved before re-ranking.
	CandidatePool int
	// TopK is how many passages reach the model.
	TopK           int
	FeedbackRerank bool
}

// ragEngine implements the Engine interface.
type ragEngine struct {
	embedder Embedder
	index    vectorstore.VectorStore
	ranker   *Ranker
	synth    *Synthesizer
	feedback FeedbackLog
	cfg      EngineConfig
	observer Observer
}

// NewEngine creates a new RAG engine. index should degrade to empty results on
// failure (see vectorstore.Guarded); errors it does return are treated the same way.
func NewEngine(embedder Embedder, index vectorstore.VectorStore, fb FeedbackLog, synth *Synthesizer, cfg EngineConfig, observer Observer) Engine {
	if cfg.RetrievalMode == "" {
		cfg.RetrievalMode = config.RetrievalModeIndex
	}
	if cfg.ChunkSize <= 0 {
		cfg.ChunkSize = indexer.DefaultChunkSize
	}
	if cfg.TopK <= 0 {
		cfg.TopK = 2
	}
	if cfg.CandidatePool < cfg.TopK {
		cfg.CandidatePool = cfg.TopK
	}
	return &ragEngine{
		embedder: embedder,
		index:    index,
		ranker:   NewRanker(embedder),
		synth:    synth,
		feedback: fb,
		cfg:      cfg,
		observer: observer,
	}
}

// Ask runs NoContext → Retrieving → Synthesizing → {Answered | Degraded | Failed}.
func (e *ragEngine) Ask(ctx context.Context, req AskRequest) (AskResponse, error) {
	logger := contextutil.LoggerFromContext(ctx)

	if strings.TrimSpace(req.Question) == "" {
		return AskResponse{}, fmt.Errorf("question is required")
	}

	start := time.Now()
	logger.InfoContext(ctx, "RAG query started",
		"book_id", req.Document.BookID,
		"mode", e.cfg.RetrievalMode,
		"k", req.K,
	)

	if strings.TrimSpace(req.Document.Text) == "" {
		logger.InfoContext(ctx, "no source text for question")
		resp := AskResponse{Answer: Answer{
			Status:        StatusNoContext,
			Text:          NoContextMessage,
			ContextChunks: []string{},
		}}
		e.observe(resp.Status, start)
		return resp, nil
	}

	k := req.K
	if k <= 0 {
		k = e.cfg.TopK
	}
	pool := max(e.cfg.CandidatePool, k)

	var candidates []Candidate
	switch e.cfg.RetrievalMode {
	case config.RetrievalModeDocument:
		candidates = e.retrieveFromDocument(ctx, req.Document, req.Question, pool)
	default:
		candidates = e.retrieveFromIndex(ctx, req.Document.BookID, req.Document.Revision, req.Question, pool)
	}

	candidates, applied := e.rerank(ctx, candidates)

	top := candidates
	if len(top) > k {
		top = top[:k]
	}
	chunks := make([]string, len(top))
	for i, c := range top {
		chunks[i] = c.Text
	}

	logger.InfoContext(ctx, "retrieval completed",
		"candidates", len(candidates),
		"selected", len(chunks),
		"feedback_applied", applied,
	)

	resp := AskResponse{Answer: e.synth.Answer(ctx, req.Question, chunks)}
	if req.Debug {
		resp.Debug = &DebugInfo{
			Mode:            e.cfg.RetrievalMode,
			RetrievedChunks: candidates,
			FeedbackApplied: applied,
		}
	}

	logger.InfoContext(ctx, "RAG query completed",
		"status", resp.Status,
		"chunks_used", len(resp.ContextChunks),
		"answer_length", len(resp.Text),
		"duration_ms", time.Since(start).Milliseconds(),
	)
	e.observe(resp.Status, start)
	return resp, nil
}

// Search embeds the query, retrieves a candidate pool from the index and re-ranks it by feedback.
func (e *ragEngine) Search(ctx context.Context, req SearchRequest) ([]Candidate, error) {
	if strings.TrimSpace(req.BookID) == "" {
		return nil, fmt.Errorf("book id is required")
	}
	if strings.TrimSpace(req.Query) == "" {
		return nil, fmt.Errorf("query is required")
	}

	k := req.K
	if k <= 0 {
		k = defaultSearchK
	}

	candidates := e.retrieveFromIndex(ctx, req.BookID, req.Revision, req.Query, max(e.cfg.CandidatePool, k))
	candidates, _ = e.rerank(ctx, candidates)
	if len(candidates) > k {
		candidates = candidates[:k]
	}
	return candidates, nil
}

// retrieveFromIndex returns the nearest chapter passages of a book, or none if
// embedding or the index fails. A non-zero revision hides chunks left over from
// earlier, longer texts of the book.
func (e *ragEngine) retrieveFromIndex(ctx context.Context, bookID string, revision int64, question string, pool int) []Candidate {
	logger := contextutil.LoggerFromContext(ctx)

	vecs, err := e.embedder.EmbedTexts(ctx, []string{question})
	if err != nil || len(vecs) != 1 {
		logger.WarnContext(ctx, "failed to embed question, continuing without context", "error", err)
		return []Candidate{}
	}

	filter := vectorstore.Filter{
		vectorstore.KeyBookID: bookID,
		vectorstore.KeyType:   indexer.TypeChapter,
	}
	if e.cfg.EmbeddingModel != "" {
		filter[vectorstore.KeyEmbeddingModel] = e.cfg.EmbeddingModel
	}
	if revision != 0 {
		filter[vectorstore.KeyTimestamp] = revision
	}

	results, err := e.index.Search(ctx, e.cfg.Collection, vecs[0], pool, filter)
	if err != nil {
		logger.WarnContext(ctx, "vector search failed, continuing without context", "error", err)
		return []Candidate{}
	}

	candidates := make([]Candidate, 0, len(results))
	for _, r := range results {
		candidates = append(candidates, Candidate{
			ID:            r.PointID,
			Text:          r.Text,
			Similarity:    r.Score,
			AdjustedScore: r.Score,
			Meta:          r.Meta,
		})
	}
	return candidates
}

// retrieveFromDocument chunks the supplied text and ranks the chunks against the question.
func (e *ragEngine) retrieveFromDocument(ctx context.Context, doc indexer.Document, question string, pool int) []Candidate {
	chunks := indexer.Chunks(doc, e.cfg.ChunkSize)
	candidates := make([]Candidate, len(chunks))
	for i, ch := range chunks {
		candidates[i] = Candidate{
			ID:   fmt.Sprintf("%s_chunk_%d", doc.BookID, ch.Index),
			Text: ch.Text,
			Meta: map[string]any{vectorstore.KeyChapter: ch.Index},
		}
	}

	ranked, err := e.ranker.Rank(ctx, question, candidates, pool)
	if err != nil {
		contextutil.LoggerFromContext(ctx).WarnContext(ctx, "failed to rank document chunks, continuing without context", "error", err)
		return []Candidate{}
	}
	return ranked
}

// rerank applies feedback weighting when enabled. A feedback read failure leaves the order unchanged.
func (e *ragEngine) rerank(ctx context.Context, candidates []Candidate) ([]Candidate, bool) {
	if !e.cfg.FeedbackRerank || e.feedback == nil || len(candidates) == 0 {
		return candidates, false
	}

	log, err := e.feedback.All(ctx)
	if err != nil {
		contextutil.LoggerFromContext(ctx).WarnContext(ctx, "failed to read feedback, skipping re-ranking", "error", err)
		return candidates, false
	}
	return Rerank(candidates, log), true
}

func (e *ragEngine) observe(status Status, start time.Time) {
	if e.observer != nil {
		e.observer.ObserveAnswer(status, e.cfg.RetrievalMode, time.Since(start))
	}
}
