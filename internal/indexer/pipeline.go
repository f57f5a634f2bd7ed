package indexer

//go:generate go run go.uber.org/mock/mockgen@latest -destination=mocks/mock_embedder.go -package=mocks bookbrain/internal/indexer Embedder

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"
	"time"

	"bookbrain/internal/contextutil"
	"bookbrain/internal/vectorstore"
)

// ErrInvalidInput is returned for ingestion requests missing a book id, text or version.
var ErrInvalidInput = errors.New("invalid ingestion input")

// Embedder turns texts into vectors. All vectors from one index must come from the same model.
type Embedder interface {
	EmbedTexts(ctx context.Context, texts []string) ([][]float32, error)
}

// PipelineConfig configures ingestion.
type PipelineConfig struct {
	Collection     string
	EmbeddingModel string
	ChunkSize      int
	BatchSize      int
}

// Pipeline writes documents and generated artifacts into the vector index.
type Pipeline struct {
	embedder Embedder
	store    vectorstore.VectorStore
	cfg      PipelineConfig
	now      func() time.Time
}

// NewPipeline creates an ingestion pipeline.
func NewPipeline(embedder Embedder, store vectorstore.VectorStore, cfg PipelineConfig) *Pipeline {
	if cfg.ChunkSize <= 0 {
		cfg.ChunkSize = DefaultChunkSize
	}
	if cfg.BatchSize <= 0 {
		cfg.BatchSize = 32
	}
	return &Pipeline{
		embedder: embedder,
		store:    store,
		cfg:      cfg,
		now:      time.Now,
	}
}

// IngestDocument chunks doc, embeds every chunk and upserts one record per chunk.
// Re-ingesting the same book and version replaces records with the same ids.
func (p *Pipeline) IngestDocument(ctx context.Context, doc Document, version int) (IngestResult, error) {
	logger := contextutil.LoggerFromContext(ctx)

	if strings.TrimSpace(doc.BookID) == "" {
		return IngestResult{}, fmt.Errorf("%w: book id is required", ErrInvalidInput)
	}
	if version < 1 {
		return IngestResult{}, fmt.Errorf("%w: version must be at least 1", ErrInvalidInput)
	}

	texts := ChunkText(doc.Text, p.cfg.ChunkSize)
	result := IngestResult{
		BookID:       doc.BookID,
		Version:      version,
		IndexVersion: IndexVersion(p.cfg.EmbeddingModel, p.cfg.ChunkSize),
		Stats:        ComputeChunkStats(texts),
	}
	if len(texts) == 0 {
		logger.WarnContext(ctx, "no chunks generated", "book_id", doc.BookID)
		return result, nil
	}

	timestamp := doc.Revision
	if timestamp == 0 {
		timestamp = p.now().Unix()
	}
	for start := 0; start < len(texts); start += p.cfg.BatchSize {
		// Abandoned requests must not write.
		if err := ctx.Err(); err != nil {
			return result, fmt.Errorf("ingestion cancelled after %d chunks: %w", result.Chunks, err)
		}

		end := min(start+p.cfg.BatchSize, len(texts))
		batch := texts[start:end]

		vectors, err := p.embed(ctx, batch)
		if err != nil {
			return result, err
		}

		points := make([]vectorstore.Point, len(batch))
		for i, text := range batch {
			index := start + i
			points[i] = vectorstore.Point{
				ID:   RecordID(doc.BookID, TypeChapter, version, index),
				Vec:  vectors[i],
				Text: text,
				Meta: p.meta(doc.BookID, TypeChapter, version, index, timestamp),
			}
		}

		if err := p.store.Upsert(ctx, p.cfg.Collection, points); err != nil {
			return result, fmt.Errorf("failed to upsert chunks: %w", err)
		}
		result.Chunks += len(points)
	}

	logger.InfoContext(ctx, "document ingested",
		"book_id", doc.BookID,
		"version", version,
		"chunks", result.Chunks,
		"index_version", result.IndexVersion,
	)
	return result, nil
}

// StoreContentVersion upserts a single artifact under its deterministic id and returns
// the stored version with id and timestamp filled in.
func (p *Pipeline) StoreContentVersion(ctx context.Context, cv ContentVersion) (ContentVersion, error) {
	if strings.TrimSpace(cv.BookID) == "" || strings.TrimSpace(cv.Type) == "" {
		return ContentVersion{}, fmt.Errorf("%w: book id and type are required", ErrInvalidInput)
	}
	if strings.TrimSpace(cv.Content) == "" {
		return ContentVersion{}, fmt.Errorf("%w: content is empty", ErrInvalidInput)
	}
	if cv.Version < 1 {
		return ContentVersion{}, fmt.Errorf("%w: version must be at least 1", ErrInvalidInput)
	}

	vectors, err := p.embed(ctx, []string{cv.Content})
	if err != nil {
		return ContentVersion{}, err
	}

	cv.ID = RecordID(cv.BookID, cv.Type, cv.Version, cv.Chapter)
	cv.Timestamp = p.now().Unix()

	point := vectorstore.Point{
		ID:   cv.ID,
		Vec:  vectors[0],
		Text: cv.Content,
		Meta: p.meta(cv.BookID, cv.Type, cv.Version, cv.Chapter, cv.Timestamp),
	}
	if err := p.store.Upsert(ctx, p.cfg.Collection, []vectorstore.Point{point}); err != nil {
		return ContentVersion{}, fmt.Errorf("failed to store content version: %w", err)
	}

	contextutil.LoggerFromContext(ctx).InfoContext(ctx, "content version stored", "id", cv.ID)
	return cv, nil
}

// ContentVersions returns every stored version of a book's artifact, latest first.
// A nil chapter matches all chapters.
func (p *Pipeline) ContentVersions(ctx context.Context, bookID, contentType string, chapter *int) ([]ContentVersion, error) {
	filter := vectorstore.Filter{
		vectorstore.KeyBookID: bookID,
		vectorstore.KeyType:   contentType,
	}
	if chapter != nil {
		filter[vectorstore.KeyChapter] = *chapter
	}

	records, err := p.store.Get(ctx, p.cfg.Collection, filter)
	if err != nil {
		return nil, fmt.Errorf("failed to get content versions: %w", err)
	}

	versions := make([]ContentVersion, 0, len(records))
	for _, r := range records {
		v, _ := vectorstore.IntValue(r.Meta, vectorstore.KeyVersion)
		ch, _ := vectorstore.IntValue(r.Meta, vectorstore.KeyChapter)
		ts, _ := vectorstore.IntValue(r.Meta, vectorstore.KeyTimestamp)
		versions = append(versions, ContentVersion{
			ID:        r.PointID,
			BookID:    vectorstore.StringValue(r.Meta, vectorstore.KeyBookID),
			Type:      vectorstore.StringValue(r.Meta, vectorstore.KeyType),
			Chapter:   ch,
			Version:   v,
			Timestamp: int64(ts),
			Content:   r.Text,
		})
	}

	sort.SliceStable(versions, func(i, j int) bool {
		if versions[i].Version != versions[j].Version {
			return versions[i].Version > versions[j].Version
		}
		return versions[i].Chapter < versions[j].Chapter
	})
	return versions, nil
}

// NextVersion returns one more than the highest stored version for the artifact, or 1.
func (p *Pipeline) NextVersion(ctx context.Context, bookID, contentType string, chapter int) (int, error) {
	versions, err := p.ContentVersions(ctx, bookID, contentType, &chapter)
	if err != nil {
		return 0, err
	}
	if len(versions) == 0 {
		return 1, nil
	}
	return versions[0].Version + 1, nil
}

func (p *Pipeline) embed(ctx context.Context, texts []string) ([][]float32, error) {
	vectors, err := p.embedder.EmbedTexts(ctx, texts)
	if err != nil {
		return nil, fmt.Errorf("failed to embed %d texts: %w", len(texts), err)
	}
	if len(vectors) != len(texts) {
		return nil, fmt.Errorf("embedder returned %d vectors for %d texts", len(vectors), len(texts))
	}
	return vectors, nil
}

func (p *Pipeline) meta(bookID, contentType string, version, chapter int, timestamp int64) map[string]any {
	return map[string]any{
		vectorstore.KeyBookID:         bookID,
		vectorstore.KeyType:           contentType,
		vectorstore.KeyVersion:        version,
		vectorstore.KeyChapter:        chapter,
		vectorstore.KeyTimestamp:      timestamp,
		vectorstore.KeyEmbeddingModel: p.cfg.EmbeddingModel,
	}
}
