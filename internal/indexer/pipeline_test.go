package indexer

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"testing"
	"time"

	"go.uber.org/mock/gomock"

	"bookbrain/internal/indexer/mocks"
	"bookbrain/internal/vectorstore"
	vectorstore_mocks "bookbrain/internal/vectorstore/mocks"
)

func init() {
	slog.SetDefault(slog.New(slog.NewTextHandler(io.Discard, nil)))
}

// fakeVectors returns one distinct two-dimensional vector per text.
func fakeVectors(_ context.Context, texts []string) ([][]float32, error) {
	out := make([][]float32, len(texts))
	for i := range texts {
		out[i] = []float32{float32(i + 1), 1}
	}
	return out, nil
}

func newTestPipeline(t *testing.T, embedder Embedder, store vectorstore.VectorStore, chunkSize, batchSize int) *Pipeline {
	t.Helper()
	p := NewPipeline(embedder, store, PipelineConfig{
		Collection:     "chapters",
		EmbeddingModel: "test-model",
		ChunkSize:      chunkSize,
		BatchSize:      batchSize,
	})
	p.now = func() time.Time { return time.Unix(1700000000, 0) }
	return p
}

func TestNewPipeline_Defaults(t *testing.T) {
	p := NewPipeline(nil, nil, PipelineConfig{Collection: "c"})
	if p.cfg.ChunkSize != DefaultChunkSize {
		t.Errorf("ChunkSize = %d, want %d", p.cfg.ChunkSize, DefaultChunkSize)
	}
	if p.cfg.BatchSize != 32 {
		t.Errorf("BatchSize = %d, want 32", p.cfg.BatchSize)
	}
}

func TestPipeline_IngestDocument(t *testing.T) {
	ctrl := gomock.NewController(t)
	embedder := mocks.NewMockEmbedder(ctrl)
	embedder.EXPECT().EmbedTexts(gomock.Any(), gomock.Any()).DoAndReturn(fakeVectors).Times(2)

	store := vectorstore.NewMemoryStore()
	p := newTestPipeline(t, embedder, store, 30, 1)

	doc := Document{BookID: "geo", Text: "The capital of France is Paris. Paris has many museums."}
	result, err := p.IngestDocument(context.Background(), doc, 1)
	if err != nil {
		t.Fatalf("IngestDocument() error = %v", err)
	}
	if result.Chunks != 2 {
		t.Errorf("IngestDocument() chunks = %d, want 2", result.Chunks)
	}
	if result.IndexVersion != IndexVersion("test-model", 30) {
		t.Errorf("IngestDocument() index version = %s", result.IndexVersion)
	}

	records, _ := store.Get(context.Background(), "chapters", vectorstore.Filter{vectorstore.KeyBookID: "geo"})
	if len(records) != 2 {
		t.Fatalf("stored %d records, want 2", len(records))
	}
	first := records[0]
	if first.PointID != "geo_chapter_v1_ch_0" {
		t.Errorf("record id = %s, want geo_chapter_v1_ch_0", first.PointID)
	}
	if first.Text != "The capital of France is Paris" {
		t.Errorf("record text = %q", first.Text)
	}
	wantMeta := map[string]any{
		vectorstore.KeyBookID:         "geo",
		vectorstore.KeyType:           TypeChapter,
		vectorstore.KeyVersion:        1,
		vectorstore.KeyChapter:        0,
		vectorstore.KeyTimestamp:      int64(1700000000),
		vectorstore.KeyEmbeddingModel: "test-model",
	}
	for k, v := range wantMeta {
		if first.Meta[k] != v {
			t.Errorf("meta[%s] = %v (%T), want %v (%T)", k, first.Meta[k], first.Meta[k], v, v)
		}
	}
}

func TestPipeline_IngestDocument_Idempotent(t *testing.T) {
	ctrl := gomock.NewController(t)
	embedder := mocks.NewMockEmbedder(ctrl)
	embedder.EXPECT().EmbedTexts(gomock.Any(), gomock.Any()).DoAndReturn(fakeVectors).AnyTimes()

	store := vectorstore.NewMemoryStore()
	p := newTestPipeline(t, embedder, store, 5, 10)
	doc := Document{BookID: "b", Text: "abcdefghijklm"}

	for i := 0; i < 3; i++ {
		if _, err := p.IngestDocument(context.Background(), doc, 1); err != nil {
			t.Fatalf("IngestDocument() error = %v", err)
		}
	}
	if got := store.Len("chapters"); got != 3 {
		t.Errorf("store has %d records after repeated ingestion, want 3", got)
	}
}

func TestPipeline_IngestDocument_RevisionStampsChunks(t *testing.T) {
	ctrl := gomock.NewController(t)
	embedder := mocks.NewMockEmbedder(ctrl)
	embedder.EXPECT().EmbedTexts(gomock.Any(), gomock.Any()).DoAndReturn(fakeVectors).AnyTimes()

	store := vectorstore.NewMemoryStore()
	p := newTestPipeline(t, embedder, store, 5, 10)

	// A longer first text leaves chunk 2 behind when the shorter one replaces it.
	if _, err := p.IngestDocument(context.Background(), Document{BookID: "b", Text: "abcdefghijklm", Revision: 100}, 1); err != nil {
		t.Fatalf("IngestDocument() error = %v", err)
	}
	if _, err := p.IngestDocument(context.Background(), Document{BookID: "b", Text: "nopqrstuv", Revision: 200}, 1); err != nil {
		t.Fatalf("IngestDocument() error = %v", err)
	}

	current, _ := store.Get(context.Background(), "chapters", vectorstore.Filter{vectorstore.KeyBookID: "b", vectorstore.KeyTimestamp: int64(200)})
	if len(current) != 2 {
		t.Fatalf("records at revision 200 = %d, want 2", len(current))
	}
	for _, r := range current {
		if r.Text != "nopqr" && r.Text != "stuv" {
			t.Errorf("unexpected text %q at current revision", r.Text)
		}
	}
	stale, _ := store.Get(context.Background(), "chapters", vectorstore.Filter{vectorstore.KeyBookID: "b", vectorstore.KeyTimestamp: int64(100)})
	if len(stale) != 1 || stale[0].Text != "klm" {
		t.Errorf("stale records = %+v, want only chunk 2 of the first text", stale)
	}
}

func TestPipeline_IngestDocument_Validation(t *testing.T) {
	p := newTestPipeline(t, nil, vectorstore.NewMemoryStore(), 10, 10)

	tests := []struct {
		name    string
		doc     Document
		version int
	}{
		{name: "missing book id", doc: Document{Text: "x"}, version: 1},
		{name: "zero version", doc: Document{BookID: "b", Text: "x"}, version: 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := p.IngestDocument(context.Background(), tt.doc, tt.version)
			if !errors.Is(err, ErrInvalidInput) {
				t.Errorf("IngestDocument() error = %v, want ErrInvalidInput", err)
			}
		})
	}
}

func TestPipeline_IngestDocument_WhitespaceOnly(t *testing.T) {
	ctrl := gomock.NewController(t)
	embedder := mocks.NewMockEmbedder(ctrl)
	store := vectorstore_mocks.NewMockVectorStore(ctrl)

	p := newTestPipeline(t, embedder, store, 10, 10)
	result, err := p.IngestDocument(context.Background(), Document{BookID: "b", Text: "   \n  "}, 1)
	if err != nil {
		t.Fatalf("IngestDocument() error = %v", err)
	}
	if result.Chunks != 0 {
		t.Errorf("IngestDocument() chunks = %d, want 0", result.Chunks)
	}
}

func TestPipeline_IngestDocument_Errors(t *testing.T) {
	errBackend := errors.New("backend down")

	tests := []struct {
		name  string
		setup func(*mocks.MockEmbedder, *vectorstore_mocks.MockVectorStore)
	}{
		{
			name: "embedding failure",
			setup: func(e *mocks.MockEmbedder, _ *vectorstore_mocks.MockVectorStore) {
				e.EXPECT().EmbedTexts(gomock.Any(), gomock.Any()).Return(nil, errBackend)
			},
		},
		{
			name: "vector count mismatch",
			setup: func(e *mocks.MockEmbedder, _ *vectorstore_mocks.MockVectorStore) {
				e.EXPECT().EmbedTexts(gomock.Any(), gomock.Any()).Return([][]float32{{1}}, nil)
			},
		},
		{
			name: "upsert failure",
			setup: func(e *mocks.MockEmbedder, s *vectorstore_mocks.MockVectorStore) {
				e.EXPECT().EmbedTexts(gomock.Any(), gomock.Any()).DoAndReturn(fakeVectors)
				s.EXPECT().Upsert(gomock.Any(), "chapters", gomock.Len(2)).Return(errBackend)
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ctrl := gomock.NewController(t)
			embedder := mocks.NewMockEmbedder(ctrl)
			store := vectorstore_mocks.NewMockVectorStore(ctrl)
			tt.setup(embedder, store)

			p := newTestPipeline(t, embedder, store, 3, 10)
			result, err := p.IngestDocument(context.Background(), Document{BookID: "b", Text: "abcdef"}, 1)
			if err == nil {
				t.Fatal("IngestDocument() expected error")
			}
			if result.Chunks != 0 {
				t.Errorf("IngestDocument() chunks = %d, want 0", result.Chunks)
			}
		})
	}
}

func TestPipeline_IngestDocument_CancelledWritesNothing(t *testing.T) {
	ctrl := gomock.NewController(t)
	embedder := mocks.NewMockEmbedder(ctrl)
	store := vectorstore_mocks.NewMockVectorStore(ctrl)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	p := newTestPipeline(t, embedder, store, 3, 10)
	_, err := p.IngestDocument(ctx, Document{BookID: "b", Text: "abcdef"}, 1)
	if !errors.Is(err, context.Canceled) {
		t.Errorf("IngestDocument() error = %v, want context.Canceled", err)
	}
}

func TestPipeline_ContentVersions(t *testing.T) {
	ctrl := gomock.NewController(t)
	embedder := mocks.NewMockEmbedder(ctrl)
	embedder.EXPECT().EmbedTexts(gomock.Any(), gomock.Any()).DoAndReturn(fakeVectors).AnyTimes()

	ctx := context.Background()
	p := newTestPipeline(t, embedder, vectorstore.NewMemoryStore(), 100, 10)

	inputs := []ContentVersion{
		{BookID: "b", Type: TypeSummary, Chapter: 0, Version: 1, Content: "first summary"},
		{BookID: "b", Type: TypeSummary, Chapter: 0, Version: 3, Content: "third summary"},
		{BookID: "b", Type: TypeSummary, Chapter: 0, Version: 2, Content: "second summary"},
		{BookID: "b", Type: TypeSummary, Chapter: 1, Version: 1, Content: "other chapter"},
		{BookID: "b", Type: TypeReview, Chapter: 0, Version: 1, Content: "a review"},
		{BookID: "c", Type: TypeSummary, Chapter: 0, Version: 9, Content: "other book"},
	}
	for _, cv := range inputs {
		stored, err := p.StoreContentVersion(ctx, cv)
		if err != nil {
			t.Fatalf("StoreContentVersion() error = %v", err)
		}
		if stored.ID != RecordID(cv.BookID, cv.Type, cv.Version, cv.Chapter) {
			t.Errorf("StoreContentVersion() id = %s", stored.ID)
		}
	}

	chapter := 0
	got, err := p.ContentVersions(ctx, "b", TypeSummary, &chapter)
	if err != nil {
		t.Fatalf("ContentVersions() error = %v", err)
	}
	wantVersions := []int{3, 2, 1}
	if len(got) != len(wantVersions) {
		t.Fatalf("ContentVersions() returned %d, want %d", len(got), len(wantVersions))
	}
	for i, v := range wantVersions {
		if got[i].Version != v {
			t.Errorf("ContentVersions()[%d].Version = %d, want %d", i, got[i].Version, v)
		}
	}
	if got[0].Content != "third summary" || got[0].Timestamp != 1700000000 {
		t.Errorf("ContentVersions()[0] = %+v", got[0])
	}

	all, _ := p.ContentVersions(ctx, "b", TypeSummary, nil)
	if len(all) != 4 {
		t.Errorf("ContentVersions() without chapter returned %d, want 4", len(all))
	}

	next, err := p.NextVersion(ctx, "b", TypeSummary, 0)
	if err != nil || next != 4 {
		t.Errorf("NextVersion() = %d, %v, want 4", next, err)
	}
	next, _ = p.NextVersion(ctx, "b", TypeMCQs, 0)
	if next != 1 {
		t.Errorf("NextVersion() for new artifact = %d, want 1", next)
	}
}

func TestPipeline_StoreContentVersion_Validation(t *testing.T) {
	p := newTestPipeline(t, nil, vectorstore.NewMemoryStore(), 10, 10)

	tests := []ContentVersion{
		{Type: TypeSummary, Version: 1, Content: "x"},
		{BookID: "b", Version: 1, Content: "x"},
		{BookID: "b", Type: TypeSummary, Version: 1, Content: "  "},
		{BookID: "b", Type: TypeSummary, Version: 0, Content: "x"},
	}
	for _, cv := range tests {
		if _, err := p.StoreContentVersion(context.Background(), cv); !errors.Is(err, ErrInvalidInput) {
			t.Errorf("StoreContentVersion(%+v) error = %v, want ErrInvalidInput", cv, err)
		}
	}
}

func TestPipeline_ContentVersions_BackendError(t *testing.T) {
	ctrl := gomock.NewController(t)
	store := vectorstore_mocks.NewMockVectorStore(ctrl)
	store.EXPECT().Get(gomock.Any(), "chapters", gomock.Any()).Return(nil, errors.New("down"))

	p := newTestPipeline(t, nil, store, 10, 10)
	if _, err := p.ContentVersions(context.Background(), "b", TypeSummary, nil); err == nil {
		t.Error("ContentVersions() expected error from raw store")
	}
}
