package rag_test

import (
	"context"
	"errors"
	"strings"
	"sync"
	"testing"
	"time"

	"go.uber.org/mock/gomock"

	"bookbrain/internal/config"
	"bookbrain/internal/feedback"
	fbmocks "bookbrain/internal/feedback/mocks"
	"bookbrain/internal/indexer"
	"bookbrain/internal/llm"
	"bookbrain/internal/rag"
	"bookbrain/internal/rag/mocks"
	"bookbrain/internal/resilience"
	"bookbrain/internal/vectorstore"
	vsmocks "bookbrain/internal/vectorstore/mocks"
)

const (
	testCollection = "chapters"
	testModel      = "test-embedding"
)

// keywordEmbedder maps texts to vectors over a tiny fixed vocabulary.
type keywordEmbedder struct {
	err error
}

var vocabulary = []string{"paris", "museum", "berlin", "whale"}

func (k keywordEmbedder) EmbedTexts(_ context.Context, texts []string) ([][]float32, error) {
	if k.err != nil {
		return nil, k.err
	}
	out := make([][]float32, len(texts))
	for i, text := range texts {
		lower := strings.ToLower(text)
		vec := make([]float32, len(vocabulary)+1)
		for j, word := range vocabulary {
			if strings.Contains(lower, word) {
				vec[j] = 1
			}
		}
		vec[len(vocabulary)] = 0.1
		out[i] = vec
	}
	return out, nil
}

type recordingObserver struct {
	mu       sync.Mutex
	statuses []rag.Status
	modes    []string
}

func (o *recordingObserver) ObserveAnswer(status rag.Status, mode string, _ time.Duration) {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.statuses = append(o.statuses, status)
	o.modes = append(o.modes, mode)
}

// echoModel answers with the prompt it received so tests can inspect the context.
type echoModel struct {
	prompts []string
}

func (m *echoModel) ChatWithMessages(_ context.Context, messages []llm.Message, _ llm.ChatParams) (string, error) {
	m.prompts = append(m.prompts, messages[0].Content)
	return "Answer based on the context.", nil
}

func seedIndex(t *testing.T) *vectorstore.MemoryStore {
	t.Helper()
	store := vectorstore.NewMemoryStore()
	embedder := keywordEmbedder{}

	records := []struct {
		id, book, typ, model, text string
	}{
		{"b1_chapter_v1_ch_0", "b1", indexer.TypeChapter, testModel, "Paris is the capital of France."},
		{"b1_chapter_v1_ch_1", "b1", indexer.TypeChapter, testModel, "The Louvre is a museum in Paris."},
		{"b1_chapter_v1_ch_2", "b1", indexer.TypeChapter, testModel, "Berlin is the capital of Germany."},
		{"b2_chapter_v1_ch_0", "b2", indexer.TypeChapter, testModel, "Paris appears in another book."},
		{"b1_summary_v1_ch_0", "b1", indexer.TypeSummary, testModel, "Summary mentioning Paris."},
		{"b1_chapter_v1_ch_9", "b1", indexer.TypeChapter, "old-model", "Paris indexed with another model."},
	}
	for _, r := range records {
		vecs, _ := embedder.EmbedTexts(context.Background(), []string{r.text})
		err := store.Upsert(context.Background(), testCollection, []vectorstore.Point{{
			ID:   r.id,
			Vec:  vecs[0],
			Text: r.text,
			Meta: map[string]any{
				vectorstore.KeyBookID:         r.book,
				vectorstore.KeyType:           r.typ,
				vectorstore.KeyEmbeddingModel: r.model,
				vectorstore.KeyVersion:        1,
			},
		}})
		if err != nil {
			t.Fatalf("Upsert() error = %v", err)
		}
	}
	return store
}

func guarded(store vectorstore.VectorStore) *vectorstore.Guarded {
	exec := resilience.NewExecutor(resilience.Config{RetryMaxAttempts: 1})
	return vectorstore.NewGuarded(store, exec, time.Second)
}

func engineConfig(mode string, rerank bool) rag.EngineConfig {
	return rag.EngineConfig{
		Collection:     testCollection,
		EmbeddingModel: testModel,
		RetrievalMode:  mode,
		ChunkSize:      40,
		CandidatePool:  10,
		TopK:           2,
		FeedbackRerank: rerank,
	}
}

func newSynth(lm rag.LanguageModel) *rag.Synthesizer {
	return rag.NewSynthesizer(lm, rag.SynthesizerConfig{MaxContextChars: 24000, Temperature: 0.3, MaxTokens: 600, Timeout: time.Second})
}

func TestEngine_Ask_NoContext(t *testing.T) {
	ctrl := gomock.NewController(t)
	embedder := mocks.NewMockEmbedder(ctrl)
	lm := mocks.NewMockLanguageModel(ctrl)
	observer := &recordingObserver{}

	engine := rag.NewEngine(embedder, vectorstore.NewMemoryStore(), nil, newSynth(lm), engineConfig(config.RetrievalModeIndex, false), observer)

	resp, err := engine.Ask(context.Background(), rag.AskRequest{
		Document: indexer.Document{BookID: "b1", Text: "   \n"},
		Question: "What is the theme?",
	})
	if err != nil {
		t.Fatalf("Ask() error = %v", err)
	}
	if resp.Status != rag.StatusNoContext || resp.Text != rag.NoContextMessage {
		t.Errorf("Ask() = %+v, want no-context result", resp.Answer)
	}
	if len(resp.ContextChunks) != 0 {
		t.Errorf("Ask() context = %v, want empty", resp.ContextChunks)
	}
	if len(observer.statuses) != 1 || observer.statuses[0] != rag.StatusNoContext {
		t.Errorf("observer saw %v", observer.statuses)
	}
}

func TestEngine_Ask_IndexMode(t *testing.T) {
	lm := &echoModel{}
	observer := &recordingObserver{}
	engine := rag.NewEngine(keywordEmbedder{}, guarded(seedIndex(t)), nil, newSynth(lm), engineConfig(config.RetrievalModeIndex, false), observer)

	resp, err := engine.Ask(context.Background(), rag.AskRequest{
		Document: indexer.Document{BookID: "b1", Text: "chapter text"},
		Question: "Which museum is in Paris?",
		Debug:    true,
	})
	if err != nil {
		t.Fatalf("Ask() error = %v", err)
	}
	if resp.Status != rag.StatusAnswered {
		t.Fatalf("Ask() status = %v, want answered", resp.Status)
	}

	want := []string{"The Louvre is a museum in Paris.", "Paris is the capital of France."}
	if !sameStrings(resp.ContextChunks, want) {
		t.Errorf("Ask() context = %v, want %v", resp.ContextChunks, want)
	}
	if resp.Debug == nil || resp.Debug.Mode != config.RetrievalModeIndex {
		t.Fatalf("Ask() debug = %+v", resp.Debug)
	}
	// Other books, other content types and other embedding models are filtered out.
	if len(resp.Debug.RetrievedChunks) != 3 {
		t.Errorf("retrieved %d candidates, want 3: %v", len(resp.Debug.RetrievedChunks), candidateTexts(resp.Debug.RetrievedChunks))
	}
	if !strings.Contains(lm.prompts[0], "The Louvre is a museum in Paris.\n\nParis is the capital of France.") {
		t.Errorf("prompt does not carry the ranked context: %q", lm.prompts[0])
	}
	if observer.modes[0] != config.RetrievalModeIndex {
		t.Errorf("observer mode = %q", observer.modes[0])
	}
}

func TestEngine_Ask_IndexUnreachable(t *testing.T) {
	ctrl := gomock.NewController(t)
	store := vsmocks.NewMockVectorStore(ctrl)
	store.EXPECT().Search(gomock.Any(), testCollection, gomock.Any(), 10, gomock.Any()).
		Return(nil, errors.New("connection refused"))

	lm := &echoModel{}
	engine := rag.NewEngine(keywordEmbedder{}, guarded(store), nil, newSynth(lm), engineConfig(config.RetrievalModeIndex, true), nil)

	resp, err := engine.Ask(context.Background(), rag.AskRequest{
		Document: indexer.Document{BookID: "b1", Text: "chapter text"},
		Question: "What is the theme?",
	})
	if err != nil {
		t.Fatalf("Ask() error = %v", err)
	}
	if resp.Text == "" {
		t.Error("Ask() answer should not be empty")
	}
	if len(resp.ContextChunks) != 0 {
		t.Errorf("Ask() context = %v, want empty", resp.ContextChunks)
	}
	if !strings.Contains(lm.prompts[0], "Context:\n\n\nQuestion: What is the theme?") {
		t.Errorf("expected a zero-context prompt, got %q", lm.prompts[0])
	}
}

func TestEngine_Ask_EmbeddingUnavailable(t *testing.T) {
	lm := &echoModel{}
	embedder := keywordEmbedder{err: errors.New("embedding server down")}

	for _, mode := range []string{config.RetrievalModeIndex, config.RetrievalModeDocument} {
		t.Run(mode, func(t *testing.T) {
			engine := rag.NewEngine(embedder, guarded(seedIndex(t)), nil, newSynth(lm), engineConfig(mode, false), nil)
			resp, err := engine.Ask(context.Background(), rag.AskRequest{
				Document: indexer.Document{BookID: "b1", Text: "Paris is the capital of France."},
				Question: "Where?",
			})
			if err != nil {
				t.Fatalf("Ask() error = %v", err)
			}
			if resp.Status != rag.StatusAnswered || len(resp.ContextChunks) != 0 {
				t.Errorf("Ask() = %+v, want answered with empty context", resp.Answer)
			}
		})
	}
}

func TestEngine_Ask_DocumentMode(t *testing.T) {
	lm := &echoModel{}
	engine := rag.NewEngine(keywordEmbedder{}, vectorstore.NewMemoryStore(), nil, newSynth(lm), engineConfig(config.RetrievalModeDocument, false), nil)

	text := "Berlin is the capital of Germany.       " + // 40 characters
		"Ships hunt the whale across the sea.    " +
		"The Louvre museum is in Paris, France.  "
	resp, err := engine.Ask(context.Background(), rag.AskRequest{
		Document: indexer.Document{BookID: "b1", Text: text},
		Question: "Tell me about the Paris museum",
		K:        1,
	})
	if err != nil {
		t.Fatalf("Ask() error = %v", err)
	}
	if len(resp.ContextChunks) != 1 || !strings.Contains(resp.ContextChunks[0], "Louvre") {
		t.Errorf("Ask() context = %v, want the Louvre chunk", resp.ContextChunks)
	}
}

func TestEngine_Ask_FeedbackRerank(t *testing.T) {
	fb := feedback.NewMemoryStore()
	ctx := context.Background()
	for i := 0; i < 2; i++ {
		_ = fb.Record(ctx, feedback.Feedback{Question: "capital?", Answer: "capital of Germany", IsCorrect: true})
	}
	_ = fb.Record(ctx, feedback.Feedback{Question: "museum?", Answer: "Louvre", IsCorrect: false})

	lm := &echoModel{}
	engine := rag.NewEngine(keywordEmbedder{}, guarded(seedIndex(t)), fb, newSynth(lm), engineConfig(config.RetrievalModeIndex, true), nil)

	resp, err := engine.Ask(ctx, rag.AskRequest{
		Document: indexer.Document{BookID: "b1", Text: "chapter text"},
		Question: "Which museum is in Paris?",
		Debug:    true,
	})
	if err != nil {
		t.Fatalf("Ask() error = %v", err)
	}

	want := []string{"Berlin is the capital of Germany.", "Paris is the capital of France."}
	if !sameStrings(resp.ContextChunks, want) {
		t.Errorf("Ask() context = %v, want %v", resp.ContextChunks, want)
	}
	if !resp.Debug.FeedbackApplied {
		t.Error("Ask() should report feedback re-ranking")
	}
	last := resp.Debug.RetrievedChunks[len(resp.Debug.RetrievedChunks)-1]
	if last.Reward != -1 || last.AdjustedScore >= last.Similarity {
		t.Errorf("penalized candidate = %+v", last)
	}
}

func TestEngine_Ask_FeedbackUnavailable(t *testing.T) {
	ctrl := gomock.NewController(t)
	fb := fbmocks.NewMockStore(ctrl)
	fb.EXPECT().All(gomock.Any()).Return(nil, errors.New("database is locked"))

	lm := &echoModel{}
	engine := rag.NewEngine(keywordEmbedder{}, guarded(seedIndex(t)), fb, newSynth(lm), engineConfig(config.RetrievalModeIndex, true), nil)

	resp, err := engine.Ask(context.Background(), rag.AskRequest{
		Document: indexer.Document{BookID: "b1", Text: "chapter text"},
		Question: "Which museum is in Paris?",
		Debug:    true,
	})
	if err != nil {
		t.Fatalf("Ask() error = %v", err)
	}
	if resp.Debug.FeedbackApplied {
		t.Error("re-ranking should be skipped when feedback cannot be read")
	}
	if len(resp.ContextChunks) != 2 || resp.ContextChunks[0] != "The Louvre is a museum in Paris." {
		t.Errorf("Ask() context = %v", resp.ContextChunks)
	}
}

func TestEngine_Ask_ModelFailure(t *testing.T) {
	ctrl := gomock.NewController(t)
	lm := mocks.NewMockLanguageModel(ctrl)
	lm.EXPECT().ChatWithMessages(gomock.Any(), gomock.Any(), gomock.Any()).Return("", errors.New("quota exceeded"))
	observer := &recordingObserver{}

	engine := rag.NewEngine(keywordEmbedder{}, guarded(seedIndex(t)), nil, newSynth(lm), engineConfig(config.RetrievalModeIndex, false), observer)
	resp, err := engine.Ask(context.Background(), rag.AskRequest{
		Document: indexer.Document{BookID: "b1", Text: "chapter text"},
		Question: "Where is Paris?",
	})
	if err != nil {
		t.Fatalf("Ask() error = %v", err)
	}
	if resp.Status != rag.StatusFailed || !rag.IsErrorText(resp.Text) || len(resp.ContextChunks) != 0 {
		t.Errorf("Ask() = %+v, want failed result with empty context", resp.Answer)
	}
	if observer.statuses[0] != rag.StatusFailed {
		t.Errorf("observer saw %v", observer.statuses)
	}
}

func TestEngine_Ask_RequiresQuestion(t *testing.T) {
	engine := rag.NewEngine(keywordEmbedder{}, vectorstore.NewMemoryStore(), nil, newSynth(&echoModel{}), engineConfig(config.RetrievalModeIndex, false), nil)
	if _, err := engine.Ask(context.Background(), rag.AskRequest{Document: indexer.Document{Text: "x"}}); err == nil {
		t.Error("Ask() expected error for empty question")
	}
}

func TestEngine_Search(t *testing.T) {
	fb := feedback.NewMemoryStore()
	_ = fb.Record(context.Background(), feedback.Feedback{Question: "q", Answer: "Germany", IsCorrect: true})

	engine := rag.NewEngine(keywordEmbedder{}, guarded(seedIndex(t)), fb, newSynth(&echoModel{}), engineConfig(config.RetrievalModeIndex, true), nil)

	tests := []struct {
		name    string
		req     rag.SearchRequest
		want    []string
		wantErr bool
	}{
		{
			name: "default k is three with feedback first",
			req:  rag.SearchRequest{BookID: "b1", Query: "paris museum"},
			want: []string{
				"Berlin is the capital of Germany.",
				"The Louvre is a museum in Paris.",
				"Paris is the capital of France.",
			},
		},
		{
			name: "explicit k",
			req:  rag.SearchRequest{BookID: "b1", Query: "paris museum", K: 1},
			want: []string{"Berlin is the capital of Germany."},
		},
		{
			name: "unknown book",
			req:  rag.SearchRequest{BookID: "nope", Query: "paris"},
			want: []string{},
		},
		{name: "missing query", req: rag.SearchRequest{BookID: "b1"}, wantErr: true},
		{name: "missing book", req: rag.SearchRequest{Query: "paris"}, wantErr: true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := engine.Search(context.Background(), tt.req)
			if (err != nil) != tt.wantErr {
				t.Fatalf("Search() error = %v, wantErr %v", err, tt.wantErr)
			}
			if !tt.wantErr && !sameStrings(candidateTexts(got), tt.want) {
				t.Errorf("Search() = %v, want %v", candidateTexts(got), tt.want)
			}
		})
	}
}

func TestEngine_Search_IndexUnreachable(t *testing.T) {
	ctrl := gomock.NewController(t)
	store := vsmocks.NewMockVectorStore(ctrl)
	store.EXPECT().Search(gomock.Any(), gomock.Any(), gomock.Any(), gomock.Any(), gomock.Any()).
		Return(nil, context.DeadlineExceeded)

	engine := rag.NewEngine(keywordEmbedder{}, guarded(store), nil, newSynth(&echoModel{}), engineConfig(config.RetrievalModeIndex, false), nil)
	got, err := engine.Search(context.Background(), rag.SearchRequest{BookID: "b1", Query: "q"})
	if err != nil || len(got) != 0 {
		t.Errorf("Search() = %v, %v; want empty result and nil error", got, err)
	}
}

func TestEngine_RevisionHidesSupersededChunks(t *testing.T) {
	store := vectorstore.NewMemoryStore()
	upsert := func(id, text string, revision int64) {
		vecs, _ := keywordEmbedder{}.EmbedTexts(context.Background(), []string{text})
		err := store.Upsert(context.Background(), testCollection, []vectorstore.Point{{
			ID:   id,
			Vec:  vecs[0],
			Text: text,
			Meta: map[string]any{
				vectorstore.KeyBookID:         "b3",
				vectorstore.KeyType:           indexer.TypeChapter,
				vectorstore.KeyEmbeddingModel: testModel,
				vectorstore.KeyTimestamp:      revision,
			},
		}})
		if err != nil {
			t.Fatalf("Upsert() error = %v", err)
		}
	}
	// The longer first text had two chunks; the replacement overwrote only chunk 0.
	upsert("b3_chapter_v1_ch_0", "Old Paris chapter.", 100)
	upsert("b3_chapter_v1_ch_1", "Old Paris museum chapter.", 100)
	upsert("b3_chapter_v1_ch_0", "New Paris chapter.", 200)

	engine := rag.NewEngine(keywordEmbedder{}, guarded(store), nil, newSynth(&echoModel{}), engineConfig(config.RetrievalModeIndex, false), nil)

	tests := []struct {
		name     string
		revision int64
		want     []string
	}{
		{name: "current revision", revision: 200, want: []string{"New Paris chapter."}},
		{name: "any revision", revision: 0, want: []string{"New Paris chapter.", "Old Paris museum chapter."}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := engine.Search(context.Background(), rag.SearchRequest{BookID: "b3", Revision: tt.revision, Query: "paris", K: 5})
			if err != nil {
				t.Fatalf("Search() error = %v", err)
			}
			if !sameStrings(candidateTexts(got), tt.want) {
				t.Errorf("Search() = %v, want %v", candidateTexts(got), tt.want)
			}
		})
	}

	model := &echoModel{}
	asker := rag.NewEngine(keywordEmbedder{}, guarded(store), nil, newSynth(model), engineConfig(config.RetrievalModeIndex, false), nil)
	resp, err := asker.Ask(context.Background(), rag.AskRequest{
		Document: indexer.Document{BookID: "b3", Text: "New Paris chapter.", Revision: 200},
		Question: "paris museum?",
		Debug:    true,
	})
	if err != nil {
		t.Fatalf("Ask() error = %v", err)
	}
	for _, c := range resp.Debug.RetrievedChunks {
		if strings.Contains(c.Text, "Old") {
			t.Errorf("Ask() retrieved superseded chunk %q", c.Text)
		}
	}
}
