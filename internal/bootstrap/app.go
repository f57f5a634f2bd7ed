// Package bootstrap assembles the application from configuration.
package bootstrap

import (
	"context"
	"database/sql"
	"fmt"
	"io"
	"log/slog"
	"net/http"

	"bookbrain/internal/config"
	"bookbrain/internal/contextutil"
	"bookbrain/internal/feedback"
	apihttp "bookbrain/internal/http"
	"bookbrain/internal/indexer"
	"bookbrain/internal/llm"
	"bookbrain/internal/observability/metrics"
	"bookbrain/internal/rag"
	"bookbrain/internal/resilience"
	"bookbrain/internal/service"
	"bookbrain/internal/storage"
	"bookbrain/internal/study"
	"bookbrain/internal/vectorstore"
)

// App holds the wired services and the resources they own.
type App struct {
	Config  *config.Config
	DB      *sql.DB
	Metrics *metrics.Metrics
	// Qdrant is nil when the memory backend is configured.
	Qdrant *vectorstore.QdrantStore

	QA      service.QAService
	Library service.LibraryService
}

// NewLogger builds a logger writing to w with the configured level and format.
func NewLogger(cfg *config.Config, w io.Writer) *slog.Logger {
	opts := &slog.HandlerOptions{Level: cfg.LogLevel}
	var handler slog.Handler
	if cfg.LogFormat == "json" {
		handler = slog.NewJSONHandler(w, opts)
	} else {
		handler = slog.NewTextHandler(w, opts)
	}
	return slog.New(handler)
}

// New opens storage, connects backends and wires the services.
// Unreachable model or index backends are logged, not fatal: reads against
// them degrade at query time.
func New(ctx context.Context, cfg *config.Config, serviceName string) (*App, error) {
	logger := contextutil.LoggerFromContext(ctx)

	db, err := storage.New(cfg.DBPath)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}
	if err := storage.Migrate(db); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to run migrations: %w", err)
	}
	logger.InfoContext(ctx, "database initialized", "path", cfg.DBPath)

	app := &App{
		Config:  cfg,
		DB:      db,
		Metrics: metrics.New(serviceName),
	}

	exec := resilience.NewExecutor(resilience.DefaultConfig())

	var backend vectorstore.VectorStore
	switch cfg.VectorBackend {
	case config.BackendMemory:
		backend = vectorstore.NewMemoryStore()
		logger.InfoContext(ctx, "using in-memory vector index")
	default:
		qs, err := vectorstore.NewQdrantStore(cfg.QdrantURL)
		if err != nil {
			_ = db.Close()
			return nil, fmt.Errorf("failed to create Qdrant client: %w", err)
		}
		if err := qs.EnsureCollection(ctx, cfg.QdrantCollection, cfg.QdrantVectorSize); err != nil {
			logger.WarnContext(ctx, "qdrant collection not ready, index reads will degrade",
				"collection", cfg.QdrantCollection, "error", err)
		} else {
			logger.InfoContext(ctx, "qdrant collection ready", "collection", cfg.QdrantCollection, "vector_size", cfg.QdrantVectorSize)
		}
		app.Qdrant = qs
		backend = qs
	}
	index := vectorstore.NewGuarded(backend, exec, cfg.VectorTimeout).WithObserver(app.Metrics)

	embedder := llm.NewResilientEmbedder(
		llm.NewEmbeddingsClient(cfg.EmbeddingBaseURL, cfg.LLMAPIKey, cfg.EmbeddingModelName, cfg.QdrantVectorSize, cfg.EmbeddingTimeout),
		exec,
	)

	chat := llm.NewClient(cfg.LLMBaseURL, cfg.LLMAPIKey, cfg.LLMModelName,
		llm.WithTimeout(cfg.LLMTimeout),
		llm.WithRateLimit(cfg.LLMRateLimit),
	)
	catalog := llm.NewModelCatalog(cfg.LLMBaseURL, cfg.LLMAPIKey, cfg.LLMTimeout)
	if err := catalog.EnsureModel(ctx, cfg.LLMModelName); err != nil {
		logger.WarnContext(ctx, "language model not confirmed", "model", cfg.LLMModelName, "error", err)
	}

	var fb feedback.Store
	switch cfg.FeedbackBackend {
	case config.BackendMemory:
		fb = feedback.NewMemoryStore()
	default:
		fb = storage.NewFeedbackRepo(db)
	}

	documents := storage.NewDocumentRepo(db)

	pipeline := indexer.NewPipeline(embedder, index, indexer.PipelineConfig{
		Collection:     cfg.QdrantCollection,
		EmbeddingModel: cfg.EmbeddingModelName,
		ChunkSize:      cfg.ChunkSize,
		BatchSize:      cfg.EmbeddingBatchSize,
	})

	synth := rag.NewSynthesizer(chat, rag.SynthesizerConfig{
		Prompt:          cfg.Prompts.Answer,
		NoInfoPhrases:   cfg.Prompts.NoInfoPhrases,
		MaxContextChars: cfg.MaxContextChars,
		Temperature:     cfg.AnswerTemperature,
		MaxTokens:       cfg.AnswerMaxTokens,
		Timeout:         cfg.LLMTimeout,
	})

	engine := rag.NewEngine(embedder, index, fb, synth, rag.EngineConfig{
		Collection:     cfg.QdrantCollection,
		EmbeddingModel: cfg.EmbeddingModelName,
		RetrievalMode:  cfg.RetrievalMode,
		ChunkSize:      cfg.ChunkSize,
		CandidatePool:  cfg.CandidatePool,
		TopK:           cfg.TopK,
		FeedbackRerank: cfg.FeedbackRerank,
	}, app.Metrics)

	studyCfg := study.DefaultConfig()
	studyCfg.Prompts = cfg.Prompts
	studyCfg.QuizAttempts = cfg.QuizMaxAttempts
	studyCfg.Timeout = cfg.LLMTimeout
	generator := study.NewGenerator(chat, studyCfg)

	app.QA = service.NewQAService(engine, documents, fb)
	app.Library = service.NewLibraryService(documents, pipeline, generator)

	logger.InfoContext(ctx, "application wired",
		"retrieval_mode", cfg.RetrievalMode,
		"vector_backend", cfg.VectorBackend,
		"feedback_backend", cfg.FeedbackBackend,
		"feedback_rerank", cfg.FeedbackRerank,
	)
	return app, nil
}

// Router builds the HTTP API over the wired services.
func (a *App) Router() http.Handler {
	deps := &apihttp.Deps{
		QAService:      a.QA,
		LibraryService: a.Library,
		DB:             a.DB,
		Collection:     a.Config.QdrantCollection,
		Metrics:        a.Metrics,
	}
	if a.Qdrant != nil {
		deps.Index = a.Qdrant
	}
	return apihttp.NewRouter(deps)
}

// Close releases the database and the index connection.
func (a *App) Close() error {
	if a.Qdrant != nil {
		_ = a.Qdrant.Close()
	}
	return a.DB.Close()
}
