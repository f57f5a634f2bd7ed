package config

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// Retrieval modes select where the Ask pipeline draws context candidates from.
const (
	RetrievalModeIndex    = "index"
	RetrievalModeDocument = "document"
)

// Backends for the vector index and the feedback log.
const (
	BackendQdrant = "qdrant"
	BackendMemory = "memory"
	BackendSQLite = "sqlite"
)

// Config holds all configuration for the application.
type Config struct {
	APIPort   string
	LogLevel  slog.Level
	LogFormat string
	DBPath    string

	LLMBaseURL   string
	LLMAPIKey    string
	LLMModelName string
	LLMTimeout   time.Duration
	// LLMRateLimit is the maximum number of chat requests per second. Zero disables limiting.
	LLMRateLimit float64

	EmbeddingBaseURL   string
	EmbeddingModelName string
	EmbeddingTimeout   time.Duration
	EmbeddingBatchSize int

	VectorBackend    string
	QdrantURL        string
	QdrantCollection string
	QdrantVectorSize int
	VectorTimeout    time.Duration

	ChunkSize         int
	MaxContextChars   int
	TopK              int
	CandidatePool     int
	RetrievalMode     string
	FeedbackRerank    bool
	FeedbackBackend   string
	AnswerTemperature float32
	AnswerMaxTokens   int
	QuizMaxAttempts   int

	Prompts Prompts
}

// Load reads configuration from environment variables and returns a Config struct.
// It applies defaults for optional fields and validates required fields.
// If a .env file exists in the current directory or a parent directory, it is loaded first.
// Environment variables already set take precedence over .env file values.
func Load() (*Config, error) {
	_ = godotenv.Load()

	wd, err := os.Getwd()
	if err == nil {
		dir := wd
		for i := 0; i < 5; i++ {
			envPath := filepath.Join(dir, ".env")
			if _, err := os.Stat(envPath); err == nil {
				_ = godotenv.Load(envPath)
				break
			}
			parent := filepath.Dir(dir)
			if parent == dir {
				break
			}
			dir = parent
		}
	}

	cfg := &Config{
		APIPort:            getEnv("API_PORT", "9000"),
		LogFormat:          strings.ToLower(getEnv("LOG_FORMAT", "text")),
		DBPath:             getEnv("DB_PATH", "./data/bookbrain.db"),
		LLMBaseURL:         getEnv("LLM_BASE_URL", "https://openrouter.ai/api"),
		LLMAPIKey:          getEnv("LLM_API_KEY", ""),
		LLMModelName:       getEnv("LLM_MODEL", "mistralai/mistral-7b-instruct"),
		EmbeddingBaseURL:   getEnv("EMBEDDING_BASE_URL", "http://localhost:8081"),
		EmbeddingModelName: getEnv("EMBEDDING_MODEL_NAME", "all-MiniLM-L6-v2"),
		VectorBackend:      strings.ToLower(getEnv("VECTOR_BACKEND", BackendQdrant)),
		QdrantURL:          getEnv("QDRANT_URL", "http://localhost:6333"),
		QdrantCollection:   getEnv("QDRANT_COLLECTION", "bookbrain_chapters"),
		RetrievalMode:      strings.ToLower(getEnv("RETRIEVAL_MODE", RetrievalModeIndex)),
		FeedbackBackend:    strings.ToLower(getEnv("FEEDBACK_BACKEND", BackendSQLite)),
		Prompts:            DefaultPrompts(),
	}

	level, err := parseLogLevel(getEnv("LOG_LEVEL", "info"))
	if err != nil {
		return nil, err
	}
	cfg.LogLevel = level

	ints := []struct {
		key  string
		def  string
		dest *int
	}{
		{"QDRANT_VECTOR_SIZE", "384", &cfg.QdrantVectorSize},
		{"EMBEDDING_BATCH_SIZE", "32", &cfg.EmbeddingBatchSize},
		{"CHUNK_SIZE", "12000", &cfg.ChunkSize},
		{"MAX_CONTEXT_CHARS", "24000", &cfg.MaxContextChars},
		{"RAG_TOP_K", "2", &cfg.TopK},
		{"RAG_CANDIDATES", "10", &cfg.CandidatePool},
		{"ANSWER_MAX_TOKENS", "600", &cfg.AnswerMaxTokens},
		{"QUIZ_MAX_ATTEMPTS", "2", &cfg.QuizMaxAttempts},
	}
	for _, f := range ints {
		v, err := positiveInt(f.key, getEnv(f.key, f.def))
		if err != nil {
			return nil, err
		}
		*f.dest = v
	}

	durations := []struct {
		key  string
		def  string
		dest *time.Duration
	}{
		{"LLM_TIMEOUT", "60s", &cfg.LLMTimeout},
		{"EMBEDDING_TIMEOUT", "30s", &cfg.EmbeddingTimeout},
		{"VECTOR_TIMEOUT", "10s", &cfg.VectorTimeout},
	}
	for _, f := range durations {
		d, err := time.ParseDuration(getEnv(f.key, f.def))
		if err != nil {
			return nil, fmt.Errorf("%s must be a valid duration: %w", f.key, err)
		}
		if d <= 0 {
			return nil, fmt.Errorf("%s must be greater than 0", f.key)
		}
		*f.dest = d
	}

	rateLimit, err := strconv.ParseFloat(getEnv("LLM_RATE_LIMIT", "0"), 64)
	if err != nil || rateLimit < 0 {
		return nil, fmt.Errorf("LLM_RATE_LIMIT must be a non-negative number")
	}
	cfg.LLMRateLimit = rateLimit

	temperature, err := strconv.ParseFloat(getEnv("ANSWER_TEMPERATURE", "0.3"), 32)
	if err != nil || temperature < 0 || temperature > 2 {
		return nil, fmt.Errorf("ANSWER_TEMPERATURE must be a number between 0 and 2")
	}
	cfg.AnswerTemperature = float32(temperature)

	rerank, err := strconv.ParseBool(getEnv("FEEDBACK_RERANK", "true"))
	if err != nil {
		return nil, fmt.Errorf("FEEDBACK_RERANK must be a boolean: %w", err)
	}
	cfg.FeedbackRerank = rerank

	if err := cfg.validate(); err != nil {
		return nil, err
	}

	if path := getEnv("PROMPTS_FILE", ""); path != "" {
		prompts, err := LoadPrompts(path)
		if err != nil {
			return nil, err
		}
		cfg.Prompts = prompts
	}

	dataDir := filepath.Dir(cfg.DBPath)
	if err := os.MkdirAll(dataDir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create data directory: %w", err)
	}

	return cfg, nil
}

func (c *Config) validate() error {
	switch c.LogFormat {
	case "json", "text":
	default:
		return fmt.Errorf("LOG_FORMAT must be json or text, got %q", c.LogFormat)
	}
	switch c.VectorBackend {
	case BackendQdrant, BackendMemory:
	default:
		return fmt.Errorf("VECTOR_BACKEND must be qdrant or memory, got %q", c.VectorBackend)
	}
	switch c.FeedbackBackend {
	case BackendSQLite, BackendMemory:
	default:
		return fmt.Errorf("FEEDBACK_BACKEND must be sqlite or memory, got %q", c.FeedbackBackend)
	}
	switch c.RetrievalMode {
	case RetrievalModeIndex, RetrievalModeDocument:
	default:
		return fmt.Errorf("RETRIEVAL_MODE must be index or document, got %q", c.RetrievalMode)
	}
	if c.CandidatePool < c.TopK {
		return fmt.Errorf("RAG_CANDIDATES (%d) must be at least RAG_TOP_K (%d)", c.CandidatePool, c.TopK)
	}
	if c.LLMAPIKey == "" {
		return fmt.Errorf("LLM_API_KEY is required")
	}
	return nil
}

func parseLogLevel(s string) (slog.Level, error) {
	var level slog.Level
	if err := level.UnmarshalText([]byte(s)); err != nil {
		return 0, fmt.Errorf("LOG_LEVEL must be one of debug, info, warn, error: %w", err)
	}
	return level, nil
}

func positiveInt(key, raw string) (int, error) {
	v, err := strconv.Atoi(raw)
	if err != nil {
		return 0, fmt.Errorf("%s must be a valid integer: %w", key, err)
	}
	if v <= 0 {
		return 0, fmt.Errorf("%s must be greater than 0", key)
	}
	return v, nil
}

// getEnv gets an environment variable or returns a default value.
func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}
