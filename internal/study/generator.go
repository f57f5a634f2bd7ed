// Package study generates summaries, reviews and multiple-choice quizzes from source text.
package study

//go:generate go run go.uber.org/mock/mockgen@latest -destination=mocks/mock_language_model.go -package=mocks bookbrain/internal/study LanguageModel

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"bookbrain/internal/config"
	"bookbrain/internal/contextutil"
	"bookbrain/internal/llm"
)

// ErrNoText is returned when there is no source text to generate from.
var ErrNoText = errors.New("no source text")

// GiveUpMessage is shown when no parsable quiz was produced.
const GiveUpMessage = "Could not generate valid MCQs."

// Kinds of study material.
const (
	KindSummary = "summary"
	KindReview  = "review"
	KindQuiz    = "mcqs"
)

// Status tags a generation result.
type Status string

const (
	StatusGenerated Status = "generated"
	StatusFailed    Status = "failed"
	StatusGaveUp    Status = "gave_up"
)

// LanguageModel completes a chat conversation.
type LanguageModel interface {
	ChatWithMessages(ctx context.Context, messages []llm.Message, params llm.ChatParams) (string, error)
}

// Sampling holds per-kind model parameters.
type Sampling struct {
	Temperature float32
	MaxTokens   int
}

// Config configures a Generator.
type Config struct {
	Prompts       config.Prompts
	Summary       Sampling
	Review        Sampling
	Quiz          Sampling
	QuizAttempts  int
	QuizQuestions int
	Timeout       time.Duration
}

// DefaultConfig returns the stock prompts and sampling parameters.
func DefaultConfig() Config {
	return Config{
		Prompts:       config.DefaultPrompts(),
		Summary:       Sampling{Temperature: 0.4, MaxTokens: 800},
		Review:        Sampling{Temperature: 0.5, MaxTokens: 1000},
		Quiz:          Sampling{Temperature: 0.7, MaxTokens: 1200},
		QuizAttempts:  2,
		QuizQuestions: 5,
		Timeout:       60 * time.Second,
	}
}

// Result is one generated artifact.
type Result struct {
	Kind   string `json:"kind"`
	Status Status `json:"status"`
	// Text is the artifact, or a display message for StatusFailed and StatusGaveUp.
	Text      string     `json:"text"`
	Questions []Question `json:"questions,omitempty"`
	Attempts  int        `json:"attempts,omitempty"`
	Reason    string     `json:"reason,omitempty"`
}

// Generator produces study material with a language model.
type Generator struct {
	lm  LanguageModel
	cfg Config
}

// NewGenerator creates a Generator.
func NewGenerator(lm LanguageModel, cfg Config) *Generator {
	def := DefaultConfig()
	if cfg.Prompts.Summary == "" {
		cfg.Prompts = def.Prompts
	}
	if cfg.QuizAttempts <= 0 {
		cfg.QuizAttempts = def.QuizAttempts
	}
	if cfg.QuizQuestions <= 0 {
		cfg.QuizQuestions = def.QuizQuestions
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = def.Timeout
	}
	return &Generator{lm: lm, cfg: cfg}
}

// Summary writes a multi-paragraph summary of text.
func (g *Generator) Summary(ctx context.Context, text string) (Result, error) {
	return g.single(ctx, KindSummary, g.cfg.Prompts.Summary, g.cfg.Summary, text)
}

// Review writes a critical review of text.
func (g *Generator) Review(ctx context.Context, text string) (Result, error) {
	return g.single(ctx, KindReview, g.cfg.Prompts.Review, g.cfg.Review, text)
}

// Quiz generates n multiple-choice questions, regenerating when the output cannot be parsed.
// n <= 0 uses the configured default.
func (g *Generator) Quiz(ctx context.Context, text string, n int) (Result, error) {
	logger := contextutil.LoggerFromContext(ctx)

	if strings.TrimSpace(text) == "" {
		return Result{}, ErrNoText
	}
	if n <= 0 {
		n = g.cfg.QuizQuestions
	}

	prompt := config.Render(g.cfg.Prompts.Quiz, map[string]string{
		"text":  text,
		"count": strconv.Itoa(n),
	})

	outcome, err := RunBounded(ctx, g.cfg.QuizAttempts,
		func(ctx context.Context) (string, error) {
			return g.complete(ctx, prompt, g.cfg.Quiz)
		},
		ParseQuiz,
	)

	switch outcome.State {
	case StateSuccess:
		logger.InfoContext(ctx, "quiz generated", "questions", len(outcome.Value), "attempts", outcome.Attempts)
		return Result{
			Kind:      KindQuiz,
			Status:    StatusGenerated,
			Text:      outcome.Raw,
			Questions: outcome.Value,
			Attempts:  outcome.Attempts,
		}, nil
	case StateGaveUp:
		logger.WarnContext(ctx, "giving up on quiz generation", "attempts", outcome.Attempts, "error", err)
		return Result{
			Kind:     KindQuiz,
			Status:   StatusGaveUp,
			Text:     GiveUpMessage,
			Attempts: outcome.Attempts,
			Reason:   err.Error(),
		}, nil
	default:
		logger.ErrorContext(ctx, "failed to generate quiz", "error", err)
		return failed(KindQuiz, "MCQs", err, outcome.Attempts), nil
	}
}

func (g *Generator) single(ctx context.Context, kind, template string, sampling Sampling, text string) (Result, error) {
	if strings.TrimSpace(text) == "" {
		return Result{}, ErrNoText
	}

	prompt := config.Render(template, map[string]string{"text": text})
	out, err := g.complete(ctx, prompt, sampling)
	if err != nil {
		contextutil.LoggerFromContext(ctx).ErrorContext(ctx, "failed to generate "+kind, "error", err)
		return failed(kind, kind, err, 1), nil
	}
	return Result{Kind: kind, Status: StatusGenerated, Text: out, Attempts: 1}, nil
}

func (g *Generator) complete(ctx context.Context, prompt string, sampling Sampling) (string, error) {
	callCtx, cancel := context.WithTimeout(ctx, g.cfg.Timeout)
	defer cancel()

	out, err := g.lm.ChatWithMessages(callCtx, []llm.Message{{Role: "user", Content: prompt}}, llm.ChatParams{
		Temperature: sampling.Temperature,
		MaxTokens:   sampling.MaxTokens,
	})
	if err != nil {
		return "", err
	}
	return strings.TrimSpace(out), nil
}

func failed(kind, label string, err error, attempts int) Result {
	return Result{
		Kind:     kind,
		Status:   StatusFailed,
		Text:     fmt.Sprintf("[Error] Failed to generate %s: %v", label, err),
		Attempts: attempts,
		Reason:   err.Error(),
	}
}
