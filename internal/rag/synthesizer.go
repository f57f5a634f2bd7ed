package rag

//go:generate go run go.uber.org/mock/mockgen@latest -destination=mocks/mock_language_model.go -package=mocks bookbrain/internal/rag LanguageModel

import (
	"context"
	"strings"
	"time"

	"bookbrain/internal/config"
	"bookbrain/internal/contextutil"
	"bookbrain/internal/llm"
)

// contextSeparator joins passages in the assembled context.
const contextSeparator = "\n\n"

// LanguageModel completes a chat conversation.
type LanguageModel interface {
	ChatWithMessages(ctx context.Context, messages []llm.Message, params llm.ChatParams) (string, error)
}

// SynthesizerConfig configures answer synthesis.
type SynthesizerConfig struct {
	// Prompt is the answer template with {{context}} and {{question}} placeholders.
	Prompt string
	// NoInfoPhrases trigger the passage fallback, matched case-insensitively.
	NoInfoPhrases   []string
	MaxContextChars int
	Temperature     float32
	MaxTokens       int
	Timeout         time.Duration
}

// Synthesizer turns ranked passages and a question into an answer.
type Synthesizer struct {
	lm  LanguageModel
	cfg SynthesizerConfig
}

// NewSynthesizer creates a Synthesizer.
func NewSynthesizer(lm LanguageModel, cfg SynthesizerConfig) *Synthesizer {
	if cfg.Prompt == "" {
		cfg.Prompt = config.DefaultPrompts().Answer
	}
	if cfg.NoInfoPhrases == nil {
		cfg.NoInfoPhrases = config.DefaultPrompts().NoInfoPhrases
	}
	if cfg.MaxContextChars <= 0 {
		cfg.MaxContextChars = 24000
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = 60 * time.Second
	}
	return &Synthesizer{lm: lm, cfg: cfg}
}

// AssembleContext joins chunks in order and cuts the result at budget characters.
// It returns the context and the chunks that contributed at least one character.
func AssembleContext(chunks []string, budget int) (string, []string) {
	used := make([]string, 0, len(chunks))
	if budget <= 0 {
		return "", used
	}

	offset := 0
	for i, chunk := range chunks {
		if i > 0 {
			offset += len([]rune(contextSeparator))
		}
		n := len([]rune(chunk))
		if offset >= budget {
			break
		}
		if n > 0 {
			used = append(used, chunk)
		}
		offset += n
	}

	joined := []rune(strings.Join(chunks, contextSeparator))
	if len(joined) > budget {
		joined = joined[:budget]
	}
	return string(joined), used
}

// Answer asks the model to answer question from chunks, which must be in ranked order.
// It never returns an error: model failures come back as StatusFailed.
func (s *Synthesizer) Answer(ctx context.Context, question string, chunks []string) Answer {
	logger := contextutil.LoggerFromContext(ctx)

	contextText, used := AssembleContext(chunks, s.cfg.MaxContextChars)
	prompt := config.Render(s.cfg.Prompt, map[string]string{
		"context":  contextText,
		"question": question,
	})

	logger.DebugContext(ctx, "sending answer prompt",
		"prompt_length", len(prompt),
		"context_length", len(contextText),
		"chunks_used", len(used),
	)

	callCtx, cancel := context.WithTimeout(ctx, s.cfg.Timeout)
	defer cancel()

	text, err := s.lm.ChatWithMessages(callCtx, []llm.Message{{Role: "user", Content: prompt}}, llm.ChatParams{
		Temperature: s.cfg.Temperature,
		MaxTokens:   s.cfg.MaxTokens,
	})
	if err != nil {
		logger.ErrorContext(ctx, "failed to get LLM response", "error", err)
		return Answer{
			Status:        StatusFailed,
			Text:          ErrorPrefix + " Failed to answer question: " + err.Error(),
			ContextChunks: []string{},
			Reason:        err.Error(),
		}
	}

	text = strings.TrimSpace(text)
	if !s.claimsNoInformation(text) {
		return Answer{Status: StatusAnswered, Text: text, ContextChunks: used}
	}

	passage := NoPassageMessage
	if len(chunks) > 0 {
		passage = chunks[0]
	}
	logger.InfoContext(ctx, "model reported no information, appending top passage")
	return Answer{
		Status:        StatusDegraded,
		Text:          text + passageHeader + passage,
		ContextChunks: used,
	}
}

func (s *Synthesizer) claimsNoInformation(text string) bool {
	lower := strings.ToLower(text)
	for _, phrase := range s.cfg.NoInfoPhrases {
		if phrase != "" && strings.Contains(lower, strings.ToLower(phrase)) {
			return true
		}
	}
	return false
}

// IsErrorText reports whether a display string carries the failure sentinel.
func IsErrorText(text string) bool {
	return strings.HasPrefix(strings.TrimSpace(text), ErrorPrefix)
}
