package config

import (
	"fmt"
	"os"
	"strings"

	"gopkg.in/yaml.v3"
)

// Prompts holds the prompt templates sent to the language model.
// Templates use {{context}}, {{question}}, {{text}} and {{count}} placeholders.
type Prompts struct {
	Answer        string   `yaml:"answer"`
	Summary       string   `yaml:"summary"`
	Review        string   `yaml:"review"`
	Quiz          string   `yaml:"quiz"`
	NoInfoPhrases []string `yaml:"no_info_phrases"`
}

// DefaultPrompts returns the built-in prompt set.
func DefaultPrompts() Prompts {
	return Prompts{
		Answer: "Use the following context to answer the question in detail.\n\n" +
			"Context:\n{{context}}\n\nQuestion: {{question}}\nAnswer:",
		Summary: "Please provide a comprehensive, detailed, and multi-paragraph summary of the following text. " +
			"The summary should cover all key points, main ideas, and important details. Write at least 3 paragraphs.\n\n" +
			"{{text}}\n\nLong, Detailed Summary:",
		Review: "Write a thorough, multi-paragraph, critical review of the following content. " +
			"Discuss its strengths, weaknesses, style, and impact. Write at least 3 paragraphs.\n\n" +
			"{{text}}\n\nLong, Detailed Review:",
		Quiz: "Generate {{count}} multiple-choice questions (MCQs) from the following text. " +
			"For each question, provide 4 options (A, B, C, D), indicate the correct answer, and provide a brief explanation.\n" +
			"Use exactly this format for every question:\n" +
			"1. Question text\nA. option\nB. option\nC. option\nD. option\nCorrect answer: A\nExplanation: why\n\n" +
			"Text:\n{{text}}\n",
		NoInfoPhrases: []string{
			"no information", "not found", "no details", "no context",
			"could not find", "couldn't find",
		},
	}
}

// LoadPrompts reads a YAML prompts file. Fields left empty keep their defaults.
func LoadPrompts(path string) (Prompts, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return Prompts{}, fmt.Errorf("failed to read prompts file: %w", err)
	}

	var loaded Prompts
	if err := yaml.Unmarshal(raw, &loaded); err != nil {
		return Prompts{}, fmt.Errorf("failed to parse prompts file: %w", err)
	}

	out := DefaultPrompts()
	if strings.TrimSpace(loaded.Answer) != "" {
		out.Answer = loaded.Answer
	}
	if strings.TrimSpace(loaded.Summary) != "" {
		out.Summary = loaded.Summary
	}
	if strings.TrimSpace(loaded.Review) != "" {
		out.Review = loaded.Review
	}
	if strings.TrimSpace(loaded.Quiz) != "" {
		out.Quiz = loaded.Quiz
	}
	if len(loaded.NoInfoPhrases) > 0 {
		phrases := make([]string, 0, len(loaded.NoInfoPhrases))
		for _, p := range loaded.NoInfoPhrases {
			if p = strings.ToLower(strings.TrimSpace(p)); p != "" {
				phrases = append(phrases, p)
			}
		}
		out.NoInfoPhrases = phrases
	}

	if !strings.Contains(out.Answer, "{{question}}") {
		return Prompts{}, fmt.Errorf("answer prompt must contain the {{question}} placeholder")
	}

	return out, nil
}

// Render substitutes placeholders in a prompt template.
func Render(template string, values map[string]string) string {
	pairs := make([]string, 0, len(values)*2)
	for k, v := range values {
		pairs = append(pairs, "{{"+k+"}}", v)
	}
	return strings.NewReplacer(pairs...).Replace(template)
}
