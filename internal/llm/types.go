package llm

import "fmt"

// Message represents a single message in a chat conversation.
type Message struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

// ChatParams holds parameters for chat completion requests.
type ChatParams struct {
	// Model overrides the client's default model when set.
	Model string

	// MaxTokens caps generated tokens. Zero leaves the server default.
	MaxTokens int

	// Temperature controls randomness. Zero is sent as zero.
	Temperature float32
}

// HTTPStatusError is returned when the server answers with a non-200 status.
type HTTPStatusError struct {
	StatusCode int
	Body       string
}

func (e *HTTPStatusError) Error() string {
	return fmt.Sprintf("bad status %d: %s", e.StatusCode, e.Body)
}

// Retryable reports whether the status suggests a transient failure.
func (e *HTTPStatusError) Retryable() bool {
	return e.StatusCode == 429 || e.StatusCode >= 500
}
