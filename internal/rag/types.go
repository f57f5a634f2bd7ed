package rag

import "bookbrain/internal/indexer"

// Status tags the outcome of one Ask call. Callers branch on it rather than on answer text.
type Status string

const (
	// StatusAnswered means the model answered from the assembled context.
	StatusAnswered Status = "answered"
	// StatusDegraded means the model claimed ignorance and the best passage was appended.
	StatusDegraded Status = "degraded"
	// StatusFailed means the model call failed; Answer.Text carries the error sentinel.
	StatusFailed Status = "failed"
	// StatusNoContext means no source text was available.
	StatusNoContext Status = "no_context"
)

// Display texts kept for clients that render the answer string as-is.
const (
	ErrorPrefix      = "[Error]"
	NoContextMessage = ErrorPrefix + " No chapter text found for Q/A."
	NoPassageMessage = "[No context found]"
	passageHeader    = "\n\nMost relevant passage:\n"
)

// Candidate is one ranked passage of a Retrieval Result.
type Candidate struct {
	// ID is the index record id, or a synthetic chunk id in document mode.
	ID string `json:"id,omitempty"`
	// Text is the passage text.
	Text string `json:"text"`
	// Similarity is the cosine similarity to the query.
	Similarity float32 `json:"similarity_score"`
	// Reward is the net feedback signal for this passage.
	Reward int `json:"reward"`
	// AdjustedScore is Similarity shifted by the feedback reward.
	AdjustedScore float32 `json:"adjusted_score"`
	// Meta is the record metadata.
	Meta map[string]any `json:"metadata,omitempty"`
}

// Answer is the tagged result of answer synthesis.
type Answer struct {
	Status Status `json:"status"`
	// Text is the answer shown to the user. For StatusFailed it starts with ErrorPrefix.
	Text string `json:"answer"`
	// ContextChunks are the passages that went into the prompt, in ranked order.
	ContextChunks []string `json:"context_chunks"`
	// Reason is the failure cause for StatusFailed.
	Reason string `json:"reason,omitempty"`
}

// AskRequest is one question about one document.
type AskRequest struct {
	// Document is the current source text. Its BookID scopes index retrieval.
	Document indexer.Document
	// Question is the user's question.
	Question string
	// K overrides the number of passages sent to the model.
	K int
	// Debug returns the full retrieval trace.
	Debug bool
}

// AskResponse is the outcome of Ask.
type AskResponse struct {
	Answer
	Debug *DebugInfo `json:"debug,omitempty"`
}

// DebugInfo is the retrieval trace of one Ask call.
type DebugInfo struct {
	// Mode is the retrieval mode used.
	Mode string `json:"mode"`
	// RetrievedChunks are all candidates after re-ranking, with scores.
	RetrievedChunks []Candidate `json:"retrieved_chunks"`
	// FeedbackApplied reports whether feedback re-ranking ran.
	FeedbackApplied bool `json:"feedback_applied"`
}

// SearchRequest is a feedback-weighted index search over one book.
type SearchRequest struct {
	BookID string
	// Revision restricts results to chunks of one ingestion. Zero matches any.
	Revision int64
	Query    string
	K        int
}
