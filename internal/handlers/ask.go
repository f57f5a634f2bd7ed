package handlers

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"bookbrain/internal/contextutil"
	"bookbrain/internal/rag"
	"bookbrain/internal/service"
)

// maxK bounds user-provided passage counts.
const maxK = 20

// AskHandler handles HTTP requests for questions about a book.
type AskHandler struct {
	qa service.QAService
}

// NewAskHandler creates a new AskHandler.
func NewAskHandler(qa service.QAService) *AskHandler {
	return &AskHandler{qa: qa}
}

// AskRequest represents the HTTP request payload for a question.
//
// swagger:model AskRequest
type AskRequest struct {
	Question string `json:"question"`
	// K overrides the number of passages sent to the model. Zero uses the server default.
	K int `json:"k,omitempty"`
}

// AskResponse represents the HTTP response payload for a question.
//
// swagger:model AskResponse
type AskResponse struct {
	// Status is one of answered, degraded, failed or no_context.
	Status rag.Status `json:"status"`
	// Answer is the text shown to the user.
	Answer string `json:"answer"`
	// ContextChunks are the passages that went into the prompt.
	ContextChunks []string `json:"context_chunks"`
	// Reason is the failure cause when status is failed.
	Reason string `json:"reason,omitempty"`
	// Debug is present when ?debug=true was passed.
	Debug *rag.DebugInfo `json:"debug,omitempty"`
}

// ServeHTTP handles HTTP requests for questions.
//
// swagger:route POST /api/v1/books/{bookID}/ask askQuestion
//
// # Ask a question about a book
//
// Answers from the book's stored text. Model and index failures are reported
// in the body's status field with a 200 response.
//
// responses:
//
//	'200':
//	  description: Answer with its status
//	  schema:
//	    "$ref": "#/definitions/AskResponse"
//	'400':
//	  description: Bad request
//	  schema:
//	    "$ref": "#/definitions/ErrorResponse"
func (h *AskHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	logger := contextutil.LoggerFromContext(ctx)

	var req AskRequest
	if err := decodeJSON(w, r, &req); err != nil {
		logger.WarnContext(ctx, "invalid request body", "error", err)
		writeError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	if req.K < 0 {
		req.K = 0
	}
	if req.K > maxK {
		req.K = maxK
	}

	resp, err := h.qa.Ask(ctx, service.AskRequest{
		BookID:   chi.URLParam(r, "bookID"),
		Question: req.Question,
		K:        req.K,
		Debug:    debugParam(r),
	})
	if err != nil {
		handleServiceError(ctx, w, err, "Failed to answer question")
		return
	}

	writeJSON(w, http.StatusOK, AskResponse{
		Status:        resp.Status,
		Answer:        resp.Text,
		ContextChunks: resp.ContextChunks,
		Reason:        resp.Reason,
		Debug:         resp.Debug,
	})
}

// SearchHandler handles passage searches over a book's index.
type SearchHandler struct {
	qa service.QAService
}

// NewSearchHandler creates a new SearchHandler.
func NewSearchHandler(qa service.QAService) *SearchHandler {
	return &SearchHandler{qa: qa}
}

// SearchResponse lists ranked passages.
//
// swagger:model SearchResponse
type SearchResponse struct {
	Results []rag.Candidate `json:"results"`
}

// ServeHTTP handles GET /api/v1/books/{bookID}/search?q=...&k=...
func (h *SearchHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	k, err := intParam(r, "k", 0)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	k = min(max(k, 0), maxK)

	results, err := h.qa.Search(ctx, service.SearchRequest{
		BookID: chi.URLParam(r, "bookID"),
		Query:  r.URL.Query().Get("q"),
		K:      k,
	})
	if err != nil {
		handleServiceError(ctx, w, err, "Failed to search")
		return
	}
	if results == nil {
		results = []rag.Candidate{}
	}

	writeJSON(w, http.StatusOK, SearchResponse{Results: results})
}
