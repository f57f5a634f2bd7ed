package handlers

import (
	"net/http"

	"bookbrain/internal/contextutil"
	"bookbrain/internal/feedback"
	"bookbrain/internal/service"
)

// FeedbackHandler records and lists answer feedback.
type FeedbackHandler struct {
	qa service.QAService
}

// NewFeedbackHandler creates a new FeedbackHandler.
func NewFeedbackHandler(qa service.QAService) *FeedbackHandler {
	return &FeedbackHandler{qa: qa}
}

// FeedbackRequest rates one answer. Either label ("Yes"/"No") or is_correct must be set.
//
// swagger:model FeedbackRequest
type FeedbackRequest struct {
	Question  string `json:"question"`
	Answer    string `json:"answer"`
	Label     string `json:"label,omitempty"`
	IsCorrect *bool  `json:"is_correct,omitempty"`
}

// FeedbackListResponse is the full feedback log.
//
// swagger:model FeedbackListResponse
type FeedbackListResponse struct {
	Feedback []feedback.Feedback `json:"feedback"`
}

// ServeHTTP handles GET and POST /api/v1/feedback.
func (h *FeedbackHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodGet:
		h.list(w, r)
	case http.MethodPost:
		h.record(w, r)
	default:
		contextutil.LoggerFromContext(r.Context()).WarnContext(r.Context(), "method not allowed", "method", r.Method)
		writeError(w, http.StatusMethodNotAllowed, "Method not allowed")
	}
}

func (h *FeedbackHandler) record(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	var req FeedbackRequest
	if err := decodeJSON(w, r, &req); err != nil {
		contextutil.LoggerFromContext(ctx).WarnContext(ctx, "invalid request body", "error", err)
		writeError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	fb, err := h.qa.RecordFeedback(ctx, service.FeedbackRequest{
		Question:  req.Question,
		Answer:    req.Answer,
		Label:     req.Label,
		IsCorrect: req.IsCorrect,
	})
	if err != nil {
		handleServiceError(ctx, w, err, "Failed to record feedback")
		return
	}

	writeJSON(w, http.StatusCreated, fb)
}

func (h *FeedbackHandler) list(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	entries, err := h.qa.ListFeedback(ctx)
	if err != nil {
		handleServiceError(ctx, w, err, "Failed to list feedback")
		return
	}
	if entries == nil {
		entries = []feedback.Feedback{}
	}

	writeJSON(w, http.StatusOK, FeedbackListResponse{Feedback: entries})
}
