package handlers

import (
	"errors"
	"io"
	"net/http"

	"github.com/go-chi/chi/v5"

	"bookbrain/internal/contextutil"
	"bookbrain/internal/indexer"
	"bookbrain/internal/service"
)

// StudyHandler generates summaries, reviews and quizzes for a book.
type StudyHandler struct {
	library service.LibraryService
}

// NewStudyHandler creates a new StudyHandler.
func NewStudyHandler(library service.LibraryService) *StudyHandler {
	return &StudyHandler{library: library}
}

// StudyRequest is the optional body of a generation request.
//
// swagger:model StudyRequest
type StudyRequest struct {
	// Questions is the quiz length. Ignored for summaries and reviews.
	Questions int `json:"questions,omitempty"`
}

// ServeHTTP handles POST /api/v1/books/{bookID}/study/{kind}.
// A failed or abandoned generation is still a 200; its status is in the body.
func (h *StudyHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	var req StudyRequest
	if err := decodeJSON(w, r, &req); err != nil && !errors.Is(err, io.EOF) {
		contextutil.LoggerFromContext(ctx).WarnContext(ctx, "invalid request body", "error", err)
		writeError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	resp, err := h.library.Generate(ctx, service.GenerateRequest{
		BookID:    chi.URLParam(r, "bookID"),
		Kind:      chi.URLParam(r, "kind"),
		Questions: req.Questions,
	})
	if err != nil {
		handleServiceError(ctx, w, err, "Failed to generate study material")
		return
	}

	writeJSON(w, http.StatusOK, resp)
}

// VersionsHandler lists stored versions of a book's artifacts.
type VersionsHandler struct {
	library service.LibraryService
}

// NewVersionsHandler creates a new VersionsHandler.
func NewVersionsHandler(library service.LibraryService) *VersionsHandler {
	return &VersionsHandler{library: library}
}

// VersionsResponse lists versions latest first.
//
// swagger:model VersionsResponse
type VersionsResponse struct {
	Versions []indexer.ContentVersion `json:"versions"`
}

// ServeHTTP handles GET /api/v1/books/{bookID}/versions/{type}?chapter=N.
func (h *VersionsHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	var chapter *int
	if r.URL.Query().Has("chapter") {
		n, err := intParam(r, "chapter", 0)
		if err != nil {
			writeError(w, http.StatusBadRequest, err.Error())
			return
		}
		chapter = &n
	}

	versions, err := h.library.Versions(ctx, service.VersionsRequest{
		BookID:  chi.URLParam(r, "bookID"),
		Type:    chi.URLParam(r, "type"),
		Chapter: chapter,
	})
	if err != nil {
		handleServiceError(ctx, w, err, "Failed to list versions")
		return
	}
	if versions == nil {
		versions = []indexer.ContentVersion{}
	}

	writeJSON(w, http.StatusOK, VersionsResponse{Versions: versions})
}
