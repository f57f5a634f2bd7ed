package handlers

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"bookbrain/internal/contextutil"
	"bookbrain/internal/indexer"
	"bookbrain/internal/service"
	"bookbrain/internal/storage"
)

// DocumentHandler reads and replaces the stored text of a book.
type DocumentHandler struct {
	library service.LibraryService
}

// NewDocumentHandler creates a new DocumentHandler.
func NewDocumentHandler(library service.LibraryService) *DocumentHandler {
	return &DocumentHandler{library: library}
}

// PutDocumentRequest is the new text of a book.
//
// swagger:model PutDocumentRequest
type PutDocumentRequest struct {
	Text       string `json:"text"`
	SourceType string `json:"source_type,omitempty"`
}

// DocumentResponse is a stored book text.
//
// swagger:model DocumentResponse
type DocumentResponse struct {
	BookID     string `json:"book_id"`
	SourceType string `json:"source_type"`
	Text       string `json:"text,omitempty"`
	UpdatedAt  string `json:"updated_at"`
}

// PutDocumentResponse reports the stored text and the indexing outcome.
//
// swagger:model PutDocumentResponse
type PutDocumentResponse struct {
	Document DocumentResponse     `json:"document"`
	Ingest   indexer.IngestResult `json:"ingest"`
}

// DocumentListResponse lists stored books without their text.
//
// swagger:model DocumentListResponse
type DocumentListResponse struct {
	Documents []DocumentResponse `json:"documents"`
}

func toDocumentResponse(rec storage.DocumentRecord) DocumentResponse {
	resp := DocumentResponse{
		BookID:     rec.BookID,
		SourceType: rec.SourceType,
		Text:       rec.Text,
	}
	if !rec.UpdatedAt.IsZero() {
		resp.UpdatedAt = rec.UpdatedAt.UTC().Format(time.RFC3339)
	}
	return resp
}

// ServeHTTP handles GET and PUT /api/v1/books/{bookID}/document.
func (h *DocumentHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodGet:
		h.get(w, r)
	case http.MethodPut:
		h.put(w, r)
	default:
		writeError(w, http.StatusMethodNotAllowed, "Method not allowed")
	}
}

func (h *DocumentHandler) get(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	rec, err := h.library.GetDocument(ctx, chi.URLParam(r, "bookID"))
	if err != nil {
		handleServiceError(ctx, w, err, "Failed to get document")
		return
	}

	writeJSON(w, http.StatusOK, toDocumentResponse(*rec))
}

func (h *DocumentHandler) put(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	var req PutDocumentRequest
	if err := decodeJSON(w, r, &req); err != nil {
		contextutil.LoggerFromContext(ctx).WarnContext(ctx, "invalid request body", "error", err)
		writeError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	resp, err := h.library.PutDocument(ctx, service.PutDocumentRequest{
		BookID:     chi.URLParam(r, "bookID"),
		SourceType: req.SourceType,
		Text:       req.Text,
	})
	if err != nil {
		handleServiceError(ctx, w, err, "Failed to store document")
		return
	}

	writeJSON(w, http.StatusOK, PutDocumentResponse{
		Document: toDocumentResponse(resp.Document),
		Ingest:   resp.Ingest,
	})
}

// DocumentListHandler lists stored books.
type DocumentListHandler struct {
	library service.LibraryService
}

// NewDocumentListHandler creates a new DocumentListHandler.
func NewDocumentListHandler(library service.LibraryService) *DocumentListHandler {
	return &DocumentListHandler{library: library}
}

// ServeHTTP handles GET /api/v1/books.
func (h *DocumentListHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	records, err := h.library.ListDocuments(ctx)
	if err != nil {
		handleServiceError(ctx, w, err, "Failed to list documents")
		return
	}

	docs := make([]DocumentResponse, 0, len(records))
	for _, rec := range records {
		docs = append(docs, toDocumentResponse(rec))
	}
	writeJSON(w, http.StatusOK, DocumentListResponse{Documents: docs})
}
