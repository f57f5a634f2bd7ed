package handlers

import (
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"go.uber.org/mock/gomock"

	"bookbrain/internal/indexer"
	"bookbrain/internal/service"
	"bookbrain/internal/service/mocks"
	"bookbrain/internal/storage"
)

func TestDocumentHandler_Get(t *testing.T) {
	ctrl := gomock.NewController(t)
	lib := mocks.NewMockLibraryService(ctrl)
	h := NewDocumentHandler(lib)

	updated := time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC)
	lib.EXPECT().GetDocument(gomock.Any(), "b1").
		Return(&storage.DocumentRecord{BookID: "b1", SourceType: "chapter", Text: "Paris.", UpdatedAt: updated}, nil)

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, withURLParams(httptest.NewRequest(http.MethodGet, "/", nil), "bookID", "b1"))
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d", rec.Code)
	}
	resp := decodeBody[DocumentResponse](t, rec.Body)
	if resp.Text != "Paris." || resp.UpdatedAt != "2026-01-02T03:04:05Z" {
		t.Errorf("response = %+v", resp)
	}

	lib.EXPECT().GetDocument(gomock.Any(), "missing").Return(nil, service.ErrNotFound)
	rec = httptest.NewRecorder()
	h.ServeHTTP(rec, withURLParams(httptest.NewRequest(http.MethodGet, "/", nil), "bookID", "missing"))
	if rec.Code != http.StatusNotFound {
		t.Errorf("missing status = %d, want 404", rec.Code)
	}
}

func TestDocumentHandler_Put(t *testing.T) {
	tests := []struct {
		name       string
		body       string
		setup      func(lib *mocks.MockLibraryService)
		wantStatus int
	}{
		{
			name: "stored and indexed",
			body: `{"text":"The capital of France is Paris."}`,
			setup: func(lib *mocks.MockLibraryService) {
				lib.EXPECT().PutDocument(gomock.Any(), service.PutDocumentRequest{BookID: "b1", Text: "The capital of France is Paris."}).
					Return(service.PutDocumentResponse{
						Document: storage.DocumentRecord{BookID: "b1", SourceType: "chapter"},
						Ingest:   indexer.IngestResult{BookID: "b1", Version: 1, Chunks: 1},
					}, nil)
			},
			wantStatus: http.StatusOK,
		},
		{
			name: "index unavailable",
			body: `{"text":"x"}`,
			setup: func(lib *mocks.MockLibraryService) {
				lib.EXPECT().PutDocument(gomock.Any(), gomock.Any()).
					Return(service.PutDocumentResponse{}, errors.Join(service.ErrExternalService, errors.New("qdrant down")))
			},
			wantStatus: http.StatusBadGateway,
		},
		{
			name:       "invalid body",
			body:       `{"text":1}`,
			setup:      func(*mocks.MockLibraryService) {},
			wantStatus: http.StatusBadRequest,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ctrl := gomock.NewController(t)
			lib := mocks.NewMockLibraryService(ctrl)
			tt.setup(lib)

			rec := httptest.NewRecorder()
			req := withURLParams(httptest.NewRequest(http.MethodPut, "/", jsonBody(tt.body)), "bookID", "b1")
			NewDocumentHandler(lib).ServeHTTP(rec, req)

			if rec.Code != tt.wantStatus {
				t.Fatalf("status = %d, want %d: %s", rec.Code, tt.wantStatus, rec.Body.String())
			}
			if tt.wantStatus == http.StatusOK {
				resp := decodeBody[PutDocumentResponse](t, rec.Body)
				if resp.Ingest.Chunks != 1 {
					t.Errorf("ingest = %+v", resp.Ingest)
				}
			}
		})
	}
}

func TestDocumentListHandler(t *testing.T) {
	ctrl := gomock.NewController(t)
	lib := mocks.NewMockLibraryService(ctrl)
	lib.EXPECT().ListDocuments(gomock.Any()).Return([]storage.DocumentRecord{{BookID: "a"}, {BookID: "b"}}, nil)

	rec := httptest.NewRecorder()
	NewDocumentListHandler(lib).ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/v1/books", nil))

	resp := decodeBody[DocumentListResponse](t, rec.Body)
	if len(resp.Documents) != 2 || resp.Documents[1].BookID != "b" {
		t.Errorf("documents = %+v", resp.Documents)
	}
}
