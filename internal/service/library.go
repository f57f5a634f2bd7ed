package service

//go:generate go run go.uber.org/mock/mockgen@latest -destination=mocks/mock_content_index.go -package=mocks bookbrain/internal/service ContentIndex
//go:generate go run go.uber.org/mock/mockgen@latest -destination=mocks/mock_study_generator.go -package=mocks bookbrain/internal/service StudyGenerator
//go:generate go run go.uber.org/mock/mockgen@latest -destination=mocks/mock_library_service.go -package=mocks -mock_names=LibraryService=MockLibraryService bookbrain/internal/service LibraryService

import (
	"context"
	"errors"
	"strings"

	"bookbrain/internal/contextutil"
	"bookbrain/internal/indexer"
	"bookbrain/internal/storage"
	"bookbrain/internal/study"
)

// ContentIndex stores chapter chunks and versioned study artifacts.
// This interface is defined from the service layer's perspective (consumer-first).
type ContentIndex interface {
	IngestDocument(ctx context.Context, doc indexer.Document, version int) (indexer.IngestResult, error)
	StoreContentVersion(ctx context.Context, cv indexer.ContentVersion) (indexer.ContentVersion, error)
	ContentVersions(ctx context.Context, bookID, contentType string, chapter *int) ([]indexer.ContentVersion, error)
	NextVersion(ctx context.Context, bookID, contentType string, chapter int) (int, error)
}

// StudyGenerator produces study artifacts from chapter text.
type StudyGenerator interface {
	Summary(ctx context.Context, text string) (study.Result, error)
	Review(ctx context.Context, text string) (study.Result, error)
	Quiz(ctx context.Context, text string, n int) (study.Result, error)
}

// PutDocumentRequest replaces the stored text of a book.
type PutDocumentRequest struct {
	BookID     string
	SourceType string
	Text       string
}

// PutDocumentResponse reports the stored document and its indexing outcome.
type PutDocumentResponse struct {
	Document storage.DocumentRecord `json:"document"`
	Ingest   indexer.IngestResult   `json:"ingest"`
}

// GenerateRequest asks for one study artifact of a book.
type GenerateRequest struct {
	BookID string
	// Kind is one of study.KindSummary, study.KindReview or study.KindQuiz.
	Kind string
	// Questions is the quiz length. Zero uses the configured default.
	Questions int
}

// GenerateResponse is a generated artifact and, when it was stored, its version.
type GenerateResponse struct {
	Result  study.Result            `json:"result"`
	Version *indexer.ContentVersion `json:"version,omitempty"`
}

// VersionsRequest lists stored versions of one artifact type.
type VersionsRequest struct {
	BookID string
	Type   string
	// Chapter restricts the listing to one chapter. Nil lists all.
	Chapter *int
}

// LibraryService manages book text, its index and its study artifacts.
type LibraryService interface {
	// PutDocument stores the text of a book and indexes its chunks.
	PutDocument(ctx context.Context, req PutDocumentRequest) (PutDocumentResponse, error)
	// GetDocument returns the stored text of a book.
	GetDocument(ctx context.Context, bookID string) (*storage.DocumentRecord, error)
	// ListDocuments returns stored books without their text.
	ListDocuments(ctx context.Context) ([]storage.DocumentRecord, error)
	// Generate produces a study artifact and stores it as the next version.
	Generate(ctx context.Context, req GenerateRequest) (GenerateResponse, error)
	// Versions lists stored versions of an artifact, latest first.
	Versions(ctx context.Context, req VersionsRequest) ([]indexer.ContentVersion, error)
}

type libraryService struct {
	documents storage.DocumentStore
	index     ContentIndex
	generator StudyGenerator
}

// NewLibraryService creates a new LibraryService.
func NewLibraryService(documents storage.DocumentStore, index ContentIndex, generator StudyGenerator) LibraryService {
	return &libraryService{
		documents: documents,
		index:     index,
		generator: generator,
	}
}

// chapterVersion is the index version chapter chunks are written under.
// Re-ingesting a book overwrites its chunks by id.
const chapterVersion = 1

func (s *libraryService) PutDocument(ctx context.Context, req PutDocumentRequest) (PutDocumentResponse, error) {
	logger := contextutil.LoggerFromContext(ctx)

	if strings.TrimSpace(req.BookID) == "" {
		return PutDocumentResponse{}, &ValidationError{Field: "book_id", Message: "cannot be empty"}
	}
	if strings.TrimSpace(req.Text) == "" {
		return PutDocumentResponse{}, &ValidationError{Field: "text", Message: "cannot be empty"}
	}
	sourceType := req.SourceType
	if sourceType == "" {
		sourceType = indexer.TypeChapter
	}

	record := &storage.DocumentRecord{
		BookID:     req.BookID,
		SourceType: sourceType,
		Text:       req.Text,
	}
	if err := s.documents.Upsert(ctx, record); err != nil {
		logger.ErrorContext(ctx, "failed to store document", "book_id", req.BookID, "error", err)
		return PutDocumentResponse{}, WrapError(err, "failed to store document")
	}

	result, err := s.index.IngestDocument(ctx, indexer.Document{
		BookID:     record.BookID,
		SourceType: record.SourceType,
		Text:       record.Text,
		Revision:   revisionOf(record),
	}, chapterVersion)
	if err != nil {
		logger.ErrorContext(ctx, "failed to index document", "book_id", req.BookID, "error", err)
		return PutDocumentResponse{Document: *record}, externalError(err, "failed to index document")
	}

	logger.InfoContext(ctx, "document stored", "book_id", req.BookID, "chunks", result.Chunks)
	return PutDocumentResponse{Document: *record, Ingest: result}, nil
}

func (s *libraryService) GetDocument(ctx context.Context, bookID string) (*storage.DocumentRecord, error) {
	if strings.TrimSpace(bookID) == "" {
		return nil, &ValidationError{Field: "book_id", Message: "cannot be empty"}
	}

	record, err := s.documents.GetByBookID(ctx, bookID)
	if errors.Is(err, storage.ErrNotFound) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, WrapError(err, "failed to get document")
	}
	return record, nil
}

func (s *libraryService) ListDocuments(ctx context.Context) ([]storage.DocumentRecord, error) {
	records, err := s.documents.List(ctx)
	if err != nil {
		return nil, WrapError(err, "failed to list documents")
	}
	return records, nil
}

func (s *libraryService) Generate(ctx context.Context, req GenerateRequest) (GenerateResponse, error) {
	logger := contextutil.LoggerFromContext(ctx)

	if strings.TrimSpace(req.BookID) == "" {
		return GenerateResponse{}, &ValidationError{Field: "book_id", Message: "cannot be empty"}
	}
	if req.Questions < 0 {
		return GenerateResponse{}, &ValidationError{Field: "questions", Message: "must not be negative"}
	}
	switch req.Kind {
	case study.KindSummary, study.KindReview, study.KindQuiz:
	default:
		return GenerateResponse{}, &ValidationError{Field: "kind", Message: "must be summary, review or mcqs"}
	}

	record, err := s.documents.GetByBookID(ctx, req.BookID)
	if errors.Is(err, storage.ErrNotFound) {
		return GenerateResponse{}, ErrNoSourceText
	}
	if err != nil {
		return GenerateResponse{}, WrapError(err, "failed to load document")
	}

	var result study.Result
	switch req.Kind {
	case study.KindSummary:
		result, err = s.generator.Summary(ctx, record.Text)
	case study.KindReview:
		result, err = s.generator.Review(ctx, record.Text)
	default:
		result, err = s.generator.Quiz(ctx, record.Text, req.Questions)
	}
	if errors.Is(err, study.ErrNoText) {
		return GenerateResponse{}, ErrNoSourceText
	}
	if err != nil {
		return GenerateResponse{}, WrapError(err, "failed to generate "+req.Kind)
	}

	resp := GenerateResponse{Result: result}
	if result.Status != study.StatusGenerated {
		logger.WarnContext(ctx, "study artifact not generated", "book_id", req.BookID, "kind", req.Kind, "status", result.Status)
		return resp, nil
	}

	// A generated artifact is still returned when storing it fails.
	version, err := s.store(ctx, req.BookID, req.Kind, result.Text)
	if err != nil {
		logger.WarnContext(ctx, "failed to store study artifact", "book_id", req.BookID, "kind", req.Kind, "error", err)
		return resp, nil
	}
	resp.Version = &version
	return resp, nil
}

func (s *libraryService) store(ctx context.Context, bookID, kind, content string) (indexer.ContentVersion, error) {
	next, err := s.index.NextVersion(ctx, bookID, kind, 0)
	if err != nil {
		return indexer.ContentVersion{}, err
	}
	return s.index.StoreContentVersion(ctx, indexer.ContentVersion{
		BookID:  bookID,
		Type:    kind,
		Version: next,
		Content: content,
	})
}

func (s *libraryService) Versions(ctx context.Context, req VersionsRequest) ([]indexer.ContentVersion, error) {
	if strings.TrimSpace(req.BookID) == "" {
		return nil, &ValidationError{Field: "book_id", Message: "cannot be empty"}
	}
	switch req.Type {
	case indexer.TypeChapter, study.KindSummary, study.KindReview, study.KindQuiz:
	default:
		return nil, &ValidationError{Field: "type", Message: "must be chapter, summary, review or mcqs"}
	}

	versions, err := s.index.ContentVersions(ctx, req.BookID, req.Type, req.Chapter)
	if err != nil {
		return nil, externalError(err, "failed to list versions")
	}
	return versions, nil
}

// revisionOf is the index revision of a stored document: its last write in unix
// seconds, or zero when unknown.
func revisionOf(record *storage.DocumentRecord) int64 {
	if record.UpdatedAt.IsZero() {
		return 0
	}
	return record.UpdatedAt.Unix()
}
