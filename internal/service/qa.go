package service

//go:generate go run go.uber.org/mock/mockgen@latest -destination=mocks/mock_qa_service.go -package=mocks -mock_names=QAService=MockQAService bookbrain/internal/service QAService

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"

	"bookbrain/internal/contextutil"
	"bookbrain/internal/feedback"
	"bookbrain/internal/indexer"
	"bookbrain/internal/rag"
	"bookbrain/internal/storage"
)

// AskRequest is a question about one stored book.
type AskRequest struct {
	BookID   string
	Question string
	K        int
	Debug    bool
}

// SearchRequest is a passage search over one stored book.
type SearchRequest struct {
	BookID string
	Query  string
	K      int
}

// FeedbackRequest rates a previously given answer.
// Label ("Yes"/"No") takes precedence over IsCorrect when both are set.
type FeedbackRequest struct {
	Question  string
	Answer    string
	Label     string
	IsCorrect *bool
}

// QAService answers questions about stored books and collects answer feedback.
type QAService interface {
	// Ask answers a question from the book's text. A book with no stored text
	// yields a no_context answer, not an error.
	Ask(ctx context.Context, req AskRequest) (rag.AskResponse, error)
	// Search returns the best matching indexed passages of a book.
	Search(ctx context.Context, req SearchRequest) ([]rag.Candidate, error)
	// RecordFeedback validates and appends one feedback entry.
	RecordFeedback(ctx context.Context, req FeedbackRequest) (feedback.Feedback, error)
	// ListFeedback returns the feedback log in append order.
	ListFeedback(ctx context.Context) ([]feedback.Feedback, error)
}

type qaService struct {
	engine    rag.Engine
	documents storage.DocumentStore
	feedback  feedback.Store
}

// NewQAService creates a new QAService.
func NewQAService(engine rag.Engine, documents storage.DocumentStore, fb feedback.Store) QAService {
	return &qaService{
		engine:    engine,
		documents: documents,
		feedback:  fb,
	}
}

func (s *qaService) Ask(ctx context.Context, req AskRequest) (rag.AskResponse, error) {
	logger := contextutil.LoggerFromContext(ctx)

	if strings.TrimSpace(req.BookID) == "" {
		return rag.AskResponse{}, &ValidationError{Field: "book_id", Message: "cannot be empty"}
	}
	if strings.TrimSpace(req.Question) == "" {
		logger.WarnContext(ctx, "empty question in ask request")
		return rag.AskResponse{}, &ValidationError{Field: "question", Message: "cannot be empty"}
	}
	if req.K < 0 {
		return rag.AskResponse{}, &ValidationError{Field: "k", Message: "must not be negative"}
	}

	doc := indexer.Document{BookID: req.BookID, SourceType: indexer.TypeChapter}
	record, err := s.documents.GetByBookID(ctx, req.BookID)
	switch {
	case errors.Is(err, storage.ErrNotFound):
		logger.InfoContext(ctx, "no stored text for book", "book_id", req.BookID)
	case err != nil:
		logger.ErrorContext(ctx, "failed to load document", "book_id", req.BookID, "error", err)
		return rag.AskResponse{}, WrapError(err, "failed to load document")
	default:
		doc.SourceType = record.SourceType
		doc.Text = record.Text
		doc.Revision = revisionOf(record)
	}

	resp, err := s.engine.Ask(ctx, rag.AskRequest{
		Document: doc,
		Question: req.Question,
		K:        req.K,
		Debug:    req.Debug,
	})
	if err != nil {
		return rag.AskResponse{}, WrapError(err, "failed to answer question")
	}

	logger.InfoContext(ctx, "question answered", "book_id", req.BookID, "status", resp.Status)
	return resp, nil
}

func (s *qaService) Search(ctx context.Context, req SearchRequest) ([]rag.Candidate, error) {
	if strings.TrimSpace(req.BookID) == "" {
		return nil, &ValidationError{Field: "book_id", Message: "cannot be empty"}
	}
	if strings.TrimSpace(req.Query) == "" {
		return nil, &ValidationError{Field: "query", Message: "cannot be empty"}
	}
	if req.K < 0 {
		return nil, &ValidationError{Field: "k", Message: "must not be negative"}
	}

	search := rag.SearchRequest{BookID: req.BookID, Query: req.Query, K: req.K}
	record, err := s.documents.GetByBookID(ctx, req.BookID)
	switch {
	case errors.Is(err, storage.ErrNotFound):
	case err != nil:
		return nil, WrapError(err, "failed to load document")
	default:
		search.Revision = revisionOf(record)
	}

	results, err := s.engine.Search(ctx, search)
	if err != nil {
		return nil, WrapError(err, "failed to search")
	}
	return results, nil
}

func (s *qaService) RecordFeedback(ctx context.Context, req FeedbackRequest) (feedback.Feedback, error) {
	logger := contextutil.LoggerFromContext(ctx)

	fb := feedback.Feedback{
		Question: strings.TrimSpace(req.Question),
		Answer:   strings.TrimSpace(req.Answer),
		RawLabel: req.Label,
	}
	if fb.Question == "" {
		return feedback.Feedback{}, &ValidationError{Field: "question", Message: "cannot be empty"}
	}
	if fb.Answer == "" {
		return feedback.Feedback{}, &ValidationError{Field: "answer", Message: "cannot be empty"}
	}
	if rag.IsErrorText(fb.Answer) {
		return feedback.Feedback{}, &ValidationError{Field: "answer", Message: "error results cannot be rated"}
	}

	switch {
	case strings.TrimSpace(req.Label) != "":
		correct, err := feedback.ParseLabel(req.Label)
		if err != nil {
			return feedback.Feedback{}, &ValidationError{Field: "label", Message: "must be Yes or No"}
		}
		fb.IsCorrect = correct
	case req.IsCorrect != nil:
		fb.IsCorrect = *req.IsCorrect
		fb.RawLabel = fb.Label()
	default:
		return feedback.Feedback{}, &ValidationError{Field: "label", Message: "cannot be empty"}
	}

	fb.ID = uuid.NewString()
	fb.CreatedAt = time.Now().UTC()
	if err := s.feedback.Record(ctx, fb); err != nil {
		logger.ErrorContext(ctx, "failed to record feedback", "error", err)
		return feedback.Feedback{}, WrapError(err, "failed to record feedback")
	}

	logger.InfoContext(ctx, "feedback recorded", "is_correct", fb.IsCorrect)
	return fb, nil
}

func (s *qaService) ListFeedback(ctx context.Context) ([]feedback.Feedback, error) {
	entries, err := s.feedback.All(ctx)
	if err != nil {
		return nil, WrapError(err, "failed to list feedback")
	}
	return entries, nil
}
