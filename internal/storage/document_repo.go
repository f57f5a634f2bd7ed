package storage

//go:generate go run go.uber.org/mock/mockgen@latest -destination=mocks/mock_document_store.go -package=mocks bookbrain/internal/storage DocumentStore

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
)

var (
	// ErrNotFound is returned when a record is not found.
	ErrNotFound = errors.New("record not found")
)

// DocumentRecord is the current source text of a book.
type DocumentRecord struct {
	ID         string
	BookID     string
	SourceType string
	Text       string
	UpdatedAt  time.Time
}

// DocumentStore defines the interface for document storage operations.
type DocumentStore interface {
	// Upsert stores doc, replacing any previous document for the same book.
	Upsert(ctx context.Context, doc *DocumentRecord) error
	// GetByBookID returns ErrNotFound if the book has no document.
	GetByBookID(ctx context.Context, bookID string) (*DocumentRecord, error)
	// List returns all documents ordered by book id, without their text.
	List(ctx context.Context) ([]DocumentRecord, error)
}

var _ DocumentStore = (*DocumentRepo)(nil)

// DocumentRepo implements DocumentStore on SQLite.
type DocumentRepo struct {
	db  *sqlx.DB
	now func() time.Time
}

// NewDocumentRepo creates a new DocumentRepo.
func NewDocumentRepo(db *sql.DB) *DocumentRepo {
	return &DocumentRepo{db: sqlx.NewDb(db, driverName), now: time.Now}
}

// Upsert inserts doc or replaces the stored text of the same book wholesale.
// The record id is kept across replacements; doc.ID and doc.UpdatedAt are filled in.
func (r *DocumentRepo) Upsert(ctx context.Context, doc *DocumentRecord) error {
	if doc.ID == "" {
		doc.ID = uuid.NewString()
	}
	doc.UpdatedAt = r.now().UTC()

	var id string
	err := r.db.QueryRowContext(ctx,
		`INSERT INTO documents (id, book_id, source_type, text, updated_at) VALUES (?, ?, ?, ?, ?)
		ON CONFLICT(book_id) DO UPDATE SET source_type = excluded.source_type, text = excluded.text, updated_at = excluded.updated_at
		RETURNING id`,
		doc.ID, doc.BookID, doc.SourceType, doc.Text, doc.UpdatedAt,
	).Scan(&id)
	if err != nil {
		return fmt.Errorf("failed to upsert document: %w", err)
	}

	doc.ID = id
	return nil
}

// GetByBookID returns the document of a book. Returns ErrNotFound if not found.
func (r *DocumentRepo) GetByBookID(ctx context.Context, bookID string) (*DocumentRecord, error) {
	var doc DocumentRecord
	var updatedAt string

	err := r.db.QueryRowContext(ctx,
		"SELECT id, book_id, source_type, text, updated_at FROM documents WHERE book_id = ?",
		bookID,
	).Scan(&doc.ID, &doc.BookID, &doc.SourceType, &doc.Text, &updatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to query document: %w", err)
	}

	doc.UpdatedAt, err = parseTimestamp(updatedAt)
	if err != nil {
		return nil, err
	}
	return &doc, nil
}

// List returns every stored document without text.
func (r *DocumentRepo) List(ctx context.Context) ([]DocumentRecord, error) {
	var rows []struct {
		ID         string `db:"id"`
		BookID     string `db:"book_id"`
		SourceType string `db:"source_type"`
		UpdatedAt  string `db:"updated_at"`
	}
	if err := r.db.SelectContext(ctx, &rows, "SELECT id, book_id, source_type, updated_at FROM documents ORDER BY book_id"); err != nil {
		return nil, fmt.Errorf("failed to query documents: %w", err)
	}

	docs := make([]DocumentRecord, 0, len(rows))
	for _, row := range rows {
		updatedAt, err := parseTimestamp(row.UpdatedAt)
		if err != nil {
			return nil, err
		}
		docs = append(docs, DocumentRecord{ID: row.ID, BookID: row.BookID, SourceType: row.SourceType, UpdatedAt: updatedAt})
	}
	return docs, nil
}
