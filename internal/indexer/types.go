package indexer

import "fmt"

// Content types stored in the index.
const (
	TypeChapter = "chapter"
	TypeSummary = "summary"
	TypeReview  = "review"
	TypeMCQs    = "mcqs"
)

// Document is the source text of one book section, such as a chapter.
type Document struct {
	BookID     string
	SourceType string
	Text       string
	// Revision stamps every chunk of one ingestion as its timestamp (unix seconds).
	// Zero uses the ingestion time.
	Revision int64
}

// Chunk is a contiguous window of a document's text.
type Chunk struct {
	DocumentID string
	Index      int
	Text       string
}

// ContentVersion is one stored version of a text artifact for a book.
type ContentVersion struct {
	ID        string `json:"id"`
	BookID    string `json:"book_id"`
	Type      string `json:"type"`
	Chapter   int    `json:"chapter"`
	Version   int    `json:"version"`
	Timestamp int64  `json:"timestamp"`
	Content   string `json:"content"`
}

// IngestResult summarizes an ingestion run.
type IngestResult struct {
	BookID       string     `json:"book_id"`
	Version      int        `json:"version"`
	Chunks       int        `json:"chunks"`
	IndexVersion string     `json:"index_version"`
	Stats        ChunkStats `json:"chunk_stats"`
}

// RecordID builds the deterministic index id {book_id}_{content_type}_v{version}_ch_{index}.
func RecordID(bookID, contentType string, version, index int) string {
	return fmt.Sprintf("%s_%s_v%d_ch_%d", bookID, contentType, version, index)
}
