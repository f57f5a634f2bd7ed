package vectorstore

//go:generate go run go.uber.org/mock/mockgen@latest -destination=mocks/mock_vector_store.go -package=mocks bookbrain/internal/vectorstore VectorStore

import "context"

// Payload keys written alongside every record.
const (
	KeyRecordID       = "record_id"
	KeyText           = "text"
	KeyBookID         = "book_id"
	KeyType           = "type"
	KeyVersion        = "version"
	KeyChapter        = "chapter"
	KeyTimestamp      = "timestamp"
	KeyEmbeddingModel = "embedding_model"
)

// Point is a record stored in the index: an id, its embedding, the source text and metadata.
type Point struct {
	ID   string
	Vec  []float32
	Text string
	Meta map[string]any
}

// SearchResult is a record returned by Search or Get. Score is zero for Get.
type SearchResult struct {
	PointID string
	Score   float32
	Text    string
	Meta    map[string]any
}

// Filter restricts results to records whose metadata equals every given value.
type Filter map[string]any

// VectorStore is the Embedding Index contract.
type VectorStore interface {
	// Upsert inserts or replaces records by id.
	Upsert(ctx context.Context, collection string, points []Point) error

	// Search returns up to k records ordered from most to least similar to query.
	Search(ctx context.Context, collection string, query []float32, k int, filter Filter) ([]SearchResult, error)

	// Get returns all records matching filter, in no particular order.
	Get(ctx context.Context, collection string, filter Filter) ([]SearchResult, error)
}
