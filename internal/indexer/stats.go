package indexer

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"math"
	"sort"
	"unicode/utf8"
)

// ChunkerVersion identifies the chunking scheme. Bump it when windowing changes.
const ChunkerVersion = "fixed-window-v1"

// ChunkStats describes the character lengths of the chunks produced by one ingestion.
type ChunkStats struct {
	Min  int     `json:"min"`
	Max  int     `json:"max"`
	Mean float64 `json:"mean"`
	P95  int     `json:"p95"`
}

// ComputeChunkStats returns min, max, mean and p95 character counts.
func ComputeChunkStats(chunks []string) ChunkStats {
	if len(chunks) == 0 {
		return ChunkStats{}
	}

	lengths := make([]int, len(chunks))
	sum := 0
	for i, c := range chunks {
		lengths[i] = utf8.RuneCountInString(c)
		sum += lengths[i]
	}
	sort.Ints(lengths)

	p95Index := int(math.Ceil(float64(len(lengths))*0.95)) - 1
	p95Index = max(0, min(p95Index, len(lengths)-1))

	mean := float64(sum) / float64(len(lengths))
	return ChunkStats{
		Min:  lengths[0],
		Max:  lengths[len(lengths)-1],
		Mean: math.Round(mean*100) / 100,
		P95:  lengths[p95Index],
	}
}

// IndexVersion hashes the parameters that determine index contents, so records
// written under a different chunker, window size or embedding model can be told apart.
func IndexVersion(embeddingModel string, chunkSize int) string {
	input := fmt.Sprintf("%s|%s|chunkSize=%d", ChunkerVersion, embeddingModel, chunkSize)
	hash := sha256.Sum256([]byte(input))
	return hex.EncodeToString(hash[:])[:16]
}
