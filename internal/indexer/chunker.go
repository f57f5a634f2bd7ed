package indexer

import "strings"

// DefaultChunkSize is the window size, in characters, used when none is configured.
const DefaultChunkSize = 12000

// ChunkText splits text into consecutive windows of at most maxSize characters.
// Windows consisting only of whitespace are dropped; kept windows are not trimmed.
// A non-positive maxSize falls back to DefaultChunkSize.
func ChunkText(text string, maxSize int) []string {
	if maxSize <= 0 {
		maxSize = DefaultChunkSize
	}

	runes := []rune(text)
	chunks := make([]string, 0, len(runes)/maxSize+1)
	for start := 0; start < len(runes); start += maxSize {
		end := min(start+maxSize, len(runes))
		window := string(runes[start:end])
		if strings.TrimSpace(window) == "" {
			continue
		}
		chunks = append(chunks, window)
	}
	return chunks
}

// Chunks splits a document into indexed chunks. Indices count kept windows only.
func Chunks(doc Document, maxSize int) []Chunk {
	texts := ChunkText(doc.Text, maxSize)
	chunks := make([]Chunk, len(texts))
	for i, t := range texts {
		chunks[i] = Chunk{DocumentID: doc.BookID, Index: i, Text: t}
	}
	return chunks
}
