package indexer

import (
	"strings"
	"testing"
	"unicode/utf8"
)

func TestChunkText(t *testing.T) {
	tests := []struct {
		name    string
		text    string
		maxSize int
		want    []string
	}{
		{
			name:    "empty text",
			text:    "",
			maxSize: 10,
			want:    []string{},
		},
		{
			name:    "shorter than window",
			text:    "short",
			maxSize: 10,
			want:    []string{"short"},
		},
		{
			name:    "exact window",
			text:    "abcdefghij",
			maxSize: 10,
			want:    []string{"abcdefghij"},
		},
		{
			name:    "fixed windows with remainder",
			text:    "The capital of France is Paris. Paris has many museums.",
			maxSize: 30,
			want:    []string{"The capital of France is Paris", ". Paris has many museums."},
		},
		{
			name:    "whitespace-only windows dropped",
			text:    "abc" + strings.Repeat(" ", 6) + "def",
			maxSize: 3,
			want:    []string{"abc", "def"},
		},
		{
			name:    "only whitespace",
			text:    " \n\t  ",
			maxSize: 2,
			want:    []string{},
		},
		{
			name:    "kept windows are not trimmed",
			text:    "ab  cd",
			maxSize: 3,
			want:    []string{"ab ", " cd"},
		},
		{
			name:    "counts characters not bytes",
			text:    "héllo wörld",
			maxSize: 5,
			want:    []string{"héllo", " wörl", "d"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := ChunkText(tt.text, tt.maxSize)
			if len(got) != len(tt.want) {
				t.Fatalf("ChunkText() = %q, want %q", got, tt.want)
			}
			for i := range got {
				if got[i] != tt.want[i] {
					t.Errorf("ChunkText()[%d] = %q, want %q", i, got[i], tt.want[i])
				}
			}
		})
	}
}

func TestChunkText_Properties(t *testing.T) {
	text := strings.Repeat("Call me Ishmael. Some years ago, never mind how long precisely. ", 40)

	for _, size := range []int{1, 7, 64, 500, 5000} {
		chunks := ChunkText(text, size)

		for i, c := range chunks {
			if n := utf8.RuneCountInString(c); n > size {
				t.Errorf("size %d: chunk %d has %d characters", size, i, n)
			}
			if strings.TrimSpace(c) == "" {
				t.Errorf("size %d: chunk %d is whitespace-only", size, i)
			}
		}

		// Removing whitespace-only windows keeps every non-whitespace character in order.
		joined := strings.Join(chunks, "")
		if strip(joined) != strip(text) {
			t.Errorf("size %d: concatenated chunks lost content", size)
		}

		again := ChunkText(text, size)
		if strings.Join(again, "|") != strings.Join(chunks, "|") {
			t.Errorf("size %d: ChunkText() is not deterministic", size)
		}
	}
}

func TestChunkText_DefaultSize(t *testing.T) {
	text := strings.Repeat("a", DefaultChunkSize+1)
	got := ChunkText(text, 0)
	if len(got) != 2 {
		t.Fatalf("ChunkText() with size 0 returned %d chunks, want 2", len(got))
	}
	if utf8.RuneCountInString(got[0]) != DefaultChunkSize {
		t.Errorf("first chunk has %d characters, want %d", utf8.RuneCountInString(got[0]), DefaultChunkSize)
	}
}

func TestChunks(t *testing.T) {
	doc := Document{BookID: "moby", Text: "abcdef   ghi"}
	got := Chunks(doc, 3)

	want := []Chunk{
		{DocumentID: "moby", Index: 0, Text: "abc"},
		{DocumentID: "moby", Index: 1, Text: "def"},
		{DocumentID: "moby", Index: 2, Text: "ghi"},
	}
	if len(got) != len(want) {
		t.Fatalf("Chunks() = %+v, want %+v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("Chunks()[%d] = %+v, want %+v", i, got[i], want[i])
		}
	}
}

func TestRecordID(t *testing.T) {
	got := RecordID("moby", TypeChapter, 2, 7)
	if got != "moby_chapter_v2_ch_7" {
		t.Errorf("RecordID() = %q, want moby_chapter_v2_ch_7", got)
	}
}

func strip(s string) string {
	return strings.Join(strings.Fields(s), "")
}
