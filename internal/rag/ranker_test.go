package rag_test

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"testing"

	"go.uber.org/mock/gomock"

	"bookbrain/internal/rag"
	"bookbrain/internal/rag/mocks"
)

func init() {
	slog.SetDefault(slog.New(slog.NewTextHandler(io.Discard, nil)))
}

func candidateTexts(cs []rag.Candidate) []string {
	out := make([]string, len(cs))
	for i, c := range cs {
		out[i] = c.Text
	}
	return out
}

func sameStrings(a, b []string) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}

func TestRankVectors(t *testing.T) {
	query := []float32{1, 0}
	candidates := []rag.Candidate{{Text: "far"}, {Text: "tie-1"}, {Text: "near"}, {Text: "tie-2"}}
	vectors := [][]float32{{0, 1}, {1, 1}, {1, 0}, {1, 1}}

	tests := []struct {
		name string
		k    int
		want []string
	}{
		{name: "top two", k: 2, want: []string{"near", "tie-1"}},
		{name: "ties keep insertion order", k: 3, want: []string{"near", "tie-1", "tie-2"}},
		{name: "k above count returns all sorted", k: 10, want: []string{"near", "tie-1", "tie-2", "far"}},
		{name: "k zero returns all", k: 0, want: []string{"near", "tie-1", "tie-2", "far"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := rag.RankVectors(query, candidates, vectors, tt.k)
			if !sameStrings(candidateTexts(got), tt.want) {
				t.Errorf("RankVectors() = %v, want %v", candidateTexts(got), tt.want)
			}
			if got[0].Similarity < 0.999 || got[0].AdjustedScore != got[0].Similarity {
				t.Errorf("RankVectors() top score = %+v", got[0])
			}
		})
	}
}

func TestRanker_Rank(t *testing.T) {
	ctrl := gomock.NewController(t)
	embedder := mocks.NewMockEmbedder(ctrl)

	embedder.EXPECT().EmbedTexts(gomock.Any(), []string{"capital of France"}).
		Return([][]float32{{1, 0}}, nil)
	embedder.EXPECT().EmbedTexts(gomock.Any(), []string{"Berlin is in Germany.", "Paris is the capital."}).
		Return([][]float32{{0, 1}, {0.9, 0.1}}, nil)

	ranker := rag.NewRanker(embedder)
	got, err := ranker.Rank(context.Background(), "capital of France", []rag.Candidate{
		{Text: "Berlin is in Germany."},
		{Text: "Paris is the capital."},
	}, 1)
	if err != nil {
		t.Fatalf("Rank() error = %v", err)
	}
	if len(got) != 1 || got[0].Text != "Paris is the capital." {
		t.Errorf("Rank() = %v, want the Paris passage", candidateTexts(got))
	}
}

func TestRanker_Rank_EmptyCandidates(t *testing.T) {
	ctrl := gomock.NewController(t)
	embedder := mocks.NewMockEmbedder(ctrl)

	got, err := rag.NewRanker(embedder).Rank(context.Background(), "anything", nil, 3)
	if err != nil {
		t.Fatalf("Rank() error = %v", err)
	}
	if got == nil || len(got) != 0 {
		t.Errorf("Rank() = %v, want empty non-nil slice", got)
	}
}

func TestRanker_Rank_EmbeddingFailure(t *testing.T) {
	ctrl := gomock.NewController(t)
	embedder := mocks.NewMockEmbedder(ctrl)

	embedder.EXPECT().EmbedTexts(gomock.Any(), []string{"q"}).Return(nil, errors.New("connection refused"))
	embedder.EXPECT().EmbedTexts(gomock.Any(), []string{"a"}).Return([][]float32{{1}}, nil).AnyTimes()

	if _, err := rag.NewRanker(embedder).Rank(context.Background(), "q", []rag.Candidate{{Text: "a"}}, 1); err == nil {
		t.Error("Rank() expected error when the query cannot be embedded")
	}
}
