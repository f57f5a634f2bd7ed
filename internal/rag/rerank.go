package rag

import (
	"sort"
	"strings"

	"bookbrain/internal/feedback"
)

// rewardWeight scales a reward step above the whole cosine range in AdjustedScore.
const rewardWeight = 2

// Reward is the number of correct feedback entries whose answer occurs in text,
// minus the number of incorrect ones. Entries with an empty answer are ignored.
func Reward(text string, log []feedback.Feedback) int {
	reward := 0
	for _, fb := range log {
		if fb.Answer == "" || !strings.Contains(text, fb.Answer) {
			continue
		}
		if fb.IsCorrect {
			reward++
		} else {
			reward--
		}
	}
	return reward
}

// Rerank orders candidates by descending reward. Candidates with equal reward keep
// their incoming order, and none are dropped.
func Rerank(candidates []Candidate, log []feedback.Feedback) []Candidate {
	out := make([]Candidate, len(candidates))
	for i, c := range candidates {
		c.Reward = Reward(c.Text, log)
		c.AdjustedScore = c.Similarity + float32(rewardWeight*c.Reward)
		out[i] = c
	}

	sort.SliceStable(out, func(i, j int) bool {
		return out[i].Reward > out[j].Reward
	})
	return out
}
