// Package feedback holds the append-only log of user verdicts on answers.
package feedback

//go:generate go run go.uber.org/mock/mockgen@latest -destination=mocks/mock_store.go -package=mocks bookbrain/internal/feedback Store

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"
)

// ErrInvalidFeedback is returned when a feedback entry lacks a question or answer.
var ErrInvalidFeedback = errors.New("invalid feedback")

// Labels accepted from clients for a verdict.
const (
	LabelYes = "Yes"
	LabelNo  = "No"
)

// Feedback is a user's verdict on a previously given answer.
type Feedback struct {
	ID        string    `json:"id,omitempty"`
	Question  string    `json:"question"`
	Answer    string    `json:"answer"`
	IsCorrect bool      `json:"is_correct"`
	// RawLabel is the verdict exactly as the user gave it.
	RawLabel  string    `json:"raw_label,omitempty"`
	CreatedAt time.Time `json:"created_at"`
}

// Label returns the verdict as "Yes" or "No".
func (f Feedback) Label() string {
	if f.IsCorrect {
		return LabelYes
	}
	return LabelNo
}

// ParseLabel maps a "Yes"/"No" verdict (case-insensitive) to a boolean.
func ParseLabel(label string) (bool, error) {
	switch strings.ToLower(strings.TrimSpace(label)) {
	case "yes":
		return true, nil
	case "no":
		return false, nil
	default:
		return false, fmt.Errorf("%w: label must be Yes or No, got %q", ErrInvalidFeedback, label)
	}
}

// Validate checks the only constraint the log enforces: non-empty question and answer.
func (f Feedback) Validate() error {
	if strings.TrimSpace(f.Question) == "" {
		return fmt.Errorf("%w: question is required", ErrInvalidFeedback)
	}
	if strings.TrimSpace(f.Answer) == "" {
		return fmt.Errorf("%w: answer is required", ErrInvalidFeedback)
	}
	return nil
}

// Store is an append-only feedback log. Entries are never updated or deleted.
type Store interface {
	// Record appends an entry.
	Record(ctx context.Context, fb Feedback) error
	// All returns every entry in append order.
	All(ctx context.Context) ([]Feedback, error)
}
