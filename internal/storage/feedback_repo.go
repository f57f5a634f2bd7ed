package storage

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"bookbrain/internal/feedback"
)

// FeedbackRepo is the durable feedback.Store. Append order is the autoincrement sequence.
type FeedbackRepo struct {
	db  *sqlx.DB
	now func() time.Time
}

type feedbackRow struct {
	ID        string `db:"id"`
	Question  string `db:"question"`
	Answer    string `db:"answer"`
	IsCorrect bool   `db:"is_correct"`
	RawLabel  string `db:"raw_label"`
	CreatedAt string `db:"created_at"`
}

// NewFeedbackRepo creates a new FeedbackRepo.
func NewFeedbackRepo(db *sql.DB) *FeedbackRepo {
	return &FeedbackRepo{db: sqlx.NewDb(db, driverName), now: time.Now}
}

// Record appends fb.
func (r *FeedbackRepo) Record(ctx context.Context, fb feedback.Feedback) error {
	if err := fb.Validate(); err != nil {
		return err
	}
	if fb.ID == "" {
		fb.ID = uuid.NewString()
	}
	if fb.CreatedAt.IsZero() {
		fb.CreatedAt = r.now().UTC()
	}

	_, err := r.db.ExecContext(ctx,
		"INSERT INTO feedback (id, question, answer, is_correct, raw_label, created_at) VALUES (?, ?, ?, ?, ?, ?)",
		fb.ID, fb.Question, fb.Answer, fb.IsCorrect, fb.RawLabel, fb.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to insert feedback: %w", err)
	}
	return nil
}

// All returns every entry in append order.
func (r *FeedbackRepo) All(ctx context.Context) ([]feedback.Feedback, error) {
	var rows []feedbackRow
	err := r.db.SelectContext(ctx, &rows,
		"SELECT id, question, answer, is_correct, raw_label, created_at FROM feedback ORDER BY seq",
	)
	if err != nil {
		return nil, fmt.Errorf("failed to query feedback: %w", err)
	}

	entries := make([]feedback.Feedback, 0, len(rows))
	for _, row := range rows {
		createdAt, err := parseTimestamp(row.CreatedAt)
		if err != nil {
			return nil, err
		}
		entries = append(entries, feedback.Feedback{
			ID:        row.ID,
			Question:  row.Question,
			Answer:    row.Answer,
			IsCorrect: row.IsCorrect,
			RawLabel:  row.RawLabel,
			CreatedAt: createdAt,
		})
	}
	return entries, nil
}
