package study

import (
	"context"
	"errors"
	"fmt"
)

// ErrParseFailure is returned when model output could not be parsed within the attempt budget.
var ErrParseFailure = errors.New("could not parse model output")

// State is the terminal state of a bounded generate-and-parse run.
type State string

const (
	StateSuccess State = "success"
	StateGaveUp  State = "gave_up"
	StateFailed  State = "failed"
)

// Outcome is the result of RunBounded.
type Outcome[T any] struct {
	State    State
	Value    T
	Raw      string
	Attempts int
}

// RunBounded runs Generate → Parse, retrying a parse failure until maxAttempts
// generations were made, then gives up. A generation error ends the run in StateFailed
// without retrying. The returned error is nil only for StateSuccess.
func RunBounded[T any](
	ctx context.Context,
	maxAttempts int,
	generate func(ctx context.Context) (string, error),
	parse func(raw string) (T, error),
) (Outcome[T], error) {
	if maxAttempts <= 0 {
		maxAttempts = 1
	}

	var out Outcome[T]
	var lastParseErr error
	for attempt := 1; attempt <= maxAttempts; attempt++ {
		if err := ctx.Err(); err != nil {
			out.State = StateFailed
			return out, err
		}

		out.Attempts = attempt
		raw, err := generate(ctx)
		if err != nil {
			out.State = StateFailed
			return out, err
		}
		out.Raw = raw

		value, err := parse(raw)
		if err == nil {
			out.State = StateSuccess
			out.Value = value
			return out, nil
		}
		lastParseErr = err
	}

	out.State = StateGaveUp
	return out, fmt.Errorf("%w after %d attempts: %v", ErrParseFailure, out.Attempts, lastParseErr)
}
