package resilience

import (
	"context"
	"errors"
	"testing"
	"time"
)

func fastConfig() Config {
	return Config{
		RetryMaxAttempts:    3,
		RetryInitialBackoff: time.Millisecond,
		RetryMaxBackoff:     2 * time.Millisecond,
		RetryMultiplier:     2,
	}
}

func TestExecutor_RetriesTransientFailure(t *testing.T) {
	exec := NewExecutor(fastConfig())

	attempts := 0
	err := exec.Execute(context.Background(), "vector.search", func(context.Context) error {
		attempts++
		if attempts < 3 {
			return errors.New("connection reset")
		}
		return nil
	}, nil)
	if err != nil {
		t.Fatalf("Execute() error = %v, want nil", err)
	}
	if attempts != 3 {
		t.Errorf("Execute() attempts = %d, want 3", attempts)
	}
}

func TestExecutor_StopsOnPermanentFailure(t *testing.T) {
	exec := NewExecutor(fastConfig())

	errPermanent := errors.New("bad request")
	attempts := 0
	err := exec.Execute(context.Background(), "vector.get", func(context.Context) error {
		attempts++
		return errPermanent
	}, func(error) ErrorClassification {
		return ErrorClassification{Retryable: false, RecordFailure: false}
	})
	if !errors.Is(err, errPermanent) {
		t.Fatalf("Execute() error = %v, want %v", err, errPermanent)
	}
	if attempts != 1 {
		t.Errorf("Execute() attempts = %d, want 1", attempts)
	}
}

func TestExecutor_DeadlineIsNotRetried(t *testing.T) {
	exec := NewExecutor(fastConfig())

	attempts := 0
	err := exec.Execute(context.Background(), "embed", func(context.Context) error {
		attempts++
		return context.DeadlineExceeded
	}, nil)
	if !errors.Is(err, context.DeadlineExceeded) {
		t.Fatalf("Execute() error = %v, want deadline exceeded", err)
	}
	if attempts != 1 {
		t.Errorf("Execute() attempts = %d, want 1", attempts)
	}
}

func TestExecutor_OpensCircuit(t *testing.T) {
	cfg := fastConfig()
	cfg.RetryMaxAttempts = 1
	cfg.BreakerEnabled = true
	cfg.BreakerMinRequests = 2
	cfg.BreakerFailureRatio = 0.5
	cfg.BreakerOpenTimeout = time.Minute
	exec := NewExecutor(cfg)

	errDown := errors.New("qdrant unavailable")
	calls := 0
	fail := func(context.Context) error {
		calls++
		return errDown
	}

	for i := 0; i < 2; i++ {
		if err := exec.Execute(context.Background(), "vector.search", fail, nil); !errors.Is(err, errDown) {
			t.Fatalf("Execute() call %d error = %v, want %v", i, err, errDown)
		}
	}

	err := exec.Execute(context.Background(), "vector.search", fail, nil)
	if !IsCircuitOpen(err) {
		t.Fatalf("Execute() error = %v, want open circuit", err)
	}
	if calls != 2 {
		t.Errorf("callback calls = %d, want 2", calls)
	}

	// Breakers are per operation.
	if err := exec.Execute(context.Background(), "vector.get", func(context.Context) error { return nil }, nil); err != nil {
		t.Errorf("Execute() on other operation error = %v, want nil", err)
	}
}

func TestExecutor_CancelledContext(t *testing.T) {
	exec := NewExecutor(fastConfig())
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	called := false
	err := exec.Execute(ctx, "op", func(context.Context) error {
		called = true
		return nil
	}, nil)
	if !errors.Is(err, context.Canceled) {
		t.Errorf("Execute() error = %v, want context.Canceled", err)
	}
	if called {
		t.Error("Execute() should not call fn with a cancelled context")
	}
}

func TestDefaultClassifier(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want ErrorClassification
	}{
		{"canceled", context.Canceled, ErrorClassification{Retryable: false, RecordFailure: false}},
		{"deadline", context.DeadlineExceeded, ErrorClassification{Retryable: false, RecordFailure: true}},
		{"other", errors.New("boom"), ErrorClassification{Retryable: true, RecordFailure: true}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := DefaultClassifier(tt.err); got != tt.want {
				t.Errorf("DefaultClassifier() = %+v, want %+v", got, tt.want)
			}
		})
	}
}
