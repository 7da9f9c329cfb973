package retry

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"
)

func TestDo_Success(t *testing.T) {
	t.Parallel()
	attempts := 0
	err := Do(context.Background(), func() error {
		attempts++
		return nil
	})

	if err != nil {
		t.Errorf("Expected no error, got: %v", err)
	}
	if attempts != 1 {
		t.Errorf("Expected 1 attempt, got: %d", attempts)
	}
}

func TestDo_SuccessAfterRetries(t *testing.T) {
	t.Parallel()
	attempts := 0
	err := Do(context.Background(), func() error {
		attempts++
		if attempts < 3 {
			return errors.New("temporary error")
		}
		return nil
	}, WithInitialDelay(5*time.Millisecond))

	if err != nil {
		t.Errorf("Expected no error after retries, got: %v", err)
	}
	if attempts != 3 {
		t.Errorf("Expected 3 attempts, got: %d", attempts)
	}
}

func TestDo_MaxRetries(t *testing.T) {
	t.Parallel()
	attempts := 0
	err := Do(context.Background(), func() error {
		attempts++
		return errors.New("persistent error")
	}, WithMaxRetries(3), WithInitialDelay(5*time.Millisecond))

	if err == nil {
		t.Fatal("Expected error after max retries, got nil")
	}
	if attempts != 4 {
		t.Errorf("Expected 4 attempts (1 + 3 retries), got: %d", attempts)
	}
}

func TestDo_ContextCancellation(t *testing.T) {
	t.Parallel()
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	attempts := 0
	err := Do(ctx, func() error {
		attempts++
		return errors.New("error")
	}, WithInitialDelay(10*time.Millisecond))

	if !errors.Is(err, context.Canceled) {
		t.Errorf("Expected context.Canceled error, got: %v", err)
	}
	if attempts != 1 {
		t.Errorf("Expected 1 attempt before context check, got: %d", attempts)
	}
}

func TestDo_FatalError(t *testing.T) {
	t.Parallel()
	attempts := 0
	err := Do(context.Background(), func() error {
		attempts++
		return Fatal(errors.New("fatal error"))
	}, WithInitialDelay(5*time.Millisecond))

	if !IsFatal(err) {
		t.Errorf("Expected fatal error, got: %v", err)
	}
	if attempts != 1 {
		t.Errorf("Expected 1 attempt, got: %d", attempts)
	}
}

func TestDo_RetryIf(t *testing.T) {
	t.Parallel()
	transient := errors.New("connection refused")
	permanent := errors.New("unable to authenticate")

	attempts := 0
	err := Do(context.Background(), func() error {
		attempts++
		if attempts == 1 {
			return transient
		}
		return permanent
	},
		WithInitialDelay(time.Millisecond),
		WithRetryIf(func(err error) bool { return errors.Is(err, transient) }))

	if !errors.Is(err, permanent) {
		t.Errorf("Expected permanent error to be returned as-is, got: %v", err)
	}
	if attempts != 2 {
		t.Errorf("Expected 2 attempts, got: %d", attempts)
	}
}

func TestDo_MaxDelay(t *testing.T) {
	t.Parallel()
	attempts := 0
	var delays []time.Duration
	last := time.Now()

	_ = Do(context.Background(), func() error {
		attempts++
		now := time.Now()
		if attempts > 1 {
			delays = append(delays, now.Sub(last))
		}
		last = now
		if attempts < 5 {
			return errors.New("error")
		}
		return nil
	}, WithInitialDelay(10*time.Millisecond), WithMaxDelay(20*time.Millisecond))

	for i, d := range delays {
		if d > 30*time.Millisecond {
			t.Errorf("Delay %d exceeded max: %v", i+1, d)
		}
	}
}

func TestFatal(t *testing.T) {
	t.Parallel()
	if Fatal(nil) != nil {
		t.Error("Fatal(nil) should be nil")
	}

	sentinel := errors.New("sentinel error")
	wrapped := fmt.Errorf("context: %w", Fatal(sentinel))
	if !IsFatal(wrapped) {
		t.Error("IsFatal should detect FatalError through fmt.Errorf wrapping")
	}
	if !errors.Is(wrapped, sentinel) {
		t.Error("errors.Is should find sentinel through FatalError.Unwrap()")
	}
	if IsFatal(errors.New("regular error")) {
		t.Error("regular error must not be fatal")
	}
}
