package client

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/rs/zerolog"
)

func TestDefaultRetryConfig(t *testing.T) {
	config := DefaultRetryConfig()

	if config.MaxAttempts != 2 {
		t.Errorf("MaxAttempts = %d, want 2", config.MaxAttempts)
	}
	if config.BaseDelay != 400*time.Millisecond {
		t.Errorf("BaseDelay = %v, want 400ms", config.BaseDelay)
	}
	if config.Multiplier != 2.0 {
		t.Errorf("Multiplier = %v, want 2.0", config.Multiplier)
	}
}

func TestRetryConfig_Backoff(t *testing.T) {
	tests := []struct {
		name    string
		config  RetryConfig
		attempt int
		want    time.Duration
	}{
		{"first retry", DefaultRetryConfig(), 0, 400 * time.Millisecond},
		{"second retry", DefaultRetryConfig(), 1, 800 * time.Millisecond},
		{"third retry", DefaultRetryConfig(), 2, 1600 * time.Millisecond},
		{"negative index", DefaultRetryConfig(), -1, 400 * time.Millisecond},
		{"capped", RetryConfig{BaseDelay: time.Second, Multiplier: 2, MaxBackoff: 3 * time.Second}, 4, 3 * time.Second},
		{"zero multiplier defaults to 2", RetryConfig{BaseDelay: 100 * time.Millisecond}, 2, 400 * time.Millisecond},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.config.Backoff(tt.attempt); got != tt.want {
				t.Errorf("Backoff(%d) = %v, want %v", tt.attempt, got, tt.want)
			}
		})
	}
}

func fastRetry() RetryConfig {
	return RetryConfig{MaxAttempts: 2, BaseDelay: 10 * time.Millisecond, Multiplier: 2}
}

func TestRetryWithBackoff_Success(t *testing.T) {
	callCount := 0
	attempts, err := retryWithBackoff(context.Background(), fastRetry(), zerolog.Nop(), func(int) error {
		callCount++
		return nil
	})

	if err != nil {
		t.Errorf("Expected no error, got %v", err)
	}
	if callCount != 1 || attempts != 1 {
		t.Errorf("Expected 1 call, got calls=%d attempts=%d", callCount, attempts)
	}
}

func TestRetryWithBackoff_SuccessAfterRetry(t *testing.T) {
	callCount := 0
	start := time.Now()
	attempts, err := retryWithBackoff(context.Background(), fastRetry(), zerolog.Nop(), func(attempt int) error {
		callCount++
		if attempt == 0 {
			return errors.New("temporary error")
		}
		return nil
	})

	if err != nil {
		t.Errorf("Expected no error, got %v", err)
	}
	if attempts != 2 {
		t.Errorf("Expected 2 attempts, got %d", attempts)
	}
	if time.Since(start) < 10*time.Millisecond {
		t.Error("Expected backoff delay before second attempt")
	}
}

func TestRetryWithBackoff_Exhausted(t *testing.T) {
	testErr := &HTTPError{StatusCode: 503, ErrorClass: ErrorClassServer, Message: "503 Service Unavailable"}
	callCount := 0

	_, err := retryWithBackoff(context.Background(), fastRetry(), zerolog.Nop(), func(int) error {
		callCount++
		return testErr
	})

	if !errors.Is(err, ErrRetryExhausted) {
		t.Errorf("Expected ErrRetryExhausted, got %v", err)
	}
	var httpErr *HTTPError
	if !errors.As(err, &httpErr) || httpErr.StatusCode != 503 {
		t.Errorf("Expected wrapped HTTPError, got %v", err)
	}
	if callCount != 2 {
		t.Errorf("Expected 2 calls, got %d", callCount)
	}
}

func TestRetryWithBackoff_CanceledDuringBackoff(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cfg := RetryConfig{MaxAttempts: 2, BaseDelay: 5 * time.Second, Multiplier: 2}

	callCount := 0
	go func() {
		time.Sleep(50 * time.Millisecond)
		cancel()
	}()

	start := time.Now()
	_, err := retryWithBackoff(ctx, cfg, zerolog.Nop(), func(int) error {
		callCount++
		return errors.New("boom")
	})

	if !errors.Is(err, ErrCanceled) {
		t.Errorf("Expected ErrCanceled, got %v", err)
	}
	if errors.Is(err, ErrRetryExhausted) {
		t.Error("Canceled fetch must not report exhaustion")
	}
	if callCount != 1 {
		t.Errorf("Expected 1 call, got %d", callCount)
	}
	if time.Since(start) > 2*time.Second {
		t.Error("Backoff was not interrupted by cancellation")
	}
}

func TestRetryWithBackoff_AlreadyCanceled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	callCount := 0
	attempts, err := retryWithBackoff(ctx, fastRetry(), zerolog.Nop(), func(int) error {
		callCount++
		return nil
	})

	if !errors.Is(err, ErrCanceled) {
		t.Errorf("Expected ErrCanceled, got %v", err)
	}
	if callCount != 0 || attempts != 0 {
		t.Errorf("Expected no calls, got calls=%d attempts=%d", callCount, attempts)
	}
}
