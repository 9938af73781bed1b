package pagetlai

import (
	"context"
	"testing"
	"time"
)

func TestNewRateLimiter_Burst(t *testing.T) {
	limiter := NewRateLimiter(RateLimitConfig{
		RequestsPerMinute: 60, // 1 per second
		BurstSize:         3,
	})

	// Should be able to acquire burst size immediately
	for i := 0; i < 3; i++ {
		if !limiter.Allow() {
			t.Errorf("Expected to acquire token %d", i)
		}
	}

	// Fourth should fail
	if limiter.Allow() {
		t.Error("Expected fourth acquire to fail")
	}
}

func TestNewRateLimiter_Defaults(t *testing.T) {
	limiter := NewRateLimiter(RateLimitConfig{})

	if limiter.Burst() != 60 {
		t.Errorf("Expected default burst 60, got %d", limiter.Burst())
	}
}

func TestRateLimitedBackend(t *testing.T) {
	inner := &stubBackend{response: "traduit"}

	backend := NewRateLimitedBackend(inner, RateLimitConfig{
		RequestsPerMinute: 600,
		BurstSize:         2,
	})

	ctx := context.Background()

	// First two should succeed immediately
	if _, err := backend.Translate(ctx, TranslateRequest{Text: "a"}); err != nil {
		t.Errorf("First translate failed: %v", err)
	}
	if _, err := backend.Translate(ctx, TranslateRequest{Text: "b"}); err != nil {
		t.Errorf("Second translate failed: %v", err)
	}

	// Third should wait for the bucket to refill
	start := time.Now()
	result, err := backend.Translate(ctx, TranslateRequest{Text: "c"})
	elapsed := time.Since(start)

	if err != nil {
		t.Errorf("Third translate failed: %v", err)
	}
	if result != "traduit" {
		t.Errorf("Expected 'traduit', got %q", result)
	}
	if elapsed < 50*time.Millisecond {
		t.Errorf("Expected rate limit wait, but returned in %v", elapsed)
	}
	if inner.calls != 3 {
		t.Errorf("Expected 3 backend calls, got %d", inner.calls)
	}
}

func TestRateLimitedBackend_ContextCancelled(t *testing.T) {
	inner := &stubBackend{response: "traduit"}

	backend := NewRateLimitedBackend(inner, RateLimitConfig{
		RequestsPerMinute: 1, // Very slow
		BurstSize:         1,
	})

	// Drain the bucket
	backend.Translate(context.Background(), TranslateRequest{Text: "a"})

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Millisecond)
	defer cancel()

	_, err := backend.Translate(ctx, TranslateRequest{Text: "b"})
	if err == nil {
		t.Fatal("Expected error when context cancelled")
	}
	if IsRetryable(err) {
		t.Error("Cancelled wait should not be retryable")
	}
	if inner.calls != 1 {
		t.Errorf("Expected 1 backend call, got %d", inner.calls)
	}
}

// stubBackend returns a fixed response.
type stubBackend struct {
	response string
	calls    int
}

func (s *stubBackend) Translate(ctx context.Context, req TranslateRequest) (string, error) {
	s.calls++
	return s.response, nil
}
