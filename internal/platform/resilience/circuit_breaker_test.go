package resilience

import (
	"errors"
	"testing"
	"time"
)

func TestCircuitBreakerOpensAfterThreshold(t *testing.T) {
	t.Parallel()

	breaker := NewCircuitBreaker(3, time.Minute, 1)

	for i := 0; i < 2; i++ {
		breaker.RecordFailure()
		if err := breaker.Allow(); err != nil {
			t.Fatalf("breaker tripped too early after %d failures: %v", i+1, err)
		}
	}

	breaker.RecordFailure()
	if err := breaker.Allow(); !errors.Is(err, ErrCircuitOpen) {
		t.Fatalf("expected open circuit, got %v", err)
	}
	if breaker.State() != CircuitStateOpen {
		t.Fatalf("expected open state, got %s", breaker.State())
	}
}

func TestCircuitBreakerSuccessResetsFailureCount(t *testing.T) {
	t.Parallel()

	breaker := NewCircuitBreaker(2, time.Minute, 1)

	breaker.RecordFailure()
	breaker.RecordSuccess()
	breaker.RecordFailure()

	if err := breaker.Allow(); err != nil {
		t.Fatalf("expected closed circuit after interleaved success, got %v", err)
	}
}

func TestCircuitBreakerHalfOpenRecovery(t *testing.T) {
	t.Parallel()

	current := time.Unix(1000, 0)
	breaker := NewCircuitBreaker(1, 10*time.Second, 1)
	breaker.now = func() time.Time { return current }

	breaker.RecordFailure()
	if err := breaker.Allow(); !errors.Is(err, ErrCircuitOpen) {
		t.Fatalf("expected open circuit, got %v", err)
	}

	current = current.Add(11 * time.Second)
	if err := breaker.Allow(); err != nil {
		t.Fatalf("expected half-open probe allowed, got %v", err)
	}
	if err := breaker.Allow(); !errors.Is(err, ErrCircuitOpen) {
		t.Fatalf("expected probe budget exhausted, got %v", err)
	}

	breaker.RecordSuccess()
	if breaker.State() != CircuitStateClosed {
		t.Fatalf("expected closed after successful probe, got %s", breaker.State())
	}
	if err := breaker.Allow(); err != nil {
		t.Fatalf("expected closed circuit, got %v", err)
	}
}

func TestCircuitBreakerHalfOpenFailureReopens(t *testing.T) {
	t.Parallel()

	current := time.Unix(1000, 0)
	breaker := NewCircuitBreaker(1, 10*time.Second, 1)
	breaker.now = func() time.Time { return current }

	breaker.RecordFailure()
	current = current.Add(11 * time.Second)
	if err := breaker.Allow(); err != nil {
		t.Fatalf("expected half-open probe allowed, got %v", err)
	}

	breaker.RecordFailure()
	if err := breaker.Allow(); !errors.Is(err, ErrCircuitOpen) {
		t.Fatalf("expected reopened circuit, got %v", err)
	}
}
