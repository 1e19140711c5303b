package retry

import (
	"context"
	"errors"
	"math"
	"os"
	"testing"
	"time"
)

func fastConfig(maxAttempts int) Config {
	cfg := EnableRetry(maxAttempts, time.Millisecond)
	cfg.MaxDelay = 5 * time.Millisecond
	cfg.Jitter = 0
	return cfg
}

func TestRetryer_SuccessAfterRetries(t *testing.T) {
	retryer, err := NewRetryer(fastConfig(5))
	if err != nil {
		t.Fatalf("NewRetryer() error = %v", err)
	}

	attempts := 0
	err = retryer.Do(context.Background(), func(ctx context.Context) error {
		attempts++
		if attempts < 3 {
			return errors.New("connection refused")
		}
		return nil
	})
	if err != nil {
		t.Errorf("Do() error = %v", err)
	}
	if attempts != 3 {
		t.Errorf("attempts = %d, want 3", attempts)
	}
}

func TestRetryer_MaxAttemptsExceeded(t *testing.T) {
	retryer, _ := NewRetryer(fastConfig(3))
	boom := errors.New("boom")

	attempts := 0
	err := retryer.Do(context.Background(), func(ctx context.Context) error {
		attempts++
		return boom
	})
	if !errors.Is(err, boom) {
		t.Errorf("Do() error = %v, want wrapped boom", err)
	}
	if attempts != 3 {
		t.Errorf("attempts = %d, want 3", attempts)
	}
}

func TestRetryer_Permanent(t *testing.T) {
	retryer, _ := NewRetryer(fastConfig(5))

	attempts := 0
	err := retryer.Do(context.Background(), func(ctx context.Context) error {
		attempts++
		return Permanent(os.ErrNotExist)
	})
	if err != os.ErrNotExist {
		t.Errorf("Do() error = %v, want os.ErrNotExist unwrapped", err)
	}
	if attempts != 1 {
		t.Errorf("attempts = %d, want 1", attempts)
	}
}

func TestRetryer_Disabled(t *testing.T) {
	retryer, err := NewRetryer(DefaultConfig())
	if err != nil {
		t.Fatalf("NewRetryer() error = %v", err)
	}

	attempts := 0
	boom := errors.New("boom")
	if err := retryer.Do(context.Background(), func(ctx context.Context) error {
		attempts++
		return boom
	}); err != boom {
		t.Errorf("Do() error = %v, want boom", err)
	}
	if attempts != 1 {
		t.Errorf("attempts = %d, want 1", attempts)
	}
}

func TestRetryer_ContextCancellation(t *testing.T) {
	cfg := EnableRetry(0, time.Hour)
	cfg.MaxDelay = time.Hour
	retryer, _ := NewRetryer(cfg)

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()
	err := retryer.Do(ctx, func(ctx context.Context) error { return errors.New("down") })
	if !errors.Is(err, context.DeadlineExceeded) {
		t.Errorf("Do() error = %v, want deadline exceeded", err)
	}
}

func TestRetryer_OnRetry(t *testing.T) {
	cfg := fastConfig(3)
	var seen []int
	cfg.OnRetry = func(attempt int, err error, delay time.Duration) { seen = append(seen, attempt) }
	retryer, _ := NewRetryer(cfg)

	_ = retryer.Do(context.Background(), func(ctx context.Context) error { return errors.New("x") })
	if len(seen) != 2 || seen[0] != 1 || seen[1] != 2 {
		t.Errorf("OnRetry attempts = %v, want [1 2]", seen)
	}
}

func TestCalculateDelay(t *testing.T) {
	tests := []struct {
		backoff BackoffStrategy
		attempt int
		want    time.Duration
	}{
		{BackoffConstant, 3, 10 * time.Millisecond},
		{BackoffLinear, 3, 30 * time.Millisecond},
		{BackoffExponential, 3, 40 * time.Millisecond},
		{BackoffExponential, 10, 100 * time.Millisecond}, // max_delay
		{BackoffExponential, 70, 100 * time.Millisecond},
		{BackoffExponential, 5000, 100 * time.Millisecond},
		{BackoffLinear, math.MaxInt32, 100 * time.Millisecond},
	}
	for _, tt := range tests {
		cfg := EnableRetry(5, 10*time.Millisecond)
		cfg.MaxDelay = 100 * time.Millisecond
		cfg.Jitter = 0
		cfg.Backoff = tt.backoff
		r, err := NewRetryer(cfg)
		if err != nil {
			t.Fatalf("NewRetryer() error = %v", err)
		}
		if got := r.calculateDelay(tt.attempt); got != tt.want {
			t.Errorf("%s attempt %d: delay = %v, want %v", tt.backoff, tt.attempt, got, tt.want)
		}
	}
}

func TestConfig_Validate(t *testing.T) {
	bad := []Config{
		{Enabled: true, MaxAttempts: -1, Backoff: BackoffConstant},
		{Enabled: true, InitialDelay: time.Second, MaxDelay: time.Millisecond, Backoff: BackoffConstant},
		{Enabled: true, Backoff: "random"},
		{Enabled: true, Backoff: BackoffLinear, Jitter: 2},
	}
	for i, cfg := range bad {
		if err := cfg.Validate(); err == nil {
			t.Errorf("case %d: Validate() expected error", i)
		}
	}
}

func TestCalculateDelay_UnlimitedAttemptsStayBounded(t *testing.T) {
	cfg := EnableRetry(0, time.Second)
	cfg.Jitter = 0
	r, err := NewRetryer(cfg)
	if err != nil {
		t.Fatalf("NewRetryer() error = %v", err)
	}
	for attempt := 1; attempt <= 200; attempt++ {
		got := r.calculateDelay(attempt)
		if got < cfg.InitialDelay || got > cfg.MaxDelay {
			t.Fatalf("calculateDelay(%d) = %v, want within [%v, %v]", attempt, got, cfg.InitialDelay, cfg.MaxDelay)
		}
	}
}
