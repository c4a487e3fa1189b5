package retry

import (
	"context"
	"errors"
	"testing"
	"time"
)

func fastPolicy(retries int) Policy {
	return Policy{
		MaxRetries:     retries,
		InitialBackoff: time.Millisecond,
		MaxBackoff:     5 * time.Millisecond,
		Multiplier:     2,
		Jitter:         0.1,
	}
}

func TestDo_SucceedsAfterFailures(t *testing.T) {
	attempts := 0
	err := Do(context.Background(), fastPolicy(3), nil, func(context.Context) error {
		attempts++
		if attempts < 3 {
			return errors.New("flaky")
		}
		return nil
	})
	if err != nil {
		t.Fatalf("Do() error = %v", err)
	}
	if attempts != 3 {
		t.Errorf("attempts = %d, want 3", attempts)
	}
}

func TestDo_GivesUp(t *testing.T) {
	boom := errors.New("boom")
	attempts := 0
	err := Do(context.Background(), fastPolicy(2), nil, func(context.Context) error {
		attempts++
		return boom
	})
	if !errors.Is(err, boom) {
		t.Fatalf("Do() error = %v, want wrapped boom", err)
	}
	if attempts != 3 {
		t.Errorf("attempts = %d, want 3", attempts)
	}
}

func TestDo_NoRetriesReturnsErrorUnwrapped(t *testing.T) {
	boom := errors.New("boom")
	err := Do(context.Background(), fastPolicy(0), nil, func(context.Context) error { return boom })
	if err != boom {
		t.Errorf("Do() error = %v, want boom", err)
	}
}

func TestDo_PermanentStopsImmediately(t *testing.T) {
	gone := errors.New("gone")
	attempts := 0
	err := Do(context.Background(), fastPolicy(5), nil, func(context.Context) error {
		attempts++
		return Permanent(gone)
	})
	if err != gone {
		t.Errorf("Do() error = %v, want gone", err)
	}
	if attempts != 1 {
		t.Errorf("attempts = %d, want 1", attempts)
	}
}

func TestDo_ClassifierStopsRetries(t *testing.T) {
	notFound := errors.New("not found")
	attempts := 0
	classify := func(err error) bool { return !errors.Is(err, notFound) }
	err := Do(context.Background(), fastPolicy(5), classify, func(context.Context) error {
		attempts++
		return notFound
	})
	if !errors.Is(err, notFound) {
		t.Errorf("Do() error = %v", err)
	}
	if attempts != 1 {
		t.Errorf("attempts = %d, want 1", attempts)
	}
}

func TestDo_ContextCanceled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	p := fastPolicy(10)
	p.InitialBackoff = time.Hour
	p.MaxBackoff = time.Hour

	attempts := 0
	err := Do(ctx, p, nil, func(context.Context) error {
		attempts++
		cancel()
		return errors.New("transient")
	})
	if !errors.Is(err, context.Canceled) {
		t.Errorf("Do() error = %v, want context.Canceled", err)
	}
	if attempts != 1 {
		t.Errorf("attempts = %d, want 1", attempts)
	}
}

func TestJitterBounds(t *testing.T) {
	d := 100 * time.Millisecond
	for range 1000 {
		j := jitter(d, 0.2)
		if j < -20*time.Millisecond || j > 20*time.Millisecond {
			t.Fatalf("jitter = %v out of +/-20ms", j)
		}
	}
	if jitter(d, 0) != 0 {
		t.Error("jitter with zero fraction should be 0")
	}
}
