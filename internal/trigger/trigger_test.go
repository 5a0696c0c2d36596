package trigger

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"sync"
	"testing"
	"time"
)

type fakeClock struct {
	mu  sync.Mutex
	now time.Time
}

func (c *fakeClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *fakeClock) Advance(d time.Duration) {
	c.mu.Lock()
	c.now = c.now.Add(d)
	c.mu.Unlock()
}

func TestDebouncerDropsInsideGap(t *testing.T) {
	t.Parallel()

	clock := &fakeClock{now: time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)}
	d := NewDebouncer(3 * time.Second)
	d.now = clock.Now

	if !d.Offer(SourceContent) {
		t.Fatalf("first signal should be accepted")
	}
	<-d.C()

	clock.Advance(time.Second)
	if d.Offer(SourceURL) {
		t.Fatalf("signal inside the gap should be dropped")
	}

	clock.Advance(2 * time.Second)
	if !d.Offer(SourceManual) {
		t.Fatalf("signal at the gap boundary should be accepted")
	}
	sig := <-d.C()
	if sig.Source != SourceManual {
		t.Fatalf("unexpected source %q", sig.Source)
	}

	if s := d.Stats(); s.Accepted != 2 || s.Dropped != 1 {
		t.Fatalf("unexpected stats: %+v", s)
	}
}

func TestDebouncerDropsWhileConsumerBusy(t *testing.T) {
	t.Parallel()

	clock := &fakeClock{now: time.Unix(0, 0)}
	d := NewDebouncer(time.Millisecond)
	d.now = clock.Now

	d.Offer(SourceContent)
	clock.Advance(time.Second)
	if d.Offer(SourceContent) {
		t.Fatalf("expected drop while the previous signal is unread")
	}
}

func TestPollerOffersOnChange(t *testing.T) {
	t.Parallel()

	var (
		mu     sync.Mutex
		tokens = []string{"a", "a", "b", "b"}
	)
	probe := func(context.Context) (string, error) {
		mu.Lock()
		defer mu.Unlock()
		if len(tokens) == 1 {
			return tokens[0], nil
		}
		v := tokens[0]
		tokens = tokens[1:]
		return v, nil
	}

	d := NewDebouncer(time.Hour)
	p := NewPoller(SourceContent, 5*time.Millisecond, probe, d, slog.New(slog.NewTextHandler(io.Discard, nil)))

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- p.Run(ctx) }()

	select {
	case sig := <-d.C():
		if sig.Source != SourceContent {
			t.Fatalf("unexpected source %q", sig.Source)
		}
	case <-time.After(2 * time.Second):
		t.Fatalf("no signal after token change")
	}

	cancel()
	if err := <-done; err != nil {
		t.Fatalf("Run returned %v", err)
	}
	if p.Changes() != 1 {
		t.Fatalf("expected one change, got %d", p.Changes())
	}
}

func TestPollerSeedsAfterInitialError(t *testing.T) {
	t.Parallel()

	var (
		mu    sync.Mutex
		calls int
	)
	probe := func(context.Context) (string, error) {
		mu.Lock()
		defer mu.Unlock()
		calls++
		if calls == 1 {
			return "", errors.New("offline")
		}
		return "stable", nil
	}

	d := NewDebouncer(time.Millisecond)
	p := NewPoller(SourceURL, 5*time.Millisecond, probe, d, slog.New(slog.NewTextHandler(io.Discard, nil)))

	ctx, cancel := context.WithTimeout(context.Background(), 60*time.Millisecond)
	defer cancel()
	if err := p.Run(ctx); err != nil {
		t.Fatalf("Run returned %v", err)
	}

	select {
	case sig := <-d.C():
		t.Fatalf("unexpected signal %+v for a stable token", sig)
	default:
	}
}
