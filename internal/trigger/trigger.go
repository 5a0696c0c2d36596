// Package trigger turns page observations into re-analysis signals.
//
// Pollers periodically read a token from a probe (a content hash, the
// final URL after redirects) and offer a signal to a shared Debouncer
// whenever the token changes. The Debouncer forwards at most one signal
// per gap; signals arriving inside the gap are dropped, not queued.
package trigger

import (
	"context"
	"log/slog"
	"sync"
	"sync/atomic"
	"time"
)

// Source names.
const (
	SourceContent = "content"
	SourceURL     = "url"
	SourceManual  = "manual"
)

// DefaultGap is the minimum spacing between accepted signals.
const DefaultGap = 3 * time.Second

// Signal asks the consumer to re-analyse the page.
type Signal struct {
	Source string
	At     time.Time
}

// Stats are point-in-time counters.
type Stats struct {
	Accepted int64 `json:"accepted"`
	Dropped  int64 `json:"dropped"`
}

// Debouncer admits one signal per gap and hands it to the consumer.
type Debouncer struct {
	gap time.Duration
	now func() time.Time
	out chan Signal

	mu   sync.Mutex
	last time.Time

	accepted atomic.Int64
	dropped  atomic.Int64
}

// NewDebouncer returns a debouncer; gap <= 0 uses DefaultGap.
func NewDebouncer(gap time.Duration) *Debouncer {
	if gap <= 0 {
		gap = DefaultGap
	}
	return &Debouncer{gap: gap, now: time.Now, out: make(chan Signal, 1)}
}

// C delivers accepted signals.
func (d *Debouncer) C() <-chan Signal { return d.out }

// Offer submits a signal from source and reports whether it was accepted.
func (d *Debouncer) Offer(source string) bool {
	d.mu.Lock()
	now := d.now()
	if !d.last.IsZero() && now.Sub(d.last) < d.gap {
		d.mu.Unlock()
		d.dropped.Add(1)
		return false
	}

	select {
	case d.out <- Signal{Source: source, At: now}:
		d.last = now
		d.mu.Unlock()
		d.accepted.Add(1)
		return true
	default:
		// Consumer still busy with the previous signal.
		d.mu.Unlock()
		d.dropped.Add(1)
		return false
	}
}

// Stats returns the current counters.
func (d *Debouncer) Stats() Stats {
	return Stats{Accepted: d.accepted.Load(), Dropped: d.dropped.Load()}
}

// Probe reads the current change token. Equal tokens mean no change.
type Probe func(ctx context.Context) (string, error)

// Poller polls a probe and offers a signal whenever its token changes.
type Poller struct {
	source   string
	interval time.Duration
	probe    Probe
	sink     *Debouncer
	logger   *slog.Logger

	checks  atomic.Int64
	changes atomic.Int64
	errors  atomic.Int64
}

// NewPoller builds a producer; interval <= 0 defaults to one second.
func NewPoller(source string, interval time.Duration, probe Probe, sink *Debouncer, logger *slog.Logger) *Poller {
	if interval <= 0 {
		interval = time.Second
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Poller{
		source:   source,
		interval: interval,
		probe:    probe,
		sink:     sink,
		logger:   logger,
	}
}

// Run blocks until ctx is cancelled. The first successful probe seeds the
// token without emitting. Probe errors are logged and the token is kept.
func (p *Poller) Run(ctx context.Context) error {
	var (
		token  string
		seeded bool
	)
	if v, err := p.probe(ctx); err != nil {
		p.errors.Add(1)
		p.logger.Warn("trigger: initial probe failed", "source", p.source, "err", err)
	} else {
		token, seeded = v, true
	}

	ticker := time.NewTicker(p.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return nil
		case <-ticker.C:
			p.checks.Add(1)
			cur, err := p.probe(ctx)
			if err != nil {
				if ctx.Err() != nil {
					return nil
				}
				p.errors.Add(1)
				p.logger.Warn("trigger: probe failed", "source", p.source, "err", err)
				continue
			}
			if !seeded {
				token, seeded = cur, true
				continue
			}
			if cur == token {
				continue
			}
			token = cur
			p.changes.Add(1)
			accepted := p.sink.Offer(p.source)
			p.logger.Debug("trigger: change detected", "source", p.source, "accepted", accepted)
		}
	}
}

// Changes reports how many token changes were seen.
func (p *Poller) Changes() int64 { return p.changes.Load() }
