// Package dispatch delivers outbound alerts through a bounded best-effort
// queue. Dispatch never blocks; a full queue drops the message and
// delivery failures are logged without retry.
package dispatch

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"BrainGuard/internal/ports"
)

// Config controls queue and worker sizing.
type Config struct {
	QueueSize       int
	Workers         int
	SendTimeout     time.Duration
	ShutdownTimeout time.Duration
}

// Stats is a copy of the delivery counters.
type Stats struct {
	Enqueued  uint64 `json:"enqueued"`
	Dropped   uint64 `json:"dropped"`
	Delivered uint64 `json:"delivered"`
	Failed    uint64 `json:"failed"`
}

// Queue hands alerts to a notifier in the background. Dispatch never
// blocks; a full or closed queue drops the message. Failed sends are
// logged and counted, never retried.
type Queue struct {
	notifier        ports.Notifier
	queue           chan string
	sendTimeout     time.Duration
	shutdownTimeout time.Duration
	logger          *slog.Logger

	mu      sync.RWMutex
	statsMu sync.Mutex
	stats   Stats
	closed  bool
	wg      sync.WaitGroup
}

var _ ports.AlertDispatcher = (*Queue)(nil)

// NewQueue starts the workers delivering to notifier.
func NewQueue(cfg Config, notifier ports.Notifier, logger *slog.Logger) *Queue {
	queueSize := cfg.QueueSize
	if queueSize <= 0 {
		queueSize = 64
	}
	workers := cfg.Workers
	if workers <= 0 {
		workers = 1
	}
	sendTimeout := cfg.SendTimeout
	if sendTimeout <= 0 {
		sendTimeout = 10 * time.Second
	}
	shutdownTimeout := cfg.ShutdownTimeout
	if shutdownTimeout <= 0 {
		shutdownTimeout = 2 * time.Second
	}
	if logger == nil {
		logger = slog.Default()
	}

	q := &Queue{
		notifier:        notifier,
		queue:           make(chan string, queueSize),
		sendTimeout:     sendTimeout,
		shutdownTimeout: shutdownTimeout,
		logger:          logger,
	}

	for i := 0; i < workers; i++ {
		q.wg.Add(1)
		go q.worker()
	}

	return q
}

// Dispatch enqueues message and reports whether it was accepted.
func (q *Queue) Dispatch(message string) bool {
	if q == nil || message == "" {
		return false
	}

	q.mu.RLock()
	defer q.mu.RUnlock()

	if q.closed {
		q.count(func(s *Stats) { s.Dropped++ })
		return false
	}

	select {
	case q.queue <- message:
		q.count(func(s *Stats) { s.Enqueued++ })
		return true
	default:
		q.count(func(s *Stats) { s.Dropped++ })
		q.logger.Warn("alert queue full, message dropped")
		return false
	}
}

// Close stops accepting messages and waits briefly for the queue to drain.
func (q *Queue) Close(ctx context.Context) {
	if q == nil {
		return
	}
	q.mu.Lock()
	if q.closed {
		q.mu.Unlock()
		return
	}
	q.closed = true
	close(q.queue)
	q.mu.Unlock()

	done := make(chan struct{})
	go func() {
		q.wg.Wait()
		close(done)
	}()

	if ctx == nil {
		ctx = context.Background()
	}
	waitCtx, cancel := context.WithTimeout(ctx, q.shutdownTimeout)
	defer cancel()

	select {
	case <-done:
	case <-waitCtx.Done():
		q.logger.Warn("alert queue closed before drain", "pending", len(q.queue))
	}
}

// Stats copies the current counters.
func (q *Queue) Stats() Stats {
	if q == nil {
		return Stats{}
	}
	q.statsMu.Lock()
	defer q.statsMu.Unlock()
	return q.stats
}

func (q *Queue) worker() {
	defer q.wg.Done()
	for msg := range q.queue {
		q.deliver(msg)
	}
}

func (q *Queue) deliver(msg string) {
	if q.notifier == nil {
		q.count(func(s *Stats) { s.Failed++ })
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), q.sendTimeout)
	defer cancel()

	if err := q.notifier.Send(ctx, msg); err != nil {
		q.logger.Error("alert delivery failed", "err", err)
		q.count(func(s *Stats) { s.Failed++ })
		return
	}
	q.count(func(s *Stats) { s.Delivered++ })
}

func (q *Queue) count(fn func(*Stats)) {
	q.statsMu.Lock()
	fn(&q.stats)
	q.statsMu.Unlock()
}
