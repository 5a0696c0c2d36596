package usecase

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"log/slog"
	"time"

	"golang.org/x/sync/errgroup"

	"BrainGuard/internal/domain"
	"BrainGuard/internal/ports"
	"BrainGuard/internal/trigger"
	"BrainGuard/internal/wellness"
)

// WatchConfig tunes the re-analysis producers.
type WatchConfig struct {
	ContentInterval time.Duration
	URLInterval     time.Duration
	Gap             time.Duration
}

// Watcher keeps one page under observation and re-analyses it whenever
// its content or final URL changes, or a manual trigger arrives.
type Watcher struct {
	pipeline  *Pipeline
	source    ports.PageSource
	cfg       WatchConfig
	debouncer *trigger.Debouncer
	saver     *Scheduler
	logger    *slog.Logger
	now       func() time.Time
}

// NewWatcher wires the producers around pipeline.
func NewWatcher(pipeline *Pipeline, source ports.PageSource, cfg WatchConfig, logger *slog.Logger) *Watcher {
	if cfg.ContentInterval <= 0 {
		cfg.ContentInterval = 5 * time.Second
	}
	if cfg.URLInterval <= 0 {
		cfg.URLInterval = time.Second
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Watcher{
		pipeline:  pipeline,
		source:    source,
		cfg:       cfg,
		debouncer: trigger.NewDebouncer(cfg.Gap),
		logger:    logger,
		now:       time.Now,
	}
}

// WithSaver runs the periodic analytics saver alongside the producers.
func (w *Watcher) WithSaver(saver *Scheduler) *Watcher {
	w.saver = saver
	return w
}

// Trigger requests a manual re-analysis; it is subject to the same gap.
func (w *Watcher) Trigger() bool {
	return w.debouncer.Offer(trigger.SourceManual)
}

// Stats exposes the debouncer counters.
func (w *Watcher) Stats() trigger.Stats {
	return w.debouncer.Stats()
}

// Run analyses target once, then keeps re-analysing on signals until ctx
// is cancelled. Every result, including the first, goes to onResult.
// An unsupported target fails the first analysis and Run returns its
// error without starting the producers.
func (w *Watcher) Run(ctx context.Context, target string, session *wellness.Session, onResult func(domain.PageAnalysis)) error {
	started := w.now()
	if err := w.analyze(ctx, target, session, started, onResult); Unsupported(err) {
		return fmt.Errorf("watch %s: %w", target, err)
	}

	g, gctx := errgroup.WithContext(ctx)

	content := trigger.NewPoller(trigger.SourceContent, w.cfg.ContentInterval, w.contentProbe(target), w.debouncer, w.logger)
	location := trigger.NewPoller(trigger.SourceURL, w.cfg.URLInterval, w.urlProbe(target), w.debouncer, w.logger)

	g.Go(func() error { return content.Run(gctx) })
	g.Go(func() error { return location.Run(gctx) })
	if w.saver != nil {
		g.Go(func() error {
			if err := w.saver.Start(gctx); err != nil {
				return err
			}
			<-gctx.Done()
			stopCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			return w.saver.Stop(stopCtx)
		})
	}
	g.Go(func() error {
		for {
			select {
			case <-gctx.Done():
				return nil
			case sig := <-w.debouncer.C():
				w.logger.Debug("re-analysis triggered", "source", sig.Source)
				_ = w.analyze(gctx, target, session, started, onResult)
			}
		}
	})

	return g.Wait()
}

func (w *Watcher) analyze(ctx context.Context, target string, session *wellness.Session, started time.Time, onResult func(domain.PageAnalysis)) error {
	behavioral := domain.Behavioral{TimeSpent: w.now().Sub(started), FocusTime: w.now().Sub(started)}
	result, err := w.pipeline.Analyze(ctx, target, behavioral, session)
	if err != nil {
		if ctx.Err() == nil && !Unsupported(err) {
			w.logger.Warn("watch analysis failed", "target", target, "err", err)
		}
		return err
	}
	if onResult != nil {
		onResult(result)
	}
	return nil
}

func (w *Watcher) contentProbe(target string) trigger.Probe {
	return func(ctx context.Context) (string, error) {
		page, err := w.source.Observe(ctx, target, domain.Behavioral{})
		if err != nil {
			return "", err
		}
		sum := sha256.Sum256([]byte(page.Content))
		return hex.EncodeToString(sum[:]), nil
	}
}

func (w *Watcher) urlProbe(target string) trigger.Probe {
	return func(ctx context.Context) (string, error) {
		return w.source.FinalURL(ctx, target)
	}
}
