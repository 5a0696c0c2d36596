package app

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"golang.org/x/sync/errgroup"

	"BrainGuard/internal/config"
	"BrainGuard/internal/dispatch"
	"BrainGuard/internal/domain"
	"BrainGuard/internal/infrastructure/parser"
	"BrainGuard/internal/infrastructure/scheduler"
	"BrainGuard/internal/infrastructure/storage"
	"BrainGuard/internal/infrastructure/telegram"
	"BrainGuard/internal/logging"
	"BrainGuard/internal/patterns"
	"BrainGuard/internal/ports"
	"BrainGuard/internal/scanner"
	"BrainGuard/internal/scoring"
	"BrainGuard/internal/server"
	"BrainGuard/internal/usecase"
	"BrainGuard/internal/wellness"
)

// Application wires configs to use cases and lifecycle orchestration.
type Application struct {
	cfg       config.Config
	logger    *slog.Logger
	repo      *storage.SQLiteRepository
	queue     *dispatch.Queue
	source    *parser.Observer
	analytics *usecase.Analytics
	pipeline  *usecase.Pipeline
}

// New builds a runnable application instance. The caller must Close it.
func New(ctx context.Context, cfg config.Config, baseLogger *slog.Logger) (*Application, error) {
	if baseLogger == nil {
		baseLogger = logging.New(cfg.Logging.Level)
	}

	set, err := patterns.Load(cfg.Patterns.Path)
	if err != nil {
		return nil, fmt.Errorf("load patterns: %w", err)
	}

	repo, err := storage.Open(ctx, cfg.Storage.Path)
	if err != nil {
		return nil, fmt.Errorf("open session store: %w", err)
	}

	registry := scanner.NewRegistry()
	registry.Register(parser.NewWebExtractor(&http.Client{Timeout: cfg.Extract.Timeout}, baseLogger.With("component", "extractor.web")))
	registry.Register(parser.NewFileExtractor())
	source := parser.NewObserver(registry, baseLogger.With("component", "observer"))

	var dispatcher ports.AlertDispatcher
	var queue *dispatch.Queue
	tg := cfg.Notifications.Telegram
	if tg.Enabled() {
		notifier := telegram.NewNotifier(tg.APIBase, tg.BotToken, tg.ChatID, cfg.Dispatch.SendTimeout)
		queue = dispatch.NewQueue(dispatch.Config{
			QueueSize:   cfg.Dispatch.QueueSize,
			Workers:     cfg.Dispatch.Workers,
			SendTimeout: cfg.Dispatch.SendTimeout,
		}, notifier, baseLogger.With("component", "dispatch"))
		dispatcher = queue
	} else {
		baseLogger.Debug("telegram alerts disabled")
	}

	analytics := usecase.NewAnalytics(repo, baseLogger.With("component", "analytics"))
	pipeline := usecase.NewPipeline(usecase.PipelineDeps{
		Source:     source,
		Detector:   scoring.NewDetector(set),
		Analytics:  analytics,
		Dispatcher: dispatcher,
		Dashboard:  tg.SendDashboard(),
		Logger:     baseLogger.With("component", "pipeline"),
	})

	return &Application{
		cfg:       cfg,
		logger:    baseLogger,
		repo:      repo,
		queue:     queue,
		source:    source,
		analytics: analytics,
		pipeline:  pipeline,
	}, nil
}

// Close drains pending alerts and releases the store.
func (a *Application) Close(ctx context.Context) error {
	if a.queue != nil {
		a.queue.Close(ctx)
	}
	if a.repo != nil {
		return a.repo.Close()
	}
	return nil
}

// Analyze fetches targets concurrently, then scores them in input order
// against one wellness session. Unsupported targets are returned as
// skipped; other failures are joined into the error.
func (a *Application) Analyze(ctx context.Context, targets []string) ([]domain.PageAnalysis, []string, error) {
	pages := make([]domain.Page, len(targets))
	errs := make([]error, len(targets))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(max(1, a.cfg.Extract.Concurrency))
	for i, target := range targets {
		g.Go(func() error {
			pages[i], errs[i] = a.pipeline.Observe(gctx, target, domain.Behavioral{})
			return nil
		})
	}
	_ = g.Wait()

	session := wellness.NewSession()
	var (
		results []domain.PageAnalysis
		skipped []string
		failed  []error
	)
	for i, target := range targets {
		switch {
		case errs[i] == nil:
			results = append(results, a.pipeline.Evaluate(ctx, pages[i], session))
		case usecase.Unsupported(errs[i]):
			skipped = append(skipped, target)
		default:
			failed = append(failed, errs[i])
		}
	}

	if err := a.analytics.Save(ctx); err != nil {
		a.logger.Warn("session save failed", "err", err)
	}
	return results, skipped, errors.Join(failed...)
}

// Watch keeps target under observation until ctx is cancelled.
func (a *Application) Watch(ctx context.Context, target string, onResult func(domain.PageAnalysis)) (*usecase.Watcher, func() error) {
	w := usecase.NewWatcher(a.pipeline, a.source, usecase.WatchConfig{
		ContentInterval: a.cfg.Watch.ContentInterval,
		URLInterval:     a.cfg.Watch.URLInterval,
		Gap:             a.cfg.Watch.Debounce,
	}, a.logger.With("component", "watch")).WithSaver(a.saver())

	run := func() error {
		return w.Run(ctx, target, wellness.NewSession(), onResult)
	}
	return w, run
}

// Serve runs the HTTP API and the periodic saver until ctx is cancelled.
func (a *Application) Serve(ctx context.Context) error {
	srv := server.New(server.Deps{
		Analyzer:       a.pipeline,
		Reporter:       a.analytics,
		Session:        wellness.NewSession(),
		Logger:         a.logger.With("component", "server"),
		AnalyzeTimeout: a.cfg.Server.AnalyzeTimeout,
		TriggerGap:     a.cfg.Watch.Debounce,
	})
	saver := a.saver()

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error { return srv.ListenAndServe(gctx, a.cfg.Server.Addr) })
	g.Go(func() error {
		if err := saver.Start(gctx); err != nil {
			return err
		}
		<-gctx.Done()
		stopCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		return saver.Stop(stopCtx)
	})
	return g.Wait()
}

// SetAddr overrides the configured listen address.
func (a *Application) SetAddr(addr string) {
	a.cfg.Server.Addr = addr
}

// WeeklyReport aggregates the stored session log.
func (a *Application) WeeklyReport(ctx context.Context) domain.WeeklyReport {
	return a.analytics.WeeklyReport(ctx)
}

func (a *Application) saver() *usecase.Scheduler {
	driver := scheduler.NewIntervalScheduler(a.cfg.Storage.SaveInterval, false)
	return usecase.NewScheduler(driver, a.analytics, a.logger.With("component", "saver"))
}
