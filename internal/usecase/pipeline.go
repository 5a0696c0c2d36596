package usecase

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"BrainGuard/internal/domain"
	"BrainGuard/internal/ports"
	"BrainGuard/internal/scanner"
	"BrainGuard/internal/scoring"
	"BrainGuard/internal/wellness"
)

// PipelineDeps wires all driven adapters into the analysis pipeline.
type PipelineDeps struct {
	Source     ports.PageSource
	Detector   *scoring.Detector
	Analytics  *Analytics
	Dispatcher ports.AlertDispatcher
	// Dashboard sends the weekly dashboard after every alert.
	Dashboard bool
	Logger    *slog.Logger
}

// Pipeline implements the observe, score, record and alert workflow.
type Pipeline struct {
	source     ports.PageSource
	detector   *scoring.Detector
	analytics  *Analytics
	dispatcher ports.AlertDispatcher
	dashboard  bool
	logger     *slog.Logger
}

// NewPipeline constructs the orchestration component.
func NewPipeline(deps PipelineDeps) *Pipeline {
	detector := deps.Detector
	if detector == nil {
		detector = scoring.NewDetector(nil)
	}
	logger := deps.Logger
	if logger == nil {
		logger = slog.Default()
	}
	return &Pipeline{
		source:     deps.Source,
		detector:   detector,
		analytics:  deps.Analytics,
		dispatcher: deps.Dispatcher,
		dashboard:  deps.Dashboard,
		logger:     logger,
	}
}

// Unsupported reports whether err means the page cannot be analysed.
func Unsupported(err error) bool {
	return errors.Is(err, scanner.ErrUnsupportedPage)
}

// Analyze observes target and evaluates it against session.
// Unsupported targets return an error matching Unsupported.
func (p *Pipeline) Analyze(ctx context.Context, target string, behavioral domain.Behavioral, session *wellness.Session) (domain.PageAnalysis, error) {
	page, err := p.Observe(ctx, target, behavioral)
	if err != nil {
		return domain.PageAnalysis{}, err
	}
	return p.Evaluate(ctx, page, session), nil
}

// Observe extracts the page without scoring it.
func (p *Pipeline) Observe(ctx context.Context, target string, behavioral domain.Behavioral) (domain.Page, error) {
	if p.source == nil {
		return domain.Page{}, fmt.Errorf("page source is not configured")
	}
	page, err := p.source.Observe(ctx, target, behavioral)
	if err != nil {
		if Unsupported(err) {
			p.logger.Info("analysis skipped", "target", target, "reason", err)
		}
		return domain.Page{}, fmt.Errorf("observe %s: %w", target, err)
	}
	return page, nil
}

// Evaluate scores an extracted page, records it in the session analytics
// and queues alerts for detections. Scoring itself never blocks.
func (p *Pipeline) Evaluate(ctx context.Context, page domain.Page, session *wellness.Session) domain.PageAnalysis {
	result := p.detector.Analyze(page.Content, session)

	var snapshot domain.SessionRecord
	if p.analytics != nil {
		p.analytics.Record(page, result)
		snapshot = p.analytics.Snapshot()
	}

	p.logger.Info("page analysed",
		"url", page.URL,
		"severity", result.Severity,
		"tier", result.Tier,
		"quality", result.Quality.Overall,
		"wellness", result.Wellness,
	)

	analysis := domain.PageAnalysis{Page: page, Analysis: result}
	if result.Detected {
		analysis.Alternatives = scoring.Alternatives(page.Domain)
		p.alert(ctx, page, result, snapshot)
	}

	return analysis
}

func (p *Pipeline) alert(ctx context.Context, page domain.Page, result domain.AnalysisResult, snapshot domain.SessionRecord) {
	if p.dispatcher == nil {
		return
	}
	if !p.dispatcher.Dispatch(FormatAlert(page, result, snapshot)) {
		p.logger.Warn("alert not queued", "url", page.URL)
		return
	}
	if !p.dashboard || p.analytics == nil {
		return
	}
	p.dispatcher.Dispatch(FormatDashboard(p.analytics.WeeklyReport(ctx)))
}
