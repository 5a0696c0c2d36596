// Package server exposes the analysis core over a small JSON API.
package server

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"sync"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"BrainGuard/internal/classify"
	"BrainGuard/internal/domain"
	"BrainGuard/internal/trigger"
	"BrainGuard/internal/usecase"
	"BrainGuard/internal/wellness"
	"BrainGuard/pkg/logger"
)

const maxBodyBytes = 1 << 16

// Analyzer runs one page analysis.
type Analyzer interface {
	Analyze(ctx context.Context, target string, behavioral domain.Behavioral, session *wellness.Session) (domain.PageAnalysis, error)
}

// Reporter builds the weekly report.
type Reporter interface {
	WeeklyReport(ctx context.Context) domain.WeeklyReport
}

// Deps wires the server collaborators.
type Deps struct {
	Analyzer Analyzer
	Reporter Reporter
	Session  *wellness.Session
	Logger   *slog.Logger
	// AnalyzeTimeout bounds one page fetch + analysis.
	AnalyzeTimeout time.Duration
	// TriggerGap is the minimum spacing of manual re-analyses.
	TriggerGap time.Duration
}

// Server serves the popup replacement API.
type Server struct {
	analyzer Analyzer
	reporter Reporter
	session  *wellness.Session
	logger   *slog.Logger
	timeout  time.Duration
	manual   *trigger.Debouncer

	mu   sync.Mutex
	last *analyzeRequest
}

type analyzeRequest struct {
	URL string `json:"url"`
	// TimeSpent is the seconds already spent on the page, if known.
	TimeSpent    float64 `json:"timeSpent"`
	ScrollDepth  int     `json:"scrollDepth"`
	Interactions int     `json:"interactions"`
}

type analyzeResponse struct {
	State        string                `json:"state"`
	Page         domain.Page           `json:"page"`
	Analysis     domain.AnalysisResult `json:"analysis"`
	Display      *classify.Display     `json:"display,omitempty"`
	Alternatives []string              `json:"alternatives,omitempty"`
}

type wellnessResponse struct {
	Wellness float64 `json:"wellness"`
}

// New builds a server; a nil session gets a fresh one.
func New(deps Deps) *Server {
	session := deps.Session
	if session == nil {
		session = wellness.NewSession()
	}
	log := deps.Logger
	if log == nil {
		log = slog.Default()
	}
	timeout := deps.AnalyzeTimeout
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	return &Server{
		analyzer: deps.Analyzer,
		reporter: deps.Reporter,
		session:  session,
		logger:   log,
		timeout:  timeout,
		manual:   trigger.NewDebouncer(deps.TriggerGap),
	}
}

// Router returns the HTTP handler with all routes mounted.
func (s *Server) Router() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)

	r.Get("/health", func(w http.ResponseWriter, _ *http.Request) {
		writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	})

	r.Route("/api", func(r chi.Router) {
		r.Post("/analyze", s.handleAnalyze)
		r.Post("/trigger", s.handleTrigger)
		r.Get("/wellness", s.handleWellness)
		r.Post("/wellness/reset", s.handleWellnessReset)
		r.Get("/report/weekly", s.handleWeekly)
	})

	return r
}

// ListenAndServe serves on addr until ctx is cancelled, then shuts down.
func (s *Server) ListenAndServe(ctx context.Context, addr string) error {
	srv := &http.Server{
		Addr:              addr,
		Handler:           s.Router(),
		ReadHeaderTimeout: 10 * time.Second,
		WriteTimeout:      s.timeout + 10*time.Second,
		IdleTimeout:       60 * time.Second,
		ErrorLog:          logger.New(s.logger, "http"),
	}

	errCh := make(chan error, 1)
	go func() {
		s.logger.Info("server starting", "addr", addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		if err != nil {
			return fmt.Errorf("listen %s: %w", addr, err)
		}
		return nil
	case <-ctx.Done():
	}

	s.logger.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("shutdown: %w", err)
	}
	s.logger.Info("server stopped")
	return nil
}

func (s *Server) handleAnalyze(w http.ResponseWriter, r *http.Request) {
	if s.analyzer == nil {
		writeError(w, http.StatusServiceUnavailable, errors.New("analyzer not configured"))
		return
	}

	var req analyzeRequest
	if err := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes)).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, fmt.Errorf("decode request: %w", err))
		return
	}
	if req.URL == "" {
		writeError(w, http.StatusBadRequest, errors.New("url is required"))
		return
	}

	s.mu.Lock()
	s.last = &req
	s.mu.Unlock()

	s.analyze(w, r, req)
}

// handleTrigger re-analyses the last requested page. Triggers inside the
// gap are dropped with 429.
func (s *Server) handleTrigger(w http.ResponseWriter, r *http.Request) {
	if s.analyzer == nil {
		writeError(w, http.StatusServiceUnavailable, errors.New("analyzer not configured"))
		return
	}

	s.mu.Lock()
	last := s.last
	s.mu.Unlock()
	if last == nil {
		writeError(w, http.StatusConflict, errors.New("no page analysed yet"))
		return
	}

	if !s.manual.Offer(trigger.SourceManual) {
		writeJSON(w, http.StatusTooManyRequests, map[string]string{"state": "debounced"})
		return
	}
	<-s.manual.C()

	s.analyze(w, r, *last)
}

func (s *Server) analyze(w http.ResponseWriter, r *http.Request, req analyzeRequest) {
	ctx, cancel := context.WithTimeout(r.Context(), s.timeout)
	defer cancel()

	behavioral := domain.Behavioral{
		TimeSpent:    time.Duration(req.TimeSpent * float64(time.Second)),
		ScrollDepth:  req.ScrollDepth,
		Interactions: req.Interactions,
	}
	result, err := s.analyzer.Analyze(ctx, req.URL, behavioral, s.session)
	if err != nil {
		if usecase.Unsupported(err) {
			writeJSON(w, http.StatusUnprocessableEntity, map[string]string{"state": "unsupported"})
			return
		}
		s.logger.Warn("analyze failed", "url", req.URL, "err", err)
		writeError(w, http.StatusBadGateway, err)
		return
	}

	resp := analyzeResponse{
		State:        "analyzed",
		Page:         result.Page,
		Analysis:     result.Analysis,
		Alternatives: result.Alternatives,
	}
	if d, ok := classify.DisplayFor(result.Analysis.Tier); ok {
		resp.Display = &d
	}
	writeJSON(w, http.StatusOK, resp)
}

func (s *Server) handleWellness(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, wellnessResponse{Wellness: s.session.Score()})
}

func (s *Server) handleWellnessReset(w http.ResponseWriter, _ *http.Request) {
	s.session.Reset()
	writeJSON(w, http.StatusOK, wellnessResponse{Wellness: s.session.Score()})
}

func (s *Server) handleWeekly(w http.ResponseWriter, r *http.Request) {
	if s.reporter == nil {
		writeJSON(w, http.StatusOK, domain.WeeklyReport{TopCategories: []domain.CategoryTime{}, GeneratedAt: time.Now().UTC()})
		return
	}
	writeJSON(w, http.StatusOK, s.reporter.WeeklyReport(r.Context()))
}

func writeJSON(w http.ResponseWriter, code int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, code int, err error) {
	writeJSON(w, code, map[string]string{"error": err.Error()})
}
