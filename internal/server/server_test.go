package server

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"BrainGuard/internal/domain"
	"BrainGuard/internal/scanner"
	"BrainGuard/internal/scoring"
	"BrainGuard/internal/wellness"
)

type stubAnalyzer struct {
	detector *scoring.Detector
	pages    map[string]string
}

func (s stubAnalyzer) Analyze(_ context.Context, target string, behavioral domain.Behavioral, session *wellness.Session) (domain.PageAnalysis, error) {
	content, ok := s.pages[target]
	if !ok {
		return domain.PageAnalysis{}, fmt.Errorf("observe %s: %w", target, scanner.ErrUnsupportedPage)
	}
	page := domain.Page{URL: target, Content: content, Behavioral: behavioral}
	return domain.PageAnalysis{Page: page, Analysis: s.detector.Analyze(content, session)}, nil
}

type stubReporter struct{}

func (stubReporter) WeeklyReport(context.Context) domain.WeeklyReport {
	return domain.WeeklyReport{TotalSites: 7}
}

func newTestServer(t *testing.T) (*httptest.Server, *wellness.Session) {
	t.Helper()
	session := wellness.NewSession()
	s := New(Deps{
		Analyzer: stubAnalyzer{
			detector: scoring.NewDetector(nil),
			pages: map[string]string{
				"https://example.org/rot": "skibidi ohio rizz gyat sigma mewing grindset",
			},
		},
		Reporter: stubReporter{},
		Session:  session,
		Logger:   slog.New(slog.NewTextHandler(io.Discard, nil)),
	})
	srv := httptest.NewServer(s.Router())
	t.Cleanup(srv.Close)
	return srv, session
}

func post(t *testing.T, url, body string) *http.Response {
	t.Helper()
	resp, err := http.Post(url, "application/json", strings.NewReader(body))
	if err != nil {
		t.Fatalf("post %s: %v", url, err)
	}
	t.Cleanup(func() { resp.Body.Close() })
	return resp
}

func TestHealth(t *testing.T) {
	t.Parallel()

	srv, _ := newTestServer(t)
	resp, err := http.Get(srv.URL + "/health")
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("unexpected status %d", resp.StatusCode)
	}
}

func TestAnalyzeUpdatesWellness(t *testing.T) {
	t.Parallel()

	srv, session := newTestServer(t)
	resp := post(t, srv.URL+"/api/analyze", `{"url":"https://example.org/rot","timeSpent":30}`)
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("unexpected status %d", resp.StatusCode)
	}

	var body struct {
		State    string `json:"state"`
		Analysis struct {
			Severity int    `json:"severity"`
			Tier     string `json:"tier"`
		} `json:"analysis"`
		Display struct {
			Icon string `json:"icon"`
		} `json:"display"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		t.Fatalf("decode: %v", err)
	}
	// six basic words and one toxic: 6*2 + 3
	if body.State != "analyzed" || body.Analysis.Severity != 15 || body.Analysis.Tier != "critical" {
		t.Fatalf("unexpected body: %+v", body)
	}
	if body.Display.Icon == "" {
		t.Fatalf("expected display attributes for critical tier")
	}
	if session.Score() != 98 {
		t.Fatalf("expected wellness 98, got %v", session.Score())
	}

	reset := post(t, srv.URL+"/api/wellness/reset", "")
	var well wellnessResponse
	if err := json.NewDecoder(reset.Body).Decode(&well); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if well.Wellness != wellness.Max {
		t.Fatalf("expected reset to max, got %v", well.Wellness)
	}
}

func TestAnalyzeUnsupportedAndBadRequests(t *testing.T) {
	t.Parallel()

	srv, _ := newTestServer(t)

	resp := post(t, srv.URL+"/api/analyze", `{"url":"chrome://settings"}`)
	if resp.StatusCode != http.StatusUnprocessableEntity {
		t.Fatalf("expected 422, got %d", resp.StatusCode)
	}
	var body map[string]string
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if body["state"] != "unsupported" {
		t.Fatalf("unexpected body %v", body)
	}

	if resp := post(t, srv.URL+"/api/analyze", `{`); resp.StatusCode != http.StatusBadRequest {
		t.Fatalf("expected 400 for bad json, got %d", resp.StatusCode)
	}
	if resp := post(t, srv.URL+"/api/analyze", `{}`); resp.StatusCode != http.StatusBadRequest {
		t.Fatalf("expected 400 for missing url, got %d", resp.StatusCode)
	}
}

func TestWeeklyReportEndpoint(t *testing.T) {
	t.Parallel()

	srv, _ := newTestServer(t)
	resp, err := http.Get(srv.URL + "/api/report/weekly")
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	defer resp.Body.Close()

	var report domain.WeeklyReport
	if err := json.NewDecoder(resp.Body).Decode(&report); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if report.TotalSites != 7 {
		t.Fatalf("unexpected report %+v", report)
	}

	wresp, err := http.Get(srv.URL + "/api/wellness")
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	defer wresp.Body.Close()
	var well wellnessResponse
	if err := json.NewDecoder(wresp.Body).Decode(&well); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if well.Wellness != wellness.Max {
		t.Fatalf("expected untouched wellness, got %v", well.Wellness)
	}
}

func TestManualTrigger(t *testing.T) {
	t.Parallel()

	srv, session := newTestServer(t)

	if resp := post(t, srv.URL+"/api/trigger", ""); resp.StatusCode != http.StatusConflict {
		t.Fatalf("expected 409 before any analysis, got %d", resp.StatusCode)
	}

	if resp := post(t, srv.URL+"/api/analyze", `{"url":"https://example.org/rot"}`); resp.StatusCode != http.StatusOK {
		t.Fatalf("unexpected analyze status %d", resp.StatusCode)
	}

	resp := post(t, srv.URL+"/api/trigger", "")
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("expected re-analysis, got %d", resp.StatusCode)
	}
	var body analyzeResponse
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if body.State != "analyzed" || body.Page.URL != "https://example.org/rot" {
		t.Fatalf("unexpected body: %+v", body)
	}
	if session.Score() != 96 {
		t.Fatalf("expected two critical updates, got wellness %v", session.Score())
	}

	again := post(t, srv.URL+"/api/trigger", "")
	if again.StatusCode != http.StatusTooManyRequests {
		t.Fatalf("expected 429 inside the gap, got %d", again.StatusCode)
	}
	if session.Score() != 96 {
		t.Fatalf("debounced trigger must not analyse, wellness %v", session.Score())
	}
}
