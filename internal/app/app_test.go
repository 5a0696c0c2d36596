package app

import (
	"context"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"testing"
	"time"

	"BrainGuard/internal/config"
	"BrainGuard/internal/infrastructure/storage"
)

const rotPage = `<html><head><title>rot</title></head><body><main>
<p>skibidi ohio rizz gyat sigma mewing grindset, no cap this is the content.</p>
</main></body></html>`

const calmPage = `<html><head><title>calm</title></head><body><main>
<p>A gentle walk through the botanical garden on a quiet afternoon.</p>
</main></body></html>`

func testConfig() config.Config {
	return config.Config{
		Logging: config.LoggingConfig{Level: "error"},
		Storage: config.StorageConfig{Path: storage.MemoryDSN, SaveInterval: time.Hour},
		Dispatch: config.DispatchConfig{
			QueueSize:   4,
			Workers:     1,
			SendTimeout: time.Second,
		},
		Watch: config.WatchConfig{
			ContentInterval: 20 * time.Millisecond,
			URLInterval:     20 * time.Millisecond,
			Debounce:        10 * time.Millisecond,
		},
		Server:  config.ServerConfig{Addr: "127.0.0.1:0", AnalyzeTimeout: time.Second},
		Extract: config.ExtractConfig{Timeout: 2 * time.Second, Concurrency: 2},
	}
}

func TestAnalyzeBatch(t *testing.T) {
	t.Parallel()

	mux := http.NewServeMux()
	mux.HandleFunc("/rot", func(w http.ResponseWriter, _ *http.Request) {
		_, _ = io.WriteString(w, rotPage)
	})
	mux.HandleFunc("/calm", func(w http.ResponseWriter, _ *http.Request) {
		_, _ = io.WriteString(w, calmPage)
	})
	srv := httptest.NewServer(mux)
	t.Cleanup(srv.Close)

	ctx := context.Background()
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	application, err := New(ctx, testConfig(), logger)
	if err != nil {
		t.Fatalf("new: %v", err)
	}
	t.Cleanup(func() { _ = application.Close(ctx) })

	missing := filepath.Join(t.TempDir(), "missing.html")
	results, skipped, err := application.Analyze(ctx, []string{
		srv.URL + "/rot",
		"chrome://settings",
		srv.URL + "/calm",
		missing,
	})
	if err == nil {
		t.Fatalf("expected error for missing file")
	}
	if len(skipped) != 1 || skipped[0] != "chrome://settings" {
		t.Fatalf("unexpected skipped %v", skipped)
	}
	if len(results) != 2 {
		t.Fatalf("expected 2 results, got %d", len(results))
	}
	if results[0].Page.URL != srv.URL+"/rot" || !results[0].Analysis.Detected {
		t.Fatalf("expected rot page first and detected: %+v", results[0].Analysis)
	}
	if results[1].Analysis.Detected {
		t.Fatalf("calm page should be clean: %+v", results[1].Analysis)
	}
	if results[1].Analysis.Wellness != results[0].Analysis.Wellness+0.5 {
		t.Fatalf("clean page should recover half a point: %v vs %v",
			results[1].Analysis.Wellness, results[0].Analysis.Wellness)
	}

	report := application.WeeklyReport(ctx)
	if report.TotalSites != 1 {
		t.Fatalf("expected one stored site, got %d", report.TotalSites)
	}
	if report.TotalDetections != results[0].Analysis.Severity {
		t.Fatalf("expected detections %d, got %d", results[0].Analysis.Severity, report.TotalDetections)
	}
}

func TestNewRejectsMissingPatternFile(t *testing.T) {
	t.Parallel()

	cfg := testConfig()
	cfg.Patterns.Path = filepath.Join(t.TempDir(), "none.yaml")
	if _, err := New(context.Background(), cfg, nil); err == nil {
		t.Fatalf("expected pattern load error")
	}
}
