package parser

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"os"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"

	"BrainGuard/internal/domain"
	"BrainGuard/internal/scanner"
)

const userAgent = "BrainGuard/1.0"

// WebExtractor fetches pages over HTTP(S) and reads them with goquery.
type WebExtractor struct {
	client *http.Client
	reader *documentReader
	logger *slog.Logger
}

var (
	_ scanner.Extractor = (*WebExtractor)(nil)
	_ scanner.Locator   = (*WebExtractor)(nil)
)

// NewWebExtractor wires an HTTP client; a nil client gets a 20s timeout.
func NewWebExtractor(client *http.Client, logger *slog.Logger) *WebExtractor {
	if client == nil {
		client = &http.Client{Timeout: 20 * time.Second}
	}
	return &WebExtractor{client: client, reader: newDocumentReader(), logger: logger}
}

// Name identifies the strategy inside the registry.
func (w *WebExtractor) Name() string {
	return "web"
}

// Schemes lists the URL schemes served.
func (w *WebExtractor) Schemes() []string {
	return []string{"http", "https"}
}

// Extract downloads the page and builds a snapshot. The page URL is the
// final URL after redirects.
func (w *WebExtractor) Extract(ctx context.Context, req scanner.Request) (domain.Page, error) {
	httpReq, err := http.NewRequestWithContext(ctx, http.MethodGet, req.Target.String(), nil)
	if err != nil {
		return domain.Page{}, fmt.Errorf("build request: %w", err)
	}
	httpReq.Header.Set("User-Agent", userAgent)

	resp, err := w.client.Do(httpReq)
	if err != nil {
		return domain.Page{}, fmt.Errorf("request page: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return domain.Page{}, fmt.Errorf("%s returned %s", req.Target.Host, resp.Status)
	}
	if ct := resp.Header.Get("Content-Type"); ct != "" && !strings.Contains(ct, "html") && !strings.HasPrefix(ct, "text/") {
		return domain.Page{}, fmt.Errorf("content type %s: %w", ct, scanner.ErrUnsupportedPage)
	}

	doc, err := goquery.NewDocumentFromReader(resp.Body)
	if err != nil {
		return domain.Page{}, fmt.Errorf("parse document: %w", err)
	}

	final := req.Target
	if resp.Request != nil && resp.Request.URL != nil {
		final = resp.Request.URL
	}
	if w.logger != nil {
		w.logger.Debug("page fetched", "url", final.String(), "status", resp.StatusCode)
	}

	return w.reader.read(doc, final, req.Behavioral), nil
}

// Locate follows redirects with a HEAD request and returns the final URL.
// Servers rejecting HEAD are retried with GET and the body is dropped.
func (w *WebExtractor) Locate(ctx context.Context, target *url.URL) (*url.URL, error) {
	final, status, err := w.probe(ctx, http.MethodHead, target)
	if err != nil {
		return nil, err
	}
	if status == http.StatusMethodNotAllowed || status == http.StatusNotImplemented {
		final, _, err = w.probe(ctx, http.MethodGet, target)
		if err != nil {
			return nil, err
		}
	}
	return final, nil
}

func (w *WebExtractor) probe(ctx context.Context, method string, target *url.URL) (*url.URL, int, error) {
	req, err := http.NewRequestWithContext(ctx, method, target.String(), nil)
	if err != nil {
		return nil, 0, fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("User-Agent", userAgent)

	resp, err := w.client.Do(req)
	if err != nil {
		return nil, 0, fmt.Errorf("request page: %w", err)
	}
	_, _ = io.Copy(io.Discard, io.LimitReader(resp.Body, 1<<16))
	_ = resp.Body.Close()

	final := target
	if resp.Request != nil && resp.Request.URL != nil {
		final = resp.Request.URL
	}
	return final, resp.StatusCode, nil
}

// FileExtractor reads saved HTML pages from disk.
type FileExtractor struct {
	reader *documentReader
}

var _ scanner.Extractor = (*FileExtractor)(nil)

// NewFileExtractor builds a file-backed extractor.
func NewFileExtractor() *FileExtractor {
	return &FileExtractor{reader: newDocumentReader()}
}

// Name identifies the strategy inside the registry.
func (f *FileExtractor) Name() string {
	return "file"
}

// Schemes lists the URL schemes served.
func (f *FileExtractor) Schemes() []string {
	return []string{"file"}
}

// Extract parses the HTML file named by the target path.
func (f *FileExtractor) Extract(ctx context.Context, req scanner.Request) (domain.Page, error) {
	if err := ctx.Err(); err != nil {
		return domain.Page{}, err
	}

	file, err := os.Open(req.Target.Path)
	if err != nil {
		return domain.Page{}, fmt.Errorf("open page: %w", err)
	}
	defer file.Close()

	doc, err := goquery.NewDocumentFromReader(file)
	if err != nil {
		return domain.Page{}, fmt.Errorf("parse document: %w", err)
	}

	return f.reader.read(doc, req.Target, req.Behavioral), nil
}
