package scanner

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"path/filepath"
	"strings"

	"BrainGuard/internal/domain"
)

// ErrUnsupportedPage marks targets whose content cannot be observed, such
// as browser-internal pages. Analysis is skipped for them.
var ErrUnsupportedPage = errors.New("unsupported page")

var restrictedSchemes = map[string]struct{}{
	"about":            {},
	"chrome":           {},
	"chrome-extension": {},
	"chrome-search":    {},
	"devtools":         {},
	"edge":             {},
	"moz-extension":    {},
	"view-source":      {},
	"data":             {},
	"javascript":       {},
}

// Request carries everything an extractor needs for one observation.
type Request struct {
	Target     *url.URL
	Behavioral domain.Behavioral
}

// Extractor observes a page for a family of URL schemes (web, file, etc.).
type Extractor interface {
	Name() string
	Schemes() []string
	Extract(ctx context.Context, req Request) (domain.Page, error)
}

// Locator is implemented by extractors that can follow redirects
// without extracting the page.
type Locator interface {
	Locate(ctx context.Context, target *url.URL) (*url.URL, error)
}

// Registry keeps a mapping from URL schemes to extractor implementations.
type Registry struct {
	extractors map[string]Extractor
}

// NewRegistry builds an empty registry.
func NewRegistry() *Registry {
	return &Registry{extractors: map[string]Extractor{}}
}

// Register adds or replaces an extractor for each scheme it serves.
func (r *Registry) Register(ex Extractor) {
	if r.extractors == nil {
		r.extractors = map[string]Extractor{}
	}
	for _, scheme := range ex.Schemes() {
		r.extractors[strings.ToLower(scheme)] = ex
	}
}

// Resolve returns the extractor for a scheme or ErrUnsupportedPage.
func (r *Registry) Resolve(scheme string) (Extractor, error) {
	if ex, ok := r.extractors[strings.ToLower(scheme)]; ok {
		return ex, nil
	}
	return nil, fmt.Errorf("no extractor for scheme %q: %w", scheme, ErrUnsupportedPage)
}

// ParseTarget turns user input into a URL. Bare paths become file URLs and
// browser-internal schemes are rejected with ErrUnsupportedPage.
func ParseTarget(raw string) (*url.URL, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return nil, fmt.Errorf("empty target: %w", ErrUnsupportedPage)
	}

	u, err := url.Parse(raw)
	if err != nil || u.Scheme == "" || len(u.Scheme) == 1 {
		abs, absErr := filepath.Abs(raw)
		if absErr != nil {
			return nil, fmt.Errorf("resolve path %s: %w", raw, absErr)
		}
		return &url.URL{Scheme: "file", Path: filepath.ToSlash(abs)}, nil
	}

	scheme := strings.ToLower(u.Scheme)
	if _, restricted := restrictedSchemes[scheme]; restricted {
		return nil, fmt.Errorf("%s: %w", raw, ErrUnsupportedPage)
	}
	u.Scheme = scheme
	return u, nil
}
