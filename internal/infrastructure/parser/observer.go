package parser

import (
	"context"
	"fmt"
	"log/slog"

	"BrainGuard/internal/domain"
	"BrainGuard/internal/ports"
	"BrainGuard/internal/scanner"
)

// Observer implements ports.PageSource via registered extractor strategies.
type Observer struct {
	registry *scanner.Registry
	logger   *slog.Logger
}

var _ ports.PageSource = (*Observer)(nil)

// NewObserver wires the extractor registry.
func NewObserver(reg *scanner.Registry, log *slog.Logger) *Observer {
	return &Observer{
		registry: reg,
		logger:   log,
	}
}

// Observe resolves the extractor for target and returns a page snapshot.
// Restricted and unknown schemes fail with scanner.ErrUnsupportedPage.
func (o *Observer) Observe(ctx context.Context, target string, behavioral domain.Behavioral) (domain.Page, error) {
	if o.registry == nil {
		return domain.Page{}, fmt.Errorf("extractor registry is not configured")
	}

	u, err := scanner.ParseTarget(target)
	if err != nil {
		return domain.Page{}, err
	}

	extractor, err := o.registry.Resolve(u.Scheme)
	if err != nil {
		return domain.Page{}, err
	}

	o.debug("observe page", "target", u.String(), "extractor", extractor.Name())
	page, err := extractor.Extract(ctx, scanner.Request{Target: u, Behavioral: behavioral})
	if err != nil {
		return domain.Page{}, fmt.Errorf("extract %s: %w", u.String(), err)
	}

	o.debug("page observed", "url", page.URL, "category", page.Category, "chars", len(page.Content))
	return page, nil
}

// FinalURL returns where target currently lands after redirects.
// Extractors without a cheap locator report the target itself.
func (o *Observer) FinalURL(ctx context.Context, target string) (string, error) {
	if o.registry == nil {
		return "", fmt.Errorf("extractor registry is not configured")
	}

	u, err := scanner.ParseTarget(target)
	if err != nil {
		return "", err
	}

	extractor, err := o.registry.Resolve(u.Scheme)
	if err != nil {
		return "", err
	}

	locator, ok := extractor.(scanner.Locator)
	if !ok {
		return u.String(), nil
	}
	final, err := locator.Locate(ctx, u)
	if err != nil {
		return "", fmt.Errorf("locate %s: %w", u.String(), err)
	}
	return final.String(), nil
}

func (o *Observer) debug(msg string, args ...interface{}) {
	if o.logger != nil {
		o.logger.Debug(msg, args...)
	}
}
