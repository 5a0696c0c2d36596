package scanner

import (
	"context"
	"errors"
	"strings"
	"testing"

	"BrainGuard/internal/domain"
)

type stubExtractor struct{}

func (stubExtractor) Name() string      { return "stub" }
func (stubExtractor) Schemes() []string { return []string{"http", "HTTPS"} }
func (stubExtractor) Extract(context.Context, Request) (domain.Page, error) {
	return domain.Page{}, nil
}

func TestParseTarget(t *testing.T) {
	t.Parallel()

	u, err := ParseTarget(" HTTPS://example.org/a?b=1 ")
	if err != nil {
		t.Fatalf("ParseTarget error: %v", err)
	}
	if u.Scheme != "https" || u.Host != "example.org" {
		t.Fatalf("unexpected url: %s", u)
	}

	u, err = ParseTarget("testdata/page.html")
	if err != nil {
		t.Fatalf("ParseTarget path error: %v", err)
	}
	if u.Scheme != "file" || !strings.HasSuffix(u.Path, "/testdata/page.html") {
		t.Fatalf("unexpected file url: %s", u)
	}
}

func TestParseTargetRejectsRestrictedPages(t *testing.T) {
	t.Parallel()

	for _, raw := range []string{"chrome://extensions", "about:blank", "chrome-extension://abc/popup.html", "view-source:https://x.org", ""} {
		if _, err := ParseTarget(raw); !errors.Is(err, ErrUnsupportedPage) {
			t.Fatalf("%q: expected ErrUnsupportedPage, got %v", raw, err)
		}
	}
}

func TestRegistryResolve(t *testing.T) {
	t.Parallel()

	reg := NewRegistry()
	reg.Register(stubExtractor{})

	for _, scheme := range []string{"http", "https", "HTTP"} {
		ex, err := reg.Resolve(scheme)
		if err != nil || ex.Name() != "stub" {
			t.Fatalf("Resolve(%s) = %v, %v", scheme, ex, err)
		}
	}

	if _, err := reg.Resolve("ftp"); !errors.Is(err, ErrUnsupportedPage) {
		t.Fatalf("expected ErrUnsupportedPage, got %v", err)
	}
}
