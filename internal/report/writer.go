// Package report renders analysis results and weekly reports for the CLI.
package report

import (
	"encoding/json"
	"fmt"
	"io"

	"BrainGuard/internal/domain"
)

// Format names accepted by New.
const (
	FormatMarkdown = "md"
	FormatJSON     = "json"
)

// Writer defines the interface for report output.
type Writer interface {
	WriteAnalyses(results []domain.PageAnalysis, skipped []string) error
	WriteWeekly(report domain.WeeklyReport) error
}

// New returns the writer for format.
func New(format string, output io.Writer) (Writer, error) {
	switch format {
	case FormatMarkdown, "markdown", "":
		return NewMarkdownWriter(output), nil
	case FormatJSON:
		return NewJSONWriter(output), nil
	default:
		return nil, fmt.Errorf("unknown report format %q", format)
	}
}

// JSONWriter outputs indented JSON for tool integration.
type JSONWriter struct {
	output io.Writer
}

var _ Writer = (*JSONWriter)(nil)

// NewJSONWriter creates a JSONWriter that outputs to the given writer.
func NewJSONWriter(output io.Writer) *JSONWriter {
	return &JSONWriter{output: output}
}

type analysesDocument struct {
	Results []domain.PageAnalysis `json:"results"`
	Skipped []string              `json:"skipped"`
}

// WriteAnalyses encodes results and skipped targets.
func (w *JSONWriter) WriteAnalyses(results []domain.PageAnalysis, skipped []string) error {
	if results == nil {
		results = []domain.PageAnalysis{}
	}
	if skipped == nil {
		skipped = []string{}
	}
	return w.encode(analysesDocument{Results: results, Skipped: skipped})
}

// WriteWeekly encodes the weekly report.
func (w *JSONWriter) WriteWeekly(report domain.WeeklyReport) error {
	return w.encode(report)
}

func (w *JSONWriter) encode(v any) error {
	enc := json.NewEncoder(w.output)
	enc.SetIndent("", "  ")
	if err := enc.Encode(v); err != nil {
		return fmt.Errorf("encode report: %w", err)
	}
	return nil
}
