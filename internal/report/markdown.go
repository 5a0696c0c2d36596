package report

import (
	"fmt"
	"io"
	"sort"
	"strconv"
	"strings"

	"github.com/nao1215/markdown"
	"github.com/nao1215/markdown/mermaid/piechart"
	"golang.org/x/text/cases"
	"golang.org/x/text/language"

	"BrainGuard/internal/classify"
	"BrainGuard/internal/domain"
	"BrainGuard/internal/patterns"
)

var titleCase = cases.Title(language.English)

var defaultTierOrder = patterns.Default().Names()

// tierOrder lists the matched tiers: known tiers in table order, then any
// tier from a custom pattern file sorted by name.
func tierOrder(matches domain.MatchResult) []string {
	order := make([]string, 0, len(matches))
	known := make(map[string]struct{}, len(defaultTierOrder))
	for _, tier := range defaultTierOrder {
		known[tier] = struct{}{}
		if len(matches[tier]) > 0 {
			order = append(order, tier)
		}
	}
	var extra []string
	for tier, hits := range matches {
		if _, ok := known[tier]; !ok && len(hits) > 0 {
			extra = append(extra, tier)
		}
	}
	sort.Strings(extra)
	return append(order, extra...)
}

// MarkdownWriter renders analyses and weekly reports as Markdown.
type MarkdownWriter struct {
	output io.Writer
}

var _ Writer = (*MarkdownWriter)(nil)

// NewMarkdownWriter creates a MarkdownWriter that outputs to the given writer.
func NewMarkdownWriter(output io.Writer) *MarkdownWriter {
	return &MarkdownWriter{output: output}
}

// WriteAnalyses outputs one section per analysed page plus the skipped targets.
func (w *MarkdownWriter) WriteAnalyses(results []domain.PageAnalysis, skipped []string) error {
	md := markdown.NewMarkdown(w.output)
	md.H1("BrainGuard Analysis")
	md.PlainText("")

	for _, pa := range results {
		w.writeAnalysis(md, pa)
	}

	if len(skipped) > 0 {
		md.H2("Skipped")
		md.PlainText("")
		md.Note("These pages cannot be analysed.")
		md.PlainText("")
		md.BulletList(skipped...)
		md.PlainText("")
	}

	return md.Build()
}

func (w *MarkdownWriter) writeAnalysis(md *markdown.Markdown, pa domain.PageAnalysis) {
	res := pa.Analysis
	heading := pa.Page.Title
	if heading == "" {
		heading = pa.Page.URL
	}
	md.H2(heading)
	md.PlainText("")

	md.Table(markdown.TableSet{
		Header: []string{"Property", "Value"},
		Rows: [][]string{
			{"URL", pa.Page.URL},
			{"Category", titleCase.String(pa.Page.Category)},
			{"Tier", TierLabel(res.Tier)},
			{"Severity", strconv.Itoa(res.Severity)},
			{"Quality", fmt.Sprintf("%.0f/100", res.Quality.Overall)},
			{"Wellness", fmt.Sprintf("%.1f", res.Wellness)},
			{"Sentiment", titleCase.String(res.Sentiment.Label)},
			{"Dismiss After", res.DismissAfter.String()},
		},
	})
	md.PlainText("")

	w.writeAlert(md, res)

	var rows [][]string
	for _, tier := range tierOrder(res.Patterns) {
		rows = append(rows, []string{titleCase.String(tier), strings.Join(res.Patterns[tier], ", ")})
	}
	if len(rows) > 0 {
		md.Table(markdown.TableSet{Header: []string{"Pattern Tier", "Matches"}, Rows: rows})
		md.PlainText("")
	}

	if len(res.Recommendations) > 0 {
		md.BulletList(res.Recommendations...)
		md.PlainText("")
	}

	if len(pa.Alternatives) > 0 {
		md.PlainText("Try instead:")
		md.PlainText("")
		md.BulletList(pa.Alternatives...)
		md.PlainText("")
	}
}

func (w *MarkdownWriter) writeAlert(md *markdown.Markdown, res domain.AnalysisResult) {
	switch res.Tier {
	case domain.TierCritical:
		md.Cautionf("Severity %d: take a break from this content.", res.Severity)
	case domain.TierHigh:
		md.Warningf("Severity %d: high brain rot exposure.", res.Severity)
	case domain.TierMedium:
		md.Importantf("Severity %d: noticeable brain rot patterns.", res.Severity)
	case domain.TierLow:
		md.Note("A few brain rot patterns were found.")
	default:
		md.Tip("No brain rot patterns detected.")
	}
	md.PlainText("")
}

// WriteWeekly outputs the weekly report with a category pie chart.
func (w *MarkdownWriter) WriteWeekly(report domain.WeeklyReport) error {
	md := markdown.NewMarkdown(w.output)
	md.H1("BrainGuard Weekly Report")
	md.PlainText("")

	md.Table(markdown.TableSet{
		Header: []string{"Metric", "Value"},
		Rows: [][]string{
			{"Sites Analyzed", strconv.Itoa(report.TotalSites)},
			{"Total Alerts", strconv.Itoa(report.TotalDetections)},
			{"Avg Productive Time", report.AvgProductiveTime.String()},
			{"Improvement", fmt.Sprintf("%.1f%%", report.Improvement)},
			{"Generated", report.GeneratedAt.Format("2006-01-02 15:04:05 MST")},
		},
	})
	md.PlainText("")

	md.H2("Top Categories")
	md.PlainText("")
	if len(report.TopCategories) == 0 {
		md.PlainText("No browsing time recorded this week.")
		md.PlainText("")
		return md.Build()
	}

	rows := make([][]string, len(report.TopCategories))
	chart := piechart.NewPieChart(
		io.Discard,
		piechart.WithTitle("Time by Category (minutes)"),
		piechart.WithShowData(true),
	)
	for i, c := range report.TopCategories {
		rows[i] = []string{strconv.Itoa(i + 1), titleCase.String(c.Category), c.Time.String()}
		chart.LabelAndIntValue(titleCase.String(c.Category), uint64(c.Time.Minutes()))
	}
	md.Table(markdown.TableSet{Header: []string{"#", "Category", "Time"}, Rows: rows})
	md.PlainText("")
	md.CodeBlocks(markdown.SyntaxHighlightMermaid, chart.String())

	return md.Build()
}

// TierLabel is the tier name with its display icon, e.g. "🔶 Medium".
func TierLabel(tier domain.Tier) string {
	label := titleCase.String(string(tier))
	if d, ok := classify.DisplayFor(tier); ok {
		return d.Icon + " " + label
	}
	return label
}
