package usecase

import (
	"fmt"
	"strings"
	"time"

	"github.com/microcosm-cc/bluemonday"

	"BrainGuard/internal/classify"
	"BrainGuard/internal/domain"
	"BrainGuard/internal/patterns"
	"BrainGuard/internal/scoring"
)

const chartWidth = 20

// Page fields are attacker-controlled; strip markup before they land in
// a parse_mode=HTML message.
var textPolicy = bluemonday.StrictPolicy()

func clean(s string) string {
	return strings.TrimSpace(textPolicy.Sanitize(s))
}

// AlertAdvice is the one-line recommendation of an alert message.
func AlertAdvice(result domain.AnalysisResult) string {
	switch {
	case result.Quality.Overall < 30:
		return "Consider finding higher quality content"
	case result.Sentiment.Score < -2:
		return "This content may be affecting your mood negatively"
	case result.Quality.Overall > 70:
		return "Great choice! This appears to be quality content"
	default:
		return "Content quality is moderate - be mindful of your consumption"
	}
}

// FormatAlert renders the HTML alert for one detection.
func FormatAlert(page domain.Page, result domain.AnalysisResult, session domain.SessionRecord) string {
	level := strings.ToUpper(string(result.Tier))
	if d, ok := classify.DisplayFor(result.Tier); ok {
		level = d.Icon + " " + level
	}

	keywords := result.Patterns.Flatten(patterns.TierBasic, patterns.TierSocial, patterns.TierToxic, patterns.TierContextual)
	cleaned := make([]string, 0, len(keywords))
	for _, k := range keywords {
		cleaned = append(cleaned, clean(k))
	}

	title := clean(page.Title)
	if title == "" {
		title = clean(page.URL)
	}

	var b strings.Builder
	b.WriteString("🧠 <b>BrainGuard Alert</b>\n\n")
	fmt.Fprintf(&b, "🚨 <b>Threat Level:</b> %s\n", level)
	fmt.Fprintf(&b, "📊 <b>Content Quality:</b> %.0f/100\n", result.Quality.Overall)
	fmt.Fprintf(&b, "😊 <b>Sentiment:</b> %s\n\n", strings.ToUpper(result.Sentiment.Label))
	fmt.Fprintf(&b, "📄 <b>Page:</b> %s\n", title)
	fmt.Fprintf(&b, "🔗 <b>Domain:</b> %s\n", clean(page.Domain))
	fmt.Fprintf(&b, "🏷️ <b>Keywords:</b> %s\n", strings.Join(cleaned, ", "))
	fmt.Fprintf(&b, "📈 <b>Severity:</b> %d\n\n", result.Severity)
	b.WriteString("📊 <b>Session Stats:</b>\n")
	fmt.Fprintf(&b, "• Sites visited: %d\n", len(session.SitesVisited))
	fmt.Fprintf(&b, "• Brain rot detections: %d\n", session.Detections)
	fmt.Fprintf(&b, "• Time spent: %s\n\n", FormatDuration(page.Behavioral.TimeSpent))
	fmt.Fprintf(&b, "💡 <b>Recommendation:</b> %s\n", AlertAdvice(result))
	fmt.Fprintf(&b, "🔄 <b>Try instead:</b> %s\n\n", strings.Join(scoring.Alternatives(page.Domain), ", "))
	fmt.Fprintf(&b, "⏰ %s", result.AnalyzedAt.UTC().Format("2006-01-02 15:04:05 UTC"))
	return b.String()
}

// FormatDashboard renders the weekly follow-up message with a bar chart.
func FormatDashboard(report domain.WeeklyReport) string {
	var b strings.Builder
	b.WriteString("📈 <b>Weekly Analytics Dashboard</b>\n\n")
	fmt.Fprintf(&b, "🎯 <b>Improvement Score:</b> %.1f%%\n", report.Improvement)
	fmt.Fprintf(&b, "📊 <b>Sites Analyzed:</b> %d\n", report.TotalSites)
	fmt.Fprintf(&b, "⚠️ <b>Total Alerts:</b> %d\n", report.TotalDetections)

	if len(report.TopCategories) == 0 {
		return b.String()
	}

	b.WriteString("\n🏆 <b>Top Categories:</b>\n")
	for i, c := range report.TopCategories {
		fmt.Fprintf(&b, "%d. %s: %s\n", i+1, clean(c.Category), FormatDuration(c.Time))
	}
	b.WriteString("\n")
	b.WriteString(BarChart(report.TopCategories))
	return strings.TrimRight(b.String(), "\n")
}

// BarChart draws one fixed-width bar per category, scaled to the largest.
func BarChart(categories []domain.CategoryTime) string {
	var max time.Duration
	for _, c := range categories {
		if c.Time > max {
			max = c.Time
		}
	}

	lines := make([]string, 0, len(categories))
	for _, c := range categories {
		filled := 0
		if max > 0 {
			filled = int(float64(c.Time) / float64(max) * chartWidth)
		}
		bar := strings.Repeat("█", filled) + strings.Repeat("░", chartWidth-filled)
		lines = append(lines, fmt.Sprintf("%s: %s", clean(c.Category), bar))
	}
	return strings.Join(lines, "\n")
}

// FormatDuration prints "1h 5m" or "5m".
func FormatDuration(d time.Duration) string {
	if d < 0 {
		d = 0
	}
	hours := int(d / time.Hour)
	minutes := int((d % time.Hour) / time.Minute)
	if hours > 0 {
		return fmt.Sprintf("%dh %dm", hours, minutes)
	}
	return fmt.Sprintf("%dm", minutes)
}
