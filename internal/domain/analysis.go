package domain

import "time"

// Tier is the discrete warning level derived from a severity score.
type Tier string

const (
	TierNone     Tier = "none"
	TierLow      Tier = "low"
	TierMedium   Tier = "medium"
	TierHigh     Tier = "high"
	TierCritical Tier = "critical"
)

// MatchResult maps a pattern tier name to the unique substrings it matched.
type MatchResult map[string][]string

// Count returns how many unique matches a tier produced.
func (m MatchResult) Count(tier string) int {
	return len(m[tier])
}

// Flatten lists every match in the given tier order.
func (m MatchResult) Flatten(tiers ...string) []string {
	var out []string
	for _, tier := range tiers {
		out = append(out, m[tier]...)
	}
	return out
}

// QualityMetrics breaks the quality score into its contributing factors.
type QualityMetrics struct {
	Readability float64 `json:"readability"`
	Engagement  float64 `json:"engagement"`
	Educational bool    `json:"educational"`
	Length      int     `json:"length"`
	Structure   float64 `json:"structure"`
	Overall     float64 `json:"overall"`
}

// Sentiment is a word-list polarity estimate.
type Sentiment struct {
	Score int    `json:"score"`
	Label string `json:"sentiment"`
}

// AnalysisResult is produced fresh for every analysis of a page.
type AnalysisResult struct {
	ID              string         `json:"id"`
	Detected        bool           `json:"detected"`
	Severity        int            `json:"severity"`
	Quality         QualityMetrics `json:"quality"`
	Wellness        float64        `json:"wellness"`
	Tier            Tier           `json:"tier"`
	DismissAfter    time.Duration  `json:"dismissAfter"`
	Sentiment       Sentiment      `json:"sentiment"`
	Patterns        MatchResult    `json:"patterns"`
	Recommendations []string       `json:"recommendations"`
	AnalyzedAt      time.Time      `json:"analyzedAt"`
}

// PageAnalysis pairs an observed page with its analysis.
type PageAnalysis struct {
	Page     Page           `json:"page"`
	Analysis AnalysisResult `json:"analysis"`
	// Alternatives is filled for detections only.
	Alternatives []string `json:"alternatives,omitempty"`
}
