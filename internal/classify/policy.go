// Package classify maps severity scores onto warning tiers.
package classify

import (
	"time"

	"BrainGuard/internal/domain"
)

// Severity thresholds; each is the inclusive lower bound of its tier.
const (
	ThresholdLow      = 1
	ThresholdMedium   = 5
	ThresholdHigh     = 10
	ThresholdCritical = 15
)

// Display holds presentation attributes of a tier for warning surfaces.
type Display struct {
	Title string `json:"title"`
	Color string `json:"color"`
	Icon  string `json:"icon"`
}

var displays = map[domain.Tier]Display{
	domain.TierLow:      {Title: "Low Risk Content", Color: "#4CAF50", Icon: "⚠️"},
	domain.TierMedium:   {Title: "Medium Risk Content", Color: "#FF9800", Icon: "🔶"},
	domain.TierHigh:     {Title: "High Risk Content", Color: "#F44336", Icon: "🚨"},
	domain.TierCritical: {Title: "Critical - Take a Break!", Color: "#9C27B0", Icon: "🆘"},
}

// Classify picks the tier for a severity. Every call is evaluated from
// scratch; the previous tier has no influence.
func Classify(severity int) domain.Tier {
	switch {
	case severity >= ThresholdCritical:
		return domain.TierCritical
	case severity >= ThresholdHigh:
		return domain.TierHigh
	case severity >= ThresholdMedium:
		return domain.TierMedium
	case severity >= ThresholdLow:
		return domain.TierLow
	default:
		return domain.TierNone
	}
}

// DismissTimeout is how long a warning for the tier stays on screen.
func DismissTimeout(tier domain.Tier) time.Duration {
	switch tier {
	case domain.TierCritical:
		return 30 * time.Second
	case domain.TierHigh:
		return 20 * time.Second
	default:
		return 15 * time.Second
	}
}

// DisplayFor returns the presentation attributes; TierNone has none.
func DisplayFor(tier domain.Tier) (Display, bool) {
	d, ok := displays[tier]
	return d, ok
}

// Rank orders tiers from none (0) to critical (4).
func Rank(tier domain.Tier) int {
	switch tier {
	case domain.TierLow:
		return 1
	case domain.TierMedium:
		return 2
	case domain.TierHigh:
		return 3
	case domain.TierCritical:
		return 4
	default:
		return 0
	}
}
