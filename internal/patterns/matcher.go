package patterns

import (
	"strings"

	"BrainGuard/internal/domain"
)

// Matcher runs a pattern set against text.
type Matcher struct {
	set *Set
}

// NewMatcher binds a matcher to a compiled set; nil falls back to Default.
func NewMatcher(set *Set) *Matcher {
	if set == nil {
		set = Default()
	}
	return &Matcher{set: set}
}

// Set exposes the compiled tables the matcher runs.
func (m *Matcher) Set() *Set {
	return m.set
}

// Match returns, per tier, the unique lower-cased substrings found in text.
// Every tier is present in the result, possibly with an empty slice.
func (m *Matcher) Match(text string) domain.MatchResult {
	result := make(domain.MatchResult, len(m.set.tiers))
	for _, tier := range m.set.tiers {
		found := []string{}
		seen := map[string]struct{}{}
		for _, rule := range tier.Rules {
			for _, hit := range rule.expr.FindAllString(text, -1) {
				key := strings.ToLower(hit)
				if _, ok := seen[key]; ok {
					continue
				}
				seen[key] = struct{}{}
				found = append(found, key)
			}
		}
		result[tier.Name] = found
	}
	return result
}
