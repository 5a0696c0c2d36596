package scoring

import (
	"strings"
	"unicode"

	"BrainGuard/internal/domain"
	"BrainGuard/internal/patterns"
)

var (
	positiveWords = map[string]struct{}{
		"good": {}, "great": {}, "excellent": {}, "amazing": {}, "wonderful": {}, "helpful": {},
	}
	negativeWords = map[string]struct{}{
		"bad": {}, "terrible": {}, "awful": {}, "stupid": {}, "waste": {}, "boring": {},
	}
)

// Recommendation texts shown next to an analysis.
const (
	AdviceTakeBreak    = "Consider taking a break from this type of content"
	AdviceHarmful      = "This content contains potentially harmful messaging"
	AdviceLowQuality   = "Look for higher quality, more educational content"
	AdviceEducational  = "Great choice! This content appears educational"
	heavyBasicExposure = 5
	lowQualityCutoff   = 30
)

// SentimentOf scores text by counting polar words.
func SentimentOf(text string) domain.Sentiment {
	score := 0
	for _, word := range strings.Fields(strings.ToLower(text)) {
		word = strings.TrimFunc(word, unicode.IsPunct)
		if _, ok := positiveWords[word]; ok {
			score++
		}
		if _, ok := negativeWords[word]; ok {
			score--
		}
	}

	label := "neutral"
	switch {
	case score > 0:
		label = "positive"
	case score < 0:
		label = "negative"
	}
	return domain.Sentiment{Score: score, Label: label}
}

// Recommend derives user-facing advice from matches and quality.
func Recommend(matches domain.MatchResult, quality domain.QualityMetrics) []string {
	advice := []string{}
	if matches.Count(patterns.TierBasic) > heavyBasicExposure {
		advice = append(advice, AdviceTakeBreak)
	}
	if matches.Count(patterns.TierToxic) > 0 {
		advice = append(advice, AdviceHarmful)
	}
	if quality.Overall < lowQualityCutoff {
		advice = append(advice, AdviceLowQuality)
	}
	if matches.Count(patterns.TierPositive) > 0 {
		advice = append(advice, AdviceEducational)
	}
	return advice
}

var (
	betterAlternatives = map[string][]string{
		"tiktok.com":    {"https://www.khanacademy.org", "https://www.coursera.org"},
		"youtube.com":   {"https://www.edx.org", "https://www.ted.com"},
		"instagram.com": {"https://medium.com", "https://www.goodreads.com"},
		"twitter.com":   {"https://news.ycombinator.com", "https://www.reddit.com/r/todayilearned"},
	}
	defaultAlternatives = []string{"https://www.wikipedia.org", "https://www.coursera.org", "https://www.khanacademy.org"}
)

// Alternatives suggests better sites for host. Subdomains share their
// parent's entry, so www.youtube.com resolves like youtube.com.
func Alternatives(host string) []string {
	host = strings.TrimSuffix(strings.ToLower(strings.TrimSpace(host)), ".")
	for host != "" {
		if alts, ok := betterAlternatives[host]; ok {
			return append([]string(nil), alts...)
		}
		dot := strings.IndexByte(host, '.')
		if dot < 0 {
			break
		}
		host = host[dot+1:]
	}
	return append([]string(nil), defaultAlternatives...)
}
