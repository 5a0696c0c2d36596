// Package scoring turns pattern matches and text statistics into severity
// and quality scores.
package scoring

import (
	"regexp"
	"strings"
	"unicode/utf8"

	"BrainGuard/internal/domain"
	"BrainGuard/internal/patterns"
)

const (
	baseQuality      = 50.0
	longTextBonus    = 10.0
	shortTextPenalty = 15.0
	longTextChars    = 1000
	shortTextChars   = 100
	educationalBonus = 20.0

	readabilityWeight = 0.3
	engagementWeight  = 0.2
	structureWeight   = 0.1
)

var (
	sentenceSplit  = regexp.MustCompile(`[.!?]+`)
	vowelRuns      = regexp.MustCompile(`(?i)[aeiouy]+`)
	interrogatives = regexp.MustCompile(`(?i)\b(why|how|what|when|where)\b`)
	listMarker     = regexp.MustCompile(`(?m)^(\d+\.|-|\*)`)
	headerMarker   = regexp.MustCompile(`(?m)^#{1,6}\s`)
)

// Score is the outcome of scoring one text.
type Score struct {
	Severity int
	Quality  domain.QualityMetrics
}

// Engine weighs matches using the tier weights and penalties of a pattern set.
type Engine struct {
	set *patterns.Set
}

// NewEngine builds an engine over set; nil uses the default tables.
func NewEngine(set *patterns.Set) *Engine {
	if set == nil {
		set = patterns.Default()
	}
	return &Engine{set: set}
}

// Score computes severity and quality for text and its matches.
func (e *Engine) Score(text string, matches domain.MatchResult) Score {
	return Score{
		Severity: e.Severity(matches),
		Quality:  e.Quality(text, matches),
	}
}

// Severity is the weighted match count, never below zero.
func (e *Engine) Severity(matches domain.MatchResult) int {
	score := 0
	for _, tier := range e.set.Tiers() {
		score += tier.Weight * matches.Count(tier.Name)
	}
	if score < 0 {
		return 0
	}
	return score
}

// Quality estimates the educational and readability value of text.
func (e *Engine) Quality(text string, matches domain.MatchResult) domain.QualityMetrics {
	length := utf8.RuneCountInString(text)
	metrics := domain.QualityMetrics{
		Readability: Readability(text),
		Engagement:  Engagement(text),
		Length:      length,
		Structure:   Structure(text),
	}

	var penalties float64
	for _, tier := range e.set.Tiers() {
		count := matches.Count(tier.Name)
		if tier.Educational && count > 0 {
			metrics.Educational = true
		}
		penalties += tier.Penalty * float64(count)
	}

	score := baseQuality
	switch {
	case length > longTextChars:
		score += longTextBonus
	case length < shortTextChars:
		score -= shortTextPenalty
	}
	score += metrics.Readability * readabilityWeight
	score += metrics.Engagement * engagementWeight
	if metrics.Educational {
		score += educationalBonus
	}
	score += metrics.Structure * structureWeight
	score -= penalties

	metrics.Overall = clamp(score, 0, 100)
	return metrics
}

// Readability approximates Flesch Reading Ease, clamped to [0,100].
// Text without sentences or words scores 0.
func Readability(text string) float64 {
	sentences := 0
	for _, s := range sentenceSplit.Split(text, -1) {
		if strings.TrimSpace(s) != "" {
			sentences++
		}
	}
	words := strings.Fields(text)
	if sentences == 0 || len(words) == 0 {
		return 0
	}

	avgWords := float64(len(words)) / float64(sentences)
	score := 206.835 - 1.015*avgWords - 84.6*averageSyllables(words)
	return clamp(score, 0, 100)
}

func averageSyllables(words []string) float64 {
	if len(words) == 0 {
		return 0
	}
	total := 0
	for _, w := range words {
		total += Syllables(w)
	}
	return float64(total) / float64(len(words))
}

// Syllables counts vowel runs in word, with a minimum of one.
func Syllables(word string) int {
	n := len(vowelRuns.FindAllStringIndex(word, -1))
	if n < 1 {
		return 1
	}
	return n
}

// Engagement is the density of questions, exclamations and interrogative
// words per 10,000 characters, capped at 100.
func Engagement(text string) float64 {
	length := utf8.RuneCountInString(text)
	if length == 0 {
		return 0
	}
	hits := len(interrogatives.FindAllStringIndex(text, -1))
	hits += strings.Count(text, "?") + strings.Count(text, "!")

	density := float64(hits) / float64(length) * 10000
	if density > 100 {
		return 100
	}
	return density
}

// Structure rewards paragraph breaks, lists, headers and links.
func Structure(text string) float64 {
	score := 0.0
	if strings.Contains(text, "\n\n") {
		score += 20
	}
	if listMarker.MatchString(text) {
		score += 20
	}
	if headerMarker.MatchString(text) {
		score += 20
	}
	if strings.Contains(text, "http") {
		score += 10
	}
	return clamp(score, 0, 100)
}

func clamp(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
