package scoring

import (
	"time"

	"github.com/google/uuid"

	"BrainGuard/internal/classify"
	"BrainGuard/internal/domain"
	"BrainGuard/internal/patterns"
	"BrainGuard/internal/wellness"
)

// Detector chains matching, scoring, wellness tracking and classification.
type Detector struct {
	matcher *patterns.Matcher
	engine  *Engine
	now     func() time.Time
}

// NewDetector wires a detector over one pattern set.
func NewDetector(set *patterns.Set) *Detector {
	if set == nil {
		set = patterns.Default()
	}
	return &Detector{
		matcher: patterns.NewMatcher(set),
		engine:  NewEngine(set),
		now:     time.Now,
	}
}

// Analyze scores text and applies the result to session. The call never
// blocks on I/O. A nil session scores without wellness tracking.
func (d *Detector) Analyze(text string, session *wellness.Session) domain.AnalysisResult {
	matches := d.matcher.Match(text)
	score := d.engine.Score(text, matches)

	well := wellness.Max
	if session != nil {
		well = session.Update(score.Severity)
	}

	tier := classify.Classify(score.Severity)
	return domain.AnalysisResult{
		ID:              uuid.Must(uuid.NewV7()).String(),
		Detected:        score.Severity > 0,
		Severity:        score.Severity,
		Quality:         score.Quality,
		Wellness:        well,
		Tier:            tier,
		DismissAfter:    classify.DismissTimeout(tier),
		Sentiment:       SentimentOf(text),
		Patterns:        matches,
		Recommendations: Recommend(matches, score.Quality),
		AnalyzedAt:      d.now().UTC(),
	}
}
