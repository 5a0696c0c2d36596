package usecase

import (
	"context"
	"fmt"
	"log/slog"
	"sort"
	"sync"
	"time"

	"BrainGuard/internal/domain"
	"BrainGuard/internal/ports"
)

const (
	// Retention is how long session records are kept.
	Retention = 30 * 24 * time.Hour
	// ReportWindow is the span covered by the weekly report.
	ReportWindow = 7 * 24 * time.Hour

	topCategoryLimit   = 5
	improvementSamples = 7
)

var productiveCategories = map[string]struct{}{
	"education":    {},
	"productivity": {},
	"wellness":     {},
}

// Productive reports whether time in category counts as productive.
func Productive(category string) bool {
	_, ok := productiveCategories[category]
	return ok
}

// Analytics aggregates the running browsing session and derives reports
// from the persisted session log.
type Analytics struct {
	repo   ports.SessionRepository
	logger *slog.Logger
	now    func() time.Time

	mu         sync.Mutex
	start      time.Time
	sites      []string
	seen       map[string]struct{}
	detections int
	timeSpent  time.Duration
	productive time.Duration
	categories map[string]time.Duration
}

// NewAnalytics starts a fresh session aggregate.
func NewAnalytics(repo ports.SessionRepository, logger *slog.Logger) *Analytics {
	if logger == nil {
		logger = slog.Default()
	}
	a := &Analytics{repo: repo, logger: logger, now: time.Now}
	a.reset()
	return a
}

func (a *Analytics) reset() {
	a.start = a.now().UTC()
	a.sites = nil
	a.seen = make(map[string]struct{})
	a.detections = 0
	a.timeSpent = 0
	a.productive = 0
	a.categories = make(map[string]time.Duration)
}

// Record folds one analysed page into the session. The detection counter
// grows by the page severity.
func (a *Analytics) Record(page domain.Page, result domain.AnalysisResult) {
	a.mu.Lock()
	defer a.mu.Unlock()

	if page.Domain != "" {
		if _, ok := a.seen[page.Domain]; !ok {
			a.seen[page.Domain] = struct{}{}
			a.sites = append(a.sites, page.Domain)
		}
	}
	a.detections += result.Severity

	spent := page.Behavioral.TimeSpent
	if spent <= 0 {
		return
	}
	a.timeSpent += spent
	if page.Category != "" {
		a.categories[page.Category] += spent
	}
	if Productive(page.Category) {
		a.productive += spent
	}
}

// Snapshot copies the running aggregate as a session record.
func (a *Analytics) Snapshot() domain.SessionRecord {
	a.mu.Lock()
	defer a.mu.Unlock()

	categories := make(map[string]time.Duration, len(a.categories))
	for k, v := range a.categories {
		categories[k] = v
	}
	return domain.SessionRecord{
		StartTime:      a.start,
		SitesVisited:   append([]string(nil), a.sites...),
		Detections:     a.detections,
		TimeSpent:      a.timeSpent,
		ProductiveTime: a.productive,
		Categories:     categories,
		Timestamp:      a.now().UTC(),
	}
}

// Save appends the current snapshot and prunes records past retention.
func (a *Analytics) Save(ctx context.Context) error {
	if a.repo == nil {
		return nil
	}

	record := a.Snapshot()
	if err := a.repo.Append(ctx, record); err != nil {
		return fmt.Errorf("append session: %w", err)
	}

	removed, err := a.repo.Prune(ctx, record.Timestamp.Add(-Retention))
	if err != nil {
		return fmt.Errorf("prune sessions: %w", err)
	}
	if removed > 0 {
		a.logger.Debug("pruned session records", "count", removed)
	}
	return nil
}

// Reset starts a new session aggregate without touching stored records.
func (a *Analytics) Reset() {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.reset()
}

// WeeklyReport aggregates the trailing seven days. Storage failures
// degrade to an empty report.
func (a *Analytics) WeeklyReport(ctx context.Context) domain.WeeklyReport {
	now := a.now().UTC()
	report := domain.WeeklyReport{GeneratedAt: now, TopCategories: []domain.CategoryTime{}}
	if a.repo == nil {
		return report
	}

	all, err := a.repo.Since(ctx, now.Add(-Retention))
	if err != nil {
		a.logger.Warn("weekly report unavailable", "err", err)
		return report
	}

	return BuildWeeklyReport(all, now)
}

// BuildWeeklyReport derives the report from records ordered oldest first.
func BuildWeeklyReport(records []domain.SessionRecord, now time.Time) domain.WeeklyReport {
	report := domain.WeeklyReport{GeneratedAt: now, TopCategories: []domain.CategoryTime{}}

	weekAgo := now.Add(-ReportWindow)
	sites := make(map[string]struct{})
	categories := make(map[string]time.Duration)
	var (
		productive time.Duration
		week       int
	)
	for _, rec := range records {
		if !rec.Timestamp.After(weekAgo) {
			continue
		}
		week++
		for _, s := range rec.SitesVisited {
			sites[s] = struct{}{}
		}
		report.TotalDetections += rec.Detections
		productive += rec.ProductiveTime
		for cat, d := range rec.Categories {
			categories[cat] += d
		}
	}

	report.TotalSites = len(sites)
	if week > 0 {
		report.AvgProductiveTime = productive / time.Duration(week)
	}
	report.TopCategories = topCategories(categories, topCategoryLimit)
	report.Improvement = Improvement(records)
	return report
}

// Improvement compares mean detections of the last seven records with the
// seven before them, as a percentage drop. Fewer than fourteen records or
// a clean previous window yield 0.
func Improvement(records []domain.SessionRecord) float64 {
	if len(records) < 2*improvementSamples {
		return 0
	}
	recent := records[len(records)-improvementSamples:]
	previous := records[len(records)-2*improvementSamples : len(records)-improvementSamples]

	recentAvg := meanDetections(recent)
	previousAvg := meanDetections(previous)
	if previousAvg == 0 {
		return 0
	}
	return (previousAvg - recentAvg) / previousAvg * 100
}

func meanDetections(records []domain.SessionRecord) float64 {
	total := 0
	for _, r := range records {
		total += r.Detections
	}
	return float64(total) / float64(len(records))
}

func topCategories(categories map[string]time.Duration, limit int) []domain.CategoryTime {
	out := make([]domain.CategoryTime, 0, len(categories))
	for cat, d := range categories {
		out = append(out, domain.CategoryTime{Category: cat, Time: d})
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Time != out[j].Time {
			return out[i].Time > out[j].Time
		}
		return out[i].Category < out[j].Category
	})
	if len(out) > limit {
		out = out[:limit]
	}
	return out
}
