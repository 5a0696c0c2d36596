// Package wellness keeps the running exposure score of a browsing session.
package wellness

import "sync"

const (
	// Max is the score of a fresh session.
	Max = 100.0
	// Min is the floor the score never drops below.
	Min = 0.0
)

// Session owns one wellness score. Callers decide its lifetime: one per
// watched page, one per server process, and so on.
type Session struct {
	mu    sync.Mutex
	score float64
}

// NewSession starts at Max.
func NewSession() *Session {
	return &Session{score: Max}
}

// Score reads the current value.
func (s *Session) Score() float64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.score
}

// Update applies one analysis' severity and returns the new score.
func (s *Session) Update(severity int) float64 {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.score = clamp(s.score + Delta(severity))
	return s.score
}

// Reset puts the session back to Max.
func (s *Session) Reset() {
	s.mu.Lock()
	s.score = Max
	s.mu.Unlock()
}

// Delta is the change a single analysis applies before clamping.
func Delta(severity int) float64 {
	switch {
	case severity > 10:
		return -2
	case severity > 5:
		return -1
	case severity == 0:
		return 0.5
	default:
		return 0
	}
}

func clamp(v float64) float64 {
	if v < Min {
		return Min
	}
	if v > Max {
		return Max
	}
	return v
}
