package classify

import (
	"testing"
	"time"

	"BrainGuard/internal/domain"
)

func TestClassifyThresholds(t *testing.T) {
	t.Parallel()

	cases := []struct {
		severity int
		want     domain.Tier
	}{
		{0, domain.TierNone},
		{-3, domain.TierNone},
		{1, domain.TierLow},
		{4, domain.TierLow},
		{5, domain.TierMedium},
		{9, domain.TierMedium},
		{10, domain.TierHigh},
		{14, domain.TierHigh},
		{15, domain.TierCritical},
		{16, domain.TierCritical},
		{400, domain.TierCritical},
	}
	for _, tc := range cases {
		if got := Classify(tc.severity); got != tc.want {
			t.Fatalf("Classify(%d) = %s, want %s", tc.severity, got, tc.want)
		}
	}
}

func TestDismissTimeout(t *testing.T) {
	t.Parallel()

	if got := DismissTimeout(Classify(16)); got != 30*time.Second {
		t.Fatalf("critical timeout = %s", got)
	}
	if got := DismissTimeout(domain.TierHigh); got != 20*time.Second {
		t.Fatalf("high timeout = %s", got)
	}
	for _, tier := range []domain.Tier{domain.TierMedium, domain.TierLow, domain.TierNone} {
		if got := DismissTimeout(tier); got != 15*time.Second {
			t.Fatalf("%s timeout = %s", tier, got)
		}
	}
}

func TestNoHysteresis(t *testing.T) {
	t.Parallel()

	seq := []int{20, 0, 12, 1, 7}
	want := []domain.Tier{domain.TierCritical, domain.TierNone, domain.TierHigh, domain.TierLow, domain.TierMedium}
	for i, s := range seq {
		if got := Classify(s); got != want[i] {
			t.Fatalf("step %d: got %s, want %s", i, got, want[i])
		}
	}
}

func TestDisplayFor(t *testing.T) {
	t.Parallel()

	if _, ok := DisplayFor(domain.TierNone); ok {
		t.Fatalf("none tier must not have a display")
	}
	d, ok := DisplayFor(domain.TierCritical)
	if !ok || d.Color != "#9C27B0" {
		t.Fatalf("unexpected critical display: %+v", d)
	}
	if Rank(domain.TierCritical) <= Rank(domain.TierHigh) {
		t.Fatalf("critical must outrank high")
	}
}
