package domain

import (
	"testing"
	"time"
)

func TestFormatRelativeTime(t *testing.T) {
	now := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	at := func(d time.Duration) *time.Time {
		ts := now.Add(-d)
		return &ts
	}

	cases := []struct {
		name string
		t    *time.Time
		want string
	}{
		{"nil", nil, "Never"},
		{"45s", at(45 * time.Second), "Just now"},
		{"90s", at(90 * time.Second), "1m ago"},
		{"3700s", at(3700 * time.Second), "1h ago"},
		{"90000s", at(90000 * time.Second), "1d ago"},
		{"3 days", at(72 * time.Hour), "3d ago"},
		{"23h59m", at(24*time.Hour - time.Minute), "23h ago"},
		{"zero elapsed", at(0), "Just now"},
	}
	for _, tc := range cases {
		if got := FormatRelativeTime(tc.t, now); got != tc.want {
			t.Fatalf("%s: FormatRelativeTime = %q, want %q", tc.name, got, tc.want)
		}
	}
}
