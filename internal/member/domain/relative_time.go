package domain

import (
	"fmt"
	"time"
)

// FormatRelativeTime renders the elapsed time between now and t using
// the coarsest non-zero unit. A nil timestamp renders as "Never".
// The exact strings are part of the UI contract.
func FormatRelativeTime(t *time.Time, now time.Time) string {
	if t == nil {
		return "Never"
	}

	elapsed := now.Sub(*t)
	switch {
	case elapsed >= 24*time.Hour:
		return fmt.Sprintf("%dd ago", int(elapsed.Hours()/24))
	case elapsed >= time.Hour:
		return fmt.Sprintf("%dh ago", int(elapsed.Hours()))
	case elapsed >= time.Minute:
		return fmt.Sprintf("%dm ago", int(elapsed.Minutes()))
	default:
		return "Just now"
	}
}
