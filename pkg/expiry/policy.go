package expiry

import (
	"fmt"
	"time"
)

// Lifetime is the fixed visible lifetime of a post. Not renewable.
const Lifetime = 24 * time.Hour

func At(createdAt time.Time) time.Time {
	return createdAt.Add(Lifetime)
}

// IsLive uses a strict inequality: a post whose expiry equals now is
// already gone, so repeated reads at the boundary never flap.
func IsLive(expiresAt, now time.Time) bool {
	return now.Before(expiresAt)
}

func TimeLeft(expiresAt, now time.Time) string {
	diff := expiresAt.Sub(now)
	if diff <= 0 {
		return "Expired"
	}

	hours := int(diff / time.Hour)
	if hours > 0 {
		return fmt.Sprintf("%dh left", hours)
	}

	return fmt.Sprintf("%dm left", int(diff/time.Minute))
}

func RelativeTime(createdAt, now time.Time) string {
	diff := now.Sub(createdAt)

	minutes := int(diff / time.Minute)
	hours := int(diff / time.Hour)

	if minutes < 1 {
		return "just now"
	}
	if hours < 1 {
		return fmt.Sprintf("%dm ago", minutes)
	}
	if hours < 24 {
		return fmt.Sprintf("%dh ago", hours)
	}

	return "1d ago"
}
