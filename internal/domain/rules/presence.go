package rules

import "time"

// DefaultOnlineWindow is how recently an identity must have been active
// to count as online.
const DefaultOnlineWindow = 5 * time.Minute

func IsOnline(lastActiveAt, now time.Time, window time.Duration) bool {
	if window <= 0 {
		window = DefaultOnlineWindow
	}
	if lastActiveAt.IsZero() {
		return false
	}
	return now.Sub(lastActiveAt) < window
}
