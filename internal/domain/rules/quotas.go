package rules

import "time"

const (
	FreeDailySwipes     = 50
	FreeDailySuperLikes = 1

	GoldDailySwipes     = 200
	GoldDailySuperLikes = 5

	PlatinumDailySwipes     = 500
	PlatinumDailySuperLikes = 10
)

// NextResetAt returns the next local-midnight boundary at which daily
// allowances replenish, expressed in UTC.
func NextResetAt(now time.Time, loc *time.Location) time.Time {
	if loc == nil {
		loc = time.UTC
	}
	local := now.In(loc)
	next := time.Date(local.Year(), local.Month(), local.Day()+1, 0, 0, 0, 0, loc)
	return next.UTC()
}

func BoostActive(boostUntil *time.Time, now time.Time) bool {
	return boostUntil != nil && boostUntil.After(now)
}
