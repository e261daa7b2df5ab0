package rules

import (
	"testing"
	"time"
)

func TestNextResetAtRollsToLocalMidnight(t *testing.T) {
	loc, err := time.LoadLocation("Africa/Lagos")
	if err != nil {
		t.Fatalf("load location: %v", err)
	}

	now := time.Date(2026, 3, 10, 22, 30, 0, 0, loc)
	reset := NextResetAt(now, loc)

	wantLocal := time.Date(2026, 3, 11, 0, 0, 0, 0, loc)
	if !reset.Equal(wantLocal) {
		t.Fatalf("unexpected reset: got %v want %v", reset, wantLocal.UTC())
	}
}

func TestNextResetAtNilLocationFallsBackToUTC(t *testing.T) {
	now := time.Date(2026, 3, 10, 23, 59, 0, 0, time.UTC)
	reset := NextResetAt(now, nil)
	want := time.Date(2026, 3, 11, 0, 0, 0, 0, time.UTC)
	if !reset.Equal(want) {
		t.Fatalf("unexpected reset: got %v want %v", reset, want)
	}
}

func TestAge(t *testing.T) {
	now := time.Date(2026, 6, 15, 12, 0, 0, 0, time.UTC)

	cases := []struct {
		name      string
		birthdate time.Time
		want      int
	}{
		{"birthday passed", time.Date(2000, 1, 20, 0, 0, 0, 0, time.UTC), 26},
		{"birthday today", time.Date(2000, 6, 15, 0, 0, 0, 0, time.UTC), 26},
		{"birthday upcoming", time.Date(2000, 11, 2, 0, 0, 0, 0, time.UTC), 25},
		{"zero birthdate", time.Time{}, 0},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if got := Age(tc.birthdate, now); got != tc.want {
				t.Fatalf("unexpected age: got %d want %d", got, tc.want)
			}
		})
	}
}

func TestNormalizeAgePreference(t *testing.T) {
	minAge, maxAge := NormalizeAgePreference(35, 21)
	if minAge != 21 || maxAge != 35 {
		t.Fatalf("inverted window not swapped: got %d..%d", minAge, maxAge)
	}

	minAge, maxAge = NormalizeAgePreference(14, 25)
	if minAge != MinAge {
		t.Fatalf("lower bound not clamped: got %d", minAge)
	}
	if maxAge != 25 {
		t.Fatalf("upper bound changed: got %d", maxAge)
	}
}

func TestDistanceKM(t *testing.T) {
	// Lagos to Abuja is roughly 536 km.
	got := DistanceKM(6.5244, 3.3792, 9.0765, 7.3986)
	if got < 520 || got > 550 {
		t.Fatalf("unexpected distance: got %f", got)
	}

	if d := DistanceKM(6.5244, 3.3792, 6.5244, 3.3792); d != 0 {
		t.Fatalf("distance to self should be zero, got %f", d)
	}
}

func TestIsOnline(t *testing.T) {
	now := time.Date(2026, 3, 10, 12, 0, 0, 0, time.UTC)

	if !IsOnline(now.Add(-2*time.Minute), now, DefaultOnlineWindow) {
		t.Fatal("expected online within window")
	}
	if IsOnline(now.Add(-10*time.Minute), now, DefaultOnlineWindow) {
		t.Fatal("expected offline outside window")
	}
	if IsOnline(time.Time{}, now, DefaultOnlineWindow) {
		t.Fatal("zero last-active must never be online")
	}
}

func TestBoostActive(t *testing.T) {
	now := time.Date(2026, 3, 10, 12, 0, 0, 0, time.UTC)
	future := now.Add(time.Hour)
	past := now.Add(-time.Hour)

	if !BoostActive(&future, now) {
		t.Fatal("future boost should be active")
	}
	if BoostActive(&past, now) {
		t.Fatal("expired boost should be inactive")
	}
	if BoostActive(nil, now) {
		t.Fatal("nil boost should be inactive")
	}
}
