package streak

import (
	"testing"
	"time"
)

func day(offset int) time.Time {
	base := time.Date(2026, 3, 1, 10, 30, 0, 0, time.UTC)
	return base.AddDate(0, 0, offset)
}

func ptr(t time.Time) *time.Time {
	return &t
}

func TestUpdate_FirstCompletion(t *testing.T) {
	got := Update(State{}, day(0))

	if got.Current != 1 {
		t.Errorf("expected current streak 1, got %d", got.Current)
	}
	if got.Longest != 1 {
		t.Errorf("expected longest streak 1, got %d", got.Longest)
	}
	if got.LastCompleted == nil || !got.LastCompleted.Equal(day(0)) {
		t.Errorf("expected last completed %v, got %v", day(0), got.LastCompleted)
	}
}

func TestUpdate_ConsecutiveDay(t *testing.T) {
	tests := []struct {
		name        string
		current     int
		longest     int
		wantCurrent int
		wantLongest int
	}{
		{"continues from one", 1, 1, 2, 2},
		{"continues mid streak", 4, 4, 5, 5},
		{"longest preserved when larger", 2, 9, 3, 9},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := State{Current: tt.current, Longest: tt.longest, LastCompleted: ptr(day(0))}
			got := Update(s, day(1))
			if got.Current != tt.wantCurrent {
				t.Errorf("current = %d, want %d", got.Current, tt.wantCurrent)
			}
			if got.Longest != tt.wantLongest {
				t.Errorf("longest = %d, want %d", got.Longest, tt.wantLongest)
			}
		})
	}
}

func TestUpdate_ConsecutiveDayAcrossSpringForward(t *testing.T) {
	loc, err := time.LoadLocation("America/New_York")
	if err != nil {
		t.Fatalf("LoadLocation() error = %v", err)
	}

	// 2026-03-08 is only 23 hours long; the next calendar day must still
	// continue the streak.
	last := time.Date(2026, 3, 8, 10, 30, 0, 0, loc)
	s := State{Current: 3, Longest: 3, LastCompleted: &last}

	got := Update(s, time.Date(2026, 3, 9, 10, 30, 0, 0, loc))
	if got.Current != 4 {
		t.Errorf("current = %d, want 4", got.Current)
	}
	if got.Longest != 4 {
		t.Errorf("longest = %d, want 4", got.Longest)
	}
}

func TestUpdate_SameDayIsIdempotent(t *testing.T) {
	s := Update(State{}, day(0))
	again := Update(s, day(0))

	if again.Current != s.Current || again.Longest != s.Longest {
		t.Errorf("second same-day update changed streak: %+v -> %+v", s, again)
	}

	// Same calendar day, different clock time.
	later := Update(again, day(0).Add(6*time.Hour))
	if later.Current != s.Current {
		t.Errorf("same-day later completion changed current streak to %d", later.Current)
	}
}

func TestUpdate_GapRestartsAtOne(t *testing.T) {
	s := State{Current: 5, Longest: 5, LastCompleted: ptr(day(0))}
	got := Update(s, day(3))

	if got.Current != 1 {
		t.Errorf("expected gap to restart streak at 1, got %d", got.Current)
	}
	if got.Longest != 5 {
		t.Errorf("expected longest to remain 5, got %d", got.Longest)
	}
	if got.LastCompleted == nil || !got.LastCompleted.Equal(day(3)) {
		t.Errorf("expected last completed to advance to %v, got %v", day(3), got.LastCompleted)
	}
}

func TestUpdate_BackwardClockIsNoOp(t *testing.T) {
	s := State{Current: 3, Longest: 4, LastCompleted: ptr(day(5))}
	got := Update(s, day(2))

	if got.Current != 3 || got.Longest != 4 {
		t.Errorf("backward-clock update changed streak: %+v", got)
	}
	if !got.LastCompleted.Equal(day(5)) {
		t.Errorf("backward-clock update moved last completed to %v", got.LastCompleted)
	}
}

func TestUpdate_LongestNeverDecreases(t *testing.T) {
	s := State{}
	days := []int{0, 1, 2, 5, 6, 6, 10}

	prevLongest := 0
	for _, d := range days {
		s = Update(s, day(d))
		if s.Longest < prevLongest {
			t.Fatalf("longest decreased from %d to %d after day %d", prevLongest, s.Longest, d)
		}
		if s.Current < 0 {
			t.Fatalf("current streak went negative after day %d", d)
		}
		prevLongest = s.Longest
	}

	if s.Longest != 3 {
		t.Errorf("expected longest 3 after sequence, got %d", s.Longest)
	}
}

func TestResetIfNeeded(t *testing.T) {
	tests := []struct {
		name        string
		state       State
		now         time.Time
		wantCurrent int
	}{
		{"never completed", State{}, day(4), 0},
		{"completed today", State{Current: 2, Longest: 2, LastCompleted: ptr(day(4))}, day(4), 2},
		{"completed yesterday", State{Current: 2, Longest: 2, LastCompleted: ptr(day(3))}, day(4), 2},
		{"missed a full day", State{Current: 2, Longest: 2, LastCompleted: ptr(day(2))}, day(4), 0},
		{"missed many days", State{Current: 7, Longest: 7, LastCompleted: ptr(day(0))}, day(30), 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := ResetIfNeeded(tt.state, tt.now)
			if got.Current != tt.wantCurrent {
				t.Errorf("current = %d, want %d", got.Current, tt.wantCurrent)
			}
			if got.Longest != tt.state.Longest {
				t.Errorf("longest changed from %d to %d", tt.state.Longest, got.Longest)
			}
		})
	}
}

// Scenario: complete day 1 and day 2, miss day 3 entirely, sweep on day 4.
func TestStreak_MissedDayScenario(t *testing.T) {
	s := Update(State{}, day(1))
	if s.Current != 1 || s.Longest != 1 {
		t.Fatalf("after day 1: %+v", s)
	}

	s = Update(s, day(2))
	if s.Current != 2 || s.Longest != 2 {
		t.Fatalf("after day 2: %+v", s)
	}

	s = ResetIfNeeded(s, day(4))
	if s.Current != 0 {
		t.Errorf("expected current 0 after missed day, got %d", s.Current)
	}
	if s.Longest != 2 {
		t.Errorf("expected longest to remain 2, got %d", s.Longest)
	}
}
