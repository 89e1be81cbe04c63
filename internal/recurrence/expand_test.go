package recurrence

import (
	"fmt"
	"testing"
	"time"

	"github.com/averyhall/tend/internal/constants"
)

// Wednesday, mid-morning.
var now = time.Date(2026, 4, 15, 10, 45, 0, 0, time.UTC)

func TestExpandDaily(t *testing.T) {
	occs, err := ExpandDaily("habit-1", "07:30", now, 30)
	if err != nil {
		t.Fatalf("ExpandDaily failed: %v", err)
	}

	if len(occs) != 30 {
		t.Fatalf("expected 30 occurrences, got %d", len(occs))
	}

	// Today's 07:30 slot has already passed but is still emitted; the
	// consumer dedupes by identifier.
	first := occs[0]
	if first.ID != "habit-1_daily_0" {
		t.Errorf("first id = %q", first.ID)
	}
	want := time.Date(2026, 4, 15, 7, 30, 0, 0, time.UTC)
	if !first.Time.Equal(want) {
		t.Errorf("first trigger = %v, want %v", first.Time, want)
	}

	for i, occ := range occs {
		wantID := fmt.Sprintf("habit-1_daily_%d", i)
		if occ.ID != wantID {
			t.Errorf("occurrence %d id = %q, want %q", i, occ.ID, wantID)
		}
		wantTime := want.AddDate(0, 0, i)
		if !occ.Time.Equal(wantTime) {
			t.Errorf("occurrence %d trigger = %v, want %v", i, occ.Time, wantTime)
		}
	}
}

func TestExpandDaily_DefaultsTime(t *testing.T) {
	occs, err := ExpandDaily("habit-1", "", now, 2)
	if err != nil {
		t.Fatalf("ExpandDaily failed: %v", err)
	}
	if occs[0].Time.Hour() != 9 || occs[0].Time.Minute() != 0 {
		t.Errorf("expected 09:00 default, got %v", occs[0].Time)
	}
}

func TestExpandDates_SkipsPast(t *testing.T) {
	dates := []string{"2026-04-10", "2026-04-20"}
	occs, err := ExpandDates("habit-2", dates, "08:00", now)
	if err != nil {
		t.Fatalf("ExpandDates failed: %v", err)
	}

	if len(occs) != 1 {
		t.Fatalf("expected exactly 1 future occurrence, got %d", len(occs))
	}
	if occs[0].ID != "habit-2_date_1" {
		t.Errorf("id = %q, want index keyed to the configured set", occs[0].ID)
	}
	want := time.Date(2026, 4, 20, 8, 0, 0, 0, time.UTC)
	if !occs[0].Time.Equal(want) {
		t.Errorf("trigger = %v, want %v", occs[0].Time, want)
	}
}

func TestExpandDates_TodayEarlierSlotIsSkipped(t *testing.T) {
	// Explicit dates are one-shot: today's 08:00 is before 10:45 now and
	// must not be emitted, unlike the recurring shapes.
	occs, err := ExpandDates("habit-3", []string{"2026-04-15"}, "08:00", now)
	if err != nil {
		t.Fatalf("ExpandDates failed: %v", err)
	}
	if len(occs) != 0 {
		t.Errorf("expected no occurrences for a passed one-shot date, got %d", len(occs))
	}
}

func TestExpandMedication_OnceDaily(t *testing.T) {
	occs, err := ExpandMedication("med-1", constants.MedOnceDaily, "21:15", now, 7)
	if err != nil {
		t.Fatalf("ExpandMedication failed: %v", err)
	}
	if len(occs) != 7 {
		t.Fatalf("expected 7 occurrences, got %d", len(occs))
	}
	for i, occ := range occs {
		if occ.Time.Hour() != 21 || occ.Time.Minute() != 15 {
			t.Errorf("occurrence %d at %v, want 21:15", i, occ.Time)
		}
		wantID := fmt.Sprintf("med-1_%d", occ.Time.Unix())
		if occ.ID != wantID {
			t.Errorf("occurrence %d id = %q, want %q", i, occ.ID, wantID)
		}
	}
}

func TestExpandMedication_TwiceDailyInheritsMinute(t *testing.T) {
	occs, err := ExpandMedication("med-2", constants.MedTwiceDaily, "09:30", now, 7)
	if err != nil {
		t.Fatalf("ExpandMedication failed: %v", err)
	}
	if len(occs) != 14 {
		t.Fatalf("expected 14 occurrences, got %d", len(occs))
	}

	// Day 0 doses land at 08:30 and 20:30: slot hours are fixed, the
	// configured minute carries over.
	day0 := occs[:2]
	wantHours := []int{8, 20}
	for i, occ := range day0 {
		if occ.Time.Day() != 15 {
			t.Errorf("dose %d on day %d, want 15", i, occ.Time.Day())
		}
		if occ.Time.Hour() != wantHours[i] {
			t.Errorf("dose %d hour = %d, want %d", i, occ.Time.Hour(), wantHours[i])
		}
		if occ.Time.Minute() != 30 {
			t.Errorf("dose %d minute = %d, want 30", i, occ.Time.Minute())
		}
	}
}

func TestExpandMedication_ThriceDaily(t *testing.T) {
	occs, err := ExpandMedication("med-3", constants.MedThriceDaily, "10:05", now, 7)
	if err != nil {
		t.Fatalf("ExpandMedication failed: %v", err)
	}
	if len(occs) != 21 {
		t.Fatalf("expected 21 occurrences, got %d", len(occs))
	}
	wantHours := []int{8, 14, 20}
	for i, occ := range occs[:3] {
		if occ.Time.Hour() != wantHours[i] || occ.Time.Minute() != 5 {
			t.Errorf("dose %d at %02d:%02d, want %02d:05", i, occ.Time.Hour(), occ.Time.Minute(), wantHours[i])
		}
	}
}

func TestExpandMedication_WeeklyFrequencies(t *testing.T) {
	tests := []struct {
		name         string
		frequency    constants.MedicationFrequency
		wantWeekdays map[time.Weekday]bool
		wantCount    int
	}{
		{
			// Window starting Wed 2026-04-15 covers Wed..Tue: Thu + Mon.
			name:         "twice weekly fires Monday and Thursday",
			frequency:    constants.MedTwiceWeekly,
			wantWeekdays: map[time.Weekday]bool{time.Monday: true, time.Thursday: true},
			wantCount:    2,
		},
		{
			// Wed..Tue window: Wed + Fri + Mon.
			name:         "thrice weekly fires Monday, Wednesday, Friday",
			frequency:    constants.MedThriceWeekly,
			wantWeekdays: map[time.Weekday]bool{time.Monday: true, time.Wednesday: true, time.Friday: true},
			wantCount:    3,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			occs, err := ExpandMedication("med-4", tt.frequency, "08:00", now, 7)
			if err != nil {
				t.Fatalf("ExpandMedication failed: %v", err)
			}
			if len(occs) != tt.wantCount {
				t.Fatalf("expected %d occurrences in 7-day window, got %d", tt.wantCount, len(occs))
			}
			for _, occ := range occs {
				if !tt.wantWeekdays[occ.Time.Weekday()] {
					t.Errorf("occurrence on %v, not in allowed weekdays", occ.Time.Weekday())
				}
				if occ.Time.Hour() != 8 {
					t.Errorf("weekly dose at hour %d, want 8", occ.Time.Hour())
				}
			}
		})
	}
}

func TestExpandMedication_InvalidFrequency(t *testing.T) {
	if _, err := ExpandMedication("med-5", "hourly", "08:00", now, 7); err == nil {
		t.Error("expected error for invalid frequency")
	}
}

func TestExpand_OccurrencesAreOrdered(t *testing.T) {
	occs, err := ExpandMedication("med-6", constants.MedThriceDaily, "12:00", now, 7)
	if err != nil {
		t.Fatalf("ExpandMedication failed: %v", err)
	}
	for i := 1; i < len(occs); i++ {
		if !occs[i].Time.After(occs[i-1].Time) {
			t.Errorf("occurrences out of order at %d: %v then %v", i, occs[i-1].Time, occs[i].Time)
		}
	}
}
