// Package streak implements the pure streak-counter arithmetic for
// habits. Update runs when a habit's period target is reached;
// ResetIfNeeded runs from the daily auto-reset sweep and zeroes streaks
// that were broken by a missed day.
package streak

import (
	"time"

	"github.com/averyhall/tend/internal/timeutil"
)

// State holds a habit's streak counters and the day of its most recent
// completion.
type State struct {
	Current       int
	Longest       int
	LastCompleted *time.Time
}

// Update applies a target-reached completion occurring on the calendar
// day of `today` and returns the new state. It is idempotent for
// repeated calls on the same day, and never decreases Current in
// response to out-of-order timestamps (clock moved backward).
func Update(s State, today time.Time) State {
	next := s

	switch {
	case s.LastCompleted == nil:
		// First-ever completion starts a streak at day one.
		next.Current = 1
	default:
		daysSince := timeutil.DayDiff(*s.LastCompleted, today)
		switch {
		case daysSince == 0:
			// Already counted today.
			return clampLongest(next)
		case daysSince == 1:
			next.Current = s.Current + 1
		case daysSince > 1:
			// Gap: today's completion is day one of a new streak,
			// not zero.
			next.Current = 1
		default:
			// daysSince < 0: clock anomaly, never corrupt counters.
			return clampLongest(next)
		}
	}

	completed := today
	next.LastCompleted = &completed
	return clampLongest(next)
}

// ResetIfNeeded zeroes the current streak when a full calendar day has
// passed with no completion. Invoked once per day by the auto-reset
// sweep; calling it repeatedly is harmless.
func ResetIfNeeded(s State, now time.Time) State {
	if s.LastCompleted == nil {
		return clampLongest(s)
	}
	if timeutil.DayDiff(*s.LastCompleted, now) > 1 {
		s.Current = 0
	}
	return clampLongest(s)
}

func clampLongest(s State) State {
	if s.Current > s.Longest {
		s.Longest = s.Current
	}
	return s
}
