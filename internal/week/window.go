// Package week computes the Sunday–Saturday boundary that scopes one
// settlement run. The math is pure so the reference instant can be injected
// in tests.
package week

import "time"

// Window is the inclusive time range of one settlement week.
type Window struct {
	// Start is the most recent Sunday at 00:00:00.000.
	Start time.Time

	// End is the following Saturday at 23:59:59.999.
	End time.Time
}

// Current returns the window containing now, computed in now's location.
func Current(now time.Time) Window {
	// Weekday() is 0 for Sunday, so this lands on today for a Sunday "now".
	sunday := now.AddDate(0, 0, -int(now.Weekday()))
	start := time.Date(sunday.Year(), sunday.Month(), sunday.Day(), 0, 0, 0, 0, now.Location())

	saturday := start.AddDate(0, 0, 6)
	end := time.Date(saturday.Year(), saturday.Month(), saturday.Day(), 23, 59, 59, int(999*time.Millisecond), saturday.Location())

	return Window{Start: start, End: end}
}

// Contains reports whether t falls inside the window, inclusive on both ends.
func (w Window) Contains(t time.Time) bool {
	return !t.Before(w.Start) && !t.After(w.End)
}

// StartDate renders the window start as a calendar date (YYYY-MM-DD), the
// form used in the penalty natural key.
func (w Window) StartDate() string {
	return w.Start.Format(time.DateOnly)
}

// EndDate renders the window end as a calendar date (YYYY-MM-DD).
func (w Window) EndDate() string {
	return w.End.Format(time.DateOnly)
}
