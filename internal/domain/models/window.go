package models

import (
	"fmt"
	"time"
)

// Window is a half-open interval [Start, End).
type Window struct {
	Start time.Time `json:"start"`
	End   time.Time `json:"end"`
}

// WindowEndingAt returns the window of the given number of days ending at end.
func WindowEndingAt(end time.Time, days int) Window {
	return Window{Start: end.AddDate(0, 0, -days), End: end}
}

// Contains reports whether t falls inside [Start, End).
func (w Window) Contains(t time.Time) bool {
	return !t.Before(w.Start) && t.Before(w.End)
}

// Days is the window length in whole days, rounded up.
func (w Window) Days() int {
	d := w.End.Sub(w.Start)
	days := int(d / (24 * time.Hour))
	if d%(24*time.Hour) != 0 {
		days++
	}
	return days
}

// Validate rejects empty or inverted windows and lengths outside [minDays, maxDays].
// A non-positive bound disables that check.
func (w Window) Validate(minDays, maxDays int) error {
	if w.Start.IsZero() || w.End.IsZero() {
		return fmt.Errorf("%w: start and end are required", ErrInvalidWindow)
	}
	if !w.End.After(w.Start) {
		return fmt.Errorf("%w: end %s is not after start %s", ErrInvalidWindow,
			w.End.Format(time.RFC3339), w.Start.Format(time.RFC3339))
	}
	days := w.Days()
	if minDays > 0 && days < minDays {
		return fmt.Errorf("%w: %d days is below minimum %d", ErrInvalidWindow, days, minDays)
	}
	if maxDays > 0 && days > maxDays {
		return fmt.Errorf("%w: %d days exceeds maximum %d", ErrInvalidWindow, days, maxDays)
	}
	return nil
}

func (w Window) String() string {
	return fmt.Sprintf("[%s, %s)", w.Start.Format(time.RFC3339), w.End.Format(time.RFC3339))
}
