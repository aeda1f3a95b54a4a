// Package lifecycle derives the display state of a borrow record from its
// borrow and due dates. Every function takes the reference time as an
// explicit parameter and never reads the clock itself.
package lifecycle

import (
	"fmt"
	"time"
)

// Remaining is the countdown to the due date, decomposed into whole units.
type Remaining struct {
	Days    int `json:"days"`
	Hours   int `json:"hours"`
	Minutes int `json:"minutes"`
	Seconds int `json:"seconds"`
}

func (r Remaining) IsZero() bool {
	return r.Days <= 0 && r.Hours <= 0 && r.Minutes <= 0 && r.Seconds <= 0
}

type Phase string

const (
	PhaseActive      Phase = "ACTIVE"
	PhaseDueSoon     Phase = "DUE_SOON"
	PhaseDueVerySoon Phase = "DUE_VERY_SOON"
	PhaseExpired     Phase = "EXPIRED"
)

const (
	dueVerySoonHours = 24
	dueSoonHours     = 72
)

// TimeRemaining returns the countdown to returnDate, clamped to all-zero
// once now has reached or passed it.
func TimeRemaining(returnDate, now time.Time) Remaining {
	left := returnDate.Sub(now)
	if left <= 0 {
		return Remaining{}
	}

	days := int(left / (24 * time.Hour))
	left -= time.Duration(days) * 24 * time.Hour
	hours := int(left / time.Hour)
	left -= time.Duration(hours) * time.Hour
	minutes := int(left / time.Minute)
	left -= time.Duration(minutes) * time.Minute
	seconds := int(left / time.Second)

	return Remaining{Days: days, Hours: hours, Minutes: minutes, Seconds: seconds}
}

// ProgressFraction reports how much of the loan window has elapsed, clamped
// to [0,1]. A zero-length window counts as fully elapsed.
func ProgressFraction(borrowDate, returnDate, now time.Time) float64 {
	total := returnDate.Sub(borrowDate)
	if total <= 0 {
		return 1.0
	}

	fraction := float64(now.Sub(borrowDate)) / float64(total)
	if fraction < 0 {
		return 0
	}
	if fraction > 1 {
		return 1
	}
	return fraction
}

// Classify buckets a record by the whole hours left until its due date.
// Minutes and seconds are dropped before thresholding, so anything under a
// full hour already counts as EXPIRED. The boundaries are inclusive: exactly
// 24 whole hours left is DUE_VERY_SOON, exactly 72 is DUE_SOON.
func Classify(returnDate, now time.Time) Phase {
	r := TimeRemaining(returnDate, now)
	totalHours := r.Days*24 + r.Hours
	switch {
	case totalHours <= 0:
		return PhaseExpired
	case totalHours <= dueVerySoonHours:
		return PhaseDueVerySoon
	case totalHours <= dueSoonHours:
		return PhaseDueSoon
	default:
		return PhaseActive
	}
}

// FormatRemaining renders the countdown with its two most significant units.
func FormatRemaining(r Remaining) string {
	switch {
	case r.IsZero():
		return "period ended"
	case r.Days > 0:
		return fmt.Sprintf("%d days %d hours", r.Days, r.Hours)
	case r.Hours > 0:
		return fmt.Sprintf("%d hours %d minutes", r.Hours, r.Minutes)
	default:
		return fmt.Sprintf("%d minutes %d seconds", r.Minutes, r.Seconds)
	}
}
