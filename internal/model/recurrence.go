package model

import (
	"errors"
	"fmt"
	"strings"
	"time"
)

// ErrInvalidRule marks a recurrence rule that cannot produce a next date.
// Jobs skip the offending task and keep going.
var ErrInvalidRule = errors.New("invalid recurrence rule")

// Frequency is the unit a recurrence interval is counted in.
type Frequency string

const (
	FrequencyDaily   Frequency = "daily"
	FrequencyWeekly  Frequency = "weekly"
	FrequencyMonthly Frequency = "monthly"
	FrequencyYearly  Frequency = "yearly"
)

// Recurrence is the regeneration rule embedded in a Task.
type Recurrence struct {
	Enabled   bool `gorm:"index;default:false"`
	Frequency Frequency
	Interval  int
	EndDate   *time.Time

	// LastProcessed is set on the parent after a child has been spawned.
	LastProcessed *time.Time
	ParentTaskID  *uint `gorm:"index"`
}

// Validate checks the rule shape without computing a date.
func (r Recurrence) Validate() error {
	switch Frequency(strings.ToLower(string(r.Frequency))) {
	case FrequencyDaily, FrequencyWeekly, FrequencyMonthly, FrequencyYearly:
	default:
		return fmt.Errorf("%w: unknown frequency %q", ErrInvalidRule, r.Frequency)
	}
	if r.Interval <= 0 {
		return fmt.Errorf("%w: interval must be positive, got %d", ErrInvalidRule, r.Interval)
	}
	return nil
}

// Next returns the occurrence following prev. The boolean is false when the
// next date would fall after EndDate. Month and year steps clamp to the last
// day of the target month, so Jan 31 + 1 month is Feb 28/29.
func (r Recurrence) Next(prev time.Time) (time.Time, bool, error) {
	if err := r.Validate(); err != nil {
		return time.Time{}, false, err
	}

	var next time.Time
	switch Frequency(strings.ToLower(string(r.Frequency))) {
	case FrequencyDaily:
		next = prev.AddDate(0, 0, r.Interval)
	case FrequencyWeekly:
		next = prev.AddDate(0, 0, 7*r.Interval)
	case FrequencyMonthly:
		next = addMonths(prev, r.Interval)
	case FrequencyYearly:
		next = addMonths(prev, 12*r.Interval)
	}

	if r.EndDate != nil && next.After(*r.EndDate) {
		return time.Time{}, false, nil
	}
	return next, true, nil
}

// ActiveAt reports whether the rule still applies at now.
func (r Recurrence) ActiveAt(now time.Time) bool {
	return r.Enabled && (r.EndDate == nil || !r.EndDate.Before(now))
}

func addMonths(t time.Time, months int) time.Time {
	year, month, day := t.Date()
	hour, min, sec := t.Clock()

	total := int(month) - 1 + months
	year += total / 12
	total %= 12
	if total < 0 {
		total += 12
		year--
	}
	target := time.Month(total + 1)

	if last := daysInMonth(target, year); day > last {
		day = last
	}
	return time.Date(year, target, day, hour, min, sec, t.Nanosecond(), t.Location())
}

func daysInMonth(month time.Month, year int) int {
	// Move to next month, roll back a day.
	firstOfMonth := time.Date(year, month, 1, 0, 0, 0, 0, time.UTC)
	firstOfNextMonth := firstOfMonth.AddDate(0, 1, 0)
	lastOfMonth := firstOfNextMonth.AddDate(0, 0, -1)
	return lastOfMonth.Day()
}
