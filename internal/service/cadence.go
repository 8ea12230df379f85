package service

import (
	"errors"
	"fmt"
	"time"
)

// CadenceKind is the shape of a schedule.
type CadenceKind int

const (
	// CadenceEvery fires on multiples of a fixed interval counted from local
	// midnight (top of the local hour for one hour, 00/06/12/18 local for
	// six hours).
	CadenceEvery CadenceKind = iota
	// CadenceDaily fires once a day at Hour:Minute.
	CadenceDaily
	// CadenceWeekly fires once a week on Weekday at Hour:Minute.
	CadenceWeekly
)

func (k CadenceKind) String() string {
	switch k {
	case CadenceEvery:
		return "every"
	case CadenceDaily:
		return "daily"
	case CadenceWeekly:
		return "weekly"
	default:
		return fmt.Sprintf("CadenceKind(%d)", int(k))
	}
}

// Cadence is a structured trigger schedule. It implements cron.Schedule so
// the scheduler never parses cron strings.
type Cadence struct {
	Kind     CadenceKind
	Interval time.Duration
	Weekday  time.Weekday
	Hour     int
	Minute   int
	Location *time.Location
}

func Every(d time.Duration) Cadence {
	return Cadence{Kind: CadenceEvery, Interval: d}
}

func Hourly() Cadence {
	return Every(time.Hour)
}

func EveryNHours(n int) Cadence {
	return Every(time.Duration(n) * time.Hour)
}

func EveryNMinutes(n int) Cadence {
	return Every(time.Duration(n) * time.Minute)
}

func DailyAt(hour, minute int) Cadence {
	return Cadence{Kind: CadenceDaily, Hour: hour, Minute: minute}
}

func WeeklyAt(day time.Weekday, hour, minute int) Cadence {
	return Cadence{Kind: CadenceWeekly, Weekday: day, Hour: hour, Minute: minute}
}

// In returns a copy of c evaluated in loc.
func (c Cadence) In(loc *time.Location) Cadence {
	c.Location = loc
	return c
}

var errInvalidCadence = errors.New("invalid cadence")

func (c Cadence) Validate() error {
	switch c.Kind {
	case CadenceEvery:
		if c.Interval < time.Second {
			return fmt.Errorf("%w: interval %v is below one second", errInvalidCadence, c.Interval)
		}
		return nil
	case CadenceWeekly:
		if c.Weekday < time.Sunday || c.Weekday > time.Saturday {
			return fmt.Errorf("%w: weekday %d", errInvalidCadence, c.Weekday)
		}
		fallthrough
	case CadenceDaily:
		if c.Hour < 0 || c.Hour > 23 || c.Minute < 0 || c.Minute > 59 {
			return fmt.Errorf("%w: time %02d:%02d", errInvalidCadence, c.Hour, c.Minute)
		}
		return nil
	default:
		return fmt.Errorf("%w: unknown kind %v", errInvalidCadence, c.Kind)
	}
}

// Next returns the first activation strictly after t.
func (c Cadence) Next(t time.Time) time.Time {
	loc := c.Location
	if loc == nil {
		loc = time.UTC
	}
	t = t.In(loc)

	switch c.Kind {
	case CadenceEvery:
		midnight := time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, loc)
		steps := t.Sub(midnight) / c.Interval
		return midnight.Add((steps + 1) * c.Interval)
	case CadenceDaily:
		next := time.Date(t.Year(), t.Month(), t.Day(), c.Hour, c.Minute, 0, 0, loc)
		if !next.After(t) {
			next = next.AddDate(0, 0, 1)
		}
		return next
	case CadenceWeekly:
		days := (int(c.Weekday) - int(t.Weekday()) + 7) % 7
		next := time.Date(t.Year(), t.Month(), t.Day()+days, c.Hour, c.Minute, 0, 0, loc)
		if !next.After(t) {
			next = next.AddDate(0, 0, 7)
		}
		return next
	default:
		return time.Time{}
	}
}

func (c Cadence) String() string {
	switch c.Kind {
	case CadenceEvery:
		return fmt.Sprintf("every %v", c.Interval)
	case CadenceDaily:
		return fmt.Sprintf("daily at %02d:%02d", c.Hour, c.Minute)
	case CadenceWeekly:
		return fmt.Sprintf("weekly on %v at %02d:%02d", c.Weekday, c.Hour, c.Minute)
	default:
		return c.Kind.String()
	}
}
