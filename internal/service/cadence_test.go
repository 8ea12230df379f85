package service

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestCadenceNext(t *testing.T) {
	at := func(y int, m time.Month, d, h, min int) time.Time {
		return time.Date(y, m, d, h, min, 0, 0, time.UTC)
	}

	tests := []struct {
		name    string
		cadence Cadence
		from    time.Time
		want    time.Time
	}{
		{"hourly mid-hour", Hourly(), at(2024, 6, 1, 10, 15), at(2024, 6, 1, 11, 0)},
		{"hourly on the hour", Hourly(), at(2024, 6, 1, 10, 0), at(2024, 6, 1, 11, 0)},
		{"six hours", EveryNHours(6), at(2024, 6, 1, 7, 0), at(2024, 6, 1, 12, 0)},
		{"six hours wraps day", EveryNHours(6), at(2024, 6, 1, 19, 30), at(2024, 6, 2, 0, 0)},
		{"five minutes", EveryNMinutes(5), at(2024, 6, 1, 10, 7), at(2024, 6, 1, 10, 10)},
		{"daily later today", DailyAt(18, 30), at(2024, 6, 1, 10, 0), at(2024, 6, 1, 18, 30)},
		{"daily at midnight", DailyAt(0, 0), at(2024, 6, 1, 0, 0), at(2024, 6, 2, 0, 0)},
		{"daily crosses month", DailyAt(0, 0), at(2024, 6, 30, 23, 59), at(2024, 7, 1, 0, 0)},
		{"weekly same day before", WeeklyAt(time.Monday, 9, 0), at(2024, 6, 3, 8, 0), at(2024, 6, 3, 9, 0)},
		{"weekly same day at", WeeklyAt(time.Monday, 9, 0), at(2024, 6, 3, 9, 0), at(2024, 6, 10, 9, 0)},
		{"weekly from sunday", WeeklyAt(time.Monday, 9, 0), at(2024, 6, 2, 23, 0), at(2024, 6, 3, 9, 0)},
		{"weekly from tuesday", WeeklyAt(time.Monday, 9, 0), at(2024, 6, 4, 9, 0), at(2024, 6, 10, 9, 0)},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := tt.cadence.Next(tt.from)
			assert.True(t, tt.want.Equal(got), "got %v want %v", got, tt.want)
		})
	}
}

func TestCadenceNextInLocation(t *testing.T) {
	plus3 := time.FixedZone("UTC+3", 3*60*60)
	c := DailyAt(0, 0).In(plus3)

	// 22:00 UTC is already 01:00 the next day in UTC+3.
	got := c.Next(time.Date(2024, 6, 1, 22, 0, 0, 0, time.UTC))
	want := time.Date(2024, 6, 3, 0, 0, 0, 0, plus3)
	assert.True(t, want.Equal(got), "got %v want %v", got, want)
}

func TestCadenceEveryAlignsToLocalClock(t *testing.T) {
	ist := time.FixedZone("UTC+5:30", 5*60*60+30*60)

	tests := []struct {
		name    string
		cadence Cadence
		from    time.Time
		want    time.Time
	}{
		{"hourly", Hourly().In(ist), time.Date(2024, 6, 1, 10, 15, 0, 0, ist), time.Date(2024, 6, 1, 11, 0, 0, 0, ist)},
		{"six hours", EveryNHours(6).In(ist), time.Date(2024, 6, 1, 7, 0, 0, 0, ist), time.Date(2024, 6, 1, 12, 0, 0, 0, ist)},
		{"six hours wraps", EveryNHours(6).In(ist), time.Date(2024, 6, 1, 18, 0, 0, 0, ist), time.Date(2024, 6, 2, 0, 0, 0, 0, ist)},
		// 04:50Z is 10:20 local.
		{"utc input", Hourly().In(ist), time.Date(2024, 6, 1, 4, 50, 0, 0, time.UTC), time.Date(2024, 6, 1, 11, 0, 0, 0, ist)},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := tt.cadence.Next(tt.from)
			assert.True(t, tt.want.Equal(got), "got %v want %v", got, tt.want)
			assert.Zero(t, got.In(ist).Minute())
		})
	}
}

func TestCadenceValidate(t *testing.T) {
	assert.NoError(t, Hourly().Validate())
	assert.NoError(t, WeeklyAt(time.Sunday, 23, 59).Validate())

	assert.ErrorIs(t, Every(0).Validate(), errInvalidCadence)
	assert.ErrorIs(t, Every(time.Millisecond).Validate(), errInvalidCadence)
	assert.ErrorIs(t, DailyAt(24, 0).Validate(), errInvalidCadence)
	assert.ErrorIs(t, DailyAt(9, 60).Validate(), errInvalidCadence)
	assert.ErrorIs(t, WeeklyAt(time.Weekday(7), 9, 0).Validate(), errInvalidCadence)
	assert.ErrorIs(t, Cadence{Kind: CadenceKind(9)}.Validate(), errInvalidCadence)
}

func TestCadenceString(t *testing.T) {
	assert.Equal(t, "every 1h0m0s", Hourly().String())
	assert.Equal(t, "daily at 00:00", DailyAt(0, 0).String())
	assert.Equal(t, "weekly on Monday at 09:00", WeeklyAt(time.Monday, 9, 0).String())
}
