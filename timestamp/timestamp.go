// Package timestamp provides Timestamp, a calendar-independent instant stored
// as a signed count of milliseconds since 0000-01-01T00:00:00.000 UTC.
//
// Calendar fields are derived on demand from the millisecond count using the
// proleptic Gregorian calendar (see package calendar). The canonical textual
// form is ISO 8601 extended, UTC only: [-]YYYY-MM-DDTHH:MM:SS.mmmZ. The
// canonical storage form is the int64 millisecond count itself.
package timestamp

import (
	"fmt"
	"math"
	"time"

	"github.com/plainq/stamp/calendar"
)

var (
	// Min is the earliest representable instant.
	Min = Timestamp{millis: math.MinInt64}

	// Max is the latest representable instant.
	Max = Timestamp{millis: math.MaxInt64}

	// UnixEpoch is 1970-01-01T00:00:00.000Z.
	UnixEpoch = Timestamp{millis: calendar.UnixEpochMillis}
)

// Timestamp is an immutable instant with millisecond precision.
// The zero value is the epoch instant 0000-01-01T00:00:00.000Z, which is a
// regular, valid instant and not a marker for an unset value.
type Timestamp struct {
	millis int64
}

// FromMillis returns the Timestamp for a millisecond count since the epoch.
func FromMillis(millis int64) Timestamp { return Timestamp{millis: millis} }

// FromFields validates the calendar fields and returns the matching Timestamp.
func FromFields(year int64, month, day, hour, minute, second, millisecond int) (Timestamp, error) {
	days, daysErr := calendar.DaysFromCivil(year, month, day)
	if daysErr != nil {
		return Timestamp{}, daysErr
	}

	ofDay, ofDayErr := calendar.MillisOfDay(hour, minute, second, millisecond)
	if ofDayErr != nil {
		return Timestamp{}, ofDayErr
	}

	millis, err := calendar.JoinMillis(days, ofDay)
	if err != nil {
		return Timestamp{}, err
	}

	return Timestamp{millis: millis}, nil
}

// FromDate returns the midnight Timestamp of the given date.
func FromDate(year int64, month, day int) (Timestamp, error) {
	return FromFields(year, month, day, 0, 0, 0, 0)
}

// FromUnixMilli returns the Timestamp for milliseconds since 1970-01-01.
func FromUnixMilli(unix int64) (Timestamp, error) {
	millis, err := calendar.AddInt64(unix, calendar.UnixEpochMillis)
	if err != nil {
		return Timestamp{}, fmt.Errorf("unix millis %d: %w", unix, err)
	}

	return Timestamp{millis: millis}, nil
}

// FromTime converts t to UTC and truncates it to the millisecond,
// always toward the earlier millisecond.
func FromTime(t time.Time) (Timestamp, error) {
	sec, nsec := t.Unix(), int64(t.Nanosecond())

	unix, err := calendar.MulInt64(sec, calendar.MillisPerSecond)
	if err != nil {
		return Timestamp{}, fmt.Errorf("time %s: %w", t, err)
	}

	// Nanosecond is always in [0, 1e9), so this floors.
	if unix, err = calendar.AddInt64(unix, nsec/int64(time.Millisecond)); err != nil {
		return Timestamp{}, fmt.Errorf("time %s: %w", t, err)
	}

	return FromUnixMilli(unix)
}

// Millis returns the millisecond count since the epoch.
// This is the canonical storage representation.
func (t Timestamp) Millis() int64 { return t.millis }

// Days returns the number of whole days since the epoch.
func (t Timestamp) Days() int64 {
	days, _ := calendar.SplitMillis(t.millis)
	return days
}

// Date returns the calendar date of t.
func (t Timestamp) Date() (year int64, month, day int) {
	return calendar.CivilFromDays(t.Days())
}

// Clock returns the time of day of t.
func (t Timestamp) Clock() (hour, minute, second, millisecond int) {
	return calendar.TimeOfDay(t.millis)
}

func (t Timestamp) Year() int64 {
	year, _, _ := t.Date()
	return year
}

// Month returns the month of the year in 1..12.
func (t Timestamp) Month() int {
	_, month, _ := t.Date()
	return month
}

// Day returns the day of the month in 1..31.
func (t Timestamp) Day() int {
	_, _, day := t.Date()
	return day
}

func (t Timestamp) Hour() int {
	hour, _, _, _ := t.Clock()
	return hour
}

func (t Timestamp) Minute() int {
	_, minute, _, _ := t.Clock()
	return minute
}

func (t Timestamp) Second() int {
	_, _, second, _ := t.Clock()
	return second
}

func (t Timestamp) Millisecond() int {
	_, _, _, ms := t.Clock()
	return ms
}

// Weekday returns the day of the week of t.
func (t Timestamp) Weekday() time.Weekday { return calendar.Weekday(t.Days()) }

// YearDay returns the day of the year of t in 1..366.
func (t Timestamp) YearDay() int {
	year, month, day := t.Date()
	return calendar.DayOfYear(year, month, day)
}

// UnixMilli returns t as milliseconds since 1970-01-01.
func (t Timestamp) UnixMilli() (int64, error) {
	unix, err := calendar.SubInt64(t.millis, calendar.UnixEpochMillis)
	if err != nil {
		return 0, fmt.Errorf("timestamp %d: %w", t.millis, err)
	}

	return unix, nil
}

// Time returns t as a UTC time.Time.
func (t Timestamp) Time() (time.Time, error) {
	unix, err := t.UnixMilli()
	if err != nil {
		return time.Time{}, err
	}

	return time.UnixMilli(unix).UTC(), nil
}

// AddMillis returns t shifted by delta milliseconds.
func (t Timestamp) AddMillis(delta int64) (Timestamp, error) {
	millis, err := calendar.AddInt64(t.millis, delta)
	if err != nil {
		return Timestamp{}, fmt.Errorf("add %dms to %s: %w", delta, t, err)
	}

	return Timestamp{millis: millis}, nil
}

// SubMillis returns t shifted back by delta milliseconds.
func (t Timestamp) SubMillis(delta int64) (Timestamp, error) {
	millis, err := calendar.SubInt64(t.millis, delta)
	if err != nil {
		return Timestamp{}, fmt.Errorf("subtract %dms from %s: %w", delta, t, err)
	}

	return Timestamp{millis: millis}, nil
}

// AddSpan returns t shifted forward by s.
func (t Timestamp) AddSpan(s Span) (Timestamp, error) { return t.AddMillis(s.millis) }

// SubSpan returns t shifted back by s.
func (t Timestamp) SubSpan(s Span) (Timestamp, error) { return t.SubMillis(s.millis) }

// Sub returns the signed number of milliseconds from u to t.
func (t Timestamp) Sub(u Timestamp) (int64, error) {
	delta, err := calendar.SubInt64(t.millis, u.millis)
	if err != nil {
		return 0, fmt.Errorf("%s - %s: %w", t, u, err)
	}

	return delta, nil
}

// Compare returns -1 if t is before u, +1 if t is after u, and 0 otherwise.
func (t Timestamp) Compare(u Timestamp) int {
	switch {
	case t.millis < u.millis:
		return -1

	case t.millis > u.millis:
		return 1

	default:
		return 0
	}
}

// Before reports whether t is before u.
func (t Timestamp) Before(u Timestamp) bool { return t.millis < u.millis }

// After reports whether t is after u.
func (t Timestamp) After(u Timestamp) bool { return t.millis > u.millis }

// Equal reports whether t and u are the same instant.
func (t Timestamp) Equal(u Timestamp) bool { return t.millis == u.millis }

// Must is a helper that wraps a call to a function returning
// (Timestamp, error) and panics if the error is non-nil. It is intended
// for package level variables and tests with constant input.
func Must(ts Timestamp, err error) Timestamp {
	if err != nil {
		panic(err)
	}

	return ts
}
