package timestamp

import (
	"fmt"
	"time"

	"github.com/plainq/stamp/calendar"
	"github.com/plainq/stamp/stamperr"
)

// Compilation time check for interface implementation.
var (
	_ Clock = SystemClock{}
	_ Clock = ClockFunc(nil)
)

// Clock is a wall-clock source. Implementations return the current time;
// the location is irrelevant since it is converted to UTC.
type Clock interface {
	Now() (time.Time, error)
}

// ClockFunc is an adapter to allow the use of ordinary functions as a Clock.
type ClockFunc func() (time.Time, error)

func (f ClockFunc) Now() (time.Time, error) { return f() }

// SystemClock reads the operating system wall clock.
type SystemClock struct{}

func (SystemClock) Now() (time.Time, error) { return time.Now().UTC(), nil }

// FixedClock returns a Clock which always reports t.
func FixedClock(t time.Time) Clock {
	return ClockFunc(func() (time.Time, error) { return t, nil })
}

// Now returns the current system time truncated to the millisecond.
func Now() Timestamp {
	return Timestamp{millis: time.Now().UnixMilli() + calendar.UnixEpochMillis}
}

// NowFrom reads the clock and returns its time truncated to the millisecond.
// A failing clock is reported as stamperr.ErrClockUnavailable.
func NowFrom(clock Clock) (Timestamp, error) {
	t, err := clock.Now()
	if err != nil {
		return Timestamp{}, fmt.Errorf("%w: %w", stamperr.ErrClockUnavailable, err)
	}

	return FromTime(t)
}
