package timestamp

import (
	"fmt"
	"strconv"
	"time"

	"github.com/plainq/stamp/calendar"
	"github.com/plainq/stamp/stamperr"
)

// Span is a non-negative length of time with millisecond precision,
// e.g. a retention period or the age of a Record.
type Span struct {
	millis int64
}

// NewSpan returns the Span of the given days, hours, minutes and seconds.
func NewSpan(days, hours, minutes, seconds int) (Span, error) {
	parts := [...]struct {
		n    int
		unit int64
		name string
	}{
		{n: days, unit: calendar.MillisPerDay, name: "days"},
		{n: hours, unit: calendar.MillisPerHour, name: "hours"},
		{n: minutes, unit: calendar.MillisPerMinute, name: "minutes"},
		{n: seconds, unit: calendar.MillisPerSecond, name: "seconds"},
	}

	var total int64

	for _, p := range parts {
		if p.n < 0 {
			return Span{}, fmt.Errorf("%s %d: %w", p.name, p.n, stamperr.ErrInvalidField)
		}

		ms, err := calendar.MulInt64(int64(p.n), p.unit)
		if err != nil {
			return Span{}, fmt.Errorf("%s %d: %w", p.name, p.n, err)
		}

		if total, err = calendar.AddInt64(total, ms); err != nil {
			return Span{}, err
		}
	}

	return Span{millis: total}, nil
}

func spanOf(n, unit int64) (Span, error) {
	if n < 0 {
		return Span{}, fmt.Errorf("span %d: %w", n, stamperr.ErrInvalidField)
	}

	ms, err := calendar.MulInt64(n, unit)
	if err != nil {
		return Span{}, err
	}

	return Span{millis: ms}, nil
}

func SpanOfDays(n int64) (Span, error)    { return spanOf(n, calendar.MillisPerDay) }
func SpanOfHours(n int64) (Span, error)   { return spanOf(n, calendar.MillisPerHour) }
func SpanOfMinutes(n int64) (Span, error) { return spanOf(n, calendar.MillisPerMinute) }
func SpanOfSeconds(n int64) (Span, error) { return spanOf(n, calendar.MillisPerSecond) }
func SpanOfMillis(n int64) (Span, error)  { return spanOf(n, 1) }

// SpanFromDuration truncates d to the millisecond.
func SpanFromDuration(d time.Duration) (Span, error) {
	return SpanOfMillis(d.Milliseconds())
}

// Millis returns the total number of milliseconds.
func (s Span) Millis() int64 { return s.millis }

// Seconds returns the total number of whole seconds.
func (s Span) Seconds() int64 { return s.millis / calendar.MillisPerSecond }

// Minutes returns the total number of whole minutes.
func (s Span) Minutes() int64 { return s.millis / calendar.MillisPerMinute }

// Hours returns the total number of whole hours.
func (s Span) Hours() int64 { return s.millis / calendar.MillisPerHour }

// Days returns the total number of whole days.
func (s Span) Days() int64 { return s.millis / calendar.MillisPerDay }

// Hour returns the hour within the last started day.
func (s Span) Hour() int { return int(s.millis % calendar.MillisPerDay / calendar.MillisPerHour) }

func (s Span) Minute() int { return int(s.millis % calendar.MillisPerHour / calendar.MillisPerMinute) }

func (s Span) Second() int { return int(s.millis % calendar.MillisPerMinute / calendar.MillisPerSecond) }

func (s Span) Millisecond() int { return int(s.millis % calendar.MillisPerSecond) }

// Format renders s as "D HH:MM:SS.mmm", leaving out the day count when it is zero.
func (s Span) Format() string {
	b := make([]byte, 0, 32)

	if days := s.Days(); days > 0 {
		b = strconv.AppendInt(b, days, 10)
		b = append(b, ' ')
	}

	b = appendPadded(b, int64(s.Hour()), 2)
	b = append(b, ':')
	b = appendPadded(b, int64(s.Minute()), 2)
	b = append(b, ':')
	b = appendPadded(b, int64(s.Second()), 2)
	b = append(b, '.')
	b = appendPadded(b, int64(s.Millisecond()), 3)

	return string(b)
}

func (s Span) String() string { return s.Format() }
