package stopwatch

import (
	"fmt"
	"strconv"
	"time"

	"github.com/plainq/stamp/calendar"
	"github.com/plainq/stamp/stamperr"
)

const (
	nanosPerMicro  int64 = 1_000
	nanosPerMilli  int64 = 1_000_000
	nanosPerSecond int64 = 1_000_000_000
	nanosPerMinute int64 = 60 * nanosPerSecond
	nanosPerHour   int64 = 60 * nanosPerMinute
	nanosPerDay    int64 = 24 * nanosPerHour
)

// Kind tells whether a PreciseTime may be negative.
type Kind uint8

const (
	// KindInterval is an elapsed length of time and is never negative.
	KindInterval Kind = iota

	// KindDelta is a signed difference between two instants.
	KindDelta
)

func (k Kind) String() string {
	switch k {
	case KindInterval:
		return "interval"

	case KindDelta:
		return "delta"

	default:
		return "Kind(" + strconv.Itoa(int(k)) + ")"
	}
}

// PreciseTime is a nanosecond precision length of time.
// The zero value is an empty interval.
type PreciseTime struct {
	nanos int64
	kind  Kind
}

// Interval returns a non-negative PreciseTime of ns nanoseconds.
func Interval(ns int64) (PreciseTime, error) {
	if ns < 0 {
		return PreciseTime{}, fmt.Errorf("interval %dns: %w", ns, stamperr.ErrInvalidField)
	}

	return PreciseTime{nanos: ns, kind: KindInterval}, nil
}

// Delta returns a signed PreciseTime of ns nanoseconds.
func Delta(ns int64) PreciseTime { return PreciseTime{nanos: ns, kind: KindDelta} }

// Between returns the signed delta from start to end, both monotonic readings.
func Between(start, end int64) (PreciseTime, error) {
	ns, err := calendar.SubInt64(end, start)
	if err != nil {
		return PreciseTime{}, err
	}

	return Delta(ns), nil
}

// NewPreciseTime builds an interval from its components. Components are not
// required to be normalized, 90 minutes is as good as 1 hour and 30 minutes.
func NewPreciseTime(days, hours, minutes, seconds, millis, micros, nanos int) (PreciseTime, error) {
	parts := [...]struct {
		n    int
		unit int64
		name string
	}{
		{n: days, unit: nanosPerDay, name: "days"},
		{n: hours, unit: nanosPerHour, name: "hours"},
		{n: minutes, unit: nanosPerMinute, name: "minutes"},
		{n: seconds, unit: nanosPerSecond, name: "seconds"},
		{n: millis, unit: nanosPerMilli, name: "milliseconds"},
		{n: micros, unit: nanosPerMicro, name: "microseconds"},
		{n: nanos, unit: 1, name: "nanoseconds"},
	}

	var total int64

	for _, p := range parts {
		if p.n < 0 {
			return PreciseTime{}, fmt.Errorf("%s %d: %w", p.name, p.n, stamperr.ErrInvalidField)
		}

		ns, err := calendar.MulInt64(int64(p.n), p.unit)
		if err != nil {
			return PreciseTime{}, fmt.Errorf("%s %d: %w", p.name, p.n, err)
		}

		if total, err = calendar.AddInt64(total, ns); err != nil {
			return PreciseTime{}, err
		}
	}

	return PreciseTime{nanos: total, kind: KindInterval}, nil
}

// FromDuration returns d as a delta.
func FromDuration(d time.Duration) PreciseTime { return Delta(int64(d)) }

func (p PreciseTime) Kind() Kind { return p.kind }

// Negative reports whether p lies below zero. Intervals never do.
func (p PreciseTime) Negative() bool { return p.nanos < 0 }

// Totals truncate toward zero.

func (p PreciseTime) Nanoseconds() int64  { return p.nanos }
func (p PreciseTime) Microseconds() int64 { return p.nanos / nanosPerMicro }
func (p PreciseTime) Milliseconds() int64 { return p.nanos / nanosPerMilli }
func (p PreciseTime) Seconds() int64      { return p.nanos / nanosPerSecond }
func (p PreciseTime) Minutes() int64      { return p.nanos / nanosPerMinute }
func (p PreciseTime) Hours() int64        { return p.nanos / nanosPerHour }
func (p PreciseTime) Days() int64         { return p.nanos / nanosPerDay }

// Duration returns p as a time.Duration. Both count nanoseconds in an int64,
// so the conversion is exact.
func (p PreciseTime) Duration() time.Duration { return time.Duration(p.nanos) }

// Add returns p+q. The sum is an interval only when both operands are.
func (p PreciseTime) Add(q PreciseTime) (PreciseTime, error) {
	ns, err := calendar.AddInt64(p.nanos, q.nanos)
	if err != nil {
		return PreciseTime{}, err
	}

	kind := KindDelta
	if p.kind == KindInterval && q.kind == KindInterval {
		kind = KindInterval
	}

	return PreciseTime{nanos: ns, kind: kind}, nil
}

// Format renders p as "[-][D ]HH:MM:SS.nnnnnnnnn", leaving out the day count
// when it is zero.
func (p PreciseTime) Format() string {
	b := make([]byte, 0, 40)

	// The magnitude is kept unsigned so that math.MinInt64 renders correctly.
	abs := uint64(p.nanos)
	if p.nanos < 0 {
		b = append(b, '-')
		abs = -abs
	}

	days := abs / uint64(nanosPerDay)
	rem := abs % uint64(nanosPerDay)

	if days > 0 {
		b = strconv.AppendUint(b, days, 10)
		b = append(b, ' ')
	}

	b = appendPadded(b, rem/uint64(nanosPerHour), 2)
	b = append(b, ':')
	b = appendPadded(b, rem%uint64(nanosPerHour)/uint64(nanosPerMinute), 2)
	b = append(b, ':')
	b = appendPadded(b, rem%uint64(nanosPerMinute)/uint64(nanosPerSecond), 2)
	b = append(b, '.')
	b = appendPadded(b, rem%uint64(nanosPerSecond), 9)

	return string(b)
}

func (p PreciseTime) String() string { return p.Format() }

func appendPadded(b []byte, v uint64, width int) []byte {
	var buf [20]byte

	digits := strconv.AppendUint(buf[:0], v, 10)
	for i := len(digits); i < width; i++ {
		b = append(b, '0')
	}

	return append(b, digits...)
}
