package calendar

import (
	"fmt"

	"github.com/plainq/stamp/stamperr"
)

// MillisOfDay combines time-of-day fields into a millisecond offset
// in [0, MillisPerDay).
func MillisOfDay(hour, minute, second, millisecond int) (int64, error) {
	switch {
	case hour < 0 || hour > 23:
		return 0, fmt.Errorf("hour %d: %w", hour, stamperr.ErrInvalidField)

	case minute < 0 || minute > 59:
		return 0, fmt.Errorf("minute %d: %w", minute, stamperr.ErrInvalidField)

	case second < 0 || second > 59:
		return 0, fmt.Errorf("second %d: %w", second, stamperr.ErrInvalidField)

	case millisecond < 0 || millisecond > 999:
		return 0, fmt.Errorf("millisecond %d: %w", millisecond, stamperr.ErrInvalidField)
	}

	return int64(hour)*MillisPerHour +
		int64(minute)*MillisPerMinute +
		int64(second)*MillisPerSecond +
		int64(millisecond), nil
}

// TimeOfDay splits a millisecond offset into time-of-day fields.
// Offsets outside of a single day are reduced with floor semantics,
// so -1 is 23:59:59.999.
func TimeOfDay(millis int64) (hour, minute, second, millisecond int) {
	ms := floorMod(millis, MillisPerDay)

	hour = int(ms / MillisPerHour)
	minute = int(ms % MillisPerHour / MillisPerMinute)
	second = int(ms % MillisPerMinute / MillisPerSecond)
	millisecond = int(ms % MillisPerSecond)

	return hour, minute, second, millisecond
}

// SplitMillis splits a millisecond count into a day count and the offset
// within that day. The offset is always in [0, MillisPerDay).
func SplitMillis(millis int64) (days, millisOfDay int64) {
	return floorDiv(millis, MillisPerDay), floorMod(millis, MillisPerDay)
}

// JoinMillis is the inverse of SplitMillis.
func JoinMillis(days, millisOfDay int64) (int64, error) {
	if millisOfDay < 0 || millisOfDay >= MillisPerDay {
		return 0, fmt.Errorf("millis of day %d: %w", millisOfDay, stamperr.ErrInvalidField)
	}

	// Keep the product in range when the sum itself is near math.MinInt64.
	if days < 0 && millisOfDay > 0 {
		days++
		millisOfDay -= MillisPerDay
	}

	ms, err := MulInt64(days, MillisPerDay)
	if err != nil {
		return 0, fmt.Errorf("day %d: %w", days, err)
	}

	return AddInt64(ms, millisOfDay)
}
