// Package calendar converts between linear day and millisecond counts and
// proleptic Gregorian calendar fields.
//
// Day 0 is 0000-01-01. Year 0 and negative years follow the same leap year
// rule as positive years, the way ISO 8601 numbers them. All functions are
// pure; the ones that can overflow int64 report stamperr.ErrArithmeticOverflow
// instead of wrapping.
package calendar

import (
	"fmt"
	"time"

	"github.com/plainq/stamp/stamperr"
)

const (
	MillisPerSecond int64 = 1000
	MillisPerMinute       = 60 * MillisPerSecond
	MillisPerHour         = 60 * MillisPerMinute
	MillisPerDay          = 24 * MillisPerHour

	// DaysPer400Years is the length of one full Gregorian cycle (era).
	DaysPer400Years = 146097

	// UnixEpochDays is the day count of 1970-01-01.
	UnixEpochDays int64 = 719_528

	// UnixEpochMillis is the millisecond count of 1970-01-01T00:00:00.000.
	UnixEpochMillis = UnixEpochDays * MillisPerDay

	// marchOffset is the day count of 0000-03-01. Eras start in March so
	// the leap day is the last day of the computational year.
	marchOffset = 60
)

// daysBefore[m] counts the days in a non-leap year before month m+1 begins.
var daysBefore = [...]int{0, 31, 59, 90, 120, 151, 181, 212, 243, 273, 304, 334, 365}

// IsLeap reports whether year is a leap year.
func IsLeap(year int64) bool {
	return year%4 == 0 && (year%100 != 0 || year%400 == 0)
}

// DaysIn returns the number of days in the month of the year,
// or 0 when month is not in 1..12.
func DaysIn(year int64, month int) int {
	if month < 1 || month > 12 {
		return 0
	}

	if month == 2 && IsLeap(year) {
		return 29
	}

	return daysBefore[month] - daysBefore[month-1]
}

// ValidDate checks the month and day against the year.
func ValidDate(year int64, month, day int) error {
	if month < 1 || month > 12 {
		return fmt.Errorf("month %d: %w", month, stamperr.ErrInvalidField)
	}

	if day < 1 || day > DaysIn(year, month) {
		return fmt.Errorf("day %d of %04d-%02d: %w", day, year, month, stamperr.ErrInvalidField)
	}

	return nil
}

// DaysFromCivil returns the number of days from 0000-01-01 to the given date.
// Negative results precede the epoch.
func DaysFromCivil(year int64, month, day int) (int64, error) {
	if err := ValidDate(year, month, day); err != nil {
		return 0, err
	}

	y := year
	if month <= 2 {
		prev, err := SubInt64(year, 1)
		if err != nil {
			return 0, fmt.Errorf("year %d: %w", year, err)
		}

		y = prev
	}

	era, yoe := y/400, y%400
	if yoe < 0 {
		yoe += 400
		era--
	}

	mp := int64((month + 9) % 12) // March is 0.
	doy := (153*mp+2)/5 + int64(day) - 1
	doe := yoe*365 + yoe/4 - yoe/100 + doy // [0, 146096]

	days, err := MulInt64(era, DaysPer400Years)
	if err != nil {
		return 0, fmt.Errorf("year %d: %w", year, err)
	}

	if days, err = AddInt64(days, doe+marchOffset); err != nil {
		return 0, fmt.Errorf("year %d: %w", year, err)
	}

	return days, nil
}

// CivilFromDays is the inverse of DaysFromCivil. It is defined for every
// int64 day count.
func CivilFromDays(days int64) (year int64, month, day int) {
	era := days / DaysPer400Years
	doe := days%DaysPer400Years - marchOffset
	for doe < 0 {
		doe += DaysPer400Years
		era--
	}

	yoe := (doe - doe/1460 + doe/36524 - doe/146096) / 365
	doy := doe - (365*yoe + yoe/4 - yoe/100)
	mp := (5*doy + 2) / 153

	day = int(doy - (153*mp+2)/5 + 1)
	month = int(mp + 3)
	if mp >= 10 {
		month = int(mp - 9)
	}

	year = yoe + era*400
	if month <= 2 {
		year++
	}

	return year, month, day
}

// DayOfYear returns the 1-based ordinal of a date within its year,
// or 0 when the date is not valid.
func DayOfYear(year int64, month, day int) int {
	if ValidDate(year, month, day) != nil {
		return 0
	}

	n := daysBefore[month-1] + day
	if month > 2 && IsLeap(year) {
		n++
	}

	return n
}

// Weekday returns the day of the week of the given day count.
// 0000-01-01 is a Saturday.
func Weekday(days int64) time.Weekday {
	return time.Weekday((floorMod(days, 7) + 6) % 7)
}
