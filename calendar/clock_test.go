package calendar

import (
	"math"
	"testing"

	"github.com/maxatome/go-testdeep/td"
	"github.com/plainq/stamp/stamperr"
)

func TestMillisOfDay(t *testing.T) {
	type tcase struct {
		h, m, s, ms int
		want        int64
		wantErr     error
	}

	tests := map[string]tcase{
		"Midnight":    {want: 0},
		"Noon":        {h: 12, want: 12 * MillisPerHour},
		"LastMilli":   {h: 23, m: 59, s: 59, ms: 999, want: MillisPerDay - 1},
		"Hour24":      {h: 24, wantErr: stamperr.ErrInvalidField},
		"Minute60":    {m: 60, wantErr: stamperr.ErrInvalidField},
		"Second60":    {s: 60, wantErr: stamperr.ErrInvalidField},
		"Milli1000":   {ms: 1000, wantErr: stamperr.ErrInvalidField},
		"NegativeHrs": {h: -1, wantErr: stamperr.ErrInvalidField},
	}

	for name, tc := range tests {
		t.Run(name, func(t *testing.T) {
			got, err := MillisOfDay(tc.h, tc.m, tc.s, tc.ms)
			td.CmpErrorIs(t, err, tc.wantErr)
			td.Cmp(t, got, tc.want)
		})
	}
}

func TestTimeOfDay(t *testing.T) {
	for ms := int64(0); ms < MillisPerDay; ms += 7919 {
		h, m, s, milli := TimeOfDay(ms)

		back, err := MillisOfDay(h, m, s, milli)
		td.CmpNoError(t, err)
		td.Cmp(t, back, ms)
	}

	h, m, s, milli := TimeOfDay(-1)
	td.Cmp(t, []int{h, m, s, milli}, []int{23, 59, 59, 999})
}

func TestSplitJoinMillis(t *testing.T) {
	tests := map[string]struct {
		millis    int64
		wantDays  int64
		wantOfDay int64
	}{
		"Zero":      {millis: 0, wantDays: 0, wantOfDay: 0},
		"OneDay":    {millis: MillisPerDay, wantDays: 1, wantOfDay: 0},
		"MinusOne":  {millis: -1, wantDays: -1, wantOfDay: MillisPerDay - 1},
		"MinusDay":  {millis: -MillisPerDay, wantDays: -1, wantOfDay: 0},
		"UnixEpoch": {millis: UnixEpochMillis + 5, wantDays: UnixEpochDays, wantOfDay: 5},
		"MaxInt64":  {millis: math.MaxInt64, wantDays: math.MaxInt64 / MillisPerDay, wantOfDay: math.MaxInt64 % MillisPerDay},
		"MinInt64":  {millis: math.MinInt64, wantDays: math.MinInt64/MillisPerDay - 1, wantOfDay: math.MinInt64%MillisPerDay + MillisPerDay},
	}

	for name, tc := range tests {
		t.Run(name, func(t *testing.T) {
			days, ofDay := SplitMillis(tc.millis)
			td.Cmp(t, days, tc.wantDays)
			td.Cmp(t, ofDay, tc.wantOfDay)

			back, err := JoinMillis(days, ofDay)
			td.CmpNoError(t, err)
			td.Cmp(t, back, tc.millis)
		})
	}

	t.Run("Overflow", func(t *testing.T) {
		maxDays, _ := SplitMillis(math.MaxInt64)

		_, err := JoinMillis(maxDays+1, 0)
		td.CmpErrorIs(t, err, stamperr.ErrArithmeticOverflow)

		_, err = JoinMillis(maxDays, MillisPerDay-1)
		td.CmpErrorIs(t, err, stamperr.ErrArithmeticOverflow)
	})

	t.Run("InvalidOffset", func(t *testing.T) {
		_, err := JoinMillis(0, MillisPerDay)
		td.CmpErrorIs(t, err, stamperr.ErrInvalidField)
	})
}

func TestCheckedArithmetic(t *testing.T) {
	_, err := AddInt64(math.MaxInt64, 1)
	td.CmpErrorIs(t, err, stamperr.ErrArithmeticOverflow)

	_, err = AddInt64(math.MinInt64, -1)
	td.CmpErrorIs(t, err, stamperr.ErrArithmeticOverflow)

	_, err = SubInt64(math.MinInt64, 1)
	td.CmpErrorIs(t, err, stamperr.ErrArithmeticOverflow)

	_, err = SubInt64(0, math.MinInt64)
	td.CmpErrorIs(t, err, stamperr.ErrArithmeticOverflow)

	_, err = MulInt64(math.MaxInt64, 2)
	td.CmpErrorIs(t, err, stamperr.ErrArithmeticOverflow)

	_, err = MulInt64(-1, math.MinInt64)
	td.CmpErrorIs(t, err, stamperr.ErrArithmeticOverflow)

	v, err := MulInt64(-3, 4)
	td.CmpNoError(t, err)
	td.Cmp(t, v, int64(-12))

	v, err = SubInt64(-5, -7)
	td.CmpNoError(t, err)
	td.Cmp(t, v, int64(2))
}
