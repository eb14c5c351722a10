package calendar

import (
	"fmt"
	"math"

	"github.com/plainq/stamp/stamperr"
)

// AddInt64 returns a+b or ErrArithmeticOverflow.
func AddInt64(a, b int64) (int64, error) {
	if (b > 0 && a > math.MaxInt64-b) || (b < 0 && a < math.MinInt64-b) {
		return 0, fmt.Errorf("%d + %d: %w", a, b, stamperr.ErrArithmeticOverflow)
	}

	return a + b, nil
}

// SubInt64 returns a-b or ErrArithmeticOverflow.
func SubInt64(a, b int64) (int64, error) {
	if (b < 0 && a > math.MaxInt64+b) || (b > 0 && a < math.MinInt64+b) {
		return 0, fmt.Errorf("%d - %d: %w", a, b, stamperr.ErrArithmeticOverflow)
	}

	return a - b, nil
}

// MulInt64 returns a*b or ErrArithmeticOverflow.
func MulInt64(a, b int64) (int64, error) {
	if a == 0 || b == 0 {
		return 0, nil
	}

	if (a == -1 && b == math.MinInt64) || (b == -1 && a == math.MinInt64) {
		return 0, fmt.Errorf("%d * %d: %w", a, b, stamperr.ErrArithmeticOverflow)
	}

	c := a * b
	if c/b != a {
		return 0, fmt.Errorf("%d * %d: %w", a, b, stamperr.ErrArithmeticOverflow)
	}

	return c, nil
}

// floorDiv divides rounding toward negative infinity. b must be positive.
func floorDiv(a, b int64) int64 {
	q := a / b
	if a%b < 0 {
		q--
	}

	return q
}

// floorMod is the remainder matching floorDiv, always in [0, b).
func floorMod(a, b int64) int64 {
	r := a % b
	if r < 0 {
		r += b
	}

	return r
}
