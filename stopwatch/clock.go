package stopwatch

import "time"

// Compilation time check for interface implementation.
var (
	_ Clock = SystemClock{}
	_ Clock = ClockFunc(nil)
)

// Clock is a monotonic time source. Readings are nanoseconds from an
// arbitrary origin and are only meaningful relative to each other.
type Clock interface {
	Now() (int64, error)
}

// ClockFunc is an adapter to allow the use of ordinary functions as a Clock.
type ClockFunc func() (int64, error)

func (f ClockFunc) Now() (int64, error) { return f() }

// origin is an arbitrary point fixed at process start.
var origin = time.Now()

// SystemClock reads the Go runtime monotonic clock. Its readings have no
// meaning outside of the current process.
type SystemClock struct{}

func (SystemClock) Now() (int64, error) { return time.Since(origin).Nanoseconds(), nil }
