// Package stopwatch measures elapsed time with nanosecond precision using a
// monotonic clock. A StopWatch is a plain value owned by its caller: it does
// no locking, so sharing one between goroutines needs external
// synchronization.
package stopwatch

import (
	"fmt"
	"slices"

	"github.com/plainq/stamp/calendar"
	"github.com/plainq/stamp/stamperr"
)

// State of a StopWatch.
type State uint8

const (
	Stopped State = iota
	Running
	Paused
)

func (s State) String() string {
	switch s {
	case Stopped:
		return "stopped"

	case Running:
		return "running"

	case Paused:
		return "paused"

	default:
		return fmt.Sprintf("State(%d)", uint8(s))
	}
}

// StopWatch accumulates the time spent in the Running state.
// The zero value is a stopped watch reading SystemClock.
type StopWatch struct {
	clock Clock
	state State

	// reference is the clock reading taken when the watch last entered Running.
	reference int64

	// accumulated holds the time of all completed running periods.
	accumulated int64

	// lapMark is the elapsed time at which the last lap ended.
	lapMark int64
	laps    []PreciseTime
}

// New returns a stopped StopWatch reading the given clock.
// A nil clock means SystemClock.
func New(clock Clock) *StopWatch {
	if clock == nil {
		clock = SystemClock{}
	}

	return &StopWatch{clock: clock}
}

// StartNew returns a StopWatch that is already running.
func StartNew(clock Clock) (*StopWatch, error) {
	w := New(clock)
	if err := w.Start(); err != nil {
		return nil, err
	}

	return w, nil
}

// State returns the current state.
func (w *StopWatch) State() State { return w.state }

// Start begins a fresh measurement. Previous accumulated time and laps are
// discarded. Starting a watch that is not Stopped is an error.
func (w *StopWatch) Start() error {
	if w.state != Stopped {
		return w.invalid("start")
	}

	now, err := w.now()
	if err != nil {
		return err
	}

	w.state = Running
	w.reference = now
	w.accumulated = 0
	w.lapMark = 0
	w.laps = nil

	return nil
}

// Pause moves a running watch to Paused, banking the current period.
func (w *StopWatch) Pause() error {
	if w.state != Running {
		return w.invalid("pause")
	}

	total, err := w.live()
	if err != nil {
		return err
	}

	w.state = Paused
	w.accumulated = total

	return nil
}

// Resume continues a paused watch.
func (w *StopWatch) Resume() error {
	if w.state != Paused {
		return w.invalid("resume")
	}

	now, err := w.now()
	if err != nil {
		return err
	}

	w.state = Running
	w.reference = now

	return nil
}

// Stop finishes the measurement. The elapsed time stays readable until the
// next Start or Reset.
func (w *StopWatch) Stop() error {
	switch w.state {
	case Running:
		total, err := w.live()
		if err != nil {
			return err
		}

		w.accumulated = total

	case Paused:

	default:
		return w.invalid("stop")
	}

	w.state = Stopped

	return nil
}

// Reset stops the watch and clears the elapsed time and laps.
// It never fails.
func (w *StopWatch) Reset() {
	w.state = Stopped
	w.reference = 0
	w.accumulated = 0
	w.lapMark = 0
	w.laps = nil
}

// Elapsed returns the accumulated time, including the current period when
// running. It does not change the state.
func (w *StopWatch) Elapsed() (PreciseTime, error) {
	if w.state != Running {
		return Interval(w.accumulated)
	}

	total, err := w.live()
	if err != nil {
		return PreciseTime{}, err
	}

	return Interval(total)
}

// Lap records the time since the previous lap, or since Start for the first
// one, and returns it. Laps can be taken while Running or Paused.
func (w *StopWatch) Lap() (PreciseTime, error) {
	if w.state == Stopped {
		return PreciseTime{}, w.invalid("lap")
	}

	elapsed, err := w.Elapsed()
	if err != nil {
		return PreciseTime{}, err
	}

	lap, err := Interval(elapsed.Nanoseconds() - w.lapMark)
	if err != nil {
		return PreciseTime{}, err
	}

	w.lapMark = elapsed.Nanoseconds()
	w.laps = append(w.laps, lap)

	return lap, nil
}

// Laps returns a copy of the recorded laps.
func (w *StopWatch) Laps() []PreciseTime { return slices.Clone(w.laps) }

// live returns accumulated plus the current running period.
func (w *StopWatch) live() (int64, error) {
	now, err := w.now()
	if err != nil {
		return 0, err
	}

	period, err := calendar.SubInt64(now, w.reference)
	if err != nil {
		return 0, err
	}

	// A monotonic clock must not go backwards; if it does, count nothing.
	period = max(period, 0)

	return calendar.AddInt64(w.accumulated, period)
}

func (w *StopWatch) now() (int64, error) {
	if w.clock == nil {
		w.clock = SystemClock{}
	}

	now, err := w.clock.Now()
	if err != nil {
		return 0, fmt.Errorf("%w: %w", stamperr.ErrClockUnavailable, err)
	}

	return now, nil
}

func (w *StopWatch) invalid(op string) error {
	return fmt.Errorf("%w: %s while %s", stamperr.ErrInvalidTransition, op, w.state)
}
