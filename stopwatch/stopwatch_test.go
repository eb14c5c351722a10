package stopwatch

import (
	"errors"
	"testing"

	"github.com/maxatome/go-testdeep/td"
	"github.com/plainq/stamp/stamperr"
)

// scriptedClock returns the readings it holds, one per call.
type scriptedClock struct {
	readings []int64
	err      error
}

func (c *scriptedClock) Now() (int64, error) {
	if c.err != nil {
		return 0, c.err
	}

	if len(c.readings) == 0 {
		return 0, errors.New("script exhausted")
	}

	now := c.readings[0]
	c.readings = c.readings[1:]

	return now, nil
}

func (c *scriptedClock) push(readings ...int64) { c.readings = append(c.readings, readings...) }

func elapsedNanos(t *testing.T, w *StopWatch) int64 {
	t.Helper()

	p, err := w.Elapsed()
	td.CmpNoError(t, err)

	return p.Nanoseconds()
}

func TestStopWatch_PauseResume(t *testing.T) {
	clock := &scriptedClock{}
	w := New(clock)
	td.Cmp(t, w.State(), Stopped)
	td.Cmp(t, elapsedNanos(t, w), int64(0))

	clock.push(1_000)
	td.CmpNoError(t, w.Start())
	td.Cmp(t, w.State(), Running)

	clock.push(1_250)
	td.Cmp(t, elapsedNanos(t, w), int64(250))

	clock.push(1_400)
	td.CmpNoError(t, w.Pause())
	td.Cmp(t, w.State(), Paused)

	// Paused time does not count and needs no clock read.
	td.Cmp(t, elapsedNanos(t, w), int64(400))

	clock.push(5_000)
	td.CmpNoError(t, w.Resume())

	clock.push(5_600)
	td.CmpNoError(t, w.Stop())
	td.Cmp(t, w.State(), Stopped)
	td.Cmp(t, elapsedNanos(t, w), int64(1_000))
}

func TestStopWatch_StopWhilePaused(t *testing.T) {
	clock := &scriptedClock{readings: []int64{0, 30}}
	w := New(clock)

	td.CmpNoError(t, w.Start())
	td.CmpNoError(t, w.Pause())
	td.CmpNoError(t, w.Stop())
	td.Cmp(t, elapsedNanos(t, w), int64(30))
}

func TestStopWatch_StartBeginsFresh(t *testing.T) {
	clock := &scriptedClock{readings: []int64{0, 100, 200, 250}}
	w := New(clock)

	td.CmpNoError(t, w.Start())
	td.CmpNoError(t, w.Stop())
	td.Cmp(t, elapsedNanos(t, w), int64(100))

	td.CmpNoError(t, w.Start())
	td.CmpNoError(t, w.Stop())
	td.Cmp(t, elapsedNanos(t, w), int64(50))
}

func TestStopWatch_InvalidTransitions(t *testing.T) {
	tests := map[string]struct {
		setup func(w *StopWatch) error
		op    func(w *StopWatch) error
		state State
	}{
		"StartWhileRunning": {
			setup: func(w *StopWatch) error { return w.Start() },
			op:    (*StopWatch).Start,
			state: Running,
		},
		"StartWhilePaused": {
			setup: func(w *StopWatch) error {
				if err := w.Start(); err != nil {
					return err
				}
				return w.Pause()
			},
			op:    (*StopWatch).Start,
			state: Paused,
		},
		"PauseWhileStopped": {
			setup: func(*StopWatch) error { return nil },
			op:    (*StopWatch).Pause,
			state: Stopped,
		},
		"ResumeWhileStopped": {
			setup: func(*StopWatch) error { return nil },
			op:    (*StopWatch).Resume,
			state: Stopped,
		},
		"ResumeWhileRunning": {
			setup: func(w *StopWatch) error { return w.Start() },
			op:    (*StopWatch).Resume,
			state: Running,
		},
		"StopWhileStopped": {
			setup: func(*StopWatch) error { return nil },
			op:    (*StopWatch).Stop,
			state: Stopped,
		},
		"LapWhileStopped": {
			setup: func(*StopWatch) error { return nil },
			op: func(w *StopWatch) error {
				_, err := w.Lap()
				return err
			},
			state: Stopped,
		},
	}

	for name, tc := range tests {
		t.Run(name, func(t *testing.T) {
			clock := &scriptedClock{readings: []int64{10, 20, 30, 40}}
			w := New(clock)

			td.CmpNoError(t, tc.setup(w))
			td.CmpErrorIs(t, tc.op(w), stamperr.ErrInvalidTransition)
			td.Cmp(t, w.State(), tc.state)
		})
	}
}

func TestStopWatch_Reset(t *testing.T) {
	states := map[string]func(w *StopWatch) error{
		"Stopped": func(*StopWatch) error { return nil },
		"Running": func(w *StopWatch) error { return w.Start() },
		"Paused": func(w *StopWatch) error {
			if err := w.Start(); err != nil {
				return err
			}
			return w.Pause()
		},
		"StoppedAfterRun": func(w *StopWatch) error {
			if err := w.Start(); err != nil {
				return err
			}
			return w.Stop()
		},
	}

	for name, setup := range states {
		t.Run(name, func(t *testing.T) {
			w := New(&scriptedClock{readings: []int64{0, 500}})
			td.CmpNoError(t, setup(w))

			w.Reset()
			td.Cmp(t, w.State(), Stopped)
			td.Cmp(t, elapsedNanos(t, w), int64(0))
			td.CmpLen(t, w.Laps(), 0)
		})
	}
}

func TestStopWatch_ClockGoingBackwards(t *testing.T) {
	clock := &scriptedClock{readings: []int64{1_000, 900}}
	w := New(clock)

	td.CmpNoError(t, w.Start())
	td.CmpNoError(t, w.Pause())
	td.Cmp(t, elapsedNanos(t, w), int64(0))
}

func TestStopWatch_ClockFailure(t *testing.T) {
	errBroken := errors.New("no monotonic clock")

	clock := &scriptedClock{readings: []int64{0}}
	w := New(clock)
	td.CmpNoError(t, w.Start())

	clock.err = errBroken

	err := w.Pause()
	td.CmpErrorIs(t, err, stamperr.ErrClockUnavailable)
	td.CmpErrorIs(t, err, errBroken)
	td.Cmp(t, w.State(), Running, "state is unchanged")

	_, err = w.Elapsed()
	td.CmpErrorIs(t, err, stamperr.ErrClockUnavailable)

	td.CmpErrorIs(t, w.Stop(), stamperr.ErrClockUnavailable)
	td.Cmp(t, w.State(), Running)

	_, err = StartNew(ClockFunc(func() (int64, error) { return 0, errBroken }))
	td.CmpErrorIs(t, err, stamperr.ErrClockUnavailable)
}

func TestStopWatch_Laps(t *testing.T) {
	clock := &scriptedClock{readings: []int64{0, 100, 250, 300, 1_000, 1_100}}

	w, err := StartNew(clock)
	td.CmpNoError(t, err)

	lap, err := w.Lap() // 100
	td.CmpNoError(t, err)
	td.Cmp(t, lap.Nanoseconds(), int64(100))

	lap, err = w.Lap() // 250
	td.CmpNoError(t, err)
	td.Cmp(t, lap.Nanoseconds(), int64(150))

	td.CmpNoError(t, w.Pause())  // 300
	td.CmpNoError(t, w.Resume()) // 1000

	lap, err = w.Lap() // 1100, paused time excluded
	td.CmpNoError(t, err)
	td.Cmp(t, lap.Nanoseconds(), int64(150))

	laps := w.Laps()
	td.Cmp(t, len(laps), 3)

	laps[0] = Delta(-1)
	td.Cmp(t, w.Laps()[0].Nanoseconds(), int64(100), "Laps returns a copy")
}

func TestSystemClock_Monotonic(t *testing.T) {
	var clock SystemClock

	prev, err := clock.Now()
	td.CmpNoError(t, err)

	for range 1000 {
		now, err := clock.Now()
		td.CmpNoError(t, err)
		td.Cmp(t, now >= prev, true)

		prev = now
	}
}

func TestStopWatch_SystemClock(t *testing.T) {
	w, err := StartNew(nil)
	td.CmpNoError(t, err)
	td.CmpNoError(t, w.Stop())

	p, err := w.Elapsed()
	td.CmpNoError(t, err)
	td.Cmp(t, p.Negative(), false)
	td.Cmp(t, p.Kind(), KindInterval)
}

func TestStopWatch_ZeroValue(t *testing.T) {
	var w StopWatch

	td.Cmp(t, w.State(), Stopped)
	td.CmpNoError(t, w.Start())
	td.CmpNoError(t, w.Stop())

	p, err := w.Elapsed()
	td.CmpNoError(t, err)
	td.Cmp(t, p.Negative(), false)
}

func TestState_String(t *testing.T) {
	td.Cmp(t, Stopped.String(), "stopped")
	td.Cmp(t, Running.String(), "running")
	td.Cmp(t, Paused.String(), "paused")
}
