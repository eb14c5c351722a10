package main

import (
	"errors"
	"fmt"
	"math"

	"github.com/heartwilltell/scotty"
	"github.com/plainq/stamp/internal/server/telemetry"
	"github.com/plainq/stamp/stamperr"
	"github.com/plainq/stamp/stopwatch"
	"github.com/plainq/stamp/timestamp"
)

const defaultBenchIterations = 100_000

// benchPhases are measured in this order, one stopwatch lap each.
var benchPhases = []string{"format", "parse", "layout"}

type benchPhase struct {
	Name    string
	Elapsed stopwatch.PreciseTime
}

// OpsPerSecond returns the throughput of the phase for n operations.
func (p benchPhase) OpsPerSecond(n uint) float64 {
	if p.Elapsed.Nanoseconds() == 0 {
		return math.Inf(1)
	}

	return float64(n) / p.Elapsed.Duration().Seconds()
}

func benchCommand() *scotty.Command {
	var iterations uint

	cmd := scotty.Command{
		Name:  "bench",
		Short: "Measure the ISO 8601 codec with a stopwatch",
		SetFlags: func(flags *scotty.FlagSet) {
			flags.UintVar(&iterations, "n", defaultBenchIterations,
				"number of instants per phase",
			)
		},
		Run: func(_ *scotty.Command, _ []string) error {
			phases, total, err := runBench(iterations, stopwatch.SystemClock{}, telemetry.NewObserver())
			if err != nil {
				return err
			}

			for _, p := range phases {
				fmt.Printf("%-8s %s  %.0f ops/s\n", p.Name, p.Elapsed, p.OpsPerSecond(iterations))
			}

			fmt.Printf("%-8s %s\n", "total", total)

			return nil
		},
	}

	return &cmd
}

// runBench formats, parses and lays out n instants spread over the whole
// representable range. Input generation is not measured.
func runBench(n uint, clock stopwatch.Clock, observer telemetry.Observer) ([]benchPhase, stopwatch.PreciseTime, error) {
	if n == 0 {
		return nil, stopwatch.PreciseTime{}, fmt.Errorf("%w: iterations must be positive", stamperr.ErrInvalidInput)
	}

	sw, err := stopwatch.StartNew(clock)
	if err != nil {
		return nil, stopwatch.PreciseTime{}, err
	}

	if err := sw.Pause(); err != nil {
		return nil, stopwatch.PreciseTime{}, err
	}

	inputs := make([]timestamp.Timestamp, n)
	texts := make([]string, n)
	step := math.MaxUint64 / uint64(n)

	for i := range inputs {
		inputs[i] = timestamp.FromMillis(int64(uint64(i)*step + 1<<63))
	}

	if err := sw.Resume(); err != nil {
		return nil, stopwatch.PreciseTime{}, err
	}

	for i, ts := range inputs {
		texts[i] = timestamp.Format(ts)
	}

	if _, err := sw.Lap(); err != nil {
		return nil, stopwatch.PreciseTime{}, err
	}

	for i, text := range texts {
		ts, parseErr := timestamp.Parse(text)
		if parseErr != nil {
			return nil, stopwatch.PreciseTime{}, parseErr
		}

		if ts != inputs[i] {
			return nil, stopwatch.PreciseTime{}, fmt.Errorf("round trip of %d gave %d", inputs[i].Millis(), ts.Millis())
		}
	}

	if _, err := sw.Lap(); err != nil {
		return nil, stopwatch.PreciseTime{}, err
	}

	for _, ts := range inputs {
		if _, layoutErr := ts.Layout(timestamp.LayoutDateTime); layoutErr != nil {
			return nil, stopwatch.PreciseTime{}, layoutErr
		}
	}

	if _, err := sw.Lap(); err != nil {
		return nil, stopwatch.PreciseTime{}, err
	}

	if err := sw.Stop(); err != nil {
		return nil, stopwatch.PreciseTime{}, err
	}

	total, totalErr := sw.Elapsed()
	if totalErr != nil {
		return nil, stopwatch.PreciseTime{}, totalErr
	}

	laps := sw.Laps()
	if len(laps) != len(benchPhases) {
		return nil, stopwatch.PreciseTime{}, errors.New("stopwatch lost a lap")
	}

	phases := make([]benchPhase, len(laps))

	for i, lap := range laps {
		phases[i] = benchPhase{Name: benchPhases[i], Elapsed: lap}
		observer.StopwatchElapsed("bench_" + benchPhases[i]).Upd(lap.Duration().Seconds())
	}

	return phases, total, nil
}
