package telemetry

import (
	"context"
	"fmt"
	"math"
	"strings"
	"sync"
	"time"

	"github.com/VictoriaMetrics/metrics"
)

// observedMetrics represents a set of observed metrics.
var observedMetrics = map[string]struct{}{
	"timestamps_formatted_total": {}, // counter.
	"timestamps_parsed_total":    {}, // counter.
	"parse_errors_total":         {}, // counter.
	"records_exist":              {}, // gauge.
	"records_touched_total":      {}, // counter.
	"records_swept_total":        {}, // counter.
	"stopwatch_elapsed_seconds":  {}, // histogram.
	"storage_op_duration":        {}, // histogram.
	"gc_schedules_total":         {}, // counter.
	"gc_duration":                {}, // histogram.
}

// Observable checks if a given metric is being observed.
func Observable(_ context.Context, metric string) (bool, error) {
	_, ok := observedMetrics[strings.ToLower(metric)]
	return ok, nil
}

// ObservableCount returns the number of observed metrics as an uint32 value.
func ObservableCount() uint32 {
	if len(observedMetrics) > math.MaxUint32 {
		return math.MaxUint32
	}
	return uint32(len(observedMetrics))
}

// Observer interface abstracts the logic of observing events and
// measuring metrics of those events.
type Observer interface {
	// Observable tels whether the metric is observed by collector.
	// Method is case-insensitive and will lowercase metric name.
	Observable(ctx context.Context, metric string) (bool, error)

	// TimestampsFormatted returns a Counter of timestamps rendered as text.
	TimestampsFormatted() Counter

	// TimestampsParsed returns a Counter of successfully parsed timestamps.
	TimestampsParsed() Counter

	// ParseErrors returns a Counter of rejected inputs of the given kind.
	ParseErrors(kind string) Counter

	// RecordsExist returns a Gauge of the stored records.
	RecordsExist() Gauge

	// RecordsTouched returns a Counter of record touches.
	RecordsTouched() Counter

	// RecordsSwept returns a Counter of records removed by the GC.
	RecordsSwept() Counter

	// StopwatchElapsed returns a Histogram of stopwatch measurements
	// for the named task, in seconds.
	StopwatchElapsed(task string) Histogram

	// StorageOpDuration returns a Histogram of storage operation latency.
	StorageOpDuration(op string) Histogram

	// GCSchedules.
	GCSchedules() Counter

	// GCDuration.
	GCDuration() Histogram
}

// Histogram interface represents a type that can be used to collect and analyze duration data.
type Histogram interface {
	// Dur track the duration since given time.
	Dur(since time.Time)

	// Upd records a raw value.
	Upd(n float64)
}

// Counter represents a simple counter.
type Counter interface {
	// Inc increments the underlying value.
	Inc()

	// Add adds n to the underlying value.
	Add(n uint64)

	// Get returns the underlying value.
	Get() uint64
}

// Gauge wraps Counter with decrementing logic.
type Gauge interface {
	Counter

	// Dec decrements the underlying value.
	Dec()

	// Sub decrements n from the underlying value.
	Sub(n uint64)
}

// Compilation time check for interface implementation.
var _ Observer = (*MetricsObserver)(nil)

// MetricsObserver implements the Observer interface.
type MetricsObserver struct{ observers obsPool[observe] }

func (*MetricsObserver) Observable(ctx context.Context, metric string) (bool, error) {
	return Observable(ctx, metric)
}

// NewObserver returns a pointer to a new instance of MetricsObserver.
func NewObserver() *MetricsObserver {
	o := MetricsObserver{observers: obsPool[observe]{
		pool: sync.Pool{New: func() any { return &observe{} }},
	}}

	return &o
}

func (o *MetricsObserver) TimestampsFormatted() Counter {
	return o.counter(`timestamps_formatted_total`)
}

func (o *MetricsObserver) TimestampsParsed() Counter {
	return o.counter(`timestamps_parsed_total`)
}

func (o *MetricsObserver) ParseErrors(kind string) Counter {
	return o.counter(MetricName("parse_errors_total", Labels{{Key: "kind", Value: kind}}))
}

func (o *MetricsObserver) RecordsTouched() Counter {
	return o.counter(`records_touched_total`)
}

func (o *MetricsObserver) RecordsSwept() Counter {
	return o.counter(`records_swept_total`)
}

func (o *MetricsObserver) RecordsExist() Gauge {
	vmGauge := metrics.GetOrCreateCounter(`records_exist`)

	obs := o.observers.get()
	obs.inc = func() { vmGauge.Inc() }
	obs.dec = func() { vmGauge.Dec() }
	obs.get = func() uint64 { return vmGauge.Get() }
	obs.add = func(n uint64) { vmGauge.Add(clampInt(n)) }
	obs.sub = func(n uint64) { vmGauge.Add(-clampInt(n)) }

	return obs
}

func (o *MetricsObserver) StopwatchElapsed(task string) Histogram {
	return o.histogram(MetricName("stopwatch_elapsed_seconds", Labels{{Key: "task", Value: task}}))
}

func (o *MetricsObserver) StorageOpDuration(op string) Histogram {
	return o.histogram(MetricName("storage_op_duration", Labels{{Key: "op", Value: op}}))
}

func (o *MetricsObserver) GCSchedules() Counter {
	return o.counter(`gc_schedules_total`)
}

func (o *MetricsObserver) GCDuration() Histogram {
	return o.histogram(`gc_duration`)
}

func (o *MetricsObserver) counter(name string) Counter {
	vmCounter := metrics.GetOrCreateCounter(name)

	obs := o.observers.get()
	obs.inc = func() { vmCounter.Inc() }
	obs.get = func() uint64 { return vmCounter.Get() }
	obs.add = func(n uint64) { vmCounter.Add(clampInt(n)) }

	return obs
}

func (o *MetricsObserver) histogram(name string) Histogram {
	vmHis := metrics.GetOrCreateHistogram(name)

	obs := o.observers.get()
	obs.dur = func(t time.Time) { vmHis.UpdateDuration(t) }
	obs.upd = func(n float64) { vmHis.Update(n) }

	return obs
}

func clampInt(n uint64) int {
	if n > math.MaxInt {
		return math.MaxInt
	}

	return int(n)
}

// observe implements Counter, Gauge and Histogram interfaces
// using the VictoriaMetrics metric library.
type observe struct {
	inc func()
	dec func()
	get func() uint64
	add func(n uint64)
	sub func(n uint64)
	dur func(t time.Time)
	upd func(n float64)
}

func (c *observe) Dec()                { c.dec() }
func (c *observe) Inc()                { c.inc() }
func (c *observe) Add(n uint64)        { c.add(n) }
func (c *observe) Sub(n uint64)        { c.sub(n) }
func (c *observe) Get() uint64         { return c.get() }
func (c *observe) Dur(since time.Time) { c.dur(since) }
func (c *observe) Upd(n float64)       { c.upd(n) }

type obsPool[T observe] struct{ pool sync.Pool }

func (p *obsPool[T]) get() *T {
	v, ok := p.pool.Get().(*T)
	if !ok {
		panic(fmt.Errorf("failed to cast %v to T", v))
	}

	return v
}
