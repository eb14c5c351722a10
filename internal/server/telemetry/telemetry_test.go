package telemetry

import (
	"context"
	"testing"
	"time"

	"github.com/maxatome/go-testdeep/td"
)

func TestMetricName(t *testing.T) {
	tests := map[string]struct {
		name   string
		labels Labels
		want   string
	}{
		"NoLabels":  {name: "gc_duration", want: "gc_duration"},
		"OneLabel":  {name: "parse_errors_total", labels: Labels{{Key: "kind", Value: "malformed syntax"}}, want: `parse_errors_total{kind="malformed syntax"}`},
		"TwoLabels": {name: "m", labels: Labels{{Key: "a", Value: "1"}, {Key: "b", Value: "2"}}, want: `m{a="1", b="2"}`},
		"Quoted":    {name: "m", labels: Labels{{Key: "a", Value: `x"y`}}, want: `m{a="x\"y"}`},
	}

	for name, tc := range tests {
		t.Run(name, func(t *testing.T) {
			td.Cmp(t, MetricName(tc.name, tc.labels), tc.want)
		})
	}
}

func TestLabels(t *testing.T) {
	labels, err := LabelsFromString("op=create,task=bench")
	td.CmpNoError(t, err)
	td.Cmp(t, labels, Labels{{Key: "op", Value: "create"}, {Key: "task", Value: "bench"}})
	td.Cmp(t, labels.String(), "op=create,task=bench")
	td.Cmp(t, labels.Get("task"), "bench")
	td.Cmp(t, labels.Get("missing"), "")
	td.Cmp(t, labels.Map(), map[string]string{"op": "create", "task": "bench"})

	empty, err := LabelsFromString("")
	td.CmpNoError(t, err)
	td.CmpLen(t, empty, 0)

	_, err = LabelsFromString("op")
	td.CmpError(t, err)

	_, err = LabelsFromString("=v")
	td.CmpError(t, err)
}

func TestObservable(t *testing.T) {
	o := NewObserver()

	ok, err := o.Observable(context.Background(), "PARSE_ERRORS_TOTAL")
	td.CmpNoError(t, err)
	td.Cmp(t, ok, true)

	ok, err = o.Observable(context.Background(), "messages_sent_total")
	td.CmpNoError(t, err)
	td.Cmp(t, ok, false)

	td.Cmp(t, ObservableCount(), uint32(10))
}

func TestMetricsObserver(t *testing.T) {
	o := NewObserver()

	errs := o.ParseErrors("telemetry test")
	before := errs.Get()
	errs.Inc()
	errs.Add(2)
	td.Cmp(t, o.ParseErrors("telemetry test").Get(), before+3)

	exist := o.RecordsExist()
	start := exist.Get()
	exist.Add(5)
	exist.Dec()
	exist.Sub(2)
	td.Cmp(t, exist.Get(), start+2)

	// Histograms only record; make sure both paths are wired.
	o.StopwatchElapsed("telemetry test").Upd(0.25)
	o.StorageOpDuration("telemetry test").Dur(time.Now())
}
