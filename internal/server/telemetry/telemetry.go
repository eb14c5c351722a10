package telemetry

import (
	"errors"
	"slices"
	"strings"
)

// Label is a pair of key/value metadata that is attached to a metric.
type Label struct{ Key, Value string }

// Labels represents a collection of Label pairs attached to a metric.
type Labels []Label

func (l Labels) Map() map[string]string {
	m := make(map[string]string, len(l))

	for _, label := range l {
		m[label.Key] = label.Value
	}

	return m
}

func (l Labels) String() string {
	pairs := make([]string, 0, len(l))

	for _, label := range l {
		pairs = append(pairs, label.Key+"="+label.Value)
	}

	return strings.Join(pairs, ",")
}

// Get returns the value of the label with the given key.
func (l Labels) Get(key string) string {
	idx := slices.IndexFunc(l, func(l Label) bool { return l.Key == key })
	if idx < 0 {
		return ""
	}

	return l[idx].Value
}

// LabelsFromString parses the "k=v,k=v" form produced by Labels.String.
func LabelsFromString(s string) (Labels, error) {
	if s == "" {
		return make(Labels, 0), nil
	}

	kvs := strings.Split(s, ",")

	labels := make([]Label, len(kvs))
	for i, kv := range kvs {
		key, value, ok := strings.Cut(kv, "=")
		if !ok || key == "" {
			return nil, errors.New("invalid labels format")
		}

		labels[i] = Label{Key: key, Value: value}
	}

	return labels, nil
}

// MetricName renders the name with labels in the form VictoriaMetrics
// expects, e.g. parse_errors_total{kind="malformed_syntax"}.
func MetricName(name string, labels Labels) string {
	if len(labels) == 0 {
		return name
	}

	var b strings.Builder

	b.WriteString(name)
	b.WriteByte('{')

	for i, label := range labels {
		if i > 0 {
			b.WriteString(", ")
		}

		b.WriteString(label.Key)
		b.WriteString(`="`)
		b.WriteString(strings.ReplaceAll(label.Value, `"`, `\"`))
		b.WriteByte('"')
	}

	b.WriteByte('}')

	return b.String()
}
