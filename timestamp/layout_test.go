package timestamp

import (
	"testing"

	"github.com/maxatome/go-testdeep/td"
	"github.com/plainq/stamp/stamperr"
)

func TestLayout(t *testing.T) {
	ts := Must(FromFields(2024, 2, 29, 12, 3, 4, 5))

	tests := map[string]struct {
		layout string
		want   string
	}{
		"ISO8601":  {layout: LayoutISO8601, want: "2024-02-29T12:03:04.005Z"},
		"DateTime": {layout: LayoutDateTime, want: "2024-02-29 12:03:04.005"},
		"Date":     {layout: LayoutDate, want: "2024-02-29"},
		"Time":     {layout: LayoutTime, want: "12:03:04.005"},
		"Ordinal":  {layout: "{Y}-{j}", want: "2024-060"},
		"Weekday":  {layout: "weekday {w}", want: "weekday 4"},
		"Days":     {layout: "{D}", want: "739310"},
		"Repeated": {layout: "{d}/{d}", want: "29/29"},
		"NoTags":   {layout: "plain text", want: "plain text"},
		"Empty":    {layout: "", want: ""},
		"Adjacent": {layout: "{Y}{m}{d}", want: "20240229"},
		"Literals": {layout: "[{H}h{M}m]", want: "[12h03m]"},
	}

	for name, tc := range tests {
		t.Run(name, func(t *testing.T) {
			got, err := ts.Layout(tc.layout)
			td.CmpNoError(t, err)
			td.Cmp(t, got, tc.want)
		})
	}
}

func TestLayout_MatchesFormat(t *testing.T) {
	for _, ts := range []Timestamp{Min, FromMillis(-1), {}, Max} {
		got, err := ts.Layout(LayoutISO8601)
		td.CmpNoError(t, err)
		td.Cmp(t, got, Format(ts))
	}
}

func TestLayout_Errors(t *testing.T) {
	tests := map[string]string{
		"UnknownTag": "{Y}-{Q}",
		"Unclosed":   "{Y",
	}

	for name, layout := range tests {
		t.Run(name, func(t *testing.T) {
			_, err := UnixEpoch.Layout(layout)
			td.CmpErrorIs(t, err, stamperr.ErrInvalidInput)
		})
	}
}

func TestLayoutCache_Bounded(t *testing.T) {
	c := newLayoutCache(2)

	for _, layout := range []string{"{Y}", "{m}", "{d}", "{H}"} {
		tpl, err := c.get(layout)
		td.CmpNoError(t, err)
		td.CmpNotNil(t, tpl)
	}

	td.Cmp(t, c.m.Len(), 2)

	first, err := c.get("{Y}")
	td.CmpNoError(t, err)

	second, err := c.get("{Y}")
	td.CmpNoError(t, err)
	td.Cmp(t, first == second, true, "cached template is reused")
}

func TestLayoutCache_SkipsUnknownPlaceholders(t *testing.T) {
	c := newLayoutCache(2)

	for _, layout := range []string{"{Q}", "{Y}-{x}", "{nope}"} {
		tpl, err := c.get(layout)
		td.CmpErrorIs(t, err, stamperr.ErrInvalidInput)
		td.CmpNil(t, tpl)
	}

	td.Cmp(t, c.m.Len(), 0)

	_, err := c.get(LayoutDate)
	td.CmpNoError(t, err)
	td.Cmp(t, c.m.Len(), 1)
}
