package timestamp

import (
	"fmt"
	"io"
	"strconv"
	"sync"

	"github.com/cockroachdb/swiss"
	"github.com/plainq/stamp/stamperr"
	"github.com/valyala/fasttemplate"
)

// Layout placeholders are enclosed in braces:
//
//	{Y} year, at least 4 digits, signed when negative
//	{m} 2 digit month
//	{d} 2 digit day of month
//	{D} days since the epoch
//	{H} 2 digit hour
//	{M} 2 digit minute
//	{S} 2 digit second
//	{f} 3 digit millisecond
//	{j} 3 digit day of year
//	{w} day of week, 0 is Sunday
const (
	LayoutISO8601  = "{Y}-{m}-{d}T{H}:{M}:{S}.{f}Z"
	LayoutDateTime = "{Y}-{m}-{d} {H}:{M}:{S}.{f}"
	LayoutDate     = "{Y}-{m}-{d}"
	LayoutTime     = "{H}:{M}:{S}.{f}"
)

const (
	layoutStartTag = "{"
	layoutEndTag   = "}"

	// layoutCacheSize bounds the number of compiled layouts kept around.
	layoutCacheSize = 128
)

// layouts holds compiled layout templates.
var layouts = newLayoutCache(layoutCacheSize)

type layoutCache struct {
	mu   sync.Mutex
	size int
	m    *swiss.Map[string, *fasttemplate.Template]
}

func newLayoutCache(size int) *layoutCache {
	return &layoutCache{
		size: size,
		m:    swiss.New[string, *fasttemplate.Template](size),
	}
}

func (c *layoutCache) get(layout string) (*fasttemplate.Template, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if tpl, ok := c.m.Get(layout); ok {
		return tpl, nil
	}

	tpl, err := fasttemplate.NewTemplate(layout, layoutStartTag, layoutEndTag)
	if err != nil {
		return nil, fmt.Errorf("%w: layout %q: %w", stamperr.ErrInvalidInput, layout, err)
	}

	// Only layouts made of known placeholders are cached.
	if _, err := tpl.ExecuteFuncStringWithErr(checkLayoutTag); err != nil {
		return nil, err
	}

	if c.m.Len() < c.size {
		c.m.Put(layout, tpl)
	}

	return tpl, nil
}

func checkLayoutTag(_ io.Writer, tag string) (int, error) {
	switch tag {
	case "Y", "m", "d", "D", "H", "M", "S", "f", "j", "w":
		return 0, nil

	default:
		return 0, unknownLayoutTag(tag)
	}
}

func unknownLayoutTag(tag string) error {
	return fmt.Errorf("%w: unknown layout placeholder {%s}", stamperr.ErrInvalidInput, tag)
}

// Layout renders t with the given layout, see LayoutISO8601 for the
// placeholder syntax. Unknown placeholders are reported as
// stamperr.ErrInvalidInput.
func (t Timestamp) Layout(layout string) (string, error) {
	tpl, err := layouts.get(layout)
	if err != nil {
		return "", err
	}

	year, month, day := t.Date()
	hour, minute, second, ms := t.Clock()

	var buf [24]byte

	return tpl.ExecuteFuncStringWithErr(func(w io.Writer, tag string) (int, error) {
		b := buf[:0]

		switch tag {
		case "Y":
			b = appendYear(b, year)

		case "m":
			b = appendPadded(b, int64(month), 2)

		case "d":
			b = appendPadded(b, int64(day), 2)

		case "D":
			b = strconv.AppendInt(b, t.Days(), 10)

		case "H":
			b = appendPadded(b, int64(hour), 2)

		case "M":
			b = appendPadded(b, int64(minute), 2)

		case "S":
			b = appendPadded(b, int64(second), 2)

		case "f":
			b = appendPadded(b, int64(ms), 3)

		case "j":
			b = appendPadded(b, int64(t.YearDay()), 3)

		case "w":
			b = strconv.AppendInt(b, int64(t.Weekday()), 10)

		default:
			return 0, unknownLayoutTag(tag)
		}

		return w.Write(b)
	})
}
