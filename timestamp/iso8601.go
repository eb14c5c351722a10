package timestamp

import (
	"errors"
	"fmt"
	"strconv"

	"github.com/plainq/stamp/stamperr"
)

const (
	// maxYearDigits bounds the year width accepted by Parse. Representable
	// years never have more than 9 digits.
	maxYearDigits = 18

	// maxFractionDigits is the millisecond precision of a Timestamp.
	maxFractionDigits = 3
)

// Compilation time check for interface implementation.
var _ error = (*ParseError)(nil)

// ParseError describes a failure to parse ISO 8601 text.
// Kind is one of stamperr.ErrMalformedSyntax, stamperr.ErrFieldOutOfRange or
// stamperr.ErrTrailingCharacters. errors.Is matches both Kind and Err.
type ParseError struct {
	Kind   stamperr.Error
	Input  string
	Offset int
	Err    error
}

func (e *ParseError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("parse timestamp %q at offset %d: %s: %s", e.Input, e.Offset, e.Kind, e.Err)
	}

	return fmt.Sprintf("parse timestamp %q at offset %d: %s", e.Input, e.Offset, e.Kind)
}

func (e *ParseError) Unwrap() []error {
	if e.Err != nil {
		return []error{e.Kind, e.Err}
	}

	return []error{e.Kind}
}

// Format returns the canonical ISO 8601 form of ts: [-]YYYY-MM-DDTHH:MM:SS.mmmZ.
func Format(ts Timestamp) string { return string(ts.AppendFormat(make([]byte, 0, 24))) }

// String implements fmt.Stringer and returns Format(t).
func (t Timestamp) String() string { return Format(t) }

// AppendFormat appends the canonical ISO 8601 form of t to b.
func (t Timestamp) AppendFormat(b []byte) []byte {
	year, month, day := t.Date()
	hour, minute, second, ms := t.Clock()

	b = appendYear(b, year)
	b = append(b, '-')
	b = appendPadded(b, int64(month), 2)
	b = append(b, '-')
	b = appendPadded(b, int64(day), 2)
	b = append(b, 'T')
	b = appendPadded(b, int64(hour), 2)
	b = append(b, ':')
	b = appendPadded(b, int64(minute), 2)
	b = append(b, ':')
	b = appendPadded(b, int64(second), 2)
	b = append(b, '.')
	b = appendPadded(b, int64(ms), 3)

	return append(b, 'Z')
}

// appendYear writes a year with at least four digits and a leading minus
// sign for years before 0000.
func appendYear(b []byte, year int64) []byte {
	if year < 0 {
		b = append(b, '-')
		year = -year
	}

	return appendPadded(b, year, 4)
}

// appendPadded writes a non-negative v zero-padded to width digits.
func appendPadded(b []byte, v int64, width int) []byte {
	var buf [20]byte

	digits := strconv.AppendInt(buf[:0], v, 10)
	for i := len(digits); i < width; i++ {
		b = append(b, '0')
	}

	return append(b, digits...)
}

// Parse parses ISO 8601 extended text in UTC. Besides the canonical form it
// accepts a date alone (YYYY-MM-DD), a time without fraction, a fraction of
// one to three digits, an omitted Z designator, an explicit '+' or '-' year
// sign and years wider than four digits. Time zone offsets are not supported.
func Parse(text string) (Timestamp, error) {
	p := parser{input: text}

	f, err := p.parse()
	if err != nil {
		return Timestamp{}, err
	}

	ts, fieldsErr := FromFields(f.year, f.month, f.day, f.hour, f.minute, f.second, f.millisecond)
	if fieldsErr != nil {
		return Timestamp{}, &ParseError{
			Kind:   stamperr.ErrFieldOutOfRange,
			Input:  text,
			Offset: 0,
			Err:    fieldsErr,
		}
	}

	return ts, nil
}

// MustParse is like Parse but panics on error.
func MustParse(text string) Timestamp { return Must(Parse(text)) }

type fields struct {
	year        int64
	month       int
	day         int
	hour        int
	minute      int
	second      int
	millisecond int
}

type parser struct {
	input string
	pos   int
}

func (p *parser) fail(kind stamperr.Error, err error) *ParseError {
	return &ParseError{Kind: kind, Input: p.input, Offset: p.pos, Err: err}
}

func (p *parser) eof() bool { return p.pos >= len(p.input) }

func (p *parser) peek() byte {
	if p.eof() {
		return 0
	}

	return p.input[p.pos]
}

func (p *parser) expect(c byte) error {
	if p.peek() != c {
		if p.eof() {
			return p.fail(stamperr.ErrMalformedSyntax, fmt.Errorf("expected %q, got end of input", c))
		}

		return p.fail(stamperr.ErrMalformedSyntax, fmt.Errorf("expected %q, got %q", c, p.peek()))
	}

	p.pos++

	return nil
}

// digits consumes the run of ASCII digits at the current position.
func (p *parser) digits() string {
	start := p.pos
	for !p.eof() && isDigit(p.peek()) {
		p.pos++
	}

	return p.input[start:p.pos]
}

// fixed consumes exactly n digits.
func (p *parser) fixed(n int, name string) (int, error) {
	start := p.pos

	d := p.digits()
	if len(d) != n {
		p.pos = start
		return 0, p.fail(stamperr.ErrMalformedSyntax, fmt.Errorf("%s must have %d digits", name, n))
	}

	v, err := strconv.Atoi(d)
	if err != nil {
		return 0, p.fail(stamperr.ErrMalformedSyntax, err)
	}

	return v, nil
}

func (p *parser) parse() (fields, error) {
	var f fields

	year, yearErr := p.year()
	if yearErr != nil {
		return f, yearErr
	}

	f.year = year

	var err error

	if err = p.expect('-'); err != nil {
		return f, err
	}

	if f.month, err = p.fixed(2, "month"); err != nil {
		return f, err
	}

	if err = p.expect('-'); err != nil {
		return f, err
	}

	if f.day, err = p.fixed(2, "day"); err != nil {
		return f, err
	}

	if p.eof() {
		return f, nil
	}

	switch p.peek() {
	case 'T', 't', ' ':
		p.pos++

	default:
		return f, p.fail(stamperr.ErrTrailingCharacters, nil)
	}

	if f.hour, err = p.fixed(2, "hour"); err != nil {
		return f, err
	}

	if err = p.expect(':'); err != nil {
		return f, err
	}

	if f.minute, err = p.fixed(2, "minute"); err != nil {
		return f, err
	}

	if err = p.expect(':'); err != nil {
		return f, err
	}

	if f.second, err = p.fixed(2, "second"); err != nil {
		return f, err
	}

	if c := p.peek(); c == '.' || c == ',' {
		p.pos++

		if f.millisecond, err = p.fraction(); err != nil {
			return f, err
		}
	}

	if c := p.peek(); c == 'Z' || c == 'z' {
		p.pos++
	}

	if !p.eof() {
		return f, p.fail(stamperr.ErrTrailingCharacters, nil)
	}

	return f, nil
}

func (p *parser) year() (int64, error) {
	negative := false

	switch p.peek() {
	case '-':
		negative = true
		p.pos++

	case '+':
		p.pos++
	}

	start := p.pos

	d := p.digits()

	switch {
	case len(d) < 4:
		p.pos = start
		return 0, p.fail(stamperr.ErrMalformedSyntax, errors.New("year must have at least 4 digits"))

	case len(d) > maxYearDigits:
		p.pos = start
		return 0, p.fail(stamperr.ErrFieldOutOfRange, fmt.Errorf("year has more than %d digits", maxYearDigits))
	}

	year, err := strconv.ParseInt(d, 10, 64)
	if err != nil {
		p.pos = start
		return 0, p.fail(stamperr.ErrFieldOutOfRange, err)
	}

	if negative {
		year = -year
	}

	return year, nil
}

// fraction parses one to three fractional second digits as milliseconds.
func (p *parser) fraction() (int, error) {
	start := p.pos

	d := p.digits()

	switch {
	case len(d) == 0:
		return 0, p.fail(stamperr.ErrMalformedSyntax, errors.New("missing fraction digits"))

	case len(d) > maxFractionDigits:
		p.pos = start + maxFractionDigits
		return 0, p.fail(stamperr.ErrFieldOutOfRange, errors.New("sub-millisecond precision is not supported"))
	}

	ms := 0
	for i := 0; i < maxFractionDigits; i++ {
		ms *= 10
		if i < len(d) {
			ms += int(d[i] - '0')
		}
	}

	return ms, nil
}

func isDigit(c byte) bool { return c >= '0' && c <= '9' }
