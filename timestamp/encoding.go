package timestamp

import (
	"bytes"
	"database/sql"
	"database/sql/driver"
	"encoding"
	"encoding/json"
	"fmt"
	"strconv"

	"github.com/plainq/stamp/calendar"
	"github.com/plainq/stamp/stamperr"
	"google.golang.org/protobuf/types/known/timestamppb"
)

// Compilation time check for interface implementation.
var (
	_ encoding.TextMarshaler   = Timestamp{}
	_ encoding.TextUnmarshaler = (*Timestamp)(nil)
	_ json.Unmarshaler         = (*Timestamp)(nil)
	_ driver.Valuer            = Timestamp{}
	_ sql.Scanner              = (*Timestamp)(nil)
)

const nanosPerMilli = 1_000_000

// MarshalText implements encoding.TextMarshaler using the canonical ISO 8601
// form. It is also used by encoding/json, so a Timestamp is a JSON string.
func (t Timestamp) MarshalText() ([]byte, error) {
	return t.AppendFormat(make([]byte, 0, 24)), nil
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (t *Timestamp) UnmarshalText(text []byte) error {
	ts, err := Parse(string(text))
	if err != nil {
		return err
	}

	*t = ts

	return nil
}

// UnmarshalJSON accepts either an ISO 8601 string or an integer count of
// milliseconds since the epoch. JSON null leaves t untouched.
func (t *Timestamp) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)

	if bytes.Equal(data, []byte("null")) {
		return nil
	}

	if len(data) > 0 && data[0] == '"' {
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return fmt.Errorf("%w: %w", stamperr.ErrMalformedSyntax, err)
		}

		return t.UnmarshalText([]byte(s))
	}

	millis, err := strconv.ParseInt(string(data), 10, 64)
	if err != nil {
		return fmt.Errorf("%w: timestamp %s: %w", stamperr.ErrMalformedSyntax, data, err)
	}

	*t = FromMillis(millis)

	return nil
}

// Value implements driver.Valuer. The stored form is the int64 millisecond count.
func (t Timestamp) Value() (driver.Value, error) { return t.millis, nil }

// Scan implements sql.Scanner. It accepts integer millisecond counts and
// ISO 8601 text. NULL is rejected since every Timestamp is a valid instant.
func (t *Timestamp) Scan(src any) error {
	switch v := src.(type) {
	case int64:
		*t = FromMillis(v)
		return nil

	case []byte:
		return t.scanText(string(v))

	case string:
		return t.scanText(v)

	case nil:
		return fmt.Errorf("%w: cannot scan NULL into Timestamp", stamperr.ErrInvalidInput)

	default:
		return fmt.Errorf("%w: cannot scan %T into Timestamp", stamperr.ErrInvalidInput, src)
	}
}

func (t *Timestamp) scanText(s string) error {
	if millis, err := strconv.ParseInt(s, 10, 64); err == nil {
		*t = FromMillis(millis)
		return nil
	}

	return t.UnmarshalText([]byte(s))
}

// ToProto converts t to a protobuf Timestamp (seconds since 1970-01-01).
func (t Timestamp) ToProto() (*timestamppb.Timestamp, error) {
	unix, err := t.UnixMilli()
	if err != nil {
		return nil, err
	}

	sec, ms := unix/calendar.MillisPerSecond, unix%calendar.MillisPerSecond
	if ms < 0 {
		ms += calendar.MillisPerSecond
		sec--
	}

	return &timestamppb.Timestamp{Seconds: sec, Nanos: int32(ms * nanosPerMilli)}, nil
}

// FromProto converts a protobuf Timestamp, truncating it to the millisecond.
func FromProto(p *timestamppb.Timestamp) (Timestamp, error) {
	if p == nil {
		return Timestamp{}, fmt.Errorf("%w: nil protobuf timestamp", stamperr.ErrInvalidInput)
	}

	nanos := p.GetNanos()
	if nanos < 0 || nanos >= 1_000_000_000 {
		return Timestamp{}, fmt.Errorf("nanos %d: %w", nanos, stamperr.ErrInvalidField)
	}

	unix, err := calendar.MulInt64(p.GetSeconds(), calendar.MillisPerSecond)
	if err != nil {
		return Timestamp{}, fmt.Errorf("seconds %d: %w", p.GetSeconds(), err)
	}

	if unix, err = calendar.AddInt64(unix, int64(nanos/nanosPerMilli)); err != nil {
		return Timestamp{}, fmt.Errorf("seconds %d: %w", p.GetSeconds(), err)
	}

	return FromUnixMilli(unix)
}
