package instant

import (
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/plainq/servekit/errkit"
	"github.com/plainq/servekit/respond"
	"github.com/plainq/stamp/stamperr"
	"github.com/plainq/stamp/timestamp"
)

// Fields are the civil components of an instant.
type Fields struct {
	Year        int64 `json:"year"`
	Month       int   `json:"month"`
	Day         int   `json:"day"`
	Hour        int   `json:"hour"`
	Minute      int   `json:"minute"`
	Second      int   `json:"second"`
	Millisecond int   `json:"millisecond"`
}

// View is the representation of an instant returned by every handler.
type View struct {
	Millis  int64               `json:"millis"`
	ISO     timestamp.Timestamp `json:"iso"`
	Fields  Fields              `json:"fields"`
	Weekday string              `json:"weekday"`
	YearDay int                 `json:"year_day"`

	// UnixMillis is absent when the instant is out of the int64 Unix range.
	UnixMillis *int64 `json:"unix_millis,omitempty"`
}

// ParseRequest is the body of a parse request.
type ParseRequest struct {
	Text string `json:"text"`
}

// LayoutRequest is the body of a layout request. At takes ISO text or
// integer milliseconds.
type LayoutRequest struct {
	At     timestamp.Timestamp `json:"at"`
	Layout string              `json:"layout"`
}

// LayoutResponse holds rendered text.
type LayoutResponse struct {
	Text string `json:"text"`
}

// AddRequest shifts At by Millis, which may be negative.
type AddRequest struct {
	At     timestamp.Timestamp `json:"at"`
	Millis int64               `json:"millis"`
}

// NewView describes ts.
func NewView(ts timestamp.Timestamp) View {
	year, month, day := ts.Date()
	hour, minute, second, ms := ts.Clock()

	v := View{
		Millis: ts.Millis(),
		ISO:    ts,
		Fields: Fields{
			Year:        year,
			Month:       month,
			Day:         day,
			Hour:        hour,
			Minute:      minute,
			Second:      second,
			Millisecond: ms,
		},
		Weekday: ts.Weekday().String(),
		YearDay: ts.YearDay(),
	}

	if unix, err := ts.UnixMilli(); err == nil {
		v.UnixMillis = &unix
	}

	return v
}

func (s *Service) nowHandler(w http.ResponseWriter, r *http.Request) {
	now, err := timestamp.NowFrom(s.clock)
	if err != nil {
		respond.ErrorHTTP(w, r, err)
		return
	}

	s.render(w, r, now)
}

func (s *Service) millisHandler(w http.ResponseWriter, r *http.Request) {
	millis, err := strconv.ParseInt(chi.URLParam(r, "millis"), 10, 64)
	if err != nil {
		respond.ErrorHTTP(w, r, fmt.Errorf("%w: millis must be an int64: %w", errkit.ErrInvalidArgument, err))
		return
	}

	s.render(w, r, timestamp.FromMillis(millis))
}

func (s *Service) parseHandler(w http.ResponseWriter, r *http.Request) {
	var input ParseRequest

	if !s.decode(w, r, &input) {
		return
	}

	ts, err := timestamp.Parse(input.Text)
	if err != nil {
		s.countParseError(err)
		respond.ErrorHTTP(w, r, fmt.Errorf("%w: %w", errkit.ErrInvalidArgument, err))
		return
	}

	s.observer.TimestampsParsed().Inc()
	s.render(w, r, ts)
}

func (s *Service) fieldsHandler(w http.ResponseWriter, r *http.Request) {
	var input Fields

	if !s.decode(w, r, &input) {
		return
	}

	ts, err := timestamp.FromFields(input.Year, input.Month, input.Day, input.Hour, input.Minute, input.Second, input.Millisecond)
	if err != nil {
		respond.ErrorHTTP(w, r, httpError(err))
		return
	}

	s.render(w, r, ts)
}

func (s *Service) layoutHandler(w http.ResponseWriter, r *http.Request) {
	var input LayoutRequest

	if !s.decode(w, r, &input) {
		return
	}

	if input.Layout == "" {
		input.Layout = timestamp.LayoutISO8601
	}

	text, err := input.At.Layout(input.Layout)
	if err != nil {
		respond.ErrorHTTP(w, r, httpError(err))
		return
	}

	s.observer.TimestampsFormatted().Inc()
	respond.JSON(w, r, LayoutResponse{Text: text}, respond.WithStatus(http.StatusOK))
}

func (s *Service) addHandler(w http.ResponseWriter, r *http.Request) {
	var input AddRequest

	if !s.decode(w, r, &input) {
		return
	}

	ts, err := input.At.AddMillis(input.Millis)
	if err != nil {
		respond.ErrorHTTP(w, r, httpError(err))
		return
	}

	s.render(w, r, ts)
}

func (s *Service) render(w http.ResponseWriter, r *http.Request, ts timestamp.Timestamp) {
	s.observer.TimestampsFormatted().Inc()
	respond.JSON(w, r, NewView(ts), respond.WithStatus(http.StatusOK))
}

// decode reads the JSON body into v and reports whether handling may go on.
func (s *Service) decode(w http.ResponseWriter, r *http.Request, v any) bool {
	defer func() {
		if err := r.Body.Close(); err != nil {
			s.logger.Error("close request body",
				slog.String("path", r.URL.Path),
				slog.String("error", err.Error()),
			)
		}
	}()

	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		s.countParseError(err)
		respond.ErrorHTTP(w, r, fmt.Errorf("%w: decode request: %w", errkit.ErrInvalidArgument, err))
		return false
	}

	return true
}

// countParseError counts rejected timestamp text by error kind.
func (s *Service) countParseError(err error) {
	var pe *timestamp.ParseError
	if !errors.As(err, &pe) {
		return
	}

	s.observer.ParseErrors(parseErrorKind(pe.Kind)).Inc()
}

func parseErrorKind(kind stamperr.Error) string {
	return strings.ReplaceAll(string(kind), " ", "_")
}

// httpError maps domain errors onto errkit errors understood by respond.ErrorHTTP.
func httpError(err error) error {
	switch {
	case errors.Is(err, stamperr.ErrInvalidField),
		errors.Is(err, stamperr.ErrInvalidInput),
		errors.Is(err, stamperr.ErrArithmeticOverflow):
		return fmt.Errorf("%w: %w", errkit.ErrInvalidArgument, err)

	default:
		return err
	}
}
