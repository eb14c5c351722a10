package record

import (
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/plainq/servekit/errkit"
	"github.com/plainq/servekit/respond"
	"github.com/plainq/stamp/internal/server/storage"
	"github.com/plainq/stamp/stamperr"
	"github.com/plainq/stamp/timestamp"
)

// CreateRecordRequest is the body of a create request.
type CreateRecordRequest struct {
	Label string `json:"label"`
}

// RecordAgeResponse tells how long ago a record was created and touched.
type RecordAgeResponse struct {
	Now          timestamp.Timestamp `json:"now"`
	SinceCreated string              `json:"since_created"`
	SinceUpdated string              `json:"since_updated"`

	// Expired is set only when a retention was given.
	Expired *bool `json:"expired,omitempty"`
}

func (s *Service) createRecordHandler(w http.ResponseWriter, r *http.Request) {
	var input CreateRecordRequest

	if err := json.NewDecoder(r.Body).Decode(&input); err != nil {
		respond.ErrorHTTP(w, r, fmt.Errorf("%w: decode request: %w", errkit.ErrInvalidArgument, err))
		return
	}

	defer func() {
		if err := r.Body.Close(); err != nil {
			s.logger.Error("create record: close request body",
				slog.String("error", err.Error()),
			)
		}
	}()

	output, createErr := s.storage.CreateRecord(r.Context(), input.Label)
	if createErr != nil {
		respond.ErrorHTTP(w, r, httpError(createErr))
		return
	}

	respond.JSON(w, r, output, respond.WithStatus(http.StatusCreated))
}

func (s *Service) listRecordsHandler(w http.ResponseWriter, r *http.Request) {
	input := storage.ListRecordsInput{
		Cursor: r.URL.Query().Get("cursor"),
		Order:  storage.SortAsc,
	}

	if input.Cursor != "" {
		if err := validateRecordID(input.Cursor); err != nil {
			respond.ErrorHTTP(w, r, fmt.Errorf("%w: invalid cursor", errkit.ErrInvalidArgument))
			return
		}
	}

	switch order := r.URL.Query().Get("order"); order {
	case "", string(storage.SortAsc):

	case string(storage.SortDesc):
		input.Order = storage.SortDesc

	default:
		respond.ErrorHTTP(w, r, fmt.Errorf("%w: invalid order %q", errkit.ErrInvalidArgument, order))
		return
	}

	if l := r.URL.Query().Get("limit"); l != "" {
		limit, parseErr := strconv.ParseUint(l, 10, 32)
		if parseErr != nil || limit < 1 {
			respond.ErrorHTTP(w, r, fmt.Errorf("%w: invalid limit", errkit.ErrInvalidArgument))
			return
		}

		input.Limit = uint32(limit)
	}

	output, listErr := s.storage.ListRecords(r.Context(), input)
	if listErr != nil {
		respond.ErrorHTTP(w, r, httpError(listErr))
		return
	}

	respond.JSON(w, r, output)
}

func (s *Service) getRecordHandler(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	if err := validateRecordID(id); err != nil {
		respond.ErrorHTTP(w, r, err)
		return
	}

	output, getErr := s.storage.GetRecord(r.Context(), id)
	if getErr != nil {
		respond.ErrorHTTP(w, r, httpError(getErr))
		return
	}

	respond.JSON(w, r, output, respond.WithStatus(http.StatusOK))
}

func (s *Service) recordAgeHandler(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	if err := validateRecordID(id); err != nil {
		respond.ErrorHTTP(w, r, err)
		return
	}

	var (
		retention    timestamp.Span
		hasRetention bool
	)

	if v := r.URL.Query().Get("retention"); v != "" {
		d, parseErr := time.ParseDuration(v)
		if parseErr != nil {
			respond.ErrorHTTP(w, r, fmt.Errorf("%w: retention: %w", errkit.ErrInvalidArgument, parseErr))
			return
		}

		span, spanErr := timestamp.SpanFromDuration(d)
		if spanErr != nil {
			respond.ErrorHTTP(w, r, httpError(spanErr))
			return
		}

		retention, hasRetention = span, true
	}

	record, getErr := s.storage.GetRecord(r.Context(), id)
	if getErr != nil {
		respond.ErrorHTTP(w, r, httpError(getErr))
		return
	}

	now, nowErr := timestamp.NowFrom(s.clock)
	if nowErr != nil {
		respond.ErrorHTTP(w, r, nowErr)
		return
	}

	output := RecordAgeResponse{
		Now:          now,
		SinceCreated: age(record.Created, now),
		SinceUpdated: age(record.Updated, now),
	}

	if hasRetention {
		expired := record.HasElapsedSinceUpdate(now, retention)
		output.Expired = &expired
	}

	respond.JSON(w, r, output, respond.WithStatus(http.StatusOK))
}

func (s *Service) touchRecordHandler(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	if err := validateRecordID(id); err != nil {
		respond.ErrorHTTP(w, r, err)
		return
	}

	output, touchErr := s.storage.TouchRecord(r.Context(), id)
	if touchErr != nil {
		respond.ErrorHTTP(w, r, httpError(touchErr))
		return
	}

	respond.JSON(w, r, output, respond.WithStatus(http.StatusOK))
}

func (s *Service) deleteRecordHandler(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	if err := validateRecordID(id); err != nil {
		respond.ErrorHTTP(w, r, err)
		return
	}

	if err := s.storage.DeleteRecord(r.Context(), id); err != nil {
		respond.ErrorHTTP(w, r, httpError(err))
		return
	}

	respond.Status(w, r, http.StatusNoContent)
}

// age renders the time from 'from' to now. A record from the future has age zero.
func age(from, now timestamp.Timestamp) string {
	delta, err := now.Sub(from)
	if err != nil || delta < 0 {
		delta = 0
	}

	span, _ := timestamp.SpanOfMillis(delta)

	return span.Format()
}

// httpError maps domain errors onto errkit errors understood by respond.ErrorHTTP.
func httpError(err error) error {
	switch {
	case errors.Is(err, stamperr.ErrNotFound):
		return fmt.Errorf("%w: %w", errkit.ErrNotFound, err)

	case errors.Is(err, stamperr.ErrInvalidField),
		errors.Is(err, stamperr.ErrInvalidInput),
		errors.Is(err, stamperr.ErrArithmeticOverflow):
		return fmt.Errorf("%w: %w", errkit.ErrInvalidArgument, err)

	default:
		return err
	}
}
