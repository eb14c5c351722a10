package client

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/maxatome/go-testdeep/td"
	"github.com/plainq/servekit/logkit"
	"github.com/plainq/stamp/internal/server/config"
	"github.com/plainq/stamp/internal/server/service/instant"
	"github.com/plainq/stamp/internal/server/storage"
	"github.com/plainq/stamp/internal/server/telemetry"
	"github.com/plainq/stamp/stamperr"
	"github.com/plainq/stamp/timestamp"
)

func TestNew(t *testing.T) {
	tests := map[string]struct {
		addr string
		want string
	}{
		"HostPort":      {addr: "localhost:8081", want: "http://localhost:8081/api/v1"},
		"URL":           {addr: "https://stamp.example.com", want: "https://stamp.example.com/api/v1"},
		"TrailingSlash": {addr: "http://10.0.0.1:80/", want: "http://10.0.0.1:80/api/v1"},
		"Prefix":        {addr: "http://proxy/stamp", want: "http://proxy/stamp/api/v1"},
	}

	for name, tc := range tests {
		t.Run(name, func(t *testing.T) {
			c, err := New(tc.addr)
			td.Require(t).CmpNoError(err)
			td.Cmp(t, c.base.String(), tc.want)
		})
	}

	_, err := New("http://bad host:%%")
	td.CmpErrorIs(t, err, stamperr.ErrInvalidInput)
}

func TestClient_Time(t *testing.T) {
	svc := instant.NewService(&config.Config{}, logkit.NewNop(),
		timestamp.FixedClock(time.Date(2024, 2, 29, 12, 0, 0, 0, time.UTC)),
		telemetry.NewObserver(),
	)

	router := chi.NewRouter()
	router.Mount("/api/v1/time", svc)

	srv := httptest.NewServer(router)
	t.Cleanup(srv.Close)

	c, err := New(srv.URL, WithUserAgent("stamp-test"))
	td.Require(t).CmpNoError(err)

	now, nowErr := c.Now(context.Background())
	td.Require(t).CmpNoError(nowErr)
	td.Cmp(t, now.ISO.String(), "2024-02-29T12:00:00.000Z")
	td.Cmp(t, now.Weekday, "Thursday")

	parsed, parseErr := c.Parse(context.Background(), "-0001-12-31")
	td.Require(t).CmpNoError(parseErr)
	td.Cmp(t, parsed.Fields.Year, int64(-1))
	td.Cmp(t, parsed.Millis, int64(-86_400_000))

	_, parseErr = c.Parse(context.Background(), "2024-02-30")
	td.CmpErrorIs(t, parseErr, stamperr.ErrInvalidInput)
}

func TestClient_Records(t *testing.T) {
	const id = "cq7s0ukd3k4ed5r0bbh0"

	rec := storage.Record{
		ID:     id,
		Label:  "deploy",
		Record: timestamp.NewRecord(timestamp.MustParse("2024-02-29T12:00:00.500Z")),
	}

	var gotQuery string

	router := chi.NewRouter()
	router.Route("/api/v1/records", func(r chi.Router) {
		r.Get("/", func(w http.ResponseWriter, r *http.Request) {
			gotQuery = r.URL.RawQuery
			_ = json.NewEncoder(w).Encode(storage.ListRecordsOutput{Records: []storage.Record{rec}})
		})
		r.Post("/", func(w http.ResponseWriter, r *http.Request) {
			var in struct{ Label string }
			_ = json.NewDecoder(r.Body).Decode(&in)

			out := rec
			out.Label = in.Label

			w.WriteHeader(http.StatusCreated)
			_ = json.NewEncoder(w).Encode(out)
		})
		r.Get("/{id}", func(w http.ResponseWriter, r *http.Request) {
			if chi.URLParam(r, "id") != id {
				http.Error(w, "record not found", http.StatusNotFound)
				return
			}

			_ = json.NewEncoder(w).Encode(rec)
		})
		r.Get("/{id}/age", func(w http.ResponseWriter, r *http.Request) {
			gotQuery = r.URL.RawQuery
			_, _ = w.Write([]byte(`{"now":"2024-03-01T00:00:00.000Z","since_created":"11:59:59.500","since_updated":"11:59:59.500","expired":true}`))
		})
		r.Delete("/{id}", func(w http.ResponseWriter, _ *http.Request) {
			w.WriteHeader(http.StatusNoContent)
		})
	})

	srv := httptest.NewServer(router)
	t.Cleanup(srv.Close)

	c, err := New(srv.URL)
	td.Require(t).CmpNoError(err)

	ctx := context.Background()

	created, createErr := c.CreateRecord(ctx, "release")
	td.Require(t).CmpNoError(createErr)
	td.Cmp(t, created.Label, "release")
	td.Cmp(t, created.Created, rec.Created)

	got, getErr := c.GetRecord(ctx, id)
	td.Require(t).CmpNoError(getErr)
	td.Cmp(t, got, &rec)

	_, getErr = c.GetRecord(ctx, "cq7s0ukd3k4ed5r0bbhg")
	td.CmpErrorIs(t, getErr, stamperr.ErrNotFound)

	list, listErr := c.ListRecords(ctx, storage.ListRecordsInput{Cursor: id, Limit: 10, Order: storage.SortDesc})
	td.Require(t).CmpNoError(listErr)
	td.Cmp(t, list.Records, []storage.Record{rec})
	td.Cmp(t, gotQuery, "cursor="+id+"&limit=10&order=desc")

	age, ageErr := c.RecordAge(ctx, id, 36*time.Hour)
	td.Require(t).CmpNoError(ageErr)
	td.Cmp(t, gotQuery, "retention=36h0m0s")
	td.Cmp(t, age.SinceUpdated, "11:59:59.500")
	td.Cmp(t, age.Expired, td.Ptr(true))

	td.CmpNoError(t, c.DeleteRecord(ctx, id))
}
