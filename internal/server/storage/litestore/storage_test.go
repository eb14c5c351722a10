package litestore

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/maxatome/go-testdeep/td"
	"github.com/plainq/servekit/dbkit/litekit"
	"github.com/plainq/servekit/errkit"
	"github.com/plainq/stamp/internal/server/mutations"
	"github.com/plainq/stamp/internal/server/storage"
	"github.com/plainq/stamp/stamperr"
	"github.com/plainq/stamp/timestamp"
)

// testClock is a settable wall clock.
type testClock struct{ now time.Time }

func (c *testClock) Now() (time.Time, error) { return c.now, nil }

func (c *testClock) advance(d time.Duration) { c.now = c.now.Add(d) }

func newTestStorage(t *testing.T, options ...Option) *Storage {
	t.Helper()

	conn, err := litekit.New(filepath.Join(t.TempDir(), "stamp.db"))
	td.Require(t).CmpNoError(err)

	evolver, err := litekit.NewEvolver(conn, mutations.StorageMutations())
	td.Require(t).CmpNoError(err)
	td.Require(t).CmpNoError(evolver.MutateSchema())

	s, err := New(conn, options...)
	td.Require(t).CmpNoError(err)

	t.Cleanup(func() { td.CmpNoError(t, s.Close()) })

	return s
}

func TestStorage_CreateGetTouchDelete(t *testing.T) {
	clock := &testClock{now: time.Date(2024, 2, 29, 12, 0, 0, 500_000_000, time.UTC)}
	s := newTestStorage(t, WithClock(clock))
	ctx := context.Background()

	created, err := s.CreateRecord(ctx, "deploy")
	td.Require(t).CmpNoError(err)
	td.Cmp(t, created.Label, "deploy")
	td.Cmp(t, created.Created.String(), "2024-02-29T12:00:00.500Z")
	td.Cmp(t, created.Updated, created.Created)

	got, err := s.GetRecord(ctx, created.ID)
	td.CmpNoError(t, err)
	td.Cmp(t, got, created)

	clock.advance(90 * time.Minute)

	touched, err := s.TouchRecord(ctx, created.ID)
	td.CmpNoError(t, err)
	td.Cmp(t, touched.Created, created.Created)
	td.Cmp(t, touched.Updated.String(), "2024-02-29T13:30:00.500Z")

	hour := mustSpan(timestamp.SpanOfHours(1))
	now := timestamp.Must(timestamp.NowFrom(clock))
	td.Cmp(t, touched.HasElapsedSinceCreated(now, hour), true)
	td.Cmp(t, touched.HasElapsedSinceUpdate(now, hour), false)

	td.CmpNoError(t, s.DeleteRecord(ctx, created.ID))

	_, err = s.GetRecord(ctx, created.ID)
	td.CmpErrorIs(t, err, stamperr.ErrNotFound)
}

func TestStorage_NotFound(t *testing.T) {
	s := newTestStorage(t)
	ctx := context.Background()

	_, err := s.GetRecord(ctx, "cnjqgb2m7jp1ro9sbb4g")
	td.CmpErrorIs(t, err, stamperr.ErrNotFound)

	_, err = s.TouchRecord(ctx, "cnjqgb2m7jp1ro9sbb4g")
	td.CmpErrorIs(t, err, stamperr.ErrNotFound)

	td.CmpErrorIs(t, s.DeleteRecord(ctx, "cnjqgb2m7jp1ro9sbb4g"), stamperr.ErrNotFound)
}

func TestStorage_CreateRecord_InvalidLabel(t *testing.T) {
	s := newTestStorage(t)

	tests := map[string]string{
		"Empty":   "",
		"Blank":   "   ",
		"TooLong": string(make([]byte, maxLabelLength+1)),
	}

	for name, label := range tests {
		t.Run(name, func(t *testing.T) {
			_, err := s.CreateRecord(context.Background(), label)
			td.CmpErrorIs(t, err, errkit.ErrInvalidArgument)
		})
	}
}

func TestStorage_CreateRecord_ClockFailure(t *testing.T) {
	clock := timestamp.ClockFunc(func() (time.Time, error) { return time.Time{}, context.DeadlineExceeded })
	s := newTestStorage(t, WithClock(clock))

	_, err := s.CreateRecord(context.Background(), "deploy")
	td.CmpErrorIs(t, err, stamperr.ErrClockUnavailable)
}

func TestStorage_ListRecords(t *testing.T) {
	s := newTestStorage(t)
	ctx := context.Background()

	ids := make([]string, 0, 5)

	for _, label := range []string{"a", "b", "c", "d", "e"} {
		r, err := s.CreateRecord(ctx, label)
		td.Require(t).CmpNoError(err)

		ids = append(ids, r.ID)
	}

	page, err := s.ListRecords(ctx, storage.ListRecordsInput{Limit: 2})
	td.Require(t).CmpNoError(err)
	td.Cmp(t, recordIDs(page.Records), ids[:2])
	td.Cmp(t, page.HasMore, true)
	td.Cmp(t, page.NextCursor, ids[1])

	page, err = s.ListRecords(ctx, storage.ListRecordsInput{Limit: 2, Cursor: page.NextCursor})
	td.Require(t).CmpNoError(err)
	td.Cmp(t, recordIDs(page.Records), ids[2:4])

	page, err = s.ListRecords(ctx, storage.ListRecordsInput{Limit: 2, Cursor: page.NextCursor})
	td.Require(t).CmpNoError(err)
	td.Cmp(t, recordIDs(page.Records), ids[4:])
	td.Cmp(t, page.HasMore, false)
	td.Cmp(t, page.NextCursor, "")

	page, err = s.ListRecords(ctx, storage.ListRecordsInput{Order: storage.SortDesc})
	td.Require(t).CmpNoError(err)
	td.Cmp(t, recordIDs(page.Records), []string{ids[4], ids[3], ids[2], ids[1], ids[0]})

	_, err = s.ListRecords(ctx, storage.ListRecordsInput{Limit: maxPageSize + 1})
	td.CmpErrorIs(t, err, errkit.ErrInvalidArgument)
}

func TestStorage_Sweep(t *testing.T) {
	clock := &testClock{now: time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)}
	day := mustSpan(timestamp.SpanOfDays(1))
	s := newTestStorage(t, WithClock(clock), WithRetention(day))
	ctx := context.Background()

	stale, err := s.CreateRecord(ctx, "stale")
	td.Require(t).CmpNoError(err)

	kept, err := s.CreateRecord(ctx, "kept")
	td.Require(t).CmpNoError(err)

	clock.advance(12 * time.Hour)

	_, err = s.TouchRecord(ctx, kept.ID)
	td.Require(t).CmpNoError(err)

	// Exactly one day after creation nothing has expired yet.
	clock.advance(12 * time.Hour)

	result, err := s.sweep(ctx)
	td.Require(t).CmpNoError(err)
	td.Cmp(t, result.RecordsSwept, uint64(0))

	clock.advance(time.Millisecond)

	result, err = s.sweep(ctx)
	td.Require(t).CmpNoError(err)
	td.Cmp(t, result.RecordsSwept, uint64(1))
	td.Cmp(t, result.Cutoff.String(), "2024-01-01T00:00:00.001Z")

	_, err = s.GetRecord(ctx, stale.ID)
	td.CmpErrorIs(t, err, stamperr.ErrNotFound)

	_, err = s.GetRecord(ctx, kept.ID)
	td.CmpNoError(t, err)
}

func TestStorage_Cache(t *testing.T) {
	s := newTestStorage(t, WithCacheSize(1))
	ctx := context.Background()

	first, err := s.CreateRecord(ctx, "first")
	td.Require(t).CmpNoError(err)

	second, err := s.CreateRecord(ctx, "second")
	td.Require(t).CmpNoError(err)

	td.Cmp(t, s.cache.len(), 1)

	_, cached := s.cache.get(first.ID)
	td.Cmp(t, cached, false)

	got, err := s.GetRecord(ctx, first.ID)
	td.Require(t).CmpNoError(err)
	td.Cmp(t, got, first)

	_, cached = s.cache.get(first.ID)
	td.Cmp(t, cached, true)

	td.CmpNoError(t, s.DeleteRecord(ctx, first.ID))
	td.Cmp(t, s.cache.len(), 0)

	got, err = s.GetRecord(ctx, second.ID)
	td.Require(t).CmpNoError(err)
	td.Cmp(t, got, second)
}

func recordIDs(records []storage.Record) []string {
	ids := make([]string, 0, len(records))

	for _, r := range records {
		ids = append(ids, r.ID)
	}

	return ids
}

func mustSpan(s timestamp.Span, err error) timestamp.Span {
	if err != nil {
		panic(err)
	}

	return s
}
