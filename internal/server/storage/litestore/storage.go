package litestore

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/heartwilltell/hc"
	"github.com/plainq/servekit/dbkit/litekit"
	"github.com/plainq/servekit/errkit"
	"github.com/plainq/servekit/idkit"
	"github.com/plainq/servekit/logkit"
	"github.com/plainq/stamp/internal/server/storage"
	"github.com/plainq/stamp/internal/server/telemetry"
	"github.com/plainq/stamp/stamperr"
	"github.com/plainq/stamp/timestamp"
)

// Compilation time check that Storage implements the storage.Storage and hc.HealthChecker.
var (
	_ storage.Storage  = (*Storage)(nil)
	_ hc.HealthChecker = (*Storage)(nil)
)

const (
	// gcTimeout represents default timeout between garbage collection runs.
	gcTimeout = 30 * time.Minute

	// defaultPageSize represents the default page size used for listing records.
	defaultPageSize uint32 = 10

	// maxPageSize caps the page size of a listing.
	maxPageSize uint32 = 1000

	// maxLabelLength caps the length of a record label.
	maxLabelLength = 256
)

// Option represents an optional functions which configures the Storage.
type Option func(o *Storage)

// WithGCTimeout sets the timeout for garbage collection.
func WithGCTimeout(to time.Duration) Option {
	return func(s *Storage) { s.gcTimeout = to }
}

// WithRetention sets the time after the last touch at which records are
// swept. A zero Span disables the garbage collection.
func WithRetention(retention timestamp.Span) Option {
	return func(s *Storage) { s.retention = retention }
}

// WithLogger sets the Storage logger.
func WithLogger(logger *slog.Logger) Option {
	return func(o *Storage) { o.logger = logger }
}

// WithClock sets the clock records are stamped with.
func WithClock(clock timestamp.Clock) Option {
	return func(s *Storage) { s.clock = clock }
}

// WithCacheSize sets how many records are kept in memory.
func WithCacheSize(size int) Option {
	return func(s *Storage) { s.cache = newRecordCache(size) }
}

// WithObserver sets the Storage observer.
func WithObserver(observer telemetry.Observer) Option {
	return func(s *Storage) { s.observer = observer }
}

// Storage keeps records in SQLite. Timestamps are stored as integer
// milliseconds since 0000-01-01.
type Storage struct {
	db     *litekit.Conn
	logger *slog.Logger

	querier querier

	// cache keeps recently used records.
	cache *recordCache

	// clock stamps created and touched records.
	clock timestamp.Clock

	// retention is the age after the last touch at which a record is swept.
	retention timestamp.Span

	// gcTimeout represents timeout duration between the garbage collection schedules.
	gcTimeout time.Duration

	// observer is responsible for observing certain events and transform them to metrics.
	observer telemetry.Observer

	// stop is a function that can be called to stop the garbage collection process.
	stop func()
}

// New returns a pointer to a new instance of Storage.
func New(db *litekit.Conn, options ...Option) (*Storage, error) {
	s := Storage{
		db:     db,
		logger: logkit.NewNop(),

		querier: newQuerier(),
		cache:   newRecordCache(recordCacheSize),

		clock: timestamp.SystemClock{},

		gcTimeout: gcTimeout,

		observer: telemetry.NewObserver(),

		stop: func() {},
	}

	for _, option := range options {
		option(&s)
	}

	countCtx, countCancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer countCancel()

	count, countErr := s.countRecords(countCtx)
	if countErr != nil {
		return nil, fmt.Errorf("count existing records: %w", countErr)
	}

	if s.observer.RecordsExist().Get() == 0 {
		s.observer.RecordsExist().Add(count)
	}

	if s.retention.Millis() > 0 {
		ctx, stop := context.WithCancel(context.Background())
		s.stop = stop

		go s.gc(ctx)
	}

	return &s, nil
}

func (s *Storage) CreateRecord(ctx context.Context, label string) (*storage.Record, error) {
	defer s.observer.StorageOpDuration("create").Dur(time.Now())

	if err := validateLabel(label); err != nil {
		return nil, err
	}

	rec, recErr := timestamp.NewRecordFrom(s.clock)
	if recErr != nil {
		return nil, fmt.Errorf("stamp record: %w", recErr)
	}

	record := storage.Record{
		ID:     idkit.XID(),
		Label:  label,
		Record: rec,
	}

	if _, err := s.db.ExecContext(ctx, queryInsertRecord,
		record.ID,
		record.Label,
		record.Created,
		record.Updated,
	); err != nil {
		return nil, fmt.Errorf("create record: execute query: %w", err)
	}

	s.observer.RecordsExist().Inc()
	s.cache.put(record)

	s.logger.Debug("Record has been created",
		slog.String("record_id", record.ID),
		slog.String("created_at", record.Created.String()),
	)

	return &record, nil
}

func (s *Storage) GetRecord(ctx context.Context, id string) (*storage.Record, error) {
	defer s.observer.StorageOpDuration("get").Dur(time.Now())

	if record, ok := s.cache.get(id); ok {
		return &record, nil
	}

	record, err := scanRecord(s.db.QueryRowContext(ctx, querySelectRecord, id), id)
	if err != nil {
		return nil, err
	}

	s.cache.put(*record)

	return record, nil
}

func (s *Storage) TouchRecord(ctx context.Context, id string) (_ *storage.Record, sErr error) {
	defer s.observer.StorageOpDuration("touch").Dur(time.Now())

	now, nowErr := timestamp.NowFrom(s.clock)
	if nowErr != nil {
		return nil, fmt.Errorf("touch record %q: %w", id, nowErr)
	}

	tx, txErr := s.db.BeginTx(ctx, &sql.TxOptions{Isolation: sql.LevelSerializable})
	if txErr != nil {
		return nil, fmt.Errorf(fmtBeginTxError, txErr)
	}

	defer func() {
		if err := tx.Rollback(); err != nil && !errors.Is(err, sql.ErrTxDone) {
			sErr = errors.Join(sErr, fmt.Errorf("rollback transaction: %w", err))
		}
	}()

	res, execErr := tx.ExecContext(ctx, queryTouchRecord, now, id)
	if execErr != nil {
		return nil, fmt.Errorf("touch record %q: execute query: %w", id, execErr)
	}

	affected, affectedErr := res.RowsAffected()
	if affectedErr != nil {
		return nil, fmt.Errorf("touch record %q: rows affected: %w", id, affectedErr)
	}

	if affected == 0 {
		return nil, fmt.Errorf("record %q: %w", id, stamperr.ErrNotFound)
	}

	record, getErr := scanRecord(tx.QueryRowContext(ctx, querySelectRecord, id), id)
	if getErr != nil {
		return nil, getErr
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf(fmtCommitTxError, err)
	}

	s.observer.RecordsTouched().Inc()
	s.cache.put(*record)

	return record, nil
}

func (s *Storage) ListRecords(ctx context.Context, input storage.ListRecordsInput) (_ *storage.ListRecordsOutput, sErr error) {
	defer s.observer.StorageOpDuration("list").Dur(time.Now())

	pageSize := input.Limit
	if pageSize == 0 {
		pageSize = defaultPageSize
	}

	if pageSize > maxPageSize {
		return nil, fmt.Errorf("%w: limit exceeds %d", errkit.ErrInvalidArgument, maxPageSize)
	}

	args := make([]any, 0, 1)
	if input.Cursor != "" {
		args = append(args, input.Cursor)
	}

	query := s.querier.listRecords(input.Order, input.Cursor != "", pageSize)

	rows, queryErr := s.db.QueryContext(ctx, query, args...)
	if queryErr != nil {
		return nil, fmt.Errorf("execute query (query: %q): %w", query, queryErr)
	}

	defer func() {
		if err := rows.Close(); err != nil {
			sErr = errors.Join(sErr, fmt.Errorf("close rows: %w", err))
		}
	}()

	records := make([]storage.Record, 0, pageSize+1)

	for rows.Next() {
		var record storage.Record

		if err := rows.Scan(
			&record.ID,
			&record.Label,
			&record.Created,
			&record.Updated,
		); err != nil {
			return nil, fmt.Errorf("row scan: %w", err)
		}

		records = append(records, record)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate rows: %w", err)
	}

	output := storage.ListRecordsOutput{Records: records}

	if uint32(len(records)) > pageSize {
		output.Records = records[:pageSize]
		output.HasMore = true
		output.NextCursor = output.Records[pageSize-1].ID
	}

	return &output, nil
}

func (s *Storage) DeleteRecord(ctx context.Context, id string) error {
	defer s.observer.StorageOpDuration("delete").Dur(time.Now())

	res, execErr := s.db.ExecContext(ctx, queryDeleteRecord, id)
	if execErr != nil {
		return fmt.Errorf("delete record %q: execute query: %w", id, execErr)
	}

	affected, affectedErr := res.RowsAffected()
	if affectedErr != nil {
		return fmt.Errorf("delete record %q: rows affected: %w", id, affectedErr)
	}

	if affected == 0 {
		return fmt.Errorf("record %q: %w", id, stamperr.ErrNotFound)
	}

	s.observer.RecordsExist().Dec()
	s.cache.delete(id)

	return nil
}

// Health implements hc.HealthChecker interface.
func (s *Storage) Health(ctx context.Context) error {
	if err := s.db.PingContext(ctx); err != nil {
		return fmt.Errorf("health check: %w", err)
	}

	return nil
}

func (s *Storage) Close() error {
	s.stop()
	return nil
}

func scanRecord(row *sql.Row, id string) (*storage.Record, error) {
	var record storage.Record

	if err := row.Scan(
		&record.ID,
		&record.Label,
		&record.Created,
		&record.Updated,
	); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("record %q: %w", id, stamperr.ErrNotFound)
		}

		return nil, fmt.Errorf("get record %q: row scan: %w", id, err)
	}

	return &record, nil
}

func (s *Storage) countRecords(ctx context.Context) (uint64, error) {
	var count uint64

	if err := s.db.QueryRowContext(ctx, queryCountRecords).Scan(&count); err != nil {
		return 0, err
	}

	return count, nil
}

func validateLabel(label string) error {
	if strings.TrimSpace(label) == "" {
		return fmt.Errorf("%w: label is empty", errkit.ErrInvalidArgument)
	}

	if len(label) > maxLabelLength {
		return fmt.Errorf("%w: label is longer than %d bytes", errkit.ErrInvalidArgument, maxLabelLength)
	}

	return nil
}
