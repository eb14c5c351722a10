package litestore

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/plainq/stamp/timestamp"
)

type sweepResult struct {
	Duration     time.Duration
	Cutoff       timestamp.Timestamp
	RecordsSwept uint64
}

// gc periodically removes records which have not been touched
// within the retention period.
func (s *Storage) gc(ctx context.Context) {
	defer func() {
		if r := recover(); r != nil {
			s.logger.Error("GC routine recovered from panic",
				slog.Any("panic", r),
			)
		}
	}()

	s.logger.Debug("Starting garbage collection routine...",
		slog.String("retention", s.retention.String()),
	)

	timer := time.NewTicker(s.gcTimeout)
	defer timer.Stop()

	for {
		select {
		case <-ctx.Done():
			return

		case <-timer.C:
			// If there are no records, there is no need for GC, obviously.
			if s.observer.RecordsExist().Get() == 0 {
				continue
			}

			s.observer.GCSchedules().Inc()

			result, sweepErr := s.sweep(ctx)
			if sweepErr != nil {
				s.logger.Error("Garbage collection failed",
					slog.String("error", sweepErr.Error()),
				)

				continue
			}

			s.logger.Debug("Garbage collection",
				slog.String("cutoff", result.Cutoff.String()),
				slog.String("duration", result.Duration.String()),
				slog.Uint64("records_swept", result.RecordsSwept),
			)
		}
	}
}

// sweep deletes every record whose last update is older than the retention
// period, i.e. every record for which HasElapsedSinceUpdate(now, retention)
// holds.
func (s *Storage) sweep(ctx context.Context) (*sweepResult, error) {
	start := time.Now()
	defer s.observer.GCDuration().Dur(start)

	now, nowErr := timestamp.NowFrom(s.clock)
	if nowErr != nil {
		return nil, fmt.Errorf("sweep records: %w", nowErr)
	}

	cutoff, cutoffErr := now.SubSpan(s.retention)
	if cutoffErr != nil {
		// Nothing can be older than the beginning of time.
		return &sweepResult{Duration: time.Since(start), Cutoff: timestamp.Min}, nil
	}

	res, execErr := s.db.ExecContext(ctx, querySweepRecords, cutoff)
	if execErr != nil {
		return nil, fmt.Errorf("sweep records: execute query: %w", execErr)
	}

	affected, affectedErr := res.RowsAffected()
	if affectedErr != nil {
		return nil, fmt.Errorf("sweep records: rows affected: %w", affectedErr)
	}

	swept := uint64(max(affected, 0))
	s.cache.sweep(cutoff)

	s.observer.RecordsSwept().Add(swept)
	s.observer.RecordsExist().Sub(swept)

	result := sweepResult{
		Duration:     time.Since(start),
		Cutoff:       cutoff,
		RecordsSwept: swept,
	}

	return &result, nil
}
