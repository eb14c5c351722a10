package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"path/filepath"
	"strings"

	"github.com/heartwilltell/hc"
	"github.com/heartwilltell/scotty"
	"github.com/plainq/servekit/dbkit/litekit"
	"github.com/plainq/servekit/logkit"
	"github.com/plainq/stamp/internal/server"
	"github.com/plainq/stamp/internal/server/config"
	"github.com/plainq/stamp/internal/server/mutations"
	"github.com/plainq/stamp/internal/server/service/instant"
	"github.com/plainq/stamp/internal/server/service/record"
	"github.com/plainq/stamp/internal/server/storage/litestore"
	"github.com/plainq/stamp/internal/server/telemetry"
	"github.com/plainq/stamp/timestamp"
)

func serverCommand() *scotty.Command {
	var cfg config.Config

	cmd := scotty.Command{
		Name:  "server",
		Short: "Runs the stamp server",
		SetFlags: func(f *scotty.FlagSet) {
			// Storage.

			f.BoolVar(&cfg.StorageLogEnable, "storage.log.enable", false,
				"enable logging for storage engine",
			)

			f.StringVar(&cfg.StorageDBPath, "storage.path", "",
				"set path to SQLite database file",
			)

			f.DurationVar(&cfg.StorageGCTimeout, "storage.gc.timeout", 0,
				"set storage GC timeout",
			)

			f.StringVar(&cfg.StorageAccessMode, "storage.access-mode", "",
				"set the sqlite storage access mode",
			)

			f.StringVar(&cfg.StorageJournalMode, "storage.journal-mode", "",
				"set the sqlite storage journal mode",
			)

			f.DurationVar(&cfg.RecordRetention, "storage.retention", 0,
				"sweep records not touched for this long, zero keeps them forever",
			)

			// Logs.

			f.BoolVar(&cfg.LogEnable, "log.enable", true,
				"enable logging",
			)

			f.BoolVar(&cfg.LogAccessEnable, "log.access.enable", true,
				"enable access logging",
			)

			f.StringVar(&cfg.LogLevel, "log.level", "info",
				"set logging level: 'debug', 'info', 'warning', 'error'",
			)

			// Listeners.

			f.StringVar(&cfg.HTTPAddr, "http.addr", ":8081",
				"set HTTP listener address",
			)

			f.DurationVar(&cfg.HTTPReadHeaderTimeout, "http.read-header-timeout", 0,
				"",
			)

			f.DurationVar(&cfg.HTTPReadTimeout, "http.read-timeout", 0,
				"",
			)

			f.DurationVar(&cfg.HTTPWriteTimeout, "http.write-timeout", 0,
				"",
			)

			f.DurationVar(&cfg.HTTPIdleTimeout, "http.idle-timeout", 0,
				"",
			)

			// Metrics.

			f.BoolVar(&cfg.MetricsEnable, "metrics", true,
				"enable the metrics endpoint",
			)

			f.BoolVar(&cfg.MetricsRouteLogs, "metrics.route.logs", false,
				"turn on access logs for metrics endpoint",
			)

			f.BoolVar(&cfg.MetricsRouteMetrics, "metrics.route.metrics", false,
				"turn on metrics for metrics endpoint",
			)

			f.StringVar(&cfg.MetricsRoute, "metrics.route", "/metrics",
				"set given route as metrics endpoint route",
			)

			// Health.

			f.BoolVar(&cfg.HealthEnable, "health", true,
				"enable the health endpoint",
			)

			f.BoolVar(&cfg.HealthRouteLogs, "health.route.logs", false,
				"turn on access logs for health endpoint",
			)

			f.BoolVar(&cfg.HealthRouteMetrics, "health.route.metrics", false,
				"turn on metrics for health endpoint",
			)

			f.StringVar(&cfg.HealthRoute, "health.route", "/health",
				"set given route as health endpoint route",
			)

			// CORS.

			f.BoolVar(&cfg.CORSEnable, "cors", true,
				"enable CORS configuration for API routes",
			)

			// Profiler.

			f.BoolVar(&cfg.ProfilerEnabled, "profiler", false,
				"enable the profiler endpoint",
			)
		},

		Run: func(cmd *scotty.Command, args []string) error {
			ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt)
			defer cancel()

			logger, loggerErr := initLogger(&cfg)
			if loggerErr != nil {
				return loggerErr
			}

			logger.Info("Starting stamp server")

			clock := timestamp.SystemClock{}
			observer := telemetry.NewObserver()

			// Storage initialization.

			conn, connErr := initDBConnection(&cfg, logger)
			if connErr != nil {
				return connErr
			}

			sqliteStorage, storageInitErr := initStorage(&cfg, logger, conn, clock, observer)
			if storageInitErr != nil {
				return storageInitErr
			}

			defer func() {
				if err := sqliteStorage.Close(); err != nil {
					logger.Error("Failed to close storage database connection",
						slog.String("error", err.Error()),
					)
				}
			}()

			var checker hc.HealthChecker = hc.NewNopChecker()

			if cfg.HealthEnable {
				checker = hc.NewMultiChecker(sqliteStorage)
			}

			recordService := record.NewService(&cfg, logger, clock, sqliteStorage)
			instantService := instant.NewService(&cfg, logger, clock, observer)

			stampServer, serverErr := server.NewServer(&cfg, logger, checker, recordService, instantService)
			if serverErr != nil {
				return fmt.Errorf("create stamp server: %s", serverErr.Error())
			}

			logger.Info("HTTP API",
				slog.String("address", printAddrHTTP(cfg.HTTPAddr)+"/api/v1"),
			)

			return stampServer.Serve(ctx)
		},
	}

	return &cmd
}

func initLogger(cfg *config.Config) (*slog.Logger, error) {
	logger := logkit.NewNop()

	if cfg.LogEnable {
		level, levelErr := logkit.ParseLevel(cfg.LogLevel)
		if levelErr != nil {
			return nil, levelErr
		}

		options := []logkit.Option{
			logkit.WithLevel(level),
		}

		logger = logkit.New(options...)

		logger.Debug("Logger has been initialized",
			slog.String("level", level.String()),
		)
	}

	return logger, nil
}

func initDBConnection(cfg *config.Config, logger *slog.Logger) (*litekit.Conn, error) {
	if cfg.StorageDBPath == "" {
		pwd, pwdErr := os.Getwd()
		if pwdErr != nil {
			return nil, fmt.Errorf("get current working derrectory: %w", pwdErr)
		}

		dbPath, err := filepath.Abs(filepath.Join(pwd, "stamp.db"))
		if err != nil {
			return nil, fmt.Errorf("create database file: %w", err)
		}

		cfg.StorageDBPath = dbPath
	}

	connOption := make([]litekit.Option, 0, 2)
	if cfg.StorageAccessMode != "" {
		mode, err := litekit.AccessModeFromString(cfg.StorageAccessMode)
		if err != nil {
			return nil, err
		}

		connOption = append(connOption, litekit.WithAccessMode(mode))
	}

	if cfg.StorageJournalMode != "" {
		mode, err := litekit.JournalModeFromString(cfg.StorageJournalMode)
		if err != nil {
			return nil, err
		}

		connOption = append(connOption, litekit.WithJournalMode(mode))
	}

	conn, conErr := litekit.New(cfg.StorageDBPath, connOption...)
	if conErr != nil {
		return nil, fmt.Errorf("connect to database: %w", conErr)
	}

	logger.Info("Database connection has been initialized",
		slog.String("path", cfg.StorageDBPath),
	)

	evolver, evolverErr := litekit.NewEvolver(conn, mutations.StorageMutations())
	if evolverErr != nil {
		return nil, fmt.Errorf("create schema evolver: %w", evolverErr)
	}

	if err := evolver.MutateSchema(); err != nil {
		return nil, fmt.Errorf("schema mutation: %w", err)
	}

	logger.Info("Database schema has been initialized",
		slog.String("path", cfg.StorageDBPath),
	)

	return conn, nil
}

func initStorage(
	cfg *config.Config,
	logger *slog.Logger,
	conn *litekit.Conn,
	clock timestamp.Clock,
	observer telemetry.Observer,
) (*litestore.Storage, error) {
	storageOptions := []litestore.Option{
		litestore.WithClock(clock),
		litestore.WithObserver(observer),
	}

	if cfg.StorageLogEnable {
		storageOptions = append(storageOptions, litestore.WithLogger(logger))
	}

	if cfg.StorageGCTimeout != 0 {
		storageOptions = append(storageOptions, litestore.WithGCTimeout(cfg.StorageGCTimeout))
	}

	if cfg.RecordRetention != 0 {
		retention, err := timestamp.SpanFromDuration(cfg.RecordRetention)
		if err != nil {
			return nil, fmt.Errorf("record retention: %w", err)
		}

		storageOptions = append(storageOptions, litestore.WithRetention(retention))
	}

	sqliteStorage, storageInitErr := litestore.New(conn, storageOptions...)
	if storageInitErr != nil {
		return nil, fmt.Errorf("create storage: %w", storageInitErr)
	}

	return sqliteStorage, nil
}

func printAddrHTTP(addr string) string {
	if strings.HasPrefix(addr, "http") {
		return addr
	}

	if strings.HasPrefix(addr, ":") {
		return fmt.Sprintf("http://localhost%s", addr)
	}

	return addr
}
