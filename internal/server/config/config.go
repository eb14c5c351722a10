package config

import (
	"time"
)

// Config represents the configuration for the stamp server.
// See the cmd/server.go to understand the meanings of each field
// and default values.
type Config struct {
	LogEnable       bool
	LogAccessEnable bool
	LogLevel        string

	HTTPAddr string

	HTTPReadTimeout       time.Duration
	HTTPReadHeaderTimeout time.Duration
	HTTPWriteTimeout      time.Duration
	HTTPIdleTimeout       time.Duration

	StorageLogEnable   bool
	StorageDBPath      string
	StorageGCTimeout   time.Duration
	StorageAccessMode  string
	StorageJournalMode string

	// RecordRetention is the time after the last touch at which a record
	// is swept by the storage GC. Zero keeps records forever.
	RecordRetention time.Duration

	CORSEnable bool

	HealthEnable       bool
	HealthRouteLogs    bool
	HealthRouteMetrics bool
	HealthRoute        string

	MetricsEnable       bool
	MetricsRouteLogs    bool
	MetricsRouteMetrics bool
	MetricsRoute        string

	ProfilerEnabled bool
}
