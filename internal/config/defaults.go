package config

import (
	"time"

	"github.com/turtacn/KeyIP-Ingest/internal/infrastructure/monitoring/logging"
)

// ─────────────────────────────────────────────────────────────────────────────
// Default value constants
// ─────────────────────────────────────────────────────────────────────────────

const (
	DefaultLogLevel  = logging.LevelInfo
	DefaultLogFormat = logging.FormatAuto

	DefaultReadTimeout = 2 * time.Minute
	DefaultS3Endpoint  = "localhost:9000"
	DefaultS3Region    = "us-east-1"

	DefaultConcurrency   = 4
	DefaultMaxDepth      = 10
	DefaultTOCName       = "TOC.xml"
	DefaultMarkupExt     = ".xml"
	DefaultArchiveExt    = ".zip"
	DefaultMaxEntryBytes = int64(512 << 20)

	DefaultDedupDateField      = "publication_date"
	DefaultDedupDocNumberField = "doc-number"

	DefaultCompression = "zstd"

	DefaultPGHost     = "localhost"
	DefaultPGPort     = 5432
	DefaultPGDBName   = "keyip"
	DefaultPGSSLMode  = "disable"
	DefaultPGMaxConns = 8

	DefaultKafkaBroker       = "localhost:9092"
	DefaultKafkaTopic        = "patent-records"
	DefaultKafkaBatchSize    = 500
	DefaultKafkaRequiredAcks = -1
	DefaultKafkaCompression  = "snappy"
	DefaultKafkaWriteTimeout = 10 * time.Second

	DefaultMetricsNamespace = "keyip_ingest"
	DefaultMetricsJob       = "keyip-ingest"
)

// NewDefaultConfig returns a Config with every default applied.  It is valid
// as-is and is used when no config file is supplied.
func NewDefaultConfig() *Config {
	cfg := &Config{}
	ApplyDefaults(cfg)
	return cfg
}

// ApplyDefaults fills every zero-value field in cfg with its default.  Fields
// already set by the caller are left unchanged so explicit configuration
// always wins.  It must run after unmarshalling and before Validate.
func ApplyDefaults(cfg *Config) {
	if cfg == nil {
		return
	}

	// ── Log ───────────────────────────────────────────────────────────────────
	if cfg.Log.Level == "" {
		cfg.Log.Level = DefaultLogLevel
	}
	if cfg.Log.Format == "" {
		cfg.Log.Format = DefaultLogFormat
	}

	// ── Storage ───────────────────────────────────────────────────────────────
	if cfg.Storage.ReadTimeout == 0 {
		cfg.Storage.ReadTimeout = DefaultReadTimeout
	}
	if cfg.Storage.S3.Endpoint == "" {
		cfg.Storage.S3.Endpoint = DefaultS3Endpoint
	}
	if cfg.Storage.S3.Region == "" {
		cfg.Storage.S3.Region = DefaultS3Region
	}

	// ── Ingest ────────────────────────────────────────────────────────────────
	if cfg.Ingest.Concurrency == 0 {
		cfg.Ingest.Concurrency = DefaultConcurrency
	}
	if cfg.Ingest.MaxDepth == 0 {
		cfg.Ingest.MaxDepth = DefaultMaxDepth
	}
	if cfg.Ingest.TOCName == "" {
		cfg.Ingest.TOCName = DefaultTOCName
	}
	if cfg.Ingest.MarkupExt == "" {
		cfg.Ingest.MarkupExt = DefaultMarkupExt
	}
	if cfg.Ingest.ArchiveExt == "" {
		cfg.Ingest.ArchiveExt = DefaultArchiveExt
	}
	if cfg.Ingest.MaxEntryBytes == 0 {
		cfg.Ingest.MaxEntryBytes = DefaultMaxEntryBytes
	}

	// ── Dedup ─────────────────────────────────────────────────────────────────
	if cfg.Dedup.DateField == "" {
		cfg.Dedup.DateField = DefaultDedupDateField
	}
	if cfg.Dedup.DocNumberField == "" {
		cfg.Dedup.DocNumberField = DefaultDedupDocNumberField
	}

	// ── Output ────────────────────────────────────────────────────────────────
	if cfg.Output.Compression == "" {
		cfg.Output.Compression = DefaultCompression
	}

	// ── Postgres ──────────────────────────────────────────────────────────────
	if cfg.Postgres.Host == "" {
		cfg.Postgres.Host = DefaultPGHost
	}
	if cfg.Postgres.Port == 0 {
		cfg.Postgres.Port = DefaultPGPort
	}
	if cfg.Postgres.DBName == "" {
		cfg.Postgres.DBName = DefaultPGDBName
	}
	if cfg.Postgres.SSLMode == "" {
		cfg.Postgres.SSLMode = DefaultPGSSLMode
	}
	if cfg.Postgres.MaxConns == 0 {
		cfg.Postgres.MaxConns = DefaultPGMaxConns
	}

	// ── Kafka ─────────────────────────────────────────────────────────────────
	if len(cfg.Kafka.Brokers) == 0 {
		cfg.Kafka.Brokers = []string{DefaultKafkaBroker}
	}
	if cfg.Kafka.Topic == "" {
		cfg.Kafka.Topic = DefaultKafkaTopic
	}
	if cfg.Kafka.BatchSize == 0 {
		cfg.Kafka.BatchSize = DefaultKafkaBatchSize
	}
	if cfg.Kafka.RequiredAcks == 0 {
		cfg.Kafka.RequiredAcks = DefaultKafkaRequiredAcks
	}
	if cfg.Kafka.Compression == "" {
		cfg.Kafka.Compression = DefaultKafkaCompression
	}
	if cfg.Kafka.WriteTimeout == 0 {
		cfg.Kafka.WriteTimeout = DefaultKafkaWriteTimeout
	}

	// ── Metrics ───────────────────────────────────────────────────────────────
	if cfg.Metrics.Namespace == "" {
		cfg.Metrics.Namespace = DefaultMetricsNamespace
	}
	if cfg.Metrics.Job == "" {
		cfg.Metrics.Job = DefaultMetricsJob
	}
}

//Personal.AI order the ending
