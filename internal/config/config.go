// Package config defines the configuration structures for KeyIP-Ingest.
// No I/O or parsing logic lives here, only plain data types and validation.
package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/turtacn/KeyIP-Ingest/internal/infrastructure/monitoring/logging"
)

// ─────────────────────────────────────────────────────────────────────────────
// Sub-configuration structs
// ─────────────────────────────────────────────────────────────────────────────

// S3Config holds MinIO / S3-compatible object-storage parameters used for
// s3:// roots.
type S3Config struct {
	Endpoint        string `mapstructure:"endpoint"`
	AccessKeyID     string `mapstructure:"access_key_id"`
	SecretAccessKey string `mapstructure:"secret_access_key"`
	Region          string `mapstructure:"region"`
	UseSSL          bool   `mapstructure:"use_ssl"`
}

// GCSConfig holds Google Cloud Storage parameters used for gs:// roots.
type GCSConfig struct {
	CredentialsFile string `mapstructure:"credentials_file"`
	Endpoint        string `mapstructure:"endpoint"`
	Anonymous       bool   `mapstructure:"anonymous"`
}

// StorageConfig groups the remote store backends.
type StorageConfig struct {
	S3  S3Config  `mapstructure:"s3"`
	GCS GCSConfig `mapstructure:"gcs"`
	// ReadTimeout bounds every single object read.
	ReadTimeout time.Duration `mapstructure:"read_timeout"`
}

// IngestConfig holds traversal and decoding tunables.
type IngestConfig struct {
	Concurrency   int    `mapstructure:"concurrency"`
	MaxDepth      int    `mapstructure:"max_depth"`
	TOCName       string `mapstructure:"toc_name"`
	MarkupExt     string `mapstructure:"markup_ext"`
	ArchiveExt    string `mapstructure:"archive_ext"`
	MaxEntryBytes int64  `mapstructure:"max_entry_bytes"`
}

// DedupConfig selects the canonical-record rule.  An empty Key disables
// deduplication for `run`.
type DedupConfig struct {
	Key             string `mapstructure:"key"`
	DateField       string `mapstructure:"date_field"`
	DocNumberField  string `mapstructure:"doc_number_field"`
	PreserveUnkeyed bool   `mapstructure:"preserve_unkeyed"`
}

// OutputConfig lists file outputs.  Empty paths are skipped.
type OutputConfig struct {
	ParquetPath string `mapstructure:"parquet_path"`
	CSVPath     string `mapstructure:"csv_path"`
	SQLitePath  string `mapstructure:"sqlite_path"`
	Compression string `mapstructure:"compression"` // "zstd" | "snappy" | "gzip" | "lz4" | "none"
}

// PostgresConfig holds PostgreSQL sink parameters.
type PostgresConfig struct {
	Enabled  bool   `mapstructure:"enabled"`
	Host     string `mapstructure:"host"`
	Port     int    `mapstructure:"port"`
	User     string `mapstructure:"user"`
	Password string `mapstructure:"password"`
	DBName   string `mapstructure:"db_name"`
	SSLMode  string `mapstructure:"ssl_mode"`
	MaxConns int32  `mapstructure:"max_conns"`
}

// KafkaConfig holds record publisher parameters.
type KafkaConfig struct {
	Enabled      bool          `mapstructure:"enabled"`
	Brokers      []string      `mapstructure:"brokers"`
	Topic        string        `mapstructure:"topic"`
	BatchSize    int           `mapstructure:"batch_size"`
	RequiredAcks int           `mapstructure:"required_acks"`
	Compression  string        `mapstructure:"compression"`
	WriteTimeout time.Duration `mapstructure:"write_timeout"`
}

// MetricsConfig holds Prometheus parameters.  Batch runs push to
// PushgatewayURL when it is set.
type MetricsConfig struct {
	Namespace      string `mapstructure:"namespace"`
	PushgatewayURL string `mapstructure:"pushgateway_url"`
	Job            string `mapstructure:"job"`
}

// ─────────────────────────────────────────────────────────────────────────────
// Root Config
// ─────────────────────────────────────────────────────────────────────────────

// Config is the root configuration structure.  Every component reads its
// settings from the relevant sub-struct.
type Config struct {
	Log      logging.LogConfig `mapstructure:"log"`
	Storage  StorageConfig     `mapstructure:"storage"`
	Ingest   IngestConfig      `mapstructure:"ingest"`
	Dedup    DedupConfig       `mapstructure:"dedup"`
	Output   OutputConfig      `mapstructure:"output"`
	Postgres PostgresConfig    `mapstructure:"postgres"`
	Kafka    KafkaConfig       `mapstructure:"kafka"`
	Metrics  MetricsConfig     `mapstructure:"metrics"`
}

// ─────────────────────────────────────────────────────────────────────────────
// Validation
// ─────────────────────────────────────────────────────────────────────────────

// Validate performs semantic validation of the fully-populated Config and
// returns the first error encountered.
func (c *Config) Validate() error {
	// Log
	if _, err := logging.ParseLevel(c.Log.Level.String()); err != nil {
		return fmt.Errorf("config: log.level %q is invalid; expected debug|info|warn|error", c.Log.Level)
	}
	switch c.Log.Format {
	case logging.FormatJSON, logging.FormatConsole, logging.FormatAuto:
	default:
		return fmt.Errorf("config: log.format %q is invalid; expected json|console|auto", c.Log.Format)
	}

	// Storage
	if c.Storage.ReadTimeout <= 0 {
		return fmt.Errorf("config: storage.read_timeout must be > 0, got %s", c.Storage.ReadTimeout)
	}

	// Ingest
	if c.Ingest.Concurrency < 1 {
		return fmt.Errorf("config: ingest.concurrency must be ≥ 1, got %d", c.Ingest.Concurrency)
	}
	if c.Ingest.MaxDepth < 0 {
		return fmt.Errorf("config: ingest.max_depth must be ≥ 0, got %d", c.Ingest.MaxDepth)
	}
	for key, ext := range map[string]string{"ingest.markup_ext": c.Ingest.MarkupExt, "ingest.archive_ext": c.Ingest.ArchiveExt} {
		if !strings.HasPrefix(ext, ".") || len(ext) < 2 {
			return fmt.Errorf("config: %s %q must start with a dot", key, ext)
		}
	}
	if strings.EqualFold(c.Ingest.MarkupExt, c.Ingest.ArchiveExt) {
		return fmt.Errorf("config: ingest.markup_ext and ingest.archive_ext must differ")
	}
	if c.Ingest.TOCName == "" {
		return fmt.Errorf("config: ingest.toc_name is required")
	}
	if c.Ingest.MaxEntryBytes < 1 {
		return fmt.Errorf("config: ingest.max_entry_bytes must be ≥ 1, got %d", c.Ingest.MaxEntryBytes)
	}

	// Dedup
	if c.Dedup.DateField == "" || c.Dedup.DocNumberField == "" {
		return fmt.Errorf("config: dedup.date_field and dedup.doc_number_field are required")
	}

	// Output
	switch c.Output.Compression {
	case "zstd", "snappy", "gzip", "lz4", "none":
	default:
		return fmt.Errorf("config: output.compression %q is invalid; expected zstd|snappy|gzip|lz4|none", c.Output.Compression)
	}

	// Postgres
	if c.Postgres.Enabled {
		if c.Postgres.Host == "" {
			return fmt.Errorf("config: postgres.host is required")
		}
		if c.Postgres.Port < 1 || c.Postgres.Port > 65535 {
			return fmt.Errorf("config: postgres.port %d is out of range [1, 65535]", c.Postgres.Port)
		}
		if c.Postgres.User == "" {
			return fmt.Errorf("config: postgres.user is required")
		}
		if c.Postgres.DBName == "" {
			return fmt.Errorf("config: postgres.db_name is required")
		}
	}

	// Kafka
	if c.Kafka.Enabled {
		if len(c.Kafka.Brokers) == 0 {
			return fmt.Errorf("config: kafka.brokers must contain at least one broker address")
		}
		if c.Kafka.Topic == "" {
			return fmt.Errorf("config: kafka.topic is required")
		}
	}

	// Metrics
	if c.Metrics.Namespace == "" {
		return fmt.Errorf("config: metrics.namespace is required")
	}

	return nil
}

//Personal.AI order the ending
