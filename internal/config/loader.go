// Package config provides configuration loading, defaults, and validation for
// KeyIP-Ingest.
package config

import (
	"fmt"
	"strings"

	"github.com/spf13/viper"
)

// envPrefix is the environment variable prefix used by all settings.
const envPrefix = "KEYIP"

// configKeys lists every leaf key so that KEYIP_* variables are honoured by
// Unmarshal even when the key is absent from the file.
var configKeys = []string{
	"log.level", "log.format", "log.output_paths", "log.error_output_paths",
	"storage.read_timeout",
	"storage.s3.endpoint", "storage.s3.access_key_id", "storage.s3.secret_access_key",
	"storage.s3.region", "storage.s3.use_ssl",
	"storage.gcs.credentials_file", "storage.gcs.endpoint", "storage.gcs.anonymous",
	"ingest.concurrency", "ingest.max_depth", "ingest.toc_name", "ingest.markup_ext",
	"ingest.archive_ext", "ingest.max_entry_bytes",
	"dedup.key", "dedup.date_field", "dedup.doc_number_field", "dedup.preserve_unkeyed",
	"output.parquet_path", "output.csv_path", "output.sqlite_path", "output.compression",
	"postgres.enabled", "postgres.host", "postgres.port", "postgres.user", "postgres.password",
	"postgres.db_name", "postgres.ssl_mode", "postgres.max_conns",
	"kafka.enabled", "kafka.brokers", "kafka.topic", "kafka.batch_size",
	"kafka.required_acks", "kafka.compression", "kafka.write_timeout",
	"metrics.namespace", "metrics.pushgateway_url", "metrics.job",
}

// newViper builds a Viper instance with YAML file type, the KEYIP_ env
// prefix, automatic env binding and a "." → "_" key replacer so that
// "ingest.max_depth" resolves to KEYIP_INGEST_MAX_DEPTH.
func newViper() *viper.Viper {
	v := viper.New()
	v.SetConfigType("yaml")
	v.SetEnvPrefix(envPrefix)
	v.AutomaticEnv()
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	for _, key := range configKeys {
		_ = v.BindEnv(key)
	}
	return v
}

// Load reads the YAML file at configPath, merges KEYIP_* environment
// overrides, applies defaults for unset fields and validates the result.
// An empty configPath behaves like LoadFromEnv.
func Load(configPath string) (*Config, error) {
	if configPath == "" {
		return LoadFromEnv()
	}
	v := newViper()
	v.SetConfigFile(configPath)

	if err := v.ReadInConfig(); err != nil {
		return nil, fmt.Errorf("config: failed to read config file %q: %w", configPath, err)
	}

	return unmarshalAndFinalize(v)
}

// LoadFromEnv builds a Config entirely from KEYIP_* environment variables
// and defaults, with no config file required.
//
//	KEYIP_<SECTION>_<FIELD>   e.g.  KEYIP_INGEST_CONCURRENCY, KEYIP_STORAGE_S3_ENDPOINT
func LoadFromEnv() (*Config, error) {
	return unmarshalAndFinalize(newViper())
}

// unmarshalAndFinalize unmarshals viper state into a Config struct, applies
// defaults, and validates the result.
func unmarshalAndFinalize(v *viper.Viper) (*Config, error) {
	cfg := &Config{}
	if err := v.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("config: failed to unmarshal configuration: %w", err)
	}

	ApplyDefaults(cfg)

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("config: validation failed: %w", err)
	}

	return cfg, nil
}

// MustLoad is a convenience wrapper around Load that panics on any error.
func MustLoad(configPath string) *Config {
	cfg, err := Load(configPath)
	if err != nil {
		panic(fmt.Sprintf("config: MustLoad failed: %v", err))
	}
	return cfg
}

//Personal.AI order the ending
