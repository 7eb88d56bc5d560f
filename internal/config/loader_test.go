package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/turtacn/KeyIP-Ingest/internal/infrastructure/monitoring/logging"
)

const validConfigYAML = `
log:
  level: debug
  format: json
storage:
  read_timeout: 30s
  s3:
    endpoint: "minio.local:9000"
    access_key_id: "key"
    secret_access_key: "secret"
ingest:
  concurrency: 8
  max_depth: 5
dedup:
  key: family-id
output:
  parquet_path: /tmp/patents.parquet
  compression: snappy
kafka:
  brokers: ["k1:9092", "k2:9092"]
  topic: fr-patents
`

func createTempConfigFile(t *testing.T, content string) string {
	t.Helper()
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestLoad_FromFile_ValidConfig(t *testing.T) {
	cfg, err := Load(createTempConfigFile(t, validConfigYAML))
	require.NoError(t, err)

	assert.Equal(t, logging.LevelDebug, cfg.Log.Level)
	assert.Equal(t, 30*time.Second, cfg.Storage.ReadTimeout)
	assert.Equal(t, "minio.local:9000", cfg.Storage.S3.Endpoint)
	assert.Equal(t, 8, cfg.Ingest.Concurrency)
	assert.Equal(t, 5, cfg.Ingest.MaxDepth)
	assert.Equal(t, "family-id", cfg.Dedup.Key)
	assert.Equal(t, "snappy", cfg.Output.Compression)
	assert.Equal(t, []string{"k1:9092", "k2:9092"}, cfg.Kafka.Brokers)
	assert.Equal(t, "fr-patents", cfg.Kafka.Topic)

	// defaults fill the rest
	assert.Equal(t, DefaultTOCName, cfg.Ingest.TOCName)
	assert.Equal(t, DefaultDedupDateField, cfg.Dedup.DateField)
}

func TestLoad_FromFile_FileNotFound(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "missing.yaml"))
	assert.Error(t, err)
}

func TestLoad_FromFile_InvalidYAML(t *testing.T) {
	_, err := Load(createTempConfigFile(t, "ingest: [unclosed"))
	assert.Error(t, err)
}

func TestLoad_FromFile_ValidationFailure(t *testing.T) {
	_, err := Load(createTempConfigFile(t, "ingest:\n  markup_ext: xml\n"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "validation failed")
}

func TestLoad_EnvOverride(t *testing.T) {
	path := createTempConfigFile(t, validConfigYAML)
	t.Setenv("KEYIP_INGEST_CONCURRENCY", "32")

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, 32, cfg.Ingest.Concurrency)
}

func TestLoad_EnvOverride_KeyAbsentFromFile(t *testing.T) {
	path := createTempConfigFile(t, validConfigYAML)
	t.Setenv("KEYIP_STORAGE_GCS_ENDPOINT", "http://localhost:4443/storage/v1/")

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, "http://localhost:4443/storage/v1/", cfg.Storage.GCS.Endpoint)
}

func TestLoadFromEnv_NoFile(t *testing.T) {
	t.Setenv("KEYIP_DEDUP_KEY", "doc-number")
	t.Setenv("KEYIP_INGEST_MAX_DEPTH", "3")

	cfg, err := LoadFromEnv()
	require.NoError(t, err)
	assert.Equal(t, "doc-number", cfg.Dedup.Key)
	assert.Equal(t, 3, cfg.Ingest.MaxDepth)
	assert.Equal(t, DefaultConcurrency, cfg.Ingest.Concurrency)
}

func TestLoad_EmptyPathUsesEnv(t *testing.T) {
	cfg, err := Load("")
	require.NoError(t, err)
	assert.Equal(t, DefaultMetricsNamespace, cfg.Metrics.Namespace)
}

func TestMustLoad_Success(t *testing.T) {
	cfg := MustLoad(createTempConfigFile(t, validConfigYAML))
	assert.NotNil(t, cfg)
}

func TestMustLoad_Panic(t *testing.T) {
	assert.Panics(t, func() { MustLoad(filepath.Join(t.TempDir(), "missing.yaml")) })
}

//Personal.AI order the ending
