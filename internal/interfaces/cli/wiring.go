package cli

import (
	"context"

	"github.com/turtacn/KeyIP-Ingest/internal/config"
	"github.com/turtacn/KeyIP-Ingest/internal/infrastructure/monitoring/logging"
	"github.com/turtacn/KeyIP-Ingest/internal/infrastructure/monitoring/prometheus"
	"github.com/turtacn/KeyIP-Ingest/internal/infrastructure/storage"
	"github.com/turtacn/KeyIP-Ingest/internal/infrastructure/storage/gcs"
	"github.com/turtacn/KeyIP-Ingest/internal/infrastructure/storage/local"
	"github.com/turtacn/KeyIP-Ingest/internal/infrastructure/storage/minio"
	"github.com/turtacn/KeyIP-Ingest/internal/ingest/archive"
	"github.com/turtacn/KeyIP-Ingest/internal/ingest/extract"
	"github.com/turtacn/KeyIP-Ingest/internal/ingest/pipeline"
	"github.com/turtacn/KeyIP-Ingest/pkg/errors"
)

// openStore returns the backend for loc and a release func.
func openStore(ctx context.Context, cfg *config.Config, loc storage.Location, log logging.Logger) (storage.Store, func() error, error) {
	noop := func() error { return nil }
	switch loc.Scheme {
	case storage.SchemeS3:
		s, err := minio.NewStore(cfg.Storage.S3, log)
		if err != nil {
			return nil, nil, err
		}
		return s, noop, nil
	case storage.SchemeGCS:
		s, err := gcs.NewStore(ctx, cfg.Storage.GCS, log)
		if err != nil {
			return nil, nil, err
		}
		return s, s.Close, nil
	case storage.SchemeLocal:
		return local.NewStore(), noop, nil
	default:
		return nil, nil, errors.InvalidParam("unsupported storage scheme " + string(loc.Scheme))
	}
}

func newDecoder(cfg *config.Config, log logging.Logger) *archive.Decoder {
	return archive.NewDecoder(extract.New(), archive.Options{
		MaxDepth:      cfg.Ingest.MaxDepth,
		TOCName:       cfg.Ingest.TOCName,
		MarkupExt:     cfg.Ingest.MarkupExt,
		ArchiveExt:    cfg.Ingest.ArchiveExt,
		MaxEntryBytes: cfg.Ingest.MaxEntryBytes,
	}, archive.WithLogger(log.Named("decoder")))
}

func newAggregator(cfg *config.Config, store storage.Store, log logging.Logger, rec pipeline.Recorder) *pipeline.Aggregator {
	opts := pipeline.Options{
		Concurrency: cfg.Ingest.Concurrency,
		ReadTimeout: cfg.Storage.ReadTimeout,
	}
	return pipeline.New(store, newDecoder(cfg, log), opts,
		pipeline.WithLogger(log.Named("pipeline")),
		pipeline.WithRecorder(rec),
	)
}

// runMetrics is a per-invocation registry; batch runs push it at exit.
type runMetrics struct {
	collector prometheus.MetricsCollector
	ingest    *prometheus.IngestMetrics
	cfg       config.MetricsConfig
	logger    logging.Logger
}

func newRunMetrics(cfg *config.Config, log logging.Logger) (*runMetrics, error) {
	c, err := prometheus.NewMetricsCollector(prometheus.CollectorConfig{
		Namespace: cfg.Metrics.Namespace,
	}, log)
	if err != nil {
		return nil, err
	}
	return &runMetrics{
		collector: c,
		ingest:    prometheus.NewIngestMetrics(c),
		cfg:       cfg.Metrics,
		logger:    log,
	}, nil
}

// push sends the registry to the Pushgateway when one is configured.  A
// failed push is logged, never fatal.
func (m *runMetrics) push(ctx context.Context) {
	if m.cfg.PushgatewayURL == "" {
		return
	}
	if err := m.collector.Push(ctx, m.cfg.PushgatewayURL, m.cfg.Job); err != nil {
		m.logger.WithError(err).Warn("metrics push failed", logging.String("url", m.cfg.PushgatewayURL))
		return
	}
	m.logger.Debug("metrics pushed", logging.String("url", m.cfg.PushgatewayURL))
}

//Personal.AI order the ending
