// Package prometheus records ingestion metrics on a private registry and
// pushes them to a Pushgateway at the end of a batch run.
package prometheus

import (
	"context"
	"fmt"
	"sync"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/push"

	"github.com/turtacn/KeyIP-Ingest/internal/infrastructure/monitoring/logging"
)

// MetricsCollector registers metric vectors on one registry.  Registering a
// name twice returns the first vector; a kind mismatch yields a no-op vector.
type MetricsCollector interface {
	RegisterCounter(name, help string, labels ...string) CounterVec
	RegisterGauge(name, help string, labels ...string) GaugeVec
	RegisterHistogram(name, help string, buckets []float64, labels ...string) HistogramVec
	Gatherer() prometheus.Gatherer
	// Push sends every registered metric to the Pushgateway at url under job.
	Push(ctx context.Context, url, job string) error
}

type CounterVec interface {
	WithLabelValues(lvs ...string) Counter
}

type Counter interface {
	Inc()
	Add(delta float64)
}

type GaugeVec interface {
	WithLabelValues(lvs ...string) Gauge
}

type Gauge interface {
	Set(value float64)
	Add(delta float64)
}

type HistogramVec interface {
	WithLabelValues(lvs ...string) Histogram
}

type Histogram interface {
	Observe(value float64)
}

// CollectorConfig names the metrics.  Buckets applies to histograms
// registered without their own.
type CollectorConfig struct {
	Namespace string
	Subsystem string
	Buckets   []float64
}

// defaultBuckets are in seconds.
var defaultBuckets = []float64{.01, .05, .1, .25, .5, 1, 2.5, 5, 10, 30, 60}

type collector struct {
	cfg    CollectorConfig
	logger logging.Logger

	mu       sync.Mutex
	registry *prometheus.Registry
	byName   map[string]prometheus.Collector
}

// NewMetricsCollector returns a collector over a fresh registry, so every
// run starts from zero.
func NewMetricsCollector(cfg CollectorConfig, logger logging.Logger) (MetricsCollector, error) {
	if cfg.Namespace == "" {
		return nil, fmt.Errorf("metrics namespace is required")
	}
	if logger == nil {
		logger = logging.NewNopLogger()
	}
	if cfg.Buckets == nil {
		cfg.Buckets = defaultBuckets
	}
	return &collector{
		cfg:      cfg,
		logger:   logger,
		registry: prometheus.NewRegistry(),
		byName:   make(map[string]prometheus.Collector),
	}, nil
}

func (c *collector) Gatherer() prometheus.Gatherer {
	return c.registry
}

func (c *collector) Push(ctx context.Context, url, job string) error {
	if url == "" {
		return nil
	}
	if err := push.New(url, job).Gatherer(c.registry).PushContext(ctx); err != nil {
		return fmt.Errorf("push metrics to %s: %w", url, err)
	}
	return nil
}

// register stores fresh under its full name unless a collector is already
// there, and returns whichever is registered.
func (c *collector) register(name string, fresh prometheus.Collector) (prometheus.Collector, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	fq := prometheus.BuildFQName(c.cfg.Namespace, c.cfg.Subsystem, name)
	if existing, ok := c.byName[fq]; ok {
		return existing, nil
	}
	if err := c.registry.Register(fresh); err != nil {
		return nil, err
	}
	c.byName[fq] = fresh
	return fresh, nil
}

// registerAs registers fresh and asserts the stored collector has its type.
func registerAs[V prometheus.Collector](c *collector, name, kind string, fresh V) (V, bool) {
	var zero V
	got, err := c.register(name, fresh)
	if err != nil {
		c.logger.Error("metric registration failed", logging.String("name", name), logging.String("kind", kind), logging.Err(err))
		return zero, false
	}
	v, ok := got.(V)
	if !ok {
		c.logger.Warn("metric registered with another kind", logging.String("name", name), logging.String("kind", kind))
		return zero, false
	}
	return v, true
}

func (c *collector) RegisterCounter(name, help string, labels ...string) CounterVec {
	vec := prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: c.cfg.Namespace,
		Subsystem: c.cfg.Subsystem,
		Name:      name,
		Help:      help,
	}, labels)
	if v, ok := registerAs(c, name, "counter", vec); ok {
		return counterVec{v}
	}
	return noopCounterVec{}
}

func (c *collector) RegisterGauge(name, help string, labels ...string) GaugeVec {
	vec := prometheus.NewGaugeVec(prometheus.GaugeOpts{
		Namespace: c.cfg.Namespace,
		Subsystem: c.cfg.Subsystem,
		Name:      name,
		Help:      help,
	}, labels)
	if v, ok := registerAs(c, name, "gauge", vec); ok {
		return gaugeVec{v}
	}
	return noopGaugeVec{}
}

func (c *collector) RegisterHistogram(name, help string, buckets []float64, labels ...string) HistogramVec {
	if buckets == nil {
		buckets = c.cfg.Buckets
	}
	vec := prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: c.cfg.Namespace,
		Subsystem: c.cfg.Subsystem,
		Name:      name,
		Help:      help,
		Buckets:   buckets,
	}, labels)
	if v, ok := registerAs(c, name, "histogram", vec); ok {
		return histogramVec{v}
	}
	return noopHistogramVec{}
}

type counterVec struct{ *prometheus.CounterVec }

func (v counterVec) WithLabelValues(lvs ...string) Counter { return v.CounterVec.WithLabelValues(lvs...) }

type gaugeVec struct{ *prometheus.GaugeVec }

func (v gaugeVec) WithLabelValues(lvs ...string) Gauge { return v.GaugeVec.WithLabelValues(lvs...) }

type histogramVec struct{ *prometheus.HistogramVec }

func (v histogramVec) WithLabelValues(lvs ...string) Histogram {
	return v.HistogramVec.WithLabelValues(lvs...)
}

type noopCounterVec struct{}

func (noopCounterVec) WithLabelValues(...string) Counter { return noopMetric{} }

type noopGaugeVec struct{}

func (noopGaugeVec) WithLabelValues(...string) Gauge { return noopMetric{} }

type noopHistogramVec struct{}

func (noopHistogramVec) WithLabelValues(...string) Histogram { return noopMetric{} }

type noopMetric struct{}

func (noopMetric) Inc()            {}
func (noopMetric) Add(float64)     {}
func (noopMetric) Set(float64)     {}
func (noopMetric) Observe(float64) {}

//Personal.AI order the ending
