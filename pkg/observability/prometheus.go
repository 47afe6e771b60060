package observability

import (
	"context"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// Metrics implements every hook interface on top of Prometheus collectors.
type Metrics struct {
	metadataDuration *prometheus.HistogramVec
	diffTotal        *prometheus.CounterVec
	diffErrorTotal   *prometheus.CounterVec
	diffRecords      *prometheus.CounterVec
	diffDuration     *prometheus.HistogramVec
	renderDuration   *prometheus.HistogramVec
	lookupTotal      *prometheus.CounterVec
	lookupDuration   *prometheus.HistogramVec
	cacheTotal       *prometheus.CounterVec
	cacheBytes       prometheus.Counter
	httpTotal        *prometheus.CounterVec
	httpDuration     *prometheus.HistogramVec
}

var (
	_ PipelineHooks = (*Metrics)(nil)
	_ LookupHooks   = (*Metrics)(nil)
	_ CacheHooks    = (*Metrics)(nil)
	_ HTTPHooks     = (*Metrics)(nil)
)

// NewMetrics creates the collectors and registers them with reg.
func NewMetrics(reg prometheus.Registerer) *Metrics {
	m := &Metrics{
		metadataDuration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "cratediff_metadata_duration_seconds",
				Help:    "Time taken to resolve workspace metadata.",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"provider", "result"},
		),
		diffTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "cratediff_diff_total",
				Help: "Number of diff runs by request mode.",
			},
			[]string{"mode"},
		),
		diffErrorTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "cratediff_diff_error_total",
				Help: "Number of failed diff runs by request mode.",
			},
			[]string{"mode"},
		),
		diffRecords: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "cratediff_diff_records_total",
				Help: "Number of direct diff records produced.",
			},
			[]string{"mode"},
		),
		diffDuration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "cratediff_diff_duration_seconds",
				Help:    "Time taken to build a diff report.",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"mode"},
		),
		renderDuration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "cratediff_render_duration_seconds",
				Help:    "Time taken to render a report.",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"format"},
		),
		lookupTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "cratediff_lookup_total",
				Help: "Number of registry lookups.",
			},
			[]string{"provider", "kind", "result"},
		),
		lookupDuration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "cratediff_lookup_duration_seconds",
				Help:    "Time taken by registry lookups.",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"provider", "kind"},
		),
		cacheTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "cratediff_cache_total",
				Help: "Cache operations by key type and outcome.",
			},
			[]string{"key_type", "op"},
		),
		cacheBytes: prometheus.NewCounter(
			prometheus.CounterOpts{
				Name: "cratediff_cache_written_bytes_total",
				Help: "Bytes written to the cache.",
			},
		),
		httpTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "cratediff_http_requests_total",
				Help: "Outgoing HTTP requests by host and status.",
			},
			[]string{"host", "status"},
		),
		httpDuration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "cratediff_http_request_duration_seconds",
				Help:    "Outgoing HTTP request latency.",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"host"},
		),
	}

	if reg != nil {
		reg.MustRegister(
			m.metadataDuration,
			m.diffTotal,
			m.diffErrorTotal,
			m.diffRecords,
			m.diffDuration,
			m.renderDuration,
			m.lookupTotal,
			m.lookupDuration,
			m.cacheTotal,
			m.cacheBytes,
			m.httpTotal,
			m.httpDuration,
		)
	}
	return m
}

// Install registers m for every hook category.
func (m *Metrics) Install() {
	SetPipelineHooks(m)
	SetLookupHooks(m)
	SetCacheHooks(m)
	SetHTTPHooks(m)
}

func result(err error) string {
	if err != nil {
		return "error"
	}
	return "ok"
}

func (m *Metrics) OnMetadataStart(context.Context, string, string) {}

func (m *Metrics) OnMetadataComplete(_ context.Context, provider, _ string, _ int, d time.Duration, err error) {
	m.metadataDuration.WithLabelValues(provider, result(err)).Observe(d.Seconds())
}

func (m *Metrics) OnDiffStart(_ context.Context, mode string, _ int) {
	m.diffTotal.WithLabelValues(mode).Inc()
}

func (m *Metrics) OnDiffComplete(_ context.Context, mode string, records int, d time.Duration, err error) {
	if err != nil {
		m.diffErrorTotal.WithLabelValues(mode).Inc()
	}
	m.diffRecords.WithLabelValues(mode).Add(float64(records))
	m.diffDuration.WithLabelValues(mode).Observe(d.Seconds())
}

func (m *Metrics) OnRenderStart(context.Context, string) {}

func (m *Metrics) OnRenderComplete(_ context.Context, format string, d time.Duration, _ error) {
	m.renderDuration.WithLabelValues(format).Observe(d.Seconds())
}

func (m *Metrics) OnLookup(_ context.Context, provider, kind string, d time.Duration, err error) {
	m.lookupTotal.WithLabelValues(provider, kind, result(err)).Inc()
	m.lookupDuration.WithLabelValues(provider, kind).Observe(d.Seconds())
}

func (m *Metrics) OnCacheHit(_ context.Context, keyType string) {
	m.cacheTotal.WithLabelValues(keyType, "hit").Inc()
}

func (m *Metrics) OnCacheMiss(_ context.Context, keyType string) {
	m.cacheTotal.WithLabelValues(keyType, "miss").Inc()
}

func (m *Metrics) OnCacheSet(_ context.Context, keyType string, size int) {
	m.cacheTotal.WithLabelValues(keyType, "set").Inc()
	m.cacheBytes.Add(float64(size))
}

func (m *Metrics) OnRequest(context.Context, string, string, string) {}

func (m *Metrics) OnResponse(_ context.Context, _, host, _ string, status int, d time.Duration) {
	m.httpTotal.WithLabelValues(host, strconv.Itoa(status)).Inc()
	m.httpDuration.WithLabelValues(host).Observe(d.Seconds())
}

func (m *Metrics) OnError(_ context.Context, _, host, _ string, _ error) {
	m.httpTotal.WithLabelValues(host, "error").Inc()
}
