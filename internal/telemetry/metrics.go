// Package telemetry records build metrics for sitesearch.
//
// Metrics live on an isolated registry and are exported through the
// node-exporter textfile collector rather than an HTTP endpoint, since a
// build is a short-lived process.
package telemetry

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// Route outcome label values.
const (
	OutcomeSeen       = "seen"
	OutcomeIndexed    = "indexed"
	OutcomeExcluded   = "excluded"
	OutcomeUnresolved = "unresolved"
)

// Build result label values.
const (
	ResultSuccess = "success"
	ResultFailure = "failure"
)

// Metrics holds the sitesearch collectors. Go runtime and process
// collectors are left out: the textfile collector rejects families the
// node exporter already exposes.
type Metrics struct {
	Registry *prometheus.Registry

	BuildsTotal          *prometheus.CounterVec
	BuildDurationSeconds prometheus.Histogram
	LastBuildTimestamp   prometheus.Gauge
	Routes               *prometheus.GaugeVec
	ExtensionsRegistered prometheus.Gauge
	BuildInfo            *prometheus.GaugeVec
}

// BuildStats summarizes one successful build.
type BuildStats struct {
	Seen       int
	Indexed    int
	Excluded   int
	Unresolved int
	Extensions int
	Duration   time.Duration
}

// NewMetrics creates a Metrics instance on its own registry.
func NewMetrics(version, goVersion string) *Metrics {
	reg := prometheus.NewRegistry()

	m := &Metrics{
		Registry: reg,

		BuildsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "sitesearch_builds_total",
				Help: "Total number of search builds by result.",
			},
			[]string{"result"},
		),
		BuildDurationSeconds: prometheus.NewHistogram(
			prometheus.HistogramOpts{
				Name:    "sitesearch_build_duration_seconds",
				Help:    "Duration of search builds in seconds.",
				Buckets: prometheus.ExponentialBuckets(0.01, 2, 12), // 10ms to ~20s
			},
		),
		LastBuildTimestamp: prometheus.NewGauge(
			prometheus.GaugeOpts{
				Name: "sitesearch_last_build_timestamp_seconds",
				Help: "Unix time of the last successful build.",
			},
		),
		Routes: prometheus.NewGaugeVec(
			prometheus.GaugeOpts{
				Name: "sitesearch_routes",
				Help: "Routes handled by the last successful build, by outcome.",
			},
			[]string{"outcome"},
		),
		ExtensionsRegistered: prometheus.NewGauge(
			prometheus.GaugeOpts{
				Name: "sitesearch_language_extensions",
				Help: "Language extensions registered by the last successful build.",
			},
		),
		BuildInfo: prometheus.NewGaugeVec(
			prometheus.GaugeOpts{
				Name: "sitesearch_info",
				Help: "Build information for sitesearch.",
			},
			[]string{"version", "go_version"},
		),
	}

	reg.MustRegister(
		m.BuildsTotal,
		m.BuildDurationSeconds,
		m.LastBuildTimestamp,
		m.Routes,
		m.ExtensionsRegistered,
		m.BuildInfo,
	)

	m.BuildInfo.WithLabelValues(version, goVersion).Set(1)

	return m
}

// ObserveBuild records a successful build.
func (m *Metrics) ObserveBuild(s BuildStats) {
	m.BuildsTotal.WithLabelValues(ResultSuccess).Inc()
	m.BuildDurationSeconds.Observe(s.Duration.Seconds())
	m.LastBuildTimestamp.SetToCurrentTime()
	m.Routes.WithLabelValues(OutcomeSeen).Set(float64(s.Seen))
	m.Routes.WithLabelValues(OutcomeIndexed).Set(float64(s.Indexed))
	m.Routes.WithLabelValues(OutcomeExcluded).Set(float64(s.Excluded))
	m.Routes.WithLabelValues(OutcomeUnresolved).Set(float64(s.Unresolved))
	m.ExtensionsRegistered.Set(float64(s.Extensions))
}

// ObserveFailure records a failed build. Route gauges keep the values of
// the last successful build.
func (m *Metrics) ObserveFailure(d time.Duration) {
	m.BuildsTotal.WithLabelValues(ResultFailure).Inc()
	m.BuildDurationSeconds.Observe(d.Seconds())
}

// WriteTextfile writes all metrics to path in the text exposition format.
// The write is atomic so the collector never reads a partial file.
func (m *Metrics) WriteTextfile(path string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("create metrics directory: %w", err)
	}
	if err := prometheus.WriteToTextfile(path, m.Registry); err != nil {
		return fmt.Errorf("write metrics textfile: %w", err)
	}
	return nil
}
