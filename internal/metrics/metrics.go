// Package metrics exposes build cycle counters for prometheus.
package metrics

import (
	"context"
	"net/http"

	"github.com/aretw0/dig/pkg/domain"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Collector owns the dig collectors on a private registry.
type Collector struct {
	registry *prometheus.Registry

	builds   *prometheus.CounterVec
	duration prometheus.Histogram
	diagrams *prometheus.CounterVec
	steps    prometheus.Counter
	lastOK   prometheus.Gauge
}

// New registers the collectors on a fresh registry.
func New() *Collector {
	c := &Collector{
		registry: prometheus.NewRegistry(),
		builds: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "dig_builds_total",
				Help: "Build cycles by result",
			},
			[]string{"status"},
		),
		duration: prometheus.NewHistogram(
			prometheus.HistogramOpts{
				Name:    "dig_build_duration_seconds",
				Help:    "Duration of build cycles",
				Buckets: prometheus.ExponentialBuckets(1, 2, 10),
			},
		),
		diagrams: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "dig_diagrams_total",
				Help: "Pages processed by outcome",
			},
			[]string{"outcome"},
		),
		steps: prometheus.NewCounter(
			prometheus.CounterOpts{
				Name: "dig_build_steps_total",
				Help: "Progress steps reported by build cycles",
			},
		),
		lastOK: prometheus.NewGauge(
			prometheus.GaugeOpts{
				Name: "dig_last_success_timestamp_seconds",
				Help: "Unix time of the last complete build",
			},
		),
	}
	c.registry.MustRegister(c.builds, c.duration, c.diagrams, c.steps, c.lastOK)
	return c
}

// Registry returns the registry holding the collectors.
func (c *Collector) Registry() *prometheus.Registry {
	return c.registry
}

// Handler serves the collectors in the prometheus exposition format.
func (c *Collector) Handler() http.Handler {
	return promhttp.HandlerFor(c.registry, promhttp.HandlerOpts{})
}

// Hooks returns lifecycle hooks recording into the collectors.
func (c *Collector) Hooks() domain.LifecycleHooks {
	return domain.LifecycleHooks{
		OnStep: func(ctx context.Context, e *domain.StepEvent) {
			c.steps.Inc()
		},
		OnDiagram: func(ctx context.Context, e *domain.DiagramEvent) {
			c.diagrams.WithLabelValues(e.Outcome).Inc()
		},
		OnCycleEnd: func(ctx context.Context, e *domain.CycleEvent) {
			c.duration.Observe(e.Duration.Seconds())
			if e.Err != nil {
				c.builds.WithLabelValues("failed").Inc()
				return
			}
			c.builds.WithLabelValues("complete").Inc()
			c.lastOK.Set(float64(e.Timestamp.Unix()))
		},
	}
}
