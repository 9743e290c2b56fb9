// Package metrics exports print activity to Prometheus through lifecycle hooks.
package metrics

import (
	"context"
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/aretw0/printdesk/pkg/domain"
)

// Recorder holds the print collectors.
type Recorder struct {
	gatherer prometheus.Gatherer

	printsTotal   *prometheus.CounterVec
	inFlight      *prometheus.GaugeVec
	duration      *prometheus.HistogramVec
	outputSize    *prometheus.HistogramVec
	prunedOutputs prometheus.Counter
}

// New registers the collectors with reg. A nil reg uses a private registry.
func New(reg *prometheus.Registry) *Recorder {
	if reg == nil {
		reg = prometheus.NewRegistry()
	}
	factory := promauto.With(reg)

	return &Recorder{
		gatherer: reg,
		printsTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "printdesk_prints_total",
				Help: "Total number of print requests by kind, plugin and status",
			},
			[]string{"kind", "plugin", "status"},
		),
		inFlight: factory.NewGaugeVec(
			prometheus.GaugeOpts{
				Name: "printdesk_prints_in_flight",
				Help: "Number of print operations currently running",
			},
			[]string{"kind"},
		),
		duration: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "printdesk_render_duration_seconds",
				Help:    "Time taken to render and store a print output",
				Buckets: []float64{.1, .5, 1, 2.5, 5, 10, 20, 30},
			},
			[]string{"kind"},
		),
		outputSize: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "printdesk_output_size_bytes",
				Help:    "Size of generated outputs in bytes",
				Buckets: prometheus.ExponentialBuckets(1024, 2, 10),
			},
			[]string{"kind"},
		),
		prunedOutputs: factory.NewCounter(
			prometheus.CounterOpts{
				Name: "printdesk_pruned_outputs_total",
				Help: "Total number of outputs removed by the cleanup job",
			},
		),
	}
}

// Hooks returns lifecycle hooks feeding the collectors.
func (r *Recorder) Hooks() domain.LifecycleHooks {
	return domain.LifecycleHooks{
		OnPrintStart: func(ctx context.Context, e *domain.PrintEvent) {
			r.inFlight.WithLabelValues(string(e.Kind)).Inc()
		},
		OnPrintComplete: func(ctx context.Context, e *domain.PrintEvent) {
			kind := string(e.Kind)
			r.inFlight.WithLabelValues(kind).Dec()
			r.printsTotal.WithLabelValues(kind, plugin(e), "success").Inc()
			r.duration.WithLabelValues(kind).Observe(e.Duration.Seconds())
			if e.Bytes > 0 {
				r.outputSize.WithLabelValues(kind).Observe(float64(e.Bytes))
			}
		},
		OnPrintError: func(ctx context.Context, e *domain.PrintEvent) {
			kind := string(e.Kind)
			r.inFlight.WithLabelValues(kind).Dec()
			r.printsTotal.WithLabelValues(kind, plugin(e), "error").Inc()
		},
		OnCleanup: func(ctx context.Context, e *domain.CleanupEvent) {
			r.prunedOutputs.Add(float64(e.Removed))
		},
	}
}

// Handler serves the registry in the Prometheus exposition format.
func (r *Recorder) Handler() http.Handler {
	return promhttp.HandlerFor(r.gatherer, promhttp.HandlerOpts{})
}

func plugin(e *domain.PrintEvent) string {
	if e.Plugin == "" {
		return "none"
	}
	return e.Plugin
}
