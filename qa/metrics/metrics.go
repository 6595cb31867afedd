// Package metrics provides Prometheus metrics export for the QA pipeline.
package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Collector holds the pipeline's Prometheus collectors. One instance is
// created at process start and shared by the orchestrator and HTTP layer.
type Collector struct {
	registry *prometheus.Registry

	questionsTotal       *prometheus.CounterVec
	pipelineDuration     prometheus.Histogram
	cacheHits            prometheus.Counter
	cacheMisses          prometheus.Counter
	collaboratorFailures *prometheus.CounterVec
}

// NewCollector creates and registers the pipeline collectors on a fresh
// registry.
func NewCollector() *Collector {
	registry := prometheus.NewRegistry()

	c := &Collector{
		registry: registry,
		questionsTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "aicp",
			Name:      "questions_total",
			Help:      "Total questions processed, labeled by intent and final status.",
		}, []string{"intent", "status"}),
		pipelineDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: "aicp",
			Name:      "pipeline_duration_seconds",
			Help:      "End-to-end pipeline duration in seconds.",
			Buckets:   []float64{0.01, 0.05, 0.1, 0.5, 1, 2, 5, 10, 30, 60},
		}),
		cacheHits: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "aicp",
			Name:      "answer_cache_hits_total",
			Help:      "Answer cache hits.",
		}),
		cacheMisses: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "aicp",
			Name:      "answer_cache_misses_total",
			Help:      "Answer cache misses.",
		}),
		collaboratorFailures: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "aicp",
			Name:      "collaborator_failures_total",
			Help:      "Degraded collaborator calls, labeled by collaborator and status.",
		}, []string{"collaborator", "status"}),
	}

	registry.MustRegister(
		c.questionsTotal,
		c.pipelineDuration,
		c.cacheHits,
		c.cacheMisses,
		c.collaboratorFailures,
	)
	return c
}

// Handler returns the HTTP handler serving the metrics endpoint.
func (c *Collector) Handler() http.Handler {
	return promhttp.HandlerFor(c.registry, promhttp.HandlerOpts{})
}

// ObserveQuestion records a completed pipeline run.
func (c *Collector) ObserveQuestion(intent, status string, durationSeconds float64) {
	c.questionsTotal.WithLabelValues(intent, status).Inc()
	c.pipelineDuration.Observe(durationSeconds)
}

// ObserveCache records a cache lookup outcome.
func (c *Collector) ObserveCache(hit bool) {
	if hit {
		c.cacheHits.Inc()
	} else {
		c.cacheMisses.Inc()
	}
}

// ObserveCollaboratorFailure records one degraded collaborator call.
func (c *Collector) ObserveCollaboratorFailure(collaborator, status string) {
	c.collaboratorFailures.WithLabelValues(collaborator, status).Inc()
}
