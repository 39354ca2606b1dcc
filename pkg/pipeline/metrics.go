package pipeline

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	runsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "krishi_pipeline_runs_total",
		Help: "Total listing pipeline runs by outcome",
	}, []string{"outcome"})

	staleDiscardsTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "krishi_pipeline_stale_discards_total",
		Help: "Total commits discarded because a newer run had started",
	})

	fetchAttemptsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "krishi_fetch_attempts_total",
		Help: "Total fetch attempts made by pipeline runs by fetch outcome",
	}, []string{"outcome"})

	cacheFallbacksTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "krishi_pipeline_fallbacks_total",
		Help: "Total degraded commits by data source",
	}, []string{"source"})
)
