package metrics

import (
	"sync"

	"github.com/prometheus/client_golang/prometheus"
)

var (
	once sync.Once

	AdvisorLatency = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: "wavefuse",
			Subsystem: "advisor",
			Name:      "latency_seconds",
			Help:      "Latency of advisory endpoints",
			Buckets:   prometheus.DefBuckets,
		},
		[]string{"endpoint"},
	)

	AdvisorErrors = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "wavefuse",
			Subsystem: "advisor",
			Name:      "errors_total",
			Help:      "Errors by advisory endpoint",
		},
		[]string{"endpoint"},
	)

	Recommendations = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "wavefuse",
			Subsystem: "advisor",
			Name:      "recommendations_total",
			Help:      "Fusion outcomes by recommendation",
		},
		[]string{"recommendation"},
	)

	ScorerDegraded = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "wavefuse",
			Subsystem: "advisor",
			Name:      "scorer_degraded_total",
			Help:      "External scorer failures substituted with neutral defaults",
		},
		[]string{"scorer"},
	)
)

func Register() {
	once.Do(func() {
		prometheus.MustRegister(AdvisorLatency, AdvisorErrors, Recommendations, ScorerDegraded)
	})
}
