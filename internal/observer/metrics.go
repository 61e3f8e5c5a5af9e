package observer

import (
	"sync"

	"github.com/prometheus/client_golang/prometheus"
)

var (
	registerOnce sync.Once

	// AnalysesTotal counts finished analyses by provider, type and outcome
	AnalysesTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: "vision",
		Subsystem: "gateway",
		Name:      "analyses_total",
		Help:      "Total number of image analyses, labeled by provider, analysis type and result.",
	}, []string{"provider", "analysis_type", "result"})

	// AnalysisDurationSeconds is the end-to-end facade time per analysis
	AnalysisDurationSeconds = prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: "vision",
		Subsystem: "gateway",
		Name:      "analysis_duration_seconds",
		Help:      "End-to-end time of an image analysis including image loading and vendor calls.",
		Buckets:   []float64{0.01, 0.05, 0.1, 0.25, 0.5, 1, 2, 5, 10, 20, 30, 60},
	}, []string{"provider", "analysis_type"})

	// ErrorsTotal counts failures by error category
	ErrorsTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: "vision",
		Subsystem: "gateway",
		Name:      "errors_total",
		Help:      "Total number of failed analyses, labeled by provider and error type.",
	}, []string{"provider", "error_type"})

	// InFlight is the number of analyses currently running
	InFlight = prometheus.NewGauge(prometheus.GaugeOpts{
		Namespace: "vision",
		Subsystem: "gateway",
		Name:      "analyses_in_flight",
		Help:      "Number of image analyses currently being processed.",
	})
)

// Register registers gateway metrics with the default Prometheus registry.
// Safe to call multiple times.
func Register() {
	registerOnce.Do(func() {
		prometheus.MustRegister(
			AnalysesTotal,
			AnalysisDurationSeconds,
			ErrorsTotal,
			InFlight,
		)
	})
}
