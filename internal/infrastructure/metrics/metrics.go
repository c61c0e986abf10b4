// Package metrics exports extraction pipeline measurements to Prometheus.
package metrics

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const namespace = "planachat"

// Recorder holds the pipeline metrics. It satisfies usecase.ExtractionRecorder.
type Recorder struct {
	RelayAttempts      *prometheus.CounterVec
	Extractions        *prometheus.CounterVec
	ExtractionDuration prometheus.Histogram

	gatherer prometheus.Gatherer
}

// NewRecorder registers the pipeline metrics on a fresh registry, together with
// the Go runtime and process collectors.
func NewRecorder() *Recorder {
	reg := prometheus.NewRegistry()
	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	return NewRecorderWith(reg, reg)
}

// NewRecorderWith registers the pipeline metrics on reg and serves them from gatherer
func NewRecorderWith(reg prometheus.Registerer, gatherer prometheus.Gatherer) *Recorder {
	factory := promauto.With(reg)

	return &Recorder{
		RelayAttempts: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "relay_attempts_total",
			Help:      "Relay fetch attempts by relay and result",
		}, []string{"relay", "result"}),

		Extractions: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "extractions_total",
			Help:      "Completed extractions by result (priced, partial, failed)",
		}, []string{"result"}),

		ExtractionDuration: factory.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "extraction_duration_seconds",
			Help:      "Time to extract one product across all relays",
			Buckets:   []float64{0.25, 0.5, 1, 2, 5, 10, 20, 30, 45, 60},
		}),

		gatherer: gatherer,
	}
}

// RelayAttempt counts one relay attempt
func (r *Recorder) RelayAttempt(relay, result string) {
	r.RelayAttempts.WithLabelValues(relay, result).Inc()
}

// ExtractionCompleted counts one extraction and observes its duration
func (r *Recorder) ExtractionCompleted(result string, duration time.Duration) {
	r.Extractions.WithLabelValues(result).Inc()
	r.ExtractionDuration.Observe(duration.Seconds())
}

// Handler returns the Prometheus HTTP handler for the /metrics endpoint
func (r *Recorder) Handler() http.Handler {
	return promhttp.HandlerFor(r.gatherer, promhttp.HandlerOpts{})
}
