package observation

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// Metric names as constants for consistency.
const (
	MetricSubmissionsTotal    = "observation_submissions_total"
	MetricSubmissionDuration  = "observation_submission_duration_seconds"
	MetricPhotosUploadedTotal = "observation_photos_uploaded_total"
	MetricTurtlesReported     = "observation_turtles_reported_total"
)

// Submission outcome label values.
const (
	OutcomeSuccess            = "success"
	OutcomeValidationRejected = "validation_rejected"
	OutcomeUploadFailed       = "upload_failed"
	OutcomeInsertFailed       = "insert_failed"
)

// Metrics contains Prometheus metrics for the submission workflow.
// All operations are thread-safe. A nil *Metrics is valid and records nothing.
type Metrics struct {
	submissionsTotal   *prometheus.CounterVec
	submissionDuration prometheus.Histogram
	photosUploaded     prometheus.Counter
	turtlesReported    prometheus.Counter
}

// NewMetrics creates and returns a new Metrics instance with all collectors
// initialized. The metrics are not registered; call Register to register
// them with a registry.
func NewMetrics() *Metrics {
	return &Metrics{
		submissionsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: MetricSubmissionsTotal,
				Help: "Total number of submission attempts by outcome",
			},
			[]string{"outcome"},
		),
		submissionDuration: prometheus.NewHistogram(
			prometheus.HistogramOpts{
				Name:    MetricSubmissionDuration,
				Help:    "End-to-end submission attempt duration in seconds",
				Buckets: []float64{0.1, 0.5, 1.0, 2.5, 5.0, 10.0, 30.0},
			},
		),
		photosUploaded: prometheus.NewCounter(
			prometheus.CounterOpts{
				Name: MetricPhotosUploadedTotal,
				Help: "Total number of photos uploaded by successful submissions",
			},
		),
		turtlesReported: prometheus.NewCounter(
			prometheus.CounterOpts{
				Name: MetricTurtlesReported,
				Help: "Total number of turtle detail rows inserted",
			},
		),
	}
}

// Register registers all collectors with the given registry.
func (m *Metrics) Register(registry prometheus.Registerer) error {
	collectors := []prometheus.Collector{
		m.submissionsTotal,
		m.submissionDuration,
		m.photosUploaded,
		m.turtlesReported,
	}
	for _, collector := range collectors {
		if err := registry.Register(collector); err != nil {
			return err
		}
	}
	return nil
}

// recordSubmission counts one submission attempt and its duration.
func (m *Metrics) recordSubmission(outcome string, elapsed time.Duration) {
	if m == nil {
		return
	}
	m.submissionsTotal.WithLabelValues(outcome).Inc()
	m.submissionDuration.Observe(elapsed.Seconds())
}

// recordCounts tracks photos and rows persisted by a successful submission.
func (m *Metrics) recordCounts(photos, turtles int) {
	if m == nil {
		return
	}
	m.photosUploaded.Add(float64(photos))
	m.turtlesReported.Add(float64(turtles))
}
