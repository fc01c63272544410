package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// requestsTotal counts finished pipeline runs
	// Labels: status (success/partial/error)
	requestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "lyricsync_requests_total",
			Help: "Total number of lyric extraction requests by final status",
		},
		[]string{"status"},
	)

	// stageFailuresTotal counts failed runs by the stage they failed in
	// Labels: stage (convert/isolate/segment/transcribe/persist), kind (error kind)
	stageFailuresTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "lyricsync_stage_failures_total",
			Help: "Total number of pipeline failures by stage and error kind",
		},
		[]string{"stage", "kind"},
	)

	// segmentsTotal counts recognition results
	// Labels: outcome (text/empty/unrecoverable)
	segmentsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "lyricsync_segments_total",
			Help: "Total number of transcribed segments by outcome",
		},
		[]string{"outcome"},
	)

	// stageDuration observes how long each stage took, in seconds
	// Buckets: 0.1s .. 15m, isolation on long tracks is slow
	stageDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "lyricsync_stage_duration_seconds",
			Help:    "Pipeline stage duration in seconds",
			Buckets: []float64{0.1, 0.5, 1, 2, 5, 10, 30, 60, 120, 300, 900},
		},
		[]string{"stage"},
	)

	// inflight is the number of pipelines currently running
	inflight = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "lyricsync_inflight_requests",
			Help: "Number of lyric extraction requests currently being processed",
		},
	)
)

// RecordRequest records the final status of a pipeline run
func RecordRequest(status string) {
	requestsTotal.WithLabelValues(status).Inc()
}

// RecordStageFailure records a failed run
func RecordStageFailure(stage, kind string) {
	stageFailuresTotal.WithLabelValues(stage, kind).Inc()
}

// RecordSegment records one recognition outcome
func RecordSegment(outcome string) {
	segmentsTotal.WithLabelValues(outcome).Inc()
}

// RecordStageDuration records the time spent in a stage, in seconds
func RecordStageDuration(stage string, seconds float64) {
	stageDuration.WithLabelValues(stage).Observe(seconds)
}

// TrackInflight increments the inflight gauge and returns the matching decrement
func TrackInflight() func() {
	inflight.Inc()
	return inflight.Dec
}
