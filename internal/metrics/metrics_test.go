package metrics

import (
	"testing"

	dto "github.com/prometheus/client_model/go"
)

func counterValue(t *testing.T, c interface{ Write(*dto.Metric) error }) float64 {
	t.Helper()
	metric := &dto.Metric{}
	if err := c.Write(metric); err != nil {
		t.Fatalf("Failed to write metric: %v", err)
	}
	return metric.Counter.GetValue()
}

func TestRecordRequest(t *testing.T) {
	requestsTotal.Reset()

	RecordRequest("success")
	RecordRequest("success")
	RecordRequest("error")

	if got := counterValue(t, requestsTotal.WithLabelValues("success")); got != 2 {
		t.Errorf("success = %v, want 2", got)
	}
	if got := counterValue(t, requestsTotal.WithLabelValues("error")); got != 1 {
		t.Errorf("error = %v, want 1", got)
	}
}

func TestRecordStageFailure(t *testing.T) {
	stageFailuresTotal.Reset()

	RecordStageFailure("isolate", "isolation")

	if got := counterValue(t, stageFailuresTotal.WithLabelValues("isolate", "isolation")); got != 1 {
		t.Errorf("isolate/isolation = %v, want 1", got)
	}
}

func TestRecordSegment(t *testing.T) {
	segmentsTotal.Reset()

	for _, o := range []string{"text", "text", "empty", "unrecoverable"} {
		RecordSegment(o)
	}

	if got := counterValue(t, segmentsTotal.WithLabelValues("text")); got != 2 {
		t.Errorf("text = %v, want 2", got)
	}
}

func TestTrackInflight(t *testing.T) {
	read := func() float64 {
		metric := &dto.Metric{}
		if err := inflight.Write(metric); err != nil {
			t.Fatal(err)
		}
		return metric.Gauge.GetValue()
	}

	before := read()
	done := TrackInflight()
	if read() != before+1 {
		t.Errorf("inflight = %v, want %v", read(), before+1)
	}
	done()
	if read() != before {
		t.Errorf("inflight = %v after done, want %v", read(), before)
	}
}

func TestRecordStageDuration(t *testing.T) {
	stageDuration.Reset()

	// histograms are verified by not panicking, see counter tests for values
	RecordStageDuration("convert", 1.5)
	RecordStageDuration("transcribe", 42)
}
