package metrics

import (
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
)

func TestRecorderAppliesOutcomes(t *testing.T) {
	r := NewRecorder(16)

	before := testutil.ToFloat64(CallsTotal.WithLabelValues("risk_prediction", "success"))

	r.Record(Outcome{Kind: "risk_prediction", Duration: 120 * time.Millisecond, Success: true})
	r.Record(Outcome{Kind: "risk_prediction", Duration: 80 * time.Millisecond, Success: true})
	r.Close()

	after := testutil.ToFloat64(CallsTotal.WithLabelValues("risk_prediction", "success"))
	if after-before != 2 {
		t.Errorf("success counter moved by %v, want 2", after-before)
	}
}

func TestRecorderLabelsFailuresByKind(t *testing.T) {
	r := NewRecorder(16)

	before := testutil.ToFloat64(CallsTotal.WithLabelValues("breakdown", "timeout"))

	r.Record(Outcome{Kind: "breakdown", Duration: time.Minute, Success: false, ErrorKind: "timeout"})
	r.Close()

	after := testutil.ToFloat64(CallsTotal.WithLabelValues("breakdown", "timeout"))
	if after-before != 1 {
		t.Errorf("timeout counter moved by %v, want 1", after-before)
	}
}

func TestRecordNeverBlocksWhenFull(t *testing.T) {
	// A recorder whose worker has already exited keeps a full queue
	// full; Record must still return immediately.
	r := &Recorder{ch: make(chan Outcome, 1), done: make(chan struct{})}
	close(r.done)
	r.ch <- Outcome{Kind: "x"}

	dropsBefore := testutil.ToFloat64(OutcomesDropped)

	finished := make(chan struct{})
	go func() {
		r.Record(Outcome{Kind: "priority"})
		close(finished)
	}()

	select {
	case <-finished:
	case <-time.After(time.Second):
		t.Fatal("Record blocked on a full queue")
	}

	if got := testutil.ToFloat64(OutcomesDropped); got-dropsBefore != 1 {
		t.Errorf("dropped counter moved by %v, want 1", got-dropsBefore)
	}
}
