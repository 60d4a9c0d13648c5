package metrics

import (
	"sync"
	"time"
)

// Outcome is the write-only record of one orchestrated call.
type Outcome struct {
	Kind      string
	Duration  time.Duration
	Success   bool
	ErrorKind string
}

// Recorder applies outcomes to the Prometheus registry from a worker
// goroutine. Record never blocks and never fails the caller: when the
// queue is full the outcome is dropped and counted as such.
type Recorder struct {
	ch        chan Outcome
	done      chan struct{}
	closeOnce sync.Once
}

// DefaultQueueSize is the recorder's channel capacity.
const DefaultQueueSize = 1024

// NewRecorder creates a recorder and starts its worker.
func NewRecorder(queueSize int) *Recorder {
	if queueSize <= 0 {
		queueSize = DefaultQueueSize
	}
	r := &Recorder{
		ch:   make(chan Outcome, queueSize),
		done: make(chan struct{}),
	}
	go r.run()
	return r
}

// Record enqueues an outcome without blocking.
func (r *Recorder) Record(o Outcome) {
	select {
	case r.ch <- o:
	default:
		OutcomesDropped.Inc()
	}
}

// Close stops the worker after draining queued outcomes.
func (r *Recorder) Close() {
	r.closeOnce.Do(func() {
		close(r.ch)
		<-r.done
	})
}

func (r *Recorder) run() {
	defer close(r.done)
	for o := range r.ch {
		outcome := "success"
		if !o.Success {
			outcome = o.ErrorKind
			if outcome == "" {
				outcome = "error"
			}
		}
		CallsTotal.WithLabelValues(o.Kind, outcome).Inc()
		CallDuration.WithLabelValues(o.Kind).Observe(o.Duration.Seconds())
	}
}
