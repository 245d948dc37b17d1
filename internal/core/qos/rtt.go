package qos

import (
	"sync"
	"time"
)

// RttEstimator implements the RFC 6298 TCP RTO algorithm to turn
// observed probe round-trip times into an adaptive per-probe deadline
// hint. Adapted verbatim in spirit from the teacher's qos.RttEstimator.
// The orchestrator does not use it: probe deadlines always come from
// the operator-supplied timeout, and nothing fills the Port Record's
// timing analysis from this estimate.
type RttEstimator struct {
	mu     sync.RWMutex
	srtt   time.Duration
	rttvar time.Duration
	rto    time.Duration
}

const (
	defaultInitialRTO = 1 * time.Second
	minRTO            = 100 * time.Millisecond
	maxRTO            = 10 * time.Second
	alpha             = 0.125
	beta              = 0.25
)

// NewRttEstimator creates an estimator seeded at the default initial RTO.
func NewRttEstimator() *RttEstimator {
	return &RttEstimator{rto: defaultInitialRTO}
}

// Update folds a newly observed RTT sample into the estimate.
func (e *RttEstimator) Update(rtt time.Duration) {
	e.mu.Lock()
	defer e.mu.Unlock()

	if e.srtt == 0 {
		e.srtt = rtt
		e.rttvar = rtt / 2
	} else {
		delta := e.srtt - rtt
		if delta < 0 {
			delta = -delta
		}
		e.rttvar = time.Duration((1-beta)*float64(e.rttvar) + beta*float64(delta))
		e.srtt = time.Duration((1-alpha)*float64(e.srtt) + alpha*float64(rtt))
	}

	e.rto = e.srtt + 4*e.rttvar
	if e.rto < minRTO {
		e.rto = minRTO
	} else if e.rto > maxRTO {
		e.rto = maxRTO
	}
}

// Timeout returns the current RTO estimate.
func (e *RttEstimator) Timeout() time.Duration {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return e.rto
}
