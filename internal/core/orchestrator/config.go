// Package orchestrator drives a full scan: work-item generation,
// admission control, per-probe deadlines, the per-port state machine
// and the single aggregator goroutine that owns the ScanResult.
// Adapted from the teacher's scanner/pipeline + scanner/runner
// concurrency shape, generalized from "one scanner type per pass" to
// "one dispatch table of probe strategies run to completion per port".
package orchestrator

import (
	"math/rand"
	"time"

	"netrecon/internal/core/identify"
	"netrecon/internal/core/netraw"
)

// Config carries every operator-tunable knob named in spec.md §6,
// threaded down to the orchestrator, the probe strategies and the
// identifier. Rand is the single injected RNG spec.md §9 requires for
// every randomized decision in the run.
type Config struct {
	Concurrency int // 0 => 4 * CPU count, see sizing.go
	Rate        int // packets/sec; 0 => uniform random in [100, 500]

	Timeout        time.Duration
	TimeoutConnect time.Duration
	TimeoutBanner  time.Duration

	RandomDelay bool
	MaxDelay    time.Duration

	Evasion bool // shuffle per-endpoint port order

	BaseTTL   int
	TTLJitter int

	MimicProtocol netraw.MimicProtocol
	MimicVariant  string

	FragMinSize  int
	FragMaxSize  int
	FragFirstMin int
	FragTwoOnly  bool
	FragMinDelay time.Duration
	FragMaxDelay time.Duration
	FragTimeout  time.Duration

	DNSServer    string
	LookupDomain string
	TunnelNonce  uint32

	Signatures []identify.Signature
	Classifier identify.Classifier

	Rand *rand.Rand
}

// resolveConcurrency applies the 0 => sized-from-CPU-count default
// (spec.md §4.5.1).
func resolveConcurrency(c int) int {
	if c > 0 {
		return c
	}
	return defaultConcurrency()
}

// resolveRate applies the 0 => random evasive burst default (spec.md §4.5).
func resolveRate(rate int, rng *rand.Rand) int {
	if rate > 0 {
		return rate
	}
	return 100 + rng.Intn(401) // uniform in [100, 500]
}
