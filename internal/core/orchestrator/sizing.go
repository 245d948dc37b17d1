package orchestrator

import (
	"github.com/shirou/gopsutil/v3/cpu"
)

// defaultConcurrency sizes the scan's admission semaphore off the
// scanning host's own CPU count (spec.md §4.5.1) — never the remote
// target, which the engine has no visibility into. Falls back to a
// fixed value if gopsutil can't read host CPU info (e.g. restricted
// container).
func defaultConcurrency() int {
	counts, err := cpu.Counts(true)
	if err != nil || counts <= 0 {
		return 16
	}
	return 4 * counts
}
