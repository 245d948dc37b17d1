package adapters

import "time"

// SystemClock is the production orchestrator.Clock: wall time, no
// injected skew. Tests construct their own fixed-time stand-in
// instead of using this type.
type SystemClock struct{}

func (SystemClock) Now() time.Time    { return time.Now() }
func (SystemClock) UTCNow() time.Time { return time.Now().UTC() }
