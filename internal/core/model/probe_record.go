package model

import "time"

// ProbeRecord tracks a single probe dispatch from send to its one
// terminal mutation (reply or timeout). It lives only until the
// orchestrator's aggregator merges its classification into the owning
// PortRecord; nothing downstream keeps a reference to it afterward.
type ProbeRecord struct {
	Endpoint   Endpoint
	Port       int
	Technique  Technique
	Nonce      uint32
	SentAt     time.Time
	ReceivedAt time.Time // zero until a reply arrives
	RawReply   []byte
	Status     PortStatus
}

// Terminal reports whether this probe has reached a final classification.
func (p *ProbeRecord) Terminal() bool {
	return p.Status != StatusUnknown || !p.ReceivedAt.IsZero()
}
