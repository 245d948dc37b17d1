// Package probe implements the thirteen probe strategies: a uniform
// Probe(endpoint, port, deadline) operation per technique, dispatched
// by model.Technique. Adapted from the teacher's per-technique scanner
// files (scanner/port, scanner/alive) generalized to the crafted-packet
// contract in internal/core/netraw, with its classification rules
// replaced end to end.
package probe

import (
	"context"
	"crypto/x509"
	"math/rand"
	"net"
	"time"

	"netrecon/internal/core/listener"
	"netrecon/internal/core/model"
	"netrecon/internal/core/netraw"
)

// Evidence carries whatever a probe captured beyond a bare status:
// a raw reply (banner seed for UDP/TCP-with-payload probes), a TLS
// leaf certificate, or the TCP window field a WINDOW probe inspected.
type Evidence struct {
	RawReply []byte
	Cert     *x509.Certificate
	Window   uint16
	TTL      int // IP header TTL observed on the reply, for OS-family guessing
}

// Result is the uniform return shape of every strategy's Probe call.
type Result struct {
	Status   model.PortStatus
	Evidence Evidence
}

// Strategy is the contract every technique implements (spec.md §4.3).
type Strategy interface {
	Probe(ctx context.Context, endpoint model.Endpoint, port int, deadline time.Duration) (Result, error)
	RequiresRawSockets() bool
}

// Deps bundles everything a strategy needs from the rest of the
// engine: the shared listener to register replies with, the raw
// sockets to send crafted frames over, the local egress address for
// pseudo-header checksums, and the orchestrator's single injected RNG.
type Deps struct {
	Listener  *listener.Listener
	TCPSock   netraw.RawSocket
	UDPSock   netraw.RawSocket
	ICMPSock  netraw.RawSocket
	LocalIP   net.IP
	RNG       *rand.Rand
	BaseTTL   int
	TTLJitter int

	// Evasion/technique-specific parameters, all optional.
	MimicProtocol  netraw.MimicProtocol
	MimicVariant   string
	FragMinSize    int
	FragMaxSize    int
	FragFirstMin   int
	FragTwoOnly    bool
	FragMinDelay   time.Duration
	FragMaxDelay   time.Duration
	FragTimeout    time.Duration
	TunnelNonce    uint32
	LookupDomain   string
	DNSServer      string
	TLSServerName  string
}

// Dispatch returns the strategy for a technique, or nil if unknown.
func Dispatch(t model.Technique, d *Deps) Strategy {
	switch t {
	case model.TechSYN:
		return &tcpFlagStrategy{deps: d, flags: netraw.FlagSYN, rules: synRules}
	case model.TechACK:
		return &tcpFlagStrategy{deps: d, flags: netraw.FlagACK, rules: ackRules}
	case model.TechFIN:
		return &tcpFlagStrategy{deps: d, flags: netraw.FlagFIN, rules: closedOpenFilteredRules}
	case model.TechNULL:
		return &tcpFlagStrategy{deps: d, flags: 0, rules: closedOpenFilteredRules}
	case model.TechXMAS:
		return &tcpFlagStrategy{deps: d, flags: netraw.FlagFIN | netraw.FlagPSH | netraw.FlagURG, rules: closedOpenFilteredRules}
	case model.TechWINDOW:
		return &windowStrategy{deps: d}
	case model.TechUDP:
		return &udpStrategy{deps: d}
	case model.TechSSL:
		return &sslStrategy{deps: d}
	case model.TechTLSEcho:
		return &tlsEchoStrategy{deps: d}
	case model.TechMimic:
		return &mimicStrategy{deps: d}
	case model.TechFrag:
		return &fragStrategy{deps: d}
	case model.TechDNSTunnel:
		return &dnsTunnelStrategy{deps: d}
	case model.TechICMPTunnel:
		return &icmpTunnelStrategy{deps: d}
	default:
		return nil
	}
}
