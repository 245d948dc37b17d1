package probe

import (
	"context"
	"time"

	"netrecon/internal/core/model"
	"netrecon/internal/core/netraw"
)

// tlsEchoStrategy implements TLS-ECHO: a SYN-carrying segment whose
// payload looks like a ServerHello, used as an evasive SYN substitute.
// Any RST-free response reads as Open (spec.md §4.3).
type tlsEchoStrategy struct{ deps *Deps }

func (s *tlsEchoStrategy) RequiresRawSockets() bool { return true }

// serverHelloShape is a minimal, syntactically plausible TLS
// ServerHello record header: not a full handshake, just enough to
// mimic a TLS server speaking first under IDS inspection.
var serverHelloShape = []byte{0x16, 0x03, 0x03, 0x00, 0x31, 0x02, 0x00, 0x00, 0x2d, 0x03, 0x03}

func (s *tlsEchoStrategy) Probe(ctx context.Context, endpoint model.Endpoint, port int, deadline time.Duration) (Result, error) {
	reply, err := sendTCPAndWait(ctx, s.deps, endpoint, port, netraw.FlagSYN, serverHelloShape, deadline)
	if err != nil {
		return Result{Status: model.StatusUnknown}, err
	}
	if reply == nil || reply.IsICMP {
		return Result{Status: model.StatusFiltered}, nil
	}
	if reply.TCPFlags&netraw.FlagRST != 0 {
		return Result{Status: model.StatusClosed}, nil
	}
	return Result{Status: model.StatusOpen, Evidence: Evidence{RawReply: reply.Raw}}, nil
}

// mimicStrategy implements MIMIC: SYN immediately followed by a
// protocol-shaped payload, classified exactly like SYN — only the
// wire shape changes, to defeat signature-based IDS matching.
type mimicStrategy struct{ deps *Deps }

func (s *mimicStrategy) RequiresRawSockets() bool { return true }

func (s *mimicStrategy) Probe(ctx context.Context, endpoint model.Endpoint, port int, deadline time.Duration) (Result, error) {
	payload, err := netraw.MimicPayload(s.deps.MimicProtocol, s.deps.MimicVariant)
	if err != nil {
		return Result{Status: model.StatusUnknown}, err
	}
	reply, err := sendTCPAndWait(ctx, s.deps, endpoint, port, netraw.FlagSYN, payload, deadline)
	if err != nil {
		return Result{Status: model.StatusUnknown}, err
	}
	return Result{Status: classifyTCPReply(reply, synRules)}, nil
}
