package probe

import (
	"context"
	"time"

	"netrecon/internal/core/listener"
	"netrecon/internal/core/model"
	"netrecon/internal/core/netraw"
)

// classifyRules maps a TCP-probe family's observed reply shape to a
// PortStatus, per spec.md §4.3. Exactly one of the four outcome
// fields is consulted for any given reply/timeout.
type classifyRules struct {
	onRST        model.PortStatus
	onOtherReply model.PortStatus // SYN/ACK, or any non-RST TCP reply
	onICMPFilter model.PortStatus // unreachable codes 1,2,3,9,10,13
	onTimeout    model.PortStatus
}

var synRules = classifyRules{
	onRST:        model.StatusClosed,
	onOtherReply: model.StatusOpen,
	onICMPFilter: model.StatusFiltered,
	onTimeout:    model.StatusFiltered,
}

var ackRules = classifyRules{
	onRST:        model.StatusUnfiltered,
	onOtherReply: model.StatusUnfiltered,
	onICMPFilter: model.StatusFiltered,
	onTimeout:    model.StatusFiltered,
}

// closedOpenFilteredRules covers FIN/NULL/XMAS: RFC 793 §3.9 compliant
// stacks silently drop these on open ports, so silence reads as
// OpenFiltered rather than Filtered.
var closedOpenFilteredRules = classifyRules{
	onRST:        model.StatusClosed,
	onOtherReply: model.StatusClosed,
	onICMPFilter: model.StatusFiltered,
	onTimeout:    model.StatusOpenFiltered,
}

// tcpFlagStrategy implements SYN/ACK/FIN/NULL/XMAS: a single TCP
// segment with a fixed flag combination, classified purely from the
// shape of the reply.
type tcpFlagStrategy struct {
	deps  *Deps
	flags int
	rules classifyRules
}

func (s *tcpFlagStrategy) RequiresRawSockets() bool { return true }

func (s *tcpFlagStrategy) Probe(ctx context.Context, endpoint model.Endpoint, port int, deadline time.Duration) (Result, error) {
	reply, err := sendTCPAndWait(ctx, s.deps, endpoint, port, s.flags, nil, deadline)
	if err != nil {
		return Result{Status: model.StatusUnknown}, err
	}
	status := classifyTCPReply(reply, s.rules)
	if reply != nil {
		return Result{Status: status, Evidence: Evidence{TTL: reply.TTL}}, nil
	}
	return Result{Status: status}, nil
}

// windowStrategy implements WINDOW: send ACK, classify by the RST's
// window field rather than its mere presence.
type windowStrategy struct{ deps *Deps }

func (s *windowStrategy) RequiresRawSockets() bool { return true }

func (s *windowStrategy) Probe(ctx context.Context, endpoint model.Endpoint, port int, deadline time.Duration) (Result, error) {
	reply, err := sendTCPAndWait(ctx, s.deps, endpoint, port, netraw.FlagACK, nil, deadline)
	if err != nil {
		return Result{Status: model.StatusUnknown}, err
	}
	if reply == nil || reply.IsICMP {
		return Result{Status: model.StatusFiltered}, nil
	}
	if reply.TCPFlags&netraw.FlagRST == 0 {
		return Result{Status: model.StatusFiltered}, nil
	}
	if reply.TCPWindow != 0 {
		return Result{Status: model.StatusOpen, Evidence: Evidence{Window: reply.TCPWindow}}, nil
	}
	return Result{Status: model.StatusClosed, Evidence: Evidence{Window: 0}}, nil
}

// classifyTCPReply applies the shared family rules to one reply (or
// nil, meaning the deadline expired with no match).
func classifyTCPReply(reply *listener.Reply, rules classifyRules) model.PortStatus {
	if reply == nil {
		return rules.onTimeout
	}
	if reply.IsICMP {
		if netraw.IsHostOrNetUnreachable(reply.ICMPType, reply.ICMPCode) {
			return rules.onICMPFilter
		}
		return rules.onTimeout
	}
	if reply.TCPFlags&netraw.FlagRST != 0 {
		return rules.onRST
	}
	return rules.onOtherReply
}

// sendTCPAndWait builds and sends one crafted TCP segment, registers
// the (peer, localPort) key with the listener first so no reply can
// race the send, and blocks until a reply arrives or deadline elapses.
func sendTCPAndWait(ctx context.Context, d *Deps, endpoint model.Endpoint, port, flags int, payload []byte, deadline time.Duration) (*listener.Reply, error) {
	localPort := ephemeralPort(d)
	key := listener.Key{Peer: endpoint.IP.String(), LocalPort: localPort}
	replyCh, cancel := d.Listener.Register(key)
	defer cancel()

	ttl := netraw.JitterTTL(d.RNG, d.BaseTTL, d.TTLJitter)
	seg, err := netraw.BuildTCP(netraw.TCPParams{
		SrcIP:   d.LocalIP,
		DstIP:   endpoint.IP,
		SrcPort: localPort,
		DstPort: port,
		Seq:     d.RNG.Uint32(),
		Flags:   flags,
		Window:  64240,
		Payload: payload,
	})
	if err != nil {
		return nil, err
	}
	packet, err := netraw.WrapIPv4(d.RNG, d.LocalIP, endpoint.IP, 6, ttl, seg)
	if err != nil {
		return nil, err
	}
	if err := d.TCPSock.Send(endpoint.IP, packet); err != nil {
		return nil, err
	}

	timer := time.NewTimer(deadline)
	defer timer.Stop()
	select {
	case reply := <-replyCh:
		return reply, nil
	case <-timer.C:
		return nil, nil
	case <-ctx.Done():
		return nil, ctx.Err()
	}
}

// ephemeralPort draws a source port in the dynamic/private range
// using the orchestrator's injected RNG, so every replay of a scan
// with the same seed produces the same port sequence.
func ephemeralPort(d *Deps) int {
	return 49152 + d.RNG.Intn(65535-49152)
}
