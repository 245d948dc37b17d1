package probe

import (
	"context"
	"time"

	"netrecon/internal/core/listener"
	"netrecon/internal/core/model"
	"netrecon/internal/core/netraw"
)

// udpStrategy implements the UDP probe: send a datagram, classify by
// whatever comes back, and retry once on silence before settling on
// OpenFiltered (spec.md §4.3).
type udpStrategy struct{ deps *Deps }

func (s *udpStrategy) RequiresRawSockets() bool { return true }

func (s *udpStrategy) Probe(ctx context.Context, endpoint model.Endpoint, port int, deadline time.Duration) (Result, error) {
	half := deadline / 2
	if half <= 0 {
		half = deadline
	}

	for attempt := 0; attempt < 2; attempt++ {
		reply, err := s.sendOnce(ctx, endpoint, port, half)
		if err != nil {
			return Result{Status: model.StatusUnknown}, err
		}
		if reply == nil {
			continue // silence: retry once before giving up
		}
		if reply.IsICMP {
			if netraw.IsPortUnreachable(reply.ICMPType, reply.ICMPCode) {
				return Result{Status: model.StatusClosed}, nil
			}
			if netraw.IsHostOrNetUnreachable(reply.ICMPType, reply.ICMPCode) {
				return Result{Status: model.StatusFiltered}, nil
			}
			continue
		}
		return Result{Status: model.StatusOpen, Evidence: Evidence{RawReply: reply.Raw}}, nil
	}
	return Result{Status: model.StatusOpenFiltered}, nil
}

func (s *udpStrategy) sendOnce(ctx context.Context, endpoint model.Endpoint, port int, deadline time.Duration) (*listener.Reply, error) {
	return sendUDPAndWait(ctx, s.deps, endpoint, port, nil, deadline)
}

// sendUDPAndWait builds and sends one crafted UDP datagram, mirroring
// sendTCPAndWait's register-before-send protocol so a fast reply can
// never race the registration.
func sendUDPAndWait(ctx context.Context, d *Deps, endpoint model.Endpoint, port int, payload []byte, deadline time.Duration) (*listener.Reply, error) {
	localPort := ephemeralPort(d)
	key := listener.Key{Peer: endpoint.IP.String(), LocalPort: localPort}
	replyCh, cancel := d.Listener.Register(key)
	defer cancel()

	ttl := netraw.JitterTTL(d.RNG, d.BaseTTL, d.TTLJitter)
	datagram := netraw.BuildUDP(d.LocalIP, endpoint.IP, localPort, port, payload)
	packet, err := netraw.WrapIPv4(d.RNG, d.LocalIP, endpoint.IP, 17, ttl, datagram)
	if err != nil {
		return nil, err
	}
	if err := d.UDPSock.Send(endpoint.IP, packet); err != nil {
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
