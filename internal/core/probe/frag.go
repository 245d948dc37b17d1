package probe

import (
	"context"
	"time"

	"netrecon/internal/core/listener"
	"netrecon/internal/core/model"
	"netrecon/internal/core/netraw"
)

// fragStrategy implements FRAG: build a SYN segment, split the
// resulting IP datagram into fragments per netraw.Fragment, and send
// each with a uniform random delay before the overall frag_timeout
// expires. Classification mirrors plain SYN once reassembly completes
// at the target (spec.md §4.3).
type fragStrategy struct{ deps *Deps }

func (s *fragStrategy) RequiresRawSockets() bool { return true }

func (s *fragStrategy) Probe(ctx context.Context, endpoint model.Endpoint, port int, deadline time.Duration) (Result, error) {
	d := s.deps
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
		Flags:   netraw.FlagSYN,
		Window:  64240,
	})
	if err != nil {
		return Result{Status: model.StatusUnknown}, err
	}
	packet, err := netraw.WrapIPv4(d.RNG, d.LocalIP, endpoint.IP, 6, ttl, seg)
	if err != nil {
		return Result{Status: model.StatusUnknown}, err
	}

	frags, err := netraw.Fragment(packet, d.FragMinSize, d.FragMaxSize, d.FragFirstMin, d.FragTwoOnly, d.RNG)
	if err != nil {
		return Result{Status: model.StatusUnknown}, err
	}

	overall := d.FragTimeout
	if overall <= 0 {
		overall = deadline
	}
	overallTimer := time.NewTimer(overall)
	defer overallTimer.Stop()

	for i, frag := range frags {
		if i > 0 {
			delay := fragDelay(d)
			select {
			case <-time.After(delay):
			case <-overallTimer.C:
				return Result{Status: model.StatusFiltered}, nil
			case <-ctx.Done():
				return Result{Status: model.StatusUnknown}, ctx.Err()
			}
		}
		if err := d.TCPSock.Send(endpoint.IP, frag); err != nil {
			return Result{Status: model.StatusUnknown}, err
		}
	}

	select {
	case reply := <-replyCh:
		return Result{Status: classifyTCPReply(reply, synRules)}, nil
	case <-overallTimer.C:
		return Result{Status: model.StatusFiltered}, nil
	case <-ctx.Done():
		return Result{Status: model.StatusUnknown}, ctx.Err()
	}
}

func fragDelay(d *Deps) time.Duration {
	lo, hi := d.FragMinDelay, d.FragMaxDelay
	if hi <= lo {
		return lo
	}
	span := hi - lo
	return lo + time.Duration(d.RNG.Int63n(int64(span)))
}
