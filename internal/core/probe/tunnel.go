package probe

import (
	"bytes"
	"context"
	"encoding/base32"
	"fmt"
	"time"

	"github.com/lunixbochs/struc"
	"github.com/miekg/dns"

	"netrecon/internal/core/listener"
	"netrecon/internal/core/model"
	"netrecon/internal/core/netraw"
)

// tunnelEnvelope is the 6-byte (port, nonce) payload both tunnel
// techniques smuggle to an out-of-band responder. struc tags pin the
// wire layout to big-endian regardless of host byte order.
type tunnelEnvelope struct {
	Port  uint16 `struc:"uint16,big"`
	Nonce uint32 `struc:"uint32,big"`
}

func packEnvelope(port int, nonce uint32) ([]byte, error) {
	var buf bytes.Buffer
	env := tunnelEnvelope{Port: uint16(port), Nonce: nonce}
	if err := struc.Pack(&buf, &env); err != nil {
		return nil, fmt.Errorf("probe: pack tunnel envelope: %w", err)
	}
	return buf.Bytes(), nil
}

var tunnelEncoding = base32.StdEncoding.WithPadding(base32.NoPadding)

// dnsTunnelStrategy implements DNS-TUNNEL: the (port, nonce) envelope
// becomes the leftmost label of a query name under lookup_domain.
// Purely evasive and best-effort, per spec.md §4.3/§9 — accuracy
// depends entirely on an out-of-band responder recognizing the
// envelope and answering only for reachable ports.
type dnsTunnelStrategy struct{ deps *Deps }

func (s *dnsTunnelStrategy) RequiresRawSockets() bool { return true }

func (s *dnsTunnelStrategy) Probe(ctx context.Context, endpoint model.Endpoint, port int, deadline time.Duration) (Result, error) {
	d := s.deps
	envelope, err := packEnvelope(port, d.TunnelNonce)
	if err != nil {
		return Result{Status: model.StatusUnknown}, err
	}
	label := tunnelEncoding.EncodeToString(envelope)
	qname := dns.Fqdn(fmt.Sprintf("%s.%s", label, d.LookupDomain))

	msg := new(dns.Msg)
	msg.SetQuestion(qname, dns.TypeA)
	msg.RecursionDesired = false

	client := &dns.Client{Timeout: deadline}
	server := d.DNSServer
	if server == "" {
		return Result{Status: model.StatusUnknown}, fmt.Errorf("probe: dns-tunnel requires a configured dns_server")
	}
	if _, _, ok := splitHostPort(server); !ok {
		server = server + ":53"
	}

	resp, _, err := client.ExchangeContext(ctx, msg, server)
	if err != nil {
		return Result{Status: model.StatusUnknown}, nil
	}
	if resp.Rcode == dns.RcodeNameError || len(resp.Answer) == 0 {
		return Result{Status: model.StatusUnknown}, nil
	}
	return Result{Status: model.StatusOpen}, nil
}

func splitHostPort(s string) (host, port string, ok bool) {
	for i := len(s) - 1; i >= 0; i-- {
		if s[i] == ':' {
			return s[:i], s[i+1:], true
		}
	}
	return s, "", false
}

// icmpTunnelStrategy implements ICMP-TUNNEL: the same envelope rides
// in an ICMP echo request's data field; a matching echo reply must
// carry the identical envelope bytes back.
type icmpTunnelStrategy struct{ deps *Deps }

func (s *icmpTunnelStrategy) RequiresRawSockets() bool { return true }

func (s *icmpTunnelStrategy) Probe(ctx context.Context, endpoint model.Endpoint, port int, deadline time.Duration) (Result, error) {
	d := s.deps
	envelope, err := packEnvelope(port, d.TunnelNonce)
	if err != nil {
		return Result{Status: model.StatusUnknown}, err
	}

	id := ephemeralPort(d) & 0xFFFF
	key := listener.Key{Peer: endpoint.IP.String(), LocalPort: id}
	replyCh, cancel := d.Listener.Register(key)
	defer cancel()

	ttl := netraw.JitterTTL(d.RNG, d.BaseTTL, d.TTLJitter)
	echo := netraw.BuildICMPEcho(id, 1, envelope)
	packet, err := netraw.WrapIPv4(d.RNG, d.LocalIP, endpoint.IP, 1, ttl, echo)
	if err != nil {
		return Result{Status: model.StatusUnknown}, err
	}
	if err := d.ICMPSock.Send(endpoint.IP, packet); err != nil {
		return Result{Status: model.StatusUnknown}, err
	}

	timer := time.NewTimer(deadline)
	defer timer.Stop()
	select {
	case reply := <-replyCh:
		if reply != nil && bytes.Equal(reply.Raw, envelope) {
			return Result{Status: model.StatusOpen}, nil
		}
		return Result{Status: model.StatusUnknown}, nil
	case <-timer.C:
		return Result{Status: model.StatusUnknown}, nil
	case <-ctx.Done():
		return Result{Status: model.StatusUnknown}, ctx.Err()
	}
}
