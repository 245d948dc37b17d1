package netraw

import (
	"encoding/binary"
	"fmt"
	"math/rand"
	"net"

	"golang.org/x/net/ipv4"
)

// JitterTTL applies a uniform jitter in [-j, +j] around base, clamped
// to the valid TTL range [1, 255]. rng is the orchestrator's single
// injected random source (spec.md §9: "every randomized decision ...
// draws from a single injected RNG").
func JitterTTL(rng *rand.Rand, base, jitter int) int {
	if jitter <= 0 {
		return clampTTL(base)
	}
	delta := rng.Intn(2*jitter+1) - jitter
	return clampTTL(base + delta)
}

func clampTTL(ttl int) int {
	if ttl < 1 {
		return 1
	}
	if ttl > 255 {
		return 255
	}
	return ttl
}

// WrapIPv4 wraps a transport-layer payload (TCP/UDP/ICMP) in an IPv4
// header with the given protocol number and TTL, and returns the full
// on-wire packet. The library marshals the header; the IP header
// checksum is computed here. src/dst must be IPv4 (To4() non-nil).
func WrapIPv4(rng *rand.Rand, src, dst net.IP, protocol int, ttl int, payload []byte) ([]byte, error) {
	src4, dst4 := src.To4(), dst.To4()
	if src4 == nil || dst4 == nil {
		return nil, fmt.Errorf("netraw: WrapIPv4 requires IPv4 addresses")
	}
	h := &ipv4.Header{
		Version:  ipv4.Version,
		Len:      ipv4.HeaderLen,
		TotalLen: ipv4.HeaderLen + len(payload),
		ID:       rng.Intn(1 << 16),
		TTL:      ttl,
		Protocol: protocol,
		Src:      src4,
		Dst:      dst4,
	}
	raw, err := h.Marshal()
	if err != nil {
		return nil, err
	}
	binary.BigEndian.PutUint16(raw[10:12], Checksum(raw))
	return append(raw, payload...), nil
}
