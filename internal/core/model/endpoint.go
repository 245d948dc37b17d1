// Package model holds the core data types shared by the probe engine,
// the service identifier and the scan orchestrator: endpoints,
// techniques, port status, and the scan result tree they all feed.
package model

import (
	"fmt"
	"net"
)

// Endpoint is a resolved address paired with the string the user typed.
// Immutable once resolution succeeds.
type Endpoint struct {
	Target string // original user-supplied string (host, IP, or CIDR member)
	IP     net.IP
}

func (e Endpoint) String() string {
	if e.Target == e.IP.String() {
		return e.Target
	}
	return fmt.Sprintf("%s (%s)", e.Target, e.IP.String())
}

// IsIPv6 reports whether the resolved address is an IPv6 literal.
func (e Endpoint) IsIPv6() bool {
	return e.IP.To4() == nil
}

// ResolveEndpoint resolves target (IP literal or hostname) to an Endpoint.
// CIDR expansion happens above this layer (the orchestrator's caller),
// since a single Endpoint is always one address.
func ResolveEndpoint(target string) (Endpoint, error) {
	if ip := net.ParseIP(target); ip != nil {
		return Endpoint{Target: target, IP: ip}, nil
	}
	ips, err := net.LookupIP(target)
	if err != nil {
		return Endpoint{}, fmt.Errorf("resolve %q: %w", target, err)
	}
	for _, ip := range ips {
		if v4 := ip.To4(); v4 != nil {
			return Endpoint{Target: target, IP: v4}, nil
		}
	}
	return Endpoint{Target: target, IP: ips[0]}, nil
}
