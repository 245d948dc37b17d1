package model

// Technique tags one of the scan strategies. Immutable, comparable.
type Technique string

const (
	TechSYN         Technique = "syn"
	TechACK         Technique = "ack"
	TechFIN         Technique = "fin"
	TechNULL        Technique = "null"
	TechXMAS        Technique = "xmas"
	TechWINDOW      Technique = "window"
	TechUDP         Technique = "udp"
	TechSSL         Technique = "ssl"
	TechTLSEcho     Technique = "tls-echo"
	TechMimic       Technique = "mimic"
	TechFrag        Technique = "frag"
	TechDNSTunnel   Technique = "dns-tunnel"
	TechICMPTunnel  Technique = "icmp-tunnel"
)

// AllTechniques lists every technique in the canonical dispatch order.
var AllTechniques = []Technique{
	TechSYN, TechACK, TechFIN, TechNULL, TechXMAS, TechWINDOW, TechUDP,
	TechSSL, TechTLSEcho, TechMimic, TechFrag, TechDNSTunnel, TechICMPTunnel,
}

// RequiresRawSockets reports whether a technique needs a raw-socket
// capability. SSL always uses a plain stream socket; every other
// technique reports true, UDP included, since the UDP probe sends
// crafted datagrams over a raw socket.
func (t Technique) RequiresRawSockets() bool {
	switch t {
	case TechSSL:
		return false
	default:
		return true
	}
}

// IsTunnel reports whether a technique is one of the evasive,
// responder-dependent tunnel probes called out in spec.md §9.
func (t Technique) IsTunnel() bool {
	return t == TechDNSTunnel || t == TechICMPTunnel
}

// ParseTechnique validates a CLI-supplied technique name.
func ParseTechnique(s string) (Technique, bool) {
	for _, t := range AllTechniques {
		if string(t) == s {
			return t, true
		}
	}
	return "", false
}
