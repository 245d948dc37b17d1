package netraw

import (
	"bytes"
	"encoding/binary"
	"net"
)

// BuildUDP serializes a UDP datagram with a correct checksum.
// Adapted from the teacher's BuildUDPHeader.
func BuildUDP(srcIP, dstIP net.IP, srcPort, dstPort int, payload []byte) []byte {
	length := 8 + len(payload)
	h := make([]byte, length)
	binary.BigEndian.PutUint16(h[0:], uint16(srcPort))
	binary.BigEndian.PutUint16(h[2:], uint16(dstPort))
	binary.BigEndian.PutUint16(h[4:], uint16(length))
	copy(h[8:], payload)

	if srcIP != nil && dstIP != nil {
		ph := make([]byte, 12)
		copy(ph[0:4], srcIP.To4())
		copy(ph[4:8], dstIP.To4())
		ph[9] = 17 // UDP
		binary.BigEndian.PutUint16(ph[10:], uint16(length))

		var buf bytes.Buffer
		buf.Write(ph)
		buf.Write(h)
		checksum := Checksum(buf.Bytes())
		if checksum == 0 {
			checksum = 0xFFFF
		}
		binary.BigEndian.PutUint16(h[6:], checksum)
	}
	return h
}

// BuildICMPEcho serializes an ICMP echo request (type 8, code 0) with
// the given identifier, sequence number and data payload.
func BuildICMPEcho(id, seq int, payload []byte) []byte {
	h := make([]byte, 8+len(payload))
	h[0] = 8 // Echo Request
	h[1] = 0
	binary.BigEndian.PutUint16(h[4:], uint16(id))
	binary.BigEndian.PutUint16(h[6:], uint16(seq))
	copy(h[8:], payload)

	checksum := Checksum(h)
	binary.BigEndian.PutUint16(h[2:], checksum)
	return h
}

// ICMPUnreachableCode extracts (type, code) from a captured ICMP
// message, used by probes to recognize destination-unreachable
// variants (spec.md §4.3: codes 1,2,3,9,10,13 => Filtered; UDP code 3
// specifically => Closed).
func ICMPUnreachableCode(raw []byte) (typ, code int, ok bool) {
	if len(raw) < 2 {
		return 0, 0, false
	}
	return int(raw[0]), int(raw[1]), true
}

// IsHostOrNetUnreachable reports whether (type, code) is one of the
// ICMP destination-unreachable variants that spec.md §4.3 maps to
// Filtered for TCP probes: types 3 (dest unreachable) with codes
// 1 (host unreachable), 2 (protocol unreachable), 3 (port
// unreachable), 9 (net admin prohibited), 10 (host admin prohibited),
// 13 (communication admin prohibited).
func IsHostOrNetUnreachable(typ, code int) bool {
	if typ != 3 {
		return false
	}
	switch code {
	case 1, 2, 3, 9, 10, 13:
		return true
	default:
		return false
	}
}

// IsPortUnreachable reports the specific ICMP type 3 code 3 that
// spec.md §4.3 maps UDP probes to Closed.
func IsPortUnreachable(typ, code int) bool {
	return typ == 3 && code == 3
}
