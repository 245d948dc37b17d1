package netraw

import (
	"bytes"
	"encoding/binary"
	"fmt"
	"net"
)

// TCP flag bits, per the standard layout NS..FIN.
const (
	FlagFIN = 0x01
	FlagSYN = 0x02
	FlagRST = 0x04
	FlagPSH = 0x08
	FlagACK = 0x10
	FlagURG = 0x20
	FlagECE = 0x40
	FlagCWR = 0x80
	FlagNS  = 0x100
)

// TCP option kinds (spec.md §4.1).
const (
	OptEOL        = 0
	OptNOP        = 1
	OptMSS        = 2
	OptWScale     = 3
	OptSACKPermit = 4
	OptSACK       = 5
	OptTimestamp  = 8
)

// TCPOption is one entry of a technique-parameterized option list.
// Order and values are supplied by the caller; Build preserves order.
type TCPOption struct {
	Kind uint8
	Data []byte // omitted entirely for NOP/EOL
}

// MSSOption builds a 4-byte MSS option.
func MSSOption(mss uint16) TCPOption {
	b := make([]byte, 2)
	binary.BigEndian.PutUint16(b, mss)
	return TCPOption{Kind: OptMSS, Data: b}
}

// WindowScaleOption builds a window-scale option.
func WindowScaleOption(shift uint8) TCPOption {
	return TCPOption{Kind: OptWScale, Data: []byte{shift}}
}

// SACKPermittedOption builds the zero-length SACK-permitted option.
func SACKPermittedOption() TCPOption {
	return TCPOption{Kind: OptSACKPermit, Data: nil}
}

// TimestampOption builds a TSval/TSecr option.
func TimestampOption(tsval, tsecr uint32) TCPOption {
	b := make([]byte, 8)
	binary.BigEndian.PutUint32(b[0:], tsval)
	binary.BigEndian.PutUint32(b[4:], tsecr)
	return TCPOption{Kind: OptTimestamp, Data: b}
}

// TCPParams describes a single TCP segment to build.
type TCPParams struct {
	SrcIP, DstIP     net.IP
	SrcPort, DstPort int
	Seq, Ack         uint32
	Flags            int
	Window           uint16
	UrgentPtr        uint16
	Options          []TCPOption
	Payload          []byte
}

// BuildTCP serializes params into a TCP segment (header + options +
// payload) with a correct checksum over the IPv4 pseudo-header.
// Adapted from the teacher's BuildTCPHeaderWithChecksum, generalized
// to take a single params struct and an explicit payload.
func BuildTCP(p TCPParams) ([]byte, error) {
	var optBuf bytes.Buffer
	for _, opt := range p.Options {
		optBuf.WriteByte(opt.Kind)
		if opt.Kind == OptNOP || opt.Kind == OptEOL {
			continue
		}
		optBuf.WriteByte(byte(2 + len(opt.Data)))
		optBuf.Write(opt.Data)
	}
	padLen := (4 - (optBuf.Len() % 4)) % 4
	for i := 0; i < padLen; i++ {
		optBuf.WriteByte(OptNOP)
	}
	optData := optBuf.Bytes()

	headerLen := 20 + len(optData)
	if headerLen > 60 {
		return nil, fmt.Errorf("netraw: tcp header too large: %d bytes", headerLen)
	}
	dataOffset := headerLen / 4

	h := make([]byte, headerLen+len(p.Payload))
	binary.BigEndian.PutUint16(h[0:], uint16(p.SrcPort))
	binary.BigEndian.PutUint16(h[2:], uint16(p.DstPort))
	binary.BigEndian.PutUint32(h[4:], p.Seq)
	binary.BigEndian.PutUint32(h[8:], p.Ack)
	h[12] = byte((dataOffset << 4) | ((p.Flags >> 8) & 0x01))
	h[13] = byte(p.Flags & 0xFF)
	binary.BigEndian.PutUint16(h[14:], p.Window)
	// h[16:18] checksum, filled below
	binary.BigEndian.PutUint16(h[18:], p.UrgentPtr)
	copy(h[20:], optData)
	copy(h[headerLen:], p.Payload)

	if p.SrcIP != nil && p.DstIP != nil {
		ph := make([]byte, 12)
		copy(ph[0:4], p.SrcIP.To4())
		copy(ph[4:8], p.DstIP.To4())
		ph[9] = 6 // TCP
		binary.BigEndian.PutUint16(ph[10:], uint16(len(h)))

		var buf bytes.Buffer
		buf.Write(ph)
		buf.Write(h)
		checksum := Checksum(buf.Bytes())
		binary.BigEndian.PutUint16(h[16:], checksum)
	}

	return h, nil
}
