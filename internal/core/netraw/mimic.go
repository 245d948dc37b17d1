package netraw

import "fmt"

// MimicProtocol names a protocol family mimic_payload can impersonate.
type MimicProtocol string

const (
	MimicHTTP10 MimicProtocol = "http/1.0"
	MimicHTTP11 MimicProtocol = "http/1.1"
	MimicHTTP2  MimicProtocol = "http/2.0"
	MimicSSH    MimicProtocol = "ssh"
	MimicFTP    MimicProtocol = "ftp"
	MimicSMTP   MimicProtocol = "smtp"
	MimicIMAP   MimicProtocol = "imap"
	MimicPOP3   MimicProtocol = "pop3"
	MimicMySQL  MimicProtocol = "mysql"
	MimicRDP    MimicProtocol = "rdp"
)

// MimicPayload returns a fixed banner-like preamble typical of the
// named protocol/variant pair (spec.md §4.1). These are not full
// protocol implementations, just the bytes a MIMIC probe sends right
// after its SYN to make the flow look like ordinary client traffic to
// a signature-based IDS.
func MimicPayload(protocol MimicProtocol, variant string) ([]byte, error) {
	switch protocol {
	case MimicHTTP10:
		return []byte(fmt.Sprintf("GET / HTTP/1.0\r\nHost: %s\r\nUser-Agent: Mozilla/5.0\r\n\r\n", orDefault(variant, "localhost"))), nil
	case MimicHTTP11:
		return []byte(fmt.Sprintf("GET / HTTP/1.1\r\nHost: %s\r\nUser-Agent: Mozilla/5.0\r\nConnection: close\r\n\r\n", orDefault(variant, "localhost"))), nil
	case MimicHTTP2:
		// Connection preface from RFC 7540 §3.5; a real h2 endpoint
		// replies to exactly this byte string before any SETTINGS frame.
		return []byte("PRI * HTTP/2.0\r\n\r\nSM\r\n\r\n"), nil
	case MimicSSH:
		return []byte(fmt.Sprintf("SSH-2.0-OpenSSH_%s\r\n", orDefault(variant, "9.6"))), nil
	case MimicFTP:
		return []byte("USER anonymous\r\n"), nil
	case MimicSMTP:
		return []byte(fmt.Sprintf("EHLO %s\r\n", orDefault(variant, "mail.example.com"))), nil
	case MimicIMAP:
		return []byte("a1 CAPABILITY\r\n"), nil
	case MimicPOP3:
		return []byte("CAPA\r\n"), nil
	case MimicMySQL:
		// A minimal, incomplete handshake-response packet; real
		// clients only send this after receiving the server's initial
		// handshake, but a generic mimic need not be fully valid.
		return []byte{0x01, 0x00, 0x00, 0x01, 0x85, 0xa2, 0x3f, 0x00}, nil
	case MimicRDP:
		// RDP Negotiation Request (X.224 connection request) preamble.
		return []byte{0x03, 0x00, 0x00, 0x13, 0x0e, 0xe0, 0x00, 0x00, 0x00, 0x00, 0x00, 0x01, 0x00, 0x08, 0x00, 0x01, 0x00, 0x00, 0x00}, nil
	default:
		return nil, fmt.Errorf("netraw: unknown mimic protocol %q", protocol)
	}
}

func orDefault(v, def string) string {
	if v == "" {
		return def
	}
	return v
}
