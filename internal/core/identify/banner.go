package identify

import (
	"context"
	"fmt"
	"net"
	"time"
)

// wellKnownProbes maps a port to the bytes sent right after connect to
// coax a banner out of a server that speaks only on request (spec.md
// §4.4: "for well-known ports send a probe").
var wellKnownProbes = map[int][]byte{
	80:   []byte("GET / HTTP/1.0\r\n\r\n"),
	8080: []byte("GET / HTTP/1.0\r\n\r\n"),
	443:  []byte("GET / HTTP/1.0\r\n\r\n"),
	25:   []byte("EHLO netrecon\r\n"),
	587:  []byte("EHLO netrecon\r\n"),
	143:  []byte("a1 CAPABILITY\r\n"),
	110:  []byte("CAPA\r\n"),
	6379: []byte("PING\r\n"),
}

const maxBannerBytes = 4096

// GrabBanner connects to (ip, port), optionally sends a well-known
// probe, and reads whatever comes back before timeout elapses. A
// connect failure is not an error worth surfacing — it just means no
// banner, which the caller treats as an empty-banner case.
func GrabBanner(ctx context.Context, ip net.IP, port int, timeoutConnect, timeoutBanner time.Duration) []byte {
	dialer := &net.Dialer{Timeout: timeoutConnect}
	addr := net.JoinHostPort(ip.String(), fmt.Sprintf("%d", port))

	conn, err := dialer.DialContext(ctx, "tcp", addr)
	if err != nil {
		return nil
	}
	defer conn.Close()

	if probe, ok := wellKnownProbes[port]; ok {
		conn.SetWriteDeadline(time.Now().Add(timeoutConnect))
		conn.Write(probe)
	}

	conn.SetReadDeadline(time.Now().Add(timeoutBanner))
	buf := make([]byte, maxBannerBytes)
	n, _ := conn.Read(buf)
	if n <= 0 {
		return nil
	}
	return buf[:n]
}
