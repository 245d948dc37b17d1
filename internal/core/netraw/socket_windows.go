//go:build windows

package netraw

import (
	"fmt"
	"net"
	"time"
)

// Winsock2 blocks raw TCP sockets outright; a real implementation
// would need WinPcap/Npcap, which pulls in CGO. Raw-socket techniques
// are simply unavailable on Windows builds, the UDP probe included
// (it sends crafted datagrams over a raw socket); only the SSL probe,
// which needs no raw socket, works through the standard library on
// this platform.
type rawSocket struct{}

func NewRawSocket(protocol int) (RawSocket, error) {
	return nil, fmt.Errorf("netraw: raw sockets not supported on windows")
}

func (s *rawSocket) Send(dst net.IP, packet []byte) error { return fmt.Errorf("netraw: not supported") }

func (s *rawSocket) Receive(buf []byte, timeout time.Duration) (int, net.IP, error) {
	return 0, nil, fmt.Errorf("netraw: not supported")
}

func (s *rawSocket) BindToInterface(name string) error { return fmt.Errorf("netraw: not supported") }

func (s *rawSocket) Close() error { return nil }

// IsTimeout always reports false on windows: Receive never succeeds
// here, so a capture loop never gets far enough to see a poll miss.
func IsTimeout(err error) bool { return false }
