//go:build linux

package netraw

import (
	"errors"
	"fmt"
	"net"
	"syscall"
	"time"
)

// rawSocket wraps a Linux AF_INET/SOCK_RAW socket with IP_HDRINCL set,
// so the caller supplies the full IP header itself (required to set
// arbitrary TTLs and to emit already-fragmented datagrams).
type rawSocket struct {
	fd       int
	protocol int
}

// NewRawSocket opens a raw socket for the given IP protocol number
// (e.g. syscall.IPPROTO_TCP, syscall.IPPROTO_ICMP, syscall.IPPROTO_RAW
// for pre-built IP packets handed in whole).
func NewRawSocket(protocol int) (RawSocket, error) {
	fd, err := syscall.Socket(syscall.AF_INET, syscall.SOCK_RAW, protocol)
	if err != nil {
		return nil, fmt.Errorf("netraw: open raw socket: %w", err)
	}
	if err := syscall.SetsockoptInt(fd, syscall.IPPROTO_IP, syscall.IP_HDRINCL, 1); err != nil {
		syscall.Close(fd)
		return nil, fmt.Errorf("netraw: set IP_HDRINCL: %w", err)
	}
	return &rawSocket{fd: fd, protocol: protocol}, nil
}

func (s *rawSocket) Send(dst net.IP, packet []byte) error {
	dst4 := dst.To4()
	if dst4 == nil {
		return fmt.Errorf("netraw: destination must be IPv4")
	}
	addr := syscall.SockaddrInet4{Addr: [4]byte{dst4[0], dst4[1], dst4[2], dst4[3]}}
	if err := syscall.Sendto(s.fd, packet, 0, &addr); err != nil {
		return fmt.Errorf("netraw: sendto: %w", err)
	}
	return nil
}

func (s *rawSocket) Receive(buf []byte, timeout time.Duration) (int, net.IP, error) {
	tv := syscall.NsecToTimeval(timeout.Nanoseconds())
	if err := syscall.SetsockoptTimeval(s.fd, syscall.SOL_SOCKET, syscall.SO_RCVTIMEO, &tv); err != nil {
		return 0, nil, fmt.Errorf("netraw: set recv timeout: %w", err)
	}
	n, from, err := syscall.Recvfrom(s.fd, buf, 0)
	if err != nil {
		return 0, nil, err
	}
	var src net.IP
	if addr, ok := from.(*syscall.SockaddrInet4); ok {
		src = net.IP(addr.Addr[:]).To4()
	}
	return n, src, nil
}

func (s *rawSocket) BindToInterface(name string) error {
	return syscall.SetsockoptString(s.fd, syscall.SOL_SOCKET, syscall.SO_BINDTODEVICE, name)
}

func (s *rawSocket) Close() error {
	return syscall.Close(s.fd)
}

// IsTimeout reports whether err is the EAGAIN/EWOULDBLOCK a capture
// loop sees when its SO_RCVTIMEO deadline elapses with nothing
// pending — an ordinary poll miss, not a lost capture handle.
func IsTimeout(err error) bool {
	return errors.Is(err, syscall.EAGAIN) || errors.Is(err, syscall.EWOULDBLOCK)
}
