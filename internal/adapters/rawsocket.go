package adapters

import (
	"fmt"
	"syscall"

	"netrecon/internal/core/netraw"
	"netrecon/internal/core/scanerr"
)

// RawSocketHandle owns the three raw sockets (TCP/UDP/ICMP) one scan
// needs, opened together and closed together. Acquiring a raw socket
// is the one place an unprivileged process finds out it lacks
// CAP_NET_RAW/administrator rights, so the failure is wrapped as
// scanerr.KindPrivilege rather than a bare syscall error.
type RawSocketHandle struct {
	TCP  netraw.RawSocket
	UDP  netraw.RawSocket
	ICMP netraw.RawSocket
}

// AcquireRawSockets opens the TCP, UDP and ICMP raw sockets a
// raw-socket-capable scan needs. Closes whatever it already opened
// before returning an error, so a partial acquisition never leaks fds.
func AcquireRawSockets() (*RawSocketHandle, error) {
	h := &RawSocketHandle{}

	tcp, err := netraw.NewRawSocket(syscall.IPPROTO_TCP)
	if err != nil {
		return nil, scanerr.New(scanerr.KindPrivilege, "open TCP raw socket", err)
	}
	h.TCP = tcp

	udp, err := netraw.NewRawSocket(syscall.IPPROTO_UDP)
	if err != nil {
		h.Release()
		return nil, scanerr.New(scanerr.KindPrivilege, "open UDP raw socket", err)
	}
	h.UDP = udp

	icmp, err := netraw.NewRawSocket(syscall.IPPROTO_ICMP)
	if err != nil {
		h.Release()
		return nil, scanerr.New(scanerr.KindPrivilege, "open ICMP raw socket", err)
	}
	h.ICMP = icmp

	return h, nil
}

// Release closes every socket that was successfully opened and
// returns the first close error, if any.
func (h *RawSocketHandle) Release() error {
	var firstErr error
	for _, sock := range []netraw.RawSocket{h.TCP, h.UDP, h.ICMP} {
		if sock == nil {
			continue
		}
		if err := sock.Close(); err != nil && firstErr == nil {
			firstErr = fmt.Errorf("netraw: close raw socket: %w", err)
		}
	}
	return firstErr
}
