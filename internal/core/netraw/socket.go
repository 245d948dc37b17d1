package netraw

import (
	"net"
	"time"
)

// RawSocket is the OS-specific raw-socket capability each platform
// file in this package implements. It backs the adapters.RawSocketHandle
// contract (spec.md §4.7): a single-writer send path plus a blocking
// receive the Response Listener polls from its own goroutine.
type RawSocket interface {
	Send(dst net.IP, packet []byte) error
	Receive(buf []byte, timeout time.Duration) (n int, src net.IP, err error)
	BindToInterface(name string) error
	Close() error
}
