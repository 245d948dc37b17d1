package probe

import (
	"context"
	"crypto/tls"
	"fmt"
	"net"
	"time"

	"netrecon/internal/core/model"
)

// sslStrategy implements SSL: a plain stream connect followed by a TLS
// handshake, capturing the leaf certificate on success. Needs no
// crafted packet at all, so it runs over an ordinary dialer rather
// than a raw socket (spec.md §4.3: "SSL ... does not require raw
// sockets").
type sslStrategy struct{ deps *Deps }

func (s *sslStrategy) RequiresRawSockets() bool { return false }

func (s *sslStrategy) Probe(ctx context.Context, endpoint model.Endpoint, port int, deadline time.Duration) (Result, error) {
	ctx, cancel := context.WithTimeout(ctx, deadline)
	defer cancel()

	addr := net.JoinHostPort(endpoint.IP.String(), fmt.Sprintf("%d", port))
	serverName := s.deps.TLSServerName
	if serverName == "" {
		serverName = endpoint.Target
	}

	dialer := &tls.Dialer{
		NetDialer: &net.Dialer{},
		Config: &tls.Config{
			ServerName:         serverName,
			InsecureSkipVerify: true,
		},
	}
	conn, err := dialer.DialContext(ctx, "tcp", addr)
	if err != nil {
		if ctx.Err() != nil {
			return Result{Status: model.StatusFiltered}, nil
		}
		return Result{Status: model.StatusClosed}, nil
	}
	defer conn.Close()

	state := conn.(*tls.Conn).ConnectionState()
	if len(state.PeerCertificates) > 0 {
		return Result{
			Status:   model.StatusOpen,
			Evidence: Evidence{Cert: state.PeerCertificates[0]},
		}, nil
	}
	return Result{Status: model.StatusOpen}, nil
}
