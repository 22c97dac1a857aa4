package client

import (
	"context"
	"crypto/tls"
	"fmt"
	"net"
	"time"
)

// tlsHandshakeTimeout bounds the optional TLS handshake (§5).
const tlsHandshakeTimeout = 10 * time.Second

// Connector dials the server. When TLSConfig is set, a failed TLS
// handshake is a fatal connection error — unlike the source's
// compatibility shim, there is no fallback to plain TCP; §9 flags that
// fallback as weakening confidentiality against downgrade attacks, and
// this implementation removes it rather than carry it forward.
type Connector struct {
	TLSConfig *tls.Config // nil: plain TCP
}

// Dial connects to addr, running the TLS handshake (if configured) under a
// bounded deadline derived from ctx.
func (c *Connector) Dial(ctx context.Context, addr string) (net.Conn, error) {
	dialer := &net.Dialer{}
	conn, err := dialer.DialContext(ctx, "tcp", addr)
	if err != nil {
		return nil, fmt.Errorf("client: dial %s: %w", addr, err)
	}
	if c.TLSConfig == nil {
		return conn, nil
	}

	tlsConn := tls.Client(conn, c.TLSConfig)
	hsCtx, cancel := context.WithTimeout(ctx, tlsHandshakeTimeout)
	defer cancel()
	if err := tlsConn.HandshakeContext(hsCtx); err != nil {
		conn.Close()
		return nil, fmt.Errorf("client: tls handshake: %w", err)
	}
	return tlsConn, nil
}
