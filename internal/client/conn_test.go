package client

import (
	"context"
	"crypto/tls"
	"net"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestConnectorPlainDial(t *testing.T) {
	ln, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)
	defer ln.Close()
	go func() {
		conn, err := ln.Accept()
		if err == nil {
			conn.Close()
		}
	}()

	c := &Connector{}
	conn, err := c.Dial(context.Background(), ln.Addr().String())
	require.NoError(t, err)
	conn.Close()
}

// TestConnectorTLSDoesNotFallBackToPlain confirms the adopted redesign: a
// TLS-configured Connector talking to a plain-TCP listener fails outright
// instead of retrying without TLS.
func TestConnectorTLSDoesNotFallBackToPlain(t *testing.T) {
	ln, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)
	defer ln.Close()
	go func() {
		conn, err := ln.Accept()
		if err == nil {
			defer conn.Close()
			buf := make([]byte, 1024)
			conn.Read(buf) // drain the TLS client hello, then hang up
		}
	}()

	c := &Connector{TLSConfig: &tls.Config{InsecureSkipVerify: true}}
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	_, err = c.Dial(ctx, ln.Addr().String())
	require.Error(t, err)
}
