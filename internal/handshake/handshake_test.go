package handshake_test

import (
	"crypto/rand"
	"crypto/rsa"
	"net"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/ByteMaster2003/null-talk/internal/handshake"
	"github.com/ByteMaster2003/null-talk/internal/identity"
	"github.com/ByteMaster2003/null-talk/internal/wire"
)

func genIdentity(t *testing.T) *identity.Identity {
	t.Helper()
	key, err := rsa.GenerateKey(rand.Reader, 2048)
	require.NoError(t, err)
	return &identity.Identity{
		UserID:     identity.UserID(&key.PublicKey),
		PublicKey:  &key.PublicKey,
		PrivateKey: key,
	}
}

func TestHandshakeHappyPath(t *testing.T) {
	clientConn, serverConn := net.Pipe()
	defer clientConn.Close()
	defer serverConn.Close()

	id := genIdentity(t)

	type clientOutcome struct {
		res *handshake.ClientResult
		err error
	}
	done := make(chan clientOutcome, 1)
	go func() {
		res, err := handshake.RunClient(clientConn, id, "alice")
		done <- clientOutcome{res, err}
	}()

	serverResult, err := handshake.RunServer(serverConn)
	require.NoError(t, err)
	require.Equal(t, id.UserID, serverResult.UserID)
	require.Equal(t, "alice", serverResult.Username)

	select {
	case out := <-done:
		require.NoError(t, out.err)
		require.Equal(t, serverResult.SessionKey, out.res.SessionKey)
	case <-time.After(2 * time.Second):
		t.Fatal("client handshake did not complete")
	}
}

func TestHandshakeRejectsBadSignature(t *testing.T) {
	clientConn, serverConn := net.Pipe()
	defer clientConn.Close()
	defer serverConn.Close()

	claimed := genIdentity(t)  // key whose public half we announce
	signer := genIdentity(t)   // key we actually sign with — mismatch

	// Hand-roll the client side so step 2 signs with the wrong key.
	go func() {
		// Announce claimed's public key, but use signer's private key to
		// answer the challenge: a forged identity claim.
		forged := &identity.Identity{
			UserID:     claimed.UserID,
			PublicKey:  claimed.PublicKey,
			PrivateKey: signer.PrivateKey,
		}
		_, _ = handshake.RunClient(clientConn, forged, "mallory")
		// Hang up like a real peer would, so the server's unframed
		// rejection write on the synchronous pipe does not block forever.
		clientConn.Close()
	}()

	_, err := handshake.RunServer(serverConn)
	require.Error(t, err)
}

func TestHandshakeRejectsMissingUsername(t *testing.T) {
	clientConn, serverConn := net.Pipe()
	defer clientConn.Close()
	defer serverConn.Close()

	go func() {
		// Step 0 with no username/public_key set: server must reject
		// before advancing past step 0.
		_ = wire.WriteFrame(clientConn, wire.HandshakePacket{Step: handshake.StepHello})
		clientConn.Close()
	}()

	_, err := handshake.RunServer(serverConn)
	require.Error(t, err)
}
