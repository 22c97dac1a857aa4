// Package handshake implements the four-step challenge-response handshake
// of §4.1: it binds a transport connection to an RSA identity and hands the
// client a fresh per-connection session key generated by the server. Modeled on (*ClientConn).
// handshake in massiveart-go.crypto/ssh/client.go — a strict ordered
// sequence of writePacket/readPacket calls, one per protocol step, with any
// violation fatal to the connection.
package handshake

import (
	"crypto/rand"
	"crypto/rsa"
	"fmt"
	"io"

	"github.com/ByteMaster2003/null-talk/internal/identity"
	"github.com/ByteMaster2003/null-talk/internal/wire"
)

const (
	StepHello     uint8 = 0
	StepChallenge uint8 = 1
	StepResponse  uint8 = 2
	StepAccept    uint8 = 3

	NonceSize      = 12
	SessionKeySize = 32
)

// writeHalfCloser is implemented by net.TCPConn and tls.Conn.
type writeHalfCloser interface {
	CloseWrite() error
}

// CloseWithReason writes a short, unframed error reason directly on the
// connection, then shuts down the write half if the transport supports it —
// mirroring the original's close_connection helper (write reason bytes,
// flush, shutdown write half, drop connection).
func CloseWithReason(conn io.Writer, reason string) {
	_, _ = conn.Write([]byte(reason))
	if whc, ok := conn.(writeHalfCloser); ok {
		_ = whc.CloseWrite()
	}
}

// ClientResult is what a successful client-side handshake yields.
type ClientResult struct {
	SessionKey []byte
}

// RunClient drives steps 0–3 from the client's side of conn.
func RunClient(conn io.ReadWriter, id *identity.Identity, username string) (*ClientResult, error) {
	pubEncoded, err := identity.MarshalPublicKey(id.PublicKey)
	if err != nil {
		return nil, fmt.Errorf("handshake: marshal public key: %w", err)
	}

	hello := wire.HandshakePacket{Step: StepHello, Username: &username, PublicKey: &pubEncoded}
	if err := wire.WriteFrame(conn, hello); err != nil {
		return nil, fmt.Errorf("handshake: write step 0: %w", err)
	}

	var challenge wire.HandshakePacket
	if err := wire.ReadFrame(conn, &challenge); err != nil {
		return nil, fmt.Errorf("handshake: read step 1: %w", err)
	}
	if challenge.Step != StepChallenge {
		return nil, fmt.Errorf("handshake: expected step %d, got %d", StepChallenge, challenge.Step)
	}
	if len(challenge.Nonce) != NonceSize {
		return nil, fmt.Errorf("handshake: nonce has unexpected length %d", len(challenge.Nonce))
	}

	sig, err := identity.Sign(id.PrivateKey, challenge.Nonce)
	if err != nil {
		return nil, fmt.Errorf("handshake: sign nonce: %w", err)
	}
	response := wire.HandshakePacket{Step: StepResponse, Signature: sig}
	if err := wire.WriteFrame(conn, response); err != nil {
		return nil, fmt.Errorf("handshake: write step 2: %w", err)
	}

	var accept wire.HandshakePacket
	if err := wire.ReadFrame(conn, &accept); err != nil {
		return nil, fmt.Errorf("handshake: read step 3: %w", err)
	}
	if accept.Step != StepAccept {
		return nil, fmt.Errorf("handshake: expected step %d, got %d", StepAccept, accept.Step)
	}
	if len(accept.SessionKey) != SessionKeySize {
		return nil, fmt.Errorf("handshake: session key has unexpected length %d", len(accept.SessionKey))
	}

	return &ClientResult{SessionKey: accept.SessionKey}, nil
}

// ServerResult is what a successful server-side handshake yields.
type ServerResult struct {
	Username   string
	UserID     string
	PublicKey  *rsa.PublicKey
	SessionKey []byte
}

// RunServer drives steps 0–3 from the server's side of conn. Any protocol
// violation writes a brief reason on conn and returns an error; the caller
// is responsible for closing the connection afterward.
func RunServer(conn io.ReadWriter) (*ServerResult, error) {
	var hello wire.HandshakePacket
	if err := wire.ReadFrame(conn, &hello); err != nil {
		return nil, fmt.Errorf("handshake: read step 0: %w", err)
	}
	if hello.Step != StepHello {
		CloseWithReason(conn, "invalid handshake step")
		return nil, fmt.Errorf("handshake: expected step %d, got %d", StepHello, hello.Step)
	}
	if hello.Username == nil {
		CloseWithReason(conn, "missing username")
		return nil, fmt.Errorf("handshake: missing username")
	}
	if hello.PublicKey == nil {
		CloseWithReason(conn, "missing public key")
		return nil, fmt.Errorf("handshake: missing public key")
	}
	pub, err := identity.ParsePublicKey(*hello.PublicKey)
	if err != nil {
		CloseWithReason(conn, "unparseable public key")
		return nil, fmt.Errorf("handshake: parse public key: %w", err)
	}

	nonce := make([]byte, NonceSize)
	if _, err := io.ReadFull(rand.Reader, nonce); err != nil {
		return nil, fmt.Errorf("handshake: generate nonce: %w", err)
	}
	sessionKey := make([]byte, SessionKeySize)
	if _, err := io.ReadFull(rand.Reader, sessionKey); err != nil {
		return nil, fmt.Errorf("handshake: generate session key: %w", err)
	}

	challenge := wire.HandshakePacket{Step: StepChallenge, Nonce: nonce}
	if err := wire.WriteFrame(conn, challenge); err != nil {
		return nil, fmt.Errorf("handshake: write step 1: %w", err)
	}

	var response wire.HandshakePacket
	if err := wire.ReadFrame(conn, &response); err != nil {
		return nil, fmt.Errorf("handshake: read step 2: %w", err)
	}
	if response.Step != StepResponse {
		CloseWithReason(conn, "invalid handshake step")
		return nil, fmt.Errorf("handshake: expected step %d, got %d", StepResponse, response.Step)
	}
	if response.Signature == nil {
		CloseWithReason(conn, "missing signature")
		return nil, fmt.Errorf("handshake: missing signature")
	}
	if err := identity.Verify(pub, nonce, response.Signature); err != nil {
		CloseWithReason(conn, "invalid signature")
		return nil, fmt.Errorf("handshake: %w", err)
	}

	accept := wire.HandshakePacket{Step: StepAccept, SessionKey: sessionKey}
	if err := wire.WriteFrame(conn, accept); err != nil {
		return nil, fmt.Errorf("handshake: write step 3: %w", err)
	}

	return &ServerResult{
		Username:   *hello.Username,
		UserID:     identity.UserID(pub),
		PublicKey:  pub,
		SessionKey: sessionKey,
	}, nil
}
