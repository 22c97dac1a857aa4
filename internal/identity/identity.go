// Package identity derives and verifies the stable user_id from a user's
// RSA key pair, and performs the PKCS#1v1.5 sign/verify step of the
// handshake (§4.1). Keys travel on the wire OpenSSH-encoded; this package
// parses them with golang.org/x/crypto/ssh, the upstream package
// massiveart-go.crypto forked, and recovers the underlying
// *rsa.PublicKey/*rsa.PrivateKey to do the PKCS#1 DER work §3 pins.
package identity

import (
	"crypto"
	"crypto/rand"
	"crypto/rsa"
	"crypto/sha256"
	"crypto/x509"
	"encoding/hex"
	"fmt"
	"os"

	"golang.org/x/crypto/ssh"
)

// Identity is a loaded key pair with its derived user_id. PrivateKey is nil
// on the server side, which only ever sees a peer's public key.
type Identity struct {
	UserID     string
	PublicKey  *rsa.PublicKey
	PrivateKey *rsa.PrivateKey
}

// UserID derives hex(SHA-256(PKCS#1 DER(pub))), the sole identifier used
// throughout the system (§3, §GLOSSARY).
func UserID(pub *rsa.PublicKey) string {
	der := x509.MarshalPKCS1PublicKey(pub)
	sum := sha256.Sum256(der)
	return hex.EncodeToString(sum[:])
}

// ParsePublicKey parses an OpenSSH-encoded RSA public key ("ssh-rsa ...")
// as received in handshake step 0 or loaded from a client's config file.
func ParsePublicKey(openSSHKey string) (*rsa.PublicKey, error) {
	pub, _, _, _, err := ssh.ParseAuthorizedKey([]byte(openSSHKey))
	if err != nil {
		return nil, fmt.Errorf("identity: parse public key: %w", err)
	}
	cryptoPub, ok := pub.(ssh.CryptoPublicKey)
	if !ok {
		return nil, fmt.Errorf("identity: public key does not expose a crypto.PublicKey")
	}
	rsaPub, ok := cryptoPub.CryptoPublicKey().(*rsa.PublicKey)
	if !ok {
		return nil, fmt.Errorf("identity: only RSA public keys are supported")
	}
	return rsaPub, nil
}

// MarshalPublicKey renders pub back to the OpenSSH-encoded form sent in
// handshake step 0.
func MarshalPublicKey(pub *rsa.PublicKey) (string, error) {
	sshPub, err := ssh.NewPublicKey(pub)
	if err != nil {
		return "", fmt.Errorf("identity: marshal public key: %w", err)
	}
	return string(ssh.MarshalAuthorizedKey(sshPub)), nil
}

// LoadFromFiles loads a client identity from an OpenSSH public key file and
// a PEM-or-OpenSSH private key file, deriving UserID from the public half.
func LoadFromFiles(publicKeyPath, privateKeyPath string) (*Identity, error) {
	pubBytes, err := os.ReadFile(publicKeyPath)
	if err != nil {
		return nil, fmt.Errorf("identity: read public key file: %w", err)
	}
	pub, err := ParsePublicKey(string(pubBytes))
	if err != nil {
		return nil, err
	}

	privBytes, err := os.ReadFile(privateKeyPath)
	if err != nil {
		return nil, fmt.Errorf("identity: read private key file: %w", err)
	}
	raw, err := ssh.ParseRawPrivateKey(privBytes)
	if err != nil {
		return nil, fmt.Errorf("identity: parse private key: %w", err)
	}
	priv, ok := raw.(*rsa.PrivateKey)
	if !ok {
		return nil, fmt.Errorf("identity: only RSA private keys are supported")
	}

	return &Identity{
		UserID:     UserID(pub),
		PublicKey:  pub,
		PrivateKey: priv,
	}, nil
}

// Sign produces the handshake step-2 signature: RSA PKCS#1v1.5 over
// SHA-256(nonce).
func Sign(priv *rsa.PrivateKey, nonce []byte) ([]byte, error) {
	hashed := sha256.Sum256(nonce)
	sig, err := rsa.SignPKCS1v15(rand.Reader, priv, crypto.SHA256, hashed[:])
	if err != nil {
		return nil, fmt.Errorf("identity: sign nonce: %w", err)
	}
	return sig, nil
}

// Verify checks a handshake step-2 signature against the claimed public key.
func Verify(pub *rsa.PublicKey, nonce, signature []byte) error {
	hashed := sha256.Sum256(nonce)
	if err := rsa.VerifyPKCS1v15(pub, crypto.SHA256, hashed[:], signature); err != nil {
		return fmt.Errorf("identity: signature verification failed: %w", err)
	}
	return nil
}

// ShortID returns the first 8 characters of a user_id for log lines,
// matching the original server's `&client_id[..8]` logging convention.
func ShortID(userID string) string {
	if len(userID) <= 8 {
		return userID
	}
	return userID[:8]
}
