// Package cryptoaead implements the two session-encryption algorithms a
// conversation can be configured with: AES-256-GCM and ChaCha20-Poly1305.
// Both use 12-byte nonces and 16-byte tags; ciphertext on the wire is laid
// out as nonce||ciphertext||tag (§6).
package cryptoaead

import (
	"crypto/aes"
	"crypto/cipher"
	"crypto/rand"
	"fmt"
	"io"

	"golang.org/x/crypto/chacha20poly1305"

	"github.com/ByteMaster2003/null-talk/internal/wire"
)

const (
	KeySize   = 32
	NonceSize = 12
)

// New builds the AEAD for the given algorithm and 32-byte key. Shaped after
// CryptoConfig.ciphers()/findCommonCipher: one small constructor keyed by
// algorithm name instead of a negotiated list, since the algorithm here is
// fixed per-session at creation time rather than negotiated per-connection.
func New(algo wire.Algo, key []byte) (cipher.AEAD, error) {
	if len(key) != KeySize {
		return nil, fmt.Errorf("cryptoaead: key must be %d bytes, got %d", KeySize, len(key))
	}
	switch algo {
	case wire.AlgoAES256:
		block, err := aes.NewCipher(key)
		if err != nil {
			return nil, fmt.Errorf("cryptoaead: aes cipher: %w", err)
		}
		return cipher.NewGCM(block)
	case wire.AlgoChaCha20:
		return chacha20poly1305.New(key)
	default:
		return nil, fmt.Errorf("cryptoaead: unsupported algorithm %q", algo)
	}
}

// GenerateKey produces a fresh 32-byte symmetric key for a new conversation.
func GenerateKey() ([]byte, error) {
	key := make([]byte, KeySize)
	if _, err := io.ReadFull(rand.Reader, key); err != nil {
		return nil, fmt.Errorf("cryptoaead: generate key: %w", err)
	}
	return key, nil
}

// Seal encrypts plaintext under algo/key and returns nonce||ciphertext||tag.
func Seal(algo wire.Algo, key, plaintext []byte) ([]byte, error) {
	aead, err := New(algo, key)
	if err != nil {
		return nil, err
	}
	nonce := make([]byte, NonceSize)
	if _, err := io.ReadFull(rand.Reader, nonce); err != nil {
		return nil, fmt.Errorf("cryptoaead: generate nonce: %w", err)
	}
	sealed := aead.Seal(nil, nonce, plaintext, nil)
	return append(nonce, sealed...), nil
}

// Open splits nonce||ciphertext||tag and decrypts it under algo/key.
func Open(algo wire.Algo, key, ciphertext []byte) ([]byte, error) {
	aead, err := New(algo, key)
	if err != nil {
		return nil, err
	}
	if len(ciphertext) < NonceSize {
		return nil, fmt.Errorf("cryptoaead: ciphertext shorter than nonce")
	}
	nonce, sealed := ciphertext[:NonceSize], ciphertext[NonceSize:]
	plaintext, err := aead.Open(nil, nonce, sealed, nil)
	if err != nil {
		return nil, fmt.Errorf("cryptoaead: open failed: %w", err)
	}
	return plaintext, nil
}
