package identity_test

import (
	"crypto/rand"
	"crypto/rsa"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/ByteMaster2003/null-talk/internal/identity"
)

func genKey(t *testing.T) *rsa.PrivateKey {
	t.Helper()
	key, err := rsa.GenerateKey(rand.Reader, 2048)
	require.NoError(t, err)
	return key
}

func TestUserIDIsDeterministic(t *testing.T) {
	key := genKey(t)
	id1 := identity.UserID(&key.PublicKey)
	id2 := identity.UserID(&key.PublicKey)
	require.Equal(t, id1, id2)
	require.Len(t, id1, 64) // hex(sha256) == 64 chars
}

func TestUserIDDiffersAcrossKeys(t *testing.T) {
	id1 := identity.UserID(&genKey(t).PublicKey)
	id2 := identity.UserID(&genKey(t).PublicKey)
	require.NotEqual(t, id1, id2)
}

func TestMarshalParsePublicKeyRoundTrip(t *testing.T) {
	key := genKey(t)
	encoded, err := identity.MarshalPublicKey(&key.PublicKey)
	require.NoError(t, err)

	parsed, err := identity.ParsePublicKey(encoded)
	require.NoError(t, err)
	require.Equal(t, identity.UserID(&key.PublicKey), identity.UserID(parsed))
}

func TestSignVerifyRoundTrip(t *testing.T) {
	key := genKey(t)
	nonce := []byte("0123456789ab")

	sig, err := identity.Sign(key, nonce)
	require.NoError(t, err)
	require.NoError(t, identity.Verify(&key.PublicKey, nonce, sig))
}

func TestVerifyFailsWithWrongKey(t *testing.T) {
	key := genKey(t)
	other := genKey(t)
	nonce := []byte("0123456789ab")

	sig, err := identity.Sign(key, nonce)
	require.NoError(t, err)
	require.Error(t, identity.Verify(&other.PublicKey, nonce, sig))
}

func TestShortID(t *testing.T) {
	require.Equal(t, "deadbeef", identity.ShortID("deadbeefcafebabe"))
	require.Equal(t, "short", identity.ShortID("short"))
}
