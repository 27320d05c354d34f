package testutil

import (
	"crypto/ed25519"
	"testing"

	"github.com/mr-tron/base58"
	"github.com/stretchr/testify/require"
)

// GenerateSolanaKeypair returns a fresh signing key. Its public half is
// available through Public().
func GenerateSolanaKeypair(t testing.TB) ed25519.PrivateKey {
	_, priv, err := ed25519.GenerateKey(nil)
	require.NoError(t, err)
	return priv
}

// GenerateSolanaKeys returns n distinct random addresses.
func GenerateSolanaKeys(t testing.TB, n int) []ed25519.PublicKey {
	keys := make([]ed25519.PublicKey, 0, n)
	for len(keys) < n {
		keys = append(keys, GenerateSolanaKeypair(t).Public().(ed25519.PublicKey))
	}
	return keys
}

func GenerateSolanaKey(t testing.TB) ed25519.PublicKey {
	return GenerateSolanaKeys(t, 1)[0]
}

// MustDecodeKey decodes a base58 address, failing the test if it is not a
// valid 32 byte key.
func MustDecodeKey(t testing.TB, encoded string) ed25519.PublicKey {
	key, err := base58.Decode(encoded)
	require.NoError(t, err)
	require.Len(t, key, ed25519.PublicKeySize)
	return key
}
