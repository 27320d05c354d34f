package solana

import (
	"crypto/ed25519"
	"encoding/json"
	"os"

	"github.com/pkg/errors"
)

// LoadKeypair reads a keypair file in the Solana CLI format, a JSON array of the
// 64 private key bytes.
func LoadKeypair(path string) (ed25519.PrivateKey, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.Wrapf(err, "failed to read keypair file %s", path)
	}

	return ParseKeypair(raw)
}

func ParseKeypair(raw []byte) (ed25519.PrivateKey, error) {
	var values []int
	if err := json.Unmarshal(raw, &values); err != nil {
		return nil, errors.Wrap(err, "keypair is not a json byte array")
	}
	if len(values) != ed25519.PrivateKeySize {
		return nil, errors.Errorf("keypair must have %d bytes, got %d", ed25519.PrivateKeySize, len(values))
	}

	key := make([]byte, ed25519.PrivateKeySize)
	for i, v := range values {
		if v < 0 || v > 255 {
			return nil, errors.Errorf("keypair byte %d out of range: %d", i, v)
		}
		key[i] = byte(v)
	}

	priv := ed25519.NewKeyFromSeed(key[:ed25519.SeedSize])
	if !priv.Public().(ed25519.PublicKey).Equal(ed25519.PublicKey(key[ed25519.SeedSize:])) {
		return nil, errors.New("keypair public key does not match seed")
	}

	return priv, nil
}

// MarshalKeypair encodes the key the way ParseKeypair expects it.
func MarshalKeypair(key ed25519.PrivateKey) ([]byte, error) {
	values := make([]int, len(key))
	for i, b := range key {
		values[i] = int(b)
	}
	return json.Marshal(values)
}
