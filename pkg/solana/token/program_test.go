package token

import (
	"crypto/ed25519"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/code-payments/nft-airdrop/pkg/solana"
)

func TestTransfer(t *testing.T) {
	keys := generateKeys(t, 3)

	instruction := Transfer(keys[0], keys[1], keys[2], 123456789)
	assert.Equal(t, []byte{3, 21, 205, 91, 7, 0, 0, 0, 0}, instruction.Data)

	assert.True(t, instruction.Accounts[0].IsWritable)
	assert.False(t, instruction.Accounts[0].IsSigner)
	assert.True(t, instruction.Accounts[1].IsWritable)
	assert.False(t, instruction.Accounts[1].IsSigner)
	assert.False(t, instruction.Accounts[2].IsWritable)
	assert.True(t, instruction.Accounts[2].IsSigner)

	command, err := GetCommand(instruction)
	require.NoError(t, err)
	assert.Equal(t, CommandTransfer, command)

	decoded, err := DecodeTransfer(instruction)
	require.NoError(t, err)
	assert.Equal(t, keys[0], decoded.Source)
	assert.Equal(t, keys[1], decoded.Destination)
	assert.Equal(t, keys[2], decoded.Owner)
	assert.EqualValues(t, 123456789, decoded.Amount)
}

func TestDecodeTransfer_Invalid(t *testing.T) {
	keys := generateKeys(t, 4)

	instruction := Transfer(keys[0], keys[1], keys[2], 10)
	instruction.Data = instruction.Data[:5]
	_, err := DecodeTransfer(instruction)
	assert.Error(t, err)

	instruction = Transfer(keys[0], keys[1], keys[2], 10)
	instruction.Accounts = instruction.Accounts[:2]
	_, err = DecodeTransfer(instruction)
	assert.Error(t, err)

	instruction = Transfer(keys[0], keys[1], keys[2], 10)
	instruction.Data[0] = byte(CommandInitializeAccount)
	_, err = DecodeTransfer(instruction)
	assert.Equal(t, solana.ErrIncorrectInstruction, err)

	instruction.Program = keys[3]
	_, err = DecodeTransfer(instruction)
	assert.Equal(t, solana.ErrIncorrectProgram, err)

	_, err = GetCommand(instruction)
	assert.Equal(t, solana.ErrIncorrectProgram, err)
}

func generateKeys(t *testing.T, amount int) []ed25519.PublicKey {
	keys := make([]ed25519.PublicKey, amount)

	for i := 0; i < amount; i++ {
		pub, _, err := ed25519.GenerateKey(nil)
		require.NoError(t, err)

		keys[i] = pub
	}

	return keys
}
