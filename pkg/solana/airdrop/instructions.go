package nft_airdrop

import (
	"bytes"
	"crypto/ed25519"

	"github.com/code-payments/nft-airdrop/pkg/solana"
)

const discriminatorSize = 8

// InstructionType identifies one of the program's instructions by its
// discriminator.
type InstructionType uint8

const (
	UnknownInstruction InstructionType = iota
	InitPoolInstruction
	InitNftDataInstruction
	AirdropInstruction
	RedeemTokenInstruction
)

func (t InstructionType) String() string {
	switch t {
	case InitPoolInstruction:
		return "init_pool"
	case InitNftDataInstruction:
		return "init_nft_data"
	case AirdropInstruction:
		return "airdrop"
	case RedeemTokenInstruction:
		return "redeem_token"
	}
	return "unknown"
}

// GetInstructionType returns the instruction selected by the discriminator
// prefix of data, or UnknownInstruction.
func GetInstructionType(data []byte) InstructionType {
	if len(data) < discriminatorSize {
		return UnknownInstruction
	}

	prefix := data[:discriminatorSize]
	switch {
	case bytes.Equal(prefix, initPoolInstructionDiscriminator):
		return InitPoolInstruction
	case bytes.Equal(prefix, initNftDataInstructionDiscriminator):
		return InitNftDataInstruction
	case bytes.Equal(prefix, airdropInstructionDiscriminator):
		return AirdropInstruction
	case bytes.Equal(prefix, redeemTokenInstructionDiscriminator):
		return RedeemTokenInstruction
	}
	return UnknownInstruction
}

func getInstructionAccount(ix solana.Instruction, index int) ed25519.PublicKey {
	return ix.Accounts[index].PublicKey
}

func checkInstruction(ix solana.Instruction, discriminator []byte, numAccounts int) error {
	if !bytes.Equal(ix.Program, PROGRAM_ADDRESS) {
		return ErrInvalidProgram
	}
	if !bytes.HasPrefix(ix.Data, discriminator) {
		return ErrInvalidInstructionData
	}
	if len(ix.Accounts) < numAccounts {
		return ErrInvalidInstructionData
	}
	return nil
}
