package nft_airdrop

import (
	"crypto/ed25519"

	"github.com/code-payments/nft-airdrop/pkg/solana"
)

var airdropInstructionDiscriminator = []byte{
	113, 173, 36, 238, 38, 152, 22, 117,
}

const AirdropInstructionAccountsCount = 10

type AirdropInstructionAccounts struct {
	Owner       ed25519.PublicKey
	Pool        ed25519.PublicKey
	NftMint     ed25519.PublicKey
	NftMetadata ed25519.PublicKey
	NftAccount  ed25519.PublicKey
	NftData     ed25519.PublicKey
	TokenFrom   ed25519.PublicKey
	TokenTo     ed25519.PublicKey
}

// NewAirdropInstruction claims the currently due schedule entry for the NFT
// held by the owner. The instruction takes no arguments.
func NewAirdropInstruction(
	accounts *AirdropInstructionAccounts,
) solana.Instruction {
	data := make([]byte, len(airdropInstructionDiscriminator))
	copy(data, airdropInstructionDiscriminator)

	return solana.Instruction{
		Program: PROGRAM_ADDRESS,

		// Instruction args
		Data: data,

		// Instruction accounts
		Accounts: []solana.AccountMeta{
			{
				PublicKey:  accounts.Owner,
				IsWritable: true,
				IsSigner:   true,
			},
			{
				PublicKey:  accounts.Pool,
				IsWritable: true,
				IsSigner:   false,
			},
			{
				PublicKey:  accounts.NftMint,
				IsWritable: false,
				IsSigner:   false,
			},
			{
				PublicKey:  accounts.NftMetadata,
				IsWritable: false,
				IsSigner:   false,
			},
			{
				PublicKey:  accounts.NftAccount,
				IsWritable: false,
				IsSigner:   false,
			},
			{
				PublicKey:  accounts.NftData,
				IsWritable: true,
				IsSigner:   false,
			},
			{
				PublicKey:  accounts.TokenFrom,
				IsWritable: true,
				IsSigner:   false,
			},
			{
				PublicKey:  accounts.TokenTo,
				IsWritable: true,
				IsSigner:   false,
			},
			{
				PublicKey:  SPL_TOKEN_PROGRAM_ID,
				IsWritable: false,
				IsSigner:   false,
			},
			{
				PublicKey:  SYSVAR_CLOCK_PUBKEY,
				IsWritable: false,
				IsSigner:   false,
			},
		},
	}
}

func AirdropInstructionFromInstruction(ix solana.Instruction) (*AirdropInstructionAccounts, error) {
	if err := checkInstruction(ix, airdropInstructionDiscriminator, AirdropInstructionAccountsCount); err != nil {
		return nil, err
	}

	return &AirdropInstructionAccounts{
		Owner:       getInstructionAccount(ix, 0),
		Pool:        getInstructionAccount(ix, 1),
		NftMint:     getInstructionAccount(ix, 2),
		NftMetadata: getInstructionAccount(ix, 3),
		NftAccount:  getInstructionAccount(ix, 4),
		NftData:     getInstructionAccount(ix, 5),
		TokenFrom:   getInstructionAccount(ix, 6),
		TokenTo:     getInstructionAccount(ix, 7),
	}, nil
}
