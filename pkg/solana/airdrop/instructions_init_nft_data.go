package nft_airdrop

import (
	"crypto/ed25519"

	"github.com/code-payments/nft-airdrop/pkg/solana"
	"github.com/code-payments/nft-airdrop/pkg/solana/binary"
)

var initNftDataInstructionDiscriminator = []byte{
	253, 113, 252, 37, 35, 24, 132, 236,
}

const (
	InitNftDataInstructionArgsSize = 1 // bump

	InitNftDataInstructionAccountsCount = 5
)

type InitNftDataInstructionArgs struct {
	Bump uint8
}

type InitNftDataInstructionAccounts struct {
	Payer   ed25519.PublicKey
	Pool    ed25519.PublicKey
	NftMint ed25519.PublicKey
	NftData ed25519.PublicKey
}

func NewInitNftDataInstruction(
	accounts *InitNftDataInstructionAccounts,
	args *InitNftDataInstructionArgs,
) solana.Instruction {
	var offset int

	// Serialize instruction arguments
	data := make([]byte,
		len(initNftDataInstructionDiscriminator)+
			InitNftDataInstructionArgsSize)

	copy(data, initNftDataInstructionDiscriminator)
	offset += len(initNftDataInstructionDiscriminator)

	binary.PutUint8(data[offset:], args.Bump, &offset)

	return solana.Instruction{
		Program: PROGRAM_ADDRESS,

		// Instruction args
		Data: data,

		// Instruction accounts
		Accounts: []solana.AccountMeta{
			{
				PublicKey:  accounts.Payer,
				IsWritable: true,
				IsSigner:   true,
			},
			{
				PublicKey:  accounts.Pool,
				IsWritable: false,
				IsSigner:   false,
			},
			{
				PublicKey:  accounts.NftMint,
				IsWritable: false,
				IsSigner:   false,
			},
			{
				PublicKey:  accounts.NftData,
				IsWritable: true,
				IsSigner:   false,
			},
			{
				PublicKey:  SYSTEM_PROGRAM_ID,
				IsWritable: false,
				IsSigner:   false,
			},
		},
	}
}

func InitNftDataInstructionArgsFromBinary(data []byte) (*InitNftDataInstructionArgs, error) {
	if GetInstructionType(data) != InitNftDataInstruction {
		return nil, ErrInvalidInstructionData
	}
	if len(data) < len(initNftDataInstructionDiscriminator)+InitNftDataInstructionArgsSize {
		return nil, ErrInvalidInstructionData
	}

	var args InitNftDataInstructionArgs

	offset := len(initNftDataInstructionDiscriminator)
	binary.GetUint8(data[offset:], &args.Bump, &offset)

	return &args, nil
}

func InitNftDataInstructionFromInstruction(ix solana.Instruction) (*InitNftDataInstructionArgs, *InitNftDataInstructionAccounts, error) {
	if err := checkInstruction(ix, initNftDataInstructionDiscriminator, InitNftDataInstructionAccountsCount); err != nil {
		return nil, nil, err
	}

	args, err := InitNftDataInstructionArgsFromBinary(ix.Data)
	if err != nil {
		return nil, nil, err
	}

	return args, &InitNftDataInstructionAccounts{
		Payer:   getInstructionAccount(ix, 0),
		Pool:    getInstructionAccount(ix, 1),
		NftMint: getInstructionAccount(ix, 2),
		NftData: getInstructionAccount(ix, 3),
	}, nil
}
