package nft_airdrop

import (
	"crypto/ed25519"

	"github.com/code-payments/nft-airdrop/pkg/solana"
	"github.com/code-payments/nft-airdrop/pkg/solana/binary"
)

var redeemTokenInstructionDiscriminator = []byte{
	190, 85, 90, 176, 192, 218, 41, 214,
}

const (
	RedeemTokenInstructionArgsSize = 8 // amount

	RedeemTokenInstructionAccountsCount = 5
)

type RedeemTokenInstructionArgs struct {
	Amount uint64
}

type RedeemTokenInstructionAccounts struct {
	Owner     ed25519.PublicKey
	Pool      ed25519.PublicKey
	TokenFrom ed25519.PublicKey
	TokenTo   ed25519.PublicKey
}

func NewRedeemTokenInstruction(
	accounts *RedeemTokenInstructionAccounts,
	args *RedeemTokenInstructionArgs,
) solana.Instruction {
	var offset int

	// Serialize instruction arguments
	data := make([]byte,
		len(redeemTokenInstructionDiscriminator)+
			RedeemTokenInstructionArgsSize)

	copy(data, redeemTokenInstructionDiscriminator)
	offset += len(redeemTokenInstructionDiscriminator)

	binary.PutUint64(data[offset:], args.Amount, &offset)

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
		},
	}
}

func RedeemTokenInstructionArgsFromBinary(data []byte) (*RedeemTokenInstructionArgs, error) {
	if GetInstructionType(data) != RedeemTokenInstruction {
		return nil, ErrInvalidInstructionData
	}
	if len(data) < len(redeemTokenInstructionDiscriminator)+RedeemTokenInstructionArgsSize {
		return nil, ErrInvalidInstructionData
	}

	var args RedeemTokenInstructionArgs

	offset := len(redeemTokenInstructionDiscriminator)
	binary.GetUint64(data[offset:], &args.Amount, &offset)

	return &args, nil
}

func RedeemTokenInstructionFromInstruction(ix solana.Instruction) (*RedeemTokenInstructionArgs, *RedeemTokenInstructionAccounts, error) {
	if err := checkInstruction(ix, redeemTokenInstructionDiscriminator, RedeemTokenInstructionAccountsCount); err != nil {
		return nil, nil, err
	}

	args, err := RedeemTokenInstructionArgsFromBinary(ix.Data)
	if err != nil {
		return nil, nil, err
	}

	return args, &RedeemTokenInstructionAccounts{
		Owner:     getInstructionAccount(ix, 0),
		Pool:      getInstructionAccount(ix, 1),
		TokenFrom: getInstructionAccount(ix, 2),
		TokenTo:   getInstructionAccount(ix, 3),
	}, nil
}
