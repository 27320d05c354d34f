package nft_airdrop

import (
	"crypto/ed25519"

	"github.com/code-payments/nft-airdrop/pkg/solana"
	"github.com/code-payments/nft-airdrop/pkg/solana/binary"
)

var initPoolInstructionDiscriminator = []byte{
	116, 233, 199, 204, 115, 159, 171, 36,
}

const InitPoolInstructionAccountsCount = 6

type InitPoolInstructionArgs struct {
	Bump            uint8
	Schedule        []Schedule
	Period          uint64
	StakeCollection string
}

type InitPoolInstructionAccounts struct {
	Owner         ed25519.PublicKey
	Pool          ed25519.PublicKey
	Rand          ed25519.PublicKey
	RewardMint    ed25519.PublicKey
	RewardAccount ed25519.PublicKey
}

func getInitPoolInstructionArgsSize(args *InitPoolInstructionArgs) int {
	return (1 + // bump
		getScheduleSize(len(args.Schedule)) + // schedule
		8 + // period
		4 + len(args.StakeCollection)) // stake_collection
}

func NewInitPoolInstruction(
	accounts *InitPoolInstructionAccounts,
	args *InitPoolInstructionArgs,
) solana.Instruction {
	var offset int

	// Serialize instruction arguments
	data := make([]byte,
		len(initPoolInstructionDiscriminator)+
			getInitPoolInstructionArgsSize(args))

	copy(data, initPoolInstructionDiscriminator)
	offset += len(initPoolInstructionDiscriminator)

	binary.PutUint8(data[offset:], args.Bump, &offset)
	putSchedule(data, args.Schedule, &offset)
	binary.PutUint64(data[offset:], args.Period, &offset)
	binary.PutString(data[offset:], args.StakeCollection, 0, &offset)

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
				PublicKey:  accounts.Rand,
				IsWritable: false,
				IsSigner:   false,
			},
			{
				PublicKey:  accounts.RewardMint,
				IsWritable: false,
				IsSigner:   false,
			},
			{
				PublicKey:  accounts.RewardAccount,
				IsWritable: false,
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

// InitPoolInstructionArgsFromBinary decodes the arguments of an init_pool
// instruction, including its discriminator.
func InitPoolInstructionArgsFromBinary(data []byte) (*InitPoolInstructionArgs, error) {
	if GetInstructionType(data) != InitPoolInstruction {
		return nil, ErrInvalidInstructionData
	}

	var args InitPoolInstructionArgs

	offset := len(initPoolInstructionDiscriminator)
	if len(data) < offset+1 {
		return nil, ErrInvalidInstructionData
	}
	binary.GetUint8(data[offset:], &args.Bump, &offset)

	maxEntries := (len(data) - offset) / ScheduleSize
	if err := getSchedule(data, &args.Schedule, maxEntries, &offset); err != nil {
		return nil, ErrInvalidInstructionData
	}

	if len(data) < offset+8 {
		return nil, ErrInvalidInstructionData
	}
	binary.GetUint64(data[offset:], &args.Period, &offset)

	if err := binary.GetString(data[offset:], &args.StakeCollection, len(data), &offset); err != nil {
		return nil, ErrInvalidInstructionData
	}

	return &args, nil
}

func InitPoolInstructionFromInstruction(ix solana.Instruction) (*InitPoolInstructionArgs, *InitPoolInstructionAccounts, error) {
	if err := checkInstruction(ix, initPoolInstructionDiscriminator, InitPoolInstructionAccountsCount); err != nil {
		return nil, nil, err
	}

	args, err := InitPoolInstructionArgsFromBinary(ix.Data)
	if err != nil {
		return nil, nil, err
	}

	return args, &InitPoolInstructionAccounts{
		Owner:         getInstructionAccount(ix, 0),
		Pool:          getInstructionAccount(ix, 1),
		Rand:          getInstructionAccount(ix, 2),
		RewardMint:    getInstructionAccount(ix, 3),
		RewardAccount: getInstructionAccount(ix, 4),
	}, nil
}
