package airdrop

import (
	"context"
	"crypto/ed25519"

	"github.com/sirupsen/logrus"

	"github.com/code-payments/nft-airdrop/pkg/runtime"
	nft_airdrop "github.com/code-payments/nft-airdrop/pkg/solana/airdrop"
)

const (
	metricsStructName = "airdrop.program"

	claimEventName      = "NftAirdropClaimed"
	withdrawalEventName = "NftAirdropPoolWithdrawal"

	rejectedClaimMetricName = "NftAirdrop/RejectedClaims"
)

// Program is the reward pool program. A pool custodies a reward token balance
// and releases it to holders of NFTs from a collection as schedule entries
// come due.
type Program struct {
	log *logrus.Entry
}

func NewProgram() *Program {
	return &Program{
		log: logrus.StandardLogger().WithField("type", "airdrop/program"),
	}
}

// ProgramID implements runtime.Program.ProgramID
func (p *Program) ProgramID() ed25519.PublicKey {
	return nft_airdrop.PROGRAM_ID
}

// Process implements runtime.Program.Process
func (p *Program) Process(ctx context.Context, invoker runtime.Invoker, accounts []*runtime.AccountInfo, data []byte) error {
	if len(data) < 8 {
		return nft_airdrop.ErrInstructionMissing
	}

	instructionType := nft_airdrop.GetInstructionType(data)
	log := p.log.WithFields(logrus.Fields{
		"method":      "Process",
		"instruction": instructionType.String(),
	})

	switch instructionType {
	case nft_airdrop.InitPoolInstruction:
		args, err := nft_airdrop.InitPoolInstructionArgsFromBinary(data)
		if err != nil {
			log.WithError(err).Debug("invalid instruction data")
			return nft_airdrop.ErrInstructionDidNotDeserialize
		}
		return p.CreatePool(ctx, invoker, accounts, args)

	case nft_airdrop.InitNftDataInstruction:
		args, err := nft_airdrop.InitNftDataInstructionArgsFromBinary(data)
		if err != nil {
			log.WithError(err).Debug("invalid instruction data")
			return nft_airdrop.ErrInstructionDidNotDeserialize
		}
		return p.RegisterNft(ctx, invoker, accounts, args)

	case nft_airdrop.AirdropInstruction:
		return p.ClaimAirdrop(ctx, invoker, accounts)

	case nft_airdrop.RedeemTokenInstruction:
		args, err := nft_airdrop.RedeemTokenInstructionArgsFromBinary(data)
		if err != nil {
			log.WithError(err).Debug("invalid instruction data")
			return nft_airdrop.ErrInstructionDidNotDeserialize
		}
		return p.AdminWithdraw(ctx, invoker, accounts, args)

	default:
		log.Debug("unknown instruction")
		return nft_airdrop.ErrInstructionFallbackNotFound
	}
}
