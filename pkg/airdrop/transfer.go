package airdrop

import (
	"context"

	"github.com/sirupsen/logrus"

	"github.com/code-payments/nft-airdrop/pkg/runtime"
	nft_airdrop "github.com/code-payments/nft-airdrop/pkg/solana/airdrop"
	"github.com/code-payments/nft-airdrop/pkg/solana/token"
)

// transferFromPool moves amount tokens from source to destination, signing as
// the pool. Any failure of the token program is reported as
// ErrTokenTransferFailed.
func (p *Program) transferFromPool(
	ctx context.Context,
	invoker runtime.Invoker,
	accounts []*runtime.AccountInfo,
	pool *nft_airdrop.PoolAccount,
	poolInfo, source, destination *runtime.AccountInfo,
	amount uint64,
) error {
	log := p.log.WithFields(logrus.Fields{
		"method":      "transferFromPool",
		"pool":        poolInfo.String(),
		"source":      source.String(),
		"destination": destination.String(),
		"amount":      amount,
	})

	ix := token.Transfer(source.Key, destination.Key, poolInfo.Key, amount)
	err := invoker.InvokeSigned(ctx, ix, accounts, nft_airdrop.PoolSignerSeeds(pool.Rand, pool.Bump))
	if err != nil {
		log.WithError(err).Info("token transfer failed")
		return nft_airdrop.ErrTokenTransferFailed
	}

	log.Debug("tokens transferred")
	return nil
}
