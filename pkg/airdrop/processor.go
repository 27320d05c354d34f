package airdrop

import (
	"context"
	"crypto/ed25519"

	"github.com/sirupsen/logrus"

	"github.com/code-payments/nft-airdrop/pkg/metrics"
	"github.com/code-payments/nft-airdrop/pkg/runtime"
	nft_airdrop "github.com/code-payments/nft-airdrop/pkg/solana/airdrop"
	"github.com/code-payments/nft-airdrop/pkg/solana/metadata"
	"github.com/code-payments/nft-airdrop/pkg/solana/system"
	"github.com/code-payments/nft-airdrop/pkg/solana/token"
)

// CreatePool creates a pool at the address derived from the rand account. The
// pool must already be the authority over the reward account.
func (p *Program) CreatePool(ctx context.Context, invoker runtime.Invoker, accounts []*runtime.AccountInfo, args *nft_airdrop.InitPoolInstructionArgs) (err error) {
	tracer := metrics.TraceMethodCall(ctx, metricsStructName, "CreatePool")
	defer func() {
		tracer.EndWithError(err)
	}()

	a, err := loadCreatePoolAccounts(accounts, args)
	if err != nil {
		return err
	}

	log := p.log.WithFields(logrus.Fields{
		"method": "CreatePool",
		"owner":  a.owner.String(),
		"pool":   a.pool.String(),
	})

	var rewardAccount token.Account
	if !rewardAccount.Unmarshal(a.rewardAccount.Data) {
		log.Debug("reward account is not a token account")
		return nft_airdrop.ErrInvalidTokenAccount
	}
	if err := CheckRewardAccount(&rewardAccount, a.pool.Key, a.rewardMint.Key); err != nil {
		log.Debug("reward account must be held by the pool in the reward mint")
		return err
	}
	if args.Period == 0 {
		log.Debug("period must be greater than zero")
		return nft_airdrop.ErrInvalidPeriod
	}

	create := system.CreateAccount(a.owner.Key, a.pool.Key, nft_airdrop.PROGRAM_ID, 0, nft_airdrop.PoolAccountSize)
	if err := invoker.InvokeSigned(ctx, create, accounts, nft_airdrop.PoolSignerSeeds(a.rand.Key, args.Bump)); err != nil {
		log.WithError(err).Info("failed to create pool account")
		return err
	}

	pool := &nft_airdrop.PoolAccount{
		Owner:           cloneKey(a.owner.Key),
		Rand:            cloneKey(a.rand.Key),
		RewardMint:      cloneKey(a.rewardMint.Key),
		RewardAccount:   cloneKey(a.rewardAccount.Key),
		Schedule:        args.Schedule,
		Period:          args.Period,
		StakeCollection: args.StakeCollection,
		Bump:            args.Bump,
	}
	if err := storePool(a.pool, pool); err != nil {
		log.WithField("schedule_length", len(pool.Schedule)).Info("pool does not fit in its account")
		return err
	}

	log.WithField("collection", pool.StakeCollection).Debug("pool created")
	return nil
}

// RegisterNft creates the claim record of an NFT within a pool. Anyone may
// register any NFT; eligibility is checked when claiming.
func (p *Program) RegisterNft(ctx context.Context, invoker runtime.Invoker, accounts []*runtime.AccountInfo, args *nft_airdrop.InitNftDataInstructionArgs) (err error) {
	tracer := metrics.TraceMethodCall(ctx, metricsStructName, "RegisterNft")
	defer func() {
		tracer.EndWithError(err)
	}()

	a, err := loadRegisterNftAccounts(accounts, args)
	if err != nil {
		return err
	}

	log := p.log.WithFields(logrus.Fields{
		"method":   "RegisterNft",
		"pool":     a.pool.String(),
		"nft_mint": a.nftMint.String(),
	})

	create := system.CreateAccount(a.payer.Key, a.nftData.Key, nft_airdrop.PROGRAM_ID, 0, nft_airdrop.NftDataAccountSize)
	if err := invoker.InvokeSigned(ctx, create, accounts, nft_airdrop.NftDataSeeds(a.nftMint.Key, a.pool.Key, args.Bump)); err != nil {
		log.WithError(err).Info("failed to create nft data account")
		return err
	}

	nftData := &nft_airdrop.NftDataAccount{
		NftMint:         cloneKey(a.nftMint.Key),
		LastAirdropTime: 0,
		Bump:            args.Bump,
	}
	if err := storeNftData(a.nftData, nftData); err != nil {
		return err
	}

	log.Debug("nft registered")
	return nil
}

// ClaimAirdrop releases the schedule entry that is currently due to the
// holder of an NFT from the pool's collection, and records the claim so the
// entry can't be claimed again with the same NFT.
func (p *Program) ClaimAirdrop(ctx context.Context, invoker runtime.Invoker, accounts []*runtime.AccountInfo) (err error) {
	tracer := metrics.TraceMethodCall(ctx, metricsStructName, "ClaimAirdrop")
	defer func() {
		tracer.EndWithError(err)
	}()

	a, err := loadClaimAirdropAccounts(accounts)
	if err != nil {
		return err
	}

	log := p.log.WithFields(logrus.Fields{
		"method":   "ClaimAirdrop",
		"pool":     a.pool.String(),
		"nft_mint": a.nftMint.String(),
		"owner":    a.owner.String(),
	})

	now, err := readClock(a.clock)
	if err != nil {
		return err
	}

	entry, err := p.validateClaim(a, now)
	if err != nil {
		log.WithError(err).Info("claim rejected")
		metrics.RecordCount(ctx, rejectedClaimMetricName, 1)
		return err
	}

	log = log.WithFields(logrus.Fields{
		"airdrop_time": entry.AirdropTime,
		"amount":       entry.AirdropAmount,
	})

	err = p.transferFromPool(ctx, invoker, accounts, a.poolState, a.pool, a.tokenFrom, a.tokenTo, entry.AirdropAmount)
	if err != nil {
		return err
	}

	a.nftDataState.LastAirdropTime = now
	if err := storeNftData(a.nftData, a.nftDataState); err != nil {
		return err
	}

	metrics.RecordEvent(ctx, claimEventName, map[string]interface{}{
		"pool":         a.pool.String(),
		"nft_mint":     a.nftMint.String(),
		"owner":        a.owner.String(),
		"destination":  a.tokenTo.String(),
		"airdrop_time": entry.AirdropTime,
		"amount":       entry.AirdropAmount,
	})

	log.Debug("airdrop claimed")
	return nil
}

// validateClaim runs the claim checks in order and returns the schedule entry
// that is due.
func (p *Program) validateClaim(a *claimAirdropAccounts, now uint64) (*nft_airdrop.Schedule, error) {
	var nftMint token.Mint
	if !nftMint.Unmarshal(a.nftMint.Data) {
		return nil, nft_airdrop.ErrInvalidTokenMint
	}

	var nftAccount token.Account
	if !nftAccount.Unmarshal(a.nftAccount.Data) {
		return nil, nft_airdrop.ErrInvalidTokenAccount
	}

	md, err := loadMetadata(a.nftMetadata, a.nftMint.Key)
	if err != nil {
		return nil, err
	}

	if err := CheckNftMint(&nftMint); err != nil {
		return nil, err
	}
	if err := CheckNftHolding(&nftAccount, a.nftMint.Key, a.owner.Key); err != nil {
		return nil, err
	}
	if err := CheckMetadata(md, a.nftMint.Key, a.poolState.StakeCollection); err != nil {
		return nil, err
	}
	if err := CheckTokenSource(a.tokenFrom.Key, a.poolState); err != nil {
		return nil, err
	}

	return FindDueEntry(a.poolState.Schedule, a.poolState.Period, now, a.nftDataState.LastAirdropTime)
}

// loadMetadata decodes the metadata of nftMint, which is only trusted at the
// metadata program's canonical address for the mint.
func loadMetadata(a *runtime.AccountInfo, nftMint ed25519.PublicKey) (*metadata.Metadata, error) {
	expected, _, err := metadata.GetMetadataAddress(nftMint)
	if err != nil {
		return nil, nft_airdrop.ErrInvalidMetadata
	}
	if requireAddress(a, expected) != nil || !a.IsOwnedBy(metadata.ProgramKey) {
		return nil, nft_airdrop.ErrInvalidMetadata
	}

	var md metadata.Metadata
	if err := md.Unmarshal(a.Data); err != nil {
		return nil, nft_airdrop.ErrInvalidMetadata
	}
	return &md, nil
}

// AdminWithdraw moves tokens out of the pool's reward account on behalf of
// the pool owner.
func (p *Program) AdminWithdraw(ctx context.Context, invoker runtime.Invoker, accounts []*runtime.AccountInfo, args *nft_airdrop.RedeemTokenInstructionArgs) (err error) {
	tracer := metrics.TraceMethodCall(ctx, metricsStructName, "AdminWithdraw")
	defer func() {
		tracer.EndWithError(err)
	}()

	a, err := loadAdminWithdrawAccounts(accounts)
	if err != nil {
		return err
	}

	log := p.log.WithFields(logrus.Fields{
		"method": "AdminWithdraw",
		"pool":   a.pool.String(),
		"amount": args.Amount,
	})

	if err := CheckTokenSource(a.tokenFrom.Key, a.poolState); err != nil {
		log.Info("token source must be the pool's reward account")
		return err
	}

	err = p.transferFromPool(ctx, invoker, accounts, a.poolState, a.pool, a.tokenFrom, a.tokenTo, args.Amount)
	if err != nil {
		return err
	}

	metrics.RecordEvent(ctx, withdrawalEventName, map[string]interface{}{
		"pool":        a.pool.String(),
		"destination": a.tokenTo.String(),
		"amount":      args.Amount,
	})

	log.Debug("tokens withdrawn")
	return nil
}

func cloneKey(key ed25519.PublicKey) ed25519.PublicKey {
	cloned := make(ed25519.PublicKey, len(key))
	copy(cloned, key)
	return cloned
}
