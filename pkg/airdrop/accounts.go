package airdrop

import (
	"bytes"
	"crypto/ed25519"

	"github.com/pkg/errors"

	"github.com/code-payments/nft-airdrop/pkg/runtime"
	"github.com/code-payments/nft-airdrop/pkg/solana"
	nft_airdrop "github.com/code-payments/nft-airdrop/pkg/solana/airdrop"
	"github.com/code-payments/nft-airdrop/pkg/solana/system"
	"github.com/code-payments/nft-airdrop/pkg/solana/token"
)

// Account validation mirrors the framework the program was deployed with:
// typed accounts are decoded first, in instruction order, and the
// per-account constraints are evaluated afterwards.

type createPoolAccounts struct {
	owner         *runtime.AccountInfo
	pool          *runtime.AccountInfo
	rand          *runtime.AccountInfo
	rewardMint    *runtime.AccountInfo
	rewardAccount *runtime.AccountInfo
	systemProgram *runtime.AccountInfo
}

func loadCreatePoolAccounts(accounts []*runtime.AccountInfo, args *nft_airdrop.InitPoolInstructionArgs) (*createPoolAccounts, error) {
	if len(accounts) < nft_airdrop.InitPoolInstructionAccountsCount {
		return nil, nft_airdrop.ErrAccountNotEnoughKeys
	}

	a := &createPoolAccounts{
		owner:         accounts[0],
		pool:          accounts[1],
		rand:          accounts[2],
		rewardMint:    accounts[3],
		rewardAccount: accounts[4],
		systemProgram: accounts[5],
	}

	return a, firstError(
		requireMut(a.owner),
		requireSigner(a.owner),
		requireMut(a.pool),
		requireSeeds(a.pool, nft_airdrop.PoolSignerSeeds(a.rand.Key, args.Bump)),
		requireOwner(a.rewardMint, token.ProgramKey),
		requireOwner(a.rewardAccount, token.ProgramKey),
		requireAddress(a.systemProgram, system.ProgramKey[:]),
	)
}

type registerNftAccounts struct {
	payer         *runtime.AccountInfo
	pool          *runtime.AccountInfo
	nftMint       *runtime.AccountInfo
	nftData       *runtime.AccountInfo
	systemProgram *runtime.AccountInfo

	poolState *nft_airdrop.PoolAccount
}

func loadRegisterNftAccounts(accounts []*runtime.AccountInfo, args *nft_airdrop.InitNftDataInstructionArgs) (*registerNftAccounts, error) {
	if len(accounts) < nft_airdrop.InitNftDataInstructionAccountsCount {
		return nil, nft_airdrop.ErrAccountNotEnoughKeys
	}

	a := &registerNftAccounts{
		payer:         accounts[0],
		pool:          accounts[1],
		nftMint:       accounts[2],
		nftData:       accounts[3],
		systemProgram: accounts[4],
	}

	var err error
	a.poolState, err = loadPool(a.pool)
	if err != nil {
		return nil, err
	}

	return a, firstError(
		requireMut(a.payer),
		requireSigner(a.payer),
		requireOwner(a.nftMint, token.ProgramKey),
		requireMut(a.nftData),
		requireSeeds(a.nftData, nft_airdrop.NftDataSeeds(a.nftMint.Key, a.pool.Key, args.Bump)),
		requireAddress(a.systemProgram, system.ProgramKey[:]),
	)
}

type claimAirdropAccounts struct {
	owner        *runtime.AccountInfo
	pool         *runtime.AccountInfo
	nftMint      *runtime.AccountInfo
	nftMetadata  *runtime.AccountInfo
	nftAccount   *runtime.AccountInfo
	nftData      *runtime.AccountInfo
	tokenFrom    *runtime.AccountInfo
	tokenTo      *runtime.AccountInfo
	tokenProgram *runtime.AccountInfo
	clock        *runtime.AccountInfo

	poolState    *nft_airdrop.PoolAccount
	nftDataState *nft_airdrop.NftDataAccount
}

func loadClaimAirdropAccounts(accounts []*runtime.AccountInfo) (*claimAirdropAccounts, error) {
	if len(accounts) < nft_airdrop.AirdropInstructionAccountsCount {
		return nil, nft_airdrop.ErrAccountNotEnoughKeys
	}

	a := &claimAirdropAccounts{
		owner:        accounts[0],
		pool:         accounts[1],
		nftMint:      accounts[2],
		nftMetadata:  accounts[3],
		nftAccount:   accounts[4],
		nftData:      accounts[5],
		tokenFrom:    accounts[6],
		tokenTo:      accounts[7],
		tokenProgram: accounts[8],
		clock:        accounts[9],
	}

	var err error
	a.poolState, err = loadPool(a.pool)
	if err != nil {
		return nil, err
	}
	a.nftDataState, err = loadNftData(a.nftData)
	if err != nil {
		return nil, err
	}

	return a, firstError(
		requireMut(a.owner),
		requireSigner(a.owner),
		requireMut(a.pool),
		requireOwner(a.nftMint, token.ProgramKey),
		requireOwner(a.nftAccount, token.ProgramKey),
		requireMut(a.nftData),
		requireSeeds(a.nftData, nft_airdrop.NftDataSeeds(a.nftMint.Key, a.pool.Key, a.nftDataState.Bump)),
		requireMut(a.tokenFrom),
		requireOwner(a.tokenFrom, token.ProgramKey),
		requireMut(a.tokenTo),
		requireOwner(a.tokenTo, token.ProgramKey),
		requireAddress(a.tokenProgram, token.ProgramKey),
	)
}

type adminWithdrawAccounts struct {
	owner        *runtime.AccountInfo
	pool         *runtime.AccountInfo
	tokenFrom    *runtime.AccountInfo
	tokenTo      *runtime.AccountInfo
	tokenProgram *runtime.AccountInfo

	poolState *nft_airdrop.PoolAccount
}

func loadAdminWithdrawAccounts(accounts []*runtime.AccountInfo) (*adminWithdrawAccounts, error) {
	if len(accounts) < nft_airdrop.RedeemTokenInstructionAccountsCount {
		return nil, nft_airdrop.ErrAccountNotEnoughKeys
	}

	a := &adminWithdrawAccounts{
		owner:        accounts[0],
		pool:         accounts[1],
		tokenFrom:    accounts[2],
		tokenTo:      accounts[3],
		tokenProgram: accounts[4],
	}

	var err error
	a.poolState, err = loadPool(a.pool)
	if err != nil {
		return nil, err
	}

	return a, firstError(
		requireMut(a.owner),
		requireSigner(a.owner),
		requireMut(a.pool),
		requireHasOne(a.poolState.Owner, a.owner),
		requireMut(a.tokenFrom),
		requireOwner(a.tokenFrom, token.ProgramKey),
		requireMut(a.tokenTo),
		requireOwner(a.tokenTo, token.ProgramKey),
		requireAddress(a.tokenProgram, token.ProgramKey),
	)
}

func firstError(errs ...error) error {
	for _, err := range errs {
		if err != nil {
			return err
		}
	}
	return nil
}

func requireSigner(a *runtime.AccountInfo) error {
	if !a.IsSigner {
		return nft_airdrop.ErrConstraintSigner
	}
	return nil
}

func requireMut(a *runtime.AccountInfo) error {
	if !a.IsWritable {
		return nft_airdrop.ErrConstraintMut
	}
	return nil
}

func requireOwner(a *runtime.AccountInfo, owner ed25519.PublicKey) error {
	if !a.IsOwnedBy(owner) {
		return nft_airdrop.ErrConstraintOwner
	}
	return nil
}

func requireAddress(a *runtime.AccountInfo, address ed25519.PublicKey) error {
	if !bytes.Equal(a.Key, address) {
		return nft_airdrop.ErrConstraintAddress
	}
	return nil
}

func requireHasOne(expected ed25519.PublicKey, a *runtime.AccountInfo) error {
	if !bytes.Equal(expected, a.Key) {
		return nft_airdrop.ErrConstraintHasOne
	}
	return nil
}

// requireSeeds verifies a is the program address derived from seeds, which
// include the bump.
func requireSeeds(a *runtime.AccountInfo, seeds [][]byte) error {
	address, err := solana.CreateProgramAddress(nft_airdrop.PROGRAM_ID, seeds...)
	if err != nil || !bytes.Equal(address, a.Key) {
		return nft_airdrop.ErrConstraintSeeds
	}
	return nil
}

func loadPool(a *runtime.AccountInfo) (*nft_airdrop.PoolAccount, error) {
	if !a.IsOwnedBy(nft_airdrop.PROGRAM_ID) {
		return nil, nft_airdrop.ErrAccountNotProgramOwned
	}

	var pool nft_airdrop.PoolAccount
	if err := pool.Unmarshal(a.Data); err != nil {
		return nil, toAccountDecodeError(a, err)
	}
	return &pool, nil
}

func loadNftData(a *runtime.AccountInfo) (*nft_airdrop.NftDataAccount, error) {
	if !a.IsOwnedBy(nft_airdrop.PROGRAM_ID) {
		return nil, nft_airdrop.ErrAccountNotProgramOwned
	}

	var nftData nft_airdrop.NftDataAccount
	if err := nftData.Unmarshal(a.Data); err != nil {
		return nil, toAccountDecodeError(a, err)
	}
	return &nftData, nil
}

func toAccountDecodeError(a *runtime.AccountInfo, err error) error {
	switch {
	case len(a.Data) < 8:
		return nft_airdrop.ErrAccountDiscriminatorNotFound
	case errors.Is(err, nft_airdrop.ErrDiscriminatorMismatch):
		return nft_airdrop.ErrAccountDiscriminatorMismatch
	default:
		return nft_airdrop.ErrAccountDidNotDeserialize
	}
}

func storePool(a *runtime.AccountInfo, pool *nft_airdrop.PoolAccount) error {
	data, err := pool.Marshal()
	if err != nil || len(a.Data) < len(data) {
		return nft_airdrop.ErrAccountDidNotSerialize
	}
	copy(a.Data, data)
	return nil
}

func storeNftData(a *runtime.AccountInfo, nftData *nft_airdrop.NftDataAccount) error {
	data := nftData.Marshal()
	if len(a.Data) < len(data) {
		return nft_airdrop.ErrAccountDidNotSerialize
	}
	copy(a.Data, data)
	return nil
}

// readClock reads the unix timestamp from the clock sysvar. Timestamps before
// the epoch read as zero.
func readClock(a *runtime.AccountInfo) (uint64, error) {
	if !bytes.Equal(a.Key, system.ClockSysVar) {
		return 0, solana.ErrInvalidArgument
	}

	var clock system.Clock
	if err := clock.Unmarshal(a.Data); err != nil {
		return 0, solana.ErrInvalidArgument
	}

	if clock.UnixTimestamp < 0 {
		return 0, nil
	}
	return uint64(clock.UnixTimestamp), nil
}
