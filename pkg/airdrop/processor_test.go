package airdrop

import (
	"context"
	"crypto/ed25519"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/code-payments/nft-airdrop/pkg/data/account/memory"
	"github.com/code-payments/nft-airdrop/pkg/runtime"
	"github.com/code-payments/nft-airdrop/pkg/solana"
	nft_airdrop "github.com/code-payments/nft-airdrop/pkg/solana/airdrop"
	"github.com/code-payments/nft-airdrop/pkg/solana/metadata"
	"github.com/code-payments/nft-airdrop/pkg/solana/system"
	"github.com/code-payments/nft-airdrop/pkg/solana/token"
	"github.com/code-payments/nft-airdrop/pkg/testutil"
)

const (
	testCollection    = "CODE"
	testRewardBalance = 10_000
)

type testEnv struct {
	ctx      context.Context
	clock    *runtime.ManualClock
	executor *runtime.Executor
	ledger   *testutil.Ledger

	owner      ed25519.PrivateKey
	rand       ed25519.PublicKey
	pool       ed25519.PublicKey
	poolBump   uint8
	rewardMint ed25519.PublicKey
	rewardAcct ed25519.PublicKey
}

func setup(t *testing.T) *testEnv {
	store := memory.New()
	clock := runtime.NewManualClock(time.Unix(0, 0))

	env := &testEnv{
		ctx:        context.Background(),
		clock:      clock,
		executor:   runtime.NewExecutor(store, clock, runtime.WithEnvConfigs(), NewProgram()),
		ledger:     testutil.NewLedger(t, store),
		owner:      testutil.GenerateSolanaKeypair(t),
		rand:       testutil.GenerateSolanaKey(t),
		rewardMint: testutil.GenerateSolanaKey(t),
		rewardAcct: testutil.GenerateSolanaKey(t),
	}

	var err error
	env.pool, env.poolBump, err = nft_airdrop.GetPoolAddress(&nft_airdrop.GetPoolAddressArgs{
		Rand: env.rand,
	})
	require.NoError(t, err)

	env.ledger.PutMint(env.rewardMint, 6, 1_000_000)
	env.ledger.PutTokenAccount(env.rewardAcct, env.rewardMint, env.pool, testRewardBalance)

	return env
}

func (e *testEnv) ownerKey() ed25519.PublicKey {
	return e.owner.Public().(ed25519.PublicKey)
}

func (e *testEnv) at(unix int64) {
	e.clock.Set(time.Unix(unix, 0))
}

// submit signs with the first signer as fee payer.
func (e *testEnv) submit(t *testing.T, signers []ed25519.PrivateKey, instructions ...solana.Instruction) error {
	txn := solana.NewTransaction(signers[0].Public().(ed25519.PublicKey), instructions...)
	require.NoError(t, txn.Sign(signers...))
	return e.executor.ExecuteTransaction(e.ctx, &txn)
}

func (e *testEnv) initPoolInstruction(schedule []nft_airdrop.Schedule, period uint64, collection string) solana.Instruction {
	return nft_airdrop.NewInitPoolInstruction(
		&nft_airdrop.InitPoolInstructionAccounts{
			Owner:         e.ownerKey(),
			Pool:          e.pool,
			Rand:          e.rand,
			RewardMint:    e.rewardMint,
			RewardAccount: e.rewardAcct,
		},
		&nft_airdrop.InitPoolInstructionArgs{
			Bump:            e.poolBump,
			Schedule:        schedule,
			Period:          period,
			StakeCollection: collection,
		},
	)
}

func (e *testEnv) createPool(t *testing.T, schedule []nft_airdrop.Schedule, period uint64) {
	require.NoError(t, e.submit(t, []ed25519.PrivateKey{e.owner}, e.initPoolInstruction(schedule, period, testCollection)))
}

func (e *testEnv) getPool(t *testing.T) *nft_airdrop.PoolAccount {
	record := e.ledger.Get(e.pool)
	require.NotNil(t, record)

	var pool nft_airdrop.PoolAccount
	require.NoError(t, pool.Unmarshal(record.Data))
	return &pool
}

type testNft struct {
	holder   ed25519.PrivateKey
	mint     ed25519.PublicKey
	account  ed25519.PublicKey
	metadata ed25519.PublicKey
	nftData  ed25519.PublicKey
	bump     uint8
	tokenTo  ed25519.PublicKey
}

func (n *testNft) holderKey() ed25519.PublicKey {
	return n.holder.Public().(ed25519.PublicKey)
}

// newNft mints an NFT from the collection to a fresh holder, along with the
// holder's reward token account.
func (e *testEnv) newNft(t *testing.T, symbol string) *testNft {
	nft := &testNft{
		holder:  testutil.GenerateSolanaKeypair(t),
		mint:    testutil.GenerateSolanaKey(t),
		account: testutil.GenerateSolanaKey(t),
		tokenTo: testutil.GenerateSolanaKey(t),
	}

	e.ledger.PutMint(nft.mint, 0, 1)
	e.ledger.PutTokenAccount(nft.account, nft.mint, nft.holderKey(), 1)
	e.ledger.PutTokenAccount(nft.tokenTo, e.rewardMint, nft.holderKey(), 0)
	nft.metadata = e.ledger.PutMetadata(nft.mint, symbol)

	var err error
	nft.nftData, nft.bump, err = nft_airdrop.GetNftDataAddress(&nft_airdrop.GetNftDataAddressArgs{
		NftMint: nft.mint,
		Pool:    e.pool,
	})
	require.NoError(t, err)

	return nft
}

func (e *testEnv) registerNft(t *testing.T, nft *testNft) {
	ix := nft_airdrop.NewInitNftDataInstruction(
		&nft_airdrop.InitNftDataInstructionAccounts{
			Payer:   nft.holderKey(),
			Pool:    e.pool,
			NftMint: nft.mint,
			NftData: nft.nftData,
		},
		&nft_airdrop.InitNftDataInstructionArgs{
			Bump: nft.bump,
		},
	)
	require.NoError(t, e.submit(t, []ed25519.PrivateKey{nft.holder}, ix))
}

func (e *testEnv) claimAccounts(nft *testNft) *nft_airdrop.AirdropInstructionAccounts {
	return &nft_airdrop.AirdropInstructionAccounts{
		Owner:       nft.holderKey(),
		Pool:        e.pool,
		NftMint:     nft.mint,
		NftMetadata: nft.metadata,
		NftAccount:  nft.account,
		NftData:     nft.nftData,
		TokenFrom:   e.rewardAcct,
		TokenTo:     nft.tokenTo,
	}
}

func (e *testEnv) claim(t *testing.T, nft *testNft) error {
	return e.claimWith(t, nft, e.claimAccounts(nft))
}

func (e *testEnv) claimWith(t *testing.T, nft *testNft, accounts *nft_airdrop.AirdropInstructionAccounts) error {
	return e.submit(t, []ed25519.PrivateKey{nft.holder}, nft_airdrop.NewAirdropInstruction(accounts))
}

func (e *testEnv) getNftData(t *testing.T, nft *testNft) *nft_airdrop.NftDataAccount {
	record := e.ledger.Get(nft.nftData)
	require.NotNil(t, record)

	var nftData nft_airdrop.NftDataAccount
	require.NoError(t, nftData.Unmarshal(record.Data))
	return &nftData
}

func requireProgramError(t *testing.T, err error, expected error) {
	require.Error(t, err)

	var txErr *solana.TransactionError
	require.ErrorAs(t, err, &txErr)
	require.NotNil(t, txErr.InstructionError())
	assert.ErrorIs(t, err, expected)

	actual, ok := nft_airdrop.GetProgramError(err)
	if ok {
		assert.Equal(t, expected, actual)
	}
}

func TestCreatePool_HappyPath(t *testing.T) {
	env := setup(t)

	schedule := []nft_airdrop.Schedule{
		{AirdropTime: 1000, AirdropAmount: 50},
		{AirdropTime: 2000, AirdropAmount: 75},
	}
	env.createPool(t, schedule, 100)

	record := env.ledger.Get(env.pool)
	require.NotNil(t, record)
	assert.Equal(t, nft_airdrop.PROGRAM_ID, testutil.MustDecodeKey(t, record.Owner))
	assert.Len(t, record.Data, nft_airdrop.PoolAccountSize)

	pool := env.getPool(t)
	assert.Equal(t, env.ownerKey(), pool.Owner)
	assert.Equal(t, env.rand, pool.Rand)
	assert.Equal(t, env.rewardMint, pool.RewardMint)
	assert.Equal(t, env.rewardAcct, pool.RewardAccount)
	assert.Equal(t, schedule, pool.Schedule)
	assert.EqualValues(t, 100, pool.Period)
	assert.Equal(t, testCollection, pool.StakeCollection)
	assert.Equal(t, env.poolBump, pool.Bump)
}

func TestCreatePool_InvalidPeriod(t *testing.T) {
	for _, schedule := range [][]nft_airdrop.Schedule{
		nil,
		{{AirdropTime: 1000, AirdropAmount: 50}},
		{{AirdropTime: 0, AirdropAmount: 0}, {AirdropTime: 1, AirdropAmount: 1}},
	} {
		env := setup(t)

		err := env.submit(t, []ed25519.PrivateKey{env.owner}, env.initPoolInstruction(schedule, 0, testCollection))
		requireProgramError(t, err, nft_airdrop.ErrInvalidPeriod)
		assert.Nil(t, env.ledger.Get(env.pool))
	}
}

func TestCreatePool_RewardAccountBinding(t *testing.T) {
	t.Run("not held by pool", func(t *testing.T) {
		env := setup(t)
		env.ledger.PutTokenAccount(env.rewardAcct, env.rewardMint, env.ownerKey(), testRewardBalance)

		err := env.submit(t, []ed25519.PrivateKey{env.owner}, env.initPoolInstruction(nil, 100, testCollection))
		requireProgramError(t, err, nft_airdrop.ErrInvalidTokenAccount)
	})

	t.Run("wrong mint", func(t *testing.T) {
		env := setup(t)
		env.ledger.PutTokenAccount(env.rewardAcct, testutil.GenerateSolanaKey(t), env.pool, testRewardBalance)

		err := env.submit(t, []ed25519.PrivateKey{env.owner}, env.initPoolInstruction(nil, 100, testCollection))
		requireProgramError(t, err, nft_airdrop.ErrInvalidTokenAccount)
	})

	t.Run("not a token account", func(t *testing.T) {
		env := setup(t)
		env.ledger.Put(env.rewardAcct, token.ProgramKey, []byte{1, 2, 3})

		err := env.submit(t, []ed25519.PrivateKey{env.owner}, env.initPoolInstruction(nil, 100, testCollection))
		requireProgramError(t, err, nft_airdrop.ErrInvalidTokenAccount)
	})

	t.Run("reward account not owned by token program", func(t *testing.T) {
		env := setup(t)
		env.ledger.Put(env.rewardAcct, system.ProgramKey[:], nil)

		err := env.submit(t, []ed25519.PrivateKey{env.owner}, env.initPoolInstruction(nil, 100, testCollection))
		requireProgramError(t, err, nft_airdrop.ErrConstraintOwner)
	})
}

func TestCreatePool_AlreadyExists(t *testing.T) {
	env := setup(t)
	env.createPool(t, nil, 100)

	err := env.submit(t, []ed25519.PrivateKey{env.owner}, env.initPoolInstruction(nil, 200, testCollection))
	requireProgramError(t, err, system.ErrAccountAlreadyInUse)
	assert.EqualValues(t, 100, env.getPool(t).Period)
}

func TestCreatePool_InvalidSeeds(t *testing.T) {
	env := setup(t)

	ix := env.initPoolInstruction(nil, 100, testCollection)
	ix.Data[8] = env.poolBump - 1

	err := env.submit(t, []ed25519.PrivateKey{env.owner}, ix)
	requireProgramError(t, err, nft_airdrop.ErrConstraintSeeds)
	assert.Nil(t, env.ledger.Get(env.pool))
}

func TestCreatePool_DoesNotFit(t *testing.T) {
	schedule := make([]nft_airdrop.Schedule, nft_airdrop.MaxScheduleLength)
	for i := range schedule {
		schedule[i] = nft_airdrop.Schedule{AirdropTime: uint64(i+1) * 1000, AirdropAmount: 1}
	}

	// A full schedule only leaves room for a two byte symbol
	env := setup(t)
	require.NoError(t, env.submit(t, []ed25519.PrivateKey{env.owner}, env.initPoolInstruction(schedule, 100, "AB")))
	assert.Equal(t, schedule, env.getPool(t).Schedule)

	env = setup(t)
	err := env.submit(t, []ed25519.PrivateKey{env.owner}, env.initPoolInstruction(schedule, 100, "ABC"))
	requireProgramError(t, err, nft_airdrop.ErrAccountDidNotSerialize)
	assert.Nil(t, env.ledger.Get(env.pool))

	env = setup(t)
	err = env.submit(t, []ed25519.PrivateKey{env.owner}, env.initPoolInstruction(append(schedule, schedule[0]), 100, "A"))
	requireProgramError(t, err, nft_airdrop.ErrAccountDidNotSerialize)
}

func TestCreatePool_MissingSigner(t *testing.T) {
	env := setup(t)
	payer := testutil.GenerateSolanaKeypair(t)

	ix := env.initPoolInstruction(nil, 100, testCollection)
	ix.Accounts[0].IsSigner = false

	err := env.submit(t, []ed25519.PrivateKey{payer}, ix)
	requireProgramError(t, err, nft_airdrop.ErrConstraintSigner)
}

func TestRegisterNft(t *testing.T) {
	env := setup(t)
	env.createPool(t, nil, 100)

	nft := env.newNft(t, testCollection)
	env.registerNft(t, nft)

	nftData := env.getNftData(t, nft)
	assert.Equal(t, nft.mint, nftData.NftMint)
	assert.EqualValues(t, 0, nftData.LastAirdropTime)
	assert.Equal(t, nft.bump, nftData.Bump)

	// Registering again fails in the system program
	ix := nft_airdrop.NewInitNftDataInstruction(
		&nft_airdrop.InitNftDataInstructionAccounts{
			Payer:   nft.holderKey(),
			Pool:    env.pool,
			NftMint: nft.mint,
			NftData: nft.nftData,
		},
		&nft_airdrop.InitNftDataInstructionArgs{Bump: nft.bump},
	)
	err := env.submit(t, []ed25519.PrivateKey{nft.holder}, ix)
	requireProgramError(t, err, system.ErrAccountAlreadyInUse)
}

func TestRegisterNft_Validation(t *testing.T) {
	env := setup(t)
	env.createPool(t, nil, 100)
	nft := env.newNft(t, testCollection)

	newIx := func(pool, nftData ed25519.PublicKey, bump uint8) solana.Instruction {
		return nft_airdrop.NewInitNftDataInstruction(
			&nft_airdrop.InitNftDataInstructionAccounts{
				Payer:   nft.holderKey(),
				Pool:    pool,
				NftMint: nft.mint,
				NftData: nftData,
			},
			&nft_airdrop.InitNftDataInstructionArgs{Bump: bump},
		)
	}

	// Claim record at another address
	err := env.submit(t, []ed25519.PrivateKey{nft.holder}, newIx(env.pool, testutil.GenerateSolanaKey(t), nft.bump))
	requireProgramError(t, err, nft_airdrop.ErrConstraintSeeds)

	// Pool that isn't a pool
	err = env.submit(t, []ed25519.PrivateKey{nft.holder}, newIx(env.rewardAcct, nft.nftData, nft.bump))
	requireProgramError(t, err, nft_airdrop.ErrAccountNotProgramOwned)

	fake := testutil.GenerateSolanaKey(t)
	env.ledger.Put(fake, nft_airdrop.PROGRAM_ID, make([]byte, nft_airdrop.NftDataAccountSize))
	err = env.submit(t, []ed25519.PrivateKey{nft.holder}, newIx(fake, nft.nftData, nft.bump))
	requireProgramError(t, err, nft_airdrop.ErrAccountDiscriminatorMismatch)

	assert.Nil(t, env.ledger.Get(nft.nftData))
}

func TestClaimAirdrop_Scenario(t *testing.T) {
	env := setup(t)
	env.createPool(t, []nft_airdrop.Schedule{{AirdropTime: 1000, AirdropAmount: 50}}, 100)

	nft := env.newNft(t, testCollection)
	env.registerNft(t, nft)

	env.at(1050)
	require.NoError(t, env.claim(t, nft))
	assert.EqualValues(t, 50, env.ledger.TokenBalance(nft.tokenTo))
	assert.EqualValues(t, testRewardBalance-50, env.ledger.TokenBalance(env.rewardAcct))
	assert.EqualValues(t, 1050, env.getNftData(t, nft).LastAirdropTime)

	for _, now := range []int64{1060, 900, 1101} {
		env.at(now)
		requireProgramError(t, env.claim(t, nft), nft_airdrop.ErrInvalidTime)
	}

	assert.EqualValues(t, 50, env.ledger.TokenBalance(nft.tokenTo))
	assert.EqualValues(t, 1050, env.getNftData(t, nft).LastAirdropTime)
}

func TestClaimAirdrop_MultipleEntries(t *testing.T) {
	env := setup(t)
	env.createPool(t, []nft_airdrop.Schedule{
		{AirdropTime: 1000, AirdropAmount: 50},
		{AirdropTime: 2000, AirdropAmount: 75},
	}, 100)

	first, second := env.newNft(t, testCollection), env.newNft(t, testCollection)
	env.registerNft(t, first)
	env.registerNft(t, second)

	env.at(1050)
	require.NoError(t, env.claim(t, first))

	// The second NFT misses the first window entirely
	env.at(2050)
	require.NoError(t, env.claim(t, first))
	require.NoError(t, env.claim(t, second))

	assert.EqualValues(t, 125, env.ledger.TokenBalance(first.tokenTo))
	assert.EqualValues(t, 75, env.ledger.TokenBalance(second.tokenTo))
	assert.EqualValues(t, testRewardBalance-200, env.ledger.TokenBalance(env.rewardAcct))
}

func TestClaimAirdrop_FirstMatch(t *testing.T) {
	env := setup(t)
	env.createPool(t, []nft_airdrop.Schedule{
		{AirdropTime: 1000, AirdropAmount: 50},
		{AirdropTime: 1010, AirdropAmount: 75},
	}, 100)

	nft := env.newNft(t, testCollection)
	env.registerNft(t, nft)

	env.at(1050)
	require.NoError(t, env.claim(t, nft))
	assert.EqualValues(t, 50, env.ledger.TokenBalance(nft.tokenTo))

	// The overlapping second entry came due before the claim, so it's not
	// claimable anymore
	env.at(1060)
	requireProgramError(t, env.claim(t, nft), nft_airdrop.ErrInvalidTime)
	assert.EqualValues(t, 50, env.ledger.TokenBalance(nft.tokenTo))
}

func TestClaimAirdrop_NftMintShape(t *testing.T) {
	for _, tc := range []struct {
		decimals byte
		supply   uint64
	}{
		{decimals: 1, supply: 1},
		{decimals: 0, supply: 2},
	} {
		env := setup(t)
		env.createPool(t, []nft_airdrop.Schedule{{AirdropTime: 1000, AirdropAmount: 50}}, 100)

		nft := env.newNft(t, testCollection)
		env.registerNft(t, nft)
		env.ledger.PutMint(nft.mint, tc.decimals, tc.supply)

		env.at(1050)
		requireProgramError(t, env.claim(t, nft), nft_airdrop.ErrInvalidTokenMint)
		assert.EqualValues(t, 0, env.ledger.TokenBalance(nft.tokenTo))
	}
}

func TestClaimAirdrop_NftHolding(t *testing.T) {
	env := setup(t)
	env.createPool(t, []nft_airdrop.Schedule{{AirdropTime: 1000, AirdropAmount: 50}}, 100)
	env.at(1050)

	t.Run("account for another mint", func(t *testing.T) {
		nft := env.newNft(t, testCollection)
		env.registerNft(t, nft)
		env.ledger.PutTokenAccount(nft.account, testutil.GenerateSolanaKey(t), nft.holderKey(), 1)

		requireProgramError(t, env.claim(t, nft), nft_airdrop.ErrInvalidTokenAccount)
	})

	t.Run("held by someone else", func(t *testing.T) {
		nft := env.newNft(t, testCollection)
		env.registerNft(t, nft)
		env.ledger.PutTokenAccount(nft.account, nft.mint, testutil.GenerateSolanaKey(t), 1)

		requireProgramError(t, env.claim(t, nft), nft_airdrop.ErrInvalidTokenAccount)
	})

	t.Run("empty account", func(t *testing.T) {
		nft := env.newNft(t, testCollection)
		env.registerNft(t, nft)
		env.ledger.PutTokenAccount(nft.account, nft.mint, nft.holderKey(), 0)

		requireProgramError(t, env.claim(t, nft), nft_airdrop.ErrInvalidTokenAccount)
	})
}

func TestClaimAirdrop_Metadata(t *testing.T) {
	env := setup(t)
	env.createPool(t, []nft_airdrop.Schedule{{AirdropTime: 1000, AirdropAmount: 50}}, 100)
	env.at(1050)

	t.Run("different collection", func(t *testing.T) {
		nft := env.newNft(t, "OTHER")
		env.registerNft(t, nft)

		requireProgramError(t, env.claim(t, nft), nft_airdrop.ErrInvalidMetadata)
	})

	t.Run("metadata for another mint", func(t *testing.T) {
		nft := env.newNft(t, testCollection)
		env.registerNft(t, nft)
		env.ledger.PutMetadataAt(nft.metadata, &metadata.Metadata{
			Key:             metadata.KeyMetadataV1,
			UpdateAuthority: testutil.GenerateSolanaKey(t),
			Mint:            testutil.GenerateSolanaKey(t),
			Symbol:          testCollection,
		})

		requireProgramError(t, env.claim(t, nft), nft_airdrop.ErrInvalidMetadata)
	})

	t.Run("metadata outside the canonical address", func(t *testing.T) {
		nft := env.newNft(t, testCollection)
		env.registerNft(t, nft)

		forged := testutil.GenerateSolanaKey(t)
		env.ledger.PutMetadataAt(forged, &metadata.Metadata{
			Key:             metadata.KeyMetadataV1,
			UpdateAuthority: testutil.GenerateSolanaKey(t),
			Mint:            nft.mint,
			Symbol:          testCollection,
		})

		accounts := env.claimAccounts(nft)
		accounts.NftMetadata = forged
		requireProgramError(t, env.claimWith(t, nft, accounts), nft_airdrop.ErrInvalidMetadata)
	})

	t.Run("metadata not owned by the metadata program", func(t *testing.T) {
		nft := env.newNft(t, testCollection)
		env.registerNft(t, nft)
		data := env.ledger.Get(nft.metadata).Data
		env.ledger.Put(nft.metadata, testutil.GenerateSolanaKey(t), data)

		requireProgramError(t, env.claim(t, nft), nft_airdrop.ErrInvalidMetadata)
	})

	t.Run("matching collection", func(t *testing.T) {
		nft := env.newNft(t, testCollection)
		env.registerNft(t, nft)

		require.NoError(t, env.claim(t, nft))
		assert.EqualValues(t, 50, env.ledger.TokenBalance(nft.tokenTo))
	})
}

func TestClaimAirdrop_TokenSource(t *testing.T) {
	env := setup(t)
	env.createPool(t, []nft_airdrop.Schedule{{AirdropTime: 1000, AirdropAmount: 50}}, 100)
	env.at(1050)

	nft := env.newNft(t, testCollection)
	env.registerNft(t, nft)

	// Even a token account the pool controls is refused as a source if it
	// isn't the recorded reward account
	other := testutil.GenerateSolanaKey(t)
	env.ledger.PutTokenAccount(other, env.rewardMint, env.pool, testRewardBalance)

	accounts := env.claimAccounts(nft)
	accounts.TokenFrom = other
	requireProgramError(t, env.claimWith(t, nft, accounts), nft_airdrop.ErrInvalidTokenAccount)

	assert.EqualValues(t, testRewardBalance, env.ledger.TokenBalance(other))
	assert.EqualValues(t, 0, env.getNftData(t, nft).LastAirdropTime)
}

func TestClaimAirdrop_TransferFailure(t *testing.T) {
	env := setup(t)
	env.createPool(t, []nft_airdrop.Schedule{{AirdropTime: 1000, AirdropAmount: testRewardBalance + 1}}, 100)
	env.at(1050)

	nft := env.newNft(t, testCollection)
	env.registerNft(t, nft)

	requireProgramError(t, env.claim(t, nft), nft_airdrop.ErrTokenTransferFailed)
	assert.EqualValues(t, 0, env.getNftData(t, nft).LastAirdropTime)
	assert.EqualValues(t, testRewardBalance, env.ledger.TokenBalance(env.rewardAcct))
}

func TestClaimAirdrop_ClaimRecordValidation(t *testing.T) {
	env := setup(t)
	env.createPool(t, []nft_airdrop.Schedule{{AirdropTime: 1000, AirdropAmount: 50}}, 100)
	env.at(1050)

	nft := env.newNft(t, testCollection)
	env.registerNft(t, nft)
	other := env.newNft(t, testCollection)
	env.registerNft(t, other)

	// Another NFT's claim record
	accounts := env.claimAccounts(nft)
	accounts.NftData = other.nftData
	requireProgramError(t, env.claimWith(t, nft, accounts), nft_airdrop.ErrConstraintSeeds)

	// A claim record that isn't one
	accounts = env.claimAccounts(nft)
	accounts.NftData = env.pool
	requireProgramError(t, env.claimWith(t, nft, accounts), nft_airdrop.ErrAccountDiscriminatorMismatch)

	// Unregistered NFT
	unregistered := env.newNft(t, testCollection)
	requireProgramError(t, env.claim(t, unregistered), nft_airdrop.ErrAccountNotProgramOwned)

	assert.EqualValues(t, 0, env.ledger.TokenBalance(nft.tokenTo))
}

func TestClaimAirdrop_ClockSysvar(t *testing.T) {
	env := setup(t)
	env.createPool(t, []nft_airdrop.Schedule{{AirdropTime: 1000, AirdropAmount: 50}}, 100)
	env.at(1050)

	nft := env.newNft(t, testCollection)
	env.registerNft(t, nft)

	ix := nft_airdrop.NewAirdropInstruction(env.claimAccounts(nft))
	ix.Accounts[9].PublicKey = system.RentSysVar

	err := env.submit(t, []ed25519.PrivateKey{nft.holder}, ix)
	requireProgramError(t, err, solana.ErrInvalidArgument)
}

func TestClaimAirdrop_BeforeEpoch(t *testing.T) {
	env := setup(t)
	env.createPool(t, []nft_airdrop.Schedule{{AirdropTime: 0, AirdropAmount: 50}}, 100)

	nft := env.newNft(t, testCollection)
	env.registerNft(t, nft)

	// Negative timestamps read as zero, which is never after a due time
	env.at(-50)
	requireProgramError(t, env.claim(t, nft), nft_airdrop.ErrInvalidTime)
}

func TestAdminWithdraw(t *testing.T) {
	env := setup(t)
	env.createPool(t, nil, 100)

	destination := testutil.GenerateSolanaKey(t)
	env.ledger.PutTokenAccount(destination, env.rewardMint, env.ownerKey(), 0)

	ix := nft_airdrop.NewRedeemTokenInstruction(
		&nft_airdrop.RedeemTokenInstructionAccounts{
			Owner:     env.ownerKey(),
			Pool:      env.pool,
			TokenFrom: env.rewardAcct,
			TokenTo:   destination,
		},
		&nft_airdrop.RedeemTokenInstructionArgs{Amount: 1_234},
	)
	require.NoError(t, env.submit(t, []ed25519.PrivateKey{env.owner}, ix))

	assert.EqualValues(t, 1_234, env.ledger.TokenBalance(destination))
	assert.EqualValues(t, testRewardBalance-1_234, env.ledger.TokenBalance(env.rewardAcct))
}

func TestAdminWithdraw_Validation(t *testing.T) {
	env := setup(t)
	env.createPool(t, nil, 100)

	destination := testutil.GenerateSolanaKey(t)
	env.ledger.PutTokenAccount(destination, env.rewardMint, env.ownerKey(), 0)

	newIx := func(owner, tokenFrom ed25519.PublicKey, amount uint64) solana.Instruction {
		return nft_airdrop.NewRedeemTokenInstruction(
			&nft_airdrop.RedeemTokenInstructionAccounts{
				Owner:     owner,
				Pool:      env.pool,
				TokenFrom: tokenFrom,
				TokenTo:   destination,
			},
			&nft_airdrop.RedeemTokenInstructionArgs{Amount: amount},
		)
	}

	// Not the pool owner
	intruder := testutil.GenerateSolanaKeypair(t)
	err := env.submit(t, []ed25519.PrivateKey{intruder}, newIx(intruder.Public().(ed25519.PublicKey), env.rewardAcct, 1))
	requireProgramError(t, err, nft_airdrop.ErrConstraintHasOne)

	// Not the reward account
	other := testutil.GenerateSolanaKey(t)
	env.ledger.PutTokenAccount(other, env.rewardMint, env.pool, 100)
	err = env.submit(t, []ed25519.PrivateKey{env.owner}, newIx(env.ownerKey(), other, 1))
	requireProgramError(t, err, nft_airdrop.ErrInvalidTokenAccount)

	// More than the pool holds
	err = env.submit(t, []ed25519.PrivateKey{env.owner}, newIx(env.ownerKey(), env.rewardAcct, testRewardBalance+1))
	requireProgramError(t, err, nft_airdrop.ErrTokenTransferFailed)

	assert.EqualValues(t, 0, env.ledger.TokenBalance(destination))
	assert.EqualValues(t, testRewardBalance, env.ledger.TokenBalance(env.rewardAcct))
}

func TestProcess_InstructionData(t *testing.T) {
	env := setup(t)

	for _, tc := range []struct {
		data     []byte
		expected error
	}{
		{data: nil, expected: nft_airdrop.ErrInstructionMissing},
		{data: []byte{1, 2, 3}, expected: nft_airdrop.ErrInstructionMissing},
		{data: []byte{1, 2, 3, 4, 5, 6, 7, 8}, expected: nft_airdrop.ErrInstructionFallbackNotFound},
		{data: nft_airdrop.NewRedeemTokenInstruction(&nft_airdrop.RedeemTokenInstructionAccounts{}, &nft_airdrop.RedeemTokenInstructionArgs{}).Data[:10], expected: nft_airdrop.ErrInstructionDidNotDeserialize},
	} {
		ix := solana.NewInstruction(nft_airdrop.PROGRAM_ID, tc.data, solana.NewAccountMeta(env.ownerKey(), true))
		err := env.submit(t, []ed25519.PrivateKey{env.owner}, ix)
		requireProgramError(t, err, tc.expected)
	}

	ix := nft_airdrop.NewAirdropInstruction(&nft_airdrop.AirdropInstructionAccounts{})
	ix.Accounts = ix.Accounts[:1]
	ix.Accounts[0].PublicKey = env.ownerKey()
	err := env.submit(t, []ed25519.PrivateKey{env.owner}, ix)
	requireProgramError(t, err, nft_airdrop.ErrAccountNotEnoughKeys)
}
