package main

import (
	"bytes"
	"context"
	"crypto/ed25519"
	"flag"
	"fmt"
	"io"
	"text/tabwriter"
	"time"

	"github.com/mr-tron/base58/base58"
	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"

	"github.com/code-payments/nft-airdrop/pkg/solana"
	nft_airdrop "github.com/code-payments/nft-airdrop/pkg/solana/airdrop"
	"github.com/code-payments/nft-airdrop/pkg/solana/metadata"
	"github.com/code-payments/nft-airdrop/pkg/solana/token"
)

var errUsage = errors.New("invalid usage")

type command struct {
	name  string
	usage string
	run   func(ctx context.Context, c *cli, args []string) error
}

var commands = []command{
	{name: "init-pool", usage: "-k <keypair> -i <info.json>", run: initPool},
	{name: "get-pool", usage: "-p <pool>", run: getPool},
	{name: "init-nft-data", usage: "-k <keypair> -p <pool> -m <nft mint>", run: initNftData},
	{name: "claim", usage: "-k <keypair> -p <pool> -m <nft mint>", run: claim},
	{name: "redeem", usage: "-k <keypair> -p <pool> -a <amount> -t <destination>", run: redeem},
}

func findCommand(name string) (command, bool) {
	for _, cmd := range commands {
		if cmd.name == name {
			return cmd, true
		}
	}
	return command{}, false
}

type cli struct {
	log       *logrus.Entry
	config    Config
	out       io.Writer
	sc        solana.Client
	submitter *submitter
}

func newFlagSet(name string) *flag.FlagSet {
	fs := flag.NewFlagSet(name, flag.ContinueOnError)
	fs.SetOutput(io.Discard)
	return fs
}

func parseKey(name, value string) (ed25519.PublicKey, error) {
	if len(value) == 0 {
		return nil, errors.Wrapf(errUsage, "%s is required", name)
	}

	decoded, err := base58.Decode(value)
	if err != nil || len(decoded) != ed25519.PublicKeySize {
		return nil, errors.Errorf("invalid %s: %q", name, value)
	}
	return decoded, nil
}

func (c *cli) loadKeypair(path string) (ed25519.PrivateKey, error) {
	if len(path) == 0 {
		path = c.config.Keypair
	}
	if len(path) == 0 {
		return nil, errors.Wrap(errUsage, "keypair is required")
	}

	key, err := solana.LoadKeypair(path)
	if err != nil {
		return nil, err
	}

	c.log.WithField("wallet", base58.Encode(key.Public().(ed25519.PublicKey))).Info("loaded wallet")
	return key, nil
}

func (c *cli) fetchPool(pool ed25519.PublicKey) (*nft_airdrop.PoolAccount, error) {
	info, err := c.sc.GetAccountInfo(pool, solana.CommitmentConfirmed)
	if err == solana.ErrNoAccountInfo {
		return nil, errors.Errorf("pool %s does not exist", base58.Encode(pool))
	} else if err != nil {
		return nil, errors.Wrap(err, "failed to get pool account")
	}

	if !bytes.Equal(info.Owner, nft_airdrop.PROGRAM_ID) {
		return nil, errors.Errorf("%s is not owned by the airdrop program", base58.Encode(pool))
	}

	var account nft_airdrop.PoolAccount
	if err := account.Unmarshal(info.Data); err != nil {
		return nil, errors.Wrapf(err, "%s is not a pool", base58.Encode(pool))
	}
	return &account, nil
}

func (c *cli) accountExists(key ed25519.PublicKey) (bool, error) {
	_, err := c.sc.GetAccountInfo(key, solana.CommitmentConfirmed)
	if err == solana.ErrNoAccountInfo {
		return false, nil
	} else if err != nil {
		return false, errors.Wrap(err, "failed to get account info")
	}
	return true, nil
}

func initPool(ctx context.Context, c *cli, args []string) error {
	fs := newFlagSet("init-pool")
	keypairPath := fs.String("k", "", "owner keypair file")
	infoPath := fs.String("i", "", "pool info file")
	if err := fs.Parse(args); err != nil {
		return errors.Wrap(errUsage, err.Error())
	}
	if len(*infoPath) == 0 {
		return errors.Wrap(errUsage, "pool info is required")
	}

	owner, err := c.loadKeypair(*keypairPath)
	if err != nil {
		return err
	}
	ownerKey := owner.Public().(ed25519.PublicKey)

	info, err := loadPoolInfo(*infoPath)
	if err != nil {
		return err
	}
	rewardMint, err := info.RewardMint()
	if err != nil {
		return err
	}

	mint, err := token.NewClient(c.sc, rewardMint).GetMint(solana.CommitmentConfirmed)
	if err != nil {
		return errors.Wrap(err, "failed to get reward mint")
	}

	schedule, err := info.ToSchedule(mint.Decimals)
	if err != nil {
		return err
	}

	rand, _, err := ed25519.GenerateKey(nil)
	if err != nil {
		return errors.Wrap(err, "failed to generate derivation seed")
	}

	pool, bump, err := nft_airdrop.GetPoolAddress(&nft_airdrop.GetPoolAddressArgs{
		Rand: rand,
	})
	if err != nil {
		return errors.Wrap(err, "failed to derive pool address")
	}

	createRewardAccount, rewardAccount, err := token.CreateAssociatedTokenAccount(ownerKey, pool, rewardMint)
	if err != nil {
		return errors.Wrap(err, "failed to derive reward account")
	}

	ix := nft_airdrop.NewInitPoolInstruction(
		&nft_airdrop.InitPoolInstructionAccounts{
			Owner:         ownerKey,
			Pool:          pool,
			Rand:          rand,
			RewardMint:    rewardMint,
			RewardAccount: rewardAccount,
		},
		&nft_airdrop.InitPoolInstructionArgs{
			Bump:            bump,
			Schedule:        schedule,
			Period:          info.Period,
			StakeCollection: info.Symbol,
		},
	)

	sig, err := c.submitter.Submit(ctx, []ed25519.PrivateKey{owner}, createRewardAccount, ix)
	if err != nil {
		return err
	}

	fmt.Fprintf(c.out, "POOL : %s\n", base58.Encode(pool))
	fmt.Fprintf(c.out, "Transaction ID : %s\n", base58.Encode(sig[:]))
	return nil
}

func getPool(_ context.Context, c *cli, args []string) error {
	fs := newFlagSet("get-pool")
	poolArg := fs.String("p", "", "pool address")
	if err := fs.Parse(args); err != nil {
		return errors.Wrap(errUsage, err.Error())
	}

	poolKey, err := parseKey("pool", *poolArg)
	if err != nil {
		return err
	}

	pool, err := c.fetchPool(poolKey)
	if err != nil {
		return err
	}

	mint, err := token.NewClient(c.sc, pool.RewardMint).GetMint(solana.CommitmentConfirmed)
	if err != nil {
		return errors.Wrap(err, "failed to get reward mint")
	}

	balance, _, err := c.sc.GetTokenAccountBalance(pool.RewardAccount)
	if err != nil && err != solana.ErrNoBalance {
		return errors.Wrap(err, "failed to get reward balance")
	}

	printPool(c.out, pool, mint.Decimals, balance)
	return nil
}

func printPool(out io.Writer, pool *nft_airdrop.PoolAccount, decimals uint8, balance uint64) {
	fmt.Fprintln(out, "        Pool Data")
	fmt.Fprintf(out, "Owner : %s\n", base58.Encode(pool.Owner))
	fmt.Fprintf(out, "Token : %s\n", base58.Encode(pool.RewardMint))
	fmt.Fprintf(out, "Token Address : %s\n", base58.Encode(pool.RewardAccount))
	fmt.Fprintf(out, "Balance : %s\n", FromRawAmount(balance, decimals))
	fmt.Fprintf(out, "period : %ds\n", pool.Period)
	fmt.Fprintf(out, "Collection symbol : %s\n", pool.StakeCollection)

	w := tabwriter.NewWriter(out, 0, 4, 4, ' ', 0)
	fmt.Fprintln(w, "when\tamount")
	for _, entry := range pool.Schedule {
		when := time.Unix(int64(entry.AirdropTime), 0).UTC().Format(time.RFC3339)
		fmt.Fprintf(w, "%s\t%s\n", when, FromRawAmount(entry.AirdropAmount, decimals))
	}
	w.Flush()
}

type nftFlags struct {
	keypair string
	pool    string
	mint    string
}

func parseNftFlags(name string, args []string) (*nftFlags, error) {
	var f nftFlags

	fs := newFlagSet(name)
	fs.StringVar(&f.keypair, "k", "", "holder keypair file")
	fs.StringVar(&f.pool, "p", "", "pool address")
	fs.StringVar(&f.mint, "m", "", "nft mint")
	if err := fs.Parse(args); err != nil {
		return nil, errors.Wrap(errUsage, err.Error())
	}
	return &f, nil
}

func initNftData(ctx context.Context, c *cli, args []string) error {
	f, err := parseNftFlags("init-nft-data", args)
	if err != nil {
		return err
	}

	pool, err := parseKey("pool", f.pool)
	if err != nil {
		return err
	}
	nftMint, err := parseKey("nft mint", f.mint)
	if err != nil {
		return err
	}
	payer, err := c.loadKeypair(f.keypair)
	if err != nil {
		return err
	}

	nftData, bump, err := nft_airdrop.GetNftDataAddress(&nft_airdrop.GetNftDataAddressArgs{
		NftMint: nftMint,
		Pool:    pool,
	})
	if err != nil {
		return errors.Wrap(err, "failed to derive nft data address")
	}

	ix := nft_airdrop.NewInitNftDataInstruction(
		&nft_airdrop.InitNftDataInstructionAccounts{
			Payer:   payer.Public().(ed25519.PublicKey),
			Pool:    pool,
			NftMint: nftMint,
			NftData: nftData,
		},
		&nft_airdrop.InitNftDataInstructionArgs{
			Bump: bump,
		},
	)

	sig, err := c.submitter.Submit(ctx, []ed25519.PrivateKey{payer}, ix)
	if err != nil {
		return err
	}

	fmt.Fprintf(c.out, "NFT DATA : %s\n", base58.Encode(nftData))
	fmt.Fprintf(c.out, "Transaction ID : %s\n", base58.Encode(sig[:]))
	return nil
}

func claim(ctx context.Context, c *cli, args []string) error {
	f, err := parseNftFlags("claim", args)
	if err != nil {
		return err
	}

	poolKey, err := parseKey("pool", f.pool)
	if err != nil {
		return err
	}
	nftMint, err := parseKey("nft mint", f.mint)
	if err != nil {
		return err
	}
	holder, err := c.loadKeypair(f.keypair)
	if err != nil {
		return err
	}
	holderKey := holder.Public().(ed25519.PublicKey)

	pool, err := c.fetchPool(poolKey)
	if err != nil {
		return err
	}

	nftData, _, err := nft_airdrop.GetNftDataAddress(&nft_airdrop.GetNftDataAddressArgs{
		NftMint: nftMint,
		Pool:    poolKey,
	})
	if err != nil {
		return errors.Wrap(err, "failed to derive nft data address")
	}

	nftMetadata, _, err := metadata.GetMetadataAddress(nftMint)
	if err != nil {
		return errors.Wrap(err, "failed to derive metadata address")
	}

	nftAccount, err := token.GetAssociatedAccount(holderKey, nftMint)
	if err != nil {
		return errors.Wrap(err, "failed to derive nft account")
	}

	var instructions []solana.Instruction

	createTokenTo, tokenTo, err := token.CreateAssociatedTokenAccount(holderKey, holderKey, pool.RewardMint)
	if err != nil {
		return errors.Wrap(err, "failed to derive reward destination")
	}
	exists, err := c.accountExists(tokenTo)
	if err != nil {
		return err
	}
	if !exists {
		instructions = append(instructions, createTokenTo)
	}

	instructions = append(instructions, nft_airdrop.NewAirdropInstruction(
		&nft_airdrop.AirdropInstructionAccounts{
			Owner:       holderKey,
			Pool:        poolKey,
			NftMint:     nftMint,
			NftMetadata: nftMetadata,
			NftAccount:  nftAccount,
			NftData:     nftData,
			TokenFrom:   pool.RewardAccount,
			TokenTo:     tokenTo,
		},
	))

	sig, err := c.submitter.Submit(ctx, []ed25519.PrivateKey{holder}, instructions...)
	if err != nil {
		return err
	}

	fmt.Fprintf(c.out, "Transaction ID : %s\n", base58.Encode(sig[:]))
	return nil
}

func redeem(ctx context.Context, c *cli, args []string) error {
	fs := newFlagSet("redeem")
	keypairPath := fs.String("k", "", "owner keypair file")
	poolArg := fs.String("p", "", "pool address")
	amountArg := fs.String("a", "", "amount in whole tokens")
	destinationArg := fs.String("t", "", "destination token account")
	if err := fs.Parse(args); err != nil {
		return errors.Wrap(errUsage, err.Error())
	}

	poolKey, err := parseKey("pool", *poolArg)
	if err != nil {
		return err
	}
	destination, err := parseKey("destination", *destinationArg)
	if err != nil {
		return err
	}
	if len(*amountArg) == 0 {
		return errors.Wrap(errUsage, "amount is required")
	}
	owner, err := c.loadKeypair(*keypairPath)
	if err != nil {
		return err
	}

	pool, err := c.fetchPool(poolKey)
	if err != nil {
		return err
	}

	mint, err := token.NewClient(c.sc, pool.RewardMint).GetMint(solana.CommitmentConfirmed)
	if err != nil {
		return errors.Wrap(err, "failed to get reward mint")
	}

	amount, err := ToRawAmount(*amountArg, mint.Decimals)
	if err != nil {
		return err
	}

	ix := nft_airdrop.NewRedeemTokenInstruction(
		&nft_airdrop.RedeemTokenInstructionAccounts{
			Owner:     owner.Public().(ed25519.PublicKey),
			Pool:      poolKey,
			TokenFrom: pool.RewardAccount,
			TokenTo:   destination,
		},
		&nft_airdrop.RedeemTokenInstructionArgs{
			Amount: amount,
		},
	)

	sig, err := c.submitter.Submit(ctx, []ed25519.PrivateKey{owner}, ix)
	if err != nil {
		return err
	}

	fmt.Fprintf(c.out, "Transaction ID : %s\n", base58.Encode(sig[:]))
	return nil
}
