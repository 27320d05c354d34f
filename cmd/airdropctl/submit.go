package main

import (
	"context"
	"crypto/ed25519"
	"time"

	"github.com/mr-tron/base58/base58"
	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"

	"github.com/code-payments/nft-airdrop/pkg/metrics"
	"github.com/code-payments/nft-airdrop/pkg/retry"
	"github.com/code-payments/nft-airdrop/pkg/retry/backoff"
	"github.com/code-payments/nft-airdrop/pkg/solana"
	nft_airdrop "github.com/code-payments/nft-airdrop/pkg/solana/airdrop"
)

const (
	maxSubmitAttempts = 5
	submitBackoff     = 500 * time.Millisecond
	maxSubmitBackoff  = 5 * time.Second
)

type submitter struct {
	log        *logrus.Entry
	sc         solana.Client
	commitment solana.Commitment
}

func newSubmitter(sc solana.Client, commitment solana.Commitment) *submitter {
	return &submitter{
		log:        logrus.StandardLogger().WithField("type", "airdropctl/submitter"),
		sc:         sc,
		commitment: commitment,
	}
}

// Submit signs the instructions with a fresh blockhash, the first signer paying
// fees, and waits until the transaction reaches the configured commitment.
//
// Transport failures are retried with a new blockhash. Program errors are not,
// and are returned mapped to the airdrop program's named error when possible.
func (s *submitter) Submit(ctx context.Context, signers []ed25519.PrivateKey, instructions ...solana.Instruction) (solana.Signature, error) {
	tracer := metrics.TraceMethodCall(ctx, "airdropctl.submitter", "Submit")
	defer tracer.End()

	log := s.log.WithField("method", "Submit")

	var sig solana.Signature
	_, err := retry.Retry(
		func() error {
			blockhash, err := s.sc.GetLatestBlockhash()
			if err != nil {
				return errors.Wrap(err, "failed to get latest blockhash")
			}

			txn := solana.NewTransaction(signers[0].Public().(ed25519.PublicKey), instructions...)
			txn.SetBlockhash(blockhash)
			if err := txn.Sign(signers...); err != nil {
				return errors.Wrap(err, "failed to sign transaction")
			}

			sig, err = s.sc.SubmitTransaction(txn, s.commitment)
			if err != nil {
				return err
			}

			log.WithField("signature", base58.Encode(sig[:])).Debug("transaction submitted, waiting for confirmation")

			status, err := s.sc.GetSignatureStatus(sig, s.commitment)
			if err != nil {
				return errors.Wrap(err, "failed to confirm transaction")
			}
			if status.ErrorResult != nil {
				return status.ErrorResult
			}
			return nil
		},
		retry.RetriableFunc(isRetriableSubmitError),
		retry.Context(ctx),
		retry.Limit(maxSubmitAttempts),
		retry.BackoffWithJitter(backoff.BinaryExponential(submitBackoff), maxSubmitBackoff, 0.1),
	)
	if err != nil {
		tracer.OnError(err)
		return sig, describeError(err)
	}

	return sig, nil
}

func isRetriableSubmitError(err error) bool {
	var txErr *solana.TransactionError
	return !errors.As(err, &txErr)
}

func describeError(err error) error {
	if programErr, ok := nft_airdrop.GetProgramError(err); ok {
		return errors.Wrap(programErr, "transaction failed")
	}
	return err
}
