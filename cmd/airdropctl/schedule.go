package main

import (
	"crypto/ed25519"
	"encoding/json"
	"math/big"
	"os"
	"time"

	"github.com/mr-tron/base58/base58"
	"github.com/pkg/errors"

	nft_airdrop "github.com/code-payments/nft-airdrop/pkg/solana/airdrop"
)

// PoolInfo is the operator's description of a pool to create.
//
// Example:
//
//	{
//	  "token": "kinXdEcpDQeHPEuQnqmUgtYykqKGVFq6CeVX5iAHJq6",
//	  "period": 86400,
//	  "symbol": "CODE",
//	  "schedule": [
//	    {"time": "2022-03-01T00:00:00Z", "amount": "1.5"}
//	  ]
//	}
type PoolInfo struct {
	Token    string          `json:"token"`
	Period   uint64          `json:"period"`
	Symbol   string          `json:"symbol"`
	Schedule []ScheduleEntry `json:"schedule"`
}

type ScheduleEntry struct {
	// Time is an RFC 3339 timestamp.
	Time string `json:"time"`

	// Amount is a decimal number of whole tokens. A JSON number is accepted as
	// well.
	Amount json.Number `json:"amount"`
}

func loadPoolInfo(path string) (*PoolInfo, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.Wrapf(err, "failed to read pool info %s", path)
	}

	var info PoolInfo
	if err := json.Unmarshal(raw, &info); err != nil {
		return nil, errors.Wrap(err, "invalid pool info")
	}
	return &info, nil
}

func (i *PoolInfo) RewardMint() (ed25519.PublicKey, error) {
	decoded, err := base58.Decode(i.Token)
	if err != nil || len(decoded) != ed25519.PublicKeySize {
		return nil, errors.Errorf("invalid token mint: %q", i.Token)
	}
	return decoded, nil
}

// ToSchedule converts the entries to on chain units, scaling amounts by the
// reward mint's decimals. Amounts must convert to whole raw units, and the
// schedule together with the symbol must fit in a pool account.
func (i *PoolInfo) ToSchedule(decimals uint8) ([]nft_airdrop.Schedule, error) {
	if len(i.Schedule) > nft_airdrop.MaxScheduleLength {
		return nil, errors.Errorf("schedule has %d entries, at most %d are supported", len(i.Schedule), nft_airdrop.MaxScheduleLength)
	}

	schedule := make([]nft_airdrop.Schedule, len(i.Schedule))
	for idx, entry := range i.Schedule {
		at, err := time.Parse(time.RFC3339, entry.Time)
		if err != nil {
			return nil, errors.Wrapf(err, "invalid time for entry %d", idx)
		}
		if at.Unix() < 0 {
			return nil, errors.Errorf("entry %d is before the unix epoch", idx)
		}

		amount, err := ToRawAmount(entry.Amount.String(), decimals)
		if err != nil {
			return nil, errors.Wrapf(err, "invalid amount for entry %d", idx)
		}

		schedule[idx] = nft_airdrop.Schedule{
			AirdropTime:   uint64(at.Unix()),
			AirdropAmount: amount,
		}
	}

	pool := nft_airdrop.PoolAccount{Schedule: schedule, Period: i.Period, StakeCollection: i.Symbol}
	if !pool.Fits() {
		return nil, errors.Errorf(
			"a %d entry schedule with symbol %q does not fit in a pool account of %d bytes",
			len(schedule),
			i.Symbol,
			nft_airdrop.PoolAccountSize,
		)
	}

	return schedule, nil
}

// ToRawAmount converts a decimal number of whole tokens to raw units.
func ToRawAmount(value string, decimals uint8) (uint64, error) {
	amount, ok := new(big.Rat).SetString(value)
	if !ok {
		return 0, errors.Errorf("not a number: %q", value)
	}
	if amount.Sign() < 0 {
		return 0, errors.Errorf("negative amount: %s", value)
	}

	scale := new(big.Int).Exp(big.NewInt(10), big.NewInt(int64(decimals)), nil)
	amount.Mul(amount, new(big.Rat).SetInt(scale))
	if !amount.IsInt() {
		return 0, errors.Errorf("%s has more than %d decimal places", value, decimals)
	}

	raw := amount.Num()
	if !raw.IsUint64() {
		return 0, errors.Errorf("%s overflows", value)
	}
	return raw.Uint64(), nil
}

// FromRawAmount formats raw units as a decimal number of whole tokens.
func FromRawAmount(raw uint64, decimals uint8) string {
	scale := new(big.Int).Exp(big.NewInt(10), big.NewInt(int64(decimals)), nil)
	return new(big.Rat).SetFrac(new(big.Int).SetUint64(raw), scale).FloatString(int(decimals))
}
