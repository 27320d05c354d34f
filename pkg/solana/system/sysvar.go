package system

import (
	"crypto/ed25519"

	"github.com/mr-tron/base58/base58"
	"github.com/pkg/errors"

	"github.com/code-payments/nft-airdrop/pkg/solana/binary"
)

// RentSysVar points to the system variable "Rent"
//
// Source: https://github.com/solana-labs/solana/blob/f02a78d8fff2dd7297dc6ce6eb5a68a3002f5359/sdk/src/sysvar/rent.rs#L11
var RentSysVar ed25519.PublicKey

// ClockSysVar points to the system variable "Clock"
//
// Source: https://github.com/solana-labs/solana/blob/f02a78d8fff2dd7297dc6ce6eb5a68a3002f5359/sdk/program/src/sysvar/clock.rs#L9
var ClockSysVar ed25519.PublicKey

// SysvarOwner owns every sysvar account.
var SysvarOwner ed25519.PublicKey

func init() {
	var err error

	RentSysVar, err = base58.Decode("SysvarRent111111111111111111111111111111111")
	if err != nil {
		panic(err)
	}

	ClockSysVar, err = base58.Decode("SysvarC1ock11111111111111111111111111111111")
	if err != nil {
		panic(err)
	}

	SysvarOwner, err = base58.Decode("Sysvar1111111111111111111111111111111111111")
	if err != nil {
		panic(err)
	}
}

const ClockSize = 5 * 8

var ErrInvalidClockSize = errors.New("invalid clock sysvar size")

// Clock mirrors the layout of the Clock sysvar.
//
// Reference: https://github.com/solana-labs/solana/blob/f02a78d8fff2dd7297dc6ce6eb5a68a3002f5359/sdk/program/src/clock.rs#L105
type Clock struct {
	Slot                uint64
	EpochStartTimestamp int64
	Epoch               uint64
	LeaderScheduleEpoch uint64
	UnixTimestamp       int64
}

func (c *Clock) Marshal() []byte {
	b := make([]byte, ClockSize)

	var offset int
	binary.PutUint64(b[offset:], c.Slot, &offset)
	binary.PutInt64(b[offset:], c.EpochStartTimestamp, &offset)
	binary.PutUint64(b[offset:], c.Epoch, &offset)
	binary.PutUint64(b[offset:], c.LeaderScheduleEpoch, &offset)
	binary.PutInt64(b[offset:], c.UnixTimestamp, &offset)

	return b
}

func (c *Clock) Unmarshal(b []byte) error {
	if len(b) != ClockSize {
		return ErrInvalidClockSize
	}

	var offset int
	binary.GetUint64(b[offset:], &c.Slot, &offset)
	binary.GetInt64(b[offset:], &c.EpochStartTimestamp, &offset)
	binary.GetUint64(b[offset:], &c.Epoch, &offset)
	binary.GetUint64(b[offset:], &c.LeaderScheduleEpoch, &offset)
	binary.GetInt64(b[offset:], &c.UnixTimestamp, &offset)

	return nil
}
