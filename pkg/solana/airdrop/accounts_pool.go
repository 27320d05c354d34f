package nft_airdrop

import (
	"bytes"
	"crypto/ed25519"
	"fmt"
	"strconv"

	"github.com/mr-tron/base58/base58"

	"github.com/code-payments/nft-airdrop/pkg/solana/binary"
	"github.com/code-payments/nft-airdrop/pkg/solana/metadata"
)

const (
	MaxScheduleLength = 10
	MaxSymbolLength   = metadata.MaxSymbolLength
)

// PoolAccount is the custody record of a reward pool.
type PoolAccount struct {
	Owner         ed25519.PublicKey
	Rand          ed25519.PublicKey
	RewardMint    ed25519.PublicKey
	RewardAccount ed25519.PublicKey

	Schedule []Schedule
	Period   uint64

	StakeCollection string
	Bump            uint8
}

// PoolAccountSize is the space allocated for a pool. It does not reserve room
// for the period, so a pool with a full schedule and a full length collection
// symbol cannot be serialized.
const PoolAccountSize = (8 + // discriminator
	32 + // owner
	32 + // rand
	32 + // reward_mint
	32 + // reward_account

	4 + // schedule
	MaxScheduleLength*ScheduleSize +

	4 + // stake_collection
	MaxSymbolLength +

	1) // bump

var poolAccountDiscriminator = []byte{241, 154, 109, 4, 17, 177, 109, 188}

// Clones a PoolAccount instance.
func (obj *PoolAccount) Clone() *PoolAccount {
	schedule := make([]Schedule, len(obj.Schedule))
	copy(schedule, obj.Schedule)

	return &PoolAccount{
		Owner:           obj.Owner,
		Rand:            obj.Rand,
		RewardMint:      obj.RewardMint,
		RewardAccount:   obj.RewardAccount,
		Schedule:        schedule,
		Period:          obj.Period,
		StakeCollection: obj.StakeCollection,
		Bump:            obj.Bump,
	}
}

func (obj *PoolAccount) String() string {
	var owner, rand, rewardMint, rewardAccount string

	if obj.Owner != nil {
		owner = base58.Encode(obj.Owner)
	}
	if obj.Rand != nil {
		rand = base58.Encode(obj.Rand)
	}
	if obj.RewardMint != nil {
		rewardMint = base58.Encode(obj.RewardMint)
	}
	if obj.RewardAccount != nil {
		rewardAccount = base58.Encode(obj.RewardAccount)
	}

	scheduleStr := "["
	for _, entry := range obj.Schedule {
		scheduleStr += fmt.Sprintf("%s, ", entry.String())
	}
	scheduleStr += "]"

	return "PoolAccount {" +
		"  owner='" + owner + "'" +
		", rand='" + rand + "'" +
		", reward_mint='" + rewardMint + "'" +
		", reward_account='" + rewardAccount + "'" +
		", schedule=" + scheduleStr +
		", period='" + strconv.FormatUint(obj.Period, 10) + "'" +
		", stake_collection='" + obj.StakeCollection + "'" +
		", bump='" + strconv.Itoa(int(obj.Bump)) + "'" +
		"}"
}

// serializedSize is the number of bytes the pool occupies once encoded, which
// may exceed PoolAccountSize.
func (obj *PoolAccount) serializedSize() int {
	return 8 + 4*32 +
		getScheduleSize(len(obj.Schedule)) +
		8 +
		4 + len(obj.StakeCollection) +
		1
}

// Fits reports whether the pool can be stored in PoolAccountSize bytes with
// its schedule and collection symbol within bounds.
func (obj *PoolAccount) Fits() bool {
	if len(obj.Schedule) > MaxScheduleLength || len(obj.StakeCollection) > MaxSymbolLength {
		return false
	}
	return obj.serializedSize() <= PoolAccountSize
}

// Marshal serializes the pool into a buffer of PoolAccountSize bytes.
//
// ErrAccountTooLarge is returned when the encoded pool does not fit in the
// allocated space, or when the schedule or collection symbol exceed their
// bounds.
func (obj *PoolAccount) Marshal() ([]byte, error) {
	if !obj.Fits() {
		return nil, ErrAccountTooLarge
	}

	data := make([]byte, PoolAccountSize)

	var offset int

	copy(data, poolAccountDiscriminator)
	offset += len(poolAccountDiscriminator)

	binary.PutKey32(data[offset:], obj.Owner, &offset)
	binary.PutKey32(data[offset:], obj.Rand, &offset)
	binary.PutKey32(data[offset:], obj.RewardMint, &offset)
	binary.PutKey32(data[offset:], obj.RewardAccount, &offset)

	putSchedule(data, obj.Schedule, &offset)
	binary.PutUint64(data[offset:], obj.Period, &offset)

	binary.PutString(data[offset:], obj.StakeCollection, 0, &offset)
	binary.PutUint8(data[offset:], obj.Bump, &offset)

	return data, nil
}

// Unmarshal deserializes the pool from the provided buffer.
//
// ErrDiscriminatorMismatch is returned when the buffer holds a different
// account type, and ErrInvalidAccountData when it cannot be decoded.
func (obj *PoolAccount) Unmarshal(data []byte) error {
	if len(data) < len(poolAccountDiscriminator) {
		return ErrInvalidAccountData
	}
	if !bytes.Equal(data[:len(poolAccountDiscriminator)], poolAccountDiscriminator) {
		return ErrDiscriminatorMismatch
	}

	offset := len(poolAccountDiscriminator)
	if len(data) < offset+4*32 {
		return ErrInvalidAccountData
	}

	binary.GetKey32(data[offset:], &obj.Owner, &offset)
	binary.GetKey32(data[offset:], &obj.Rand, &offset)
	binary.GetKey32(data[offset:], &obj.RewardMint, &offset)
	binary.GetKey32(data[offset:], &obj.RewardAccount, &offset)

	if err := getSchedule(data, &obj.Schedule, MaxScheduleLength, &offset); err != nil {
		return err
	}

	if len(data) < offset+8 {
		return ErrInvalidAccountData
	}
	binary.GetUint64(data[offset:], &obj.Period, &offset)

	if err := binary.GetString(data[offset:], &obj.StakeCollection, MaxSymbolLength, &offset); err != nil {
		return ErrInvalidAccountData
	}

	if len(data) < offset+1 {
		return ErrInvalidAccountData
	}
	binary.GetUint8(data[offset:], &obj.Bump, &offset)

	return nil
}

// IsPoolAccount reports whether the data carries the pool discriminator.
func IsPoolAccount(data []byte) bool {
	return bytes.HasPrefix(data, poolAccountDiscriminator)
}
