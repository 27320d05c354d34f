package nft_airdrop

import (
	"strconv"

	"github.com/code-payments/nft-airdrop/pkg/solana/binary"
)

// Schedule is a single vesting entry. AirdropAmount becomes claimable by
// every registered NFT once AirdropTime has passed, until the pool's period
// elapses.
type Schedule struct {
	AirdropTime   uint64
	AirdropAmount uint64
}

const ScheduleSize = (8 + // airdrop_time
	8) // airdrop_amount

func (s Schedule) String() string {
	return "Schedule {" +
		"  airdrop_time='" + strconv.FormatUint(s.AirdropTime, 10) + "'" +
		", airdrop_amount='" + strconv.FormatUint(s.AirdropAmount, 10) + "'" +
		"}"
}

func getScheduleSize(entries int) int {
	return 4 + entries*ScheduleSize
}

func putSchedule(dst []byte, v []Schedule, offset *int) {
	binary.PutUint32(dst[*offset:], uint32(len(v)), offset)
	for _, entry := range v {
		binary.PutUint64(dst[*offset:], entry.AirdropTime, offset)
		binary.PutUint64(dst[*offset:], entry.AirdropAmount, offset)
	}
}

func getSchedule(src []byte, dst *[]Schedule, maxLen int, offset *int) error {
	if len(src) < *offset+4 {
		return ErrInvalidAccountData
	}

	var length uint32
	binary.GetUint32(src[*offset:], &length, offset)
	if int(length) > maxLen || len(src) < *offset+int(length)*ScheduleSize {
		return ErrInvalidAccountData
	}

	*dst = make([]Schedule, length)
	for i := range *dst {
		binary.GetUint64(src[*offset:], &(*dst)[i].AirdropTime, offset)
		binary.GetUint64(src[*offset:], &(*dst)[i].AirdropAmount, offset)
	}
	return nil
}
