package airdrop

import (
	"math"

	nft_airdrop "github.com/code-payments/nft-airdrop/pkg/solana/airdrop"
)

// FindDueEntry returns the first schedule entry that an NFT last claimed at
// lastClaim can claim at now. An entry is claimable strictly between its due
// time and the end of its window, and only if the NFT hasn't claimed since it
// became due.
//
// ErrInvalidTime is returned when no entry is claimable.
func FindDueEntry(schedule []nft_airdrop.Schedule, period, now, lastClaim uint64) (*nft_airdrop.Schedule, error) {
	for i := range schedule {
		entry := schedule[i]

		if entry.AirdropTime < now && now < windowEnd(entry.AirdropTime, period) && lastClaim < entry.AirdropTime {
			return &entry, nil
		}
	}
	return nil, nft_airdrop.ErrInvalidTime
}

// windowEnd saturates instead of wrapping for due times near the end of time.
func windowEnd(due, period uint64) uint64 {
	if due > math.MaxUint64-period {
		return math.MaxUint64
	}
	return due + period
}
