package airdrop

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	nft_airdrop "github.com/code-payments/nft-airdrop/pkg/solana/airdrop"
)

func TestFindDueEntry_Window(t *testing.T) {
	schedule := []nft_airdrop.Schedule{
		{AirdropTime: 1000, AirdropAmount: 50},
	}

	for _, tc := range []struct {
		now       uint64
		lastClaim uint64
		eligible  bool
	}{
		{now: 900, lastClaim: 0, eligible: false},
		{now: 1000, lastClaim: 0, eligible: false},
		{now: 1001, lastClaim: 0, eligible: true},
		{now: 1050, lastClaim: 0, eligible: true},
		{now: 1099, lastClaim: 0, eligible: true},
		{now: 1100, lastClaim: 0, eligible: false},
		{now: 1101, lastClaim: 0, eligible: false},
		{now: 1050, lastClaim: 999, eligible: true},
		{now: 1060, lastClaim: 1000, eligible: false},
		{now: 1060, lastClaim: 1050, eligible: false},
	} {
		entry, err := FindDueEntry(schedule, 100, tc.now, tc.lastClaim)
		if !tc.eligible {
			assert.Equal(t, nft_airdrop.ErrInvalidTime, err, "now=%d last=%d", tc.now, tc.lastClaim)
			assert.Nil(t, entry)
			continue
		}

		require.NoError(t, err, "now=%d last=%d", tc.now, tc.lastClaim)
		assert.Equal(t, schedule[0], *entry)
	}
}

func TestFindDueEntry_FirstMatch(t *testing.T) {
	schedule := []nft_airdrop.Schedule{
		{AirdropTime: 500, AirdropAmount: 1},
		{AirdropTime: 1000, AirdropAmount: 2},
		{AirdropTime: 900, AirdropAmount: 3},
	}

	// Both the second and third entries are open at 1050
	entry, err := FindDueEntry(schedule, 200, 1050, 0)
	require.NoError(t, err)
	assert.EqualValues(t, 2, entry.AirdropAmount)

	// Once the second is claimed, the third is no longer eligible either, since
	// it came due before the last claim
	_, err = FindDueEntry(schedule, 200, 1060, 1050)
	assert.Equal(t, nft_airdrop.ErrInvalidTime, err)

	// Order decides, not due time
	reversed := []nft_airdrop.Schedule{schedule[2], schedule[1]}
	entry, err = FindDueEntry(reversed, 200, 1050, 0)
	require.NoError(t, err)
	assert.EqualValues(t, 3, entry.AirdropAmount)
}

func TestFindDueEntry_Empty(t *testing.T) {
	_, err := FindDueEntry(nil, 100, 1050, 0)
	assert.Equal(t, nft_airdrop.ErrInvalidTime, err)
}

func TestFindDueEntry_SaturatingWindow(t *testing.T) {
	schedule := []nft_airdrop.Schedule{
		{AirdropTime: math.MaxUint64 - 10, AirdropAmount: 7},
	}

	entry, err := FindDueEntry(schedule, 100, math.MaxUint64-5, 0)
	require.NoError(t, err)
	assert.EqualValues(t, 7, entry.AirdropAmount)

	assert.EqualValues(t, uint64(math.MaxUint64), windowEnd(math.MaxUint64-10, 100))
	assert.EqualValues(t, 1100, windowEnd(1000, 100))
}
