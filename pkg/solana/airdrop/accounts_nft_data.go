package nft_airdrop

import (
	"bytes"
	"crypto/ed25519"
	"strconv"

	"github.com/mr-tron/base58/base58"

	"github.com/code-payments/nft-airdrop/pkg/solana/binary"
)

// NftDataAccount is the claim record of a single NFT within a pool.
type NftDataAccount struct {
	NftMint         ed25519.PublicKey
	LastAirdropTime uint64
	Bump            uint8
}

const NftDataAccountSize = (8 + // discriminator
	32 + // nft_mint
	8 + // last_airdrop_time
	1) // bump

var nftDataAccountDiscriminator = []byte{40, 79, 175, 54, 89, 0, 192, 47}

func (obj *NftDataAccount) Clone() *NftDataAccount {
	return &NftDataAccount{
		NftMint:         obj.NftMint,
		LastAirdropTime: obj.LastAirdropTime,
		Bump:            obj.Bump,
	}
}

func (obj *NftDataAccount) String() string {
	var nftMint string
	if obj.NftMint != nil {
		nftMint = base58.Encode(obj.NftMint)
	}

	return "NftDataAccount {" +
		"  nft_mint='" + nftMint + "'" +
		", last_airdrop_time='" + strconv.FormatUint(obj.LastAirdropTime, 10) + "'" +
		", bump='" + strconv.Itoa(int(obj.Bump)) + "'" +
		"}"
}

func (obj *NftDataAccount) Marshal() []byte {
	data := make([]byte, NftDataAccountSize)

	var offset int

	copy(data, nftDataAccountDiscriminator)
	offset += len(nftDataAccountDiscriminator)

	binary.PutKey32(data[offset:], obj.NftMint, &offset)
	binary.PutUint64(data[offset:], obj.LastAirdropTime, &offset)
	binary.PutUint8(data[offset:], obj.Bump, &offset)

	return data
}

func (obj *NftDataAccount) Unmarshal(data []byte) error {
	if len(data) < len(nftDataAccountDiscriminator) {
		return ErrInvalidAccountData
	}
	if !bytes.Equal(data[:len(nftDataAccountDiscriminator)], nftDataAccountDiscriminator) {
		return ErrDiscriminatorMismatch
	}
	if len(data) < NftDataAccountSize {
		return ErrInvalidAccountData
	}

	offset := len(nftDataAccountDiscriminator)

	binary.GetKey32(data[offset:], &obj.NftMint, &offset)
	binary.GetUint64(data[offset:], &obj.LastAirdropTime, &offset)
	binary.GetUint8(data[offset:], &obj.Bump, &offset)

	return nil
}
