package metadata

import (
	"crypto/ed25519"
	"strings"

	"github.com/pkg/errors"

	"github.com/code-payments/nft-airdrop/pkg/solana/binary"
)

type Key byte

const (
	KeyUninitialized Key = 0
	KeyMetadataV1    Key = 4
)

// Reference: https://github.com/metaplex-foundation/metaplex-program-library/blob/4cbd3d4ba4fcd0b5e2fb9e6ecb8171285c5791a4/token-metadata/program/src/state.rs#L10-L25
const (
	MaxNameLength   = 32
	MaxSymbolLength = 10
	MaxURILength    = 200
	MaxCreatorLimit = 5

	// MaxMetadataLength is the size the metadata program allocates for every
	// metadata account. Newer versions append fields after the ones decoded here.
	MaxMetadataLength = 1 + 32 + 32 + (4 + MaxNameLength) + (4 + MaxSymbolLength) + (4 + MaxURILength) + 2 + 1 + 4 + MaxCreatorLimit*creatorSize + 1 + 1 + 9 + 172

	creatorSize = 32 + 1 + 1
)

var (
	ErrInvalidKey      = errors.New("invalid metadata key")
	ErrTooShort        = errors.New("metadata account data too short")
	ErrTooManyCreators = errors.New("too many creators")
)

type Creator struct {
	Address  ed25519.PublicKey
	Verified bool
	// Share of the seller fee, in percent.
	Share uint8
}

// Metadata is the prefix of a token metadata account shared by all versions of the
// metadata program.
type Metadata struct {
	Key             Key
	UpdateAuthority ed25519.PublicKey
	Mint            ed25519.PublicKey

	// Name, Symbol and URI are stored padded with NUL bytes to their maximum length.
	Name   string
	Symbol string
	URI    string

	SellerFeeBasisPoints uint16
	Creators             []Creator

	PrimarySaleHappened bool
	IsMutable           bool
}

// TrimmedSymbol returns the symbol without NUL padding.
func (m *Metadata) TrimmedSymbol() string {
	return strings.TrimRight(m.Symbol, "\x00")
}

// TrimmedName returns the name without NUL padding.
func (m *Metadata) TrimmedName() string {
	return strings.TrimRight(m.Name, "\x00")
}

// Marshal encodes the metadata the way the metadata program stores it, with
// strings padded to their maximum length and the account sized to
// MaxMetadataLength.
func (m *Metadata) Marshal() ([]byte, error) {
	if len(m.Name) > MaxNameLength || len(m.Symbol) > MaxSymbolLength || len(m.URI) > MaxURILength {
		return nil, errors.New("metadata string exceeds maximum length")
	}
	if len(m.Creators) > MaxCreatorLimit {
		return nil, ErrTooManyCreators
	}

	b := make([]byte, MaxMetadataLength)

	var offset int
	binary.PutUint8(b[offset:], uint8(m.Key), &offset)
	binary.PutKey32(b[offset:], m.UpdateAuthority, &offset)
	binary.PutKey32(b[offset:], m.Mint, &offset)
	binary.PutString(b[offset:], m.Name, MaxNameLength, &offset)
	binary.PutString(b[offset:], m.Symbol, MaxSymbolLength, &offset)
	binary.PutString(b[offset:], m.URI, MaxURILength, &offset)
	binary.PutUint16(b[offset:], m.SellerFeeBasisPoints, &offset)

	if m.Creators == nil {
		binary.PutBool(b[offset:], false, &offset)
	} else {
		binary.PutBool(b[offset:], true, &offset)
		binary.PutUint32(b[offset:], uint32(len(m.Creators)), &offset)
		for _, c := range m.Creators {
			binary.PutKey32(b[offset:], c.Address, &offset)
			binary.PutBool(b[offset:], c.Verified, &offset)
			binary.PutUint8(b[offset:], c.Share, &offset)
		}
	}

	binary.PutBool(b[offset:], m.PrimarySaleHappened, &offset)
	binary.PutBool(b[offset:], m.IsMutable, &offset)

	return b, nil
}

// Unmarshal decodes the version independent prefix of a metadata account.
// Trailing bytes are ignored.
func (m *Metadata) Unmarshal(b []byte) error {
	// key, update authority, mint and the three string length prefixes
	const minLength = 1 + 32 + 32 + 3*4
	if len(b) < minLength {
		return ErrTooShort
	}

	var offset int
	var key uint8
	binary.GetUint8(b[offset:], &key, &offset)
	if Key(key) != KeyMetadataV1 {
		return ErrInvalidKey
	}
	m.Key = Key(key)

	binary.GetKey32(b[offset:], &m.UpdateAuthority, &offset)
	binary.GetKey32(b[offset:], &m.Mint, &offset)

	if err := binary.GetString(b[offset:], &m.Name, MaxNameLength, &offset); err != nil {
		return errors.Wrap(err, "invalid name")
	}
	if err := binary.GetString(b[offset:], &m.Symbol, MaxSymbolLength, &offset); err != nil {
		return errors.Wrap(err, "invalid symbol")
	}
	if err := binary.GetString(b[offset:], &m.URI, MaxURILength, &offset); err != nil {
		return errors.Wrap(err, "invalid uri")
	}

	if len(b) < offset+2+1 {
		return ErrTooShort
	}
	binary.GetUint16(b[offset:], &m.SellerFeeBasisPoints, &offset)

	var hasCreators bool
	binary.GetBool(b[offset:], &hasCreators, &offset)
	m.Creators = nil
	if hasCreators {
		if len(b) < offset+4 {
			return ErrTooShort
		}

		var count uint32
		binary.GetUint32(b[offset:], &count, &offset)
		if count > MaxCreatorLimit {
			return ErrTooManyCreators
		}
		if len(b) < offset+int(count)*creatorSize {
			return ErrTooShort
		}

		m.Creators = make([]Creator, count)
		for i := range m.Creators {
			binary.GetKey32(b[offset:], &m.Creators[i].Address, &offset)
			binary.GetBool(b[offset:], &m.Creators[i].Verified, &offset)
			binary.GetUint8(b[offset:], &m.Creators[i].Share, &offset)
		}
	}

	if len(b) < offset+2 {
		return ErrTooShort
	}
	binary.GetBool(b[offset:], &m.PrimarySaleHappened, &offset)
	binary.GetBool(b[offset:], &m.IsMutable, &offset)

	return nil
}
