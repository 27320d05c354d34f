package binary

import (
	"crypto/ed25519"
	"encoding/binary"

	"github.com/pkg/errors"
)

// ErrUnexpectedEnd is returned by the checked readers when the source buffer
// ends before the value being read.
var ErrUnexpectedEnd = errors.New("unexpected end of buffer")

func PutKey32(dst []byte, src []byte, offset *int) {
	copy(dst, src)
	*offset += ed25519.PublicKeySize
}

func PutOptionalKey32(dst []byte, src []byte, offset *int, optionSize int) {
	if len(src) > 0 {
		dst[0] = 1
		copy(dst[optionSize:], src)
	}

	*offset += optionSize + ed25519.PublicKeySize
}

func PutUint64(dst []byte, v uint64, offset *int) {
	binary.LittleEndian.PutUint64(dst, v)
	*offset += 8
}

func PutInt64(dst []byte, v int64, offset *int) {
	PutUint64(dst, uint64(v), offset)
}

func PutUint32(dst []byte, v uint32, offset *int) {
	binary.LittleEndian.PutUint32(dst, v)
	*offset += 4
}

func PutUint16(dst []byte, v uint16, offset *int) {
	binary.LittleEndian.PutUint16(dst, v)
	*offset += 2
}

func PutUint8(dst []byte, v uint8, offset *int) {
	dst[0] = v
	*offset += 1
}

func PutBool(dst []byte, v bool, offset *int) {
	if v {
		dst[0] = 1
	} else {
		dst[0] = 0
	}
	*offset += 1
}

func PutOptionalUint64(dst []byte, v *uint64, offset *int, optionSize int) {
	if v != nil {
		dst[0] = 1
		binary.LittleEndian.PutUint64(dst[optionSize:], *v)
	}
	*offset += optionSize + 8
}

// PutString writes a u32 length prefixed string, right padded with NUL bytes
// up to padTo bytes when padTo exceeds the string length.
//
// The destination must have room for 4+max(len(v), padTo) bytes.
func PutString(dst []byte, v string, padTo int, offset *int) {
	size := len(v)
	if padTo > size {
		size = padTo
	}

	binary.LittleEndian.PutUint32(dst, uint32(size))
	copy(dst[4:], v)
	for i := 4 + len(v); i < 4+size; i++ {
		dst[i] = 0
	}
	*offset += 4 + size
}

func GetKey32(src []byte, dst *ed25519.PublicKey, offset *int) {
	*dst = make([]byte, ed25519.PublicKeySize)
	copy(*dst, src)
	*offset += ed25519.PublicKeySize
}

func GetOptionalKey32(src []byte, dst *ed25519.PublicKey, offset *int, optionSize int) {
	if src[0] == 1 {
		*dst = make([]byte, ed25519.PublicKeySize)
		copy(*dst, src[optionSize:])
	} else {
		*dst = nil
	}
	*offset += optionSize + ed25519.PublicKeySize
}

func GetUint64(src []byte, dst *uint64, offset *int) {
	*dst = binary.LittleEndian.Uint64(src)
	*offset += 8
}

func GetInt64(src []byte, dst *int64, offset *int) {
	*dst = int64(binary.LittleEndian.Uint64(src))
	*offset += 8
}

func GetUint32(src []byte, dst *uint32, offset *int) {
	*dst = binary.LittleEndian.Uint32(src)
	*offset += 4
}

func GetUint16(src []byte, dst *uint16, offset *int) {
	*dst = binary.LittleEndian.Uint16(src)
	*offset += 2
}

func GetUint8(src []byte, dst *uint8, offset *int) {
	*dst = src[0]
	*offset += 1
}

func GetBool(src []byte, dst *bool, offset *int) {
	*dst = src[0] != 0
	*offset += 1
}

func GetOptionalUint64(src []byte, dst **uint64, offset *int, optionSize int) {
	if src[0] == 1 {
		val := binary.LittleEndian.Uint64(src[optionSize:])
		*dst = &val
	} else {
		*dst = nil
	}
	*offset += optionSize + 8
}

// GetString reads a u32 length prefixed string. Unlike the fixed width
// readers, the length is attacker controlled, so the read is bounds checked
// against both the buffer and maxLen.
func GetString(src []byte, dst *string, maxLen int, offset *int) error {
	if len(src) < 4 {
		return ErrUnexpectedEnd
	}

	size := int(binary.LittleEndian.Uint32(src))
	if size > maxLen {
		return errors.Errorf("string length %d exceeds maximum %d", size, maxLen)
	}
	if len(src) < 4+size {
		return ErrUnexpectedEnd
	}

	*dst = string(src[4 : 4+size])
	*offset += 4 + size
	return nil
}
