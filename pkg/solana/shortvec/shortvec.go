// Package shortvec implements the compact-u16 length prefix used in the
// transaction wire format.
//
// Reference: https://docs.solana.com/developing/programming-model/transactions#compact-array-format
package shortvec

import (
	"io"
	"math"

	"github.com/pkg/errors"
)

// MaxEncodedSize is the number of bytes needed to encode math.MaxUint16.
const MaxEncodedSize = 3

var (
	ErrLengthTooLarge = errors.Errorf("length exceeds %d", math.MaxUint16)
	ErrNonCanonical   = errors.New("non canonical length encoding")
)

// AppendLen appends the encoding of n to dst.
func AppendLen(dst []byte, n int) ([]byte, error) {
	if n < 0 || n > math.MaxUint16 {
		return dst, ErrLengthTooLarge
	}

	for n >= 0x80 {
		dst = append(dst, byte(n&0x7f)|0x80)
		n >>= 7
	}
	return append(dst, byte(n)), nil
}

// EncodeLen writes the encoding of n to w, returning the number of bytes
// written.
func EncodeLen(w io.Writer, n int) (int, error) {
	var buf [MaxEncodedSize]byte

	encoded, err := AppendLen(buf[:0], n)
	if err != nil {
		return 0, err
	}
	return w.Write(encoded)
}

// DecodeLen reads an encoded length from r. Encodings longer than necessary,
// or of values over math.MaxUint16, are rejected.
func DecodeLen(r io.Reader) (int, error) {
	var (
		val  int
		next [1]byte
	)

	for i := 0; i < MaxEncodedSize; i++ {
		if _, err := io.ReadFull(r, next[:]); err != nil {
			return 0, err
		}

		b := next[0]
		if i > 0 && b == 0 {
			return 0, ErrNonCanonical
		}

		val |= int(b&0x7f) << (7 * i)
		if b&0x80 == 0 {
			if val > math.MaxUint16 {
				return 0, ErrLengthTooLarge
			}
			return val, nil
		}
	}

	return 0, ErrLengthTooLarge
}
