// Package shortvec implements the compact-u16 length prefix used in
// transaction wire formats.
package shortvec

import (
	"io"
	"math"

	"github.com/pkg/errors"
)

// MaxEncodedLen is the widest encoding of a length that fits in a uint16.
const MaxEncodedLen = 3

var (
	ErrLenTooLarge  = errors.Errorf("shortvec: len exceeds %d", math.MaxUint16)
	ErrNonCanonical = errors.New("shortvec: non-canonical encoding")
)

// EncodeLen writes len as a compact-u16 and returns the number of bytes
// written.
func EncodeLen(w io.ByteWriter, len int) (n int, err error) {
	if len < 0 || len > math.MaxUint16 {
		return 0, ErrLenTooLarge
	}

	for {
		b := byte(len & 0x7f)
		len >>= 7
		if len != 0 {
			b |= 0x80
		}

		if err := w.WriteByte(b); err != nil {
			return n, err
		}
		n++

		if len == 0 {
			return n, nil
		}
	}
}

// DecodeLen reads a compact-u16 length. Encodings longer than necessary, and
// values beyond a uint16, are rejected.
func DecodeLen(r io.ByteReader) (int, error) {
	var val int
	for i := 0; i < MaxEncodedLen; i++ {
		b, err := r.ReadByte()
		if err != nil {
			return 0, err
		}

		val |= int(b&0x7f) << (i * 7)

		if b&0x80 == 0 {
			if b == 0 && i > 0 {
				return 0, ErrNonCanonical
			}
			if val > math.MaxUint16 {
				return 0, ErrLenTooLarge
			}
			return val, nil
		}
	}

	return 0, ErrLenTooLarge
}
