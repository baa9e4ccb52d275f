package binary

import (
	"crypto/ed25519"
	"encoding/binary"
	"math"

	"github.com/holiman/uint256"
)

// The helpers write to or read from the start of the slice they're given and
// advance offset past the encoded value. Integers are little endian unless
// the name says otherwise.

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

func PutFloat64(dst []byte, v float64, offset *int) {
	binary.LittleEndian.PutUint64(dst, math.Float64bits(v))
	*offset += 8
}

func PutBool(dst []byte, v bool, offset *int) {
	if v {
		dst[0] = 1
	} else {
		dst[0] = 0
	}
	*offset += 1
}

func PutUint8(dst []byte, v uint8, offset *int) {
	dst[0] = v
	*offset += 1
}

func PutOptionalUint64(dst []byte, v *uint64, offset *int, optionSize int) {
	if v != nil {
		dst[0] = 1
		binary.LittleEndian.PutUint64(dst[optionSize:], *v)
	}
	*offset += optionSize + 8
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
	}
	*offset += optionSize + ed25519.PublicKeySize
}

func GetUint64(src []byte, dst *uint64, offset *int) {
	*dst = binary.LittleEndian.Uint64(src)
	*offset += 8
}

func GetFloat64(src []byte, dst *float64, offset *int) {
	*dst = math.Float64frombits(binary.LittleEndian.Uint64(src))
	*offset += 8
}

func GetBool(src []byte, dst *bool, offset *int) {
	*dst = src[0] == 1
	*offset += 1
}

func GetUint8(src []byte, dst *uint8, offset *int) {
	*dst = src[0]
	*offset += 1
}

func GetOptionalUint64(src []byte, dst **uint64, offset *int, optionSize int) {
	if src[0] == 1 {
		val := binary.LittleEndian.Uint64(src[optionSize:])
		*dst = &val
	}
	*offset += optionSize + 8
}

// PutUint256BE writes v as 32 big endian bytes. A nil v is written as zero.
func PutUint256BE(dst []byte, v *uint256.Int, offset *int) {
	var encoded [32]byte
	if v != nil {
		encoded = v.Bytes32()
	}
	copy(dst, encoded[:])
	*offset += 32
}

func GetUint256BE(src []byte, dst **uint256.Int, offset *int) {
	*dst = new(uint256.Int).SetBytes32(src[:32])
	*offset += 32
}
