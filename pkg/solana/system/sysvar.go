package system

import (
	"bytes"
	"crypto/ed25519"

	"github.com/mr-tron/base58/base58"
	"github.com/pkg/errors"

	"github.com/code-payments/locker-bridge/pkg/solana/binary"
)

// https://explorer.solana.com/address/11111111111111111111111111111111
var SystemAccount ed25519.PublicKey

// SysVarProgram owns every sysvar account.
var SysVarProgram ed25519.PublicKey

// RentSysVar points to the system variable "Rent"
//
// Source: https://github.com/solana-labs/solana/blob/f02a78d8fff2dd7297dc6ce6eb5a68a3002f5359/sdk/src/sysvar/rent.rs#L11
var RentSysVar ed25519.PublicKey

func init() {
	var err error

	RentSysVar, err = base58.Decode("SysvarRent111111111111111111111111111111111")
	if err != nil {
		panic(err)
	}

	SystemAccount, err = base58.Decode("11111111111111111111111111111111")
	if err != nil {
		panic(err)
	}

	SysVarProgram, err = base58.Decode("Sysvar1111111111111111111111111111111111111")
	if err != nil {
		panic(err)
	}
}

// Reference: https://github.com/solana-labs/solana/blob/f02a78d8fff2dd7297dc6ce6eb5a68a3002f5359/sdk/program/src/rent.rs
const (
	RentSize = 8 + // lamports_per_byte_year
		8 + // exemption_threshold
		1 // burn_percent

	// Account storage overhead for calculation of base rent, in bytes.
	AccountStorageOverhead = 128

	DefaultLamportsPerByteYear = 3480
	DefaultExemptionThreshold  = 2.0
	DefaultBurnPercent         = 50
)

var ErrInvalidRentSysVar = errors.New("invalid rent sysvar")

type Rent struct {
	LamportsPerByteYear uint64
	ExemptionThreshold  float64
	BurnPercent         uint8
}

// DefaultRent returns the rent parameters used by mainnet-beta.
func DefaultRent() Rent {
	return Rent{
		LamportsPerByteYear: DefaultLamportsPerByteYear,
		ExemptionThreshold:  DefaultExemptionThreshold,
		BurnPercent:         DefaultBurnPercent,
	}
}

// MinimumBalance is the lamport balance an account of the given data size
// needs to be rent exempt.
func (r Rent) MinimumBalance(dataSize uint64) uint64 {
	bytesPerYear := (AccountStorageOverhead + dataSize) * r.LamportsPerByteYear
	return uint64(float64(bytesPerYear) * r.ExemptionThreshold)
}

func (r Rent) Marshal() []byte {
	res := make([]byte, RentSize)

	var offset int
	binary.PutUint64(res[offset:], r.LamportsPerByteYear, &offset)
	binary.PutFloat64(res[offset:], r.ExemptionThreshold, &offset)
	binary.PutUint8(res[offset:], r.BurnPercent, &offset)

	return res
}

func (r *Rent) Unmarshal(data []byte) error {
	if len(data) != RentSize {
		return ErrInvalidRentSysVar
	}

	var offset int
	binary.GetUint64(data[offset:], &r.LamportsPerByteYear, &offset)
	binary.GetFloat64(data[offset:], &r.ExemptionThreshold, &offset)
	binary.GetUint8(data[offset:], &r.BurnPercent, &offset)

	return nil
}

// GetRentFromAccount reads the rent parameters out of the rent sysvar account.
func GetRentFromAccount(key ed25519.PublicKey, data []byte) (Rent, error) {
	var r Rent
	if !bytes.Equal(key, RentSysVar) {
		return r, ErrInvalidRentSysVar
	}
	if err := r.Unmarshal(data); err != nil {
		return r, err
	}
	return r, nil
}
