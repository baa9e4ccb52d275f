package locker

import (
	"crypto/ed25519"
	"fmt"

	"github.com/mr-tron/base58"

	"github.com/code-payments/locker-bridge/pkg/solana"
)

const (
	LockerAccountSize = (1 + // is_initialized
		32 + // authority
		8 + // total_locked
		8) // total_minted
)

// LockerAccount is the bridge ledger. It tracks how many lamports are locked
// in the bridge and how many wrapped tokens the bridge has minted.
type LockerAccount struct {
	IsInitialized bool
	Authority     ed25519.PublicKey
	TotalLocked   uint64
	TotalMinted   uint64
}

func (obj *LockerAccount) Marshal() []byte {
	data := make([]byte, LockerAccountSize)

	var offset int

	putBool(data, obj.IsInitialized, &offset)
	putKey(data, obj.Authority, &offset)
	putUint64(data, obj.TotalLocked, &offset)
	putUint64(data, obj.TotalMinted, &offset)

	return data
}

func (obj *LockerAccount) Unmarshal(data []byte) error {
	if len(data) != LockerAccountSize {
		return solana.ErrInvalidAccountData
	}

	var offset int

	switch data[offset] {
	case 0:
		obj.IsInitialized = false
	case 1:
		obj.IsInitialized = true
	default:
		return solana.ErrInvalidAccountData
	}
	offset += 1

	getKey(data, &obj.Authority, &offset)
	getUint64(data, &obj.TotalLocked, &offset)
	getUint64(data, &obj.TotalMinted, &offset)

	return nil
}

func (obj *LockerAccount) String() string {
	return fmt.Sprintf(
		"LockerAccount{is_initialized=%t,authority=%s,total_locked=%d,total_minted=%d}",
		obj.IsInitialized,
		base58.Encode(obj.Authority),
		obj.TotalLocked,
		obj.TotalMinted,
	)
}
