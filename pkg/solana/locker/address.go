package locker

import (
	"crypto/ed25519"

	lru "github.com/hashicorp/golang-lru"

	"github.com/code-payments/locker-bridge/pkg/solana"
)

const derivedAddressCacheSize = 1024

var (
	LockerPrefix = []byte("Locker")
	StateSeed    = []byte("Init")
	MintLogSeed  = []byte("Mint")
	BurnLogSeed  = []byte("Burn")
)

// derivedAddresses caches bump seed searches, keyed by program and seed.
var derivedAddresses *lru.ARCCache

func init() {
	var err error
	derivedAddresses, err = lru.NewARC(derivedAddressCacheSize)
	if err != nil {
		panic(err)
	}
}

type derivedAddress struct {
	address ed25519.PublicKey
	bump    uint8
}

// GetLockerStateAddress derives the address of the bridge ledger owned by
// program.
func GetLockerStateAddress(program ed25519.PublicKey) (ed25519.PublicKey, uint8, error) {
	return findAddress(program, StateSeed)
}

// GetMintLogAddress derives the address of the LockAndMint event log owned by
// program.
func GetMintLogAddress(program ed25519.PublicKey) (ed25519.PublicKey, uint8, error) {
	return findAddress(program, MintLogSeed)
}

// GetBurnLogAddress derives the address of the BurnAndRelease event log owned
// by program.
func GetBurnLogAddress(program ed25519.PublicKey) (ed25519.PublicKey, uint8, error) {
	return findAddress(program, BurnLogSeed)
}

// SignerSeeds returns the full seed set, bump included, that authorizes the
// program to sign for the address derived from seed.
func SignerSeeds(seed []byte, bump uint8) [][]byte {
	return [][]byte{LockerPrefix, seed, {bump}}
}

func findAddress(program ed25519.PublicKey, seed []byte) (ed25519.PublicKey, uint8, error) {
	key := string(program) + string(seed)
	if cached, ok := derivedAddresses.Get(key); ok {
		derived := cached.(derivedAddress)
		return append(ed25519.PublicKey(nil), derived.address...), derived.bump, nil
	}

	address, bump, err := solana.FindProgramAddressAndBump(program, LockerPrefix, seed)
	if err != nil {
		return nil, 0, err
	}

	derivedAddresses.Add(key, derivedAddress{
		address: append(ed25519.PublicKey(nil), address...),
		bump:    bump,
	})
	return address, bump, nil
}
