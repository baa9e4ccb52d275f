package runtime

import (
	"bytes"
	"crypto/ed25519"
	"fmt"

	"github.com/mr-tron/base58"

	"github.com/code-payments/locker-bridge/pkg/solana"
)

// AccountInfo is a program's view of an account for the duration of a single
// instruction. Programs mutate Lamports and Data in place; the host decides
// whether the mutation is committed.
type AccountInfo struct {
	Key        ed25519.PublicKey
	Owner      ed25519.PublicKey
	Lamports   uint64
	Data       []byte
	Executable bool

	IsSigner   bool
	IsWritable bool
}

// Clone returns a deep copy of the account.
func (a *AccountInfo) Clone() *AccountInfo {
	cloned := *a
	cloned.Key = append(ed25519.PublicKey(nil), a.Key...)
	cloned.Owner = append(ed25519.PublicKey(nil), a.Owner...)
	cloned.Data = append([]byte(nil), a.Data...)
	return &cloned
}

// IsOwnedBy reports whether the account is owned by program.
func (a *AccountInfo) IsOwnedBy(program ed25519.PublicKey) bool {
	return bytes.Equal(a.Owner, program)
}

// HasKey reports whether the account lives at address.
func (a *AccountInfo) HasKey(address ed25519.PublicKey) bool {
	return bytes.Equal(a.Key, address)
}

func (a *AccountInfo) String() string {
	return fmt.Sprintf(
		"AccountInfo{key=%s,owner=%s,lamports=%d,data_len=%d,executable=%t,signer=%t,writable=%t}",
		base58.Encode(a.Key),
		base58.Encode(a.Owner),
		a.Lamports,
		len(a.Data),
		a.Executable,
		a.IsSigner,
		a.IsWritable,
	)
}

// AccountIterator walks the positional account list handed to a program.
type AccountIterator struct {
	accounts []*AccountInfo
	next     int
}

func NewAccountIterator(accounts []*AccountInfo) *AccountIterator {
	return &AccountIterator{accounts: accounts}
}

// Next returns the next account, or solana.ErrNotEnoughAccountKeys once the
// list is exhausted.
func (it *AccountIterator) Next() (*AccountInfo, error) {
	if it.next >= len(it.accounts) {
		return nil, solana.ErrNotEnoughAccountKeys
	}

	account := it.accounts[it.next]
	it.next++
	return account, nil
}
