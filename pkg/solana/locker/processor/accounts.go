package processor

import (
	"crypto/ed25519"

	"github.com/holiman/uint256"
	"github.com/mr-tron/base58/base58"
	"github.com/sirupsen/logrus"

	"github.com/code-payments/locker-bridge/pkg/solana"
	"github.com/code-payments/locker-bridge/pkg/solana/locker"
	"github.com/code-payments/locker-bridge/pkg/solana/runtime"
	"github.com/code-payments/locker-bridge/pkg/solana/system"
)

type deriveFunc func(program ed25519.PublicKey) (ed25519.PublicKey, uint8, error)

func nextSigner(it *runtime.AccountIterator) (*runtime.AccountInfo, error) {
	info, err := it.Next()
	if err != nil {
		return nil, err
	}
	if !info.IsSigner {
		return nil, solana.ErrMissingRequiredSignature
	}
	return info, nil
}

// nextDerived returns the next account, which must live at the program
// address derive produces for programID.
func (h *handler) nextDerived(it *runtime.AccountIterator, derive deriveFunc) (*runtime.AccountInfo, uint8, error) {
	info, err := it.Next()
	if err != nil {
		return nil, 0, err
	}

	expected, bump, err := derive(h.programID)
	if err != nil {
		return nil, 0, err
	}
	if !info.HasKey(expected) {
		h.log.WithFields(logrus.Fields{
			"expected": base58.Encode(expected),
			"actual":   base58.Encode(info.Key),
		}).Debug("account does not match derived address")
		return nil, 0, solana.ErrInvalidAccountData
	}
	return info, bump, nil
}

func nextProgram(it *runtime.AccountIterator, program ed25519.PublicKey) (*runtime.AccountInfo, error) {
	info, err := it.Next()
	if err != nil {
		return nil, err
	}
	if !info.HasKey(program) {
		return nil, solana.ErrInvalidAccountData
	}
	return info, nil
}

// loadLedger reads the bridge ledger. A ledger that was never created counts
// as uninitialized.
func (h *handler) loadLedger(info *runtime.AccountInfo) (*locker.LockerAccount, error) {
	if len(info.Data) == 0 && info.IsOwnedBy(system.SystemAccount) {
		return nil, solana.ErrUninitializedAccount
	}
	if !info.IsOwnedBy(h.programID) {
		return nil, solana.ErrInvalidAccountOwner
	}

	var ledger locker.LockerAccount
	if err := ledger.Unmarshal(info.Data); err != nil {
		return nil, err
	}
	if !ledger.IsInitialized {
		return nil, solana.ErrUninitializedAccount
	}
	return &ledger, nil
}

func (h *handler) checkEventLog(info *runtime.AccountInfo) error {
	if !info.IsOwnedBy(h.programID) {
		return solana.ErrInvalidAccountOwner
	}
	if len(info.Data) != locker.EventLogAccountSize {
		return solana.ErrInvalidAccountData
	}
	return nil
}

func checkAuthority(ledger *locker.LockerAccount, signer *runtime.AccountInfo) error {
	if !signer.HasKey(ledger.Authority) {
		return locker.ErrorInvalidAuthority
	}
	return nil
}

// checkTokenMint requires the mint to be owned by the token program. The token
// program validates the mint's contents itself.
func checkTokenMint(info *runtime.AccountInfo) error {
	if !info.IsOwnedBy(locker.SPL_TOKEN_PROGRAM_ID) {
		return solana.ErrInvalidAccountData
	}
	return nil
}

func writeEventLog(info *runtime.AccountInfo, amount *uint256.Int, recipient locker.DestinationChainAddress) {
	event := &locker.EventLogAccount{
		Amount:    amount,
		Recipient: recipient,
	}
	info.Data = event.Marshal()
}
