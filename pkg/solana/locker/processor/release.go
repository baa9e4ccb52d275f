package processor

import (
	"context"

	"github.com/mr-tron/base58/base58"
	"github.com/sirupsen/logrus"

	"github.com/code-payments/locker-bridge/pkg/solana"
	"github.com/code-payments/locker-bridge/pkg/solana/locker"
	"github.com/code-payments/locker-bridge/pkg/solana/runtime"
	"github.com/code-payments/locker-bridge/pkg/solana/system"
)

// release pays locked lamports out of the ledger account. Only the bridge
// authority may release.
//
// Accounts:
//
//	0. [signer] authority
//	1. [writable] ledger
//	2. [writable] destination
//	3. [] system program
func (h *handler) release(ctx context.Context, args *locker.ReleaseInstructionArgs) error {
	it := runtime.NewAccountIterator(h.accounts)

	authorityInfo, err := nextSigner(it)
	if err != nil {
		return err
	}
	stateInfo, stateBump, err := h.nextDerived(it, locker.GetLockerStateAddress)
	if err != nil {
		return err
	}
	destinationInfo, err := it.Next()
	if err != nil {
		return err
	}
	if _, err := nextProgram(it, locker.SYSTEM_PROGRAM_ID); err != nil {
		return err
	}

	// Paying the ledger back to itself would reduce total locked without
	// moving any lamports.
	if destinationInfo.HasKey(stateInfo.Key) {
		return solana.ErrInvalidArgument
	}

	ledger, err := h.loadLedger(stateInfo)
	if err != nil {
		return err
	}
	if err := checkAuthority(ledger, authorityInfo); err != nil {
		return err
	}
	if args.Amount > ledger.TotalLocked {
		return solana.ErrArithmeticOverflow
	}

	ledger.TotalLocked -= args.Amount
	stateInfo.Data = ledger.Marshal()

	ix := system.Transfer(stateInfo.Key, destinationInfo.Key, args.Amount)
	err = h.invoker.InvokeSigned(ctx, ix, h.accounts, locker.SignerSeeds(locker.StateSeed, stateBump))
	if err != nil {
		return err
	}

	h.log.WithFields(logrus.Fields{
		"amount":       args.Amount,
		"destination":  base58.Encode(destinationInfo.Key),
		"total_locked": ledger.TotalLocked,
	}).Debug("lamports released")

	return nil
}
