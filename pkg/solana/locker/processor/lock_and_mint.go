package processor

import (
	"context"

	"github.com/sirupsen/logrus"

	"github.com/code-payments/locker-bridge/pkg/solana"
	"github.com/code-payments/locker-bridge/pkg/solana/locker"
	"github.com/code-payments/locker-bridge/pkg/solana/runtime"
	"github.com/code-payments/locker-bridge/pkg/solana/system"
)

// lockAndMint moves lamports from the signer into the ledger account and
// publishes the rescaled amount and destination to the mint log.
//
// Accounts:
//
//	0. [writable, signer] signer
//	1. [writable] ledger
//	2. [writable] mint log
//	3. [] system program
func (h *handler) lockAndMint(ctx context.Context, args *locker.LockAndMintInstructionArgs) error {
	it := runtime.NewAccountIterator(h.accounts)

	signerInfo, err := nextSigner(it)
	if err != nil {
		return err
	}
	stateInfo, _, err := h.nextDerived(it, locker.GetLockerStateAddress)
	if err != nil {
		return err
	}
	mintLogInfo, _, err := h.nextDerived(it, locker.GetMintLogAddress)
	if err != nil {
		return err
	}
	if _, err := nextProgram(it, locker.SYSTEM_PROGRAM_ID); err != nil {
		return err
	}

	ledger, err := h.loadLedger(stateInfo)
	if err != nil {
		return err
	}
	if err := h.checkEventLog(mintLogInfo); err != nil {
		return err
	}

	if ledger.TotalLocked+args.Amount < ledger.TotalLocked {
		return solana.ErrArithmeticOverflow
	}
	underlying, err := h.rescaler.UnderlyingFromNative(args.Amount)
	if err != nil {
		return err
	}

	ledger.TotalLocked += args.Amount
	stateInfo.Data = ledger.Marshal()

	ix := system.Transfer(signerInfo.Key, stateInfo.Key, args.Amount)
	if err := h.invoker.Invoke(ctx, ix, h.accounts); err != nil {
		return err
	}

	writeEventLog(mintLogInfo, underlying, args.Destination)

	h.log.WithFields(logrus.Fields{
		"amount":       args.Amount,
		"underlying":   underlying.Dec(),
		"destination":  args.Destination.String(),
		"total_locked": ledger.TotalLocked,
	}).Debug("lamports locked")

	return nil
}
