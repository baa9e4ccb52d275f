package processor

import (
	"context"

	"github.com/sirupsen/logrus"

	"github.com/code-payments/locker-bridge/pkg/solana"
	"github.com/code-payments/locker-bridge/pkg/solana/locker"
	"github.com/code-payments/locker-bridge/pkg/solana/runtime"
	"github.com/code-payments/locker-bridge/pkg/solana/token"
)

// burnAndRelease burns wrapped tokens held by the signer and publishes the
// rescaled amount and destination to the burn log, so the destination chain
// can release the underlying asset.
//
// Accounts:
//
//	0. [signer] token account owner
//	1. [writable] ledger
//	2. [writable] burn log
//	3. [writable] source token account
//	4. [writable] mint
//	5. [] token program
func (h *handler) burnAndRelease(ctx context.Context, args *locker.BurnAndReleaseInstructionArgs) error {
	it := runtime.NewAccountIterator(h.accounts)

	ownerInfo, err := nextSigner(it)
	if err != nil {
		return err
	}
	stateInfo, _, err := h.nextDerived(it, locker.GetLockerStateAddress)
	if err != nil {
		return err
	}
	burnLogInfo, _, err := h.nextDerived(it, locker.GetBurnLogAddress)
	if err != nil {
		return err
	}
	sourceInfo, err := it.Next()
	if err != nil {
		return err
	}
	mintInfo, err := it.Next()
	if err != nil {
		return err
	}
	if err := checkTokenMint(mintInfo); err != nil {
		return err
	}
	if _, err := nextProgram(it, locker.SPL_TOKEN_PROGRAM_ID); err != nil {
		return err
	}

	ledger, err := h.loadLedger(stateInfo)
	if err != nil {
		return err
	}
	if err := h.checkEventLog(burnLogInfo); err != nil {
		return err
	}

	if args.Amount > ledger.TotalMinted {
		return solana.ErrArithmeticOverflow
	}
	underlying, err := h.rescaler.UnderlyingFromNative(args.Amount)
	if err != nil {
		return err
	}

	ledger.TotalMinted -= args.Amount
	stateInfo.Data = ledger.Marshal()

	ix := token.Burn(sourceInfo.Key, mintInfo.Key, ownerInfo.Key, args.Amount)
	if err := h.invoker.Invoke(ctx, ix, h.accounts); err != nil {
		return err
	}

	writeEventLog(burnLogInfo, underlying, args.Destination)

	h.log.WithFields(logrus.Fields{
		"amount":       args.Amount,
		"underlying":   underlying.Dec(),
		"destination":  args.Destination.String(),
		"total_minted": ledger.TotalMinted,
	}).Debug("tokens burned")

	return nil
}
