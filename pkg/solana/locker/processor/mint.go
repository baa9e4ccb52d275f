package processor

import (
	"context"

	"github.com/mr-tron/base58/base58"
	"github.com/sirupsen/logrus"

	"github.com/code-payments/locker-bridge/pkg/solana"
	"github.com/code-payments/locker-bridge/pkg/solana/locker"
	"github.com/code-payments/locker-bridge/pkg/solana/runtime"
	"github.com/code-payments/locker-bridge/pkg/solana/token"
)

// mint issues wrapped tokens to a recipient token account. The authority
// signs both this instruction and the token program's MintTo, so it must also
// be the mint authority.
//
// Accounts:
//
//	0. [signer] authority
//	1. [writable] ledger
//	2. [writable] recipient token account
//	3. [writable] mint
//	4. [] token program
func (h *handler) mint(ctx context.Context, args *locker.MintInstructionArgs) error {
	it := runtime.NewAccountIterator(h.accounts)

	authorityInfo, err := nextSigner(it)
	if err != nil {
		return err
	}
	stateInfo, _, err := h.nextDerived(it, locker.GetLockerStateAddress)
	if err != nil {
		return err
	}
	recipientInfo, err := it.Next()
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
	if err := checkAuthority(ledger, authorityInfo); err != nil {
		return err
	}
	if ledger.TotalMinted+args.Amount < ledger.TotalMinted {
		return solana.ErrArithmeticOverflow
	}

	ledger.TotalMinted += args.Amount
	stateInfo.Data = ledger.Marshal()

	ix := token.MintTo(mintInfo.Key, recipientInfo.Key, authorityInfo.Key, args.Amount)
	if err := h.invoker.Invoke(ctx, ix, h.accounts); err != nil {
		return err
	}

	h.log.WithFields(logrus.Fields{
		"amount":       args.Amount,
		"recipient":    base58.Encode(recipientInfo.Key),
		"total_minted": ledger.TotalMinted,
	}).Debug("tokens minted")

	return nil
}
