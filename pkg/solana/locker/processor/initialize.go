package processor

import (
	"context"

	"github.com/mr-tron/base58/base58"

	"github.com/code-payments/locker-bridge/pkg/solana"
	"github.com/code-payments/locker-bridge/pkg/solana/locker"
	"github.com/code-payments/locker-bridge/pkg/solana/runtime"
	"github.com/code-payments/locker-bridge/pkg/solana/system"
)

// initialize creates the ledger and both event logs at their program
// addresses, funded by the payer, and records the bridge authority.
//
// Accounts:
//
//	0. [writable, signer] payer
//	1. [writable] ledger
//	2. [writable] mint log
//	3. [writable] burn log
//	4. [] locker program
//	5. [] system program
//	6. [] rent sysvar
func (h *handler) initialize(ctx context.Context, args *locker.InitializeInstructionArgs) error {
	it := runtime.NewAccountIterator(h.accounts)

	payerInfo, err := nextSigner(it)
	if err != nil {
		return err
	}
	stateInfo, stateBump, err := h.nextDerived(it, locker.GetLockerStateAddress)
	if err != nil {
		return err
	}
	mintLogInfo, mintLogBump, err := h.nextDerived(it, locker.GetMintLogAddress)
	if err != nil {
		return err
	}
	burnLogInfo, burnLogBump, err := h.nextDerived(it, locker.GetBurnLogAddress)
	if err != nil {
		return err
	}
	if _, err := nextProgram(it, h.programID); err != nil {
		return err
	}
	if _, err := nextProgram(it, locker.SYSTEM_PROGRAM_ID); err != nil {
		return err
	}
	rentInfo, err := it.Next()
	if err != nil {
		return err
	}

	rent, err := system.GetRentFromAccount(rentInfo.Key, rentInfo.Data)
	if err != nil {
		return solana.ErrInvalidArgument
	}

	toCreate := []struct {
		info *runtime.AccountInfo
		seed []byte
		bump uint8
		size uint64
	}{
		{stateInfo, locker.StateSeed, stateBump, locker.LockerAccountSize},
		{mintLogInfo, locker.MintLogSeed, mintLogBump, locker.EventLogAccountSize},
		{burnLogInfo, locker.BurnLogSeed, burnLogBump, locker.EventLogAccountSize},
	}
	for _, account := range toCreate {
		ix := system.CreateAccount(
			payerInfo.Key,
			account.info.Key,
			h.programID,
			rent.MinimumBalance(account.size),
			account.size,
		)

		err := h.invoker.InvokeSigned(ctx, ix, h.accounts, locker.SignerSeeds(account.seed, account.bump))
		if err != nil {
			return err
		}
	}

	ledger := &locker.LockerAccount{
		IsInitialized: true,
		Authority:     args.Authority,
	}
	stateInfo.Data = ledger.Marshal()

	h.log.WithField("authority", base58.Encode(args.Authority)).Debug("locker initialized")

	return nil
}
