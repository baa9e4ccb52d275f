package memory

import (
	"context"
	"crypto/ed25519"

	"github.com/code-payments/locker-bridge/pkg/solana"
	"github.com/code-payments/locker-bridge/pkg/solana/runtime"
	"github.com/code-payments/locker-bridge/pkg/solana/system"
)

// processSystem executes the subset of the system program the bank supports.
//
// Transfer does not require the source to be system owned, which lets a
// program move lamports out of its own program addresses through the system
// program.
func processSystem(_ context.Context, _ runtime.Invoker, programID ed25519.PublicKey, accounts []*runtime.AccountInfo, data []byte) error {
	ix := toInstruction(programID, accounts, data)

	switch {
	case system.IsCreateAccount(ix):
		decompiled, err := system.DecompileCreateAccount(ix)
		if err != nil {
			return solana.ErrInvalidInstructionData
		}
		return createAccount(accounts[0], accounts[1], decompiled)
	case system.IsTransfer(ix):
		decompiled, err := system.DecompileTransfer(ix)
		if err != nil {
			return solana.ErrInvalidInstructionData
		}
		return transfer(accounts[0], accounts[1], decompiled.Lamports)
	default:
		return solana.ErrInvalidInstructionData
	}
}

func createAccount(funder, address *runtime.AccountInfo, args *system.DecompiledCreateAccount) error {
	if !funder.IsSigner || !address.IsSigner {
		return solana.ErrMissingRequiredSignature
	}

	if address.Lamports > 0 || len(address.Data) > 0 || !address.IsOwnedBy(system.SystemAccount) {
		return system.ErrorAccountAlreadyInUse
	}
	if args.Size > system.MaxPermittedDataLength {
		return system.ErrorInvalidAccountDataLength
	}
	if funder.Lamports < args.Lamports {
		return system.ErrorResultWithNegativeLamports
	}

	funder.Lamports -= args.Lamports
	address.Lamports = args.Lamports
	address.Data = make([]byte, args.Size)
	address.Owner = append(ed25519.PublicKey(nil), args.Owner...)

	return nil
}

func transfer(from, to *runtime.AccountInfo, lamports uint64) error {
	if !from.IsSigner {
		return solana.ErrMissingRequiredSignature
	}

	if from.Lamports < lamports {
		return system.ErrorResultWithNegativeLamports
	}
	if from.HasKey(to.Key) {
		return nil
	}
	if to.Lamports+lamports < to.Lamports {
		return solana.ErrArithmeticOverflow
	}

	from.Lamports -= lamports
	to.Lamports += lamports

	return nil
}

// toInstruction rebuilds the instruction a native program was invoked with so
// the client-side decompilers can parse it.
func toInstruction(programID ed25519.PublicKey, accounts []*runtime.AccountInfo, data []byte) solana.Instruction {
	metas := make([]solana.AccountMeta, len(accounts))
	for i, account := range accounts {
		metas[i] = solana.AccountMeta{
			PublicKey:  account.Key,
			IsSigner:   account.IsSigner,
			IsWritable: account.IsWritable,
		}
	}
	return solana.NewInstruction(programID, data, metas...)
}
