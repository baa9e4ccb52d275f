package memory

import (
	"bytes"
	"context"
	"crypto/ed25519"

	"github.com/code-payments/locker-bridge/pkg/solana"
	"github.com/code-payments/locker-bridge/pkg/solana/runtime"
	"github.com/code-payments/locker-bridge/pkg/solana/token"
)

// processToken executes MintTo and Burn against single-authority mints and
// token accounts. Delegates and multisig authorities are not supported.
func processToken(_ context.Context, _ runtime.Invoker, programID ed25519.PublicKey, accounts []*runtime.AccountInfo, data []byte) error {
	ix := toInstruction(programID, accounts, data)

	cmd, err := token.GetCommand(ix)
	if err != nil {
		return token.ErrorInvalidInstruction
	}

	switch cmd {
	case token.CommandMintTo:
		decompiled, err := token.DecompileMintTo(ix)
		if err != nil {
			return token.ErrorInvalidInstruction
		}
		return mintTo(accounts[0], accounts[1], accounts[2], decompiled.Amount)
	case token.CommandBurn:
		decompiled, err := token.DecompileBurn(ix)
		if err != nil {
			return token.ErrorInvalidInstruction
		}
		return burn(accounts[0], accounts[1], accounts[2], decompiled.Amount)
	default:
		return token.ErrorInvalidInstruction
	}
}

func mintTo(mintInfo, destInfo, authorityInfo *runtime.AccountInfo, amount uint64) error {
	mint, err := loadMint(mintInfo)
	if err != nil {
		return err
	}
	dest, err := loadTokenAccount(destInfo)
	if err != nil {
		return err
	}

	if dest.State == token.AccountStateFrozen {
		return token.ErrorAccountFrozen
	}
	if !bytes.Equal(dest.Mint, mintInfo.Key) {
		return token.ErrorMintMismatch
	}
	if len(mint.MintAuthority) == 0 {
		return token.ErrorFixedSupply
	}
	if !authorityInfo.HasKey(mint.MintAuthority) {
		return token.ErrorOwnerMismatch
	}
	if !authorityInfo.IsSigner {
		return solana.ErrMissingRequiredSignature
	}

	if dest.Amount+amount < dest.Amount || mint.Supply+amount < mint.Supply {
		return token.ErrorOverflow
	}
	dest.Amount += amount
	mint.Supply += amount

	destInfo.Data = dest.Marshal()
	mintInfo.Data = mint.Marshal()

	return nil
}

func burn(sourceInfo, mintInfo, ownerInfo *runtime.AccountInfo, amount uint64) error {
	source, err := loadTokenAccount(sourceInfo)
	if err != nil {
		return err
	}
	mint, err := loadMint(mintInfo)
	if err != nil {
		return err
	}

	if source.State == token.AccountStateFrozen {
		return token.ErrorAccountFrozen
	}
	if !bytes.Equal(source.Mint, mintInfo.Key) {
		return token.ErrorMintMismatch
	}
	if source.Amount < amount {
		return token.ErrorInsufficientFunds
	}
	if !ownerInfo.HasKey(source.Owner) {
		return token.ErrorOwnerMismatch
	}
	if !ownerInfo.IsSigner {
		return solana.ErrMissingRequiredSignature
	}

	if mint.Supply < amount {
		return token.ErrorOverflow
	}
	source.Amount -= amount
	mint.Supply -= amount

	sourceInfo.Data = source.Marshal()
	mintInfo.Data = mint.Marshal()

	return nil
}

func loadMint(info *runtime.AccountInfo) (*token.Mint, error) {
	if !info.IsOwnedBy(token.ProgramKey) {
		return nil, solana.ErrIncorrectProgramID
	}

	var mint token.Mint
	if !mint.Unmarshal(info.Data) || !mint.IsInitialized {
		return nil, token.ErrorUninitializedState
	}
	return &mint, nil
}

func loadTokenAccount(info *runtime.AccountInfo) (*token.Account, error) {
	if !info.IsOwnedBy(token.ProgramKey) {
		return nil, solana.ErrIncorrectProgramID
	}

	var account token.Account
	if !account.Unmarshal(info.Data) || account.State == token.AccountStateUninitialized {
		return nil, token.ErrorUninitializedState
	}
	return &account, nil
}
