package token

import (
	"bytes"
	"crypto/ed25519"
	"encoding/binary"
	"math"

	"github.com/pkg/errors"

	"github.com/code-payments/locker-bridge/pkg/solana"
)

// ProgramKey is the address of the token program that should be used.
//
// Current key: TokenkegQfeZyiNwAJbNbGKPFXCWuBvf9Ss623VQ5DA
var ProgramKey = ed25519.PublicKey{6, 221, 246, 225, 215, 101, 161, 147, 217, 203, 225, 70, 206, 235, 121, 172, 28, 180, 133, 237, 95, 91, 55, 145, 58, 140, 245, 133, 126, 255, 0, 169}

type Command byte

const (
	// nolint:varcheck,deadcode,unused
	CommandInitializeMint Command = iota
	// nolint:varcheck,deadcode,unused
	CommandInitializeAccount
	// nolint:varcheck,deadcode,unused
	CommandInitializeMultisig
	// nolint:varcheck,deadcode,unused
	CommandTransfer
	// nolint:varcheck,deadcode,unused
	CommandApprove
	// nolint:varcheck,deadcode,unused
	CommandRevoke
	// nolint:varcheck,deadcode,unused
	CommandSetAuthority
	CommandMintTo
	CommandBurn

	CommandUnknown = Command(math.MaxUint8)
)

const (
	// nolint:varcheck,deadcode,unused
	ErrorNotRentExempt solana.CustomError = iota
	ErrorInsufficientFunds
	// nolint:varcheck,deadcode,unused
	ErrorInvalidMint
	ErrorMintMismatch
	ErrorOwnerMismatch
	ErrorFixedSupply
	// nolint:varcheck,deadcode,unused
	ErrorAlreadyInUse
	// nolint:varcheck,deadcode,unused
	ErrorInvalidNumberOfProvidedSigners
	// nolint:varcheck,deadcode,unused
	ErrorInvalidNumberOfRequiredSigners
	ErrorUninitializedState
	// nolint:varcheck,deadcode,unused
	ErrorNativeNotSupported
	// nolint:varcheck,deadcode,unused
	ErrorNonNativeHasBalance
	ErrorInvalidInstruction
	// nolint:varcheck,deadcode,unused
	ErrorInvalidState
	ErrorOverflow
	// nolint:varcheck,deadcode,unused
	ErrorAuthorityTypeNotSupported
	// nolint:varcheck,deadcode,unused
	ErrorMintCannotFreeze
	ErrorAccountFrozen
	// nolint:varcheck,deadcode,unused
	ErrorMintDecimalsMismatch
)

const amountInstructionSize = 1 + 8

func GetCommand(i solana.Instruction) (Command, error) {
	if !bytes.Equal(i.Program, ProgramKey) {
		return CommandUnknown, solana.ErrIncorrectProgram
	}
	if len(i.Data) == 0 {
		return CommandUnknown, errors.New("token instruction missing data")
	}

	return Command(i.Data[0]), nil
}

// Reference: https://github.com/solana-labs/solana-program-library/blob/b011698251981b5a12088acba18fad1d41c3719a/token/program/src/instruction.rs#L147-L157
func MintTo(mint, dest, authority ed25519.PublicKey, amount uint64) solana.Instruction {
	// Mints new tokens to an account. The native mint does not support minting.
	//
	// Accounts expected by this instruction:
	//
	//   * Single authority
	//   0. `[writable]` The mint.
	//   1. `[writable]` The account to mint tokens to.
	//   2. `[signer]` The mint's minting authority.
	return solana.NewInstruction(
		ProgramKey,
		amountInstructionData(CommandMintTo, amount),
		solana.NewAccountMeta(mint, false),
		solana.NewAccountMeta(dest, false),
		solana.NewReadonlyAccountMeta(authority, true),
	)
}

type DecompiledMintTo struct {
	Mint      ed25519.PublicKey
	Dest      ed25519.PublicKey
	Authority ed25519.PublicKey
	Amount    uint64
}

func DecompileMintTo(i solana.Instruction) (*DecompiledMintTo, error) {
	amount, err := decompileAmountInstruction(i, CommandMintTo)
	if err != nil {
		return nil, err
	}

	return &DecompiledMintTo{
		Mint:      i.Accounts[0].PublicKey,
		Dest:      i.Accounts[1].PublicKey,
		Authority: i.Accounts[2].PublicKey,
		Amount:    amount,
	}, nil
}

// Reference: https://github.com/solana-labs/solana-program-library/blob/b011698251981b5a12088acba18fad1d41c3719a/token/program/src/instruction.rs#L159-L170
func Burn(account, mint, owner ed25519.PublicKey, amount uint64) solana.Instruction {
	// Burns tokens by removing them from an account.
	//
	// Accounts expected by this instruction:
	//
	//   * Single owner/delegate
	//   0. `[writable]` The account to burn from.
	//   1. `[writable]` The token mint.
	//   2. `[signer]` The account's owner/delegate.
	return solana.NewInstruction(
		ProgramKey,
		amountInstructionData(CommandBurn, amount),
		solana.NewAccountMeta(account, false),
		solana.NewAccountMeta(mint, false),
		solana.NewReadonlyAccountMeta(owner, true),
	)
}

type DecompiledBurn struct {
	Account ed25519.PublicKey
	Mint    ed25519.PublicKey
	Owner   ed25519.PublicKey
	Amount  uint64
}

func DecompileBurn(i solana.Instruction) (*DecompiledBurn, error) {
	amount, err := decompileAmountInstruction(i, CommandBurn)
	if err != nil {
		return nil, err
	}

	return &DecompiledBurn{
		Account: i.Accounts[0].PublicKey,
		Mint:    i.Accounts[1].PublicKey,
		Owner:   i.Accounts[2].PublicKey,
		Amount:  amount,
	}, nil
}

func amountInstructionData(cmd Command, amount uint64) []byte {
	data := make([]byte, amountInstructionSize)
	data[0] = byte(cmd)
	binary.LittleEndian.PutUint64(data[1:], amount)
	return data
}

func decompileAmountInstruction(i solana.Instruction, cmd Command) (uint64, error) {
	actual, err := GetCommand(i)
	if err != nil {
		return 0, err
	}
	if actual != cmd {
		return 0, solana.ErrIncorrectInstruction
	}
	if len(i.Accounts) != 3 {
		return 0, errors.Errorf("invalid number of accounts: %d", len(i.Accounts))
	}
	if len(i.Data) != amountInstructionSize {
		return 0, errors.Errorf("invalid instruction data size: %d", len(i.Data))
	}

	return binary.LittleEndian.Uint64(i.Data[1:]), nil
}
