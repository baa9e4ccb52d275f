package runtime

import (
	"context"
	"crypto/ed25519"

	"github.com/code-payments/locker-bridge/pkg/solana"
)

// Invoker executes cross-program instructions on behalf of the currently
// running program. Every call is all-or-nothing from the caller's point of
// view: on error, the enclosing instruction is expected to abort.
type Invoker interface {
	// Invoke executes the instruction with the signer privileges of the
	// enclosing instruction.
	Invoke(ctx context.Context, ix solana.Instruction, accounts []*AccountInfo) error

	// InvokeSigned executes the instruction, additionally treating every
	// program address derivable from the calling program id and one of the
	// signer seed sets as a signer.
	InvokeSigned(ctx context.Context, ix solana.Instruction, accounts []*AccountInfo, signerSeeds ...[][]byte) error
}

// Program is an on-chain program entrypoint.
type Program interface {
	// Process executes a single instruction. Any returned error aborts the
	// instruction, and the host discards every mutation made to accounts.
	Process(ctx context.Context, invoker Invoker, programID ed25519.PublicKey, accounts []*AccountInfo, data []byte) error
}

// ProgramFunc adapts a function to the Program interface.
type ProgramFunc func(ctx context.Context, invoker Invoker, programID ed25519.PublicKey, accounts []*AccountInfo, data []byte) error

// Process implements Program.Process
func (f ProgramFunc) Process(ctx context.Context, invoker Invoker, programID ed25519.PublicKey, accounts []*AccountInfo, data []byte) error {
	return f(ctx, invoker, programID, accounts, data)
}
