package locker

import (
	"crypto/ed25519"

	"github.com/code-payments/locker-bridge/pkg/solana"
)

const (
	ReleaseInstructionArgsSize = 8 // amount
)

type ReleaseInstructionArgs struct {
	Amount uint64
}

type ReleaseInstructionAccounts struct {
	Authority   ed25519.PublicKey
	State       ed25519.PublicKey
	Destination ed25519.PublicKey
}

func (args *ReleaseInstructionArgs) Type() InstructionType {
	return InstructionTypeRelease
}

func (args *ReleaseInstructionArgs) Marshal() []byte {
	data, offset := newInstruction(InstructionTypeRelease, ReleaseInstructionArgsSize)
	putUint64(data, args.Amount, &offset)
	return data
}

func (args *ReleaseInstructionArgs) unmarshal(payload []byte) error {
	if len(payload) < ReleaseInstructionArgsSize {
		return ErrorInvalidInstruction
	}

	var offset int
	getUint64(payload, &args.Amount, &offset)
	return nil
}

func NewReleaseInstruction(
	accounts *ReleaseInstructionAccounts,
	args *ReleaseInstructionArgs,
) solana.Instruction {
	return solana.Instruction{
		Program: PROGRAM_ADDRESS,

		// Instruction args
		Data: args.Marshal(),

		// Instruction accounts
		Accounts: []solana.AccountMeta{
			{
				PublicKey:  accounts.Authority,
				IsWritable: false,
				IsSigner:   true,
			},
			{
				PublicKey:  accounts.State,
				IsWritable: true,
				IsSigner:   false,
			},
			{
				PublicKey:  accounts.Destination,
				IsWritable: true,
				IsSigner:   false,
			},
			{
				PublicKey:  SYSTEM_PROGRAM_ID,
				IsWritable: false,
				IsSigner:   false,
			},
		},
	}
}
