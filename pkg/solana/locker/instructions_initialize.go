package locker

import (
	"crypto/ed25519"

	"github.com/code-payments/locker-bridge/pkg/solana"
)

const (
	InitializeInstructionArgsSize = 32 // authority
)

type InitializeInstructionArgs struct {
	Authority ed25519.PublicKey
}

type InitializeInstructionAccounts struct {
	Payer   ed25519.PublicKey
	State   ed25519.PublicKey
	MintLog ed25519.PublicKey
	BurnLog ed25519.PublicKey
}

func (args *InitializeInstructionArgs) Type() InstructionType {
	return InstructionTypeInitialize
}

func (args *InitializeInstructionArgs) Marshal() []byte {
	data, offset := newInstruction(InstructionTypeInitialize, InitializeInstructionArgsSize)
	putKey(data, args.Authority, &offset)
	return data
}

func (args *InitializeInstructionArgs) unmarshal(payload []byte) error {
	if len(payload) < InitializeInstructionArgsSize {
		return ErrorInvalidInstruction
	}

	var offset int
	getKey(payload, &args.Authority, &offset)
	return nil
}

func NewInitializeInstruction(
	accounts *InitializeInstructionAccounts,
	args *InitializeInstructionArgs,
) solana.Instruction {
	return solana.Instruction{
		Program: PROGRAM_ADDRESS,

		// Instruction args
		Data: args.Marshal(),

		// Instruction accounts
		Accounts: []solana.AccountMeta{
			{
				PublicKey:  accounts.Payer,
				IsWritable: true,
				IsSigner:   true,
			},
			{
				PublicKey:  accounts.State,
				IsWritable: true,
				IsSigner:   false,
			},
			{
				PublicKey:  accounts.MintLog,
				IsWritable: true,
				IsSigner:   false,
			},
			{
				PublicKey:  accounts.BurnLog,
				IsWritable: true,
				IsSigner:   false,
			},
			{
				PublicKey:  PROGRAM_ID,
				IsWritable: false,
				IsSigner:   false,
			},
			{
				PublicKey:  SYSTEM_PROGRAM_ID,
				IsWritable: false,
				IsSigner:   false,
			},
			{
				PublicKey:  SYSVAR_RENT_PUBKEY,
				IsWritable: false,
				IsSigner:   false,
			},
		},
	}
}
