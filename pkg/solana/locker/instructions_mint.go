package locker

import (
	"crypto/ed25519"

	"github.com/code-payments/locker-bridge/pkg/solana"
)

const (
	MintInstructionArgsSize = 8 // amount
)

type MintInstructionArgs struct {
	Amount uint64
}

type MintInstructionAccounts struct {
	Authority ed25519.PublicKey
	State     ed25519.PublicKey
	Recipient ed25519.PublicKey
	Mint      ed25519.PublicKey
}

func (args *MintInstructionArgs) Type() InstructionType {
	return InstructionTypeMint
}

func (args *MintInstructionArgs) Marshal() []byte {
	data, offset := newInstruction(InstructionTypeMint, MintInstructionArgsSize)
	putUint64(data, args.Amount, &offset)
	return data
}

func (args *MintInstructionArgs) unmarshal(payload []byte) error {
	if len(payload) < MintInstructionArgsSize {
		return ErrorInvalidInstruction
	}

	var offset int
	getUint64(payload, &args.Amount, &offset)
	return nil
}

func NewMintInstruction(
	accounts *MintInstructionAccounts,
	args *MintInstructionArgs,
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
				PublicKey:  accounts.Recipient,
				IsWritable: true,
				IsSigner:   false,
			},
			{
				PublicKey:  accounts.Mint,
				IsWritable: true,
				IsSigner:   false,
			},
			{
				PublicKey:  SPL_TOKEN_PROGRAM_ID,
				IsWritable: false,
				IsSigner:   false,
			},
		},
	}
}
