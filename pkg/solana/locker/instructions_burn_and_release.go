package locker

import (
	"crypto/ed25519"

	"github.com/code-payments/locker-bridge/pkg/solana"
)

const (
	BurnAndReleaseInstructionArgsSize = (8 + // amount
		DestinationChainAddressLength) // destination
)

type BurnAndReleaseInstructionArgs struct {
	Amount      uint64
	Destination DestinationChainAddress
}

type BurnAndReleaseInstructionAccounts struct {
	Owner   ed25519.PublicKey
	State   ed25519.PublicKey
	BurnLog ed25519.PublicKey
	Source  ed25519.PublicKey
	Mint    ed25519.PublicKey
}

func (args *BurnAndReleaseInstructionArgs) Type() InstructionType {
	return InstructionTypeBurnAndRelease
}

func (args *BurnAndReleaseInstructionArgs) Marshal() []byte {
	data, offset := newInstruction(InstructionTypeBurnAndRelease, BurnAndReleaseInstructionArgsSize)
	putUint64(data, args.Amount, &offset)
	putDestinationChainAddress(data, args.Destination, &offset)
	return data
}

func (args *BurnAndReleaseInstructionArgs) unmarshal(payload []byte) error {
	if len(payload) < BurnAndReleaseInstructionArgsSize {
		return ErrorInvalidInstruction
	}

	var offset int
	getUint64(payload, &args.Amount, &offset)
	getDestinationChainAddress(payload, &args.Destination, &offset)
	return nil
}

func NewBurnAndReleaseInstruction(
	accounts *BurnAndReleaseInstructionAccounts,
	args *BurnAndReleaseInstructionArgs,
) solana.Instruction {
	return solana.Instruction{
		Program: PROGRAM_ADDRESS,

		// Instruction args
		Data: args.Marshal(),

		// Instruction accounts
		Accounts: []solana.AccountMeta{
			{
				PublicKey:  accounts.Owner,
				IsWritable: false,
				IsSigner:   true,
			},
			{
				PublicKey:  accounts.State,
				IsWritable: true,
				IsSigner:   false,
			},
			{
				PublicKey:  accounts.BurnLog,
				IsWritable: true,
				IsSigner:   false,
			},
			{
				PublicKey:  accounts.Source,
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
