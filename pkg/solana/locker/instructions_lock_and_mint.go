package locker

import (
	"crypto/ed25519"

	"github.com/code-payments/locker-bridge/pkg/solana"
)

const (
	LockAndMintInstructionArgsSize = (8 + // amount
		DestinationChainAddressLength) // destination
)

type LockAndMintInstructionArgs struct {
	Amount      uint64
	Destination DestinationChainAddress
}

type LockAndMintInstructionAccounts struct {
	Signer  ed25519.PublicKey
	State   ed25519.PublicKey
	MintLog ed25519.PublicKey
}

func (args *LockAndMintInstructionArgs) Type() InstructionType {
	return InstructionTypeLockAndMint
}

func (args *LockAndMintInstructionArgs) Marshal() []byte {
	data, offset := newInstruction(InstructionTypeLockAndMint, LockAndMintInstructionArgsSize)
	putUint64(data, args.Amount, &offset)
	putDestinationChainAddress(data, args.Destination, &offset)
	return data
}

func (args *LockAndMintInstructionArgs) unmarshal(payload []byte) error {
	if len(payload) < LockAndMintInstructionArgsSize {
		return ErrorInvalidInstruction
	}

	var offset int
	getUint64(payload, &args.Amount, &offset)
	getDestinationChainAddress(payload, &args.Destination, &offset)
	return nil
}

func NewLockAndMintInstruction(
	accounts *LockAndMintInstructionAccounts,
	args *LockAndMintInstructionArgs,
) solana.Instruction {
	return solana.Instruction{
		Program: PROGRAM_ADDRESS,

		// Instruction args
		Data: args.Marshal(),

		// Instruction accounts
		Accounts: []solana.AccountMeta{
			{
				PublicKey:  accounts.Signer,
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
				PublicKey:  SYSTEM_PROGRAM_ID,
				IsWritable: false,
				IsSigner:   false,
			},
		},
	}
}
