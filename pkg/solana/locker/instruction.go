package locker

import (
	"github.com/code-payments/locker-bridge/pkg/solana"
)

// Instruction is a decoded locker instruction payload.
type Instruction interface {
	Type() InstructionType
	Marshal() []byte
}

type instructionArgs interface {
	Instruction
	unmarshal(payload []byte) error
}

// UnmarshalInstruction decodes the 1-byte instruction tag and the payload that
// follows it. Bytes beyond an instruction's payload are ignored.
func UnmarshalInstruction(data []byte) (Instruction, error) {
	if len(data) == 0 {
		return nil, ErrorInvalidInstruction
	}

	var args instructionArgs
	switch InstructionType(data[0]) {
	case InstructionTypeInitialize:
		args = &InitializeInstructionArgs{}
	case InstructionTypeLockAndMint:
		args = &LockAndMintInstructionArgs{}
	case InstructionTypeRelease:
		args = &ReleaseInstructionArgs{}
	case InstructionTypeMint:
		args = &MintInstructionArgs{}
	case InstructionTypeBurnAndRelease:
		args = &BurnAndReleaseInstructionArgs{}
	default:
		return nil, solana.ErrInvalidInstructionData
	}

	if err := args.unmarshal(data[1:]); err != nil {
		return nil, err
	}
	return args, nil
}

func newInstruction(t InstructionType, argsSize int) ([]byte, int) {
	var offset int
	data := make([]byte, 1+argsSize)
	putInstructionType(data, t, &offset)
	return data, offset
}
