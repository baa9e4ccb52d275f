package locker

type InstructionType uint8

const (
	InstructionTypeInitialize InstructionType = iota
	InstructionTypeLockAndMint
	InstructionTypeRelease
	InstructionTypeMint
	InstructionTypeBurnAndRelease
)

func (t InstructionType) String() string {
	switch t {
	case InstructionTypeInitialize:
		return "Initialize"
	case InstructionTypeLockAndMint:
		return "LockAndMint"
	case InstructionTypeRelease:
		return "Release"
	case InstructionTypeMint:
		return "Mint"
	case InstructionTypeBurnAndRelease:
		return "BurnAndRelease"
	}
	return "Unknown"
}

func putInstructionType(dst []byte, v InstructionType, offset *int) {
	dst[*offset] = uint8(v)
	*offset += 1
}
