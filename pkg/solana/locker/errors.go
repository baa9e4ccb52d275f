package locker

import (
	"github.com/code-payments/locker-bridge/pkg/solana"
)

// Custom program errors, surfaced to the host as solana.CustomError codes.
const (
	ErrorInvalidAuthority solana.CustomError = iota
	ErrorInvalidInstruction
	ErrorUnexpectedDecimalConversion
)
