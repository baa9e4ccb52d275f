package solana

import (
	"fmt"

	"github.com/pkg/errors"
)

// InstructionErrorKey is the string key of an instruction error raised by the
// runtime or a builtin program.
//
// Source: https://github.com/solana-labs/solana/blob/4e2754341514cd181ae3f373cc2548bd22e918b8/sdk/program/src/instruction.rs#L23
type InstructionErrorKey string

const (
	InstructionErrorGenericError              InstructionErrorKey = "GenericError"
	InstructionErrorInvalidArgument           InstructionErrorKey = "InvalidArgument"
	InstructionErrorInvalidInstructionData    InstructionErrorKey = "InvalidInstructionData"
	InstructionErrorInvalidAccountData        InstructionErrorKey = "InvalidAccountData"
	InstructionErrorAccountDataTooSmall       InstructionErrorKey = "AccountDataTooSmall"
	InstructionErrorInsufficientFunds         InstructionErrorKey = "InsufficientFunds"
	InstructionErrorIncorrectProgramID        InstructionErrorKey = "IncorrectProgramId"
	InstructionErrorMissingRequiredSignature  InstructionErrorKey = "MissingRequiredSignature"
	InstructionErrorAccountAlreadyInitialized InstructionErrorKey = "AccountAlreadyInitialized"
	InstructionErrorUninitializedAccount      InstructionErrorKey = "UninitializedAccount"
	InstructionErrorUnbalancedInstruction     InstructionErrorKey = "UnbalancedInstruction"
	InstructionErrorReadonlyLamportChange     InstructionErrorKey = "ReadonlyLamportChange"
	InstructionErrorReadonlyDataModified      InstructionErrorKey = "ReadonlyDataModified"
	InstructionErrorNotEnoughAccountKeys      InstructionErrorKey = "NotEnoughAccountKeys"
	InstructionErrorUnsupportedProgramID      InstructionErrorKey = "UnsupportedProgramId"
	InstructionErrorMissingAccount            InstructionErrorKey = "MissingAccount"
	InstructionErrorMaxSeedLengthExceeded     InstructionErrorKey = "MaxSeedLengthExceeded"
	InstructionErrorInvalidSeeds              InstructionErrorKey = "InvalidSeeds"
	InstructionErrorPrivilegeEscalation       InstructionErrorKey = "PrivilegeEscalation"
	InstructionErrorIllegalOwner              InstructionErrorKey = "IllegalOwner"
	InstructionErrorInvalidAccountOwner       InstructionErrorKey = "InvalidAccountOwner"
	InstructionErrorArithmeticOverflow        InstructionErrorKey = "ArithmeticOverflow"
	InstructionErrorExternalDataModified      InstructionErrorKey = "ExternalAccountDataModified"
	InstructionErrorCallDepth                 InstructionErrorKey = "CallDepth"
)

// Error implements error, so keys can be returned directly from program code.
func (k InstructionErrorKey) Error() string {
	return string(k)
}

var (
	ErrInvalidArgument           error = InstructionErrorInvalidArgument
	ErrInvalidInstructionData    error = InstructionErrorInvalidInstructionData
	ErrInvalidAccountData        error = InstructionErrorInvalidAccountData
	ErrAccountDataTooSmall       error = InstructionErrorAccountDataTooSmall
	ErrInsufficientFunds         error = InstructionErrorInsufficientFunds
	ErrIncorrectProgramID        error = InstructionErrorIncorrectProgramID
	ErrMissingRequiredSignature  error = InstructionErrorMissingRequiredSignature
	ErrAccountAlreadyInitialized error = InstructionErrorAccountAlreadyInitialized
	ErrUninitializedAccount      error = InstructionErrorUninitializedAccount
	ErrUnbalancedInstruction     error = InstructionErrorUnbalancedInstruction
	ErrReadonlyLamportChange     error = InstructionErrorReadonlyLamportChange
	ErrReadonlyDataModified      error = InstructionErrorReadonlyDataModified
	ErrNotEnoughAccountKeys      error = InstructionErrorNotEnoughAccountKeys
	ErrUnsupportedProgramID      error = InstructionErrorUnsupportedProgramID
	ErrMissingAccount            error = InstructionErrorMissingAccount
	ErrInvalidSeeds              error = InstructionErrorInvalidSeeds
	ErrPrivilegeEscalation       error = InstructionErrorPrivilegeEscalation
	ErrIllegalOwner              error = InstructionErrorIllegalOwner
	ErrInvalidAccountOwner       error = InstructionErrorInvalidAccountOwner
	ErrArithmeticOverflow        error = InstructionErrorArithmeticOverflow
	ErrExternalDataModified      error = InstructionErrorExternalDataModified
	ErrCallDepth                 error = InstructionErrorCallDepth
)

// CustomError is the numerical error returned by a non-system program.
type CustomError int

func (c CustomError) Error() string {
	return fmt.Sprintf("custom program error: %#x", int(c))
}

// Builtin program error codes occupy the upper 32 bits of the abort code so
// they never collide with a program's custom error codes.
//
// Reference: https://github.com/solana-labs/solana/blob/4e2754341514cd181ae3f373cc2548bd22e918b8/sdk/program/src/program_error.rs#L172
const builtinBitShift = 32

var builtinErrorCodes = map[InstructionErrorKey]uint64{
	InstructionErrorInvalidArgument:           2,
	InstructionErrorInvalidInstructionData:    3,
	InstructionErrorInvalidAccountData:        4,
	InstructionErrorAccountDataTooSmall:       5,
	InstructionErrorInsufficientFunds:         6,
	InstructionErrorIncorrectProgramID:        7,
	InstructionErrorMissingRequiredSignature:  8,
	InstructionErrorAccountAlreadyInitialized: 9,
	InstructionErrorUninitializedAccount:      10,
	InstructionErrorNotEnoughAccountKeys:      11,
	InstructionErrorMaxSeedLengthExceeded:     13,
	InstructionErrorInvalidSeeds:              14,
	InstructionErrorIllegalOwner:              18,
	InstructionErrorInvalidAccountOwner:       23,
	InstructionErrorArithmeticOverflow:        24,
}

// ErrorCode maps an error returned by a program to the numeric abort code the
// host surfaces. A nil error maps to zero (success). Custom error zero maps to
// the reserved "Custom(0)" code, since zero itself means success. Runtime
// errors that have no program error equivalent map to InvalidArgument.
func ErrorCode(err error) uint64 {
	if err == nil {
		return 0
	}

	var custom CustomError
	if errors.As(err, &custom) {
		if custom == 0 {
			return 1 << builtinBitShift
		}
		return uint64(uint32(custom))
	}

	var key InstructionErrorKey
	if errors.As(err, &key) {
		if code, ok := builtinErrorCodes[key]; ok {
			return code << builtinBitShift
		}
	}

	return builtinErrorCodes[InstructionErrorInvalidArgument] << builtinBitShift
}

// InstructionError indicates an instruction returned an error in a transaction.
type InstructionError struct {
	Index int
	Err   error
}

func (i InstructionError) Error() string {
	return fmt.Sprintf("Error processing Instruction %d: %v", i.Index, i.Err)
}

func (i InstructionError) Unwrap() error {
	return i.Err
}

func (i InstructionError) ErrorKey() InstructionErrorKey {
	if i.Err == nil {
		return ""
	}

	if i.CustomError() != nil {
		return "Custom"
	}

	var key InstructionErrorKey
	if errors.As(i.Err, &key) {
		return key
	}
	return InstructionErrorGenericError
}

func (i InstructionError) CustomError() *CustomError {
	var ce CustomError
	if errors.As(i.Err, &ce) {
		return &ce
	}

	return nil
}
