package solana

import (
	"crypto/ed25519"
	"fmt"
	"strings"

	"github.com/mr-tron/base58/base58"
	"github.com/pkg/errors"
)

var (
	ErrIncorrectProgram     = errors.New("incorrect program")
	ErrIncorrectInstruction = errors.New("incorrect instruction")
)

// AccountMeta is an account an instruction references, along with the
// privileges the instruction needs for it.
type AccountMeta struct {
	PublicKey  ed25519.PublicKey
	IsSigner   bool
	IsWritable bool
}

// NewAccountMeta returns a writable AccountMeta.
func NewAccountMeta(pub ed25519.PublicKey, isSigner bool) AccountMeta {
	return AccountMeta{PublicKey: pub, IsSigner: isSigner, IsWritable: true}
}

// NewReadonlyAccountMeta returns a read-only AccountMeta.
func NewReadonlyAccountMeta(pub ed25519.PublicKey, isSigner bool) AccountMeta {
	return AccountMeta{PublicKey: pub, IsSigner: isSigner}
}

func (m AccountMeta) String() string {
	var flags []string
	if m.IsSigner {
		flags = append(flags, "signer")
	}
	if m.IsWritable {
		flags = append(flags, "writable")
	}
	if len(flags) == 0 {
		return base58.Encode(m.PublicKey)
	}
	return fmt.Sprintf("%s (%s)", base58.Encode(m.PublicKey), strings.Join(flags, ", "))
}

// Instruction is a call into a program with the accounts it may read or
// write.
type Instruction struct {
	Program  ed25519.PublicKey
	Accounts []AccountMeta
	Data     []byte
}

func NewInstruction(program ed25519.PublicKey, data []byte, accounts ...AccountMeta) Instruction {
	return Instruction{
		Program:  program,
		Data:     data,
		Accounts: accounts,
	}
}

func (i Instruction) String() string {
	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("program: %s, data: %x, accounts: [", base58.Encode(i.Program), i.Data))
	for j, meta := range i.Accounts {
		if j > 0 {
			sb.WriteString(", ")
		}
		sb.WriteString(meta.String())
	}
	sb.WriteString("]")
	return sb.String()
}
