package solana

import (
	"bytes"
	"crypto/ed25519"
	"crypto/sha256"
	"fmt"
	"sort"
	"strings"

	"github.com/mr-tron/base58/base58"
	"github.com/pkg/errors"
)

const (
	// MaxTransactionSize taken from: https://github.com/solana-labs/solana/blob/39b3ac6a8d29e14faa1de73d8b46d390ad41797b/sdk/src/packet.rs#L9-L13
	MaxTransactionSize = 1232
)

var (
	ErrSignatureFailure      = errors.New("transaction signature verification failure")
	ErrTransactionTooLarge   = errors.New("transaction too large")
	ErrInvalidAccountIndex   = errors.New("invalid account index")
	ErrMissingPayerSignature = errors.New("transaction has no fee payer")
)

type Signature [ed25519.SignatureSize]byte
type Blockhash [sha256.Size]byte

// Header describes how the message's account list is partitioned. Accounts
// are ordered writable signers, readonly signers, writable non-signers and
// then readonly non-signers.
type Header struct {
	NumSignatures     byte
	NumReadonlySigned byte
	NumReadOnly       byte
}

// CompiledInstruction is an instruction whose program and accounts are
// indexes into the message's account list.
type CompiledInstruction struct {
	ProgramIndex byte
	Accounts     []byte
	Data         []byte
}

// Message is a legacy transaction message.
type Message struct {
	Header          Header
	Accounts        []ed25519.PublicKey
	RecentBlockhash Blockhash
	Instructions    []CompiledInstruction
}

type Transaction struct {
	Signatures []Signature
	Message    Message
}

// NewTransaction compiles instructions into an unsigned transaction paid for
// by payer.
func NewTransaction(payer ed25519.PublicKey, instructions ...Instruction) Transaction {
	accounts := []compiledAccount{
		{
			key:      payer,
			signer:   true,
			writable: true,
			payer:    true,
		},
	}

	for _, ix := range instructions {
		accounts = append(accounts, compiledAccount{
			key:     ix.Program,
			program: true,
		})
		for _, meta := range ix.Accounts {
			accounts = append(accounts, compiledAccount{
				key:      meta.PublicKey,
				signer:   meta.IsSigner,
				writable: meta.IsWritable,
			})
		}
	}

	accounts = mergeAccounts(accounts)
	sort.Stable(byCompileOrder(accounts))

	var m Message
	for _, account := range accounts {
		m.Accounts = append(m.Accounts, account.key)

		if account.signer {
			m.Header.NumSignatures++
			if !account.writable {
				m.Header.NumReadonlySigned++
			}
		} else if !account.writable {
			m.Header.NumReadOnly++
		}
	}

	for _, ix := range instructions {
		compiled := CompiledInstruction{
			ProgramIndex: byte(indexOf(m.Accounts, ix.Program)),
			Data:         ix.Data,
		}
		for _, meta := range ix.Accounts {
			compiled.Accounts = append(compiled.Accounts, byte(indexOf(m.Accounts, meta.PublicKey)))
		}
		m.Instructions = append(m.Instructions, compiled)
	}

	for i := range m.Accounts {
		if len(m.Accounts[i]) == 0 {
			m.Accounts[i] = make([]byte, ed25519.PublicKeySize)
		}
	}

	return Transaction{
		Signatures: make([]Signature, m.Header.NumSignatures),
		Message:    m,
	}
}

func (t *Transaction) Signature() []byte {
	return t.Signatures[0][:]
}

func (t *Transaction) SetBlockhash(bh Blockhash) {
	t.Message.RecentBlockhash = bh
}

// Sign signs the message with each key. Keys may be provided in any order.
func (t *Transaction) Sign(signers ...ed25519.PrivateKey) error {
	messageBytes := t.Message.Marshal()

	for _, s := range signers {
		pub := s.Public().(ed25519.PublicKey)
		index := indexOf(t.Message.Accounts, pub)
		if index < 0 {
			return errors.Errorf("signing account %s is not in the account list", base58.Encode(pub))
		}
		if index >= len(t.Signatures) {
			return errors.Errorf("signing account %s is not in the list of signers", base58.Encode(pub))
		}

		copy(t.Signatures[index][:], ed25519.Sign(s, messageBytes))
	}

	return nil
}

// VerifySignatures checks that every required signer signed the message.
func (t *Transaction) VerifySignatures() error {
	numSignatures := int(t.Message.Header.NumSignatures)
	if numSignatures == 0 {
		return ErrMissingPayerSignature
	}
	if len(t.Signatures) != numSignatures || len(t.Message.Accounts) < numSignatures {
		return ErrSignatureFailure
	}

	messageBytes := t.Message.Marshal()
	for i, sig := range t.Signatures {
		if len(t.Message.Accounts[i]) != ed25519.PublicKeySize {
			return ErrSignatureFailure
		}
		if !ed25519.Verify(t.Message.Accounts[i], messageBytes, sig[:]) {
			return errors.Wrapf(ErrSignatureFailure, "account %s", base58.Encode(t.Message.Accounts[i]))
		}
	}
	return nil
}

// IsSigner reports whether the account at index signed the message.
func (m *Message) IsSigner(index int) bool {
	return index < int(m.Header.NumSignatures)
}

// IsWritable reports whether the account at index is writable.
func (m *Message) IsWritable(index int) bool {
	numSigned := int(m.Header.NumSignatures)
	if index < numSigned {
		return index < numSigned-int(m.Header.NumReadonlySigned)
	}
	return index < len(m.Accounts)-int(m.Header.NumReadOnly)
}

// DecompileInstructions expands the compiled instructions back into
// instructions whose account metas carry the message-level signer and
// writable flags.
func (m *Message) DecompileInstructions() ([]Instruction, error) {
	if int(m.Header.NumSignatures) > len(m.Accounts) ||
		int(m.Header.NumReadonlySigned) > int(m.Header.NumSignatures) ||
		int(m.Header.NumReadOnly) > len(m.Accounts)-int(m.Header.NumSignatures) {
		return nil, errors.New("invalid message header")
	}

	instructions := make([]Instruction, len(m.Instructions))
	for i, compiled := range m.Instructions {
		if int(compiled.ProgramIndex) >= len(m.Accounts) {
			return nil, errors.Wrapf(ErrInvalidAccountIndex, "instruction %d program", i)
		}

		metas := make([]AccountMeta, len(compiled.Accounts))
		for j, index := range compiled.Accounts {
			if int(index) >= len(m.Accounts) {
				return nil, errors.Wrapf(ErrInvalidAccountIndex, "instruction %d account %d", i, j)
			}

			metas[j] = AccountMeta{
				PublicKey:  m.Accounts[index],
				IsSigner:   m.IsSigner(int(index)),
				IsWritable: m.IsWritable(int(index)),
			}
		}

		instructions[i] = NewInstruction(m.Accounts[compiled.ProgramIndex], compiled.Data, metas...)
	}
	return instructions, nil
}

func (t *Transaction) String() string {
	var sb strings.Builder
	sb.WriteString("Signatures:\n")
	for i, s := range t.Signatures {
		sb.WriteString(fmt.Sprintf("  %d: %s\n", i, base58.Encode(s[:])))
	}
	sb.WriteString("Message:\n")
	sb.WriteString("  Header:\n")
	sb.WriteString(fmt.Sprintf("    NumSignatures: %d\n", t.Message.Header.NumSignatures))
	sb.WriteString(fmt.Sprintf("    NumReadOnly: %d\n", t.Message.Header.NumReadOnly))
	sb.WriteString(fmt.Sprintf("    NumReadOnlySigned: %d\n", t.Message.Header.NumReadonlySigned))
	sb.WriteString("  Accounts:\n")
	for i, a := range t.Message.Accounts {
		sb.WriteString(fmt.Sprintf("    %d: %s\n", i, base58.Encode(a)))
	}
	sb.WriteString("  Instructions:\n")
	for i, ix := range t.Message.Instructions {
		sb.WriteString(fmt.Sprintf("    %d:\n", i))
		sb.WriteString(fmt.Sprintf("      ProgramIndex: %d\n", ix.ProgramIndex))
		sb.WriteString(fmt.Sprintf("      Accounts: %v\n", ix.Accounts))
		sb.WriteString(fmt.Sprintf("      Data: %v\n", ix.Data))
	}
	return sb.String()
}

type compiledAccount struct {
	key      ed25519.PublicKey
	signer   bool
	writable bool
	payer    bool
	program  bool
}

// mergeAccounts deduplicates accounts by key, promoting each survivor to the
// union of its privileges.
func mergeAccounts(accounts []compiledAccount) []compiledAccount {
	merged := make([]compiledAccount, 0, len(accounts))
	positions := make(map[string]int)

	for _, account := range accounts {
		i, ok := positions[string(account.key)]
		if !ok {
			positions[string(account.key)] = len(merged)
			merged = append(merged, account)
			continue
		}

		merged[i].signer = merged[i].signer || account.signer
		merged[i].writable = merged[i].writable || account.writable
		merged[i].payer = merged[i].payer || account.payer
		merged[i].program = merged[i].program || account.program
	}

	return merged
}

// byCompileOrder sorts accounts by the transaction account ordering rules:
// the payer first, then signers before non-signers, writable before readonly,
// and programs last.
//
// Reference: https://docs.solana.com/transaction#account-addresses-format
type byCompileOrder []compiledAccount

func (s byCompileOrder) Len() int {
	return len(s)
}

func (s byCompileOrder) Less(i int, j int) bool {
	if s[i].payer != s[j].payer {
		return s[i].payer
	}
	if s[i].program != s[j].program {
		return !s[i].program
	}
	if s[i].signer != s[j].signer {
		return s[i].signer
	}
	if s[i].writable != s[j].writable {
		return s[i].writable
	}
	return bytes.Compare(s[i].key, s[j].key) < 0
}

func (s byCompileOrder) Swap(i int, j int) {
	s[i], s[j] = s[j], s[i]
}

func indexOf(slice []ed25519.PublicKey, item ed25519.PublicKey) int {
	for i, val := range slice {
		if bytes.Equal(val, item) {
			return i
		}
	}
	return -1
}
