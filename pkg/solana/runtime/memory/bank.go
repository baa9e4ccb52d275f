package memory

import (
	"bytes"
	"context"
	"crypto/ed25519"
	"sync"

	"github.com/holiman/uint256"
	"github.com/mr-tron/base58/base58"
	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"

	"github.com/code-payments/locker-bridge/pkg/solana"
	"github.com/code-payments/locker-bridge/pkg/solana/runtime"
	xsync "github.com/code-payments/locker-bridge/pkg/sync"
	"github.com/code-payments/locker-bridge/pkg/solana/system"
	"github.com/code-payments/locker-bridge/pkg/solana/token"
)

var ErrAccountNotFound = errors.New("account not found")

const accountLockStripes = 64

var (
	nativeLoader ed25519.PublicKey
	bpfLoader    ed25519.PublicKey
)

func init() {
	var err error

	nativeLoader, err = base58.Decode("NativeLoader1111111111111111111111111111111")
	if err != nil {
		panic(err)
	}

	bpfLoader, err = base58.Decode("BPFLoader2111111111111111111111111111111111")
	if err != nil {
		panic(err)
	}
}

// Bank is an in-memory ledger that executes program instructions with the
// same all-or-nothing semantics as a validator: a program runs against copies
// of its accounts, and the copies replace the stored accounts only when the
// instruction succeeds.
//
// Execute treats signer flags on the instruction's account metas as verified
// signatures. ProcessTransaction only grants signer privileges to accounts
// that signed the transaction.
//
// Instructions and transactions that write disjoint sets of accounts run in
// parallel. Ones that share a writable account are serialized.
type Bank struct {
	log *logrus.Entry

	accountLocks *xsync.StripedLock

	mu       sync.RWMutex
	accounts map[string]*runtime.AccountInfo
	programs map[string]runtime.Program
}

// NewBank returns a bank seeded with the system program, the token program
// and the rent sysvar.
func NewBank() *Bank {
	b := &Bank{
		log:          logrus.StandardLogger().WithField("type", "solana/runtime/memory"),
		accountLocks: xsync.NewStripedLock(accountLockStripes),
		accounts:     make(map[string]*runtime.AccountInfo),
		programs:     make(map[string]runtime.Program),
	}

	b.programs[string(system.SystemAccount)] = runtime.ProgramFunc(processSystem)
	b.programs[string(token.ProgramKey)] = runtime.ProgramFunc(processToken)

	b.setExecutable(system.SystemAccount, nativeLoader)
	b.setExecutable(token.ProgramKey, bpfLoader)

	rent := system.DefaultRent()
	rentData := rent.Marshal()
	b.accounts[string(system.RentSysVar)] = &runtime.AccountInfo{
		Key:      system.RentSysVar,
		Owner:    system.SysVarProgram,
		Lamports: rent.MinimumBalance(uint64(len(rentData))),
		Data:     rentData,
	}

	return b
}

// RegisterProgram deploys program at address. Registering over an existing
// program replaces it.
func (b *Bank) RegisterProgram(address ed25519.PublicKey, program runtime.Program) {
	unlock := b.lockAccounts(xsync.KeyAccess{Key: address, Exclusive: true})
	defer unlock()

	b.mu.Lock()
	defer b.mu.Unlock()

	b.programs[string(address)] = program
	b.setExecutable(address, bpfLoader)
}

// SetAccount stores a copy of account, replacing whatever lived at its key.
func (b *Bank) SetAccount(account *runtime.AccountInfo) {
	unlock := b.lockAccounts(xsync.KeyAccess{Key: account.Key, Exclusive: true})
	defer unlock()

	b.mu.Lock()
	defer b.mu.Unlock()

	stored := account.Clone()
	stored.IsSigner = false
	stored.IsWritable = false
	b.accounts[string(stored.Key)] = stored
}

// GetAccount returns a copy of the account stored at address.
func (b *Bank) GetAccount(address ed25519.PublicKey) (*runtime.AccountInfo, error) {
	b.mu.RLock()
	defer b.mu.RUnlock()

	stored, ok := b.accounts[string(address)]
	if !ok {
		return nil, ErrAccountNotFound
	}
	return stored.Clone(), nil
}

// GetBalance returns the lamport balance at address, which is zero for
// accounts that don't exist.
func (b *Bank) GetBalance(address ed25519.PublicKey) uint64 {
	b.mu.RLock()
	defer b.mu.RUnlock()

	stored, ok := b.accounts[string(address)]
	if !ok {
		return 0
	}
	return stored.Lamports
}

// Airdrop credits lamports to address, creating a system account if needed.
func (b *Bank) Airdrop(address ed25519.PublicKey, lamports uint64) error {
	unlock := b.lockAccounts(xsync.KeyAccess{Key: address, Exclusive: true})
	defer unlock()

	b.mu.Lock()
	defer b.mu.Unlock()

	stored, ok := b.accounts[string(address)]
	if !ok {
		stored = newSystemAccount(address)
		b.accounts[string(address)] = stored
	}

	if stored.Lamports+lamports < stored.Lamports {
		return errors.Wrapf(solana.ErrArithmeticOverflow, "cannot airdrop %d lamports to %s", lamports, base58.Encode(address))
	}
	stored.Lamports += lamports
	return nil
}

// Execute runs a single instruction. On failure nothing is committed and the
// program's error is returned wrapped in a solana.InstructionError.
func (b *Bank) Execute(ctx context.Context, ix solana.Instruction) error {
	instructions := []solana.Instruction{ix}

	unlock := b.lockAccounts(accessList(instructions)...)
	defer unlock()

	return b.executeAtomically(ctx, instructions)
}

// ProcessTransaction verifies the transaction's signatures and runs its
// instructions in order. Either every instruction succeeds and all changes
// are committed, or nothing is. An instruction failure is reported as a
// solana.InstructionError carrying the failed instruction's index.
func (b *Bank) ProcessTransaction(ctx context.Context, txn solana.Transaction) error {
	if err := txn.VerifySignatures(); err != nil {
		return err
	}

	instructions, err := txn.Message.DecompileInstructions()
	if err != nil {
		return errors.Wrap(err, "invalid transaction message")
	}

	unlock := b.lockAccounts(accessList(instructions)...)
	defer unlock()

	return b.executeAtomically(ctx, instructions)
}

func (b *Bank) lockAccounts(keys ...xsync.KeyAccess) (unlock func()) {
	return b.accountLocks.LockAll(keys)
}

// accessList is every key the instructions touch. Programs and read-only
// accounts are shared, writable accounts are exclusive.
func accessList(instructions []solana.Instruction) []xsync.KeyAccess {
	var keys []xsync.KeyAccess
	for _, ix := range instructions {
		keys = append(keys, xsync.KeyAccess{Key: ix.Program})
		for _, meta := range ix.Accounts {
			keys = append(keys, xsync.KeyAccess{Key: meta.PublicKey, Exclusive: meta.IsWritable})
		}
	}
	return keys
}

func (b *Bank) executeAtomically(ctx context.Context, instructions []solana.Instruction) error {
	loaded := make(map[string]*runtime.AccountInfo)

	for i, ix := range instructions {
		log := b.log.WithFields(logrus.Fields{
			"method":  "Execute",
			"program": base58.Encode(ix.Program),
			"index":   i,
		})

		if err := b.executeInstruction(ctx, loaded, ix); err != nil {
			log.WithError(err).WithField("instruction", ix.String()).Debug("instruction failed, discarding changes")
			return solana.InstructionError{Index: i, Err: err}
		}
	}

	b.mu.Lock()
	for key, account := range loaded {
		b.accounts[key] = account
	}
	b.mu.Unlock()

	b.log.WithFields(logrus.Fields{
		"instructions": len(instructions),
		"accounts":     len(loaded),
	}).Debug("changes committed")
	return nil
}

// executeInstruction runs ix against the accounts loaded so far in the
// enclosing transaction. loaded is only updated when ix succeeds.
func (b *Bank) executeInstruction(ctx context.Context, loaded map[string]*runtime.AccountInfo, ix solana.Instruction) error {
	working := make(map[string]*runtime.AccountInfo)
	originals := make([]*runtime.AccountInfo, 0, len(ix.Accounts))
	accounts := make([]*runtime.AccountInfo, len(ix.Accounts))
	for i, meta := range ix.Accounts {
		account, ok := working[string(meta.PublicKey)]
		if !ok {
			stored, ok := loaded[string(meta.PublicKey)]
			if !ok {
				stored = b.load(meta.PublicKey)
			}

			account = stored.Clone()
			working[string(meta.PublicKey)] = account
			originals = append(originals, account.Clone())
		}

		account.IsSigner = account.IsSigner || meta.IsSigner
		account.IsWritable = account.IsWritable || meta.IsWritable
		accounts[i] = account
	}

	inv := newInvocation(b, ix.Program, working)
	if err := inv.process(ctx, accounts, ix.Data); err != nil {
		return err
	}
	if err := inv.verify(); err != nil {
		return err
	}
	if err := verifyBalanced(originals, accounts); err != nil {
		return err
	}

	for key, account := range working {
		account.IsSigner = false
		account.IsWritable = false
		loaded[key] = account
	}
	return nil
}

func (b *Bank) load(address ed25519.PublicKey) *runtime.AccountInfo {
	b.mu.RLock()
	defer b.mu.RUnlock()

	stored, ok := b.accounts[string(address)]
	if !ok {
		return newSystemAccount(address)
	}
	return stored.Clone()
}

func (b *Bank) program(address ed25519.PublicKey) (runtime.Program, bool) {
	b.mu.RLock()
	defer b.mu.RUnlock()

	program, ok := b.programs[string(address)]
	return program, ok
}

func (b *Bank) setExecutable(address, loader ed25519.PublicKey) {
	b.accounts[string(address)] = &runtime.AccountInfo{
		Key:        append(ed25519.PublicKey(nil), address...),
		Owner:      loader,
		Lamports:   1,
		Executable: true,
	}
}

func newSystemAccount(address ed25519.PublicKey) *runtime.AccountInfo {
	return &runtime.AccountInfo{
		Key:   append(ed25519.PublicKey(nil), address...),
		Owner: append(ed25519.PublicKey(nil), system.SystemAccount...),
	}
}

// verifyAccount checks that a read-only account is untouched, and that only
// the owning program modified a writable account's data or owner.
func verifyAccount(programID ed25519.PublicKey, pre, post *runtime.AccountInfo) error {
	dataChanged := !bytes.Equal(pre.Data, post.Data)
	ownerChanged := !bytes.Equal(pre.Owner, post.Owner)

	if !post.IsWritable {
		if pre.Lamports != post.Lamports {
			return solana.ErrReadonlyLamportChange
		}
		if dataChanged || ownerChanged {
			return solana.ErrReadonlyDataModified
		}
		return nil
	}

	if (dataChanged || ownerChanged) && !pre.IsOwnedBy(programID) {
		return solana.ErrExternalDataModified
	}
	return nil
}

// verifyBalanced checks that no lamports were created or destroyed. Both
// lists may repeat an account; each key is counted once.
func verifyBalanced(pre, post []*runtime.AccountInfo) error {
	before := sumLamports(pre)
	after := sumLamports(post)
	if !before.Eq(after) {
		return solana.ErrUnbalancedInstruction
	}
	return nil
}

func sumLamports(accounts []*runtime.AccountInfo) *uint256.Int {
	seen := make(map[string]struct{})
	total := uint256.NewInt(0)
	for _, account := range accounts {
		if _, ok := seen[string(account.Key)]; ok {
			continue
		}
		seen[string(account.Key)] = struct{}{}

		total.AddUint64(total, account.Lamports)
	}
	return total
}
