package memory

import (
	"context"
	"crypto/ed25519"

	"github.com/mr-tron/base58/base58"
	"github.com/sirupsen/logrus"

	"github.com/code-payments/locker-bridge/pkg/solana"
	"github.com/code-payments/locker-bridge/pkg/solana/runtime"
)

const maxInvokeDepth = 4

// invocation is the execution context of one program on the call stack. It
// snapshots the accounts the program can see so that every change can be
// attributed to the program that made it.
type invocation struct {
	bank      *Bank
	programID ed25519.PublicKey
	depth     int

	accounts map[string]*runtime.AccountInfo
	pre      map[string]*runtime.AccountInfo
}

func newInvocation(b *Bank, programID ed25519.PublicKey, accounts map[string]*runtime.AccountInfo) *invocation {
	inv := &invocation{
		bank:      b,
		programID: programID,
		depth:     1,
		accounts:  accounts,
		pre:       make(map[string]*runtime.AccountInfo, len(accounts)),
	}
	for key, account := range accounts {
		inv.pre[key] = account.Clone()
	}
	return inv
}

func (inv *invocation) process(ctx context.Context, accounts []*runtime.AccountInfo, data []byte) error {
	program, ok := inv.bank.program(inv.programID)
	if !ok {
		return solana.ErrUnsupportedProgramID
	}
	return program.Process(ctx, inv, inv.programID, accounts, data)
}

// verify checks every change made since the last snapshot against the
// program that is currently running.
func (inv *invocation) verify() error {
	for key, account := range inv.accounts {
		if err := verifyAccount(inv.programID, inv.pre[key], account); err != nil {
			return err
		}
	}
	return nil
}

// Invoke implements runtime.Invoker.Invoke
func (inv *invocation) Invoke(ctx context.Context, ix solana.Instruction, accounts []*runtime.AccountInfo) error {
	return inv.invoke(ctx, ix, accounts, nil)
}

// InvokeSigned implements runtime.Invoker.InvokeSigned
func (inv *invocation) InvokeSigned(ctx context.Context, ix solana.Instruction, accounts []*runtime.AccountInfo, signerSeeds ...[][]byte) error {
	signers := make(map[string]struct{}, len(signerSeeds))
	for _, seeds := range signerSeeds {
		address, err := solana.CreateProgramAddress(inv.programID, seeds...)
		if err != nil {
			return solana.ErrInvalidSeeds
		}
		signers[string(address)] = struct{}{}
	}

	return inv.invoke(ctx, ix, accounts, signers)
}

func (inv *invocation) invoke(ctx context.Context, ix solana.Instruction, accounts []*runtime.AccountInfo, signers map[string]struct{}) error {
	log := inv.bank.log.WithFields(logrus.Fields{
		"method": "Invoke",
		"caller": base58.Encode(inv.programID),
		"callee": base58.Encode(ix.Program),
	})

	if inv.depth >= maxInvokeDepth {
		return solana.ErrCallDepth
	}

	// The caller's own changes are settled before control moves to the callee.
	if err := inv.verify(); err != nil {
		return err
	}

	sources := make(map[string]*runtime.AccountInfo)
	for _, account := range accounts {
		sources[string(account.Key)] = account
	}

	views := make(map[string]*runtime.AccountInfo)
	calleeAccounts := make([]*runtime.AccountInfo, len(ix.Accounts))
	for i, meta := range ix.Accounts {
		source, ok := sources[string(meta.PublicKey)]
		if !ok {
			log.WithField("account", base58.Encode(meta.PublicKey)).Debug("account not provided to invoke")
			return solana.ErrMissingAccount
		}

		if meta.IsWritable && !source.IsWritable {
			return solana.ErrPrivilegeEscalation
		}
		if meta.IsSigner && !source.IsSigner {
			if _, ok := signers[string(meta.PublicKey)]; !ok {
				return solana.ErrPrivilegeEscalation
			}
		}

		view, ok := views[string(meta.PublicKey)]
		if !ok {
			view = source.Clone()
			view.IsSigner = false
			view.IsWritable = false
			views[string(meta.PublicKey)] = view
		}
		view.IsSigner = view.IsSigner || meta.IsSigner
		view.IsWritable = view.IsWritable || meta.IsWritable
		calleeAccounts[i] = view
	}

	callee := newInvocation(inv.bank, ix.Program, views)
	callee.depth = inv.depth + 1

	pre := make([]*runtime.AccountInfo, 0, len(views))
	for _, view := range callee.pre {
		pre = append(pre, view)
	}

	if err := callee.process(ctx, calleeAccounts, ix.Data); err != nil {
		log.WithError(err).Debug("invoked instruction failed")
		return err
	}
	if err := callee.verify(); err != nil {
		return err
	}
	if err := verifyBalanced(pre, calleeAccounts); err != nil {
		return err
	}

	for key, view := range views {
		targets := []*runtime.AccountInfo{sources[key]}
		if current, ok := inv.accounts[key]; ok && current != sources[key] {
			targets = append(targets, current)
		}

		for _, target := range targets {
			target.Lamports = view.Lamports
			target.Owner = append(ed25519.PublicKey(nil), view.Owner...)
			target.Data = append([]byte(nil), view.Data...)
		}

		if _, ok := inv.pre[key]; ok {
			inv.pre[key] = sources[key].Clone()
		}
	}

	return nil
}
