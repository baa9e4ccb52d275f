package processor

import (
	"context"
	"crypto/ed25519"
	"errors"
	"math"
	"testing"

	"github.com/holiman/uint256"
	"github.com/newrelic/go-agent/v3/newrelic"
	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	memory_config "github.com/code-payments/locker-bridge/pkg/config/memory"
	"github.com/code-payments/locker-bridge/pkg/config/wrapper"
	"github.com/code-payments/locker-bridge/pkg/metrics"
	"github.com/code-payments/locker-bridge/pkg/solana"
	"github.com/code-payments/locker-bridge/pkg/solana/locker"
	"github.com/code-payments/locker-bridge/pkg/solana/runtime"
	"github.com/code-payments/locker-bridge/pkg/solana/runtime/memory"
	"github.com/code-payments/locker-bridge/pkg/solana/system"
	"github.com/code-payments/locker-bridge/pkg/solana/token"
	"github.com/code-payments/locker-bridge/pkg/testutil"
)

const (
	payerBalance = 10_000_000_000
	userBalance  = 5_000_000_000
)

func TestEndToEnd(t *testing.T) {
	env := setup(t, defaultTestConfig())
	env.initialize(t)

	rent := system.DefaultRent()
	ledger := env.getLedger(t)
	assert.True(t, ledger.IsInitialized)
	assert.EqualValues(t, env.authority, ledger.Authority)
	assert.EqualValues(t, 0, ledger.TotalLocked)
	assert.EqualValues(t, 0, ledger.TotalMinted)

	for _, log := range []ed25519.PublicKey{env.mintLog, env.burnLog} {
		info, err := env.bank.GetAccount(log)
		require.NoError(t, err)
		assert.True(t, info.IsOwnedBy(locker.PROGRAM_ID))
		assert.Len(t, info.Data, locker.EventLogAccountSize)
		assert.EqualValues(t, rent.MinimumBalance(locker.EventLogAccountSize), info.Lamports)
	}
	assert.EqualValues(t, rent.MinimumBalance(locker.LockerAccountSize), env.bank.GetBalance(env.state))
	assert.EqualValues(
		t,
		payerBalance-rent.MinimumBalance(locker.LockerAccountSize)-2*rent.MinimumBalance(locker.EventLogAccountSize),
		env.bank.GetBalance(env.payer),
	)

	destination := newDestination(0xd)

	require.NoError(t, env.lockAndMint(1_000_000_000, destination))
	assert.EqualValues(t, 1_000_000_000, env.getLedger(t).TotalLocked)
	assert.EqualValues(t, userBalance-1_000_000_000, env.bank.GetBalance(env.user))
	assert.EqualValues(t, rent.MinimumBalance(locker.LockerAccountSize)+1_000_000_000, env.bank.GetBalance(env.state))

	event := env.getEventLog(t, env.mintLog)
	assert.Equal(t, uint256.MustFromDecimal("1000000000000000000"), event.Amount)
	assert.Equal(t, destination, event.Recipient)

	require.NoError(t, env.mint(env.authority, 1_000_000_000))
	assert.EqualValues(t, 1_000_000_000, env.getLedger(t).TotalMinted)
	assert.EqualValues(t, 1_000_000_000, env.getTokenBalance(t))

	require.NoError(t, env.burnAndRelease(1_000_000_000, destination))
	assert.EqualValues(t, 0, env.getLedger(t).TotalMinted)
	assert.EqualValues(t, 0, env.getTokenBalance(t))

	event = env.getEventLog(t, env.burnLog)
	assert.Equal(t, uint256.MustFromDecimal("1000000000000000000"), event.Amount)
	assert.Equal(t, destination, event.Recipient)

	recipient := testutil.GenerateSolanaKeys(t, 1)[0]
	require.NoError(t, env.release(env.authority, recipient, 400_000_000))
	assert.EqualValues(t, 600_000_000, env.getLedger(t).TotalLocked)
	assert.EqualValues(t, 400_000_000, env.bank.GetBalance(recipient))
	assert.EqualValues(t, rent.MinimumBalance(locker.LockerAccountSize)+600_000_000, env.bank.GetBalance(env.state))
}

func TestInitialize_AlreadyInitialized(t *testing.T) {
	env := setup(t, defaultTestConfig())
	env.initialize(t)

	ix := locker.NewInitializeInstruction(env.initializeAccounts(), &locker.InitializeInstructionArgs{
		Authority: env.user,
	})
	err := env.bank.Execute(env.ctx, ix)
	assert.ErrorIs(t, err, system.ErrorAccountAlreadyInUse)

	assert.EqualValues(t, env.authority, env.getLedger(t).Authority)
}

func TestInitialize_InvalidAccounts(t *testing.T) {
	env := setup(t, defaultTestConfig())
	args := &locker.InitializeInstructionArgs{Authority: env.authority}

	for _, tc := range []struct {
		name     string
		modify   func(ix *solana.Instruction)
		expected error
	}{
		{
			name:     "payer not signer",
			modify:   func(ix *solana.Instruction) { ix.Accounts[0].IsSigner = false },
			expected: solana.ErrMissingRequiredSignature,
		},
		{
			name:     "wrong ledger address",
			modify:   func(ix *solana.Instruction) { ix.Accounts[1].PublicKey = env.mintLog },
			expected: solana.ErrInvalidAccountData,
		},
		{
			name:     "wrong burn log address",
			modify:   func(ix *solana.Instruction) { ix.Accounts[3].PublicKey = env.mintLog },
			expected: solana.ErrInvalidAccountData,
		},
		{
			name:     "wrong program account",
			modify:   func(ix *solana.Instruction) { ix.Accounts[4].PublicKey = locker.SPL_TOKEN_PROGRAM_ID },
			expected: solana.ErrInvalidAccountData,
		},
		{
			name:     "wrong system program",
			modify:   func(ix *solana.Instruction) { ix.Accounts[5].PublicKey = locker.SPL_TOKEN_PROGRAM_ID },
			expected: solana.ErrInvalidAccountData,
		},
		{
			name:     "wrong rent sysvar",
			modify:   func(ix *solana.Instruction) { ix.Accounts[6].PublicKey = env.user },
			expected: solana.ErrInvalidArgument,
		},
		{
			name:     "missing accounts",
			modify:   func(ix *solana.Instruction) { ix.Accounts = ix.Accounts[:6] },
			expected: solana.ErrNotEnoughAccountKeys,
		},
	} {
		t.Run(tc.name, func(t *testing.T) {
			ix := locker.NewInitializeInstruction(env.initializeAccounts(), args)
			tc.modify(&ix)

			err := env.bank.Execute(env.ctx, ix)
			assert.ErrorIs(t, err, tc.expected)

			_, err = env.bank.GetAccount(env.state)
			assert.Equal(t, memory.ErrAccountNotFound, err)
			assert.EqualValues(t, payerBalance, env.bank.GetBalance(env.payer))
		})
	}
}

func TestUninitializedLedger(t *testing.T) {
	env := setup(t, defaultTestConfig())

	err := env.lockAndMint(1, newDestination(1))
	assert.ErrorIs(t, err, solana.ErrUninitializedAccount)

	err = env.release(env.authority, env.user, 0)
	assert.ErrorIs(t, err, solana.ErrUninitializedAccount)

	// Created, owned by the program, but never initialized
	env.bank.SetAccount(&runtime.AccountInfo{
		Key:      env.state,
		Owner:    locker.PROGRAM_ID,
		Lamports: system.DefaultRent().MinimumBalance(locker.LockerAccountSize),
		Data:     make([]byte, locker.LockerAccountSize),
	})
	err = env.mint(env.authority, 1)
	assert.ErrorIs(t, err, solana.ErrUninitializedAccount)
	assert.EqualValues(t, 0, env.getTokenBalance(t))
}

func TestLedgerOwnership(t *testing.T) {
	env := setup(t, defaultTestConfig())
	env.initialize(t)

	stored, err := env.bank.GetAccount(env.state)
	require.NoError(t, err)
	stored.Owner = env.user
	env.bank.SetAccount(stored)

	err = env.lockAndMint(1, newDestination(1))
	assert.ErrorIs(t, err, solana.ErrInvalidAccountOwner)
	assert.EqualValues(t, userBalance, env.bank.GetBalance(env.user))
}

func TestCorruptLedger(t *testing.T) {
	env := setup(t, defaultTestConfig())
	env.initialize(t)

	stored, err := env.bank.GetAccount(env.state)
	require.NoError(t, err)
	stored.Data[0] = 2
	env.bank.SetAccount(stored)

	err = env.release(env.authority, env.user, 0)
	assert.ErrorIs(t, err, solana.ErrInvalidAccountData)
}

func TestLockAndMint(t *testing.T) {
	env := setup(t, defaultTestConfig())
	env.initialize(t)

	t.Run("missing signature", func(t *testing.T) {
		ix := env.lockAndMintInstruction(1, newDestination(1))
		ix.Accounts[0].IsSigner = false
		assert.ErrorIs(t, env.bank.Execute(env.ctx, ix), solana.ErrMissingRequiredSignature)
	})

	t.Run("wrong mint log", func(t *testing.T) {
		ix := env.lockAndMintInstruction(1, newDestination(1))
		ix.Accounts[2].PublicKey = env.burnLog
		assert.ErrorIs(t, env.bank.Execute(env.ctx, ix), solana.ErrInvalidAccountData)
	})

	t.Run("insufficient lamports", func(t *testing.T) {
		err := env.lockAndMint(userBalance+1, newDestination(1))
		assert.ErrorIs(t, err, system.ErrorResultWithNegativeLamports)
		assert.EqualValues(t, 0, env.getLedger(t).TotalLocked)
		assert.Equal(t, uint256.NewInt(0), env.getEventLog(t, env.mintLog).Amount)
	})

	t.Run("event log overwritten", func(t *testing.T) {
		require.NoError(t, env.lockAndMint(1, newDestination(1)))
		require.NoError(t, env.lockAndMint(2, newDestination(2)))

		event := env.getEventLog(t, env.mintLog)
		assert.Equal(t, uint256.MustFromDecimal("2000000000"), event.Amount)
		assert.Equal(t, newDestination(2), event.Recipient)
		assert.EqualValues(t, 3, env.getLedger(t).TotalLocked)
	})

	t.Run("total locked overflow", func(t *testing.T) {
		env.setLedger(t, func(ledger *locker.LockerAccount) {
			ledger.TotalLocked = math.MaxUint64
		})

		err := env.lockAndMint(1, newDestination(3))
		assert.ErrorIs(t, err, solana.ErrArithmeticOverflow)
		assert.EqualValues(t, uint64(math.MaxUint64), env.getLedger(t).TotalLocked)
		assert.Equal(t, newDestination(2), env.getEventLog(t, env.mintLog).Recipient)
	})
}

func TestRelease(t *testing.T) {
	env := setup(t, defaultTestConfig())
	env.initialize(t)
	require.NoError(t, env.lockAndMint(1_000, newDestination(1)))

	recipient := testutil.GenerateSolanaKeys(t, 1)[0]

	t.Run("underflow", func(t *testing.T) {
		err := env.release(env.authority, recipient, 1_001)
		assert.ErrorIs(t, err, solana.ErrArithmeticOverflow)
		assert.EqualValues(t, solana.InstructionErrorArithmeticOverflow, err.(solana.InstructionError).ErrorKey())
		assert.EqualValues(t, 1_000, env.getLedger(t).TotalLocked)
		assert.EqualValues(t, 0, env.bank.GetBalance(recipient))
	})

	t.Run("invalid authority", func(t *testing.T) {
		logs := testutil.CaptureLogs(t)

		err := env.release(env.user, recipient, 1)
		assert.ErrorIs(t, err, locker.ErrorInvalidAuthority)
		assert.Equal(t, uint64(1)<<32, solana.ErrorCode(err))
		assert.EqualValues(t, 0, env.bank.GetBalance(recipient))

		entry := testutil.FindLogEntry(logs, "instruction failed")
		require.NotNil(t, entry)
		assert.Equal(t, logrus.DebugLevel, entry.Level)
		assert.Equal(t, "Release", entry.Data["instruction"])
		assert.ErrorIs(t, entry.Data[logrus.ErrorKey].(error), locker.ErrorInvalidAuthority)
	})

	t.Run("missing signature", func(t *testing.T) {
		ix := env.releaseInstruction(env.authority, recipient, 1)
		ix.Accounts[0].IsSigner = false
		assert.ErrorIs(t, env.bank.Execute(env.ctx, ix), solana.ErrMissingRequiredSignature)
	})

	t.Run("release to ledger", func(t *testing.T) {
		err := env.release(env.authority, env.state, 1)
		assert.ErrorIs(t, err, solana.ErrInvalidArgument)
	})

	t.Run("happy path", func(t *testing.T) {
		require.NoError(t, env.release(env.authority, recipient, 1_000))
		assert.EqualValues(t, 0, env.getLedger(t).TotalLocked)
		assert.EqualValues(t, 1_000, env.bank.GetBalance(recipient))
	})
}

func TestMint(t *testing.T) {
	env := setup(t, defaultTestConfig())
	env.initialize(t)

	t.Run("invalid authority", func(t *testing.T) {
		err := env.mint(env.user, 1)
		assert.ErrorIs(t, err, locker.ErrorInvalidAuthority)
		assert.EqualValues(t, 0, env.getTokenBalance(t))
	})

	t.Run("mint not owned by token program", func(t *testing.T) {
		ix := env.mintInstruction(env.authority, 1)
		ix.Accounts[3].PublicKey = env.user
		assert.ErrorIs(t, env.bank.Execute(env.ctx, ix), solana.ErrInvalidAccountData)
	})

	t.Run("wrong token program", func(t *testing.T) {
		ix := env.mintInstruction(env.authority, 1)
		ix.Accounts[4].PublicKey = locker.SYSTEM_PROGRAM_ID
		assert.ErrorIs(t, env.bank.Execute(env.ctx, ix), solana.ErrInvalidAccountData)
	})

	t.Run("happy path", func(t *testing.T) {
		require.NoError(t, env.mint(env.authority, 500))
		require.NoError(t, env.mint(env.authority, 250))
		assert.EqualValues(t, 750, env.getLedger(t).TotalMinted)
		assert.EqualValues(t, 750, env.getTokenBalance(t))
	})

	t.Run("total minted overflow", func(t *testing.T) {
		env.setLedger(t, func(ledger *locker.LockerAccount) {
			ledger.TotalMinted = math.MaxUint64
		})

		err := env.mint(env.authority, 1)
		assert.ErrorIs(t, err, solana.ErrArithmeticOverflow)
		assert.EqualValues(t, 750, env.getTokenBalance(t))
	})
}

func TestBurnAndRelease(t *testing.T) {
	env := setup(t, defaultTestConfig())
	env.initialize(t)
	require.NoError(t, env.mint(env.authority, 100))

	t.Run("exceeds total minted", func(t *testing.T) {
		err := env.burnAndRelease(101, newDestination(1))
		assert.ErrorIs(t, err, solana.ErrArithmeticOverflow)
		assert.EqualValues(t, 100, env.getTokenBalance(t))
		assert.EqualValues(t, 100, env.getLedger(t).TotalMinted)
	})

	t.Run("wrong owner", func(t *testing.T) {
		ix := env.burnAndReleaseInstruction(1, newDestination(1))
		ix.Accounts[0].PublicKey = env.authority
		assert.ErrorIs(t, env.bank.Execute(env.ctx, ix), token.ErrorOwnerMismatch)
		assert.EqualValues(t, 100, env.getLedger(t).TotalMinted)
	})

	t.Run("wrong burn log", func(t *testing.T) {
		ix := env.burnAndReleaseInstruction(1, newDestination(1))
		ix.Accounts[2].PublicKey = env.mintLog
		assert.ErrorIs(t, env.bank.Execute(env.ctx, ix), solana.ErrInvalidAccountData)
	})

	t.Run("happy path", func(t *testing.T) {
		require.NoError(t, env.burnAndRelease(40, newDestination(7)))
		assert.EqualValues(t, 60, env.getLedger(t).TotalMinted)
		assert.EqualValues(t, 60, env.getTokenBalance(t))

		event := env.getEventLog(t, env.burnLog)
		assert.Equal(t, uint256.MustFromDecimal("40000000000"), event.Amount)
		assert.Equal(t, newDestination(7), event.Recipient)
	})
}

func TestDecimalsConfig(t *testing.T) {
	env := setup(t, withManualTestOverrides(&testOverrides{
		underlyingDecimals: 12,
		nativeDecimals:     6,
	}))
	env.initialize(t)

	require.NoError(t, env.lockAndMint(1_500, newDestination(1)))
	assert.Equal(t, uint256.NewInt(1_500_000_000), env.getEventLog(t, env.mintLog).Amount)

	invalid := setup(t, withManualTestOverrides(&testOverrides{
		underlyingDecimals: 6,
		nativeDecimals:     9,
	}))
	invalid.initialize(t)

	err := invalid.lockAndMint(1, newDestination(1))
	assert.ErrorIs(t, err, locker.ErrorUnexpectedDecimalConversion)
	assert.EqualValues(t, 2, solana.ErrorCode(err))
	assert.EqualValues(t, 0, invalid.getLedger(t).TotalLocked)
	assert.EqualValues(t, userBalance, invalid.bank.GetBalance(invalid.user))
}

func TestConfigReload(t *testing.T) {
	underlyingDecimals := memory_config.NewConfig(nil)
	env := setup(t, func() *conf {
		return &conf{
			underlyingDecimals: wrapper.NewUint8Config(underlyingDecimals, defaultUnderlyingDecimals),
			nativeDecimals:     wrapper.NewUint8Config(memory_config.NewConfig(nil), defaultNativeDecimals),
			eventsEnabled:      wrapper.NewBoolConfig(memory_config.NewConfig(false), defaultEventsEnabled),
		}
	})
	env.initialize(t)

	require.NoError(t, env.lockAndMint(1_000, newDestination(1)))
	assert.Equal(t, uint256.NewInt(1_000_000_000_000), env.getEventLog(t, env.mintLog).Amount)

	underlyingDecimals.SetValue(uint8(12))
	require.NoError(t, env.lockAndMint(1_000, newDestination(1)))
	assert.Equal(t, uint256.NewInt(1_000_000), env.getEventLog(t, env.mintLog).Amount)

	// A config that can't be read keeps the last value
	underlyingDecimals.SetError(errors.New("unavailable"))
	require.NoError(t, env.lockAndMint(1_000, newDestination(1)))
	assert.Equal(t, uint256.NewInt(1_000_000), env.getEventLog(t, env.mintLog).Amount)
	assert.EqualValues(t, 3_000, env.getLedger(t).TotalLocked)
}

func TestInvalidInstructionData(t *testing.T) {
	env := setup(t, defaultTestConfig())
	env.initialize(t)

	for _, tc := range []struct {
		data         []byte
		expected     error
		expectedCode uint64
	}{
		{nil, locker.ErrorInvalidInstruction, 1},
		{[]byte{byte(locker.InstructionTypeRelease), 1, 2, 3}, locker.ErrorInvalidInstruction, 1},
		{[]byte{byte(locker.InstructionTypeLockAndMint), 1, 0, 0, 0, 0, 0, 0, 0}, locker.ErrorInvalidInstruction, 1},
		{[]byte{5}, solana.ErrInvalidInstructionData, 3 << 32},
		{[]byte{0xff, 1, 2}, solana.ErrInvalidInstructionData, 3 << 32},
	} {
		ix := solana.NewInstruction(locker.PROGRAM_ID, tc.data, solana.NewAccountMeta(env.payer, true))
		err := env.bank.Execute(env.ctx, ix)
		assert.ErrorIs(t, err, tc.expected)
		assert.Equal(t, tc.expectedCode, solana.ErrorCode(err))
	}
}

func TestAtomicTransaction(t *testing.T) {
	env := setup(t, defaultTestConfig())

	payer := testutil.GenerateSolanaKeypair(t)
	user := testutil.GenerateSolanaKeypair(t)
	env.payer = testutil.PublicKey(payer)
	env.user = testutil.PublicKey(user)
	require.NoError(t, env.bank.Airdrop(env.payer, payerBalance))
	require.NoError(t, env.bank.Airdrop(env.user, userBalance))

	initialize := locker.NewInitializeInstruction(env.initializeAccounts(), &locker.InitializeInstructionArgs{
		Authority: env.authority,
	})

	// LockAndMint fails, which undoes the Initialize before it
	txn := solana.NewTransaction(env.payer, initialize, env.lockAndMintInstruction(userBalance+1, newDestination(1)))
	require.NoError(t, txn.Sign(payer, user))

	err := env.bank.ProcessTransaction(env.ctx, txn)
	assert.ErrorIs(t, err, system.ErrorResultWithNegativeLamports)
	assert.Equal(t, 1, err.(solana.InstructionError).Index)

	_, err = env.bank.GetAccount(env.state)
	assert.Equal(t, memory.ErrAccountNotFound, err)
	assert.EqualValues(t, payerBalance, env.bank.GetBalance(env.payer))

	txn = solana.NewTransaction(env.payer, initialize, env.lockAndMintInstruction(1_000, newDestination(1)))
	require.NoError(t, txn.Sign(payer, user))
	require.NoError(t, env.bank.ProcessTransaction(env.ctx, txn))

	assert.EqualValues(t, 1_000, env.getLedger(t).TotalLocked)
	assert.Equal(t, uint256.NewInt(1_000_000_000_000), env.getEventLog(t, env.mintLog).Amount)
}

func TestProcess_WithTransaction(t *testing.T) {
	env := setup(t, withManualTestOverrides(&testOverrides{
		underlyingDecimals: locker.DefaultUnderlyingDecimals,
		nativeDecimals:     locker.DefaultNativeDecimals,
		eventsEnabled:      true,
	}))

	app, err := newrelic.NewApplication(
		newrelic.ConfigAppName("locker-bridge-test"),
		newrelic.ConfigEnabled(false),
	)
	require.NoError(t, err)

	txn := app.StartTransaction("TestProcess_WithTransaction")
	defer txn.End()

	env.ctx = newrelic.NewContext(metrics.NewContext(env.ctx, app), txn)

	env.initialize(t)
	require.NoError(t, env.lockAndMint(10, newDestination(1)))
	assert.ErrorIs(t, env.release(env.user, env.user, 1), locker.ErrorInvalidAuthority)
	assert.EqualValues(t, 10, env.getLedger(t).TotalLocked)
}

type testEnv struct {
	ctx  context.Context
	bank *memory.Bank

	payer     ed25519.PublicKey
	authority ed25519.PublicKey
	user      ed25519.PublicKey

	mintAccount ed25519.PublicKey
	userTokens  ed25519.PublicKey

	state   ed25519.PublicKey
	mintLog ed25519.PublicKey
	burnLog ed25519.PublicKey
}

func defaultTestConfig() ConfigProvider {
	return withManualTestOverrides(&testOverrides{
		underlyingDecimals: locker.DefaultUnderlyingDecimals,
		nativeDecimals:     locker.DefaultNativeDecimals,
	})
}

func setup(t *testing.T, configProvider ConfigProvider) *testEnv {
	keys := testutil.GenerateSolanaKeys(t, 5)

	env := &testEnv{
		ctx:         context.Background(),
		bank:        memory.NewBank(),
		payer:       keys[0],
		authority:   keys[1],
		user:        keys[2],
		mintAccount: keys[3],
		userTokens:  keys[4],
	}

	var err error
	env.state, _, err = locker.GetLockerStateAddress(locker.PROGRAM_ID)
	require.NoError(t, err)
	env.mintLog, _, err = locker.GetMintLogAddress(locker.PROGRAM_ID)
	require.NoError(t, err)
	env.burnLog, _, err = locker.GetBurnLogAddress(locker.PROGRAM_ID)
	require.NoError(t, err)

	env.bank.RegisterProgram(locker.PROGRAM_ID, New(configProvider))

	require.NoError(t, env.bank.Airdrop(env.payer, payerBalance))
	require.NoError(t, env.bank.Airdrop(env.user, userBalance))

	mint := token.Mint{
		MintAuthority: env.authority,
		Decimals:      locker.DefaultNativeDecimals,
		IsInitialized: true,
	}
	env.bank.SetAccount(&runtime.AccountInfo{
		Key:      env.mintAccount,
		Owner:    token.ProgramKey,
		Lamports: system.DefaultRent().MinimumBalance(token.MintSize),
		Data:     mint.Marshal(),
	})

	tokenAccount := token.Account{
		Mint:  env.mintAccount,
		Owner: env.user,
		State: token.AccountStateInitialized,
	}
	env.bank.SetAccount(&runtime.AccountInfo{
		Key:      env.userTokens,
		Owner:    token.ProgramKey,
		Lamports: system.DefaultRent().MinimumBalance(token.AccountSize),
		Data:     tokenAccount.Marshal(),
	})

	return env
}

func (e *testEnv) initializeAccounts() *locker.InitializeInstructionAccounts {
	return &locker.InitializeInstructionAccounts{
		Payer:   e.payer,
		State:   e.state,
		MintLog: e.mintLog,
		BurnLog: e.burnLog,
	}
}

func (e *testEnv) initialize(t *testing.T) {
	ix := locker.NewInitializeInstruction(e.initializeAccounts(), &locker.InitializeInstructionArgs{
		Authority: e.authority,
	})
	require.NoError(t, e.bank.Execute(e.ctx, ix))
}

func (e *testEnv) lockAndMintInstruction(amount uint64, destination locker.DestinationChainAddress) solana.Instruction {
	return locker.NewLockAndMintInstruction(
		&locker.LockAndMintInstructionAccounts{
			Signer:  e.user,
			State:   e.state,
			MintLog: e.mintLog,
		},
		&locker.LockAndMintInstructionArgs{
			Amount:      amount,
			Destination: destination,
		},
	)
}

func (e *testEnv) lockAndMint(amount uint64, destination locker.DestinationChainAddress) error {
	return e.bank.Execute(e.ctx, e.lockAndMintInstruction(amount, destination))
}

func (e *testEnv) releaseInstruction(authority, destination ed25519.PublicKey, amount uint64) solana.Instruction {
	return locker.NewReleaseInstruction(
		&locker.ReleaseInstructionAccounts{
			Authority:   authority,
			State:       e.state,
			Destination: destination,
		},
		&locker.ReleaseInstructionArgs{
			Amount: amount,
		},
	)
}

func (e *testEnv) release(authority, destination ed25519.PublicKey, amount uint64) error {
	return e.bank.Execute(e.ctx, e.releaseInstruction(authority, destination, amount))
}

func (e *testEnv) mintInstruction(authority ed25519.PublicKey, amount uint64) solana.Instruction {
	return locker.NewMintInstruction(
		&locker.MintInstructionAccounts{
			Authority: authority,
			State:     e.state,
			Recipient: e.userTokens,
			Mint:      e.mintAccount,
		},
		&locker.MintInstructionArgs{
			Amount: amount,
		},
	)
}

func (e *testEnv) mint(authority ed25519.PublicKey, amount uint64) error {
	return e.bank.Execute(e.ctx, e.mintInstruction(authority, amount))
}

func (e *testEnv) burnAndReleaseInstruction(amount uint64, destination locker.DestinationChainAddress) solana.Instruction {
	return locker.NewBurnAndReleaseInstruction(
		&locker.BurnAndReleaseInstructionAccounts{
			Owner:   e.user,
			State:   e.state,
			BurnLog: e.burnLog,
			Source:  e.userTokens,
			Mint:    e.mintAccount,
		},
		&locker.BurnAndReleaseInstructionArgs{
			Amount:      amount,
			Destination: destination,
		},
	)
}

func (e *testEnv) burnAndRelease(amount uint64, destination locker.DestinationChainAddress) error {
	return e.bank.Execute(e.ctx, e.burnAndReleaseInstruction(amount, destination))
}

func (e *testEnv) getLedger(t *testing.T) *locker.LockerAccount {
	info, err := e.bank.GetAccount(e.state)
	require.NoError(t, err)

	var ledger locker.LockerAccount
	require.NoError(t, ledger.Unmarshal(info.Data))
	return &ledger
}

func (e *testEnv) setLedger(t *testing.T, modify func(ledger *locker.LockerAccount)) {
	info, err := e.bank.GetAccount(e.state)
	require.NoError(t, err)

	var ledger locker.LockerAccount
	require.NoError(t, ledger.Unmarshal(info.Data))
	modify(&ledger)

	info.Data = ledger.Marshal()
	e.bank.SetAccount(info)
}

func (e *testEnv) getEventLog(t *testing.T, address ed25519.PublicKey) *locker.EventLogAccount {
	info, err := e.bank.GetAccount(address)
	require.NoError(t, err)

	var event locker.EventLogAccount
	require.NoError(t, event.Unmarshal(info.Data))
	return &event
}

func (e *testEnv) getTokenBalance(t *testing.T) uint64 {
	info, err := e.bank.GetAccount(e.userTokens)
	require.NoError(t, err)

	var account token.Account
	require.True(t, account.Unmarshal(info.Data))
	return account.Amount
}

func newDestination(fill byte) locker.DestinationChainAddress {
	var destination locker.DestinationChainAddress
	for i := range destination {
		destination[i] = fill
	}
	return destination
}

type eventRecorder struct {
	events  []map[string]interface{}
	metrics map[string]int
}

func (r *eventRecorder) RecordCustomEvent(eventType string, params map[string]interface{}) {
	if eventType == instructionEventName {
		r.events = append(r.events, params)
	}
}

func (r *eventRecorder) RecordCustomMetric(name string, _ float64) {
	r.metrics[name]++
}

func TestProcess_Events(t *testing.T) {
	for _, eventsEnabled := range []bool{true, false} {
		env := setup(t, withManualTestOverrides(&testOverrides{
			underlyingDecimals: locker.DefaultUnderlyingDecimals,
			nativeDecimals:     locker.DefaultNativeDecimals,
			eventsEnabled:      eventsEnabled,
		}))

		recorder := &eventRecorder{metrics: make(map[string]int)}
		env.ctx = metrics.NewContext(env.ctx, recorder)

		env.initialize(t)
		require.NoError(t, env.lockAndMint(10, newDestination(1)))
		assert.Error(t, env.release(env.user, env.user, 1))

		// Failed instructions are never recorded
		assert.Equal(t, 2, recorder.metrics[instructionCountMetricName])
		assert.Equal(t, 2, recorder.metrics[instructionDurationMetricName])

		if !eventsEnabled {
			assert.Empty(t, recorder.events)
			continue
		}

		require.Len(t, recorder.events, 2)
		assert.Equal(t, "Initialize", recorder.events[0]["instruction"])
		assert.Equal(t, "LockAndMint", recorder.events[1]["instruction"])
	}
}
