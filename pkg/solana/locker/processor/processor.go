package processor

import (
	"context"
	"crypto/ed25519"
	"time"

	"github.com/mr-tron/base58/base58"
	"github.com/sirupsen/logrus"

	"github.com/code-payments/locker-bridge/pkg/metrics"
	"github.com/code-payments/locker-bridge/pkg/solana"
	"github.com/code-payments/locker-bridge/pkg/solana/locker"
	"github.com/code-payments/locker-bridge/pkg/solana/runtime"
)

const (
	metricsStructName = "locker.processor"

	instructionEventName          = "LockerInstruction"
	instructionCountMetricName    = "LockerInstructionCount"
	instructionDurationMetricName = "LockerInstructionDuration"
)

// Processor is the locker program entrypoint. It validates every account and
// argument before it mutates anything, so a failed instruction never reaches a
// cross-program invocation with a partially updated ledger.
type Processor struct {
	log  *logrus.Entry
	conf *conf
}

func New(configProvider ConfigProvider) *Processor {
	return &Processor{
		log:  logrus.StandardLogger().WithField("type", "locker/processor"),
		conf: configProvider(),
	}
}

// Process implements runtime.Program.Process
func (p *Processor) Process(ctx context.Context, invoker runtime.Invoker, programID ed25519.PublicKey, accounts []*runtime.AccountInfo, data []byte) error {
	tracer := metrics.TraceMethodCall(ctx, metricsStructName, "Process")
	defer tracer.End()

	start := time.Now()

	log := p.log.WithFields(logrus.Fields{
		"method":  "Process",
		"program": base58.Encode(programID),
	})

	ix, err := locker.UnmarshalInstruction(data)
	if err != nil {
		log.WithError(err).Debug("invalid instruction data")
		tracer.OnError(err)
		return err
	}

	log = log.WithField("instruction", ix.Type().String())
	tracer.AddAttribute("instruction", ix.Type().String())

	rescaler := locker.NewRescaler(
		p.conf.underlyingDecimals.Get(ctx),
		p.conf.nativeDecimals.Get(ctx),
	)

	h := &handler{
		log:       log,
		invoker:   invoker,
		programID: programID,
		accounts:  accounts,
		rescaler:  rescaler,
	}

	var amount uint64
	switch args := ix.(type) {
	case *locker.InitializeInstructionArgs:
		err = h.initialize(ctx, args)
	case *locker.LockAndMintInstructionArgs:
		amount = args.Amount
		err = h.lockAndMint(ctx, args)
	case *locker.ReleaseInstructionArgs:
		amount = args.Amount
		err = h.release(ctx, args)
	case *locker.MintInstructionArgs:
		amount = args.Amount
		err = h.mint(ctx, args)
	case *locker.BurnAndReleaseInstructionArgs:
		amount = args.Amount
		err = h.burnAndRelease(ctx, args)
	default:
		err = solana.ErrInvalidInstructionData
	}

	if err != nil {
		log.WithError(err).Debug("instruction failed")
		tracer.OnError(err)
		return err
	}

	log.WithField("amount", amount).Debug("instruction processed")

	if p.conf.eventsEnabled.Get(ctx) {
		metrics.RecordEvent(ctx, instructionEventName, map[string]interface{}{
			"instruction": ix.Type().String(),
			"amount":      amount,
		})
	}
	metrics.RecordCount(ctx, instructionCountMetricName, 1)
	metrics.RecordDuration(ctx, instructionDurationMetricName, time.Since(start))

	return nil
}

// handler carries the state of a single instruction through its operation.
type handler struct {
	log       *logrus.Entry
	invoker   runtime.Invoker
	programID ed25519.PublicKey
	accounts  []*runtime.AccountInfo
	rescaler  *locker.Rescaler
}
