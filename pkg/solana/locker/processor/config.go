package processor

import (
	"github.com/code-payments/locker-bridge/pkg/config"
	"github.com/code-payments/locker-bridge/pkg/config/env"
	"github.com/code-payments/locker-bridge/pkg/config/memory"
	"github.com/code-payments/locker-bridge/pkg/config/wrapper"
	"github.com/code-payments/locker-bridge/pkg/solana/locker"
)

const (
	envConfigPrefix = "LOCKER_PROCESSOR_"

	UnderlyingDecimalsConfigEnvName = envConfigPrefix + "UNDERLYING_DECIMALS"
	defaultUnderlyingDecimals       = locker.DefaultUnderlyingDecimals

	NativeDecimalsConfigEnvName = envConfigPrefix + "NATIVE_DECIMALS"
	defaultNativeDecimals       = locker.DefaultNativeDecimals

	EventsEnabledConfigEnvName = envConfigPrefix + "EVENTS_ENABLED"
	defaultEventsEnabled       = true
)

type conf struct {
	underlyingDecimals config.Uint8
	nativeDecimals     config.Uint8
	eventsEnabled      config.Bool
}

// ConfigProvider defines how config values are pulled
type ConfigProvider func() *conf

// WithEnvConfigs returns configuration pulled from environment variables
func WithEnvConfigs() ConfigProvider {
	return func() *conf {
		return &conf{
			underlyingDecimals: env.NewUint8Config(UnderlyingDecimalsConfigEnvName, defaultUnderlyingDecimals),
			nativeDecimals:     env.NewUint8Config(NativeDecimalsConfigEnvName, defaultNativeDecimals),
			eventsEnabled:      env.NewBoolConfig(EventsEnabledConfigEnvName, defaultEventsEnabled),
		}
	}
}

type testOverrides struct {
	underlyingDecimals uint8
	nativeDecimals     uint8
	eventsEnabled      bool
}

func withManualTestOverrides(overrides *testOverrides) ConfigProvider {
	return func() *conf {
		return &conf{
			underlyingDecimals: wrapper.NewUint8Config(memory.NewConfig(overrides.underlyingDecimals), defaultUnderlyingDecimals),
			nativeDecimals:     wrapper.NewUint8Config(memory.NewConfig(overrides.nativeDecimals), defaultNativeDecimals),
			eventsEnabled:      wrapper.NewBoolConfig(memory.NewConfig(overrides.eventsEnabled), defaultEventsEnabled),
		}
	}
}
