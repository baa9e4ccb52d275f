package processor

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/code-payments/locker-bridge/pkg/solana/locker"
)

func TestWithEnvConfigs(t *testing.T) {
	ctx := context.Background()

	conf := WithEnvConfigs()()
	assert.EqualValues(t, locker.DefaultUnderlyingDecimals, conf.underlyingDecimals.Get(ctx))
	assert.EqualValues(t, locker.DefaultNativeDecimals, conf.nativeDecimals.Get(ctx))
	assert.True(t, conf.eventsEnabled.Get(ctx))

	t.Setenv(UnderlyingDecimalsConfigEnvName, "12")
	t.Setenv(NativeDecimalsConfigEnvName, "6")
	t.Setenv(EventsEnabledConfigEnvName, "false")

	conf = WithEnvConfigs()()
	assert.EqualValues(t, 12, conf.underlyingDecimals.Get(ctx))
	assert.EqualValues(t, 6, conf.nativeDecimals.Get(ctx))
	assert.False(t, conf.eventsEnabled.Get(ctx))

	// Out of range values fall back to the last known value
	t.Setenv(NativeDecimalsConfigEnvName, "300")
	conf = WithEnvConfigs()()
	_, err := conf.nativeDecimals.GetSafe(ctx)
	assert.Error(t, err)
	assert.EqualValues(t, locker.DefaultNativeDecimals, conf.nativeDecimals.Get(ctx))
}
