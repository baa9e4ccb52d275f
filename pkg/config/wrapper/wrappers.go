package wrapper

import (
	"context"
	"strconv"
	"sync"

	"github.com/pkg/errors"

	"github.com/code-payments/locker-bridge/pkg/config"
)

// ErrUnsuportedConversion indicates the wrapper does not implement conversion from the source type
var ErrUnsuportedConversion = errors.New("config: wrapper conversion from source type not implemented")

// typedConfig converts the raw values of an underlying config.Config into T,
// falling back to a default when no value is set.
type typedConfig[T any] struct {
	override     config.Config
	defaultValue T
	convert      func(raw interface{}) (T, error)

	stateMu   sync.RWMutex
	lastValue T
}

func newTypedConfig[T any](override config.Config, defaultValue T, convert func(interface{}) (T, error)) *typedConfig[T] {
	return &typedConfig[T]{
		override:     override,
		defaultValue: defaultValue,
		convert:      convert,
		lastValue:    defaultValue,
	}
}

// GetSafe gets a config value and propagates any errors that arise. A best-effort
// attempt is made to return the last known value
func (c *typedConfig[T]) GetSafe(ctx context.Context) (T, error) {
	override, err := c.override.Get(ctx)
	c.stateMu.RLock()
	lastValue := c.lastValue
	c.stateMu.RUnlock()
	if err == config.ErrNoValue {
		c.stateMu.Lock()
		c.lastValue = c.defaultValue
		c.stateMu.Unlock()
		return c.defaultValue, nil
	} else if err != nil {
		return lastValue, err
	}

	newValue, err := c.convert(override)
	if err != nil {
		return lastValue, err
	}

	c.stateMu.Lock()
	c.lastValue = newValue
	c.stateMu.Unlock()
	return newValue, nil
}

// Get is a wrapper for GetSafe that ignores the returned error
func (c *typedConfig[T]) Get(ctx context.Context) T {
	val, _ := c.GetSafe(ctx)
	return val
}

// Shutdown signals the config to stop all underlying resources
func (c *typedConfig[T]) Shutdown() {
	c.override.Shutdown()
}

// NewBoolConfig returns a new bool config utility wrapper
func NewBoolConfig(override config.Config, defaultValue bool) config.Bool {
	return newTypedConfig(override, defaultValue, func(raw interface{}) (bool, error) {
		switch raw := raw.(type) {
		case []byte:
			return strconv.ParseBool(string(raw))
		case bool:
			return raw, nil
		default:
			return false, ErrUnsuportedConversion
		}
	})
}

// NewUint8Config returns a new uint8 config utility wrapper. Values that
// overflow a uint8 are rejected.
func NewUint8Config(override config.Config, defaultValue uint8) config.Uint8 {
	return newTypedConfig(override, defaultValue, func(raw interface{}) (uint8, error) {
		switch raw := raw.(type) {
		case []byte:
			parsed, err := strconv.ParseUint(string(raw), 10, 8)
			if err != nil {
				return 0, err
			}
			return uint8(parsed), nil
		case uint8:
			return raw, nil
		case int:
			if raw < 0 || raw > 255 {
				return 0, errors.Errorf("config: %d overflows uint8", raw)
			}
			return uint8(raw), nil
		default:
			return 0, ErrUnsuportedConversion
		}
	})
}
