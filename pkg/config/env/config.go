package env

import (
	"context"
	"os"
	"strings"

	"github.com/code-payments/locker-bridge/pkg/config"
	"github.com/code-payments/locker-bridge/pkg/config/wrapper"
)

type conf struct {
	key string
}

// NewConfig returns a config backed by the environment variable key,
// upper-cased. The variable is looked up on every Get, so changes made while
// the process runs are observed.
func NewConfig(key string) config.Config {
	return &conf{key: strings.ToUpper(key)}
}

// Get implements config.Config.Get. Surrounding whitespace is ignored.
func (c *conf) Get(_ context.Context) (interface{}, error) {
	val := strings.TrimSpace(os.Getenv(c.key))
	if len(val) == 0 {
		return nil, config.ErrNoValue
	}
	return []byte(val), nil
}

// Shutdown implements config.Config.Shutdown
func (c *conf) Shutdown() {
}

// NewBoolConfig creates an env-based bool config
func NewBoolConfig(key string, defaultValue bool) config.Bool {
	return wrapper.NewBoolConfig(NewConfig(key), defaultValue)
}

// NewUint8Config creates an env-based uint8 config
func NewUint8Config(key string, defaultValue uint8) config.Uint8 {
	return wrapper.NewUint8Config(NewConfig(key), defaultValue)
}
