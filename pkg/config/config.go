package config

import (
	"context"

	"github.com/pkg/errors"
)

var (
	// ErrNoValue indicates no value was set for the config
	ErrNoValue = errors.New("config: no value set")

	// ErrShutdown indicates the use of a Config after calling Shutdown
	ErrShutdown = errors.New("config: shutdown")
)

// Config is an interface for getting a raw configuration value
type Config interface {
	// Get returns the latest config value
	Get(ctx context.Context) (interface{}, error)

	// Shutdown signals the config to stop all underlying resources
	Shutdown()
}

// Typed is a Config whose raw value has been converted to T.
type Typed[T any] interface {
	// Get returns the latest value, or the last known good value if the
	// latest can't be read or converted.
	Get(ctx context.Context) T

	// GetSafe is Get, but also reports why the latest value was unusable.
	GetSafe(ctx context.Context) (T, error)

	Shutdown()
}

type (
	Bool  = Typed[bool]
	Uint8 = Typed[uint8]
)
