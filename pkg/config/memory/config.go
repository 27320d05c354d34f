// Package memory provides a config.Config held in memory, for tests.
package memory

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/code-payments/nft-airdrop/pkg/config"
	"github.com/code-payments/nft-airdrop/pkg/config/wrapper"
)

var errDeveloperInduced = errors.New("in memory config: developer induced error")

// Config returns whatever value was last set. A nil value reads as
// config.ErrNoValue.
type Config struct {
	mu       sync.RWMutex
	value    interface{}
	induced  bool
	shutdown bool
}

func NewConfig(value interface{}) *Config {
	return &Config{value: value}
}

func (c *Config) Get(_ context.Context) (interface{}, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	switch {
	case c.shutdown:
		return nil, config.ErrShutdown
	case c.induced:
		return nil, errDeveloperInduced
	case c.value == nil:
		return nil, config.ErrNoValue
	default:
		return c.value, nil
	}
}

func (c *Config) Shutdown() {
	c.update(func() { c.shutdown = true })
}

func (c *Config) SetValue(value interface{}) {
	c.update(func() { c.value = value })
}

// ClearValue makes subsequent reads return config.ErrNoValue.
func (c *Config) ClearValue() {
	c.SetValue(nil)
}

// InduceErrors makes subsequent reads fail until StopInducingErrors is called.
func (c *Config) InduceErrors() {
	c.update(func() { c.induced = true })
}

func (c *Config) StopInducingErrors() {
	c.update(func() { c.induced = false })
}

func (c *Config) update(fn func()) {
	c.mu.Lock()
	defer c.mu.Unlock()
	fn()
}

// NewBoolConfig pins a bool tunable to value.
func NewBoolConfig(value bool) config.Bool {
	return wrapper.NewBoolConfig(NewConfig(value), value)
}

// NewUint64Config pins a uint64 tunable to value.
func NewUint64Config(value uint64) config.Uint64 {
	return wrapper.NewUint64Config(NewConfig(value), value)
}

// NewDurationConfig pins a duration tunable to value.
func NewDurationConfig(value time.Duration) config.Duration {
	return wrapper.NewDurationConfig(NewConfig(value), value)
}

// NewStringConfig pins a string tunable to value.
func NewStringConfig(value string) config.String {
	return wrapper.NewStringConfig(NewConfig(value), value)
}
