package memory

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/code-payments/nft-airdrop/pkg/config"
)

func TestConfig_Lifecycle(t *testing.T) {
	ctx := context.Background()

	c := NewConfig(nil)
	_, err := c.Get(ctx)
	assert.Equal(t, config.ErrNoValue, err)

	c.SetValue("value")
	val, err := c.Get(ctx)
	require.NoError(t, err)
	assert.Equal(t, "value", val)

	// Induced errors take precedence over the value, without clearing it
	c.InduceErrors()
	_, err = c.Get(ctx)
	assert.Equal(t, errDeveloperInduced, err)

	c.StopInducingErrors()
	val, err = c.Get(ctx)
	require.NoError(t, err)
	assert.Equal(t, "value", val)

	c.ClearValue()
	_, err = c.Get(ctx)
	assert.Equal(t, config.ErrNoValue, err)

	c.SetValue(1)
	c.Shutdown()
	_, err = c.Get(ctx)
	assert.Equal(t, config.ErrShutdown, err)
}

func TestTypedConfigs(t *testing.T) {
	ctx := context.Background()

	assert.True(t, NewBoolConfig(true).Get(ctx))
	assert.False(t, NewBoolConfig(false).Get(ctx))
	assert.EqualValues(t, 7, NewUint64Config(7).Get(ctx))
	assert.Equal(t, time.Minute, NewDurationConfig(time.Minute).Get(ctx))
	assert.Equal(t, "value", NewStringConfig("value").Get(ctx))
}
