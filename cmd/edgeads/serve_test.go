package main

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	ld "github.com/launchdarkly/go-server-sdk/v7"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/patrickwarner/edgeads/internal/config"
	"github.com/patrickwarner/edgeads/internal/flags"
)

func TestNewFlagClient_ClosesStoreOnClientError(t *testing.T) {
	mr, err := miniredis.Run()
	require.NoError(t, err)
	defer mr.Close()

	var got flags.ClientOptions
	makeLDClient = func(opts flags.ClientOptions) (*ld.LDClient, error) {
		got = opts
		return nil, errors.New("sdk refused configuration")
	}
	t.Cleanup(func() { makeLDClient = flags.NewLDClient })

	cfg := config.Config{
		FeatureStore: config.FeatureStoreRedis,
		RedisAddr:    mr.Addr(),
		RedisPrefix:  "ld",
	}
	client, store, err := newFlagClient(cfg, zap.NewNop())
	require.Error(t, err)
	assert.Nil(t, client)
	assert.Nil(t, store)

	require.NotNil(t, got.FeatureStore)
	assert.ErrorIs(t, got.FeatureStore.Client.Ping(context.Background()).Err(), redis.ErrClosed)
}

func TestNewFlagClient_Offline(t *testing.T) {
	client, store, err := newFlagClient(config.Config{
		LDOffline:     true,
		LDInitTimeout: time.Second,
		FeatureStore:  config.FeatureStoreNone,
	}, zap.NewNop())
	require.NoError(t, err)
	defer func() { _ = client.Close() }()

	assert.Nil(t, store)
	assert.True(t, client.IsOffline())
}
