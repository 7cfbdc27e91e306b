package config

import (
	"testing"
	"time"

	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFromViper_Defaults(t *testing.T) {
	t.Setenv("LD_SDK_KEY", "sdk-test")

	cfg, err := FromViper(viper.New())
	require.NoError(t, err)

	assert.Equal(t, "8787", cfg.Port)
	assert.Equal(t, 5*time.Second, cfg.ReadTimeout)
	assert.Equal(t, 10*time.Second, cfg.WriteTimeout)
	assert.Equal(t, "edgeads", cfg.ServiceName)
	assert.Equal(t, "sdk-test", cfg.LDSDKKey)
	assert.Equal(t, FeatureStoreNone, cfg.FeatureStore)
	assert.Equal(t, "launchdarkly", cfg.RedisPrefix)
	assert.Equal(t, 30*time.Second, cfg.FeatureStoreCacheTTL)
	assert.False(t, cfg.TracingEnabled)
	assert.Equal(t, 1.0, cfg.TracingSampleRate)
}

func TestFromViper_EnvironmentOverrides(t *testing.T) {
	t.Setenv("PORT", "9090")
	t.Setenv("LD_SDK_KEY", "sdk-test")
	t.Setenv("FEATURE_STORE", "Redis")
	t.Setenv("REDIS_ADDR", "redis:6379")
	t.Setenv("FEATURE_STORE_CACHE_TTL", "2m")
	t.Setenv("TRACING_SAMPLE_RATE", "0.25")

	cfg, err := FromViper(viper.New())
	require.NoError(t, err)

	assert.Equal(t, "9090", cfg.Port)
	assert.Equal(t, FeatureStoreRedis, cfg.FeatureStore)
	assert.Equal(t, "redis:6379", cfg.RedisAddr)
	assert.Equal(t, 2*time.Minute, cfg.FeatureStoreCacheTTL)
	assert.Equal(t, 0.25, cfg.TracingSampleRate)
}

func TestFromViper_OfflineNeedsNoKey(t *testing.T) {
	t.Setenv("LD_OFFLINE", "true")

	cfg, err := FromViper(viper.New())
	require.NoError(t, err)
	assert.True(t, cfg.LDOffline)
}

func TestValidate(t *testing.T) {
	valid := Config{
		Port:              "8787",
		ServiceName:       "edgeads",
		LDSDKKey:          "sdk-test",
		FeatureStore:      FeatureStoreNone,
		TracingSampleRate: 1,
	}
	require.NoError(t, valid.Validate())

	tests := []struct {
		name   string
		mutate func(*Config)
	}{
		{"missing sdk key", func(c *Config) { c.LDSDKKey = "" }},
		{"bad port", func(c *Config) { c.Port = "http" }},
		{"unknown feature store", func(c *Config) { c.FeatureStore = "dynamodb" }},
		{"redis without address", func(c *Config) { c.FeatureStore = FeatureStoreRedis; c.RedisAddr = "" }},
		{"sample rate above one", func(c *Config) { c.TracingSampleRate = 1.5 }},
		{"tracing without endpoint", func(c *Config) { c.TracingEnabled = true; c.TempoEndpoint = "" }},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			cfg := valid
			tc.mutate(&cfg)
			assert.Error(t, cfg.Validate())
		})
	}
}
