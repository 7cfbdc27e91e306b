package config

import (
	"errors"
	"io/fs"
	"strings"
	"time"

	validation "github.com/go-ozzo/ozzo-validation/v4"
	"github.com/go-ozzo/ozzo-validation/v4/is"
	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// Feature store backends.
const (
	FeatureStoreNone  = "none"
	FeatureStoreRedis = "redis"
)

// Config holds application configuration derived from environment variables
// and an optional edgeads.yaml.
type Config struct {
	Port         string
	ReadTimeout  time.Duration
	WriteTimeout time.Duration
	ServiceName  string
	// LaunchDarkly client configuration
	LDSDKKey      string
	LDOffline     bool
	LDInitTimeout time.Duration
	// Feature store configuration; "redis" puts the client in daemon mode
	FeatureStore         string
	RedisAddr            string
	RedisPrefix          string
	FeatureStoreCacheTTL time.Duration
	GeoIPDB              string
	// Tracing configuration
	TracingEnabled    bool
	TempoEndpoint     string
	TracingSampleRate float64
}

// Load reads .env (if present), edgeads.yaml (if present) and the
// environment, applies defaults and validates the result.
func Load() (Config, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return Config{}, err
	}

	v := viper.New()
	v.SetConfigName("edgeads")
	v.SetConfigType("yaml")
	v.AddConfigPath(".")
	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return Config{}, err
		}
	}
	return FromViper(v)
}

// FromViper builds a Config from v, binding it to the environment.
func FromViper(v *viper.Viper) (Config, error) {
	setDefaults(v)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	cfg := Config{
		Port:                 v.GetString("port"),
		ReadTimeout:          v.GetDuration("read_timeout"),
		WriteTimeout:         v.GetDuration("write_timeout"),
		ServiceName:          v.GetString("service_name"),
		LDSDKKey:             v.GetString("ld_sdk_key"),
		LDOffline:            v.GetBool("ld_offline"),
		LDInitTimeout:        v.GetDuration("ld_init_timeout"),
		FeatureStore:         strings.ToLower(v.GetString("feature_store")),
		RedisAddr:            v.GetString("redis_addr"),
		RedisPrefix:          v.GetString("redis_prefix"),
		FeatureStoreCacheTTL: v.GetDuration("feature_store_cache_ttl"),
		GeoIPDB:              v.GetString("geoip_db"),
		TracingEnabled:       v.GetBool("tracing_enabled"),
		TempoEndpoint:        v.GetString("tempo_endpoint"),
		TracingSampleRate:    v.GetFloat64("tracing_sample_rate"),
	}

	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("port", "8787")
	v.SetDefault("read_timeout", 5*time.Second)
	v.SetDefault("write_timeout", 10*time.Second)
	v.SetDefault("service_name", "edgeads")
	v.SetDefault("ld_sdk_key", "")
	v.SetDefault("ld_offline", false)
	v.SetDefault("ld_init_timeout", 5*time.Second)
	v.SetDefault("feature_store", FeatureStoreNone)
	v.SetDefault("redis_addr", "localhost:6379")
	v.SetDefault("redis_prefix", "launchdarkly")
	v.SetDefault("feature_store_cache_ttl", 30*time.Second)
	v.SetDefault("geoip_db", "")
	v.SetDefault("tracing_enabled", false)
	v.SetDefault("tempo_endpoint", "tempo:4317")
	v.SetDefault("tracing_sample_rate", 1.0)
}

// Validate checks the configuration for values the service cannot run with.
func (c Config) Validate() error {
	return validation.ValidateStruct(&c,
		validation.Field(&c.Port, validation.Required, is.Port),
		validation.Field(&c.ServiceName, validation.Required),
		validation.Field(&c.ReadTimeout, validation.Min(time.Duration(0))),
		validation.Field(&c.WriteTimeout, validation.Min(time.Duration(0))),
		validation.Field(&c.LDSDKKey, validation.When(!c.LDOffline, validation.Required)),
		validation.Field(&c.LDInitTimeout, validation.Min(time.Duration(0))),
		validation.Field(&c.FeatureStore, validation.Required, validation.In(FeatureStoreNone, FeatureStoreRedis)),
		validation.Field(&c.RedisAddr, validation.When(c.FeatureStore == FeatureStoreRedis, validation.Required)),
		validation.Field(&c.TempoEndpoint, validation.When(c.TracingEnabled, validation.Required)),
		validation.Field(&c.TracingSampleRate, validation.Min(0.0), validation.Max(1.0)),
	)
}
