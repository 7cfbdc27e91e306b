package db

import (
	"context"
	"errors"
	"fmt"

	"github.com/launchdarkly/go-server-sdk/v7/subsystems"
	"github.com/launchdarkly/go-server-sdk/v7/subsystems/ldstoretypes"
	"github.com/redis/go-redis/extra/redisotel/v9"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

// DefaultPrefix namespaces every key the feature store writes.
const DefaultPrefix = "launchdarkly"

const maxUpsertAttempts = 10

// ErrUpsertContention is returned when an item kept changing under a WATCH.
var ErrUpsertContention = errors.New("feature store upsert: too many concurrent modifications")

// FeatureStore is a LaunchDarkly persistent data store kept in Redis. Each data
// kind lives in one hash at "<prefix>:<kind>" keyed by item key; the
// "<prefix>:$inited" key marks that a full data set has been written.
type FeatureStore struct {
	Client *redis.Client
	Ctx    context.Context
	prefix string
	logger *zap.Logger
}

// InitRedis initializes an instrumented Redis client and verifies connectivity.
func InitRedis(addr string) (*redis.Client, error) {
	client := redis.NewClient(&redis.Options{Addr: addr})

	if err := redisotel.InstrumentTracing(client); err != nil {
		return nil, fmt.Errorf("failed to instrument redis tracing: %w", err)
	}

	if err := client.Ping(context.Background()).Err(); err != nil {
		return nil, fmt.Errorf("failed to connect to Redis: %w", err)
	}
	zap.L().Info("Connected to Redis", zap.String("addr", addr))
	return client, nil
}

// NewFeatureStore wraps client. An empty prefix selects DefaultPrefix.
func NewFeatureStore(client *redis.Client, prefix string, logger *zap.Logger) *FeatureStore {
	if prefix == "" {
		prefix = DefaultPrefix
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &FeatureStore{
		Client: client,
		Ctx:    context.Background(),
		prefix: prefix,
		logger: logger.Named("feature_store"),
	}
}

// Configurer returns the component configurer expected by
// ldcomponents.PersistentDataStore.
func (s *FeatureStore) Configurer() subsystems.ComponentConfigurer[subsystems.PersistentDataStore] {
	return storeConfigurer{store: s}
}

type storeConfigurer struct {
	store *FeatureStore
}

func (c storeConfigurer) Build(subsystems.ClientContext) (subsystems.PersistentDataStore, error) {
	return c.store, nil
}

func (s *FeatureStore) itemsKey(kind ldstoretypes.DataKind) string {
	return s.prefix + ":" + kind.GetName()
}

func (s *FeatureStore) initedKey() string {
	return s.prefix + ":$inited"
}

// Init replaces the full data set atomically.
func (s *FeatureStore) Init(allData []ldstoretypes.SerializedCollection) error {
	_, err := s.Client.TxPipelined(s.Ctx, func(pipe redis.Pipeliner) error {
		for _, coll := range allData {
			key := s.itemsKey(coll.Kind)
			pipe.Del(s.Ctx, key)
			if len(coll.Items) == 0 {
				continue
			}
			fields := make(map[string]interface{}, len(coll.Items))
			for _, item := range coll.Items {
				fields[item.Key] = item.Item.SerializedItem
			}
			pipe.HSet(s.Ctx, key, fields)
		}
		pipe.Set(s.Ctx, s.initedKey(), "", 0)
		return nil
	})
	if err != nil {
		return fmt.Errorf("init feature store: %w", err)
	}
	s.logger.Info("feature store initialized", zap.Int("collections", len(allData)))
	return nil
}

// Get returns the serialized item, or a not-found descriptor when absent.
func (s *FeatureStore) Get(kind ldstoretypes.DataKind, key string) (ldstoretypes.SerializedItemDescriptor, error) {
	data, err := s.Client.HGet(s.Ctx, s.itemsKey(kind), key).Bytes()
	if errors.Is(err, redis.Nil) {
		return ldstoretypes.SerializedItemDescriptor{}.NotFound(), nil
	}
	if err != nil {
		return ldstoretypes.SerializedItemDescriptor{}, fmt.Errorf("get %s %q: %w", kind.GetName(), key, err)
	}
	return ldstoretypes.SerializedItemDescriptor{SerializedItem: data}, nil
}

// GetAll returns every item of kind.
func (s *FeatureStore) GetAll(kind ldstoretypes.DataKind) ([]ldstoretypes.KeyedSerializedItemDescriptor, error) {
	values, err := s.Client.HGetAll(s.Ctx, s.itemsKey(kind)).Result()
	if err != nil {
		return nil, fmt.Errorf("get all %s: %w", kind.GetName(), err)
	}
	results := make([]ldstoretypes.KeyedSerializedItemDescriptor, 0, len(values))
	for k, v := range values {
		results = append(results, ldstoretypes.KeyedSerializedItemDescriptor{
			Key:  k,
			Item: ldstoretypes.SerializedItemDescriptor{SerializedItem: []byte(v)},
		})
	}
	return results, nil
}

// Upsert writes item unless the stored version is the same or newer. The
// read-compare-write runs under WATCH and is retried if the hash changes.
func (s *FeatureStore) Upsert(kind ldstoretypes.DataKind, key string, item ldstoretypes.SerializedItemDescriptor) (bool, error) {
	itemsKey := s.itemsKey(kind)

	for attempt := 0; attempt < maxUpsertAttempts; attempt++ {
		updated := false
		err := s.Client.Watch(s.Ctx, func(tx *redis.Tx) error {
			old, err := tx.HGet(s.Ctx, itemsKey, key).Bytes()
			if err != nil && !errors.Is(err, redis.Nil) {
				return err
			}
			if err == nil {
				if oldItem, derr := kind.Deserialize(old); derr == nil && oldItem.Version >= item.Version {
					s.logger.Debug("skipping stale update",
						zap.String("kind", kind.GetName()),
						zap.String("key", key),
						zap.Int("stored_version", oldItem.Version),
						zap.Int("version", item.Version))
					return nil
				}
			}
			_, err = tx.TxPipelined(s.Ctx, func(pipe redis.Pipeliner) error {
				pipe.HSet(s.Ctx, itemsKey, key, item.SerializedItem)
				return nil
			})
			if err == nil {
				updated = true
			}
			return err
		}, itemsKey)

		if errors.Is(err, redis.TxFailedErr) {
			continue
		}
		if err != nil {
			return false, fmt.Errorf("upsert %s %q: %w", kind.GetName(), key, err)
		}
		return updated, nil
	}
	return false, ErrUpsertContention
}

// IsInitialized reports whether Init has ever completed against this prefix.
func (s *FeatureStore) IsInitialized() bool {
	n, err := s.Client.Exists(s.Ctx, s.initedKey()).Result()
	if err != nil {
		s.logger.Warn("feature store init check", zap.Error(err))
		return false
	}
	return n > 0
}

// IsStoreAvailable pings Redis.
func (s *FeatureStore) IsStoreAvailable() bool {
	return s.Client.Ping(s.Ctx).Err() == nil
}

// Close shuts down the Redis client.
func (s *FeatureStore) Close() error {
	if s == nil || s.Client == nil {
		return nil
	}
	if err := s.Client.Close(); err != nil && !errors.Is(err, redis.ErrClosed) {
		return err
	}
	return nil
}
