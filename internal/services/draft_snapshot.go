package services

import (
	"time"

	"github.com/go-redis/redis/v8"

	"github.com/Am-duojie/amdo-s/internal/database"
)

// RedisSnapshotStore persists draft snapshots as opaque blobs in redis.
// It satisfies recycle.SnapshotStore.
type RedisSnapshotStore struct {
	TTL time.Duration
}

func (s *RedisSnapshotStore) Save(key string, data []byte) error {
	return database.RedisClient.Set(database.Ctx, key, data, s.TTL).Err()
}

func (s *RedisSnapshotStore) Load(key string) ([]byte, error) {
	data, err := database.RedisClient.Get(database.Ctx, key).Bytes()
	if err != nil {
		if err == redis.Nil { // no snapshot
			return nil, nil
		}
		return nil, err
	}
	return data, nil
}

func (s *RedisSnapshotStore) Delete(key string) error {
	return database.RedisClient.Del(database.Ctx, key).Err()
}
