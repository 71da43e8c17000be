package sequence

import (
	"context"
	"fmt"

	redis "github.com/redis/go-redis/v9"
)

// RedisSequencer keeps the counter in redis so several backend
// instances can share one number space. INCR is atomic, so two
// registers reserving at the same moment get distinct values.
type RedisSequencer struct {
	client *redis.Client
	prefix string
}

func NewRedis(addr, password string, db int, prefix string) *RedisSequencer {
	client := redis.NewClient(&redis.Options{
		Addr:     addr,
		Password: password,
		DB:       db,
	})

	return &RedisSequencer{client: client, prefix: prefix}
}

func (s *RedisSequencer) Ping(ctx context.Context) error {
	return s.client.Ping(ctx).Err()
}

func (s *RedisSequencer) Close() error {
	return s.client.Close()
}

func (s *RedisSequencer) Next(ctx context.Context, tenantID string, year int) (string, error) {
	key := fmt.Sprintf("txseq:%s:%s:%s", tenantID, s.prefix, Period(year))
	n, err := s.client.Incr(ctx, key).Result()
	if err != nil {
		return "", err
	}
	return Format(s.prefix, year, n), nil
}
