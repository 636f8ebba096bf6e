package history

import (
	"context"
	"errors"
	"strings"
	"time"

	"ai_news_generator/apperr"

	"github.com/m-mizutani/goerr/v2"
	"github.com/redis/go-redis/v9"
)

// RedisSlot 把槽位存成一个字符串键。
type RedisSlot struct {
	rdb *redis.Client
}

func NewRedisSlot(ctx context.Context, addr, password string, db int) (*RedisSlot, error) {
	if strings.TrimSpace(addr) == "" {
		return nil, goerr.New("missing redis addr", goerr.T(apperr.TagConfig))
	}
	rdb := redis.NewClient(&redis.Options{
		Addr:         addr,
		Password:     password,
		DB:           db,
		DialTimeout:  5 * time.Second,
		ReadTimeout:  3 * time.Second,
		WriteTimeout: 3 * time.Second,
	})

	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := rdb.Ping(pingCtx).Err(); err != nil {
		_ = rdb.Close()
		return nil, goerr.Wrap(err, "failed to connect to redis", goerr.V("addr", addr))
	}
	return &RedisSlot{rdb: rdb}, nil
}

func (r *RedisSlot) Get(ctx context.Context, key string) ([]byte, error) {
	v, err := r.rdb.Get(ctx, key).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, ErrSlotEmpty
	}
	if err != nil {
		return nil, goerr.Wrap(err, "failed to get redis key", goerr.V("key", key))
	}
	return v, nil
}

func (r *RedisSlot) Put(ctx context.Context, key string, data []byte) error {
	if err := r.rdb.Set(ctx, key, data, 0).Err(); err != nil {
		return goerr.Wrap(err, "failed to set redis key", goerr.V("key", key))
	}
	return nil
}

func (r *RedisSlot) Delete(ctx context.Context, key string) error {
	if err := r.rdb.Del(ctx, key).Err(); err != nil {
		return goerr.Wrap(err, "failed to delete redis key", goerr.V("key", key))
	}
	return nil
}

func (r *RedisSlot) Close() error { return r.rdb.Close() }
