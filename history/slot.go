// Package history 保存最近的生成记录（请求与结果），持久化到一个固定键的存储槽位。
package history

import (
	"context"
	"errors"
	"strings"

	"ai_news_generator/apperr"
	"ai_news_generator/config"

	"github.com/m-mizutani/goerr/v2"
)

// ErrSlotEmpty 表示槽位中没有数据。
var ErrSlotEmpty = errors.New("history slot is empty")

// Slot 是一个简单的键值持久化槽位。
type Slot interface {
	Get(ctx context.Context, key string) ([]byte, error)
	Put(ctx context.Context, key string, data []byte) error
	Delete(ctx context.Context, key string) error
	Close() error
}

const (
	BackendFile      = "file"
	BackendSQLite    = "sqlite"
	BackendRedis     = "redis"
	BackendFirestore = "firestore"
	BackendMemory    = "memory"
)

// OpenSlot 按配置打开槽位。
func OpenSlot(ctx context.Context, cfg config.HistoryConfig) (Slot, error) {
	switch strings.ToLower(strings.TrimSpace(cfg.Backend)) {
	case "", BackendFile:
		return NewFileSlot(cfg.Dir)
	case BackendSQLite:
		return OpenSQLiteSlot(cfg.SQLitePath)
	case BackendRedis:
		return NewRedisSlot(ctx, cfg.RedisAddr, cfg.RedisPassword, cfg.RedisDB)
	case BackendFirestore:
		return NewFirestoreSlot(ctx, cfg.FirestoreProject, cfg.FirestoreDatabase)
	case BackendMemory:
		return NewMemorySlot(), nil
	default:
		return nil, goerr.New("unknown history backend", goerr.V("backend", cfg.Backend), goerr.T(apperr.TagConfig))
	}
}
