package storage

import (
	"context"
	"errors"
)

var (
	ErrKeyNotFound    = errors.New("key not found")
	ErrUnknownBackend = errors.New("unknown storage backend")
	ErrClosed         = errors.New("storage closed")
)

// KV 是任务存储依赖的键值持久化适配器
type KV interface {
	// Get 在键不存在时返回 ErrKeyNotFound
	Get(ctx context.Context, key string) (string, error)
	Set(ctx context.Context, key, value string) error
	// Delete 删除不存在的键不算错误
	Delete(ctx context.Context, key string) error
	Close() error
}
