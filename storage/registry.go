// storage/registry.go
package storage

import (
	"context"
	"fmt"
	"sort"
	"sync"
)

// Config 描述如何打开一个存储后端
type Config struct {
	Backend    string
	BoltPath   string
	SQLitePath string
	MySQLDSN   string
	Redis      RedisConfig
}

type RedisConfig struct {
	Addr     string
	Password string
	DB       int
	Prefix   string
}

type Opener func(ctx context.Context, cfg Config) (KV, error)

type Registry struct {
	openers map[string]Opener
	mu      sync.RWMutex
}

func NewRegistry() *Registry {
	return &Registry{
		openers: make(map[string]Opener),
	}
}

func (r *Registry) Register(name string, opener Opener) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.openers[name] = opener
}

func (r *Registry) Get(name string) (Opener, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	o, ok := r.openers[name]
	return o, ok
}

func (r *Registry) Names() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	names := make([]string, 0, len(r.openers))
	for name := range r.openers {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

func (r *Registry) Open(ctx context.Context, cfg Config) (KV, error) {
	opener, ok := r.Get(cfg.Backend)
	if !ok {
		return nil, fmt.Errorf("%w: %q (available: %v)", ErrUnknownBackend, cfg.Backend, r.Names())
	}
	kv, err := opener(ctx, cfg)
	if err != nil {
		return nil, fmt.Errorf("open %s storage: %w", cfg.Backend, err)
	}
	return kv, nil
}

// 内置后端
var defaultRegistry = func() *Registry {
	r := NewRegistry()
	r.Register("memory", func(ctx context.Context, cfg Config) (KV, error) {
		return NewMemoryStorage(), nil
	})
	r.Register("bolt", func(ctx context.Context, cfg Config) (KV, error) {
		return NewBoltStorage(cfg.BoltPath)
	})
	r.Register("sqlite", func(ctx context.Context, cfg Config) (KV, error) {
		return NewSQLiteStorage(ctx, cfg.SQLitePath)
	})
	r.Register("mysql", func(ctx context.Context, cfg Config) (KV, error) {
		return NewMySQLStorage(ctx, cfg.MySQLDSN)
	})
	r.Register("redis", func(ctx context.Context, cfg Config) (KV, error) {
		s := NewRedisStorage(cfg.Redis.Addr, cfg.Redis.Password, cfg.Redis.DB, cfg.Redis.Prefix)
		if err := s.Ping(ctx); err != nil {
			s.Close()
			return nil, err
		}
		return s, nil
	})
	return r
}()

func Backends() []string {
	return defaultRegistry.Names()
}

func Open(ctx context.Context, cfg Config) (KV, error) {
	return defaultRegistry.Open(ctx, cfg)
}
