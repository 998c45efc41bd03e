// middleware/middleware.go
package middleware

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/chhz0/tasklist/retry"
	"github.com/chhz0/tasklist/storage"
)

type Middleware func(next storage.KV) storage.KV

// 中间件链；第一个中间件在最外层
func Chain(middlewares ...Middleware) Middleware {
	return func(final storage.KV) storage.KV {
		for i := len(middlewares) - 1; i >= 0; i-- {
			final = middlewares[i](final)
		}
		return final
	}
}

// op 统一包装 Get/Set/Delete，中间件只需实现一个函数
type op func(ctx context.Context, name, key string, call func(ctx context.Context) error) error

type wrapped struct {
	next storage.KV
	op   op
}

func wrap(next storage.KV, o op) storage.KV {
	return &wrapped{next: next, op: o}
}

func (w *wrapped) Get(ctx context.Context, key string) (string, error) {
	var value string
	err := w.op(ctx, "get", key, func(ctx context.Context) error {
		var err error
		value, err = w.next.Get(ctx, key)
		return err
	})
	return value, err
}

func (w *wrapped) Set(ctx context.Context, key, value string) error {
	return w.op(ctx, "set", key, func(ctx context.Context) error {
		return w.next.Set(ctx, key, value)
	})
}

func (w *wrapped) Delete(ctx context.Context, key string) error {
	return w.op(ctx, "delete", key, func(ctx context.Context) error {
		return w.next.Delete(ctx, key)
	})
}

func (w *wrapped) Close() error {
	return w.next.Close()
}

// 超时中间件
func Timeout(d time.Duration) Middleware {
	return func(next storage.KV) storage.KV {
		if d <= 0 {
			return next
		}
		return wrap(next, func(ctx context.Context, _, _ string, call func(ctx context.Context) error) error {
			ctx, cancel := context.WithTimeout(ctx, d)
			defer cancel()
			return call(ctx)
		})
	}
}

// 日志中间件；键不存在不算失败
func Logger(logger *slog.Logger) Middleware {
	return func(next storage.KV) storage.KV {
		if logger == nil {
			return next
		}
		return wrap(next, func(ctx context.Context, name, key string, call func(ctx context.Context) error) error {
			start := time.Now()
			err := call(ctx)
			duration := time.Since(start)
			if err != nil && !errors.Is(err, storage.ErrKeyNotFound) {
				logger.WarnContext(ctx, "storage call failed", "op", name, "key", key, "duration", duration, "err", err)
			} else {
				logger.DebugContext(ctx, "storage call", "op", name, "key", key, "duration", duration)
			}
			return err
		})
	}
}

// 重试中间件；ErrKeyNotFound 是确定结果，不重试
func Retry(m *retry.Manager) Middleware {
	return func(next storage.KV) storage.KV {
		if m == nil {
			return next
		}
		return wrap(next, func(ctx context.Context, _, _ string, call func(ctx context.Context) error) error {
			return m.Do(ctx, func(ctx context.Context) error {
				err := call(ctx)
				if errors.Is(err, storage.ErrKeyNotFound) || errors.Is(err, storage.ErrClosed) {
					return retry.Permanent(err)
				}
				return err
			})
		})
	}
}
