// retry/retry.go
package retry

import (
	"context"
	"errors"
	"time"
)

type permanentError struct {
	err error
}

func (e *permanentError) Error() string { return e.err.Error() }
func (e *permanentError) Unwrap() error { return e.err }

// Permanent 标记不应重试的错误
func Permanent(err error) error {
	if err == nil {
		return nil
	}
	return &permanentError{err: err}
}

func isPermanent(err error) bool {
	var p *permanentError
	return errors.As(err, &p)
}

func unwrapPermanent(err error) error {
	var p *permanentError
	if errors.As(err, &p) {
		return p.err
	}
	return err
}

type Manager struct {
	Policy Policy
	// OnRetry 在每次等待前调用，可用于记录日志
	OnRetry func(attempt int, delay time.Duration, err error)
}

func NewManager(policy Policy) *Manager {
	if policy == nil {
		policy = Never{}
	}
	return &Manager{Policy: policy}
}

// ShouldRetry 只看错误本身；单次调用自己的超时可以重试，调用方 ctx 是否结束由 Do 判断
func (m *Manager) ShouldRetry(attempt int, err error) (time.Duration, bool) {
	if err == nil || isPermanent(err) {
		return 0, false
	}
	return m.Policy.NextRetry(attempt)
}

// Do 执行 fn，失败时按策略重试，返回最后一次的错误
func (m *Manager) Do(ctx context.Context, fn func(ctx context.Context) error) error {
	for attempt := 0; ; attempt++ {
		err := fn(ctx)
		if ctxErr := ctx.Err(); err != nil && ctxErr != nil {
			err = unwrapPermanent(err)
			if errors.Is(err, ctxErr) {
				return err
			}
			return errors.Join(err, ctxErr)
		}
		delay, again := m.ShouldRetry(attempt, err)
		if !again {
			return unwrapPermanent(err)
		}
		if m.OnRetry != nil {
			m.OnRetry(attempt+1, delay, err)
		}

		timer := time.NewTimer(delay)
		select {
		case <-ctx.Done():
			timer.Stop()
			return errors.Join(err, ctx.Err())
		case <-timer.C:
		}
	}
}
