// retry/policy.go
package retry

import (
	"time"
)

// 重试策略接口；attempt 是已经重试过的次数，从0开始
type Policy interface {
	NextRetry(attempt int) (time.Duration, bool)
}

// 指数退避策略
type ExponentialBackoff struct {
	InitialDelay time.Duration
	MaxDelay     time.Duration
	MaxRetries  int
}

func (p *ExponentialBackoff) NextRetry(attempt int) (time.Duration, bool) {
	if attempt >= p.MaxRetries {
		return 0, false
	}

	delay := p.InitialDelay
	for i := 0; i < attempt && (p.MaxDelay <= 0 || delay < p.MaxDelay); i++ {
		delay *= 2
	}
	if p.MaxDelay > 0 && delay > p.MaxDelay {
		delay = p.MaxDelay
	}
	return delay, true
}

// 固定间隔策略
type FixedInterval struct {
	Interval    time.Duration
	MaxRetries int
}

func (p *FixedInterval) NextRetry(attempt int) (time.Duration, bool) {
	if attempt >= p.MaxRetries {
		return 0, false
	}
	return p.Interval, true
}

// 不重试
type Never struct{}

func (Never) NextRetry(int) (time.Duration, bool) { return 0, false }
