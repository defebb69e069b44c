// Package ratelimit bounds how often outbound market-data calls are made,
// per key, within a sliding window. It is in-process only: state is lost on
// restart and keys are fully independent.
package ratelimit

import (
	"sync"
	"time"
)

const (
	DefaultMaxCalls = 5
	DefaultPeriod   = 60 * time.Second
)

type Limiter struct {
	maxCalls int
	period   time.Duration

	mu    sync.Mutex
	calls map[string][]time.Time

	now func() time.Time
}

func New(maxCalls int, period time.Duration) *Limiter {
	if maxCalls <= 0 {
		maxCalls = DefaultMaxCalls
	}
	if period <= 0 {
		period = DefaultPeriod
	}
	return &Limiter{
		maxCalls: maxCalls,
		period:   period,
		calls:    make(map[string][]time.Time),
		now:      time.Now,
	}
}

// Allow reports whether a call for key may proceed. Timestamps older than
// the window are dropped first; a denied call is not recorded, so denials
// never extend the window.
func (l *Limiter) Allow(key string) bool {
	l.mu.Lock()
	defer l.mu.Unlock()

	now := l.now()
	kept := l.calls[key][:0]
	for _, t := range l.calls[key] {
		if now.Sub(t) < l.period {
			kept = append(kept, t)
		}
	}

	if len(kept) >= l.maxCalls {
		l.calls[key] = kept
		return false
	}

	l.calls[key] = append(kept, now)
	return true
}
