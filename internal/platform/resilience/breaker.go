package resilience

import (
	"errors"
	"sync"
	"time"
)

var ErrBreakerOpen = errors.New("circuit breaker is open")

type BreakerState string

const (
	BreakerClosed   BreakerState = "closed"
	BreakerOpen     BreakerState = "open"
	BreakerHalfOpen BreakerState = "half_open"
)

type BreakerConfig struct {
	Enabled          bool
	FailureThreshold int
	OpenTimeout      time.Duration
	HalfOpenMaxReq   int
}

func DefaultBreakerConfig() BreakerConfig {
	return BreakerConfig{
		Enabled:          true,
		FailureThreshold: 5,
		OpenTimeout:      15 * time.Second,
		HalfOpenMaxReq:   2,
	}
}

func NormalizeBreakerConfig(cfg BreakerConfig) BreakerConfig {
	defaults := DefaultBreakerConfig()
	if cfg.FailureThreshold < 1 {
		cfg.FailureThreshold = defaults.FailureThreshold
	}
	if cfg.OpenTimeout <= 0 {
		cfg.OpenTimeout = defaults.OpenTimeout
	}
	if cfg.HalfOpenMaxReq < 1 {
		cfg.HalfOpenMaxReq = defaults.HalfOpenMaxReq
	}
	return cfg
}

// Breaker is a small stateful circuit breaker protecting one dependency.
// Callers pair Allow with Observe around each attempt.
type Breaker struct {
	mu sync.Mutex

	failureThreshold int
	openTimeout      time.Duration
	halfOpenMaxReq   int

	state            BreakerState
	failures         int
	openedAt         time.Time
	halfOpenInFlight int
	halfOpenOK       int
	now              func() time.Time
}

func NewBreaker(cfg BreakerConfig) *Breaker {
	cfg = NormalizeBreakerConfig(cfg)
	return &Breaker{
		failureThreshold: cfg.FailureThreshold,
		openTimeout:      cfg.OpenTimeout,
		halfOpenMaxReq:   cfg.HalfOpenMaxReq,
		state:            BreakerClosed,
		now:              time.Now,
	}
}

// Allow reports whether one more attempt may proceed.
func (b *Breaker) Allow() error {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.state == BreakerOpen {
		if b.now().Sub(b.openedAt) < b.openTimeout {
			return ErrBreakerOpen
		}
		b.state = BreakerHalfOpen
		b.halfOpenInFlight = 0
		b.halfOpenOK = 0
	}

	if b.state == BreakerHalfOpen {
		if b.halfOpenInFlight >= b.halfOpenMaxReq {
			return ErrBreakerOpen
		}
		b.halfOpenInFlight++
	}

	return nil
}

// Observe records the outcome of an attempt previously admitted by Allow.
func (b *Breaker) Observe(err error) {
	b.mu.Lock()
	defer b.mu.Unlock()

	if err == nil {
		b.observeSuccess()
		return
	}
	b.observeFailure()
}

func (b *Breaker) observeSuccess() {
	switch b.state {
	case BreakerClosed:
		b.failures = 0
	case BreakerHalfOpen:
		if b.halfOpenInFlight > 0 {
			b.halfOpenInFlight--
		}
		b.halfOpenOK++
		if b.halfOpenOK >= b.halfOpenMaxReq && b.halfOpenInFlight == 0 {
			b.state = BreakerClosed
			b.failures = 0
			b.openedAt = time.Time{}
		}
	}
}

func (b *Breaker) observeFailure() {
	switch b.state {
	case BreakerClosed:
		b.failures++
		if b.failures >= b.failureThreshold {
			b.trip()
		}
	case BreakerHalfOpen:
		if b.halfOpenInFlight > 0 {
			b.halfOpenInFlight--
		}
		b.trip()
	case BreakerOpen:
		b.openedAt = b.now()
	}
}

func (b *Breaker) trip() {
	b.state = BreakerOpen
	b.openedAt = b.now()
	b.halfOpenInFlight = 0
	b.halfOpenOK = 0
}

func (b *Breaker) State() BreakerState {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.state == BreakerOpen && b.now().Sub(b.openedAt) >= b.openTimeout {
		return BreakerHalfOpen
	}
	return b.state
}
