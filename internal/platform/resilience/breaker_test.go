package resilience

import (
	"errors"
	"testing"
	"time"
)

func TestBreaker_OpensAfterThresholdAndRecovers(t *testing.T) {
	t.Parallel()

	b := NewBreaker(BreakerConfig{FailureThreshold: 2, OpenTimeout: time.Minute, HalfOpenMaxReq: 1})
	now := time.Date(2026, 3, 1, 10, 0, 0, 0, time.UTC)
	b.now = func() time.Time { return now }

	failure := errors.New("boom")

	if err := b.Allow(); err != nil {
		t.Fatalf("closed breaker rejected: %v", err)
	}
	b.Observe(failure)
	if err := b.Allow(); err != nil {
		t.Fatalf("breaker below threshold rejected: %v", err)
	}
	b.Observe(failure)

	if err := b.Allow(); !errors.Is(err, ErrBreakerOpen) {
		t.Fatalf("expected ErrBreakerOpen, got %v", err)
	}
	if state := b.State(); state != BreakerOpen {
		t.Fatalf("expected open, got %s", state)
	}

	// After the open timeout one probe is admitted.
	now = now.Add(2 * time.Minute)
	if err := b.Allow(); err != nil {
		t.Fatalf("half-open probe rejected: %v", err)
	}
	b.Observe(nil)

	if state := b.State(); state != BreakerClosed {
		t.Fatalf("expected closed after successful probe, got %s", state)
	}
}

func TestBreaker_HalfOpenFailureReopens(t *testing.T) {
	t.Parallel()

	b := NewBreaker(BreakerConfig{FailureThreshold: 1, OpenTimeout: time.Second, HalfOpenMaxReq: 1})
	now := time.Date(2026, 3, 1, 10, 0, 0, 0, time.UTC)
	b.now = func() time.Time { return now }

	if err := b.Allow(); err != nil {
		t.Fatalf("closed breaker rejected: %v", err)
	}
	b.Observe(errors.New("boom"))

	now = now.Add(2 * time.Second)
	if err := b.Allow(); err != nil {
		t.Fatalf("half-open probe rejected: %v", err)
	}
	b.Observe(errors.New("boom again"))

	if err := b.Allow(); !errors.Is(err, ErrBreakerOpen) {
		t.Fatalf("expected reopened breaker, got %v", err)
	}
}

func TestGroup_DeduplicatesConcurrentCalls(t *testing.T) {
	t.Parallel()

	var g Group
	started := make(chan struct{})
	release := make(chan struct{})

	var sharedSeen bool
	done := make(chan struct{})
	go func() {
		defer close(done)
		val, err, _ := g.Do("k", func() (any, error) {
			close(started)
			<-release
			return 42, nil
		})
		if err != nil || val != 42 {
			t.Errorf("unexpected result: %v %v", val, err)
		}
	}()

	<-started
	waiterDone := make(chan struct{})
	go func() {
		defer close(waiterDone)
		val, err, shared := g.Do("k", func() (any, error) { return 0, nil })
		if err != nil || val != 42 {
			t.Errorf("unexpected waiter result: %v %v", val, err)
		}
		sharedSeen = shared
	}()

	// Give the waiter a moment to attach to the in-flight call.
	time.Sleep(20 * time.Millisecond)
	close(release)
	<-done
	<-waiterDone

	if !sharedSeen {
		t.Fatalf("expected waiter to report a shared result")
	}
}
