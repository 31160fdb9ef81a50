// Copyright 2024 The Periph Authors. All rights reserved.
// Use of this source code is governed under the Apache License, Version 2.0
// that can be found in the LICENSE file.

package clock

import (
	"sync"
	"time"
)

// Fake is a Clock whose value is advanced explicitly by a test, giving
// deterministic control over the synthetic timestamps spec.md §8's
// end-to-end scenarios are stated in terms of.
type Fake struct {
	mu  sync.Mutex
	nowUS int64
}

// NewFake returns a Fake clock starting at 0.
func NewFake() *Fake {
	return &Fake{}
}

// NowUS implements Clock.
func (f *Fake) NowUS() int64 {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.nowUS
}

// Set pins the clock to the given microsecond value.
func (f *Fake) Set(us int64) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.nowUS = us
}

// Advance moves the clock forward by d and returns the new value.
func (f *Fake) Advance(d time.Duration) int64 {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.nowUS += d.Microseconds()
	return f.nowUS
}

// FakeTimer is a PeriodicTimer a test fires manually via Tick, instead of
// letting a real ticker drive it. Start/Stop only record the desired state;
// nothing fires until Tick is called.
type FakeTimer struct {
	mu      sync.Mutex
	fn      func()
	period  time.Duration
	running bool
}

// Start implements PeriodicTimer.
func (t *FakeTimer) Start(period time.Duration, fn func()) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.period = period
	t.fn = fn
	t.running = true
}

// Stop implements PeriodicTimer.
func (t *FakeTimer) Stop() {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.running = false
}

// Tick invokes the registered callback once, as if one period had elapsed.
// It is a no-op if the timer isn't running.
func (t *FakeTimer) Tick() {
	t.mu.Lock()
	running, fn := t.running, t.fn
	t.mu.Unlock()
	if running && fn != nil {
		fn()
	}
}

// Period returns the period Start was last called with.
func (t *FakeTimer) Period() time.Duration {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.period
}

// Running reports whether Start has been called without a matching Stop.
func (t *FakeTimer) Running() bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.running
}
