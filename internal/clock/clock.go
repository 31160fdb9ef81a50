// Copyright 2024 The Periph Authors. All rights reserved.
// Use of this source code is governed under the Apache License, Version 2.0
// that can be found in the LICENSE file.

// Package clock abstracts the monotonic microsecond time source and the
// periodic one-shot-reset timer the vlc manchester state machines are
// driven by, so both can be replaced with synthetic, steppable
// implementations in unit tests.
package clock

import (
	"sync"
	"time"
)

// Clock reports the current time as a monotonically increasing microsecond
// count. Implementations need not agree on an epoch; only differences
// between successive calls are meaningful.
type Clock interface {
	// NowUS returns the current time in microseconds.
	NowUS() int64
}

// PeriodicTimer abstracts a hardware one-shot-reset timer: once started, it
// invokes its callback every period until Stop is called.
type PeriodicTimer interface {
	// Start begins calling fn every period, starting after the first
	// period elapses. Start on an already-running timer first stops it.
	Start(period time.Duration, fn func())
	// Stop halts the timer. It is safe to call Stop on a timer that was
	// never started or already stopped.
	Stop()
}

// System is a Clock backed by time.Now().
type System struct{ start time.Time }

// NewSystem returns a Clock backed by the wall clock, with NowUS() zeroed at
// construction time.
func NewSystem() *System {
	return &System{start: time.Now()}
}

// NowUS implements Clock.
func (s *System) NowUS() int64 {
	return time.Since(s.start).Microseconds()
}

// SystemTimer is a PeriodicTimer backed by time.Ticker.
type SystemTimer struct {
	mu     sync.Mutex
	ticker *time.Ticker
	done   chan struct{}
}

// Start implements PeriodicTimer.
func (t *SystemTimer) Start(period time.Duration, fn func()) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.stopLocked()
	ticker := time.NewTicker(period)
	done := make(chan struct{})
	t.ticker = ticker
	t.done = done
	go func() {
		for {
			select {
			case <-done:
				return
			case <-ticker.C:
				fn()
			}
		}
	}()
}

// Stop implements PeriodicTimer.
func (t *SystemTimer) Stop() {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.stopLocked()
}

func (t *SystemTimer) stopLocked() {
	if t.ticker != nil {
		t.ticker.Stop()
		close(t.done)
		t.ticker = nil
		t.done = nil
	}
}
