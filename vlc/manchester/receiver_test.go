// Copyright 2024 The Periph Authors. All rights reserved.
// Use of this source code is governed under the Apache License, Version 2.0
// that can be found in the LICENSE file.

package manchester

import (
	"testing"

	"github.com/timrdmr/ba-ip-over-vlc/internal/clock"
	"github.com/timrdmr/ba-ip-over-vlc/vlc/vlctest"
)

func newTestReceiver(cfg Config) *Receiver {
	pin := vlctest.New("rx")
	r := NewReceiver(pin, clock.NewFake(), cfg, nil)
	r.mu.Lock()
	r.ctx.buffer = make([]byte, 16)
	r.ctx.capacity = 16
	r.mu.Unlock()
	return r
}

// TestPreambleRateRecovery feeds eight evenly spaced preamble edges and
// checks the recovered fixed-point symbol rate and derived timeout.
func TestPreambleRateRecovery(t *testing.T) {
	r := newTestReceiver(DefaultConfig()) // NumSyncSymbols=4 -> 8 edges
	times := []int64{0, 500, 1000, 1500, 2000, 2500, 3000, 3500}
	for _, ts := range times {
		r.HandleEdge(ts)
	}
	if r.ctx.remainingSyncEdges != 0 {
		t.Fatalf("remainingSyncEdges = %d, want 0", r.ctx.remainingSyncEdges)
	}
	if r.ctx.symbolRateUS != 1000 {
		t.Fatalf("symbolRateUS = %d, want 1000", r.ctx.symbolRateUS)
	}
	if r.ctx.timeoutUS != 2000 {
		t.Fatalf("timeoutUS = %d, want 2000", r.ctx.timeoutUS)
	}
}

// TestSyncTimeoutResets mirrors the source's reset-while-syncing test: a
// long gap before the preamble completes restarts the whole context.
func TestSyncTimeoutResets(t *testing.T) {
	r := newTestReceiver(DefaultConfig())
	r.HandleEdge(0)
	if r.ctx.remainingSyncEdges != 7 {
		t.Fatalf("remainingSyncEdges after first edge = %d, want 7", r.ctx.remainingSyncEdges)
	}
	// gap exceeds timeoutWhileSyncingUS, so this edge must restart the frame
	// and be counted as the first edge of a fresh preamble.
	r.HandleEdge(timeoutWhileSyncingUS + 1)
	if r.ctx.remainingSyncEdges != 7 {
		t.Fatalf("remainingSyncEdges after reset edge = %d, want 7", r.ctx.remainingSyncEdges)
	}
}

// TestSecondSyncEdgeSetsSymbolRate mirrors the source's two-edge preamble
// test with a single sync symbol.
func TestSecondSyncEdgeSetsSymbolRate(t *testing.T) {
	r := newTestReceiver(Config{TolerancePercent: 30, NumSyncSymbols: 1})
	r.HandleEdge(0)
	r.HandleEdge(1000)
	if r.ctx.remainingSyncEdges != 0 {
		t.Fatalf("remainingSyncEdges = %d, want 0", r.ctx.remainingSyncEdges)
	}
	if r.ctx.symbolRateUS != 2000 {
		t.Fatalf("symbolRateUS = %d, want 2000", r.ctx.symbolRateUS)
	}
	if r.ctx.timeoutUS != 4000 {
		t.Fatalf("timeoutUS = %d, want 4000", r.ctx.timeoutUS)
	}
}

// TestDataDecodeAlternatingByte decodes 0xAA (10101010), which needs no
// bit-stuffing since every bit differs from its predecessor and so
// produces exactly one accepted edge per bit.
func TestDataDecodeAlternatingByte(t *testing.T) {
	r := newTestReceiver(DefaultConfig())
	for _, ts := range []int64{0, 500, 1000, 1500, 2000, 2500, 3000, 3500} {
		r.HandleEdge(ts)
	}
	symbol := r.ctx.symbolRateUS
	last := int64(3500)
	for i := 0; i < 8; i++ {
		last += symbol
		r.HandleEdge(last)
	}
	if r.ctx.byteCount != 1 {
		t.Fatalf("byteCount = %d, want 1", r.ctx.byteCount)
	}
	if r.ctx.buffer == nil || r.ctx.buffer[0] != 0xAA {
		t.Fatalf("decoded byte = %#02x, want 0xaa", r.ctx.buffer[0])
	}
}

// TestBufferOverflowResets checks that committing a byte past capacity
// resets the context instead of writing out of bounds.
func TestBufferOverflowResets(t *testing.T) {
	r := newTestReceiver(DefaultConfig())
	r.mu.Lock()
	r.ctx.buffer = nil
	r.ctx.capacity = 0
	r.mu.Unlock()
	for _, ts := range []int64{0, 500, 1000, 1500, 2000, 2500, 3000, 3500} {
		r.HandleEdge(ts)
	}
	symbol := r.ctx.symbolRateUS
	last := int64(3500)
	for i := 0; i < 8; i++ {
		last += symbol
		r.HandleEdge(last)
	}
	if r.ctx.byteCount != 0 {
		t.Fatalf("byteCount = %d, want 0 after overflow reset", r.ctx.byteCount)
	}
	if r.ctx.remainingSyncEdges != 2*DefaultConfig().NumSyncSymbols {
		t.Fatalf("remainingSyncEdges = %d, want full reset", r.ctx.remainingSyncEdges)
	}
}
