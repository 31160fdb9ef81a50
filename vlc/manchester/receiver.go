// Copyright 2024 The Periph Authors. All rights reserved.
// Use of this source code is governed under the Apache License, Version 2.0
// that can be found in the LICENSE file.

package manchester

import (
	"context"
	"fmt"
	"io"
	"sync"
	"time"

	"github.com/sirupsen/logrus"
	"periph.io/x/conn/v3/gpio"

	"github.com/timrdmr/ba-ip-over-vlc/internal/clock"
	"github.com/timrdmr/ba-ip-over-vlc/vlc/link"
)

// precisionIntDiv is the fixed-point scale used throughout clock recovery
// to avoid floating-point division on the edge-handling path.
const precisionIntDiv = 10_000

// timeoutWhileSyncingUS is the inactivity timeout applied before the
// preamble has established a symbol rate.
const timeoutWhileSyncingUS = 5_000

// edgeLevel mirrors the source's `enum edge`: the decoded bit value is the
// edge polarity itself, RISING meaning bit 1 per the G.E. Thomas
// convention.
type edgeLevel int

const (
	edgeFalling edgeLevel = 0
	edgeRising  edgeLevel = 1
)

// State is the terminal state of a ReadSync call.
type State int

const (
	// Incomplete means the inactivity timeout fired mid-byte.
	Incomplete State = iota
	// Complete means a full byte boundary was reached when the timeout fired.
	Complete
)

// Result carries the metadata produced by a completed or abandoned receive.
type Result struct {
	NumBytesRead int
	DataRateBPS  int64
	State        State
}

// Config configures a Receiver.
type Config struct {
	// TolerancePercent is the allowed deviation of a measured edge gap
	// from the recovered symbol period.
	TolerancePercent int
	// NumSyncSymbols is the number of preamble symbols the sender emits;
	// the receiver expects 2*NumSyncSymbols alternating edges.
	NumSyncSymbols int
}

// DefaultConfig matches the source's VLC_RECEIVER_TOLERANCE / num_sync_symbols defaults.
func DefaultConfig() Config {
	return Config{TolerancePercent: 30, NumSyncSymbols: 4}
}

// Receiver decodes Manchester-encoded, bit-stuffed frames from a GPIO
// input's edge stream.
type Receiver struct {
	pin   gpio.PinIn
	clock clock.Clock
	cfg   Config
	log   *logrus.Logger

	mu  sync.Mutex
	ctx receiveContext
}

// receiveContext mirrors the source's receive_context_t.
type receiveContext struct {
	buffer   []byte
	capacity int

	receivedByte    byte
	currentBitCount int
	byteCount       int

	lastEdge           edgeLevel
	symbolRateUS       int64
	lastSymbolTime     int64
	remainingSyncEdges int
	timeoutUS          int64
	bitStuffCount      int
}

// NewReceiver returns a Receiver reading edges from pin. log may be nil.
func NewReceiver(pin gpio.PinIn, clk clock.Clock, cfg Config, log *logrus.Logger) *Receiver {
	if log == nil {
		log = logrus.New()
		log.SetOutput(io.Discard)
	}
	r := &Receiver{pin: pin, clock: clk, cfg: cfg, log: log}
	r.resetLocked()
	return r
}

// Reset clears the context so the next edge starts a new frame.
func (r *Receiver) Reset() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.resetLocked()
}

func (r *Receiver) resetLocked() {
	buf, cap_ := r.ctx.buffer, r.ctx.capacity
	r.ctx = receiveContext{
		buffer:             buf,
		capacity:           cap_,
		remainingSyncEdges: 2 * r.cfg.NumSyncSymbols,
		lastEdge:           edgeFalling,
	}
}

// HandleEdge processes one input edge at timestamp nowUS (microseconds,
// same epoch as clock.Clock.NowUS). It is the direct Go translation of the
// source's interrupt handler and is exercised directly by tests driving
// literal synthetic timestamps.
func (r *Receiver) HandleEdge(nowUS int64) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.handleEdgeLocked(nowUS)
}

func (r *Receiver) handleEdgeLocked(nowUS int64) {
	c := &r.ctx
	dt := nowUS - c.lastSymbolTime

	if (c.timeoutUS != 0 && dt >= c.timeoutUS) || (c.timeoutUS == 0 && dt >= timeoutWhileSyncingUS) {
		r.resetLocked()
		c = &r.ctx
		dt = nowUS - c.lastSymbolTime
	}

	if c.remainingSyncEdges > 0 {
		if c.remainingSyncEdges < 2*r.cfg.NumSyncSymbols {
			c.symbolRateUS += precisionIntDiv * dt
		}
		if c.remainingSyncEdges == 1 {
			c.symbolRateUS /= int64(2*r.cfg.NumSyncSymbols - 1)
			c.symbolRateUS *= 2
			c.symbolRateUS /= precisionIntDiv
			c.timeoutUS = 2 * c.symbolRateUS
		}
		c.lastSymbolTime = nowUS
		c.remainingSyncEdges--
		return
	}

	c.lastEdge ^= 1

	if c.symbolRateUS == 0 {
		r.log.Error("manchester: symbol rate is zero outside sync phase")
		return
	}
	ratio := precisionIntDiv * dt / c.symbolRateUS
	accept := false
	if dt <= c.symbolRateUS && (100*precisionIntDiv-ratio*100) <= int64(r.cfg.TolerancePercent)*precisionIntDiv {
		accept = true
	} else if dt > c.symbolRateUS && ratio*100 <= int64(100+r.cfg.TolerancePercent)*precisionIntDiv {
		accept = true
	}
	if !accept {
		return
	}

	if c.bitStuffCount >= 6 {
		switch {
		case c.bitStuffCount == 6 && c.lastEdge == edgeFalling:
			// stuffed bit: discard, reset run counter, do not commit.
			c.bitStuffCount = 0
		case c.bitStuffCount == 6 && c.lastEdge == edgeRising:
			// candidate end-flag start; wait for the next bit.
			c.bitStuffCount++
		case c.bitStuffCount == 7:
			c.currentBitCount = 0
			if c.lastEdge == edgeFalling {
				dataRateBPS := int64(1_000_000) / c.symbolRateUS
				numBytesRead := c.byteCount
				r.log.WithFields(logrus.Fields{"bytes": numBytesRead, "bps": dataRateBPS}).Debug("manchester: frame complete")
			}
			// lastEdge == edgeRising is a reserved/other flag, ignored.
		default:
			r.log.Error("manchester: bit stuffing state machine desynchronised")
		}
		c.lastSymbolTime = nowUS
		return
	}

	if c.lastEdge == edgeRising {
		c.bitStuffCount++
	} else {
		c.bitStuffCount = 0
	}

	if c.lastEdge == edgeRising {
		c.receivedByte |= 1 << (7 - c.currentBitCount)
	}
	c.currentBitCount++
	if c.currentBitCount >= 8 {
		if c.byteCount < c.capacity {
			c.buffer[c.byteCount] = c.receivedByte
		} else {
			r.log.Warn("manchester: receive buffer overflow, resetting")
			r.resetLocked()
			return
		}
		c.byteCount++
		c.currentBitCount = 0
		c.bitStuffCount = 0
		c.receivedByte = 0
	}
	c.lastSymbolTime = nowUS
}

// ReadSync installs buffer as the receive target, enables edge waiting,
// and blocks until the line has been quiet for the inactivity timeout
// (5ms before the preamble resolves a symbol rate, 2*symbolRateUS after),
// then returns. Seeing the end-of-frame flag does not end ReadSync by
// itself: a frame is reported once the silence that follows it exceeds the
// timeout. ctx cancellation unblocks ReadSync early with ctx.Err(). An
// inactivity gap that fires mid-byte, or before any byte was committed,
// is reported as link.ErrTimeout together with the partial Result.
func (r *Receiver) ReadSync(ctx context.Context, buffer []byte) (Result, error) {
	r.mu.Lock()
	r.ctx.buffer = buffer
	r.ctx.capacity = len(buffer)
	r.mu.Unlock()
	r.Reset()

	for {
		r.mu.Lock()
		wait := timeoutWhileSyncingUS * time.Microsecond
		if r.ctx.timeoutUS > 0 {
			wait = time.Duration(r.ctx.timeoutUS) * time.Microsecond
		}
		r.mu.Unlock()

		select {
		case <-ctx.Done():
			return Result{}, ctx.Err()
		default:
		}

		gotEdge := r.pin.WaitForEdge(wait)
		now := r.clock.NowUS()
		if gotEdge {
			r.HandleEdge(now)
			continue
		}

		r.mu.Lock()
		gap := now - r.ctx.lastSymbolTime
		threshold := int64(timeoutWhileSyncingUS)
		if r.ctx.timeoutUS > 0 {
			threshold = r.ctx.timeoutUS
		}
		done := gap >= threshold
		result := Result{NumBytesRead: r.ctx.byteCount}
		if r.ctx.currentBitCount == 0 {
			result.State = Complete
		} else {
			result.State = Incomplete
		}
		if r.ctx.symbolRateUS > 0 {
			result.DataRateBPS = 1_000_000 / r.ctx.symbolRateUS
		}
		r.mu.Unlock()

		if done {
			if result.State != Complete || result.NumBytesRead == 0 {
				return result, fmt.Errorf("manchester: %w", link.ErrTimeout)
			}
			return result, nil
		}
	}
}
