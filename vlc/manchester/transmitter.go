// Copyright 2024 The Periph Authors. All rights reserved.
// Use of this source code is governed under the Apache License, Version 2.0
// that can be found in the LICENSE file.

// Package manchester implements the VLC Manchester transmitter and
// receiver state machines: preamble synchronisation, bit stuffing, the
// end-of-frame flag, and tolerance-based clock recovery.
package manchester

import (
	"context"
	"errors"
	"fmt"
	"io"
	"sync"
	"time"

	"github.com/sirupsen/logrus"
	"periph.io/x/conn/v3/gpio"

	"github.com/timrdmr/ba-ip-over-vlc/internal/clock"
	"github.com/timrdmr/ba-ip-over-vlc/vlc/link"
)

// endFlag is the literal end-of-frame byte, transmitted MSB-first with bit
// stuffing disabled.
const endFlag byte = 0b1111_1110

// maxBitrateBPS is the timer resolution limit: above this the half-symbol
// period would be shorter than the 1MHz timer tick.
const maxBitrateBPS = 500_000

// warnBitrateBPS is the empirical ceiling above which the source's author
// observed no effect.
const warnBitrateBPS = 40_000

var (
	// ErrBitrateTooHigh is returned by Send when bitrateBPS exceeds the
	// 1MHz timer's resolution.
	ErrBitrateTooHigh = errors.New("manchester: bitrate too high for 1MHz timer")
	// ErrSendTimeout is returned by Send if the completion timeout elapses
	// without the timer driving the frame to completion. It wraps
	// link.ErrTransient: a stalled timer is the same "caller may retry"
	// condition as a failed hardware setup call.
	ErrSendTimeout = fmt.Errorf("manchester: send timed out waiting for timer completion: %w", link.ErrTransient)
)

// Transmitter drives a GPIO output pin through the Manchester-encoded,
// bit-stuffed, flagged frame one timer tick at a time.
type Transmitter struct {
	pin   gpio.PinOut
	timer clock.PeriodicTimer
	clock clock.Clock
	log   *logrus.Logger

	mu  sync.Mutex
	ctx sendContext

	done chan struct{}
}

// sendContext mirrors the source's send_context_t. All fields are touched
// only while Transmitter.mu is held, since both the timer callback and
// Send's setup/teardown mutate them.
type sendContext struct {
	buffer   []byte
	length   int // bytes
	position int // bit cursor, 0..8*length

	isDataEdge         bool
	currentBit         byte
	remainingSync      int
	lastSync           byte
	payloadTransmitted bool
	bitStuffCount      int
}

func (c *sendContext) reset() {
	*c = sendContext{lastSync: 1}
}

// NewTransmitter returns a Transmitter driving pin, clocked by timer. log
// may be nil, in which case a disabled logger is used.
func NewTransmitter(pin gpio.PinOut, timer clock.PeriodicTimer, clk clock.Clock, log *logrus.Logger) *Transmitter {
	if log == nil {
		log = logrus.New()
		log.SetOutput(io.Discard)
	}
	t := &Transmitter{pin: pin, timer: timer, clock: clk, log: log}
	t.ctx.reset()
	_ = t.pin.Out(gpio.Low)
	return t
}

// Send transmits buffer as a full VLC frame: preamble, bit-stuffed body,
// end-of-frame flag. It blocks until the timer drives transmission to
// completion, ctx is cancelled, or an internal completion timeout expires.
func (t *Transmitter) Send(ctx context.Context, buffer []byte, bitrateBPS int, numSyncSymbols int) error {
	if bitrateBPS > maxBitrateBPS {
		return ErrBitrateTooHigh
	}
	if bitrateBPS > warnBitrateBPS {
		t.log.Warnf("manchester: bitrate %d bps exceeds empirical 40kbit/s ceiling", bitrateBPS)
	}

	halfSymbolUS := 1_000_000 / (2 * bitrateBPS)

	t.mu.Lock()
	t.ctx.reset()
	t.ctx.buffer = buffer
	t.ctx.length = len(buffer)
	t.ctx.remainingSync = 2 * numSyncSymbols
	done := make(chan struct{})
	t.done = done
	t.mu.Unlock()

	if err := t.pin.Out(gpio.Low); err != nil {
		return fmt.Errorf("manchester: initial pin write: %w: %w", link.ErrTransient, err)
	}

	startUS := t.clock.NowUS()
	t.log.Debugf("manchester: starting periodic timer every %dus", halfSymbolUS)
	t.timer.Start(time.Duration(halfSymbolUS)*time.Microsecond, t.tick)

	frameBits := 2*numSyncSymbols + 8*(len(buffer)+1) // preamble edges + body + flag byte, generous upper bound
	timeout := time.Duration(frameBits) * time.Duration(halfSymbolUS) * time.Microsecond * 4

	select {
	case <-done:
		t.log.Debugf("manchester: send complete after %dus", t.clock.NowUS()-startUS)
		return nil
	case <-ctx.Done():
		t.timer.Stop()
		_ = t.pin.Out(gpio.Low)
		return ctx.Err()
	case <-time.After(timeout):
		t.timer.Stop()
		_ = t.pin.Out(gpio.Low)
		return ErrSendTimeout
	}
}

// tick is the timer callback, equivalent to the source's _send_callback
// invoked from interrupt context. It holds the Transmitter's mutex for its
// entire body, the Go analogue of running an ISR with interrupts masked.
func (t *Transmitter) tick() {
	t.mu.Lock()
	defer t.mu.Unlock()

	c := &t.ctx

	if c.position >= 8*c.length {
		if !c.payloadTransmitted {
			c.position = 0
			c.length = 1
			c.buffer = []byte{endFlag}
			c.payloadTransmitted = true
		} else {
			t.timer.Stop()
			_ = t.pin.Out(gpio.Low)
			if t.done != nil {
				close(t.done)
				t.done = nil
			}
			return
		}
	}

	if c.remainingSync > 0 {
		_ = t.pin.Out(level(c.lastSync))
		c.lastSync ^= 1
		c.remainingSync--
		return
	}

	if !c.isDataEdge {
		byteIdx := c.position / 8
		bitIdx := c.position % 8
		b := c.buffer[byteIdx]
		c.currentBit = (b >> (7 - bitIdx)) & 1

		if bitIdx == 0 {
			c.bitStuffCount = 0
		}
		if c.bitStuffCount >= 6 {
			c.currentBit = 0
		}
		if (c.currentBit == 0 && c.bitStuffCount < 6) || c.payloadTransmitted {
			c.bitStuffCount = 0
		} else {
			c.bitStuffCount++
		}

		_ = t.pin.Out(level(c.currentBit ^ 1))
		c.isDataEdge = true
	} else {
		_ = t.pin.Out(level(c.currentBit))

		if c.bitStuffCount >= 7 {
			c.bitStuffCount = 0
		} else {
			c.position++
		}
		c.isDataEdge = false
	}
}

func level(bit byte) gpio.Level {
	return bit != 0
}
