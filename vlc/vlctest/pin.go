// Copyright 2024 The Periph Authors. All rights reserved.
// Use of this source code is governed under the Apache License, Version 2.0
// that can be found in the LICENSE file.

// Package vlctest provides a fake gpio.PinIO for exercising the vlc
// transmitter and receiver state machines without real hardware.
package vlctest

import (
	"fmt"
	"sync"
	"time"

	"periph.io/x/conn/v3"
	"periph.io/x/conn/v3/gpio"
	"periph.io/x/conn/v3/physic"
	"periph.io/x/conn/v3/pin"
)

// Pin implements gpio.PinIO. A test simulates incoming transitions with
// Fire (or by sending on Edges) and calls Levels to inspect every value
// written by Out.
type Pin struct {
	N string

	mu     sync.Mutex
	level  gpio.Level
	pull   gpio.Pull
	edge   gpio.Edge
	levels []gpio.Level

	// Edges, if non-nil, is read by WaitForEdge to simulate an incoming
	// transition; sending a value both unblocks a waiting reader and sets
	// the pin's level.
	Edges chan gpio.Level
}

// New returns a Pin named n, initially Low.
func New(n string) *Pin {
	return &Pin{N: n, Edges: make(chan gpio.Level, 64)}
}

// String implements conn.Resource.
func (p *Pin) String() string { return p.N }

// Halt implements conn.Resource.
func (p *Pin) Halt() error { return nil }

// Name implements pin.Pin.
func (p *Pin) Name() string { return p.N }

// Number implements pin.Pin.
func (p *Pin) Number() int { return -1 }

// Function implements pin.Pin.
func (p *Pin) Function() string { return string(p.Func()) }

// Func implements pin.PinFunc.
func (p *Pin) Func() pin.Func {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.level == gpio.High {
		return gpio.OUT_HIGH
	}
	return gpio.OUT_LOW
}

// SupportedFuncs implements pin.PinFunc.
func (p *Pin) SupportedFuncs() []pin.Func {
	return []pin.Func{gpio.IN, gpio.OUT}
}

// SetFunc implements pin.PinFunc.
func (p *Pin) SetFunc(f pin.Func) error {
	switch f {
	case gpio.IN:
		return p.In(gpio.Float, gpio.NoEdge)
	case gpio.OUT_HIGH:
		return p.Out(gpio.High)
	case gpio.OUT, gpio.OUT_LOW:
		return p.Out(gpio.Low)
	default:
		return fmt.Errorf("vlctest: unsupported func %s", f)
	}
}

// In implements gpio.PinIn.
func (p *Pin) In(pull gpio.Pull, edge gpio.Edge) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.pull = pull
	p.edge = edge
	return nil
}

// Read implements gpio.PinIn.
func (p *Pin) Read() gpio.Level {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.level
}

// WaitForEdge implements gpio.PinIn. It blocks until a value is sent on
// Edges, timeout elapses, or timeout is negative (wait forever).
func (p *Pin) WaitForEdge(timeout time.Duration) bool {
	if timeout < 0 {
		l := <-p.Edges
		p.mu.Lock()
		p.level = l
		p.mu.Unlock()
		return true
	}
	select {
	case l := <-p.Edges:
		p.mu.Lock()
		p.level = l
		p.mu.Unlock()
		return true
	case <-time.After(timeout):
		return false
	}
}

// Pull implements gpio.PinIn.
func (p *Pin) Pull() gpio.Pull {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.pull
}

// DefaultPull implements gpio.PinIn.
func (p *Pin) DefaultPull() gpio.Pull {
	return p.Pull()
}

// Out implements gpio.PinOut.
func (p *Pin) Out(l gpio.Level) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.level = l
	p.levels = append(p.levels, l)
	return nil
}

// PWM implements gpio.PinOut.
func (p *Pin) PWM(gpio.Duty, physic.Frequency) error {
	return fmt.Errorf("vlctest: %s does not support PWM", p.N)
}

// Levels returns every value written through Out, in order.
func (p *Pin) Levels() []gpio.Level {
	p.mu.Lock()
	defer p.mu.Unlock()
	return append([]gpio.Level(nil), p.levels...)
}

// Fire pushes a simulated edge: it queues l for WaitForEdge, which records
// it as the pin's level when it consumes it, as if the hardware had
// transitioned there.
func (p *Pin) Fire(l gpio.Level) {
	p.Edges <- l
}

var (
	_ conn.Resource = &Pin{}
	_ gpio.PinIO    = &Pin{}
)
