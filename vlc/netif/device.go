// Copyright 2024 The Periph Authors. All rights reserved.
// Use of this source code is governed under the Apache License, Version 2.0
// that can be found in the LICENSE file.

// Package netif bridges the Manchester transmitter and receiver state
// machines to a generic upper network stack: frame assembly/parsing,
// link-layer option get/set, and asynchronous delivery of decoded frames.
package netif

import (
	"context"
	"crypto/rand"
	"errors"
	"fmt"
	"sync"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/sirupsen/logrus"
	"periph.io/x/conn/v3/gpio"

	"github.com/timrdmr/ba-ip-over-vlc/internal/clock"
	"github.com/timrdmr/ba-ip-over-vlc/vlc/link"
	"github.com/timrdmr/ba-ip-over-vlc/vlc/manchester"
)

// Option identifies a link-layer parameter readable or writable through
// Device.Get/Device.Set, modelled on the upper stack's generic option
// protocol (e.g. RIOT's NETOPT or a Linux-style ioctl/sysfs knob).
type Option int

const (
	// OptAddress is the device's own 6-byte MAC-style address.
	OptAddress Option = iota
	// OptAddrLen is the fixed address length, link.AddrLen.
	OptAddrLen
	// OptMaxPDUSize is the maximum payload size accepted by Send, link.MTU.
	OptMaxPDUSize
	// OptProto is an opaque upper-layer protocol tag the caller can stash
	// and retrieve; the device itself never interprets it.
	OptProto
)

// Config configures a Device.
type Config struct {
	BitrateBPS     int
	NumSyncSymbols int
	Receiver       manchester.Config
}

// DefaultConfig matches the source's DATARATE_BITS_PER_SECOND and
// receiver tuning defaults.
func DefaultConfig() Config {
	return Config{BitrateBPS: 35_000, NumSyncSymbols: 4, Receiver: manchester.DefaultConfig()}
}

// Device is a VLC link-layer network interface: it owns a transmitter and
// receiver pair and exposes frame-oriented Send/Recv to an upper stack.
type Device struct {
	cfg Config
	log *logrus.Logger
	met *metrics

	tx *manchester.Transmitter
	rx *manchester.Receiver

	mu    sync.Mutex
	mac   link.Addr
	proto uint16

	frames chan link.Frame
	notify func(link.Frame)

	cancel context.CancelFunc
	wg     sync.WaitGroup
}

// New constructs a Device driving txPin for transmission and rxPin for
// reception. mac is the device's own link-layer address; pass a zero Addr
// to have one generated. notify, if non-nil, is called for every
// successfully decoded frame in addition to it being delivered on the
// channel returned by Recv. reg may be nil to skip metrics registration.
func New(txPin gpio.PinOut, rxPin gpio.PinIn, timer clock.PeriodicTimer, clk clock.Clock, mac link.Addr, cfg Config, notify func(link.Frame), log *logrus.Logger, reg prometheus.Registerer) (*Device, error) {
	if mac == (link.Addr{}) {
		generated, err := randomAddr()
		if err != nil {
			return nil, fmt.Errorf("netif: generate address: %w", err)
		}
		mac = generated
	}
	if log == nil {
		log = logrus.New()
	}
	d := &Device{
		cfg:    cfg,
		log:    log,
		met:    newMetrics(reg, prometheus.Labels{"address": mac.String()}),
		tx:     manchester.NewTransmitter(txPin, timer, clk, log),
		rx:     manchester.NewReceiver(rxPin, clk, cfg.Receiver, log),
		mac:    mac,
		frames: make(chan link.Frame, 8),
		notify: notify,
	}
	return d, nil
}

func randomAddr() (link.Addr, error) {
	var a link.Addr
	if _, err := rand.Read(a[:]); err != nil {
		return a, err
	}
	a[0] |= 0x02 // locally administered, matching the convention for generated MACs
	a[0] &^= 0x01
	return a, nil
}

// Address returns the device's own link-layer address.
func (d *Device) Address() link.Addr {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.mac
}

// Start launches the background receive loop. It must be called once
// before Recv delivers anything. Stop it by cancelling ctx or calling Halt.
func (d *Device) Start(ctx context.Context) {
	ctx, cancel := context.WithCancel(ctx)
	d.cancel = cancel
	d.wg.Add(1)
	go d.receiveLoop(ctx)
}

// Halt stops the background receive loop and waits for it to exit.
func (d *Device) Halt() error {
	if d.cancel != nil {
		d.cancel()
	}
	d.wg.Wait()
	return nil
}

// Send assembles dst|payload into a framed body, appends the CRC-8
// trailer, and clocks it out over the transmitter. It returns the number
// of framed bytes sent (header+payload+crc).
func (d *Device) Send(ctx context.Context, dst link.Addr, payload []byte) (int, error) {
	src := d.Address()
	wire, err := link.Assemble(src, dst, payload)
	if err != nil {
		d.met.sendErrors.WithLabelValues(assembleErrorReason(err)).Inc()
		return 0, fmt.Errorf("netif: assemble: %w", err)
	}
	if err := d.tx.Send(ctx, wire, d.cfg.BitrateBPS, d.cfg.NumSyncSymbols); err != nil {
		d.met.sendErrors.WithLabelValues("transmit").Inc()
		return 0, fmt.Errorf("netif: send: %w", err)
	}
	d.met.framesSent.Inc()
	d.met.bytesSent.Add(float64(len(wire)))
	return len(wire), nil
}

func assembleErrorReason(err error) string {
	switch {
	case errors.Is(err, link.ErrBadMessage):
		return "empty_payload"
	case errors.Is(err, link.ErrMessageTooLarge):
		return "too_large"
	default:
		return "unknown"
	}
}

// Recv returns the channel decoded frames are delivered on. The channel
// is never closed by Device; callers should select on ctx done instead.
func (d *Device) Recv() <-chan link.Frame {
	return d.frames
}

// receiveLoop repeatedly blocks in ReadSync, parses whatever landed in the
// buffer, and forwards well-formed frames to the channel and notifier. It
// is the Go analogue of the source's asynchronous netdev ISR callback: one
// long-lived goroutine rather than an interrupt re-armed after each frame.
func (d *Device) receiveLoop(ctx context.Context) {
	defer d.wg.Done()
	buf := make([]byte, link.MaxFrameSize)
	for {
		select {
		case <-ctx.Done():
			return
		default:
		}

		result, err := d.rx.ReadSync(ctx, buf)
		if err != nil {
			if errors.Is(err, link.ErrTimeout) {
				d.met.framesDropped.WithLabelValues("incomplete").Inc()
				d.rx.Reset()
				continue
			}
			return // context cancelled
		}
		if result.DataRateBPS > 0 {
			d.met.dataRateBPS.Set(float64(result.DataRateBPS))
		}

		frame, err := link.Parse(buf[:result.NumBytesRead], len(buf))
		d.rx.Reset()
		if err != nil {
			d.met.framesDropped.WithLabelValues(parseErrorReason(err)).Inc()
			d.log.WithError(err).Debug("netif: dropped frame")
			continue
		}

		d.met.framesReceived.Inc()
		d.met.bytesReceived.Add(float64(result.NumBytesRead))
		if d.notify != nil {
			d.notify(frame)
		}
		select {
		case d.frames <- frame:
		case <-ctx.Done():
			return
		}
	}
}

func parseErrorReason(err error) string {
	switch {
	case errors.Is(err, link.ErrTooShort):
		return "too_short"
	case errors.Is(err, link.ErrBufferOverflow):
		return "buffer_overflow"
	case errors.Is(err, link.ErrCRCFailure):
		return "crc_failure"
	default:
		return "unknown"
	}
}

// Get reads a link-layer option into a caller-provided buffer, returning
// the number of bytes written.
func (d *Device) Get(opt Option, value []byte) (int, error) {
	switch opt {
	case OptAddress:
		if len(value) < link.AddrLen {
			return 0, fmt.Errorf("netif: buffer too small for address")
		}
		mac := d.Address()
		return copy(value, mac[:]), nil
	case OptAddrLen, OptMaxPDUSize, OptProto:
		if len(value) < 2 {
			return 0, fmt.Errorf("netif: buffer too small for uint16 option")
		}
		var v uint16
		switch opt {
		case OptAddrLen:
			v = link.AddrLen
		case OptMaxPDUSize:
			v = link.MTU
		case OptProto:
			d.mu.Lock()
			v = d.proto
			d.mu.Unlock()
		}
		value[0] = byte(v)
		value[1] = byte(v >> 8)
		return 2, nil
	default:
		return 0, link.ErrUnsupported
	}
}

// Set writes a link-layer option.
func (d *Device) Set(opt Option, value []byte) error {
	switch opt {
	case OptProto:
		if len(value) < 2 {
			return fmt.Errorf("netif: value too small for uint16 option")
		}
		d.mu.Lock()
		d.proto = uint16(value[0]) | uint16(value[1])<<8
		d.mu.Unlock()
		return nil
	default:
		return link.ErrUnsupported
	}
}
