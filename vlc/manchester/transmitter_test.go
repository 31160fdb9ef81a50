// Copyright 2024 The Periph Authors. All rights reserved.
// Use of this source code is governed under the Apache License, Version 2.0
// that can be found in the LICENSE file.

package manchester

import (
	"context"
	"errors"
	"runtime"
	"testing"

	"github.com/timrdmr/ba-ip-over-vlc/internal/clock"
	"github.com/timrdmr/ba-ip-over-vlc/vlc/vlctest"
)

func TestSendRejectsExcessiveBitrate(t *testing.T) {
	pin := vlctest.New("tx")
	tx := NewTransmitter(pin, &clock.FakeTimer{}, clock.NewFake(), nil)
	err := tx.Send(context.Background(), []byte{0x01}, maxBitrateBPS+1, 4)
	if !errors.Is(err, ErrBitrateTooHigh) {
		t.Fatalf("Send() error = %v, want ErrBitrateTooHigh", err)
	}
}

// TestSendDrivesFrameToCompletion pumps a fake periodic timer by hand,
// mirroring how the real timer would call tick() once per half symbol,
// and checks Send returns once the end-of-frame flag has been clocked out.
func TestSendDrivesFrameToCompletion(t *testing.T) {
	pin := vlctest.New("tx")
	timer := &clock.FakeTimer{}
	clk := clock.NewFake()
	tx := NewTransmitter(pin, timer, clk, nil)

	errCh := make(chan error, 1)
	go func() {
		errCh <- tx.Send(context.Background(), []byte{0x01}, 1000, 2)
	}()

	for i := 0; i < 500; i++ {
		select {
		case err := <-errCh:
			if err != nil {
				t.Fatalf("Send() error = %v", err)
			}
			if len(pin.Levels()) == 0 {
				t.Fatal("Send() produced no pin output")
			}
			return
		default:
		}
		runtime.Gosched()
		timer.Tick()
	}
	t.Fatal("Send() did not complete within 500 timer ticks")
}

func TestSendContextCancellation(t *testing.T) {
	pin := vlctest.New("tx")
	timer := &clock.FakeTimer{}
	clk := clock.NewFake()
	tx := NewTransmitter(pin, timer, clk, nil)

	ctx, cancel := context.WithCancel(context.Background())
	errCh := make(chan error, 1)
	go func() {
		errCh <- tx.Send(ctx, []byte{0x01}, 1000, 4)
	}()
	// give Send a chance to start the timer before cancelling.
	for i := 0; i < 10; i++ {
		runtime.Gosched()
	}
	cancel()
	if err := <-errCh; !errors.Is(err, context.Canceled) {
		t.Fatalf("Send() error = %v, want context.Canceled", err)
	}
	if timer.Running() {
		t.Fatal("timer still running after cancellation")
	}
}
