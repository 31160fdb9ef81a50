// Copyright 2024 The Periph Authors. All rights reserved.
// Use of this source code is governed under the Apache License, Version 2.0
// that can be found in the LICENSE file.

package netif

import (
	"context"
	"errors"
	"testing"

	"github.com/timrdmr/ba-ip-over-vlc/internal/clock"
	"github.com/timrdmr/ba-ip-over-vlc/vlc/link"
	"github.com/timrdmr/ba-ip-over-vlc/vlc/vlctest"
)

func newTestDevice(t *testing.T) *Device {
	t.Helper()
	mac := link.Addr{0xAA, 0xBB, 0xCC, 0x00, 0x00, 0x01}
	d, err := New(vlctest.New("tx"), vlctest.New("rx"), &clock.FakeTimer{}, clock.NewFake(), mac, DefaultConfig(), nil, nil, nil)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	return d
}

func TestDeviceAddressGeneratedWhenZero(t *testing.T) {
	d, err := New(vlctest.New("tx"), vlctest.New("rx"), &clock.FakeTimer{}, clock.NewFake(), link.Addr{}, DefaultConfig(), nil, nil, nil)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	if d.Address() == (link.Addr{}) {
		t.Fatal("Address() is zero, want a generated address")
	}
}

func TestDeviceGetOptions(t *testing.T) {
	d := newTestDevice(t)

	var addr [link.AddrLen]byte
	n, err := d.Get(OptAddress, addr[:])
	if err != nil || n != link.AddrLen {
		t.Fatalf("Get(OptAddress) = (%d, %v)", n, err)
	}
	if link.Addr(addr) != d.Address() {
		t.Fatalf("Get(OptAddress) = %v, want %v", link.Addr(addr), d.Address())
	}

	var u16 [2]byte
	if n, err := d.Get(OptAddrLen, u16[:]); err != nil || n != 2 || u16[0] != link.AddrLen {
		t.Fatalf("Get(OptAddrLen) = (%d, %v, %v)", n, u16, err)
	}
	if n, err := d.Get(OptMaxPDUSize, u16[:]); err != nil || n != 2 {
		t.Fatalf("Get(OptMaxPDUSize) = (%d, %v)", n, err)
	}
	if _, err := d.Get(Option(999), u16[:]); !errors.Is(err, link.ErrUnsupported) {
		t.Fatalf("Get(unknown) error = %v, want link.ErrUnsupported", err)
	}
}

func TestDeviceSetGetProtoRoundTrip(t *testing.T) {
	d := newTestDevice(t)
	if err := d.Set(OptProto, []byte{0x34, 0x12}); err != nil {
		t.Fatalf("Set(OptProto): %v", err)
	}
	var got [2]byte
	if _, err := d.Get(OptProto, got[:]); err != nil {
		t.Fatalf("Get(OptProto): %v", err)
	}
	if got[0] != 0x34 || got[1] != 0x12 {
		t.Fatalf("Get(OptProto) = %v, want [0x34 0x12]", got)
	}
}

func TestSendRejectsEmptyPayload(t *testing.T) {
	d := newTestDevice(t)
	dst := link.Addr{1, 2, 3, 4, 5, 6}
	if _, err := d.Send(context.Background(), dst, nil); !errors.Is(err, link.ErrBadMessage) {
		t.Fatalf("Send(empty) error = %v, want ErrBadMessage", err)
	}
}

func TestSendRejectsOversizedPayload(t *testing.T) {
	d := newTestDevice(t)
	dst := link.Addr{1, 2, 3, 4, 5, 6}
	big := make([]byte, link.MTU+1)
	if _, err := d.Send(context.Background(), dst, big); !errors.Is(err, link.ErrMessageTooLarge) {
		t.Fatalf("Send(oversized) error = %v, want ErrMessageTooLarge", err)
	}
}
