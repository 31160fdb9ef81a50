// Copyright 2024 The Periph Authors. All rights reserved.
// Use of this source code is governed under the Apache License, Version 2.0
// that can be found in the LICENSE file.

package link

import (
	"errors"
	"testing"
)

func addr(b0, b1, b2, b3, b4, b5 byte) Addr {
	return Addr{b0, b1, b2, b3, b4, b5}
}

func TestAssembleParseRoundTrip(t *testing.T) {
	src := addr(0x01, 0x02, 0x03, 0x04, 0x05, 0x06)
	dst := addr(0x0A, 0x0B, 0x0C, 0x0D, 0x0E, 0x0F)
	payload := []byte{0x41}

	wire, err := Assemble(src, dst, payload)
	if err != nil {
		t.Fatalf("Assemble: %v", err)
	}
	frame, err := Parse(wire, MaxFrameSize+1)
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	if frame.Src != src || frame.Dst != dst {
		t.Fatalf("address mismatch: got src=%v dst=%v", frame.Src, frame.Dst)
	}
	if string(frame.Payload) != string(payload) {
		t.Fatalf("payload mismatch: got %v want %v", frame.Payload, payload)
	}
}

func TestAssembleEmptyPayload(t *testing.T) {
	if _, err := Assemble(Addr{}, Addr{}, nil); !errors.Is(err, ErrBadMessage) {
		t.Fatalf("expected ErrBadMessage, got %v", err)
	}
}

func TestAssembleTooLarge(t *testing.T) {
	big := make([]byte, MTU+1)
	if _, err := Assemble(Addr{}, Addr{}, big); !errors.Is(err, ErrMessageTooLarge) {
		t.Fatalf("expected ErrMessageTooLarge, got %v", err)
	}
}

func TestParseTooShort(t *testing.T) {
	if _, err := Parse(make([]byte, HeaderSize), MaxFrameSize); !errors.Is(err, ErrTooShort) {
		t.Fatalf("expected ErrTooShort, got %v", err)
	}
}

func TestParseBufferOverflow(t *testing.T) {
	src := addr(1, 2, 3, 4, 5, 6)
	dst := addr(7, 8, 9, 10, 11, 12)
	wire, err := Assemble(src, dst, []byte{0x00, 0x11, 0x22})
	if err != nil {
		t.Fatalf("Assemble: %v", err)
	}
	if _, err := Parse(wire, len(wire)); !errors.Is(err, ErrBufferOverflow) {
		t.Fatalf("expected ErrBufferOverflow, got %v", err)
	}
}

// TestCRCCorruption is end-to-end scenario 4 from the testable properties:
// flipping bit 3 of the second payload byte must cause the frame to be
// dropped with ErrCRCFailure.
func TestCRCCorruption(t *testing.T) {
	src := addr(1, 2, 3, 4, 5, 6)
	dst := addr(7, 8, 9, 10, 11, 12)
	wire, err := Assemble(src, dst, []byte{0x00, 0x11, 0x22})
	if err != nil {
		t.Fatalf("Assemble: %v", err)
	}
	// second payload byte is at HeaderSize+1
	wire[HeaderSize+1] ^= 1 << 3
	if _, err := Parse(wire, MaxFrameSize+1); !errors.Is(err, ErrCRCFailure) {
		t.Fatalf("expected ErrCRCFailure, got %v", err)
	}
}

func TestCRC8KnownValue(t *testing.T) {
	// CRC8 with init 0xCD over an empty buffer is just the init value.
	if got := CRC8(nil); got != CRCInit {
		t.Fatalf("CRC8(nil) = %#02x, want init %#02x", got, CRCInit)
	}
}
