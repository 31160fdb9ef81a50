// Copyright 2024 The Periph Authors. All rights reserved.
// Use of this source code is governed under the Apache License, Version 2.0
// that can be found in the LICENSE file.

// Package link implements the VLC link-layer frame format: 6-byte
// source/destination MAC addresses, a CRC-8 trailer, and the assembly and
// parsing rules that bridge the manchester physical layer to a generic
// upper network stack.
package link

import "errors"

// Sentinel errors surfaced by Assemble and wrapped by higher layers. Drops
// on the receive path (ErrCRCFailure, ErrBufferOverflow, ErrTimeout) are
// never returned to a caller beyond the netif device boundary; they are
// logged and counted instead, since a corrupt frame is indistinguishable
// from no frame at all to the upper stack.
var (
	// ErrBadMessage indicates a malformed outgoing packet: no link header,
	// or a payload that isn't distinguishable from an empty frame.
	ErrBadMessage = errors.New("link: bad message")
	// ErrMessageTooLarge indicates the assembled frame would exceed MTU+12 bytes.
	ErrMessageTooLarge = errors.New("link: message too large")
	// ErrTransient indicates a timer or hardware setup failure; the caller
	// may retry.
	ErrTransient = errors.New("link: transient hardware error")
	// ErrUnsupported indicates an option or configuration value that isn't
	// accepted.
	ErrUnsupported = errors.New("link: unsupported")
	// ErrCRCFailure indicates the trailing CRC-8 didn't match on receive.
	ErrCRCFailure = errors.New("link: crc failure")
	// ErrBufferOverflow indicates the received byte count exceeds capacity.
	ErrBufferOverflow = errors.New("link: buffer overflow")
	// ErrTooShort indicates fewer than AddrLen*2+1 bytes were received.
	ErrTooShort = errors.New("link: frame too short")
	// ErrTimeout indicates a receive sync never completed, or a mid-frame
	// inactivity gap exceeded timeout_us.
	ErrTimeout = errors.New("link: receive timed out")
)
