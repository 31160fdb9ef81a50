// Copyright 2024 The Periph Authors. All rights reserved.
// Use of this source code is governed under the Apache License, Version 2.0
// that can be found in the LICENSE file.

// Package fs provides the epoll-based edge-wait primitive the sysfsgpio
// backend uses to implement gpio.PinIn.WaitForEdge, plus a thin wrapper
// around os.OpenFile so file access can be traced and, in tests,
// inhibited entirely.
package fs

import (
	"errors"
	"os"
	"sync"
)

// Open opens a file.
//
// Returns an error if Inhibit() was called.
func Open(path string, flag int) (*File, error) {
	mu.Lock()
	if inhibited {
		mu.Unlock()
		return nil, errors.New("fs: file I/O is inhibited")
	}
	used = true
	mu.Unlock()

	f, err := os.OpenFile(path, flag, 0o600)
	if err != nil {
		return nil, err
	}
	return &File{f}, nil
}

// Inhibit inhibits any future file I/O. It panics if any file was opened up
// to now.
//
// It should only be called from unit tests that exercise the sysfsgpio
// backend against a fake chip and must never touch the real sysfs tree.
func Inhibit() {
	mu.Lock()
	defer mu.Unlock()
	inhibited = true
	if used {
		panic("fs: calling Inhibit() while files were already opened")
	}
}

// File is a superset of os.File.
type File struct {
	*os.File
}

// Event is a file system event usable to wait for a GPIO edge via epoll on
// Linux.
type Event struct {
	event
}

// MakeEvent initializes an epoll *edge* triggered event on the given file
// descriptor.
//
// An edge triggered event is basically an "auto-reset" event: waiting on it
// resets it. This matches gpio.RisingEdge / gpio.FallingEdge / gpio.BothEdges
// semantics, where each edge should be consumed exactly once by the VLC
// receiver's edge-interrupt goroutine.
func (e *Event) MakeEvent(fd uintptr) error {
	return e.event.makeEvent(fd)
}

// Wait waits for an event or the specified amount of time, in milliseconds.
// A negative timeout waits forever.
func (e *Event) Wait(timeoutms int) (int, error) {
	return e.event.wait(timeoutms)
}

var (
	mu        sync.Mutex
	inhibited bool
	used      bool
)
