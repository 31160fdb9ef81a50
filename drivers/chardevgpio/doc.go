// Copyright 2024 The Periph Authors. All rights reserved.
// Use of this source code is governed under the Apache License, Version 2.0
// that can be found in the LICENSE file.
//
// Package chardevgpio provides access to Linux GPIO lines using the
// GPIO v2 ioctl character device interface.
//
// https://docs.kernel.org/userspace-api/gpio/index.html
//
// This is one of two interchangeable backends (see also sysfsgpio) that
// hand the vlc link layer a periph.io/x/conn/v3/gpio.PinIO for its LED
// output and photodiode input: edge-triggered reads go through
// GPIOLine.WaitForEdge, exactly the "GPIO input with edge interrupt"
// surface the manchester receiver is built against. Pins are looked up
// by name via gpioreg, or through the Chips collection and a chip's
// ByName()/ByNumber() methods.
package chardevgpio
