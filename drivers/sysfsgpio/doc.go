// Copyright 2016 The Periph Authors. All rights reserved.
// Use of this source code is governed under the Apache License, Version 2.0
// that can be found in the LICENSE file.
//
// Package sysfsgpio provides access to GPIO pins via the Linux sysfs
// interface (/sys/class/gpio).
//
// This is one of two interchangeable backends (see also chardevgpio) that
// hand the vlc link layer a periph.io/x/conn/v3/gpio.PinIO for its LED
// output and photodiode input. It is the fallback for kernels or
// distributions where the GPIO v2 character device isn't available; edge
// waits are implemented with epoll via the internal fs package rather than
// an ioctl line request.
package sysfsgpio
