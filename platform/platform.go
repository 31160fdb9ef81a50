// Copyright 2016 The Periph Authors. All rights reserved.
// Use of this source code is governed under the Apache License, Version 2.0
// that can be found in the LICENSE file.

// Package platform loads the GPIO backends the vlc link layer needs to find
// its LED and photodiode pins.
package platform

import "periph.io/x/conn/v3/driver/driverreg"

// Init calls driverreg.Init() and returns it as-is.
//
// The only difference is that by calling platform.Init(), you are
// guaranteed to have the chardevgpio and sysfsgpio backends registered, so
// gpioreg.ByName() can resolve the pins the vlc driver is configured with.
func Init() (*driverreg.State, error) {
	return driverreg.Init()
}
