// Copyright 2024 The Periph Authors. All rights reserved.
// Use of this source code is governed under the Apache License, Version 2.0
// that can be found in the LICENSE file.

// Package distro identifies the board a driver is running on, so that
// sysfsgpio can pick the right /sys/class/gpio symlink naming scheme for the
// LED and photodiode pins it exports.
package distro

import (
	"os"
	"strings"
	"sync"
)

// DTModel returns platform model info from the Linux device tree
// (/proc/device-tree/model), and returns "unknown" on non-linux systems or
// if the file is missing.
func DTModel() string {
	lock.Lock()
	defer lock.Unlock()

	if dtModel == "" {
		dtModel = "unknown"
		if isLinux {
			if b, err := os.ReadFile("/proc/device-tree/model"); err == nil {
				if model := splitNull(b); len(model) > 0 {
					dtModel = model[0]
				}
			}
		}
	}
	return dtModel
}

// splitNull returns the null-terminated strings found in data.
func splitNull(data []byte) []string {
	ss := strings.Split(string(data), "\x00")
	if len(ss) > 0 && len(ss[len(ss)-1]) == 0 {
		ss = ss[:len(ss)-1]
	}
	return ss
}

var (
	lock    sync.Mutex
	dtModel string
)
