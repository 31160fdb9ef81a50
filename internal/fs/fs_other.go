// Copyright 2024 The Periph Authors. All rights reserved.
// Use of this source code is governed under the Apache License, Version 2.0
// that can be found in the LICENSE file.

//go:build !linux

package fs

import "errors"

const isLinux = false

type event struct{}

func (e *event) makeEvent(fd uintptr) error {
	return errors.New("fs: epoll edges not supported on non-linux")
}

func (e *event) wait(timeoutms int) (int, error) {
	return 0, errors.New("fs: epoll edges not supported on non-linux")
}
