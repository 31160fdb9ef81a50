// Copyright 2016 The Periph Authors. All rights reserved.
// Use of this source code is governed under the Apache License, Version 2.0
// that can be found in the LICENSE file.

package platform

import (
	// Make sure both GPIO backends are registered.
	_ "github.com/timrdmr/ba-ip-over-vlc/drivers/chardevgpio"
	_ "github.com/timrdmr/ba-ip-over-vlc/drivers/sysfsgpio"
)
