// Copyright 2024 The Periph Authors. All rights reserved.
// Use of this source code is governed under the Apache License, Version 2.0
// that can be found in the LICENSE file.

package link

import "fmt"

// AddrLen is the length in bytes of a VLC link-layer address.
const AddrLen = 6

// Addr is a 6-byte VLC link-layer (MAC) address.
type Addr [AddrLen]byte

// String renders the address colon-separated, lowercase hex.
func (a Addr) String() string {
	return fmt.Sprintf("%02x:%02x:%02x:%02x:%02x:%02x", a[0], a[1], a[2], a[3], a[4], a[5])
}
