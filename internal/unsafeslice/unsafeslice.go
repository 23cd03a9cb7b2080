// Copyright 2021 The bit Authors. All rights reserved.
// Use of this source code is governed by the MIT License
// that can be found in the LICENSE file.

// Package unsafeslice reinterprets float32 slices as raw bytes.
package unsafeslice

import (
	"unsafe"
)

// Float32Bytes returns a byte slice referring to the memory backing f, in
// host byte order.
// SAFETY: the returned slice aliases f and is only valid while f is live.
func Float32Bytes(f []float32) []byte {
	if len(f) == 0 {
		return nil
	}
	return unsafe.Slice((*byte)(unsafe.Pointer(&f[0])), len(f)*4)
}

// Addr returns the address of b[off], for alignment checks.
func Addr(b []byte, off int) uintptr {
	return uintptr(unsafe.Pointer(&b[off]))
}
