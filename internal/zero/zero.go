// Copyright 2021 The bit Authors. All rights reserved.
// Use of this source code is governed by the MIT License
// that can be found in the LICENSE file.

// Package zero provides functions to zero slices of specific types.
package zero

func Float32(f []float32) {
	for i := 0; i < len(f); i++ {
		f[i] = 0
	}
}
