// Copyright 2023 The bit Authors. All rights reserved.
// Use of this source code is governed by the MIT License
// that can be found in the LICENSE file.

// Package fixture builds the on-disk float data the alignment benchmarks
// read through a memory mapping.
//
// A fixture of n elements per array is exactly 1+8n bytes:
//
//	 0    1    2    3    4    5    6    7    8
//	+----+----+----+----+----+----+----+----+----+
//	|pad | A[0]              | A[1]              |
//	+----+----+----+----+----+----+----+----+----+
//	| ... A[n-1]           | B[0] ...  B[n-1]    |
//	+----+----+----+----+----+----+----+----+----+
//
// The padding byte is always 0x00 and every float is little-endian
// IEEE-754.  Because of the padding byte, array A starts at an odd offset,
// which is the whole point: reading A requires an unaligned load.
package fixture
