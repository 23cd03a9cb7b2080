// Copyright 2021 The bit Authors. All rights reserved.
// Use of this source code is governed by the MIT License
// that can be found in the LICENSE file.

package alignbench

import (
	"fmt"
	"path/filepath"
	"testing"
)

// sink keeps the compiler from discarding the copies.
var sink []float32

func benchmarkRead(b *testing.B, read func(*Harness) []float32) {
	for _, size := range Sizes {
		b.Run(fmt.Sprintf("size=%d", size), func(b *testing.B) {
			h, err := New(size,
				WithFixturePath(filepath.Join(b.TempDir(), DefaultFixturePath)),
				WithVerify(true))
			if err != nil {
				b.Fatal(err)
			}
			b.Cleanup(func() {
				_ = h.Close()
			})

			b.SetBytes(int64(4 * size))
			b.ReportAllocs()
			b.ResetTimer()
			for i := 0; i < b.N; i++ {
				sink = read(h)
			}
		})
	}
}

func BenchmarkReadAligned(b *testing.B) {
	benchmarkRead(b, (*Harness).ReadAligned)
}

func BenchmarkReadUnaligned(b *testing.B) {
	benchmarkRead(b, (*Harness).ReadUnaligned)
}
