// Copyright 2023 The bit Authors. All rights reserved.
// Use of this source code is governed by the MIT License
// that can be found in the LICENSE file.

// Package layout describes how 4-byte spans of a mapped buffer are
// interpreted as float32 values, and copies them out in bulk.
//
// A Layout pairs a byte order with an alignment requirement.  The two
// layouts used by the harness differ only in that requirement:
//
//	Float32LE           little-endian, source must be 4-byte aligned
//	Float32LEUnaligned  little-endian, any source address
//
// Copy refuses to run an aligned layout over a misaligned address rather
// than quietly falling back to the unaligned path.
package layout

import (
	"encoding/binary"
	"errors"
	"fmt"
	"math"

	"golang.org/x/sys/cpu"

	"github.com/bpowers/alignbench/internal/unsafeslice"
)

// Float32Size is the width in bytes of one element.
const Float32Size = 4

var (
	ErrOutOfRange = errors.New("copy span exceeds source length")
	ErrMisaligned = errors.New("source address violates layout alignment")
)

// Layout is an immutable numeric layout descriptor for float32 elements.
type Layout struct {
	name  string
	order binary.ByteOrder
	align uintptr
}

var (
	// Float32LE requires naturally aligned (4-byte) source addresses.
	Float32LE = Layout{name: "float32le", order: binary.LittleEndian, align: Float32Size}
	// Float32LEUnaligned permits any source address.
	Float32LEUnaligned = Layout{name: "float32le-unaligned", order: binary.LittleEndian, align: 1}
)

func (l Layout) Order() binary.ByteOrder { return l.order }

// Alignment is the required source address alignment in bytes.
func (l Layout) Alignment() int { return int(l.align) }

func (l Layout) String() string { return l.name }

func (l Layout) native() bool {
	return (l.order == binary.BigEndian) == cpu.IsBigEndian
}

func checkSpan(src []byte, off int, n int) error {
	if off < 0 || off > len(src) || n > (len(src)-off)/Float32Size {
		return fmt.Errorf("off %d + %d floats beyond bounds (%d): %w", off, n, len(src), ErrOutOfRange)
	}
	return nil
}

// CheckAlignment reports ErrMisaligned if &src[off] does not satisfy l.
func (l Layout) CheckAlignment(src []byte, off int) error {
	if l.align <= 1 {
		return nil
	}
	if addr := unsafeslice.Addr(src, off); addr%l.align != 0 {
		return fmt.Errorf("%s at %#x (off %d): %w", l.name, addr, off, ErrMisaligned)
	}
	return nil
}

// Copy fills dst with len(dst) floats read from src starting at byte offset
// off, interpreted according to l.  It never allocates.
func Copy(src []byte, off int, l Layout, dst []float32) error {
	n := len(dst)
	if n == 0 {
		return nil
	}
	if err := checkSpan(src, off, n); err != nil {
		return err
	}
	if err := l.CheckAlignment(src, off); err != nil {
		return err
	}
	if l.native() {
		copy(unsafeslice.Float32Bytes(dst), src[off:off+n*Float32Size])
		return nil
	}
	decode(src[off:off+n*Float32Size], l.order, dst)
	return nil
}

// Decode is the portable element-at-a-time equivalent of Copy.  It ignores
// the alignment requirement and is meant as a reference, not for timing.
func Decode(src []byte, off int, l Layout, dst []float32) error {
	n := len(dst)
	if n == 0 {
		return nil
	}
	if err := checkSpan(src, off, n); err != nil {
		return err
	}
	decode(src[off:off+n*Float32Size], l.order, dst)
	return nil
}

func decode(src []byte, order binary.ByteOrder, dst []float32) {
	// bounds check elimination
	_ = src[len(dst)*Float32Size-1]
	for i := range dst {
		dst[i] = math.Float32frombits(order.Uint32(src[i*Float32Size:]))
	}
}
