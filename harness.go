// Copyright 2021 The bit Authors. All rights reserved.
// Use of this source code is governed by the MIT License
// that can be found in the LICENSE file.

// Package alignbench measures whether natural alignment matters when bulk
// copying float32 values out of a memory-mapped file.
//
// A Harness writes a fixture of one 0x00 padding byte followed by two
// arrays of random floats, maps it read-only, and exposes two copy
// operations that differ only in source offset and layout:
//
//	ReadAligned    offset 0, layout.Float32LE (requires 4-byte alignment)
//	ReadUnaligned  offset 1, layout.Float32LEUnaligned
//
// ReadAligned deliberately reads the padding byte and the low three bytes of
// A[0] as its first element, so its output is numerically meaningless.  It
// exists to time an aligned copy of the same shape as the unaligned one;
// making it read meaningful data would change what is being measured.
//
// Timing is left to the caller, normally a testing.B benchmark:
//
//	h, err := alignbench.New(size)
//	if err != nil { ... }
//	b.Cleanup(func() { _ = h.Close() })
//	b.SetBytes(int64(4 * size))
//	for i := 0; i < b.N; i++ {
//		sink = h.ReadUnaligned()
//	}
package alignbench

import (
	"errors"
	"fmt"
	"math"
	"sync/atomic"

	"github.com/bpowers/alignbench/internal/fixture"
	"github.com/bpowers/alignbench/internal/layout"
	"github.com/bpowers/alignbench/internal/mapping"
	"github.com/bpowers/alignbench/internal/zero"
)

var (
	ErrInvalidSize = errors.New("size must be positive")
	ErrVerify      = errors.New("verification failed")
	ErrClosed      = errors.New("harness closed")
)

// Sizes is the set of element counts the benchmarks sweep.  The
// non-powers-of-two probe copy paths that are sensitive to tail handling.
var Sizes = []int{1, 4, 6, 8, 13, 16, 25, 32, 64, 100, 128, 207, 256, 300, 512, 702, 1024}

const (
	alignedOffset   = 0
	unalignedOffset = fixture.DataOffset
)

// Harness owns one fixture, its mapping, and the two scratch buffers the
// readers copy into.  It is not safe for concurrent use.
type Harness struct {
	size    int
	fixture *fixture.Fixture
	mapping *mapping.Mapping
	a       []float32 // aligned scratch
	b       []float32 // unaligned scratch
	closed  atomic.Bool
	opts    options
}

// New writes a fresh fixture of size floats per array and maps it.  The
// mapping is held until Close.
func New(size int, opts ...Option) (*Harness, error) {
	if size <= 0 {
		return nil, fmt.Errorf("size %d: %w", size, ErrInvalidSize)
	}

	options := defaultOptions()
	for _, opt := range opts {
		opt(&options)
	}
	if options.rng == nil {
		options.rng = NewRand()
	}
	logger := options.logger.With("size", size)

	fx, err := fixture.Create(options.fixturePath, options.rng, size)
	if err != nil {
		return nil, fmt.Errorf("fixture.Create(%s): %w", options.fixturePath, err)
	}
	logger.Debug("wrote fixture",
		"path", fx.Path,
		"bytes", fx.Len(),
		"fingerprint", fmt.Sprintf("%016x", fx.Fingerprint))

	m, err := mapping.Open(fx.Path, int(fx.Len()))
	if err != nil {
		return nil, fmt.Errorf("mapping.Open(%s): %w", fx.Path, err)
	}
	if err := m.Advise(); err != nil {
		logger.Warn("madvise failed", "err", err)
	}
	logger.Debug("mapped fixture", "len", m.Len())

	h := &Harness{
		size:    size,
		fixture: fx,
		mapping: m,
		a:       make([]float32, size),
		b:       make([]float32, size),
		opts:    options,
	}

	if options.verify {
		if err := h.Verify(); err != nil {
			_ = h.Close()
			return nil, err
		}
		logger.Debug("verified readers")
	}

	return h, nil
}

// Size is the number of floats each reader copies.
func (h *Harness) Size() int {
	return h.size
}

// FixturePath is the path of the mapped fixture file.
func (h *Harness) FixturePath() string {
	return h.fixture.Path
}

// Fingerprint identifies the fixture contents.
func (h *Harness) Fingerprint() uint64 {
	return h.fixture.Fingerprint
}

// A returns a copy of the array the unaligned reader is expected to produce.
func (h *Harness) A() []float32 {
	return append([]float32(nil), h.fixture.A...)
}

func (h *Harness) read(off int, l layout.Layout, dst []float32) []float32 {
	if h.closed.Load() {
		panic(ErrClosed)
	}
	if err := layout.Copy(h.mapping.Bytes(), off, l, dst); err != nil {
		// a failure here is a setup defect, never a data point
		panic(fmt.Errorf("invariant broken: %s read at off %d: %w", l, off, err))
	}
	return dst
}

// ReadAligned copies Size() floats from offset 0 of the mapping under the
// aligned layout and returns the aligned scratch buffer.  The values are
// meaningless by construction; see the package documentation.
func (h *Harness) ReadAligned() []float32 {
	return h.read(alignedOffset, layout.Float32LE, h.a)
}

// ReadUnaligned copies Size() floats from offset 1 of the mapping, the true
// start of array A, and returns the unaligned scratch buffer.
func (h *Harness) ReadUnaligned() []float32 {
	return h.read(unalignedOffset, layout.Float32LEUnaligned, h.b)
}

// Verify checks the copy mechanism of both readers once.  The unaligned
// reader must reproduce array A bit for bit, and the aligned reader must
// agree with an element-at-a-time decode of the same bytes.  It is not
// part of the timed path.
func (h *Harness) Verify() error {
	if h.closed.Load() {
		return ErrClosed
	}

	zero.Float32(h.a)
	zero.Float32(h.b)

	got := h.ReadUnaligned()
	if i := firstMismatch(got, h.fixture.A); i >= 0 {
		return fmt.Errorf("unaligned read at index %d: got %v, want %v: %w", i, got[i], h.fixture.A[i], ErrVerify)
	}

	want := make([]float32, h.size)
	if err := layout.Decode(h.mapping.Bytes(), alignedOffset, layout.Float32LE, want); err != nil {
		return fmt.Errorf("layout.Decode: %w", err)
	}
	got = h.ReadAligned()
	if i := firstMismatch(got, want); i >= 0 {
		return fmt.Errorf("aligned read at index %d: got %#08x, want %#08x: %w",
			i, math.Float32bits(got[i]), math.Float32bits(want[i]), ErrVerify)
	}

	return nil
}

// firstMismatch compares bit patterns, so NaNs and signed zeros compare
// exactly.  It returns -1 if a and b are identical.
func firstMismatch(a, b []float32) int {
	if len(a) != len(b) {
		return 0
	}
	for i := range a {
		if math.Float32bits(a[i]) != math.Float32bits(b[i]) {
			return i
		}
	}
	return -1
}

// Close releases the mapping.  The fixture file is left on disk.  It is
// safe to call more than once.
func (h *Harness) Close() error {
	if h.closed.Swap(true) {
		return nil
	}
	if err := h.mapping.Close(); err != nil {
		return fmt.Errorf("mapping.Close: %w", err)
	}
	h.opts.logger.Debug("unmapped fixture", "size", h.size)
	return nil
}
