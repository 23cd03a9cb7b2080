// Copyright 2023 The bit Authors. All rights reserved.
// Use of this source code is governed by the MIT License
// that can be found in the LICENSE file.

// Package mapping holds a read-only memory mapping over a fixture file.
package mapping

import (
	"errors"
	"fmt"
	"os"
	"sync/atomic"
	"unsafe"

	"github.com/edsrzf/mmap-go"
)

// baseAlignment is the minimum alignment we require of the mapping's first
// byte so that offset 0 is a valid source for aligned float32 loads.
const baseAlignment = 4

var (
	ErrInvalidLength  = errors.New("mapping length must be positive")
	ErrFileTooShort   = errors.New("file shorter than requested mapping")
	ErrMisalignedBase = errors.New("mapping base address is not 4-byte aligned")
	ErrClosed         = errors.New("mapping closed")
)

// Mapping is a read-only view of the first Len() bytes of a file.
type Mapping struct {
	m      mmap.MMap
	closed atomic.Bool
}

// Open maps exactly length bytes of path, starting at offset 0.  The file
// descriptor is closed before returning; the mapping remains valid until
// Close.
func Open(path string, length int) (*Mapping, error) {
	if length <= 0 {
		return nil, fmt.Errorf("length %d: %w", length, ErrInvalidLength)
	}

	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("os.Open(%s): %w", path, err)
	}
	defer func() {
		_ = f.Close()
	}()

	stats, err := f.Stat()
	if err != nil {
		return nil, fmt.Errorf("f.Stat: %w", err)
	}
	if stats.Size() < int64(length) {
		return nil, fmt.Errorf("%s: %d < %d: %w", path, stats.Size(), length, ErrFileTooShort)
	}

	m, err := mmap.MapRegion(f, length, mmap.RDONLY, 0, 0)
	if err != nil {
		return nil, fmt.Errorf("mmap.MapRegion(%s, %d): %w", path, length, err)
	}
	if len(m) != length {
		_ = m.Unmap()
		panic(fmt.Errorf("invariant broken: mapped %d bytes, requested %d", len(m), length))
	}

	if addr := uintptr(unsafe.Pointer(&m[0])); addr%baseAlignment != 0 {
		_ = m.Unmap()
		return nil, fmt.Errorf("base %#x: %w", addr, ErrMisalignedBase)
	}

	return &Mapping{m: m}, nil
}

// Bytes returns the mapped region, or nil once the mapping is closed.
// The slice must never be written to.
func (m *Mapping) Bytes() []byte {
	if m.closed.Load() {
		return nil
	}
	return m.m
}

// Len is the length of the mapped region in bytes.
func (m *Mapping) Len() int {
	return len(m.m)
}

// Advise hints to the kernel that the region will be read front to back
// and soon.
func (m *Mapping) Advise() error {
	if m.closed.Load() {
		return ErrClosed
	}
	return advise(m.m)
}

// Close unmaps the region.  It is safe to call more than once.
func (m *Mapping) Close() error {
	if m.closed.Swap(true) {
		return nil
	}
	if err := m.m.Unmap(); err != nil {
		return fmt.Errorf("Unmap: %w", err)
	}
	return nil
}
