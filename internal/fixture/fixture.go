// Copyright 2023 The bit Authors. All rights reserved.
// Use of this source code is governed by the MIT License
// that can be found in the LICENSE file.

package fixture

import (
	"errors"
	"fmt"
	"math/rand"
	"os"
)

const (
	// PaddingByte is the value of the single byte preceding array A.
	PaddingByte = 0x00
	// DataOffset is the file offset where array A begins.
	DataOffset = 1

	floatSize = 4
)

var (
	ErrInvalidSize = errors.New("fixture size must be positive")
)

// Len returns the total byte length of a fixture with size elements per array.
func Len(size int) int64 {
	return 1 + int64(size)*2*floatSize
}

// Generate returns two independent arrays of size random floats in [0,1).
func Generate(rng *rand.Rand, size int) (a, b []float32) {
	a = make([]float32, size)
	b = make([]float32, size)
	for i := 0; i < size; i++ {
		a[i] = rng.Float32()
		b[i] = rng.Float32()
	}
	return a, b
}

// Fixture describes a fixture file that has been fully written to disk.
type Fixture struct {
	Path        string
	Size        int
	A           []float32
	B           []float32
	Fingerprint uint64
}

// Len is the length of the fixture file in bytes.
func (f *Fixture) Len() int64 {
	return Len(f.Size)
}

// Create writes a fresh fixture with size elements per array to path,
// replacing anything already there.
func Create(path string, rng *rand.Rand, size int) (*Fixture, error) {
	if size <= 0 {
		return nil, fmt.Errorf("size %d: %w", size, ErrInvalidSize)
	}

	a, b := Generate(rng, size)

	f, err := os.OpenFile(path, os.O_CREATE|os.O_TRUNC|os.O_RDWR, 0644)
	if err != nil {
		return nil, fmt.Errorf("os.OpenFile(%s): %w", path, err)
	}

	w := NewWriter(f)
	if err := w.WriteFixture(a, b); err != nil {
		_ = f.Close()
		return nil, fmt.Errorf("WriteFixture: %w", err)
	}
	if err := f.Sync(); err != nil {
		_ = f.Close()
		return nil, fmt.Errorf("f.Sync: %w", err)
	}
	if err := f.Close(); err != nil {
		return nil, fmt.Errorf("f.Close: %w", err)
	}

	return &Fixture{
		Path:        path,
		Size:        size,
		A:           a,
		B:           b,
		Fingerprint: w.Fingerprint(),
	}, nil
}
