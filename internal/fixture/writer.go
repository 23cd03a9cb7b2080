// Copyright 2023 The bit Authors. All rights reserved.
// Use of this source code is governed by the MIT License
// that can be found in the LICENSE file.

package fixture

import (
	"encoding/binary"
	"errors"
	"fmt"
	"io"
	"math"
	"sync/atomic"

	"github.com/dgryski/go-farm"
)

var (
	ErrShortWrite      = errors.New("short write")
	ErrMismatchedSizes = errors.New("arrays A and B must have equal length")
	ErrAlreadyWritten  = errors.New("fixture already written")
)

// FileWriter is usually an *os.File, but specified as an interface for easier testing.
type FileWriter interface {
	io.Writer
}

// Writer serializes one fixture.  It is single-use: the padding byte and the
// packed arrays are each handed to the underlying file in a single Write,
// and anything other than a complete write is an error.  There are no
// retries.
type Writer struct {
	f           FileWriter
	off         int64
	fingerprint uint64
	finished    atomic.Bool
}

func NewWriter(f FileWriter) *Writer {
	return &Writer{f: f}
}

func (w *Writer) write(p []byte) error {
	n, err := w.f.Write(p)
	if n > 0 {
		w.off += int64(n)
	}
	if err != nil {
		return fmt.Errorf("f.Write at off %d: %w", w.off-int64(n), err)
	}
	if n != len(p) {
		return fmt.Errorf("expected n=%d, got: %d: %w", len(p), n, ErrShortWrite)
	}
	return nil
}

// encode packs a followed by b as little-endian floats.
func encode(a, b []float32) []byte {
	buf := make([]byte, (len(a)+len(b))*floatSize)
	for i, v := range a {
		binary.LittleEndian.PutUint32(buf[i*floatSize:], math.Float32bits(v))
	}
	base := len(a) * floatSize
	for i, v := range b {
		binary.LittleEndian.PutUint32(buf[base+i*floatSize:], math.Float32bits(v))
	}
	return buf
}

// WriteFixture writes the padding byte followed by a and b.
func (w *Writer) WriteFixture(a, b []float32) error {
	if len(a) != len(b) {
		return fmt.Errorf("len(a)=%d len(b)=%d: %w", len(a), len(b), ErrMismatchedSizes)
	}
	if len(a) == 0 {
		return fmt.Errorf("size 0: %w", ErrInvalidSize)
	}
	if alreadyFinished := w.finished.Swap(true); alreadyFinished {
		return ErrAlreadyWritten
	}

	padding := []byte{PaddingByte}
	if err := w.write(padding); err != nil {
		return fmt.Errorf("padding: %w", err)
	}
	data := encode(a, b)
	if err := w.write(data); err != nil {
		return fmt.Errorf("arrays: %w", err)
	}

	if expected := Len(len(a)); w.off != expected {
		panic(fmt.Errorf("invariant broken: wrote %d bytes, expected %d", w.off, expected))
	}

	h := farm.Hash64WithSeed(padding, 0)
	w.fingerprint = farm.Hash64WithSeed(data, h)

	return nil
}

// Written is the number of bytes the underlying file accepted.
func (w *Writer) Written() int64 {
	return w.off
}

// Fingerprint is a farmhash of the fixture contents, valid after a
// successful WriteFixture.  Fixtures built from the same seed and size have
// the same fingerprint.
func (w *Writer) Fingerprint() uint64 {
	return w.fingerprint
}
