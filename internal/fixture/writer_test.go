// Copyright 2023 The bit Authors. All rights reserved.
// Use of this source code is governed by the MIT License
// that can be found in the LICENSE file.

package fixture

import (
	"bytes"
	"encoding/binary"
	"errors"
	"math"
	"math/rand"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type testWriter struct {
	inner bytes.Buffer
	// limit caps how many bytes a single Write accepts; <0 means no limit
	limit            int
	writeShouldError bool
	calls            int
}

func (c *testWriter) Write(p []byte) (n int, err error) {
	c.calls++
	if c.writeShouldError {
		return 0, errors.New("write failed")
	}
	if c.limit >= 0 && len(p) > c.limit {
		p = p[:c.limit]
	}
	return c.inner.Write(p)
}

var _ FileWriter = &testWriter{}

func TestWriter_Layout(t *testing.T) {
	a := []float32{0.5, 0.25, 0.125, 0.0625}
	b := []float32{0.75, 0.875, 0.9375, 0.96875}
	out := &testWriter{limit: -1}

	w := NewWriter(out)
	require.NoError(t, w.WriteFixture(a, b))

	contents := out.inner.Bytes()
	require.Len(t, contents, int(Len(len(a))))
	assert.Equal(t, int64(len(contents)), w.Written())
	assert.Equal(t, byte(PaddingByte), contents[0])
	// one write for the padding byte, one for the arrays
	assert.Equal(t, 2, out.calls)

	for i, v := range a {
		off := DataOffset + i*floatSize
		assert.Equal(t, math.Float32bits(v), binary.LittleEndian.Uint32(contents[off:]))
	}
	for i, v := range b {
		off := DataOffset + (len(a)+i)*floatSize
		assert.Equal(t, math.Float32bits(v), binary.LittleEndian.Uint32(contents[off:]))
	}
	assert.NotZero(t, w.Fingerprint())
}

func TestWriter_ShortWrite(t *testing.T) {
	for _, limit := range []int{0, 1, 16} {
		out := &testWriter{limit: limit}
		w := NewWriter(out)
		err := w.WriteFixture(make([]float32, 8), make([]float32, 8))
		assert.ErrorIs(t, err, ErrShortWrite, "limit %d", limit)
	}
}

func TestWriter_Errors(t *testing.T) {
	out := &testWriter{writeShouldError: true}
	err := NewWriter(out).WriteFixture([]float32{1}, []float32{2})
	assert.Error(t, err)
	assert.NotErrorIs(t, err, ErrShortWrite)

	out = &testWriter{limit: -1}
	err = NewWriter(out).WriteFixture([]float32{1}, []float32{2, 3})
	assert.ErrorIs(t, err, ErrMismatchedSizes)

	err = NewWriter(out).WriteFixture(nil, nil)
	assert.ErrorIs(t, err, ErrInvalidSize)
	assert.Zero(t, out.calls)

	w := NewWriter(out)
	require.NoError(t, w.WriteFixture([]float32{1}, []float32{2}))
	assert.ErrorIs(t, w.WriteFixture([]float32{1}, []float32{2}), ErrAlreadyWritten)
}

func TestGenerate(t *testing.T) {
	a, b := Generate(rand.New(rand.NewSource(1)), 300)
	require.Len(t, a, 300)
	require.Len(t, b, 300)
	for i := range a {
		assert.True(t, a[i] >= 0 && a[i] < 1, "a[%d] = %v", i, a[i])
		assert.True(t, b[i] >= 0 && b[i] < 1, "b[%d] = %v", i, b[i])
	}
	assert.NotEqual(t, a, b)

	a2, b2 := Generate(rand.New(rand.NewSource(1)), 300)
	assert.Equal(t, a, a2)
	assert.Equal(t, b, b2)
}

func TestCreate(t *testing.T) {
	dir := t.TempDir()
	for _, size := range []int{1, 4, 13, 1024} {
		path := filepath.Join(dir, "vector.data")
		fx, err := Create(path, rand.New(rand.NewSource(int64(size))), size)
		require.NoError(t, err)

		contents, err := os.ReadFile(path)
		require.NoError(t, err)
		assert.Len(t, contents, 1+2*4*size)
		assert.Equal(t, fx.Len(), int64(len(contents)))
		assert.Equal(t, byte(0x00), contents[0])
		assert.Equal(t, size, fx.Size)
		assert.Len(t, fx.A, size)
		assert.Len(t, fx.B, size)
	}
}

func TestCreate_Deterministic(t *testing.T) {
	dir := t.TempDir()
	p1 := filepath.Join(dir, "one.data")
	p2 := filepath.Join(dir, "two.data")

	fx1, err := Create(p1, rand.New(rand.NewSource(42)), 64)
	require.NoError(t, err)
	fx2, err := Create(p2, rand.New(rand.NewSource(42)), 64)
	require.NoError(t, err)

	c1, err := os.ReadFile(p1)
	require.NoError(t, err)
	c2, err := os.ReadFile(p2)
	require.NoError(t, err)
	assert.Equal(t, c1, c2)
	assert.Equal(t, fx1.Fingerprint, fx2.Fingerprint)

	fx3, err := Create(p2, rand.New(rand.NewSource(43)), 64)
	require.NoError(t, err)
	assert.NotEqual(t, fx1.Fingerprint, fx3.Fingerprint)
}

func TestCreate_Overwrites(t *testing.T) {
	path := filepath.Join(t.TempDir(), "vector.data")
	require.NoError(t, os.WriteFile(path, make([]byte, 4096), 0644))

	_, err := Create(path, rand.New(rand.NewSource(7)), 2)
	require.NoError(t, err)

	fi, err := os.Stat(path)
	require.NoError(t, err)
	assert.Equal(t, Len(2), fi.Size())
}

func TestCreate_Errors(t *testing.T) {
	rng := rand.New(rand.NewSource(1))
	_, err := Create(filepath.Join(t.TempDir(), "vector.data"), rng, 0)
	assert.ErrorIs(t, err, ErrInvalidSize)

	_, err = Create(filepath.Join(t.TempDir(), "missing", "vector.data"), rng, 4)
	assert.Error(t, err)
}
