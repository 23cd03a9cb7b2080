// Copyright 2021 The bit Authors. All rights reserved.
// Use of this source code is governed by the MIT License
// that can be found in the LICENSE file.

package alignbench

import (
	crand "crypto/rand"
	"encoding/binary"
	"io"
	"log/slog"
	"math/rand"
)

// DefaultFixturePath is where the fixture is written unless WithFixturePath
// says otherwise.  It is relative to the working directory.
const DefaultFixturePath = "vector.data"

// Option configures a Harness.
type Option func(*options)

type options struct {
	fixturePath string
	rng         *rand.Rand
	logger      *slog.Logger
	verify      bool
}

// WithFixturePath sets the file the fixture is written to and mapped from.
// Any existing file at that path is replaced.
func WithFixturePath(path string) Option {
	return func(opts *options) {
		opts.fixturePath = path
	}
}

// WithRand sets the random source used to generate the fixture arrays.  Pass
// a seeded generator for reproducible fixtures.  If not provided, a source
// seeded from crypto/rand is used.
func WithRand(rng *rand.Rand) Option {
	return func(opts *options) {
		opts.rng = rng
	}
}

// WithLogger sets an optional logger for setup and teardown progress.
// If not provided, no logging output will be produced.
func WithLogger(logger *slog.Logger) Option {
	return func(opts *options) {
		opts.logger = logger
	}
}

// WithVerify makes New check both readers once before returning.
func WithVerify(verify bool) Option {
	return func(opts *options) {
		opts.verify = verify
	}
}

// NewRand returns a math/rand generator seeded from crypto/rand.
func NewRand() *rand.Rand {
	var seedBytes [8]byte
	if _, err := crand.Read(seedBytes[:]); err != nil {
		panic(err)
	}
	seed := int64(binary.LittleEndian.Uint64(seedBytes[:]))
	return rand.New(rand.NewSource(seed))
}

func defaultOptions() options {
	return options{
		fixturePath: DefaultFixturePath,
		logger:      slog.New(slog.NewTextHandler(io.Discard, nil)),
	}
}
