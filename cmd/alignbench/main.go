// Copyright 2021 The bit Authors. All rights reserved.
// Use of this source code is governed by the MIT License
// that can be found in the LICENSE file.

// Command alignbench times aligned and unaligned float32 copies out of a
// memory-mapped fixture for a range of element counts.
package main

import (
	"flag"
	"fmt"
	"io"
	"log/slog"
	"math/rand"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"testing"
	"text/tabwriter"

	"github.com/bpowers/alignbench"
)

// sink keeps the compiler from discarding the copies.
var sink []float32

type result struct {
	size int
	op   string
	r    testing.BenchmarkResult
}

func parseSizes(s string) ([]int, error) {
	if s == "" {
		return alignbench.Sizes, nil
	}
	var sizes []int
	for _, part := range strings.Split(s, ",") {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}
		n, err := strconv.Atoi(part)
		if err != nil {
			return nil, fmt.Errorf("bad size %q: %w", part, err)
		}
		if n <= 0 {
			return nil, fmt.Errorf("bad size %d: must be positive", n)
		}
		sizes = append(sizes, n)
	}
	if len(sizes) == 0 {
		return nil, fmt.Errorf("no sizes in %q", s)
	}
	return sizes, nil
}

func measure(size int, opts []alignbench.Option) ([]result, error) {
	h, err := alignbench.New(size, opts...)
	if err != nil {
		return nil, err
	}
	defer func() {
		_ = h.Close()
	}()

	ops := []struct {
		name string
		read func() []float32
	}{
		{"aligned", h.ReadAligned},
		{"unaligned", h.ReadUnaligned},
	}

	var results []result
	for _, op := range ops {
		read := op.read
		r := testing.Benchmark(func(b *testing.B) {
			b.SetBytes(int64(4 * size))
			b.ReportAllocs()
			for i := 0; i < b.N; i++ {
				sink = read()
			}
		})
		if r.N == 0 {
			return nil, fmt.Errorf("size %d: %s benchmark did not run", size, op.name)
		}
		results = append(results, result{size: size, op: op.name, r: r})
	}
	return results, nil
}

func report(w io.Writer, results []result) error {
	tw := tabwriter.NewWriter(w, 0, 8, 2, ' ', tabwriter.AlignRight)
	fmt.Fprintln(tw, "size\top\titerations\tns/op\tMB/s\tallocs/op\t")
	for _, res := range results {
		nsPerOp := float64(res.r.T.Nanoseconds()) / float64(res.r.N)
		mbPerSec := 0.0
		if s := res.r.T.Seconds(); s > 0 {
			mbPerSec = float64(res.r.Bytes) * float64(res.r.N) / 1e6 / s
		}
		fmt.Fprintf(tw, "%d\t%s\t%d\t%.2f\t%.2f\t%d\t\n",
			res.size, res.op, res.r.N, nsPerOp, mbPerSec, res.r.AllocsPerOp())
	}
	return tw.Flush()
}

func main() {
	sizesFlag := flag.String("sizes", "", "comma-separated element counts (default: the standard sweep)")
	dir := flag.String("dir", ".", "directory to write the fixture in")
	seed := flag.Int64("seed", 0, "random seed for the fixture (0 picks one at random)")
	verify := flag.Bool("verify", true, "check both readers once before timing")
	verbose := flag.Bool("v", false, "log setup and teardown")

	testing.Init()
	flag.Parse()

	level := slog.LevelInfo
	if *verbose {
		level = slog.LevelDebug
	}
	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level}))

	sizes, err := parseSizes(*sizesFlag)
	if err != nil {
		logger.Error("parsing -sizes", "err", err)
		os.Exit(2)
	}

	var results []result
	for _, size := range sizes {
		opts := []alignbench.Option{
			alignbench.WithFixturePath(filepath.Join(*dir, alignbench.DefaultFixturePath)),
			alignbench.WithLogger(logger),
			alignbench.WithVerify(*verify),
		}
		if *seed != 0 {
			opts = append(opts, alignbench.WithRand(rand.New(rand.NewSource(*seed))))
		}

		rs, err := measure(size, opts)
		if err != nil {
			// a broken fixture invalidates every later measurement for this size
			logger.Error("setup failed", "size", size, "err", err)
			os.Exit(1)
		}
		results = append(results, rs...)
	}

	if err := report(os.Stdout, results); err != nil {
		logger.Error("writing report", "err", err)
		os.Exit(1)
	}
}
