// Copyright 2023 The bit Authors. All rights reserved.
// Use of this source code is governed by the MIT License
// that can be found in the LICENSE file.

//go:build linux || darwin || freebsd || netbsd || openbsd

package mapping

import (
	"fmt"

	"golang.org/x/sys/unix"
)

func advise(data []byte) error {
	if err := unix.Madvise(data, unix.MADV_SEQUENTIAL); err != nil {
		return fmt.Errorf("madvise(MADV_SEQUENTIAL): %w", err)
	}
	if err := unix.Madvise(data, unix.MADV_WILLNEED); err != nil {
		return fmt.Errorf("madvise(MADV_WILLNEED): %w", err)
	}
	return nil
}
