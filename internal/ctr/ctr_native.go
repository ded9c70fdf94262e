//go:build arm || arm64

package ctr

// Copyright (C) 2021-2025 Intel Corporation
// SPDX-License-Identifier: BSD-3-Clause

// readCTR is implemented in ctr_arm64.s and ctr_arm.s.
func readCTR() uint64

// ReadNative reads the cache type register of the current processor. Linux enables
// EL0 access to CTR_EL0 (or traps and emulates it), so this is safe from user space.
func ReadNative() uint64 {
	return readCTR()
}
