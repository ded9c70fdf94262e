//go:build darwin && arm64

package cacheinfo

// Copyright (C) 2021-2025 Intel Corporation
// SPDX-License-Identifier: BSD-3-Clause

import "golang.org/x/sys/unix"

// Native returns the provider for this build target.
func Native() Provider {
	return AppleProvider{Sysctl: func(name string) ([]byte, error) {
		return unix.SysctlRaw(name)
	}}
}
