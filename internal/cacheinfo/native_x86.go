//go:build 386 || amd64

package cacheinfo

// Copyright (C) 2021-2025 Intel Corporation
// SPDX-License-Identifier: BSD-3-Clause

import "cachespect/internal/cpuid"

// Native returns the provider for this build target.
func Native() Provider {
	return X86Provider{NewReader: func() cpuid.Reader { return cpuid.NativeReader{} }}
}
