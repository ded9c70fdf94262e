//go:build (arm || arm64) && !darwin

package cacheinfo

// Copyright (C) 2021-2025 Intel Corporation
// SPDX-License-Identifier: BSD-3-Clause

import "cachespect/internal/ctr"

// Native returns the provider for this build target.
func Native() Provider {
	return ARMProvider{ReadCTR: ctr.ReadNative}
}
