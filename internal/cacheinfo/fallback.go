package cacheinfo

// Copyright (C) 2021-2025 Intel Corporation
// SPDX-License-Identifier: BSD-3-Clause

import "cachespect/internal/cache"

// FallbackProvider is used on architectures without a known detection mechanism.
type FallbackProvider struct{}

func (FallbackProvider) Name() string { return "fallback" }

func (FallbackProvider) LineSize(cache.Level, cache.Type) (int, error) {
	return 0, cache.ErrUnsupported
}

func (FallbackProvider) Size(cache.Level, cache.Type) (int, error) {
	return 0, cache.ErrUnsupported
}
