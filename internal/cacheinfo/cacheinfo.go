// Package cacheinfo answers cache line size and cache size queries for the processor the
// program runs on. Exactly one Provider is compiled in for each target architecture; every
// Provider shares the same contract: a positive byte count, or exactly one of
// cache.ErrUnsupported, cache.ErrNotPresent and cache.ErrInvalidValue.
//
// Nothing is cached. Every call reads the hardware again, so calls are safe from any
// number of goroutines.
package cacheinfo

// Copyright (C) 2021-2025 Intel Corporation
// SPDX-License-Identifier: BSD-3-Clause

import (
	"cachespect/internal/cache"
)

// LineSizeProvider reports the coherency line size, in bytes, of a cache.
type LineSizeProvider interface {
	LineSize(level cache.Level, typ cache.Type) (int, error)
}

// SizeProvider reports the total size, in bytes, of one instance of a cache.
type SizeProvider interface {
	Size(level cache.Level, typ cache.Type) (int, error)
}

// Provider is a detection strategy for one family of processors.
type Provider interface {
	// Name identifies the strategy, e.g. "x86", "arm", "apple", "fallback".
	Name() string
	LineSizeProvider
	SizeProvider
}

// LineSize returns the line size in bytes of the level cache of type typ on this machine.
func LineSize(level cache.Level, typ cache.Type) (int, error) {
	return Native().LineSize(level, typ)
}

// Size returns the total size in bytes of the level cache of type typ on this machine.
func Size(level cache.Level, typ cache.Type) (int, error) {
	return Native().Size(level, typ)
}

// L1LineSize returns the line size in bytes of the L1 data cache.
func L1LineSize() (int, error) {
	return LineSize(cache.L1, cache.Data)
}

// L2LineSize returns the line size in bytes of the unified L2 cache.
func L2LineSize() (int, error) {
	return LineSize(cache.L2, cache.Unified)
}

// L3LineSize returns the line size in bytes of the unified L3 cache.
func L3LineSize() (int, error) {
	return LineSize(cache.L3, cache.Unified)
}

// L1Size returns the size in bytes of the L1 data cache.
func L1Size() (int, error) {
	return Size(cache.L1, cache.Data)
}

// L2Size returns the size in bytes of the unified L2 cache.
func L2Size() (int, error) {
	return Size(cache.L2, cache.Unified)
}

// L3Size returns the size in bytes of the unified L3 cache.
func L3Size() (int, error) {
	return Size(cache.L3, cache.Unified)
}

// Optional folds a query result into a present/absent pair for callers that do not
// distinguish between the error kinds.
//
//	if size, ok := cacheinfo.Optional(cacheinfo.L1LineSize()); ok { ... }
func Optional(value int, err error) (int, bool) {
	if err != nil {
		return 0, false
	}
	return value, true
}

// positive guards the contract that success is never a zero or negative byte count.
func positive(value int, zeroErr error) (int, error) {
	if value <= 0 {
		return 0, zeroErr
	}
	return value, nil
}
