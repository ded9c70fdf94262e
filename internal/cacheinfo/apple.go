package cacheinfo

// Copyright (C) 2021-2025 Intel Corporation
// SPDX-License-Identifier: BSD-3-Clause

import (
	"encoding/binary"
	"log/slog"

	"cachespect/internal/cache"
)

const (
	sysctlLineSize   = "hw.cachelinesize"
	sysctlL1DataSize = "hw.l1dcachesize"
	sysctlL1InstSize = "hw.l1icachesize"
	sysctlL2Size     = "hw.l2cachesize"
	sysctlL3Size     = "hw.l3cachesize"
)

// AppleProvider answers queries from macOS sysctl values. macOS exposes a single line
// size with no instruction/data split, so only L1 line size queries are answered.
type AppleProvider struct {
	// Sysctl returns the raw value of a named sysctl.
	Sysctl func(name string) ([]byte, error)
}

func (AppleProvider) Name() string { return "apple" }

func (p AppleProvider) LineSize(level cache.Level, _ cache.Type) (int, error) {
	if level != cache.L1 {
		return 0, cache.ErrUnsupported
	}
	value, err := p.sysctlInt(sysctlLineSize)
	if err != nil {
		return 0, cache.ErrUnsupported
	}
	return positive(value, cache.ErrInvalidValue)
}

// Size reads the per-level size sysctls. A level the kernel does not publish, such as the
// L3 of parts without one, is reported as not present.
func (p AppleProvider) Size(level cache.Level, typ cache.Type) (int, error) {
	var name string
	switch {
	case level == cache.L1 && typ == cache.Instruction:
		name = sysctlL1InstSize
	case level == cache.L1:
		name = sysctlL1DataSize
	case level == cache.L2:
		name = sysctlL2Size
	case level == cache.L3:
		name = sysctlL3Size
	default:
		return 0, cache.ErrUnsupported
	}
	if p.Sysctl == nil {
		return 0, cache.ErrUnsupported
	}
	value, err := p.sysctlInt(name)
	if err != nil {
		if level == cache.L1 {
			return 0, cache.ErrUnsupported
		}
		return 0, cache.ErrNotPresent
	}
	return positive(value, cache.ErrInvalidValue)
}

// sysctlInt decodes a 4 or 8 byte little-endian sysctl integer.
func (p AppleProvider) sysctlInt(name string) (int, error) {
	if p.Sysctl == nil {
		return 0, cache.ErrUnsupported
	}
	raw, err := p.Sysctl(name)
	if err != nil {
		slog.Debug("sysctl failed", slog.String("name", name), slog.String("error", err.Error()))
		return 0, err
	}
	switch len(raw) {
	case 4:
		return int(int32(binary.LittleEndian.Uint32(raw))), nil
	case 8:
		return int(int64(binary.LittleEndian.Uint64(raw))), nil
	}
	slog.Debug("unexpected sysctl length", slog.String("name", name), slog.Int("length", len(raw)))
	return 0, cache.ErrUnsupported
}
