package cacheinfo

// Copyright (C) 2021-2025 Intel Corporation
// SPDX-License-Identifier: BSD-3-Clause

import (
	"cachespect/internal/cache"
	"cachespect/internal/ctr"
)

// ARMProvider answers queries from the cache type register. The register holds one minimum
// line size for instruction caches and one for data and unified caches, covering every level.
type ARMProvider struct {
	// ReadCTR returns the raw register value; it is called once per query.
	ReadCTR func() uint64
}

func (ARMProvider) Name() string { return "arm" }

func (p ARMProvider) LineSize(level cache.Level, typ cache.Type) (int, error) {
	if p.ReadCTR == nil {
		return 0, cache.ErrUnsupported
	}
	reg, err := ctr.Decode(p.ReadCTR())
	if err != nil {
		return 0, err
	}
	switch typ {
	case cache.Instruction:
		if level != cache.L1 {
			return 0, cache.ErrNotPresent
		}
		return reg.InstructionLineSize, nil
	case cache.Data, cache.Unified:
		return reg.DataLineSize, nil
	}
	return 0, cache.ErrNotPresent
}

// Size is not available: the cache type register carries no capacity information and
// the CCSIDR registers are not readable from user space.
func (ARMProvider) Size(cache.Level, cache.Type) (int, error) {
	return 0, cache.ErrUnsupported
}
