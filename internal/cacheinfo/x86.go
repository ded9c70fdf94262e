package cacheinfo

// Copyright (C) 2021-2025 Intel Corporation
// SPDX-License-Identifier: BSD-3-Clause

import (
	"log/slog"

	"cachespect/internal/cache"
	"cachespect/internal/cpuid"
	"cachespect/internal/cpus"
)

// X86Provider answers queries from the CPUID instruction. AMD Zen parts (families 0x17 to
// 0x19) are answered from the legacy L1 and L2/L3 descriptor leaves because their
// deterministic cache parameters are unreliable; every other part is answered from the
// deterministic cache parameter records.
type X86Provider struct {
	// NewReader is called once per query; the reader is not retained.
	NewReader func() cpuid.Reader
}

func (X86Provider) Name() string { return "x86" }

// LineSize returns the coherency line size. When several records match on a non-Zen part,
// the smallest line size is returned.
func (p X86Provider) LineSize(level cache.Level, typ cache.Type) (int, error) {
	c, zen, err := p.identify()
	if err != nil {
		return 0, err
	}
	if zen {
		return amdLineSize(c, level, typ)
	}
	return smallestMatching(c, level, typ, func(param cpuid.CacheParameter) int {
		return param.CoherencyLineSize
	})
}

// Size returns the capacity of one cache instance. When several records match on a non-Zen
// part, the smallest size is returned.
func (p X86Provider) Size(level cache.Level, typ cache.Type) (int, error) {
	c, zen, err := p.identify()
	if err != nil {
		return 0, err
	}
	if zen {
		return amdSize(c, level, typ)
	}
	return smallestMatching(c, level, typ, cpuid.CacheParameter.Size)
}

// identify reads the vendor and, for AMD, the family to pick a decoding strategy.
func (p X86Provider) identify() (*cpuid.CPU, bool, error) {
	if p.NewReader == nil {
		return nil, false, cache.ErrUnsupported
	}
	c := cpuid.New(p.NewReader())
	vendor, ok := c.Vendor()
	if !ok {
		return nil, false, cache.ErrUnsupported
	}
	if vendor != cpus.AMDVendor {
		return c, false, nil
	}
	info, ok := c.FeatureInfo()
	if !ok {
		return nil, false, cache.ErrUnsupported
	}
	zen := cpus.IsZen(info.BaseFamily, info.ExtendedFamily)
	slog.Debug("identified AMD processor", slog.Int("family", info.Family()), slog.Int("model", info.Model()), slog.Bool("zen", zen))
	return c, zen, nil
}

func smallestMatching(c *cpuid.CPU, level cache.Level, typ cache.Type, value func(cpuid.CacheParameter) int) (int, error) {
	params, ok := c.CacheParameters()
	if !ok {
		return 0, cache.ErrUnsupported
	}
	smallest := 0
	for _, param := range params {
		if param.Level != level.Uint8() || param.Type != uint8(typ) {
			continue
		}
		if v := value(param); smallest == 0 || v < smallest {
			smallest = v
		}
	}
	return positive(smallest, cache.ErrNotPresent)
}

// legacyCache selects the descriptor answering a query on a Zen part. Zen only describes
// split L1 caches and unified L2 and L3 caches.
func legacyCache(c *cpuid.CPU, level cache.Level, typ cache.Type) (cpuid.LegacyCache, error) {
	switch {
	case level == cache.L1 && (typ == cache.Instruction || typ == cache.Data):
		info, ok := c.L1CacheInfo()
		if !ok {
			return cpuid.LegacyCache{}, cache.ErrUnsupported
		}
		if typ == cache.Instruction {
			return info.Instruction, nil
		}
		return info.Data, nil
	case (level == cache.L2 || level == cache.L3) && typ == cache.Unified:
		info, ok := c.L2L3CacheInfo()
		if !ok {
			return cpuid.LegacyCache{}, cache.ErrUnsupported
		}
		if level == cache.L2 {
			return info.L2, nil
		}
		return info.L3, nil
	}
	return cpuid.LegacyCache{}, cache.ErrNotPresent
}

// amdLineSize reports a zero line size field as not present; the descriptor leaves
// zero out caches the part does not have, e.g. the L3 of some mobile parts.
func amdLineSize(c *cpuid.CPU, level cache.Level, typ cache.Type) (int, error) {
	desc, err := legacyCache(c, level, typ)
	if err != nil {
		return 0, err
	}
	return positive(desc.LineSize, cache.ErrNotPresent)
}

func amdSize(c *cpuid.CPU, level cache.Level, typ cache.Type) (int, error) {
	desc, err := legacyCache(c, level, typ)
	if err != nil {
		return 0, err
	}
	return positive(desc.SizeKB*1024, cache.ErrNotPresent)
}
