// Package cpuid decodes the x86 CPUID leaves that describe the processor vendor, family,
// and cache hierarchy. Decoding works on any Reader so that fixed register values can
// stand in for the hardware.
package cpuid

// Copyright (C) 2021-2025 Intel Corporation
// SPDX-License-Identifier: BSD-3-Clause

import (
	"strings"
)

// Reader executes the CPUID instruction for a leaf and sub-leaf.
type Reader interface {
	CPUID(leaf, subleaf uint32) (eax, ebx, ecx, edx uint32)
}

const (
	LeafVendor             uint32 = 0x0
	LeafFeatureInfo        uint32 = 0x1
	LeafCacheParameters    uint32 = 0x4
	LeafExtendedMax        uint32 = 0x80000000
	LeafL1CacheTLB         uint32 = 0x80000005
	LeafL2L3CacheTLB       uint32 = 0x80000006
	LeafCacheParametersAMD uint32 = 0x8000001D
)

// upper bound on sub-leaves walked, in case a hypervisor never reports the null record
const maxCacheParameterLeaves = 32

const (
	VendorIntel = "GenuineIntel"
	VendorAMD   = "AuthenticAMD"
)

// CPU wraps a Reader with the leaf limits discovered from leaves 0 and 0x80000000.
type CPU struct {
	r           Reader
	vendor      string
	maxLeaf     uint32
	maxExtended uint32
}

// New reads the vendor and maximum leaf information through r.
func New(r Reader) *CPU {
	eax, ebx, ecx, edx := r.CPUID(LeafVendor, 0)
	c := &CPU{r: r, maxLeaf: eax, vendor: vendorString(ebx, edx, ecx)}
	if c.vendor != "" {
		c.maxExtended, _, _, _ = r.CPUID(LeafExtendedMax, 0)
	}
	return c
}

// vendorString assembles the 12 byte vendor identification, EBX EDX ECX order.
func vendorString(ebx, edx, ecx uint32) string {
	b := make([]byte, 0, 12)
	for _, reg := range []uint32{ebx, edx, ecx} {
		b = append(b, byte(reg), byte(reg>>8), byte(reg>>16), byte(reg>>24))
	}
	return strings.TrimSpace(strings.TrimRight(string(b), "\x00"))
}

// Vendor returns the vendor identification string and whether one was reported.
func (c *CPU) Vendor() (string, bool) {
	return c.vendor, c.vendor != ""
}

// LeafSupported reports whether leaf is within the standard or extended range the CPU reports.
func (c *CPU) LeafSupported(leaf uint32) bool {
	if leaf >= LeafExtendedMax {
		return c.maxExtended >= LeafExtendedMax && leaf <= c.maxExtended
	}
	return c.vendor != "" && leaf <= c.maxLeaf
}

// FeatureInfo is the version information from leaf 1 EAX.
type FeatureInfo struct {
	Stepping       uint8
	BaseModel      uint8
	BaseFamily     uint8
	ExtendedModel  uint8
	ExtendedFamily uint8
}

// Family returns the display family: base family, plus extended family when base is 0xF.
func (f FeatureInfo) Family() int {
	if f.BaseFamily == 0xF {
		return int(f.BaseFamily) + int(f.ExtendedFamily)
	}
	return int(f.BaseFamily)
}

// Model returns the display model, which includes the extended model for families 0x6 and 0xF.
func (f FeatureInfo) Model() int {
	if f.BaseFamily == 0x6 || f.BaseFamily == 0xF {
		return int(f.ExtendedModel)<<4 | int(f.BaseModel)
	}
	return int(f.BaseModel)
}

// DecodeFeatureInfo decodes leaf 1 EAX.
func DecodeFeatureInfo(eax uint32) FeatureInfo {
	return FeatureInfo{
		Stepping:       uint8(eax & 0xF),
		BaseModel:      uint8((eax >> 4) & 0xF),
		BaseFamily:     uint8((eax >> 8) & 0xF),
		ExtendedModel:  uint8((eax >> 16) & 0xF),
		ExtendedFamily: uint8((eax >> 20) & 0xFF),
	}
}

// FeatureInfo returns leaf 1 version information, or false when leaf 1 is not available.
func (c *CPU) FeatureInfo() (FeatureInfo, bool) {
	if !c.LeafSupported(LeafFeatureInfo) {
		return FeatureInfo{}, false
	}
	eax, _, _, _ := c.r.CPUID(LeafFeatureInfo, 0)
	return DecodeFeatureInfo(eax), true
}

// CacheParameter is one record of the deterministic cache parameters leaf.
type CacheParameter struct {
	Type              uint8 // 1 data, 2 instruction, 3 unified
	Level             uint8
	CoherencyLineSize int
	Partitions        int
	Ways              int
	Sets              int
}

// Size is the total capacity of the cache in bytes.
func (p CacheParameter) Size() int {
	return p.Ways * p.Partitions * p.CoherencyLineSize * p.Sets
}

// DecodeCacheParameter decodes one sub-leaf of leaf 4 or leaf 0x8000001D. The
// second return value is false for the null record that ends the enumeration.
func DecodeCacheParameter(eax, ebx, ecx uint32) (CacheParameter, bool) {
	cacheType := uint8(eax & 0x1F)
	if cacheType == 0 {
		return CacheParameter{}, false
	}
	return CacheParameter{
		Type:              cacheType,
		Level:             uint8((eax >> 5) & 0x7),
		CoherencyLineSize: int(ebx&0xFFF) + 1,
		Partitions:        int((ebx>>12)&0x3FF) + 1,
		Ways:              int((ebx>>22)&0x3FF) + 1,
		Sets:              int(ecx) + 1,
	}, true
}

// CacheParameters enumerates the deterministic cache parameter records. AMD parts use the
// extended leaf 0x8000001D; everything else uses leaf 4. The second return value is false
// when the CPU offers neither.
func (c *CPU) CacheParameters() ([]CacheParameter, bool) {
	leaf := LeafCacheParameters
	if c.vendor == VendorAMD && c.LeafSupported(LeafCacheParametersAMD) {
		leaf = LeafCacheParametersAMD
	}
	if !c.LeafSupported(leaf) {
		return nil, false
	}
	var params []CacheParameter
	for sub := uint32(0); sub < maxCacheParameterLeaves; sub++ {
		eax, ebx, ecx, _ := c.r.CPUID(leaf, sub)
		p, ok := DecodeCacheParameter(eax, ebx, ecx)
		if !ok {
			break
		}
		params = append(params, p)
	}
	return params, true
}

// LegacyCache describes one cache from the AMD legacy descriptor leaves.
type LegacyCache struct {
	SizeKB        int
	Associativity uint8
	LinesPerTag   uint8
	LineSize      int
}

// L1CacheInfo holds the L1 data and instruction descriptors from leaf 0x80000005.
type L1CacheInfo struct {
	Data        LegacyCache
	Instruction LegacyCache
}

// DecodeL1CacheInfo decodes ECX (data cache) and EDX (instruction cache) of leaf 0x80000005.
func DecodeL1CacheInfo(ecx, edx uint32) L1CacheInfo {
	decode := func(reg uint32) LegacyCache {
		return LegacyCache{
			SizeKB:        int(reg >> 24),
			Associativity: uint8(reg >> 16),
			LinesPerTag:   uint8(reg >> 8),
			LineSize:      int(reg & 0xFF),
		}
	}
	return L1CacheInfo{Data: decode(ecx), Instruction: decode(edx)}
}

// L1CacheInfo returns leaf 0x80000005, or false when the leaf is not available.
func (c *CPU) L1CacheInfo() (L1CacheInfo, bool) {
	if !c.LeafSupported(LeafL1CacheTLB) {
		return L1CacheInfo{}, false
	}
	_, _, ecx, edx := c.r.CPUID(LeafL1CacheTLB, 0)
	return DecodeL1CacheInfo(ecx, edx), true
}

// L2L3CacheInfo holds the unified L2 and L3 descriptors from leaf 0x80000006.
type L2L3CacheInfo struct {
	L2 LegacyCache
	L3 LegacyCache
}

// DecodeL2L3CacheInfo decodes ECX (L2) and EDX (L3) of leaf 0x80000006. The L3 size
// field counts 512 KiB units.
func DecodeL2L3CacheInfo(ecx, edx uint32) L2L3CacheInfo {
	return L2L3CacheInfo{
		L2: LegacyCache{
			SizeKB:        int(ecx >> 16),
			Associativity: uint8((ecx >> 12) & 0xF),
			LinesPerTag:   uint8((ecx >> 8) & 0xF),
			LineSize:      int(ecx & 0xFF),
		},
		L3: LegacyCache{
			SizeKB:        int(edx>>18) * 512,
			Associativity: uint8((edx >> 12) & 0xF),
			LinesPerTag:   uint8((edx >> 8) & 0xF),
			LineSize:      int(edx & 0xFF),
		},
	}
}

// L2L3CacheInfo returns leaf 0x80000006, or false when the leaf is not available.
func (c *CPU) L2L3CacheInfo() (L2L3CacheInfo, bool) {
	if !c.LeafSupported(LeafL2L3CacheTLB) {
		return L2L3CacheInfo{}, false
	}
	_, _, ecx, edx := c.r.CPUID(LeafL2L3CacheTLB, 0)
	return DecodeL2L3CacheInfo(ecx, edx), true
}
