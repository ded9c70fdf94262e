package cpuid

// Copyright (C) 2021-2025 Intel Corporation
// SPDX-License-Identifier: BSD-3-Clause

import (
	"testing"

	"cachespect/internal/cpuid/cpuidtest"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestVendor(t *testing.T) {
	tests := []struct {
		name   string
		reader cpuidtest.Reader
		want   string
		wantOK bool
	}{
		{"intel", cpuidtest.New(VendorIntel, 0x1F, 0x80000008), VendorIntel, true},
		{"amd", cpuidtest.New(VendorAMD, 0x10, 0x80000021), VendorAMD, true},
		{"hypervisor", cpuidtest.New("KVMKVMKVM", 0x1, 0), "KVMKVMKVM", true},
		{"no vendor", cpuidtest.Reader{}, "", false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			vendor, ok := New(tt.reader).Vendor()
			assert.Equal(t, tt.wantOK, ok)
			assert.Equal(t, tt.want, vendor)
		})
	}
}

func TestLeafSupported(t *testing.T) {
	c := New(cpuidtest.New(VendorIntel, 0x4, 0x80000006))
	assert.True(t, c.LeafSupported(LeafFeatureInfo))
	assert.True(t, c.LeafSupported(LeafCacheParameters))
	assert.False(t, c.LeafSupported(0x7))
	assert.True(t, c.LeafSupported(LeafL2L3CacheTLB))
	assert.False(t, c.LeafSupported(LeafCacheParametersAMD))

	noExt := New(cpuidtest.New(VendorIntel, 0x4, 0))
	assert.False(t, noExt.LeafSupported(LeafL1CacheTLB))

	none := New(cpuidtest.Reader{})
	assert.False(t, none.LeafSupported(LeafFeatureInfo))
}

func TestDecodeFeatureInfo(t *testing.T) {
	tests := []struct {
		name       string
		eax        uint32
		wantFamily int
		wantModel  int
		wantStep   uint8
	}{
		// Zen 2 Rome: family 0x17, model 0x31, stepping 0
		{"rome", 0x00830F10, 0x17, 0x31, 0},
		// Zen 4 Genoa: family 0x19, model 0x11, stepping 1
		{"genoa", 0x00A10F11, 0x19, 0x11, 1},
		// Ice Lake server: family 6, model 0x6A, stepping 6
		{"icx", 0x000606A6, 0x6, 0x6A, 6},
		// Pentium 4: family 0xF without extension, model 2
		{"netburst", 0x00000F27, 0xF, 0x2, 7},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			info := DecodeFeatureInfo(tt.eax)
			assert.Equal(t, tt.wantFamily, info.Family())
			assert.Equal(t, tt.wantModel, info.Model())
			assert.Equal(t, tt.wantStep, info.Stepping)
		})
	}
}

func TestFeatureInfoMissingLeaf(t *testing.T) {
	_, ok := New(cpuidtest.New(VendorAMD, 0x0, 0)).FeatureInfo()
	assert.False(t, ok)

	r := cpuidtest.New(VendorAMD, 0x1, 0).SetFamily(0xF, 0x8, 0x31)
	info, ok := New(r).FeatureInfo()
	require.True(t, ok)
	assert.Equal(t, uint8(0xF), info.BaseFamily)
	assert.Equal(t, uint8(0x8), info.ExtendedFamily)
	assert.Equal(t, 0x31, info.Model())
}

func TestDecodeCacheParameter(t *testing.T) {
	// L1d, 48K: 12 ways, 1 partition, 64 byte lines, 64 sets
	p, ok := DecodeCacheParameter(0x1C004121, 0x02C0003F, 0x0000003F)
	require.True(t, ok)
	assert.Equal(t, uint8(1), p.Type)
	assert.Equal(t, uint8(1), p.Level)
	assert.Equal(t, 64, p.CoherencyLineSize)
	assert.Equal(t, 1, p.Partitions)
	assert.Equal(t, 12, p.Ways)
	assert.Equal(t, 64, p.Sets)
	assert.Equal(t, 48*1024, p.Size())

	_, ok = DecodeCacheParameter(0, 0x02C0003F, 0x3F)
	assert.False(t, ok)
}

func TestCacheParametersEnumeration(t *testing.T) {
	params := []cpuidtest.CacheParameter{
		{Type: 1, Level: 1, LineSize: 64, Partitions: 1, Ways: 12, Sets: 64},
		{Type: 2, Level: 1, LineSize: 64, Partitions: 1, Ways: 8, Sets: 64},
		{Type: 3, Level: 2, LineSize: 64, Partitions: 1, Ways: 16, Sets: 2048},
		{Type: 3, Level: 3, LineSize: 64, Partitions: 1, Ways: 15, Sets: 57344},
	}
	r := cpuidtest.New(VendorIntel, 0x1F, 0x80000008).SetCacheParameters(LeafCacheParameters, params...)
	got, ok := New(r).CacheParameters()
	require.True(t, ok)
	require.Len(t, got, 4)
	assert.Equal(t, uint8(3), got[3].Level)
	assert.Equal(t, 2*1024*1024, got[2].Size())
}

func TestCacheParametersAMDUsesExtendedLeaf(t *testing.T) {
	r := cpuidtest.New(VendorAMD, 0x10, 0x80000021).
		SetCacheParameters(LeafCacheParameters, cpuidtest.CacheParameter{Type: 1, Level: 1, LineSize: 32, Partitions: 1, Ways: 1, Sets: 1}).
		SetCacheParameters(LeafCacheParametersAMD, cpuidtest.CacheParameter{Type: 1, Level: 1, LineSize: 64, Partitions: 1, Ways: 8, Sets: 64})
	got, ok := New(r).CacheParameters()
	require.True(t, ok)
	require.Len(t, got, 1)
	assert.Equal(t, 64, got[0].CoherencyLineSize)
}

func TestCacheParametersUnavailable(t *testing.T) {
	_, ok := New(cpuidtest.New(VendorIntel, 0x2, 0x80000008)).CacheParameters()
	assert.False(t, ok)
}

func TestCacheParametersBounded(t *testing.T) {
	r := cpuidtest.New(VendorIntel, 0x4, 0)
	for sub := uint32(0); sub < 100; sub++ {
		r[cpuidtest.Key{Leaf: LeafCacheParameters, Subleaf: sub}] = [4]uint32{0x21, 0x3F, 0x3F, 0}
	}
	got, ok := New(r).CacheParameters()
	require.True(t, ok)
	assert.Len(t, got, maxCacheParameterLeaves)
}

func TestDecodeL1CacheInfo(t *testing.T) {
	// Zen 4: 32K 8-way 64 byte L1d, 32K 8-way 64 byte L1i
	info := DecodeL1CacheInfo(0x20080140, 0x20080140)
	assert.Equal(t, 32, info.Data.SizeKB)
	assert.Equal(t, uint8(8), info.Data.Associativity)
	assert.Equal(t, 64, info.Data.LineSize)
	assert.Equal(t, 64, info.Instruction.LineSize)

	split := DecodeL1CacheInfo(0x40020140, 0x20040120)
	assert.Equal(t, 64, split.Data.SizeKB)
	assert.Equal(t, 64, split.Data.LineSize)
	assert.Equal(t, 32, split.Instruction.SizeKB)
	assert.Equal(t, 32, split.Instruction.LineSize)
}

func TestDecodeL2L3CacheInfo(t *testing.T) {
	// 1M L2, 64 byte lines; 32M L3 (64 x 512K), 64 byte lines
	info := DecodeL2L3CacheInfo(0x04006140, 0x01009140)
	assert.Equal(t, 1024, info.L2.SizeKB)
	assert.Equal(t, uint8(6), info.L2.Associativity)
	assert.Equal(t, 64, info.L2.LineSize)
	assert.Equal(t, 32*1024, info.L3.SizeKB)
	assert.Equal(t, uint8(9), info.L3.Associativity)
	assert.Equal(t, 64, info.L3.LineSize)
}

func TestLegacyLeavesMissing(t *testing.T) {
	c := New(cpuidtest.New(VendorAMD, 0x10, 0x80000001))
	_, ok := c.L1CacheInfo()
	assert.False(t, ok)
	_, ok = c.L2L3CacheInfo()
	assert.False(t, ok)
}
