// Package cpuidtest provides a table-driven cpuid.Reader for tests.
package cpuidtest

// Copyright (C) 2021-2025 Intel Corporation
// SPDX-License-Identifier: BSD-3-Clause

import "encoding/binary"

// Key selects a leaf and sub-leaf.
type Key struct {
	Leaf    uint32
	Subleaf uint32
}

// Reader returns canned register values. Leaves that are not in the table read as zero.
type Reader map[Key][4]uint32

func (r Reader) CPUID(leaf, subleaf uint32) (eax, ebx, ecx, edx uint32) {
	regs := r[Key{Leaf: leaf, Subleaf: subleaf}]
	return regs[0], regs[1], regs[2], regs[3]
}

// New returns a Reader that reports vendor with the given standard and extended leaf limits.
func New(vendor string, maxLeaf, maxExtended uint32) Reader {
	var id [12]byte
	copy(id[:], vendor)
	r := Reader{}
	r[Key{Leaf: 0}] = [4]uint32{
		maxLeaf,
		binary.LittleEndian.Uint32(id[0:4]),
		binary.LittleEndian.Uint32(id[8:12]),
		binary.LittleEndian.Uint32(id[4:8]),
	}
	if maxExtended != 0 {
		r[Key{Leaf: 0x80000000}] = [4]uint32{maxExtended, 0, 0, 0}
	}
	return r
}

// SetFamily stores leaf 1 EAX for the given base family, extended family and model.
func (r Reader) SetFamily(baseFamily, extendedFamily, model uint8) Reader {
	eax := uint32(model&0xF)<<4 |
		uint32(baseFamily&0xF)<<8 |
		uint32(model>>4)<<16 |
		uint32(extendedFamily)<<20
	r[Key{Leaf: 1}] = [4]uint32{eax, 0, 0, 0}
	return r
}

// CacheParameter encodes one deterministic cache parameter record.
type CacheParameter struct {
	Type       uint8
	Level      uint8
	LineSize   int
	Partitions int
	Ways       int
	Sets       int
}

// SetCacheParameters stores params as consecutive sub-leaves of leaf, followed by the null record.
func (r Reader) SetCacheParameters(leaf uint32, params ...CacheParameter) Reader {
	for i, p := range params {
		eax := uint32(p.Type&0x1F) | uint32(p.Level&0x7)<<5
		ebx := uint32(p.LineSize-1)&0xFFF |
			(uint32(p.Partitions-1)&0x3FF)<<12 |
			(uint32(p.Ways-1)&0x3FF)<<22
		ecx := uint32(p.Sets - 1)
		r[Key{Leaf: leaf, Subleaf: uint32(i)}] = [4]uint32{eax, ebx, ecx, 0}
	}
	return r
}

// Set stores raw registers for a leaf at sub-leaf 0.
func (r Reader) Set(leaf uint32, eax, ebx, ecx, edx uint32) Reader {
	r[Key{Leaf: leaf}] = [4]uint32{eax, ebx, ecx, edx}
	return r
}
