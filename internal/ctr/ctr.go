// Package ctr decodes the ARM cache type register (CTR_EL0 on AArch64, CTR on AArch32).
//
// The register reports the minimum line size of the instruction caches in IminLine
// (bits 3:0) and of the data and unified caches in DminLine (bits 19:16), each as the
// log2 of the number of 4 byte words.
package ctr

// Copyright (C) 2021-2025 Intel Corporation
// SPDX-License-Identifier: BSD-3-Clause

import (
	"math/bits"

	"cachespect/internal/cache"
)

const (
	wordSize       = 4
	lineSizeMask   = 0xF
	dminLineShift  = 16
	maxFieldForInt = bits.UintSize - 4 // 4<<f must stay below the sign bit of int
)

// DecodeLineSize converts a line size field to bytes. Field values whose byte count does
// not fit a positive int on this platform are reported as cache.ErrInvalidValue.
func DecodeLineSize(field uint64) (int, error) {
	if field > maxFieldForInt {
		return 0, cache.ErrInvalidValue
	}
	return wordSize << field, nil
}

// IminLine extracts the instruction cache line size field.
func IminLine(ctr uint64) uint64 {
	return ctr & lineSizeMask
}

// DminLine extracts the data and unified cache line size field.
func DminLine(ctr uint64) uint64 {
	return (ctr >> dminLineShift) & lineSizeMask
}

// Register is a decoded cache type register value.
type Register struct {
	InstructionLineSize int
	DataLineSize        int
}

// Decode decodes both line size fields of a raw register value.
func Decode(ctr uint64) (Register, error) {
	iline, err := DecodeLineSize(IminLine(ctr))
	if err != nil {
		return Register{}, err
	}
	dline, err := DecodeLineSize(DminLine(ctr))
	if err != nil {
		return Register{}, err
	}
	return Register{InstructionLineSize: iline, DataLineSize: dline}, nil
}
