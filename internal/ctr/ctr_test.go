package ctr

// Copyright (C) 2021-2025 Intel Corporation
// SPDX-License-Identifier: BSD-3-Clause

import (
	"math/bits"
	"testing"

	"cachespect/internal/cache"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDecodeLineSizeScaling(t *testing.T) {
	tests := []struct {
		field uint64
		want  int
	}{
		{0, wordSize},
		{1, wordSize * 2},
		{2, wordSize * 4},
		{4, 64},
		{5, 128},
		{15, 131072},
	}
	for _, tt := range tests {
		got, err := DecodeLineSize(tt.field)
		require.NoError(t, err)
		assert.Equal(t, tt.want, got, "field %d", tt.field)
	}
}

func TestDecodeLineSizeOverflow(t *testing.T) {
	got, err := DecodeLineSize(bits.UintSize - 4)
	require.NoError(t, err)
	assert.Positive(t, got)

	for _, field := range []uint64{bits.UintSize - 3, bits.UintSize - 1, bits.UintSize, 64, 1 << 40} {
		_, err := DecodeLineSize(field)
		assert.ErrorIs(t, err, cache.ErrInvalidValue, "field %d", field)
	}
}

func TestFields(t *testing.T) {
	// Cortex-A72 style value: DminLine 4, IminLine 4
	assert.Equal(t, uint64(4), IminLine(0x8444C004))
	assert.Equal(t, uint64(4), DminLine(0x8444C004))

	ctr := uint64(3)<<16 | 2
	assert.Equal(t, uint64(2), IminLine(ctr))
	assert.Equal(t, uint64(3), DminLine(ctr))
}

func TestDecode(t *testing.T) {
	reg, err := Decode(uint64(4)<<16 | 3)
	require.NoError(t, err)
	assert.Equal(t, 32, reg.InstructionLineSize)
	assert.Equal(t, 64, reg.DataLineSize)

	// bits outside the two fields do not leak into the decoded sizes
	reg, err = Decode(0xFFFF_FFFF_FFF0_FFF0 | uint64(4)<<16 | 4)
	require.NoError(t, err)
	assert.Equal(t, 64, reg.InstructionLineSize)
	assert.Equal(t, 64, reg.DataLineSize)
}
