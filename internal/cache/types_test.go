package cache

// Copyright (C) 2021-2025 Intel Corporation
// SPDX-License-Identifier: BSD-3-Clause

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLevelRoundTripNamed(t *testing.T) {
	for _, level := range []Level{L1, L2, L3} {
		assert.Equal(t, level, LevelFromUint8(level.Uint8()))
		assert.False(t, level.IsOther())
	}
	assert.Equal(t, uint8(1), L1.Uint8())
	assert.Equal(t, uint8(2), L2.Uint8())
	assert.Equal(t, uint8(3), L3.Uint8())
}

func TestLevelRoundTripOther(t *testing.T) {
	for n := 0; n <= 255; n++ {
		if n >= 1 && n <= 3 {
			continue
		}
		level := LevelFromUint8(uint8(n))
		assert.True(t, level.IsOther(), "level %d", n)
		assert.Equal(t, uint8(n), level.Uint8())
		assert.Equal(t, level, LevelFromUint8(level.Uint8()))
	}
}

func TestLevelString(t *testing.T) {
	assert.Equal(t, "L1", L1.String())
	assert.Equal(t, "L3", L3.String())
	assert.Equal(t, "Other(4)", LevelFromUint8(4).String())
	assert.Equal(t, "Other(0)", LevelFromUint8(0).String())
}

func TestParseLevel(t *testing.T) {
	tests := []struct {
		input   string
		want    Level
		wantErr bool
	}{
		{"L1", L1, false},
		{"l2", L2, false},
		{"3", L3, false},
		{" L3 ", L3, false},
		{"4", LevelFromUint8(4), false},
		{"L255", LevelFromUint8(255), false},
		{"256", 0, true},
		{"L", 0, true},
		{"", 0, true},
		{"L-1", 0, true},
		{"first", 0, true},
	}
	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			got, err := ParseLevel(tt.input)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestParseType(t *testing.T) {
	tests := []struct {
		input   string
		want    Type
		wantErr bool
	}{
		{"data", Data, false},
		{"D", Data, false},
		{"Instruction", Instruction, false},
		{"i", Instruction, false},
		{"UNIFIED", Unified, false},
		{"u", Unified, false},
		{"tlb", 0, true},
		{"", 0, true},
	}
	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			got, err := ParseType(tt.input)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestTypeTags(t *testing.T) {
	// the numeric tags follow the CPUID cache type field
	assert.Equal(t, uint8(1), uint8(Data))
	assert.Equal(t, uint8(2), uint8(Instruction))
	assert.Equal(t, uint8(3), uint8(Unified))
	assert.False(t, Type(0).Valid())
	assert.False(t, Type(4).Valid())
	for _, typ := range Types {
		assert.True(t, typ.Valid())
	}
}

func TestInfoErrorKindsAreDistinct(t *testing.T) {
	kinds := []InfoError{ErrUnsupported, ErrNotPresent, ErrInvalidValue}
	for i, a := range kinds {
		for j, b := range kinds {
			assert.Equal(t, i == j, errors.Is(a, b), "%s vs %s", a.Kind(), b.Kind())
		}
	}
}

func TestInfoErrorSurvivesWrapping(t *testing.T) {
	wrapped := fmt.Errorf("querying L2 Unified: %w", ErrNotPresent)
	assert.True(t, errors.Is(wrapped, ErrNotPresent))
	assert.False(t, errors.Is(wrapped, ErrUnsupported))
	var infoErr InfoError
	require.True(t, errors.As(wrapped, &infoErr))
	assert.Equal(t, ErrNotPresent, infoErr)
	assert.Equal(t, "not present", infoErr.Kind())
}

func TestQueryString(t *testing.T) {
	assert.Equal(t, "L1 Data", Query{Level: L1, Type: Data}.String())
	assert.Equal(t, "Other(5) Unified", Query{Level: LevelFromUint8(5), Type: Unified}.String())
}
