// Package cache defines the vocabulary shared by every cache query backend: cache levels,
// cache types, and the three error kinds a query can end in.
package cache

// Copyright (C) 2021-2025 Intel Corporation
// SPDX-License-Identifier: BSD-3-Clause

import (
	"fmt"
	"strconv"
	"strings"
)

// Level identifies a position in the cache hierarchy. The named levels carry their
// hardware numbering; any other value is an "other" level carrying that exact number.
type Level uint8

const (
	L1 Level = 1
	L2 Level = 2
	L3 Level = 3
)

// LevelFromUint8 maps a numeric level, as reported by CPUID, to a Level.
func LevelFromUint8(n uint8) Level {
	return Level(n)
}

// Uint8 returns the numeric identifier of the level.
func (l Level) Uint8() uint8 {
	return uint8(l)
}

// IsOther reports whether the level is not one of L1, L2 or L3.
func (l Level) IsOther() bool {
	return l != L1 && l != L2 && l != L3
}

func (l Level) String() string {
	switch l {
	case L1:
		return "L1"
	case L2:
		return "L2"
	case L3:
		return "L3"
	}
	return fmt.Sprintf("Other(%d)", uint8(l))
}

// ParseLevel accepts "L1".."L3" (any case) or a decimal number 0-255.
func ParseLevel(s string) (Level, error) {
	v := strings.TrimSpace(strings.ToUpper(s))
	v = strings.TrimPrefix(v, "L")
	n, err := strconv.ParseUint(v, 10, 8)
	if err != nil {
		return 0, fmt.Errorf("invalid cache level %q, expected L1, L2, L3 or a number between 0 and 255", s)
	}
	return LevelFromUint8(uint8(n)), nil
}

// Type is the kind of contents a cache holds. The values match the cache type
// encoding used by the CPUID deterministic cache parameter leaves.
type Type uint8

const (
	Data        Type = 1
	Instruction Type = 2
	Unified     Type = 3
)

// Types lists every valid cache type in numeric order.
var Types = []Type{Data, Instruction, Unified}

func (t Type) String() string {
	switch t {
	case Data:
		return "Data"
	case Instruction:
		return "Instruction"
	case Unified:
		return "Unified"
	}
	return fmt.Sprintf("Type(%d)", uint8(t))
}

// Valid reports whether t is one of Data, Instruction or Unified.
func (t Type) Valid() bool {
	return t == Data || t == Instruction || t == Unified
}

// ParseType accepts data, instruction or unified, or their first letter, in any case.
func ParseType(s string) (Type, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "data", "d":
		return Data, nil
	case "instruction", "i":
		return Instruction, nil
	case "unified", "u":
		return Unified, nil
	}
	return 0, fmt.Errorf("invalid cache type %q, expected data, instruction or unified", s)
}

// Query is a single (level, type) pair.
type Query struct {
	Level Level
	Type  Type
}

func (q Query) String() string {
	return fmt.Sprintf("%s %s", q.Level, q.Type)
}

// DefaultQueries are the caches present on nearly every modern CPU.
var DefaultQueries = []Query{
	{Level: L1, Type: Data},
	{Level: L1, Type: Instruction},
	{Level: L2, Type: Unified},
	{Level: L3, Type: Unified},
}

// InfoError is the outcome of a query that could not produce a value. The three
// kinds are distinct and never stand in for one another.
type InfoError uint8

const (
	// ErrUnsupported means the platform offers no mechanism to answer the query.
	ErrUnsupported InfoError = iota + 1
	// ErrNotPresent means the mechanism exists but the level/type combination does not.
	ErrNotPresent
	// ErrInvalidValue means the hardware reported a value that fails sanity checks.
	ErrInvalidValue
)

func (e InfoError) Error() string {
	switch e {
	case ErrUnsupported:
		return "retrieving cache metadata is not supported on this system"
	case ErrNotPresent:
		return "the requested cache level/type combination is not present"
	case ErrInvalidValue:
		return "the CPU reported invalid cache metadata"
	}
	return fmt.Sprintf("unknown cache info error %d", uint8(e))
}

// Kind returns a short, stable name for the error, suitable for labels and tables.
func (e InfoError) Kind() string {
	switch e {
	case ErrUnsupported:
		return "unsupported"
	case ErrNotPresent:
		return "not present"
	case ErrInvalidValue:
		return "invalid value"
	}
	return "unknown"
}
