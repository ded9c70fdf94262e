//go:build 386 || amd64

package cpuid

// Copyright (C) 2021-2025 Intel Corporation
// SPDX-License-Identifier: BSD-3-Clause

// cpuid is implemented in cpuid_x86.s.
func cpuid(eaxArg, ecxArg uint32) (eax, ebx, ecx, edx uint32)

// NativeReader executes the CPUID instruction on the current processor.
type NativeReader struct{}

func (NativeReader) CPUID(leaf, subleaf uint32) (eax, ebx, ecx, edx uint32) {
	return cpuid(leaf, subleaf)
}

// NewNative returns a CPU backed by the hardware CPUID instruction.
func NewNative() *CPU {
	return New(NativeReader{})
}
