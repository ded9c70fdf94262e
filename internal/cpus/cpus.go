// Copyright (C) 2021-2025 Intel Corporation
// SPDX-License-Identifier: BSD-3-Clause

// Package cpus identifies CPU vendors and microarchitectures from family, model, and
// stepping (x86) or implementer and part (ARM), and recognizes the AMD Zen families whose
// deterministic cache parameter leaves are not trusted.
package cpus

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
)

const IntelVendor = "GenuineIntel"
const AMDVendor = "AuthenticAMD"

const X86Architecture = "x86_64"
const ARMArchitecture = "aarch64"

// Microarchitecture constants
const (
	// Intel Core CPUs
	UarchSKL = "SKL"
	UarchTGL = "TGL"
	UarchADL = "ADL"
	UarchMTL = "MTL"
	UarchARL = "ARL"
	// Intel Xeon CPUs
	UarchSKX = "SKX"
	UarchCLX = "CLX"
	UarchICX = "ICX"
	UarchSPR = "SPR"
	UarchEMR = "EMR"
	UarchSRF = "SRF"
	UarchGNR = "GNR"
	UarchCWF = "CWF"
	// AMD CPUs
	UarchNaples     = "Naples"
	UarchRome       = "Rome"
	UarchMilan      = "Milan"
	UarchGenoa      = "Genoa"
	UarchBergamo    = "Bergamo"
	UarchTurinZen5  = "Turin (Zen 5)"
	UarchTurinZen5c = "Turin (Zen 5c)"
	// ARM CPUs
	UarchNeoverseN1 = "Neoverse-N1"
	UarchNeoverseV1 = "Neoverse-V1"
	UarchNeoverseV2 = "Neoverse-V2"
	UarchAmpereOne  = "AmpereOne"
	UarchAppleM1    = "Apple M1"
)

// CPUCharacteristics describes what is known about a microarchitecture.
type CPUCharacteristics struct {
	MicroArchitecture string
	Vendor            string
	ZenGeneration     int // 0 when not an AMD Zen part
}

// CPUIdentifierX86 matches decimal family/model/stepping as shown by lscpu and /proc/cpuinfo.
type CPUIdentifierX86 struct {
	Family   string // exact match
	Model    string // regex match
	Stepping string // empty field means 'any' stepping, otherwise regex match
}

// CPUIdentifierARM matches the MIDR fields as shown in /proc/cpuinfo.
type CPUIdentifierARM struct {
	Implementer string
	Part        string
}

// CPUIdentifier is a unified type that can hold either x86 or ARM identification
type CPUIdentifier struct {
	CPUIdentifierX86
	CPUIdentifierARM

	// Architecture hint (optional, can be auto-detected)
	Architecture string
}

var cpuCharacteristicsMap = map[string]CPUCharacteristics{
	UarchSKL:        {MicroArchitecture: UarchSKL, Vendor: IntelVendor},
	UarchTGL:        {MicroArchitecture: UarchTGL, Vendor: IntelVendor},
	UarchADL:        {MicroArchitecture: UarchADL, Vendor: IntelVendor},
	UarchMTL:        {MicroArchitecture: UarchMTL, Vendor: IntelVendor},
	UarchARL:        {MicroArchitecture: UarchARL, Vendor: IntelVendor},
	UarchSKX:        {MicroArchitecture: UarchSKX, Vendor: IntelVendor},
	UarchCLX:        {MicroArchitecture: UarchCLX, Vendor: IntelVendor},
	UarchICX:        {MicroArchitecture: UarchICX, Vendor: IntelVendor},
	UarchSPR:        {MicroArchitecture: UarchSPR, Vendor: IntelVendor},
	UarchEMR:        {MicroArchitecture: UarchEMR, Vendor: IntelVendor},
	UarchSRF:        {MicroArchitecture: UarchSRF, Vendor: IntelVendor},
	UarchGNR:        {MicroArchitecture: UarchGNR, Vendor: IntelVendor},
	UarchCWF:        {MicroArchitecture: UarchCWF, Vendor: IntelVendor},
	UarchNaples:     {MicroArchitecture: UarchNaples, Vendor: AMDVendor, ZenGeneration: 1},
	UarchRome:       {MicroArchitecture: UarchRome, Vendor: AMDVendor, ZenGeneration: 2},
	UarchMilan:      {MicroArchitecture: UarchMilan, Vendor: AMDVendor, ZenGeneration: 3},
	UarchGenoa:      {MicroArchitecture: UarchGenoa, Vendor: AMDVendor, ZenGeneration: 4},
	UarchBergamo:    {MicroArchitecture: UarchBergamo, Vendor: AMDVendor, ZenGeneration: 4},
	UarchTurinZen5:  {MicroArchitecture: UarchTurinZen5, Vendor: AMDVendor, ZenGeneration: 5},
	UarchTurinZen5c: {MicroArchitecture: UarchTurinZen5c, Vendor: AMDVendor, ZenGeneration: 5},
	UarchNeoverseN1: {MicroArchitecture: UarchNeoverseN1, Vendor: "ARM"},
	UarchNeoverseV1: {MicroArchitecture: UarchNeoverseV1, Vendor: "ARM"},
	UarchNeoverseV2: {MicroArchitecture: UarchNeoverseV2, Vendor: "ARM"},
	UarchAmpereOne:  {MicroArchitecture: UarchAmpereOne, Vendor: "Ampere"},
	UarchAppleM1:    {MicroArchitecture: UarchAppleM1, Vendor: "Apple"},
}

// cpuIdentifiersX86 maps x86 CPU identification to microarchitecture names
var cpuIdentifiersX86 = []struct {
	Identifier        CPUIdentifierX86
	MicroArchitecture string
}{
	// Intel Core CPUs
	{CPUIdentifierX86{Family: "6", Model: "(78|94)", Stepping: ""}, UarchSKL},   // Skylake
	{CPUIdentifierX86{Family: "6", Model: "(140|141)", Stepping: ""}, UarchTGL}, // Tiger Lake
	{CPUIdentifierX86{Family: "6", Model: "(151|154)", Stepping: ""}, UarchADL}, // Alder Lake
	{CPUIdentifierX86{Family: "6", Model: "170", Stepping: ""}, UarchMTL},       // Meteor Lake
	{CPUIdentifierX86{Family: "6", Model: "197", Stepping: ""}, UarchARL},       // Arrow Lake
	// Intel Xeon CPUs
	{CPUIdentifierX86{Family: "6", Model: "85", Stepping: "(0|1|2|3|4)"}, UarchSKX}, // Skylake
	{CPUIdentifierX86{Family: "6", Model: "85", Stepping: "(5|6|7)"}, UarchCLX},     // Cascadelake
	{CPUIdentifierX86{Family: "6", Model: "(106|108)", Stepping: ""}, UarchICX},     // Icelake
	{CPUIdentifierX86{Family: "6", Model: "143", Stepping: ""}, UarchSPR},           // Sapphire Rapids
	{CPUIdentifierX86{Family: "6", Model: "207", Stepping: ""}, UarchEMR},           // Emerald Rapids
	{CPUIdentifierX86{Family: "6", Model: "175", Stepping: ""}, UarchSRF},           // Sierra Forest
	{CPUIdentifierX86{Family: "6", Model: "173", Stepping: ""}, UarchGNR},           // Granite Rapids
	{CPUIdentifierX86{Family: "6", Model: "221", Stepping: ""}, UarchCWF},           // Clearwater Forest
	// AMD CPUs
	{CPUIdentifierX86{Family: "23", Model: "1", Stepping: ""}, UarchNaples},                    // Naples
	{CPUIdentifierX86{Family: "23", Model: "49", Stepping: ""}, UarchRome},                     // Rome
	{CPUIdentifierX86{Family: "25", Model: "1", Stepping: ""}, UarchMilan},                     // Milan
	{CPUIdentifierX86{Family: "25", Model: "(1[6-9]|2[0-9]|3[01])", Stepping: ""}, UarchGenoa}, // Genoa, model 16-31
	{CPUIdentifierX86{Family: "25", Model: "(16[0-9]|17[0-5])", Stepping: ""}, UarchBergamo},   // Bergamo, model 160-175
	{CPUIdentifierX86{Family: "26", Model: "2", Stepping: ""}, UarchTurinZen5},                 // Turin (Zen 5)
	{CPUIdentifierX86{Family: "26", Model: "17", Stepping: ""}, UarchTurinZen5c},               // Turin (Zen 5c)
}

// cpuIdentifiersARM maps ARM CPU identification to microarchitecture names
var cpuIdentifiersARM = []struct {
	Identifier        CPUIdentifierARM
	MicroArchitecture string
}{
	{CPUIdentifierARM{Implementer: "0x41", Part: "0xd0c"}, UarchNeoverseN1}, // Graviton2, Altra
	{CPUIdentifierARM{Implementer: "0x41", Part: "0xd40"}, UarchNeoverseV1}, // Graviton3
	{CPUIdentifierARM{Implementer: "0x41", Part: "0xd4f"}, UarchNeoverseV2}, // Graviton4, Axion
	{CPUIdentifierARM{Implementer: "0xc0", Part: "0xac[34]"}, UarchAmpereOne},
	{CPUIdentifierARM{Implementer: "0x61", Part: "0x02[2-9]"}, UarchAppleM1}, // Icestorm/Firestorm and variants
}

// NewX86Identifier creates a CPUIdentifier for x86 CPUs from decimal strings
func NewX86Identifier(family, model, stepping string) CPUIdentifier {
	return CPUIdentifier{
		CPUIdentifierX86: CPUIdentifierX86{
			Family:   family,
			Model:    model,
			Stepping: stepping,
		},
		Architecture: X86Architecture,
	}
}

// NewARMIdentifier creates a CPUIdentifier for ARM CPUs
func NewARMIdentifier(implementer, part string) CPUIdentifier {
	return CPUIdentifier{
		CPUIdentifierARM: CPUIdentifierARM{
			Implementer: strings.ToLower(implementer),
			Part:        strings.ToLower(part),
		},
		Architecture: ARMArchitecture,
	}
}

// GetCPU is a unified function that retrieves CPU characteristics for both x86 and ARM
func GetCPU(id CPUIdentifier) (CPUCharacteristics, error) {
	// Auto-detect architecture if not specified
	arch := id.Architecture
	if arch == "" {
		if id.Implementer == "" && id.Family != "" && id.Model != "" {
			arch = X86Architecture
		} else if id.Implementer != "" || id.Part != "" {
			arch = ARMArchitecture
		} else {
			return CPUCharacteristics{}, fmt.Errorf("unable to determine CPU architecture")
		}
	}

	switch arch {
	case X86Architecture:
		return getCPUX86(id.Family, id.Model, id.Stepping)
	case ARMArchitecture:
		return getCPUARM(id.Implementer, id.Part)
	}

	return CPUCharacteristics{}, fmt.Errorf("unsupported architecture: %s", arch)
}

func getCPUARM(implementer, part string) (cpu CPUCharacteristics, err error) {
	for _, entry := range cpuIdentifiersARM {
		id := entry.Identifier
		if id.Implementer != implementer {
			continue
		}
		var rePart *regexp.Regexp
		rePart, err = regexp.Compile("^" + id.Part + "$")
		if err != nil {
			return
		}
		if !rePart.MatchString(part) {
			continue
		}
		return lookup(entry.MicroArchitecture)
	}
	err = fmt.Errorf("CPU match not found for implementer %s, part %s", implementer, part)
	return
}

func getCPUX86(family, model, stepping string) (cpu CPUCharacteristics, err error) {
	for _, entry := range cpuIdentifiersX86 {
		id := entry.Identifier
		if id.Family != family {
			continue
		}
		var reModel *regexp.Regexp
		reModel, err = regexp.Compile(id.Model)
		if err != nil {
			return
		}
		// the whole model string must match, not a substring
		if reModel.FindString(model) != model {
			continue
		}
		if id.Stepping != "" {
			var reStepping *regexp.Regexp
			reStepping, err = regexp.Compile(id.Stepping)
			if err != nil {
				return
			}
			// if stepping does NOT match
			if reStepping.FindString(stepping) == "" {
				continue
			}
		}
		return lookup(entry.MicroArchitecture)
	}
	err = fmt.Errorf("CPU match not found for family %s, model %s, stepping %s", family, model, stepping)
	return
}

func lookup(uarch string) (CPUCharacteristics, error) {
	cpu, ok := cpuCharacteristicsMap[uarch]
	if !ok {
		return CPUCharacteristics{}, fmt.Errorf("CPU characteristics not found for microarchitecture %s", uarch)
	}
	return cpu, nil
}

// IsZen reports whether the raw CPUID family fields fall in the Zen range handled by the
// legacy descriptor leaves: base family 0xF with extended family 0x8 (Zen to Zen 2, display
// family 23), 0x9 (display family 24) or 0xA (Zen 3 and Zen 4, display family 25). Zen 5
// (display family 26) is outside the range and uses the deterministic cache parameters.
func IsZen(baseFamily, extendedFamily uint8) bool {
	return baseFamily == 0xF && extendedFamily >= 0x8 && extendedFamily <= 0xA
}

// IsZenFamilyStr is IsZen for the decimal display family reported by lscpu and /proc/cpuinfo.
func IsZenFamilyStr(familyStr string) bool {
	family, err := strconv.Atoi(familyStr)
	if err != nil || family < 0xF || family > 0xF+0xFF {
		return false
	}
	return IsZen(0xF, uint8(family-0xF))
}
