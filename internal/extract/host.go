// Copyright (C) 2021-2025 Intel Corporation
// SPDX-License-Identifier: BSD-3-Clause

package extract

import (
	"context"
	"log/slog"
	"os"
	"runtime"
	"strconv"
	"unsafe"

	pscpu "github.com/shirou/gopsutil/cpu"
	"golang.org/x/sys/cpu"

	"cachespect/internal/cpus"
)

// HostInfo describes the processor the queries ran on. Fields the platform does not
// report are empty.
type HostInfo struct {
	Architecture      string
	OS                string
	Vendor            string
	ModelName         string
	Family            string
	Model             string
	Stepping          string
	Implementer       string // ARM only
	Part              string // ARM only
	MicroArchitecture string
	ZenGeneration     int // 0 when not an AMD Zen part
	LogicalCPUs       int
	Provider          string
	// GoCacheLinePad is the padding the Go runtime assumes for this architecture.
	GoCacheLinePad int
}

// UsesZenDescriptors reports whether the x86 provider answers from the AMD legacy
// descriptor leaves on this host.
func (h HostInfo) UsesZenDescriptors() bool {
	return h.Provider == "x86" && h.Vendor == cpus.AMDVendor && cpus.IsZenFamilyStr(h.Family)
}

const procCPUInfo = "/proc/cpuinfo"

// GetHostInfo describes the local host. Failures to read any one source are logged and
// leave the corresponding fields empty.
func GetHostInfo(ctx context.Context, provider string) HostInfo {
	h := HostInfo{
		Architecture:   runtime.GOARCH,
		OS:             runtime.GOOS,
		Provider:       provider,
		GoCacheLinePad: int(unsafe.Sizeof(cpu.CacheLinePad{})),
	}
	infos, err := pscpu.InfoWithContext(ctx)
	if err != nil {
		slog.Warn("failed to get CPU info", slog.String("error", err.Error()))
	} else if len(infos) > 0 {
		h.fromInfoStat(infos[0])
	}
	if n, err := pscpu.CountsWithContext(ctx, true); err == nil {
		h.LogicalCPUs = n
	} else {
		slog.Warn("failed to count logical CPUs", slog.String("error", err.Error()))
	}
	if runtime.GOOS == "linux" && (runtime.GOARCH == "arm64" || runtime.GOARCH == "arm") {
		if data, err := os.ReadFile(procCPUInfo); err == nil {
			h.fromARMCPUInfo(string(data))
		}
	}
	h.MicroArchitecture, h.ZenGeneration = microArchitecture(h)
	return h
}

func (h *HostInfo) fromInfoStat(info pscpu.InfoStat) {
	h.Vendor = info.VendorID
	h.ModelName = info.ModelName
	h.Family = info.Family
	h.Model = info.Model
	h.Stepping = strconv.Itoa(int(info.Stepping))
}

// fromARMCPUInfo reads the implementer and part numbers the kernel publishes for arm cores.
func (h *HostInfo) fromARMCPUInfo(cpuinfo string) {
	h.Implementer = ValFromRegexSubmatch(cpuinfo, `^CPU implementer\s*:\s*(0x[0-9a-fA-F]+)$`)
	h.Part = ValFromRegexSubmatch(cpuinfo, `^CPU part\s*:\s*(0x[0-9a-fA-F]+)$`)
}

// microArchitecture returns the microarchitecture name and Zen generation, empty and 0
// when the processor is not in the CPU table.
func microArchitecture(h HostInfo) (string, int) {
	var id cpus.CPUIdentifier
	switch {
	case h.Implementer != "" && h.Part != "":
		id = cpus.NewARMIdentifier(h.Implementer, h.Part)
	case h.Family != "" && h.Model != "":
		id = cpus.NewX86Identifier(h.Family, h.Model, h.Stepping)
	default:
		return "", 0
	}
	characteristics, err := cpus.GetCPU(id)
	if err != nil {
		slog.Debug("unknown microarchitecture", slog.String("error", err.Error()))
		return "", 0
	}
	return characteristics.MicroArchitecture, characteristics.ZenGeneration
}
