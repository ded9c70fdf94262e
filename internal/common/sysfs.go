package common

// Copyright (C) 2021-2025 Intel Corporation
// SPDX-License-Identifier: BSD-3-Clause

import (
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"strings"

	"github.com/pkg/errors"

	"cachespect/internal/cache"
)

// SysfsCPURoot is where Linux publishes per-CPU cache topology.
const SysfsCPURoot = "/sys/devices/system/cpu"

// SysfsCache is one cache directory, /sys/devices/system/cpu/cpuN/cache/indexM.
// Numeric fields the kernel does not publish are zero.
type SysfsCache struct {
	Index             int
	Level             cache.Level
	Type              cache.Type
	CoherencyLineSize int
	Size              int // bytes
	Ways              int
	Sets              int
	Partitions        int
	SharedCPUList     string
}

// Query returns the level and type the directory describes.
func (c SysfsCache) Query() cache.Query {
	return cache.Query{Level: c.Level, Type: c.Type}
}

// ReadSysfsCaches reads the cache directories of one CPU under root, ordered by index.
// Directories describing anything other than data, instruction or unified caches are skipped.
func ReadSysfsCaches(root string, cpu int) ([]SysfsCache, error) {
	dir := filepath.Join(root, "cpu"+strconv.Itoa(cpu), "cache")
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, errors.Wrapf(err, "failed to read cache topology of cpu %d", cpu)
	}
	var caches []SysfsCache
	for _, entry := range entries {
		name := entry.Name()
		if !entry.IsDir() || !strings.HasPrefix(name, "index") {
			continue
		}
		index, err := strconv.Atoi(strings.TrimPrefix(name, "index"))
		if err != nil {
			continue
		}
		c, ok, err := readSysfsCache(filepath.Join(dir, name))
		if err != nil {
			return nil, errors.Wrapf(err, "cpu %d cache %s", cpu, name)
		}
		if !ok {
			continue
		}
		c.Index = index
		caches = append(caches, c)
	}
	sort.Slice(caches, func(i, j int) bool { return caches[i].Index < caches[j].Index })
	return caches, nil
}

func readSysfsCache(dir string) (SysfsCache, bool, error) {
	var c SysfsCache
	typeStr, err := readSysfsString(filepath.Join(dir, "type"))
	if err != nil {
		return c, false, err
	}
	c.Type, err = cache.ParseType(typeStr)
	if err != nil {
		return c, false, nil
	}
	level, err := readSysfsInt(filepath.Join(dir, "level"))
	if err != nil {
		return c, false, err
	}
	if level < 0 || level > 255 {
		return c, false, errors.Errorf("cache level out of range: %d", level)
	}
	c.Level = cache.LevelFromUint8(uint8(level))
	// the remaining attributes are absent on some platforms, e.g. arm64 without PPTT data
	c.CoherencyLineSize, _ = readSysfsInt(filepath.Join(dir, "coherency_line_size"))
	c.Ways, _ = readSysfsInt(filepath.Join(dir, "ways_of_associativity"))
	c.Sets, _ = readSysfsInt(filepath.Join(dir, "number_of_sets"))
	c.Partitions, _ = readSysfsInt(filepath.Join(dir, "physical_line_partition"))
	c.SharedCPUList, _ = readSysfsString(filepath.Join(dir, "shared_cpu_list"))
	if size, err := readSysfsString(filepath.Join(dir, "size")); err == nil {
		c.Size, _ = ParseCacheSize(size)
	}
	return c, true, nil
}

func readSysfsString(path string) (string, error) {
	data, err := os.ReadFile(path) // #nosec G304
	if err != nil {
		return "", errors.Wrap(err, "failed to read sysfs attribute")
	}
	return strings.TrimSpace(string(data)), nil
}

func readSysfsInt(path string) (int, error) {
	value, err := readSysfsString(path)
	if err != nil {
		return 0, err
	}
	if value == "" {
		return 0, errors.Errorf("%s is empty", path)
	}
	n, err := strconv.Atoi(value)
	if err != nil {
		return 0, errors.Wrapf(err, "failed to parse %s", path)
	}
	return n, nil
}
