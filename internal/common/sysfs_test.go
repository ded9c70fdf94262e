package common

// Copyright (C) 2021-2025 Intel Corporation
// SPDX-License-Identifier: BSD-3-Clause

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"cachespect/internal/cache"
)

func writeSysfsCache(t *testing.T, root string, cpu string, index string, attrs map[string]string) {
	t.Helper()
	dir := filepath.Join(root, cpu, "cache", index)
	require.NoError(t, os.MkdirAll(dir, 0755))
	for name, value := range attrs {
		require.NoError(t, os.WriteFile(filepath.Join(dir, name), []byte(value+"\n"), 0644))
	}
}

func TestReadSysfsCaches(t *testing.T) {
	root := t.TempDir()
	writeSysfsCache(t, root, "cpu0", "index0", map[string]string{
		"level": "1", "type": "Data", "coherency_line_size": "64", "size": "48K",
		"ways_of_associativity": "12", "number_of_sets": "64", "physical_line_partition": "1",
		"shared_cpu_list": "0,56",
	})
	writeSysfsCache(t, root, "cpu0", "index1", map[string]string{
		"level": "1", "type": "Instruction", "coherency_line_size": "64", "size": "32K",
	})
	writeSysfsCache(t, root, "cpu0", "index10", map[string]string{
		"level": "3", "type": "Unified", "coherency_line_size": "64", "size": "107520K",
	})
	writeSysfsCache(t, root, "cpu0", "index2", map[string]string{
		"level": "2", "type": "Unified",
	})
	// not a cache index
	require.NoError(t, os.MkdirAll(filepath.Join(root, "cpu0", "cache", "power"), 0755))

	caches, err := ReadSysfsCaches(root, 0)
	require.NoError(t, err)
	require.Len(t, caches, 4)

	assert.Equal(t, SysfsCache{
		Index: 0, Level: cache.L1, Type: cache.Data, CoherencyLineSize: 64, Size: 49152,
		Ways: 12, Sets: 64, Partitions: 1, SharedCPUList: "0,56",
	}, caches[0])
	assert.Equal(t, cache.Query{Level: cache.L1, Type: cache.Instruction}, caches[1].Query())
	// missing optional attributes read as zero
	assert.Equal(t, 2, caches[2].Index)
	assert.Zero(t, caches[2].CoherencyLineSize)
	assert.Zero(t, caches[2].Size)
	// numeric ordering, not lexical
	assert.Equal(t, 10, caches[3].Index)
	assert.Equal(t, 107520*1024, caches[3].Size)
}

func TestReadSysfsCachesSkipsUnknownTypes(t *testing.T) {
	root := t.TempDir()
	writeSysfsCache(t, root, "cpu3", "index0", map[string]string{"level": "1", "type": "Trace"})
	writeSysfsCache(t, root, "cpu3", "index1", map[string]string{"level": "2", "type": "Unified"})
	caches, err := ReadSysfsCaches(root, 3)
	require.NoError(t, err)
	require.Len(t, caches, 1)
	assert.Equal(t, cache.L2, caches[0].Level)
}

func TestReadSysfsCachesErrors(t *testing.T) {
	root := t.TempDir()
	_, err := ReadSysfsCaches(root, 0)
	assert.ErrorContains(t, err, "cpu 0")

	writeSysfsCache(t, root, "cpu1", "index0", map[string]string{"type": "Data"})
	_, err = ReadSysfsCaches(root, 1)
	assert.ErrorContains(t, err, "index0")

	writeSysfsCache(t, root, "cpu2", "index0", map[string]string{"type": "Data", "level": "one"})
	_, err = ReadSysfsCaches(root, 2)
	assert.Error(t, err)

	writeSysfsCache(t, root, "cpu4", "index0", map[string]string{"type": "Data", "level": "300"})
	_, err = ReadSysfsCaches(root, 4)
	assert.ErrorContains(t, err, "out of range")
}
