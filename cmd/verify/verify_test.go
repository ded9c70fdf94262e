package verify

// Copyright (C) 2021-2025 Intel Corporation
// SPDX-License-Identifier: BSD-3-Clause

import (
	"bytes"
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/spf13/cobra"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"cachespect/internal/cache"
	"cachespect/internal/cacheinfo"
	"cachespect/internal/common"
)

func writeSysfsCache(t *testing.T, root string, cpu string, index string, attrs map[string]string) {
	t.Helper()
	dir := filepath.Join(root, cpu, "cache", index)
	require.NoError(t, os.MkdirAll(dir, 0755))
	for name, value := range attrs {
		require.NoError(t, os.WriteFile(filepath.Join(dir, name), []byte(value+"\n"), 0644))
	}
}

// fakeSysfs describes two CPUs whose caches match a cache type register of 0x8444C003
func fakeSysfs(t *testing.T) string {
	root := t.TempDir()
	for _, cpu := range []string{"cpu0", "cpu1"} {
		writeSysfsCache(t, root, cpu, "index0", map[string]string{"level": "1", "type": "Data", "coherency_line_size": "64", "size": "64K"})
		writeSysfsCache(t, root, cpu, "index1", map[string]string{"level": "1", "type": "Instruction", "coherency_line_size": "32", "size": "64K"})
		writeSysfsCache(t, root, cpu, "index2", map[string]string{"level": "2", "type": "Unified", "coherency_line_size": "64", "size": "1024K"})
	}
	// cpufreq and friends live next to the cpu directories
	require.NoError(t, os.MkdirAll(filepath.Join(root, "cpufreq"), 0755))
	return root
}

func setup(t *testing.T, root string) (*cobra.Command, *bytes.Buffer) {
	t.Helper()
	savedProvider, savedRoot, savedLscpu := newProvider, sysfsRoot, runLscpu
	newProvider = func() cacheinfo.Provider {
		return cacheinfo.ARMProvider{ReadCTR: func() uint64 { return 0x8444C003 }}
	}
	sysfsRoot = root
	t.Cleanup(func() {
		newProvider, sysfsRoot, runLscpu = savedProvider, savedRoot, savedLscpu
		flagSource, flagSizes, flagCPUs = sourceSysfs, false, "0"
	})
	flagSource, flagSizes, flagCPUs = sourceSysfs, false, "0"
	c := &cobra.Command{Use: "verify"}
	c.Flags().String(flagCPUsName, "0", "")
	var stdout bytes.Buffer
	c.SetOut(&stdout)
	c.SetErr(&bytes.Buffer{})
	c.SetContext(context.Background())
	return c, &stdout
}

func TestVerifySysfsMatch(t *testing.T) {
	c, stdout := setup(t, fakeSysfs(t))
	flagCPUs = "all"
	require.NoError(t, runCmd(c, nil))
	// identical caches on cpu0 and cpu1 are checked once
	assert.Contains(t, stdout.String(), "All 3 checks match sysfs.")
	assert.Contains(t, stdout.String(), "Verification (arm vs sysfs)")
}

func TestVerifySysfsMismatch(t *testing.T) {
	root := fakeSysfs(t)
	writeSysfsCache(t, root, "cpu1", "index1", map[string]string{"level": "1", "type": "Instruction", "coherency_line_size": "64"})
	c, stdout := setup(t, root)
	flagCPUs = "0-1"
	err := runCmd(c, nil)
	require.Error(t, err)
	assert.Equal(t, common.ExitMismatch, common.ExitCode(err))
	assert.Contains(t, stdout.String(), "MISMATCH")
}

func TestVerifySizesUnsupported(t *testing.T) {
	c, stdout := setup(t, fakeSysfs(t))
	flagSizes = true
	err := runCmd(c, nil)
	assert.Equal(t, common.ExitMismatch, common.ExitCode(err))
	assert.Contains(t, stdout.String(), "unsupported")
}

func TestVerifyMissingSysfs(t *testing.T) {
	c, _ := setup(t, filepath.Join(t.TempDir(), "missing"))
	err := runCmd(c, nil)
	require.Error(t, err)
	assert.Equal(t, common.ExitFailure, common.ExitCode(err))
}

func TestVerifyLscpu(t *testing.T) {
	c, stdout := setup(t, "")
	flagSource = sourceLscpu
	runLscpu = func(context.Context) (string, error) {
		return `NAME ONE-SIZE ALL-SIZE WAYS TYPE        LEVEL  SETS PHY-LINE COHERENCY-SIZE
L1d       64K     512K    4 Data            1   256        1             64
L1i       64K     512K    4 Instruction     1   512        1             32
L2         1M       4M    8 Unified         2  2048        1             64
`, nil
	}
	require.NoError(t, runCmd(c, nil))
	assert.Contains(t, stdout.String(), "All 3 checks match lscpu.")

	runLscpu = func(context.Context) (string, error) { return "", errors.New("lscpu not found") }
	assert.Error(t, runCmd(c, nil))
}

func TestCompare(t *testing.T) {
	p := cacheinfo.ARMProvider{ReadCTR: func() uint64 { return 0x8444C003 }}
	checks := compare(p, []expectation{
		{Query: cache.Query{Level: cache.L1, Type: cache.Data}, LineSize: 64, Size: 65536},
		{Query: cache.Query{Level: cache.L2, Type: cache.Instruction}, LineSize: 64},
		{Query: cache.Query{Level: cache.L3, Type: cache.Unified}},
	}, true)
	require.Len(t, checks, 3)
	assert.True(t, checks[0].ok())
	assert.Equal(t, attributeSize, checks[1].Attribute)
	assert.Equal(t, "unsupported", checks[1].Status)
	assert.False(t, checks[1].ok())
	assert.Equal(t, "not present", checks[2].Status)
}

func TestCPUList(t *testing.T) {
	root := fakeSysfs(t)
	list, err := cpuList(root, "all")
	require.NoError(t, err)
	assert.Equal(t, []int{0, 1}, list)

	list, err = cpuList(root, "0-2,5")
	require.NoError(t, err)
	assert.Equal(t, []int{0, 1, 2, 5}, list)
}

func TestCPUListSkipsOfflineCPUs(t *testing.T) {
	root := fakeSysfs(t)
	// an offline CPU keeps its directory but has no cache topology
	require.NoError(t, os.MkdirAll(filepath.Join(root, "cpu2"), 0755))
	list, err := cpuList(root, "all")
	require.NoError(t, err)
	assert.Equal(t, []int{0, 1}, list)

	expected, err := sysfsExpectations(root, "all")
	require.NoError(t, err)
	assert.Len(t, expected, 3)

	// an explicitly requested offline CPU is still an error
	_, err = sysfsExpectations(root, "2")
	assert.ErrorContains(t, err, "cpu 2")
}

func TestValidateFlags(t *testing.T) {
	c, _ := setup(t, "")
	assert.NoError(t, validateFlags(c, nil))
	flagSource = "proc"
	assert.Error(t, validateFlags(c, nil))
	flagSource = sourceSysfs
	flagCPUs = "zero"
	assert.Error(t, validateFlags(c, nil))
	flagCPUs = "all"
	assert.NoError(t, validateFlags(c, nil))
}
