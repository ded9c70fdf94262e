package report

// Copyright (C) 2021-2025 Intel Corporation
// SPDX-License-Identifier: BSD-3-Clause

import (
	"bytes"
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/spf13/cobra"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"cachespect/internal/cacheinfo"
	"cachespect/internal/common"
	"cachespect/internal/report"
)

// testCommand stands in for Cmd so that flag state does not leak between tests
func testCommand(t *testing.T, outputDir string, formats ...string) (*cobra.Command, *bytes.Buffer) {
	t.Helper()
	savedProvider, savedTerminal := newProvider, stdoutIsTerminal
	newProvider = func() cacheinfo.Provider {
		// IminLine 32 bytes, DminLine 64 bytes
		return cacheinfo.ARMProvider{ReadCTR: func() uint64 { return 0x8444C003 }}
	}
	stdoutIsTerminal = func() bool { return false }
	t.Cleanup(func() {
		newProvider, stdoutIsTerminal = savedProvider, savedTerminal
		flagFormat = []string{report.FormatTxt}
		flagQueries = ""
		flagFilter = ""
	})
	c := &cobra.Command{Use: "report"}
	c.Flags().StringSlice(flagFormatName, []string{report.FormatTxt}, "")
	if len(formats) > 0 {
		require.NoError(t, c.Flags().Set(flagFormatName, strings.Join(formats, ",")))
		flagFormat = formats
	}
	var stdout bytes.Buffer
	c.SetOut(&stdout)
	c.SetErr(&bytes.Buffer{})
	c.SetContext(context.WithValue(context.Background(), common.AppContext{}, common.AppContext{OutputDir: outputDir}))
	return c, &stdout
}

func TestReportToConsole(t *testing.T) {
	c, stdout := testCommand(t, "")
	require.NoError(t, runCmd(c, nil))
	out := stdout.String()
	assert.Contains(t, out, "Host\n====")
	assert.Contains(t, out, "Caches\n======")
	assert.Contains(t, out, "L1 Instruction")
	assert.Contains(t, out, "cache type register")
	// sizes are not available from the cache type register
	assert.Contains(t, out, "unsupported")
}

func TestReportFiles(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "out")
	c, stdout := testCommand(t, dir, report.FormatJson, report.FormatYaml, report.FormatJson)
	require.NoError(t, runCmd(c, nil))
	files := strings.Fields(stdout.String())
	require.Len(t, files, 2)
	assert.Equal(t, ".json", filepath.Ext(files[0]))
	assert.Equal(t, ".yaml", filepath.Ext(files[1]))

	data, err := os.ReadFile(files[0])
	require.NoError(t, err)
	var parsed map[string][]map[string]string
	require.NoError(t, json.Unmarshal(data, &parsed))
	require.Len(t, parsed["Caches"], 4)
	assert.Equal(t, "L1 Data", parsed["Caches"][0]["Cache"])
	assert.Equal(t, "64", parsed["Caches"][0]["Line Size (bytes)"])
	assert.Equal(t, "32", parsed["Caches"][1]["Line Size (bytes)"])
}

func TestReportAllFormats(t *testing.T) {
	dir := t.TempDir()
	c, stdout := testCommand(t, dir, report.FormatAll)
	require.NoError(t, runCmd(c, nil))
	assert.Len(t, strings.Fields(stdout.String()), len(report.FormatOptions))
}

func TestReportQueriesAndFilter(t *testing.T) {
	queriesFile := filepath.Join(t.TempDir(), "queries.yaml")
	require.NoError(t, os.WriteFile(queriesFile, []byte("queries:\n  - level: 1\n    type: data\n  - level: 2\n    type: instruction\n"), 0644))
	dir := t.TempDir()
	c, stdout := testCommand(t, dir, report.FormatJson)
	flagQueries = queriesFile
	flagFilter = "status == 'ok'"
	require.NoError(t, runCmd(c, nil))
	data, err := os.ReadFile(strings.TrimSpace(stdout.String()))
	require.NoError(t, err)
	var parsed map[string][]map[string]string
	require.NoError(t, json.Unmarshal(data, &parsed))
	require.Len(t, parsed["Caches"], 1)
	assert.Equal(t, "L1 Data", parsed["Caches"][0]["Cache"])
}

func TestValidateFlags(t *testing.T) {
	c, _ := testCommand(t, "")
	flagFormat = []string{"html"}
	assert.Error(t, validateFlags(c, nil))

	flagFormat = []string{report.FormatJson, report.FormatAll}
	assert.NoError(t, validateFlags(c, nil))

	flagQueries = filepath.Join(t.TempDir(), "missing.yaml")
	assert.Error(t, validateFlags(c, nil))
	flagQueries = ""

	flagFilter = "size >"
	assert.Error(t, validateFlags(c, nil))
}

func TestDedupeFormats(t *testing.T) {
	assert.Equal(t, []string{"json", "txt"}, dedupeFormats([]string{"json", "txt", "json"}))
}
