package common

// Copyright (C) 2021-2025 Intel Corporation
// SPDX-License-Identifier: BSD-3-Clause

import (
	"context"
	"fmt"
	"log/slog"
	"math"
	"os/exec"
	"strconv"
	"strings"

	"github.com/pkg/errors"

	"cachespect/internal/cache"
)

// LscpuCacheEntry is one row of `lscpu -C`. Sizes are in bytes; columns lscpu did not
// print are zero.
type LscpuCacheEntry struct {
	Name          string
	Level         cache.Level
	Type          cache.Type
	OneSize       int
	AllSize       int
	Ways          int
	Sets          int
	PhyLine       int
	CoherencySize int
}

// Query returns the level and type the row describes.
func (e LscpuCacheEntry) Query() cache.Query {
	return cache.Query{Level: e.Level, Type: e.Type}
}

// RunLscpuCache runs `lscpu -C` and returns its output.
func RunLscpuCache(ctx context.Context) (string, error) {
	cmd := exec.CommandContext(ctx, "lscpu", "-C")
	out, err := cmd.Output()
	if err != nil {
		return "", errors.Wrap(err, "failed to run lscpu -C")
	}
	return string(out), nil
}

// ParseLscpuCacheOutput parses the output of `lscpu -C` (text/tabular)
// Example output:
// NAME ONE-SIZE ALL-SIZE WAYS TYPE        LEVEL   SETS PHY-LINE COHERENCY-SIZE
// L1d       48K     8.1M   12 Data            1     64        1             64
// L1i       64K    10.8M   16 Instruction     1     64        1             64
// L2         2M     344M   16 Unified         2   2048        1             64
// L3       336M     672M   16 Unified         3 344064        1             64
func ParseLscpuCacheOutput(lscpuCacheOutput string) ([]LscpuCacheEntry, error) {
	trimmed := strings.TrimSpace(lscpuCacheOutput)
	if trimmed == "" {
		slog.Warn("lscpu cache output is empty")
		return nil, errors.New("lscpu cache output is empty")
	}
	lines := strings.Split(trimmed, "\n")
	// header-only is not valid; require at least one data line
	if len(lines) < 2 {
		return nil, errors.New("unexpected lscpu cache output format: header only")
	}
	headerCols := strings.Fields(strings.TrimSpace(lines[0]))
	if len(headerCols) == 0 || strings.ToLower(headerCols[0]) != "name" {
		return nil, errors.New("invalid lscpu cache header")
	}
	// map header name (normalized) -> index
	idx := map[string]int{}
	for i, h := range headerCols {
		idx[strings.ToLower(strings.TrimSpace(h))] = i
	}
	if _, ok := idx["level"]; !ok {
		return nil, errors.New("lscpu cache output has no LEVEL column")
	}
	if _, ok := idx["type"]; !ok {
		return nil, errors.New("lscpu cache output has no TYPE column")
	}
	column := func(cols []string, name string) string {
		if i, ok := idx[name]; ok && i < len(cols) {
			return cols[i]
		}
		return ""
	}
	atoi := func(s string) int {
		n, _ := strconv.Atoi(s)
		return n
	}
	size := func(s string) int {
		n, _ := ParseCacheSize(s)
		return n
	}
	var out []LscpuCacheEntry
	for _, line := range lines[1:] {
		cols := strings.Fields(strings.TrimSpace(line))
		if len(cols) < 4 {
			continue
		}
		entry := LscpuCacheEntry{Name: column(cols, "name")}
		if entry.Name == "" {
			continue
		}
		typ, err := cache.ParseType(column(cols, "type"))
		if err != nil {
			slog.Debug("skipping lscpu cache row", slog.String("name", entry.Name), slog.String("error", err.Error()))
			continue
		}
		level, err := cache.ParseLevel(column(cols, "level"))
		if err != nil {
			slog.Debug("skipping lscpu cache row", slog.String("name", entry.Name), slog.String("error", err.Error()))
			continue
		}
		entry.Type = typ
		entry.Level = level
		entry.OneSize = size(column(cols, "one-size"))
		entry.AllSize = size(column(cols, "all-size"))
		entry.Ways = atoi(column(cols, "ways"))
		entry.Sets = atoi(column(cols, "sets"))
		entry.PhyLine = atoi(column(cols, "phy-line"))
		entry.CoherencySize = atoi(column(cols, "coherency-size"))
		out = append(out, entry)
	}
	if len(out) == 0 {
		return nil, errors.New("no cache rows found in lscpu cache output")
	}
	return out, nil
}

// ParseCacheSize parses a cache size string (e.g., "32K", "2M", "8.1M", "48 KiB", "65536")
// and converts it to bytes. K, M and G are binary units.
func ParseCacheSize(sizeString string) (int, error) {
	sizeStr := strings.ToUpper(strings.ReplaceAll(strings.TrimSpace(sizeString), " ", ""))
	if sizeStr == "" {
		return 0, errors.New("cache size is empty")
	}
	sizeStr = strings.TrimSuffix(sizeStr, "B") // remove trailing B if present
	sizeStr = strings.TrimSuffix(sizeStr, "I") // KiB, MiB, GiB

	multiplier := 1.0
	switch {
	case strings.HasSuffix(sizeStr, "K"):
		multiplier = 1 << 10
	case strings.HasSuffix(sizeStr, "M"):
		multiplier = 1 << 20
	case strings.HasSuffix(sizeStr, "G"):
		multiplier = 1 << 30
	}
	if multiplier != 1 {
		sizeStr = sizeStr[:len(sizeStr)-1]
	}
	sizeVal, err := strconv.ParseFloat(sizeStr, 64)
	if err != nil {
		return 0, errors.Wrapf(err, "failed to parse cache size %q", sizeString)
	}
	if sizeVal < 0 {
		return 0, errors.Errorf("negative cache size %q", sizeString)
	}
	return int(math.Round(sizeVal * multiplier)), nil
}

// FormatCacheSize formats a byte count with the largest binary unit suffix (K, M, G) that
// keeps the value at or above one, e.g. 49152 -> "48K", 1310720 -> "1.25M".
func FormatCacheSize(bytes int) string {
	value := float64(bytes)
	suffix := ""
	for _, unit := range []struct {
		size   float64
		suffix string
	}{{1 << 30, "G"}, {1 << 20, "M"}, {1 << 10, "K"}} {
		if value >= unit.size {
			value /= unit.size
			suffix = unit.suffix
			break
		}
	}
	val := strconv.FormatFloat(value, 'f', 3, 64)
	if strings.Contains(val, ".") {
		val = strings.TrimRight(val, "0") // trim trailing zeros
		val = strings.TrimRight(val, ".") // trim decimal point if trailing
	}
	return fmt.Sprintf("%s%s", val, suffix)
}
