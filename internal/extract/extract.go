// Copyright (C) 2021-2025 Intel Corporation
// SPDX-License-Identifier: BSD-3-Clause

// Package extract gathers the facts a report is built from: the cache query results for a
// set of (level, type) pairs, and a description of the host they were taken on.
package extract

import (
	"errors"
	"log/slog"
	"regexp"
	"strings"

	"cachespect/internal/cache"
	"cachespect/internal/cacheinfo"
)

// Result holds the outcome of the line size and size queries for one cache.
type Result struct {
	Query       cache.Query
	LineSize    int
	LineSizeErr error
	Size        int
	SizeErr     error
}

// Snapshot is everything a report is built from.
type Snapshot struct {
	Host    HostInfo
	Results []Result
}

// QueryAll runs the line size and size queries for each of the given caches.
func QueryAll(p cacheinfo.Provider, queries []cache.Query) []Result {
	results := make([]Result, 0, len(queries))
	for _, q := range queries {
		r := Result{Query: q}
		r.LineSize, r.LineSizeErr = p.LineSize(q.Level, q.Type)
		r.Size, r.SizeErr = p.Size(q.Level, q.Type)
		slog.Debug("queried cache", slog.String("cache", q.String()), slog.Int("lineSize", r.LineSize), slog.String("lineSizeStatus", Status(r.LineSizeErr)), slog.Int("size", r.Size), slog.String("sizeStatus", Status(r.SizeErr)))
		results = append(results, r)
	}
	return results
}

// Status names the outcome of a query: "ok", one of the cache error kinds, or "error".
func Status(err error) string {
	if err == nil {
		return "ok"
	}
	var infoErr cache.InfoError
	if errors.As(err, &infoErr) {
		return infoErr.Kind()
	}
	return "error"
}

// ValFromRegexSubmatch searches for a regex pattern in the given output string and returns the first captured group.
// If no match is found, an empty string is returned.
func ValFromRegexSubmatch(output string, regex string) string {
	re := regexp.MustCompile(regex)
	for line := range strings.SplitSeq(output, "\n") {
		match := re.FindStringSubmatch(strings.TrimSpace(line))
		if len(match) > 1 {
			return match[1]
		}
	}
	return ""
}
