package serve

// Copyright (C) 2021-2025 Intel Corporation
// SPDX-License-Identifier: BSD-3-Clause

import (
	"log/slog"
	"strconv"
	"strings"

	"github.com/prometheus/client_golang/prometheus"

	"cachespect/internal/cache"
	"cachespect/internal/cacheinfo"
	"cachespect/internal/extract"
)

const promMetricPrefix = "cachespect_"

// cacheCollector queries the provider on every scrape. Nothing is remembered between
// scrapes, so a value the hardware stops reporting disappears from the next scrape.
type cacheCollector struct {
	provider     cacheinfo.Provider
	queries      []cache.Query
	lineSizeDesc *prometheus.Desc
	sizeDesc     *prometheus.Desc
	statusDesc   *prometheus.Desc
}

func newCacheCollector(provider cacheinfo.Provider, queries []cache.Query) *cacheCollector {
	constLabels := prometheus.Labels{"provider": provider.Name()}
	return &cacheCollector{
		provider: provider,
		queries:  queries,
		lineSizeDesc: prometheus.NewDesc(
			promMetricPrefix+"cache_line_size_bytes",
			"Coherency line size of the cache in bytes.",
			[]string{"level", "type"}, constLabels,
		),
		sizeDesc: prometheus.NewDesc(
			promMetricPrefix+"cache_size_bytes",
			"Total size of one instance of the cache in bytes.",
			[]string{"level", "type"}, constLabels,
		),
		statusDesc: prometheus.NewDesc(
			promMetricPrefix+"cache_query_status",
			"Outcome of a cache query, 1 for the status the query ended with.",
			[]string{"level", "type", "query", "status"}, constLabels,
		),
	}
}

func (c *cacheCollector) Describe(ch chan<- *prometheus.Desc) {
	ch <- c.lineSizeDesc
	ch <- c.sizeDesc
	ch <- c.statusDesc
}

func (c *cacheCollector) Collect(ch chan<- prometheus.Metric) {
	for _, r := range extract.QueryAll(c.provider, c.queries) {
		level := strconv.Itoa(int(r.Query.Level.Uint8()))
		typ := strings.ToLower(r.Query.Type.String())
		if r.LineSizeErr == nil {
			ch <- prometheus.MustNewConstMetric(c.lineSizeDesc, prometheus.GaugeValue, float64(r.LineSize), level, typ)
		}
		if r.SizeErr == nil {
			ch <- prometheus.MustNewConstMetric(c.sizeDesc, prometheus.GaugeValue, float64(r.Size), level, typ)
		}
		ch <- prometheus.MustNewConstMetric(c.statusDesc, prometheus.GaugeValue, 1, level, typ, "line_size", extract.Status(r.LineSizeErr))
		ch <- prometheus.MustNewConstMetric(c.statusDesc, prometheus.GaugeValue, 1, level, typ, "size", extract.Status(r.SizeErr))
	}
	slog.Debug("collected cache metrics", slog.String("provider", c.provider.Name()), slog.Int("queries", len(c.queries)))
}
