package table

// Copyright (C) 2021-2025 Intel Corporation
// SPDX-License-Identifier: BSD-3-Clause

import (
	"fmt"
	"strconv"

	"cachespect/internal/cache"
	"cachespect/internal/common"
	"cachespect/internal/extract"
)

const (
	HostTableName     = "Host"
	CacheTableName    = "Caches"
	InsightsTableName = "Insights"
)

// field names of the cache table
const (
	FieldCache          = "Cache"
	FieldLevel          = "Level"
	FieldType           = "Type"
	FieldLineSize       = "Line Size (bytes)"
	FieldLineSizeStatus = "Line Size Status"
	FieldSize           = "Size (bytes)"
	FieldSizeHuman      = "Size"
	FieldSizeStatus     = "Size Status"
)

// Tables are the tables of a cache report, in report order.
var Tables = []TableDefinition{
	{
		Name:       HostTableName,
		FieldsFunc: hostTableValues,
	},
	{
		Name:         CacheTableName,
		HasRows:      true,
		NoDataFound:  "No caches matched the query.",
		FieldsFunc:   cacheTableValues,
		InsightsFunc: cacheTableInsights,
	},
}

func hostTableValues(snapshot extract.Snapshot) []Field {
	h := snapshot.Host
	return []Field{
		{Name: "Architecture", Values: []string{h.Architecture}},
		{Name: "Operating System", Values: []string{h.OS}},
		{Name: "Vendor", Values: []string{h.Vendor}},
		{Name: "Model Name", Values: []string{h.ModelName}},
		{Name: "Family", Values: []string{h.Family}},
		{Name: "Model", Values: []string{h.Model}},
		{Name: "Stepping", Values: []string{h.Stepping}},
		{Name: "Microarchitecture", Values: []string{h.MicroArchitecture}},
		{Name: "Logical CPUs", Values: []string{strconv.Itoa(h.LogicalCPUs)}},
		{Name: "Detection Method", Values: []string{detectionMethod(h)}},
		{Name: "Zen Generation", Values: []string{zenGeneration(h)}},
		{Name: "Go Cache Line Pad (bytes)", Values: []string{strconv.Itoa(h.GoCacheLinePad)}},
	}
}

func detectionMethod(h extract.HostInfo) string {
	switch h.Provider {
	case "x86":
		if h.UsesZenDescriptors() {
			return "CPUID legacy cache descriptors"
		}
		return "CPUID deterministic cache parameters"
	case "arm":
		return "cache type register"
	case "apple":
		return "sysctl"
	case "":
		return ""
	}
	return "none"
}

// zenGeneration is empty for anything other than a recognized AMD Zen part
func zenGeneration(h extract.HostInfo) string {
	if h.ZenGeneration == 0 {
		return ""
	}
	return "Zen " + strconv.Itoa(h.ZenGeneration)
}

func cacheTableValues(snapshot extract.Snapshot) []Field {
	fields := []Field{
		{Name: FieldCache},
		{Name: FieldLevel},
		{Name: FieldType},
		{Name: FieldLineSize},
		{Name: FieldLineSizeStatus},
		{Name: FieldSize},
		{Name: FieldSizeHuman},
		{Name: FieldSizeStatus},
	}
	for _, r := range snapshot.Results {
		lineSize, size, sizeHuman := "", "", ""
		if r.LineSizeErr == nil {
			lineSize = strconv.Itoa(r.LineSize)
		}
		if r.SizeErr == nil {
			size = strconv.Itoa(r.Size)
			sizeHuman = common.FormatCacheSize(r.Size)
		}
		row := []string{
			r.Query.String(),
			strconv.Itoa(int(r.Query.Level.Uint8())),
			r.Query.Type.String(),
			lineSize,
			extract.Status(r.LineSizeErr),
			size,
			sizeHuman,
			extract.Status(r.SizeErr),
		}
		for i := range fields {
			fields[i].Values = append(fields[i].Values, row[i])
		}
	}
	return fields
}

func cacheTableInsights(snapshot extract.Snapshot, _ TableValues) (insights []Insight) {
	pad := snapshot.Host.GoCacheLinePad
	for _, r := range snapshot.Results {
		if r.Query != (cache.Query{Level: cache.L1, Type: cache.Data}) || r.LineSizeErr != nil || pad == 0 {
			continue
		}
		if r.LineSize > pad {
			insights = append(insights, Insight{
				Recommendation: fmt.Sprintf("Pad hot, independently written fields to %d bytes rather than relying on cpu.CacheLinePad.", r.LineSize),
				Justification:  fmt.Sprintf("The L1 data cache line is %d bytes but the Go runtime pads to %d bytes on %s.", r.LineSize, pad, snapshot.Host.Architecture),
			})
		}
	}
	return
}

// InsightsTableValues collects the insights of all tables into one table.
func InsightsTableValues(allTableValues []TableValues) TableValues {
	insightsTableValues := TableValues{
		TableDefinition: TableDefinition{
			Name:    InsightsTableName,
			HasRows: true,
		},
		Fields: []Field{
			{Name: "Recommendation", Values: []string{}},
			{Name: "Justification", Values: []string{}},
		},
	}
	for _, tableValues := range allTableValues {
		for _, insight := range tableValues.Insights {
			insightsTableValues.Fields[0].Values = append(insightsTableValues.Fields[0].Values, insight.Recommendation)
			insightsTableValues.Fields[1].Values = append(insightsTableValues.Fields[1].Values, insight.Justification)
		}
	}
	return insightsTableValues
}
