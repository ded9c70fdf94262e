package report

// Copyright (C) 2021-2025 Intel Corporation
// SPDX-License-Identifier: BSD-3-Clause

import (
	"bytes"
	"encoding/json"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"
	"gopkg.in/yaml.v2"

	"cachespect/internal/table"
)

func sampleTables() []table.TableValues {
	return []table.TableValues{
		{
			TableDefinition: table.TableDefinition{Name: "Host"},
			Fields: []table.Field{
				{Name: "Architecture", Values: []string{"amd64"}},
				{Name: "Logical CPUs", Values: []string{"224"}},
			},
		},
		{
			TableDefinition: table.TableDefinition{Name: "Caches", HasRows: true},
			Fields: []table.Field{
				{Name: "Cache", Values: []string{"L1 Data", "L3 Unified"}},
				{Name: "Size (bytes)", Values: []string{"49152", "110100480"}},
			},
		},
		{
			TableDefinition: table.TableDefinition{Name: "Empty", NoDataFound: "Nothing here."},
		},
	}
}

func TestCreate_FieldLengthMismatch(t *testing.T) {
	tables := []table.TableValues{{
		TableDefinition: table.TableDefinition{Name: "bad"},
		Fields: []table.Field{
			{Name: "a", Values: []string{"1", "2"}},
			{Name: "b", Values: []string{"1"}},
		},
	}}
	_, err := Create(FormatTxt, tables)
	assert.ErrorContains(t, err, "expected 2 value(s)")
}

func TestCreate_UnknownFormat(t *testing.T) {
	_, err := Create("html", sampleTables())
	assert.Error(t, err)
}

func TestCreateText(t *testing.T) {
	out, err := Create(FormatTxt, sampleTables())
	require.NoError(t, err)
	text := string(out)
	assert.Contains(t, text, "Host\n====\n")
	assert.Contains(t, text, "Architecture: amd64\n")
	assert.Contains(t, text, "Logical CPUs: 224\n")
	// integer cells get digit grouping
	assert.Contains(t, text, "110,100,480")
	assert.Contains(t, text, "49,152")
	assert.Contains(t, text, "Nothing here.")
	lines := strings.Split(text, "\n")
	var header string
	for _, line := range lines {
		if strings.HasPrefix(line, "Cache ") {
			header = line
		}
	}
	require.NotEmpty(t, header)
	// the first column is as wide as its longest value plus spacing
	assert.Equal(t, len("L3 Unified")+3, strings.Index(header, "Size (bytes)"))
}

func TestCreateJson(t *testing.T) {
	out, err := Create(FormatJson, sampleTables())
	require.NoError(t, err)
	var parsed map[string][]map[string]string
	require.NoError(t, json.Unmarshal(out, &parsed))
	require.Len(t, parsed["Caches"], 2)
	assert.Equal(t, "110100480", parsed["Caches"][1]["Size (bytes)"])
	assert.Equal(t, "amd64", parsed["Host"][0]["Architecture"])
	assert.Empty(t, parsed["Empty"])
}

func TestCreateYaml_KeepsTableOrder(t *testing.T) {
	out, err := Create(FormatYaml, sampleTables())
	require.NoError(t, err)
	text := string(out)
	assert.Less(t, strings.Index(text, "Host:"), strings.Index(text, "Caches:"))
	var parsed map[string][]map[string]string
	require.NoError(t, yaml.Unmarshal(out, &parsed))
	assert.Equal(t, "L1 Data", parsed["Caches"][0]["Cache"])
}

func TestCreateXlsx(t *testing.T) {
	tables := append(sampleTables(), table.TableValues{
		TableDefinition: table.TableDefinition{Name: table.InsightsTableName, HasRows: true},
		Fields: []table.Field{
			{Name: "Recommendation", Values: []string{"r"}},
			{Name: "Justification", Values: []string{"j"}},
		},
	})
	out, err := Create(FormatXlsx, tables)
	require.NoError(t, err)
	f, err := excelize.OpenReader(bytes.NewReader(out))
	require.NoError(t, err)
	defer f.Close()
	assert.Equal(t, []string{XlsxPrimarySheetName, XlsxInsightsSheetName}, f.GetSheetList())
	v, err := f.GetCellValue(XlsxPrimarySheetName, "A1")
	require.NoError(t, err)
	assert.Equal(t, "Host", v)
	v, err = f.GetCellValue(XlsxPrimarySheetName, "B2")
	require.NoError(t, err)
	assert.Equal(t, "amd64", v)
	v, err = f.GetCellValue(XlsxInsightsSheetName, "B3")
	require.NoError(t, err)
	assert.Equal(t, "r", v)
}

func TestGetValueForCell(t *testing.T) {
	assert.Equal(t, 64, getValueForCell("64"))
	assert.Equal(t, 1.5, getValueForCell("1.5"))
	assert.Equal(t, "64K", getValueForCell("64K"))
}

func TestFormats(t *testing.T) {
	assert.Equal(t, FormatOptions, Formats([]string{FormatJson, FormatAll}))
	assert.Equal(t, []string{FormatJson}, Formats([]string{FormatJson}))
}
