package report

// Copyright (C) 2021-2025 Intel Corporation
// SPDX-License-Identifier: BSD-3-Clause

import (
	"fmt"

	"gopkg.in/yaml.v2"

	"cachespect/internal/table"
)

func createYamlReport(allTableValues []table.TableValues) (out []byte, err error) {
	// keep the table order of the report, a map would sort the tables by name
	var doc yaml.MapSlice
	oReport := records(allTableValues)
	for _, tableValues := range allTableValues {
		var items []yaml.MapSlice
		for _, record := range oReport[tableValues.Name] {
			var item yaml.MapSlice
			for _, field := range tableValues.Fields {
				item = append(item, yaml.MapItem{Key: field.Name, Value: record[field.Name]})
			}
			items = append(items, item)
		}
		doc = append(doc, yaml.MapItem{Key: tableValues.Name, Value: items})
	}
	out, err = yaml.Marshal(doc)
	if err != nil {
		err = fmt.Errorf("failed to marshal yaml report: %v", err)
	}
	return
}
