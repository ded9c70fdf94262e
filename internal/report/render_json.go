package report

// Copyright (C) 2021-2025 Intel Corporation
// SPDX-License-Identifier: BSD-3-Clause

import (
	"encoding/json"

	"cachespect/internal/table"
)

type outRecord map[string]string
type outTable []outRecord
type outReport map[string]outTable

// records converts the tables into one list of records per table. A table with fields
// but no values gets a single empty record so that its columns still appear.
func records(allTableValues []table.TableValues) outReport {
	oReport := make(outReport)
	for _, tableValues := range allTableValues {
		var oTable outTable
		if len(tableValues.Fields) == 0 {
			oReport[tableValues.Name] = oTable
			continue
		}
		numRecords := len(tableValues.Fields[0].Values)
		if numRecords > 0 {
			for recordIdx := range numRecords {
				oRecord := make(outRecord)
				for _, field := range tableValues.Fields {
					oRecord[field.Name] = field.Values[recordIdx]
				}
				oTable = append(oTable, oRecord)
			}
		} else {
			// insert an empty record
			oRecord := make(outRecord)
			for _, field := range tableValues.Fields {
				oRecord[field.Name] = ""
			}
			oTable = append(oTable, oRecord)
		}
		oReport[tableValues.Name] = oTable
	}
	return oReport
}

func createJsonReport(allTableValues []table.TableValues) (out []byte, err error) {
	return json.MarshalIndent(records(allTableValues), "", " ")
}
