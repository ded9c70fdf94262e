// Copyright (C) 2021-2025 Intel Corporation
// SPDX-License-Identifier: BSD-3-Clause

package extract

import (
	"os"

	mapset "github.com/deckarep/golang-set/v2"
	"github.com/pkg/errors"
	"gopkg.in/yaml.v2"

	"cachespect/internal/cache"
)

// queriesFile is the YAML layout of a query file:
//
//	queries:
//	  - level: L1
//	    type: data
//	  - level: 2
//	    type: unified
type queriesFile struct {
	Queries []struct {
		Level string `yaml:"level"`
		Type  string `yaml:"type"`
	} `yaml:"queries"`
}

// ParseQueries decodes a query file. Duplicate entries are dropped, keeping the first.
func ParseQueries(data []byte) ([]cache.Query, error) {
	var file queriesFile
	if err := yaml.UnmarshalStrict(data, &file); err != nil {
		return nil, errors.Wrap(err, "failed to parse queries")
	}
	if len(file.Queries) == 0 {
		return nil, errors.New("no queries found")
	}
	seen := mapset.NewThreadUnsafeSet[cache.Query]()
	var queries []cache.Query
	for i, entry := range file.Queries {
		level, err := cache.ParseLevel(entry.Level)
		if err != nil {
			return nil, errors.Wrapf(err, "query %d", i+1)
		}
		typ, err := cache.ParseType(entry.Type)
		if err != nil {
			return nil, errors.Wrapf(err, "query %d", i+1)
		}
		q := cache.Query{Level: level, Type: typ}
		if seen.Add(q) {
			queries = append(queries, q)
		}
	}
	return queries, nil
}

// LoadQueries reads and decodes a query file.
func LoadQueries(path string) ([]cache.Query, error) {
	data, err := os.ReadFile(path) // #nosec G304
	if err != nil {
		return nil, errors.Wrap(err, "failed to read queries file")
	}
	return ParseQueries(data)
}
