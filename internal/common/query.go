package common

// Copyright (C) 2021-2025 Intel Corporation
// SPDX-License-Identifier: BSD-3-Clause

import (
	"fmt"

	"cachespect/internal/cache"
)

// ParseQueryArgs parses the <level> <type> positional arguments shared by the query commands.
func ParseQueryArgs(args []string) (cache.Query, error) {
	if len(args) != 2 {
		return cache.Query{}, fmt.Errorf("expected <level> <type>, got %d argument(s)", len(args))
	}
	level, err := cache.ParseLevel(args[0])
	if err != nil {
		return cache.Query{}, err
	}
	typ, err := cache.ParseType(args[1])
	if err != nil {
		return cache.Query{}, err
	}
	return cache.Query{Level: level, Type: typ}, nil
}
