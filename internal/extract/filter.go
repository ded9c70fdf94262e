// Copyright (C) 2021-2025 Intel Corporation
// SPDX-License-Identifier: BSD-3-Clause

package extract

import (
	"fmt"
	"strings"

	"github.com/casbin/govaluate"
	"github.com/pkg/errors"
)

// FilterResults keeps the results for which expression evaluates to true. The expression
// can reference these variables:
//
//	level        numeric cache level
//	type         "data", "instruction" or "unified"
//	line_size    line size in bytes, 0 if unavailable
//	size         size in bytes, 0 if unavailable
//	status       line size query status: "ok", "unsupported", "not present", "invalid value"
//	size_status  size query status, same values as status
//
// and the functions kib(n) and mib(n), e.g. "type == 'unified' && size >= mib(1)".
// An empty expression keeps every result.
func FilterResults(results []Result, expression string) ([]Result, error) {
	if strings.TrimSpace(expression) == "" {
		return results, nil
	}
	expr, err := govaluate.NewEvaluableExpressionWithFunctions(expression, getEvaluatorFunctions())
	if err != nil {
		return nil, errors.Wrapf(err, "invalid filter expression %q", expression)
	}
	var kept []Result
	for _, r := range results {
		value, err := expr.Evaluate(filterParameters(r))
		if err != nil {
			return nil, errors.Wrapf(err, "failed to evaluate filter for %s", r.Query)
		}
		keep, ok := value.(bool)
		if !ok {
			return nil, fmt.Errorf("filter expression %q must evaluate to true or false, got %v", expression, value)
		}
		if keep {
			kept = append(kept, r)
		}
	}
	return kept, nil
}

func filterParameters(r Result) map[string]any {
	return map[string]any{
		"level":       float64(r.Query.Level.Uint8()),
		"type":        strings.ToLower(r.Query.Type.String()),
		"line_size":   float64(r.LineSize),
		"size":        float64(r.Size),
		"status":      Status(r.LineSizeErr),
		"size_status": Status(r.SizeErr),
	}
}

// getEvaluatorFunctions defines functions that can be called in filter expressions
func getEvaluatorFunctions() (functions map[string]govaluate.ExpressionFunction) {
	functions = make(map[string]govaluate.ExpressionFunction)
	unit := func(multiplier float64) govaluate.ExpressionFunction {
		return func(args ...any) (any, error) {
			if len(args) != 1 {
				return nil, fmt.Errorf("expected 1 argument, got %d", len(args))
			}
			switch t := args[0].(type) {
			case int:
				return float64(t) * multiplier, nil
			case float64:
				return t * multiplier, nil
			}
			return nil, fmt.Errorf("expected a number, got %v", args[0])
		}
	}
	functions["kib"] = unit(1 << 10)
	functions["mib"] = unit(1 << 20)
	return
}

// ValidateFilter reports whether expression parses. It does not evaluate it.
func ValidateFilter(expression string) error {
	if strings.TrimSpace(expression) == "" {
		return nil
	}
	_, err := govaluate.NewEvaluableExpressionWithFunctions(expression, getEvaluatorFunctions())
	if err != nil {
		return errors.Wrapf(err, "invalid filter expression %q", expression)
	}
	return nil
}
