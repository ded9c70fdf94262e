// Package line is a subcommand of the root command. It prints the line size of one cache.
package line

// Copyright (C) 2021-2025 Intel Corporation
// SPDX-License-Identifier: BSD-3-Clause

import (
	"fmt"
	"log/slog"
	"strings"

	"github.com/spf13/cobra"

	"cachespect/internal/cacheinfo"
	"cachespect/internal/common"
)

const cmdName = "line"

var examples = []string{
	fmt.Sprintf("  L1 data cache line size:           $ %s %s L1 data", common.AppName, cmdName),
	fmt.Sprintf("  L2 unified, number only:           $ %s %s 2 u --value", common.AppName, cmdName),
}

var Cmd = &cobra.Command{
	Use:           cmdName + " <level> <type>",
	Short:         "Print the line size of a cache",
	Long:          "Print the coherency line size, in bytes, of the cache at <level> (L1, L2, L3 or a number) holding <type> (data, instruction or unified).",
	Example:       strings.Join(examples, "\n"),
	Args:          validateArgs,
	RunE:          runCmd,
	GroupID:       "primary",
	SilenceErrors: true,
}

var flagValue bool

const flagValueName = "value"

// newProvider is replaced in tests
var newProvider = cacheinfo.Native

func init() {
	Cmd.Flags().BoolVar(&flagValue, flagValueName, false, "print only the number of bytes")
}

func validateArgs(cmd *cobra.Command, args []string) error {
	if _, err := common.ParseQueryArgs(args); err != nil {
		return common.FlagValidationError(cmd, err.Error())
	}
	return nil
}

func runCmd(cmd *cobra.Command, args []string) error {
	q, err := common.ParseQueryArgs(args)
	if err != nil {
		return err
	}
	p := newProvider()
	lineSize, err := p.LineSize(q.Level, q.Type)
	if err != nil {
		err = common.QueryError(q, err)
		slog.Error("line size query failed", slog.String("provider", p.Name()), slog.String("error", err.Error()))
		fmt.Fprintf(cmd.ErrOrStderr(), "Error: %v\n", err)
		return err
	}
	slog.Info("line size query", slog.String("provider", p.Name()), slog.String("cache", q.String()), slog.Int("lineSize", lineSize))
	if flagValue {
		fmt.Fprintln(cmd.OutOrStdout(), lineSize)
	} else {
		fmt.Fprintf(cmd.OutOrStdout(), "%s cache line size: %d bytes\n", q, lineSize)
	}
	return nil
}
