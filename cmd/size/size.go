// Package size is a subcommand of the root command. It prints the total size of one cache.
package size

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

const cmdName = "size"

var examples = []string{
	fmt.Sprintf("  L3 cache size:                     $ %s %s L3 unified", common.AppName, cmdName),
	fmt.Sprintf("  L1 instruction, number only:       $ %s %s 1 i --value", common.AppName, cmdName),
}

var Cmd = &cobra.Command{
	Use:           cmdName + " <level> <type>",
	Short:         "Print the total size of a cache",
	Long:          "Print the total size, in bytes, of one instance of the cache at <level> (L1, L2, L3 or a number) holding <type> (data, instruction or unified).",
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
	size, err := p.Size(q.Level, q.Type)
	if err != nil {
		err = common.QueryError(q, err)
		slog.Error("size query failed", slog.String("provider", p.Name()), slog.String("error", err.Error()))
		fmt.Fprintf(cmd.ErrOrStderr(), "Error: %v\n", err)
		return err
	}
	slog.Info("size query", slog.String("provider", p.Name()), slog.String("cache", q.String()), slog.Int("size", size))
	if flagValue {
		fmt.Fprintln(cmd.OutOrStdout(), size)
	} else {
		fmt.Fprintf(cmd.OutOrStdout(), "%s cache size: %d bytes (%s)\n", q, size, common.FormatCacheSize(size))
	}
	return nil
}
