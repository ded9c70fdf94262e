// Package report is a subcommand of the root command. It generates a cache report for the local host.
package report

// Copyright (C) 2021-2025 Intel Corporation
// SPDX-License-Identifier: BSD-3-Clause

import (
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	mapset "github.com/deckarep/golang-set/v2"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"golang.org/x/term"

	"cachespect/internal/cache"
	"cachespect/internal/cacheinfo"
	"cachespect/internal/common"
	"cachespect/internal/extract"
	"cachespect/internal/report"
	"cachespect/internal/table"
	"cachespect/internal/util"
)

const cmdName = "report"

var examples = []string{
	fmt.Sprintf("  Report the default caches:           $ %s %s", common.AppName, cmdName),
	fmt.Sprintf("  Report in specific formats:          $ %s %s --format json,xlsx", common.AppName, cmdName),
	fmt.Sprintf("  Report the caches listed in a file:  $ %s %s --queries queries.yaml", common.AppName, cmdName),
	fmt.Sprintf("  Report only large unified caches:    $ %s %s --filter \"type == 'unified' && size >= mib(1)\"", common.AppName, cmdName),
}

var Cmd = &cobra.Command{
	Use:           cmdName,
	Short:         "Generate a cache report for the local host",
	Example:       strings.Join(examples, "\n"),
	RunE:          runCmd,
	PreRunE:       validateFlags,
	GroupID:       "primary",
	Args:          cobra.NoArgs,
	SilenceErrors: true,
}

// flag vars
var (
	flagFormat  []string
	flagQueries string
	flagFilter  string
)

// flag names
const (
	flagFormatName  = "format"
	flagQueriesName = "queries"
	flagFilterName  = "filter"
)

// newProvider is replaced in tests
var newProvider = cacheinfo.Native

// stdoutIsTerminal is replaced in tests
var stdoutIsTerminal = func() bool {
	return term.IsTerminal(int(os.Stdout.Fd())) // #nosec G115
}

func init() {
	Cmd.Flags().StringSliceVar(&flagFormat, flagFormatName, []string{report.FormatTxt}, "")
	Cmd.Flags().StringVar(&flagQueries, flagQueriesName, "", "")
	Cmd.Flags().StringVar(&flagFilter, flagFilterName, "", "")

	Cmd.SetUsageFunc(usageFunc)
}

func usageFunc(cmd *cobra.Command) error {
	cmd.Printf("Usage: %s [flags]\n\n", cmd.CommandPath())
	cmd.Printf("Examples:\n%s\n\n", cmd.Example)
	cmd.Println("Flags:")
	for _, group := range getFlagGroups() {
		cmd.Printf("  %s:\n", group.GroupName)
		for _, flag := range group.Flags {
			flagDefault := ""
			if cmd.Flags().Lookup(flag.Name).DefValue != "" {
				flagDefault = fmt.Sprintf(" (default: %s)", cmd.Flags().Lookup(flag.Name).DefValue)
			}
			cmd.Printf("    --%-20s %s%s\n", flag.Name, flag.Help, flagDefault)
		}
	}
	if cmd.HasParent() {
		cmd.Println("\nGlobal Flags:")
		cmd.Parent().PersistentFlags().VisitAll(func(pf *pflag.Flag) {
			flagDefault := ""
			if pf.DefValue != "" {
				flagDefault = fmt.Sprintf(" (default: %s)", pf.DefValue)
			}
			cmd.Printf("  --%-20s %s%s\n", pf.Name, pf.Usage, flagDefault)
		})
	}
	return nil
}

func getFlagGroups() []common.FlagGroup {
	var groups []common.FlagGroup
	flags := []common.Flag{
		{
			Name: flagQueriesName,
			Help: "YAML file listing the caches to query, default: L1 data, L1 instruction, L2 unified, L3 unified",
		},
		{
			Name: flagFilterName,
			Help: "expression selecting the caches to report, variables: level, type, line_size, size, status, size_status; functions: kib(), mib()",
		},
	}
	groups = append(groups, common.FlagGroup{
		GroupName: "Caches",
		Flags:     flags,
	})
	flags = []common.Flag{
		{
			Name: flagFormatName,
			Help: fmt.Sprintf("choose output format(s) from: %s, files are written to the output directory; without this flag a text report is printed", strings.Join(append([]string{report.FormatAll}, report.FormatOptions...), ", ")),
		},
	}
	groups = append(groups, common.FlagGroup{
		GroupName: "Output Options",
		Flags:     flags,
	})
	return groups
}

func validateFlags(cmd *cobra.Command, args []string) error {
	// validate format options
	formatOptions := mapset.NewSet(append([]string{report.FormatAll}, report.FormatOptions...)...)
	for _, format := range flagFormat {
		if !formatOptions.Contains(format) {
			return common.FlagValidationError(cmd, fmt.Sprintf("format options are: %s", strings.Join(append([]string{report.FormatAll}, report.FormatOptions...), ", ")))
		}
	}
	// validate queries file
	if flagQueries != "" {
		if _, err := os.Stat(util.ExpandUser(flagQueries)); err != nil {
			return common.FlagValidationError(cmd, fmt.Sprintf("queries file %s: %v", flagQueries, err))
		}
	}
	// validate filter expression
	if err := extract.ValidateFilter(flagFilter); err != nil {
		return common.FlagValidationError(cmd, err.Error())
	}
	return nil
}

func runCmd(cmd *cobra.Command, args []string) error {
	appContext := common.GetAppContext(cmd)
	queries := cache.DefaultQueries
	if flagQueries != "" {
		var err error
		queries, err = extract.LoadQueries(util.ExpandUser(flagQueries))
		if err != nil {
			fmt.Fprintf(cmd.ErrOrStderr(), "Error: %v\n", err)
			slog.Error(err.Error())
			return err
		}
	}
	provider := newProvider()
	slog.Info("querying caches", slog.String("provider", provider.Name()), slog.Int("queries", len(queries)))
	results, err := extract.FilterResults(extract.QueryAll(provider, queries), flagFilter)
	if err != nil {
		fmt.Fprintf(cmd.ErrOrStderr(), "Error: %v\n", err)
		slog.Error(err.Error())
		return err
	}
	snapshot := extract.Snapshot{
		Host:    extract.GetHostInfo(cmd.Context(), provider.Name()),
		Results: results,
	}
	allTableValues := table.ProcessTables(table.Tables, snapshot)
	if insights := table.InsightsTableValues(allTableValues); len(insights.Fields[0].Values) > 0 {
		allTableValues = append(allTableValues, insights)
	}
	// without an explicit format the text report goes to the console
	if !cmd.Flags().Changed(flagFormatName) {
		return printTextReport(cmd.OutOrStdout(), allTableValues)
	}
	formats := dedupeFormats(report.Formats(flagFormat))
	reportFiles, err := writeReports(allTableValues, formats, appContext.OutputDir)
	if err != nil {
		fmt.Fprintf(cmd.ErrOrStderr(), "Error: %v\n", err)
		return err
	}
	if stdoutIsTerminal() {
		fmt.Fprintln(cmd.OutOrStdout(), "Report files:")
		for _, f := range reportFiles {
			fmt.Fprintf(cmd.OutOrStdout(), "  %s\n", f)
		}
	} else {
		for _, f := range reportFiles {
			fmt.Fprintln(cmd.OutOrStdout(), f)
		}
	}
	return nil
}

func printTextReport(w io.Writer, allTableValues []table.TableValues) error {
	out, err := report.Create(report.FormatTxt, allTableValues)
	if err != nil {
		return err
	}
	_, err = w.Write(out)
	return err
}

// dedupeFormats drops repeated formats, keeping the first occurrence of each
func dedupeFormats(formats []string) []string {
	seen := mapset.NewThreadUnsafeSet[string]()
	var unique []string
	for _, f := range formats {
		if seen.Add(f) {
			unique = append(unique, f)
		}
	}
	return unique
}

// writeReports renders the tables in each format and writes one file per format to outputDir
func writeReports(allTableValues []table.TableValues, formats []string, outputDir string) (reportFiles []string, err error) {
	if outputDir == "" {
		return nil, fmt.Errorf("no output directory")
	}
	if err = common.CreateOutputDir(outputDir); err != nil {
		return nil, err
	}
	hostname, err := os.Hostname()
	if err != nil || hostname == "" {
		hostname = "localhost"
	}
	for _, format := range formats {
		var out []byte
		out, err = report.Create(format, allTableValues)
		if err != nil {
			err = fmt.Errorf("failed to create %s report: %w", format, err)
			return
		}
		reportPath := filepath.Join(outputDir, hostname+"."+format)
		if err = common.WriteOutputFile(out, reportPath); err != nil {
			return
		}
		slog.Info("wrote report", slog.String("path", reportPath))
		reportFiles = append(reportFiles, reportPath)
	}
	return
}
