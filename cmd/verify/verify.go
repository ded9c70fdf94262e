// Package verify is a subcommand of the root command. It compares the detected cache
// metadata with what the operating system reports.
package verify

// Copyright (C) 2021-2025 Intel Corporation
// SPDX-License-Identifier: BSD-3-Clause

import (
	"fmt"
	"log/slog"
	"path/filepath"
	"regexp"
	"sort"
	"strconv"
	"strings"

	mapset "github.com/deckarep/golang-set/v2"
	"github.com/pkg/errors"
	"github.com/spf13/cobra"

	"cachespect/internal/cache"
	"cachespect/internal/cacheinfo"
	"cachespect/internal/common"
	"cachespect/internal/extract"
	"cachespect/internal/report"
	"cachespect/internal/table"
	"cachespect/internal/util"
)

const cmdName = "verify"

var examples = []string{
	fmt.Sprintf("  Compare line sizes with sysfs for cpu0:     $ %s %s", common.AppName, cmdName),
	fmt.Sprintf("  Compare line sizes and sizes on all CPUs:   $ %s %s --cpus all --sizes", common.AppName, cmdName),
	fmt.Sprintf("  Compare with lscpu:                         $ %s %s --source lscpu", common.AppName, cmdName),
}

var Cmd = &cobra.Command{
	Use:           cmdName,
	Short:         "Compare detected cache metadata with the operating system",
	Long:          fmt.Sprintf("Compare detected cache metadata with the operating system's view. Exits with status %d when any value differs.", common.ExitMismatch),
	Example:       strings.Join(examples, "\n"),
	RunE:          runCmd,
	PreRunE:       validateFlags,
	GroupID:       "primary",
	Args:          cobra.NoArgs,
	SilenceErrors: true,
}

// flag vars
var (
	flagSource string
	flagSizes  bool
	flagCPUs   string
)

// flag names
const (
	flagSourceName = "source"
	flagSizesName  = "sizes"
	flagCPUsName   = "cpus"
)

const (
	sourceSysfs = "sysfs"
	sourceLscpu = "lscpu"
)

var sourceOptions = []string{sourceSysfs, sourceLscpu}

// replaced in tests
var (
	newProvider = cacheinfo.Native
	sysfsRoot   = common.SysfsCPURoot
	runLscpu    = common.RunLscpuCache
)

func init() {
	Cmd.Flags().StringVar(&flagSource, flagSourceName, sourceSysfs, fmt.Sprintf("where the expected values come from: %s", strings.Join(sourceOptions, ", ")))
	Cmd.Flags().BoolVar(&flagSizes, flagSizesName, false, "also compare cache sizes")
	Cmd.Flags().StringVar(&flagCPUs, flagCPUsName, "0", "CPUs whose sysfs cache topology is compared, e.g., 0-3,8 or all")
}

func validateFlags(cmd *cobra.Command, args []string) error {
	if !mapset.NewSet(sourceOptions...).Contains(flagSource) {
		return common.FlagValidationError(cmd, fmt.Sprintf("source options are: %s", strings.Join(sourceOptions, ", ")))
	}
	if flagCPUs != "all" {
		if _, err := util.SelectiveIntRangeToIntList(flagCPUs); err != nil {
			return common.FlagValidationError(cmd, fmt.Sprintf("invalid cpu list %q: %v", flagCPUs, err))
		}
	}
	if flagSource == sourceLscpu && cmd.Flags().Changed(flagCPUsName) {
		return common.FlagValidationError(cmd, fmt.Sprintf("--%s applies to the %s source only", flagCPUsName, sourceSysfs))
	}
	return nil
}

// expectation is the operating system's view of one cache. Zero values were not reported.
type expectation struct {
	Query    cache.Query
	LineSize int
	Size     int
}

// check is the outcome of comparing one value
type check struct {
	Cache     cache.Query
	Attribute string
	Expected  int
	Reported  int
	Status    string
}

func (c check) ok() bool {
	return c.Status == "ok" && c.Expected == c.Reported
}

func runCmd(cmd *cobra.Command, args []string) error {
	var expected []expectation
	var err error
	switch flagSource {
	case sourceSysfs:
		expected, err = sysfsExpectations(sysfsRoot, flagCPUs)
	case sourceLscpu:
		expected, err = lscpuExpectations(cmd)
	}
	if err != nil {
		fmt.Fprintf(cmd.ErrOrStderr(), "Error: %v\n", err)
		slog.Error(err.Error())
		return err
	}
	if len(expected) == 0 {
		err = fmt.Errorf("%s reported no caches", flagSource)
		fmt.Fprintf(cmd.ErrOrStderr(), "Error: %v\n", err)
		return err
	}
	provider := newProvider()
	checks := compare(provider, expected, flagSizes)
	out, err := report.Create(report.FormatTxt, []table.TableValues{checksTableValues(flagSource, provider.Name(), checks)})
	if err != nil {
		fmt.Fprintf(cmd.ErrOrStderr(), "Error: %v\n", err)
		return err
	}
	fmt.Fprint(cmd.OutOrStdout(), string(out))
	failed := 0
	for _, c := range checks {
		if !c.ok() {
			failed++
		}
	}
	slog.Info("verification complete", slog.String("source", flagSource), slog.String("provider", provider.Name()), slog.Int("checks", len(checks)), slog.Int("failed", failed))
	if failed > 0 {
		err = &common.ExitError{Code: common.ExitMismatch, Err: fmt.Errorf("%d of %d checks differ from %s", failed, len(checks), flagSource)}
		fmt.Fprintf(cmd.ErrOrStderr(), "Error: %v\n", err)
		return err
	}
	fmt.Fprintf(cmd.OutOrStdout(), "All %d checks match %s.\n", len(checks), flagSource)
	return nil
}

var rxCPUDir = regexp.MustCompile(`^cpu(\d+)$`)

// cpuList expands the --cpus value, "all" meaning every CPU directory under root that
// has cache topology. Offline CPUs keep their cpuN directory but lose cpuN/cache.
func cpuList(root string, cpus string) ([]int, error) {
	if cpus != "all" {
		return util.SelectiveIntRangeToIntList(cpus)
	}
	dirs, err := filepath.Glob(filepath.Join(root, "cpu[0-9]*"))
	if err != nil {
		return nil, err
	}
	var list []int
	for _, dir := range dirs {
		m := rxCPUDir.FindStringSubmatch(filepath.Base(dir))
		if m == nil {
			continue
		}
		cpu, _ := strconv.Atoi(m[1])
		exists, err := util.DirectoryExists(filepath.Join(dir, "cache"))
		if err != nil {
			return nil, err
		}
		if !exists {
			slog.Debug("skipping cpu without cache topology, likely offline", slog.Int("cpu", cpu))
			continue
		}
		list = append(list, cpu)
	}
	sort.Ints(list)
	return list, nil
}

// sysfsExpectations reads the caches of the listed CPUs. Caches that look the same on
// several CPUs are compared once.
func sysfsExpectations(root string, cpus string) ([]expectation, error) {
	list, err := cpuList(root, cpus)
	if err != nil {
		return nil, err
	}
	seen := mapset.NewThreadUnsafeSet[expectation]()
	var expected []expectation
	for _, cpu := range list {
		caches, err := common.ReadSysfsCaches(root, cpu)
		if err != nil {
			return nil, err
		}
		for _, c := range caches {
			e := expectation{Query: c.Query(), LineSize: c.CoherencyLineSize, Size: c.Size}
			if seen.Add(e) {
				expected = append(expected, e)
			}
		}
	}
	return expected, nil
}

func lscpuExpectations(cmd *cobra.Command) ([]expectation, error) {
	output, err := runLscpu(cmd.Context())
	if err != nil {
		return nil, err
	}
	entries, err := common.ParseLscpuCacheOutput(output)
	if err != nil {
		return nil, errors.Wrap(err, "failed to parse lscpu output")
	}
	var expected []expectation
	for _, e := range entries {
		expected = append(expected, expectation{Query: e.Query(), LineSize: e.CoherencySize, Size: e.OneSize})
	}
	return expected, nil
}

const (
	attributeLineSize = "line size"
	attributeSize     = "size"
)

// compare queries the provider for every value the operating system reported
func compare(p cacheinfo.Provider, expected []expectation, sizes bool) []check {
	var checks []check
	for _, e := range expected {
		if e.LineSize > 0 {
			v, err := p.LineSize(e.Query.Level, e.Query.Type)
			checks = append(checks, check{Cache: e.Query, Attribute: attributeLineSize, Expected: e.LineSize, Reported: v, Status: extract.Status(err)})
		}
		if sizes && e.Size > 0 {
			v, err := p.Size(e.Query.Level, e.Query.Type)
			checks = append(checks, check{Cache: e.Query, Attribute: attributeSize, Expected: e.Size, Reported: v, Status: extract.Status(err)})
		}
	}
	return checks
}

func checksTableValues(source string, provider string, checks []check) table.TableValues {
	tv := table.TableValues{
		TableDefinition: table.TableDefinition{
			Name:    fmt.Sprintf("Verification (%s vs %s)", provider, source),
			HasRows: true,
		},
		Fields: []table.Field{
			{Name: "Cache"},
			{Name: "Attribute"},
			{Name: strings.ToUpper(source[:1]) + source[1:]},
			{Name: "Detected"},
			{Name: "Status"},
			{Name: "Result"},
		},
	}
	for _, c := range checks {
		reported := ""
		if c.Status == "ok" {
			reported = strconv.Itoa(c.Reported)
		}
		result := "match"
		if !c.ok() {
			result = "MISMATCH"
		}
		row := []string{c.Cache.String(), c.Attribute, strconv.Itoa(c.Expected), reported, c.Status, result}
		for i := range tv.Fields {
			tv.Fields[i].Values = append(tv.Fields[i].Values, row[i])
		}
	}
	return tv
}
